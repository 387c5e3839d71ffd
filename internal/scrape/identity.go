package scrape

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
)

// The site ends listing URLs with a stable per-listing slug
// (/some-property-city-st/a1b2c3d/). When present we use it verbatim so the
// identity survives any re-scrape; otherwise we fall back to a digest.
var listingSlugRe = regexp.MustCompile(`/([a-z0-9]+)/?$`)

// ListingID derives the stable identity for a listing URL. Pure and
// deterministic: the same URL always maps to the same token.
func ListingID(url string) string {
	if m := listingSlugRe.FindStringSubmatch(url); m != nil {
		return m[1]
	}
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])[:16]
}
