// Package filter applies the configured search criteria to scraped
// listings. The policy is permissive on unknown: search-result cards
// under-report fields compared to detail pages, so a listing is never
// rejected just because a field wasn't visible on the card.
package filter

import (
	"fmt"
	"strings"

	"aptwatch/internal/config"
	"aptwatch/internal/domain"
)

// Matches reports whether a listing satisfies every configured range. A nil
// field passes its check; a present field outside either bound fails the
// whole predicate.
func Matches(l domain.RawListing, c config.SearchCriteria) bool {
	return inRange(l.Price, c.PriceRange) &&
		inRange(l.Bedrooms, c.Bedrooms) &&
		inRange(l.Bathrooms, c.Bathrooms) &&
		inRange(l.SquareFeet, c.SquareFeet)
}

// Apply filters a batch, keeping input order.
func Apply(listings []domain.RawListing, c config.SearchCriteria) []domain.RawListing {
	out := make([]domain.RawListing, 0, len(listings))
	for _, l := range listings {
		if Matches(l, c) {
			out = append(out, l)
		}
	}
	return out
}

func inRange(v *float64, r config.Range) bool {
	if v == nil {
		return true
	}
	if r.Min != nil && *v < *r.Min {
		return false
	}
	if r.Max != nil && *v > *r.Max {
		return false
	}
	return true
}

// Summary renders the active criteria for run logs.
func Summary(c config.SearchCriteria) string {
	parts := []string{"Location: " + c.Location}
	if len(c.Neighborhoods) > 0 {
		parts = append(parts, "Neighborhoods: "+strings.Join(c.Neighborhoods, ", "))
	}
	if s := rangeSummary("Price", c.PriceRange, "$%.0f"); s != "" {
		parts = append(parts, s)
	}
	if s := rangeSummary("Bedrooms", c.Bedrooms, "%.0f"); s != "" {
		parts = append(parts, s)
	}
	if s := rangeSummary("Bathrooms", c.Bathrooms, "%g"); s != "" {
		parts = append(parts, s)
	}
	if s := rangeSummary("Sq Ft", c.SquareFeet, "%.0f"); s != "" {
		parts = append(parts, s)
	}
	return strings.Join(parts, " | ")
}

func rangeSummary(name string, r config.Range, numFmt string) string {
	switch {
	case r.Min != nil && r.Max != nil:
		return fmt.Sprintf("%s: %s - %s", name,
			fmt.Sprintf(numFmt, *r.Min), fmt.Sprintf(numFmt, *r.Max))
	case r.Min != nil:
		return fmt.Sprintf("%s: %s+", name, fmt.Sprintf(numFmt, *r.Min))
	case r.Max != nil:
		return fmt.Sprintf("%s: up to %s", name, fmt.Sprintf(numFmt, *r.Max))
	}
	return ""
}
