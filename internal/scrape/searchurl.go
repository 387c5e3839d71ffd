package scrape

import (
	"fmt"
	"regexp"
	"strings"

	"aptwatch/internal/config"
)

const baseURL = "https://www.apartments.com"

var (
	nonWordRe = regexp.MustCompile(`[^\w\s-]`)
	spaceRe   = regexp.MustCompile(`[\s_]+`)
)

// Slugify lowercases a location string and collapses it into the hyphenated
// form the site uses in its path ("Chicago, IL" -> "chicago-il").
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = nonWordRe.ReplaceAllString(s, "")
	s = spaceRe.ReplaceAllString(s, "-")
	return s
}

// BuildSearchURL composes a search URL for one page of one target. The site
// encodes facets in unusual places: bedrooms as a path segment and the price
// bounds as a bare "min-X-max-Y" query suffix with no key=value pairs. Both
// shapes have to be reproduced exactly or the site redirects.
func BuildSearchURL(location, neighborhood string, page int, bedrooms, price config.Range) string {
	slug := Slugify(location)
	if neighborhood != "" {
		// Neighborhood searches use one combined segment: neighborhood-city-state.
		slug = Slugify(neighborhood) + "-" + slug
	}

	parts := []string{slug}

	if bedrooms.Min != nil {
		min := int(*bedrooms.Min)
		if bedrooms.Max != nil && int(*bedrooms.Max) != min {
			parts = append(parts, fmt.Sprintf("%d-to-%d-bedrooms", min, int(*bedrooms.Max)))
		} else {
			parts = append(parts, fmt.Sprintf("%d-bedrooms", min))
		}
	}

	if page > 1 {
		parts = append(parts, fmt.Sprintf("%d", page))
	}

	url := baseURL + "/" + strings.Join(parts, "/") + "/"

	var priceParts []string
	if price.Min != nil {
		priceParts = append(priceParts, fmt.Sprintf("min-%d", int(*price.Min)))
	}
	if price.Max != nil {
		priceParts = append(priceParts, fmt.Sprintf("max-%d", int(*price.Max)))
	}
	if len(priceParts) > 0 {
		url += "?" + strings.Join(priceParts, "-")
	}

	return url
}
