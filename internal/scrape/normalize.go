package scrape

import (
	"regexp"
	"strconv"
	"strings"
)

// numberRe captures a decimal number: digits, optional single point, digits.
var numberRe = regexp.MustCompile(`\d+(?:\.\d+)?`)

// CleanText normalizes whitespace in scraped text fragments.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// ParsePrice extracts a monthly price from card text like "$1,500+",
// "$1,500 - $1,800" or "$1500/mo". Listing cards show "starting at" prices
// in ascending order, so the first number is taken as the price. Returns nil
// when no digits are present.
func ParsePrice(text string) *float64 {
	cleaned := strings.ReplaceAll(text, ",", "")
	match := numberRe.FindString(cleaned)
	if match == "" {
		return nil
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return nil
	}
	return &v
}

// ParseNumber extracts a count from text like "2 Beds", "1.5 Baths" or
// "800 sq ft". "Studio" anywhere in the text means zero bedrooms. Returns
// nil when the text carries no number, never a zero for unparseable input.
func ParseNumber(text string) *float64 {
	if strings.Contains(strings.ToLower(text), "studio") {
		zero := 0.0
		return &zero
	}
	match := numberRe.FindString(text)
	if match == "" {
		return nil
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return nil
	}
	return &v
}
