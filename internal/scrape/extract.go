package scrape

import (
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"aptwatch/internal/domain"
)

// The site renames card classes without notice, so every field is located
// through an ordered chain of candidate selectors; the first one that yields
// text wins and a miss just leaves the field empty. Only the URL is
// mandatory, since a card we cannot link to cannot be identified.
var (
	containerSelectors = []string{
		"article.placard",
		"[data-listingid], li.mortar-wrapper",
	}

	urlRules = []fieldRule{
		{selector: "a.property-link", attr: "href"},
		{selector: "a.property-link-secondary", attr: "href"},
		{selector: "a[data-url]", attr: "data-url"},
	}
	titleRules = []fieldRule{
		{selector: ".property-title"},
		{selector: ".js-placardTitle"},
		{selector: ".property-name span"},
	}
	addressRules = []fieldRule{
		{selector: ".property-address"},
		{selector: ".property-address-container"},
		{selector: "[class*='address']"},
	}
	priceRules = []fieldRule{
		{selector: ".priceTextBox"},
		{selector: ".property-pricing"},
		{selector: ".price-range"},
		{selector: "[class*='price']"},
	}
	bedRules = []fieldRule{
		{selector: ".bedTextBox"},
		{selector: ".property-beds"},
		{selector: ".bed-range"},
		{selector: "[class*='bed']"},
	}
	bathRules = []fieldRule{
		{selector: ".bath-range"},
		{selector: ".baths"},
		{selector: "[class*='bath']"},
	}
	sqftRules = []fieldRule{
		{selector: ".sqft"},
		{selector: ".square-feet"},
		{selector: "[class*='sqft']"},
	}
	availRules = []fieldRule{
		{selector: ".availability"},
		{selector: ".available-date"},
		{selector: "[class*='avail']"},
	}
)

// fieldRule is one candidate location for a field: a selector plus an
// optional attribute to read instead of the element text.
type fieldRule struct {
	selector string
	attr     string
}

// firstMatch walks the rule chain and returns the first non-empty value.
func firstMatch(sel *goquery.Selection, rules []fieldRule) string {
	for _, r := range rules {
		found := sel.Find(r.selector).First()
		if found.Length() == 0 {
			continue
		}
		var v string
		if r.attr != "" {
			v, _ = found.Attr(r.attr)
		} else {
			v = found.Text()
		}
		if v = CleanText(v); v != "" {
			return v
		}
	}
	return ""
}

// ExtractListings parses all listing cards out of a fetched search page.
// One bad card never aborts the batch; it is logged and skipped.
func ExtractListings(html, pageURL string) ([]domain.RawListing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}

	var containers *goquery.Selection
	for _, sel := range containerSelectors {
		containers = doc.Find(sel)
		if containers.Length() > 0 {
			break
		}
	}
	if containers == nil || containers.Length() == 0 {
		log.Printf("[extract] no listing containers found on %s; markup may have changed", pageURL)
		return nil, nil
	}

	var out []domain.RawListing
	containers.Each(func(i int, card *goquery.Selection) {
		listing, ok := parseCard(card, base)
		if ok {
			out = append(out, listing)
		}
	})
	return out, nil
}

func parseCard(card *goquery.Selection, base *url.URL) (listing domain.RawListing, ok bool) {
	// Cards carry whatever the site felt like rendering that day; a panic
	// while digging through one must not take the rest of the page with it.
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[extract] skipping card: %v", r)
			ok = false
		}
	}()

	href := firstMatch(card, urlRules)
	if href == "" {
		return domain.RawListing{}, false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return domain.RawListing{}, false
	}
	abs := base.ResolveReference(ref).String()

	listing = domain.RawListing{
		ID:          ListingID(abs),
		URL:         abs,
		Title:       firstMatch(card, titleRules),
		Address:     firstMatch(card, addressRules),
		AvailableOn: firstMatch(card, availRules),
	}
	if t := firstMatch(card, priceRules); t != "" {
		listing.Price = ParsePrice(t)
	}
	if t := firstMatch(card, bedRules); t != "" {
		listing.Bedrooms = ParseNumber(t)
	}
	if t := firstMatch(card, bathRules); t != "" {
		listing.Bathrooms = ParseNumber(t)
	}
	if t := firstMatch(card, sqftRules); t != "" {
		listing.SquareFeet = ParseNumber(t)
	}
	return listing, true
}
