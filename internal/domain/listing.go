package domain

import "time"

// RawListing is one listing as parsed off a search-results page. The card
// markup is unstable, so only ID and URL are guaranteed; every other field
// is whatever the card happened to show.
type RawListing struct {
	ID           string   `json:"id"`
	URL          string   `json:"url"`
	Title        string   `json:"title,omitempty"`
	Address      string   `json:"address,omitempty"`
	Neighborhood string   `json:"neighborhood,omitempty"`
	Price        *float64 `json:"price,omitempty"`
	Bedrooms     *float64 `json:"bedrooms,omitempty"` // 0 = studio
	Bathrooms    *float64 `json:"bathrooms,omitempty"`
	SquareFeet   *float64 `json:"squareFeet,omitempty"`
	AvailableOn  string   `json:"availableOn,omitempty"` // free text from the card
}

// Listing is the persisted record of an identity the scraper has seen.
// Attributes are a snapshot from first capture; only LastSeen moves on a
// repeat sighting.
type Listing struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	Title        string    `json:"title,omitempty"`
	Address      string    `json:"address,omitempty"`
	Neighborhood string    `json:"neighborhood,omitempty"`
	Price        *float64  `json:"price,omitempty"`
	Bedrooms     *float64  `json:"bedrooms,omitempty"`
	Bathrooms    *float64  `json:"bathrooms,omitempty"`
	SquareFeet   *float64  `json:"squareFeet,omitempty"`
	AvailableOn  string    `json:"availableOn,omitempty"`
	FirstSeen    time.Time `json:"firstSeen"`
	LastSeen     time.Time `json:"lastSeen"`
	Notified     bool      `json:"notified"`
	Favorited    bool      `json:"favorited"`
}
