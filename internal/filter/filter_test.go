package filter

import (
	"strings"
	"testing"

	"aptwatch/internal/config"
	"aptwatch/internal/domain"
)

func fp(v float64) *float64 { return &v }

func TestMatchesPrice(t *testing.T) {
	tests := []struct {
		name  string
		price *float64
		rng   config.Range
		want  bool
	}{
		{"unknown price always passes", nil, config.Range{Min: fp(1500), Max: fp(2500)}, true},
		{"inside both bounds", fp(2000), config.Range{Min: fp(1500), Max: fp(2500)}, true},
		{"below min fails", fp(2000), config.Range{Min: fp(2500)}, false},
		{"above max fails", fp(2000), config.Range{Max: fp(1800)}, false},
		{"exactly min passes", fp(1500), config.Range{Min: fp(1500)}, true},
		{"exactly max passes", fp(2500), config.Range{Max: fp(2500)}, true},
		{"no bounds passes anything", fp(99999), config.Range{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := domain.RawListing{ID: "x", Price: tt.price}
			c := config.SearchCriteria{PriceRange: tt.rng}
			if got := Matches(l, c); got != tt.want {
				t.Errorf("Matches = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestMatchesIsConjunction(t *testing.T) {
	c := config.SearchCriteria{
		PriceRange: config.Range{Max: fp(3000)},
		Bedrooms:   config.Range{Min: fp(2)},
	}

	// Price fits, bedrooms below min: the one failing field sinks it.
	l := domain.RawListing{ID: "x", Price: fp(2500), Bedrooms: fp(1)}
	if Matches(l, c) {
		t.Error("one out-of-range field should fail the whole predicate")
	}

	// Unknown bedrooms with fitting price passes.
	l.Bedrooms = nil
	if !Matches(l, c) {
		t.Error("unknown bedrooms should not fail a listing")
	}
}

func TestApplyKeepsOrder(t *testing.T) {
	c := config.SearchCriteria{PriceRange: config.Range{Max: fp(2000)}}
	in := []domain.RawListing{
		{ID: "a", Price: fp(1800)},
		{ID: "b", Price: fp(2500)},
		{ID: "c", Price: nil},
		{ID: "d", Price: fp(1900)},
	}

	got := Apply(in, c)
	want := []string{"a", "c", "d"}
	if len(got) != len(want) {
		t.Fatalf("kept %d listings; want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("got[%d].ID = %q; want %q", i, got[i].ID, id)
		}
	}
}

func TestSummary(t *testing.T) {
	c := config.SearchCriteria{
		Location:      "Chicago, IL",
		Neighborhoods: []string{"Lincoln Park"},
		PriceRange:    config.Range{Min: fp(1500), Max: fp(4500)},
		Bedrooms:      config.Range{Min: fp(3)},
	}
	s := Summary(c)
	for _, want := range []string{"Chicago, IL", "Lincoln Park", "$1500 - $4500", "Bedrooms: 3+"} {
		if !strings.Contains(s, want) {
			t.Errorf("summary %q missing %q", s, want)
		}
	}
}
