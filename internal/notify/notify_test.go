package notify

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"aptwatch/internal/domain"
)

func fp(v float64) *float64 { return &v }

// recordingNotifier captures the batch it was handed.
type recordingNotifier struct {
	got []domain.RawListing
	n   int
	err error
}

func (r *recordingNotifier) Name() string { return "recording" }

func (r *recordingNotifier) Deliver(listings []domain.RawListing) (int, error) {
	r.got = listings
	if r.err != nil {
		return r.n, r.err
	}
	return len(listings), nil
}

func batch(n int) []domain.RawListing {
	out := make([]domain.RawListing, n)
	for i := range out {
		out[i] = domain.RawListing{
			ID:  fmt.Sprintf("l%02d", i),
			URL: fmt.Sprintf("https://www.apartments.com/x-chicago-il/l%02d/", i),
		}
	}
	return out
}

func TestDispatchCapsBatch(t *testing.T) {
	rec := &recordingNotifier{}
	d := &Dispatcher{Enabled: true, MaxListings: 10, Notifier: rec}

	n := d.Dispatch(batch(15))
	if n != 10 {
		t.Errorf("Dispatch returned %d; want 10", n)
	}
	if len(rec.got) != 10 {
		t.Fatalf("notifier received %d listings; want 10", len(rec.got))
	}
	// Cap keeps the head of the batch in order.
	if rec.got[0].ID != "l00" || rec.got[9].ID != "l09" {
		t.Errorf("cap changed order: first=%s last=%s", rec.got[0].ID, rec.got[9].ID)
	}
}

func TestDispatchUnderCap(t *testing.T) {
	rec := &recordingNotifier{}
	d := &Dispatcher{Enabled: true, MaxListings: 10, Notifier: rec}

	if n := d.Dispatch(batch(3)); n != 3 {
		t.Errorf("Dispatch returned %d; want 3", n)
	}
}

func TestDispatchDisabled(t *testing.T) {
	rec := &recordingNotifier{}
	d := &Dispatcher{Enabled: false, MaxListings: 10, Notifier: rec}

	if n := d.Dispatch(batch(5)); n != 0 {
		t.Errorf("Dispatch returned %d; want 0 when disabled", n)
	}
	if rec.got != nil {
		t.Error("notifier should not be called when disabled")
	}
}

func TestDispatchEmptyBatch(t *testing.T) {
	rec := &recordingNotifier{}
	d := &Dispatcher{Enabled: true, MaxListings: 10, Notifier: rec}

	if n := d.Dispatch(nil); n != 0 {
		t.Errorf("Dispatch returned %d; want 0", n)
	}
	if rec.got != nil {
		t.Error("notifier should not be called for an empty batch")
	}
}

func TestDispatchPartialDelivery(t *testing.T) {
	// A notifier that died mid-batch reports how far it got; only that many
	// may be marked notified.
	rec := &recordingNotifier{n: 2, err: errors.New("boom")}
	d := &Dispatcher{Enabled: true, MaxListings: 10, Notifier: rec}

	if n := d.Dispatch(batch(5)); n != 2 {
		t.Errorf("Dispatch returned %d; want the partial count 2", n)
	}
}

func TestConsoleNotifierOutput(t *testing.T) {
	var buf bytes.Buffer
	c := &ConsoleNotifier{
		Out: &buf,
		Now: func() time.Time { return time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC) },
	}

	listings := []domain.RawListing{
		{
			ID:          "abc123",
			URL:         "https://www.apartments.com/lakeview-lofts-chicago-il/abc123/",
			Title:       "Lakeview Lofts",
			Address:     "123 N Main St",
			Price:       fp(1500),
			Bedrooms:    fp(2),
			Bathrooms:   fp(1.5),
			SquareFeet:  fp(850),
			AvailableOn: "Oct 1",
		},
		{
			ID:       "def456",
			URL:      "https://www.apartments.com/studio-chicago-il/def456/",
			Bedrooms: fp(0),
		},
	}

	n, err := c.Deliver(listings)
	if err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	if n != 2 {
		t.Errorf("Deliver returned %d; want 2", n)
	}

	out := buf.String()
	for _, want := range []string{
		"NEW HOUSING LISTINGS FOUND - 2026-03-01 09:30:00",
		"Property: Lakeview Lofts",
		"Address: 123 N Main St",
		"Price: $1,500/month",
		"Layout: 2 bed, 1.5 bath",
		"Size: 850 sq ft",
		"Available: Oct 1",
		"Layout: Studio",
		"Total new listings: 2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestThousands(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{950, "950"},
		{1500, "1,500"},
		{1234567, "1,234,567"},
		{-4200, "-4,200"},
	}
	for _, tt := range tests {
		if got := thousands(tt.in); got != tt.want {
			t.Errorf("thousands(%g) = %q; want %q", tt.in, got, tt.want)
		}
	}
}
