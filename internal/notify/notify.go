package notify

import (
	"log"

	"aptwatch/internal/domain"
)

// Notifier delivers a rendered batch of listings to one channel and reports
// how many actually went out.
type Notifier interface {
	Name() string
	Deliver(listings []domain.RawListing) (int, error)
}

// Dispatcher applies the notification policy in front of a Notifier: the
// per-notification cap (keeping order, most recent first) and the enabled
// switch. The returned count is what the caller may mark as notified: a
// listing truncated by the cap stays unnotified and is retried next run.
type Dispatcher struct {
	Enabled     bool
	MaxListings int
	Notifier    Notifier
}

func (d *Dispatcher) Dispatch(listings []domain.RawListing) int {
	if !d.Enabled {
		log.Printf("[notify] notifications disabled")
		return 0
	}
	if len(listings) == 0 {
		return 0
	}

	if d.MaxListings > 0 && len(listings) > d.MaxListings {
		log.Printf("[notify] capping batch: %d new, sending %d", len(listings), d.MaxListings)
		listings = listings[:d.MaxListings]
	}

	n, err := d.Notifier.Deliver(listings)
	if err != nil {
		// Failed deliveries stay unnotified; they come around again.
		log.Printf("[notify] %s delivery failed: %v", d.Notifier.Name(), err)
	}
	return n
}
