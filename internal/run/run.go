// Package run sequences one full cycle of the engine: scrape, filter,
// dedup against the store, notify, mark, prune. The ordering here is what
// makes notification exactly-once: the store's upsert result is the single
// "new" signal, and only the delivered prefix of the new batch is marked.
package run

import (
	"context"
	"database/sql"
	"log"
	"sync/atomic"
	"time"

	"aptwatch/internal/config"
	"aptwatch/internal/domain"
	"aptwatch/internal/events"
	"aptwatch/internal/filter"
	"aptwatch/internal/notify"
	"aptwatch/internal/store"
)

// Scraper is the acquisition side of a run; *scrape.Controller in
// production.
type Scraper interface {
	Run(ctx context.Context) ([]domain.RawListing, error)
}

type Status struct {
	Running   bool   `json:"running"`
	LastRunAt string `json:"last_run_at"`
	LastOkAt  string `json:"last_ok_at"`
	LastError string `json:"last_error"`
	LastNew   int    `json:"last_new"`
}

type Result struct {
	DryRun    bool  `json:"dryRun"`
	Scraped   int   `json:"scraped"`
	Matched   int   `json:"matched"`
	New       int   `json:"new"`
	Delivered int   `json:"delivered"`
	Pruned    int64 `json:"pruned"`
}

type Orchestrator struct {
	DB         *sql.DB
	Cfg        config.Config
	Scraper    Scraper
	Dispatcher *notify.Dispatcher
	Hub        *events.Hub // optional

	// Now is the clock; defaults to time.Now. Injected so store timestamps
	// are testable.
	Now func() time.Time

	status atomic.Value // Status
}

// Status returns the latest run status snapshot.
func (o *Orchestrator) Status() Status {
	if s, ok := o.status.Load().(Status); ok {
		return s
	}
	return Status{}
}

// RunOnce executes one complete cycle. In dry-run mode the store is only
// consulted, never written, and nothing is delivered; the result still
// reports what a real run would have found.
func (o *Orchestrator) RunOnce(ctx context.Context, dryRun bool) (Result, error) {
	now := time.Now
	if o.Now != nil {
		now = o.Now
	}

	st := o.Status()
	st.Running = true
	st.LastRunAt = now().UTC().Format(time.RFC3339)
	o.status.Store(st)

	res, err := o.runCycle(ctx, dryRun, now)

	st = o.Status()
	st.Running = false
	st.LastNew = res.New
	if err != nil {
		st.LastError = err.Error()
	} else {
		st.LastError = ""
		st.LastOkAt = now().UTC().Format(time.RFC3339)
	}
	o.status.Store(st)

	o.publish(events.TypeRunFinished, res)
	return res, err
}

func (o *Orchestrator) runCycle(ctx context.Context, dryRun bool, now func() time.Time) (Result, error) {
	res := Result{DryRun: dryRun}

	log.Printf("[run] criteria: %s", filter.Summary(o.Cfg.SearchCriteria))

	// 1. Fetch + extract + normalize.
	listings, err := o.Scraper.Run(ctx)
	res.Scraped = len(listings)
	if err != nil && len(listings) == 0 {
		return res, err
	}
	if err != nil {
		log.Printf("[run] partial scrape: %v", err)
	}

	// 2. Criteria filter.
	matched := filter.Apply(listings, o.Cfg.SearchCriteria)
	res.Matched = len(matched)
	log.Printf("[run] scraped %d, matched %d", res.Scraped, res.Matched)

	// 3. Dedup gate: only upserts that actually insert are "new".
	var fresh []domain.RawListing
	for _, l := range matched {
		if dryRun {
			exists, err := store.Exists(ctx, o.DB, l.ID)
			if err != nil {
				log.Printf("[run] exists check %s: %v", l.ID, err)
				continue
			}
			if !exists {
				fresh = append(fresh, l)
			}
			continue
		}

		inserted, err := store.Upsert(ctx, o.DB, l, now())
		if err != nil {
			log.Printf("[run] upsert %s: %v", l.ID, err)
			continue
		}
		if inserted {
			fresh = append(fresh, l)
			o.publish(events.TypeListingCreated, map[string]any{"id": l.ID})
		}
	}
	res.New = len(fresh)

	if dryRun {
		for _, l := range fresh {
			log.Printf("[run] dry-run: would notify %s (%s)", l.ID, l.URL)
		}
		log.Printf("[run] dry-run: %d new listings, skipping notify and prune", res.New)
		return res, nil
	}

	// 4+5. Notify, then mark exactly the delivered prefix. A listing cut
	// off by the per-notification cap stays unnotified for the next run.
	delivered := o.Dispatcher.Dispatch(fresh)
	if delivered > len(fresh) {
		delivered = len(fresh)
	}
	res.Delivered = delivered
	for _, l := range fresh[:delivered] {
		if err := store.MarkNotified(ctx, o.DB, l.ID); err != nil {
			log.Printf("[run] mark notified %s: %v", l.ID, err)
		}
	}

	// 6. Retention pruning, by first_seen.
	pruned, err := store.Prune(ctx, o.DB, o.Cfg.DatabaseSettings.RetentionDays, now())
	if err != nil {
		log.Printf("[run] prune: %v", err)
	}
	res.Pruned = pruned

	log.Printf("[run] new=%d delivered=%d pruned=%d", res.New, res.Delivered, res.Pruned)
	return res, nil
}

func (o *Orchestrator) publish(typ string, data any) {
	if o.Hub != nil {
		o.Hub.Publish(events.MakeEvent(typ, 1, data))
	}
}
