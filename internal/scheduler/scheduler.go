package scheduler

import (
	"context"
	"log"
	"time"
)

type Task func(ctx context.Context) error

// Every runs task immediately, then on every tick, until ctx is cancelled.
// The first run is synchronous so one-shot callers share the same path.
func Every(ctx context.Context, interval time.Duration, name string, task Task) {
	if err := task(ctx); err != nil {
		log.Printf("[%s] error: %v", name, err)
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := task(ctx); err != nil {
				log.Printf("[%s] error: %v", name, err)
			}
		}
	}
}
