package scrape

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"aptwatch/internal/config"
	"aptwatch/internal/domain"
	"aptwatch/internal/fetch"
)

// Controller drives the extractor across pages and neighborhoods through
// the fetch boundary. Pages within one target are always sequential and
// paced; a page that still fails after all retries stops pagination for
// that target only and the run carries on with whatever it has.
type Controller struct {
	Opener   fetch.Opener
	Criteria config.SearchCriteria

	MaxPages          int
	MaxRetries        int
	PageDelay         time.Duration
	NeighborhoodDelay time.Duration
	Parallel          bool

	// RetryBaseDelay scales the 2^attempt backoff; left zero it is one
	// second, i.e. 1s, 2s, 4s...
	RetryBaseDelay time.Duration
}

func NewController(cfg config.Config, opener fetch.Opener, maxPages int) *Controller {
	return &Controller{
		Opener:            opener,
		Criteria:          cfg.SearchCriteria,
		MaxPages:          maxPages,
		MaxRetries:        cfg.ScraperSettings.MaxRetries,
		PageDelay:         time.Duration(cfg.ScraperSettings.PageDelaySeconds) * time.Second,
		NeighborhoodDelay: time.Duration(cfg.ScraperSettings.NeighborhoodDelaySeconds) * time.Second,
		Parallel:          cfg.ScraperSettings.ParallelNeighborhoods,
	}
}

// Run scrapes every configured target and returns the combined raw
// listings, in target order.
func (c *Controller) Run(ctx context.Context) ([]domain.RawListing, error) {
	targets := c.Criteria.Neighborhoods
	if len(targets) == 0 {
		targets = []string{""} // whole city
	}

	if c.Parallel && len(targets) > 1 {
		return c.runParallel(ctx, targets)
	}
	return c.runSequential(ctx, targets)
}

func (c *Controller) runSequential(ctx context.Context, targets []string) ([]domain.RawListing, error) {
	sess, err := c.Opener.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	// Burst 1 with the delay as refill interval: the first target goes
	// immediately, the rest wait out the politeness pause.
	pace := pacer(c.NeighborhoodDelay)

	var all []domain.RawListing
	for _, target := range targets {
		if err := pace.Wait(ctx); err != nil {
			return all, err
		}
		all = append(all, c.scrapeTarget(ctx, sess, target)...)
	}
	return all, nil
}

func (c *Controller) runParallel(ctx context.Context, targets []string) ([]domain.RawListing, error) {
	results := make([][]domain.RawListing, len(targets))
	var mu sync.Mutex

	var g errgroup.Group
	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			// Each worker gets its own isolated session; the browser
			// handle is never shared across goroutines.
			sess, err := c.Opener.Open(ctx)
			if err != nil {
				log.Printf("[scrape] %s: open session: %v", targetName(target), err)
				return nil // best-effort: don't cancel siblings
			}
			defer sess.Close()

			found := c.scrapeTarget(ctx, sess, target)
			mu.Lock()
			results[i] = found
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	var all []domain.RawListing
	for _, r := range results {
		all = append(all, r...)
	}
	return all, nil
}

// scrapeTarget paginates one neighborhood (or the whole city) until a page
// fails, comes back empty, or MaxPages is reached.
func (c *Controller) scrapeTarget(ctx context.Context, sess fetch.Session, neighborhood string) []domain.RawListing {
	name := targetName(neighborhood)
	pace := pacer(c.PageDelay)

	var found []domain.RawListing
	for page := 1; page <= c.MaxPages; page++ {
		if err := pace.Wait(ctx); err != nil {
			return found
		}

		url := BuildSearchURL(c.Criteria.Location, neighborhood, page,
			c.Criteria.Bedrooms, c.Criteria.PriceRange)

		html, ok := c.fetchWithRetry(ctx, sess, url)
		if !ok {
			log.Printf("[scrape] %s: page %d unreachable, stopping pagination", name, page)
			break
		}

		listings, err := ExtractListings(html, url)
		if err != nil {
			log.Printf("[scrape] %s: page %d: %v", name, page, err)
			break
		}
		if len(listings) == 0 {
			log.Printf("[scrape] %s: page %d empty, stopping pagination", name, page)
			break
		}

		for i := range listings {
			listings[i].Neighborhood = neighborhood
		}
		found = append(found, listings...)
		log.Printf("[scrape] %s: page %d: %d listings", name, page, len(listings))
	}

	log.Printf("[scrape] %s: %d listings total", name, len(found))
	return found
}

// fetchWithRetry fetches one URL with exponential backoff. The final
// failure is reported as ok=false rather than an error: the caller treats
// it as "stop paginating this target", never as a run failure.
func (c *Controller) fetchWithRetry(ctx context.Context, sess fetch.Session, url string) (string, bool) {
	base := c.RetryBaseDelay
	if base <= 0 {
		base = time.Second
	}

	for attempt := 0; ; attempt++ {
		html, err := sess.Fetch(ctx, url)
		if err == nil {
			return html, true
		}
		if attempt >= c.MaxRetries {
			log.Printf("[scrape] fetch %s failed after %d attempts: %v", url, attempt+1, err)
			return "", false
		}

		delay := base * (1 << attempt)
		log.Printf("[scrape] fetch %s failed (attempt %d/%d): %v, retrying in %v",
			url, attempt+1, c.MaxRetries+1, err, delay)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", false
		}
	}
}

// pacer allows an immediate first event and spaces the rest by d.
func pacer(d time.Duration) *rate.Limiter {
	if d <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(d), 1)
}

func targetName(neighborhood string) string {
	if neighborhood == "" {
		return "city"
	}
	return neighborhood
}
