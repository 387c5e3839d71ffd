package scrape

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"aptwatch/internal/config"
	"aptwatch/internal/fetch"
)

// fakeSession serves canned HTML per URL and counts every fetch, so tests
// can assert how many attempts each page got.
type fakeSession struct {
	mu    sync.Mutex
	pages map[string]string // url -> html; missing urls fail
	fails map[string]int    // url -> remaining failures before success
	calls map[string]int
}

func (s *fakeSession) Fetch(_ context.Context, url string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[url]++
	if n := s.fails[url]; n > 0 {
		s.fails[url] = n - 1
		return "", errors.New("fake: transient failure")
	}
	html, ok := s.pages[url]
	if !ok {
		return "", errors.New("fake: no such page")
	}
	return html, nil
}

func (s *fakeSession) Close() error { return nil }

func (s *fakeSession) count(url string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[url]
}

type fakeOpener struct {
	mu    sync.Mutex
	sess  *fakeSession
	opens int
}

func (o *fakeOpener) Open(context.Context) (fetch.Session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.opens++
	return o.sess, nil
}

// cardPage renders n listing cards with distinct slugs.
func cardPage(prefix string, n int) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `<article class="placard"><a class="property-link" href="/%s-chicago-il/%s%d/"></a></article>`,
			prefix, prefix, i)
	}
	b.WriteString("</body></html>")
	return b.String()
}

const emptyPage = "<html><body><p>No results</p></body></html>"

func newTestController(opener fetch.Opener, neighborhoods []string) *Controller {
	return &Controller{
		Opener: opener,
		Criteria: config.SearchCriteria{
			Location:      "Chicago, IL",
			Neighborhoods: neighborhoods,
		},
		MaxPages:       5,
		MaxRetries:     2,
		RetryBaseDelay: 1, // nanoseconds; keep retries instant in tests
	}
}

func TestControllerStopsAtEmptyPageWithoutRetry(t *testing.T) {
	page1 := BuildSearchURL("Chicago, IL", "", 1, config.Range{}, config.Range{})
	page2 := BuildSearchURL("Chicago, IL", "", 2, config.Range{}, config.Range{})
	page3 := BuildSearchURL("Chicago, IL", "", 3, config.Range{}, config.Range{})

	sess := &fakeSession{pages: map[string]string{
		page1: cardPage("pg1", 20),
		page2: emptyPage,
		page3: cardPage("pg3", 20),
	}}
	c := newTestController(&fakeOpener{sess: sess}, nil)

	got, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != 20 {
		t.Errorf("got %d listings; want 20 (page 1 only)", len(got))
	}
	// Empty is a terminal signal, not an error: exactly one fetch, no retry.
	if n := sess.count(page2); n != 1 {
		t.Errorf("empty page fetched %d times; want 1", n)
	}
	if n := sess.count(page3); n != 0 {
		t.Errorf("page after empty fetched %d times; want 0", n)
	}
}

func TestControllerRetriesThenSucceeds(t *testing.T) {
	page1 := BuildSearchURL("Chicago, IL", "", 1, config.Range{}, config.Range{})

	sess := &fakeSession{
		pages: map[string]string{page1: cardPage("ok", 3)},
		fails: map[string]int{page1: 2},
	}
	c := newTestController(&fakeOpener{sess: sess}, nil)
	c.MaxPages = 1

	got, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("got %d listings; want 3", len(got))
	}
	if n := sess.count(page1); n != 3 {
		t.Errorf("page fetched %d times; want 3 (two failures then success)", n)
	}
}

func TestControllerFailedTargetDoesNotAbortRun(t *testing.T) {
	badPage1 := BuildSearchURL("Chicago, IL", "Lincoln Park", 1, config.Range{}, config.Range{})
	goodPage1 := BuildSearchURL("Chicago, IL", "Wicker Park", 1, config.Range{}, config.Range{})
	goodPage2 := BuildSearchURL("Chicago, IL", "Wicker Park", 2, config.Range{}, config.Range{})

	// Lincoln Park never resolves; Wicker Park has one page of results.
	sess := &fakeSession{pages: map[string]string{
		goodPage1: cardPage("wp", 4),
		goodPage2: emptyPage,
	}}
	c := newTestController(&fakeOpener{sess: sess}, []string{"Lincoln Park", "Wicker Park"})

	got, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != 4 {
		t.Errorf("got %d listings; want 4 from the healthy target", len(got))
	}
	// All retries exhausted on the broken target: MaxRetries+1 attempts.
	if n := sess.count(badPage1); n != 3 {
		t.Errorf("broken page fetched %d times; want 3", n)
	}
	for _, l := range got {
		if l.Neighborhood != "Wicker Park" {
			t.Errorf("listing tagged %q; want %q", l.Neighborhood, "Wicker Park")
		}
	}
}

func TestControllerParallelUsesSessionPerTarget(t *testing.T) {
	lpPage1 := BuildSearchURL("Chicago, IL", "Lincoln Park", 1, config.Range{}, config.Range{})
	wpPage1 := BuildSearchURL("Chicago, IL", "Wicker Park", 1, config.Range{}, config.Range{})

	sess := &fakeSession{pages: map[string]string{
		lpPage1: cardPage("lp", 2),
		wpPage1: cardPage("wp", 3),
	}}
	opener := &fakeOpener{sess: sess}
	c := newTestController(opener, []string{"Lincoln Park", "Wicker Park"})
	c.MaxPages = 1
	c.Parallel = true

	got, err := c.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != 5 {
		t.Errorf("got %d listings; want 5", len(got))
	}
	if opener.opens != 2 {
		t.Errorf("opened %d sessions; want one per target", opener.opens)
	}
	// Results come back in target order regardless of which worker finished
	// first.
	if got[0].Neighborhood != "Lincoln Park" || got[len(got)-1].Neighborhood != "Wicker Park" {
		t.Errorf("results out of target order: first=%q last=%q",
			got[0].Neighborhood, got[len(got)-1].Neighborhood)
	}
}
