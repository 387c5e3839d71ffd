package fetch

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// renderSettle is how long a navigated page gets to run its JavaScript
// before we snapshot the DOM. The listing grid is injected client-side and
// there is no reliable ready signal to wait on.
const renderSettle = 5 * time.Second

// ChromeOpener opens headless-Chrome sessions. Each Open spawns an isolated
// browser so concurrent neighborhood workers never share one.
type ChromeOpener struct {
	Headless bool
	Timeout  time.Duration // per-fetch deadline
	ExecPath string        // optional explicit browser binary
}

type chromeSession struct {
	ctx     context.Context
	timeout time.Duration
	cancels []context.CancelFunc
}

func (o *ChromeOpener) Open(ctx context.Context) (Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", o.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(userAgent),
	)
	if bin := o.execPath(); bin != "" {
		opts = append(opts, chromedp.ExecPath(bin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(string, ...interface{}) {}))

	// Start the browser now so a missing binary fails at open, not mid-run.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	timeout := o.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &chromeSession{
		ctx:     browserCtx,
		timeout: timeout,
		cancels: []context.CancelFunc{cancelBrowser, cancelAlloc},
	}, nil
}

func (s *chromeSession) Fetch(ctx context.Context, url string) (string, error) {
	tabCtx, cancelTab := chromedp.NewContext(s.ctx)
	defer cancelTab()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, s.timeout+renderSettle)
	defer cancelTimeout()

	// Honor caller cancellation too.
	go func() {
		select {
		case <-ctx.Done():
			cancelTab()
		case <-tabCtx.Done():
		}
	}()

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(renderSettle),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	return html, nil
}

func (s *chromeSession) Close() error {
	for _, cancel := range s.cancels {
		cancel()
	}
	return nil
}

func (o *ChromeOpener) execPath() string {
	if o.ExecPath != "" {
		return o.ExecPath
	}
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}
	for _, name := range []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}
