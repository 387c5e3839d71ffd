package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"aptwatch/internal/config"
	"aptwatch/internal/events"
	"aptwatch/internal/fetch"
	"aptwatch/internal/httpapi"
	"aptwatch/internal/notify"
	"aptwatch/internal/run"
	"aptwatch/internal/scheduler"
	"aptwatch/internal/scrape"
	"aptwatch/internal/store"
)

func main() {
	var (
		cfgPath    = flag.String("config", "config.yml", "path to configuration file")
		pages      = flag.Int("pages", 3, "maximum pages to scrape per neighborhood")
		once       = flag.Bool("once", false, "run a single cycle and exit")
		dryRun     = flag.Bool("dry-run", false, "report what would happen without persisting or notifying")
		showRecent = flag.Int("show-recent", 0, "show the N most recent listings and exit")
		stats      = flag.Bool("stats", false, "show database statistics and exit")
		serveAddr  = flag.String("serve", "", "serve the local viewer API on this address (e.g. 127.0.0.1:8745)")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	cfg, v := config.NormalizeAndValidate(cfg)
	for _, w := range v.Warnings {
		log.Printf("[config] warning: %s", w)
	}
	if !v.OK() {
		fmt.Fprintln(os.Stderr, "configuration invalid:")
		for _, e := range v.Errors {
			fmt.Fprintf(os.Stderr, "  - %s\n", e)
		}
		os.Exit(1)
	}

	db, err := store.Open(cfg.DatabaseSettings.DBPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()
	if err := store.Migrate(db.Pool); err != nil {
		log.Fatalf("migrate db: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Read-only modes work against the DB with no engine running.
	switch {
	case *showRecent > 0:
		printRecent(ctx, db, *showRecent)
		return
	case *stats:
		printStats(ctx, db)
		return
	}

	hub := events.NewHub()

	opener := &fetch.ChromeOpener{
		Headless: cfg.ScraperSettings.Headless,
		Timeout:  time.Duration(cfg.ScraperSettings.TimeoutSeconds) * time.Second,
	}
	controller := scrape.NewController(cfg, opener, *pages)

	orch := &run.Orchestrator{
		DB:         db.Pool,
		Cfg:        cfg,
		Scraper:    controller,
		Dispatcher: newDispatcher(cfg),
		Hub:        hub,
	}

	// One writer at a time: the lock is taken around each scraping pass so
	// viewer instances can keep reading while the engine idles.
	lock := flock.New(cfg.DatabaseSettings.DBPath + ".lock")
	cycle := func(ctx context.Context) error {
		ok, err := lock.TryLock()
		if err != nil {
			return fmt.Errorf("db lock: %w", err)
		}
		if !ok {
			log.Printf("[run] another instance is scraping, skipping this cycle")
			return nil
		}
		defer lock.Unlock()

		_, err = orch.RunOnce(ctx, *dryRun)
		return err
	}

	if *serveAddr != "" {
		mux := httpapi.NewMux(httpapi.Deps{
			DB:        db.Pool,
			Hub:       hub,
			RunStatus: orch.Status,
			TriggerRun: func(ctx context.Context, dry bool) (run.Result, error) {
				ok, err := lock.TryLock()
				if err != nil || !ok {
					return run.Result{}, fmt.Errorf("engine busy")
				}
				defer lock.Unlock()
				return orch.RunOnce(ctx, dry)
			},
		})

		ln, err := net.Listen("tcp", *serveAddr)
		if err != nil {
			log.Fatalf("listen %s: %v", *serveAddr, err)
		}
		srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			log.Printf("viewer api on http://%s (db=%s)", ln.Addr(), cfg.DatabaseSettings.DBPath)
			if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
				log.Printf("serve: %v", err)
			}
		}()
		defer srv.Close()
	}

	if *once {
		if err := cycle(ctx); err != nil {
			log.Fatalf("run: %v", err)
		}
		return
	}

	interval := time.Duration(cfg.ScraperSettings.CheckIntervalMinutes) * time.Minute
	log.Printf("checking every %s (ctrl-c to stop)", interval)
	scheduler.Every(ctx, interval, "run", cycle)
}

func newDispatcher(cfg config.Config) *notify.Dispatcher {
	var n notify.Notifier
	switch cfg.NotificationSettings.NotificationType {
	case "sms":
		n = &notify.SMSNotifier{}
	default:
		n = &notify.ConsoleNotifier{}
	}
	return &notify.Dispatcher{
		Enabled:     cfg.NotificationSettings.Enabled,
		MaxListings: cfg.NotificationSettings.MaxListingsPerNotification,
		Notifier:    n,
	}
}

func printRecent(ctx context.Context, db *store.DB, limit int) {
	listings, err := store.All(ctx, db.Pool, limit)
	if err != nil {
		log.Fatalf("list: %v", err)
	}
	if len(listings) == 0 {
		fmt.Println("No listings in database yet.")
		return
	}

	fmt.Printf("Recent listings (last %d):\n\n", limit)
	for i, l := range listings {
		fmt.Printf("%d. %s\n", i+1, orUnknown(l.Title))
		fmt.Printf("   Price: %s | Beds: %s | Baths: %s\n",
			fmtMoney(l.Price), fmtNum(l.Bedrooms), fmtNum(l.Bathrooms))
		fmt.Printf("   First seen: %s | Notified: %s\n",
			l.FirstSeen.Format("2006-01-02 15:04:05"), yesNo(l.Notified))
		fmt.Printf("   URL: %s\n\n", l.URL)
	}
}

func printStats(ctx context.Context, db *store.DB) {
	s, err := store.GetStats(ctx, db.Pool)
	if err != nil {
		log.Fatalf("stats: %v", err)
	}
	fmt.Printf("Total listings tracked: %d\n", s.Total)
	fmt.Printf("Previously notified:    %d\n", s.Notified)
	fmt.Printf("Pending notification:   %d\n", s.Unnotified)
	fmt.Printf("Favorited:              %d\n", s.Favorited)
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}

func fmtMoney(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("$%.0f", *v)
}

func fmtNum(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%g", *v)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
