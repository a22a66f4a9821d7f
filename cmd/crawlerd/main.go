package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"slices"
	"time"

	"teetimes-backend/internal/alerts"
	"teetimes-backend/internal/crawler"
	"teetimes-backend/internal/discovery"
	"teetimes-backend/internal/interact"
	"teetimes-backend/internal/recorder"
	"teetimes-backend/internal/runstore"
	"teetimes-backend/internal/venuestore"
	"teetimes-backend/lib/browser"
	"teetimes-backend/lib/configutil"
	"teetimes-backend/lib/restyutil"
	"teetimes-backend/lib/serviceutil"
	"teetimes-backend/lib/telemetry"
	"teetimes-backend/lib/timezone"

	"github.com/joho/godotenv"
)

func initTelemetry(ctx context.Context, verbose bool) {
	telemetry.InitSlog(verbose)

	if verbose {
		slog.DebugContext(ctx, "verbose logging enabled")
	}

	err := telemetry.SetupFromEnv(ctx, "crawlerd")
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	go func() {
		<-ctx.Done()
		telemetry.Shutdown(context.Background())
	}()
	telemetry.InstrumentPerfStats(ctx)

	if !verbose {
		return
	}

	recorder.SetRestyInstrumentOutput(
		restyutil.NewFilesystemOutput(".dev/resty/verify"),
	)
}

func credentials(cfg Config) interact.Credentials {
	creds := interact.Credentials{
		Username: os.Getenv("TEETIMES_USERNAME"),
		Password: os.Getenv("TEETIMES_PASSWORD"),
	}
	if cfg.Credentials.Username != "" {
		creds.Username = cfg.Credentials.Username
	}
	if cfg.Credentials.Password != "" {
		creds.Password = cfg.Credentials.Password
	}
	return creds
}

// runCrawl does one full pass over the venue file with a freshly
// launched browser. Chromium leaks memory over long sessions, so the
// browser never outlives a pass.
func runCrawl(ctx context.Context, cfg Config, runs *runstore.Store) {
	b, err := browser.Launch(browser.LaunchOptions{Headless: cfg.Headless})
	if err != nil {
		slog.ErrorContext(ctx, "launch browser", "err", err)
		return
	}
	defer b.Close()

	opts := crawler.Options{
		Browser:     b,
		Credentials: credentials(cfg),
		Discovery:   discovery.Options{MaxDepth: cfg.MaxDepth},
		Venues:      venuestore.NewStore(cfg.VenuesFile),
		Runs:        runs,
		Mailer:      alerts.NewMailer(cfg.Smtp, cfg.AlertRecipients),
	}
	if cfg.VerifyBookingUrls {
		verifier := recorder.NewVerifier()
		opts.Verifier = &verifier
	}

	err = crawler.New(opts).Run(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "crawl pass failed", "err", err)
	}
}

func crawlWorker(ctx context.Context, cfg Config, runs *runstore.Store) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !slices.Contains(cfg.CrawlHours, timezone.Now().Hour()) {
				continue
			}
			runCrawl(ctx, cfg, runs)
		}
	}
}

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	flag.Parse()

	ctx := serviceutil.SignalContext()

	// otlp endpoints and credentials may live in a .env
	godotenv.Load()

	initTelemetry(ctx, *verbose)

	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("read config", err)
	}
	if cfg.VenuesFile == "" {
		cfg.VenuesFile = "venues.json"
	}
	if cfg.Database.File == "" && cfg.Database.Url == "" {
		cfg.Database.File = "teetimes.db"
	}

	database, err := cfg.Database.OpenDB()
	if err != nil {
		serviceutil.Fatal("open database", err)
	}
	_, err = database.Exec(runstore.Schema)
	if err != nil {
		serviceutil.Fatal("migrate database", err)
	}
	runs := runstore.NewStore(database)

	if len(cfg.CrawlHours) == 0 && !cfg.CrawlOnStart {
		slog.WarnContext(ctx, "no crawl_hours configured and crawl_on_start is off, the daemon will idle")
	}

	if cfg.CrawlOnStart {
		runCrawl(ctx, cfg, &runs)
	}
	go crawlWorker(ctx, cfg, &runs)

	<-ctx.Done()
}
