package commands

import (
	"log/slog"
	"os"
	"time"

	"teetimes-backend/internal/alerts"
	"teetimes-backend/internal/crawler"
	"teetimes-backend/internal/discovery"
	"teetimes-backend/internal/interact"
	"teetimes-backend/internal/recorder"
	"teetimes-backend/internal/runstore"
	"teetimes-backend/internal/venuestore"
	"teetimes-backend/lib/browser"
	"teetimes-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(crawlCmd)
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

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Runs one discovery pass over every venue in the venue file.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()

		database, err := cfg.Database.OpenDB()
		if err != nil {
			serviceutil.Fatal("open database", err)
		}
		defer database.Close()
		if _, err := database.Exec(runstore.Schema); err != nil {
			serviceutil.Fatal("migrate database", err)
		}
		runs := runstore.NewStore(database)

		b, err := browser.Launch(browser.LaunchOptions{Headless: cfg.Headless})
		if err != nil {
			serviceutil.Fatal("launch browser", err)
		}
		defer b.Close()

		opts := crawler.Options{
			Browser:     b,
			Credentials: credentials(cfg),
			Discovery:   discovery.Options{MaxDepth: cfg.MaxDepth},
			Venues:      venuestore.NewStore(cfg.VenuesFile),
			Runs:        &runs,
			Mailer:      alerts.NewMailer(cfg.Smtp, cfg.AlertRecipients),
		}
		if cfg.VerifyBookingUrls {
			verifier := recorder.NewVerifier()
			opts.Verifier = &verifier
		}

		t1 := time.Now()
		err = crawler.New(opts).Run(cmd.Context())
		if err != nil {
			serviceutil.Fatal("crawl failed", err)
		}
		slog.Info("crawl finished", "seconds", time.Since(t1).Seconds())
	},
}
