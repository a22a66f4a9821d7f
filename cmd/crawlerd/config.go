package main

import (
	"teetimes-backend/internal/alerts"
	configlibsql "teetimes-backend/lib/configutil/libsql"
)

// CredentialsConfig overrides the TEETIMES_USERNAME/TEETIMES_PASSWORD
// environment variables when set. The values are only ever typed into
// login forms, they are never logged or persisted.
type CredentialsConfig struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type Config struct {
	// VenuesFile is the venue json file, rewritten in place after
	// every crawl pass. Defaults to venues.json.
	VenuesFile string `json:"venues_file"`
	// Database holds the run journal. Defaults to a local
	// teetimes.db sqlite file.
	Database configlibsql.Struct `json:"database"`
	Headless bool                `json:"headless"`
	// CrawlHours are the hours of day (venue-local time) the worker
	// crawls at.
	CrawlHours        []int             `json:"crawl_hours"`
	CrawlOnStart      bool              `json:"crawl_on_start"`
	VerifyBookingUrls bool              `json:"verify_booking_urls"`
	MaxDepth          int               `json:"max_depth"`
	Smtp              alerts.SmtpConfig `json:"smtp"`
	AlertRecipients   []string          `json:"alert_recipients"`
	Credentials       CredentialsConfig `json:"credentials"`
}
