package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"teetimes-backend/internal/alerts"
	"teetimes-backend/lib/configutil"
	configlibsql "teetimes-backend/lib/configutil/libsql"
	"teetimes-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

type CredentialsConfig struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Config is the subset of the crawlerd config the cli cares about,
// both binaries read the same config.json5.
type Config struct {
	VenuesFile        string              `json:"venues_file"`
	Database          configlibsql.Struct `json:"database"`
	Headless          bool                `json:"headless"`
	VerifyBookingUrls bool                `json:"verify_booking_urls"`
	MaxDepth          int                 `json:"max_depth"`
	Smtp              alerts.SmtpConfig   `json:"smtp"`
	AlertRecipients   []string            `json:"alert_recipients"`
	Credentials       CredentialsConfig   `json:"credentials"`
}

var rootCmd = &cobra.Command{
	Use:   "teetimes-cli",
	Short: "teetimes-cli drives and inspects the tee time discovery crawler.",
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// readConfig tolerates a missing config file so the cli works out of
// the box next to a venues.json.
func readConfig() Config {
	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		serviceutil.Fatal("read config", err)
	}
	if cfg.VenuesFile == "" {
		cfg.VenuesFile = "venues.json"
	}
	if cfg.Database.File == "" && cfg.Database.Url == "" {
		cfg.Database.File = "teetimes.db"
	}
	return cfg
}
