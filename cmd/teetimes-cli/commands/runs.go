package commands

import (
	"fmt"
	"os"
	"time"

	"teetimes-backend/cmd/teetimes-cli/utils"
	"teetimes-backend/internal/runstore"
	"teetimes-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var runsLimit *int

func init() {
	runsLimit = runsListCmd.Flags().Int("limit", 20, "The maximum amount of runs to show.")
	runsCmd.AddCommand(runsListCmd)
	rootCmd.AddCommand(runsCmd)
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect the discovery run journal.",
}

var runsListCmd = &cobra.Command{
	Use:   "list [--limit <n>]",
	Short: "List recent discovery runs, newest first.",
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

		runs, err := runstore.NewStore(database).List(cmd.Context(), *runsLimit)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"started", "venue", "state", "slots", "duration", "booking url"})
		for _, r := range runs {
			t.AppendRow(table.Row{
				r.StartedAt.Format(time.RFC3339),
				r.Venue,
				r.State,
				r.SlotCount,
				fmt.Sprintf("%dms", r.DurationMs),
				r.BookingUrl,
			})
		}
		t.Render()
	},
}
