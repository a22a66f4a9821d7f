package commands

import (
	"fmt"
	"os"

	"teetimes-backend/cmd/teetimes-cli/utils"
	"teetimes-backend/internal/venuestore"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	venuesCmd.AddCommand(venuesListCmd)
	venuesCmd.AddCommand(venuesAddCmd)
	rootCmd.AddCommand(venuesCmd)
}

var venuesCmd = &cobra.Command{
	Use:   "venues",
	Short: "Inspect and edit the tracked venues.",
}

var venuesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked venues and what has been discovered for them.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()

		venues, err := venuestore.NewStore(cfg.VenuesFile).Load(cmd.Context())
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"name", "url", "booking url", "slots", "last updated"})
		for _, v := range venues {
			t.AppendRow(table.Row{v.Name, v.Url, v.BookingUrl, len(v.TeeTimes), v.LastUpdated})
		}
		t.Render()
	},
}

var venuesAddCmd = &cobra.Command{
	Use:   "add <name> <website url>",
	Short: "Add a venue to track.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		store := venuestore.NewStore(cfg.VenuesFile)

		venues, err := store.Load(cmd.Context())
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		for _, v := range venues {
			if v.Name == args[0] {
				fmt.Fprintf(os.Stderr, "venue %q already exists\n", args[0])
				os.Exit(1)
			}
		}

		venues = append(venues, venuestore.Venue{Name: args[0], Url: args[1]})
		err = store.Save(cmd.Context(), venues)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
	},
}
