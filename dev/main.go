package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"teetimes-backend/internal/runstore"
	"teetimes-backend/internal/venuestore"

	_ "modernc.org/sqlite"
)

// sampleVenues gives a fresh checkout something to crawl against.
var sampleVenues = []venuestore.Venue{
	{Name: "Cypress Ridge Golf Course", Url: "https://www.cypressridge.example.com"},
	{Name: "Harbor Pines Golf Club", Url: "https://www.harborpines.example.com"},
}

func createDb(path string) error {
	_, err := os.Stat(path)
	if err == nil {
		fmt.Println("database already created at", path)
		return nil
	}

	fmt.Println("creating database at", path)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.Exec(runstore.Schema)
	return err
}

func createVenuesFile(path string) error {
	_, err := os.Stat(path)
	if err == nil {
		fmt.Println("venues file already created at", path)
		return nil
	}

	fmt.Println("creating venues file at", path)
	return venuestore.NewStore(path).Save(context.Background(), sampleVenues)
}

func create(recreate bool) error {
	_, err := os.Stat("go.mod")
	if os.IsNotExist(err) {
		return fmt.Errorf("the dev environment must be created in the repository root (the same directory as the 'go.mod' file)")
	}

	if recreate {
		err = os.RemoveAll("dev/.state")
		if err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	err = os.MkdirAll("dev/.state", 0777)
	if err != nil && !os.IsExist(err) {
		return err
	}

	err = createDb(filepath.Join("dev", ".state", "teetimes.db"))
	if err != nil {
		return err
	}
	err = createVenuesFile(filepath.Join("dev", ".state", "venues.json"))
	if err != nil {
		return err
	}

	fmt.Println(`point crawlerd/teetimes-cli at the dev state with a config.json5 like:
{
  venues_file: "dev/.state/venues.json",
  database: { file: "dev/.state/teetimes.db" },
  headless: false,
  crawl_on_start: true,
}`)
	return nil
}

func main() {
	recreate := flag.Bool("recreate", false, "recreate the dev environment from scratch")
	flag.Parse()

	err := create(*recreate)
	if err != nil {
		slog.Error("failed to create dev environment", "err", err.Error())
		os.Exit(1)
	}

	slog.Info("dev environment created successfully!")
}
