package venuestore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"teetimes-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileIsEmpty(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:venuestore")
	defer cleanup()

	store := NewStore(filepath.Join(t.TempDir(), "golf_courses.json"))
	venues, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, venues)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "golf_courses.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"not":"a list"`), 0644))

	_, err := NewStore(path).Load(context.Background())
	require.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "golf_courses.json")
	store := NewStore(path)
	ctx := context.Background()

	venues := []Venue{
		{
			Name:       "Cypress Ridge",
			Url:        "https://cypressridge.example.com",
			BookingUrl: "https://app.foreupsoftware.com/index.php/booking/19348",
			TeeTimes: []TeeTime{
				{Time: "2026-08-25 07:30", AvailableSpots: 4, GreenFee: 42, Holes: 18},
			},
			TeeTimeSummary: &Summary{
				TotalSlots:          1,
				TotalAvailableSpots: 4,
				PriceRange:          PriceRange{Min: 42, Max: 42},
				DateRange:           DateRange{Earliest: "2026-08-25 07:30", Latest: "2026-08-25 07:30"},
			},
			LastUpdated: "2026-08-25T06:00:00-07:00",
		},
		{Name: "Morro Bay", Url: ""},
	}

	require.NoError(t, store.Save(ctx, venues))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, venues, loaded)
}

func TestFileUsesOriginalFieldNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "golf_courses.json")
	store := NewStore(path)
	ctx := context.Background()

	err := store.Save(ctx, []Venue{{
		Name:           "Cypress Ridge",
		Url:            "https://cypressridge.example.com",
		BookingUrl:     "https://app.foreupsoftware.com/index.php/booking",
		TeeTimes:       []TeeTime{{Time: "07:30", AvailableSpots: 2, GreenFee: 40, Holes: 18}},
		TeeTimeSummary: &Summary{TotalSlots: 1},
		LastUpdated:    "2026-08-25T06:00:00-07:00",
	}})
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	// other tooling reads this file by the original key names, they are
	// part of the contract
	var generic []map[string]any
	require.NoError(t, json.Unmarshal(raw, &generic))
	require.Len(t, generic, 1)
	for _, key := range []string{"name", "url", "booking_url", "tee_times", "tee_time_summary", "last_updated"} {
		require.Contains(t, generic[0], key)
	}
	slot := generic[0]["tee_times"].([]any)[0].(map[string]any)
	for _, key := range []string{"time", "available_spots", "green_fee", "holes"} {
		require.Contains(t, slot, key)
	}
}
