package runstore

import (
	"context"
	"testing"
	"time"

	"teetimes-backend/lib/testutil"

	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "internal/runstore",
		DbSchema: Schema,
	})
	defer cleanup()
	store := NewStore(setup.DB)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	{
		runs, err := store.List(ctx, 10)
		if err != nil {
			t.Fatal(err)
		}
		require.Len(t, runs, 0)
	}
	{
		first := Run{
			Id:         "run-aaaa",
			Venue:      "Cypress Ridge",
			State:      "exhausted",
			SlotCount:  0,
			DurationMs: 1200,
			StartedAt:  time.Unix(1756100000, 0),
		}
		second := Run{
			Id:         "run-bbbb",
			Venue:      "Cypress Ridge",
			State:      "available",
			BookingUrl: "https://app.foreupsoftware.com/index.php/booking/19348",
			SlotCount:  12,
			DurationMs: 3400,
			StartedAt:  time.Unix(1756103600, 0),
		}
		if err := store.Record(ctx, first); err != nil {
			t.Fatal(err)
		}
		if err := store.Record(ctx, second); err != nil {
			t.Fatal(err)
		}

		runs, err := store.List(ctx, 10)
		if err != nil {
			t.Fatal(err)
		}
		require.Len(t, runs, 2)
		// newest first
		require.Equal(t, "run-bbbb", runs[0].Id)
		require.Equal(t, "available", runs[0].State)
		require.Equal(t, 12, runs[0].SlotCount)
		require.Equal(t, int64(3400), runs[0].DurationMs)
		require.Equal(t, second.StartedAt.Unix(), runs[0].StartedAt.Unix())
		require.Equal(t, "run-aaaa", runs[1].Id)

		limited, err := store.List(ctx, 1)
		if err != nil {
			t.Fatal(err)
		}
		require.Len(t, limited, 1)
		require.Equal(t, "run-bbbb", limited[0].Id)
	}
}
