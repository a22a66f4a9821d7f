package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"teetimes-backend/internal/discovery"
	"teetimes-backend/internal/recorder"
	"teetimes-backend/internal/runstore"
	"teetimes-backend/internal/venuestore"
	"teetimes-backend/lib/browser"
	"teetimes-backend/lib/browser/browsertest"
	"teetimes-backend/lib/testutil"

	"github.com/stretchr/testify/require"
)

const slotBody = `[{"time":"10:00","available_spots":4,"green_fee":35}]`

func setupStores(t *testing.T) (venuestore.Store, *runstore.Store, func()) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "internal/crawler",
		DbSchema: runstore.Schema,
	})
	runs := runstore.NewStore(setup.DB)
	venues := venuestore.NewStore(filepath.Join(t.TempDir(), "venues.json"))
	return venues, &runs, cleanup
}

func TestRun(t *testing.T) {
	venues, runs, cleanup := setupStores(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, venues.Save(ctx, []venuestore.Venue{
		{Name: "Cypress Ridge", Url: "https://cypressridge.example.com"},
		{Name: "Harbor Pines"},
		{Name: "Stonegate", Url: "https://stonegate.example.com"},
	}))

	page := browsertest.NewPage()
	// cypress ridge: the booking page fires a tee sheet xhr
	page.MarkupByURL["https://cypressridge.example.com"] =
		`<html><body><a href="/book">Book Now</a></body></html>`
	page.MarkupByURL["https://cypressridge.example.com/book"] =
		`<html><body><div id="app"></div></body></html>`
	page.ResponsesByURL["https://cypressridge.example.com/book"] = []browser.Response{{
		URL:         "https://cypressridge.example.com/api/booking/times",
		Status:      200,
		ContentType: "application/json",
		Body:        []byte(slotBody),
	}}
	// stonegate never links to a booking page at all
	page.MarkupByURL["https://stonegate.example.com"] =
		`<html><body><a href="/about">About us</a></body></html>`

	c := New(Options{
		Browser: &browsertest.Browser{Page: page},
		Venues:  venues,
		Runs:    runs,
	})
	require.NoError(t, c.Run(ctx))

	saved, err := venues.Load(ctx)
	require.NoError(t, err)
	require.Len(t, saved, 3)

	require.Equal(t, "https://cypressridge.example.com/api/booking/times", saved[0].BookingUrl)
	require.Len(t, saved[0].TeeTimes, 1)
	require.Equal(t, 1, saved[0].TeeTimeSummary.TotalSlots)
	require.NotEmpty(t, saved[0].LastUpdated)

	// no url, never crawled
	require.Empty(t, saved[1].LastUpdated)

	require.Empty(t, saved[2].BookingUrl)
	require.NotEmpty(t, saved[2].LastUpdated)

	rows, err := runs.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byVenue := map[string]runstore.Run{}
	for _, r := range rows {
		byVenue[r.Venue] = r
	}
	require.Equal(t, string(discovery.StateAvailable), byVenue["Cypress Ridge"].State)
	require.Equal(t, 1, byVenue["Cypress Ridge"].SlotCount)
	require.Equal(t, "https://cypressridge.example.com/api/booking/times", byVenue["Cypress Ridge"].BookingUrl)
	require.Equal(t, string(discovery.StateNoBookingLink), byVenue["Stonegate"].State)
	require.Equal(t, 0, byVenue["Stonegate"].SlotCount)
}

func TestRunAbortsOnRateLimit(t *testing.T) {
	venues, runs, cleanup := setupStores(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, venues.Save(ctx, []venuestore.Venue{
		{Name: "Cypress Ridge", Url: "https://cypressridge.example.com"},
		{Name: "Stonegate", Url: "https://stonegate.example.com"},
	}))

	page := browsertest.NewPage()
	page.MarkupByURL["https://cypressridge.example.com"] =
		`<html><body><a href="/book">Book Now</a></body></html>`
	page.ResponsesByURL["https://cypressridge.example.com"] = []browser.Response{{
		URL:         "https://cypressridge.example.com/api/times",
		Status:      429,
		ContentType: "application/json",
	}}
	page.MarkupByURL["https://stonegate.example.com"] =
		`<html><body><a href="/book">Book Now</a></body></html>`

	c := New(Options{
		Browser: &browsertest.Browser{Page: page},
		Venues:  venues,
		Runs:    runs,
	})
	err := c.Run(ctx)
	require.ErrorIs(t, err, discovery.ErrRateLimited)

	// the pass stopped before the second venue
	require.NotContains(t, page.NavLog, "https://stonegate.example.com")

	// progress so far was still saved
	saved, err := venues.Load(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, saved[0].LastUpdated)
	require.Empty(t, saved[1].LastUpdated)

	rows, err := runs.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, string(discovery.StateRateLimited), rows[0].State)
}

func TestRunVerifiesBookingUrls(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.WriteHeader(http.StatusOK)
		case "/limited":
			w.WriteHeader(http.StatusTooManyRequests)
		}
	}))
	defer server.Close()

	venues, runs, cleanup := setupStores(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, venues.Save(ctx, []venuestore.Venue{
		{Name: "Cypress Ridge", Url: "https://cypressridge.example.com"},
		{Name: "Stonegate", Url: "https://stonegate.example.com"},
	}))

	page := browsertest.NewPage()
	for home, path := range map[string]string{
		"https://cypressridge.example.com": "/ok",
		"https://stonegate.example.com":    "/limited",
	} {
		page.MarkupByURL[home] = `<html><body><a href="/book">Book Now</a></body></html>`
		page.MarkupByURL[home+"/book"] = `<html><body><div id="app"></div></body></html>`
		page.ResponsesByURL[home+"/book"] = []browser.Response{{
			URL:         server.URL + path,
			Status:      200,
			ContentType: "application/json",
			Body:        []byte(slotBody),
		}}
	}

	verifier := recorder.NewVerifier()
	c := New(Options{
		Browser:  &browsertest.Browser{Page: page},
		Venues:   venues,
		Runs:     runs,
		Verifier: &verifier,
	})
	err := c.Run(ctx)
	require.ErrorIs(t, err, discovery.ErrRateLimited)

	saved, err := venues.Load(ctx)
	require.NoError(t, err)

	// the verified url was persisted, the rate-limited one was not
	require.Equal(t, server.URL+"/ok", saved[0].BookingUrl)
	require.Len(t, saved[0].TeeTimes, 1)
	require.Empty(t, saved[1].BookingUrl)
	require.Empty(t, saved[1].TeeTimes)
	require.NotEmpty(t, saved[1].LastUpdated)

	rows, err := runs.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	byVenue := map[string]runstore.Run{}
	for _, r := range rows {
		byVenue[r.Venue] = r
	}
	require.Equal(t, string(discovery.StateAvailable), byVenue["Cypress Ridge"].State)
	require.Equal(t, string(discovery.StateRateLimited), byVenue["Stonegate"].State)
}
