package alerts

import (
	"context"
	"testing"

	"teetimes-backend/internal/venuestore"

	"github.com/stretchr/testify/require"
)

func TestDisabledMailerIsNoop(t *testing.T) {
	mailer := NewMailer(SmtpConfig{}, []string{"ops@example.com"})
	err := mailer.NotifyAvailability(context.Background(), venuestore.Venue{Name: "Cypress Ridge"})
	require.NoError(t, err)

	// configured server but nobody to send to
	mailer = NewMailer(SmtpConfig{Server: "smtp.example.com", Port: 587, EmailAddress: "bot@example.com"}, nil)
	err = mailer.NotifyAvailability(context.Background(), venuestore.Venue{Name: "Cypress Ridge"})
	require.NoError(t, err)
}

func TestComposeBody(t *testing.T) {
	venue := venuestore.Venue{
		Name:       "Cypress Ridge",
		Url:        "https://cypressridge.example.com",
		BookingUrl: "https://app.foreupsoftware.com/index.php/booking/19348",
		TeeTimeSummary: &venuestore.Summary{
			TotalSlots:          3,
			TotalAvailableSpots: 7,
			PriceRange:          venuestore.PriceRange{Min: 24, Max: 52},
			DateRange:           venuestore.DateRange{Earliest: "07:15", Latest: "16:00"},
		},
		LastUpdated: "2026-08-25T06:00:00Z",
	}

	body := composeBody(venue)
	require.Contains(t, body, "Cypress Ridge has tee times open for booking.")
	require.Contains(t, body, "https://app.foreupsoftware.com/index.php/booking/19348")
	require.Contains(t, body, "3 slots, 7 spots total")
	require.Contains(t, body, "$24.00-$52.00")
	require.Contains(t, body, "07:15 to 16:00")
	require.Contains(t, body, "2026-08-25T06:00:00Z")
}

func TestComposeBodyWithoutSummary(t *testing.T) {
	body := composeBody(venuestore.Venue{Name: "Cypress Ridge", LastUpdated: "2026-08-25T06:00:00Z"})
	require.Contains(t, body, "Cypress Ridge")
	require.NotContains(t, body, "slots")
	require.NotContains(t, body, "Book at")
}
