// Package alerts emails the operator when a venue that previously had
// no bookable slots turns up availability.
package alerts

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"teetimes-backend/internal/venuestore"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("teetimes.internal.alerts")

type SmtpConfig struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
}

func (c SmtpConfig) Enabled() bool {
	return c.Server != "" && c.EmailAddress != ""
}

type Mailer struct {
	config     SmtpConfig
	recipients []string
}

func NewMailer(config SmtpConfig, recipients []string) Mailer {
	return Mailer{config: config, recipients: recipients}
}

// NotifyAvailability sends a plain-text summary of the venue's newly
// discovered tee times. A mailer without smtp config or recipients is
// a no-op so callers don't have to special-case it.
func (m Mailer) NotifyAvailability(ctx context.Context, venue venuestore.Venue) error {
	if !m.config.Enabled() || len(m.recipients) == 0 {
		return nil
	}

	ctx, span := tracer.Start(ctx, "NotifyAvailability")
	defer span.End()

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("Tee Times <%s>", m.config.EmailAddress)
	mail.To = m.recipients
	mail.Subject = fmt.Sprintf("Tee times available: %s", venue.Name)
	mail.Text = []byte(composeBody(venue))

	err := mail.Send(
		fmt.Sprintf("%s:%d", m.config.Server, m.config.Port),
		smtp.PlainAuth("", m.config.EmailAddress, m.config.Password, m.config.Server),
	)
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(fmt.Sprintf("%s:%d", m.config.Server, m.config.Port), nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send alert email")
		return err
	}
	return nil
}

func composeBody(venue venuestore.Venue) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s has tee times open for booking.\n\n", venue.Name)
	if venue.BookingUrl != "" {
		fmt.Fprintf(&b, "Book at: %s\n", venue.BookingUrl)
	}

	summary := venue.TeeTimeSummary
	if summary != nil && summary.TotalSlots > 0 {
		fmt.Fprintf(&b, "%d slots, %d spots total\n", summary.TotalSlots, summary.TotalAvailableSpots)
		fmt.Fprintf(&b, "Green fees $%.2f-$%.2f\n", summary.PriceRange.Min, summary.PriceRange.Max)
		if summary.DateRange.Earliest != "" {
			fmt.Fprintf(&b, "Times from %s to %s\n", summary.DateRange.Earliest, summary.DateRange.Latest)
		}
	}

	fmt.Fprintf(&b, "\nLast checked: %s\n", venue.LastUpdated)
	return b.String()
}
