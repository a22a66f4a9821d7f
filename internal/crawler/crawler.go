// Package crawler drives a full discovery pass over the venue file:
// one serial discovery run per venue, results folded back into the
// venue records and journaled.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"teetimes-backend/internal/alerts"
	"teetimes-backend/internal/discovery"
	"teetimes-backend/internal/interact"
	"teetimes-backend/internal/recorder"
	"teetimes-backend/internal/runstore"
	"teetimes-backend/internal/venuestore"
	"teetimes-backend/lib/browser"
	"teetimes-backend/lib/timezone"

	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

var tracer = otel.Tracer("teetimes.internal.crawler")
var meter = otel.Meter("teetimes.internal.crawler")

var venuesCrawled, _ = meter.Int64Counter(
	"crawler.venues_crawled_total",
	metric.WithDescription("The total amount of venue discovery runs that reached a terminal state."),
)

type Options struct {
	Browser     browser.Browser
	Credentials interact.Credentials
	Discovery   discovery.Options
	Venues      venuestore.Store
	// Runs is optional, runs are journaled when it is set.
	Runs *runstore.Store
	// Verifier is optional, a newly discovered booking url is
	// health-checked before it is persisted when it is set.
	Verifier *recorder.Verifier
	Mailer   alerts.Mailer
}

type Crawler struct {
	opts   Options
	engine discovery.Engine
}

func New(opts Options) Crawler {
	return Crawler{
		opts:   opts,
		engine: discovery.NewEngine(opts.Browser, opts.Credentials, opts.Discovery),
	}
}

// Run crawls every venue that has a website url. Venues are visited
// serially, one browser page at a time. A rate-limited upstream aborts
// the rest of the pass, whatever was learned before that is still
// saved.
func (c Crawler) Run(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()

	venues, err := c.opts.Venues.Load(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load venues")
		return err
	}
	if len(venues) == 0 {
		slog.WarnContext(ctx, "no venues to crawl")
		return nil
	}

	var aborted error
	for i := range venues {
		venue := &venues[i]
		if venue.Url == "" {
			slog.InfoContext(ctx, "venue has no website url, skipping", "venue", venue.Name)
			continue
		}

		err := c.crawlVenue(ctx, venue)
		if errors.Is(err, discovery.ErrRateLimited) {
			slog.ErrorContext(ctx, "upstream rate limit hit, aborting pass", "venue", venue.Name)
			aborted = fmt.Errorf("crawl aborted at %q: %w", venue.Name, err)
			break
		}
		if err != nil {
			slog.ErrorContext(ctx, "venue crawl failed", "venue", venue.Name, "err", err)
		}
	}

	if err := c.opts.Venues.Save(ctx, venues); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "save venues")
		return errors.Join(aborted, err)
	}
	return aborted
}

func (c Crawler) crawlVenue(ctx context.Context, venue *venuestore.Venue) error {
	ctx, span := tracer.Start(ctx, "crawlVenue")
	defer span.End()
	span.SetAttributes(attribute.String("venue", venue.Name))

	started := timezone.Now()
	outcome, err := c.engine.Discover(ctx, venue.Url)
	if err != nil && !errors.Is(err, discovery.ErrRateLimited) {
		// no terminal state was reached, leave the record alone
		span.RecordError(err)
		span.SetStatus(codes.Error, "discovery failed")
		return err
	}
	result := err

	if outcome.State == discovery.StateAvailable && c.opts.Verifier != nil && venue.BookingUrl == "" {
		verr := c.opts.Verifier.VerifyBookingUrl(ctx, recorder.BookingUrl(outcome))
		if errors.Is(verr, discovery.ErrRateLimited) {
			outcome.State = discovery.StateRateLimited
			result = verr
		} else if verr != nil {
			slog.WarnContext(ctx, "booking url failed verification", "venue", venue.Name, "err", verr)
		}
	}

	prevSlots := len(venue.TeeTimes)
	written := 0
	if outcome.State == discovery.StateAvailable {
		written = recorder.Apply(venue, outcome, timezone.Now())
	} else {
		recorder.Touch(venue, timezone.Now())
	}

	if written > 0 && prevSlots == 0 {
		if err := c.opts.Mailer.NotifyAvailability(ctx, *venue); err != nil {
			slog.ErrorContext(ctx, "failed to send availability alert", "venue", venue.Name, "err", err)
		}
	}

	venuesCrawled.Add(ctx, 1)
	c.journal(ctx, *venue, outcome, written, started)
	return result
}

// journal is best-effort, a failed insert never fails the venue.
func (c Crawler) journal(ctx context.Context, venue venuestore.Venue, outcome discovery.Outcome, slotCount int, started time.Time) {
	if c.opts.Runs == nil {
		return
	}

	id, err := random.String(12)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate run id", "err", err)
		return
	}

	bookingUrl := ""
	if outcome.State == discovery.StateAvailable {
		bookingUrl = venue.BookingUrl
	}
	err = c.opts.Runs.Record(ctx, runstore.Run{
		Id:         id,
		Venue:      venue.Name,
		State:      string(outcome.State),
		BookingUrl: bookingUrl,
		SlotCount:  slotCount,
		DurationMs: time.Since(started).Milliseconds(),
		StartedAt:  started,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to journal run", "venue", venue.Name, "err", err)
	}
}
