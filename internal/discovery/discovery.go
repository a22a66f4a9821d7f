// Package discovery walks a venue's public website looking for its
// live tee sheet. The chain starts at the home page, follows one
// plausible booking link at a time, and at every step checks
// intercepted api traffic first and rendered content second, logging
// in through credential walls when a login pair is configured.
//
// The chain only ever recurses forward and is bounded by a depth cap.
// There is no visited-set: candidate selection normally yields strictly
// distinct urls, and when it oscillates the depth cap is what ends the
// walk.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"teetimes-backend/internal/heuristics"
	"teetimes-backend/internal/interact"
	"teetimes-backend/internal/intercept"
	"teetimes-backend/lib/browser"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("teetimes.internal.discovery")

// ErrRateLimited aborts the whole crawl, not just the current venue.
// Retrying into a 429 only digs the block in deeper.
var ErrRateLimited = errors.New("rate limited by upstream service")

// State is the terminal state of a discovery chain.
type State string

const (
	// StateAvailable means bookable tee times were confirmed, by
	// captured api payloads or by the rendered page itself.
	StateAvailable State = "available"
	// StateNoBookingLink means the venue home page had nothing worth
	// probing.
	StateNoBookingLink State = "no_booking_link"
	// StateExhausted means the chain ran out of candidate links.
	StateExhausted State = "exhausted"
	// StateDepthExceeded means the chain hit the depth cap.
	StateDepthExceeded State = "depth_exceeded"
	// StateRateLimited means an upstream service returned 429 and the
	// whole run must stop.
	StateRateLimited State = "rate_limited"
)

// Outcome is what one venue's discovery chain ended with.
type Outcome struct {
	State State
	// ConfirmedUrl is the page the chain confirmed availability on,
	// empty unless State is StateAvailable.
	ConfirmedUrl string
	// Captures holds the confirming probe step's api payloads. Empty
	// when the confirmation was content-only.
	Captures []intercept.Capture
	// ContentOnly marks a confirmation read off the rendered page with
	// no structured payloads behind it.
	ContentOnly bool
	// Depth of the final probe step.
	Depth int
}

type Options struct {
	// MaxDepth bounds the probe chain, depth 0 is the first candidate
	// page. Defaults to 5.
	MaxDepth int
	// NavTimeout bounds a single navigation.
	NavTimeout time.Duration
	// SettleTimeout bounds the post-navigation wait for the network to
	// go quiet.
	SettleTimeout time.Duration
}

const (
	defaultMaxDepth      = 5
	defaultNavTimeout    = 20 * time.Second
	defaultSettleTimeout = 5 * time.Second
)

type Engine struct {
	browser browser.Browser
	creds   interact.Credentials
	opts    Options
}

// NewEngine wires a discovery engine to a running browser. Credentials
// may be empty, in which case login walls end the current path instead
// of being logged through. The credential pair is held for the life of
// the engine and never logged.
func NewEngine(b browser.Browser, creds interact.Credentials, opts Options) Engine {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = defaultMaxDepth
	}
	if opts.NavTimeout <= 0 {
		opts.NavTimeout = defaultNavTimeout
	}
	if opts.SettleTimeout <= 0 {
		opts.SettleTimeout = defaultSettleTimeout
	}
	return Engine{browser: b, creds: creds, opts: opts}
}

// Discover runs the full chain for one venue starting at its public
// home page. One page backs the whole chain and is always closed
// before returning, whatever path the chain took. The only errors are
// the fatal ones: a page that cannot be opened, and ErrRateLimited.
func (e Engine) Discover(ctx context.Context, homeUrl string) (Outcome, error) {
	ctx, span := tracer.Start(ctx, "Discover")
	defer span.End()
	span.SetAttributes(attribute.String("home_url", homeUrl))

	page, err := e.browser.NewPage()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open page")
		return Outcome{}, fmt.Errorf("open page: %w", err)
	}
	defer page.Close()

	// attach before the first navigation so no response slips by
	icpt := intercept.Attach(page)

	candidate := e.seekBookingLink(ctx, page, homeUrl)
	if icpt.RateLimited() {
		span.SetStatus(codes.Error, "rate limited")
		return Outcome{State: StateRateLimited}, ErrRateLimited
	}
	if candidate == "" {
		slog.InfoContext(ctx, "no booking link on home page", "url", homeUrl)
		return Outcome{State: StateNoBookingLink}, nil
	}

	outcome, err := e.probe(ctx, page, icpt, candidate, 0)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(outcome.State))
		return outcome, err
	}

	slog.InfoContext(
		ctx, "discovery chain finished",
		"home_url", homeUrl,
		"state", string(outcome.State),
		"confirmed_url", outcome.ConfirmedUrl,
		"captures", len(outcome.Captures),
		"depth", outcome.Depth,
	)
	span.SetAttributes(attribute.String("state", string(outcome.State)))
	return outcome, nil
}

// seekBookingLink loads the venue home page and picks the first
// plausible booking link off it. An unreachable home page yields no
// candidate, same as a page without one.
func (e Engine) seekBookingLink(ctx context.Context, page browser.Page, homeUrl string) string {
	ctx, span := tracer.Start(ctx, "engine:SeekBookingUrl")
	defer span.End()

	err := page.Goto(homeUrl, e.opts.NavTimeout)
	if err != nil {
		slog.WarnContext(ctx, "failed to load venue home page", "url", homeUrl, "err", err)
		span.RecordError(err)
		return ""
	}
	page.Settle(e.opts.SettleTimeout)

	content, ok := e.pageContent(ctx, page)
	if !ok {
		return ""
	}
	return heuristics.FindBookingCandidate(content)
}

// probe is one load-and-inspect step of the chain. Checked in order:
// depth cap, api payloads, rendered content, login wall, next
// candidate link.
func (e Engine) probe(ctx context.Context, page browser.Page, icpt *intercept.Interceptor, target string, depth int) (Outcome, error) {
	if depth > e.opts.MaxDepth {
		slog.InfoContext(ctx, "probe chain hit depth cap", "url", target, "depth", depth)
		return Outcome{State: StateDepthExceeded, Depth: depth}, nil
	}

	ctx, span := tracer.Start(ctx, "engine:Probe")
	defer span.End()
	span.SetAttributes(
		attribute.String("url", target),
		attribute.Int("depth", depth),
	)

	icpt.BeginStep()
	err := page.Goto(target, e.opts.NavTimeout)
	if err != nil {
		// an unreachable target ends quietly, the page we are still on
		// may link somewhere better
		slog.WarnContext(ctx, "probe navigation failed", "url", target, "err", err)
		span.AddEvent("navigation failed")
	} else {
		page.Settle(e.opts.SettleTimeout)
	}
	if icpt.RateLimited() {
		span.SetStatus(codes.Error, "rate limited")
		return Outcome{State: StateRateLimited, Depth: depth}, ErrRateLimited
	}

	if outcome, confirmed := e.confirmAvailability(ctx, page, icpt, depth); confirmed {
		return outcome, nil
	}

	content, _ := e.pageContent(ctx, page)

	if heuristics.LooksLikeLoginWall(content) && !e.creds.Empty() {
		span.AddEvent("login wall")
		if interact.Login(ctx, page, e.creds) {
			slog.InfoContext(ctx, "submitted login form", "url", page.URL())
		} else {
			slog.WarnContext(ctx, "login attempt failed", "url", page.URL())
		}
		// success signal or not, the page state may have moved, silent
		// redirects included, so check exactly once more
		if icpt.RateLimited() {
			span.SetStatus(codes.Error, "rate limited")
			return Outcome{State: StateRateLimited, Depth: depth}, ErrRateLimited
		}
		if outcome, confirmed := e.confirmAvailability(ctx, page, icpt, depth); confirmed {
			return outcome, nil
		}
		content, _ = e.pageContent(ctx, page)
	}

	next := heuristics.FindNextCandidate(content)
	if next == "" || next == target || next == page.URL() {
		slog.InfoContext(ctx, "no further candidate links", "url", page.URL(), "depth", depth)
		return Outcome{State: StateExhausted, Depth: depth}, nil
	}
	return e.probe(ctx, page, icpt, next, depth+1)
}

// confirmAvailability runs the payload check then the content check
// against the current page state. Structured api evidence wins over
// content because it carries the actual slots.
func (e Engine) confirmAvailability(ctx context.Context, page browser.Page, icpt *intercept.Interceptor, depth int) (Outcome, bool) {
	captures := icpt.Captures()
	for _, capture := range captures {
		if intercept.PayloadIndicatesAvailability(capture.Payload) {
			slog.InfoContext(ctx, "api payload confirms availability", "url", capture.URL)
			return Outcome{
				State:        StateAvailable,
				ConfirmedUrl: page.URL(),
				Captures:     captures,
				Depth:        depth,
			}, true
		}
	}

	content, ok := e.pageContent(ctx, page)
	if ok && heuristics.LooksAvailable(content) {
		slog.InfoContext(ctx, "page content confirms availability", "url", page.URL())
		return Outcome{
			State:        StateAvailable,
			ConfirmedUrl: page.URL(),
			ContentOnly:  true,
			Depth:        depth,
		}, true
	}

	return Outcome{}, false
}

// pageContent renders the current page into the normalized model the
// heuristics run on. Failures are swallowed, a page that cannot be
// read just looks empty.
func (e Engine) pageContent(ctx context.Context, page browser.Page) (heuristics.PageContent, bool) {
	markup, err := page.Content()
	if err != nil {
		slog.WarnContext(ctx, "failed to read page content", "url", page.URL(), "err", err)
		return heuristics.PageContent{}, false
	}
	base, err := url.Parse(page.URL())
	if err != nil {
		base = nil
	}
	content, err := heuristics.ParseContent(ctx, markup, base)
	if err != nil {
		slog.WarnContext(ctx, "failed to parse page content", "url", page.URL(), "err", err)
		return heuristics.PageContent{}, false
	}
	return content, true
}
