// Package interact drives forms and clicks on booking pages: a
// credential login flow and a click helper that works around the
// overlays and scripted anchors tee-sheet vendors are fond of.
package interact

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"teetimes-backend/lib/browser"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("teetimes.internal.interact")

// Credentials is a booking-site login pair. Values are handed in
// explicitly by the caller and are never logged or written anywhere.
type Credentials struct {
	Username string
	Password string
}

// Empty reports whether both values are absent, in which case login is
// skipped entirely.
func (c Credentials) Empty() bool {
	return c.Username == "" && c.Password == ""
}

const (
	selectorTimeout = 1500 * time.Millisecond
	fillTimeout     = 3 * time.Second
	clickTimeout    = 2 * time.Second
	navTimeout      = 15 * time.Second
	// window for the post-login redirect or xhr burst to land
	loginSettle = 3 * time.Second
)

// selector tables are ordered data, most specific first, tune them
// here rather than in code
var usernameSelectors = []string{
	`input[name="username"]`,
	`input[id="username"]`,
	`input[type="email"]`,
	`input[name="email"]`,
	`input[name*="user"]`,
	`input[id*="user"]`,
	`input[name*="login"]`,
}

var passwordSelectors = []string{
	`input[type="password"]`,
	`input[name="password"]`,
	`input[id="password"]`,
	`input[name*="pass"]`,
}

var submitSelectors = []string{
	`button[type="submit"]`,
	`input[type="submit"]`,
	`button:has-text("Log In")`,
	`button:has-text("Login")`,
	`button:has-text("Sign In")`,
	`a:has-text("Log In")`,
}

// Login fills and submits a credential form using the ordered selector
// tables. Each stage takes the first selector that resolves, there is
// no refilling or retrying, and the whole attempt is abandoned as soon
// as a stage finds nothing. Reports whether the form was submitted.
func Login(ctx context.Context, page browser.Page, creds Credentials) bool {
	ctx, span := tracer.Start(ctx, "Login")
	defer span.End()

	if !fillFirst(ctx, page, usernameSelectors, creds.Username) {
		span.AddEvent("no username field")
		return false
	}
	if !fillFirst(ctx, page, passwordSelectors, creds.Password) {
		span.AddEvent("no password field")
		return false
	}
	if !clickFirst(ctx, page, submitSelectors) {
		span.AddEvent("no submit control")
		return false
	}

	page.Settle(loginSettle)
	return true
}

func fillFirst(ctx context.Context, page browser.Page, selectors []string, value string) bool {
	for _, selector := range selectors {
		_, err := page.WaitForSelector(selector, selectorTimeout)
		if err != nil {
			continue
		}
		// first selector that resolves wins, a failed fill fails the
		// whole stage
		err = page.Fill(selector, value, fillTimeout)
		if err != nil {
			slog.DebugContext(ctx, "failed to fill login control", "selector", selector, "err", err)
			return false
		}
		return true
	}
	return false
}

func clickFirst(ctx context.Context, page browser.Page, selectors []string) bool {
	for _, selector := range selectors {
		el, err := page.WaitForSelector(selector, selectorTimeout)
		if err != nil {
			continue
		}
		if ClickWithFallback(ctx, page, el) {
			return true
		}
	}
	return false
}

// ClickWithFallback clicks an element by escalating through strategies:
// a native click, a forced click that ignores overlays, a synthetic
// click from page script, and finally direct navigation to the
// element's href. Reports whether any strategy landed. When the click
// navigated somewhere, the new page is given time to finish loading.
func ClickWithFallback(ctx context.Context, page browser.Page, el browser.Element) bool {
	_, span := tracer.Start(ctx, "ClickWithFallback")
	defer span.End()

	before := page.URL()

	clicked := false
	if el.Click(clickTimeout) == nil {
		clicked = true
	} else if el.ForceClick(clickTimeout) == nil {
		clicked = true
		span.AddEvent("forced click")
	} else if el.ScriptClick() == nil {
		clicked = true
		span.AddEvent("scripted click")
	} else if navigateToHref(page, el) {
		clicked = true
		span.AddEvent("navigated to href directly")
	}
	if !clicked {
		return false
	}

	page.Settle(loginSettle)
	if page.URL() != before {
		// the click navigated, let the new document settle too
		page.Settle(loginSettle)
	}
	return true
}

// last-ditch strategy for anchors that swallow every kind of click
func navigateToHref(page browser.Page, el browser.Element) bool {
	href, err := el.Attribute("href")
	if err != nil || href == "" {
		return false
	}
	if base, err := url.Parse(page.URL()); err == nil {
		if resolved, err := base.Parse(href); err == nil {
			href = resolved.String()
		}
	}
	return page.Goto(href, navTimeout) == nil
}
