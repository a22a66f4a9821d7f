// Package browser wraps a headless Chromium behind small interfaces so
// scraping logic can run against a scripted fake in tests.
package browser

import "time"

type LaunchOptions struct {
	Headless  bool
	UserAgent string
}

type Browser interface {
	// NewPage opens a page in a fresh, isolated browser context.
	NewPage() (Page, error)
	Close() error
}

// Response is a completed network response observed on a page. Body is
// only populated for json responses, which is all the capture layer
// ever inspects.
type Response struct {
	URL         string
	Status      int
	ContentType string
	Body        []byte
}

type Page interface {
	Goto(url string, timeout time.Duration) error
	// Settle waits for the network to go quiet, best effort.
	Settle(timeout time.Duration)
	Content() (string, error)
	URL() string
	QueryAll(selector string) ([]Element, error)
	WaitForSelector(selector string, timeout time.Duration) (Element, error)
	Fill(selector, value string, timeout time.Duration) error
	// OnResponse registers a listener for completed network responses,
	// it must be called before navigation to observe everything.
	OnResponse(listener func(Response))
	Close() error
}

type Element interface {
	Text() (string, error)
	Attribute(name string) (string, error)
	// Click performs an actionability-gated native click.
	Click(timeout time.Duration) error
	// ForceClick skips the actionability checks.
	ForceClick(timeout time.Duration) error
	// ScriptClick dispatches a click from page script, for controls
	// that native input cannot reach.
	ScriptClick() error
}
