// Package intercept captures tee-sheet api payloads off a page's
// network traffic and decides whether a payload carries bookable slots.
package intercept

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"teetimes-backend/lib/browser"
	"teetimes-backend/lib/textutil"
)

// Capture is one decoded JSON payload plucked off the wire during a
// probe step, together with the url it came from.
type Capture struct {
	URL     string
	Payload any
}

// a response url must contain the api marker and one of the keywords
// to be captured
const apiMarker = "api"

var captureKeywords = []string{
	"teetime",
	"tee-time",
	"tee_time",
	"times",
	"booking",
	"book",
	"availability",
}

// Interceptor watches a page's network responses and keeps the JSON
// payloads that look like tee-sheet data. Captures are scoped to one
// probe step, BeginStep clears them.
type Interceptor struct {
	mu          sync.Mutex
	captures    []Capture
	rateLimited bool
}

// Attach must be called before the first navigation so no response is
// missed.
func Attach(page browser.Page) *Interceptor {
	i := &Interceptor{}
	page.OnResponse(i.observe)
	return i
}

func (i *Interceptor) observe(res browser.Response) {
	if res.Status == http.StatusTooManyRequests {
		i.mu.Lock()
		i.rateLimited = true
		i.mu.Unlock()
		return
	}
	if res.Status < 200 || res.Status >= 300 {
		return
	}
	if !strings.Contains(res.ContentType, "json") {
		return
	}
	url := strings.ToLower(res.URL)
	if !strings.Contains(url, apiMarker) || !textutil.ContainsAny(url, captureKeywords) {
		return
	}

	var payload any
	err := json.Unmarshal(res.Body, &payload)
	if err != nil {
		// malformed bodies are dropped so the heuristics only ever
		// see well-formed json
		slog.Debug("dropping malformed api payload", "url", res.URL, "err", err)
		return
	}

	i.mu.Lock()
	i.captures = append(i.captures, Capture{URL: res.URL, Payload: payload})
	i.mu.Unlock()
}

// BeginStep discards the captures of the previous probe step.
func (i *Interceptor) BeginStep() {
	i.mu.Lock()
	i.captures = nil
	i.mu.Unlock()
}

// Captures snapshots the current step's capture list.
func (i *Interceptor) Captures() []Capture {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := make([]Capture, len(i.captures))
	copy(out, i.captures)
	return out
}

// RateLimited reports whether any response on this page came back 429.
// Once set it stays set, the whole run is expected to stop.
func (i *Interceptor) RateLimited() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.rateLimited
}
