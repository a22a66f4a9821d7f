package intercept

import (
	"encoding/json"
	"testing"

	"teetimes-backend/lib/browser"
	"teetimes-backend/lib/browser/browsertest"

	"github.com/stretchr/testify/require"
)

func jsonResponse(url string, status int, body string) browser.Response {
	return browser.Response{
		URL:         url,
		Status:      status,
		ContentType: "application/json; charset=utf-8",
		Body:        []byte(body),
	}
}

func TestObserveFiltersResponses(t *testing.T) {
	cases := []struct {
		name     string
		res      browser.Response
		captured bool
	}{
		{
			name:     "tee time api",
			res:      jsonResponse("https://foreupsoftware.com/index.php/api/booking/times?date=08-25-2026", 200, `[{"time":"08:00"}]`),
			captured: true,
		},
		{
			name:     "api marker without booking keyword",
			res:      jsonResponse("https://example.com/api/weather", 200, `{"temp":72}`),
			captured: false,
		},
		{
			name:     "booking keyword without api marker",
			res:      jsonResponse("https://example.com/booking/faq", 200, `{}`),
			captured: false,
		},
		{
			name:     "non json content type",
			res:      browser.Response{URL: "https://example.com/api/teetimes", Status: 200, ContentType: "text/html", Body: []byte("<html>")},
			captured: false,
		},
		{
			name:     "server error",
			res:      jsonResponse("https://example.com/api/teetimes", 500, `{"error":"boom"}`),
			captured: false,
		},
		{
			name:     "malformed body is swallowed",
			res:      jsonResponse("https://example.com/api/teetimes", 200, `{"time":`),
			captured: false,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			page := browsertest.NewPage()
			interceptor := Attach(page)

			page.Emit(c.res)

			captures := interceptor.Captures()
			if !c.captured {
				require.Empty(t, captures)
				return
			}
			require.Len(t, captures, 1)
			require.Equal(t, c.res.URL, captures[0].URL)
		})
	}
}

func TestBeginStepResetsCaptures(t *testing.T) {
	page := browsertest.NewPage()
	interceptor := Attach(page)

	page.Emit(jsonResponse("https://example.com/api/times?d=1", 200, `[{"time":"08:00"}]`))
	require.Len(t, interceptor.Captures(), 1)

	interceptor.BeginStep()
	require.Empty(t, interceptor.Captures())

	page.Emit(jsonResponse("https://example.com/api/times?d=2", 200, `[{"time":"09:00"}]`))
	page.Emit(jsonResponse("https://example.com/api/times?d=3", 200, `[{"time":"10:00"}]`))
	require.Len(t, interceptor.Captures(), 2)
}

func TestRateLimitedSticks(t *testing.T) {
	page := browsertest.NewPage()
	interceptor := Attach(page)
	require.False(t, interceptor.RateLimited())

	page.Emit(browser.Response{URL: "https://example.com/api/times", Status: 429, ContentType: "application/json"})
	require.True(t, interceptor.RateLimited())

	interceptor.BeginStep()
	require.True(t, interceptor.RateLimited())
}

func TestPayloadIndicatesAvailability(t *testing.T) {
	deeplyNested := `{"a":{"b":{"c":{"d":{"e":{"f":{"g":[{"time":"08:00"}]}}}}}}}`

	cases := []struct {
		name string
		body string
		want bool
	}{
		{
			name: "array of slots",
			body: `[{"time":"09:00","available_spots":2}]`,
			want: true,
		},
		{
			name: "wrapped slot array",
			body: `{"slots":[{"time":"09:00","green_fee":35.0}]}`,
			want: true,
		},
		{
			name: "status object",
			body: `{"status":"ok"}`,
			want: false,
		},
		{
			name: "bare slot object",
			body: `{"time":"07:10","players":4,"holes":18}`,
			want: true,
		},
		{
			name: "vendor envelope",
			body: `{"success":true,"data":{"teeSheet":[{"teetime":"2026-08-25T08:00:00","rate":55}]}}`,
			want: true,
		},
		{
			name: "empty array",
			body: `[]`,
			want: false,
		},
		{
			name: "array of strings",
			body: `["08:00","08:10"]`,
			want: false,
		},
		{
			name: "slots buried past the depth bound",
			body: deeplyNested,
			want: false,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var payload any
			require.NoError(t, json.Unmarshal([]byte(c.body), &payload))
			require.Equal(t, c.want, PayloadIndicatesAvailability(payload))
		})
	}
}
