package heuristics

import (
	"context"
	"net/url"
	"testing"

	"teetimes-backend/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, markup, pageUrl string) PageContent {
	t.Helper()
	base, err := url.Parse(pageUrl)
	require.NoError(t, err)
	content, err := ParseContent(context.Background(), markup, base)
	require.NoError(t, err)
	return content
}

func TestParseContent(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:heuristics")
	defer cleanup()

	markup := `<html><body>
		<h1>Cypress Ridge</h1>
		<a href="javascript:void(0)">Menu</a>
		<a href="#top">Top</a>
		<a href="mailto:shop@cypressridge.example.com">Email us</a>
		<a href="/Tee-Times">BOOK NOW</a>
		<input type="email" name="newsletter">
		<form id="search" action="/find"></form>
	</body></html>`
	content := mustParse(t, markup, "https://cypressridge.example.com")

	require.Len(t, content.Anchors, 1)
	require.Equal(t, "book now", content.Anchors[0].Name)
	require.Equal(t, "https://cypressridge.example.com/Tee-Times", content.Anchors[0].Href)
	require.Len(t, content.Inputs, 1)
	require.Equal(t, "email", content.Inputs[0].Type)
	require.Contains(t, content.Text, "cypress ridge")
	require.Len(t, content.Forms, 1)
	require.Contains(t, content.Forms[0], "search")
}

func TestLooksLikeLoginWall(t *testing.T) {
	cases := []struct {
		name   string
		markup string
		expect bool
	}{
		{
			name:   "password input",
			markup: `<html><body><form action="/do"><input type="password" name="pw"></form></body></html>`,
			expect: true,
		},
		{
			name:   "member login text",
			markup: `<html><body><h1>Member Login</h1><p>enter your details</p></body></html>`,
			expect: true,
		},
		{
			name:   "username input",
			markup: `<html><body><input type="text" name="username"></body></html>`,
			expect: true,
		},
		{
			name:   "login styled form",
			markup: `<html><body><form class="login-form" action="/session"><input type="text" name="q"></form></body></html>`,
			expect: true,
		},
		{
			name:   "plain marketing page",
			markup: `<html><body><h1>Welcome to Cypress Ridge</h1><p>a parkland course on the coast</p></body></html>`,
			expect: false,
		},
	}

	for _, test := range cases {
		content := mustParse(t, test.markup, "https://golf.example.com")
		require.Equal(t, test.expect, LooksLikeLoginWall(content), test.name)
	}
}

func TestTimeTokens(t *testing.T) {
	// PageContent.Text is always lowercased by ParseContent, the cases
	// mirror that
	cases := []struct {
		text   string
		expect int
	}{
		{text: "7:30 am 7:45 am 8:00 am", expect: 3},
		{text: "7:30 am 7:30am 7:30 am", expect: 1},
		{text: "14:15 and 15:00", expect: 2},
		{text: "the score was 3:2 yesterday", expect: 0},
		{text: "no times here", expect: 0},
	}

	for _, test := range cases {
		content := PageContent{Text: test.text}
		require.Len(t, TimeTokens(content), test.expect, test.text)
	}
}

func TestLooksAvailable(t *testing.T) {
	cases := []struct {
		name   string
		markup string
		expect bool
	}{
		{
			name: "three time tokens",
			markup: `<html><body>
				<div>7:30 am</div><div>7:45 am</div><div>8:15 am</div>
			</body></html>`,
			expect: true,
		},
		{
			name:   "keywords plus one token",
			markup: `<html><body><p>Tee times available, 4 spots left at 7:30 am</p></body></html>`,
			expect: true,
		},
		{
			name: "brand link plus availability keyword",
			markup: `<html><body>
				<p>Book now</p>
				<a href="https://app.foreupsoftware.com/index.php/booking">reserve</a>
			</body></html>`,
			expect: true,
		},
		{
			name: "brand alone is not enough",
			markup: `<html><body>
				<a href="https://app.foreupsoftware.com/index.php/booking">click</a>
				<p>welcome</p>
			</body></html>`,
			expect: false,
		},
		{
			name: "two tokens without keywords",
			markup: `<html><body>
				<div>7:30 am</div><div>8:15 am</div><p>hours of operation</p>
			</body></html>`,
			expect: false,
		},
		{
			name: "login keywords suppress any token count",
			markup: `<html><body>
				<h1>Member Login</h1>
				<div>7:30 am</div><div>7:45 am</div><div>8:15 am</div>
			</body></html>`,
			expect: false,
		},
	}

	for _, test := range cases {
		content := mustParse(t, test.markup, "https://golf.example.com")
		require.Equal(t, test.expect, LooksAvailable(content), test.name)
	}
}

func TestLoginWallPrecedence(t *testing.T) {
	// a gated page full of tee times is a login wall, not availability
	markup := `<html><body>
		<h1>Member Login</h1>
		<input type="password" name="pw">
		<div>7:30 am</div><div>7:45 am</div><div>8:15 am</div>
	</body></html>`
	content := mustParse(t, markup, "https://golf.example.com/members")

	require.True(t, LooksLikeLoginWall(content))
	require.False(t, LooksAvailable(content))
}
