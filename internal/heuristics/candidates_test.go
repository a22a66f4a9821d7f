package heuristics

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindBookingCandidate(t *testing.T) {
	cases := []struct {
		name   string
		markup string
		expect string
	}{
		{
			name: "booking platform beats keyword links",
			markup: `<html><body>
				<a href="https://facebook.com/cypressridge">book events on facebook</a>
				<a href="/contact">Book a lesson</a>
				<a href="https://app.foreupsoftware.com/index.php/booking">Tee Times</a>
			</body></html>`,
			expect: "https://app.foreupsoftware.com/index.php/booking",
		},
		{
			name:   "excluded domains never win",
			markup: `<html><body><a href="https://facebook.com/cypressridge">book now</a></body></html>`,
			expect: "",
		},
		{
			name:   "keyword match on anchor text",
			markup: `<html><body><a href="/golf/rates">Reserve your round</a></body></html>`,
			expect: "https://golf.example.com/golf/rates",
		},
		{
			name:   "relative url resolved against the page",
			markup: `<html><body><a href="/book-a-tee-time">play</a></body></html>`,
			expect: "https://golf.example.com/book-a-tee-time",
		},
		{
			name:   "no candidate",
			markup: `<html><body><a href="/about">About us</a></body></html>`,
			expect: "",
		},
	}

	for _, test := range cases {
		content := mustParse(t, test.markup, "https://golf.example.com")
		require.Equal(t, test.expect, FindBookingCandidate(content), test.name)
	}
}

func TestFindNextCandidate(t *testing.T) {
	cases := []struct {
		name   string
		markup string
		expect string
	}{
		{
			name: "document order wins",
			markup: `<html><body>
				<a href="https://club.example.com/schedule">Club Calendar</a>
				<a href="https://booking.example.com/">Book</a>
			</body></html>`,
			expect: "https://club.example.com/schedule",
		},
		{
			name: "exclusions apply",
			markup: `<html><body>
				<a href="https://instagram.com/cypressridge">book</a>
				<a href="/reservations">Reservations</a>
			</body></html>`,
			expect: "https://golf.example.com/reservations",
		},
		{
			name:   "text match when href is opaque",
			markup: `<html><body><a href="/p/4711">tee times for today</a></body></html>`,
			expect: "https://golf.example.com/p/4711",
		},
		{
			name:   "no candidate",
			markup: `<html><body><a href="/about">about</a><a href="/jobs">jobs</a></body></html>`,
			expect: "",
		},
	}

	for _, test := range cases {
		content := mustParse(t, test.markup, "https://golf.example.com")
		require.Equal(t, test.expect, FindNextCandidate(content), test.name)
	}
}
