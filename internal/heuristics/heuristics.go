package heuristics

import (
	"regexp"
	"strings"

	"teetimes-backend/lib/textutil"
)

// keyword tables are ordered data, tune them here rather than in code

var loginKeywords = []string{
	"member login",
	"members only",
	"log in",
	"login",
	"sign in",
	"sign-in",
	"signin",
	"password",
	"username",
}

var availabilityKeywords = []string{
	"tee time",
	"tee times",
	"available",
	"availability",
	"book now",
	"reserve",
}

var multiSlotKeywords = []string{
	"times available",
	"spots",
	"openings",
	"players",
	"slots",
}

var bookingBrands = []string{
	"foreup",
	"teeitup",
	"golfnow",
	"chronogolf",
	"teesnap",
	"clubcaddie",
	"quick18",
	"ezlinks",
	"teewire",
	"lightspeed",
}

var loginFormHints = []string{
	"login",
	"signin",
	"sign-in",
	"auth",
}

// LooksLikeLoginWall reports whether the page is gating its content
// behind authentication. It takes precedence over LooksAvailable when
// both trip on the same page state.
func LooksLikeLoginWall(content PageContent) bool {
	for _, input := range content.Inputs {
		if strings.EqualFold(input.Type, "password") {
			return true
		}
	}
	if textutil.ContainsAny(content.Text, loginKeywords) {
		return true
	}
	for _, input := range content.Inputs {
		hint := strings.ToLower(input.Name + " " + input.Id + " " + input.Placeholder)
		if strings.Contains(hint, "user") || strings.Contains(hint, "email") || strings.Contains(hint, "login") {
			return true
		}
	}
	for _, form := range content.Forms {
		if textutil.ContainsAny(form, loginFormHints) {
			return true
		}
	}
	return false
}

var timeTokenRegex = regexp.MustCompile(`\b\d{1,2}:\d{2}\s?(?:[ap]m)?\b`)

// TimeTokens extracts the distinct well-formed time-of-day tokens from
// the page text, e.g. "7:30 am", "14:15". Tokens shorter than 4 runes
// are discarded, duplicates collapse case- and space-insensitively.
func TimeTokens(content PageContent) []string {
	matches := timeTokenRegex.FindAllString(content.Text, -1)
	seen := map[string]bool{}
	tokens := []string{}
	for _, m := range matches {
		token := strings.TrimSpace(m)
		if len(token) < 4 {
			continue
		}
		key := strings.ReplaceAll(token, " ", "")
		if seen[key] {
			continue
		}
		seen[key] = true
		tokens = append(tokens, token)
	}
	return tokens
}

// LooksAvailable reports whether the page itself shows bookable tee
// times. A login wall always wins: a gated page is never reported as
// available no matter how many time tokens it renders. Past that the
// decision is tiered: a healthy number of time tokens is proof on its
// own, keyword pairs need at least one token, and booking-platform
// brand marks are the weakest signal so they need corroboration.
func LooksAvailable(content PageContent) bool {
	if LooksLikeLoginWall(content) {
		return false
	}

	tokens := TimeTokens(content)
	if len(tokens) >= 3 {
		return true
	}
	if len(tokens) >= 1 &&
		textutil.ContainsAny(content.Text, availabilityKeywords) &&
		textutil.ContainsAny(content.Text, multiSlotKeywords) {
		return true
	}
	if containsBrand(content) &&
		(len(tokens) >= 1 || textutil.ContainsAny(content.Text, availabilityKeywords)) {
		return true
	}
	return false
}

func containsBrand(content PageContent) bool {
	if textutil.ContainsAny(content.Text, bookingBrands) {
		return true
	}
	if content.URL != nil && textutil.ContainsAny(strings.ToLower(content.URL.String()), bookingBrands) {
		return true
	}
	for _, anchor := range content.Anchors {
		if textutil.ContainsAny(strings.ToLower(anchor.Href), bookingBrands) {
			return true
		}
	}
	return false
}
