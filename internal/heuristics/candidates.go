package heuristics

import "strings"

// candidate link tables, highest priority first

var bookingPlatformHosts = []string{
	"foreupsoftware.com",
	"foreup",
	"golfnow.com",
	"chronogolf.com",
	"teeitup",
	"teesnap.net",
	"clubcaddie.com",
	"quick18.com",
	"ezlinksgolf.com",
}

var bookingKeywords = []string{
	"book",
	"reserve",
	"tee time",
	"booking",
	"calendar",
	"schedule",
}

// broader than bookingKeywords, used once we are already walking a
// booking flow and any forward-looking link is worth a probe
var nextCandidateKeywords = []string{
	"tee time",
	"tee-time",
	"teetime",
	"book",
	"reserve",
	"reservation",
	"booking",
	"schedule",
	"calendar",
	"times",
	"availability",
}

// social/reference sites that venue pages love to link and that never
// lead to a booking engine
var excludedHosts = []string{
	"facebook.com",
	"instagram.com",
	"twitter.com",
	"x.com",
	"youtube.com",
	"linkedin.com",
	"google.com",
	"goo.gl",
	"yelp.com",
	"tripadvisor.com",
	"wikipedia.org",
	"apple.com",
}

func isExcluded(href string) bool {
	for _, host := range excludedHosts {
		if strings.Contains(href, host) {
			return true
		}
	}
	return false
}

// FindBookingCandidate picks the most promising booking link on a
// venue's page. Links into known booking platforms always win over
// keyword matches, table order decides ties.
func FindBookingCandidate(content PageContent) string {
	for _, host := range bookingPlatformHosts {
		for _, anchor := range content.Anchors {
			if strings.Contains(strings.ToLower(anchor.Href), host) {
				return anchor.Href
			}
		}
	}

	for _, keyword := range bookingKeywords {
		for _, anchor := range content.Anchors {
			href := strings.ToLower(anchor.Href)
			if isExcluded(href) {
				continue
			}
			if strings.Contains(href, keyword) || strings.Contains(anchor.Name, keyword) {
				return anchor.Href
			}
		}
	}

	return ""
}

// FindNextCandidate picks the next link to probe from an intermediate
// page. Anchors are scanned in document order, the href is checked
// before the visible text for each anchor.
func FindNextCandidate(content PageContent) string {
	for _, anchor := range content.Anchors {
		href := strings.ToLower(anchor.Href)
		if isExcluded(href) {
			continue
		}
		for _, keyword := range nextCandidateKeywords {
			if strings.Contains(href, keyword) {
				return anchor.Href
			}
		}
		for _, keyword := range nextCandidateKeywords {
			if strings.Contains(anchor.Name, keyword) {
				return anchor.Href
			}
		}
	}
	return ""
}
