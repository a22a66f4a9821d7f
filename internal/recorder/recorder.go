// Package recorder turns a confirmed discovery outcome into the
// venue's persisted record: captured tee-sheet payloads become TeeTime
// rows, a summary is computed, and the booking url is written down the
// first time it is learned.
package recorder

import (
	"strconv"
	"strings"
	"time"

	"teetimes-backend/internal/discovery"
	"teetimes-backend/internal/intercept"
	"teetimes-backend/internal/venuestore"
)

// vendor payloads disagree on field names, each alias table is checked
// in order and the first present key wins. payload keys are matched
// case-insensitively so camelCase vendors land here too.
var (
	timeKeys       = []string{"time", "teetime", "tee_time", "start_time", "start"}
	spotsKeys      = []string{"available_spots", "spots", "openings", "players"}
	feeKeys        = []string{"green_fee", "greenfee", "price", "rate", "fee"}
	holesKeys      = []string{"holes", "duration"}
	courseIdKeys   = []string{"course_id", "courseid"}
	scheduleIdKeys = []string{"schedule_id", "scheduleid", "teesheet_id"}
	rateTypeKeys   = []string{"rate_type", "ratetype", "rate_name"}
)

// defaults for fields vendors leave off: a standard tee time seats a
// foursome over a full round
const (
	defaultSpots = 4
	defaultHoles = 18
)

// matches the capture predicate's nesting bound
const maxExtractDepth = 5

// BookingUrl is the url Apply persists for a confirmed outcome: the
// first captured payload's source, else the confirmed page itself.
func BookingUrl(outcome discovery.Outcome) string {
	if len(outcome.Captures) > 0 {
		return outcome.Captures[0].URL
	}
	return outcome.ConfirmedUrl
}

// Apply writes a confirmed outcome into the venue record and reports
// how many slots it wrote. The booking url is only ever written once:
// a venue that already has one keeps it. Slots and their summary are
// replaced only when the outcome actually carried structured payloads,
// a content-only confirmation leaves previously captured slots alone.
func Apply(venue *venuestore.Venue, outcome discovery.Outcome, now time.Time) int {
	if venue.BookingUrl == "" {
		venue.BookingUrl = BookingUrl(outcome)
	}

	slots := ExtractTeeTimes(outcome.Captures)
	if len(slots) > 0 {
		venue.TeeTimes = slots
		venue.TeeTimeSummary = Summarize(slots)
	}

	venue.LastUpdated = now.Format(time.RFC3339)
	return len(slots)
}

// Touch refreshes the record's timestamp without touching anything
// else, for venues whose chain ended without a confirmation.
func Touch(venue *venuestore.Venue, now time.Time) {
	venue.LastUpdated = now.Format(time.RFC3339)
}

// ExtractTeeTimes maps every slot-shaped entry across the captured
// payloads into TeeTime records, walking nested containers the same
// bounded way the capture predicate does.
func ExtractTeeTimes(captures []intercept.Capture) []venuestore.TeeTime {
	var out []venuestore.TeeTime
	for _, capture := range captures {
		collectSlots(capture.Payload, 0, &out)
	}
	return out
}

func collectSlots(v any, depth int, out *[]venuestore.TeeTime) {
	if depth > maxExtractDepth {
		return
	}
	switch val := v.(type) {
	case []any:
		for _, item := range val {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if slot, ok := mapSlot(m); ok {
				*out = append(*out, slot)
			}
		}
	case map[string]any:
		if slot, ok := mapSlot(val); ok {
			*out = append(*out, slot)
			return
		}
		for _, nested := range val {
			switch nested.(type) {
			case []any, map[string]any:
				collectSlots(nested, depth+1, out)
			}
		}
	}
}

// mapSlot converts one payload object into a TeeTime. Objects without
// any recognizable slot field are not slots.
func mapSlot(m map[string]any) (venuestore.TeeTime, bool) {
	fields := map[string]any{}
	for key, value := range m {
		fields[strings.ToLower(key)] = value
	}

	matched := false
	for _, keys := range [][]string{timeKeys, spotsKeys, feeKeys, holesKeys, courseIdKeys, scheduleIdKeys} {
		if _, ok := firstPresent(fields, keys); ok {
			matched = true
			break
		}
	}
	if !matched {
		return venuestore.TeeTime{}, false
	}

	return venuestore.TeeTime{
		Time:           stringField(fields, timeKeys, ""),
		AvailableSpots: intField(fields, spotsKeys, defaultSpots),
		GreenFee:       floatField(fields, feeKeys, 0),
		Holes:          intField(fields, holesKeys, defaultHoles),
		CourseId:       stringField(fields, courseIdKeys, ""),
		ScheduleId:     stringField(fields, scheduleIdKeys, ""),
		RateType:       stringField(fields, rateTypeKeys, ""),
	}, true
}

func firstPresent(m map[string]any, keys []string) (any, bool) {
	for _, key := range keys {
		if v, ok := m[strings.ToLower(key)]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func stringField(m map[string]any, keys []string, fallback string) string {
	v, ok := firstPresent(m, keys)
	if !ok {
		return fallback
	}
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	}
	return fallback
}

func floatField(m map[string]any, keys []string, fallback float64) float64 {
	v, ok := firstPresent(m, keys)
	if !ok {
		return fallback
	}
	switch val := v.(type) {
	case float64:
		return val
	case string:
		// prices come through as "$55.50" often enough to bother
		cleaned := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(val), "$"))
		parsed, err := strconv.ParseFloat(cleaned, 64)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func intField(m map[string]any, keys []string, fallback int) int {
	v, ok := firstPresent(m, keys)
	if !ok {
		return fallback
	}
	switch val := v.(type) {
	case float64:
		return int(val)
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(val))
		if err == nil {
			return parsed
		}
	}
	return fallback
}

// Summarize aggregates the captured slots: counts, capacity, and the
// price and time-of-day ranges.
func Summarize(slots []venuestore.TeeTime) *venuestore.Summary {
	summary := &venuestore.Summary{TotalSlots: len(slots)}

	seededPrice := false
	for _, slot := range slots {
		summary.TotalAvailableSpots += slot.AvailableSpots

		if !seededPrice {
			summary.PriceRange = venuestore.PriceRange{Min: slot.GreenFee, Max: slot.GreenFee}
			seededPrice = true
		} else {
			if slot.GreenFee < summary.PriceRange.Min {
				summary.PriceRange.Min = slot.GreenFee
			}
			if slot.GreenFee > summary.PriceRange.Max {
				summary.PriceRange.Max = slot.GreenFee
			}
		}

		if slot.Time == "" {
			continue
		}
		if summary.DateRange.Earliest == "" || slot.Time < summary.DateRange.Earliest {
			summary.DateRange.Earliest = slot.Time
		}
		if summary.DateRange.Latest == "" || slot.Time > summary.DateRange.Latest {
			summary.DateRange.Latest = slot.Time
		}
	}

	return summary
}
