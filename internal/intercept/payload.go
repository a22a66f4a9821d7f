package intercept

import "strings"

// field names the big tee-sheet vendors put on a slot object, a map
// carrying any one of these is treated as a slot
var slotFieldKeys = []string{
	"time",
	"teetime",
	"tee_time",
	"start_time",
	"available_spots",
	"spots",
	"openings",
	"players",
	"green_fee",
	"greenfee",
	"price",
	"rate",
	"course_id",
	"schedule_id",
	"holes",
}

// how far PayloadIndicatesAvailability descends into nested containers
// before giving up
const maxPayloadDepth = 5

// PayloadIndicatesAvailability reports whether a decoded JSON payload
// looks like it carries bookable slots: a non-empty array of slot
// objects, a slot object itself, or an object wrapping one of those
// somewhere inside.
func PayloadIndicatesAvailability(payload any) bool {
	return payloadIndicates(payload, 0)
}

func payloadIndicates(v any, depth int) bool {
	if depth > maxPayloadDepth {
		return false
	}
	switch val := v.(type) {
	case []any:
		if len(val) == 0 {
			return false
		}
		first, ok := val[0].(map[string]any)
		if !ok {
			return false
		}
		return looksLikeSlot(first)
	case map[string]any:
		if looksLikeSlot(val) {
			return true
		}
		for _, nested := range val {
			switch nested.(type) {
			case []any, map[string]any:
				if payloadIndicates(nested, depth+1) {
					return true
				}
			}
		}
	}
	return false
}

func looksLikeSlot(m map[string]any) bool {
	for key := range m {
		lower := strings.ToLower(key)
		for _, field := range slotFieldKeys {
			if lower == field {
				return true
			}
		}
	}
	return false
}
