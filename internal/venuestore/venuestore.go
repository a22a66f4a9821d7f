// Package venuestore persists golf course records as a flat JSON file,
// the same golf_courses.json format the crawler has always used. The
// whole file is loaded up front and rewritten in place after a run.
package venuestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"teetimes-backend/lib/textutil"

	"github.com/antzucaro/matchr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("teetimes.internal.venuestore")

// TeeTime is one bookable slot pulled out of an intercepted tee-sheet
// payload. Immutable once captured.
type TeeTime struct {
	Time           string  `json:"time"`
	AvailableSpots int     `json:"available_spots"`
	GreenFee       float64 `json:"green_fee"`
	Holes          int     `json:"holes"`
	CourseId       string  `json:"course_id,omitempty"`
	ScheduleId     string  `json:"schedule_id,omitempty"`
	RateType       string  `json:"rate_type,omitempty"`
}

type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type DateRange struct {
	Earliest string `json:"earliest"`
	Latest   string `json:"latest"`
}

type Summary struct {
	TotalSlots          int        `json:"total_slots"`
	TotalAvailableSpots int        `json:"total_available_spots"`
	PriceRange          PriceRange `json:"price_range"`
	DateRange           DateRange  `json:"date_range"`
}

// Venue is one golf course record. BookingUrl and TeeTimes are written
// at most once per run, and only after a confirmed discovery.
type Venue struct {
	Name           string    `json:"name"`
	Url            string    `json:"url"`
	BookingUrl     string    `json:"booking_url,omitempty"`
	TeeTimes       []TeeTime `json:"tee_times,omitempty"`
	TeeTimeSummary *Summary  `json:"tee_time_summary,omitempty"`
	LastUpdated    string    `json:"last_updated,omitempty"`
}

type Store struct {
	path string
}

func NewStore(path string) Store {
	return Store{path: path}
}

// Load reads every venue record. A missing file is an empty venue set,
// not an error.
func (s Store) Load(ctx context.Context) ([]Venue, error) {
	ctx, span := tracer.Start(ctx, "Load")
	defer span.End()
	span.SetAttributes(attribute.String("path", s.path))

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.WarnContext(ctx, "no venue file found, starting empty", "path", s.path)
		return nil, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read venue file")
		return nil, fmt.Errorf("read venue file: %w", err)
	}

	var venues []Venue
	err = json.Unmarshal(raw, &venues)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse venue file")
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}

	warnNearDuplicates(ctx, venues)
	return venues, nil
}

// Save rewrites the venue file in place.
func (s Store) Save(ctx context.Context, venues []Venue) error {
	_, span := tracer.Start(ctx, "Save")
	defer span.End()
	span.SetAttributes(attribute.Int("venues", len(venues)))

	raw, err := json.MarshalIndent(venues, "", "  ")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "marshal venues")
		return err
	}
	err = os.WriteFile(s.path, raw, 0644)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "write venue file")
		return fmt.Errorf("write venue file: %w", err)
	}
	return nil
}

// venue lists are maintained by hand, two rows for the same course is
// a data-entry mistake worth flagging on every load
const nearDuplicateThreshold = 0.95

func warnNearDuplicates(ctx context.Context, venues []Venue) {
	for i := 0; i < len(venues); i++ {
		for j := i + 1; j < len(venues); j++ {
			left := textutil.NormalizeName(venues[i].Name)
			right := textutil.NormalizeName(venues[j].Name)
			if left == "" || right == "" {
				continue
			}
			similarity := matchr.JaroWinkler(left, right, false)
			if similarity >= nearDuplicateThreshold {
				slog.WarnContext(
					ctx, "venue names look like duplicates",
					"left", venues[i].Name,
					"right", venues[j].Name,
					"similarity", similarity,
				)
			}
		}
	}
}
