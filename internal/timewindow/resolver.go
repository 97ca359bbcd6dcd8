package timewindow

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jinzhu/now"
)

const dateLayout = "2006-01-02"

var ErrInvalidDateFormat = errors.New("invalid date format")

// Range is an inclusive [From, To] window in UTC. A nil side means unbounded.
type Range struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

// Resolver converts civil dates in one fixed business offset into absolute instants.
type Resolver struct {
	Location *time.Location
	Floor    time.Time
	Now      func() time.Time
}

func New(offset string, floor string) (*Resolver, error) {
	loc, err := ParseOffset(offset)
	if err != nil {
		return nil, err
	}
	floorDate, err := ParseCivilDate(floor)
	if err != nil {
		return nil, fmt.Errorf("history floor: %w", err)
	}
	return &Resolver{
		Location: loc,
		Floor:    floorDate.UTC(),
		Now:      time.Now,
	}, nil
}

// ParseOffset accepts "+07:00", "-03:30" or "Z".
func ParseOffset(value string) (*time.Location, error) {
	value = strings.TrimSpace(value)
	if value == "" || value == "Z" || value == "+00:00" {
		return time.FixedZone("UTC+00:00", 0), nil
	}
	if len(value) != 6 || (value[0] != '+' && value[0] != '-') || value[3] != ':' {
		return nil, fmt.Errorf("invalid offset %q", value)
	}
	hours, err := strconv.Atoi(value[1:3])
	if err != nil || hours > 14 {
		return nil, fmt.Errorf("invalid offset %q", value)
	}
	minutes, err := strconv.Atoi(value[4:6])
	if err != nil || minutes > 59 {
		return nil, fmt.Errorf("invalid offset %q", value)
	}
	seconds := hours*3600 + minutes*60
	if value[0] == '-' {
		seconds = -seconds
	}
	return time.FixedZone("UTC"+value, seconds), nil
}

// ParseCivilDate parses a strict YYYY-MM-DD date at UTC midnight.
func ParseCivilDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if len(value) != len(dateLayout) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, value)
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateFormat, value)
	}
	return parsed, nil
}

func (r *Resolver) Today() string {
	return r.Now().In(r.Location).Format(dateLayout)
}

func (r *Resolver) StartOfDay(d string) (time.Time, error) {
	day, err := r.civilDay(d)
	if err != nil {
		return time.Time{}, err
	}
	return now.With(day).BeginningOfDay().UTC(), nil
}

func (r *Resolver) EndOfDay(d string) (time.Time, error) {
	day, err := r.civilDay(d)
	if err != nil {
		return time.Time{}, err
	}
	// now.EndOfDay is 23:59:59.999999999; records are stored with millisecond precision.
	return now.With(day).EndOfDay().Truncate(time.Millisecond).UTC(), nil
}

// Day returns the full [00:00:00.000, 23:59:59.999] window of d.
func (r *Resolver) Day(d string) (Range, error) {
	from, err := r.StartOfDay(d)
	if err != nil {
		return Range{}, err
	}
	to, err := r.EndOfDay(d)
	if err != nil {
		return Range{}, err
	}
	return Range{From: &from, To: &to}, nil
}

// ResolveRange returns nil when both bounds are empty.
func (r *Resolver) ResolveRange(start string, end string) (*Range, error) {
	start = strings.TrimSpace(start)
	end = strings.TrimSpace(end)
	if start == "" && end == "" {
		return nil, nil
	}

	out := &Range{}
	if start != "" {
		from, err := r.StartOfDay(start)
		if err != nil {
			return nil, err
		}
		out.From = &from
	}
	if end != "" {
		to, err := r.EndOfDay(end)
		if err != nil {
			return nil, err
		}
		out.To = &to
	}
	return out, nil
}

// CivilDate projects an instant back onto the business calendar.
func (r *Resolver) CivilDate(t time.Time) string {
	return t.In(r.Location).Format(dateLayout)
}

func (r *Resolver) civilDay(d string) (time.Time, error) {
	parsed, err := ParseCivilDate(d)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 12, 0, 0, 0, r.Location), nil
}

func (rg Range) Contains(t time.Time) bool {
	if rg.From != nil && t.Before(*rg.From) {
		return false
	}
	if rg.To != nil && t.After(*rg.To) {
		return false
	}
	return true
}
