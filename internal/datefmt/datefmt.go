// Package datefmt renders and parses reminder times for display and input.
package datefmt

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// DisplayLayout is how due dates are shown to the user.
	DisplayLayout = "Jan 02, 2006 15:04"

	NoDate  = "No date set"
	Invalid = "Invalid date"
)

// Input layouts accepted by Parse, tried in order.
var inputLayouts = []string{
	"2006-01-02 15:04",
	"01-02-2006 15:04", // legacy string dates
}

// Format renders t in loc. A nil time reads "No date set"; anything that
// cannot be rendered as a calendar date reads "Invalid date".
func Format(t *time.Time, loc *time.Location) string {
	if t == nil {
		return NoDate
	}
	if t.IsZero() || t.Year() < 1 || t.Year() > 9999 {
		return Invalid
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DisplayLayout)
}

// FormatMillis renders a raw epoch-millisecond timestamp.
func FormatMillis(ms *int64, loc *time.Location) string {
	if ms == nil {
		return NoDate
	}
	t := time.UnixMilli(*ms)
	return Format(&t, loc)
}

// TimeOfDay is an hour and minute picked by the user.
type TimeOfDay struct {
	Hour, Minute int
}

// NewTimeOfDay validates h and m.
func NewTimeOfDay(h, m int) (TimeOfDay, error) {
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return TimeOfDay{}, fmt.Errorf("time out of range: %02d:%02d", h, m)
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

// ParseTimeOfDay parses "HH:MM".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return TimeOfDay{}, fmt.Errorf("expected HH:MM, got %q", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("hour: %w", err)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("minute: %w", err)
	}
	return NewTimeOfDay(h, m)
}

// On returns the instant on now's calendar day at the time of day, in
// now's location.
func (t TimeOfDay) On(now time.Time) time.Time {
	y, mo, d := now.Date()
	return time.Date(y, mo, d, t.Hour, t.Minute, 0, 0, now.Location())
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// TimeOfDayOf extracts the local time of day of at.
func TimeOfDayOf(at time.Time, loc *time.Location) TimeOfDay {
	if loc == nil {
		loc = time.Local
	}
	at = at.In(loc)
	return TimeOfDay{Hour: at.Hour(), Minute: at.Minute()}
}

// Parse reads a reminder time. "HH:MM" means today at that time; full
// dates are read in now's location.
func Parse(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, " ") {
		tod, err := ParseTimeOfDay(s)
		if err != nil {
			return time.Time{}, err
		}
		return tod.On(now), nil
	}
	for _, layout := range inputLayouts {
		if t, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q (want HH:MM or YYYY-MM-DD HH:MM)", s)
}

// ParseStored decodes a persisted due date. Integers are epoch
// milliseconds; strings may also be the legacy "MM-DD-YYYY HH:MM" form.
func ParseStored(v any, loc *time.Location) (*time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	switch x := v.(type) {
	case nil:
		return nil, true
	case int64:
		t := time.UnixMilli(x)
		return &t, true
	case float64:
		t := time.UnixMilli(int64(x))
		return &t, true
	case []byte:
		return ParseStored(string(x), loc)
	case string:
		if ms, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64); err == nil {
			t := time.UnixMilli(ms)
			return &t, true
		}
		if t, err := time.ParseInLocation(inputLayouts[1], strings.TrimSpace(x), loc); err == nil {
			return &t, true
		}
	}
	return nil, false
}
