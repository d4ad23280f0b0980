package event

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrHourOutOfRange is returned when shifting a time of day would move it
// into the previous or next day
var ErrHourOutOfRange = errors.New("hour out of range after shift")

// TimeOfDay is a wall clock time without a date
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM" (single digit hours are accepted).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return TimeOfDay{}, fmt.Errorf("parsing time %q: missing ':'", s)
	}

	hour, err := strconv.Atoi(hh)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("parsing hour in %q: %w", s, err)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("parsing minute in %q: %w", s, err)
	}

	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("parsing time %q: out of range", s)
	}

	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// Shift moves the time by the given number of hours. Shifting across
// midnight is rejected with ErrHourOutOfRange since the day the listing
// belongs to would change.
func (t TimeOfDay) Shift(hours int) (TimeOfDay, error) {
	h := t.Hour + hours
	if h < 0 || h > 23 {
		return TimeOfDay{}, fmt.Errorf("%w: %s shifted by %d hours", ErrHourOutOfRange, t, hours)
	}
	return TimeOfDay{Hour: h, Minute: t.Minute}, nil
}

// String returns the zero-padded "HH:MM" form
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// On returns the time of day on the given date, in UTC
func (t TimeOfDay) On(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour, t.Minute, 0, 0, time.UTC)
}
