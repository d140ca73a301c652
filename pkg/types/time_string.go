package types

import (
	"errors"
	"fmt"
	"time"
)

const timeStringLayout = "15:04"

var ErrInvalidTimeString = errors.New("invalid time string format")

// TimeString wall-clock time of day in "HH:MM" form
type TimeString string

func (t TimeString) String() string {
	return string(t)
}

// Validate checks the "HH:MM" format
func (t TimeString) Validate() error {
	if _, err := time.Parse(timeStringLayout, string(t)); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTimeString, string(t))
	}
	return nil
}

// Minutes returns minutes since midnight; invalid values yield -1
func (t TimeString) Minutes() int {
	parsed, err := time.Parse(timeStringLayout, string(t))
	if err != nil {
		return -1
	}
	return parsed.Hour()*60 + parsed.Minute()
}

// OnDate projects the time of day onto date's calendar day in loc
func (t TimeString) OnDate(date time.Time, loc *time.Location) time.Time {
	local := date.In(loc)
	m := t.Minutes()
	return time.Date(local.Year(), local.Month(), local.Day(), m/60, m%60, 0, 0, loc)
}

func (t TimeString) IsBefore(other TimeString) bool {
	return t.Minutes() < other.Minutes()
}

func (t TimeString) IsAfter(other TimeString) bool {
	return t.Minutes() > other.Minutes()
}

