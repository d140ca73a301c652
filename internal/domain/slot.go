package domain

import (
	"time"

	"github.com/mark-szabo/carwash/pkg/types"
)

// Slot daily wall-clock window with a capacity budget
type Slot struct {
	StartTime types.TimeString `yaml:"start"`
	EndTime   types.TimeString `yaml:"end"`
	Capacity  int              `yaml:"capacity"`
}

// SlotCalendar ordered, non-overlapping slots of one tenant plus its time zone
type SlotCalendar struct {
	Slots    []Slot
	Location *time.Location
}

// FindByStart returns the slot that starts exactly at the instant start.
// Sub-minute offsets never match.
func (c *SlotCalendar) FindByStart(start time.Time) (Slot, bool) {
	for _, s := range c.Slots {
		if s.StartTime.OnDate(start, c.Location).Equal(start) {
			return s, true
		}
	}
	return Slot{}, false
}

// FindByBounds returns the slot whose start and end instants both equal the given ones
func (c *SlotCalendar) FindByBounds(start, end time.Time) (Slot, bool) {
	for _, s := range c.Slots {
		if s.StartTime.OnDate(start, c.Location).Equal(start) && s.EndTime.OnDate(start, c.Location).Equal(end) {
			return s, true
		}
	}
	return Slot{}, false
}

// TotalCapacity sum of all slot capacities (capacity units)
func (c *SlotCalendar) TotalCapacity() int {
	total := 0
	for _, s := range c.Slots {
		total += s.Capacity
	}
	return total
}

// DayBounds start (inclusive) and end (exclusive) of t's local calendar day, in UTC
func (c *SlotCalendar) DayBounds(t time.Time) (time.Time, time.Time) {
	local := t.In(c.Location)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.Location)
	return start.UTC(), start.AddDate(0, 0, 1).UTC()
}

// IsSameLocalDay reports whether a and b fall on the same day in the calendar's zone
func (c *SlotCalendar) IsSameLocalDay(a, b time.Time) bool {
	y1, m1, d1 := a.In(c.Location).Date()
	y2, m2, d2 := b.In(c.Location).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
