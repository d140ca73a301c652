package capacity

import (
	"context"
	"time"

	"github.com/mark-szabo/carwash/pkg/types"
)

// SlotUsage занятость одного слота
type SlotUsage struct {
	StartTime       types.TimeString
	EndTime         types.TimeString
	Start           time.Time
	CapacityMinutes int
	ReservedMinutes int
}

// FreeMinutes свободное время слота, не меньше нуля
func (u SlotUsage) FreeMinutes() int {
	if u.ReservedMinutes >= u.CapacityMinutes {
		return 0
	}
	return u.CapacityMinutes - u.ReservedMinutes
}

// DaySummary занятость дня целиком
type DaySummary struct {
	Date            time.Time
	Slots           []SlotUsage
	CapacityMinutes int
	ReservedMinutes int
	// RemainingTodayMinutes заполняется только для сегодняшнего дня
	RemainingTodayMinutes *int
}

// Summary собирает занятость всех слотов дня date
func (a *Accountant) Summary(ctx context.Context, date time.Time) (*DaySummary, error) {
	summary := &DaySummary{
		Date:            date,
		Slots:           make([]SlotUsage, 0, len(a.calendar.Slots)),
		CapacityMinutes: a.TotalDayCapacityMinutes(),
	}

	for _, slot := range a.calendar.Slots {
		start := slot.StartTime.OnDate(date, a.calendar.Location).UTC()
		reserved, err := a.ReservedTimeInSlot(ctx, start, nil)
		if err != nil {
			return nil, err
		}
		summary.Slots = append(summary.Slots, SlotUsage{
			StartTime:       slot.StartTime,
			EndTime:         slot.EndTime,
			Start:           start,
			CapacityMinutes: slot.Capacity * a.cfg.TimeUnit,
			ReservedMinutes: reserved,
		})
	}

	reserved, err := a.ReservedTimeOnDate(ctx, date, nil, nil)
	if err != nil {
		return nil, err
	}
	summary.ReservedMinutes = reserved

	if a.calendar.IsSameLocalDay(date, a.timeProvider.Now()) {
		remaining := a.RemainingSlotCapacityToday() * a.cfg.TimeUnit
		summary.RemainingTodayMinutes = &remaining
	}

	return summary, nil
}
