package capacity

import (
	"context"
	"fmt"
	"time"

	"github.com/mark-szabo/carwash/internal/domain"
)

// Accountant считает уже занятое время и остаток ёмкости.
// Кэша нет: каждая цифра читается из хранилища в момент решения.
type Accountant struct {
	repo         ReservationReader
	calendar     *domain.SlotCalendar
	cfg          domain.ReservationConfig
	timeProvider TimeProvider
}

// NewAccountant создает новый экземпляр Accountant
func NewAccountant(
	repo ReservationReader,
	calendar *domain.SlotCalendar,
	cfg domain.ReservationConfig,
	timeProvider TimeProvider,
) *Accountant {
	return &Accountant{
		repo:         repo,
		calendar:     calendar,
		cfg:          cfg,
		timeProvider: timeProvider,
	}
}

// ReservedTimeInSlot сумма timeRequirement всех бронирований, начинающихся ровно в start
func (a *Accountant) ReservedTimeInSlot(ctx context.Context, start time.Time, excludeID *int64) (int, error) {
	at := start.UTC()
	total, err := a.repo.SumTimeRequirement(ctx, domain.ReservationFilter{
		StartAt:   &at,
		ExcludeID: excludeID,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: ReservedTimeInSlot: %w", ErrInternal, err)
	}
	return total, nil
}

// ReservedTimeOnDate сумма timeRequirement за календарный день date (в часовом поясе провайдера).
// company != nil ограничивает выборку пользователями компании.
func (a *Accountant) ReservedTimeOnDate(ctx context.Context, date time.Time, company *string, excludeID *int64) (int, error) {
	dayStart, dayEnd := a.calendar.DayBounds(date)
	total, err := a.repo.SumTimeRequirement(ctx, domain.ReservationFilter{
		Company:     company,
		StartFrom:   &dayStart,
		StartBefore: &dayEnd,
		ExcludeID:   excludeID,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: ReservedTimeOnDate: %w", ErrInternal, err)
	}
	return total, nil
}

// ToBeDoneTodayTime сумма timeRequirement сегодняшних бронирований, которые начинаются не раньше now
func (a *Accountant) ToBeDoneTodayTime(ctx context.Context, excludeID *int64) (int, error) {
	now := a.timeProvider.Now().UTC()
	_, dayEnd := a.calendar.DayBounds(now)
	total, err := a.repo.SumTimeRequirement(ctx, domain.ReservationFilter{
		StartFrom:   &now,
		StartBefore: &dayEnd,
		ExcludeID:   excludeID,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: ToBeDoneTodayTime: %w", ErrInternal, err)
	}
	return total, nil
}

// RemainingSlotCapacityToday остаток ёмкости (в единицах) на сегодня с учётом прошедшего времени
func (a *Accountant) RemainingSlotCapacityToday() int {
	return RemainingSlotCapacityAt(a.calendar, a.timeProvider.Now())
}

// RemainingSlotCapacityAt для каждого слота дня now:
//   - слот ещё не начался: полная ёмкость;
//   - слот идёт: floor(capacity * (end - now) / (end - start));
//   - слот закончился: 0.
//
// Сравнения выполняются во времени провайдера.
func RemainingSlotCapacityAt(calendar *domain.SlotCalendar, now time.Time) int {
	local := now.In(calendar.Location)

	remaining := 0
	for _, slot := range calendar.Slots {
		start := slot.StartTime.OnDate(local, calendar.Location)
		end := slot.EndTime.OnDate(local, calendar.Location)

		switch {
		case local.Before(start):
			remaining += slot.Capacity
		case local.Before(end):
			left := int64(end.Sub(local))
			length := int64(end.Sub(start))
			remaining += int(int64(slot.Capacity) * left / length)
		}
	}
	return remaining
}

// TotalDayCapacityMinutes ёмкость всего дня в минутах
func (a *Accountant) TotalDayCapacityMinutes() int {
	return a.calendar.TotalCapacity() * a.cfg.TimeUnit
}
