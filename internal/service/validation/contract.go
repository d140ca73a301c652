package validation

import (
	"context"
	"time"

	"github.com/mark-szabo/carwash/internal/domain"
)

// CapacityAccountant интерфейс учёта занятой ёмкости
type CapacityAccountant interface {
	ReservedTimeInSlot(ctx context.Context, start time.Time, excludeID *int64) (int, error)
	ReservedTimeOnDate(ctx context.Context, date time.Time, company *string, excludeID *int64) (int, error)
	ToBeDoneTodayTime(ctx context.Context, excludeID *int64) (int, error)
	RemainingSlotCapacityToday() int
}

// ReservationCounter интерфейс подсчёта бронирований
type ReservationCounter interface {
	Count(ctx context.Context, filter domain.ReservationFilter) (int, error)
}

// BlockerRepository интерфейс репозитория блокировок
type BlockerRepository interface {
	ListEndingAfter(ctx context.Context, after time.Time) ([]*domain.Blocker, error)
}

// CompanyRepository интерфейс репозитория компаний
type CompanyRepository interface {
	GetByName(ctx context.Context, name string) (*domain.Company, error)
}

// UserRepository интерфейс репозитория пользователей
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// RejectionObserver метрика отказов по проверкам
type RejectionObserver interface {
	ObserveRejected(check string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
