package reservations

import (
	"context"
	"time"

	"github.com/mark-szabo/carwash/internal/domain"
	"github.com/mark-szabo/carwash/internal/service/capacity"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	List(ctx context.Context, filter domain.ReservationFilter) ([]*domain.Reservation, error)
	UpdateState(ctx context.Context, id int64, state domain.State) error
	UpdateDropoff(ctx context.Context, id int64, state domain.State, location string) error
	AppendComment(ctx context.Context, id int64, comment domain.Comment) error
	Delete(ctx context.Context, id int64) error
}

// UserRepository интерфейс репозитория пользователей
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// CalendarService интерфейс календаря владельца (best-effort)
type CalendarService interface {
	DeleteEvent(ctx context.Context, r *domain.Reservation, owner *domain.User) error
}

// Notifier уведомления владельцу бронирования
type Notifier interface {
	NotifyCompleted(ctx context.Context, r *domain.Reservation, owner *domain.User)
	NotifyComment(ctx context.Context, r *domain.Reservation, owner *domain.User, comment domain.Comment)
}

// StaffBot сообщения в чат сотрудников мойки (best-effort)
type StaffBot interface {
	DropoffConfirmed(ctx context.Context, r *domain.Reservation) error
	UserCommented(ctx context.Context, r *domain.Reservation, comment domain.Comment) error
}

// CapacityReader сводка загрузки дня
type CapacityReader interface {
	Summary(ctx context.Context, date time.Time) (*capacity.DaySummary, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
