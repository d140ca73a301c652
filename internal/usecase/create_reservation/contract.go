package create_reservation

import (
	"context"
	"time"

	"github.com/mark-szabo/carwash/internal/domain"
	"github.com/mark-szabo/carwash/internal/service/validation"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error)
	LockSlot(ctx context.Context, start time.Time) error
	SetCalendarEventID(ctx context.Context, id int64, eventID *string) error
}

// UserRepository интерфейс репозитория пользователей
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// Validator цепочка проверок бронирования
type Validator interface {
	Validate(ctx context.Context, req validation.Request) (validation.Result, error)
}

// MpvLookup признак минивэна по истории номера
type MpvLookup interface {
	IsMpv(ctx context.Context, plate string) (bool, error)
}

// CalendarService интерфейс календаря владельца (best-effort)
type CalendarService interface {
	CreateEvent(ctx context.Context, r *domain.Reservation, owner *domain.User) (*string, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// AdmissionObserver метрика принятых бронирований
type AdmissionObserver interface {
	ObserveAdmitted(operation string)
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
