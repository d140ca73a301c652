package capacity

import (
	"context"
	"time"

	"github.com/mark-szabo/carwash/internal/domain"
)

// ReservationReader read-only aggregate surface over stored reservations
type ReservationReader interface {
	SumTimeRequirement(ctx context.Context, filter domain.ReservationFilter) (int, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}
