package get_capacity

import (
	"context"
	"time"

	"github.com/mark-szabo/carwash/internal/service/reservations/models"
)

type CapacityService interface {
	Capacity(ctx context.Context, day string) (*models.CapacityResponse, error)
}

// TimeProvider текущее время; дата по умолчанию - сегодня
type TimeProvider interface {
	Now() time.Time
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
