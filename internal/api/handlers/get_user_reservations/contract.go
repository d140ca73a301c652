package get_user_reservations

import (
	"context"

	"github.com/mark-szabo/carwash/internal/service/reservations/models"
)

type ReservationService interface {
	ListByUser(ctx context.Context, userID, actorID string, limit uint64) (*models.ReservationListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
