package add_comment

import (
	"context"

	"github.com/mark-szabo/carwash/internal/service/reservations/models"
)

type ReservationService interface {
	AddComment(ctx context.Context, id int64, actorID string, req *models.AddCommentRequest) (*models.ReservationResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
