package get_mpv

import (
	"context"

	"github.com/mark-szabo/carwash/internal/service/reservations/models"
)

type ReservationService interface {
	GetMpv(ctx context.Context, plate string) (*models.MpvResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
