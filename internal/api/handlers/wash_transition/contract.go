package wash_transition

import (
	"context"

	"github.com/mark-szabo/carwash/internal/service/reservations/models"
)

// Action переход жизненного цикла, выполняемый сотрудником мойки
type Action func(ctx context.Context, id int64, actorID string) (*models.ReservationResponse, error)

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
