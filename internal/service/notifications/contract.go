package notifications

import (
	"context"
	"time"

	"github.com/mark-szabo/carwash/internal/domain"
)

// EmailSender очередь исходящих писем
type EmailSender interface {
	Send(ctx context.Context, email domain.Email, delay time.Duration) error
}

// PushSender push-шлюз
type PushSender interface {
	Send(ctx context.Context, userID string, notification domain.PushNotification) error
}

// UserRepository интерфейс для сохранения канала уведомлений
type UserRepository interface {
	UpdateNotificationChannel(ctx context.Context, id string, channel domain.NotificationChannel) error
}

// Observer метрики доставки
type Observer interface {
	ObserveNotification(channel, result string)
	ObserveDowngrade()
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
