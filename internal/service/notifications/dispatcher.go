package notifications

import (
	"context"
	"errors"
	"time"

	"github.com/mark-szabo/carwash/internal/domain"
	"github.com/mark-szabo/carwash/internal/integrations/push"
)

// plans порядок каналов доставки по предпочтению пользователя.
// Следующий канал пробуется только если предыдущий не сработал.
var plans = map[domain.NotificationChannel][]domain.NotificationChannel{
	domain.ChannelDisabled: nil,
	domain.ChannelNotSet:   {domain.ChannelEmail},
	domain.ChannelEmail:    {domain.ChannelEmail},
	domain.ChannelPush:     {domain.ChannelPush, domain.ChannelEmail},
}

// Dispatcher доставляет уведомления владельцу бронирования.
// Ошибки доставки не возвращаются вызывающему: они логируются.
type Dispatcher struct {
	email           EmailSender
	push            PushSender
	users           UserRepository
	observer        Observer
	completionDelay time.Duration
	log             Logger
}

// NewDispatcher создает новый экземпляр Dispatcher
func NewDispatcher(
	email EmailSender,
	push PushSender,
	users UserRepository,
	observer Observer,
	completionDelay time.Duration,
	log Logger,
) *Dispatcher {
	return &Dispatcher{
		email:           email,
		push:            push,
		users:           users,
		observer:        observer,
		completionDelay: completionDelay,
		log:             log,
	}
}

// NotifyCompleted мойка завершена
func (d *Dispatcher) NotifyCompleted(ctx context.Context, r *domain.Reservation, owner *domain.User) {
	d.dispatch(ctx, owner, completedMessage(r, owner))
}

// NotifyComment мойка написала комментарий к бронированию
func (d *Dispatcher) NotifyComment(ctx context.Context, r *domain.Reservation, owner *domain.User, comment domain.Comment) {
	d.dispatch(ctx, owner, commentMessage(r, owner, comment))
}

func (d *Dispatcher) dispatch(ctx context.Context, owner *domain.User, msg message) {
	plan, known := plans[owner.NotificationChannel]
	if !known {
		plan = plans[domain.ChannelNotSet]
	}

	for _, channel := range plan {
		err := d.deliver(ctx, channel, owner, msg)
		if err == nil {
			d.observe(string(channel), "sent")
			return
		}

		d.observe(string(channel), "failed")

		if channel == domain.ChannelPush && errors.Is(err, push.ErrNoSubscription) {
			d.log.Warn("Dispatch: user=%s has no push subscription, switching to email", owner.ID)
			if err := d.users.UpdateNotificationChannel(ctx, owner.ID, domain.ChannelEmail); err != nil {
				d.log.Error("Dispatch: failed to downgrade channel: user=%s, error=%v", owner.ID, err)
			} else {
				owner.NotificationChannel = domain.ChannelEmail
				if d.observer != nil {
					d.observer.ObserveDowngrade()
				}
			}
			continue
		}

		d.log.Error("Dispatch: %s delivery failed: user=%s, error=%v", channel, owner.ID, err)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, channel domain.NotificationChannel, owner *domain.User, msg message) error {
	switch channel {
	case domain.ChannelPush:
		return d.push.Send(ctx, owner.ID, msg.push)
	default:
		var delay time.Duration
		if msg.completion {
			delay = d.completionDelay
		}
		return d.email.Send(ctx, domain.Email{
			To:      owner.Email,
			Subject: msg.subject,
			Body:    msg.body,
		}, delay)
	}
}

func (d *Dispatcher) observe(channel, result string) {
	if d.observer != nil {
		d.observer.ObserveNotification(channel, result)
	}
}
