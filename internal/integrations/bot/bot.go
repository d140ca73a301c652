package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"github.com/mark-szabo/carwash/internal/domain"
)

// Telegram ограничивает бота ~1 сообщением в секунду на чат
const defaultRate = 1

// Bot сообщения в чат сотрудников мойки
type Bot struct {
	sender  Sender
	chatID  int64
	limiter *rate.Limiter
	log     Logger
}

// New создает новый экземпляр Bot. sender == nil - бот выключен, сообщения не отправляются.
func New(sender Sender, staffChatID int64, ratePerSecond float64, log Logger) *Bot {
	if ratePerSecond <= 0 {
		ratePerSecond = defaultRate
	}
	return &Bot{
		sender:  sender,
		chatID:  staffChatID,
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), 1),
		log:     log,
	}
}

// NewFromToken подключается к Telegram API по токену
func NewFromToken(token string, staffChatID int64, ratePerSecond float64, log Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSend, err)
	}
	log.Info("Telegram bot authorized as %s", api.Self.UserName)
	return New(api, staffChatID, ratePerSecond, log), nil
}

// NotifyStaff отправляет текст в чат сотрудников
func (b *Bot) NotifyStaff(ctx context.Context, text string) error {
	if b == nil || b.sender == nil {
		return ErrDisabled
	}

	if err := b.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrSend, err)
	}

	msg := tgbotapi.NewMessage(b.chatID, text)
	if _, err := b.sender.Send(msg); err != nil {
		return fmt.Errorf("%w: chat=%d: %v", ErrSend, b.chatID, err)
	}

	b.log.Info("Bot message sent: chat=%d", b.chatID)
	return nil
}

// DropoffConfirmed оповещает, что ключи оставлены и место машины известно
func (b *Bot) DropoffConfirmed(ctx context.Context, r *domain.Reservation) error {
	location := "unknown location"
	if r.Location != nil && *r.Location != "" {
		location = *r.Location
	}
	return b.NotifyStaff(ctx, fmt.Sprintf("🔑 %s dropped off at %s (%s)",
		r.VehiclePlateNumber, location, formatDay(r.StartDate)))
}

// UserCommented пересылает комментарий пользователя
func (b *Bot) UserCommented(ctx context.Context, r *domain.Reservation, comment domain.Comment) error {
	return b.NotifyStaff(ctx, fmt.Sprintf("💬 %s (%s, #%d): %s",
		r.VehiclePlateNumber, formatDay(r.StartDate), r.ID, strings.TrimSpace(comment.Message)))
}

func formatDay(t time.Time) string {
	return t.UTC().Format(domain.DateFormat)
}
