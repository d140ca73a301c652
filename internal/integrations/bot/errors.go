package bot

import "errors"

var (
	// ErrDisabled возвращается, если бот не настроен
	ErrDisabled = errors.New("bot: disabled")

	// ErrSend возвращается при ошибке Telegram API
	ErrSend = errors.New("bot: failed to send message")
)
