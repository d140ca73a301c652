package push

import "errors"

var (
	// ErrNoSubscription возвращается, когда у пользователя нет активной push-подписки
	ErrNoSubscription = errors.New("push: user has no active subscription")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("push client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от шлюза
	ErrInvalidResponse = errors.New("push client: invalid response")
)
