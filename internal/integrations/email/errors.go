package email

import "errors"

var (
	// ErrInvalidEmail возвращается, если у письма нет получателя
	ErrInvalidEmail = errors.New("email queue: invalid email")

	// ErrInternal возвращается при ошибках Redis или сериализации
	ErrInternal = errors.New("email queue: internal error")
)
