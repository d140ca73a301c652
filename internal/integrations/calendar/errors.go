package calendar

import "errors"

var (
	// ErrCredentials возвращается, если не удалось прочитать ключ сервисного аккаунта
	ErrCredentials = errors.New("calendar: invalid service account credentials")

	// ErrRequest возвращается при ошибке Google Calendar API
	ErrRequest = errors.New("calendar: request failed")
)
