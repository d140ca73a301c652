package validation

import "errors"

var (
	// ErrAccessDenied возвращается, когда пользователь не может бронировать за владельца
	ErrAccessDenied = errors.New("validation: access denied")

	// ErrUserNotFound возвращается, когда владелец бронирования не найден
	ErrUserNotFound = errors.New("validation: user not found")

	// ErrCompanyNotFound возвращается, когда компания владельца не найдена
	ErrCompanyNotFound = errors.New("validation: company not found")

	// ErrInternal возвращается при ошибках хранилища
	ErrInternal = errors.New("validation: internal error")
)
