package create_reservation

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_reservation: invalid input data")

	// ErrAccessDenied возвращается, когда пользователь не может бронировать за владельца
	ErrAccessDenied = errors.New("create_reservation: access denied")

	// ErrUserNotFound возвращается, когда владелец бронирования не найден
	ErrUserNotFound = errors.New("create_reservation: user not found")

	// ErrCompanyNotFound возвращается, когда компания владельца не найдена
	ErrCompanyNotFound = errors.New("create_reservation: company not found")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_reservation: internal error")
)
