package create_reservation

import (
	"fmt"
	"unicode/utf8"

	"github.com/mark-szabo/carwash/internal/domain"
)

// validateRequest валидирует входные данные запроса.
// Пустой набор услуг не ошибка входа: его отклоняет цепочка проверок с понятным текстом.
func validateRequest(req *Request) error {
	if req.ActorID == "" {
		return fmt.Errorf("%w: actor is required", ErrInvalidInput)
	}

	plate := domain.NormalizePlate(req.VehiclePlateNumber)
	if plate == "" {
		return fmt.Errorf("%w: vehiclePlateNumber is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(plate) > domain.MaxPlateLength {
		return fmt.Errorf("%w: vehiclePlateNumber is too long", ErrInvalidInput)
	}

	for _, s := range req.Services {
		if !s.IsValid() {
			return fmt.Errorf("%w: unknown service %q", ErrInvalidInput, s)
		}
	}

	if req.StartDate.IsZero() {
		return fmt.Errorf("%w: startDate is required", ErrInvalidInput)
	}

	if req.Comment != nil && utf8.RuneCountInString(*req.Comment) > domain.MaxCommentLength {
		return fmt.Errorf("%w: comment is too long", ErrInvalidInput)
	}

	return nil
}
