package create_reservation

import (
	"errors"
	"net/http"

	"github.com/mark-szabo/carwash/internal/api/handlers"
	"github.com/mark-szabo/carwash/internal/api/middleware"
	"github.com/mark-szabo/carwash/internal/domain"
	createReservation "github.com/mark-szabo/carwash/internal/usecase/create_reservation"
)

const (
	msgInvalidRequestBody = "invalid request body"
	msgInvalidInput       = "invalid reservation data"
	msgMissingUserID      = "missing user id"
	msgForbidden          = "forbidden"
	msgUserNotFound       = "user not found"
	msgCompanyNotFound    = "company not found"
)

type Handler struct {
	useCase CreateReservationUseCase
	logger  Logger
}

func NewHandler(useCase CreateReservationUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/reservations
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /reservations - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateReservationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /reservations - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(actorID))
	if err != nil {
		var validationErr *domain.ValidationError
		switch {
		case errors.As(err, &validationErr):
			h.logger.Warn("POST /reservations - Rejected by %s: actor=%s, reason=%q", validationErr.Check, actorID, validationErr.Reason)
			handlers.RespondBadRequest(w, validationErr.Reason)

		case errors.Is(err, createReservation.ErrInvalidInput):
			h.logger.Warn("POST /reservations - Invalid input: actor=%s, error=%v", actorID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, createReservation.ErrAccessDenied):
			h.logger.Warn("POST /reservations - Access denied: actor=%s, user=%s", actorID, req.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, createReservation.ErrUserNotFound):
			h.logger.Warn("POST /reservations - User not found: user=%s", req.UserID)
			handlers.RespondNotFound(w, msgUserNotFound)

		case errors.Is(err, createReservation.ErrCompanyNotFound):
			h.logger.Warn("POST /reservations - Company not found: actor=%s, user=%s", actorID, req.UserID)
			handlers.RespondNotFound(w, msgCompanyNotFound)

		default:
			h.logger.Error("POST /reservations - Failed to create reservation: actor=%s, error=%v", actorID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /reservations - Reservation created successfully: reservation_id=%d, user=%s, actor=%s",
		result.ID, result.UserID, actorID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
