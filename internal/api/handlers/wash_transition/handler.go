package wash_transition

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mark-szabo/carwash/internal/api/handlers"
	"github.com/mark-szabo/carwash/internal/api/middleware"
	"github.com/mark-szabo/carwash/internal/service/reservations"
)

const (
	msgInvalidReservationID = "invalid reservation id"
	msgNotFound             = "reservation not found"
	msgMissingUserID        = "missing user id"
	msgForbidden            = "forbidden"
	msgInvalidTransition    = "this step is not allowed in the current state"
)

// Handler общий обработчик для start / complete / payment
type Handler struct {
	route  string
	action Action
	logger Logger
}

// NewHandler route используется только в логах, например "POST /reservations/{id}/start"
func NewHandler(route string, action Action, logger Logger) *Handler {
	return &Handler{
		route:  route,
		action: action,
		logger: logger,
	}
}

// Handle POST /api/v1/reservations/{id}/{start|complete|payment}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	reservationID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		h.logger.Warn("%s - Invalid reservation ID: %v", h.route, err)
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("%s - Missing user ID", h.route)
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	reservation, err := h.action(r.Context(), reservationID, actorID)
	if err != nil {
		switch {
		case errors.Is(err, reservations.ErrReservationNotFound):
			h.logger.Warn("%s - Reservation not found: reservation_id=%d", h.route, reservationID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, reservations.ErrAccessDenied):
			h.logger.Warn("%s - Access denied: reservation_id=%d, actor=%s", h.route, reservationID, actorID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, reservations.ErrInvalidTransition):
			h.logger.Warn("%s - Invalid transition: reservation_id=%d, error=%v", h.route, reservationID, err)
			handlers.RespondConflict(w, msgInvalidTransition)

		default:
			h.logger.Error("%s - Failed: reservation_id=%d, error=%v", h.route, reservationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("%s - Reservation id=%d is now %s, actor=%s", h.route, reservationID, reservation.State, actorID)
	handlers.RespondJSON(w, http.StatusOK, reservation)
}
