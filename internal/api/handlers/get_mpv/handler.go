package get_mpv

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mark-szabo/carwash/internal/api/handlers"
	"github.com/mark-szabo/carwash/internal/service/reservations"
)

const msgInvalidPlate = "invalid plate number"

type Handler struct {
	service ReservationService
	logger  Logger
}

func NewHandler(service ReservationService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/vehicles/{plate}/mpv
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	plate := mux.Vars(r)["plate"]

	result, err := h.service.GetMpv(r.Context(), plate)
	if err != nil {
		if errors.Is(err, reservations.ErrInvalidInput) {
			h.logger.Warn("GET /vehicles/{plate}/mpv - Invalid plate: %q", plate)
			handlers.RespondBadRequest(w, msgInvalidPlate)
			return
		}
		h.logger.Error("GET /vehicles/{plate}/mpv - Failed to look up plate: plate=%s, error=%v", plate, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
