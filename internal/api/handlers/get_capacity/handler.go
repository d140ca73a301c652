package get_capacity

import (
	"errors"
	"net/http"
	"time"

	"github.com/mark-szabo/carwash/internal/api/handlers"
	"github.com/mark-szabo/carwash/internal/domain"
	"github.com/mark-szabo/carwash/internal/service/reservations"
)

const msgInvalidDate = "invalid date, expected YYYY-MM-DD"

type Handler struct {
	service      CapacityService
	timeProvider TimeProvider
	location     *time.Location
	logger       Logger
}

func NewHandler(service CapacityService, timeProvider TimeProvider, location *time.Location, logger Logger) *Handler {
	return &Handler{
		service:      service,
		timeProvider: timeProvider,
		location:     location,
		logger:       logger,
	}
}

// Handle GET /api/v1/capacity?date=YYYY-MM-DD
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	day := r.URL.Query().Get("date")
	if day == "" {
		day = h.timeProvider.Now().In(h.location).Format(domain.DateFormat)
	}

	result, err := h.service.Capacity(r.Context(), day)
	if err != nil {
		if errors.Is(err, reservations.ErrInvalidInput) {
			h.logger.Warn("GET /capacity - Invalid date: %q", day)
			handlers.RespondBadRequest(w, msgInvalidDate)
			return
		}
		h.logger.Error("GET /capacity - Failed to build capacity summary: date=%s, error=%v", day, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /capacity - Capacity retrieved: date=%s, reserved=%d/%d", day, result.ReservedMinutes, result.CapacityMinutes)
	handlers.RespondJSON(w, http.StatusOK, result)
}
