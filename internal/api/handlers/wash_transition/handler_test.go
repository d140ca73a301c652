package wash_transition

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/mark-szabo/carwash/internal/api/middleware"
	"github.com/mark-szabo/carwash/internal/service/reservations"
	"github.com/mark-szabo/carwash/internal/service/reservations/models"
	"github.com/mark-szabo/carwash/pkg/logger"
)

func route(action Action) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Auth)
	h := NewHandler("POST /reservations/{id}/complete", action, logger.NewWithWriter(io.Discard, "error"))
	r.HandleFunc("/reservations/{id}/complete", h.Handle).Methods(http.MethodPost)
	return r
}

func TestHandle(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		err      error
		wantCode int
	}{
		{"ok", "/reservations/7/complete", nil, http.StatusOK},
		{"invalid id", "/reservations/abc/complete", nil, http.StatusBadRequest},
		{"not found", "/reservations/7/complete", reservations.ErrReservationNotFound, http.StatusNotFound},
		{"not carwash admin", "/reservations/7/complete", reservations.ErrAccessDenied, http.StatusForbidden},
		{"invalid transition", "/reservations/7/complete", reservations.ErrInvalidTransition, http.StatusConflict},
		{"internal", "/reservations/7/complete", reservations.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotID int64
			var gotActor string
			action := func(_ context.Context, id int64, actorID string) (*models.ReservationResponse, error) {
				gotID, gotActor = id, actorID
				if tt.err != nil {
					return nil, tt.err
				}
				return &models.ReservationResponse{ID: id, State: "done"}, nil
			}

			req := httptest.NewRequest(http.MethodPost, tt.path, nil)
			req.Header.Set(middleware.UserIDHeader, "carwash")
			rec := httptest.NewRecorder()
			route(action).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode != http.StatusBadRequest {
				assert.Equal(t, int64(7), gotID)
				assert.Equal(t, "carwash", gotActor)
			}
		})
	}
}

func TestHandle_RequiresUser(t *testing.T) {
	called := false
	action := func(context.Context, int64, string) (*models.ReservationResponse, error) {
		called = true
		return nil, nil
	}

	rec := httptest.NewRecorder()
	route(action).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reservations/7/complete", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}
