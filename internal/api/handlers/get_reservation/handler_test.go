package get_reservation

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mark-szabo/carwash/internal/api/middleware"
	"github.com/mark-szabo/carwash/internal/service/reservations"
	"github.com/mark-szabo/carwash/internal/service/reservations/models"
	"github.com/mark-szabo/carwash/pkg/logger"
)

type mockService struct{ mock.Mock }

func (m *mockService) GetByID(ctx context.Context, id int64, actorID string) (*models.ReservationResponse, error) {
	args := m.Called(ctx, id, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReservationResponse), args.Error(1)
}

func get(svc ReservationService, path, actorID string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.Use(middleware.Auth)
	r.HandleFunc("/reservations/{id}", NewHandler(svc, logger.NewWithWriter(io.Discard, "error")).Handle)

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set(middleware.UserIDHeader, actorID)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandle(t *testing.T) {
	svc := &mockService{}
	svc.On("GetByID", mock.Anything, int64(1), "u1").Return(&models.ReservationResponse{ID: 1, UserID: "u1"}, nil)
	svc.On("GetByID", mock.Anything, int64(2), "u1").Return(nil, reservations.ErrAccessDenied)
	svc.On("GetByID", mock.Anything, int64(3), "u1").Return(nil, reservations.ErrReservationNotFound)

	rec := get(svc, "/reservations/1", "u1")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.ReservationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "u1", resp.UserID)

	denied := get(svc, "/reservations/2", "u1")
	assert.Equal(t, http.StatusForbidden, denied.Code)
	assert.JSONEq(t, `{"error":"forbidden"}`, denied.Body.String())
	assert.Equal(t, http.StatusNotFound, get(svc, "/reservations/3", "u1").Code)
	assert.Equal(t, http.StatusBadRequest, get(svc, "/reservations/x", "u1").Code)
	assert.Equal(t, http.StatusUnauthorized, get(svc, "/reservations/1", "").Code)
}
