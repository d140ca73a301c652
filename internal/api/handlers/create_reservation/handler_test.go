package create_reservation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mark-szabo/carwash/internal/api/handlers"
	"github.com/mark-szabo/carwash/internal/api/middleware"
	"github.com/mark-szabo/carwash/internal/domain"
	"github.com/mark-szabo/carwash/internal/service/reservations/models"
	createReservation "github.com/mark-szabo/carwash/internal/usecase/create_reservation"
	"github.com/mark-szabo/carwash/pkg/logger"
)

type mockUseCase struct{ mock.Mock }

func (m *mockUseCase) Execute(ctx context.Context, req *createReservation.Request) (*createReservation.Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*createReservation.Response), args.Error(1)
}

const body = `{"vehiclePlateNumber":"abc-123","services":["exterior","carpet"],"startDate":"2024-01-10T07:00:00Z","private":true}`

func serve(h *Handler, actorID, payload string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(payload))
	if actorID != "" {
		req = req.WithContext(middleware.WithUserID(req.Context(), actorID))
	}
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandle_Created(t *testing.T) {
	uc := &mockUseCase{}
	start := time.Date(2024, 1, 10, 7, 0, 0, 0, time.UTC)
	uc.On("Execute", mock.Anything, mock.MatchedBy(func(req *createReservation.Request) bool {
		return req.ActorID == "u1" && req.UserID == "" && req.Private &&
			len(req.Services) == 2 && req.Services[1] == domain.ServiceCarpet && req.StartDate.Equal(start)
	})).Return(&createReservation.Response{
		ID:                 42,
		UserID:             "u1",
		CreatedByID:        "u1",
		VehiclePlateNumber: "ABC123",
		Services:           []domain.ServiceType{domain.ServiceExterior, domain.ServiceCarpet},
		StartDate:          start,
		EndDate:            start.Add(3 * time.Hour),
		TimeRequirement:    24,
		State:              domain.StateSubmittedNotActual,
		Private:            true,
	}, nil)

	rec := serve(NewHandler(uc, logger.NewWithWriter(io.Discard, "error")), "u1", body)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp models.ReservationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(42), resp.ID)
	assert.Equal(t, "ABC123", resp.VehiclePlateNumber)
	assert.Equal(t, "submitted_not_actual", resp.State)
	assert.Equal(t, 24, resp.TimeRequirement)
	uc.AssertExpectations(t)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{
			name:     "validation failure carries the reason",
			err:      fmt.Errorf("wrapped: %w", &domain.ValidationError{Check: "slot_capacity", Reason: "This slot is full."}),
			wantCode: http.StatusBadRequest,
			wantMsg:  "This slot is full.",
		},
		{"invalid input", createReservation.ErrInvalidInput, http.StatusBadRequest, msgInvalidInput},
		{"access denied", createReservation.ErrAccessDenied, http.StatusForbidden, "forbidden"},
		{"user not found", createReservation.ErrUserNotFound, http.StatusNotFound, msgUserNotFound},
		{"company not found", createReservation.ErrCompanyNotFound, http.StatusNotFound, msgCompanyNotFound},
		{"internal", createReservation.ErrInternal, http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockUseCase{}
			uc.On("Execute", mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := serve(NewHandler(uc, logger.NewWithWriter(io.Discard, "error")), "u1", body)

			assert.Equal(t, tt.wantCode, rec.Code)
			var resp handlers.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantMsg, resp.Error)
		})
	}
}

func TestHandle_BadRequest(t *testing.T) {
	h := NewHandler(&mockUseCase{}, logger.NewWithWriter(io.Discard, "error"))

	assert.Equal(t, http.StatusUnauthorized, serve(h, "", body).Code)
	assert.Equal(t, http.StatusBadRequest, serve(h, "u1", `{"startDate":"tomorrow"}`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(h, "u1", ``).Code)
}
