package update_reservation

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mark-szabo/carwash/internal/domain"
	reservationRepo "github.com/mark-szabo/carwash/internal/infra/storage/reservation"
	"github.com/mark-szabo/carwash/internal/service/validation"
	"github.com/mark-szabo/carwash/pkg/logger"
	"github.com/mark-szabo/carwash/pkg/ptr"
)

type mockRepo struct{ mock.Mock }

func (m *mockRepo) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// копия, чтобы тест видел исходное состояние
	r := *args.Get(0).(*domain.Reservation)
	return &r, args.Error(1)
}

func (m *mockRepo) Update(ctx context.Context, res *domain.Reservation) error {
	return m.Called(ctx, res).Error(0)
}

func (m *mockRepo) LockSlot(ctx context.Context, start time.Time) error {
	return m.Called(ctx, start).Error(0)
}

func (m *mockRepo) SetCalendarEventID(ctx context.Context, id int64, eventID *string) error {
	return m.Called(ctx, id, eventID).Error(0)
}

type stubUsers map[string]*domain.User

func (s stubUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, errors.New("unexpected user lookup")
}

type recordingValidator struct {
	result validation.Result
	last   validation.Request
}

func (v *recordingValidator) Validate(_ context.Context, req validation.Request) (validation.Result, error) {
	v.last = req
	return v.result, nil
}

type stubMpv struct{ mpv bool }

func (s stubMpv) IsMpv(context.Context, string) (bool, error) { return s.mpv, nil }

type mockCalendar struct{ mock.Mock }

func (m *mockCalendar) UpdateEvent(ctx context.Context, r *domain.Reservation, owner *domain.User) (*string, error) {
	args := m.Called(ctx, r, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*string), args.Error(1)
}

type directTx struct{}

func (directTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var (
	cfg      = domain.ReservationConfig{TimeUnit: 60, CarpetCleaningMultiplier: 2}
	oldStart = time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	newStart = time.Date(2024, 1, 11, 8, 0, 0, 0, time.UTC)
)

func existing() *domain.Reservation {
	end := oldStart.Add(3 * time.Hour)
	return &domain.Reservation{
		ID:                 3,
		UserID:             "u1",
		VehiclePlateNumber: "ABC123",
		Services:           []domain.ServiceType{domain.ServiceExterior},
		StartDate:          oldStart,
		EndDate:            &end,
		TimeRequirement:    60,
		State:              domain.StateSubmittedNotActual,
		Mpv:                true,
		CalendarEventID:    ptr.Ptr("evt"),
	}
}

func users() stubUsers {
	return stubUsers{
		"u1":     {ID: "u1", Company: "contoso", CalendarIntegration: true},
		"u2":     {ID: "u2", Company: "contoso"},
		"admin":  {ID: "admin", Company: "contoso", IsAdmin: true},
		"fadmin": {ID: "fadmin", Company: "fabrikam", IsAdmin: true},
	}
}

func newUseCase(repo *mockRepo, v *recordingValidator, cal *mockCalendar, mpv bool) *UseCase {
	return NewUseCase(repo, users(), v, stubMpv{mpv: mpv}, cal, directTx{}, nil, cfg, logger.NewWithWriter(io.Discard, "error"))
}

func request(actor string) *Request {
	return &Request{
		ActorID:            actor,
		ReservationID:      3,
		VehiclePlateNumber: "xyz 987",
		Services:           []domain.ServiceType{domain.ServiceExterior, domain.ServiceCarpet},
		StartDate:          newStart,
	}
}

func TestExecute_Success(t *testing.T) {
	repo := &mockRepo{}
	v := &recordingValidator{result: validation.Result{Valid: true}}
	cal := &mockCalendar{}
	uc := newUseCase(repo, v, cal, false)

	repo.On("GetByID", mock.Anything, int64(3)).Return(existing(), nil)
	repo.On("LockSlot", mock.Anything, newStart).Return(nil).Once()
	repo.On("Update", mock.Anything, mock.MatchedBy(func(r *domain.Reservation) bool {
		// mpv stays set even though the new plate has no history
		return r.VehiclePlateNumber == "XYZ987" && r.TimeRequirement == 120 && r.Mpv
	})).Return(nil).Once()
	cal.On("UpdateEvent", mock.Anything, mock.Anything, mock.Anything).Return(ptr.Ptr("evt"), nil).Once()

	resp, err := uc.Execute(context.Background(), request("u1"))

	require.NoError(t, err)
	assert.Equal(t, newStart, resp.StartDate)
	assert.True(t, v.last.IsUpdate)
	require.NotNil(t, v.last.ExcludeID)
	assert.Equal(t, int64(3), *v.last.ExcludeID)
	repo.AssertExpectations(t)
	cal.AssertExpectations(t)
	repo.AssertNotCalled(t, "SetCalendarEventID", mock.Anything, mock.Anything, mock.Anything)
}

func TestExecute_SameDateSkipsCalendar(t *testing.T) {
	repo := &mockRepo{}
	cal := &mockCalendar{}
	uc := newUseCase(repo, &recordingValidator{result: validation.Result{Valid: true}}, cal, false)

	repo.On("GetByID", mock.Anything, int64(3)).Return(existing(), nil)
	repo.On("LockSlot", mock.Anything, oldStart).Return(nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)

	req := request("u1")
	req.StartDate = oldStart
	_, err := uc.Execute(context.Background(), req)

	require.NoError(t, err)
	cal.AssertNotCalled(t, "UpdateEvent", mock.Anything, mock.Anything, mock.Anything)
}

func TestExecute_Access(t *testing.T) {
	tests := []struct {
		actor   string
		allowed bool
	}{
		{"u1", true},
		{"admin", true},
		{"u2", false},
		{"fadmin", false},
	}

	for _, tt := range tests {
		t.Run(tt.actor, func(t *testing.T) {
			repo := &mockRepo{}
			cal := &mockCalendar{}
			uc := newUseCase(repo, &recordingValidator{result: validation.Result{Valid: true}}, cal, false)

			repo.On("GetByID", mock.Anything, int64(3)).Return(existing(), nil)
			repo.On("LockSlot", mock.Anything, mock.Anything).Return(nil).Maybe()
			repo.On("Update", mock.Anything, mock.Anything).Return(nil).Maybe()
			cal.On("UpdateEvent", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil).Maybe()

			_, err := uc.Execute(context.Background(), request(tt.actor))
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrAccessDenied)
				repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestExecute_NotFound(t *testing.T) {
	repo := &mockRepo{}
	uc := newUseCase(repo, &recordingValidator{}, &mockCalendar{}, false)
	repo.On("GetByID", mock.Anything, int64(3)).Return(nil, reservationRepo.ErrReservationNotFound)

	_, err := uc.Execute(context.Background(), request("u1"))
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestExecute_Rejected(t *testing.T) {
	repo := &mockRepo{}
	v := &recordingValidator{result: validation.Result{Check: validation.CheckBlocker, Reason: validation.MsgBlocked}}
	uc := newUseCase(repo, v, &mockCalendar{}, false)
	repo.On("GetByID", mock.Anything, int64(3)).Return(existing(), nil)
	repo.On("LockSlot", mock.Anything, newStart).Return(nil)

	_, err := uc.Execute(context.Background(), request("u1"))

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, validation.MsgBlocked, vErr.Reason)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}
