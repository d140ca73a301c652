package create_reservation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mark-szabo/carwash/internal/domain"
	userRepo "github.com/mark-szabo/carwash/internal/infra/storage/user"
	"github.com/mark-szabo/carwash/internal/service/validation"
	"github.com/mark-szabo/carwash/pkg/clock"
	"github.com/mark-szabo/carwash/pkg/logger"
	"github.com/mark-szabo/carwash/pkg/ptr"
)

type mockRepo struct{ mock.Mock }

func (m *mockRepo) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	args := m.Called(ctx, res)
	if fn, ok := args.Get(0).(func(context.Context, *domain.Reservation) *domain.Reservation); ok {
		return fn(ctx, res), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *mockRepo) LockSlot(ctx context.Context, start time.Time) error {
	return m.Called(ctx, start).Error(0)
}

func (m *mockRepo) SetCalendarEventID(ctx context.Context, id int64, eventID *string) error {
	return m.Called(ctx, id, eventID).Error(0)
}

type mockUsers struct{ mock.Mock }

func (m *mockUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type stubValidator struct {
	result validation.Result
	err    error
	calls  int
}

func (s *stubValidator) Validate(_ context.Context, req validation.Request) (validation.Result, error) {
	s.calls++
	if req.Reservation.EndDate == nil {
		end := req.Reservation.StartDate.Add(3 * time.Hour)
		req.Reservation.EndDate = &end
	}
	return s.result, s.err
}

type stubMpv struct{ mpv bool }

func (s stubMpv) IsMpv(context.Context, string) (bool, error) { return s.mpv, nil }

type mockCalendar struct{ mock.Mock }

func (m *mockCalendar) CreateEvent(ctx context.Context, r *domain.Reservation, owner *domain.User) (*string, error) {
	args := m.Called(ctx, r, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*string), args.Error(1)
}

// directTx выполняет fn без транзакции
type directTx struct{}

func (directTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type admissions struct{ ops []string }

func (a *admissions) ObserveAdmitted(op string) { a.ops = append(a.ops, op) }

var cfg = domain.ReservationConfig{TimeUnit: 60, CarpetCleaningMultiplier: 2}

var start = time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)

type fixture struct {
	repo      *mockRepo
	users     *mockUsers
	validator *stubValidator
	calendar  *mockCalendar
	observer  *admissions
	uc        *UseCase
}

func newFixture(mpv bool) *fixture {
	f := &fixture{
		repo:      &mockRepo{},
		users:     &mockUsers{},
		validator: &stubValidator{result: validation.Result{Valid: true}},
		calendar:  &mockCalendar{},
		observer:  &admissions{},
	}
	f.uc = NewUseCase(f.repo, f.users, f.validator, stubMpv{mpv: mpv}, f.calendar, directTx{},
		clock.NewMock(start.Add(-24*time.Hour)), f.observer, cfg, logger.NewWithWriter(io.Discard, "error"))
	return f
}

func echoCreate(f *fixture) {
	f.repo.On("Create", mock.Anything, mock.Anything).Return(func(_ context.Context, r *domain.Reservation) *domain.Reservation {
		out := *r
		out.ID = 11
		return &out
	}, nil).Maybe()
}

func TestExecute_Success(t *testing.T) {
	f := newFixture(true)
	user := &domain.User{ID: "u1", Email: "u1@example.com", CalendarIntegration: true}
	f.users.On("GetByID", mock.Anything, "u1").Return(user, nil)
	f.repo.On("LockSlot", mock.Anything, start).Return(nil).Once()
	f.repo.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.Reservation) bool {
		return r.VehiclePlateNumber == "ABC123" && r.TimeRequirement == 120 && r.Mpv &&
			r.State == domain.StateSubmittedNotActual && r.CreatedByID == "u1"
	})).Return(&domain.Reservation{ID: 11, UserID: "u1", State: domain.StateSubmittedNotActual, TimeRequirement: 120}, nil).Once()
	f.calendar.On("CreateEvent", mock.Anything, mock.Anything, user).Return(ptr.Ptr("evt"), nil).Once()
	f.repo.On("SetCalendarEventID", mock.Anything, int64(11), ptr.Ptr("evt")).Return(nil).Once()

	resp, err := f.uc.Execute(context.Background(), &Request{
		ActorID:            "u1",
		VehiclePlateNumber: "abc-123",
		Services:           []domain.ServiceType{domain.ServiceCarpet},
		StartDate:          start,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(11), resp.ID)
	assert.Equal(t, domain.StateSubmittedNotActual, resp.State)
	assert.Equal(t, []string{"create"}, f.observer.ops)
	f.repo.AssertExpectations(t)
	f.calendar.AssertExpectations(t)
}

func TestExecute_DropoffPreConfirmed(t *testing.T) {
	f := newFixture(false)
	f.users.On("GetByID", mock.Anything, "u1").Return(&domain.User{ID: "u1"}, nil)
	f.repo.On("LockSlot", mock.Anything, start).Return(nil)
	echoCreate(f)

	resp, err := f.uc.Execute(context.Background(), &Request{
		ActorID:             "u1",
		VehiclePlateNumber:  "ABC123",
		Services:            []domain.ServiceType{domain.ServiceExterior},
		StartDate:           start,
		Location:            ptr.Ptr("M/-1/12"),
		DropoffPreConfirmed: true,
		Comment:             ptr.Ptr(" keys under the mat "),
	})

	require.NoError(t, err)
	assert.Equal(t, domain.StateDropoffAndLocationConfirmed, resp.State)
	assert.Equal(t, 60, resp.TimeRequirement)
	require.Len(t, resp.Comments, 1)
	assert.Equal(t, domain.CommentRoleUser, resp.Comments[0].Role)
	assert.Equal(t, "keys under the mat", resp.Comments[0].Message)
	f.calendar.AssertNotCalled(t, "CreateEvent", mock.Anything, mock.Anything, mock.Anything)
}

func TestExecute_CarwashAdminCommentRole(t *testing.T) {
	f := newFixture(false)
	f.users.On("GetByID", mock.Anything, "cw").Return(&domain.User{ID: "cw", IsCarwashAdmin: true}, nil)
	f.users.On("GetByID", mock.Anything, "u1").Return(&domain.User{ID: "u1"}, nil)
	f.repo.On("LockSlot", mock.Anything, start).Return(nil)
	echoCreate(f)

	resp, err := f.uc.Execute(context.Background(), &Request{
		ActorID:            "cw",
		UserID:             "u1",
		VehiclePlateNumber: "ABC123",
		Services:           []domain.ServiceType{domain.ServiceExterior},
		StartDate:          start,
		Comment:            ptr.Ptr("booked by phone"),
	})

	require.NoError(t, err)
	assert.Equal(t, "u1", resp.UserID)
	assert.Equal(t, "cw", resp.CreatedByID)
	assert.Equal(t, domain.CommentRoleCarwash, resp.Comments[0].Role)
}

func TestExecute_ValidationRejected(t *testing.T) {
	f := newFixture(false)
	f.users.On("GetByID", mock.Anything, "u1").Return(&domain.User{ID: "u1"}, nil)
	f.repo.On("LockSlot", mock.Anything, start).Return(nil)
	f.validator.result = validation.Result{Check: validation.CheckSlotCapacity, Reason: validation.MsgSlotFull}

	_, err := f.uc.Execute(context.Background(), &Request{
		ActorID:            "u1",
		VehiclePlateNumber: "ABC123",
		Services:           []domain.ServiceType{domain.ServiceExterior},
		StartDate:          start,
	})

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, validation.MsgSlotFull, vErr.Reason)
	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	assert.Empty(t, f.observer.ops)
}

func TestExecute_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"access denied", validation.ErrAccessDenied, ErrAccessDenied},
		{"owner missing", validation.ErrUserNotFound, ErrUserNotFound},
		{"company missing", validation.ErrCompanyNotFound, ErrCompanyNotFound},
		{"storage", fmt.Errorf("%w: boom", validation.ErrInternal), ErrInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(false)
			f.users.On("GetByID", mock.Anything, "u1").Return(&domain.User{ID: "u1"}, nil)
			f.repo.On("LockSlot", mock.Anything, start).Return(nil)
			f.validator.err = tt.err

			_, err := f.uc.Execute(context.Background(), &Request{
				ActorID:            "u1",
				UserID:             "u2",
				VehiclePlateNumber: "ABC123",
				Services:           []domain.ServiceType{domain.ServiceExterior},
				StartDate:          start,
			})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestExecute_UnknownActor(t *testing.T) {
	f := newFixture(false)
	f.users.On("GetByID", mock.Anything, "ghost").Return(nil, userRepo.ErrUserNotFound)

	_, err := f.uc.Execute(context.Background(), &Request{
		ActorID:            "ghost",
		VehiclePlateNumber: "ABC123",
		StartDate:          start,
	})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestExecute_CalendarFailureIsSwallowed(t *testing.T) {
	f := newFixture(false)
	f.users.On("GetByID", mock.Anything, "u1").Return(&domain.User{ID: "u1", CalendarIntegration: true}, nil)
	f.repo.On("LockSlot", mock.Anything, start).Return(nil)
	echoCreate(f)
	f.calendar.On("CreateEvent", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("quota")).Once()

	resp, err := f.uc.Execute(context.Background(), &Request{
		ActorID:            "u1",
		VehiclePlateNumber: "ABC123",
		Services:           []domain.ServiceType{domain.ServiceExterior},
		StartDate:          start,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(11), resp.ID)
	f.repo.AssertNotCalled(t, "SetCalendarEventID", mock.Anything, mock.Anything, mock.Anything)
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"no actor", Request{VehiclePlateNumber: "A", StartDate: start}},
		{"no plate", Request{ActorID: "u1", VehiclePlateNumber: " - ", StartDate: start}},
		{"plate too long", Request{ActorID: "u1", VehiclePlateNumber: "ABCDEFGHIJKLMNOPQRSTUVWXYZ", StartDate: start}},
		{"unknown service", Request{ActorID: "u1", VehiclePlateNumber: "A", StartDate: start, Services: []domain.ServiceType{"polish"}}},
		{"no start", Request{ActorID: "u1", VehiclePlateNumber: "A"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, validateRequest(&tt.req), ErrInvalidInput)
		})
	}

	assert.NoError(t, validateRequest(&Request{ActorID: "u1", VehiclePlateNumber: "abc 123", StartDate: start}))
}
