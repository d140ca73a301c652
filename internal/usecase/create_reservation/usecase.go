package create_reservation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mark-szabo/carwash/internal/domain"
	userRepo "github.com/mark-szabo/carwash/internal/infra/storage/user"
	"github.com/mark-szabo/carwash/internal/service/validation"
)

// UseCase use case для создания бронирования
type UseCase struct {
	reservationRepo ReservationRepository
	userRepo        UserRepository
	validator       Validator
	mpv             MpvLookup
	calendar        CalendarService
	txManager       TransactionManager
	timeProvider    TimeProvider
	observer        AdmissionObserver
	cfg             domain.ReservationConfig
	logger          Logger
}

// NewUseCase создает новый экземпляр use case.
// calendar может быть nil - интеграция с календарем выключена.
func NewUseCase(
	reservationRepo ReservationRepository,
	userRepo UserRepository,
	validator Validator,
	mpv MpvLookup,
	calendar CalendarService,
	txManager TransactionManager,
	timeProvider TimeProvider,
	observer AdmissionObserver,
	cfg domain.ReservationConfig,
	logger Logger,
) *UseCase {
	return &UseCase{
		reservationRepo: reservationRepo,
		userRepo:        userRepo,
		validator:       validator,
		mpv:             mpv,
		calendar:        calendar,
		txManager:       txManager,
		timeProvider:    timeProvider,
		observer:        observer,
		cfg:             cfg,
		logger:          logger,
	}
}

// Execute выполняет use case создания бронирования.
// Проверки и запись идут в одной сериализуемой транзакции под advisory-lock слота,
// поэтому два параллельных запроса не могут переполнить слот.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateReservation: actor=%s, user=%s, plate=%s, start=%s",
		req.ActorID, req.UserID, req.VehiclePlateNumber, req.StartDate.UTC().Format(time.RFC3339))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateReservation: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем инициатора
	actor, err := uc.userRepo.GetByID(ctx, req.ActorID)
	if err != nil {
		if errors.Is(err, userRepo.ErrUserNotFound) {
			uc.logger.Warn("CreateReservation: actor=%s not found", req.ActorID)
			return nil, ErrAccessDenied
		}
		uc.logger.Error("CreateReservation: failed to get actor=%s: %v", req.ActorID, err)
		return nil, fmt.Errorf("%w: failed to get actor: %v", ErrInternal, err)
	}

	// 3. Собираем бронирование
	ownerID := req.UserID
	if ownerID == "" {
		ownerID = actor.ID
	}

	res := &domain.Reservation{
		UserID:             ownerID,
		CreatedByID:        actor.ID,
		VehiclePlateNumber: domain.NormalizePlate(req.VehiclePlateNumber),
		Services:           req.Services,
		StartDate:          req.StartDate.UTC(),
		EndDate:            utcPtr(req.EndDate),
		Private:            req.Private,
		Location:           req.Location,
	}
	res.TimeRequirement = uc.cfg.TimeRequirement(res.Services)
	res.State = domain.InitialState(req.DropoffPreConfirmed, req.Location)

	if req.Comment != nil && strings.TrimSpace(*req.Comment) != "" {
		res.Comments = []domain.Comment{uc.newComment(actor, ownerID, *req.Comment)}
	}

	var created *domain.Reservation

	// 4. Проверки и запись в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 4.1. Блокируем слот до конца транзакции
		if err := uc.reservationRepo.LockSlot(txCtx, res.StartDate); err != nil {
			uc.logger.Error("CreateReservation: failed to lock slot: %v", err)
			return fmt.Errorf("%w: failed to lock slot: %w", ErrInternal, err)
		}

		// 4.2. Цепочка проверок
		result, err := uc.validator.Validate(txCtx, validation.Request{
			Reservation: res,
			Actor:       actor,
		})
		if err != nil {
			return mapValidationError(err)
		}
		if !result.Valid {
			return &domain.ValidationError{Check: result.Check, Reason: result.Reason}
		}

		// 4.3. Признак минивэна по истории номера
		mpv, err := uc.mpv.IsMpv(txCtx, res.VehiclePlateNumber)
		if err != nil {
			uc.logger.Error("CreateReservation: failed to look up mpv for plate=%s: %v", res.VehiclePlateNumber, err)
			return fmt.Errorf("%w: failed to look up mpv: %w", ErrInternal, err)
		}
		res.Mpv = mpv

		// 4.4. Сохраняем
		created, err = uc.reservationRepo.Create(txCtx, res)
		if err != nil {
			uc.logger.Error("CreateReservation: failed to create reservation: %v", err)
			return fmt.Errorf("%w: failed to create reservation: %w", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			uc.logger.Warn("CreateReservation: rejected: %s", vErr.Reason)
		}
		return nil, err
	}

	uc.logger.Info("CreateReservation: successfully created reservation id=%d, state=%s", created.ID, created.State)
	if uc.observer != nil {
		uc.observer.ObserveAdmitted("create")
	}

	// 5. Событие в календаре владельца (best-effort)
	uc.createCalendarEvent(ctx, created, actor)

	return toResponse(created), nil
}

func (uc *UseCase) newComment(actor *domain.User, ownerID, message string) domain.Comment {
	role := domain.CommentRoleUser
	if actor.IsCarwashAdmin && actor.ID != ownerID {
		role = domain.CommentRoleCarwash
	}
	return domain.Comment{
		ID:        uuid.NewString(),
		UserID:    actor.ID,
		Role:      role,
		Timestamp: uc.timeProvider.Now().UTC(),
		Message:   strings.TrimSpace(message),
	}
}

func (uc *UseCase) createCalendarEvent(ctx context.Context, res *domain.Reservation, actor *domain.User) {
	if uc.calendar == nil {
		return
	}

	owner := actor
	if res.UserID != actor.ID {
		o, err := uc.userRepo.GetByID(ctx, res.UserID)
		if err != nil {
			uc.logger.Error("CreateReservation: failed to get owner=%s for calendar: %v", res.UserID, err)
			return
		}
		owner = o
	}
	if !owner.CalendarIntegration {
		return
	}

	eventID, err := uc.calendar.CreateEvent(ctx, res, owner)
	if err != nil {
		uc.logger.Error("CreateReservation: calendar event for reservation id=%d failed: %v", res.ID, err)
		return
	}
	if eventID == nil {
		return
	}

	if err := uc.reservationRepo.SetCalendarEventID(ctx, res.ID, eventID); err != nil {
		uc.logger.Error("CreateReservation: failed to save calendar event id for reservation id=%d: %v", res.ID, err)
		return
	}
	res.CalendarEventID = eventID
}

func mapValidationError(err error) error {
	switch {
	case errors.Is(err, validation.ErrAccessDenied):
		return ErrAccessDenied
	case errors.Is(err, validation.ErrUserNotFound):
		return fmt.Errorf("%w: %v", ErrUserNotFound, err)
	case errors.Is(err, validation.ErrCompanyNotFound):
		return fmt.Errorf("%w: %v", ErrCompanyNotFound, err)
	default:
		return fmt.Errorf("%w: validation: %w", ErrInternal, err)
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
