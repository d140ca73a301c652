package update_reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mark-szabo/carwash/internal/domain"
	reservationRepo "github.com/mark-szabo/carwash/internal/infra/storage/reservation"
	userRepo "github.com/mark-szabo/carwash/internal/infra/storage/user"
	"github.com/mark-szabo/carwash/internal/service/validation"
)

// UseCase use case для изменения бронирования
type UseCase struct {
	reservationRepo ReservationRepository
	userRepo        UserRepository
	validator       Validator
	mpv             MpvLookup
	calendar        CalendarService
	txManager       TransactionManager
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
		observer:        observer,
		cfg:             cfg,
		logger:          logger,
	}
}

// Execute выполняет use case изменения бронирования.
// Ёмкость считается без учёта самого бронирования; лимит одновременных бронирований не проверяется.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("UpdateReservation: actor=%s, reservation=%d, start=%s",
		req.ActorID, req.ReservationID, req.StartDate.UTC().Format(time.RFC3339))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("UpdateReservation: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем инициатора
	actor, err := uc.getUser(ctx, req.ActorID)
	if err != nil {
		if errors.Is(err, userRepo.ErrUserNotFound) {
			uc.logger.Warn("UpdateReservation: actor=%s not found", req.ActorID)
			return nil, ErrAccessDenied
		}
		return nil, err
	}

	var (
		updated     *domain.Reservation
		owner       *domain.User
		dateChanged bool
	)

	// 3. Изменение в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 3.1. Текущее состояние (FOR UPDATE)
		existing, err := uc.reservationRepo.GetByID(txCtx, req.ReservationID)
		if err != nil {
			if errors.Is(err, reservationRepo.ErrReservationNotFound) {
				uc.logger.Warn("UpdateReservation: reservation id=%d not found", req.ReservationID)
				return ErrReservationNotFound
			}
			uc.logger.Error("UpdateReservation: failed to get reservation id=%d: %v", req.ReservationID, err)
			return fmt.Errorf("%w: failed to get reservation: %w", ErrInternal, err)
		}

		// 3.2. Права: владелец, админ его компании или админ мойки
		owner = actor
		if existing.UserID != actor.ID {
			owner, err = uc.getUser(txCtx, existing.UserID)
			if errors.Is(err, userRepo.ErrUserNotFound) {
				uc.logger.Error("UpdateReservation: owner=%s of reservation id=%d not found", existing.UserID, existing.ID)
				return fmt.Errorf("%w: owner not found: %w", ErrInternal, err)
			}
			if err != nil {
				return err
			}
		}
		if !actor.CanActFor(owner) {
			uc.logger.Warn("UpdateReservation: access denied for actor=%s to reservation id=%d", actor.ID, existing.ID)
			return ErrAccessDenied
		}

		// 3.3. Новые значения
		next := *existing
		next.VehiclePlateNumber = domain.NormalizePlate(req.VehiclePlateNumber)
		next.Services = req.Services
		next.StartDate = req.StartDate.UTC()
		next.EndDate = utcPtr(req.EndDate)
		next.Private = req.Private
		next.Location = req.Location
		next.TimeRequirement = uc.cfg.TimeRequirement(req.Services)

		// 3.4. Блокируем целевой слот
		if err := uc.reservationRepo.LockSlot(txCtx, next.StartDate); err != nil {
			uc.logger.Error("UpdateReservation: failed to lock slot: %v", err)
			return fmt.Errorf("%w: failed to lock slot: %w", ErrInternal, err)
		}

		// 3.5. Цепочка проверок без учёта самого бронирования
		result, err := uc.validator.Validate(txCtx, validation.Request{
			Reservation: &next,
			Actor:       actor,
			IsUpdate:    true,
			ExcludeID:   &existing.ID,
		})
		if err != nil {
			return mapValidationError(err)
		}
		if !result.Valid {
			return &domain.ValidationError{Check: result.Check, Reason: result.Reason}
		}

		// 3.6. Признак минивэна не сбрасывается
		mpv, err := uc.mpv.IsMpv(txCtx, next.VehiclePlateNumber)
		if err != nil {
			uc.logger.Error("UpdateReservation: failed to look up mpv for plate=%s: %v", next.VehiclePlateNumber, err)
			return fmt.Errorf("%w: failed to look up mpv: %w", ErrInternal, err)
		}
		next.Mpv = existing.Mpv || mpv

		// 3.7. Сохраняем
		if err := uc.reservationRepo.Update(txCtx, &next); err != nil {
			if errors.Is(err, reservationRepo.ErrReservationNotFound) {
				return ErrReservationNotFound
			}
			uc.logger.Error("UpdateReservation: failed to update reservation id=%d: %v", next.ID, err)
			return fmt.Errorf("%w: failed to update reservation: %w", ErrInternal, err)
		}

		updated = &next
		dateChanged = !existing.StartDate.Equal(next.StartDate)
		return nil
	})
	if err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			uc.logger.Warn("UpdateReservation: rejected: %s", vErr.Reason)
		}
		return nil, err
	}

	uc.logger.Info("UpdateReservation: successfully updated reservation id=%d", updated.ID)
	if uc.observer != nil {
		uc.observer.ObserveAdmitted("update")
	}

	// 4. Календарь владельца (best-effort)
	if dateChanged && owner.CalendarIntegration {
		uc.updateCalendarEvent(ctx, updated, owner)
	}

	return toResponse(updated), nil
}

func (uc *UseCase) getUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := uc.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, userRepo.ErrUserNotFound) {
			return nil, err
		}
		uc.logger.Error("UpdateReservation: failed to get user=%s: %v", id, err)
		return nil, fmt.Errorf("%w: failed to get user: %w", ErrInternal, err)
	}
	return user, nil
}

func (uc *UseCase) updateCalendarEvent(ctx context.Context, res *domain.Reservation, owner *domain.User) {
	if uc.calendar == nil {
		return
	}

	eventID, err := uc.calendar.UpdateEvent(ctx, res, owner)
	if err != nil {
		uc.logger.Error("UpdateReservation: calendar event for reservation id=%d failed: %v", res.ID, err)
		return
	}
	if eventID == nil || (res.CalendarEventID != nil && *res.CalendarEventID == *eventID) {
		return
	}

	if err := uc.reservationRepo.SetCalendarEventID(ctx, res.ID, eventID); err != nil {
		uc.logger.Error("UpdateReservation: failed to save calendar event id for reservation id=%d: %v", res.ID, err)
		return
	}
	res.CalendarEventID = eventID
}

func mapValidationError(err error) error {
	switch {
	case errors.Is(err, validation.ErrAccessDenied):
		return ErrAccessDenied
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
