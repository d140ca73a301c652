package reservations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/mark-szabo/carwash/internal/domain"
	reservationRepo "github.com/mark-szabo/carwash/internal/infra/storage/reservation"
	userRepo "github.com/mark-szabo/carwash/internal/infra/storage/user"
	"github.com/mark-szabo/carwash/internal/service/reservations/models"
)

// Service операции жизненного цикла бронирования, кроме создания и изменения
type Service struct {
	reservationRepo ReservationRepository
	userRepo        UserRepository
	calendar        CalendarService
	notifier        Notifier
	bot             StaffBot
	capacity        CapacityReader
	txManager       TransactionManager
	timeProvider    TimeProvider
	location        *time.Location
	logger          Logger
}

// NewService создает новый экземпляр сервиса бронирований.
// calendar и bot могут быть nil - соответствующая интеграция выключена.
func NewService(
	reservationRepo ReservationRepository,
	userRepo UserRepository,
	calendar CalendarService,
	notifier Notifier,
	bot StaffBot,
	capacity CapacityReader,
	txManager TransactionManager,
	timeProvider TimeProvider,
	location *time.Location,
	logger Logger,
) *Service {
	return &Service{
		reservationRepo: reservationRepo,
		userRepo:        userRepo,
		calendar:        calendar,
		notifier:        notifier,
		bot:             bot,
		capacity:        capacity,
		txManager:       txManager,
		timeProvider:    timeProvider,
		location:        location,
		logger:          logger,
	}
}

// GetByID получает бронирование по ID.
// Видеть бронирование могут владелец, админ его компании и админ мойки.
func (s *Service) GetByID(ctx context.Context, id int64, actorID string) (*models.ReservationResponse, error) {
	s.logger.Info("GetByID: fetching reservation id=%d for actor=%s", id, actorID)

	actor, err := s.getActor(ctx, "GetByID", actorID)
	if err != nil {
		return nil, err
	}

	res, _, err := s.getWithAccess(ctx, "GetByID", id, actor)
	if err != nil {
		return nil, err
	}

	return models.FromDomainReservation(res), nil
}

// ListByUser бронирования пользователя, сначала самые поздние
func (s *Service) ListByUser(ctx context.Context, userID, actorID string, limit uint64) (*models.ReservationListResponse, error) {
	s.logger.Info("ListByUser: fetching reservations of user=%s for actor=%s", userID, actorID)

	actor, err := s.getActor(ctx, "ListByUser", actorID)
	if err != nil {
		return nil, err
	}

	owner := actor
	if userID != actor.ID {
		owner, err = s.userRepo.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, userRepo.ErrUserNotFound) {
				s.logger.Warn("ListByUser: user=%s not found", userID)
				return nil, ErrUserNotFound
			}
			s.logger.Error("ListByUser: failed to get user=%s: %v", userID, err)
			return nil, fmt.Errorf("%w: ListByUser - failed to get user: %v", ErrInternal, err)
		}
	}
	if !actor.CanActFor(owner) {
		s.logger.Warn("ListByUser: access denied for actor=%s to user=%s", actor.ID, userID)
		return nil, ErrAccessDenied
	}

	list, err := s.reservationRepo.List(ctx, domain.ReservationFilter{UserID: &owner.ID, Limit: limit})
	if err != nil {
		s.logger.Error("ListByUser: repository error for user=%s: %v", userID, err)
		return nil, fmt.Errorf("%w: ListByUser - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListByUser: successfully fetched %d reservations for user=%s", len(list), userID)
	return models.FromDomainReservationList(list), nil
}

// ConfirmDropoff ключи оставлены, место машины известно.
// Доступно владельцу, админу его компании и админу мойки.
func (s *Service) ConfirmDropoff(ctx context.Context, id int64, actorID string, req *models.ConfirmDropoffRequest) (*models.ReservationResponse, error) {
	s.logger.Info("ConfirmDropoff: reservation id=%d by actor=%s", id, actorID)

	location := strings.TrimSpace(req.Location)
	if location == "" {
		return nil, fmt.Errorf("%w: location is required", ErrInvalidInput)
	}

	actor, err := s.getActor(ctx, "ConfirmDropoff", actorID)
	if err != nil {
		return nil, err
	}

	res, _, err := s.transition(ctx, "ConfirmDropoff", id, actor, domain.TransitionConfirmDropoff, func(txCtx context.Context, res *domain.Reservation) error {
		res.Location = &location
		return s.reservationRepo.UpdateDropoff(txCtx, res.ID, res.State, location)
	})
	if err != nil {
		return nil, err
	}

	if s.bot != nil {
		if err := s.bot.DropoffConfirmed(ctx, res); err != nil {
			s.logger.Warn("ConfirmDropoff: staff notification failed for reservation id=%d: %v", id, err)
		}
	}

	return models.FromDomainReservation(res), nil
}

// StartWash мойка началась. Только админ мойки.
func (s *Service) StartWash(ctx context.Context, id int64, actorID string) (*models.ReservationResponse, error) {
	s.logger.Info("StartWash: reservation id=%d by actor=%s", id, actorID)

	actor, err := s.getCarwashAdmin(ctx, "StartWash", actorID)
	if err != nil {
		return nil, err
	}

	res, _, err := s.transition(ctx, "StartWash", id, actor, domain.TransitionStartWash, s.saveState)
	if err != nil {
		return nil, err
	}
	return models.FromDomainReservation(res), nil
}

// CompleteWash мойка закончена: NotYetPaid для частного заказа, иначе Done.
// Владелец получает уведомление.
func (s *Service) CompleteWash(ctx context.Context, id int64, actorID string) (*models.ReservationResponse, error) {
	s.logger.Info("CompleteWash: reservation id=%d by actor=%s", id, actorID)

	actor, err := s.getCarwashAdmin(ctx, "CompleteWash", actorID)
	if err != nil {
		return nil, err
	}

	res, owner, err := s.transition(ctx, "CompleteWash", id, actor, domain.TransitionCompleteWash, s.saveState)
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyCompleted(ctx, res, owner)

	return models.FromDomainReservation(res), nil
}

// ConfirmPayment оплата получена. Только админ мойки и только из NotYetPaid.
func (s *Service) ConfirmPayment(ctx context.Context, id int64, actorID string) (*models.ReservationResponse, error) {
	s.logger.Info("ConfirmPayment: reservation id=%d by actor=%s", id, actorID)

	actor, err := s.getCarwashAdmin(ctx, "ConfirmPayment", actorID)
	if err != nil {
		return nil, err
	}

	res, _, err := s.transition(ctx, "ConfirmPayment", id, actor, domain.TransitionConfirmPayment, s.saveState)
	if err != nil {
		return nil, err
	}
	return models.FromDomainReservation(res), nil
}

// SetState принудительно выставляет состояние без проверки переходов. Только админ мойки.
func (s *Service) SetState(ctx context.Context, id int64, actorID string, req *models.SetStateRequest) (*models.ReservationResponse, error) {
	s.logger.Info("SetState: reservation id=%d to state=%s by actor=%s", id, req.State, actorID)

	state := domain.State(req.State)
	if !state.IsValid() {
		s.logger.Warn("SetState: invalid state=%s for reservation id=%d", req.State, id)
		return nil, fmt.Errorf("%w: unknown state %q", ErrInvalidInput, req.State)
	}

	actor, err := s.getCarwashAdmin(ctx, "SetState", actorID)
	if err != nil {
		return nil, err
	}

	var res *domain.Reservation
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		res, _, err = s.getWithAccess(txCtx, "SetState", id, actor)
		if err != nil {
			return err
		}
		res.State = state
		return s.saveState(txCtx, res)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("SetState: reservation id=%d is now %s", id, state)
	return models.FromDomainReservation(res), nil
}

// AddComment добавляет комментарий.
// Комментарий админа мойки к чужому бронированию получает роль carwash и уходит владельцу уведомлением;
// комментарий пользователя пересылается в чат сотрудников.
func (s *Service) AddComment(ctx context.Context, id int64, actorID string, req *models.AddCommentRequest) (*models.ReservationResponse, error) {
	s.logger.Info("AddComment: reservation id=%d by actor=%s", id, actorID)

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(message) > domain.MaxCommentLength {
		return nil, fmt.Errorf("%w: message is too long", ErrInvalidInput)
	}

	actor, err := s.getActor(ctx, "AddComment", actorID)
	if err != nil {
		return nil, err
	}

	var (
		res     *domain.Reservation
		owner   *domain.User
		comment domain.Comment
	)
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		res, owner, err = s.getWithAccess(txCtx, "AddComment", id, actor)
		if err != nil {
			return err
		}

		role := domain.CommentRoleUser
		if actor.IsCarwashAdmin && actor.ID != res.UserID {
			role = domain.CommentRoleCarwash
		}
		comment = domain.Comment{
			ID:        uuid.NewString(),
			UserID:    actor.ID,
			Role:      role,
			Timestamp: s.timeProvider.Now().UTC(),
			Message:   message,
		}

		if err := s.reservationRepo.AppendComment(txCtx, res.ID, comment); err != nil {
			s.logger.Error("AddComment: repository error for reservation id=%d: %v", id, err)
			return fmt.Errorf("%w: AddComment - repository error: %v", ErrInternal, err)
		}
		res.Comments = append(res.Comments, comment)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if actor.IsCarwashAdmin {
		s.notifier.NotifyComment(ctx, res, owner, comment)
	} else if s.bot != nil {
		if err := s.bot.UserCommented(ctx, res, comment); err != nil {
			s.logger.Warn("AddComment: staff notification failed for reservation id=%d: %v", id, err)
		}
	}

	s.logger.Info("AddComment: comment %s added to reservation id=%d, role=%s", comment.ID, id, comment.Role)
	return models.FromDomainReservation(res), nil
}

// Delete удаляет бронирование и событие в календаре владельца
func (s *Service) Delete(ctx context.Context, id int64, actorID string) error {
	s.logger.Info("Delete: reservation id=%d by actor=%s", id, actorID)

	actor, err := s.getActor(ctx, "Delete", actorID)
	if err != nil {
		return err
	}

	var (
		res   *domain.Reservation
		owner *domain.User
	)
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		res, owner, err = s.getWithAccess(txCtx, "Delete", id, actor)
		if err != nil {
			return err
		}

		if err := s.reservationRepo.Delete(txCtx, id); err != nil {
			if errors.Is(err, reservationRepo.ErrReservationNotFound) {
				return ErrReservationNotFound
			}
			s.logger.Error("Delete: repository error for reservation id=%d: %v", id, err)
			return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.calendar != nil && res.CalendarEventID != nil {
		if err := s.calendar.DeleteEvent(ctx, res, owner); err != nil {
			s.logger.Error("Delete: calendar event for reservation id=%d failed: %v", id, err)
		}
	}

	s.logger.Info("Delete: successfully deleted reservation id=%d", id)
	return nil
}

// IsMpv признак минивэна из самого позднего бронирования с этим номером; без истории - false
func (s *Service) IsMpv(ctx context.Context, plate string) (bool, error) {
	normalized := domain.NormalizePlate(plate)
	if normalized == "" {
		return false, fmt.Errorf("%w: plate is required", ErrInvalidInput)
	}

	list, err := s.reservationRepo.List(ctx, domain.ReservationFilter{
		PlateNumber: &normalized,
		Limit:       1,
	})
	if err != nil {
		s.logger.Error("IsMpv: repository error for plate=%s: %v", normalized, err)
		return false, fmt.Errorf("%w: IsMpv - repository error: %w", ErrInternal, err)
	}

	if len(list) == 0 {
		return false, nil
	}
	return list[0].Mpv, nil
}

// GetMpv IsMpv в виде ответа API
func (s *Service) GetMpv(ctx context.Context, plate string) (*models.MpvResponse, error) {
	mpv, err := s.IsMpv(ctx, plate)
	if err != nil {
		return nil, err
	}
	return &models.MpvResponse{VehiclePlateNumber: domain.NormalizePlate(plate), Mpv: mpv}, nil
}

// Capacity занятость слотов на дату day ("YYYY-MM-DD", часовой пояс мойки)
func (s *Service) Capacity(ctx context.Context, day string) (*models.CapacityResponse, error) {
	date, err := time.ParseInLocation(domain.DateFormat, day, s.location)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date %q", ErrInvalidInput, day)
	}

	summary, err := s.capacity.Summary(ctx, date)
	if err != nil {
		s.logger.Error("Capacity: failed to build summary for %s: %v", day, err)
		return nil, fmt.Errorf("%w: Capacity - %v", ErrInternal, err)
	}

	return models.FromDaySummary(summary), nil
}

// Вспомогательные методы

// transition переход по ребру жизненного цикла в транзакции; save сохраняет новое состояние
func (s *Service) transition(
	ctx context.Context,
	op string,
	id int64,
	actor *domain.User,
	t domain.Transition,
	save func(ctx context.Context, res *domain.Reservation) error,
) (*domain.Reservation, *domain.User, error) {
	var (
		res   *domain.Reservation
		owner *domain.User
	)

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		var err error
		res, owner, err = s.getWithAccess(txCtx, op, id, actor)
		if err != nil {
			return err
		}

		next, err := t.Apply(res)
		if err != nil {
			s.logger.Warn("%s: %v, reservation id=%d", op, err, id)
			return fmt.Errorf("%w: %v", ErrInvalidTransition, err)
		}

		prev := res.State
		res.State = next
		if err := save(txCtx, res); err != nil {
			return err
		}

		s.logger.Info("%s: reservation id=%d moved %s -> %s", op, id, prev, next)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return res, owner, nil
}

func (s *Service) saveState(ctx context.Context, res *domain.Reservation) error {
	if err := s.reservationRepo.UpdateState(ctx, res.ID, res.State); err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			return ErrReservationNotFound
		}
		s.logger.Error("saveState: repository error for reservation id=%d: %v", res.ID, err)
		return fmt.Errorf("%w: saveState - repository error: %v", ErrInternal, err)
	}
	return nil
}

// getActor загружает инициатора; неизвестный пользователь не имеет доступа
func (s *Service) getActor(ctx context.Context, op, actorID string) (*domain.User, error) {
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, userRepo.ErrUserNotFound) {
			s.logger.Warn("%s: actor=%s not found", op, actorID)
			return nil, ErrAccessDenied
		}
		s.logger.Error("%s: failed to get actor=%s: %v", op, actorID, err)
		return nil, fmt.Errorf("%w: %s - failed to get actor: %v", ErrInternal, op, err)
	}
	return actor, nil
}

func (s *Service) getCarwashAdmin(ctx context.Context, op, actorID string) (*domain.User, error) {
	actor, err := s.getActor(ctx, op, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsCarwashAdmin {
		s.logger.Warn("%s: actor=%s is not a carwash admin", op, actorID)
		return nil, ErrAccessDenied
	}
	return actor, nil
}

// getWithAccess загружает бронирование и владельца, проверяя права actor
func (s *Service) getWithAccess(ctx context.Context, op string, id int64, actor *domain.User) (*domain.Reservation, *domain.User, error) {
	res, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			s.logger.Warn("%s: reservation id=%d not found", op, id)
			return nil, nil, ErrReservationNotFound
		}
		s.logger.Error("%s: repository error for reservation id=%d: %v", op, id, err)
		return nil, nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}

	owner := actor
	if res.UserID != actor.ID {
		owner, err = s.userRepo.GetByID(ctx, res.UserID)
		if err != nil {
			s.logger.Error("%s: failed to get owner=%s of reservation id=%d: %v", op, res.UserID, id, err)
			return nil, nil, fmt.Errorf("%w: %s - failed to get owner: %v", ErrInternal, op, err)
		}
	}

	if !actor.CanActFor(owner) {
		s.logger.Warn("%s: access denied for actor=%s to reservation id=%d", op, actor.ID, id)
		return nil, nil, ErrAccessDenied
	}

	return res, owner, nil
}
