package validation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mark-szabo/carwash/internal/domain"
	companyRepo "github.com/mark-szabo/carwash/internal/infra/storage/company"
	userRepo "github.com/mark-szabo/carwash/internal/infra/storage/user"
)

// Request входные данные проверки
type Request struct {
	Reservation *domain.Reservation
	Actor       *domain.User
	IsUpdate    bool
	// ExcludeID исключается из агрегатов ёмкости (при обновлении - само бронирование)
	ExcludeID *int64
}

// Result итог проверки: Valid либо причина отказа
type Result struct {
	Valid  bool
	Check  string
	Reason string
}

func ok() Result {
	return Result{Valid: true}
}

func reject(check, reason string) Result {
	return Result{Check: check, Reason: reason}
}

// run состояние одного прогона пипелайна
type run struct {
	req   Request
	res   *domain.Reservation
	actor *domain.User
	owner *domain.User
	now   time.Time
	slot  domain.Slot
}

type check struct {
	name string
	// skip true - проверка не выполняется для этого прогона
	skip func(r *run) bool
	fn   func(ctx context.Context, r *run) (Result, error)
}

// Pipeline упорядоченная цепочка проверок создания/обновления бронирования.
// Порядок проверок определяет текст ошибки, который видит пользователь.
type Pipeline struct {
	accountant   CapacityAccountant
	reservations ReservationCounter
	blockers     BlockerRepository
	companies    CompanyRepository
	users        UserRepository
	calendar     *domain.SlotCalendar
	cfg          domain.ReservationConfig
	timeProvider TimeProvider
	observer     RejectionObserver
	logger       Logger

	checks []check
}

// NewPipeline создает новый экземпляр Pipeline
func NewPipeline(
	accountant CapacityAccountant,
	reservations ReservationCounter,
	blockers BlockerRepository,
	companies CompanyRepository,
	users UserRepository,
	calendar *domain.SlotCalendar,
	cfg domain.ReservationConfig,
	timeProvider TimeProvider,
	observer RejectionObserver,
	logger Logger,
) *Pipeline {
	p := &Pipeline{
		accountant:   accountant,
		reservations: reservations,
		blockers:     blockers,
		companies:    companies,
		users:        users,
		calendar:     calendar,
		cfg:          cfg,
		timeProvider: timeProvider,
		observer:     observer,
		logger:       logger,
	}

	p.checks = []check{
		{name: CheckServices, fn: p.checkServices},
		{name: CheckEndDate, fn: p.deriveEndDate},
		{name: "authorization", fn: p.authorize},
		{name: CheckSameDay, fn: p.checkSameDay},
		{name: CheckEndAfter, fn: p.checkEndAfterStart},
		{name: CheckPast, skip: isCarwashAdmin, fn: p.checkNotInPast},
		{name: CheckSlot, fn: p.checkFitsSlot},
		{name: CheckConcurrency, skip: skipConcurrency, fn: p.checkConcurrentLimit},
		{name: CheckBlocker, skip: isCarwashAdmin, fn: p.checkBlockers},
		{name: CheckDayCapacity, skip: isCarwashAdmin, fn: p.checkDayCapacity},
		{name: CheckSlotCapacity, skip: isCarwashAdmin, fn: p.checkSlotCapacity},
	}

	return p
}

// Validate прогоняет проверки по порядку до первого отказа.
// Отказ валидации возвращается в Result; ErrAccessDenied и ошибки хранилища - через error.
// Если EndDate не задан, он вычисляется и записывается в Reservation.
func (p *Pipeline) Validate(ctx context.Context, req Request) (Result, error) {
	if req.Reservation == nil || req.Actor == nil {
		return Result{}, fmt.Errorf("%w: reservation and actor are required", ErrInternal)
	}

	r := &run{
		req:   req,
		res:   req.Reservation,
		actor: req.Actor,
		now:   p.timeProvider.Now().UTC(),
	}

	for _, c := range p.checks {
		if c.skip != nil && c.skip(r) {
			continue
		}

		result, err := c.fn(ctx, r)
		if err != nil {
			return Result{}, err
		}
		if !result.Valid {
			p.logger.Warn("Validate: rejected by %s: user=%s, actor=%s, start=%s, reason=%q",
				c.name, r.res.UserID, r.actor.ID, r.res.StartDate.Format(time.RFC3339), result.Reason)
			if p.observer != nil {
				p.observer.ObserveRejected(c.name)
			}
			return result, nil
		}
	}

	return ok(), nil
}

func isCarwashAdmin(r *run) bool {
	return r.actor.IsCarwashAdmin
}

func skipConcurrency(r *run) bool {
	return r.req.IsUpdate || r.actor.IsAdmin || r.actor.IsCarwashAdmin
}

// 1. Набор услуг не пуст
func (p *Pipeline) checkServices(_ context.Context, r *run) (Result, error) {
	if len(r.res.Services) == 0 {
		return reject(CheckServices, MsgNoServices), nil
	}
	return ok(), nil
}

// 2. Конец бронирования: если не задан, берётся конец слота, начинающегося ровно в StartDate
func (p *Pipeline) deriveEndDate(_ context.Context, r *run) (Result, error) {
	if r.res.EndDate != nil {
		return ok(), nil
	}

	slot, found := p.calendar.FindByStart(r.res.StartDate)
	if !found {
		return reject(CheckEndDate, MsgNoSlotForStart), nil
	}

	end := slot.EndTime.OnDate(r.res.StartDate, p.calendar.Location).UTC()
	r.res.EndDate = &end
	return ok(), nil
}

// 3. Права: бронировать за другого может админ своей компании или админ мойки
func (p *Pipeline) authorize(ctx context.Context, r *run) (Result, error) {
	if r.res.UserID == r.actor.ID {
		r.owner = r.actor
		return ok(), nil
	}

	if !r.actor.IsAdmin && !r.actor.IsCarwashAdmin {
		return Result{}, ErrAccessDenied
	}

	owner, err := p.users.GetByID(ctx, r.res.UserID)
	if err != nil {
		if errors.Is(err, userRepo.ErrUserNotFound) {
			return Result{}, fmt.Errorf("%w: id=%s", ErrUserNotFound, r.res.UserID)
		}
		return Result{}, fmt.Errorf("%w: failed to get user: %w", ErrInternal, err)
	}

	if !r.actor.CanActFor(owner) {
		return Result{}, ErrAccessDenied
	}

	r.owner = owner
	return ok(), nil
}

// 4. Начало и конец в один календарный день (по UTC-дате)
func (p *Pipeline) checkSameDay(_ context.Context, r *run) (Result, error) {
	y1, m1, d1 := r.res.StartDate.UTC().Date()
	y2, m2, d2 := r.res.EndDate.UTC().Date()
	if y1 != y2 || m1 != m2 || d1 != d2 {
		return reject(CheckSameDay, MsgNotSameDay), nil
	}
	return ok(), nil
}

// 5. Конец позже начала
func (p *Pipeline) checkEndAfterStart(_ context.Context, r *run) (Result, error) {
	if !r.res.EndDate.After(r.res.StartDate) {
		return reject(CheckEndAfter, MsgEndBeforeStart), nil
	}
	return ok(), nil
}

// 6. Не в прошлом, с допуском minutesToAllowReserveInPast
func (p *Pipeline) checkNotInPast(_ context.Context, r *run) (Result, error) {
	threshold := r.now.Add(-time.Duration(p.cfg.MinutesToAllowReserveInPast) * time.Minute)
	if r.res.StartDate.Before(threshold) || r.res.EndDate.Before(threshold) {
		return reject(CheckPast, MsgInPast), nil
	}
	return ok(), nil
}

// 7. Начало и конец совпадают с границами одного из слотов с точностью до наносекунды
func (p *Pipeline) checkFitsSlot(_ context.Context, r *run) (Result, error) {
	slot, found := p.calendar.FindByBounds(r.res.StartDate, *r.res.EndDate)
	if !found {
		return reject(CheckSlot, MsgNotInSlot), nil
	}
	r.slot = slot
	return ok(), nil
}

// 8. Лимит одновременных активных бронирований (только при создании)
func (p *Pipeline) checkConcurrentLimit(ctx context.Context, r *run) (Result, error) {
	active, err := p.reservations.Count(ctx, domain.ReservationFilter{
		UserID: &r.actor.ID,
		States: domain.ActiveStates,
	})
	if err != nil {
		return Result{}, fmt.Errorf("%w: failed to count active reservations: %w", ErrInternal, err)
	}

	if active >= p.cfg.UserConcurrentReservationLimit {
		return reject(CheckConcurrency, fmt.Sprintf(MsgConcurrentLimit, p.cfg.UserConcurrentReservationLimit)), nil
	}
	return ok(), nil
}

// 9. Блокировки: блокер строго содержит запрошенный интервал
func (p *Pipeline) checkBlockers(ctx context.Context, r *run) (Result, error) {
	blockers, err := p.blockers.ListEndingAfter(ctx, r.res.StartDate)
	if err != nil {
		return Result{}, fmt.Errorf("%w: failed to get blockers: %w", ErrInternal, err)
	}

	for _, b := range blockers {
		if b.Blocks(r.res.StartDate, *r.res.EndDate) {
			return reject(CheckBlocker, MsgBlocked), nil
		}
	}
	return ok(), nil
}

// 10. Ёмкость дня: общий пул либо дневной лимит компании, плюс остаток на сегодня
func (p *Pipeline) checkDayCapacity(ctx context.Context, r *run) (Result, error) {
	isToday := p.calendar.IsSameLocalDay(r.res.StartDate, r.now)
	pastCutoff := isToday && r.now.In(p.calendar.Location).Hour() >= p.cfg.HoursAfterCompanyLimitIsNotChecked

	var company *domain.Company
	if !pastCutoff {
		c, err := p.companies.GetByName(ctx, r.owner.Company)
		if err != nil {
			if errors.Is(err, companyRepo.ErrCompanyNotFound) {
				return Result{}, fmt.Errorf("%w: name=%s", ErrCompanyNotFound, r.owner.Company)
			}
			return Result{}, fmt.Errorf("%w: failed to get company: %w", ErrInternal, err)
		}
		company = c
	}

	if pastCutoff || !company.TracksDailyLimit() {
		reserved, err := p.accountant.ReservedTimeOnDate(ctx, r.res.StartDate, nil, r.req.ExcludeID)
		if err != nil {
			return Result{}, fmt.Errorf("%w: %w", ErrInternal, err)
		}
		if reserved+r.res.TimeRequirement > p.calendar.TotalCapacity()*p.cfg.TimeUnit {
			return reject(CheckDayCapacity, MsgDayFull), nil
		}
	} else {
		reserved, err := p.accountant.ReservedTimeOnDate(ctx, r.res.StartDate, &company.Name, r.req.ExcludeID)
		if err != nil {
			return Result{}, fmt.Errorf("%w: %w", ErrInternal, err)
		}
		if reserved+r.res.TimeRequirement > company.DailyLimit*p.cfg.TimeUnit {
			return reject(CheckDayCapacity, MsgCompanyLimit), nil
		}
	}

	if isToday {
		toBeDone, err := p.accountant.ToBeDoneTodayTime(ctx, r.req.ExcludeID)
		if err != nil {
			return Result{}, fmt.Errorf("%w: %w", ErrInternal, err)
		}
		if toBeDone+r.res.TimeRequirement > p.accountant.RemainingSlotCapacityToday()*p.cfg.TimeUnit {
			return reject(CheckDayCapacity, MsgNotEnoughTimeToday), nil
		}
	}

	return ok(), nil
}

// 11. Ёмкость слота
func (p *Pipeline) checkSlotCapacity(ctx context.Context, r *run) (Result, error) {
	reserved, err := p.accountant.ReservedTimeInSlot(ctx, r.res.StartDate, r.req.ExcludeID)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrInternal, err)
	}
	if reserved+r.res.TimeRequirement > r.slot.Capacity*p.cfg.TimeUnit {
		return reject(CheckSlotCapacity, MsgSlotFull), nil
	}
	return ok(), nil
}
