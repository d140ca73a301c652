package reservation

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/mark-szabo/carwash/internal/domain"
	"github.com/mark-szabo/carwash/pkg/dbmetrics"
	"github.com/mark-szabo/carwash/pkg/psqlbuilder"
)

const table = "reservations"

var columns = []string{
	"id",
	"user_id",
	"created_by_id",
	"vehicle_plate_number",
	"services",
	"start_date",
	"end_date",
	"time_requirement",
	"state",
	"private",
	"mpv",
	"location",
	"comments",
	"key_locker_box_id",
	"calendar_event_id",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет новое бронирование.
// Если в контексте передана активная транзакция, использует её.
func (r *Repository) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	comments, err := marshalComments(res.Comments)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - marshal comments: %v", ErrBuildQuery, err)
	}

	query, args, err := psqlbuilder.Insert(table).
		Columns(
			"user_id",
			"created_by_id",
			"vehicle_plate_number",
			"services",
			"start_date",
			"end_date",
			"time_requirement",
			"state",
			"private",
			"mpv",
			"location",
			"comments",
			"key_locker_box_id",
			"calendar_event_id",
		).
		Values(
			res.UserID,
			res.CreatedByID,
			res.VehiclePlateNumber,
			pq.Array(servicesToStrings(res.Services)),
			res.StartDate.UTC(),
			utcPtr(res.EndDate),
			res.TimeRequirement,
			res.State,
			res.Private,
			res.Mpv,
			res.Location,
			comments,
			res.KeyLockerBoxID,
			res.CalendarEventID,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&res.ID, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	res.CreatedAt = createdAt.Time
	res.UpdatedAt = updatedAt.Time

	return res, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id})

	// внутри транзакции блокируем строку до конца изменения
	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	res, err := scanReservation(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan reservation: %w", ErrScanRow, err)
	}

	return res, nil
}

// List получает бронирования по фильтру, сначала самые поздние
func (r *Repository) List(ctx context.Context, filter domain.ReservationFilter) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := applyFilter(psqlbuilder.Select(columns...).From(table), filter).
		OrderBy("start_date DESC", "id DESC")
	if filter.Limit > 0 {
		builder = builder.Limit(filter.Limit)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

// Count количество бронирований по фильтру
func (r *Repository) Count(ctx context.Context, filter domain.ReservationFilter) (int, error) {
	return r.aggregate(ctx, "Count", "COUNT(*)", filter)
}

// SumTimeRequirement сумма time_requirement (минуты) по фильтру
func (r *Repository) SumTimeRequirement(ctx context.Context, filter domain.ReservationFilter) (int, error) {
	return r.aggregate(ctx, "SumTimeRequirement", "COALESCE(SUM(time_requirement), 0)", filter)
}

func (r *Repository) aggregate(ctx context.Context, op string, expr string, filter domain.ReservationFilter) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := applyFilter(psqlbuilder.Select(expr).From(table), filter).ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	var value int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&value); err != nil {
		return 0, fmt.Errorf("%w: %s - scan: %w", ErrScanRow, op, err)
	}
	return value, nil
}

// LockSlot берёт транзакционную advisory-блокировку на слот, начинающийся в start.
// Параллельные создания/изменения одного слота выполняются последовательно.
func (r *Repository) LockSlot(ctx context.Context, start time.Time) error {
	if !dbmetrics.IsInTransaction(ctx) {
		return ErrNoTransaction
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	key := "slot:" + strconv.FormatInt(start.UTC().Unix(), 10)
	if _, err := executor.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", key); err != nil {
		return fmt.Errorf("%w: LockSlot - %s: %w", ErrExecQuery, key, err)
	}
	return nil
}

// Update сохраняет изменяемые пользователем поля бронирования
func (r *Repository) Update(ctx context.Context, res *domain.Reservation) error {
	query, args, err := psqlbuilder.Update(table).
		Set("user_id", res.UserID).
		Set("vehicle_plate_number", res.VehiclePlateNumber).
		Set("services", pq.Array(servicesToStrings(res.Services))).
		Set("start_date", res.StartDate.UTC()).
		Set("end_date", utcPtr(res.EndDate)).
		Set("time_requirement", res.TimeRequirement).
		Set("private", res.Private).
		Set("mpv", res.Mpv).
		Set("location", res.Location).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": res.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}
	return r.execUpdate(ctx, "Update", query, args)
}

// UpdateState обновляет состояние бронирования
func (r *Repository) UpdateState(ctx context.Context, id int64, state domain.State) error {
	query, args, err := psqlbuilder.Update(table).
		Set("state", state).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateState - build update query: %v", ErrBuildQuery, err)
	}
	return r.execUpdate(ctx, "UpdateState", query, args)
}

// UpdateDropoff обновляет состояние и место парковки
func (r *Repository) UpdateDropoff(ctx context.Context, id int64, state domain.State, location string) error {
	query, args, err := psqlbuilder.Update(table).
		Set("state", state).
		Set("location", location).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateDropoff - build update query: %v", ErrBuildQuery, err)
	}
	return r.execUpdate(ctx, "UpdateDropoff", query, args)
}

// AppendComment добавляет комментарий в конец списка
func (r *Repository) AppendComment(ctx context.Context, id int64, comment domain.Comment) error {
	payload, err := marshalComments([]domain.Comment{comment})
	if err != nil {
		return fmt.Errorf("%w: AppendComment - marshal comment: %v", ErrBuildQuery, err)
	}

	query, args, err := psqlbuilder.Update(table).
		Set("comments", squirrel.Expr("comments || ?::jsonb", payload)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: AppendComment - build update query: %v", ErrBuildQuery, err)
	}
	return r.execUpdate(ctx, "AppendComment", query, args)
}

// SetCalendarEventID сохраняет ID события внешнего календаря
func (r *Repository) SetCalendarEventID(ctx context.Context, id int64, eventID *string) error {
	query, args, err := psqlbuilder.Update(table).
		Set("calendar_event_id", eventID).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: SetCalendarEventID - build update query: %v", ErrBuildQuery, err)
	}
	return r.execUpdate(ctx, "SetCalendarEventID", query, args)
}

// Delete удаляет бронирование
func (r *Repository) Delete(ctx context.Context, id int64) error {
	query, args, err := psqlbuilder.Delete(table).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}
	return r.execUpdate(ctx, "Delete", query, args)
}

func (r *Repository) execUpdate(ctx context.Context, op string, query string, args []interface{}) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute: %w", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		return ErrReservationNotFound
	}
	return nil
}

// applyFilter добавляет условия фильтра к запросу
func applyFilter(b squirrel.SelectBuilder, f domain.ReservationFilter) squirrel.SelectBuilder {
	if f.UserID != nil {
		b = b.Where(squirrel.Eq{"user_id": *f.UserID})
	}
	if f.Company != nil {
		b = b.Where(squirrel.Expr("user_id IN (SELECT id FROM users WHERE company = ?)", *f.Company))
	}
	if f.StartAt != nil {
		b = b.Where(squirrel.Eq{"start_date": f.StartAt.UTC()})
	}
	if f.StartFrom != nil {
		b = b.Where(squirrel.GtOrEq{"start_date": f.StartFrom.UTC()})
	}
	if f.StartBefore != nil {
		b = b.Where(squirrel.Lt{"start_date": f.StartBefore.UTC()})
	}
	if f.PlateNumber != nil {
		b = b.Where(squirrel.Eq{"vehicle_plate_number": *f.PlateNumber})
	}
	if len(f.States) > 0 {
		states := make([]string, len(f.States))
		for i, s := range f.States {
			states[i] = string(s)
		}
		b = b.Where(squirrel.Eq{"state": states})
	}
	if f.ExcludeID != nil {
		b = b.Where(squirrel.NotEq{"id": *f.ExcludeID})
	}
	return b
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReservation(row rowScanner) (*domain.Reservation, error) {
	var (
		res                  domain.Reservation
		services             pq.StringArray
		comments             []byte
		createdAt, updatedAt sql.NullTime
	)

	err := row.Scan(
		&res.ID,
		&res.UserID,
		&res.CreatedByID,
		&res.VehiclePlateNumber,
		&services,
		&res.StartDate,
		&res.EndDate,
		&res.TimeRequirement,
		&res.State,
		&res.Private,
		&res.Mpv,
		&res.Location,
		&comments,
		&res.KeyLockerBoxID,
		&res.CalendarEventID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	res.Services = stringsToServices(services)
	res.StartDate = res.StartDate.UTC()
	res.EndDate = utcPtr(res.EndDate)
	res.CreatedAt = createdAt.Time
	res.UpdatedAt = updatedAt.Time

	if len(comments) > 0 {
		if err := json.Unmarshal(comments, &res.Comments); err != nil {
			return nil, fmt.Errorf("decode comments: %w", err)
		}
	}

	return &res, nil
}

// scanReservations сканирует результаты запроса в слайс бронирований
func scanReservations(rows *sql.Rows) ([]*domain.Reservation, error) {
	reservations := make([]*domain.Reservation, 0)

	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanReservations - scan row: %w", ErrScanRow, err)
		}
		reservations = append(reservations, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanReservations - rows error: %w", ErrScanRow, err)
	}

	return reservations, nil
}

// marshalComments returns JSON text; lib/pq would send []byte as bytea
func marshalComments(comments []domain.Comment) (string, error) {
	if comments == nil {
		comments = []domain.Comment{}
	}
	data, err := json.Marshal(comments)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func servicesToStrings(services []domain.ServiceType) []string {
	out := make([]string, len(services))
	for i, s := range services {
		out[i] = string(s)
	}
	return out
}

func stringsToServices(values []string) []domain.ServiceType {
	out := make([]domain.ServiceType, len(values))
	for i, v := range values {
		out[i] = domain.ServiceType(v)
	}
	return out
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
