package blocker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/mark-szabo/carwash/internal/domain"
	"github.com/mark-szabo/carwash/pkg/dbmetrics"
	"github.com/mark-szabo/carwash/pkg/psqlbuilder"
)

var (
	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("blocker.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("blocker.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("blocker.repository: failed to scan row")
)

// Repository репозиторий блокировок (праздники, простои)
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория блокировок
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// ListEndingAfter блокировки, которые заканчиваются позже after
func (r *Repository) ListEndingAfter(ctx context.Context, after time.Time) ([]*domain.Blocker, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "start_date", "end_date", "comment").
		From("blockers").
		Where(squirrel.Gt{"end_date": after.UTC()}).
		OrderBy("start_date ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListEndingAfter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListEndingAfter - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	blockers := make([]*domain.Blocker, 0)
	for rows.Next() {
		var b domain.Blocker
		if err := rows.Scan(&b.ID, &b.StartDate, &b.EndDate, &b.Comment); err != nil {
			return nil, fmt.Errorf("%w: ListEndingAfter - scan row: %w", ErrScanRow, err)
		}
		blockers = append(blockers, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListEndingAfter - rows error: %w", ErrScanRow, err)
	}

	return blockers, nil
}
