package routing

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-mes/meridian-mes/internal/platform/db"
	"github.com/meridian-mes/meridian-mes/internal/platform/httpx"
	"github.com/meridian-mes/meridian-mes/internal/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]RoutingStep, int, error)
	Get(ctx context.Context, id int64) (RoutingStep, error)
	CreateBatch(ctx context.Context, steps []RoutingStep) ([]RoutingStep, error)
	Update(ctx context.Context, id int64, step RoutingStep) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const selectSteps = `
	SELECT id, process_code, process_name, standard_time_minutes, remark, created_at, updated_at
	FROM routing_steps`

func criteriaColumn(criteria string) string {
	if criteria == "code" {
		return "process_code"
	}
	return "process_name"
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]RoutingStep, int, error) {
	query := selectSteps + ` WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Query != "" {
		argCount++
		query += ` AND ` + criteriaColumn(filters.Criteria) + ` ILIKE $` + strconv.Itoa(argCount)
		args = append(args, "%"+filters.Query+"%")
	}

	countQuery := `SELECT COUNT(*) FROM routing_steps WHERE 1=1`
	countArgs := []interface{}{}
	if filters.Query != "" {
		countQuery += ` AND ` + criteriaColumn(filters.Criteria) + ` ILIKE $1`
		countArgs = append(countArgs, "%"+filters.Query+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY process_code ASC`

	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)

		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		offset := (filters.Page - 1) * filters.Limit
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var steps []RoutingStep
	for rows.Next() {
		step, err := scanStep(rows)
		if err != nil {
			return nil, 0, err
		}
		steps = append(steps, step)
	}
	return steps, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (RoutingStep, error) {
	step, err := scanStep(r.pool.QueryRow(ctx, selectSteps+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return RoutingStep{}, shared.ErrNotFound
	}
	return step, err
}

// CreateBatch inserts every row inside one transaction. A process code that
// already exists in the table aborts the whole batch.
func (r *repository) CreateBatch(ctx context.Context, steps []RoutingStep) ([]RoutingStep, error) {
	now := time.Now()
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for i := range steps {
			err := tx.QueryRow(ctx, `
				INSERT INTO routing_steps (process_code, process_name, standard_time_minutes, remark, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $5)
				RETURNING id`,
				steps[i].ProcessCode, steps[i].ProcessName, steps[i].StandardTime, steps[i].Remark, now,
			).Scan(&steps[i].ID)
			if err != nil {
				return err
			}
			steps[i].CreatedAt = now
			steps[i].UpdatedAt = now
		}
		return nil
	})
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23505" {
			return nil, httpx.ErrDuplicate
		}
		return nil, err
	}
	return steps, nil
}

func (r *repository) Update(ctx context.Context, id int64, step RoutingStep) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE routing_steps
		SET process_name=$1, standard_time_minutes=$2, remark=$3, updated_at=$4
		WHERE id=$5`,
		step.ProcessName, step.StandardTime, step.Remark, time.Now(), id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a step. Steps still referenced by an order item routing
// keep their foreign key rows, which surfaces as a conflict.
func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM routing_steps WHERE id = $1`, id)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23503" {
			return httpx.ErrConflict
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanStep(row pgx.Row) (RoutingStep, error) {
	var step RoutingStep
	var createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(&step.ID, &step.ProcessCode, &step.ProcessName, &step.StandardTime,
		&step.Remark, &createdAt, &updatedAt)
	if err != nil {
		return RoutingStep{}, err
	}
	if createdAt.Valid {
		step.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		step.UpdatedAt = updatedAt.Time
	}
	return step, nil
}
