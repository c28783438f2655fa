package materials

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-mes/meridian-mes/internal/platform/httpx"
	"github.com/meridian-mes/meridian-mes/internal/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Material, int, error)
	Get(ctx context.Context, id int64) (Material, error)
	Create(ctx context.Context, material Material) (Material, error)
	Update(ctx context.Context, id int64, material Material) error
	SetTrading(ctx context.Context, id int64, trading bool) error
	SoftDelete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const selectMaterials = `
	SELECT m.id, m.code, m.name, m.company_id, COALESCE(c.name, ''), m.category, m.color, m.spec, m.manufacturer, m.remark, m.is_trading, m.created_at, m.updated_at
	FROM materials m
	LEFT JOIN companies c ON c.id = m.company_id`

func criteriaColumn(criteria string) string {
	switch criteria {
	case "company":
		return "c.name"
	case "code":
		return "m.code"
	default:
		return "m.name"
	}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Material, int, error) {
	query := selectMaterials + ` WHERE m.deleted_at IS NULL`
	args := []interface{}{}
	argCount := 0

	if filters.Query != "" {
		argCount++
		query += ` AND ` + criteriaColumn(filters.Criteria) + ` ILIKE $` + strconv.Itoa(argCount)
		args = append(args, "%"+filters.Query+"%")
	}

	countQuery := `SELECT COUNT(*) FROM materials m LEFT JOIN companies c ON c.id = m.company_id WHERE m.deleted_at IS NULL`
	countArgs := []interface{}{}
	if filters.Query != "" {
		countQuery += ` AND ` + criteriaColumn(filters.Criteria) + ` ILIKE $1`
		countArgs = append(countArgs, "%"+filters.Query+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY m.code ASC`

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

	var materials []Material
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, 0, err
		}
		materials = append(materials, m)
	}
	return materials, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Material, error) {
	row := r.pool.QueryRow(ctx, selectMaterials+` WHERE m.id = $1 AND m.deleted_at IS NULL`, id)
	m, err := scanMaterial(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Material{}, shared.ErrNotFound
	}
	return m, err
}

func (r *repository) Create(ctx context.Context, material Material) (Material, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO materials (code, name, company_id, category, color, spec, manufacturer, remark, is_trading, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		RETURNING id`,
		material.Code, material.Name, material.CompanyID, material.Category, material.Color,
		material.Spec, material.Manufacturer, material.Remark, material.IsTrading, now,
	).Scan(&material.ID)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23505" {
			return Material{}, httpx.ErrDuplicate
		}
		return Material{}, err
	}
	material.CreatedAt = now
	material.UpdatedAt = now
	return material, nil
}

func (r *repository) Update(ctx context.Context, id int64, material Material) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE materials
		SET name=$1, category=$2, color=$3, spec=$4, manufacturer=$5, remark=$6, updated_at=$7
		WHERE id=$8 AND deleted_at IS NULL`,
		material.Name, material.Category, material.Color, material.Spec,
		material.Manufacturer, material.Remark, time.Now(), id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) SetTrading(ctx context.Context, id int64, trading bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE materials SET is_trading=$1, updated_at=$2 WHERE id=$3 AND deleted_at IS NULL`, trading, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE materials SET deleted_at=$1 WHERE id=$2 AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanMaterial(row pgx.Row) (Material, error) {
	var m Material
	var createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(&m.ID, &m.Code, &m.Name, &m.CompanyID, &m.CompanyName, &m.Category, &m.Color,
		&m.Spec, &m.Manufacturer, &m.Remark, &m.IsTrading, &createdAt, &updatedAt)
	if err != nil {
		return Material{}, err
	}
	if createdAt.Valid {
		m.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		m.UpdatedAt = updatedAt.Time
	}
	return m, nil
}
