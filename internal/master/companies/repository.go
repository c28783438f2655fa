package companies

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-mes/meridian-mes/internal/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Company, int, error)
	Get(ctx context.Context, id int64) (Company, error)
	Create(ctx context.Context, company Company) (Company, error)
	Update(ctx context.Context, id int64, company Company) error
	SetTrading(ctx context.Context, id int64, trading bool) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const companyColumns = `id, name, type, registration_no, ceo_name, manager_name, manager_phone, zip, address, address_detail, remark, is_trading, created_at, updated_at`

// criteriaColumn maps the search-bar field selector onto a column.
func criteriaColumn(criteria string) string {
	switch criteria {
	case "registration_no":
		return "registration_no"
	case "ceo_name":
		return "ceo_name"
	default:
		return "name"
	}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Company, int, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Query != "" {
		argCount++
		query += ` AND ` + criteriaColumn(filters.Criteria) + ` ILIKE $` + strconv.Itoa(argCount)
		args = append(args, "%"+filters.Query+"%")
	}

	countQuery := `SELECT COUNT(*) FROM companies WHERE 1=1`
	countArgs := []interface{}{}
	if filters.Query != "" {
		countQuery += ` AND ` + criteriaColumn(filters.Criteria) + ` ILIKE $1`
		countArgs = append(countArgs, "%"+filters.Query+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY ` + sortOrder(filters.SortBy, filters.SortDir)

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

	var companies []Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, 0, err
		}
		companies = append(companies, c)
	}
	return companies, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Company, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = $1`, id)
	c, err := scanCompany(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Company{}, shared.ErrNotFound
	}
	return c, err
}

func (r *repository) Create(ctx context.Context, company Company) (Company, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx, `
		INSERT INTO companies (name, type, registration_no, ceo_name, manager_name, manager_phone, zip, address, address_detail, remark, is_trading, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
		RETURNING id`,
		company.Name, company.Type, company.RegistrationNo, company.CEOName, company.ManagerName,
		company.ManagerPhone, company.Zip, company.Address, company.AddressDetail, company.Remark,
		company.IsTrading, now,
	).Scan(&company.ID)
	if err != nil {
		return Company{}, err
	}
	company.CreatedAt = now
	company.UpdatedAt = now
	return company, nil
}

func (r *repository) Update(ctx context.Context, id int64, company Company) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE companies
		SET name=$1, ceo_name=$2, manager_name=$3, manager_phone=$4, zip=$5, address=$6, address_detail=$7, remark=$8, updated_at=$9
		WHERE id=$10`,
		company.Name, company.CEOName, company.ManagerName, company.ManagerPhone,
		company.Zip, company.Address, company.AddressDetail, company.Remark, time.Now(), id,
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
	tag, err := r.pool.Exec(ctx, `UPDATE companies SET is_trading=$1, updated_at=$2 WHERE id=$3`, trading, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanCompany(row pgx.Row) (Company, error) {
	var c Company
	var createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(&c.ID, &c.Name, &c.Type, &c.RegistrationNo, &c.CEOName, &c.ManagerName,
		&c.ManagerPhone, &c.Zip, &c.Address, &c.AddressDetail, &c.Remark, &c.IsTrading,
		&createdAt, &updatedAt)
	if err != nil {
		return Company{}, err
	}
	if createdAt.Valid {
		c.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		c.UpdatedAt = updatedAt.Time
	}
	return c, nil
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == "desc" {
		dir = "DESC"
	}
	switch sortBy {
	case "registration_no":
		return "registration_no " + dir
	case "created_at":
		return "created_at " + dir
	default:
		return "name " + dir
	}
}
