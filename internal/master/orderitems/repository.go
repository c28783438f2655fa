package orderitems

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
	List(ctx context.Context, filters shared.ListFilters) ([]OrderItem, int, error)
	Get(ctx context.Context, id int64) (OrderItem, error)
	Create(ctx context.Context, item OrderItem) (OrderItem, error)
	Update(ctx context.Context, id int64, item OrderItem) error
	SetTrading(ctx context.Context, id int64, trading bool) error
	ListImages(ctx context.Context, itemID int64) ([]ItemImage, error)
	ReplaceImages(ctx context.Context, itemID int64, images []ItemImage) ([]string, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const selectItems = `
	SELECT i.id, i.code, i.name, i.company_id, COALESCE(c.name, ''), i.category, i.unit_price, i.color, i.coating_method, i.remark, i.is_trading, i.created_at, i.updated_at
	FROM order_items i
	LEFT JOIN companies c ON c.id = i.company_id`

func criteriaColumn(criteria string) string {
	switch criteria {
	case "company":
		return "c.name"
	case "code":
		return "i.code"
	default:
		return "i.name"
	}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]OrderItem, int, error) {
	query := selectItems + ` WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Query != "" {
		argCount++
		query += ` AND ` + criteriaColumn(filters.Criteria) + ` ILIKE $` + strconv.Itoa(argCount)
		args = append(args, "%"+filters.Query+"%")
	}

	countQuery := `SELECT COUNT(*) FROM order_items i LEFT JOIN companies c ON c.id = i.company_id WHERE 1=1`
	countArgs := []interface{}{}
	if filters.Query != "" {
		countQuery += ` AND ` + criteriaColumn(filters.Criteria) + ` ILIKE $1`
		countArgs = append(countArgs, "%"+filters.Query+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY i.code ASC`

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

	var items []OrderItem
	for rows.Next() {
		item, err := scanOrderItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	// List views only need the representative image.
	for i := range items {
		images, err := r.ListImages(ctx, items[i].ID)
		if err != nil {
			return nil, 0, err
		}
		if len(images) > 0 {
			items[i].Images = images[:1]
		}
	}
	return items, total, nil
}

func (r *repository) Get(ctx context.Context, id int64) (OrderItem, error) {
	row := r.pool.QueryRow(ctx, selectItems+` WHERE i.id = $1`, id)
	item, err := scanOrderItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return OrderItem{}, shared.ErrNotFound
	}
	if err != nil {
		return OrderItem{}, err
	}
	if item.Images, err = r.ListImages(ctx, id); err != nil {
		return OrderItem{}, err
	}
	if item.Routing, err = r.listRouting(ctx, id); err != nil {
		return OrderItem{}, err
	}
	return item, nil
}

func (r *repository) Create(ctx context.Context, item OrderItem) (OrderItem, error) {
	now := time.Now()
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO order_items (code, name, company_id, category, unit_price, color, coating_method, remark, is_trading, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
			RETURNING id`,
			item.Code, item.Name, item.CompanyID, item.Category, item.UnitPrice,
			item.Color, item.CoatingMethod, item.Remark, item.IsTrading, now,
		).Scan(&item.ID)
		if err != nil {
			return err
		}
		return replaceRouting(ctx, tx, item.ID, item.Routing)
	})
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == "23505" {
			return OrderItem{}, httpx.ErrDuplicate
		}
		return OrderItem{}, err
	}
	item.CreatedAt = now
	item.UpdatedAt = now
	return item, nil
}

func (r *repository) Update(ctx context.Context, id int64, item OrderItem) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE order_items
			SET name=$1, category=$2, unit_price=$3, color=$4, coating_method=$5, remark=$6, updated_at=$7
			WHERE id=$8`,
			item.Name, item.Category, item.UnitPrice, item.Color, item.CoatingMethod,
			item.Remark, time.Now(), id,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return replaceRouting(ctx, tx, id, item.Routing)
	})
}

func (r *repository) SetTrading(ctx context.Context, id int64, trading bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE order_items SET is_trading=$1, updated_at=$2 WHERE id=$3`, trading, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) ListImages(ctx context.Context, itemID int64) ([]ItemImage, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, path, file_name, is_representative, position
		FROM order_item_images WHERE order_item_id = $1 ORDER BY position`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []ItemImage
	for rows.Next() {
		var img ItemImage
		if err := rows.Scan(&img.ID, &img.Path, &img.FileName, &img.IsRepresentative, &img.Position); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// ReplaceImages swaps the stored image set for the given ordered list and
// returns the paths of images that were removed so the caller can delete
// the files.
func (r *repository) ReplaceImages(ctx context.Context, itemID int64, images []ItemImage) ([]string, error) {
	var removed []string
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		keep := make([]int64, 0, len(images))
		for _, img := range images {
			if img.ID > 0 {
				keep = append(keep, img.ID)
			}
		}
		rows, err := tx.Query(ctx, `
			DELETE FROM order_item_images
			WHERE order_item_id = $1 AND NOT (id = ANY($2))
			RETURNING path`, itemID, keep)
		if err != nil {
			return err
		}
		for rows.Next() {
			var path string
			if err := rows.Scan(&path); err != nil {
				rows.Close()
				return err
			}
			removed = append(removed, path)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, img := range images {
			if img.ID > 0 {
				if _, err := tx.Exec(ctx, `
					UPDATE order_item_images SET position=$1, is_representative=$2
					WHERE id=$3 AND order_item_id=$4`,
					img.Position, img.IsRepresentative, img.ID, itemID); err != nil {
					return err
				}
				continue
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO order_item_images (order_item_id, path, file_name, is_representative, position)
				VALUES ($1, $2, $3, $4, $5)`,
				itemID, img.Path, img.FileName, img.IsRepresentative, img.Position); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func (r *repository) listRouting(ctx context.Context, itemID int64) ([]RoutingRef, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT ir.routing_step_id, rs.process_code, rs.process_name, ir.position
		FROM order_item_routing ir
		JOIN routing_steps rs ON rs.id = ir.routing_step_id
		WHERE ir.order_item_id = $1 ORDER BY ir.position`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []RoutingRef
	for rows.Next() {
		var ref RoutingRef
		if err := rows.Scan(&ref.RoutingStepID, &ref.ProcessCode, &ref.ProcessName, &ref.Position); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func replaceRouting(ctx context.Context, tx pgx.Tx, itemID int64, refs []RoutingRef) error {
	if _, err := tx.Exec(ctx, `DELETE FROM order_item_routing WHERE order_item_id = $1`, itemID); err != nil {
		return err
	}
	for _, ref := range refs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_item_routing (order_item_id, routing_step_id, position)
			VALUES ($1, $2, $3)`, itemID, ref.RoutingStepID, ref.Position); err != nil {
			return err
		}
	}
	return nil
}

func scanOrderItem(row pgx.Row) (OrderItem, error) {
	var item OrderItem
	var createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(&item.ID, &item.Code, &item.Name, &item.CompanyID, &item.CompanyName,
		&item.Category, &item.UnitPrice, &item.Color, &item.CoatingMethod, &item.Remark,
		&item.IsTrading, &createdAt, &updatedAt)
	if err != nil {
		return OrderItem{}, err
	}
	if createdAt.Valid {
		item.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		item.UpdatedAt = updatedAt.Time
	}
	return item, nil
}
