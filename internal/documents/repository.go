package documents

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-mes/meridian-mes/internal/shared"
)

type Repository interface {
	WorkOrderHeader(ctx context.Context, itemID int64) (WorkOrder, error)
	WorkOrderSteps(ctx context.Context, itemID int64) ([]WorkOrderStep, error)
	RepresentativeImage(ctx context.Context, itemID int64) (string, error)
	ShipmentInvoice(ctx context.Context, movementID int64) (ShipmentInvoice, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) WorkOrderHeader(ctx context.Context, itemID int64) (WorkOrder, error) {
	var wo WorkOrder
	err := r.pool.QueryRow(ctx, `
		SELECT i.id, i.code, i.name, i.category, i.color, i.coating_method, i.unit_price, i.remark,
		       COALESCE(c.name, ''), COALESCE(c.ceo_name, ''), COALESCE(c.manager_phone, '')
		FROM order_items i
		LEFT JOIN companies c ON c.id = i.company_id
		WHERE i.id = $1`, itemID,
	).Scan(&wo.ItemID, &wo.ItemCode, &wo.ItemName, &wo.Category, &wo.Color, &wo.CoatingMethod,
		&wo.UnitPrice, &wo.Remark, &wo.CompanyName, &wo.CompanyCEO, &wo.CompanyPhone)
	if errors.Is(err, pgx.ErrNoRows) {
		return WorkOrder{}, shared.ErrNotFound
	}
	return wo, err
}

func (r *repository) WorkOrderSteps(ctx context.Context, itemID int64) ([]WorkOrderStep, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT rs.process_code, rs.process_name, rs.standard_time_minutes, ir.position
		FROM order_item_routing ir
		JOIN routing_steps rs ON rs.id = ir.routing_step_id
		WHERE ir.order_item_id = $1 ORDER BY ir.position`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var steps []WorkOrderStep
	for rows.Next() {
		var step WorkOrderStep
		if err := rows.Scan(&step.ProcessCode, &step.ProcessName, &step.StandardTime, &step.Position); err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, rows.Err()
}

func (r *repository) RepresentativeImage(ctx context.Context, itemID int64) (string, error) {
	var path string
	err := r.pool.QueryRow(ctx, `
		SELECT path FROM order_item_images
		WHERE order_item_id = $1 AND is_representative = TRUE
		ORDER BY position LIMIT 1`, itemID).Scan(&path)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return path, err
}

func (r *repository) ShipmentInvoice(ctx context.Context, movementID int64) (ShipmentInvoice, error) {
	var inv ShipmentInvoice
	var date pgtype.Timestamptz
	err := r.pool.QueryRow(ctx, `
		SELECT mv.id, mv.movement_no, COALESCE(src.movement_no, ''), i.code, i.name,
		       COALESCE(c.name, ''), mv.quantity, mv.movement_date, mv.remark
		FROM movements mv
		JOIN order_items i ON i.id = mv.item_id
		LEFT JOIN companies c ON c.id = i.company_id
		LEFT JOIN movements src ON src.id = mv.source_movement_id
		WHERE mv.id = $1 AND mv.subject = 'orderitem' AND mv.direction = 'out' AND mv.deleted_at IS NULL`,
		movementID,
	).Scan(&inv.MovementID, &inv.MovementNo, &inv.LotNo, &inv.ItemCode, &inv.ItemName,
		&inv.CompanyName, &inv.Quantity, &date, &inv.Remark)
	if errors.Is(err, pgx.ErrNoRows) {
		return ShipmentInvoice{}, shared.ErrNotFound
	}
	if err != nil {
		return ShipmentInvoice{}, err
	}
	if date.Valid {
		inv.Date = date.Time
	}
	return inv, nil
}
