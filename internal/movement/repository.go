package movement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-mes/meridian-mes/internal/platform/db"
	"github.com/meridian-mes/meridian-mes/internal/platform/httpx"
	"github.com/meridian-mes/meridian-mes/internal/shared"
)

type Repository interface {
	ListEligible(ctx context.Context, subject Subject, direction Direction) ([]EligibleRow, error)
	List(ctx context.Context, subject Subject, direction Direction) ([]Movement, error)
	Get(ctx context.Context, id int64) (Movement, error)
	CreateBatch(ctx context.Context, subject Subject, direction Direction, rows []SubmissionRow) ([]Movement, error)
	Amend(ctx context.Context, id int64, quantity float64, date time.Time, remark string) error
	SoftDelete(ctx context.Context, id int64) error
	SetProcessCompleted(ctx context.Context, id int64, flag string) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func itemTable(subject Subject) string {
	if subject == SubjectMaterial {
		return "materials"
	}
	return "order_items"
}

// ListEligible returns the source rows a registration screen offers. For
// inbound screens these are the trading master items; for outbound screens
// they are inbound movements with stock remaining, carrying the inbound
// quantity/date the outbound guards compare against.
func (r *repository) ListEligible(ctx context.Context, subject Subject, direction Direction) ([]EligibleRow, error) {
	if direction == DirectionIn {
		return r.listInboundEligible(ctx, subject)
	}
	return r.listOutboundEligible(ctx, subject)
}

func (r *repository) listInboundEligible(ctx context.Context, subject Subject) ([]EligibleRow, error) {
	query := fmt.Sprintf(`
		SELECT i.id, i.code, i.name, COALESCE(c.name, '')
		FROM %s i
		LEFT JOIN companies c ON c.id = i.company_id
		WHERE i.is_trading = TRUE`, itemTable(subject))
	if subject == SubjectMaterial {
		query += ` AND i.deleted_at IS NULL`
	}
	query += ` ORDER BY i.code ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EligibleRow
	for rows.Next() {
		var row EligibleRow
		if err := rows.Scan(&row.ItemID, &row.ItemCode, &row.ItemName, &row.CompanyName); err != nil {
			return nil, err
		}
		row.SourceID = row.ItemID
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *repository) listOutboundEligible(ctx context.Context, subject Subject) ([]EligibleRow, error) {
	query := fmt.Sprintf(`
		SELECT mv.id, mv.item_id, i.code, i.name, COALESCE(c.name, ''),
		       mv.movement_no, mv.quantity, mv.movement_date,
		       COALESCE(mv.is_process_completed, 'N'),
		       mv.quantity - COALESCE((
		           SELECT SUM(o.quantity) FROM movements o
		           WHERE o.source_movement_id = mv.id AND o.deleted_at IS NULL
		       ), 0) AS remaining
		FROM movements mv
		JOIN %s i ON i.id = mv.item_id
		LEFT JOIN companies c ON c.id = i.company_id
		WHERE mv.subject = $1 AND mv.direction = 'in' AND mv.deleted_at IS NULL
		ORDER BY mv.movement_no ASC`, itemTable(subject))

	rows, err := r.pool.Query(ctx, query, subject)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EligibleRow
	for rows.Next() {
		var row EligibleRow
		var inDate pgtype.Timestamptz
		if err := rows.Scan(&row.SourceID, &row.ItemID, &row.ItemCode, &row.ItemName, &row.CompanyName,
			&row.MovementNo, &row.InAmount, &inDate, &row.IsProcessCompleted, &row.Remaining); err != nil {
			return nil, err
		}
		if inDate.Valid {
			row.InDate = inDate.Time
		}
		if row.Remaining > 0 {
			out = append(out, row)
		}
	}
	return out, rows.Err()
}

func (r *repository) selectMovements(subject Subject) string {
	return fmt.Sprintf(`
		SELECT mv.id, mv.subject, mv.direction, mv.item_id, i.code, i.name, COALESCE(c.name, ''),
		       mv.movement_no, COALESCE(mv.source_movement_id, 0), COALESCE(src.movement_no, ''),
		       mv.quantity, mv.movement_date, COALESCE(mv.is_process_completed, ''), mv.remark,
		       mv.created_at, mv.updated_at
		FROM movements mv
		JOIN %s i ON i.id = mv.item_id
		LEFT JOIN companies c ON c.id = i.company_id
		LEFT JOIN movements src ON src.id = mv.source_movement_id`, itemTable(subject))
}

func (r *repository) List(ctx context.Context, subject Subject, direction Direction) ([]Movement, error) {
	rows, err := r.pool.Query(ctx, r.selectMovements(subject)+`
		WHERE mv.subject = $1 AND mv.direction = $2 AND mv.deleted_at IS NULL
		ORDER BY mv.movement_no DESC`, subject, direction)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Movement
	for rows.Next() {
		mv, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, mv)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Movement, error) {
	var subjectStr string
	err := r.pool.QueryRow(ctx, `SELECT subject FROM movements WHERE id = $1 AND deleted_at IS NULL`, id).Scan(&subjectStr)
	if errors.Is(err, pgx.ErrNoRows) {
		return Movement{}, shared.ErrNotFound
	}
	if err != nil {
		return Movement{}, err
	}
	mv, err := scanMovement(r.pool.QueryRow(ctx, r.selectMovements(Subject(subjectStr))+` WHERE mv.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Movement{}, shared.ErrNotFound
	}
	return mv, err
}

// CreateBatch commits every row inside one transaction. Outbound rows lock
// their source inbound movement, re-check the remaining quantity and the
// date ordering, so concurrent over-issue cannot slip past the screen-side
// validation. Movement numbers are assigned here from a per-day sequence.
func (r *repository) CreateBatch(ctx context.Context, subject Subject, direction Direction, rows []SubmissionRow) ([]Movement, error) {
	prefix := numberPrefix(subject, direction)
	now := time.Now()
	created := make([]Movement, 0, len(rows))

	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, row := range rows {
			mv := Movement{
				Subject:   subject,
				Direction: direction,
				Quantity:  row.Amount,
				Date:      row.Date,
				Remark:    row.Remark,
				CreatedAt: now,
				UpdatedAt: now,
			}

			var sourceID any
			if direction == DirectionIn {
				mv.ItemID = row.SourceID
				if subject == SubjectOrderItem {
					mv.IsProcessCompleted = "N"
				}
			} else {
				src, err := lockSource(ctx, tx, subject, row.SourceID)
				if err != nil {
					return err
				}
				if row.Amount > src.remaining {
					return fmt.Errorf("%w: outbound quantity for movement %s exceeds its remaining quantity", httpx.ErrValidation, src.movementNo)
				}
				if row.Date.Before(src.inDate) {
					return fmt.Errorf("%w: outbound date for movement %s precedes its inbound date", httpx.ErrValidation, src.movementNo)
				}
				mv.ItemID = src.itemID
				mv.SourceMovementID = row.SourceID
				mv.SourceMovementNo = src.movementNo
				sourceID = row.SourceID
			}

			// The count alone is racy: two same-day batches inside their own
			// transactions would read the same value. The advisory lock is
			// held until commit and serializes number assignment per day.
			if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`,
				numberingLockKey(prefix, row.Date)); err != nil {
				return err
			}
			var seq int
			err := tx.QueryRow(ctx, `
				SELECT COUNT(*) FROM movements
				WHERE subject = $1 AND direction = $2 AND movement_no LIKE $3`,
				subject, direction, prefix+"-"+row.Date.Format("20060102")+"-%",
			).Scan(&seq)
			if err != nil {
				return err
			}
			mv.MovementNo = formatMovementNo(prefix, row.Date, seq+1)

			var completed any
			if mv.IsProcessCompleted != "" {
				completed = mv.IsProcessCompleted
			}
			err = tx.QueryRow(ctx, `
				INSERT INTO movements (subject, direction, item_id, movement_no, source_movement_id, quantity, movement_date, is_process_completed, remark, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
				RETURNING id`,
				mv.Subject, mv.Direction, mv.ItemID, mv.MovementNo, sourceID,
				mv.Quantity, mv.Date, completed, mv.Remark, now,
			).Scan(&mv.ID)
			if err != nil {
				return err
			}
			created = append(created, mv)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

type lockedSource struct {
	itemID     int64
	movementNo string
	quantity   float64
	inDate     time.Time
	remaining  float64
}

func lockSource(ctx context.Context, tx pgx.Tx, subject Subject, sourceID int64) (lockedSource, error) {
	var src lockedSource
	var inDate pgtype.Timestamptz
	err := tx.QueryRow(ctx, `
		SELECT item_id, movement_no, quantity, movement_date
		FROM movements
		WHERE id = $1 AND subject = $2 AND direction = 'in' AND deleted_at IS NULL
		FOR UPDATE`, sourceID, subject).Scan(&src.itemID, &src.movementNo, &src.quantity, &inDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return lockedSource{}, fmt.Errorf("%w: source movement %d", shared.ErrNotFound, sourceID)
	}
	if err != nil {
		return lockedSource{}, err
	}
	if inDate.Valid {
		src.inDate = inDate.Time
	}

	var issued float64
	err = tx.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity), 0) FROM movements
		WHERE source_movement_id = $1 AND deleted_at IS NULL`, sourceID).Scan(&issued)
	if err != nil {
		return lockedSource{}, err
	}
	src.remaining = src.quantity - issued
	return src, nil
}

func (r *repository) Amend(ctx context.Context, id int64, quantity float64, date time.Time, remark string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE movements SET quantity=$1, movement_date=$2, remark=$3, updated_at=$4
		WHERE id=$5 AND deleted_at IS NULL`,
		quantity, date, remark, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE movements SET deleted_at=$1, updated_at=$1
		WHERE id=$2 AND deleted_at IS NULL`, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) SetProcessCompleted(ctx context.Context, id int64, flag string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE movements SET is_process_completed=$1, updated_at=$2
		WHERE id=$3 AND subject='orderitem' AND direction='in' AND deleted_at IS NULL`,
		flag, time.Now(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanMovement(row pgx.Row) (Movement, error) {
	var mv Movement
	var date, createdAt, updatedAt pgtype.Timestamptz
	err := row.Scan(&mv.ID, &mv.Subject, &mv.Direction, &mv.ItemID, &mv.ItemCode, &mv.ItemName,
		&mv.CompanyName, &mv.MovementNo, &mv.SourceMovementID, &mv.SourceMovementNo,
		&mv.Quantity, &date, &mv.IsProcessCompleted, &mv.Remark, &createdAt, &updatedAt)
	if err != nil {
		return Movement{}, err
	}
	if date.Valid {
		mv.Date = date.Time
	}
	if createdAt.Valid {
		mv.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		mv.UpdatedAt = updatedAt.Time
	}
	return mv, nil
}
