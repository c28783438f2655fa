package movement

import (
	"errors"
	"fmt"
	"time"

	"github.com/meridian-mes/meridian-mes/internal/platform/httpx"
)

// State is the lifecycle of one registration batch.
type State string

const (
	StateLoading    State = "loading"
	StateReady      State = "ready"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateError      State = "error"
)

var (
	// ErrRowIneligible marks an edit or selection on a row the business
	// predicate excludes. The row keeps its prior values and stays
	// unselected.
	ErrRowIneligible = errors.New("row is not eligible")
	// ErrRowUnknown marks a reference to a source row the batch never
	// loaded.
	ErrRowUnknown = errors.New("unknown source row")
)

type rowEdit struct {
	amount    float64
	hasAmount bool
	date      time.Time
	hasDate   bool
	remark    string
}

// Batch holds one registration screen's working state: the eligible source
// rows, the checkbox selection and the in-place quantity/date edits. All
// transitions are explicit methods so the guard and validation rules are
// unit-testable without any transport.
type Batch struct {
	subject   Subject
	direction Direction
	state     State
	lastErr   error
	order     []int64
	rows      map[int64]EligibleRow
	selected  map[int64]bool
	edits     map[int64]rowEdit
}

func NewBatch(subject Subject, direction Direction) *Batch {
	return &Batch{
		subject:   subject,
		direction: direction,
		state:     StateLoading,
		rows:      map[int64]EligibleRow{},
		selected:  map[int64]bool{},
		edits:     map[int64]rowEdit{},
	}
}

// Load installs the eligible rows fetched for the screen and readies the
// batch. Row order is preserved for validation reporting. Any state from a
// previous load is discarded, including selection and edits.
func (b *Batch) Load(rows []EligibleRow) {
	b.order = b.order[:0]
	b.rows = make(map[int64]EligibleRow, len(rows))
	b.selected = map[int64]bool{}
	b.edits = map[int64]rowEdit{}
	for _, row := range rows {
		b.order = append(b.order, row.SourceID)
		b.rows[row.SourceID] = row
	}
	b.state = StateReady
	b.lastErr = nil
}

func (b *Batch) State() State { return b.state }

// Err returns the error that moved the batch into StateError, if any.
func (b *Batch) Err() error { return b.lastErr }

// Rows returns the loaded eligible rows in load order.
func (b *Batch) Rows() []EligibleRow {
	out := make([]EligibleRow, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.rows[id])
	}
	return out
}

// Selected reports whether a source row is currently checked.
func (b *Batch) Selected(sourceID int64) bool { return b.selected[sourceID] }

// Edit returns the current quantity/date edit of a row. Zero values mean
// the cell was never touched.
func (b *Batch) Edit(sourceID int64) (amount float64, date time.Time) {
	edit := b.edits[sourceID]
	return edit.amount, edit.date
}

// eligible applies the selection predicate. Outbound order-item rows are
// gated on the source LOT's process completion.
func (b *Batch) eligible(row EligibleRow) bool {
	if b.subject == SubjectOrderItem && b.direction == DirectionOut {
		return row.IsProcessCompleted == "Y"
	}
	return true
}

// Select checks a row. Ineligible rows are refused.
func (b *Batch) Select(sourceID int64) error {
	row, ok := b.rows[sourceID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrRowUnknown, sourceID)
	}
	if !b.eligible(row) {
		return fmt.Errorf("%w: process not completed for %s", ErrRowIneligible, row.ItemName)
	}
	b.selected[sourceID] = true
	return nil
}

// Deselect unchecks a row, keeping its edits.
func (b *Batch) Deselect(sourceID int64) {
	delete(b.selected, sourceID)
}

// EditAmount sets a row's quantity cell. Editing an unselected eligible row
// selects it; editing an ineligible row is refused and changes nothing.
func (b *Batch) EditAmount(sourceID int64, amount float64) error {
	row, ok := b.rows[sourceID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrRowUnknown, sourceID)
	}
	if !b.eligible(row) {
		return fmt.Errorf("%w: process not completed for %s", ErrRowIneligible, row.ItemName)
	}
	edit := b.edits[sourceID]
	edit.amount = amount
	edit.hasAmount = true
	b.edits[sourceID] = edit
	b.selected[sourceID] = true
	return nil
}

// EditDate sets a row's date cell with the same guard as EditAmount.
func (b *Batch) EditDate(sourceID int64, date time.Time) error {
	row, ok := b.rows[sourceID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrRowUnknown, sourceID)
	}
	if !b.eligible(row) {
		return fmt.Errorf("%w: process not completed for %s", ErrRowIneligible, row.ItemName)
	}
	edit := b.edits[sourceID]
	edit.date = date
	edit.hasDate = true
	b.edits[sourceID] = edit
	b.selected[sourceID] = true
	return nil
}

// EditRemark sets a row's remark cell without auto-selecting it.
func (b *Batch) EditRemark(sourceID int64, remark string) error {
	if _, ok := b.rows[sourceID]; !ok {
		return fmt.Errorf("%w: %d", ErrRowUnknown, sourceID)
	}
	edit := b.edits[sourceID]
	edit.remark = remark
	b.edits[sourceID] = edit
	return nil
}

// Validate checks every selected row in load order and returns the rows to
// commit. The first failing row aborts the whole batch with a message naming
// the item, and the batch moves to StateError with edits intact. On success
// the batch moves to StateSubmitting.
func (b *Batch) Validate() ([]SubmissionRow, error) {
	b.state = StateValidating

	var out []SubmissionRow
	for _, id := range b.order {
		if !b.selected[id] {
			continue
		}
		row := b.rows[id]
		edit := b.edits[id]
		if !edit.hasAmount || edit.amount <= 0 || !edit.hasDate || edit.date.IsZero() {
			return nil, b.fail(fmt.Errorf("%w: quantity and date are required for %s", httpx.ErrValidation, row.ItemName))
		}
		if b.direction == DirectionOut {
			if edit.amount > row.InAmount {
				return nil, b.fail(fmt.Errorf("%w: outbound quantity for %s exceeds its inbound quantity", httpx.ErrValidation, row.ItemName))
			}
			if edit.date.Before(row.InDate) {
				return nil, b.fail(fmt.Errorf("%w: outbound date for %s precedes its inbound date", httpx.ErrValidation, row.ItemName))
			}
		}
		out = append(out, SubmissionRow{SourceID: id, Amount: edit.amount, Date: edit.date, Remark: edit.remark})
	}
	if len(out) == 0 {
		return nil, b.fail(fmt.Errorf("%w: no rows selected", httpx.ErrValidation))
	}
	b.state = StateSubmitting
	return out, nil
}

// Complete records the submission outcome. A failed submission keeps the
// selection and edits so the user can resubmit; a successful one clears
// them.
func (b *Batch) Complete(err error) {
	if err != nil {
		b.state = StateError
		b.lastErr = err
		return
	}
	b.selected = map[int64]bool{}
	b.edits = map[int64]rowEdit{}
	b.state = StateReady
	b.lastErr = nil
}

func (b *Batch) fail(err error) error {
	b.state = StateError
	b.lastErr = err
	return err
}
