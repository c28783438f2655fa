package movement

import "time"

// Subject identifies what a movement moves.
type Subject string

// Direction identifies which way stock moves.
type Direction string

const (
	SubjectMaterial  Subject = "material"
	SubjectOrderItem Subject = "orderitem"

	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

func (s Subject) IsValid() bool {
	return s == SubjectMaterial || s == SubjectOrderItem
}

func (d Direction) IsValid() bool {
	return d == DirectionIn || d == DirectionOut
}

// Movement is one committed stock movement row. Inbound order-item movements
// carry the LOT number and the process-completion flag that gates outbound
// registration for that LOT. Outbound movements reference their source
// inbound movement.
type Movement struct {
	ID                 int64     `json:"id"`
	Subject            Subject   `json:"subject"`
	Direction          Direction `json:"direction"`
	ItemID             int64     `json:"item_id"`
	ItemCode           string    `json:"item_code"`
	ItemName           string    `json:"item_name"`
	CompanyName        string    `json:"company_name"`
	MovementNo         string    `json:"movement_no"`
	SourceMovementID   int64     `json:"source_movement_id,omitempty"`
	SourceMovementNo   string    `json:"source_movement_no,omitempty"`
	Quantity           float64   `json:"quantity"`
	Date               time.Time `json:"date"`
	IsProcessCompleted string    `json:"is_process_completed,omitempty"`
	Remark             string    `json:"remark"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// EligibleRow is one source row offered on a registration screen. For
// inbound registration the source is a master item; for outbound it is a
// previously committed inbound movement with stock remaining.
type EligibleRow struct {
	SourceID           int64     `json:"source_id"`
	ItemID             int64     `json:"item_id"`
	ItemCode           string    `json:"item_code"`
	ItemName           string    `json:"item_name"`
	CompanyName        string    `json:"company_name"`
	MovementNo         string    `json:"movement_no,omitempty"`
	InAmount           float64   `json:"in_amount,omitempty"`
	InDate             time.Time `json:"in_date,omitempty"`
	Remaining          float64   `json:"remaining,omitempty"`
	IsProcessCompleted string    `json:"is_process_completed,omitempty"`
}

// SubmissionRow is one validated row of a batch, ready to commit.
type SubmissionRow struct {
	SourceID int64     `json:"source_id"`
	Amount   float64   `json:"amount"`
	Date     time.Time `json:"date"`
	Remark   string    `json:"remark,omitempty"`
}

// RegisterBatchRequest carries one registration screen submission: the
// edited quantity/date per chosen source row.
type RegisterBatchRequest struct {
	Rows []RegisterRow `json:"rows"`
}

// RegisterRow mirrors one edited grid row.
type RegisterRow struct {
	SourceID int64   `json:"source_id"`
	Amount   float64 `json:"amount"`
	Date     string  `json:"date"`
	Remark   string  `json:"remark"`
}

// AmendRequest carries an inline edit from a list screen.
type AmendRequest struct {
	Quantity float64 `json:"quantity" validate:"gt=0"`
	Date     string  `json:"date" validate:"required"`
	Remark   string  `json:"remark"`
}

// SetProcessCompletionRequest toggles the outbound gate on an order-item LOT.
type SetProcessCompletionRequest struct {
	Completed bool `json:"completed"`
}

// ListMovementsResponse wraps a movement list screen payload.
type ListMovementsResponse struct {
	Movements []Movement `json:"movements"`
	Total     int        `json:"total"`
}
