package routing

import "time"

// RoutingStep is one reusable process definition referenced by order items.
type RoutingStep struct {
	ID            int64     `json:"id"`
	ProcessCode   string    `json:"process_code"`
	ProcessName   string    `json:"process_name"`
	StandardTime  float64   `json:"standard_time_minutes"`
	Remark        string    `json:"remark"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// BatchRow is one grid row of a batch registration submission. Rows with
// every field blank are discarded before validation.
type BatchRow struct {
	ProcessCode  string  `json:"process_code"`
	ProcessName  string  `json:"process_name"`
	StandardTime float64 `json:"standard_time_minutes"`
	Remark       string  `json:"remark"`
}

// RegisterBatchRequest carries the full grid of a batch submission.
type RegisterBatchRequest struct {
	Rows []BatchRow `json:"rows"`
}

// UpdateStepRequest carries the detail-edit payload.
type UpdateStepRequest struct {
	ProcessName  string  `json:"process_name" validate:"required,max=100"`
	StandardTime float64 `json:"standard_time_minutes" validate:"gt=0"`
	Remark       string  `json:"remark"`
}

// ListStepsResponse wraps a routing step page.
type ListStepsResponse struct {
	RoutingSteps []RoutingStep `json:"routing_steps"`
	Total        int           `json:"total"`
}
