package orderitems

import (
	"time"
)

// CoatingMethod enumerates supported coating processes.
type CoatingMethod string

const (
	CoatingLiquid CoatingMethod = "LIQUID"
	CoatingPowder CoatingMethod = "POWDER"
	CoatingED     CoatingMethod = "ED"
)

// IsValid checks if the method is a known value.
func (m CoatingMethod) IsValid() bool {
	switch m {
	case CoatingLiquid, CoatingPowder, CoatingED:
		return true
	default:
		return false
	}
}

// ItemImage is one image in the order item's display-ordered set.
// Position 0 is always the representative image.
type ItemImage struct {
	ID               int64  `json:"id"`
	Path             string `json:"path"`
	FileName         string `json:"file_name"`
	IsRepresentative bool   `json:"is_representative"`
	Position         int    `json:"position"`
}

// RoutingRef ties an order item to one routing step at a position in its
// manufacturing path.
type RoutingRef struct {
	RoutingStepID int64  `json:"routing_step_id"`
	ProcessCode   string `json:"process_code"`
	ProcessName   string `json:"process_name"`
	Position      int    `json:"position"`
}

// OrderItem represents an item manufactured to customer order.
type OrderItem struct {
	ID            int64         `json:"id"`
	Code          string        `json:"code"`
	Name          string        `json:"name"`
	CompanyID     int64         `json:"company_id"`
	CompanyName   string        `json:"company_name"`
	Category      string        `json:"category"`
	UnitPrice     float64       `json:"unit_price"`
	Color         string        `json:"color"`
	CoatingMethod CoatingMethod `json:"coating_method"`
	Images        []ItemImage   `json:"images"`
	Routing       []RoutingRef  `json:"routing"`
	Remark        string        `json:"remark"`
	IsTrading     bool          `json:"is_trading"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
