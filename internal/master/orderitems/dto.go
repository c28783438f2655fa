package orderitems

import "github.com/meridian-mes/meridian-mes/internal/shared"

// RegisterOrderItemRequest carries the registration form payload.
type RegisterOrderItemRequest struct {
	Code           string  `json:"code" validate:"required,max=30"`
	Name           string  `json:"name" validate:"required,max=100"`
	CompanyID      int64   `json:"company_id" validate:"required,gt=0"`
	Category       string  `json:"category" validate:"max=50"`
	UnitPrice      float64 `json:"unit_price" validate:"gte=0"`
	Color          string  `json:"color" validate:"max=30"`
	CoatingMethod  string  `json:"coating_method" validate:"required,oneof=LIQUID POWDER ED"`
	Remark         string  `json:"remark"`
	RoutingStepIDs []int64 `json:"routing_step_ids" validate:"omitempty,dive,gt=0"`
}

// UpdateOrderItemRequest carries the detail-edit payload.
type UpdateOrderItemRequest struct {
	Name           string  `json:"name" validate:"required,max=100"`
	Category       string  `json:"category" validate:"max=50"`
	UnitPrice      float64 `json:"unit_price" validate:"gte=0"`
	Color          string  `json:"color" validate:"max=30"`
	CoatingMethod  string  `json:"coating_method" validate:"required,oneof=LIQUID POWDER ED"`
	Remark         string  `json:"remark"`
	RoutingStepIDs []int64 `json:"routing_step_ids" validate:"omitempty,dive,gt=0"`
}

// SetTradingRequest toggles the trading state.
type SetTradingRequest struct {
	IsTrading bool `json:"is_trading"`
}

// ImageManifestEntry is one line of the multipart image-update manifest.
// Entries appear in display order. ID > 0 references a persisted image;
// ID == 0 marks a new upload matched to its file part by FileName.
type ImageManifestEntry struct {
	ID       int64  `json:"id"`
	FileName string `json:"file_name"`
}

// ListOrderItemsResponse wraps an order item page.
type ListOrderItemsResponse struct {
	OrderItems []OrderItem       `json:"order_items"`
	Total      int               `json:"total"`
	Pagination shared.Pagination `json:"pagination"`
}
