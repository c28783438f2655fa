package materials

import (
	"time"

	"github.com/meridian-mes/meridian-mes/internal/shared"
)

// Material represents a raw material master record.
type Material struct {
	ID           int64     `json:"id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	CompanyID    int64     `json:"company_id"`
	CompanyName  string    `json:"company_name"`
	Category     string    `json:"category"`
	Color        string    `json:"color"`
	Spec         string    `json:"spec"`
	Manufacturer string    `json:"manufacturer"`
	Remark       string    `json:"remark"`
	IsTrading    bool      `json:"is_trading"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RegisterMaterialRequest carries the registration form payload.
type RegisterMaterialRequest struct {
	Code         string `json:"code" validate:"required,max=30"`
	Name         string `json:"name" validate:"required,max=100"`
	CompanyID    int64  `json:"company_id" validate:"required,gt=0"`
	Category     string `json:"category" validate:"max=50"`
	Color        string `json:"color" validate:"max=30"`
	Spec         string `json:"spec" validate:"max=100"`
	Manufacturer string `json:"manufacturer" validate:"max=100"`
	Remark       string `json:"remark"`
}

// UpdateMaterialRequest carries the inline/detail edit payload.
type UpdateMaterialRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	Category     string `json:"category" validate:"max=50"`
	Color        string `json:"color" validate:"max=30"`
	Spec         string `json:"spec" validate:"max=100"`
	Manufacturer string `json:"manufacturer" validate:"max=100"`
	Remark       string `json:"remark"`
}

// SetTradingRequest toggles the trading state.
type SetTradingRequest struct {
	IsTrading bool `json:"is_trading"`
}

// ListMaterialsResponse wraps a material page.
type ListMaterialsResponse struct {
	Materials  []Material        `json:"materials"`
	Total      int               `json:"total"`
	Pagination shared.Pagination `json:"pagination"`
}
