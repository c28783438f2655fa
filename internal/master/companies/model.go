package companies

import (
	"time"
)

// CompanyType separates trade partners by role.
type CompanyType string

const (
	// TypeClient buys finished order items.
	TypeClient CompanyType = "CLIENT"
	// TypeSupplier delivers raw materials.
	TypeSupplier CompanyType = "SUPPLIER"
)

// IsValid checks if the type is a known value.
func (t CompanyType) IsValid() bool {
	return t == TypeClient || t == TypeSupplier
}

// Company represents a trade partner.
type Company struct {
	ID             int64       `json:"id"`
	Name           string      `json:"name"`
	Type           CompanyType `json:"type"`
	RegistrationNo string      `json:"registration_no"`
	CEOName        string      `json:"ceo_name"`
	ManagerName    string      `json:"manager_name"`
	ManagerPhone   string      `json:"manager_phone"`
	Zip            string      `json:"zip"`
	Address        string      `json:"address"`
	AddressDetail  string      `json:"address_detail"`
	Remark         string      `json:"remark"`
	IsTrading      bool        `json:"is_trading"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}
