package companies

import "github.com/meridian-mes/meridian-mes/internal/shared"

// RegisterCompanyRequest carries the registration form payload.
type RegisterCompanyRequest struct {
	Name           string `json:"name" validate:"required,max=100"`
	Type           string `json:"type" validate:"required,oneof=CLIENT SUPPLIER"`
	RegistrationNo string `json:"registration_no" validate:"required,max=20"`
	CEOName        string `json:"ceo_name" validate:"max=50"`
	ManagerName    string `json:"manager_name" validate:"max=50"`
	ManagerPhone   string `json:"manager_phone" validate:"max=20"`
	Zip            string `json:"zip" validate:"max=10"`
	Address        string `json:"address" validate:"max=200"`
	AddressDetail  string `json:"address_detail" validate:"max=200"`
	Remark         string `json:"remark"`
}

// UpdateCompanyRequest carries the detail-edit form payload.
type UpdateCompanyRequest struct {
	Name          string `json:"name" validate:"required,max=100"`
	CEOName       string `json:"ceo_name" validate:"max=50"`
	ManagerName   string `json:"manager_name" validate:"max=50"`
	ManagerPhone  string `json:"manager_phone" validate:"max=20"`
	Zip           string `json:"zip" validate:"max=10"`
	Address       string `json:"address" validate:"max=200"`
	AddressDetail string `json:"address_detail" validate:"max=200"`
	Remark        string `json:"remark"`
}

// SetTradingRequest toggles the trading state of a company.
type SetTradingRequest struct {
	IsTrading bool `json:"is_trading"`
}

// ListCompaniesResponse wraps a company page.
type ListCompaniesResponse struct {
	Companies  []Company         `json:"companies"`
	Total      int               `json:"total"`
	Pagination shared.Pagination `json:"pagination"`
}

func (r RegisterCompanyRequest) toModel() Company {
	return Company{
		Name:           r.Name,
		Type:           CompanyType(r.Type),
		RegistrationNo: r.RegistrationNo,
		CEOName:        r.CEOName,
		ManagerName:    r.ManagerName,
		ManagerPhone:   r.ManagerPhone,
		Zip:            r.Zip,
		Address:        r.Address,
		AddressDetail:  r.AddressDetail,
		Remark:         r.Remark,
		IsTrading:      true,
	}
}
