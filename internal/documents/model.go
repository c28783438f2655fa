package documents

import "time"

// WorkOrderStep is one routing line on a work order.
type WorkOrderStep struct {
	ProcessCode  string  `json:"process_code"`
	ProcessName  string  `json:"process_name"`
	StandardTime float64 `json:"standard_time_minutes"`
	Position     int     `json:"position"`
}

// WorkOrder is the denormalized printable view of one order item: item and
// company master data, the routing sequence and the representative image.
type WorkOrder struct {
	ItemID              int64           `json:"item_id"`
	ItemCode            string          `json:"item_code"`
	ItemName            string          `json:"item_name"`
	Category            string          `json:"category"`
	Color               string          `json:"color"`
	CoatingMethod       string          `json:"coating_method"`
	UnitPrice           float64         `json:"unit_price"`
	Remark              string          `json:"remark"`
	CompanyName         string          `json:"company_name"`
	CompanyCEO          string          `json:"company_ceo"`
	CompanyPhone        string          `json:"company_phone"`
	RepresentativeImage string          `json:"representative_image,omitempty"`
	Steps               []WorkOrderStep `json:"steps"`
	IssuedAt            time.Time       `json:"issued_at"`
}

// ShipmentInvoice is the printable view of one outbound movement, tying the
// shipment back to its source LOT and the receiving company.
type ShipmentInvoice struct {
	MovementID  int64     `json:"movement_id"`
	MovementNo  string    `json:"movement_no"`
	LotNo       string    `json:"lot_no"`
	ItemCode    string    `json:"item_code"`
	ItemName    string    `json:"item_name"`
	CompanyName string    `json:"company_name"`
	Quantity    float64   `json:"quantity"`
	Date        time.Time `json:"date"`
	Remark      string    `json:"remark"`
	IssuedAt    time.Time `json:"issued_at"`
}
