package app

import (
	"github.com/shopspring/decimal"
)

// Request types for the mutation operations. IDs are optional everywhere: a
// blank id means "create", a known id means "update in place". Dates arrive
// as YYYY-MM-DD strings and are validated before anything is published.

type SaveHubRequest struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

type SaveCustomerRequest struct {
	ID         string `json:"id"`
	Salutation string `json:"salutation"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Notes      string `json:"notes"`
}

type SaveProductRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type SetPriceRequest struct {
	ID string `json:"id"`
	// ProductID comes from the URL at the web adapter, not the body.
	ProductID     string          `json:"product_id"`
	EffectiveDate string          `json:"effective_date"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
}

type ConsignmentLineInput struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	QtyL      decimal.Decimal `json:"qty_l"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type SaveConsignmentRequest struct {
	ID            string                 `json:"id"`
	ConsignmentNo string                 `json:"consignment_no"`
	ReceiveDate   string                 `json:"receive_date"`
	ToHubID       string                 `json:"to_hub_id"`
	TransportCost decimal.Decimal        `json:"transport_cost"`
	Notes         string                 `json:"notes"`
	Lines         []ConsignmentLineInput `json:"lines"`
	CreatedBy     string                 `json:"-"`
}

type SaleLineInput struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	QtyL      decimal.Decimal `json:"qty_l"`
	// UnitPrice zero means "resolve from the price list as of the sale date".
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type SaveSaleRequest struct {
	ID                  string          `json:"id"`
	SaleNo              string          `json:"sale_no"`
	SaleDate            string          `json:"sale_date"`
	HubID               string          `json:"hub_id"`
	CustomerID          string          `json:"customer_id"`
	ReimbursementAmount decimal.Decimal `json:"reimbursement_amount"`
	Notes               string          `json:"notes"`
	Lines               []SaleLineInput `json:"lines"`
	CreatedBy           string          `json:"-"`
}

type SavePaymentRequest struct {
	ID          string          `json:"id"`
	PaymentDate string          `json:"payment_date"`
	CustomerID  string          `json:"customer_id"`
	Amount      decimal.Decimal `json:"amount"`
	Mode        string          `json:"mode"`
	Type        string          `json:"type"`
	Reference   string          `json:"reference"`
	Notes       string          `json:"notes"`
	CreatedBy   string          `json:"-"`
}

type SaveReturnRequest struct {
	ID                string          `json:"id"`
	Date              string          `json:"date"`
	Type              string          `json:"type"`
	HubID             string          `json:"hub_id"`
	CustomerID        string          `json:"customer_id"`
	ReferenceID       string          `json:"reference_id"`
	ProductID         string          `json:"product_id"`
	Qty               decimal.Decimal `json:"qty"`
	UnitPriceAtReturn decimal.Decimal `json:"unit_price_at_return"`
	Notes             string          `json:"notes"`
	CreatedBy         string          `json:"-"`
}
