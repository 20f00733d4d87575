// Package store defines the normalized record model of the distributor
// ledger: a single immutable-per-revision Snapshot holding every collection,
// plus the load-boundary normalization and copy-on-write helpers the
// application layer uses to produce new revisions.
package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Date is a calendar date stored as a zero-padded YYYY-MM-DD string.
// The format is validated on ingestion, which makes lexicographic string
// comparison (<, <=) equivalent to chronological comparison everywhere else.
type Date string

const dateLayout = "2006-01-02"

// ParseDate validates s as a zero-padded YYYY-MM-DD date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: want YYYY-MM-DD: %w", s, err)
	}
	// time.Parse accepts some non-canonical spellings; round-trip to be strict.
	if t.Format(dateLayout) != s {
		return "", fmt.Errorf("invalid date %q: want zero-padded YYYY-MM-DD", s)
	}
	return Date(s), nil
}

// Today returns the Date for now in the local timezone.
func Today() Date {
	return Date(time.Now().Format(dateLayout))
}

// DaysUntil returns the whole days elapsed from d to asOf, clamped at zero.
// An unparseable or empty date counts as zero days.
func (d Date) DaysUntil(asOf time.Time) int {
	t, err := time.Parse(dateLayout, string(d))
	if err != nil {
		return 0
	}
	days := int(asOf.Sub(t).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// Valid reports whether d is a well-formed zero-padded date.
func (d Date) Valid() bool {
	_, err := ParseDate(string(d))
	return err == nil
}

type PaymentType string

const (
	PaymentTypePayment PaymentType = "PAYMENT"
	PaymentTypeRefund  PaymentType = "REFUND"
)

type ReturnType string

const (
	ReturnTypeCustomer ReturnType = "Customer Return"
	ReturnTypeSupplier ReturnType = "Return to Supplier"
)

// Hub is a physical stock-holding location.
type Hub struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

type Customer struct {
	ID         string `json:"id"`
	Salutation string `json:"salutation"`
	Name       string `json:"name"`
	Phone      string `json:"phone,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

type Product struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PriceEntry is one point in a product's price history. Conceptually at most
// one entry exists per (product, effective date); edits replace in place.
type PriceEntry struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	EffectiveDate Date            `json:"effective_date"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
}

// Consignment is a stock-receipt event at a hub.
type Consignment struct {
	ID            string          `json:"id"`
	ConsignmentNo string          `json:"consignment_no"`
	ReceiveDate   Date            `json:"receive_date"`
	ToHubID       string          `json:"to_hub_id"`
	TransportCost decimal.Decimal `json:"transport_cost"`
	Notes         string          `json:"notes,omitempty"`
	CreatedBy     string          `json:"created_by,omitempty"`
}

type ConsignmentLine struct {
	ID            string          `json:"id"`
	ConsignmentID string          `json:"consignment_id"`
	ProductID     string          `json:"product_id"`
	QtyL          decimal.Decimal `json:"qty_l"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
}

// Sale is a customer invoice event consuming hub stock.
type Sale struct {
	ID                  string          `json:"id"`
	SaleNo              string          `json:"sale_no"`
	SaleDate            Date            `json:"sale_date"`
	HubID               string          `json:"hub_id"`
	CustomerID          string          `json:"customer_id"`
	ReimbursementAmount decimal.Decimal `json:"reimbursement_amount"`
	Notes               string          `json:"notes,omitempty"`
	CreatedBy           string          `json:"created_by,omitempty"`
}

type SaleLine struct {
	ID        string          `json:"id"`
	SaleID    string          `json:"sale_id"`
	ProductID string          `json:"product_id"`
	QtyL      decimal.Decimal `json:"qty_l"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type Payment struct {
	ID          string          `json:"id"`
	PaymentDate Date            `json:"payment_date"`
	CustomerID  string          `json:"customer_id"`
	Amount      decimal.Decimal `json:"amount"`
	Mode        string          `json:"mode"`
	Type        PaymentType     `json:"type"`
	Reference   string          `json:"reference,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	CreatedBy   string          `json:"created_by,omitempty"`
}

// ReturnRecord is goods flowing back: from a customer (credits their
// balance, optionally traced to a sale) or to the upstream supplier
// (reduces hub stock only).
type ReturnRecord struct {
	ID                string          `json:"id"`
	Date              Date            `json:"date"`
	Type              ReturnType      `json:"type"`
	HubID             string          `json:"hub_id"`
	CustomerID        string          `json:"customer_id,omitempty"`
	ReferenceID       string          `json:"reference_id,omitempty"` // sale line or consignment id
	ProductID         string          `json:"product_id"`
	Qty               decimal.Decimal `json:"qty"`
	UnitPriceAtReturn decimal.Decimal `json:"unit_price_at_return"`
	Notes             string          `json:"notes,omitempty"`
	CreatedBy         string          `json:"created_by,omitempty"`
}

// Snapshot is one complete revision of the business state. A Snapshot and
// everything it references is treated as immutable once published: readers
// may hold and traverse it without locking, and every mutation produces a
// fresh Snapshot via the With* helpers.
type Snapshot struct {
	Hubs             []Hub             `json:"hubs"`
	Customers        []Customer        `json:"customers"`
	Products         []Product         `json:"products"`
	PriceHistory     []PriceEntry      `json:"price_history"`
	Consignments     []Consignment     `json:"consignments"`
	ConsignmentLines []ConsignmentLine `json:"consignment_lines"`
	Sales            []Sale            `json:"sales"`
	SaleLines        []SaleLine        `json:"sale_lines"`
	Payments         []Payment         `json:"payments"`
	Returns          []ReturnRecord    `json:"returns"`
	AdminUsernames   []string          `json:"admin_usernames"`
}

// Lookup helpers. They return the zero value and false on a missing id;
// callers in the engines treat that as "skip the line", never as an error.

func (s *Snapshot) Hub(id string) (Hub, bool) {
	for _, h := range s.Hubs {
		if h.ID == id {
			return h, true
		}
	}
	return Hub{}, false
}

func (s *Snapshot) Customer(id string) (Customer, bool) {
	for _, c := range s.Customers {
		if c.ID == id {
			return c, true
		}
	}
	return Customer{}, false
}

func (s *Snapshot) Product(id string) (Product, bool) {
	for _, p := range s.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

func (s *Snapshot) Consignment(id string) (Consignment, bool) {
	for _, c := range s.Consignments {
		if c.ID == id {
			return c, true
		}
	}
	return Consignment{}, false
}

func (s *Snapshot) Sale(id string) (Sale, bool) {
	for _, sl := range s.Sales {
		if sl.ID == id {
			return sl, true
		}
	}
	return Sale{}, false
}

func (s *Snapshot) SaleLine(id string) (SaleLine, bool) {
	for _, sl := range s.SaleLines {
		if sl.ID == id {
			return sl, true
		}
	}
	return SaleLine{}, false
}

// LinesOfSale returns the sale's line items in snapshot order.
func (s *Snapshot) LinesOfSale(saleID string) []SaleLine {
	var out []SaleLine
	for _, sl := range s.SaleLines {
		if sl.SaleID == saleID {
			out = append(out, sl)
		}
	}
	return out
}

// LinesOfConsignment returns the consignment's line items in snapshot order.
func (s *Snapshot) LinesOfConsignment(consignmentID string) []ConsignmentLine {
	var out []ConsignmentLine
	for _, cl := range s.ConsignmentLines {
		if cl.ConsignmentID == consignmentID {
			out = append(out, cl)
		}
	}
	return out
}

// IsAdmin reports whether username appears in the snapshot's admin list.
// Matching is case-insensitive.
func (s *Snapshot) IsAdmin(username string) bool {
	for _, u := range s.AdminUsernames {
		if strings.EqualFold(u, username) {
			return true
		}
	}
	return false
}
