package app

import (
	"context"
	"time"

	"oilhub/internal/core"
	"oilhub/internal/store"

	"github.com/shopspring/decimal"
)

// ApplicationService is the single interface all adapters call. It owns the
// working snapshot: reads serve derived views of the current revision,
// mutations publish a new revision and schedule a debounced save.
// Implementations must contain no display logic of any kind.
type ApplicationService interface {
	// CurrentSnapshot returns the working snapshot revision. Callers must
	// treat it as read-only.
	CurrentSnapshot() *store.Snapshot

	// SyncState reports the persistence sync status and timestamps.
	SyncState() SyncState

	// Flush forces any pending snapshot save to run now. Used on shutdown.
	Flush(ctx context.Context) error

	// SaveHub creates or updates a hub.
	SaveHub(ctx context.Context, req SaveHubRequest) (*store.Hub, error)

	// DeleteHub removes a hub. Ledger events referencing it are kept.
	DeleteHub(ctx context.Context, id string) error

	// SaveCustomer creates or updates a customer.
	SaveCustomer(ctx context.Context, req SaveCustomerRequest) (*store.Customer, error)

	// DeleteCustomer removes a customer.
	DeleteCustomer(ctx context.Context, id string) error

	// SaveProduct creates or updates a product.
	SaveProduct(ctx context.Context, req SaveProductRequest) (*store.Product, error)

	// DeleteProduct removes a product.
	DeleteProduct(ctx context.Context, id string) error

	// SetPrice records a product price effective from a date. An existing
	// entry for the same product and date is replaced.
	SetPrice(ctx context.Context, req SetPriceRequest) (*store.PriceEntry, error)

	// DeletePrice removes a price entry by id.
	DeletePrice(ctx context.Context, id string) error

	// SaveConsignment creates or updates a stock receipt with its lines.
	// A blank consignment number is assigned automatically.
	SaveConsignment(ctx context.Context, req SaveConsignmentRequest) (*store.Consignment, error)

	// DeleteConsignment removes a consignment and its lines.
	DeleteConsignment(ctx context.Context, id string) error

	// SaveSale creates or updates a sale invoice with its lines. A blank
	// sale number is assigned automatically; blank unit prices resolve to
	// the price list as of the sale date.
	SaveSale(ctx context.Context, req SaveSaleRequest) (*store.Sale, error)

	// DeleteSale removes a sale and its lines.
	DeleteSale(ctx context.Context, id string) error

	// SavePayment records a payment or refund against a customer.
	SavePayment(ctx context.Context, req SavePaymentRequest) (*store.Payment, error)

	// DeletePayment removes a payment.
	DeletePayment(ctx context.Context, id string) error

	// SaveReturn records goods flowing back from a customer or to the
	// supplier.
	SaveReturn(ctx context.Context, req SaveReturnRequest) (*store.ReturnRecord, error)

	// DeleteReturn removes a return record.
	DeleteReturn(ctx context.Context, id string) error

	// SetAdminUsernames replaces the admin list carried in the snapshot.
	SetAdminUsernames(ctx context.Context, usernames []string) error

	// LatestPrice resolves a product's unit price as of a date; zero when
	// no entry qualifies.
	LatestPrice(productID string, asOf store.Date) decimal.Decimal

	// InventoryMetrics values a product's remaining stock within a hub
	// scope (a hub id or core.ScopeAllHubs).
	InventoryMetrics(hubScope, productID string) core.InventoryMetrics

	// StockLevels returns the product-by-hub stock grid.
	StockLevels() []core.StockRow

	// OutstandingBalance returns the customer's net receivable position.
	OutstandingBalance(customerID string) decimal.Decimal

	// CustomerStatement returns the customer's chronological ledger along
	// with the closing balance.
	CustomerStatement(customerID string) (*StatementResult, error)

	// Dashboard returns the home-screen vitals for a hub scope.
	Dashboard(hubScope string) *core.DashboardVitals

	// ConsolidatedReport builds the all-entity business report.
	ConsolidatedReport() *core.ConsolidatedReport

	// AuthenticateUser verifies credentials and returns a session with the
	// admin flag resolved against the snapshot admin list.
	AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error)

	// RegisterUser creates a login account. Admin-gated at the adapter.
	RegisterUser(ctx context.Context, username, password string) (*UserSession, error)
}

// UserSession identifies an authenticated user.
type UserSession struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// SyncState describes where the debounced persistence writer stands.
type SyncState struct {
	Status    SyncStatus `json:"status"`
	LastSaved time.Time  `json:"last_saved,omitempty"`
	LastError string     `json:"last_error,omitempty"`
}

type SyncStatus string

const (
	SyncIdle    SyncStatus = "idle"
	SyncPending SyncStatus = "pending"
	SyncSaving  SyncStatus = "saving"
	SyncError   SyncStatus = "error"
)
