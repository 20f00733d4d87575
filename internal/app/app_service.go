// Package app wires the snapshot store, the derived-view engines, and user
// authentication behind the ApplicationService interface. It holds the
// working snapshot under a read-write mutex: reads take the read lock and
// compute against an immutable revision, mutations validate, publish a new
// revision, and mark the debounced writer dirty.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"oilhub/internal/core"
	"oilhub/internal/persist"
	"oilhub/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalid marks a request rejected by validation. Adapters map it to a
// 400 response.
var ErrInvalid = errors.New("invalid request")

// ErrUnauthorized marks a failed credential check.
var ErrUnauthorized = errors.New("invalid username or password")

// Options configures the application service.
type Options struct {
	// MasterAdmin is always treated as an admin, independent of the
	// snapshot admin list. Used to bootstrap a fresh deployment.
	MasterAdmin string

	// Debounce is the quiet window before a changed snapshot is written
	// back. Zero means the default 1200 ms.
	Debounce time.Duration
}

type appService struct {
	users       persist.UserStore
	masterAdmin string

	mu   sync.RWMutex
	snap *store.Snapshot

	syncer *syncer
}

// NewAppService loads the working snapshot and starts the debounced writer.
// An empty store (no hubs and no products) is replaced with the seed catalog
// and scheduled for save, so a fresh database comes up ready to use.
func NewAppService(ctx context.Context, snapshots persist.SnapshotStore, users persist.UserStore, opts Options) (ApplicationService, error) {
	snap, err := snapshots.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	s := &appService{
		users:       users,
		masterAdmin: opts.MasterAdmin,
		snap:        snap,
		syncer:      newSyncer(snapshots, opts.Debounce),
	}
	s.syncer.start(ctx)

	if len(snap.Hubs) == 0 && len(snap.Products) == 0 {
		log.Println("empty snapshot store, seeding default catalog")
		s.publish(store.Seed())
	}
	return s, nil
}

// publish swaps in a new revision and marks it for saving.
func (s *appService) publish(n *store.Snapshot) {
	s.mu.Lock()
	s.snap = n
	s.mu.Unlock()
	s.syncer.markDirty(n)
}

func (s *appService) current() *store.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

func (s *appService) CurrentSnapshot() *store.Snapshot { return s.current() }

func (s *appService) SyncState() SyncState { return s.syncer.state() }

func (s *appService) Flush(ctx context.Context) error { return s.syncer.flush(ctx) }

// ── Catalog mutations ─────────────────────────────────────────────────────

func (s *appService) SaveHub(ctx context.Context, req SaveHubRequest) (*store.Hub, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: hub name is required", ErrInvalid)
	}
	h := store.Hub{ID: orNewID(req.ID), Name: strings.TrimSpace(req.Name), Address: strings.TrimSpace(req.Address)}

	s.mu.Lock()
	n := s.snap.WithHub(h)
	s.snap = n
	s.mu.Unlock()
	s.syncer.markDirty(n)
	return &h, nil
}

func (s *appService) DeleteHub(ctx context.Context, id string) error {
	s.mu.Lock()
	n := s.snap.WithoutHub(id)
	s.snap = n
	s.mu.Unlock()
	s.syncer.markDirty(n)
	return nil
}

func (s *appService) SaveCustomer(ctx context.Context, req SaveCustomerRequest) (*store.Customer, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: customer name is required", ErrInvalid)
	}
	c := store.Customer{
		ID:         orNewID(req.ID),
		Salutation: strings.TrimSpace(req.Salutation),
		Name:       strings.TrimSpace(req.Name),
		Phone:      strings.TrimSpace(req.Phone),
		Notes:      req.Notes,
	}
	if c.Salutation == "" {
		c.Salutation = "Smt."
	}

	s.mu.Lock()
	n := s.snap.WithCustomer(c)
	s.snap = n
	s.mu.Unlock()
	s.syncer.markDirty(n)
	return &c, nil
}

func (s *appService) DeleteCustomer(ctx context.Context, id string) error {
	s.mu.Lock()
	n := s.snap.WithoutCustomer(id)
	s.snap = n
	s.mu.Unlock()
	s.syncer.markDirty(n)
	return nil
}

func (s *appService) SaveProduct(ctx context.Context, req SaveProductRequest) (*store.Product, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: product name is required", ErrInvalid)
	}
	p := store.Product{ID: orNewID(req.ID), Name: strings.TrimSpace(req.Name)}

	s.mu.Lock()
	n := s.snap.WithProduct(p)
	s.snap = n
	s.mu.Unlock()
	s.syncer.markDirty(n)
	return &p, nil
}

func (s *appService) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	n := s.snap.WithoutProduct(id)
	s.snap = n
	s.mu.Unlock()
	s.syncer.markDirty(n)
	return nil
}

func (s *appService) SetPrice(ctx context.Context, req SetPriceRequest) (*store.PriceEntry, error) {
	date, err := store.ParseDate(req.EffectiveDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if req.UnitPrice.IsNegative() {
		return nil, fmt.Errorf("%w: unit price must not be negative", ErrInvalid)
	}

	s.mu.Lock()
	if _, ok := s.snap.Product(req.ProductID); !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: unknown product %q", ErrInvalid, req.ProductID)
	}
	e := store.PriceEntry{ID: orNewID(req.ID), ProductID: req.ProductID, EffectiveDate: date, UnitPrice: req.UnitPrice}
	n := s.snap.WithPrice(e)
	s.snap = n
	s.mu.Unlock()
	s.syncer.markDirty(n)
	return &e, nil
}

func (s *appService) DeletePrice(ctx context.Context, id string) error {
	s.mu.Lock()
	n := s.snap.WithoutPrice(id)
	s.snap = n
	s.mu.Unlock()
	s.syncer.markDirty(n)
	return nil
}

// ── Ledger event mutations ────────────────────────────────────────────────

func (s *appService) SaveConsignment(ctx context.Context, req SaveConsignmentRequest) (*store.Consignment, error) {
	date, err := store.ParseDate(req.ReceiveDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("%w: a consignment needs at least one line", ErrInvalid)
	}
	if req.TransportCost.IsNegative() {
		return nil, fmt.Errorf("%w: transport cost must not be negative", ErrInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.snap.Hub(req.ToHubID); !ok {
		return nil, fmt.Errorf("%w: unknown hub %q", ErrInvalid, req.ToHubID)
	}

	c := store.Consignment{
		ID:            orNewID(req.ID),
		ConsignmentNo: strings.TrimSpace(req.ConsignmentNo),
		ReceiveDate:   date,
		ToHubID:       req.ToHubID,
		TransportCost: req.TransportCost,
		Notes:         req.Notes,
		CreatedBy:     req.CreatedBy,
	}
	if c.ConsignmentNo == "" {
		c.ConsignmentNo = s.snap.NextConsignmentNo()
	}

	lines := make([]store.ConsignmentLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		if _, ok := s.snap.Product(l.ProductID); !ok {
			return nil, fmt.Errorf("%w: unknown product %q", ErrInvalid, l.ProductID)
		}
		if l.QtyL.IsNegative() || l.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: negative quantity or price", ErrInvalid)
		}
		lines = append(lines, store.ConsignmentLine{
			ID:            orNewID(l.ID),
			ConsignmentID: c.ID,
			ProductID:     l.ProductID,
			QtyL:          l.QtyL,
			UnitPrice:     l.UnitPrice,
		})
	}

	n := s.snap.WithConsignment(c, lines)
	s.snap = n
	s.syncer.markDirty(n)
	return &c, nil
}

func (s *appService) DeleteConsignment(ctx context.Context, id string) error {
	s.mu.Lock()
	n := s.snap.WithoutConsignment(id)
	s.snap = n
	s.mu.Unlock()
	s.syncer.markDirty(n)
	return nil
}

func (s *appService) SaveSale(ctx context.Context, req SaveSaleRequest) (*store.Sale, error) {
	date, err := store.ParseDate(req.SaleDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("%w: a sale needs at least one line", ErrInvalid)
	}
	if req.ReimbursementAmount.IsNegative() {
		return nil, fmt.Errorf("%w: reimbursement must not be negative", ErrInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.snap.Hub(req.HubID); !ok {
		return nil, fmt.Errorf("%w: unknown hub %q", ErrInvalid, req.HubID)
	}
	if _, ok := s.snap.Customer(req.CustomerID); !ok {
		return nil, fmt.Errorf("%w: unknown customer %q", ErrInvalid, req.CustomerID)
	}

	sale := store.Sale{
		ID:                  orNewID(req.ID),
		SaleNo:              strings.TrimSpace(req.SaleNo),
		SaleDate:            date,
		HubID:               req.HubID,
		CustomerID:          req.CustomerID,
		ReimbursementAmount: req.ReimbursementAmount,
		Notes:               req.Notes,
		CreatedBy:           req.CreatedBy,
	}
	if sale.SaleNo == "" {
		sale.SaleNo = s.snap.NextSaleNo()
	}

	lines := make([]store.SaleLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		if _, ok := s.snap.Product(l.ProductID); !ok {
			return nil, fmt.Errorf("%w: unknown product %q", ErrInvalid, l.ProductID)
		}
		if l.QtyL.IsNegative() || l.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: negative quantity or price", ErrInvalid)
		}
		price := l.UnitPrice
		if price.IsZero() {
			price = core.LatestPrice(s.snap, l.ProductID, date)
		}
		lines = append(lines, store.SaleLine{
			ID:        orNewID(l.ID),
			SaleID:    sale.ID,
			ProductID: l.ProductID,
			QtyL:      l.QtyL,
			UnitPrice: price,
		})
	}

	n := s.snap.WithSale(sale, lines)
	s.snap = n
	s.syncer.markDirty(n)
	return &sale, nil
}

func (s *appService) DeleteSale(ctx context.Context, id string) error {
	s.mu.Lock()
	n := s.snap.WithoutSale(id)
	s.snap = n
	s.mu.Unlock()
	s.syncer.markDirty(n)
	return nil
}

func (s *appService) SavePayment(ctx context.Context, req SavePaymentRequest) (*store.Payment, error) {
	date, err := store.ParseDate(req.PaymentDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if req.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount must not be negative", ErrInvalid)
	}
	ptype := store.PaymentType(req.Type)
	if ptype != store.PaymentTypeRefund {
		ptype = store.PaymentTypePayment
	}
	mode := strings.TrimSpace(req.Mode)
	if mode == "" {
		mode = "GPay"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.snap.Customer(req.CustomerID); !ok {
		return nil, fmt.Errorf("%w: unknown customer %q", ErrInvalid, req.CustomerID)
	}

	p := store.Payment{
		ID:          orNewID(req.ID),
		PaymentDate: date,
		CustomerID:  req.CustomerID,
		Amount:      req.Amount,
		Mode:        mode,
		Type:        ptype,
		Reference:   strings.TrimSpace(req.Reference),
		Notes:       req.Notes,
		CreatedBy:   req.CreatedBy,
	}
	n := s.snap.WithPayment(p)
	s.snap = n
	s.syncer.markDirty(n)
	return &p, nil
}

func (s *appService) DeletePayment(ctx context.Context, id string) error {
	s.mu.Lock()
	n := s.snap.WithoutPayment(id)
	s.snap = n
	s.mu.Unlock()
	s.syncer.markDirty(n)
	return nil
}

func (s *appService) SaveReturn(ctx context.Context, req SaveReturnRequest) (*store.ReturnRecord, error) {
	date, err := store.ParseDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if req.Qty.IsNegative() || req.UnitPriceAtReturn.IsNegative() {
		return nil, fmt.Errorf("%w: negative quantity or price", ErrInvalid)
	}
	rtype := store.ReturnType(req.Type)
	if rtype != store.ReturnTypeSupplier {
		rtype = store.ReturnTypeCustomer
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.snap.Product(req.ProductID); !ok {
		return nil, fmt.Errorf("%w: unknown product %q", ErrInvalid, req.ProductID)
	}
	if rtype == store.ReturnTypeCustomer {
		if _, ok := s.snap.Customer(req.CustomerID); !ok {
			return nil, fmt.Errorf("%w: a customer return needs a known customer", ErrInvalid)
		}
	}
	if rtype == store.ReturnTypeSupplier {
		if _, ok := s.snap.Hub(req.HubID); !ok {
			return nil, fmt.Errorf("%w: a supplier return needs a known hub", ErrInvalid)
		}
	}

	price := req.UnitPriceAtReturn
	if rtype == store.ReturnTypeCustomer && req.ReferenceID != "" {
		// A traced customer return credits at the invoiced price, never
		// more goods than the invoiced line held.
		line, ok := s.snap.SaleLine(req.ReferenceID)
		if !ok {
			return nil, fmt.Errorf("%w: unknown sale line %q", ErrInvalid, req.ReferenceID)
		}
		if line.ProductID != req.ProductID {
			return nil, fmt.Errorf("%w: sale line %q is for a different product", ErrInvalid, req.ReferenceID)
		}
		if req.Qty.GreaterThan(line.QtyL) {
			return nil, fmt.Errorf("%w: return quantity exceeds the sold quantity", ErrInvalid)
		}
		price = line.UnitPrice
	}
	if price.IsZero() {
		price = core.LatestPrice(s.snap, req.ProductID, date)
	}

	r := store.ReturnRecord{
		ID:                orNewID(req.ID),
		Date:              date,
		Type:              rtype,
		HubID:             req.HubID,
		CustomerID:        req.CustomerID,
		ReferenceID:       req.ReferenceID,
		ProductID:         req.ProductID,
		Qty:               req.Qty,
		UnitPriceAtReturn: price,
		Notes:             req.Notes,
		CreatedBy:         req.CreatedBy,
	}
	n := s.snap.WithReturn(r)
	s.snap = n
	s.syncer.markDirty(n)
	return &r, nil
}

func (s *appService) DeleteReturn(ctx context.Context, id string) error {
	s.mu.Lock()
	n := s.snap.WithoutReturn(id)
	s.snap = n
	s.mu.Unlock()
	s.syncer.markDirty(n)
	return nil
}

func (s *appService) SetAdminUsernames(ctx context.Context, usernames []string) error {
	cleaned := make([]string, 0, len(usernames))
	for _, u := range usernames {
		if t := strings.TrimSpace(u); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	s.mu.Lock()
	n := s.snap.WithAdminUsernames(cleaned)
	s.snap = n
	s.mu.Unlock()
	s.syncer.markDirty(n)
	return nil
}

// ── Derived views ─────────────────────────────────────────────────────────

func (s *appService) LatestPrice(productID string, asOf store.Date) decimal.Decimal {
	return core.LatestPrice(s.current(), productID, asOf)
}

func (s *appService) InventoryMetrics(hubScope, productID string) core.InventoryMetrics {
	return core.ComputeInventoryMetrics(s.current(), hubScope, productID, time.Now())
}

func (s *appService) StockLevels() []core.StockRow {
	return core.BuildStockLevels(s.current(), time.Now())
}

func (s *appService) OutstandingBalance(customerID string) decimal.Decimal {
	return core.OutstandingBalance(s.current(), customerID)
}

func (s *appService) CustomerStatement(customerID string) (*StatementResult, error) {
	snap := s.current()
	c, ok := snap.Customer(customerID)
	if !ok {
		return nil, fmt.Errorf("%w: unknown customer %q", ErrInvalid, customerID)
	}
	entries := core.CustomerLedger(snap, customerID)
	return &StatementResult{
		CustomerID:     c.ID,
		CustomerName:   c.Name,
		Entries:        entries,
		ClosingBalance: core.OutstandingBalance(snap, customerID),
	}, nil
}

func (s *appService) Dashboard(hubScope string) *core.DashboardVitals {
	if hubScope == "" {
		hubScope = core.ScopeAllHubs
	}
	return core.BuildDashboard(s.current(), hubScope, time.Now())
}

func (s *appService) ConsolidatedReport() *core.ConsolidatedReport {
	return core.BuildConsolidatedReport(s.current(), time.Now())
}

// ── Authentication ────────────────────────────────────────────────────────

func (s *appService) AuthenticateUser(ctx context.Context, username, password string) (*UserSession, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, persist.ErrUserNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrUnauthorized
	}
	return &UserSession{Username: u.Username, IsAdmin: s.isAdmin(u.Username)}, nil
}

func (s *appService) RegisterUser(ctx context.Context, username, password string) (*UserSession, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalid)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrInvalid)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.users.Create(ctx, username, string(hash))
	if err != nil {
		return nil, err
	}
	return &UserSession{Username: u.Username, IsAdmin: s.isAdmin(u.Username)}, nil
}

func (s *appService) isAdmin(username string) bool {
	if s.masterAdmin != "" && strings.EqualFold(username, s.masterAdmin) {
		return true
	}
	return s.current().IsAdmin(username)
}

func orNewID(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return uuid.NewString()
}
