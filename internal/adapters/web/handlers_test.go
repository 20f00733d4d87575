package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"oilhub/internal/app"
	"oilhub/internal/core"
	"oilhub/internal/store"

	"github.com/shopspring/decimal"
)

// stubService implements app.ApplicationService with canned data. Mutations
// record the last request so tests can assert the adapter passed it through.
type stubService struct {
	snap        *store.Snapshot
	lastSale    *app.SaveSaleRequest
	deletedSale string
}

func newStubService() *stubService {
	return &stubService{snap: store.Seed()}
}

func (s *stubService) CurrentSnapshot() *store.Snapshot { return s.snap }
func (s *stubService) SyncState() app.SyncState         { return app.SyncState{Status: app.SyncIdle} }
func (s *stubService) Flush(ctx context.Context) error  { return nil }

func (s *stubService) SaveHub(ctx context.Context, req app.SaveHubRequest) (*store.Hub, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("%w: hub name is required", app.ErrInvalid)
	}
	return &store.Hub{ID: "h-new", Name: req.Name}, nil
}
func (s *stubService) DeleteHub(ctx context.Context, id string) error { return nil }
func (s *stubService) SaveCustomer(ctx context.Context, req app.SaveCustomerRequest) (*store.Customer, error) {
	return &store.Customer{ID: "c-new", Name: req.Name}, nil
}
func (s *stubService) DeleteCustomer(ctx context.Context, id string) error { return nil }
func (s *stubService) SaveProduct(ctx context.Context, req app.SaveProductRequest) (*store.Product, error) {
	return &store.Product{ID: "p-new", Name: req.Name}, nil
}
func (s *stubService) DeleteProduct(ctx context.Context, id string) error { return nil }
func (s *stubService) SetPrice(ctx context.Context, req app.SetPriceRequest) (*store.PriceEntry, error) {
	return &store.PriceEntry{ID: "ph-new"}, nil
}
func (s *stubService) DeletePrice(ctx context.Context, id string) error { return nil }
func (s *stubService) SaveConsignment(ctx context.Context, req app.SaveConsignmentRequest) (*store.Consignment, error) {
	return &store.Consignment{ID: "con-new"}, nil
}
func (s *stubService) DeleteConsignment(ctx context.Context, id string) error { return nil }
func (s *stubService) SaveSale(ctx context.Context, req app.SaveSaleRequest) (*store.Sale, error) {
	s.lastSale = &req
	return &store.Sale{ID: "sale-new", SaleNo: "S-1"}, nil
}
func (s *stubService) DeleteSale(ctx context.Context, id string) error {
	s.deletedSale = id
	return nil
}
func (s *stubService) SavePayment(ctx context.Context, req app.SavePaymentRequest) (*store.Payment, error) {
	return &store.Payment{ID: "pay-new"}, nil
}
func (s *stubService) DeletePayment(ctx context.Context, id string) error { return nil }
func (s *stubService) SaveReturn(ctx context.Context, req app.SaveReturnRequest) (*store.ReturnRecord, error) {
	return &store.ReturnRecord{ID: "ret-new"}, nil
}
func (s *stubService) DeleteReturn(ctx context.Context, id string) error             { return nil }
func (s *stubService) SetAdminUsernames(ctx context.Context, names []string) error   { return nil }
func (s *stubService) LatestPrice(productID string, asOf store.Date) decimal.Decimal {
	return decimal.NewFromInt(450)
}
func (s *stubService) InventoryMetrics(hubScope, productID string) core.InventoryMetrics {
	return core.InventoryMetrics{Qty: decimal.NewFromInt(70)}
}
func (s *stubService) StockLevels() []core.StockRow { return []core.StockRow{} }
func (s *stubService) OutstandingBalance(customerID string) decimal.Decimal {
	return decimal.NewFromInt(13500)
}
func (s *stubService) CustomerStatement(customerID string) (*app.StatementResult, error) {
	if customerID == "missing" {
		return nil, fmt.Errorf("%w: unknown customer", app.ErrInvalid)
	}
	return &app.StatementResult{CustomerID: customerID}, nil
}
func (s *stubService) Dashboard(hubScope string) *core.DashboardVitals {
	return &core.DashboardVitals{}
}
func (s *stubService) ConsolidatedReport() *core.ConsolidatedReport {
	return &core.ConsolidatedReport{}
}
func (s *stubService) AuthenticateUser(ctx context.Context, username, password string) (*app.UserSession, error) {
	switch {
	case username == "admin" && password == "pw":
		return &app.UserSession{Username: "admin", IsAdmin: true}, nil
	case username == "clerk" && password == "pw":
		return &app.UserSession{Username: "clerk"}, nil
	}
	return nil, app.ErrUnauthorized
}
func (s *stubService) RegisterUser(ctx context.Context, username, password string) (*app.UserSession, error) {
	return &app.UserSession{Username: username}, nil
}

const testSecret = "test-secret"

func newTestHandler(t *testing.T) (*stubService, http.Handler) {
	t.Helper()
	svc := newStubService()
	return svc, NewHandler(svc, "", testSecret)
}

// loginCookie authenticates against the handler and returns the auth cookie.
func loginCookie(t *testing.T, h http.Handler, username string) *http.Cookie {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": "pw"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login for %q: status %d, body %s", username, rec.Code, rec.Body)
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == "auth_token" {
			return c
		}
	}
	t.Fatal("login response carried no auth_token cookie")
	return nil
}

func TestHealth_Public(t *testing.T) {
	_, h := newTestHandler(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("health: status %d", rec.Code)
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	_, h := newTestHandler(t)
	for _, path := range []string{"/api/snapshot", "/api/dashboard", "/api/reports/consolidated", "/api/auth/me"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s without token: status %d, want 401", path, rec.Code)
		}
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	_, h := newTestHandler(t)
	body, _ := json.Marshal(map[string]string{"username": "admin", "password": "nope"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body)))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad credentials: status %d, want 401", rec.Code)
	}
}

func TestLoginAndMe(t *testing.T) {
	_, h := newTestHandler(t)
	cookie := loginCookie(t, h, "admin")

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: status %d", rec.Code)
	}
	var me struct {
		Username string `json:"username"`
		IsAdmin  bool   `json:"is_admin"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &me); err != nil {
		t.Fatalf("me: bad JSON: %v", err)
	}
	if me.Username != "admin" || !me.IsAdmin {
		t.Errorf("me: got %+v", me)
	}
}

func TestDeleteRequiresAdmin(t *testing.T) {
	svc, h := newTestHandler(t)

	clerk := loginCookie(t, h, "clerk")
	req := httptest.NewRequest(http.MethodDelete, "/api/sales/sale-1", nil)
	req.AddCookie(clerk)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("clerk delete: status %d, want 403", rec.Code)
	}
	if svc.deletedSale != "" {
		t.Error("clerk delete must not reach the service")
	}

	admin := loginCookie(t, h, "admin")
	req = httptest.NewRequest(http.MethodDelete, "/api/sales/sale-1", nil)
	req.AddCookie(admin)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("admin delete: status %d, want 204", rec.Code)
	}
	if svc.deletedSale != "sale-1" {
		t.Errorf("expected delete of sale-1, got %q", svc.deletedSale)
	}
}

func TestSaveSale_PassesThroughAndStampsUser(t *testing.T) {
	svc, h := newTestHandler(t)
	cookie := loginCookie(t, h, "clerk")

	body, _ := json.Marshal(map[string]any{
		"sale_date":   "2025-01-10",
		"hub_id":      "hub-1",
		"customer_id": "c1",
		"lines":       []map[string]any{{"product_id": "p2", "qty_l": "30"}},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/sales", bytes.NewReader(body))
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("save sale: status %d, body %s", rec.Code, rec.Body)
	}
	if svc.lastSale == nil {
		t.Fatal("service never received the request")
	}
	if svc.lastSale.CreatedBy != "clerk" {
		t.Errorf("created_by not stamped from session, got %q", svc.lastSale.CreatedBy)
	}
	if len(svc.lastSale.Lines) != 1 || !svc.lastSale.Lines[0].QtyL.Equal(decimal.NewFromInt(30)) {
		t.Errorf("lines not passed through: %+v", svc.lastSale.Lines)
	}
}

func TestValidationErrorsMapTo400(t *testing.T) {
	_, h := newTestHandler(t)
	cookie := loginCookie(t, h, "clerk")

	body, _ := json.Marshal(map[string]string{"name": ""})
	req := httptest.NewRequest(http.MethodPost, "/api/hubs", bytes.NewReader(body))
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid hub: status %d, want 400", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/customers/missing/ledger", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown customer ledger: status %d, want 400", rec.Code)
	}
}

func TestInventoryQuery(t *testing.T) {
	_, h := newTestHandler(t)
	cookie := loginCookie(t, h, "clerk")

	req := httptest.NewRequest(http.MethodGet, "/api/inventory/metrics?product=p2&hub=hub-1", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("inventory metrics: status %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/inventory/metrics", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("inventory metrics without product: status %d, want 400", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/inventory/stock", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("stock levels: status %d", rec.Code)
	}
}

func TestListEndpoints(t *testing.T) {
	_, h := newTestHandler(t)
	cookie := loginCookie(t, h, "clerk")

	for _, path := range []string{"/api/hubs", "/api/products", "/api/sales", "/api/payments"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status %d", path, rec.Code)
			continue
		}
		var items []json.RawMessage
		if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
			t.Errorf("%s: want a JSON array, got %s", path, rec.Body)
		}
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	_, h := newTestHandler(t)
	cookie := loginCookie(t, h, "clerk")

	// Tamper with the signature.
	cookie.Value = cookie.Value[:len(cookie.Value)-2] + "xx"
	req := httptest.NewRequest(http.MethodGet, "/api/snapshot", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("tampered token: status %d, want 401", rec.Code)
	}
}
