// Package web exposes the application service as a JSON API over chi.
// Authentication is a signed JWT cookie; mutations that delete data or
// manage accounts additionally require an admin session.
package web

import (
	"net/http"

	"oilhub/internal/app"
	"oilhub/internal/store"

	"github.com/go-chi/chi/v5"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc       app.ApplicationService
	jwtSecret string
	router    chi.Router
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins, jwtSecret string) http.Handler {
	h := &Handler{svc: svc, jwtSecret: jwtSecret}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))
	r.Use(RequestBodyLimit(1 << 20)) // 1 MB

	// ── Public ────────────────────────────────────────────────────────────
	r.Get("/api/health", h.health)
	r.Post("/api/auth/login", h.login)
	r.Post("/api/auth/logout", h.logout)

	// ── Authenticated ─────────────────────────────────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)

		r.Get("/api/auth/me", h.me)
		r.Get("/api/snapshot", h.snapshot)
		r.Get("/api/sync", h.syncStatus)

		// Collection reads
		r.Get("/api/hubs", h.listHubs)
		r.Get("/api/customers", h.listCustomers)
		r.Get("/api/products", h.listProducts)
		r.Get("/api/prices", h.listPrices)
		r.Get("/api/consignments", h.listConsignments)
		r.Get("/api/sales", h.listSales)
		r.Get("/api/payments", h.listPayments)
		r.Get("/api/returns", h.listReturns)

		// Derived views
		r.Get("/api/dashboard", h.dashboard)
		r.Get("/api/reports/consolidated", h.consolidatedReport)
		r.Get("/api/inventory/stock", h.stockLevels)
		r.Get("/api/inventory/metrics", h.inventoryMetrics)
		r.Get("/api/customers/{id}/ledger", h.customerLedger)
		r.Get("/api/customers/{id}/outstanding", h.customerOutstanding)
		r.Get("/api/products/{id}/price", h.productPrice)

		// Catalog and ledger writes
		r.Post("/api/hubs", h.saveHub)
		r.Post("/api/customers", h.saveCustomer)
		r.Post("/api/products", h.saveProduct)
		r.Post("/api/products/{id}/prices", h.setPrice)
		r.Post("/api/consignments", h.saveConsignment)
		r.Post("/api/sales", h.saveSale)
		r.Post("/api/payments", h.savePayment)
		r.Post("/api/returns", h.saveReturn)

		// ── Admin only ────────────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(h.RequireAdmin)

			r.Delete("/api/hubs/{id}", h.deleteHub)
			r.Delete("/api/customers/{id}", h.deleteCustomer)
			r.Delete("/api/products/{id}", h.deleteProduct)
			r.Delete("/api/prices/{id}", h.deletePrice)
			r.Delete("/api/consignments/{id}", h.deleteConsignment)
			r.Delete("/api/sales/{id}", h.deleteSale)
			r.Delete("/api/payments/{id}", h.deletePayment)
			r.Delete("/api/returns/{id}", h.deleteReturn)

			r.Put("/api/admins", h.setAdmins)
			r.Post("/api/users", h.registerUser)
		})
	})

	h.router = r
	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{"status": "ok", "sync": h.svc.SyncState()})
}

func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.svc.CurrentSnapshot())
}

// Collection list handlers. Each serves the relevant slice of the current
// snapshot revision; empty collections come back as [] rather than null.

func (h *Handler) listHubs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, orEmpty(h.svc.CurrentSnapshot().Hubs))
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, orEmpty(h.svc.CurrentSnapshot().Customers))
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, orEmpty(h.svc.CurrentSnapshot().Products))
}

func (h *Handler) listPrices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, orEmpty(h.svc.CurrentSnapshot().PriceHistory))
}

func (h *Handler) listConsignments(w http.ResponseWriter, r *http.Request) {
	s := h.svc.CurrentSnapshot()
	out := make([]consignmentView, 0, len(s.Consignments))
	for _, c := range s.Consignments {
		out = append(out, consignmentView{Consignment: c, Lines: s.LinesOfConsignment(c.ID)})
	}
	writeJSON(w, out)
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	s := h.svc.CurrentSnapshot()
	out := make([]saleView, 0, len(s.Sales))
	for _, sale := range s.Sales {
		out = append(out, saleView{Sale: sale, Lines: s.LinesOfSale(sale.ID)})
	}
	writeJSON(w, out)
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, orEmpty(h.svc.CurrentSnapshot().Payments))
}

func (h *Handler) listReturns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, orEmpty(h.svc.CurrentSnapshot().Returns))
}

type consignmentView struct {
	store.Consignment
	Lines []store.ConsignmentLine `json:"lines"`
}

type saleView struct {
	store.Sale
	Lines []store.SaleLine `json:"lines"`
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func (h *Handler) syncStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.svc.SyncState())
}

// createdBy stamps mutation requests with the authenticated username.
func createdBy(r *http.Request) string {
	if claims := authFromContext(r.Context()); claims != nil {
		return claims.Username
	}
	return ""
}
