package web

import (
	"net/http"

	"oilhub/internal/core"
	"oilhub/internal/store"

	"github.com/go-chi/chi/v5"
)

// dashboard handles GET /api/dashboard?hub=<id|all>.
func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.svc.Dashboard(r.URL.Query().Get("hub")))
}

// consolidatedReport handles GET /api/reports/consolidated.
func (h *Handler) consolidatedReport(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.svc.ConsolidatedReport())
}

// stockLevels handles GET /api/inventory/stock.
func (h *Handler) stockLevels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.svc.StockLevels())
}

// inventoryMetrics handles GET /api/inventory/metrics?hub=<id|all>&product=<id>.
func (h *Handler) inventoryMetrics(w http.ResponseWriter, r *http.Request) {
	productID := r.URL.Query().Get("product")
	if productID == "" {
		writeError(w, r, "product query parameter is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	hub := r.URL.Query().Get("hub")
	if hub == "" {
		hub = core.ScopeAllHubs
	}
	writeJSON(w, h.svc.InventoryMetrics(hub, productID))
}

// customerLedger handles GET /api/customers/{id}/ledger.
func (h *Handler) customerLedger(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.CustomerStatement(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, st)
}

// customerOutstanding handles GET /api/customers/{id}/outstanding.
func (h *Handler) customerOutstanding(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	writeJSON(w, map[string]any{
		"customer_id": id,
		"outstanding": h.svc.OutstandingBalance(id),
	})
}

// productPrice handles GET /api/products/{id}/price?date=YYYY-MM-DD.
// The date defaults to today.
func (h *Handler) productPrice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	asOf := store.Date(r.URL.Query().Get("date"))
	if asOf == "" {
		asOf = store.Today()
	} else if !asOf.Valid() {
		writeError(w, r, "date must be YYYY-MM-DD", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]any{
		"product_id": id,
		"as_of":      asOf,
		"unit_price": h.svc.LatestPrice(id, asOf),
	})
}
