package web

import (
	"net/http"

	"oilhub/internal/app"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) saveConsignment(w http.ResponseWriter, r *http.Request) {
	var req app.SaveConsignmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.CreatedBy = createdBy(r)
	c, err := h.svc.SaveConsignment(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, c)
}

func (h *Handler) deleteConsignment(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteConsignment(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) saveSale(w http.ResponseWriter, r *http.Request) {
	var req app.SaveSaleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.CreatedBy = createdBy(r)
	sale, err := h.svc.SaveSale(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, sale)
}

func (h *Handler) deleteSale(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteSale(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) savePayment(w http.ResponseWriter, r *http.Request) {
	var req app.SavePaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.CreatedBy = createdBy(r)
	p, err := h.svc.SavePayment(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, p)
}

func (h *Handler) deletePayment(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeletePayment(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) saveReturn(w http.ResponseWriter, r *http.Request) {
	var req app.SaveReturnRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.CreatedBy = createdBy(r)
	ret, err := h.svc.SaveReturn(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, ret)
}

func (h *Handler) deleteReturn(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteReturn(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
