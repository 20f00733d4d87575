package web

import (
	"net/http"

	"oilhub/internal/app"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) saveHub(w http.ResponseWriter, r *http.Request) {
	var req app.SaveHubRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	hub, err := h.svc.SaveHub(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, hub)
}

func (h *Handler) deleteHub(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteHub(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) saveCustomer(w http.ResponseWriter, r *http.Request) {
	var req app.SaveCustomerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c, err := h.svc.SaveCustomer(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, c)
}

func (h *Handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCustomer(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) saveProduct(w http.ResponseWriter, r *http.Request) {
	var req app.SaveProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := h.svc.SaveProduct(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, p)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setPrice(w http.ResponseWriter, r *http.Request) {
	var req app.SetPriceRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ProductID = chi.URLParam(r, "id")
	e, err := h.svc.SetPrice(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, e)
}

func (h *Handler) deletePrice(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeletePrice(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setAdmins(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Usernames []string `json:"usernames"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.svc.SetAdminUsernames(r.Context(), req.Usernames); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
