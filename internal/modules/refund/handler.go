package refund

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/dukapos/dukapos-backend/internal/modules/sale"
	"github.com/dukapos/dukapos-backend/internal/validation"
)

// Handler exposes refund HTTP endpoints.
type Handler struct {
	service  Service
	validate *validatorv10.Validate
}

func NewHandler(service Service, validate *validatorv10.Validate) *Handler {
	return &Handler{service: service, validate: validate}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/refunds", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/lookup/{receipt_number}", h.lookup)
		r.Get("/{id}", h.get)
		r.Get("/sale/{sale_id}", h.getBySale)
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateRefundRequest
	if err := validation.Bind(w, r, &req, h.validate); err != nil {
		return
	}
	ref, err := h.service.CreateRefund(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, ref)
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.Lookup(r.Context(), chi.URLParam(r, "receipt_number"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	respond(w, http.StatusOK, s)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	ref, err := h.service.GetRefund(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	respond(w, http.StatusOK, ref)
}

func (h *Handler) getBySale(w http.ResponseWriter, r *http.Request) {
	ref, err := h.service.GetBySale(r.Context(), chi.URLParam(r, "sale_id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	respond(w, http.StatusOK, ref)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	refunds, err := h.service.ListRefunds(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respond(w, http.StatusOK, refunds)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrRefundNotFound), errors.Is(err, sale.ErrSaleNotFound):
		code = http.StatusNotFound
	case errors.Is(err, ErrMissingReason):
		code = http.StatusBadRequest
	case errors.Is(err, sale.ErrAlreadyRefunded):
		code = http.StatusConflict
	}
	respond(w, code, map[string]string{"error": err.Error()})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
