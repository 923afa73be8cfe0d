package sale

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/dukapos/dukapos-backend/internal/modules/cart"
	"github.com/dukapos/dukapos-backend/internal/modules/payment"
	"github.com/dukapos/dukapos-backend/internal/validation"
)

// Handler exposes sale finalization and receipt lookup.
type Handler struct {
	service  Service
	validate *validatorv10.Validate
}

func NewHandler(service Service, validate *validatorv10.Validate) *Handler {
	return &Handler{service: service, validate: validate}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/sales", func(r chi.Router) {
		r.Post("/finalize", h.finalize)
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Get("/receipt/{number}", h.getByReceipt)
	})
}

func (h *Handler) finalize(w http.ResponseWriter, r *http.Request) {
	var req FinalizeRequest
	if err := validation.Bind(w, r, &req, h.validate); err != nil {
		return
	}
	s, err := h.service.Finalize(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, s)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.GetSale(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	respond(w, http.StatusOK, s)
}

func (h *Handler) getByReceipt(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.GetByReceipt(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	respond(w, http.StatusOK, s)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	sales, err := h.service.ListSales(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	respond(w, http.StatusOK, sales)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrSaleNotFound),
		errors.Is(err, cart.ErrCartNotFound),
		errors.Is(err, payment.ErrPaymentNotFound):
		code = http.StatusNotFound
	case errors.Is(err, ErrEmptyCart), errors.Is(err, ErrPaymentCartMismatch):
		code = http.StatusBadRequest
	case errors.Is(err, ErrPaymentNotCompleted),
		errors.Is(err, ErrPaymentTotalMismatch),
		errors.Is(err, ErrStockConflict):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, ErrReceiptCollision):
		code = http.StatusConflict
	}
	respond(w, code, map[string]string{"error": err.Error()})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
