package payment

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/dukapos/dukapos-backend/internal/modules/giftcard"
	"github.com/dukapos/dukapos-backend/internal/validation"
)

// Handler exposes payment HTTP endpoints, including the provider
// confirmation webhook.
type Handler struct {
	service  Service
	validate *validatorv10.Validate
}

func NewHandler(service Service, validate *validatorv10.Validate) *Handler {
	return &Handler{service: service, validate: validate}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/payments", func(r chi.Router) {
		r.Post("/", h.begin)
		r.Post("/confirm", h.confirm)
		r.Get("/{id}", h.get)
		r.Post("/{id}/cash", h.cash)
		r.Post("/{id}/authorize", h.authorize)
		r.Post("/{id}/tenders", h.addTender)
		r.Post("/{id}/cancel", h.cancel)
	})
}

func (h *Handler) begin(w http.ResponseWriter, r *http.Request) {
	var req BeginRequest
	if err := validation.Bind(w, r, &req, h.validate); err != nil {
		return
	}
	p, err := h.service.Begin(r.Context(), req)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusCreated, p)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Get(chi.URLParam(r, "id"))
	if err != nil {
		respond(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, p)
}

func (h *Handler) cash(w http.ResponseWriter, r *http.Request) {
	var req CashRequest
	if err := validation.Bind(w, r, &req, h.validate); err != nil {
		return
	}
	amount, err := decimal.NewFromString(req.AmountTendered)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "invalid amount_tendered"})
		return
	}
	p, err := h.service.ProcessCash(r.Context(), chi.URLParam(r, "id"), amount)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respond(w, http.StatusOK, p)
}

func (h *Handler) authorize(w http.ResponseWriter, r *http.Request) {
	var req AuthorizeRequest
	if err := validation.Bind(w, r, &req, h.validate); err != nil {
		return
	}
	p, err := h.service.Authorize(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respond(w, http.StatusAccepted, p)
}

func (h *Handler) addTender(w http.ResponseWriter, r *http.Request) {
	var req TenderRequest
	if err := validation.Bind(w, r, &req, h.validate); err != nil {
		return
	}
	p, err := h.service.AddTender(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respond(w, http.StatusOK, p)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	respond(w, http.StatusOK, p)
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request) {
	var req ConfirmationRequest
	if err := validation.Bind(w, r, &req, h.validate); err != nil {
		return
	}
	p, err := h.service.HandleConfirmation(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respond(w, http.StatusOK, p)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrPaymentNotFound), errors.Is(err, giftcard.ErrCardNotFound):
		code = http.StatusNotFound
	case errors.Is(err, ErrInvalidTenderAmount), errors.Is(err, ErrInvalidMethod):
		code = http.StatusBadRequest
	case errors.Is(err, ErrInsufficientCash),
		errors.Is(err, ErrOvertender),
		errors.Is(err, ErrNotPending),
		errors.Is(err, ErrSplitInProgress),
		errors.Is(err, ErrAlreadyCompleted),
		errors.Is(err, giftcard.ErrCardInactive),
		errors.Is(err, giftcard.ErrCardExpired),
		errors.Is(err, giftcard.ErrInsufficientBalance):
		code = http.StatusUnprocessableEntity
	}
	respond(w, code, map[string]string{"error": err.Error()})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
