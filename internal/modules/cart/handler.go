package cart

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/dukapos/dukapos-backend/internal/modules/promotion"
	"github.com/dukapos/dukapos-backend/internal/validation"
)

// Handler exposes cart HTTP endpoints.
type Handler struct {
	service  Service
	validate *validatorv10.Validate
}

func NewHandler(service Service, validate *validatorv10.Validate) *Handler {
	return &Handler{service: service, validate: validate}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/carts", func(r chi.Router) {
		r.Post("/", h.createCart)
		r.Get("/{id}", h.getCart)
		r.Delete("/{id}", h.clearCart)
		r.Post("/{id}/items", h.addItem)
		r.Put("/{id}/items/{line_id}", h.setQuantity)
		r.Post("/{id}/customer", h.attachCustomer)
		r.Post("/{id}/promotions", h.applyPromotion)
		r.Delete("/{id}/promotions/{promotion_id}", h.removePromotion)
	})
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type attachCustomerRequest struct {
	CustomerID string `json:"customer_id" validate:"required,uuid"`
}

type applyPromotionRequest struct {
	Code string `json:"code" validate:"required"`
}

func (h *Handler) createCart(w http.ResponseWriter, r *http.Request) {
	c := h.service.CreateCart(r.Context())
	h.respondCart(w, http.StatusCreated, c)
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.GetCart(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondCart(w, http.StatusOK, c)
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearCart(chi.URLParam(r, "id")); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := validation.Bind(w, r, &req, h.validate); err != nil {
		return
	}
	c, err := h.service.AddItem(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondCart(w, http.StatusOK, c)
}

func (h *Handler) setQuantity(w http.ResponseWriter, r *http.Request) {
	var req setQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	c, err := h.service.SetQuantity(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "line_id"), req.Quantity)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondCart(w, http.StatusOK, c)
}

func (h *Handler) attachCustomer(w http.ResponseWriter, r *http.Request) {
	var req attachCustomerRequest
	if err := validation.Bind(w, r, &req, h.validate); err != nil {
		return
	}
	c, err := h.service.AttachCustomer(r.Context(), chi.URLParam(r, "id"), req.CustomerID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondCart(w, http.StatusOK, c)
}

func (h *Handler) applyPromotion(w http.ResponseWriter, r *http.Request) {
	var req applyPromotionRequest
	if err := validation.Bind(w, r, &req, h.validate); err != nil {
		return
	}
	c, err := h.service.ApplyPromotion(r.Context(), chi.URLParam(r, "id"), req.Code)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondCart(w, http.StatusOK, c)
}

func (h *Handler) removePromotion(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.RemovePromotion(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "promotion_id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondCart(w, http.StatusOK, c)
}

func (h *Handler) respondCart(w http.ResponseWriter, status int, c *Cart) {
	respond(w, status, map[string]interface{}{
		"cart":   c,
		"totals": h.service.Totals(c),
	})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrCartNotFound), errors.Is(err, ErrLineNotFound), errors.Is(err, promotion.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, ErrInvalidQuantity):
		code = http.StatusBadRequest
	case errors.Is(err, promotion.ErrAlreadyApplied),
		errors.Is(err, promotion.ErrMinAmountNotMet),
		errors.Is(err, promotion.ErrExpired),
		errors.Is(err, ErrPromotionNotApplied):
		code = http.StatusUnprocessableEntity
	}
	respond(w, code, map[string]string{"error": err.Error()})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
