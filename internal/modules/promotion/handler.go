package promotion

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/dukapos/dukapos-backend/internal/validation"
)

// Handler exposes promo catalog administration. Applying a promotion to
// a cart is a cart route; this is the catalog side only.
type Handler struct {
	engine   Engine
	validate *validatorv10.Validate
}

func NewHandler(engine Engine, validate *validatorv10.Validate) *Handler {
	return &Handler{engine: engine, validate: validate}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/promotions", func(r chi.Router) {
		r.Post("/", h.createPromotion)
		r.Get("/", h.listPromotions)
	})
}

func (h *Handler) createPromotion(w http.ResponseWriter, r *http.Request) {
	var req CreatePromotionRequest
	if err := validation.Bind(w, r, &req, h.validate); err != nil {
		return
	}
	p, err := h.engine.CreatePromotion(r.Context(), req)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusCreated, p)
}

func (h *Handler) listPromotions(w http.ResponseWriter, r *http.Request) {
	promotions, err := h.engine.ListPromotions(r.Context())
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, promotions)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
