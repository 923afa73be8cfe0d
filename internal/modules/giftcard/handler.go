package giftcard

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/dukapos/dukapos-backend/internal/validation"
)

// Handler exposes gift card HTTP endpoints.
type Handler struct {
	service  Service
	validate *validatorv10.Validate
}

func NewHandler(service Service, validate *validatorv10.Validate) *Handler {
	return &Handler{service: service, validate: validate}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/giftcards", func(r chi.Router) {
		r.Post("/", h.issueCard)
		r.Get("/{number}/validate", h.validateCard)
	})
}

func (h *Handler) issueCard(w http.ResponseWriter, r *http.Request) {
	var req IssueCardRequest
	if err := validation.Bind(w, r, &req, h.validate); err != nil {
		return
	}
	c, err := h.service.IssueCard(r.Context(), req)
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusCreated, c)
}

func (h *Handler) validateCard(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Validate(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		code := http.StatusUnprocessableEntity
		if errors.Is(err, ErrCardNotFound) {
			code = http.StatusNotFound
		}
		respond(w, code, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, c)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
