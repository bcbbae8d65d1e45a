// Package rest provides HTTP handlers for the shop directory.
package rest

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/kutuku/marketplace/internal/shop"
	"github.com/kutuku/marketplace/pkg/web"
)

type Handler struct {
	service shop.Service
	logger  *slog.Logger
}

// NewHandler creates a new instance of the shop API with the provided service.
func NewHandler(service shop.Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.With("component", "shop_rest"),
	}
}

// RegisterRoutes registers the public shop routes. A shop is addressable by
// UUID or by slug on the same path segment.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/shops", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{idOrSlug}", h.Get)
	})
}

// List retrieves all shops with product counts.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	list, err := h.service.List(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving shop list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch shops")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// Get resolves a shop by UUID when the path segment parses as one, and by
// slug otherwise.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	idOrSlug := r.PathValue("idOrSlug")

	var found *shop.ShopResponse
	var err error
	if id, parseErr := uuid.Parse(idOrSlug); parseErr == nil {
		found, err = h.service.GetByID(r.Context(), id)
	} else {
		found, err = h.service.GetBySlug(r.Context(), idOrSlug)
	}
	if err != nil {
		if errors.Is(err, shop.ErrShopNotFound) {
			mLogger.WarnContext(r.Context(), "Shop not found", "shop", idOrSlug)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Shop %s not found", idOrSlug))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving shop", "shop", idOrSlug, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve shop %s", idOrSlug))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
