// Package rest provides HTTP handlers for catalog browsing.
package rest

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/kutuku/marketplace/internal/catalog"
	"github.com/kutuku/marketplace/pkg/web"
)

type Handler struct {
	service catalog.Service
	logger  *slog.Logger
}

// NewHandler creates a new instance of the catalog API with the provided service.
func NewHandler(service catalog.Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.With("component", "catalog_rest"),
	}
}

// RegisterRoutes registers the public catalog routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Get("/deal-of-the-day", h.DealOfTheDay)
		r.Get("/{id}", h.GetProduct)
	})
	r.Get("/api/v1/categories", h.ListCategories)
}

// GetProduct retrieves a product by its ID.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)
	found, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error retrieving product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve product with ID %s", id))
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// ListProducts retrieves products, optionally filtered by shop and category.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	limit, ok := web.ParseOptionalGte(r, w, mLogger, "limit", 1, 20)
	if !ok {
		return
	}
	offset, ok := web.ParseOptionalGte(r, w, mLogger, "offset", 0, 0)
	if !ok {
		return
	}
	filter := catalog.ListFilter{Offset: offset, Limit: limit}
	if shopID := r.URL.Query().Get("shop_id"); shopID != "" {
		id, err := uuid.Parse(shopID)
		if err != nil {
			web.RespondError(w, mLogger, http.StatusBadRequest, fmt.Sprintf("Invalid shop_id: %s", shopID))
			return
		}
		filter.ShopID = id
	}
	if categoryID := r.URL.Query().Get("category_id"); categoryID != "" {
		id, err := uuid.Parse(categoryID)
		if err != nil {
			web.RespondError(w, mLogger, http.StatusBadRequest, fmt.Sprintf("Invalid category_id: %s", categoryID))
			return
		}
		filter.CategoryID = id
	}
	mLogger.DebugContext(r.Context(), "Received request to list products", "limit", limit, "offset", offset)
	list, err := h.service.ListProducts(r.Context(), filter)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// ListCategories retrieves all categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	list, err := h.service.ListCategories(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving categories", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch categories")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// DealOfTheDay returns the best current discount, or 204 when nothing is on sale.
func (h *Handler) DealOfTheDay(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	deal, err := h.service.DealOfTheDay(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error computing deal of the day", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch deal of the day")
		return
	}
	if deal == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, deal)
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
