// Package rest provides HTTP handlers for order-related operations.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/kutuku/marketplace/internal/order"
	"github.com/kutuku/marketplace/pkg/web"
)

// CheckoutRequest is the order placement payload.
type CheckoutRequest struct {
	ShippingAddress order.ShippingAddressDto `json:"shipping_address"`
}

type Handler struct {
	service order.OrderService
	logger  *slog.Logger
}

// NewHandler creates a new instance of the order API with the provided service.
func NewHandler(service order.OrderService, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.With("component", "order_rest"),
	}
}

// RegisterRoutes registers the order routes. All of them require a signed-in
// user; the auth middleware is applied by the caller.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Post("/", h.Checkout)
		r.Get("/", h.FindOrdersByUserID)
		r.Get("/{id}", h.FindByID)
	})
}

// Checkout places an order from the user's cart.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to place order", "user_id", userID)
	created, err := h.service.CreateFromCart(r.Context(), userID, req.ShippingAddress)
	if err != nil {
		var validationErrors validator.ValidationErrors
		switch {
		case errors.As(err, &validationErrors):
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, mLogger, http.StatusBadRequest, web.ValidationErrorBody(errorResponse))
		case errors.Is(err, order.ErrEmptyCart):
			mLogger.WarnContext(r.Context(), "Checkout with empty cart", "user_id", userID)
			web.RespondError(w, mLogger, http.StatusConflict, "Cart is empty")
		default:
			mLogger.ErrorContext(r.Context(), "Error placing order", "user_id", userID, "error", err)
			web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to place order")
		}
		return
	}
	mLogger.InfoContext(r.Context(), "Order placed successfully", "ID", created.ID, "Number", created.Number)
	web.RespondJSON(w, mLogger, http.StatusCreated, created)
}

// FindByID retrieves an order by its ID.
func (h *Handler) FindByID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to find order by ID", "ID", id)
	found, err := h.service.FindByID(r.Context(), userID, id)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrOrderNotFound):
			mLogger.WarnContext(r.Context(), "Order not found", "ID", id)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Order with ID %s not found", id))
		case errors.Is(err, order.ErrAccessDenied):
			mLogger.WarnContext(r.Context(), "Access to order denied", "ID", id, "user_id", userID)
			web.RespondError(w, mLogger, http.StatusForbidden, "Access denied")
		default:
			mLogger.ErrorContext(r.Context(), "Error retrieving order", "ID", id, "error", err)
			web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to retrieve order with ID %s", id))
		}
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// FindOrdersByUserID retrieves the authenticated user's order history.
func (h *Handler) FindOrdersByUserID(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}
	limit, ok := web.ParseOptionalGte(r, w, mLogger, "limit", 1, 20)
	if !ok {
		return
	}
	offset, ok := web.ParseOptionalGte(r, w, mLogger, "offset", 0, 0)
	if !ok {
		return
	}
	mLogger.DebugContext(r.Context(), "Received request to list orders", "user_id", userID, "limit", limit, "offset", offset)
	list, err := h.service.FindOrdersByUserID(r.Context(), userID, offset, limit)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving order list", "user_id", userID, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
