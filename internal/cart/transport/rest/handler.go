// Package rest provides HTTP handlers for guest and user carts.
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
	"github.com/google/uuid"
	"github.com/kutuku/marketplace/internal/cart"
	"github.com/kutuku/marketplace/internal/catalog"
	"github.com/kutuku/marketplace/pkg/web"
)

// AddItemRequest represents the payload for adding a product to a cart.
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int32     `json:"quantity" validate:"required,min=1"`
	Color     string    `json:"color"`
	Size      string    `json:"size"`
}

// UpdateItemRequest represents the payload for changing a line's quantity.
// Zero or negative removes the line.
type UpdateItemRequest struct {
	Quantity int32 `json:"quantity"`
}

// CartResponse represents a cart returned to clients.
type CartResponse struct {
	Items      []ItemResponse `json:"items"`
	TotalPrice int64          `json:"total_price"`
	ItemCount  int32          `json:"item_count"`
}

// ItemResponse represents a single cart line.
type ItemResponse struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	ShopID    uuid.UUID `json:"shop_id"`
	Name      string    `json:"name"`
	ImageURL  string    `json:"image_url"`
	UnitPrice int64     `json:"unit_price"`
	Quantity  int32     `json:"quantity"`
	Color     string    `json:"color,omitempty"`
	Size      string    `json:"size,omitempty"`
}

// MigrationResponse reports the outcome of a guest cart migration.
type MigrationResponse struct {
	State string `json:"state"`
}

type Handler struct {
	carts    *cart.Service
	catalog  catalog.Service
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of the cart API.
func NewHandler(carts *cart.Service, catalogSvc catalog.Service, logger *slog.Logger) *Handler {
	return &Handler{
		carts:    carts,
		catalog:  catalogSvc,
		validate: validator.New(),
		logger:   logger.With("component", "cart_rest"),
	}
}

// RegisterGuestRoutes registers the guest cart routes, addressed by the
// X-Device-Id header.
func (h *Handler) RegisterGuestRoutes(r chi.Router) {
	r.Route("/api/v1/guest/cart", func(r chi.Router) {
		r.Get("/", h.guest(h.getCart))
		r.Delete("/", h.guest(h.clearCart))
		r.Post("/items", h.guest(h.addItem))
		r.Put("/items/{id}", h.guest(h.updateItem))
		r.Delete("/items/{id}", h.guest(h.removeItem))
	})
}

// RegisterUserRoutes registers the signed-in cart routes. The auth middleware
// is applied by the caller.
func (h *Handler) RegisterUserRoutes(r chi.Router) {
	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Get("/", h.user(h.getCart))
		r.Delete("/", h.user(h.clearCart))
		r.Post("/items", h.user(h.addItem))
		r.Put("/items/{id}", h.user(h.updateItem))
		r.Delete("/items/{id}", h.user(h.removeItem))
		r.Post("/migrate", h.Migrate)
	})
}

type cartHandlerFunc func(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, c *cart.Cart)

// guest resolves the device's cart before running fn.
func (h *Handler) guest(fn cartHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mLogger := h.loggerWithReqID(r)
		deviceID, ok := web.GetDeviceID(w, r, mLogger)
		if !ok {
			return
		}
		c, err := h.carts.GuestCart(r.Context(), deviceID)
		if err != nil {
			mLogger.ErrorContext(r.Context(), "Error loading guest cart", "device_id", deviceID, "error", err)
			web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to load cart")
			return
		}
		fn(w, r, mLogger, c)
	}
}

// user resolves the signed-in user's cart before running fn.
func (h *Handler) user(fn cartHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mLogger := h.loggerWithReqID(r)
		userID, ok := web.GetUserID(w, r, mLogger)
		if !ok {
			return
		}
		c, err := h.carts.UserCart(r.Context(), userID)
		if err != nil {
			mLogger.ErrorContext(r.Context(), "Error loading user cart", "user_id", userID, "error", err)
			web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to load cart")
			return
		}
		fn(w, r, mLogger, c)
	}
}

func (h *Handler) getCart(w http.ResponseWriter, _ *http.Request, mLogger *slog.Logger, c *cart.Cart) {
	web.RespondJSON(w, mLogger, http.StatusOK, toResponse(c))
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, c *cart.Cart) {
	if err := c.Clear(r.Context()); err != nil {
		mLogger.ErrorContext(r.Context(), "Error clearing cart", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to clear cart")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, c *cart.Cart) {
	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, mLogger, http.StatusBadRequest, web.ValidationErrorBody(errorResponse))
			return
		}
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			mLogger.WarnContext(r.Context(), "Product not found for cart add", "product_id", req.ProductID)
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", req.ProductID))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error resolving product for cart add", "product_id", req.ProductID, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to add item")
		return
	}

	snapshot := cart.ProductSnapshot{
		ID:        product.ID,
		ShopID:    product.ShopID,
		Name:      product.Name,
		Price:     product.Price,
		SalePrice: product.SalePrice,
	}
	if len(product.Images) > 0 {
		snapshot.ImageURL = product.Images[0]
	}
	if err := c.Add(r.Context(), snapshot, req.Quantity, req.Color, req.Size); err != nil {
		mLogger.ErrorContext(r.Context(), "Error adding item to cart", "product_id", req.ProductID, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to add item")
		return
	}
	mLogger.InfoContext(r.Context(), "Item added to cart", "product_id", req.ProductID, "quantity", req.Quantity)
	web.RespondJSON(w, mLogger, http.StatusOK, toResponse(c))
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, c *cart.Cart) {
	lineID, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := c.UpdateQuantity(r.Context(), lineID, req.Quantity); err != nil {
		mLogger.ErrorContext(r.Context(), "Error updating cart line", "line_id", lineID, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to update item")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, toResponse(c))
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, c *cart.Cart) {
	lineID, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	if err := c.Remove(r.Context(), lineID); err != nil {
		mLogger.ErrorContext(r.Context(), "Error removing cart line", "line_id", lineID, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to remove item")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, toResponse(c))
}

// Migrate merges the device's guest cart into the signed-in user's cart.
func (h *Handler) Migrate(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}
	deviceID, ok := web.GetDeviceID(w, r, mLogger)
	if !ok {
		return
	}
	state, err := h.carts.Migrate(r.Context(), userID, deviceID)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Guest cart migration failed",
			"user_id", userID, "device_id", deviceID, "state", state.String(), "error", err)
		web.RespondJSON(w, mLogger, http.StatusConflict, MigrationResponse{State: state.String()})
		return
	}
	mLogger.InfoContext(r.Context(), "Guest cart migration finished",
		"user_id", userID, "device_id", deviceID, "state", state.String())
	web.RespondJSON(w, mLogger, http.StatusOK, MigrationResponse{State: state.String()})
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}

func toResponse(c *cart.Cart) CartResponse {
	items := c.Items()
	out := make([]ItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, ItemResponse{
			ID:        it.ID,
			ProductID: it.Product.ID,
			ShopID:    it.Product.ShopID,
			Name:      it.Product.Name,
			ImageURL:  it.Product.ImageURL,
			UnitPrice: it.Product.UnitPrice(),
			Quantity:  it.Quantity,
			Color:     it.Color,
			Size:      it.Size,
		})
	}
	return CartResponse{Items: out, TotalPrice: c.Total(), ItemCount: c.Count()}
}
