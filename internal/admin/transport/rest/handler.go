// Package rest provides HTTP handlers for the shop dashboard.
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
	"github.com/kutuku/marketplace/internal/admin"
	"github.com/kutuku/marketplace/internal/catalog"
	"github.com/kutuku/marketplace/internal/order"
	"github.com/kutuku/marketplace/internal/shop"
	"github.com/kutuku/marketplace/pkg/web"
)

// LoginRequest carries shop account credentials.
type LoginRequest struct {
	Login    string `json:"login"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued session token.
type LoginResponse struct {
	Token  string `json:"token"`
	ShopID string `json:"shop_id"`
}

// UpdateOrderStatusRequest changes an order's status.
type UpdateOrderStatusRequest struct {
	Status  string `json:"status"  validate:"required"`
	Version int32  `json:"version" validate:"required,min=1"`
}

type Handler struct {
	shops    shop.Service
	sessions *admin.SessionManager
	catalog  catalog.Service
	orders   order.OrderService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of the dashboard API.
func NewHandler(shops shop.Service, sessions *admin.SessionManager, catalogSvc catalog.Service, orders order.OrderService, logger *slog.Logger) *Handler {
	return &Handler{
		shops:    shops,
		sessions: sessions,
		catalog:  catalogSvc,
		orders:   orders,
		validate: validator.New(),
		logger:   logger.With("component", "admin_rest"),
	}
}

// RegisterRoutes registers the dashboard routes. Everything except login
// requires a valid session token.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(admin.Middleware(h.sessions))
			r.Get("/products", h.ListProducts)
			r.Post("/products", h.CreateProduct)
			r.Put("/products/{id}", h.UpdateProduct)
			r.Delete("/products/{id}", h.DeleteProduct)
			r.Put("/orders/{id}/status", h.UpdateOrderStatus)
		})
	})
}

// Login verifies shop credentials and issues a session token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var req LoginRequest
	if !h.decodeAndValidate(w, r, mLogger, &req) {
		return
	}
	shopID, err := h.shops.VerifyCredentials(r.Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, shop.ErrInvalidCredentials) {
			mLogger.WarnContext(r.Context(), "Dashboard login rejected", "login", req.Login)
			web.RespondError(w, mLogger, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		mLogger.ErrorContext(r.Context(), "Error verifying credentials", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to login")
		return
	}
	token, err := h.sessions.Issue(shopID)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error issuing session token", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to login")
		return
	}
	mLogger.InfoContext(r.Context(), "Dashboard login", "shop_id", shopID)
	web.RespondJSON(w, mLogger, http.StatusOK, LoginResponse{Token: token, ShopID: shopID.String()})
}

// ListProducts lists the authenticated shop's catalog.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	shopID := admin.ContextShopID(r.Context())
	limit, ok := web.ParseOptionalGte(r, w, mLogger, "limit", 1, 50)
	if !ok {
		return
	}
	offset, ok := web.ParseOptionalGte(r, w, mLogger, "offset", 0, 0)
	if !ok {
		return
	}
	list, err := h.catalog.ListProducts(r.Context(), catalog.ListFilter{ShopID: shopID, Offset: offset, Limit: limit})
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error listing shop products", "shop_id", shopID, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// CreateProduct adds a product to the authenticated shop's catalog.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	shopID := admin.ContextShopID(r.Context())
	var req catalog.CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	created, err := h.catalog.CreateProduct(r.Context(), shopID, req)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error creating product", "shop_id", shopID, "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Failed to create product")
		return
	}
	mLogger.InfoContext(r.Context(), "Product created", "ID", created.ID, "shop_id", shopID)
	web.RespondJSON(w, mLogger, http.StatusCreated, created)
}

// UpdateProduct modifies one of the authenticated shop's products.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	shopID := admin.ContextShopID(r.Context())
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	var req catalog.UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	updated, err := h.catalog.UpdateProduct(r.Context(), shopID, id, req)
	if err != nil {
		h.respondCatalogError(w, r, mLogger, id.String(), err)
		return
	}
	mLogger.InfoContext(r.Context(), "Product updated", "ID", updated.ID, "shop_id", shopID)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// DeleteProduct removes one of the authenticated shop's products.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	shopID := admin.ContextShopID(r.Context())
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	version, ok := web.ParseValidateGte(r, w, mLogger, "version", 1)
	if !ok {
		return
	}
	if err := h.catalog.DeleteProduct(r.Context(), shopID, id, version); err != nil {
		h.respondCatalogError(w, r, mLogger, id.String(), err)
		return
	}
	mLogger.InfoContext(r.Context(), "Product deleted", "ID", id, "shop_id", shopID)
	w.WriteHeader(http.StatusNoContent)
}

// UpdateOrderStatus changes the status of an order containing this shop's
// goods.
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	var req UpdateOrderStatusRequest
	if !h.decodeAndValidate(w, r, mLogger, &req) {
		return
	}
	updated, err := h.orders.UpdateStatus(r.Context(), id, req.Status, req.Version)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrOrderNotFound):
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Order with ID %s not found", id))
		case errors.Is(err, order.ErrOptimisticLock):
			web.RespondError(w, mLogger, http.StatusConflict, "Order was modified concurrently")
		default:
			mLogger.ErrorContext(r.Context(), "Error updating order status", "ID", id, "error", err)
			web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to update order status")
		}
		return
	}
	mLogger.InfoContext(r.Context(), "Order status updated", "ID", id, "status", req.Status)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

func (h *Handler) respondCatalogError(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, id string, err error) {
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		mLogger.WarnContext(r.Context(), "Product not found", "ID", id)
		web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Product with ID %s not found", id))
	case errors.Is(err, catalog.ErrAccessDenied):
		mLogger.WarnContext(r.Context(), "Product belongs to another shop", "ID", id)
		web.RespondError(w, mLogger, http.StatusForbidden, "Access denied")
	case errors.Is(err, catalog.ErrOptimisticLock):
		web.RespondError(w, mLogger, http.StatusConflict, "Product was modified concurrently")
	default:
		mLogger.ErrorContext(r.Context(), "Error handling product request", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to handle product request")
	}
}

func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			mLogger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, mLogger, http.StatusBadRequest, web.ValidationErrorBody(errorResponse))
			return false
		}
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
