// Package rest provides HTTP handlers for seller applications.
package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/kutuku/marketplace/internal/partner"
	"github.com/kutuku/marketplace/pkg/web"
)

type Handler struct {
	service partner.Service
	logger  *slog.Logger
}

// NewHandler creates a new instance of the partner API with the provided service.
func NewHandler(service partner.Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.With("component", "partner_rest"),
	}
}

// RegisterPublicRoutes registers the application form endpoint.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Post("/api/v1/partner-requests", h.Submit)
}

// RegisterAdminRoutes registers the dashboard listing. The admin session
// middleware is applied by the caller.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/api/v1/admin/partner-requests", h.List)
}

// Submit accepts a seller application.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var dto partner.SubmitRequestDto
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	created, err := h.service.Submit(r.Context(), dto)
	if err != nil {
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
		mLogger.ErrorContext(r.Context(), "Error submitting partner request", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to submit request")
		return
	}
	mLogger.InfoContext(r.Context(), "Partner request submitted", "ID", created.ID, "shop_name", created.ShopName)
	web.RespondJSON(w, mLogger, http.StatusCreated, created)
}

// List returns applications for the dashboard, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	limit, ok := web.ParseOptionalGte(r, w, mLogger, "limit", 1, 50)
	if !ok {
		return
	}
	offset, ok := web.ParseOptionalGte(r, w, mLogger, "offset", 0, 0)
	if !ok {
		return
	}
	list, err := h.service.List(r.Context(), offset, limit)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving partner requests", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch requests")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
