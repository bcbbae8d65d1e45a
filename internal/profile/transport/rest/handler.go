// Package rest provides HTTP handlers for profile and address management.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/kutuku/marketplace/internal/profile"
	"github.com/kutuku/marketplace/pkg/web"
)

type Handler struct {
	service profile.Service
	logger  *slog.Logger
}

// NewHandler creates a new instance of the profile API with the provided service.
func NewHandler(service profile.Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.With("component", "profile_rest"),
	}
}

// RegisterRoutes registers the profile routes. All of them require a
// signed-in user; the auth middleware is applied by the caller.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/profile", func(r chi.Router) {
		r.Get("/", h.GetProfile)
		r.Put("/", h.SaveProfile)

		r.Route("/addresses", func(r chi.Router) {
			r.Get("/", h.ListAddresses)
			r.Post("/", h.AddAddress)
			r.Put("/{id}", h.UpdateAddress)
			r.Delete("/{id}", h.DeleteAddress)
			r.Put("/{id}/default", h.SetDefaultAddress)
		})
	})
}

// GetProfile returns the user's profile.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}
	found, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving profile", "user_id", userID, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to retrieve profile")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, found)
}

// SaveProfile creates or replaces the user's profile.
func (h *Handler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}
	var dto profile.ProfileDto
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	saved, err := h.service.SaveProfile(r.Context(), userID, dto)
	if err != nil {
		mLogger.WarnContext(r.Context(), "Error saving profile", "user_id", userID, "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Failed to save profile")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, saved)
}

// ListAddresses returns the user's saved addresses, default first.
func (h *Handler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}
	list, err := h.service.ListAddresses(r.Context(), userID)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving addresses", "user_id", userID, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch addresses")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// AddAddress saves a new address.
func (h *Handler) AddAddress(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}
	var dto profile.CreateAddressDto
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	created, err := h.service.AddAddress(r.Context(), userID, dto)
	if err != nil {
		mLogger.WarnContext(r.Context(), "Error adding address", "user_id", userID, "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Failed to add address")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusCreated, created)
}

// UpdateAddress replaces a saved address's fields.
func (h *Handler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	var dto profile.CreateAddressDto
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		mLogger.ErrorContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid request body")
		return
	}
	updated, err := h.service.UpdateAddress(r.Context(), userID, id, dto)
	if err != nil {
		if errors.Is(err, profile.ErrAddressNotFound) {
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Address with ID %s not found", id))
			return
		}
		mLogger.WarnContext(r.Context(), "Error updating address", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusBadRequest, "Failed to update address")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// DeleteAddress removes a saved address.
func (h *Handler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	if err := h.service.DeleteAddress(r.Context(), userID, id); err != nil {
		if errors.Is(err, profile.ErrAddressNotFound) {
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Address with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error deleting address", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, fmt.Sprintf("Failed to delete address with ID %s", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetDefaultAddress makes the given address the user's only default.
func (h *Handler) SetDefaultAddress(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	userID, ok := web.GetUserID(w, r, mLogger)
	if !ok {
		return
	}
	id, ok := web.ParseID(w, r, mLogger)
	if !ok {
		return
	}
	if err := h.service.SetDefaultAddress(r.Context(), userID, id); err != nil {
		if errors.Is(err, profile.ErrAddressNotFound) {
			web.RespondError(w, mLogger, http.StatusNotFound, fmt.Sprintf("Address with ID %s not found", id))
			return
		}
		mLogger.ErrorContext(r.Context(), "Error setting default address", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to set default address")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID := middleware.GetReqID(r.Context())
	return h.logger.With("request_id", reqID)
}
