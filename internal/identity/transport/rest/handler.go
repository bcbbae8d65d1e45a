// Package rest provides HTTP handlers for authentication.
package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/kutuku/marketplace/internal/identity"
	"github.com/kutuku/marketplace/pkg/auth"
	"github.com/kutuku/marketplace/pkg/web"
)

// RefreshRequest carries a refresh token for renewal or logout.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// PasswordResetRequest asks for a reset email.
type PasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type Handler struct {
	service  *identity.Service
	verifier auth.Verifier
	broker   *identity.Broker
	validate *validator.Validate
	logger   *slog.Logger
}

// NewHandler creates a new instance of the auth API.
func NewHandler(service *identity.Service, verifier auth.Verifier, broker *identity.Broker, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		verifier: verifier,
		broker:   broker,
		validate: validator.New(),
		logger:   logger.With("component", "auth_rest"),
	}
}

// RegisterRoutes registers the public auth routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/refresh", h.Refresh)
		r.Post("/logout", h.Logout)
		r.Post("/password-reset", h.PasswordReset)
	})
}

// Register creates a new shopper account.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var dto identity.CreateUserDto
	if !h.decodeAndValidate(w, r, mLogger, &dto) {
		return
	}
	userID, err := h.service.Register(r.Context(), dto)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrUserAlreadyExists):
			mLogger.WarnContext(r.Context(), "User already exists", "user_name", dto.UserName)
			web.RespondError(w, mLogger, http.StatusConflict, "User already exists")
		case errors.Is(err, identity.ErrInvalidUserData):
			web.RespondError(w, mLogger, http.StatusBadRequest, "Invalid user data")
		default:
			mLogger.ErrorContext(r.Context(), "Error registering user", "error", err)
			web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to register user")
		}
		return
	}
	mLogger.InfoContext(r.Context(), "User registered", "user_id", *userID)
	web.RespondJSON(w, mLogger, http.StatusCreated, map[string]string{"id": *userID})
}

// Login exchanges credentials for tokens and announces the sign-in, which
// triggers the guest cart migration for the device.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var dto identity.LoginDto
	if !h.decodeAndValidate(w, r, mLogger, &dto) {
		return
	}
	tokens, err := h.service.Login(r.Context(), dto)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			mLogger.WarnContext(r.Context(), "Invalid credentials", "user_name", dto.UserName)
			web.RespondError(w, mLogger, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		mLogger.ErrorContext(r.Context(), "Error logging in", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to login")
		return
	}

	h.announceSignIn(r, mLogger, tokens.AccessToken)
	web.RespondJSON(w, mLogger, http.StatusOK, tokens)
}

// Refresh renews the token pair.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var req RefreshRequest
	if !h.decodeAndValidate(w, r, mLogger, &req) {
		return
	}
	tokens, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			web.RespondError(w, mLogger, http.StatusUnauthorized, "Invalid refresh token")
			return
		}
		mLogger.ErrorContext(r.Context(), "Error refreshing token", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to refresh token")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, tokens)
}

// Logout invalidates the session and announces the sign-out.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var req RefreshRequest
	if !h.decodeAndValidate(w, r, mLogger, &req) {
		return
	}
	if err := h.service.Logout(r.Context(), req.RefreshToken); err != nil {
		mLogger.ErrorContext(r.Context(), "Error logging out", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to logout")
		return
	}
	if deviceID := web.ContextDeviceID(r.Context()); deviceID != "" {
		h.broker.SignedOut(r.Context(), deviceID)
	}
	w.WriteHeader(http.StatusNoContent)
}

// PasswordReset requests a reset email. The response is 202 whether or not
// the address exists.
func (h *Handler) PasswordReset(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	var req PasswordResetRequest
	if !h.decodeAndValidate(w, r, mLogger, &req) {
		return
	}
	err := h.service.RequestPasswordReset(r.Context(), req.Email)
	if err != nil && !errors.Is(err, identity.ErrUserNotFound) {
		mLogger.ErrorContext(r.Context(), "Error requesting password reset", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to request password reset")
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// announceSignIn extracts the subject from the freshly issued token and
// publishes the transition. Login still succeeds if the announcement cannot
// be made; the client can migrate the cart explicitly.
func (h *Handler) announceSignIn(r *http.Request, mLogger *slog.Logger, accessToken string) {
	deviceID := web.ContextDeviceID(r.Context())
	if deviceID == "" {
		return
	}
	token, err := h.verifier.Verify(r.Context(), accessToken)
	if err != nil {
		mLogger.WarnContext(r.Context(), "Could not verify issued token for sign-in announcement", "error", err)
		return
	}
	subject, ok := token.Subject()
	if !ok {
		return
	}
	userID, err := uuid.Parse(subject)
	if err != nil {
		mLogger.WarnContext(r.Context(), "Token subject is not a UUID", "subject", subject)
		return
	}
	h.broker.SignedIn(r.Context(), userID, deviceID)
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
