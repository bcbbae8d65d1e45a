// Package identity integrates the Keycloak identity provider: registration,
// password login, token refresh and sign-out.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Nerzal/gocloak/v13"
	"github.com/kutuku/marketplace/pkg/config"
)

// IdPClient is the slice of the gocloak API this service depends on.
// *gocloak.GoCloak satisfies it.
type IdPClient interface {
	LoginClient(ctx context.Context, clientID, clientSecret, realm string, scopes ...string) (*gocloak.JWT, error)
	CreateUser(ctx context.Context, accessToken, realm string, user gocloak.User) (string, error)
	SetPassword(ctx context.Context, accessToken, userID, realm, password string, temporary bool) error
	DeleteUser(ctx context.Context, accessToken, realm, userID string) error
	Login(ctx context.Context, clientID, clientSecret, realm, username, password string) (*gocloak.JWT, error)
	RefreshToken(ctx context.Context, refreshToken, clientID, clientSecret, realm string) (*gocloak.JWT, error)
	Logout(ctx context.Context, clientID, clientSecret, realm, refreshToken string) error
	GetUsers(ctx context.Context, accessToken, realm string, params gocloak.GetUsersParams) ([]*gocloak.User, error)
	ExecuteActionsEmail(ctx context.Context, accessToken, realm string, params gocloak.ExecuteActionsEmail) error
}

type Service struct {
	gocloak  IdPClient
	realm    string
	clientID string
	secret   string
	logger   *slog.Logger
}

// CreateUserDto represents the payload for registering a new shopper.
type CreateUserDto struct {
	UserName  string `json:"user_name"   validate:"required"`
	FirstName string `json:"first_name"  validate:"required"`
	LastName  string `json:"last_name"   validate:"required"`
	Email     string `json:"email"       validate:"email"`
	Password  string `json:"password"    validate:"required"`
}

// LoginDto represents a password login request.
type LoginDto struct {
	UserName string `json:"user_name" validate:"required"`
	Password string `json:"password"  validate:"required"`
}

// TokenDto carries tokens issued by the identity provider.
type TokenDto struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// NewService creates an identity service bound to one realm and client.
func NewService(client IdPClient, cfg config.IdPConfig, logger *slog.Logger) *Service {
	return &Service{
		gocloak:  client,
		realm:    cfg.Realm,
		clientID: cfg.ClientID,
		secret:   cfg.ClientSecret,
		logger:   logger.With("component", "identity_service"),
	}
}

// Register creates a user in the identity provider and sets the password.
// The user is deleted again if the password cannot be set.
func (u *Service) Register(ctx context.Context, userDto CreateUserDto) (*string, error) {
	user := gocloak.User{
		Username:  gocloak.StringP(userDto.UserName),
		Email:     gocloak.StringP(userDto.Email),
		Enabled:   gocloak.BoolP(true),
		FirstName: gocloak.StringP(userDto.FirstName),
		LastName:  gocloak.StringP(userDto.LastName),
	}

	token, err := u.gocloak.LoginClient(ctx, u.clientID, u.secret, u.realm)
	if err != nil {
		u.logger.ErrorContext(ctx, "Failed to login to IdP", "error", err)
		return nil, fmt.Errorf("%w: failed to login to Keycloak: %v", ErrIdPInteractionFailed, err)
	}

	userID, err := u.gocloak.CreateUser(ctx, token.AccessToken, u.realm, user)
	if err != nil {
		u.logger.ErrorContext(ctx, "Failed to create user", "error", err)
		var apiErr *gocloak.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.Code {
			case http.StatusConflict:
				return nil, ErrUserAlreadyExists
			case http.StatusBadRequest:
				return nil, ErrInvalidUserData
			}
		}
		return nil, ErrIdPInteractionFailed
	}

	err = u.gocloak.SetPassword(ctx, token.AccessToken, userID, u.realm, userDto.Password, false)
	if err != nil {
		u.logger.ErrorContext(ctx, "Failed to set password", "error", err)
		errSetPassword := fmt.Errorf("%w: failed to set password: %v", ErrIdPInteractionFailed, err)
		_ = u.gocloak.DeleteUser(ctx, token.AccessToken, u.realm, userID)
		return nil, errSetPassword
	}

	return &userID, nil
}

// Login exchanges a username/password pair for tokens.
func (u *Service) Login(ctx context.Context, dto LoginDto) (*TokenDto, error) {
	jwt, err := u.gocloak.Login(ctx, u.clientID, u.secret, u.realm, dto.UserName, dto.Password)
	if err != nil {
		var apiErr *gocloak.APIError
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusUnauthorized {
			return nil, ErrInvalidCredentials
		}
		u.logger.ErrorContext(ctx, "Failed to login user", "error", err)
		return nil, ErrIdPInteractionFailed
	}
	return &TokenDto{AccessToken: jwt.AccessToken, RefreshToken: jwt.RefreshToken, ExpiresIn: jwt.ExpiresIn}, nil
}

// Refresh exchanges a refresh token for a fresh token pair.
func (u *Service) Refresh(ctx context.Context, refreshToken string) (*TokenDto, error) {
	jwt, err := u.gocloak.RefreshToken(ctx, refreshToken, u.clientID, u.secret, u.realm)
	if err != nil {
		var apiErr *gocloak.APIError
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusBadRequest {
			return nil, ErrInvalidCredentials
		}
		u.logger.ErrorContext(ctx, "Failed to refresh token", "error", err)
		return nil, ErrIdPInteractionFailed
	}
	return &TokenDto{AccessToken: jwt.AccessToken, RefreshToken: jwt.RefreshToken, ExpiresIn: jwt.ExpiresIn}, nil
}

// Logout invalidates the session behind the refresh token.
func (u *Service) Logout(ctx context.Context, refreshToken string) error {
	if err := u.gocloak.Logout(ctx, u.clientID, u.secret, u.realm, refreshToken); err != nil {
		u.logger.ErrorContext(ctx, "Failed to logout user", "error", err)
		return ErrIdPInteractionFailed
	}
	return nil
}

// RequestPasswordReset asks the identity provider to send a reset email. An
// unknown email reports ErrUserNotFound; the HTTP layer masks it so the
// endpoint does not leak which addresses exist.
func (u *Service) RequestPasswordReset(ctx context.Context, email string) error {
	token, err := u.gocloak.LoginClient(ctx, u.clientID, u.secret, u.realm)
	if err != nil {
		u.logger.ErrorContext(ctx, "Failed to login to IdP", "error", err)
		return ErrIdPInteractionFailed
	}

	users, err := u.gocloak.GetUsers(ctx, token.AccessToken, u.realm, gocloak.GetUsersParams{
		Email: gocloak.StringP(email),
	})
	if err != nil {
		u.logger.ErrorContext(ctx, "Failed to look up user by email", "error", err)
		return ErrIdPInteractionFailed
	}
	if len(users) == 0 || users[0].ID == nil {
		return ErrUserNotFound
	}

	actions := []string{"UPDATE_PASSWORD"}
	params := gocloak.ExecuteActionsEmail{
		UserID:   users[0].ID,
		ClientID: gocloak.StringP(u.clientID),
		Actions:  &actions,
	}
	if err := u.gocloak.ExecuteActionsEmail(ctx, token.AccessToken, u.realm, params); err != nil {
		u.logger.ErrorContext(ctx, "Failed to send password reset email", "error", err)
		return ErrIdPInteractionFailed
	}
	return nil
}
