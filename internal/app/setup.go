// Package app contains the application setup for the marketplace server.
package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Nerzal/gocloak/v13"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/kutuku/marketplace/internal/admin"
	adminrest "github.com/kutuku/marketplace/internal/admin/transport/rest"
	"github.com/kutuku/marketplace/internal/cart"
	cartrest "github.com/kutuku/marketplace/internal/cart/transport/rest"
	"github.com/kutuku/marketplace/internal/catalog"
	catalogrest "github.com/kutuku/marketplace/internal/catalog/transport/rest"
	"github.com/kutuku/marketplace/internal/config"
	"github.com/kutuku/marketplace/internal/identity"
	identityrest "github.com/kutuku/marketplace/internal/identity/transport/rest"
	"github.com/kutuku/marketplace/internal/notification"
	"github.com/kutuku/marketplace/internal/order"
	orderrest "github.com/kutuku/marketplace/internal/order/transport/rest"
	"github.com/kutuku/marketplace/internal/partner"
	partnerrest "github.com/kutuku/marketplace/internal/partner/transport/rest"
	"github.com/kutuku/marketplace/internal/profile"
	profilerest "github.com/kutuku/marketplace/internal/profile/transport/rest"
	"github.com/kutuku/marketplace/internal/shop"
	shoprest "github.com/kutuku/marketplace/internal/shop/transport/rest"
	"github.com/kutuku/marketplace/pkg/auth"
	natsclient "github.com/kutuku/marketplace/pkg/nats"
	"github.com/kutuku/marketplace/pkg/server"
)

type Dependencies struct {
	CatalogService  catalog.Service
	ShopService     shop.Service
	CartService     *cart.Service
	OrderService    order.OrderService
	ProfileService  profile.Service
	PartnerService  partner.Service
	IdentityService *identity.Service
	Broker          *identity.Broker
	Verifier        auth.Verifier
	Sessions        *admin.SessionManager
	Notifications   notification.Store
	Logger          *slog.Logger
}

// SetupDependencies wires the services together. The auth broker is
// subscribed so a sign-in migrates the device's guest cart and a sign-out
// releases the session.
func SetupDependencies(dbPool *pgxpool.Pool, guestStore cart.Store, js jetstream.JetStream, verifier auth.Verifier, cfg *config.Config, logger *slog.Logger) *Dependencies {
	catalogService := catalog.NewService(catalog.NewPgStore(dbPool))
	shopService := shop.NewService(shop.NewPgStore(dbPool))
	cartService := cart.NewService(cart.NewPgStore(dbPool), guestStore, logger)
	orderService := order.NewService(order.NewPgStore(dbPool), cartService, natsclient.NewNatsPublisher(js), logger)
	profileService := profile.NewService(profile.NewPgStore(dbPool))
	partnerService := partner.NewService(partner.NewPgStore(dbPool))

	idpClient := gocloak.NewClient(cfg.IdP.BaseURL)
	identityService := identity.NewService(idpClient, cfg.IdP, logger)

	broker := identity.NewBroker()
	broker.Subscribe(func(ctx context.Context, event identity.AuthEvent) {
		switch event.State {
		case identity.SignedIn:
			state, err := cartService.Migrate(ctx, event.UserID, event.DeviceID)
			if err != nil {
				logger.WarnContext(ctx, "Guest cart migration on sign-in failed",
					"user_id", event.UserID, "device_id", event.DeviceID, "state", state.String(), "error", err)
			}
		case identity.SignedOut:
			cartService.SignOut(event.UserID, event.DeviceID)
		}
	})

	return &Dependencies{
		CatalogService:  catalogService,
		ShopService:     shopService,
		CartService:     cartService,
		OrderService:    orderService,
		ProfileService:  profileService,
		PartnerService:  partnerService,
		IdentityService: identityService,
		Broker:          broker,
		Verifier:        verifier,
		Sessions:        admin.NewSessionManager(cfg.Session),
		Notifications:   notification.NewPgStore(dbPool),
		Logger:          logger,
	}
}

// SetupHttpHandler initializes the HTTP routes for the marketplace server.
// Used by E2E tests to set up the HTTP server with the necessary routes and middleware.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the marketplace server.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	catalogHandler := catalogrest.NewHandler(deps.CatalogService, deps.Logger)
	shopHandler := shoprest.NewHandler(deps.ShopService, deps.Logger)
	cartHandler := cartrest.NewHandler(deps.CartService, deps.CatalogService, deps.Logger)
	orderHandler := orderrest.NewHandler(deps.OrderService, deps.Logger)
	profileHandler := profilerest.NewHandler(deps.ProfileService, deps.Logger)
	partnerHandler := partnerrest.NewHandler(deps.PartnerService, deps.Logger)
	authHandler := identityrest.NewHandler(deps.IdentityService, deps.Verifier, deps.Broker, deps.Logger)
	adminHandler := adminrest.NewHandler(deps.ShopService, deps.Sessions, deps.CatalogService, deps.OrderService, deps.Logger)

	// Public surface: browsing, auth, guest carts, seller applications.
	catalogHandler.RegisterRoutes(mux)
	shopHandler.RegisterRoutes(mux)
	authHandler.RegisterRoutes(mux)
	partnerHandler.RegisterPublicRoutes(mux)
	cartHandler.RegisterGuestRoutes(mux)

	// Signed-in surface.
	mux.Group(func(r chi.Router) {
		r.Use(auth.Middleware(deps.Verifier))
		cartHandler.RegisterUserRoutes(r)
		orderHandler.RegisterRoutes(r)
		profileHandler.RegisterRoutes(r)
	})

	// Shop dashboard; login is public, the rest is guarded by the session
	// middleware inside the handler.
	adminHandler.RegisterRoutes(mux)
	mux.Group(func(r chi.Router) {
		r.Use(admin.Middleware(deps.Sessions))
		partnerHandler.RegisterAdminRoutes(r)
	})

	mux.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// SetupHttpServer creates and configures an HTTP server for the marketplace.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}
	return server.NewHTTPServer(httpCfg, mux)
}
