package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/blackjack-go/internal/api/handler"
	"github.com/mcoot/blackjack-go/internal/api/middleware"
	"github.com/mcoot/blackjack-go/internal/services/auth"
	"github.com/mcoot/blackjack-go/internal/services/table"
	"github.com/mcoot/blackjack-go/internal/sse"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	AuthService auth.ServiceInterface
	Tables      table.ControllerInterface
	Bots        handler.BotRunner // optional
	HubManager  *sse.HubManager
	// Storage is pinged by the health check when it supports it
	Storage any
	// SigningSecret enables X-Signature on JSON responses
	SigningSecret string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.AuthService)
	tableHandler := handler.NewTableHandler(cfg.Tables, cfg.Bots, cfg.Logger)
	eventsHandler := handler.NewEventsHandler(cfg.Tables, cfg.HubManager, cfg.Logger)
	healthHandler := handler.NewHealthHandler(cfg.Storage)

	// Create middleware
	authMiddleware := middleware.Auth(cfg.AuthService)
	signingMiddleware := middleware.Signing(cfg.SigningSecret)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))

	// Event streams are registered before the signed routes and never buffered
	streams := api.PathPrefix("/tables/{id}/events").Subrouter()
	streams.Use(authMiddleware)
	streams.HandleFunc("", eventsHandler.Stream).Methods(http.MethodGet)

	signed := api.NewRoute().Subrouter()
	signed.Use(signingMiddleware)

	// Player routes (no auth required for creating players/logging in)
	signed.HandleFunc("/players/guest", playerHandler.CreateGuest).Methods(http.MethodPost)
	signed.HandleFunc("/players/register", playerHandler.Register).Methods(http.MethodPost)
	signed.HandleFunc("/players/login", playerHandler.Login).Methods(http.MethodPost)

	// Protected player routes
	players := signed.PathPrefix("/players").Subrouter()
	players.Use(authMiddleware)
	players.HandleFunc("/me", playerHandler.GetMe).Methods(http.MethodGet)
	players.HandleFunc("/logout", playerHandler.Logout).Methods(http.MethodPost)

	// Table routes (all require auth)
	tables := signed.PathPrefix("/tables").Subrouter()
	tables.Use(authMiddleware)
	tables.HandleFunc("", tableHandler.Create).Methods(http.MethodPost)
	tables.HandleFunc("/join", tableHandler.Join).Methods(http.MethodPost)
	tables.HandleFunc("/{id}", tableHandler.Get).Methods(http.MethodGet)
	tables.HandleFunc("/{id}/actions", tableHandler.Act).Methods(http.MethodPost)

	// Health check endpoint (no auth)
	signed.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)
	r.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)

	return r
}
