package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/susu3304/cashflow/internal/config"
	"github.com/susu3304/cashflow/internal/ledger"
	"github.com/susu3304/cashflow/internal/settle"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

type API struct {
	router      *mux.Router
	ledger      *ledger.Service
	strategy    settle.Strategy
	config      *config.Config
	oauthConfig *oauth2.Config
	jwtSecret   []byte
	logger      *zap.Logger
}

func New(cfg *config.Config, svc *ledger.Service, strategy settle.Strategy, logger *zap.Logger) *API {
	api := &API{
		router:    mux.NewRouter(),
		ledger:    svc,
		strategy:  strategy,
		config:    cfg,
		jwtSecret: []byte(cfg.JWTSecret),
		logger:    logger,
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.DiscordClientID,
			ClientSecret: cfg.DiscordClientSecret,
			RedirectURL:  cfg.DiscordRedirectURI,
			Scopes:       []string{"identify"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://discord.com/api/oauth2/authorize",
				TokenURL: "https://discord.com/api/oauth2/token",
			},
		},
	}

	api.setupRoutes()
	return api
}

func (a *API) setupRoutes() {
	// Auth endpoints
	a.router.HandleFunc("/api/auth/login", a.handleLogin).Methods("GET")
	a.router.HandleFunc("/api/auth/callback", a.handleCallback).Methods("GET")
	a.router.HandleFunc("/api/auth/logout", a.handleLogout).Methods("POST")

	// Public endpoints
	a.router.HandleFunc("/api/strategies", a.handleListStrategies).Methods("GET")

	// Protected endpoints
	protected := a.router.PathPrefix("/api").Subrouter()
	protected.Use(a.authMiddleware)

	protected.HandleFunc("/books", a.handleCreateBook).Methods("POST")
	protected.HandleFunc("/books/{book_id}", a.handleGetBook).Methods("GET")
	protected.HandleFunc("/books/{book_id}", a.handleDeleteBook).Methods("DELETE")
	protected.HandleFunc("/books/{book_id}/transactions", a.handleListTransactions).Methods("GET")
	protected.HandleFunc("/books/{book_id}/transactions", a.handleAddTransaction).Methods("POST")
	protected.HandleFunc("/books/{book_id}/undo", a.handleUndo).Methods("POST")
	protected.HandleFunc("/books/{book_id}/balances", a.handleBalances).Methods("GET")
	protected.HandleFunc("/books/{book_id}/settlement", a.handleSettlement).Methods("GET")
}

// Handler returns the router wrapped in the CORS policy.
func (a *API) Handler() http.Handler {
	// Note: When AllowedOrigins is "*", AllowCredentials must be false
	corsOptions := cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	}
	return cors.New(corsOptions).Handler(a.router)
}

func (a *API) Start() error {
	a.logger.Info("API server listening", zap.String("addr", "http://"+a.config.WebBind))
	return http.ListenAndServe(a.config.WebBind, a.Handler())
}
