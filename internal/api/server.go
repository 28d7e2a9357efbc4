// Package api provides the HTTP API server implementation.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/substrate-wallet-core/internal/logging"
	"github.com/substrate-wallet-core/internal/service"
	"github.com/substrate-wallet-core/internal/types"
)

// Service interfaces for dependency injection and testing

// PayabilityServiceInterface defines the payability resolver operations
type PayabilityServiceInterface interface {
	CheckPayability(ctx context.Context, in *service.CheckPayabilityInput) (*types.PaymentResolution, error)
}

// RewardsServiceInterface defines the reward aggregation operations
type RewardsServiceInterface interface {
	GetRewards(ctx context.Context, chain types.ChainID, account string, interval, page int) (*service.RewardReport, error)
	Refresh(ctx context.Context, chain types.ChainID, account string) error
}

// ProxyServiceInterface defines the proxy reconciliation operations
type ProxyServiceInterface interface {
	CurrentProxies(ctx context.Context, chainID types.ChainID, account string) ([]types.ProxyItem, error)
	Preview(ctx context.Context, chainID types.ChainID, account string, edits []service.ProxyEdit) (*service.ProxyPreview, error)
}

// BalanceProvider exposes the chain balance read used by the balance endpoint
type BalanceProvider interface {
	Balance(ctx context.Context, chain types.ChainID, account string) (*types.AccountBalance, error)
}

// PriceProvider exposes fiat price lookups for reward valuation
type PriceProvider interface {
	Price(ctx context.Context, chain types.ChainID, fiat string) (float64, error)
}

// Server represents the HTTP API server.
type Server struct {
	router            *mux.Router
	httpServer        *http.Server
	payabilityService PayabilityServiceInterface
	rewardsService    RewardsServiceInterface
	proxyService      ProxyServiceInterface
	balances          BalanceProvider
	prices            PriceProvider
	config            *ServerConfig
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host              string
	Port              string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	RequestsPerMinute int
	Burst             int
}

// NewServer creates a new API server instance.
func NewServer(
	config *ServerConfig,
	payabilityService PayabilityServiceInterface,
	rewardsService RewardsServiceInterface,
	proxyService ProxyServiceInterface,
	balances BalanceProvider,
	prices PriceProvider,
) *Server {
	s := &Server{
		router:            mux.NewRouter(),
		payabilityService: payabilityService,
		rewardsService:    rewardsService,
		proxyService:      proxyService,
		balances:          balances,
		prices:            prices,
		config:            config,
	}

	s.setupRouter()

	return s
}

// setupRouter configures the router with middleware and routes
func (s *Server) setupRouter() {
	rateLimiter := NewRateLimiter(s.config.RequestsPerMinute, s.config.Burst)

	// Middleware order matters: request IDs first so every later stage logs them.
	s.router.Use(RequestIDMiddleware)
	s.router.Use(LoggingMiddleware)
	s.router.Use(RecoveryMiddleware)
	s.router.Use(CORSMiddleware)
	s.router.Use(RateLimitMiddleware(rateLimiter))
	s.router.Use(CompressionMiddleware)

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()

	// Account endpoints
	api.HandleFunc("/accounts/{account}/balance", s.handleGetBalance).Methods("GET")
	api.HandleFunc("/accounts/{account}/payability", s.handleCheckPayability).Methods("POST")
	api.HandleFunc("/accounts/{account}/rewards", s.handleGetRewards).Methods("GET")
	api.HandleFunc("/accounts/{account}/rewards/refresh", s.handleRefreshRewards).Methods("POST")

	// Proxy endpoints
	api.HandleFunc("/accounts/{account}/proxies", s.handleGetProxies).Methods("GET")
	api.HandleFunc("/accounts/{account}/proxies/preview", s.handlePreviewProxies).Methods("POST")
	api.HandleFunc("/accounts/{account}/proxies/calls", s.handleAssembleProxyCalls).Methods("POST")
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "substrate-wallet-core",
	})
}

// Router returns the configured router, used by tests
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	logging.Infof("Starting API server on %s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down API server...")
	return s.httpServer.Shutdown(ctx)
}

// parseChain resolves and validates the chain query parameter
func parseChain(r *http.Request) (types.ChainID, bool) {
	return parseChainString(r.URL.Query().Get("chain"))
}

// parseChainString validates a chain name, defaulting empty to Polkadot
func parseChainString(raw string) (types.ChainID, bool) {
	chain := types.ChainID(raw)
	if chain == "" {
		chain = types.ChainPolkadot
	}
	switch chain {
	case types.ChainPolkadot, types.ChainKusama, types.ChainWestend:
		return chain, true
	default:
		return "", false
	}
}
