package server

import (
	"fmt"
	"net/http"
	"time"

	"vending-inventory/internal/config"
	"vending-inventory/internal/database"
	custommiddleware "vending-inventory/internal/middleware"
	"vending-inventory/internal/repository"
	"vending-inventory/internal/repository/memory"
	"vending-inventory/internal/service"
	"vending-inventory/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	db     database.Service
	redis  *redis.Client
}

// NewServer wires the inventory handlers. A nil db selects the in-memory
// store; a nil redisClient disables rate limiting.
func NewServer(cfg *config.Config, logger *zap.Logger, db database.Service, redisClient *redis.Client) *Server {
	router := chi.NewRouter()

	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.Server.Env == "development"))

	if redisClient != nil && cfg.RateLimit.Enabled {
		router.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.Requests,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         "vending_rate_limit",
		}, logger))
	}

	router.Get("/health", healthHandler(db))

	var tx repository.TransactionManager
	if db != nil {
		tx = repository.NewTxManager(db.DB())
	} else {
		logger.Warn("Using in-memory store, data is lost on restart")
		tx = memory.NewStore()
	}
	tx = repository.WithRetry(tx, repository.RetryPolicy{
		MaxRetries:      cfg.Retry.MaxRetries,
		InitialInterval: cfg.Retry.InitialInterval,
		MaxInterval:     cfg.Retry.MaxInterval,
		MaxElapsedTime:  cfg.Retry.MaxElapsedTime,
	}, logger)

	productService := service.NewProductService(tx)
	machineService := service.NewMachineService(tx)
	stockService := service.NewStockService(tx)

	guard := operatorGuard(cfg.Auth, logger)

	transport.NewProductHandler(productService, logger).RegisterRoutes(router, guard)
	transport.NewMachineHandler(machineService, logger).RegisterRoutes(router, guard)
	transport.NewStockHandler(stockService, logger).RegisterRoutes(router, guard)

	return &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		db:     db,
		redis:  redisClient,
	}
}

// operatorGuard requires an operator token on mutating routes when a secret is configured
func operatorGuard(cfg config.AuthConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	if !cfg.AuthEnabled() {
		logger.Warn("JWT_SECRET is not set, mutating routes are unauthenticated")
		return func(next http.Handler) http.Handler { return next }
	}

	authenticate := custommiddleware.AuthMiddleware(cfg.JWTSecret, logger)
	authorize := custommiddleware.RequireOperator(logger)
	return func(next http.Handler) http.Handler {
		return authenticate(authorize(next))
	}
}

func healthHandler(db database.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db == nil {
			custommiddleware.RespondWithJSON(w, http.StatusOK, map[string]string{
				"status": "ok",
				"store":  config.DriverMemory,
			})
			return
		}

		stats := db.Health(r.Context())
		status, overall := http.StatusOK, "ok"
		if stats["status"] != "up" {
			status, overall = http.StatusServiceUnavailable, "degraded"
			delete(stats, "error")
		}
		custommiddleware.RespondWithJSON(w, status, map[string]interface{}{
			"status":   overall,
			"store":    config.DriverPostgres,
			"database": stats,
		})
	}
}

// Close releases the database pool and redis client
func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis client", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
