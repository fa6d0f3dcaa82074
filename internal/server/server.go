package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"catalog/internal/config"
	"catalog/internal/metrics"
	custommiddleware "catalog/internal/middleware"
	"catalog/internal/repository"
	"catalog/internal/service"
	"catalog/internal/storage"
	"catalog/internal/storage/cloudinary"
	"catalog/internal/storage/memory"
	"catalog/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// HealthChecker reports the state of a backing service. A "status" of "up"
// means healthy.
type HealthChecker interface {
	Health(ctx context.Context) map[string]string
}

// Dependencies are the adapters the HTTP server is built on.
type Dependencies struct {
	Database   HealthChecker
	Categories repository.CategoryRepository
	Products   repository.ProductRepository
	Storage    storage.Storage

	// Redis backs the upload rate limiter. Nil disables rate limiting.
	Redis redis.Cmdable
}

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	deps   Dependencies
}

func NewServer(cfg *config.Config, logger *zap.Logger, deps Dependencies) *Server {
	router := chi.NewRouter()

	router.Use(custommiddleware.DefaultMiddlewareStack()...)
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.MetricsMiddleware)
	router.Use(custommiddleware.CORSMiddleware(cfg.Server.AllowedOrigins, cfg.IsDevelopment()))

	router.Get("/health", healthHandler(deps.Database))
	router.Handle("/metrics", metrics.Handler())

	// Initialize services
	categoryService := service.NewCategoryService(deps.Categories, logger)
	productService := service.NewProductService(deps.Products, deps.Categories, logger)
	uploadService := service.NewUploadService(deps.Storage, cfg.Upload, logger)

	adminOnly := custommiddleware.AdminOnly(cfg.JWT.Secret, logger)
	if cfg.JWT.Secret == "" {
		logger.Warn("JWT_SECRET is empty, catalog writes are not authenticated")
	}

	uploadMiddlewares := []func(http.Handler) http.Handler{adminOnly}
	if cfg.RateLimit.Enabled && deps.Redis != nil {
		uploadMiddlewares = append(uploadMiddlewares, custommiddleware.RateLimitMiddleware(deps.Redis, custommiddleware.RateLimitConfig{
			RequestsPerWindow: cfg.RateLimit.UploadsPerMinute,
			Window:            time.Minute,
			KeyPrefix:         "ratelimit:upload",
		}, logger))
	}

	// Register routes
	transport.NewCategoryHandler(categoryService, logger).RegisterRoutes(router, adminOnly)
	transport.NewProductHandler(productService, logger).RegisterRoutes(router, adminOnly)
	transport.NewUploadHandler(uploadService, cfg.Upload, logger).RegisterRoutes(router, uploadMiddlewares...)

	return &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		config: cfg,
		logger: logger,
		deps:   deps,
	}
}

// NewStorage builds the configured media provider behind a circuit breaker.
func NewStorage(cfg config.StorageConfig, logger *zap.Logger) (storage.Storage, error) {
	var store storage.Storage

	switch cfg.Driver {
	case config.StorageDriverCloudinary:
		cld, err := cloudinary.New(cloudinary.Config{
			CloudName: cfg.Cloudinary.CloudName,
			APIKey:    cfg.Cloudinary.APIKey,
			APISecret: cfg.Cloudinary.APISecret,
		})
		if err != nil {
			return nil, err
		}
		store = cld
	case config.StorageDriverMemory:
		logger.Warn("Using in-memory media storage, uploads are not persisted")
		store = memory.New(cfg.BaseURL)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}

	return storage.WithCircuitBreaker(store, storage.DefaultBreakerConfig(cfg.Driver), logger), nil
}

func healthHandler(db HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{"status": "ok"}
		status := http.StatusOK

		if db != nil {
			stats := db.Health(r.Context())
			body["database"] = stats
			if stats["status"] != "up" {
				body["status"] = "degraded"
				status = http.StatusServiceUnavailable
			}
		}

		custommiddleware.RespondWithJSON(w, status, body)
	}
}

// Close releases the database and Redis connections.
func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	for name, dep := range map[string]any{"database": s.deps.Database, "redis": s.deps.Redis} {
		if c, ok := dep.(io.Closer); ok {
			if err := c.Close(); err != nil {
				s.logger.Error("Failed to close connection", zap.String("resource", name), zap.Error(err))
			}
		}
	}

	_ = s.logger.Sync()
	return nil
}
