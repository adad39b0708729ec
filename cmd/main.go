package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"storefront-catalog/internal/api"
	"storefront-catalog/internal/catalog"
	"storefront-catalog/internal/config"
	"storefront-catalog/internal/domain"
	"storefront-catalog/internal/logging"
	"storefront-catalog/internal/store"
)

const (
	defaultAppName = "StorefrontCatalog"
	sweepInterval  = time.Minute
	rateLimitIdle  = 10 * time.Minute
)

// pinger is anything the health check can ping.
type pinger interface {
	Ping(ctx context.Context) error
}

// backends collects what was opened at startup so shutdown can close it.
type backends struct {
	products  []domain.Product
	wishlists store.WishlistStorer
	sessions  store.SessionStorer
	checks    map[string]pinger
	closers   []func() error
}

func main() {
	envErr := godotenv.Load() // .env is optional; real env vars win

	cfg, err := config.Load()
	if err != nil {
		// No logger yet.
		os.Stderr.WriteString("FATAL: Error loading configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger, err := logging.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		os.Stderr.WriteString("FATAL: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck
	logger = logger.With(zap.String("service", defaultAppName))

	if envErr != nil {
		logger.Info(".env file not found or error loading, relying on system environment variables")
	}
	logger.Info("configuration loaded",
		zap.String("app_env", cfg.AppEnv),
		zap.String("catalog_source", cfg.Catalog.Source),
		zap.String("session_backend", cfg.Sessions.Backend))

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	b, err := openBackends(startupCtx, cfg, logger)
	cancelStartup()
	if err != nil {
		logger.Fatal("failed to initialize backends", zap.Error(err))
	}
	logger.Info("catalog loaded", zap.Int("products", len(b.products)))

	opts := catalog.Options{
		PageSize:         cfg.Catalog.PageSize,
		PriceCeiling:     cfg.Catalog.PriceCeiling,
		AvailabilityMode: catalog.AvailabilityMode(cfg.Catalog.AvailabilityMode),
		Logger:           logger.Named("catalog"),
	}

	// --- Initialize API Handlers ---
	httpAPIHandler := api.NewHTTPHandler(b.products, opts, b.sessions, b.wishlists, logger.Named("http"))
	grpcAPIHandler := api.NewGRPCHandler(b.products, opts, logger.Named("grpc"))

	// Background sweepers stop when shutdown begins.
	sweepCtx, stopSweep := context.WithCancel(context.Background())

	// --- Setup & Start HTTP Server ---
	httpRouter := chi.NewRouter()
	setupBaseMiddleware(sweepCtx, httpRouter, logger, cfg.HttpServer)
	registerHealthCheck(httpRouter, logger, b.checks)
	httpAPIHandler.RegisterRoutes(httpRouter)

	httpServer := &http.Server{
		Addr:         ":" + cfg.HttpServer.Port,
		Handler:      httpRouter,
		ReadTimeout:  cfg.HttpServer.TimeoutRead,
		WriteTimeout: cfg.HttpServer.TimeoutWrite,
		IdleTimeout:  cfg.HttpServer.TimeoutIdle,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("port", cfg.HttpServer.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server ListenAndServe error", zap.Error(err))
		}
		logger.Info("HTTP server has stopped")
	}()

	// --- Setup & Start gRPC Server ---
	grpcServer := setupGRPCServer(logger, grpcAPIHandler)
	grpcListener, err := net.Listen("tcp", ":"+cfg.GrpcServer.Port)
	if err != nil {
		logger.Fatal("failed to listen for gRPC", zap.String("port", cfg.GrpcServer.Port), zap.Error(err))
	}

	go func() {
		logger.Info("gRPC server listening", zap.String("port", cfg.GrpcServer.Port))
		if err := grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.Fatal("gRPC server Serve error", zap.Error(err))
		}
		logger.Info("gRPC server has stopped")
	}()

	// --- Session sweeper ---
	if mem, ok := b.sessions.(*store.MemorySessionStore); ok {
		go sweepSessions(sweepCtx, mem, logger)
	}

	// --- Graceful Shutdown ---
	shutdownComplete := make(chan struct{})
	go waitForShutdown(logger, httpServer, grpcServer, b, stopSweep, shutdownComplete)

	<-shutdownComplete
	logger.Info("service shutdown sequence finished")
}

// openBackends loads the catalog and opens the wishlist and session stores
// selected by cfg.
func openBackends(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*backends, error) {
	b := &backends{checks: map[string]pinger{}}

	switch cfg.Catalog.Source {
	case "postgres":
		db, err := sql.Open("postgres", cfg.Postgres.DSN())
		if err != nil {
			return nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, err
		}
		logger.Info("database connection established")
		pg := store.NewPostgresStore(db)
		b.closers = append(b.closers, pg.Close)
		b.checks["database"] = pg

		if b.products, err = pg.LoadCatalog(ctx); err != nil {
			b.close(logger)
			return nil, err
		}
		b.wishlists = pg
	default:
		products, err := store.NewFileCatalog(cfg.Catalog.File).LoadCatalog(ctx)
		if err != nil {
			return nil, err
		}
		b.products = products
		ids := make([]int64, 0, len(products))
		for _, p := range products {
			ids = append(ids, p.ID)
		}
		b.wishlists = store.NewMemoryWishlist(ids)
	}

	switch cfg.Sessions.Backend {
	case "redis":
		client, err := store.ConnectRedis(ctx, cfg.Sessions.RedisURL)
		if err != nil {
			b.close(logger)
			return nil, err
		}
		rs := store.NewRedisSessionStore(client, cfg.Sessions.TTL)
		b.closers = append(b.closers, rs.Close)
		b.checks["redis"] = rs
		b.sessions = rs
		logger.Info("redis session store connected")
	default:
		b.sessions = store.NewMemorySessionStore(cfg.Sessions.TTL)
	}
	return b, nil
}

func (b *backends) close(logger *zap.Logger) {
	for _, c := range b.closers {
		if err := c(); err != nil {
			logger.Warn("error closing backend", zap.Error(err))
		}
	}
}

func setupBaseMiddleware(ctx context.Context, router *chi.Mux, logger *zap.Logger, cfg config.ServerConfig) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(api.RequestLogger(logger.Named("access")))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))
	if cfg.RateLimit > 0 {
		limiter := api.NewRateLimiter(cfg.RateLimit, cfg.RateBurst, logger)
		go limiter.Run(ctx, rateLimitIdle)
		router.Use(limiter.Middleware)
	}
	logger.Info("base HTTP middleware registered", zap.Float64("rate_limit", cfg.RateLimit))
}

func registerHealthCheck(router *chi.Mux, logger *zap.Logger, checks map[string]pinger) {
	healthPath := "/api/v1/healthz"
	router.Get(healthPath, func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		body := map[string]interface{}{
			"status":      "healthy",
			"serviceName": defaultAppName,
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
		}
		for name, p := range checks {
			state := "healthy"
			if err := p.Ping(ctx); err != nil {
				state = "unhealthy"
				logger.Warn("health check ping failed", zap.String("backend", name), zap.Error(err))
			}
			body[name] = state
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK) // Always 200, but payload indicates detailed status
		json.NewEncoder(w).Encode(body)
	})
	logger.Info("HTTP health check registered", zap.String("path", healthPath))
}

func setupGRPCServer(logger *zap.Logger, grpcAPIHandler *api.GRPCHandler) *grpc.Server {
	grpcLogger := logger.Named("grpc")
	s := grpc.NewServer(grpc.ChainUnaryInterceptor(
		api.UnaryLoggingInterceptor(grpcLogger),
		api.UnaryRecoveryInterceptor(grpcLogger),
	))

	api.RegisterCatalogServiceServer(s, grpcAPIHandler)
	logger.Info("CatalogService gRPC service registered")

	grpc_health_v1.RegisterHealthServer(s, health.NewServer())
	logger.Info("gRPC health check service registered")

	return s
}

func sweepSessions(ctx context.Context, sessions *store.MemorySessionStore, logger *zap.Logger) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Sweep(); n > 0 {
				logger.Debug("expired browse sessions swept", zap.Int("removed", n))
			}
		}
	}
}

func waitForShutdown(
	logger *zap.Logger,
	httpServer *http.Server,
	grpcServer *grpc.Server,
	b *backends,
	stopSweep context.CancelFunc,
	shutdownComplete chan struct{},
) {
	defer close(shutdownComplete)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-sigChan
	logger.Info("received signal, starting graceful shutdown", zap.String("signal", receivedSignal.String()))
	stopSweep()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	// GracefulStop waits for in-flight RPCs; run it alongside the HTTP shutdown.
	stoppedGrpc := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stoppedGrpc)
	}()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("HTTP server gracefully shut down")
	}

	select {
	case <-stoppedGrpc:
		logger.Info("gRPC server gracefully shut down")
	case <-shutdownCtx.Done():
		logger.Warn("gRPC server graceful shutdown timed out, forcing stop", zap.Error(shutdownCtx.Err()))
		grpcServer.Stop()
	}

	b.close(logger)
	logger.Info("graceful shutdown sequence completed")
}
