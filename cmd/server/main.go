package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/nekogravitycat/court-reservation/internal/app"
	"github.com/nekogravitycat/court-reservation/internal/catalog"
	"github.com/nekogravitycat/court-reservation/internal/config"
	"github.com/nekogravitycat/court-reservation/internal/db"
	"github.com/nekogravitycat/court-reservation/internal/pkg/interval"
	"github.com/nekogravitycat/court-reservation/internal/pkg/logger"
)

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Logger
	zlog, err := logger.New(logger.Options{
		Level:       cfg.LogLevel,
		Dir:         cfg.LogPath,
		Development: !cfg.IsProduction(),
	})
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()
	zap.ReplaceGlobals(zlog)

	zone, err := interval.LoadZone(cfg.BookingTimeZone)
	if err != nil {
		zlog.Fatal("invalid booking time zone", zap.String("zone", cfg.BookingTimeZone), zap.Error(err))
	}

	appCfg := app.Config{
		IsProduction: cfg.IsProduction(),
		ProdOrigins:  cfg.ProdOrigins,
		Logger:       zlog,
		Zone:         zone,
		CacheTTL:     cfg.AvailabilityCacheTTL,
		JWTSecret:    cfg.JWTSecret,
		JWTTTL:       cfg.JWTAccessTokenTTL,
	}

	// Storage
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		pool, err := db.NewPool(ctx, cfg.DBDSN, db.PoolOptions{MaxConns: cfg.DBMaxConns})
		if err != nil {
			zlog.Fatal("failed to connect to db", zap.Error(err))
		}
		defer pool.Close()

		if err := db.Migrate(ctx, pool); err != nil {
			zlog.Fatal("failed to migrate db", zap.Error(err))
		}
		appCfg.DBPool = pool
	case config.BackendMemory:
		snapshot, err := catalog.LoadFile(cfg.CatalogFile)
		if err != nil {
			zlog.Fatal("failed to load catalog", zap.String("path", cfg.CatalogFile), zap.Error(err))
		}
		appCfg.Catalog = snapshot
		zlog.Warn("using in-memory storage, bookings are lost on exit")
	}

	// Availability cache
	if cfg.RedisAddr != "" {
		rdb, err := db.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			zlog.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer func() { _ = rdb.Close() }()
		appCfg.Redis = rdb
	}

	container := app.NewContainer(appCfg)

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           container.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server in separate goroutine
	go func() {
		zlog.Info("server running",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("storage", cfg.StorageBackend),
			zap.String("zone", zone.String()),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for Ctrl+C
	<-ctx.Done()
	zlog.Info("shutdown signal received")

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error("server forced to shutdown", zap.Error(err))
	}

	zlog.Info("server exited gracefully")
}
