package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/msomdec/storefront/internal/cache"
	"github.com/msomdec/storefront/internal/config"
	"github.com/msomdec/storefront/internal/handler"
	"github.com/msomdec/storefront/internal/logger"
	"github.com/msomdec/storefront/internal/metrics"
	"github.com/msomdec/storefront/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := boot()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := boot()
		if err != nil {
			return err
		}
		store, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		return store.Close()
	},
}

// boot loads configuration and installs the process logger.
func boot() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	slog.SetDefault(logger.New(os.Stdout, os.Stderr, cfg.LogFormat, cfg.LogLevel))
	return cfg, nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	blobs, remoteBlobs, err := openBlobs(ctx, cfg, store)
	if err != nil {
		return err
	}

	m := metrics.New()
	catalogOpts := []service.CatalogOption{service.WithMetrics(m)}
	if cfg.RedisAddr != "" {
		rc, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword, "storefront:")
		if err != nil {
			// Listings still work uncached.
			slog.Warn("listing cache disabled", "error", err)
		} else {
			defer rc.Close()
			catalogOpts = append(catalogOpts, service.WithListingCache(rc, cfg.CatalogCacheTTL))
			slog.Info("listing cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.CatalogCacheTTL)
		}
	}

	auth, err := service.NewAuthService(store.Accounts(), cfg.JWTSecret, cfg.BcryptCost, service.AdminCredentials{
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
	})
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if cfg.AdminEmail == "" {
		slog.Warn("ADMIN_EMAIL not set, admin routes are unreachable")
	}

	limiter := service.PerMinute(cfg.RateLimitPerMinute)
	go limiter.Run(ctx)

	deps := handler.Deps{
		Auth:           auth,
		Hoodies:        service.NewCatalogService(service.HoodieVariant, store, blobs, catalogOpts...),
		Products:       service.NewCatalogService(service.ProductVariant, store, blobs, catalogOpts...),
		Orders:         service.NewOrderService(store.Orders(), m),
		Blobs:          blobs,
		RedirectBlobs:  remoteBlobs,
		Health:         store,
		Metrics:        m,
		CookieSecure:   cfg.CookieSecure,
		TrustedProxies: cfg.TrustedProxies,
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.NewHandler(deps, slog.Default(), limiter),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr, "env", cfg.AppEnv,
			"store", cfg.StoreDriver, "blobs", cfg.BlobDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}
