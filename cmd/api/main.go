package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/devis-eau-api/internal/bootstrap"
	"github.com/sangkips/devis-eau-api/internal/config"
	"github.com/sangkips/devis-eau-api/internal/observability/logger"
	"github.com/sangkips/devis-eau-api/internal/presentation/http/handler"
	"github.com/sangkips/devis-eau-api/internal/presentation/http/routes"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if cfg == nil {
		return fmt.Errorf("load config: %w", err)
	}

	zlog, logErr := logger.New(logger.Config{
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Env,
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
	})
	if logErr != nil {
		return logErr
	}
	defer func() { _ = zlog.Sync() }()
	if err != nil {
		zlog.Info("no .env file loaded, using environment", zap.Error(err))
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	container, err := bootstrap.New(cfg, zlog)
	if err != nil {
		return err
	}
	defer func() { _ = container.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := container.Migrate(ctx); err != nil {
		return err
	}
	warnOnCatalogConflicts(ctx, container)

	rateLimiter := routes.NewRateLimiter(cfg.RateLimit)
	defer rateLimiter.Stop()

	handlers := &routes.Handlers{
		Health: handler.NewHealthHandler(cfg.App.Name, container.Ping),
		Auth:   handler.NewAuthHandler(container.AuthService),
		Client: handler.NewClientHandler(container.ClientService),
		Tariff: handler.NewTariffHandler(container.TariffService),
		Quote:  handler.NewQuoteHandler(container.QuoteService),
	}
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:  container.JWTManager,
		Cfg:         cfg,
		Logger:      zlog,
		RateLimiter: rateLimiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zlog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// warnOnCatalogConflicts reports active tariffs that break the one active
// tariff per service type rule. The server still starts.
func warnOnCatalogConflicts(ctx context.Context, c *bootstrap.Container) {
	conflicts, err := c.TariffService.CheckCatalog(ctx)
	if err != nil {
		c.Logger.Warn("tariff catalog check failed", zap.Error(err))
		return
	}
	for _, conflict := range conflicts {
		c.Logger.Warn("conflicting active tariffs", zap.String("conflict", conflict.String()))
	}
}
