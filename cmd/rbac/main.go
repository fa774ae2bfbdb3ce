package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/access"
	accesshttp "github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/access/http"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/app"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/audit"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/auth"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/observability"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/platform/cache"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/rbac"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/records"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/shared"
	"github.com/j123s/RBAC-Driven-Access-Management-System-with-Real-Time-Audit-Logs/internal/users"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg, nil)

	if err := run(ctx, cfg, logger, os.Args[1:], os.Stdout); err != nil {
		logger.Error("rbac exited", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *app.Config, logger *slog.Logger, args []string, stdout io.Writer) error {
	stores, err := app.OpenStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stores.Close()

	auditService := audit.NewService(stores.Audit, nil)
	// Export only reads; it must not create the bootstrap account.
	if len(args) > 0 && args[0] == "export-audit" {
		return exportAudit(ctx, auditService, stdout)
	}

	authService := auth.NewService(stores.Users, auth.ServiceConfig{
		BcryptCost:        cfg.BcryptCost,
		BootstrapPassword: cfg.BootstrapAdminPassword,
	}, logger)
	if _, err := authService.BootstrapDefaultAdmin(ctx); err != nil {
		return err
	}
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	gate := access.NewGate(access.Deps{
		Auth:    authService,
		Records: records.NewService(stores.Records, nil),
		Users:   users.NewService(stores.Users),
		Audit:   auditService,
		Metrics: metrics,
		Logger:  logger,
	})

	sessionManager := shared.NewSessionManager(redisClient, "rbac_session", cfg.SessionTTL, cfg.IsProduction())
	rbacMiddleware := rbac.Middleware{Logger: logger}
	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		SessionManager:     sessionManager,
		AccessHandler:      accesshttp.NewHandler(logger, gate, sessionManager, rbacMiddleware, app.AuthRateLimit(cfg)),
		PermissionsHandler: rbac.NewPermissionsHandler(rbacMiddleware),
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("store", cfg.StoreDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
