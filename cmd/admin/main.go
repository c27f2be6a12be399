package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"os"
	"os/signal"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"
	"go.uber.org/zap"

	"github.com/akira3175/fashionshop/internal/admin/httpserver"
	"github.com/akira3175/fashionshop/internal/admin/httpserver/middleware"
	adminorders "github.com/akira3175/fashionshop/internal/admin/orders"
	"github.com/akira3175/fashionshop/internal/platform/config"
	"github.com/akira3175/fashionshop/internal/platform/observability"
)

func main() {
	rootCtx := context.Background()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()
	logger := baseLogger.Named("admin")
	rootCtx = observability.WithLogger(rootCtx, logger)

	cfg, err := config.Load(rootCtx)
	if err != nil {
		var invalid *config.ValidationError
		if errors.As(err, &invalid) {
			logger.Fatal("invalid configuration", zap.Strings("fields", invalid.Fields()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	authenticator, err := buildAuthenticator(rootCtx, logger, cfg.Admin)
	if err != nil {
		logger.Fatal("failed to initialise authenticator", zap.Error(err))
	}

	orders, err := buildOrderService(logger, cfg.Admin)
	if err != nil {
		logger.Fatal("failed to initialise order service", zap.Error(err))
	}

	srv := httpserver.New(httpserver.Config{
		Address:          cfg.Admin.Server.Addr,
		BasePath:         cfg.Admin.BasePath,
		Authenticator:    authenticator,
		Orders:           orders,
		Logger:           logger,
		Environment:      cfg.Environment,
		CSRFCookieSecure: cfg.IsProduction(),
		ReadTimeout:      cfg.Admin.Server.ReadTimeout,
		WriteTimeout:     cfg.Admin.Server.WriteTimeout,
		IdleTimeout:      cfg.Admin.Server.IdleTimeout,
	})

	ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	logger.Info("admin server listening", zap.String("addr", cfg.Admin.Server.Addr), zap.String("base_path", cfg.Admin.BasePath))

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		cancel()
		stop()
		os.Exit(1)
	}
}

func buildAuthenticator(ctx context.Context, logger *zap.Logger, cfg config.AdminConfig) (middleware.Authenticator, error) {
	projectID := cfg.FirebaseProjectID
	if projectID == "" {
		if !cfg.AllowInsecureAuth {
			return nil, errors.New("FIREBASE_PROJECT_ID is required when insecure auth is disabled")
		}
		logger.Warn("FIREBASE_PROJECT_ID not set; using development authenticator")
		return middleware.DevAuthenticator(), nil
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID})
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase auth client: %w", err)
	}

	logger.Info("Firebase authenticator enabled", zap.String("project", projectID))
	return middleware.NewFirebaseAuthenticator(client), nil
}

// buildOrderService talks to the order API when one is configured and falls back
// to the in-memory orders otherwise.
func buildOrderService(logger *zap.Logger, cfg config.AdminConfig) (adminorders.Service, error) {
	if cfg.OrdersAPIURL == "" {
		logger.Warn("SHOP_ORDERS_API_URL not set; serving in-memory sample orders")
		return adminorders.NewStaticService(), nil
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client := &http.Client{Jar: jar, Timeout: cfg.OrdersAPITimeout}
	return adminorders.NewHTTPService(cfg.OrdersAPIURL, client)
}
