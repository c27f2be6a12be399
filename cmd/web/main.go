package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/akira3175/fashionshop/internal/cartview"
	"github.com/akira3175/fashionshop/internal/catalog"
	"github.com/akira3175/fashionshop/internal/checkout"
	"github.com/akira3175/fashionshop/internal/platform/config"
	"github.com/akira3175/fashionshop/internal/platform/observability"
	"github.com/akira3175/fashionshop/internal/storage"
	"github.com/akira3175/fashionshop/internal/web"
	"github.com/akira3175/fashionshop/internal/web/session"
)

func main() {
	ctx := context.Background()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()
	logger := baseLogger.Named("web")
	ctx = observability.WithLogger(ctx, logger)

	cfg, err := config.Load(ctx)
	if err != nil {
		var invalid *config.ValidationError
		if errors.As(err, &invalid) {
			logger.Fatal("invalid configuration", zap.Strings("fields", invalid.Fields()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	backend, closeBackend, err := openStorage(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal("failed to initialise storage", zap.String("backend", cfg.Storage.Backend), zap.Error(err))
	}
	defer func() {
		if closeBackend == nil {
			return
		}
		if err := closeBackend.Close(); err != nil {
			logger.Warn("storage close error", zap.Error(err))
		}
	}()

	products, err := catalog.LoadFile(cfg.Catalog.File)
	if err != nil {
		logger.Fatal("failed to load catalog", zap.String("file", cfg.Catalog.File), zap.Error(err))
	}

	renderer, err := cartview.NewRenderer()
	if err != nil {
		logger.Fatal("failed to parse templates", zap.Error(err))
	}

	sessions, err := session.NewManager(session.Config{
		HashKey:  []byte(cfg.Session.HashKey),
		BlockKey: []byte(cfg.Session.BlockKey),
		Secure:   cfg.Session.Secure,
	})
	if err != nil {
		logger.Fatal("failed to initialise sessions", zap.Error(err))
	}
	if cfg.Session.HashKey == "" {
		logger.Warn("SHOP_SESSION_HASH_KEY not set; sessions will not survive a restart")
	}

	checkoutClient := checkout.NewClient(cfg.Checkout.APIURL).WithHTTPClient(&http.Client{Timeout: cfg.Checkout.Timeout})
	if cfg.Checkout.APIURL == "" {
		logger.Warn("SHOP_CHECKOUT_API_URL not set; checkout will report the backend as unavailable")
	}

	handler, err := web.New(web.Config{
		Catalog:  products,
		Storage:  backend,
		Renderer: renderer,
		Checkout: checkoutClient,
		Sessions: sessions,
		Logger:   logger,
		Timeout:  cfg.Web.WriteTimeout,
	})
	if err != nil {
		logger.Fatal("failed to build router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         cfg.Web.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("storefront listening",
			zap.String("addr", cfg.Web.Addr),
			zap.String("env", cfg.Environment),
			zap.String("storage", cfg.Storage.Backend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-sigCtx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		return
	}
	logger.Info("storefront stopped")
}

// openStorage builds the configured slot backend. The returned closer is nil for
// backends without network resources.
func openStorage(ctx context.Context, cfg config.StorageConfig) (storage.Storage, io.Closer, error) {
	switch cfg.Backend {
	case config.BackendFile:
		s, err := storage.NewFile(cfg.Dir, cfg.MaxBytes)
		return s, nil, err
	case config.BackendRedis:
		s, err := storage.NewRedis(ctx, storage.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
			TTL:      cfg.Redis.TTL,
			MaxBytes: cfg.MaxBytes,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case config.BackendFirestore:
		// The Firestore client only reads the emulator address from the process env.
		if host := cfg.Firestore.EmulatorHost; host != "" && os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
			_ = os.Setenv("FIRESTORE_EMULATOR_HOST", host)
		}
		s, err := storage.NewFirestore(ctx, cfg.Firestore.ProjectID, cfg.Firestore.Collection, cfg.MaxBytes)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		return storage.NewMemory(cfg.MaxBytes), nil, nil
	}
}
