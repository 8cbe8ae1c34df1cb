package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Conversly/tripshare/internal/api"
	"github.com/Conversly/tripshare/internal/config"
	"github.com/Conversly/tripshare/internal/loaders"
	"github.com/Conversly/tripshare/internal/schema"
	"github.com/Conversly/tripshare/internal/shared"
	"github.com/Conversly/tripshare/internal/storage"
	"github.com/Conversly/tripshare/internal/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	logger, err := utils.InitLogger(cfg.LogLevel, cfg.Debug,
		zap.String("service", cfg.ServiceName),
		zap.String("environment", cfg.Environment),
		zap.String("hostname", cfg.Hostname))
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg); err != nil {
		utils.Zlog.Error("Server stopped with error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	utils.Zlog.Info("Server stopped")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := loaders.NewPostgresClient(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
	if err != nil {
		return err
	}
	defer db.Close()

	sch := schema.New(schema.Wrap(db.Pool()), schema.WithRepository(cfg.SchemaDir))
	if err := sch.Upgrade(ctx); err != nil {
		return err
	}
	// Serving stops if a newer schema shows up in the repository, so an
	// old binary never runs against a database it does not understand.
	ctx, cancelSchema := sch.Context(ctx)
	defer cancelSchema()

	tokens, err := shared.NewTokenManager(cfg.JwtSecret, cfg.TokenTTL, cfg.ServiceName)
	if err != nil {
		return err
	}
	files, err := storage.NewPhotoStore(cfg.PhotoRoot)
	if err != nil {
		return err
	}
	if err := utils.RegisterValidators(); err != nil {
		return err
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	limiter := shared.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	engine := gin.New()
	engine.Use(
		shared.Recovery(),
		shared.RequestID(),
		shared.AccessLog(),
		shared.CORS(cfg.AllowedOrigins),
		limiter.Middleware(),
	)

	pool := api.RegisterRoutes(engine, api.Dependencies{
		Store:  db,
		Schema: sch,
		Photos: files,
		Tokens: tokens,
		Config: cfg,
	})

	go sweepLimiter(ctx, limiter)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		utils.Zlog.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) {
			serveErr = cause
		}
		utils.Zlog.Info("Shutting down", zap.NamedError("cause", context.Cause(ctx)))
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Zlog.Error("HTTP server shutdown failed", zap.Error(err))
	}
	pool.Stop(shutdownCtx)
	return serveErr
}

func sweepLimiter(ctx context.Context, limiter *shared.RateLimiter) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := limiter.Sweep(); n > 0 {
				utils.Zlog.Debug("Swept idle rate limit clients", zap.Int("removed", n))
			}
		}
	}
}
