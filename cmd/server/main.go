// Command server runs the policy tracker HTTP API and its background jobs.
//
// @title                      Policy Tracker API
// @version                    1.0
// @description                Insurance policy expiration tracking for agencies.
// @BasePath                   /api/v1
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/tbourn/policy-tracker-backend/docs"
	"github.com/tbourn/policy-tracker-backend/internal/catalog"
	"github.com/tbourn/policy-tracker-backend/internal/config"
	httpapi "github.com/tbourn/policy-tracker-backend/internal/http"
	"github.com/tbourn/policy-tracker-backend/internal/observability"
	"github.com/tbourn/policy-tracker-backend/internal/repo"
	"github.com/tbourn/policy-tracker-backend/internal/scheduler"
	"github.com/tbourn/policy-tracker-backend/internal/sysutil"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 15 * time.Second

func main() {
	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("could not read .env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logger := sysutil.SetupLogger(os.Stdout, cfg.LogLevel, cfg.LogPretty, cfg.OTEL.ServiceName)
	ver := sysutil.FirstNonEmpty(os.Getenv("APP_VERSION"), version)

	if cfg.Auth.JWTSecret == config.DefaultJWTSecret {
		logger.Warn().Msg("JWT_SECRET not set, using the development signing key")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, ver, attribute.String("db.system", cfg.Store.Driver))
	if err != nil {
		logger.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			logger.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	dsn := cfg.Store.Path
	if cfg.Store.Driver == "postgres" || cfg.Store.Driver == "mysql" {
		dsn = cfg.Store.DatabaseURL
	}
	db, err := repo.Open(cfg.Store.Driver, dsn)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("open store")
	}
	if err := repo.AutoMigrate(db); err != nil {
		logger.Fatal().Err(err).Msg("migrate store")
	}

	cat := catalog.Default()
	if cfg.Expiry.PolicyTypesFile != "" {
		if cat, err = catalog.LoadFile(cfg.Expiry.PolicyTypesFile); err != nil {
			logger.Fatal().Err(err).Str("file", cfg.Expiry.PolicyTypesFile).Msg("load policy types")
		}
	}

	gin.SetMode(cfg.GinMode)
	docs.SwaggerInfo.BasePath = cfg.APIBasePath
	docs.SwaggerInfo.Version = ver

	r := gin.New()
	httpapi.RegisterRoutes(r, db, cfg, cat)

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	jobs := scheduler.New(db, scheduler.Options{
		IdempotencySweep: cfg.IdempotencySweepSchedule,
		Timeout:          cfg.Store.Timeout,
		Location:         cfg.Expiry.Location,
	}, logger.With().Str("component", "scheduler").Logger())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().
			Str("addr", srv.Addr).
			Str("version", ver).
			Str("driver", cfg.Store.Driver).
			Str("timezone", cfg.Expiry.TimeZone).
			Int("window_days", cfg.Expiry.WindowDays).
			Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return jobs.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info().Msg("bye")
}
