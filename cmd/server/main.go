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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/byok-vault-service/internal/config"
	"github.com/byok-vault-service/internal/handler"
	"github.com/byok-vault-service/internal/httputil"
	"github.com/byok-vault-service/internal/keystore"
	"github.com/byok-vault-service/internal/middleware"
	"github.com/byok-vault-service/internal/provider"
	"github.com/byok-vault-service/internal/service"
	"github.com/byok-vault-service/internal/store"
	"github.com/byok-vault-service/migrations"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run() error {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	zerolog.SetGlobalLevel(level)

	if err := runMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	log.Info().Msg("database connection established")

	metadata := store.NewPostgres(pool)
	secrets := keystore.NewPostgres(pool, keystore.NewCipher(cfg.MasterPassphrase))
	validators := provider.NewRegistry(httputil.NewClient(cfg.ValidationTimeout))
	vault := service.NewVaultService(metadata, secrets, validators)

	router := newRouter(cfg, pool, metadata, vault)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newRouter(cfg *config.Config, pool *pgxpool.Pool, metadata store.Store, vault *service.VaultService) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireJSON)
	r.Use(middleware.RequestLogger)

	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE"},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.Method(http.MethodGet, "/health", handler.NewHealthHandler(pool))
	r.Handle("/metrics", promhttp.Handler())

	authLimiter := middleware.NewAuthAttemptLimiter(5, 5*time.Minute, 15*time.Minute)

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.AdminAuth(cfg.AdminToken, authLimiter))

		r.Method(http.MethodPost, "/keys", handler.NewCreateKeyHandler(vault))
		r.Method(http.MethodGet, "/keys", handler.NewListKeysHandler(metadata))
		r.Method(http.MethodPost, "/keys/check-duplicate", handler.NewCheckDuplicateHandler(vault))
		r.Method(http.MethodGet, "/keys/{id}", handler.NewGetKeyHandler(metadata))
		r.Method(http.MethodPatch, "/keys/{id}", handler.NewUpdateKeyHandler(vault))
		r.Method(http.MethodDelete, "/keys/{id}", handler.NewDeleteKeyHandler(vault))
		r.Method(http.MethodGet, "/keys/{id}/reveal", handler.NewRevealKeyHandler(vault))

		r.Method(http.MethodGet, "/platforms", handler.NewListPlatformsHandler(metadata))

		r.Method(http.MethodPost, "/validate", handler.NewValidateKeyHandler(vault))
		r.Method(http.MethodGet, "/validate/platforms", handler.NewSupportedPlatformsHandler(vault))
	})

	return r
}

func runMigrations(databaseURL string) error {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("open migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return fmt.Errorf("init migrate: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
