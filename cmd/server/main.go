// @title                       Secure Notes API
// @version                     1.0
// @description                 Personal notes with per-user ownership and stateless session tokens.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
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

	"github.com/miapp/secure-notes/internal/api"
	"github.com/miapp/secure-notes/internal/api/handler"
	"github.com/miapp/secure-notes/internal/core/ports"
	"github.com/miapp/secure-notes/internal/core/service"
	"github.com/miapp/secure-notes/internal/infrastructure/config"
	redisstore "github.com/miapp/secure-notes/internal/infrastructure/db/redis"
	"github.com/miapp/secure-notes/internal/infrastructure/security"
	"github.com/miapp/secure-notes/internal/infrastructure/storage"
	"github.com/miapp/secure-notes/pkg/logger"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(context.Background()); err != nil {
		log := logger.Get()
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// run returns instead of exiting so that deferred closes always execute.
func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "secure-notes",
	})

	store, err := storage.Open(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open %s storage: %w", cfg.StorageDriver, err)
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("close storage")
		}
	}()

	hasher := security.NewBcryptHasher(cfg.BcryptCost)
	tokens, err := security.NewJWTService(cfg.JWTSecret, cfg.TokenIssuer)
	if err != nil {
		return fmt.Errorf("token service: %w", err)
	}

	if cfg.Seed.OnStart {
		seeder := service.NewSeeder(store.Users, store.Notes, hasher, log)
		if _, err := seeder.Seed(ctx, service.SeedAccount{
			Email:    cfg.Seed.Email,
			Name:     cfg.Seed.Name,
			Password: cfg.Seed.Password,
		}); err != nil {
			return err
		}
	}

	checks := map[string]handler.HealthCheck{
		"storage": store.Ping,
	}

	var idempotency ports.IdempotencyStore
	if cfg.RedisEnabled() {
		client, err := redisstore.Connect(ctx, redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return fmt.Errorf("connect redis at %s: %w", cfg.Redis.Addr, err)
		}
		defer func() {
			if err := client.Close(); err != nil {
				log.Error().Err(err).Msg("close redis")
			}
		}()

		idempotency = redisstore.NewIdempotencyStore(client, cfg.Redis.IdempotencyTTL)
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		log.Info().Str("addr", cfg.Redis.Addr).Msg("idempotency keys enabled")
	}

	authService, err := service.NewAuthService(store.Users, hasher, tokens, log)
	if err != nil {
		return fmt.Errorf("auth service: %w", err)
	}
	noteService := service.NewNoteService(store.Notes, idempotency, log)

	e := api.NewRouter(api.Dependencies{
		AuthService:   authService,
		NoteService:   noteService,
		Tokens:        tokens,
		HealthChecks:  checks,
		Logger:        log,
		SecureCookies: cfg.SecureCookies(),
		Version:       version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Str("version", version).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigc)

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	case sig := <-sigc:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
