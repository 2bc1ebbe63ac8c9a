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

	"github.com/rs/zerolog"

	"github.com/slugboard/slugboard/internal/api"
	"github.com/slugboard/slugboard/internal/api/session"
	"github.com/slugboard/slugboard/internal/core/ports"
	"github.com/slugboard/slugboard/internal/core/service"
	"github.com/slugboard/slugboard/internal/infrastructure/db/mongo"
	"github.com/slugboard/slugboard/internal/infrastructure/db/redis"
	"github.com/slugboard/slugboard/internal/infrastructure/db/sqlstore"
	"github.com/slugboard/slugboard/internal/infrastructure/http/handlers"
	"github.com/slugboard/slugboard/internal/infrastructure/security"
	"github.com/slugboard/slugboard/internal/pkg/config"
	"github.com/slugboard/slugboard/pkg/logger"
)

const serviceName = "slugboard"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: serviceName,
	})

	repo, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	checks := map[string]handlers.Pinger{"store": repo}

	var replay ports.RegistrationReplay
	if cfg.Redis.Addr != "" {
		client, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer client.Close()
		store := redis.NewRegistrationReplay(client, cfg.Redis.IdempotencyTTL)
		replay = store
		checks["redis"] = store
		log.Info().Str("addr", cfg.Redis.Addr).Msg("registration replay enabled")
	}

	codec, err := security.NewJWTCodec(cfg.Auth.JWTSecret)
	if err != nil {
		return err
	}
	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)
	rotationHasher := security.NewBcryptHasher(cfg.Auth.BcryptRotationCost)

	e, err := api.NewRouter(api.Dependencies{
		Credentials: service.NewCredentialService(service.CredentialOptions{
			Repo:           repo,
			Hasher:         hasher,
			RotationHasher: rotationHasher,
			Codec:          codec,
			RotationTTL:    cfg.Auth.RotationTTL,
			Replay:         replay,
			Log:            log.With().Str("component", "credentials").Logger(),
		}),
		Sessions: service.NewSessionService(repo, hasher, rotationHasher, codec, cfg.Auth.SessionTTL,
			log.With().Str("component", "sessions").Logger()),
		Access:  service.NewAccessService(repo),
		Cookies: session.Cookies{Secure: cfg.CookieSecure()},
		Checks:  checks,
		Logger:  log,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr()).Str("env", cfg.Env).Str("store", cfg.Store.Driver).Msg("server starting")
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Dur("timeout", cfg.ShutdownTimeout).Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// openStore connects the configured credential store and returns its closer.
func openStore(ctx context.Context, cfg *config.Config) (ports.UserRepository, func(), error) {
	if cfg.Store.Driver == "mongo" {
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, nil, err
		}
		repo := mongo.NewUserRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, nil, err
		}
		return repo, func() { _ = client.Disconnect(context.Background()) }, nil
	}

	dialect, err := sqlstore.ParseDialect(cfg.Store.Driver)
	if err != nil {
		return nil, nil, err
	}
	db, err := sqlstore.Open(ctx, dialect, cfg.Store.DSN)
	if err != nil {
		return nil, nil, err
	}
	return sqlstore.NewUserRepository(db, dialect), closer(db, logger.Get()), nil
}

func closer(c io.Closer, log zerolog.Logger) func() {
	return func() {
		if err := c.Close(); err != nil {
			log.Warn().Err(err).Msg("close store")
		}
	}
}
