// @title                       Identity API
// @version                     1.0
// @description                 JWT bearer authentication with role-based authorization.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/identity-api/internal/api"
	"github.com/99minutos/identity-api/internal/api/handler"
	"github.com/99minutos/identity-api/internal/core/ports"
	"github.com/99minutos/identity-api/internal/core/service"
	"github.com/99minutos/identity-api/internal/infrastructure/config"
	"github.com/99minutos/identity-api/internal/infrastructure/crypto"
	"github.com/99minutos/identity-api/internal/infrastructure/db/memory"
	"github.com/99minutos/identity-api/internal/infrastructure/db/mongo"
	"github.com/99minutos/identity-api/internal/infrastructure/db/redis"
	"github.com/99minutos/identity-api/internal/infrastructure/queue"
	"github.com/99minutos/identity-api/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{})
		bootLog.Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "identity-api",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	var (
		users  ports.UserRepository
		roles  ports.RoleRepository
		audit  ports.AuditSink
		checks = map[string]handler.DependencyCheck{}
	)

	// Audit workers run on their own context so requests still in flight during
	// shutdown can record events.
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	if cfg.UseMemoryStore() {
		store := memory.NewStore()
		users, roles = store.Users(), store.Roles()
		log.Warn().Msg("using in-memory credential store, data is lost on restart")
	} else {
		client, db, err := mongo.Connect(ctx, mongo.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			AppName:  "identity-api",
		})
		if err != nil {
			return err
		}
		defer func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		}()

		store := mongo.NewStore(db)
		if err := store.EnsureIndexes(ctx); err != nil {
			return err
		}
		users, roles = store.Users, store.Roles
		checks["mongodb"] = handler.MongoCheck(db)

		dispatcher := queue.NewDispatcher(cfg.Audit.Workers, store.Audit, logger.Component("audit"))
		dispatcher.Start(workerCtx)
		defer func() {
			stopWorkers()
			dispatcher.Wait()
		}()
		audit = dispatcher
	}

	var throttle ports.LoginThrottle
	if cfg.Redis.Addr != "" {
		rdb, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, login throttling disabled")
		} else {
			defer rdb.Close()
			throttle = redis.NewLoginThrottle(rdb, cfg.Auth.LoginMaxFailures, cfg.Auth.LoginFailureWindow)
			checks["redis"] = handler.RedisCheck(rdb)
		}
	}

	tokens, err := service.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, service.WithIssuer(cfg.Auth.JWTIssuer))
	if err != nil {
		return err
	}
	hasher := crypto.NewBcryptHasher(cfg.Auth.BcryptCost)
	identities := service.NewIdentityService(users, roles, hasher, audit, logger.Component("identity"))
	auth := service.NewAuthService(users, hasher, tokens, throttle, audit, logger.Component("auth"))

	if err := service.Seed(ctx, identities, service.SeedOptions{
		CreateUsers:   cfg.Seed.DefaultUsers,
		AdminPassword: cfg.Seed.AdminPassword,
		AdminEmail:    cfg.Seed.AdminEmail,
		UserPassword:  cfg.Seed.UserPassword,
		UserEmail:     cfg.Seed.UserEmail,
	}, logger.Component("seed")); err != nil {
		return err
	}

	e := api.NewRouter(api.Deps{
		Log:          logger.Component("http"),
		Tokens:       tokens,
		Auth:         auth,
		Identities:   identities,
		TokenTTL:     tokens.TTL(),
		AuthHeader:   cfg.Auth.Header,
		HealthChecks: checks,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.Store).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
