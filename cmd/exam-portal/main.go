// @title           Exam Portal API
// @version         1.0
// @description     Session authority for the exam-schedule dashboard.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
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

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/univexams/exam-portal/internal/api"
	"github.com/univexams/exam-portal/internal/api/handler"
	"github.com/univexams/exam-portal/internal/api/token"
	"github.com/univexams/exam-portal/internal/core/ports"
	"github.com/univexams/exam-portal/internal/core/service"
	"github.com/univexams/exam-portal/internal/infrastructure/db/memory"
	mongodb "github.com/univexams/exam-portal/internal/infrastructure/db/mongo"
	"github.com/univexams/exam-portal/internal/infrastructure/db/postgres"
	redisdb "github.com/univexams/exam-portal/internal/infrastructure/db/redis"
	"github.com/univexams/exam-portal/internal/infrastructure/queue"
	"github.com/univexams/exam-portal/internal/pkg/config"
	"github.com/univexams/exam-portal/pkg/logger"
)

// sessionGrace keeps store records a little longer than the idle timeout so
// an expired session is still found and reported as expired.
const sessionGrace = 5 * time.Minute

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "exam-portal",
		Env:     cfg.Env,
	})

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("exam-portal stopped")
	}
}

func run(cfg *config.Config) error {
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checks := map[string]handler.Pinger{}

	// --- MongoDB (audit trail and optional directory) ---
	var mongoDB *mongo.Database
	if cfg.UsesMongo() {
		client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer func() {
			if err := mongodb.Disconnect(client, 5*time.Second); err != nil {
				log.Warn().Err(err).Msg("mongo disconnect failed")
			}
		}()
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			return err
		}
		mongoDB = db
		checks["mongodb"] = handler.PingFunc(func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		})
	}

	// --- User directory ---
	var directory ports.UserDirectory
	switch cfg.Directory.Backend {
	case config.BackendPostgres:
		pool, err := postgres.Connect(ctx, postgres.Config{DSN: cfg.Postgres.DSN, MaxConns: cfg.Postgres.MaxConns})
		if err != nil {
			return err
		}
		defer pool.Close()
		directory = postgres.NewUserDirectory(pool)
		checks["postgres"] = pool
	case config.BackendMongo:
		directory = mongodb.NewUserDirectory(mongoDB)
	default:
		return fmt.Errorf("unsupported directory backend %q", cfg.Directory.Backend)
	}

	// --- Session store ---
	storeTTL := cfg.Session.IdleTimeout + sessionGrace
	var store ports.SessionStore
	switch cfg.Session.Store {
	case config.StoreRedis:
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
		store = redisdb.NewSessionStore(rdb, storeTTL)
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	default:
		log.Warn().Msg("using in-memory session store; sessions are lost on restart")
		store = memory.NewSessionStore(storeTTL)
	}

	// --- Audit trail ---
	var audit ports.AuditSink
	if cfg.Audit.Enabled {
		dispatcher := queue.NewDispatcher(cfg.Audit.Workers, mongodb.NewAuditRepository(mongoDB), logger.Component("audit"))
		// Not tied to the signal context: Stop drains the queues after the
		// HTTP server has finished its in-flight requests.
		dispatcher.Start(context.Background())
		defer dispatcher.Stop()
		audit = dispatcher
	}

	// --- Core ---
	authority := service.NewAuthority(directory, logger.Component("authority"),
		service.WithLookupTimeout(cfg.Directory.LookupTimeout))
	sessions := service.NewSessionService(authority, store, audit, cfg.Session.IdleTimeout, logger.Component("session"))

	e := api.NewRouter(api.Dependencies{
		Sessions: sessions,
		Tokens:   token.NewIssuer(cfg.JWTSecret, cfg.Session.MaxAge),
		Checks:   checks,
		Log:      logger.Component("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("directory", cfg.Directory.Backend).
			Str("session_store", cfg.Session.Store).
			Dur("idle_timeout", cfg.Session.IdleTimeout).
			Msg("exam-portal listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
