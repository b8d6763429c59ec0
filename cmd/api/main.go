// @title                       Biblioteca Loan API
// @version                     1.0
// @description                 Catalog, borrower and loan ledger API for the library.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/biblioteca/loan-system/internal/api"
	"github.com/biblioteca/loan-system/internal/api/handler"
	"github.com/biblioteca/loan-system/internal/core/service"
	mongodb "github.com/biblioteca/loan-system/internal/infrastructure/db/mongo"
	redisdb "github.com/biblioteca/loan-system/internal/infrastructure/db/redis"
	"github.com/biblioteca/loan-system/internal/infrastructure/queue"
	"github.com/biblioteca/loan-system/internal/infrastructure/security"
	"github.com/biblioteca/loan-system/internal/pkg/config"
	"github.com/biblioteca/loan-system/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Init(logger.Options{Service: "library-api"})
		boot.Fatal().Err(err).Msg("load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "library-api",
	})

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("connect mongodb")
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = client.Disconnect(dctx)
	}()
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("ensure mongodb indexes")
	}

	readiness := []handler.DependencyCheck{handler.MongoCheck(db)}
	hasher := security.NewBcryptHasher(0)

	books := mongodb.NewBookRepository(db)
	users := mongodb.NewUserRepository(db)
	loans := mongodb.NewLoanRepository(db)
	tx := mongodb.NewTransactor(client, cfg.Mongo.Transactions)

	var sink queue.Sink = queue.NewLogSink(logger.Component("loan-events"))
	if cfg.RabbitMQ.URL != "" {
		amqpSink := queue.NewAMQPSink(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue)
		defer amqpSink.Close()
		sink = amqpSink
	}
	dispatcher := queue.NewDispatcher(cfg.RabbitMQ.Workers, sink, logger.Component("dispatcher"))
	dispatcher.Start(context.WithoutCancel(ctx))

	ledgerOpts := []service.LedgerOption{service.WithEventPublisher(dispatcher)}
	if cfg.Redis.Addr != "" {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("connect redis")
		}
		defer rdb.Close()
		ledgerOpts = append(ledgerOpts, service.WithIdempotencyStore(redisdb.NewIdempotencyStore(rdb, 0)))
		readiness = append(readiness, handler.RedisCheck(rdb))
	} else {
		log.Warn().Msg("REDIS_ADDR not set, Idempotency-Key replay disabled")
	}

	e := api.NewRouter(api.Deps{
		Auth:        service.NewAuthService(users, hasher, cfg.JWTSecret, cfg.TokenTTL),
		Catalog:     service.NewCatalogService(books, logger.Component("catalog")),
		Ledger:      service.NewLedgerService(books, users, loans, tx, logger.Component("ledger"), ledgerOpts...),
		Users:       service.NewUserService(users, hasher, logger.Component("users")),
		Readiness:   readiness,
		JWTSecret:   cfg.JWTSecret,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      logger.Component("http"),
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}
	// Loans committed before shutdown still get their events delivered.
	dispatcher.Close()
}
