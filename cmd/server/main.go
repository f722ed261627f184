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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/iho/gocommission/internal/adapter/http"
	"github.com/iho/gocommission/internal/adapter/http/handler"
	"github.com/iho/gocommission/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/gocommission/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/gocommission/internal/adapter/repository/redis"
	"github.com/iho/gocommission/internal/infrastructure/config"
	"github.com/iho/gocommission/internal/infrastructure/eventpublisher"
	"github.com/iho/gocommission/internal/infrastructure/logger"
	"github.com/iho/gocommission/internal/infrastructure/metrics"
	"github.com/iho/gocommission/internal/infrastructure/postgres"
	"github.com/iho/gocommission/internal/infrastructure/redis"
	"github.com/iho/gocommission/internal/infrastructure/worker"
	"github.com/iho/gocommission/internal/usecase"
)

const limiterCleanupInterval = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "gocommission",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}

	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	if cfg.AutoMigrate {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	rates, err := config.LoadRateTable(cfg.CommissionRatesFile)
	if err != nil {
		return err
	}
	log.Info().Str("total_rate", rates.Total().String()).Msg("commission rates loaded")

	m := metrics.New(prometheus.DefaultRegisterer)

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	saleItemRepo := postgresRepo.NewSaleItemRepository(pool)
	beneficiaryRepo := postgresRepo.NewBeneficiaryRepository(pool)
	entryRepo := postgresRepo.NewLedgerEntryRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	receiptCache := redisRepo.NewReceiptCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	// Use cases
	commissionUC := usecase.NewCommissionUseCase(usecase.CommissionConfig{
		TxManager:     txManager,
		SaleItems:     saleItemRepo,
		Beneficiaries: beneficiaryRepo,
		Entries:       entryRepo,
		Outbox:        outboxRepo,
		IDGen:         postgresRepo.NewULIDGenerator(),
		Retrier:       postgresRepo.NewRetrier(log),
		Cache:         receiptCache,
		Metrics:       m,
		Rates:         rates,
		Logger:        log,
		TxTimeout:     cfg.TransactionTimeout,
		ReceiptTTL:    cfg.ReceiptCacheTTL,
	})
	batchUC := usecase.NewBatchUseCase(saleItemRepo, commissionUC, cfg.WorkerConcurrency, log)
	entryUC := usecase.NewEntryUseCase(entryRepo, saleItemRepo, beneficiaryRepo, receiptCache, log)
	ledgerUC := usecase.NewLedgerUseCase(ledgerRepo, saleItemRepo, entryRepo).WithObserver(m)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).WithHitCounter(m.RateLimitHits)

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		CommissionHandler: handler.NewCommissionHandler(commissionUC, batchUC),
		EntryHandler:      handler.NewEntryHandler(entryUC),
		LedgerHandler:     handler.NewLedgerHandler(ledgerUC),
		HealthHandler:     handler.NewHealthHandler(pool, redisPinger(redisClient)),
		Logger:            log,
		Metrics:           m,
		MetricsHandler:    promhttp.Handler(),
		RateLimiter:       rateLimiter,
		IdempotencyStore:  idempotencyStore,
		IdempotencyTTL:    cfg.IdempotencyTTL,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	publisher, err := newPublisher(cfg, log)
	if err != nil {
		return err
	}
	if c, ok := publisher.(io.Closer); ok {
		defer c.Close()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return eventpublisher.NewEventPublisher(eventpublisher.Config{
			OutboxRepo: outboxRepo,
			Publisher:  publisher,
			Observer:   m,
			Logger:     log,
			BatchSize:  cfg.OutboxBatchSize,
			Interval:   cfg.OutboxInterval,
			Retention:  cfg.OutboxRetention,
		}).Start(gctx)
	})

	if cfg.WorkerEnabled {
		g.Go(func() error {
			return worker.NewCommissionWorker(worker.Config{
				Processor: batchUC,
				Observer:  m,
				Logger:    log,
				BatchSize: cfg.WorkerBatchSize,
				Interval:  cfg.WorkerInterval,
			}).Start(gctx)
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(limiterCleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				rateLimiter.CleanupLimiters()
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

// newPublisher returns a Kafka publisher when brokers are configured and a
// logging publisher otherwise.
func newPublisher(cfg *config.Config, log zerolog.Logger) (eventpublisher.Publisher, error) {
	if len(cfg.KafkaBrokers) == 0 {
		log.Info().Msg("no kafka brokers configured, outbox events will be logged")
		return eventpublisher.NewLogPublisher(log), nil
	}

	p, err := eventpublisher.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	if err != nil {
		return nil, fmt.Errorf("kafka publisher: %w", err)
	}

	log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("publishing outbox events to kafka")

	return p, nil
}

func redisPinger(client *goredis.Client) handler.Pinger {
	return handler.PingerFunc(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
}
