package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"transaction-orchestrator/config"
	httpHandler "transaction-orchestrator/internal/adapter/http/handler"
	"transaction-orchestrator/internal/adapter/http/dto"
	"transaction-orchestrator/internal/adapter/http/middleware"
	"transaction-orchestrator/internal/adapter/messaging/kafka"
	"transaction-orchestrator/internal/adapter/settlement"
	pgStorage "transaction-orchestrator/internal/adapter/storage/postgres"
	redisStorage "transaction-orchestrator/internal/adapter/storage/redis"
	"transaction-orchestrator/internal/core/domain"
	"transaction-orchestrator/internal/core/ports"
	"transaction-orchestrator/internal/service"
	"transaction-orchestrator/pkg/logger"
	"transaction-orchestrator/pkg/telemetry"

	"github.com/alecthomas/kingpin/v2"
	"github.com/rs/zerolog"
	"github.com/twmb/franz-go/plugin/kprom"
	"golang.org/x/sync/errgroup"
)

const serviceName = "transaction-orchestrator"

var version = "dev"

func main() {
	app := kingpin.New(serviceName, "Turns payment and refund events into ledger rows and settlement notifications.")
	app.Version(version)
	configPath := app.Flag("config", "Path to the application config file").Short('c').Default("").String()

	serveCmd := app.Command("serve", "Consume events and serve the ops API.").Default()

	tokenCmd := app.Command("token", "Issue an ops API bearer token.")
	tokenClient := tokenCmd.Flag("client-id", "Reporting client the token is issued to").Required().String()

	lettersCmd := app.Command("dead-letters", "Print parked inbound records, newest first.")
	lettersLimit := lettersCmd.Flag("limit", "Maximum number of records").Default("20").Int64()

	cmd := kingpin.MustParse(app.Parse(os.Args[1:]))

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(serviceName, cfg.Log.Level, cfg.Log.Pretty)

	switch cmd {
	case serveCmd.FullCommand():
		err = serve(cfg, log)
	case tokenCmd.FullCommand():
		err = issueToken(cfg, *tokenClient)
	case lettersCmd.FullCommand():
		err = printDeadLetters(cfg, *lettersLimit, log)
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", cmd).Msg("command failed")
	}
}

func serve(cfg *config.Config, log zerolog.Logger) error {
	log.Info().
		Str("version", version).
		Str("emission_mode", cfg.Emission.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Transaction Orchestrator")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Tracing, version)
	if err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			log.Warn().Err(err).Msg("tracer shutdown failed")
		}
	}()

	// PostgreSQL
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	if err := pgStorage.Migrate(ctx, pool, log); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	// Redis
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer rdb.Close()

	// Kafka
	metrics := kprom.NewMetrics(cfg.Kafka.MetricsNamespace)
	channels := map[string]domain.Channel{
		cfg.Kafka.Topic(string(domain.ChannelPaymentCreated)): domain.ChannelPaymentCreated,
		cfg.Kafka.Topic(string(domain.ChannelRefundCreated)):  domain.ChannelRefundCreated,
	}
	topics := make([]string, 0, len(channels))
	for topic := range channels {
		topics = append(topics, topic)
	}

	producerClient, err := kafka.NewProducerClient(cfg.Kafka, metrics, log)
	if err != nil {
		return err
	}
	defer producerClient.Close()

	consumerClient, err := kafka.NewConsumerClient(cfg.Kafka, topics, metrics, log)
	if err != nil {
		return err
	}

	cardCipher, err := service.NewAESEncryptionService(cfg.CardData.EncryptionKey)
	if err != nil {
		return fmt.Errorf("card data cipher: %w", err)
	}

	// Repositories
	txRepo := pgStorage.NewTransactionRepo(pool, cardCipher)
	processedRepo := pgStorage.NewProcessedEventRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	var dedupCache ports.DedupCache
	if cfg.Dedup.CacheEnabled {
		dedupCache = redisStorage.NewDedupCache(rdb)
	}
	var dlq ports.DeadLetterQueue
	if cfg.DeadLetter.Enabled {
		dlq = redisStorage.NewDeadLetterQueue(rdb, cfg.DeadLetter.List, log)
	}

	// Services
	publisher := kafka.NewPublisher(producerClient, cfg.Kafka.Topic, cfg.Kafka.EventSource, log)
	ledger := service.NewDeduplicationLedger(processedRepo, dedupCache, cfg.Dedup.CacheTTL, log)

	var outboxRepo ports.OutboxRepository
	if cfg.Emission.Mode == config.EmissionModeOutbox {
		outboxRepo = pgStorage.NewOutboxRepo()
	}
	router := service.NewEmissionRouter(transactor, publisher, outboxRepo, log)

	gateway := settlement.NewPSPClient(cfg.Settlement, nil, log)
	orchestrator := service.NewOrchestrator(ledger, router, txRepo, gateway, cfg.Settlement.RefundsAutoApprove, log)

	consumer := kafka.NewConsumer(consumerClient, orchestrator, dlq, kafka.ConsumerConfig{
		RecordsPerPoll:  cfg.Kafka.RecordsPerPoll,
		MaxRedeliveries: cfg.Kafka.MaxRedeliveries,
		Channels:        channels,
	}, log)

	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	reportingSvc := service.NewReportingService(txRepo)
	rateLimiter := middleware.NewClientRateLimiter(cfg.Server.RateLimit, cfg.Server.RateLimitBurst)

	engine := httpHandler.SetupRouter(httpHandler.RouterDeps{
		ReportingSvc: reportingSvc,
		TokenSvc:     tokenSvc,
		HealthCheckers: []ports.HealthChecker{
			pgStorage.NewHealthCheck(pool),
			redisStorage.NewHealthCheck(rdb),
			kafka.NewHealthCheck(producerClient),
		},
		Metrics:     metrics.Handler(),
		RateLimiter: rateLimiter,
		Logger:      log,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return consumer.Poll(gctx)
	})

	if outboxRepo != nil {
		relay := service.NewOutboxRelay(transactor, outboxRepo, publisher, cfg.Emission.RelayInterval, cfg.Emission.RelayBatchSize, log)
		g.Go(func() error {
			return relay.Run(gctx)
		})
	}

	g.Go(func() error {
		return rateLimiter.Run(gctx)
	})

	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Msg("Transaction Orchestrator stopped")
	return nil
}

func issueToken(cfg *config.Config, clientID string) error {
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	token, expiresAt, err := tokenSvc.Generate(clientID)
	if err != nil {
		return err
	}
	return json.NewEncoder(os.Stdout).Encode(dto.TokenResponse{
		Token:    token,
		ClientID: clientID,
		Expiry:   expiresAt.Unix(),
	})
}

func printDeadLetters(cfg *config.Config, limit int64, log zerolog.Logger) error {
	ctx := context.Background()
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		return err
	}
	defer rdb.Close()

	letters, err := redisStorage.NewDeadLetterQueue(rdb, cfg.DeadLetter.List, log).List(ctx, limit)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(letters)
}
