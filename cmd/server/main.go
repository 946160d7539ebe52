package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"credgate/internal/audit"
	identityService "credgate/internal/identity/service"
	identityStore "credgate/internal/identity/store"
	jwttoken "credgate/internal/jwt_token"
	"credgate/internal/ledger"
	"credgate/internal/platform/config"
	"credgate/internal/platform/database"
	"credgate/internal/platform/health"
	"credgate/internal/platform/httpserver"
	"credgate/internal/platform/kafka/producer"
	"credgate/internal/platform/logger"
	"credgate/internal/platform/metrics"
	"credgate/internal/platform/redis"
	"credgate/internal/scancode"
	httptransport "credgate/internal/transport/http"
	"credgate/internal/trust"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing credgate",
		"addr", cfg.Addr,
		"public_origin", cfg.PublicOrigin,
	)

	m := metrics.New()
	healthHandler := health.New()

	// Identity persistence: postgres when configured, in-process otherwise.
	var idStore identityService.Store = identityStore.NewInMemory()
	dbCfg := database.DefaultConfig()
	dbCfg.URL = cfg.DatabaseURL
	pool, err := database.New(dbCfg)
	if err != nil {
		log.Error("database init failed", "error", err)
		os.Exit(1)
	}
	if pool != nil {
		idStore = identityStore.NewPostgres(pool.DB())
		healthHandler.RegisterCheck("database", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Health(ctx)
		})
		defer pool.Close()
	}

	// Audit sink: kafka when brokers are configured, in-process otherwise.
	var auditSink audit.Store = audit.NewInMemoryStore()
	if cfg.KafkaBrokers != "" {
		kafkaCfg := producer.DefaultConfig()
		kafkaCfg.Brokers = cfg.KafkaBrokers
		kafkaProducer, err := producer.New(kafkaCfg, log)
		if err != nil {
			log.Error("kafka init failed", "error", err)
			os.Exit(1)
		}
		auditSink = audit.NewKafkaStore(kafkaProducer, "")
		defer kafkaProducer.Close()
	}
	auditPublisher := audit.NewPublisher(auditSink,
		audit.WithAsyncBuffer(256),
		audit.WithPublisherLogger(log),
	)
	defer auditPublisher.Close()

	tokens := jwttoken.New(cfg.JWTSigningKey, "credgate", cfg.TokenTTL,
		jwttoken.WithLogger(log),
	)

	identities := identityService.NewService(idStore, tokens,
		identityService.WithLogger(log),
		identityService.WithAuditPublisher(auditPublisher),
		identityService.WithMetrics(m),
	)

	// Ledger gateway: remote when configured, seeded in-process otherwise so
	// the full pipeline works in local development.
	var gateway ledger.Gateway
	if cfg.LedgerBaseURL != "" {
		gateway = ledger.NewHTTPClient(cfg.LedgerBaseURL)
	} else {
		log.Warn("LEDGER_BASE_URL not set, using in-process ledger fixture")
		gateway = devLedger()
	}

	trustSvc := trust.NewService(gateway, cfg.PublicOrigin,
		trust.WithLogger(log),
		trust.WithAuditPublisher(auditPublisher),
		trust.WithMetrics(m),
	)

	scancodeOpts := []scancode.Option{
		scancode.WithLogger(log),
		scancode.WithMetrics(m),
	}
	redisClient, err := redis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis init failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		scancodeOpts = append(scancodeOpts, scancode.WithCache(scancode.NewRedisCache(redisClient), cfg.ScanCacheTTL))
		healthHandler.RegisterCheck("redis", func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Health(ctx)
		})
		defer redisClient.Close()
	}
	scancodes := scancode.NewService(scancode.NewQRRenderer(), cfg.PublicOrigin, scancodeOpts...)

	handler := httptransport.NewHandler(identities, trustSvc, scancodes, tokens.TTL(), log)
	router := httptransport.NewRouter(handler, tokens, healthHandler, log)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}

// devLedger seeds a small in-process ledger for local development.
func devLedger() *ledger.InMemoryClient {
	client := ledger.NewInMemoryClient()
	issued := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	client.Put(ledger.CredentialRecord{
		ID:       "cred-42",
		Title:    "BSc Computer Science",
		HolderID: "student-123",
		IssuerID: "university-456",
		IssuedAt: issued,
		Owner:    "student-123",
	}, &ledger.ProvenanceTrace{
		CredentialID: "cred-42",
		CreatedAt:    issued,
		CreatorID:    "university-456",
		Transactions: []ledger.Transaction{
			{TxID: "tx-1", Timestamp: issued, Action: ledger.TxCreate, BlockHeight: 100},
			{TxID: "tx-2", Timestamp: issued.Add(time.Hour), Action: ledger.TxAssign, Recipient: "student-123", BlockHeight: 101},
		},
		CurrentOwner: "student-123",
		Valid:        true,
	})
	return client
}
