package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"gemreg/internal/access"
	"gemreg/internal/audit"
	"gemreg/internal/compliance"
	"gemreg/internal/jwt"
	"gemreg/internal/ledger"
	"gemreg/internal/lifecycle"
	lifecyclemetrics "gemreg/internal/lifecycle/metrics"
	"gemreg/internal/platform/config"
	"gemreg/internal/platform/httpserver"
	"gemreg/internal/platform/kafka"
	"gemreg/internal/platform/logger"
	"gemreg/internal/platform/metrics"
	"gemreg/internal/platform/postgres"
	"gemreg/internal/platform/redis"
	"gemreg/internal/registry"
	registrymem "gemreg/internal/registry/store/memory"
	registrypg "gemreg/internal/registry/store/postgres"
	httptransport "gemreg/internal/transport/http"
	"gemreg/pkg/domain"
)

// main wires the dependency graph and keeps the server lifecycle small.
// Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	deployer, err := domain.ParseAddress(cfg.Registry.Deployer)
	if err != nil {
		log.Error("GEMREG_DEPLOYER must be set to the bootstrap address", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Audit sink: Kafka when brokers are configured, in-memory otherwise.
	var auditStore audit.Store
	producer, err := kafka.NewProducer(ctx, kafka.Config(cfg.Kafka))
	if err != nil {
		log.Error("kafka setup failed", "error", err)
		os.Exit(1)
	}
	if producer != nil {
		defer producer.Close()
		auditStore = audit.NewKafkaStore(producer)
		log.Info("audit events go to kafka", "topic", cfg.Kafka.Topic)
	} else {
		auditStore = audit.NewInMemoryStore()
		log.Info("audit events stay in memory; set GEMREG_KAFKA_BROKERS for a durable trail")
	}
	publisher := audit.NewPublisher(auditStore,
		audit.WithAsyncBuffer(256),
		audit.WithLogger(log),
	)
	defer publisher.Close()

	// Role store and bootstrap. The deployer receives every role.
	roleStore := access.NewInMemoryStore()
	accessSvc := access.NewService(roleStore,
		access.WithAuditPublisher(publisher),
		access.WithLogger(log),
	)
	if err := accessSvc.Bootstrap(ctx, deployer); err != nil {
		log.Error("role bootstrap failed", "error", err)
		os.Exit(1)
	}

	// Compliance oracle: Redis sets when configured, in-memory otherwise.
	var oracle compliance.Oracle
	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		log.Error("redis setup failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		oracle = compliance.NewRedisOracle(redisClient.Client, cfg.Redis.AllowKey, cfg.Redis.DenyKey)
		log.Info("compliance oracle backed by redis")
	} else {
		oracle = compliance.NewMemoryOracle()
		log.Warn("compliance oracle is in-memory and starts empty; set GEMREG_REDIS_URL in production")
	}
	gate := compliance.NewGate(oracle, roleStore,
		compliance.WithEnforcement(cfg.Registry.EnforceAllowList),
		compliance.WithAuditPublisher(publisher),
		compliance.WithLogger(log),
	)

	// Attribute store: Postgres when configured, in-memory otherwise.
	var attrStore registry.AttributeStore
	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		log.Error("postgres setup failed", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
		if _, err := db.ExecContext(ctx, registrypg.Schema); err != nil {
			log.Error("schema migration failed", "error", err)
			os.Exit(1)
		}
		attrStore = registrypg.New(db)
		log.Info("attribute store backed by postgres")
	} else {
		attrStore = registrymem.New()
		log.Warn("attribute store is in-memory; records do not survive restarts")
	}

	lifecycleSvc := lifecycle.New(roleStore, gate, attrStore, ledger.NewInMemoryLedger(),
		lifecycle.WithAuditPublisher(publisher),
		lifecycle.WithMetrics(lifecyclemetrics.New()),
		lifecycle.WithLogger(log),
	)

	tokens := jwt.NewService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer, cfg.Server.JWTAudience)
	var handlerOpts []httptransport.HandlerOption
	if redisClient != nil {
		handlerOpts = append(handlerOpts, httptransport.WithOracleFactory(
			func(allowKey, denyKey string) (compliance.Oracle, error) {
				return compliance.NewRedisOracle(redisClient.Client, allowKey, denyKey), nil
			}))
	}
	handler := httptransport.NewHandler(lifecycleSvc, accessSvc, gate, log, handlerOpts...)
	router := httptransport.NewRouter(handler, tokens, metrics.New())

	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting gemreg", "addr", cfg.Server.Addr, "enforcement", gate.Active())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("gemreg stopped")
}
