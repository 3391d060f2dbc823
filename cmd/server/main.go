// main wires the discovery judging engine: stores, the domain quality
// tracker, the batch pipeline, the Kafka ingest consumer, and the admin HTTP
// API. Business logic lives in the internal service packages.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	adminhandler "northstar/internal/admin/handler"
	dqcache "northstar/internal/domainquality/cache"
	dqmetrics "northstar/internal/domainquality/metrics"
	dqservice "northstar/internal/domainquality/service"
	domainstore "northstar/internal/domainquality/store/domain"
	"northstar/internal/ingest"
	judgingmetrics "northstar/internal/judging/metrics"
	"northstar/internal/judging/ports"
	judgingservice "northstar/internal/judging/service"
	candidatestore "northstar/internal/judging/store/candidate"
	judgmentstore "northstar/internal/judging/store/judgment"
	"northstar/internal/platform/config"
	"northstar/internal/platform/httpserver"
	"northstar/internal/platform/kafka/consumer"
	"northstar/internal/platform/logger"
	"northstar/internal/platform/postgres"
	platformredis "northstar/internal/platform/redis"
	httptransport "northstar/internal/transport/http"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	db, err := postgres.Open(cfg.Postgres)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	} else {
		log.Warn("no postgres configured, using in-memory stores")
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	domains, judgments, candidates := buildStores(db)

	trackerOpts := []dqservice.Option{
		dqservice.WithLogger(log),
		dqservice.WithMetrics(dqmetrics.New()),
	}
	if redisClient != nil {
		trackerOpts = append(trackerOpts,
			dqservice.WithBlacklistCache(dqcache.New(redisClient, dqcache.WithLogger(log))))
	}
	tracker, err := dqservice.New(domains, trackerOpts...)
	if err != nil {
		log.Error("tracker init failed", "error", err)
		os.Exit(1)
	}

	processorOpts := []judgingservice.Option{
		judgingservice.WithLogger(log),
		judgingservice.WithMetrics(judgingmetrics.New()),
		judgingservice.WithWorkers(cfg.ProcessingWorkers),
	}
	if db != nil {
		processorOpts = append(processorOpts, judgingservice.WithUnitOfWork(db))
	}
	processor, err := judgingservice.New(tracker, judgments, candidates, processorOpts...)
	if err != nil {
		log.Error("processor init failed", "error", err)
		os.Exit(1)
	}

	admin := adminhandler.New(tracker, judgments, candidates, log)
	router := httptransport.NewRouter(httptransport.Deps{
		Admin:  admin,
		DB:     db,
		Redis:  redisClient,
		Logger: log,
	})
	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var ingestConsumer *consumer.Consumer
	if len(cfg.Kafka.Brokers) > 0 {
		ingestHandler, err := ingest.NewHandler(processor, log)
		if err != nil {
			log.Error("ingest handler init failed", "error", err)
			os.Exit(1)
		}
		ingestConsumer, err = consumer.New(cfg.Kafka, ingestHandler, log)
		if err != nil {
			log.Error("kafka consumer init failed", "error", err)
			os.Exit(1)
		}
		go func() {
			if err := ingestConsumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("kafka consumer stopped", "error", err)
			}
		}()
		log.Info("ingest consumer started",
			"topic", cfg.Kafka.ResultsTopic, "group", cfg.Kafka.GroupID)
	} else {
		log.Warn("no kafka brokers configured, ingest consumer disabled")
	}

	go func() {
		log.Info("starting northstar", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	if ingestConsumer != nil {
		ingestConsumer.Close()
	}
}

// buildStores picks Postgres-backed stores when a database is configured and
// in-memory stores otherwise.
func buildStores(db *sql.DB) (dqservice.Store, ports.JudgmentStore, ports.CandidateStore) {
	if db != nil {
		return domainstore.NewPostgresStore(db),
			judgmentstore.NewPostgresStore(db),
			candidatestore.NewPostgresStore(db)
	}
	return domainstore.NewMemoryStore(),
		judgmentstore.NewMemoryStore(),
		candidatestore.NewMemoryStore()
}
