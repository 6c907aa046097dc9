package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/matrix-org/postguard/audit"
	"github.com/matrix-org/postguard/config"
	"github.com/matrix-org/postguard/enhance"
	"github.com/matrix-org/postguard/keywords"
	_ "github.com/matrix-org/postguard/logging"
	"github.com/matrix-org/postguard/pubsub"
	"github.com/matrix-org/postguard/queue"
	"github.com/matrix-org/postguard/session"
	"github.com/matrix-org/postguard/storage"
	"github.com/matrix-org/postguard/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	log.Println("Starting postguard moderation worker...")

	instanceConfig, err := config.NewInstanceConfig()
	if err != nil {
		log.Fatal(err)
	}
	if instanceConfig.NatsUrl == "" {
		log.Fatal("PG_NATS_URL is required for the moderation worker")
	}

	natsClient, err := pubsub.NewNatsPubsub(&pubsub.NatsConnectionConfig{
		Url:           instanceConfig.NatsUrl,
		Name:          instanceConfig.NatsName + "-moderator",
		ReconnectWait: 2 * time.Second,
		MaxReconnects: -1, // infinite reconnects
	})
	if err != nil {
		log.Fatalf("failed to connect to NATS: %v", err)
	}

	var db storage.PersistentStorage
	var keywordPubsub pubsub.Client
	if instanceConfig.KeywordSource == config.KeywordSourcePostgres {
		psqlDb, err := storage.NewPostgresStorage(&storage.PostgresStorageConfig{
			RWDatabase: &storage.PostgresStorageConnectionConfig{
				Uri:          instanceConfig.Database,
				MaxOpenConns: instanceConfig.DatabaseMaxOpenConns,
				MaxIdleConns: instanceConfig.DatabaseMaxIdleConns,
			},
			MigrationsPath: instanceConfig.DatabaseMigrationsDir,
		})
		if err != nil {
			log.Fatal(err)
		}
		defer psqlDb.Close()
		psqlPubsub, err := pubsub.NewPostgresPubsub(psqlDb, &pubsub.PostgresPubsubConnectionConfig{
			Uri:                  instanceConfig.Database,
			MinReconnectInterval: 100 * time.Millisecond,
			MaxReconnectInterval: 5 * time.Second,
		})
		if err != nil {
			log.Fatal(err)
		}
		defer psqlPubsub.Close()
		db, keywordPubsub = psqlDb, psqlPubsub
	}

	manager, err := keywords.NewManager(instanceConfig, db, keywordPubsub)
	if err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	sessions, err := session.NewStore(ctx, instanceConfig)
	cancel()
	if err != nil {
		log.Fatal(err)
	}
	defer sessions.Close()

	auditQueue, err := audit.NewQueue(instanceConfig.WebhookPoolSize)
	if err != nil {
		log.Fatal(err)
	}

	pool, err := queue.NewPool(&queue.PoolConfig{
		ConcurrentPools: instanceConfig.ProcessingPools,
		SizePerPool:     instanceConfig.ProcessingPoolSize,
		MaxTextLength:   instanceConfig.MaxTextLength,
	}, manager, enhance.NewDefault(instanceConfig.LinkDenyList), sessions, natsClient, audit.NewPublisher(instanceConfig, auditQueue))
	if err != nil {
		log.Fatal(err)
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{Addr: instanceConfig.MetricsBind, Handler: metricsMux}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	runCtx, stopRunning := context.WithCancel(context.Background())
	w := worker.NewWorker(pool, natsClient, time.Duration(instanceConfig.CheckTimeoutSeconds)*time.Second)
	go func() {
		if err := w.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatalf("worker stopped: %v", err)
		}
	}()

	log.Printf("postguard moderation worker running")
	log.Printf("  nats_url:       %s", instanceConfig.NatsUrl)
	log.Printf("  keyword_source: %s", instanceConfig.KeywordSource)
	log.Printf("  session_store:  %s", instanceConfig.SessionBackend)

	// Graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Printf("received signal %v, shutting down...", sig)

	stopRunning()
	if err = pool.Close(4 * time.Second); err != nil {
		log.Printf("Failed to drain check pool: %v", err)
	}
	if err = auditQueue.Release(4 * time.Second); err != nil {
		log.Printf("Failed to drain audit queue: %v", err)
	}
	if err = natsClient.Close(); err != nil {
		log.Printf("Failed to close NATS: %v", err)
	}
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 4*time.Second)
	defer cancelShutdown()
	_ = metricsServer.Shutdown(shutdownCtx)
}
