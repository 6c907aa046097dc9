package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/matrix-org/postguard/audit"
	"github.com/matrix-org/postguard/config"
	"github.com/matrix-org/postguard/keywords"
	"github.com/matrix-org/postguard/logging" // import this for side effects if this isn't needed directly anymore
	"github.com/matrix-org/postguard/session"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	instanceConfig, err := config.NewInstanceConfig()
	if err != nil {
		log.Fatal(err)
	}

	// Start pprof early if configured so startup can be debugged (if needed)
	if instanceConfig.PprofBind != "" {
		go func() {
			// pprof binds itself to the default HTTP server, so we just have to start that server.
			log.Println("Starting pprof server on", instanceConfig.PprofBind)
			log.Fatal(http.ListenAndServe(instanceConfig.PprofBind, nil))
		}()
	}

	// Both are nil unless the keywords live in Postgres
	db, keywordPubsub, err := setupDataHandlers(instanceConfig)
	if err != nil {
		log.Fatal(err)
	}
	if db != nil {
		defer db.Close()
		defer keywordPubsub.Close()
	}

	natsClient, err := setupNats(instanceConfig)
	if err != nil {
		log.Fatal(err)
	}
	if natsClient != nil {
		defer natsClient.Close()
	}

	manager, err := keywords.NewManager(instanceConfig, db, keywordPubsub)
	if err != nil {
		log.Fatal(err)
	}

	sessionCtx, sessionCancel := context.WithTimeout(context.Background(), 30*time.Second)
	sessions, err := session.NewStore(sessionCtx, instanceConfig)
	sessionCancel()
	if err != nil {
		log.Fatal(err)
	}
	defer sessions.Close()

	auditQueue, err := audit.NewQueue(instanceConfig.WebhookPoolSize)
	if err != nil {
		log.Fatal(err)
	}
	auditPublisher := audit.NewPublisher(instanceConfig, auditQueue)

	pool, err := setupQueue(instanceConfig, manager, sessions, natsClient, auditPublisher)
	if err != nil {
		log.Fatal(err)
	}

	api, err := setupApi(instanceConfig, pool, sessions, manager)
	if err != nil {
		log.Fatal(err) // "should never happen"
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())

	appMux := http.NewServeMux()
	if err = api.BindTo(appMux); err != nil {
		log.Fatal(err)
	}

	metricsServer := &http.Server{Addr: instanceConfig.MetricsBind, Handler: metricsMux}
	appServer := &http.Server{Addr: instanceConfig.HttpBind, Handler: appMux}

	var wg sync.WaitGroup
	stopping := false
	startServer := func(server *http.Server) {
		log.Println("Listening on", server.Addr)
		err := server.ListenAndServe()
		if err != nil && (!stopping && !errors.Is(err, http.ErrServerClosed)) {
			log.Fatal(err)
		}
	}
	stopServer := func(server *http.Server, ctx context.Context) {
		defer wg.Done()
		err := server.Shutdown(ctx)
		if err != nil {
			log.Fatal(err)
		}
	}
	wg.Add(2) // 1 for each server
	go startServer(metricsServer)
	go startServer(appServer)

	// Schedule tasks now that we're mostly started up
	scheduler, err := gocron.NewScheduler(gocron.WithLogger(&logging.CronLogger{}))
	if err != nil {
		log.Fatal(err)
	}
	scheduler.Start() // start immediately so we can force jobs to run immediately too
	err = setupScheduler(scheduler, sessions, manager, instanceConfig)
	if err != nil {
		log.Fatal(err)
	}

	// Wait for a stop signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer close(stop)
	<-stop
	stopping = true

	log.Println("Stopping...")
	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Second)
	defer cancel()
	if err = scheduler.StopJobs(); err != nil {
		log.Printf("Failed to stop scheduler: %v", err)
	}
	go stopServer(metricsServer, ctx)
	go stopServer(appServer, ctx)
	wg.Wait()

	if err = pool.Close(4 * time.Second); err != nil {
		log.Printf("Failed to drain check pool: %v", err)
	}
	if err = auditQueue.Release(4 * time.Second); err != nil {
		log.Printf("Failed to drain audit queue: %v", err)
	}
}
