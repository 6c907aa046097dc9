package main

import (
	"errors"
	"log"
	"time"

	"github.com/matrix-org/postguard/config"
	"github.com/matrix-org/postguard/pubsub"
	"github.com/matrix-org/postguard/storage"
)

// setupDataHandlers - Connects to Postgres when it holds the keywords. Both return values are nil otherwise.
func setupDataHandlers(instanceConfig *config.InstanceConfig) (storage.PersistentStorage, pubsub.Client, error) {
	if instanceConfig.KeywordSource != config.KeywordSourcePostgres {
		log.Printf("Keywords are read from %s; not connecting to Postgres", instanceConfig.KeywordsFile)
		return nil, nil, nil
	}

	dbConfig := &storage.PostgresStorageConfig{
		RWDatabase: &storage.PostgresStorageConnectionConfig{
			Uri:          instanceConfig.Database,
			MaxOpenConns: instanceConfig.DatabaseMaxOpenConns,
			MaxIdleConns: instanceConfig.DatabaseMaxIdleConns,
		},
		MigrationsPath: instanceConfig.DatabaseMigrationsDir,
	}
	psqlDb, err := storage.NewPostgresStorage(dbConfig)
	if err != nil {
		return nil, nil, errors.Join(errors.New("NewPostgresStorage: failed create"), err)
	}
	pubsubConfig := &pubsub.PostgresPubsubConnectionConfig{
		Uri:                  instanceConfig.Database,
		MinReconnectInterval: 100 * time.Millisecond,
		MaxReconnectInterval: 5 * time.Second,
	}
	psqlPubsub, err := pubsub.NewPostgresPubsub(psqlDb, pubsubConfig)
	if err != nil {
		return nil, nil, errors.Join(errors.New("NewPostgresPubsub: failed create"), err)
	}
	return psqlDb, psqlPubsub, nil
}

// setupNats - Connects to NATS for publishing flagged verdicts. Returns nil if no NATS URL is configured.
func setupNats(instanceConfig *config.InstanceConfig) (pubsub.Client, error) {
	if instanceConfig.NatsUrl == "" {
		log.Println("No NATS URL configured; flagged verdicts will not be published")
		return nil, nil
	}
	return pubsub.NewNatsPubsub(&pubsub.NatsConnectionConfig{
		Url:           instanceConfig.NatsUrl,
		Name:          instanceConfig.NatsName,
		ReconnectWait: 2 * time.Second,
		MaxReconnects: -1, // infinite reconnects
	})
}
