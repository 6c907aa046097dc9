package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/matrix-org/postguard/config"
	"github.com/matrix-org/postguard/keywords"
	"github.com/matrix-org/postguard/pubsub"
	"github.com/matrix-org/postguard/storage"
	"github.com/spf13/cobra"
)

// loadConfig - Reads the instance config, applying the --keywords override.
func loadConfig(cmd *cobra.Command) (*config.InstanceConfig, error) {
	cnf, err := config.NewInstanceConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if path, _ := cmd.Flags().GetString("keywords"); path != "" {
		cnf.KeywordSource = config.KeywordSourceFile
		cnf.KeywordsFile = path
	}
	return cnf, nil
}

// connectStorage - Opens Postgres and its notification channel. The returned func closes both.
func connectStorage(cnf *config.InstanceConfig) (*storage.PostgresStorage, pubsub.Client, func(), error) {
	db, err := storage.NewPostgresStorage(&storage.PostgresStorageConfig{
		RWDatabase: &storage.PostgresStorageConnectionConfig{
			Uri:          cnf.Database,
			MaxOpenConns: cnf.DatabaseMaxOpenConns,
			MaxIdleConns: cnf.DatabaseMaxIdleConns,
		},
		MigrationsPath: cnf.DatabaseMigrationsDir,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	ps, err := pubsub.NewPostgresPubsub(db, &pubsub.PostgresPubsubConnectionConfig{
		Uri:                  cnf.Database,
		MinReconnectInterval: 100 * time.Millisecond,
		MaxReconnectInterval: 5 * time.Second,
	})
	if err != nil {
		_ = db.Close()
		return nil, nil, nil, fmt.Errorf("connect to database notifications: %w", err)
	}
	return db, ps, func() {
		_ = ps.Close()
		_ = db.Close()
	}, nil
}

// loadManager - Loads keywords from whichever source is configured. The returned func releases any connections.
func loadManager(cnf *config.InstanceConfig) (*keywords.Manager, func(), error) {
	if cnf.KeywordSource != config.KeywordSourcePostgres {
		m, err := keywords.NewManager(cnf, nil, nil)
		return m, func() {}, err
	}

	db, _, closeFn, err := connectStorage(cnf)
	if err != nil {
		return nil, nil, err
	}
	// No reload subscription: a CLI run is too short to care
	m, err := keywords.NewManager(cnf, db, nil)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return m, closeFn, nil
}

// readText - The joined args, or stdin when there are none.
func readText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	b, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", errors.Join(errors.New("reading stdin"), err)
	}
	return strings.TrimRight(string(b), "\r\n"), nil
}
