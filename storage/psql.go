package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"slices"

	"github.com/DavidHuie/gomigrate"
	"github.com/lib/pq"
	"github.com/matrix-org/postguard/config"
	"github.com/matrix-org/postguard/metrics/dbmetrics"
)

type PostgresStorageConnectionConfig struct {
	Uri          string
	MaxOpenConns int
	MaxIdleConns int
}

type PostgresStorageConfig struct {
	// Read/Write Database connection config
	RWDatabase *PostgresStorageConnectionConfig
	// Readonly Database connection config. If nil, the RW database will be used for RO operations
	RODatabase *PostgresStorageConnectionConfig
	// File path to the directory containing migrations
	MigrationsPath string
}

type PostgresStorage struct {
	db         *sql.DB
	readonlyDb *sql.DB

	keywordListSelectAll *sql.Stmt
	keywordListSelect    *sql.Stmt
	keywordListUpsert    *sql.Stmt

	//keywordListDeleteAll *sql.Stmt // We do the replace manually to enter a transaction instead
}

func NewPostgresStorage(config *PostgresStorageConfig) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", config.RWDatabase.Uri)
	if err != nil {
		return nil, errors.Join(errors.New("failed to open read/write database"), err)
	}
	db.SetMaxOpenConns(config.RWDatabase.MaxOpenConns)
	db.SetMaxIdleConns(config.RWDatabase.MaxIdleConns)

	readonlyDb := db
	if config.RODatabase != nil {
		readonlyDb, err = sql.Open("postgres", config.RODatabase.Uri)
		if err != nil {
			return nil, errors.Join(errors.New("failed to open read-only database"), err)
		}
		readonlyDb.SetMaxOpenConns(config.RODatabase.MaxOpenConns)
		readonlyDb.SetMaxIdleConns(config.RODatabase.MaxIdleConns)
	}

	s := &PostgresStorage{
		db:         db,
		readonlyDb: readonlyDb,
	}
	if err = s.prepare(config.MigrationsPath); err != nil {
		return nil, errors.Join(fmt.Errorf("failed to run migrations with path '%s'", config.MigrationsPath), err)
	}
	return s, nil
}

func (s *PostgresStorage) prepare(migrationsDir string) error {
	// Migrate first
	if migrator, err := gomigrate.NewMigratorWithLogger(s.db, gomigrate.Postgres{}, migrationsDir, log.Default()); err != nil {
		return err
	} else {
		if err = migrator.Migrate(); err != nil {
			return err
		}
	}

	// Now set up all the prepared statements
	var err error
	if s.keywordListSelectAll, err = s.readonlyDb.Prepare("SELECT category, entries FROM keyword_lists;"); err != nil {
		return err
	}
	if s.keywordListSelect, err = s.readonlyDb.Prepare("SELECT category, entries FROM keyword_lists WHERE category = $1;"); err != nil {
		return err
	}
	if s.keywordListUpsert, err = s.db.Prepare("INSERT INTO keyword_lists (category, entries) VALUES ($1, $2) ON CONFLICT (category) DO UPDATE SET entries = $2;"); err != nil {
		return err
	}

	return nil
}

func (s *PostgresStorage) SendNotify(ctx context.Context, channel string, msg string) error {
	t := dbmetrics.StartSelfDatabaseTimer("SendNotify")
	defer t.ObserveDuration()
	_, err := s.db.ExecContext(ctx, "SELECT pg_notify($1, $2);", channel, msg)
	return err
}

func (s *PostgresStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return err
	}
	if s.readonlyDb != nil && s.readonlyDb != s.db {
		if err := s.readonlyDb.Close(); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStorage) GetAllKeywordLists(ctx context.Context) ([]*StoredKeywordList, error) {
	t := dbmetrics.StartSelfDatabaseTimer("GetAllKeywordLists")
	defer t.ObserveDuration()

	rows, err := s.keywordListSelectAll.QueryContext(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return make([]*StoredKeywordList, 0), nil
		}
		return nil, err
	}
	defer rows.Close()

	lists := make([]*StoredKeywordList, 0)
	for rows.Next() {
		list, err := scanKeywordList(rows)
		if err != nil {
			return nil, err
		}
		lists = append(lists, list)
	}
	return lists, rows.Err()
}

func (s *PostgresStorage) GetKeywordList(ctx context.Context, category string) (*StoredKeywordList, error) {
	t := dbmetrics.StartSelfDatabaseTimer("GetKeywordList")
	defer t.ObserveDuration()

	list, err := scanKeywordList(s.keywordListSelect.QueryRowContext(ctx, category))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return list, err
}

func (s *PostgresStorage) UpsertKeywordList(ctx context.Context, list *StoredKeywordList) error {
	t := dbmetrics.StartSelfDatabaseTimer("UpsertKeywordList")
	defer t.ObserveDuration()

	if !slices.Contains(config.KeywordFieldNames, list.Category) {
		return fmt.Errorf("%w: %s", ErrUnknownCategory, list.Category)
	}
	b, err := json.Marshal(list.Entries)
	if err != nil {
		return err
	}
	_, err = s.keywordListUpsert.ExecContext(ctx, list.Category, b)
	return err
}

func (s *PostgresStorage) ReplaceKeywordLists(ctx context.Context, doc *config.KeywordDocument) error {
	t := dbmetrics.StartSelfDatabaseTimer("ReplaceKeywordLists")
	defer t.ObserveDuration()

	if err := doc.Validate(); err != nil {
		return err
	}

	txn, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer txn.Rollback() // no-op if committed

	if _, err = txn.ExecContext(ctx, "DELETE FROM keyword_lists WHERE NOT (category = ANY($1));", pq.Array(config.KeywordFieldNames)); err != nil {
		return err
	}
	upsert := txn.StmtContext(ctx, s.keywordListUpsert)
	for _, list := range ListsFromKeywordDocument(doc) {
		b, err := json.Marshal(list.Entries)
		if err != nil {
			return err
		}
		if _, err = upsert.ExecContext(ctx, list.Category, b); err != nil {
			return err
		}
	}
	return txn.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanKeywordList(row rowScanner) (*StoredKeywordList, error) {
	list := &StoredKeywordList{}
	var entries []byte
	if err := row.Scan(&list.Category, &entries); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(entries, &list.Entries); err != nil {
		return nil, errors.Join(fmt.Errorf("malformed entries for keyword category '%s'", list.Category), err)
	}
	return list, nil
}
