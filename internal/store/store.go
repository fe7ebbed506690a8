package store

import (
	"context"
	"database/sql"
	"log"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver "pgx"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite" // database/sql driver "sqlite"
)

// Store keeps search cache, download history and small key/values.
// Queries use $N placeholders and ON CONFLICT upserts understood by both
// sqlite and postgres.
type Store struct {
	DB     *sql.DB
	driver string
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS search_cache (
  key        TEXT PRIMARY KEY,
  candidates TEXT NOT NULL,
  fetched_at BIGINT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS downloads (
  run_id    TEXT PRIMARY KEY,
  query     TEXT NOT NULL,
  link      TEXT NOT NULL,
  path      TEXT NOT NULL,
  files     INTEGER NOT NULL,
  bytes     BIGINT NOT NULL,
  saved_at  BIGINT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS kv (
  k TEXT PRIMARY KEY,
  v TEXT NOT NULL
)`,
}

// Open connects by DSN: postgres:// and postgresql:// use pgx, anything else is a sqlite file path.
func Open(ctx context.Context, dsn string) (*Store, error) {
	driver := "sqlite"
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		driver = "pgx"
	} else if !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, errors.Wrap(err, "state dir")
		}
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", driver)
	}
	if driver == "sqlite" {
		// one writer; keeps :memory: databases on a single connection
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "ping %s", driver)
	}
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, errors.Wrap(err, "migrate")
		}
	}
	log.Printf("[store] connected (%s)", driver)
	return &Store{DB: db, driver: driver}, nil
}

func (s *Store) Driver() string { return s.driver }

func (s *Store) Close() error { return s.DB.Close() }

func (s *Store) Get(ctx context.Context, k string) (string, bool, error) {
	var v string
	err := s.DB.QueryRowContext(ctx, `SELECT v FROM kv WHERE k=$1`, k).Scan(&v)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, err
	}
	return v, true, nil
}

func (s *Store) Put(ctx context.Context, k, v string) error {
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO kv (k, v) VALUES ($1,$2)
ON CONFLICT (k) DO UPDATE SET v=EXCLUDED.v`, k, v)
	return err
}
