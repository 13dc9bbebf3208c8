// Package corpus is the read-mostly relational store behind every case,
// evidence, legal-fact, alert, connection, priority-action, and insight
// lookup the analysis core performs. It is SQLite-backed, WAL-journaled
// for concurrent readers during long writes.
package corpus

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/eliBenven/case-nexus/pkg/logger"
)

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open corpus database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}

	logger.Info("corpus store initialized", zap.String("path", path))
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for internal/insight, which shares
// this database's connection pool and WAL journal rather than opening a
// second handle onto the same file.
func (s *Store) DB() *sql.DB {
	return s.db
}
