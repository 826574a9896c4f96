// Package store implements the transactional symbol store:
// file/symbol/reference/call-edge/type-relationship/config-entry tables,
// the FTS5 mirror, the single-file write protocol, and the lookup
// strategies consumed by the retrieval API. It also satisfies
// internal/resolve.Store so the cross-file resolver can run a pass
// directly against it.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
	"go.uber.org/zap"

	"github.com/solanumlabs/codelens/internal/apperr"
)

// Store wraps one SQLite connection: WAL journal mode, a busy timeout so
// concurrent readers never see SQLITE_BUSY during a write transaction,
// and foreign keys enabled so cascade deletes do the work described in
// the write protocol's step 1.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

// Open creates (or reopens) the store at path, applying schema on every
// open so a fresh database and an upgraded one converge to the same
// shape (every statement is CREATE TABLE/INDEX/TRIGGER IF NOT EXISTS).
func Open(path string, log *zap.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, apperr.Wrap("store.Open.mkdir", err)
		}
	}

	dsn := fmt.Sprintf(
		"%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)",
		path,
	)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, apperr.Wrap("store.Open", err)
	}
	// modernc.org/sqlite serializes writers internally; a single
	// connection avoids SQLITE_BUSY entirely for this process.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, apperr.Wrap("store.Open.schema", err)
	}

	if log == nil {
		log = zap.NewNop()
	}
	return &Store{db: db, log: log.Named("store")}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on any error or panic.
func (s *Store) withTx(op string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return apperr.Wrap(op, err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(tx); err != nil {
		tx.Rollback()
		return apperr.Wrap(op, err)
	}
	if err := tx.Commit(); err != nil {
		return apperr.Wrap(op, err)
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func ptrString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}
