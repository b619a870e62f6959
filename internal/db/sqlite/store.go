// Package sqlite implements db.MappingStore on an embedded SQLite database
// using the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/kailas-cloud/docsync/internal/db"
	"github.com/kailas-cloud/docsync/internal/domain"
)

// Compile-time check: Store implements db.MappingStore.
var _ db.MappingStore = (*Store)(nil)

// Config holds SQLite store parameters.
type Config struct {
	Path  string // database file; ":memory:" is not supported because each pooled connection would see its own database
	Table string
}

// Store implements db.MappingStore over database/sql.
type Store struct {
	db    *sql.DB
	table string
}

// NewStore opens (or creates) the database file and applies connection pragmas.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, errors.New("path is required")
	}
	table := cfg.Table
	if table == "" {
		table = db.DefaultTable
	}
	if err := db.ValidateTableName(table); err != nil {
		return nil, err
	}

	sqlDB, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single writer; readers queue behind an open replace transaction.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := sqlDB.Exec(pragma); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	return &Store{db: sqlDB, table: table}, nil
}

// Migrate creates the mapping table and its entity index.
func (s *Store) Migrate(ctx context.Context) error {
	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %[1]s (
		record_id INTEGER PRIMARY KEY AUTOINCREMENT,
		entity_id INTEGER NOT NULL,
		doc_id    TEXT    NOT NULL CHECK (doc_id <> ''),
		doc_type  TEXT    NOT NULL DEFAULT 'default'
	);
	CREATE INDEX IF NOT EXISTS %[1]s_entity_idx ON %[1]s (entity_id);
	`, s.table)

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return &db.Error{Op: db.OpMigrate, Err: err}
	}
	return nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() {
	_ = s.db.Close()
}

// WaitForReady polls Ping until the database responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	return db.WaitForReady(ctx, s, timeout)
}

// Insert stores one mapping row.
func (s *Store) Insert(ctx context.Context, m domain.Mapping) (int64, error) {
	return insertRow(ctx, s.db, s.table, m.EntityID, m.DocID, domain.DocTypeOrDefault(m.DocType))
}

// DocIDs returns the entity's document IDs in insertion order.
func (s *Store) DocIDs(ctx context.Context, entityID int64) ([]string, error) {
	q := fmt.Sprintf("SELECT doc_id FROM %s WHERE entity_id = ? ORDER BY record_id", s.table)
	rows, err := s.db.QueryContext(ctx, q, entityID)
	if err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, &db.Error{Op: db.OpDecodeRow, Err: err}
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	return ids, nil
}

// List returns the entity's mapping rows in insertion order.
func (s *Store) List(ctx context.Context, entityID int64) ([]domain.Mapping, error) {
	q := fmt.Sprintf(
		"SELECT record_id, entity_id, doc_id, doc_type FROM %s WHERE entity_id = ? ORDER BY record_id", s.table,
	)
	rows, err := s.db.QueryContext(ctx, q, entityID)
	if err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	defer func() { _ = rows.Close() }()

	var out []domain.Mapping
	for rows.Next() {
		var m domain.Mapping
		if err := rows.Scan(&m.RecordID, &m.EntityID, &m.DocID, &m.DocType); err != nil {
			return nil, &db.Error{Op: db.OpDecodeRow, Err: err}
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	return out, nil
}

// DeleteAll removes every mapping row of the entity.
func (s *Store) DeleteAll(ctx context.Context, entityID int64) (int64, error) {
	return deleteRows(ctx, s.db, s.table, entityID)
}

// Replace swaps the entity's rows inside one transaction.
func (s *Store) Replace(ctx context.Context, entityID int64, docIDs []string, docType string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &db.Error{Op: db.OpBegin, Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := deleteRows(ctx, tx, s.table, entityID); err != nil {
		return &db.Error{Op: db.OpReplace, Err: err}
	}

	docType = domain.DocTypeOrDefault(docType)
	for _, docID := range docIDs {
		if _, err := insertRow(ctx, tx, s.table, entityID, docID, docType); err != nil {
			return &db.Error{Op: db.OpReplace, Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &db.Error{Op: db.OpCommit, Err: err}
	}
	return nil
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertRow(ctx context.Context, e execer, table string, entityID int64, docID, docType string) (int64, error) {
	q := fmt.Sprintf("INSERT INTO %s (entity_id, doc_id, doc_type) VALUES (?, ?, ?)", table)
	res, err := e.ExecContext(ctx, q, entityID, docID, docType)
	if err != nil {
		return 0, &db.Error{Op: db.OpInsert, Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, &db.Error{Op: db.OpInsert, Err: err}
	}
	return id, nil
}

func deleteRows(ctx context.Context, e execer, table string, entityID int64) (int64, error) {
	q := fmt.Sprintf("DELETE FROM %s WHERE entity_id = ?", table)
	res, err := e.ExecContext(ctx, q, entityID)
	if err != nil {
		return 0, &db.Error{Op: db.OpDelete, Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, &db.Error{Op: db.OpDelete, Err: err}
	}
	return n, nil
}
