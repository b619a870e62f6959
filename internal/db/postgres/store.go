// Package postgres implements db.MappingStore on PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kailas-cloud/docsync/internal/db"
	"github.com/kailas-cloud/docsync/internal/domain"
)

// Compile-time check: Store implements db.MappingStore.
var _ db.MappingStore = (*Store)(nil)

const pgErrCodeCheckViolation = "23514"

// Config holds PostgreSQL connection parameters.
type Config struct {
	DSN   string
	Table string
}

// Store implements db.MappingStore over a pgx connection pool.
type Store struct {
	pool  *pgxpool.Pool
	table string
}

// NewStore creates a connection pool. Connectivity is checked lazily (see WaitForReady).
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, errors.New("dsn is required")
	}
	table := cfg.Table
	if table == "" {
		table = db.DefaultTable
	}
	if err := db.ValidateTableName(table); err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	return &Store{pool: pool, table: table}, nil
}

// Migrate creates the mapping table and its entity index.
func (s *Store) Migrate(ctx context.Context) error {
	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %[1]s (
		record_id BIGSERIAL PRIMARY KEY,
		entity_id BIGINT    NOT NULL,
		doc_id    TEXT      NOT NULL CHECK (doc_id <> ''),
		doc_type  TEXT      NOT NULL DEFAULT 'default'
	);
	CREATE INDEX IF NOT EXISTS %[1]s_entity_idx ON %[1]s (entity_id);
	`, s.table)

	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return &db.Error{Op: db.OpMigrate, Err: err}
	}
	return nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close shuts down the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// WaitForReady polls Ping until the database responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	return db.WaitForReady(ctx, s, timeout)
}

// Insert stores one mapping row.
func (s *Store) Insert(ctx context.Context, m domain.Mapping) (int64, error) {
	return insertRow(ctx, s.pool, s.table, m.EntityID, m.DocID, domain.DocTypeOrDefault(m.DocType))
}

// DocIDs returns the entity's document IDs in insertion order.
func (s *Store) DocIDs(ctx context.Context, entityID int64) ([]string, error) {
	q := fmt.Sprintf("SELECT doc_id FROM %s WHERE entity_id = $1 ORDER BY record_id", s.table)
	rows, err := s.pool.Query(ctx, q, entityID)
	if err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, &db.Error{Op: db.OpDecodeRow, Err: err}
	}
	return ids, nil
}

// List returns the entity's mapping rows in insertion order.
func (s *Store) List(ctx context.Context, entityID int64) ([]domain.Mapping, error) {
	q := fmt.Sprintf(
		"SELECT record_id, entity_id, doc_id, doc_type FROM %s WHERE entity_id = $1 ORDER BY record_id", s.table,
	)
	rows, err := s.pool.Query(ctx, q, entityID)
	if err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Mapping, error) {
		var m domain.Mapping
		err := row.Scan(&m.RecordID, &m.EntityID, &m.DocID, &m.DocType)
		return m, err
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpDecodeRow, Err: err}
	}
	return out, nil
}

// DeleteAll removes every mapping row of the entity.
func (s *Store) DeleteAll(ctx context.Context, entityID int64) (int64, error) {
	return deleteRows(ctx, s.pool, s.table, entityID)
}

// Replace swaps the entity's rows inside one transaction.
func (s *Store) Replace(ctx context.Context, entityID int64, docIDs []string, docType string) error {
	_, err := transact(ctx, s.pool, func(tx pgx.Tx) (struct{}, error) {
		if _, err := deleteRows(ctx, tx, s.table, entityID); err != nil {
			return struct{}{}, err
		}
		docType := domain.DocTypeOrDefault(docType)
		for _, docID := range docIDs {
			if _, err := insertRow(ctx, tx, s.table, entityID, docID, docType); err != nil {
				return struct{}{}, err
			}
		}
		return struct{}{}, nil
	})
	if err != nil {
		return &db.Error{Op: db.OpReplace, Err: err}
	}
	return nil
}

// IsCheckViolation reports whether err is a PostgreSQL check_violation (23514).
func IsCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgErrCodeCheckViolation
	}
	return false
}

// transact opens a transaction, runs fn, and commits; any error rolls back.
func transact[T any](ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) (T, error)) (T, error) {
	var zero T
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return zero, &db.Error{Op: db.OpBegin, Err: err}
	}

	result, err := fn(tx)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return zero, fmt.Errorf("tx rollback failed: %v (original err: %w)", rbErr, err)
		}
		return zero, err
	}

	if err := tx.Commit(ctx); err != nil {
		return zero, &db.Error{Op: db.OpCommit, Err: err}
	}
	return result, nil
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertRow(ctx context.Context, q querier, table string, entityID int64, docID, docType string) (int64, error) {
	stmt := fmt.Sprintf(
		"INSERT INTO %s (entity_id, doc_id, doc_type) VALUES ($1, $2, $3) RETURNING record_id", table,
	)
	var id int64
	if err := q.QueryRow(ctx, stmt, entityID, docID, docType).Scan(&id); err != nil {
		return 0, &db.Error{Op: db.OpInsert, Err: err}
	}
	return id, nil
}

func deleteRows(ctx context.Context, q querier, table string, entityID int64) (int64, error) {
	tag, err := q.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE entity_id = $1", table), entityID)
	if err != nil {
		return 0, &db.Error{Op: db.OpDelete, Err: err}
	}
	return tag.RowsAffected(), nil
}
