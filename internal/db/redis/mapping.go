package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/docsync/internal/db"
	"github.com/kailas-cloud/docsync/internal/domain"
)

// Rows are stored as "record_id|doc_type|doc_id" list elements; doc_id goes
// last so it may itself contain the separator.
const rowSep = "|"

var (
	errEmptyDocID     = errors.New("doc id must not be empty")
	errInvalidDocType = errors.New("doc type must not contain " + rowSep)
)

// KEYS[1] = seq, KEYS[2] = entity list; ARGV = doc_type, doc_id.
var insertScript = rueidis.NewLuaScript(`
local id = redis.call('INCR', KEYS[1])
redis.call('RPUSH', KEYS[2], id .. '|' .. ARGV[1] .. '|' .. ARGV[2])
return id
`)

// KEYS[1] = seq, KEYS[2] = entity list; ARGV = doc_type, doc_id...
var replaceScript = rueidis.NewLuaScript(`
redis.call('DEL', KEYS[2])
for i = 2, #ARGV do
  local id = redis.call('INCR', KEYS[1])
  redis.call('RPUSH', KEYS[2], id .. '|' .. ARGV[1] .. '|' .. ARGV[i])
end
return #ARGV - 1
`)

// KEYS[1] = entity list.
var deleteScript = rueidis.NewLuaScript(`
local n = redis.call('LLEN', KEYS[1])
redis.call('DEL', KEYS[1])
return n
`)

func (s *Store) seqKey() string { return s.prefix + "seq" }

func (s *Store) entityKey(entityID int64) string {
	return s.prefix + "entity:" + strconv.FormatInt(entityID, 10)
}

// Insert appends one row to the entity's list.
func (s *Store) Insert(ctx context.Context, m domain.Mapping) (int64, error) {
	docType := domain.DocTypeOrDefault(m.DocType)
	if err := validateRow(m.DocID, docType); err != nil {
		return 0, &db.Error{Op: db.OpInsert, Err: err}
	}

	keys := []string{s.seqKey(), s.entityKey(m.EntityID)}
	id, err := insertScript.Exec(ctx, s.client, keys, []string{docType, m.DocID}).AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpInsert, Err: err}
	}
	return id, nil
}

// DocIDs returns the entity's document IDs in insertion order.
func (s *Store) DocIDs(ctx context.Context, entityID int64) ([]string, error) {
	rows, err := s.List(ctx, entityID)
	if err != nil {
		return nil, err
	}
	return domain.DocIDs(rows), nil
}

// List returns the entity's rows in insertion order.
func (s *Store) List(ctx context.Context, entityID int64) ([]domain.Mapping, error) {
	cmd := s.b().Lrange().Key(s.entityKey(entityID)).Start(0).Stop(-1).Build()
	raw, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}

	out := make([]domain.Mapping, 0, len(raw))
	for _, r := range raw {
		m, err := decodeRow(entityID, r)
		if err != nil {
			return nil, &db.Error{Op: db.OpDecodeRow, Err: err}
		}
		out = append(out, m)
	}
	return out, nil
}

// DeleteAll drops the entity's list and returns how many rows it held.
func (s *Store) DeleteAll(ctx context.Context, entityID int64) (int64, error) {
	n, err := deleteScript.Exec(ctx, s.client, []string{s.entityKey(entityID)}, nil).AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpDelete, Err: err}
	}
	return n, nil
}

// Replace swaps the entity's list in a single script. Rows are validated
// up front since a script that fails midway keeps its earlier writes.
func (s *Store) Replace(ctx context.Context, entityID int64, docIDs []string, docType string) error {
	docType = domain.DocTypeOrDefault(docType)
	for _, id := range docIDs {
		if err := validateRow(id, docType); err != nil {
			return &db.Error{Op: db.OpReplace, Err: err}
		}
	}

	args := make([]string, 0, len(docIDs)+1)
	args = append(args, docType)
	args = append(args, docIDs...)

	keys := []string{s.seqKey(), s.entityKey(entityID)}
	if err := replaceScript.Exec(ctx, s.client, keys, args).Error(); err != nil {
		return &db.Error{Op: db.OpReplace, Err: err}
	}
	return nil
}

func validateRow(docID, docType string) error {
	if docID == "" {
		return errEmptyDocID
	}
	if strings.Contains(docType, rowSep) {
		return errInvalidDocType
	}
	return nil
}

func decodeRow(entityID int64, raw string) (domain.Mapping, error) {
	parts := strings.SplitN(raw, rowSep, 3)
	if len(parts) != 3 {
		return domain.Mapping{}, fmt.Errorf("malformed row %q", raw)
	}
	rid, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return domain.Mapping{}, fmt.Errorf("malformed record id in %q: %w", raw, err)
	}
	return domain.Mapping{
		RecordID: rid,
		EntityID: entityID,
		DocType:  parts[1],
		DocID:    parts[2],
	}, nil
}
