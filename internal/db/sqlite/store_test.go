package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/docsync/internal/db"
	"github.com/kailas-cloud/docsync/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(Config{Path: filepath.Join(t.TempDir(), "mappings.db")})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestNewStore_Validation(t *testing.T) {
	_, err := NewStore(Config{})
	require.Error(t, err)

	_, err = NewStore(Config{Path: filepath.Join(t.TempDir(), "x.db"), Table: "bad-name"})
	require.ErrorIs(t, err, db.ErrInvalidTableName)
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Migrate(context.Background()))
	require.NoError(t, s.Ping(context.Background()))
}

func TestInsertAndDocIDs_PreservesOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.Insert(ctx, domain.Mapping{EntityID: 7, DocID: "b"})
	require.NoError(t, err)
	second, err := s.Insert(ctx, domain.Mapping{EntityID: 7, DocID: "a", DocType: "chunk"})
	require.NoError(t, err)
	assert.Greater(t, second, first)

	_, err = s.Insert(ctx, domain.Mapping{EntityID: 8, DocID: "other"})
	require.NoError(t, err)

	ids, err := s.DocIDs(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids)

	rows, err := s.List(ctx, 7)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, domain.Mapping{RecordID: first, EntityID: 7, DocID: "b", DocType: domain.DefaultDocType}, rows[0])
	assert.Equal(t, "chunk", rows[1].DocType)
}

func TestDocIDs_Empty(t *testing.T) {
	s := newTestStore(t)
	ids, err := s.DocIDs(context.Background(), 404)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestInsert_SameDocIDForTwoEntities(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Insert(ctx, domain.Mapping{EntityID: 1, DocID: "shared"})
	require.NoError(t, err)
	_, err = s.Insert(ctx, domain.Mapping{EntityID: 2, DocID: "shared"})
	require.NoError(t, err)
}

func TestInsert_EmptyDocIDRejected(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Insert(context.Background(), domain.Mapping{EntityID: 1, DocID: ""})

	var dbErr *db.Error
	require.True(t, errors.As(err, &dbErr))
	assert.Equal(t, db.OpInsert, dbErr.Op)
}

func TestDeleteAll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		_, err := s.Insert(ctx, domain.Mapping{EntityID: 3, DocID: id})
		require.NoError(t, err)
	}

	n, err := s.DeleteAll(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = s.DeleteAll(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	ids, err := s.DocIDs(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestReplace_SwapsRows(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Replace(ctx, 5, []string{"a", "b"}, ""))
	require.NoError(t, s.Replace(ctx, 5, []string{"c"}, ""))

	ids, err := s.DocIDs(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, ids)
}

func TestReplace_InsertFailureRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Replace(ctx, 5, []string{"a", "b"}, ""))

	// The second insert violates CHECK (doc_id <> '') after the delete already ran.
	err := s.Replace(ctx, 5, []string{"c", ""}, "")
	require.Error(t, err)

	ids, err := s.DocIDs(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
}

func TestReplace_ConcurrentReadersSeeWholeSets(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	oldSet := []string{"a", "b"}
	newSet := []string{"c", "d", "e"}
	require.NoError(t, s.Replace(ctx, 9, oldSet, ""))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			set := newSet
			if i%2 == 1 {
				set = oldSet
			}
			if err := s.Replace(ctx, 9, set, ""); err != nil {
				t.Errorf("replace: %v", err)
				return
			}
		}
	}()

	for i := 0; i < 100; i++ {
		ids, err := s.DocIDs(ctx, 9)
		require.NoError(t, err)
		if !assert.ObjectsAreEqual(oldSet, ids) && !assert.ObjectsAreEqual(newSet, ids) {
			t.Fatalf("reader observed a partial row set: %v", ids)
		}
	}
	wg.Wait()
}
