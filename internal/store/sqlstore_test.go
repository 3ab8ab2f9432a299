package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) *SQLStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "postdeck.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLite_InsertQueryUpdateDelete(t *testing.T) {
	ctx := context.Background()
	s := openTestSQLite(t)

	require.NoError(t, s.Insert(ctx, TablePosts, Row{
		"id":            "a1",
		"content":       "first",
		"scheduled_for": "2024-03-06T09:00:00Z",
		"created_at":    "2024-03-01T10:00:00Z",
	}))
	require.NoError(t, s.Insert(ctx, TablePosts, Row{
		"id":         "b2",
		"title":      "second",
		"created_at": "2024-03-02T10:00:00Z",
	}))

	rows, err := s.Query(ctx, Query{Table: TablePosts, Order: &Order{Column: "created_at", Desc: true}})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "b2", rows[0]["id"])
	assert.Equal(t, "2024-03-06T09:00:00Z", rows[1]["scheduled_for"], "timestamps should come back as stored")

	require.NoError(t, s.Update(ctx, TablePosts, Key{Column: "id", Value: "a1"}, Row{"feedback": "approved"}))
	rows, err = s.Query(ctx, Query{Table: TablePosts, Filters: []Filter{{Column: "id", Value: "a1"}}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "approved", rows[0]["feedback"])

	require.NoError(t, s.Update(ctx, TablePosts, Key{Column: "id", Value: "a1"}, Row{"feedback": nil}))
	rows, err = s.Query(ctx, Query{Table: TablePosts, Filters: []Filter{{Column: "id", Value: "a1"}}})
	require.NoError(t, err)
	assert.Nil(t, rows[0]["feedback"], "nil field should clear the column")

	require.NoError(t, s.Delete(ctx, TablePosts, Key{Column: "id", Value: "a1"}))
	rows, err = s.Query(ctx, Query{Table: TablePosts})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestSQLite_QueryRespectsLimit(t *testing.T) {
	ctx := context.Background()
	s := openTestSQLite(t)
	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, s.Insert(ctx, TablePostMetrics, Row{"tweet_id": id, "created_at": "2024-03-0" + id + "T00:00:00Z"}))
	}

	rows, err := s.Query(ctx, Query{Table: TablePostMetrics, Order: &Order{Column: "created_at", Desc: true}, Limit: 2})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "3", rows[0]["tweet_id"])
}

func TestSQLite_UpdateMissingRowIsNotFound(t *testing.T) {
	s := openTestSQLite(t)

	err := s.Update(context.Background(), TablePosts, Key{Column: "id", Value: "nope"}, Row{"feedback": "approved"})
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)

	err = s.Delete(context.Background(), TablePosts, Key{Column: "id", Value: "nope"})
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
}

func TestSQLite_ReopenKeepsSchemaVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "postdeck.db")
	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	var n int
	require.NoError(t, s.db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&n))
	assert.Equal(t, 1, n, "reopening should not duplicate the schema version row")
}

func TestSQLStore_RejectsUnsafeIdentifiers(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()

	_, err := s.Query(ctx, Query{Table: "posts; DROP TABLE posts"})
	assert.Error(t, err)

	err = s.Update(ctx, TablePosts, Key{Column: "id", Value: "x"}, Row{"feedback = 'x' --": "y"})
	assert.Error(t, err)

	_, err = s.Query(ctx, Query{Table: TablePosts, Order: &Order{Column: "created_at DESC; --"}})
	assert.Error(t, err)
}
