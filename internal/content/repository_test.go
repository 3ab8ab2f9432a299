package content

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gauthierbraillon/postdeck/internal/store"
)

func newSeededRepo(t *testing.T) (*Repository, *store.SQLStore) {
	t.Helper()
	ctx := context.Background()
	rows, err := store.OpenSQLite(filepath.Join(t.TempDir(), "postdeck.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rows.Close() })

	require.NoError(t, rows.Insert(ctx, store.TablePostMetrics, store.Row{
		"tweet_id": "1", "content": "posted", "created_at": "2024-03-05T14:00:00Z", "likes": 10,
	}))
	require.NoError(t, rows.Insert(ctx, store.TablePosts, store.Row{
		"id": "abc", "title": "planned", "scheduled_for": "2024-03-06T09:00:00Z", "created_at": "2024-03-01T00:00:00Z",
	}))

	fixed := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
	repo := NewRepository(rows,
		WithRepositoryLocation(time.UTC),
		WithRepositoryClock(func() time.Time { return fixed }),
		WithIDGenerator(func() string { return "new-uuid" }),
	)
	return repo, rows
}

func TestRepository_LoadMergesBothTables(t *testing.T) {
	repo, _ := newSeededRepo(t)

	items, err := repo.Load(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, ScheduledRef("abc"), items[0].Ref, "later scheduled item comes first")
	assert.Equal(t, StatusScheduled, items[0].Status)
	assert.Equal(t, "planned", items[0].Text)
	assert.Equal(t, PostedRef("1"), items[1].Ref)
	require.NotNil(t, items[1].Metrics)
	assert.Equal(t, int64(10), items[1].Metrics.Likes)
}

func TestRepository_WritesTargetTheRightTable(t *testing.T) {
	ctx := context.Background()
	repo, rows := newSeededRepo(t)

	require.NoError(t, repo.UpdateFeedback(ctx, PostedRef("1"), FeedbackApproved))
	require.NoError(t, repo.UpdateNote(ctx, ScheduledRef("abc"), "tighten the intro"))
	require.NoError(t, repo.UpdateText(ctx, ScheduledRef("abc"), "new body"))

	items, err := repo.Load(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, FeedbackApproved, items[1].Feedback)
	assert.Equal(t, "tighten the intro", items[0].FeedbackNote)
	assert.Equal(t, "new body", items[0].Text)

	got, err := rows.Query(ctx, store.Query{Table: store.TablePosts, Filters: []store.Filter{{Column: "id", Value: "abc"}}})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05T12:00:00Z", got[0]["updated_at"])

	require.NoError(t, repo.UpdateFeedback(ctx, PostedRef("1"), FeedbackNone))
	items, err = repo.Load(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, FeedbackNone, items[1].Feedback, "clearing feedback should null the column")
}

func TestRepository_WrongIDSpaceIsNotFound(t *testing.T) {
	repo, _ := newSeededRepo(t)

	err := repo.UpdateFeedback(context.Background(), ScheduledRef("1"), FeedbackApproved)
	assert.True(t, errors.Is(err, store.ErrNotFound), "posted id in scheduled space should miss, got %v", err)
}

func TestRepository_PostedTextIsImmutable(t *testing.T) {
	repo, _ := newSeededRepo(t)

	err := repo.UpdateText(context.Background(), PostedRef("1"), "rewrite history")
	assert.True(t, errors.Is(err, ErrImmutable), "got %v", err)
}

func TestRepository_UnknownKindRejected(t *testing.T) {
	repo, _ := newSeededRepo(t)

	err := repo.UpdateNote(context.Background(), Ref{Kind: "idea", ID: "1"}, "x")
	assert.True(t, errors.Is(err, ErrUnknownKind), "got %v", err)
}

func TestRepository_CreateAndDeletePost(t *testing.T) {
	ctx := context.Background()
	repo, _ := newSeededRepo(t)
	when := time.Date(2024, 3, 8, 18, 30, 0, 0, time.UTC)

	ref, err := repo.CreatePost(ctx, NewPost{Content: "fresh", Platform: PlatformLinkedIn, ScheduledFor: &when})
	require.NoError(t, err)
	assert.Equal(t, ScheduledRef("new-uuid"), ref)

	items, err := repo.Load(ctx, 100)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, ref, items[0].Ref)
	assert.Equal(t, StatusScheduled, items[0].Status)
	assert.Equal(t, PlatformLinkedIn, items[0].Platform)
	assert.Equal(t, "2024-03-08T18:30:00Z", items[0].Time)

	require.NoError(t, repo.DeletePost(ctx, "new-uuid"))
	items, err = repo.Load(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	err = repo.DeletePost(ctx, "new-uuid")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

type failingStore struct {
	store.RowStore
	err error
}

func (f failingStore) Query(context.Context, store.Query) ([]store.Row, error) { return nil, f.err }

func TestRepository_ReadFailureIsNotEmptyResult(t *testing.T) {
	boom := errors.New("backend unreachable")
	repo := NewRepository(failingStore{err: boom})

	items, err := repo.Load(context.Background(), 10)
	assert.True(t, errors.Is(err, boom), "read failure should surface, got %v", err)
	assert.Nil(t, items)
}

func TestRepository_RESTBigintIDRoundTrips(t *testing.T) {
	const id = "1768123456789012345"
	var patched string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPatch:
			patched = r.URL.Query().Get("tweet_id")
			_, _ = w.Write([]byte(`[{"tweet_id":` + id + `}]`))
		case r.URL.Path == "/rest/v1/post_metrics":
			_, _ = w.Write([]byte(`[{"tweet_id":` + id + `,"content":"big","created_at":"2024-03-05T14:00:00Z","likes":7,"engagement_rate":2.5}]`))
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	}))
	defer server.Close()

	repo := NewRepository(store.NewRESTStore(server.URL, "k"), WithRepositoryLocation(time.UTC))

	items, err := repo.Load(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, PostedRef(id), items[0].Ref)
	assert.Equal(t, "https://x.com/i/status/"+id, items[0].ExternalURL)
	require.NotNil(t, items[0].Metrics)
	assert.Equal(t, int64(7), items[0].Metrics.Likes)
	assert.Equal(t, 2.5, items[0].Metrics.EngagementRate)

	require.NoError(t, repo.UpdateFeedback(context.Background(), items[0].Ref, FeedbackApproved))
	assert.Equal(t, "eq."+id, patched)
}
