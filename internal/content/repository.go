package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/gauthierbraillon/postdeck/internal/logging"
	"github.com/gauthierbraillon/postdeck/internal/store"
)

// ErrImmutable is returned when asked to edit the text of a posted item.
var ErrImmutable = errors.New("posted items are immutable")

// Snapshot is one read of both source tables, in fetch order.
type Snapshot struct {
	Posted    []PostedRecord
	Scheduled []ScheduledRecord
}

// NewPost describes a draft or scheduled post created from the management
// screen.
type NewPost struct {
	Title        string
	Content      string
	Platform     Platform
	ScheduledFor *time.Time
}

// RepositoryOption configures a Repository.
type RepositoryOption func(*Repository)

// WithRepositoryLogger sets the logger for reads, writes and dropped rows.
func WithRepositoryLogger(logger *logrus.Logger) RepositoryOption {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRepositoryURLTemplate sets the external link template for posted items.
func WithRepositoryURLTemplate(tmpl string) RepositoryOption {
	return func(r *Repository) {
		if tmpl != "" {
			r.urlTemplate = tmpl
		}
	}
}

// WithRepositoryLocation sets the zone for timestamps stored without one.
func WithRepositoryLocation(loc *time.Location) RepositoryOption {
	return func(r *Repository) {
		if loc != nil {
			r.location = loc
		}
	}
}

// WithIDGenerator overrides UUID generation for new posts (useful for
// testing).
func WithIDGenerator(gen func() string) RepositoryOption {
	return func(r *Repository) {
		r.newID = gen
	}
}

// WithRepositoryClock overrides the clock stamped on writes.
func WithRepositoryClock(now func() time.Time) RepositoryOption {
	return func(r *Repository) {
		r.now = now
	}
}

// Repository binds content to the row store. Writes are last-write-wins.
type Repository struct {
	rows        store.RowStore
	logger      *logrus.Logger
	urlTemplate string
	location    *time.Location
	newID       func() string
	now         func() time.Time
}

// NewRepository creates a Repository over rows.
func NewRepository(rows store.RowStore, opts ...RepositoryOption) *Repository {
	r := &Repository{
		rows:        rows,
		logger:      logging.NewDiscardLogger(),
		urlTemplate: DefaultURLTemplate,
		location:    time.Local,
		newID:       func() string { return uuid.NewString() },
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fetch reads both tables concurrently, newest rows first, each capped at
// limit. Any read failure fails the whole fetch so callers can tell "no
// data" from "backend down".
func (r *Repository) Fetch(ctx context.Context, limit int) (Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := r.rows.Query(gctx, store.Query{
			Table: store.TablePostMetrics,
			Order: &store.Order{Column: colCreatedAt, Desc: true},
			Limit: limit,
		})
		if err != nil {
			return fmt.Errorf("fetch posted metrics: %w", err)
		}
		snap.Posted = make([]PostedRecord, 0, len(rows))
		for _, row := range rows {
			snap.Posted = append(snap.Posted, postedFromRow(row))
		}
		return nil
	})

	g.Go(func() error {
		rows, err := r.rows.Query(gctx, store.Query{
			Table: store.TablePosts,
			Order: &store.Order{Column: colCreatedAt, Desc: true},
			Limit: limit,
		})
		if err != nil {
			return fmt.Errorf("fetch scheduled posts: %w", err)
		}
		snap.Scheduled = make([]ScheduledRecord, 0, len(rows))
		for _, row := range rows {
			snap.Scheduled = append(snap.Scheduled, scheduledFromRow(row))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		r.logger.WithError(err).Error("Content fetch failed")
		return Snapshot{}, err
	}

	r.logger.WithFields(logrus.Fields{
		"posted":    len(snap.Posted),
		"scheduled": len(snap.Scheduled),
	}).Debug("Content fetched")
	return snap, nil
}

// Load fetches and normalizes in one step.
func (r *Repository) Load(ctx context.Context, limit int) ([]Item, error) {
	snap, err := r.Fetch(ctx, limit)
	if err != nil {
		return nil, err
	}
	return Normalize(snap.Posted, snap.Scheduled,
		WithURLTemplate(r.urlTemplate),
		WithLocation(r.location),
		WithLogger(r.logger),
	), nil
}

// UpdateFeedback writes the approve/reject annotation. FeedbackNone clears
// it.
func (r *Repository) UpdateFeedback(ctx context.Context, ref Ref, fb Feedback) error {
	var value any
	if fb != FeedbackNone {
		value = string(fb)
	}
	return r.update(ctx, ref, store.Row{colFeedback: value})
}

// UpdateNote writes the free-text annotation. An empty note clears it.
func (r *Repository) UpdateNote(ctx context.Context, ref Ref, note string) error {
	var value any
	if note != "" {
		value = note
	}
	return r.update(ctx, ref, store.Row{colFeedbackNote: value})
}

// UpdateText rewrites the body of a draft or scheduled post.
func (r *Repository) UpdateText(ctx context.Context, ref Ref, text string) error {
	if ref.Kind == KindPosted {
		return fmt.Errorf("edit %s: %w", ref, ErrImmutable)
	}
	return r.update(ctx, ref, store.Row{
		colContent:   text,
		"updated_at": r.now().UTC().Format(time.RFC3339),
	})
}

// CreatePost inserts a draft, or a scheduled post when ScheduledFor is set.
func (r *Repository) CreatePost(ctx context.Context, p NewPost) (Ref, error) {
	platform := p.Platform
	if platform == "" {
		platform = PlatformX
	}
	id := r.newID()
	fields := store.Row{
		colScheduledID: id,
		"title":        p.Title,
		colContent:     p.Content,
		"platform":     string(platform),
		"status":       string(StatusDraft),
		colCreatedAt:   r.now().UTC().Format(time.RFC3339),
	}
	if p.ScheduledFor != nil {
		fields["status"] = string(StatusScheduled)
		fields["scheduled_for"] = p.ScheduledFor.UTC().Format(time.RFC3339)
	}

	if err := r.rows.Insert(ctx, store.TablePosts, fields); err != nil {
		r.logger.WithError(err).Error("Create post failed")
		return Ref{}, fmt.Errorf("create post: %w", err)
	}
	ref := ScheduledRef(id)
	r.logger.WithField("ref", ref.String()).Info("Post created")
	return ref, nil
}

// DeletePost removes a draft or scheduled post. Posted metrics rows are
// owned by the ingestion job and cannot be deleted here.
func (r *Repository) DeletePost(ctx context.Context, id string) error {
	key := store.Key{Column: colScheduledID, Value: id}
	if err := r.rows.Delete(ctx, store.TablePosts, key); err != nil {
		r.logger.WithError(err).WithField("id", id).Error("Delete post failed")
		return fmt.Errorf("delete post %s: %w", id, err)
	}
	r.logger.WithField("id", id).Info("Post deleted")
	return nil
}

func (r *Repository) update(ctx context.Context, ref Ref, fields store.Row) error {
	table, key, err := target(ref)
	if err != nil {
		return err
	}
	if err := r.rows.Update(ctx, table, key, fields); err != nil {
		r.logger.WithError(err).WithField("ref", ref.String()).Error("Write failed")
		return fmt.Errorf("update %s: %w", ref, err)
	}
	r.logger.WithField("ref", ref.String()).Debug("Write persisted")
	return nil
}

// target maps a Ref onto its table and primary key.
func target(ref Ref) (string, store.Key, error) {
	if ref.ID == "" {
		return "", store.Key{}, fmt.Errorf("empty id for %s item", ref.Kind)
	}
	switch ref.Kind {
	case KindPosted:
		return store.TablePostMetrics, store.Key{Column: colPostedID, Value: ref.ID}, nil
	case KindScheduled:
		return store.TablePosts, store.Key{Column: colScheduledID, Value: ref.ID}, nil
	}
	return "", store.Key{}, fmt.Errorf("%w: %q", ErrUnknownKind, ref.Kind)
}
