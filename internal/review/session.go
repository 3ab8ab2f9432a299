// Package review is the interaction shell around one open calendar item:
// viewing its detail, toggling approve/reject feedback, saving a note and
// editing the text of drafts and scheduled posts.
//
// Local state updates first, then the write goes straight to the backend;
// nothing is batched. Writes are per-field single-flight on the client side
// only, and the backend stays last-write-wins.
package review

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gauthierbraillon/postdeck/internal/content"
	"github.com/gauthierbraillon/postdeck/internal/logging"
)

var (
	// ErrNoSelection is returned by actions that need an open item.
	ErrNoSelection = errors.New("no item selected")
	// ErrSavePending is returned when the same field is already being saved.
	ErrSavePending = errors.New("save already in progress")
	// ErrNotEditing is returned by SaveEdit outside edit mode.
	ErrNotEditing = errors.New("not in edit mode")
)

// DefaultConfirmFor is how long a "saved" confirmation stays visible.
const DefaultConfirmFor = 2 * time.Second

// Writer persists review actions. content.Repository satisfies it.
type Writer interface {
	UpdateFeedback(ctx context.Context, ref content.Ref, fb content.Feedback) error
	UpdateNote(ctx context.Context, ref content.Ref, note string) error
	UpdateText(ctx context.Context, ref content.Ref, text string) error
}

// Mode is the detail overlay's state.
type Mode string

const (
	ModeClosed  Mode = "closed"
	ModeViewing Mode = "viewing"
	ModeEditing Mode = "editing"
)

// Field names a persisted attribute.
type Field string

const (
	FieldFeedback Field = "feedback"
	FieldNote     Field = "note"
	FieldText     Field = "text"
)

// State is a snapshot of the session for rendering.
type State struct {
	Mode     Mode
	Item     content.Item
	Draft    string
	Pending  map[Field]bool
	Saved    map[Field]bool
	Err      error
	ErrField Field
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(logger *logrus.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the clock behind the saved confirmation.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// WithConfirmFor sets how long a save confirmation stays visible.
func WithConfirmFor(d time.Duration) Option {
	return func(s *Session) {
		s.confirmFor = d
	}
}

// WithOnChange registers a callback fired with the updated item after every
// local change, so callers can keep their own copy of the rows in sync. It
// runs with the session lock held and must not call back into the session.
func WithOnChange(fn func(content.Item)) Option {
	return func(s *Session) {
		s.onChange = fn
	}
}

// inflight keys a pending write by row and field, so a save still running
// for a closed item does not block the same field on the next one.
type inflight struct {
	ref   content.Ref
	field Field
}

// Session holds the one open item and its local edits. Safe for use from
// multiple goroutines; writes run outside the lock.
type Session struct {
	writer     Writer
	logger     *logrus.Logger
	now        func() time.Time
	confirmFor time.Duration
	onChange   func(content.Item)

	mu       sync.Mutex
	open     bool
	item     content.Item
	mode     Mode
	draft    string
	pending  map[inflight]bool
	savedAt  map[Field]time.Time
	err      error
	errField Field
}

// NewSession creates a closed session writing through w.
func NewSession(w Writer, opts ...Option) *Session {
	s := &Session{
		writer:     w,
		logger:     logging.NewDiscardLogger(),
		now:        time.Now,
		confirmFor: DefaultConfirmFor,
		mode:       ModeClosed,
		pending:    make(map[inflight]bool),
		savedAt:    make(map[Field]time.Time),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select opens item. Re-selecting the open item keeps local state.
func (s *Session) Select(item content.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.open && s.item.Ref == item.Ref {
		return
	}
	s.open = true
	s.item = item
	s.mode = ModeViewing
	s.draft = item.Text
	s.savedAt = make(map[Field]time.Time)
	s.err = nil
	s.errField = ""
}

// Close discards any unsaved edit. Writes already sent stand.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.open = false
	s.item = content.Item{}
	s.mode = ModeClosed
	s.draft = ""
	s.err = nil
	s.errField = ""
}

// BeginEdit enters edit mode with a draft copy of the text.
func (s *Session) BeginEdit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return ErrNoSelection
	}
	if !s.item.Editable() {
		return fmt.Errorf("edit %s: %w", s.item.Ref, content.ErrImmutable)
	}
	if s.mode != ModeEditing {
		s.mode = ModeEditing
		s.draft = s.item.Text
	}
	return nil
}

// SetDraft replaces the unsaved edit text.
func (s *Session) SetDraft(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return ErrNoSelection
	}
	if s.mode != ModeEditing {
		return ErrNotEditing
	}
	s.draft = text
	return nil
}

// CancelEdit drops the draft and returns to viewing.
func (s *Session) CancelEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.mode == ModeEditing {
		s.mode = ModeViewing
		s.draft = s.item.Text
	}
}

// SetFeedback toggles feedback: choosing the current value clears it. The
// local value changes before the write and is not rolled back if the write
// fails; the failure is returned and kept in State().Err.
func (s *Session) SetFeedback(ctx context.Context, value content.Feedback) error {
	s.mu.Lock()
	if !s.open {
		s.mu.Unlock()
		return ErrNoSelection
	}
	if s.isPending(FieldFeedback) {
		s.mu.Unlock()
		return ErrSavePending
	}
	next := value
	if s.item.Feedback == value {
		next = content.FeedbackNone
	}
	s.item.Feedback = next
	ref := s.item.Ref
	s.begin(FieldFeedback)
	s.mu.Unlock()

	err := s.writer.UpdateFeedback(ctx, ref, next)
	s.finish(FieldFeedback, ref, err, func() {})
	return err
}

// SaveNote persists the free-text annotation.
func (s *Session) SaveNote(ctx context.Context, note string) error {
	s.mu.Lock()
	if !s.open {
		s.mu.Unlock()
		return ErrNoSelection
	}
	if s.isPending(FieldNote) {
		s.mu.Unlock()
		return ErrSavePending
	}
	ref := s.item.Ref
	s.begin(FieldNote)
	s.mu.Unlock()

	err := s.writer.UpdateNote(ctx, ref, note)
	s.finish(FieldNote, ref, err, func() { s.item.FeedbackNote = note })
	return err
}

// SaveEdit persists text and returns to viewing. On failure the session
// stays in edit mode with the draft intact.
func (s *Session) SaveEdit(ctx context.Context, text string) error {
	s.mu.Lock()
	if !s.open {
		s.mu.Unlock()
		return ErrNoSelection
	}
	if s.mode != ModeEditing {
		s.mu.Unlock()
		return ErrNotEditing
	}
	if s.isPending(FieldText) {
		s.mu.Unlock()
		return ErrSavePending
	}
	ref := s.item.Ref
	s.draft = text
	s.begin(FieldText)
	s.mu.Unlock()

	err := s.writer.UpdateText(ctx, ref, text)
	s.finish(FieldText, ref, err, func() {
		s.item.Text = text
		s.mode = ModeViewing
	})
	return err
}

// State returns a snapshot. Saved is true for a field while its last
// successful save is younger than the confirmation window.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	st := State{
		Mode:     s.mode,
		Item:     s.item,
		Draft:    s.draft,
		Pending:  make(map[Field]bool, len(s.pending)),
		Saved:    make(map[Field]bool, len(s.savedAt)),
		Err:      s.err,
		ErrField: s.errField,
	}
	for key := range s.pending {
		if s.open && key.ref == s.item.Ref {
			st.Pending[key.field] = true
		}
	}
	for f, at := range s.savedAt {
		if now.Sub(at) < s.confirmFor {
			st.Saved[f] = true
		}
	}
	return st
}

// isPending reports whether field of the open item has a write in flight.
// Caller holds mu.
func (s *Session) isPending(field Field) bool {
	return s.pending[inflight{ref: s.item.Ref, field: field}]
}

// begin marks field of the open item in flight. Caller holds mu.
func (s *Session) begin(field Field) {
	s.pending[inflight{ref: s.item.Ref, field: field}] = true
	delete(s.savedAt, field)
	if s.errField == field {
		s.err = nil
		s.errField = ""
	}
	s.notify()
}

// finish records the outcome of a write. apply runs under mu on success,
// and only if the same item is still open.
func (s *Session) finish(field Field, ref content.Ref, err error, apply func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.pending, inflight{ref: ref, field: field})
	log := s.logger.WithFields(logrus.Fields{"ref": ref.String(), "field": field})
	if err != nil {
		log.WithError(err).Warn("Review write failed")
		if s.open && s.item.Ref == ref {
			s.err = err
			s.errField = field
		}
		return
	}
	log.Debug("Review write saved")
	if s.open && s.item.Ref == ref {
		apply()
		s.savedAt[field] = s.now()
		s.notify()
	}
}

func (s *Session) notify() {
	if s.onChange != nil {
		s.onChange(s.item)
	}
}
