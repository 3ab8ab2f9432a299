// Package content merges postdeck's two sources of post-like rows into one
// item shape.
//
// This package enables postdeck to:
// - Read posted-metrics rows and scheduled-content rows from the row store
// - Project both into Item, newest first
// - Filter, summarize and write back review annotations by explicit Ref
package content

import (
	"errors"
	"fmt"
	"time"
)

// Platform tags where an item lives. The set is open; renderers fall back to
// a default tag for values they do not know.
type Platform string

const (
	PlatformX        Platform = "x"
	PlatformLinkedIn Platform = "linkedin"
	PlatformSubstack Platform = "substack"
)

// Status is the publishing state of an item. Posted items are historical
// fact; scheduled and draft items are mutable intent.
type Status string

const (
	StatusPosted    Status = "posted"
	StatusScheduled Status = "scheduled"
	StatusDraft     Status = "draft"
)

// ParseStatus accepts the three known statuses.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPosted, StatusScheduled, StatusDraft:
		return Status(s), nil
	}
	return "", fmt.Errorf("invalid status %q: must be posted, scheduled or draft", s)
}

// Feedback is the operator's manual annotation. The zero value means none.
type Feedback string

const (
	FeedbackNone     Feedback = ""
	FeedbackApproved Feedback = "approved"
	FeedbackRejected Feedback = "rejected"
)

// ParseFeedback accepts approved, rejected, or an empty/"null" value.
func ParseFeedback(s string) (Feedback, error) {
	switch s {
	case "", "null", "none":
		return FeedbackNone, nil
	case string(FeedbackApproved), string(FeedbackRejected):
		return Feedback(s), nil
	}
	return "", fmt.Errorf("invalid feedback %q: must be approved, rejected or null", s)
}

// Kind says which id space an item's id belongs to. Posted-metrics ids are
// platform-native, scheduled-content ids are UUIDs; the spaces are disjoint.
type Kind string

const (
	KindPosted    Kind = "posted"
	KindScheduled Kind = "scheduled"
)

// ErrUnknownKind is returned for a Ref whose Kind is neither posted nor
// scheduled.
var ErrUnknownKind = errors.New("unknown item kind")

// ParseKind accepts posted or scheduled.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindPosted, KindScheduled:
		return Kind(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Ref identifies the source row behind an item. Every write goes through a
// Ref so it can never land in the wrong table.
type Ref struct {
	Kind Kind   `json:"kind" yaml:"kind"`
	ID   string `json:"id" yaml:"id"`
}

// PostedRef builds a Ref into the posted-metrics id space.
func PostedRef(id string) Ref { return Ref{Kind: KindPosted, ID: id} }

// ScheduledRef builds a Ref into the scheduled-content id space.
func ScheduledRef(id string) Ref { return Ref{Kind: KindScheduled, ID: id} }

func (r Ref) String() string { return string(r.Kind) + "/" + r.ID }

// Metrics are engagement counters for posted items. EngagementRate is stored
// upstream as a percentage and never derived here.
type Metrics struct {
	Impressions    int64   `json:"impressions" yaml:"impressions"`
	Likes          int64   `json:"likes" yaml:"likes"`
	Retweets       int64   `json:"retweets" yaml:"retweets"`
	RepliesCount   int64   `json:"replies_count" yaml:"replies_count"`
	Bookmarks      int64   `json:"bookmarks" yaml:"bookmarks"`
	EngagementRate float64 `json:"engagement_rate" yaml:"engagement_rate"`
}

// Item is the unified calendar item. Metrics is non-nil exactly when Status
// is posted. Time is the stored ISO-8601 string.
type Item struct {
	Ref          Ref      `json:"ref" yaml:"ref"`
	Platform     Platform `json:"platform" yaml:"platform"`
	Status       Status   `json:"status" yaml:"status"`
	Text         string   `json:"text" yaml:"text"`
	Time         string   `json:"time" yaml:"time"`
	Metrics      *Metrics `json:"metrics,omitempty" yaml:"metrics,omitempty"`
	Feedback     Feedback `json:"feedback,omitempty" yaml:"feedback,omitempty"`
	FeedbackNote string   `json:"feedback_note,omitempty" yaml:"feedback_note,omitempty"`
	ExternalURL  string   `json:"external_url,omitempty" yaml:"external_url,omitempty"`
}

// Editable reports whether the item's text may still change.
func (i Item) Editable() bool {
	return i.Status != StatusPosted
}

// ParsedTime parses Time, reading zone-less timestamps in loc.
func (i Item) ParsedTime(loc *time.Location) (time.Time, bool) {
	return ParseTime(i.Time, loc)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z07",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTime parses the timestamp shapes the backends produce. Layouts
// without a zone are read in loc (time.Local when nil).
func ParseTime(s string, loc *time.Location) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
