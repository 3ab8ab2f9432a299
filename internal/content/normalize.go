package content

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gauthierbraillon/postdeck/internal/logging"
)

// DefaultURLTemplate links a posted-metrics id to the live post.
const DefaultURLTemplate = "https://x.com/i/status/%s"

type normalizeConfig struct {
	urlTemplate string
	location    *time.Location
	logger      *logrus.Logger
}

// NormalizeOption configures Normalize.
type NormalizeOption func(*normalizeConfig)

// WithURLTemplate sets the fmt template (one %s for the id) used for
// ExternalURL on posted items.
func WithURLTemplate(tmpl string) NormalizeOption {
	return func(c *normalizeConfig) {
		if tmpl != "" {
			c.urlTemplate = tmpl
		}
	}
}

// WithLocation sets the zone for timestamps stored without one.
func WithLocation(loc *time.Location) NormalizeOption {
	return func(c *normalizeConfig) {
		if loc != nil {
			c.location = loc
		}
	}
}

// WithLogger sets where dropped records are reported.
func WithLogger(logger *logrus.Logger) NormalizeOption {
	return func(c *normalizeConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Normalize merges posted and scheduled records into items, newest first.
// Equal timestamps keep fetch order, posted before scheduled; items whose
// time does not parse sort last. Records without any timestamp are logged
// and dropped, never returned as an error.
func Normalize(posted []PostedRecord, scheduled []ScheduledRecord, opts ...NormalizeOption) []Item {
	cfg := normalizeConfig{
		urlTemplate: DefaultURLTemplate,
		location:    time.Local,
		logger:      logging.NewDiscardLogger(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	items := make([]Item, 0, len(posted)+len(scheduled))
	for _, rec := range posted {
		item, ok := fromPosted(rec, cfg.urlTemplate)
		if !ok {
			cfg.logger.WithFields(logrus.Fields{"kind": KindPosted, "id": rec.ID}).
				Warn("Dropping posted record without timestamp")
			continue
		}
		items = append(items, item)
	}
	for _, rec := range scheduled {
		item, ok := fromScheduled(rec)
		if !ok {
			cfg.logger.WithFields(logrus.Fields{"kind": KindScheduled, "id": rec.ID}).
				Warn("Dropping scheduled record without timestamp")
			continue
		}
		items = append(items, item)
	}

	SortNewestFirst(items, cfg.location)
	return items
}

// SortNewestFirst orders items by parsed time, newest first, stably.
func SortNewestFirst(items []Item, loc *time.Location) {
	keys := make([]time.Time, len(items))
	valid := make([]bool, len(items))
	for i, item := range items {
		keys[i], valid[i] = item.ParsedTime(loc)
	}
	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ia, ib := idx[a], idx[b]
		if valid[ia] != valid[ib] {
			return valid[ia]
		}
		return keys[ia].After(keys[ib])
	})
	sorted := make([]Item, len(items))
	for i, j := range idx {
		sorted[i] = items[j]
	}
	copy(items, sorted)
}

func fromPosted(rec PostedRecord, urlTemplate string) (Item, bool) {
	if rec.CreatedAt == "" {
		return Item{}, false
	}
	platform := Platform(rec.Platform)
	if platform == "" {
		platform = PlatformX
	}
	return Item{
		Ref:      PostedRef(rec.ID),
		Platform: platform,
		Status:   StatusPosted,
		Text:     rec.Content,
		Time:     rec.CreatedAt,
		Metrics: &Metrics{
			Impressions:    rec.Impressions,
			Likes:          rec.Likes,
			Retweets:       rec.Retweets,
			RepliesCount:   rec.RepliesCount,
			Bookmarks:      rec.Bookmarks,
			EngagementRate: rec.EngagementRate,
		},
		Feedback:     feedbackOf(rec.Feedback),
		FeedbackNote: rec.FeedbackNote,
		ExternalURL:  externalURL(urlTemplate, rec.ID),
	}, true
}

func fromScheduled(rec ScheduledRecord) (Item, bool) {
	when := rec.ScheduledFor
	if when == "" {
		when = rec.CreatedAt
	}
	if when == "" {
		return Item{}, false
	}

	status := StatusDraft
	if rec.ScheduledFor != "" && !strings.EqualFold(rec.Status, string(StatusDraft)) {
		status = StatusScheduled
	}

	text := rec.Content
	if text == "" {
		text = rec.Title
	}

	return Item{
		Ref:          ScheduledRef(rec.ID),
		Platform:     Platform(rec.Platform),
		Status:       status,
		Text:         text,
		Time:         when,
		Feedback:     feedbackOf(rec.Feedback),
		FeedbackNote: rec.FeedbackNote,
	}, true
}

func feedbackOf(s string) Feedback {
	fb, err := ParseFeedback(s)
	if err != nil {
		return FeedbackNone
	}
	return fb
}

func externalURL(tmpl, id string) string {
	if id == "" {
		return ""
	}
	if !strings.Contains(tmpl, "%s") {
		return strings.TrimRight(tmpl, "/") + "/" + id
	}
	return fmt.Sprintf(tmpl, id)
}
