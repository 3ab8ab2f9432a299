package content

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/gauthierbraillon/postdeck/internal/store"
)

// PostedRecord is a row of the posted-metrics table, keyed by the
// platform-assigned numeric-string id. Empty strings stand for NULL.
type PostedRecord struct {
	ID             string
	Platform       string
	Content        string
	CreatedAt      string
	Impressions    int64
	Likes          int64
	Retweets       int64
	RepliesCount   int64
	Bookmarks      int64
	EngagementRate float64
	Feedback       string
	FeedbackNote   string
}

// ScheduledRecord is a row of the scheduled-content table, keyed by UUID.
// Empty strings stand for NULL.
type ScheduledRecord struct {
	ID           string
	Title        string
	Content      string
	Platform     string
	Status       string
	ScheduledFor string
	CreatedAt    string
	Feedback     string
	FeedbackNote string
}

// Column names of the two content tables.
const (
	colPostedID     = "tweet_id"
	colScheduledID  = "id"
	colCreatedAt    = "created_at"
	colFeedback     = "feedback"
	colFeedbackNote = "feedback_note"
	colContent      = "content"
)

func postedFromRow(row store.Row) PostedRecord {
	return PostedRecord{
		ID:             rowString(row, colPostedID),
		Platform:       rowString(row, "platform"),
		Content:        rowString(row, colContent),
		CreatedAt:      rowString(row, colCreatedAt),
		Impressions:    rowInt(row, "impressions"),
		Likes:          rowInt(row, "likes"),
		Retweets:       rowInt(row, "retweets"),
		RepliesCount:   rowInt(row, "replies_count"),
		Bookmarks:      rowInt(row, "bookmarks"),
		EngagementRate: rowFloat(row, "engagement_rate"),
		Feedback:       rowString(row, colFeedback),
		FeedbackNote:   rowString(row, colFeedbackNote),
	}
}

func scheduledFromRow(row store.Row) ScheduledRecord {
	return ScheduledRecord{
		ID:           rowString(row, colScheduledID),
		Title:        rowString(row, "title"),
		Content:      rowString(row, colContent),
		Platform:     rowString(row, "platform"),
		Status:       rowString(row, "status"),
		ScheduledFor: rowString(row, "scheduled_for"),
		CreatedAt:    rowString(row, colCreatedAt),
		Feedback:     rowString(row, colFeedback),
		FeedbackNote: rowString(row, colFeedbackNote),
	}
}

// rowString reads a column as text. Drivers disagree on representation:
// Postgres hands back time.Time for timestamptz, REST hands back JSON
// numbers as json.Number.
func rowString(row store.Row, col string) string {
	switch v := row[col].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(time.RFC3339Nano)
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func rowInt(row store.Row, col string) int64 {
	switch v := row[col].(type) {
	case int64:
		return nonNegative(v)
	case int:
		return nonNegative(int64(v))
	case float64:
		return nonNegative(int64(v))
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return nonNegative(n)
		}
		f, _ := v.Float64()
		return nonNegative(int64(f))
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return nonNegative(n)
	}
	return 0
}

func rowFloat(row store.Row, col string) float64 {
	var f float64
	switch v := row[col].(type) {
	case float64:
		f = v
	case int64:
		f = float64(v)
	case int:
		f = float64(v)
	case json.Number:
		f, _ = v.Float64()
	case string:
		f, _ = strconv.ParseFloat(v, 64)
	}
	if f < 0 {
		return 0
	}
	return f
}

func nonNegative(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}
