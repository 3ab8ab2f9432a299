package display

import (
	"strings"
	"testing"
	"time"

	"github.com/gauthierbraillon/postdeck/internal/calendar"
	"github.com/gauthierbraillon/postdeck/internal/content"
)

var fixedNow = time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC)

func newFormatter() *TerminalFormatter {
	return NewTerminalFormatter().
		WithClock(func() time.Time { return fixedNow }).
		WithLocation(time.UTC)
}

func postedItem() content.Item {
	return content.Item{
		Ref:         content.PostedRef("1767"),
		Platform:    content.PlatformX,
		Status:      content.StatusPosted,
		Text:        "Shipping the calendar today",
		Time:        "2024-03-14T09:30:00Z",
		Metrics:     &content.Metrics{Impressions: 1200, Likes: 40, EngagementRate: 3.5},
		Feedback:    content.FeedbackApproved,
		ExternalURL: "https://x.com/i/status/1767",
	}
}

func TestTerminalItem_ShowsText(t *testing.T) {
	output := newFormatter().FormatItem(postedItem())

	if !strings.Contains(output, "Shipping the calendar today") {
		t.Error("user should see item text in terminal output")
	}
}

func TestTerminalItem_ShowsPlatformTag(t *testing.T) {
	testCases := []struct {
		platform content.Platform
		want     string
	}{
		{content.PlatformX, "[X]"},
		{content.PlatformLinkedIn, "[LINKEDIN]"},
		{content.Platform("mastodon"), "[POST]"},
	}

	for _, tc := range testCases {
		t.Run(string(tc.platform), func(t *testing.T) {
			item := postedItem()
			item.Platform = tc.platform
			output := newFormatter().FormatItem(item)
			if !strings.Contains(output, tc.want) {
				t.Errorf("user should see %s tag for %q items, got:\n%s", tc.want, tc.platform, output)
			}
		})
	}
}

func TestTerminalItem_ShowsMetricsForPostedItems(t *testing.T) {
	output := newFormatter().FormatItem(postedItem())

	for _, want := range []string{"1200 impressions", "40 likes", "3.50% ER"} {
		if !strings.Contains(output, want) {
			t.Errorf("user should see %q in posted item output", want)
		}
	}
}

func TestTerminalItem_OmitsZeroMetrics(t *testing.T) {
	item := postedItem()
	item.Metrics = &content.Metrics{Likes: 3}
	output := newFormatter().FormatItem(item)

	if strings.Contains(output, "impressions") {
		t.Error("user should not see zero-value metrics")
	}
}

func TestTerminalItem_ShowsFeedbackAndNote(t *testing.T) {
	item := postedItem()
	item.FeedbackNote = "good hook"
	output := newFormatter().FormatItem(item)

	if !strings.Contains(output, "approved") {
		t.Error("user should see the feedback state")
	}
	if !strings.Contains(output, "note: good hook") {
		t.Error("user should see the feedback note")
	}
}

func TestTerminalItem_ShowsClickableURL(t *testing.T) {
	output := newFormatter().FormatItem(postedItem())

	if !strings.Contains(output, "https://x.com/i/status/1767") {
		t.Error("user should see a URL to open the original post")
	}
}

func TestTerminalItem_ShowsRefForScheduledItems(t *testing.T) {
	item := content.Item{
		Ref:      content.ScheduledRef("p-1"),
		Platform: content.PlatformLinkedIn,
		Status:   content.StatusScheduled,
		Text:     "Launch thread",
		Time:     "2024-03-15T10:00:00Z",
	}
	output := newFormatter().FormatItem(item)

	if !strings.Contains(output, "scheduled/p-1") {
		t.Error("user should see the item reference to act on it")
	}
	if !strings.Contains(output, "in 22 hours") {
		t.Errorf("user should see time until a scheduled post, got:\n%s", output)
	}
}

func TestTerminalItem_ShowsUnparsedTimeVerbatim(t *testing.T) {
	item := postedItem()
	item.Time = "sometime"
	output := newFormatter().FormatItem(item)

	if !strings.Contains(output, "sometime (unparsed)") {
		t.Error("user should see the raw timestamp when it cannot be parsed")
	}
}

func TestTerminalFeed_EmptyFeedShowsMessage(t *testing.T) {
	output := newFormatter().FormatFeed(nil)

	if !strings.Contains(strings.ToLower(output), "no items") {
		t.Error("user should see a message when there is nothing to display")
	}
}

func TestTerminalFeed_SeparatesItems(t *testing.T) {
	a := postedItem()
	b := postedItem()
	b.Ref = content.PostedRef("1768")
	b.Text = "Second post"
	output := newFormatter().FormatFeed([]content.Item{a, b})

	if !strings.Contains(output, "---") {
		t.Error("user should see items separated visually")
	}
	if strings.Index(output, "Shipping") > strings.Index(output, "Second post") {
		t.Error("user should see items in the order given")
	}
}

func TestTerminalTimestamp_Relative(t *testing.T) {
	f := newFormatter()
	testCases := []struct {
		name string
		at   time.Time
		want string
	}{
		{"seconds ago", fixedNow.Add(-10 * time.Second), "just now"},
		{"minutes ago", fixedNow.Add(-30 * time.Minute), "30 minutes ago"},
		{"one hour ago", fixedNow.Add(-time.Hour), "1 hour ago"},
		{"days ago", fixedNow.Add(-48 * time.Hour), "2 days ago"},
		{"old", fixedNow.AddDate(0, -1, 0), "Feb 14, 2024"},
		{"future minutes", fixedNow.Add(5 * time.Minute), "in 5 minutes"},
		{"future far", fixedNow.AddDate(0, 1, 0), "Apr 14, 2024 12:00"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := f.FormatTimestamp(tc.at); got != tc.want {
				t.Errorf("FormatTimestamp() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestTerminalTruncateText(t *testing.T) {
	f := newFormatter()

	if got := f.TruncateText("short", 10); got != "short" {
		t.Errorf("short text should be unchanged, got %q", got)
	}
	if got := f.TruncateText("abcdefghijkl", 8); got != "abcde..." {
		t.Errorf("TruncateText() = %q, want %q", got, "abcde...")
	}
	if got := f.TruncateText("héllo wörld", 6); got != "hél..." {
		t.Errorf("truncation should respect runes, got %q", got)
	}
}

func TestTerminalView_MonthMarksToday(t *testing.T) {
	p := calendar.New(
		calendar.WithLocation(time.UTC),
		calendar.WithClock(func() time.Time { return fixedNow }),
	)
	view := p.Month([]content.Item{postedItem()}, fixedNow)
	output := newFormatter().FormatView(view)

	if !strings.Contains(output, "March 2024") {
		t.Errorf("user should see the month title, got:\n%s", output)
	}
	if !strings.Contains(output, "Sun") || !strings.Contains(output, "Sat") {
		t.Error("user should see weekday headers")
	}
	if !strings.Contains(output, "14* (1)") {
		t.Errorf("user should see today marked with its item count, got:\n%s", output)
	}
}

func TestTerminalView_DayListsDayparts(t *testing.T) {
	p := calendar.New(
		calendar.WithLocation(time.UTC),
		calendar.WithClock(func() time.Time { return fixedNow }),
	)
	view := p.Day([]content.Item{postedItem()}, fixedNow)
	output := newFormatter().FormatView(view)

	if !strings.Contains(output, "Morning (06-12)") {
		t.Errorf("user should see the daypart holding the item, got:\n%s", output)
	}
	if !strings.Contains(output, "09:30 [X]") {
		t.Errorf("user should see the item's clock time and platform, got:\n%s", output)
	}
}

func TestTerminalView_EmptyBucketSaysSo(t *testing.T) {
	p := calendar.New(
		calendar.WithLocation(time.UTC),
		calendar.WithClock(func() time.Time { return fixedNow }),
	)
	view := p.Week(nil, fixedNow)
	output := newFormatter().FormatView(view)

	if !strings.Contains(output, "nothing scheduled") {
		t.Error("user should see empty days called out")
	}
}

func TestTerminalStats_ShowsCounts(t *testing.T) {
	stats := content.Summarize([]content.Item{postedItem()})
	output := newFormatter().FormatStats(stats)

	for _, want := range []string{"Items: 1", "posted 1", "[X] 1", "1 approved", "1200 impressions"} {
		if !strings.Contains(output, want) {
			t.Errorf("user should see %q in stats, got:\n%s", want, output)
		}
	}
}
