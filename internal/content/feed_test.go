package content

import (
	"testing"
	"time"
)

func at(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func TestFeed_ShowsNewestItemsFirst(t *testing.T) {
	now := time.Now()
	items := []Item{
		{Ref: PostedRef("oldest"), Time: at(now.Add(-3 * time.Hour))},
		{Ref: PostedRef("newest"), Time: at(now.Add(-1 * time.Hour))},
		{Ref: PostedRef("middle"), Time: at(now.Add(-2 * time.Hour))},
	}

	feed := NewFeed(time.UTC)
	feed.AddItems(items)
	got := feed.Items(FeedOptions{})

	expectedOrder := []string{"newest", "middle", "oldest"}
	if len(got) != len(expectedOrder) {
		t.Fatalf("operator should see all 3 items, got %d", len(got))
	}
	for i, id := range expectedOrder {
		if got[i].Ref.ID != id {
			t.Errorf("position %d: operator should see %s, got %s", i+1, id, got[i].Ref.ID)
		}
	}
}

func TestFeed_ShowsOnlyItemsWithinDateRange(t *testing.T) {
	now := time.Now()
	items := []Item{
		{Ref: PostedRef("recent"), Time: at(now.Add(-1 * time.Hour))},
		{Ref: PostedRef("yesterday"), Time: at(now.Add(-25 * time.Hour))},
		{Ref: PostedRef("last-week"), Time: at(now.Add(-7 * 24 * time.Hour))},
		{Ref: ScheduledRef("garbled"), Time: "soon"},
	}

	feed := NewFeed(time.UTC)
	feed.AddItems(items)
	got := feed.Items(FeedOptions{
		Since: now.Add(-26 * time.Hour),
		Until: now.Add(-23 * time.Hour),
	})

	if len(got) != 1 || got[0].Ref.ID != "yesterday" {
		t.Fatalf("operator should see only 'yesterday', got %+v", got)
	}
}

func TestFeed_FiltersByPlatformAndStatus(t *testing.T) {
	now := at(time.Now())
	items := []Item{
		{Ref: PostedRef("x1"), Platform: PlatformX, Status: StatusPosted, Time: now},
		{Ref: ScheduledRef("x2"), Platform: PlatformX, Status: StatusScheduled, Time: now},
		{Ref: ScheduledRef("li"), Platform: PlatformLinkedIn, Status: StatusScheduled, Time: now},
	}

	feed := NewFeed(time.UTC)
	feed.AddItems(items)

	if got := feed.Items(FeedOptions{Platforms: []Platform{PlatformX}}); len(got) != 2 {
		t.Errorf("filtering by x should give 2 items, got %d", len(got))
	}
	got := feed.Items(FeedOptions{Platforms: []Platform{PlatformX}, Statuses: []Status{StatusScheduled}})
	if len(got) != 1 || got[0].Ref.ID != "x2" {
		t.Errorf("filtering by x and scheduled should give x2, got %+v", got)
	}
}

func TestFeed_RespectsLimit(t *testing.T) {
	now := time.Now()
	feed := NewFeed(time.UTC)
	for i := 1; i <= 5; i++ {
		feed.AddItems([]Item{{Ref: PostedRef(string(rune('0' + i))), Time: at(now.Add(-time.Duration(i) * time.Hour))}})
	}

	got := feed.Items(FeedOptions{Limit: 2})
	if len(got) != 2 || got[0].Ref.ID != "1" || got[1].Ref.ID != "2" {
		t.Errorf("operator requesting limit 2 should see newest 2 items, got %+v", got)
	}
}

func TestFeed_HandlesEmptyFeedGracefully(t *testing.T) {
	got := NewFeed(nil).Items(FeedOptions{})

	if got == nil {
		t.Fatal("feed should return empty slice, not nil")
	}
	if len(got) != 0 {
		t.Errorf("empty feed should stay empty, got %d items", len(got))
	}
}

func TestFeed_FindDistinguishesIDSpaces(t *testing.T) {
	feed := NewFeed(time.UTC)
	feed.AddItems([]Item{
		{Ref: PostedRef("7"), Status: StatusPosted, Time: "2024-03-05T10:00:00Z"},
		{Ref: ScheduledRef("7"), Status: StatusDraft, Time: "2024-03-04T10:00:00Z"},
	})

	item, ok := feed.FindRef(ScheduledRef("7"))
	if !ok || item.Status != StatusDraft {
		t.Errorf("FindRef should return the scheduled row, got %+v", item)
	}
	item, ok = feed.Find("7")
	if !ok || item.Ref.Kind != KindPosted {
		t.Errorf("Find should prefer the posted row, got %+v", item)
	}
	if _, ok := feed.Find("missing"); ok {
		t.Error("unknown id should not be found")
	}
}

func TestFeed_ReplaceUpdatesInPlace(t *testing.T) {
	feed := NewFeed(time.UTC)
	feed.AddItems([]Item{{Ref: ScheduledRef("a"), Time: "2024-03-05T10:00:00Z"}})

	if !feed.Replace(Item{Ref: ScheduledRef("a"), Time: "2024-03-05T10:00:00Z", Feedback: FeedbackApproved}) {
		t.Fatal("replace should find the item")
	}
	item, _ := feed.FindRef(ScheduledRef("a"))
	if item.Feedback != FeedbackApproved {
		t.Errorf("replaced item should be visible, got %+v", item)
	}
	if feed.Replace(Item{Ref: ScheduledRef("zzz")}) {
		t.Error("replace of unknown ref should report false")
	}
}
