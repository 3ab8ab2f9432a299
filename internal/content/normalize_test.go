package content

import (
	"testing"
	"time"
)

func TestNormalize_PostedRecordBecomesPostedItem(t *testing.T) {
	posted := []PostedRecord{{
		ID:             "1764000000000000001",
		Content:        "shipping it",
		CreatedAt:      "2024-03-05T14:00:00Z",
		Likes:          10,
		Impressions:    400,
		EngagementRate: 2.5,
	}}

	items := Normalize(posted, nil)

	if len(items) != 1 {
		t.Fatalf("operator should see 1 item, got %d", len(items))
	}
	item := items[0]
	if item.Ref != PostedRef("1764000000000000001") {
		t.Errorf("posted item should carry a posted ref, got %v", item.Ref)
	}
	if item.Status != StatusPosted {
		t.Errorf("posted record should be status posted, got %s", item.Status)
	}
	if item.Platform != PlatformX {
		t.Errorf("posted record without platform should default to x, got %s", item.Platform)
	}
	if item.Metrics == nil || item.Metrics.Likes != 10 || item.Metrics.Retweets != 0 {
		t.Errorf("metrics should be copied with zero defaults, got %+v", item.Metrics)
	}
	if item.ExternalURL != "https://x.com/i/status/1764000000000000001" {
		t.Errorf("external URL should be built from template, got %s", item.ExternalURL)
	}
	if item.Time != "2024-03-05T14:00:00Z" {
		t.Errorf("posted time should be creation time, got %s", item.Time)
	}
}

func TestNormalize_ScheduledRecordStatusAndTextFallbacks(t *testing.T) {
	scheduled := []ScheduledRecord{
		{ID: "with-date", Content: "body", Title: "title", ScheduledFor: "2024-03-06T09:00:00Z", CreatedAt: "2024-03-01T00:00:00Z"},
		{ID: "title-only", Title: "just a title", CreatedAt: "2024-03-02T00:00:00Z"},
		{ID: "nothing", CreatedAt: "2024-03-03T00:00:00Z"},
		{ID: "explicit-draft", Status: "draft", Content: "parked", ScheduledFor: "2024-03-07T09:00:00Z"},
	}

	items := Normalize(nil, scheduled)
	byID := make(map[string]Item)
	for _, item := range items {
		byID[item.Ref.ID] = item
	}

	if got := byID["with-date"]; got.Status != StatusScheduled || got.Text != "body" || got.Time != "2024-03-06T09:00:00Z" {
		t.Errorf("scheduled_for should make it scheduled with content and scheduled time, got %+v", got)
	}
	if got := byID["title-only"]; got.Status != StatusDraft || got.Text != "just a title" || got.Time != "2024-03-02T00:00:00Z" {
		t.Errorf("no scheduled_for should make it a draft, text falling back to title, got %+v", got)
	}
	if got := byID["nothing"]; got.Text != "" {
		t.Errorf("missing content and title should give empty text, got %q", got.Text)
	}
	if got := byID["explicit-draft"]; got.Status != StatusDraft {
		t.Errorf("a row marked draft stays draft, got %s", got.Status)
	}
	for _, item := range items {
		if item.Metrics != nil {
			t.Errorf("scheduled item %s should not carry metrics", item.Ref.ID)
		}
		if item.Ref.Kind != KindScheduled {
			t.Errorf("scheduled item %s should carry a scheduled ref", item.Ref.ID)
		}
	}
}

func TestNormalize_NewestFirstWithStableTies(t *testing.T) {
	posted := []PostedRecord{
		{ID: "p-old", CreatedAt: "2024-03-01T10:00:00Z"},
		{ID: "p-tie", CreatedAt: "2024-03-05T10:00:00Z"},
	}
	scheduled := []ScheduledRecord{
		{ID: "s-tie", ScheduledFor: "2024-03-05T10:00:00Z"},
		{ID: "s-new", ScheduledFor: "2024-03-09T10:00:00Z"},
		{ID: "s-garbled", ScheduledFor: "next tuesday"},
	}

	items := Normalize(posted, scheduled, WithLocation(time.UTC))

	want := []string{"s-new", "p-tie", "s-tie", "p-old", "s-garbled"}
	if len(items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(items))
	}
	for i, id := range want {
		if items[i].Ref.ID != id {
			t.Errorf("position %d: operator should see %s, got %s", i+1, id, items[i].Ref.ID)
		}
	}
}

func TestNormalize_DropsRecordsWithoutTimestamp(t *testing.T) {
	posted := []PostedRecord{{ID: "no-time"}, {ID: "ok", CreatedAt: "2024-03-05T14:00:00Z"}}
	scheduled := []ScheduledRecord{{ID: "no-time-either"}}

	items := Normalize(posted, scheduled)

	if len(items) > len(posted)+len(scheduled) {
		t.Fatalf("output can never exceed input")
	}
	if len(items) != 1 || items[0].Ref.ID != "ok" {
		t.Errorf("records without any timestamp should be dropped, got %+v", items)
	}
}

func TestNormalize_CustomURLTemplate(t *testing.T) {
	items := Normalize([]PostedRecord{{ID: "42", CreatedAt: "2024-03-05T14:00:00Z"}}, nil,
		WithURLTemplate("https://twitter.com/me/status/%s"))

	if items[0].ExternalURL != "https://twitter.com/me/status/42" {
		t.Errorf("custom template should be used, got %s", items[0].ExternalURL)
	}
}

func TestNormalize_KeepsFeedback(t *testing.T) {
	items := Normalize(
		[]PostedRecord{{ID: "1", CreatedAt: "2024-03-05T14:00:00Z", Feedback: "approved", FeedbackNote: "great hook"}},
		[]ScheduledRecord{{ID: "a", CreatedAt: "2024-03-04T14:00:00Z", Feedback: "bogus"}},
	)

	if items[0].Feedback != FeedbackApproved || items[0].FeedbackNote != "great hook" {
		t.Errorf("feedback should carry over, got %+v", items[0])
	}
	if items[1].Feedback != FeedbackNone {
		t.Errorf("unknown feedback value should read as none, got %q", items[1].Feedback)
	}
}

func TestParseTime_AcceptsBackendShapes(t *testing.T) {
	cases := []string{
		"2024-03-05T14:00:00Z",
		"2024-03-05T14:00:00.123456+00:00",
		"2024-03-05 14:00:00+00",
		"2024-03-05 14:00:00.5+00:00",
		"2024-03-05T14:00:00",
		"2024-03-05",
	}
	for _, s := range cases {
		if _, ok := ParseTime(s, time.UTC); !ok {
			t.Errorf("%q should parse", s)
		}
	}
	for _, s := range []string{"", "yesterday", "2024-13-45T99:00:00Z"} {
		if _, ok := ParseTime(s, time.UTC); ok {
			t.Errorf("%q should not parse", s)
		}
	}
}

func TestParseTime_ZonelessUsesLocation(t *testing.T) {
	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Skip("tzdata not available")
	}
	got, ok := ParseTime("2024-03-05T09:00:00", paris)
	if !ok {
		t.Fatal("should parse")
	}
	if got.UTC().Hour() != 8 {
		t.Errorf("zone-less time should be read in the given location, got %s", got.UTC())
	}
}
