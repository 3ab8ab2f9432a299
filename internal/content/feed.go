package content

import "time"

// FeedOptions configures feed retrieval. Zero values mean "no filter".
type FeedOptions struct {
	Limit     int
	Since     time.Time
	Until     time.Time
	Platforms []Platform
	Statuses  []Status
}

// Feed holds normalized items and answers filtered, newest-first views of
// them. It mirrors the rows just fetched; nothing is cached across loads.
type Feed struct {
	items    []Item
	location *time.Location
}

// NewFeed creates an empty Feed reading zone-less timestamps in loc.
func NewFeed(loc *time.Location) *Feed {
	if loc == nil {
		loc = time.Local
	}
	return &Feed{
		items:    make([]Item, 0),
		location: loc,
	}
}

// AddItems adds items to the feed.
func (f *Feed) AddItems(items []Item) {
	f.items = append(f.items, items...)
	SortNewestFirst(f.items, f.location)
}

// Items returns the items matching opts, newest first. The result is never
// nil.
func (f *Feed) Items(opts FeedOptions) []Item {
	out := make([]Item, 0, len(f.items))
	for _, item := range f.items {
		if !f.matches(item, opts) {
			continue
		}
		out = append(out, item)
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
	}
	return out
}

// Find returns the item with the given id. Posted ids are tried first when
// the id happens to exist in both spaces; pass a Ref to FindRef to be exact.
func (f *Feed) Find(id string) (Item, bool) {
	for _, kind := range []Kind{KindPosted, KindScheduled} {
		if item, ok := f.FindRef(Ref{Kind: kind, ID: id}); ok {
			return item, true
		}
	}
	return Item{}, false
}

// FindRef returns the item behind ref.
func (f *Feed) FindRef(ref Ref) (Item, bool) {
	for _, item := range f.items {
		if item.Ref == ref {
			return item, true
		}
	}
	return Item{}, false
}

// Replace swaps in an updated copy of an item already in the feed.
func (f *Feed) Replace(item Item) bool {
	for i := range f.items {
		if f.items[i].Ref == item.Ref {
			f.items[i] = item
			return true
		}
	}
	return false
}

func (f *Feed) matches(item Item, opts FeedOptions) bool {
	if len(opts.Platforms) > 0 && !containsPlatform(opts.Platforms, item.Platform) {
		return false
	}
	if len(opts.Statuses) > 0 && !containsStatus(opts.Statuses, item.Status) {
		return false
	}
	if opts.Since.IsZero() && opts.Until.IsZero() {
		return true
	}
	t, ok := item.ParsedTime(f.location)
	if !ok {
		return false
	}
	if !opts.Since.IsZero() && t.Before(opts.Since) {
		return false
	}
	if !opts.Until.IsZero() && t.After(opts.Until) {
		return false
	}
	return true
}

func containsPlatform(list []Platform, p Platform) bool {
	for _, v := range list {
		if v == p {
			return true
		}
	}
	return false
}

func containsStatus(list []Status, s Status) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
