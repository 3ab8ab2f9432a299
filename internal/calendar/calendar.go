// Package calendar projects unified content items onto month, week and day
// views.
//
// Partitioning is a pure function of the items, the reference date and the
// clock used for "today" highlighting. Month and week cells match items by
// the YYYY-MM-DD prefix of their stored timestamp, so a garbled timestamp
// lands nowhere instead of somewhere wrong. Nothing here returns an error:
// the worst case for bad input is an item missing from every bucket.
package calendar

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gauthierbraillon/postdeck/internal/content"
)

// Granularity selects the view.
type Granularity string

const (
	Month Granularity = "month"
	Week  Granularity = "week"
	Day   Granularity = "day"
)

// ParseGranularity accepts month, week or day.
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(strings.ToLower(s)) {
	case Month, Week, Day:
		return Granularity(strings.ToLower(s)), nil
	}
	return "", fmt.Errorf("invalid view %q: must be month, week or day", s)
}

// DateLayout is the bucket key format.
const DateLayout = "2006-01-02"

// Daypart is a fixed slice of the day, [Start, End) in local hours.
type Daypart struct {
	Label string
	Start int
	End   int
}

// Dayparts are disjoint and cover all 24 hours.
var Dayparts = []Daypart{
	{Label: "Morning", Start: 6, End: 12},
	{Label: "Afternoon", Start: 12, End: 18},
	{Label: "Evening", Start: 18, End: 24},
	{Label: "Night", Start: 0, End: 6},
}

// DaypartFor returns the index into Dayparts covering hour.
func DaypartFor(hour int) int {
	for i, dp := range Dayparts {
		if hour >= dp.Start && hour < dp.End {
			return i
		}
	}
	return -1
}

// Bucket is one cell, column or daypart.
type Bucket struct {
	Label     string         `json:"label"`
	Date      string         `json:"date,omitempty"`
	Items     []content.Item `json:"items"`
	IsToday   bool           `json:"is_today,omitempty"`
	Padding   bool           `json:"padding,omitempty"`
	Empty     bool           `json:"empty,omitempty"`
	StartHour int            `json:"start_hour,omitempty"`
	EndHour   int            `json:"end_hour,omitempty"`
}

// View is the result of a partition.
type View struct {
	Granularity Granularity `json:"granularity"`
	Date        string      `json:"date"`
	Title       string      `json:"title"`
	Offset      int         `json:"offset,omitempty"`
	DaysInMonth int         `json:"days_in_month,omitempty"`
	Buckets     []Bucket    `json:"buckets"`
}

// Weeks groups a month view's buckets into rows of seven, padding the last
// row. Other views come back as a single row.
func (v View) Weeks() [][]Bucket {
	if v.Granularity != Month {
		return [][]Bucket{v.Buckets}
	}
	cells := append([]Bucket(nil), v.Buckets...)
	for len(cells)%7 != 0 {
		cells = append(cells, paddingBucket())
	}
	rows := make([][]Bucket, 0, len(cells)/7)
	for i := 0; i < len(cells); i += 7 {
		rows = append(rows, cells[i:i+7])
	}
	return rows
}

// Option configures a Partitioner.
type Option func(*Partitioner)

// WithLocation sets the calendar's timezone. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(p *Partitioner) {
		if loc != nil {
			p.location = loc
		}
	}
}

// WithClock sets the clock used to flag today's bucket.
func WithClock(now func() time.Time) Option {
	return func(p *Partitioner) {
		if now != nil {
			p.now = now
		}
	}
}

// Partitioner builds calendar views. It holds no state between calls.
type Partitioner struct {
	location *time.Location
	now      func() time.Time
}

// New creates a Partitioner.
func New(opts ...Option) *Partitioner {
	p := &Partitioner{
		location: time.Local,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Location returns the calendar's timezone.
func (p *Partitioner) Location() *time.Location { return p.location }

// Partition dispatches on g. An unknown granularity falls back to month.
func (p *Partitioner) Partition(items []content.Item, ref time.Time, g Granularity) View {
	switch g {
	case Week:
		return p.Week(items, ref)
	case Day:
		return p.Day(items, ref)
	default:
		return p.Month(items, ref)
	}
}

// Month lays out the month containing ref: Offset padding cells for the
// weekdays before the 1st (Sunday first), then one cell per day.
func (p *Partitioner) Month(items []content.Item, ref time.Time) View {
	ref = ref.In(p.location)
	year, month, _ := ref.Date()
	first := time.Date(year, month, 1, 0, 0, 0, 0, p.location)
	offset := int(first.Weekday())
	days := time.Date(year, month+1, 0, 0, 0, 0, 0, p.location).Day()
	today := p.today()

	buckets := make([]Bucket, 0, offset+days)
	for i := 0; i < offset; i++ {
		buckets = append(buckets, paddingBucket())
	}
	index := make(map[string]int, days)
	for d := 1; d <= days; d++ {
		date := time.Date(year, month, d, 0, 0, 0, 0, p.location).Format(DateLayout)
		index[date] = len(buckets)
		buckets = append(buckets, Bucket{
			Label:   fmt.Sprintf("%d", d),
			Date:    date,
			Items:   make([]content.Item, 0),
			IsToday: date == today,
		})
	}

	p.assignByDate(buckets, index, items)

	return View{
		Granularity: Month,
		Date:        first.Format(DateLayout),
		Title:       first.Format("January 2006"),
		Offset:      offset,
		DaysInMonth: days,
		Buckets:     buckets,
	}
}

// Week lays out Sunday..Saturday of the week containing ref, each column
// sorted by timestamp ascending.
func (p *Partitioner) Week(items []content.Item, ref time.Time) View {
	start := p.weekStart(ref)
	today := p.today()

	buckets := make([]Bucket, 7)
	index := make(map[string]int, 7)
	for i := range buckets {
		day := time.Date(start.Year(), start.Month(), start.Day()+i, 0, 0, 0, 0, p.location)
		date := day.Format(DateLayout)
		index[date] = i
		buckets[i] = Bucket{
			Label:   day.Format("Mon 2"),
			Date:    date,
			Items:   make([]content.Item, 0),
			IsToday: date == today,
		}
	}

	p.assignByDate(buckets, index, items)
	for i := range buckets {
		p.sortAscending(buckets[i].Items)
	}

	end := start.AddDate(0, 0, 6)
	return View{
		Granularity: Week,
		Date:        start.Format(DateLayout),
		Title:       start.Format("Jan 2") + " - " + end.Format("Jan 2, 2006"),
		Buckets:     buckets,
	}
}

// Day splits ref's date into the four dayparts by local hour. Empty
// dayparts are dropped when any daypart has items; an empty day keeps all
// four, each marked Empty.
//
// Membership follows the stored date prefix, the same rule Month and Week
// use, while the daypart follows the local hour. Outside UTC an item can
// therefore sit in a daypart whose hours fall on the neighbouring local
// date: 2024-03-05T23:30:00Z is listed on 03-05 under Morning in Tokyo.
func (p *Partitioner) Day(items []content.Item, ref time.Time) View {
	ref = ref.In(p.location)
	day := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, p.location)
	date := day.Format(DateLayout)
	isToday := date == p.today()

	all := make([]Bucket, len(Dayparts))
	for i, dp := range Dayparts {
		all[i] = Bucket{
			Label:     dp.Label,
			Date:      date,
			Items:     make([]content.Item, 0),
			IsToday:   isToday,
			StartHour: dp.Start,
			EndHour:   dp.End,
		}
	}

	for _, item := range items {
		if datePrefix(item.Time) != date {
			continue
		}
		t, ok := item.ParsedTime(p.location)
		if !ok {
			continue
		}
		if i := DaypartFor(t.In(p.location).Hour()); i >= 0 {
			all[i].Items = append(all[i].Items, item)
		}
	}

	buckets := make([]Bucket, 0, len(all))
	for i := range all {
		p.sortAscending(all[i].Items)
		if len(all[i].Items) > 0 {
			buckets = append(buckets, all[i])
		}
	}
	if len(buckets) == 0 {
		for i := range all {
			all[i].Empty = true
		}
		buckets = all
	}

	return View{
		Granularity: Day,
		Date:        date,
		Title:       day.Format("Monday, January 2, 2006"),
		Buckets:     buckets,
	}
}

// Shift moves ref by n views: months, weeks or days.
func Shift(ref time.Time, g Granularity, n int) time.Time {
	switch g {
	case Week:
		return ref.AddDate(0, 0, 7*n)
	case Day:
		return ref.AddDate(0, 0, n)
	default:
		// Anchor on the 1st so Jan 31 + 1 month is February, not March.
		return time.Date(ref.Year(), ref.Month()+time.Month(n), 1, 0, 0, 0, 0, ref.Location())
	}
}

func (p *Partitioner) assignByDate(buckets []Bucket, index map[string]int, items []content.Item) {
	for _, item := range items {
		if _, ok := item.ParsedTime(p.location); !ok {
			continue
		}
		if i, ok := index[datePrefix(item.Time)]; ok {
			buckets[i].Items = append(buckets[i].Items, item)
		}
	}
}

func (p *Partitioner) weekStart(ref time.Time) time.Time {
	ref = ref.In(p.location)
	return time.Date(ref.Year(), ref.Month(), ref.Day()-int(ref.Weekday()), 0, 0, 0, 0, p.location)
}

func (p *Partitioner) today() string {
	return p.now().In(p.location).Format(DateLayout)
}

func (p *Partitioner) sortAscending(items []content.Item) {
	sort.SliceStable(items, func(a, b int) bool {
		ta, _ := items[a].ParsedTime(p.location)
		tb, _ := items[b].ParsedTime(p.location)
		return ta.Before(tb)
	})
}

func datePrefix(ts string) string {
	if len(ts) < len(DateLayout) {
		return ""
	}
	return ts[:len(DateLayout)]
}

func paddingBucket() Bucket {
	return Bucket{Padding: true, Items: make([]content.Item, 0)}
}
