// Package display provides terminal output formatting for postdeck.
package display

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/gauthierbraillon/postdeck/internal/calendar"
	"github.com/gauthierbraillon/postdeck/internal/content"
)

const separator = " • "

// cellWidth is the width of one month-grid cell.
const cellWidth = 10

var (
	todayStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	headerStyle = lipgloss.NewStyle().Bold(true)
)

var knownPlatforms = map[content.Platform]bool{
	content.PlatformX:        true,
	content.PlatformLinkedIn: true,
	content.PlatformSubstack: true,
}

// TerminalFormatter formats items and calendar views for terminal display.
type TerminalFormatter struct {
	now      func() time.Time
	location *time.Location
}

// NewTerminalFormatter creates a new terminal formatter.
func NewTerminalFormatter() *TerminalFormatter {
	return &TerminalFormatter{now: time.Now, location: time.Local}
}

// WithClock returns a copy of the formatter using now for relative times.
func (f *TerminalFormatter) WithClock(now func() time.Time) *TerminalFormatter {
	c := *f
	c.now = now
	return &c
}

// WithLocation returns a copy of the formatter printing times in loc.
func (f *TerminalFormatter) WithLocation(loc *time.Location) *TerminalFormatter {
	c := *f
	if loc != nil {
		c.location = loc
	}
	return &c
}

// PlatformTag returns the bracketed platform label, [POST] for unknown
// platforms.
func PlatformTag(p content.Platform) string {
	if !knownPlatforms[p] {
		return "[POST]"
	}
	return "[" + strings.ToUpper(string(p)) + "]"
}

// FormatItem formats a single item for display.
func (f *TerminalFormatter) FormatItem(item content.Item) string {
	var lines []string

	// Header: [PLATFORM] status • feedback
	header := fmt.Sprintf("%s %s", PlatformTag(item.Platform), item.Status)
	if item.Feedback != content.FeedbackNone {
		header += separator + string(item.Feedback)
	}
	lines = append(lines, header)

	// Id and time
	lines = append(lines, fmt.Sprintf("  %s%s%s", item.Ref, separator, f.formatItemTime(item)))

	text := item.Text
	if text == "" {
		text = "(no text)"
	}
	lines = append(lines, "  "+f.TruncateText(strings.ReplaceAll(text, "\n", " "), 120))

	if item.Metrics != nil {
		if engagement := f.formatMetrics(*item.Metrics); engagement != "" {
			lines = append(lines, "  "+engagement)
		}
	}

	if item.FeedbackNote != "" {
		lines = append(lines, "  note: "+item.FeedbackNote)
	}

	if item.ExternalURL != "" {
		lines = append(lines, "  "+item.ExternalURL)
	}

	return strings.Join(lines, "\n") + "\n"
}

func (f *TerminalFormatter) formatItemTime(item content.Item) string {
	t, ok := item.ParsedTime(f.location)
	if !ok {
		return item.Time + " (unparsed)"
	}
	return f.FormatTimestamp(t)
}

// formatMetrics formats engagement stats into a single line.
func (f *TerminalFormatter) formatMetrics(m content.Metrics) string {
	var parts []string

	if m.Impressions > 0 {
		parts = append(parts, fmt.Sprintf("%d impressions", m.Impressions))
	}
	if m.Likes > 0 {
		parts = append(parts, fmt.Sprintf("%d likes", m.Likes))
	}
	if m.Retweets > 0 {
		parts = append(parts, fmt.Sprintf("%d reposts", m.Retweets))
	}
	if m.RepliesCount > 0 {
		parts = append(parts, fmt.Sprintf("%d replies", m.RepliesCount))
	}
	if m.Bookmarks > 0 {
		parts = append(parts, fmt.Sprintf("%d bookmarks", m.Bookmarks))
	}
	if m.EngagementRate > 0 {
		parts = append(parts, fmt.Sprintf("%.2f%% ER", m.EngagementRate))
	}

	return strings.Join(parts, separator)
}

// FormatFeed formats multiple items for display.
func (f *TerminalFormatter) FormatFeed(items []content.Item) string {
	if len(items) == 0 {
		return "No items to display.\n"
	}

	var formatted []string
	for _, item := range items {
		formatted = append(formatted, f.FormatItem(item))
	}

	return strings.Join(formatted, "\n---\n\n")
}

// FormatView renders a calendar view.
func (f *TerminalFormatter) FormatView(v calendar.View) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(v.Title))
	b.WriteString("\n\n")

	switch v.Granularity {
	case calendar.Month:
		f.writeMonth(&b, v)
	default:
		f.writeBuckets(&b, v)
	}
	return b.String()
}

func (f *TerminalFormatter) writeMonth(b *strings.Builder, v calendar.View) {
	for _, wd := range []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"} {
		b.WriteString(pad(wd, cellWidth))
	}
	b.WriteString("\n")

	for _, row := range v.Weeks() {
		for _, cell := range row {
			b.WriteString(monthCell(cell))
		}
		b.WriteString("\n")
	}
}

// monthCell renders "12* (3)" style cells: day, today marker, item count.
func monthCell(cell calendar.Bucket) string {
	if cell.Padding {
		return pad("", cellWidth)
	}
	text := cell.Label
	if cell.IsToday {
		text += "*"
	}
	if n := len(cell.Items); n > 0 {
		text += fmt.Sprintf(" (%d)", n)
	}
	padded := pad(text, cellWidth)
	switch {
	case cell.IsToday:
		return todayStyle.Render(padded)
	case len(cell.Items) == 0:
		return mutedStyle.Render(padded)
	}
	return padded
}

func (f *TerminalFormatter) writeBuckets(b *strings.Builder, v calendar.View) {
	for _, bucket := range v.Buckets {
		label := bucket.Label
		if bucket.StartHour != 0 || bucket.EndHour != 0 {
			label = fmt.Sprintf("%s (%02d-%02d)", bucket.Label, bucket.StartHour, bucket.EndHour)
		}
		if bucket.IsToday && v.Granularity == calendar.Week {
			label = todayStyle.Render(label + " *")
		}
		b.WriteString(label)
		b.WriteString("\n")

		if len(bucket.Items) == 0 {
			b.WriteString(mutedStyle.Render("  nothing scheduled"))
			b.WriteString("\n")
			continue
		}
		for _, item := range bucket.Items {
			b.WriteString(f.formatLine(item))
			b.WriteString("\n")
		}
	}
}

// formatLine is the one-line form used inside week and day buckets.
func (f *TerminalFormatter) formatLine(item content.Item) string {
	clock := "--:--"
	if t, ok := item.ParsedTime(f.location); ok {
		clock = t.In(f.location).Format("15:04")
	}
	mark := ""
	switch item.Feedback {
	case content.FeedbackApproved:
		mark = " +"
	case content.FeedbackRejected:
		mark = " -"
	}
	return fmt.Sprintf("  %s %s %-9s %s%s", clock, PlatformTag(item.Platform), item.Status,
		f.TruncateText(strings.ReplaceAll(item.Text, "\n", " "), 60), mark)
}

// FormatStats renders the stat cards.
func (f *TerminalFormatter) FormatStats(s content.Stats) string {
	var lines []string
	lines = append(lines, fmt.Sprintf("Items: %d", s.Total))
	lines = append(lines, fmt.Sprintf("  posted %d%sscheduled %d%sdraft %d",
		s.ByStatus[content.StatusPosted], separator,
		s.ByStatus[content.StatusScheduled], separator,
		s.ByStatus[content.StatusDraft]))

	platforms := make([]string, 0, len(s.ByPlatform))
	for p := range s.ByPlatform {
		platforms = append(platforms, string(p))
	}
	sort.Strings(platforms)
	parts := make([]string, 0, len(platforms))
	for _, p := range platforms {
		parts = append(parts, fmt.Sprintf("%s %d", PlatformTag(content.Platform(p)), s.ByPlatform[content.Platform(p)]))
	}
	if len(parts) > 0 {
		lines = append(lines, "  "+strings.Join(parts, separator))
	}

	lines = append(lines, fmt.Sprintf("Review: %d approved%s%d rejected%s%d unreviewed",
		s.Approved, separator, s.Rejected, separator, s.Unreviewed))
	lines = append(lines, fmt.Sprintf("Engagement: %d impressions%s%d likes%s%.2f%% avg ER",
		s.TotalImpressions, separator, s.TotalLikes, separator, s.AvgEngagementRate))
	return strings.Join(lines, "\n") + "\n"
}

// FormatTimestamp formats a timestamp relative to now, past or future.
func (f *TerminalFormatter) FormatTimestamp(t time.Time) string {
	diff := f.now().Sub(t)
	if diff < 0 {
		return f.formatFuture(-diff, t)
	}

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return pluralize(int(diff.Minutes()), "minute") + " ago"
	case diff < 24*time.Hour:
		return pluralize(int(diff.Hours()), "hour") + " ago"
	case diff < 7*24*time.Hour:
		return pluralize(int(diff.Hours()/24), "day") + " ago"
	default:
		return t.In(f.location).Format("Jan 2, 2006")
	}
}

func (f *TerminalFormatter) formatFuture(d time.Duration, t time.Time) string {
	switch {
	case d < time.Minute:
		return "in a moment"
	case d < time.Hour:
		return "in " + pluralize(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return "in " + pluralize(int(d.Hours()), "hour")
	case d < 7*24*time.Hour:
		return "in " + pluralize(int(d.Hours()/24), "day")
	default:
		return t.In(f.location).Format("Jan 2, 2006 15:04")
	}
}

// pluralize returns "N unit" or "N units" based on count.
func pluralize(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// TruncateText truncates text to maxLen runes, adding "..." if truncated.
func (f *TerminalFormatter) TruncateText(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return "..."
	}
	return string(runes[:maxLen-3]) + "..."
}

func pad(s string, width int) string {
	if n := len([]rune(s)); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
