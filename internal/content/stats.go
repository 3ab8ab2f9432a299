package content

// Stats backs the dashboard's stat cards.
type Stats struct {
	Total             int              `json:"total" yaml:"total"`
	ByStatus          map[Status]int   `json:"by_status" yaml:"by_status"`
	ByPlatform        map[Platform]int `json:"by_platform" yaml:"by_platform"`
	Approved          int              `json:"approved" yaml:"approved"`
	Rejected          int              `json:"rejected" yaml:"rejected"`
	Unreviewed        int              `json:"unreviewed" yaml:"unreviewed"`
	TotalImpressions  int64            `json:"total_impressions" yaml:"total_impressions"`
	TotalLikes        int64            `json:"total_likes" yaml:"total_likes"`
	AvgEngagementRate float64          `json:"avg_engagement_rate" yaml:"avg_engagement_rate"`
}

// Summarize counts items by status, platform and feedback, and totals
// posted metrics. The engagement average is over stored rates only.
func Summarize(items []Item) Stats {
	s := Stats{
		Total:      len(items),
		ByStatus:   make(map[Status]int),
		ByPlatform: make(map[Platform]int),
	}

	var posted int
	var rateSum float64
	for _, item := range items {
		s.ByStatus[item.Status]++
		s.ByPlatform[item.Platform]++

		switch item.Feedback {
		case FeedbackApproved:
			s.Approved++
		case FeedbackRejected:
			s.Rejected++
		default:
			s.Unreviewed++
		}

		if item.Status != StatusPosted || item.Metrics == nil {
			continue
		}
		posted++
		s.TotalImpressions += item.Metrics.Impressions
		s.TotalLikes += item.Metrics.Likes
		rateSum += item.Metrics.EngagementRate
	}

	if posted > 0 {
		s.AvgEngagementRate = rateSum / float64(posted)
	}
	return s
}
