package models

import "time"

// WeeklySummarySource is the source tag the backend puts on weekly reports.
// It is the sole discriminator between a weekly report and a daily insight;
// a magic string shared with the server, not an enum.
const WeeklySummarySource = "weekly_summary"

// HealthRecommendation is a server-issued advisory. CreatedAt uses the
// backend's component-array encoding: [year, month, day] optionally followed
// by [hour, minute, second].
type HealthRecommendation struct {
	RecID              int     `json:"recId"`
	RecommendationText string  `json:"recommendationText"`
	Source             *string `json:"source"`
	Severity           *string `json:"severity"`
	CreatedAt          []int   `json:"createdAt"`
	UserID             int     `json:"userId"`
}

// SourceTag returns the source, or "unknown" when the backend sent none.
func (r HealthRecommendation) SourceTag() string {
	if r.Source == nil || *r.Source == "" {
		return "unknown"
	}
	return *r.Source
}

// IsWeeklySummary reports whether this row is a weekly report.
func (r HealthRecommendation) IsWeeklySummary() bool {
	return r.Source != nil && *r.Source == WeeklySummarySource
}

// CreatedTime decodes the creation timestamp. Truncated component arrays
// default the missing time-of-day parts to zero; fewer than three components
// yields the zero time.
func (r HealthRecommendation) CreatedTime() time.Time {
	return timeFromComponents(r.CreatedAt)
}

// CreatedDayKey returns the creation day as "yyyy-MM-dd".
func (r HealthRecommendation) CreatedDayKey() string {
	return DayKey(r.CreatedTime())
}
