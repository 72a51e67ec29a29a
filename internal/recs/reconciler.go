// Package recs turns the backend's raw recommendation list into a
// deduplicated, partitioned, prioritized structure for display.
package recs

import (
	"sort"
	"strings"

	"github.com/devgirls-app/health-monitoring-app/internal/models"
)

// FilterByUser keeps only the entries owned by userID. The backend returns
// every visible recommendation; client-side filtering is mandatory.
func FilterByUser(list []models.HealthRecommendation, userID int) []models.HealthRecommendation {
	var out []models.HealthRecommendation
	for _, r := range list {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out
}

// Deduplicate collapses rows that represent the same logical recommendation.
// Server-side regeneration (weekly summaries are recomputed idempotently)
// can insert multiple rows for the same calendar day and source; the dedup
// key is (creation day, source tag) and the highest numeric id wins, on the
// assumption that ids are assigned monotonically. Applying Deduplicate to
// its own output is a no-op.
func Deduplicate(list []models.HealthRecommendation) []models.HealthRecommendation {
	byID := make([]models.HealthRecommendation, len(list))
	copy(byID, list)
	sort.SliceStable(byID, func(i, j int) bool {
		return byID[i].RecID > byID[j].RecID
	})

	seen := make(map[string]bool, len(byID))
	var unique []models.HealthRecommendation
	for _, r := range byID {
		key := r.CreatedDayKey() + "_" + r.SourceTag()
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, r)
	}
	return unique
}

// Partition splits the list into weekly reports and daily insights. The
// weekly_summary source tag is the sole discriminator.
func Partition(list []models.HealthRecommendation) (weekly, daily []models.HealthRecommendation) {
	for _, r := range list {
		if r.IsWeeklySummary() {
			weekly = append(weekly, r)
		} else {
			daily = append(daily, r)
		}
	}
	return weekly, daily
}

// SortByNewest returns a copy ordered by creation timestamp descending, for
// list views.
func SortByNewest(list []models.HealthRecommendation) []models.HealthRecommendation {
	out := make([]models.HealthRecommendation, len(list))
	copy(out, list)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedTime().After(out[j].CreatedTime())
	})
	return out
}

// SeverityWeight ranks severities for the compact summary view.
func SeverityWeight(severity *string) int {
	if severity == nil {
		return 1
	}
	switch strings.ToLower(*severity) {
	case "critical":
		return 3
	case "warning":
		return 2
	default:
		return 1
	}
}

// SelectBest picks the single item for a compact summary view: highest
// severity weight first, ties broken by most recent creation timestamp.
// ok is false for an empty list.
func SelectBest(list []models.HealthRecommendation) (best models.HealthRecommendation, ok bool) {
	for i, r := range list {
		if i == 0 {
			best, ok = r, true
			continue
		}
		wr, wb := SeverityWeight(r.Severity), SeverityWeight(best.Severity)
		if wr > wb || (wr == wb && r.CreatedTime().After(best.CreatedTime())) {
			best = r
		}
	}
	return best, ok
}

// Reconciled is the displayable result of a full reconciliation pass.
type Reconciled struct {
	Weekly []models.HealthRecommendation
	Daily  []models.HealthRecommendation

	// Best is the single item for the compact dashboard view; nil when the
	// list is empty, which is a valid "no recommendations" state.
	Best *models.HealthRecommendation
}

// All returns the merged weekly+daily list, newest first.
func (r Reconciled) All() []models.HealthRecommendation {
	all := make([]models.HealthRecommendation, 0, len(r.Weekly)+len(r.Daily))
	all = append(all, r.Weekly...)
	all = append(all, r.Daily...)
	return SortByNewest(all)
}

// Reconcile runs the full pipeline: filter by user, deduplicate, sort
// newest-first, partition, and select the best item for display.
func Reconcile(list []models.HealthRecommendation, userID int) Reconciled {
	unique := Deduplicate(FilterByUser(list, userID))
	sorted := SortByNewest(unique)
	weekly, daily := Partition(sorted)

	out := Reconciled{Weekly: weekly, Daily: daily}
	if best, ok := SelectBest(unique); ok {
		out.Best = &best
	}
	return out
}
