package recs

import (
	"testing"

	"github.com/devgirls-app/health-monitoring-app/internal/models"
)

func strPtr(s string) *string { return &s }

func rec(id int, userID int, source string, severity string, created []int) models.HealthRecommendation {
	r := models.HealthRecommendation{
		RecID:              id,
		UserID:             userID,
		RecommendationText: "rec",
		CreatedAt:          created,
	}
	if source != "" {
		r.Source = strPtr(source)
	}
	if severity != "" {
		r.Severity = strPtr(severity)
	}
	return r
}

func TestFilterByUser(t *testing.T) {
	list := []models.HealthRecommendation{
		rec(1, 42, "ml_model", "", []int{2025, 11, 1}),
		rec(2, 7, "ml_model", "", []int{2025, 11, 1}),
		rec(3, 42, "ml_model", "", []int{2025, 11, 2}),
	}
	got := FilterByUser(list, 42)
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	for _, r := range got {
		if r.UserID != 42 {
			t.Errorf("entry for user %d leaked through", r.UserID)
		}
	}
}

// TestDeduplicateHighestIDWins verifies that of two rows sharing a creation
// day and source, the one with the higher id survives.
func TestDeduplicateHighestIDWins(t *testing.T) {
	list := []models.HealthRecommendation{
		rec(101, 1, "ml_model", "", []int{2025, 11, 18}),
		rec(105, 1, "ml_model", "", []int{2025, 11, 18, 14, 0, 0}),
	}
	got := Deduplicate(list)
	if len(got) != 1 {
		t.Fatalf("got %d entries, want 1", len(got))
	}
	if got[0].RecID != 105 {
		t.Errorf("kept id %d, want 105", got[0].RecID)
	}
}

func TestDeduplicateKeepsDistinctDaysAndSources(t *testing.T) {
	list := []models.HealthRecommendation{
		rec(1, 1, "ml_model", "", []int{2025, 11, 17}),
		rec(2, 1, "ml_model", "", []int{2025, 11, 18}),
		rec(3, 1, models.WeeklySummarySource, "", []int{2025, 11, 18}),
	}
	got := Deduplicate(list)
	if len(got) != 3 {
		t.Errorf("got %d entries, want 3 (distinct day/source pairs)", len(got))
	}
}

// TestDeduplicateIdempotent verifies that deduplicating an already-clean
// list changes nothing.
func TestDeduplicateIdempotent(t *testing.T) {
	list := []models.HealthRecommendation{
		rec(5, 1, "ml_model", "", []int{2025, 11, 18}),
		rec(4, 1, "ml_model", "", []int{2025, 11, 17}),
		rec(3, 1, models.WeeklySummarySource, "", []int{2025, 11, 17}),
	}
	once := Deduplicate(list)
	twice := Deduplicate(once)
	if len(once) != len(twice) {
		t.Fatalf("second pass changed length: %d -> %d", len(once), len(twice))
	}
	for i := range once {
		if once[i].RecID != twice[i].RecID {
			t.Errorf("entry %d changed: %d -> %d", i, once[i].RecID, twice[i].RecID)
		}
	}
}

// TestPartitionCoversInput verifies every entry lands in exactly one bucket.
func TestPartitionCoversInput(t *testing.T) {
	list := []models.HealthRecommendation{
		rec(1, 1, models.WeeklySummarySource, "", []int{2025, 11, 17}),
		rec(2, 1, "ml_model", "", []int{2025, 11, 18}),
		rec(3, 1, "", "", []int{2025, 11, 18}),
	}
	weekly, daily := Partition(list)
	if len(weekly)+len(daily) != len(list) {
		t.Fatalf("partition lost entries: %d + %d != %d", len(weekly), len(daily), len(list))
	}
	if len(weekly) != 1 || weekly[0].RecID != 1 {
		t.Errorf("weekly = %+v, want only id 1", weekly)
	}
	if len(daily) != 2 {
		t.Errorf("daily has %d entries, want 2", len(daily))
	}
}

func TestSortByNewest(t *testing.T) {
	list := []models.HealthRecommendation{
		rec(1, 1, "ml_model", "", []int{2025, 11, 16}),
		rec(2, 1, "ml_model", "", []int{2025, 11, 18}),
		rec(3, 1, "ml_model", "", []int{2025, 11, 17}),
	}
	got := SortByNewest(list)
	if got[0].RecID != 2 || got[1].RecID != 3 || got[2].RecID != 1 {
		t.Errorf("order = %d,%d,%d, want 2,3,1", got[0].RecID, got[1].RecID, got[2].RecID)
	}
	if list[0].RecID != 1 {
		t.Error("input slice was reordered in place")
	}
}

func TestSeverityWeight(t *testing.T) {
	cases := []struct {
		severity *string
		want     int
	}{
		{strPtr("critical"), 3},
		{strPtr("CRITICAL"), 3},
		{strPtr("warning"), 2},
		{strPtr("info"), 1},
		{strPtr(""), 1},
		{nil, 1},
	}
	for _, c := range cases {
		if got := SeverityWeight(c.severity); got != c.want {
			t.Errorf("SeverityWeight(%v) = %d, want %d", c.severity, got, c.want)
		}
	}
}

// TestSelectBestSeverityWins verifies severity outranks recency.
func TestSelectBestSeverityWins(t *testing.T) {
	list := []models.HealthRecommendation{
		rec(1, 1, "ml_model", "info", []int{2025, 11, 18}),
		rec(2, 1, "ml_model", "critical", []int{2025, 11, 10}),
		rec(3, 1, "ml_model", "warning", []int{2025, 11, 17}),
	}
	best, ok := SelectBest(list)
	if !ok || best.RecID != 2 {
		t.Errorf("best = %+v (ok=%v), want id 2", best, ok)
	}
}

// TestSelectBestTieBrokenByRecency verifies equal severities fall back to
// the most recent creation time.
func TestSelectBestTieBrokenByRecency(t *testing.T) {
	list := []models.HealthRecommendation{
		rec(1, 1, "ml_model", "warning", []int{2025, 11, 10}),
		rec(2, 1, "ml_model", "warning", []int{2025, 11, 17}),
	}
	best, ok := SelectBest(list)
	if !ok || best.RecID != 2 {
		t.Errorf("best = %+v (ok=%v), want id 2", best, ok)
	}
}

func TestSelectBestEmpty(t *testing.T) {
	if _, ok := SelectBest(nil); ok {
		t.Error("ok = true for empty list")
	}
}

// TestReconcileEmptyListValid verifies an empty backend response reconciles
// to a valid empty state, not an error.
func TestReconcileEmptyListValid(t *testing.T) {
	out := Reconcile(nil, 42)
	if len(out.Weekly) != 0 || len(out.Daily) != 0 || out.Best != nil {
		t.Errorf("empty input produced non-empty result: %+v", out)
	}
	if got := out.All(); len(got) != 0 {
		t.Errorf("All() = %d entries, want 0", len(got))
	}
}

func TestReconcilePipeline(t *testing.T) {
	list := []models.HealthRecommendation{
		rec(101, 42, "ml_model", "info", []int{2025, 11, 18}),
		rec(105, 42, "ml_model", "info", []int{2025, 11, 18}),
		rec(90, 42, models.WeeklySummarySource, "warning", []int{2025, 11, 17}),
		rec(80, 7, "ml_model", "critical", []int{2025, 11, 18}),
	}
	out := Reconcile(list, 42)
	if len(out.Weekly) != 1 || len(out.Daily) != 1 {
		t.Fatalf("weekly=%d daily=%d, want 1 and 1", len(out.Weekly), len(out.Daily))
	}
	if out.Daily[0].RecID != 105 {
		t.Errorf("duplicate not collapsed to highest id, got %d", out.Daily[0].RecID)
	}
	if out.Best == nil || out.Best.RecID != 90 {
		t.Errorf("best = %+v, want the warning-severity weekly report (id 90)", out.Best)
	}
	all := out.All()
	if len(all) != 2 || all[0].RecID != 105 {
		t.Errorf("All() = %+v, want newest first", all)
	}
}
