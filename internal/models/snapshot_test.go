package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }

// TestToDTOMapsAllFields verifies every set snapshot field maps 1:1 onto
// the DTO and the user id is carried through.
func TestToDTOMapsAllFields(t *testing.T) {
	snap := HealthSnapshot{
		Steps:            intPtr(8432),
		AverageHeartRate: intPtr(72),
		Calories:         floatPtr(430.5),
		SleepHours:       floatPtr(7.2),
		Distance:         floatPtr(5.1),
		Timestamp:        NewLocalTime(time.Date(2025, 11, 18, 9, 0, 0, 0, time.Local)),
		Age:              intPtr(29),
		Gender:           strPtr("female"),
	}

	dto := snap.ToDTO(42, SourceDeviceLive)

	if dto.UserID != 42 {
		t.Errorf("userId = %d, want 42", dto.UserID)
	}
	if dto.Source != SourceDeviceLive {
		t.Errorf("source = %q, want %q", dto.Source, SourceDeviceLive)
	}
	if dto.Timestamp != "2025-11-18T09:00:00" {
		t.Errorf("timestamp = %q", dto.Timestamp)
	}
	if *dto.Steps != 8432 || *dto.HeartRate != 72 || *dto.Calories != 430.5 ||
		*dto.SleepHours != 7.2 || *dto.Distance != 5.1 || *dto.Age != 29 || *dto.Gender != "female" {
		t.Errorf("DTO fields do not match snapshot: %+v", dto)
	}
}

// TestToDTOManualHeartRateFallback verifies the DTO heart rate falls back
// to the manual override when no samples were measured.
func TestToDTOManualHeartRateFallback(t *testing.T) {
	snap := HealthSnapshot{ManualHeartRate: intPtr(65)}
	dto := snap.ToDTO(1, SourceDeviceLive)
	if dto.HeartRate == nil || *dto.HeartRate != 65 {
		t.Errorf("heartRate = %v, want 65", dto.HeartRate)
	}

	snap.AverageHeartRate = intPtr(80)
	dto = snap.ToDTO(1, SourceDeviceLive)
	if *dto.HeartRate != 80 {
		t.Errorf("measured average should win over manual override, got %d", *dto.HeartRate)
	}
}

// TestDTOOmitsAbsentFields verifies nil metrics are left out of the JSON
// entirely rather than serialized as null.
func TestDTOOmitsAbsentFields(t *testing.T) {
	snap := HealthSnapshot{
		Steps:     intPtr(100),
		Timestamp: NewLocalTime(time.Date(2025, 1, 2, 8, 0, 0, 0, time.Local)),
	}
	data, err := json.Marshal(snap.ToDTO(7, SourceHistoryBackfill))
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	s := string(data)
	for _, absent := range []string{"heartRate", "calories", "sleepHours", "distance", "age", "gender", "null"} {
		if strings.Contains(s, absent) {
			t.Errorf("JSON contains %q, want it omitted: %s", absent, s)
		}
	}
	if !strings.Contains(s, `"steps":100`) {
		t.Errorf("JSON missing steps: %s", s)
	}
}

// TestProfileUpdateFromNilSnapshot verifies a missing snapshot produces an
// empty update rather than a panic.
func TestProfileUpdateFromNilSnapshot(t *testing.T) {
	var snap *HealthSnapshot
	upd := snap.ProfileUpdate()
	if !upd.IsEmpty() {
		t.Errorf("update from nil snapshot = %+v, want empty", upd)
	}
}

// TestProfileUpdateOmitsAbsentFields verifies partial-update semantics:
// fields the snapshot lacks never appear in the body.
func TestProfileUpdateOmitsAbsentFields(t *testing.T) {
	snap := &HealthSnapshot{Age: intPtr(30), Weight: floatPtr(70.5)}
	data, err := json.Marshal(snap.ProfileUpdate())
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	s := string(data)
	if strings.Contains(s, "height") || strings.Contains(s, "gender") {
		t.Errorf("absent fields serialized: %s", s)
	}
	if !strings.Contains(s, `"age":30`) || !strings.Contains(s, `"weight":70.5`) {
		t.Errorf("present fields missing: %s", s)
	}
}

// TestRecommendationWeeklyDiscriminator verifies the weekly_summary source
// tag is the sole weekly/daily discriminator.
func TestRecommendationWeeklyDiscriminator(t *testing.T) {
	weekly := HealthRecommendation{Source: strPtr(WeeklySummarySource)}
	if !weekly.IsWeeklySummary() {
		t.Error("weekly_summary source not recognized")
	}
	daily := HealthRecommendation{Source: strPtr("ml_model")}
	if daily.IsWeeklySummary() {
		t.Error("ml_model source treated as weekly")
	}
	none := HealthRecommendation{}
	if none.IsWeeklySummary() {
		t.Error("absent source treated as weekly")
	}
	if none.SourceTag() != "unknown" {
		t.Errorf("SourceTag = %q, want unknown", none.SourceTag())
	}
}
