package models

import (
	"encoding/json"
	"testing"
	"time"
)

// TestLocalTimeRoundTrip verifies the zone-less wire format survives a
// marshal/unmarshal cycle without timezone conversion.
func TestLocalTimeRoundTrip(t *testing.T) {
	lt := NewLocalTime(time.Date(2025, 11, 18, 10, 30, 5, 0, time.Local))

	data, err := json.Marshal(lt)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	if string(data) != `"2025-11-18T10:30:05"` {
		t.Errorf("marshaled = %s, want %q", data, "2025-11-18T10:30:05")
	}

	var back LocalTime
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if back.Format(LocalTimeLayout) != "2025-11-18T10:30:05" {
		t.Errorf("round trip = %s", back.Format(LocalTimeLayout))
	}
}

// TestLocalTimeParseDateOnly verifies date-only strings are accepted.
func TestLocalTimeParseDateOnly(t *testing.T) {
	var lt LocalTime
	if err := lt.Parse("2025-03-09"); err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if got := DayKey(lt.Time); got != "2025-03-09" {
		t.Errorf("day key = %q, want %q", got, "2025-03-09")
	}
}

func TestLocalTimeParseInvalid(t *testing.T) {
	var lt LocalTime
	if err := lt.Parse("not-a-date"); err == nil {
		t.Fatal("Parse accepted garbage input")
	}
}

// TestTimeFromComponents verifies truncated component arrays default the
// missing time-of-day parts to zero.
func TestTimeFromComponents(t *testing.T) {
	tests := []struct {
		name string
		arr  []int
		want time.Time
	}{
		{
			name: "full",
			arr:  []int{2025, 11, 18, 10, 30, 15},
			want: time.Date(2025, 11, 18, 10, 30, 15, 0, time.Local),
		},
		{
			name: "date only",
			arr:  []int{2025, 11, 18},
			want: time.Date(2025, 11, 18, 0, 0, 0, 0, time.Local),
		},
		{
			name: "hour and minute",
			arr:  []int{2025, 11, 18, 10, 30},
			want: time.Date(2025, 11, 18, 10, 30, 0, 0, time.Local),
		},
		{
			name: "too short",
			arr:  []int{2025, 11},
			want: time.Time{},
		},
		{
			name: "nil",
			arr:  nil,
			want: time.Time{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := timeFromComponents(tt.arr)
			if !got.Equal(tt.want) {
				t.Errorf("timeFromComponents(%v) = %v, want %v", tt.arr, got, tt.want)
			}
		})
	}
}

func TestStartOfDay(t *testing.T) {
	in := time.Date(2025, 11, 18, 23, 59, 59, 0, time.Local)
	got := StartOfDay(in)
	want := time.Date(2025, 11, 18, 0, 0, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Errorf("StartOfDay = %v, want %v", got, want)
	}
}
