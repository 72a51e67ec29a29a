package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// LocalTime handles the backend's zone-less timestamp format:
// "2006-01-02T15:04:05". The string carries no UTC offset; the server is the
// sole authority on timezone interpretation, so the client formats local
// wall-clock time and never converts.
type LocalTime struct {
	time.Time
}

const (
	LocalTimeLayout = "2006-01-02T15:04:05"
	DayKeyLayout    = "2006-01-02"
)

func (t *LocalTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return t.Parse(s)
}

func (t LocalTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(LocalTimeLayout))
}

// Parse parses a backend time string, trying full datetime first, then
// date-only.
func (t *LocalTime) Parse(s string) error {
	parsed, err := time.Parse(LocalTimeLayout, s)
	if err == nil {
		t.Time = parsed
		return nil
	}
	parsed, err2 := time.Parse(DayKeyLayout, s)
	if err2 == nil {
		t.Time = parsed
		return nil
	}
	return fmt.Errorf("cannot parse timestamp %q: %w", s, err)
}

// NewLocalTime truncates a time to second precision, matching what the wire
// format can carry.
func NewLocalTime(t time.Time) LocalTime {
	return LocalTime{t.Truncate(time.Second)}
}

// DayKey formats a time as the backend's day key ("yyyy-MM-dd").
func DayKey(t time.Time) string {
	return t.Format(DayKeyLayout)
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// timeFromComponents builds a time from the backend's component-array
// encoding [year, month, day, hour, minute, second]. Arrays may be truncated
// after the day; missing components default to zero. Fewer than three
// components is not a date at all and yields the zero time.
func timeFromComponents(arr []int) time.Time {
	if len(arr) < 3 {
		return time.Time{}
	}
	get := func(i int) int {
		if i < len(arr) {
			return arr[i]
		}
		return 0
	}
	return time.Date(arr[0], time.Month(arr[1]), arr[2],
		get(3), get(4), get(5), 0, time.Local)
}
