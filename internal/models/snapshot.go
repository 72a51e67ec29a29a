package models

// Upload source tags. The backend records where a sample came from so that
// live captures and retroactive backfill can be told apart.
const (
	SourceDeviceLive      = "device-live"
	SourceHistoryBackfill = "history-backfill"
)

// HealthSnapshot is a point-in-time bundle of metrics for one calendar day,
// read from the device health-data source. Every field is optional: the
// source may lack permission or data for any metric. A snapshot with nothing
// set is valid and means "no data available", not an error.
type HealthSnapshot struct {
	Steps            *int
	AverageHeartRate *int
	Calories         *float64
	SleepHours       *float64
	Distance         *float64
	ManualHeartRate  *int
	Timestamp        LocalTime

	Age    *int
	Gender *string
	Height *float64
	Weight *float64
}

// StepsOrZero returns the step count, treating absence as zero.
func (s *HealthSnapshot) StepsOrZero() int {
	if s.Steps == nil {
		return 0
	}
	return *s.Steps
}

// SleepHoursOrZero returns the sleep hours, treating absence as zero.
func (s *HealthSnapshot) SleepHoursOrZero() float64 {
	if s.SleepHours == nil {
		return 0
	}
	return *s.SleepHours
}

// ToDTO converts the snapshot into its wire representation. The heart rate
// falls back from the measured average to the manual override when no
// samples were recorded.
func (s *HealthSnapshot) ToDTO(userID int, source string) HealthDataDTO {
	hr := s.AverageHeartRate
	if hr == nil {
		hr = s.ManualHeartRate
	}
	return HealthDataDTO{
		UserID:     userID,
		Timestamp:  s.Timestamp.Format(LocalTimeLayout),
		HeartRate:  hr,
		Steps:      s.Steps,
		Calories:   s.Calories,
		SleepHours: s.SleepHours,
		Distance:   s.Distance,
		Age:        s.Age,
		Gender:     s.Gender,
		Source:     source,
	}
}

// ProfileUpdate extracts the demographic fields for a partial profile
// update. Absent fields stay nil and are omitted from the request body so
// they never overwrite server values.
func (s *HealthSnapshot) ProfileUpdate() ProfileUpdate {
	if s == nil {
		return ProfileUpdate{}
	}
	return ProfileUpdate{
		Age:    s.Age,
		Weight: s.Weight,
		Height: s.Height,
		Gender: s.Gender,
	}
}

// HealthDataDTO is the wire representation of a snapshot plus the owning
// user and a source tag. Immutable once constructed.
type HealthDataDTO struct {
	UserID     int      `json:"userId"`
	Timestamp  string   `json:"timestamp"`
	HeartRate  *int     `json:"heartRate,omitempty"`
	Steps      *int     `json:"steps,omitempty"`
	Calories   *float64 `json:"calories,omitempty"`
	SleepHours *float64 `json:"sleepHours,omitempty"`
	Distance   *float64 `json:"distance,omitempty"`
	Age        *int     `json:"age,omitempty"`
	Gender     *string  `json:"gender,omitempty"`
	Source     string   `json:"source"`
}
