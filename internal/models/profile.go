package models

// UserProfile is the server-authoritative identity and demographics record.
// The recommendation list is refreshed wholesale on each fetch; the client
// only re-injects its filtered copy before display.
type UserProfile struct {
	UserID          int                    `json:"userId"`
	Name            *string                `json:"name"`
	Surname         *string                `json:"surname,omitempty"`
	Email           *string                `json:"email,omitempty"`
	Age             *int                   `json:"age"`
	Gender          *string                `json:"gender"`
	Height          *float64               `json:"height"`
	Weight          *float64               `json:"weight"`
	Recommendations []HealthRecommendation `json:"recommendations"`
}

// ProfileUpdate is the partial-update body for PUT /users/{id}. Nil fields
// are omitted entirely, preserving "not provided" vs "explicitly cleared"
// on the server side.
type ProfileUpdate struct {
	Age    *int     `json:"age,omitempty"`
	Weight *float64 `json:"weight,omitempty"`
	Height *float64 `json:"height,omitempty"`
	Gender *string  `json:"gender,omitempty"`
}

// IsEmpty reports whether the update carries no fields at all.
func (u ProfileUpdate) IsEmpty() bool {
	return u.Age == nil && u.Weight == nil && u.Height == nil && u.Gender == nil
}

// DailySummary is the server-computed aggregate for one day. The client
// never computes these locally; it only requests computation and displays
// the result.
type DailySummary struct {
	AggID           *int     `json:"aggId"`
	UserID          *int     `json:"userId"`
	Date            []int    `json:"date"`
	StepsTotal      *int     `json:"stepsTotal"`
	CaloriesTotal   *float64 `json:"caloriesTotal"`
	HRMean          *float64 `json:"hrMean"`
	HRMax           *int     `json:"hrMax"`
	SleepHoursTotal *float64 `json:"sleepHoursTotal"`
}

// HealthTrend is one row of the server's trend analysis.
type HealthTrend struct {
	Date         *string  `json:"date"`
	AvgHeartRate *float64 `json:"avgHeartRate"`
	DailySteps   *int     `json:"dailySteps"`
	TrendLabel   *string  `json:"trendLabel"`
}
