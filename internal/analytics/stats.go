package analytics

import "time"

// WorkoutStat is one stored workout reduced to what the dashboards need.
type WorkoutStat struct {
	PerformedAt     time.Time
	DurationMinutes int
	VolumeKg        float64
}

// SetStat is one logged exercise line of a workout.
type SetStat struct {
	PerformedAt time.Time
	Sets        int
	Reps        int
	WeightKg    float64
}

type Summary struct {
	Days               int     `json:"days"`
	TotalWorkouts      int     `json:"totalWorkouts"`
	WorkoutsInWindow   int     `json:"workoutsInWindow"`
	ActiveDays         int     `json:"activeDays"`
	Consistency        float64 `json:"consistency"`
	CurrentStreak      int     `json:"currentStreak"`
	LongestStreak      int     `json:"longestStreak"`
	TotalVolumeKg      float64 `json:"totalVolumeKg"`
	AvgDurationMinutes float64 `json:"avgDurationMinutes"`
}

type GroupShare struct {
	Name       string  `json:"name"`
	Sets       int     `json:"sets"`
	Percentage float64 `json:"percentage"`
}

type TrendPoint struct {
	MeasuredAt    time.Time `json:"measuredAt"`
	WeightKg      float64   `json:"weightKg"`
	MovingAverage float64   `json:"movingAverage"`
}

type WeightTrend struct {
	Window  int          `json:"window"`
	Entries []TrendPoint `json:"entries"`
	Change  float64      `json:"change"`
	Min     float64      `json:"min"`
	Max     float64      `json:"max"`
}

type WeekVolume struct {
	// WeekStart is the Monday of the ISO week, formatted as YYYY-MM-DD.
	WeekStart string  `json:"weekStart"`
	Year      int     `json:"year"`
	Week      int     `json:"week"`
	Workouts  int     `json:"workouts"`
	VolumeKg  float64 `json:"volumeKg"`
}

type DayProgress struct {
	Date               string  `json:"date"`
	MaxWeightKg        float64 `json:"maxWeightKg"`
	VolumeKg           float64 `json:"volumeKg"`
	Sets               int     `json:"sets"`
	EstimatedOneRepMax float64 `json:"estimatedOneRepMax"`
}
