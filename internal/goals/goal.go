package goals

import "time"

const (
	TypeWeight    = "weight"
	TypeStrength  = "strength"
	TypeFrequency = "frequency"
	TypeCustom    = "custom"

	StatusActive    = "active"
	StatusAchieved  = "achieved"
	StatusAbandoned = "abandoned"
)

type Goal struct {
	ID           int     `json:"id"`
	UserID       int     `json:"-"`
	Type         string  `json:"type"`
	Title        string  `json:"title"`
	Unit         string  `json:"unit"`
	StartValue   float64 `json:"startValue"`
	TargetValue  float64 `json:"targetValue"`
	CurrentValue float64 `json:"currentValue"`
	ExerciseID   *int    `json:"exerciseId"`
	// Deadline is a calendar date, formatted as YYYY-MM-DD.
	Deadline  *string   `json:"deadline"`
	Status    string    `json:"status"`
	Progress  float64   `json:"progress"`
	CreatedAt time.Time `json:"createdAt"`
}
