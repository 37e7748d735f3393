package records

import "time"

type Record struct {
	ID           int       `json:"id"`
	UserID       int       `json:"-"`
	ExerciseID   int       `json:"exerciseId"`
	ExerciseName string    `json:"exerciseName"`
	WeightKg     float64   `json:"weightKg"`
	Reps         int       `json:"reps"`
	AchievedAt   time.Time `json:"achievedAt"`
	WorkoutID    *int      `json:"workoutId,omitempty"`
}

// Entry is a single logged exercise inside a workout, as seen by the detector.
type Entry struct {
	ExerciseID int
	WeightKg   float64
	Reps       int
}
