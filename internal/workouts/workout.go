package workouts

import "time"

type Workout struct {
	ID              int               `json:"id"`
	UserID          int               `json:"userId"`
	Name            string            `json:"name"`
	Notes           string            `json:"notes"`
	PerformedAt     time.Time         `json:"performedAt"`
	DurationMinutes int               `json:"durationMinutes"`
	TemplateID      *int              `json:"templateId,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	Exercises       []WorkoutExercise `json:"exercises"`
}

type WorkoutExercise struct {
	ID           int     `json:"id"`
	ExerciseID   int     `json:"exerciseId"`
	ExerciseName string  `json:"exerciseName"`
	MuscleGroup  string  `json:"muscleGroup"`
	Position     int     `json:"position"`
	Sets         int     `json:"sets"`
	Reps         int     `json:"reps"`
	WeightKg     float64 `json:"weightKg"`
	Notes        string  `json:"notes"`
}

// VolumeKg sums sets * reps * weight over all exercises.
func (w Workout) VolumeKg() float64 {
	var volume float64
	for _, e := range w.Exercises {
		volume += float64(e.Sets*e.Reps) * e.WeightKg
	}
	return volume
}

func (w Workout) exerciseIDs() []int {
	seen := map[int]bool{}
	ids := make([]int, 0, len(w.Exercises))
	for _, e := range w.Exercises {
		if !seen[e.ExerciseID] {
			seen[e.ExerciseID] = true
			ids = append(ids, e.ExerciseID)
		}
	}
	return ids
}
