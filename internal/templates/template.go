package templates

import "time"

type Template struct {
	ID          int                `json:"id"`
	UserID      *int               `json:"-"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Builtin     bool               `json:"builtin"`
	CreatedAt   time.Time          `json:"createdAt"`
	Exercises   []TemplateExercise `json:"exercises"`
}

type TemplateExercise struct {
	ID           int     `json:"id"`
	ExerciseID   int     `json:"exerciseId"`
	ExerciseName string  `json:"exerciseName"`
	MuscleGroup  string  `json:"muscleGroup"`
	Position     int     `json:"position"`
	Sets         int     `json:"sets"`
	Reps         int     `json:"reps"`
	WeightKg     float64 `json:"weightKg"`
}
