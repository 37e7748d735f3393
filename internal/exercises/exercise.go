package exercises

import "time"

var MuscleGroups = []string{
	"chest", "back", "shoulders", "biceps", "triceps", "forearms", "core",
	"quads", "hamstrings", "glutes", "calves", "full_body", "cardio",
}

var Categories = []string{"strength", "cardio", "bodyweight", "flexibility"}

var Equipment = []string{"barbell", "dumbbell", "machine", "cable", "kettlebell", "bodyweight", "band", "other"}

type Exercise struct {
	ID          int       `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	MuscleGroup string    `json:"muscleGroup"`
	Category    string    `json:"category"`
	Equipment   string    `json:"equipment"`
	Description string    `json:"description"`
	OwnerID     *int      `json:"ownerId,omitempty"`
	Custom      bool      `json:"custom"`
	CreatedAt   time.Time `json:"createdAt"`
}

type MuscleGroupCount struct {
	MuscleGroup string `json:"muscleGroup"`
	Count       int    `json:"count"`
}

func IsMuscleGroup(s string) bool { return contains(MuscleGroups, s) }
func IsCategory(s string) bool    { return contains(Categories, s) }
func IsEquipment(s string) bool   { return contains(Equipment, s) }

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
