package migration

import (
	"fmt"
	"time"

	"github.com/2beens/fittrack/internal/tasks"
	"github.com/2beens/fittrack/internal/validation"
	"github.com/2beens/fittrack/internal/weights"
	"github.com/2beens/fittrack/internal/workouts"
)

const (
	KindTask    = "task"
	KindWeight  = "weight"
	KindWorkout = "workout"
)

// ImportRequest is the data the client kept locally before the account existed.
type ImportRequest struct {
	Tasks    []TaskItem    `json:"tasks"`
	Weights  []WeightItem  `json:"weights"`
	Workouts []WorkoutItem `json:"workouts"`
}

func (req ImportRequest) Empty() bool {
	return len(req.Tasks) == 0 && len(req.Weights) == 0 && len(req.Workouts) == 0
}

type TaskItem struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=5000"`
	DueDate     *string    `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=low medium high"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt"`
	CreatedAt   *time.Time `json:"createdAt"`
}

type WeightItem struct {
	WeightKg   float64    `json:"weightKg" validate:"gt=0,lte=500"`
	MeasuredAt *time.Time `json:"measuredAt" validate:"required"`
	Note       string     `json:"note" validate:"max=500"`
}

type WorkoutItem struct {
	Name            string                `json:"name" validate:"required,max=100"`
	Notes           string                `json:"notes" validate:"max=5000"`
	PerformedAt     *time.Time            `json:"performedAt" validate:"required"`
	DurationMinutes int                   `json:"durationMinutes" validate:"gte=0,lte=1440"`
	Exercises       []WorkoutItemExercise `json:"exercises" validate:"required,min=1,dive"`
}

// WorkoutItemExercise references a library exercise by id, or by slug when the id is unknown locally.
type WorkoutItemExercise struct {
	ExerciseID int     `json:"exerciseId" validate:"required_without=Slug,gte=0"`
	Slug       string  `json:"slug" validate:"required_without=ExerciseID,max=100"`
	Sets       int     `json:"sets" validate:"gte=1,lte=100"`
	Reps       int     `json:"reps" validate:"gte=0,lte=1000"`
	WeightKg   float64 `json:"weightKg" validate:"gte=0,lte=1000"`
	Notes      string  `json:"notes" validate:"max=1000"`
}

// ItemError reports one skipped item.
type ItemError struct {
	Kind   string `json:"kind"`
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

func (e ItemError) Error() string {
	return fmt.Sprintf("%s[%d]: %s", e.Kind, e.Index, e.Reason)
}

type ImportedCounts struct {
	Tasks    int `json:"tasks"`
	Weights  int `json:"weights"`
	Workouts int `json:"workouts"`
}

type ImportResult struct {
	Imported   ImportedCounts `json:"imported"`
	Errors     []ItemError    `json:"errors"`
	MigratedAt time.Time      `json:"migratedAt"`
}

type Status struct {
	Migrated   bool       `json:"migrated"`
	MigratedAt *time.Time `json:"migratedAt,omitempty"`
}

// exerciseLookup holds the exercises visible to the importing user.
type exerciseLookup struct {
	ids   map[int]bool
	slugs map[string]int
}

func (item TaskItem) toTask(userID int, now time.Time) (tasks.Task, error) {
	if err := validation.Struct(item); err != nil {
		return tasks.Task{}, err
	}
	t := tasks.Task{
		UserID:      userID,
		Title:       item.Title,
		Description: item.Description,
		DueDate:     item.DueDate,
		Priority:    item.Priority,
		Completed:   item.Completed,
		CreatedAt:   now,
	}
	if t.DueDate != nil && *t.DueDate == "" {
		t.DueDate = nil
	}
	if t.Priority == "" {
		t.Priority = tasks.PriorityMedium
	}
	if item.CreatedAt != nil {
		t.CreatedAt = *item.CreatedAt
	}
	if t.Completed {
		completedAt := now
		if item.CompletedAt != nil {
			completedAt = *item.CompletedAt
		}
		t.CompletedAt = &completedAt
	}
	return t, nil
}

func (item WeightItem) toEntry(userID int) (weights.Entry, error) {
	if err := validation.Struct(item); err != nil {
		return weights.Entry{}, err
	}
	return weights.Entry{
		UserID:     userID,
		WeightKg:   item.WeightKg,
		MeasuredAt: *item.MeasuredAt,
		Note:       item.Note,
	}, nil
}

func (item WorkoutItem) toWorkout(userID int, lookup exerciseLookup) (workouts.Workout, error) {
	if err := validation.Struct(item); err != nil {
		return workouts.Workout{}, err
	}
	w := workouts.Workout{
		UserID:          userID,
		Name:            item.Name,
		Notes:           item.Notes,
		PerformedAt:     *item.PerformedAt,
		DurationMinutes: item.DurationMinutes,
		Exercises:       make([]workouts.WorkoutExercise, 0, len(item.Exercises)),
	}
	for i, e := range item.Exercises {
		exerciseID, ok := lookup.resolve(e.ExerciseID, e.Slug)
		if !ok {
			return workouts.Workout{}, fmt.Errorf("unknown exercise at position %d", i)
		}
		w.Exercises = append(w.Exercises, workouts.WorkoutExercise{
			ExerciseID: exerciseID,
			Sets:       e.Sets,
			Reps:       e.Reps,
			WeightKg:   e.WeightKg,
			Notes:      e.Notes,
		})
	}
	return w, nil
}

// resolve prefers a known id and falls back to the slug.
func (l exerciseLookup) resolve(id int, slug string) (int, bool) {
	if id > 0 && l.ids[id] {
		return id, true
	}
	if slug == "" {
		return 0, false
	}
	id, ok := l.slugs[slug]
	return id, ok
}
