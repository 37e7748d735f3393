package records

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
)

type detectorRepo interface {
	BestWeights(ctx context.Context, userID int, exerciseIDs []int) (map[int]float64, error)
	Add(ctx context.Context, record Record) (*Record, error)
}

type Detector struct {
	repo detectorRepo
}

func NewDetector(repo detectorRepo) *Detector {
	return &Detector{
		repo: repo,
	}
}

// Detect stores a record for every exercise in the workout that beats the user's best weight.
func (d *Detector) Detect(
	ctx context.Context,
	userID, workoutID int,
	achievedAt time.Time,
	entries []Entry,
) (_ []Record, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "records.detect")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout.id", workoutID))

	heaviest := HeaviestPerExercise(entries)
	if len(heaviest) == 0 {
		return []Record{}, nil
	}

	exerciseIDs := make([]int, 0, len(heaviest))
	for _, e := range heaviest {
		exerciseIDs = append(exerciseIDs, e.ExerciseID)
	}
	best, err := d.repo.BestWeights(ctx, userID, exerciseIDs)
	if err != nil {
		return nil, fmt.Errorf("best weights: %w", err)
	}

	newRecords := make([]Record, 0)
	for _, e := range heaviest {
		if !IsNewRecord(best, e) {
			continue
		}
		wid := workoutID
		added, err := d.repo.Add(ctx, Record{
			UserID:     userID,
			ExerciseID: e.ExerciseID,
			WeightKg:   e.WeightKg,
			Reps:       e.Reps,
			AchievedAt: achievedAt,
			WorkoutID:  &wid,
		})
		if err != nil {
			return newRecords, fmt.Errorf("add record for exercise %d: %w", e.ExerciseID, err)
		}
		log.Debugf("new personal record for user %d: exercise %d, %.2f kg x %d", userID, e.ExerciseID, e.WeightKg, e.Reps)
		newRecords = append(newRecords, *added)
	}
	span.SetAttributes(attribute.Int("records.new", len(newRecords)))

	return newRecords, nil
}

// HeaviestPerExercise keeps the heaviest entry of each exercise, in order of first appearance.
// On equal weight the entry with more reps wins.
func HeaviestPerExercise(entries []Entry) []Entry {
	index := map[int]int{}
	var heaviest []Entry
	for _, e := range entries {
		i, seen := index[e.ExerciseID]
		if !seen {
			index[e.ExerciseID] = len(heaviest)
			heaviest = append(heaviest, e)
			continue
		}
		current := heaviest[i]
		if e.WeightKg > current.WeightKg || (e.WeightKg == current.WeightKg && e.Reps > current.Reps) {
			heaviest[i] = e
		}
	}
	return heaviest
}

// IsNewRecord reports whether e beats the best known weight for its exercise.
// Without any previous record, any positive weight counts. Ties do not.
func IsNewRecord(best map[int]float64, e Entry) bool {
	if e.WeightKg <= 0 {
		return false
	}
	prev, ok := best[e.ExerciseID]
	if !ok {
		return true
	}
	return e.WeightKg > prev
}
