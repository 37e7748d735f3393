package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
)

var (
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrUnknownGrouping  = errors.New("unknown grouping")
)

const (
	GroupByMuscleGroup = "muscle_group"
	GroupByCategory    = "category"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// Timezone returns the IANA name stored on the user.
func (r *Repo) Timezone(ctx context.Context, userID int) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.analytics.timezone")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var tz string
	if err := r.db.QueryRow(ctx, `SELECT timezone FROM app_user WHERE id = $1`, userID).Scan(&tz); err != nil {
		return "", fmt.Errorf("user timezone: %w", err)
	}
	return tz, nil
}

// WorkoutStats returns the user's workouts performed at or after from, oldest first.
// A nil from returns all of them.
func (r *Repo) WorkoutStats(ctx context.Context, userID int, from *time.Time) (_ []WorkoutStat, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.analytics.workout-stats")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT w.performed_at, w.duration_minutes,
				COALESCE(SUM(we.sets * we.reps * we.weight_kg), 0)::float8
			FROM workout w
			LEFT JOIN workout_exercise we ON we.workout_id = w.id
			WHERE w.user_id = $1 AND ($2::timestamptz IS NULL OR w.performed_at >= $2)
			GROUP BY w.id
			ORDER BY w.performed_at;`,
		userID, from,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	stats := make([]WorkoutStat, 0)
	for rows.Next() {
		var s WorkoutStat
		if err := rows.Scan(&s.PerformedAt, &s.DurationMinutes, &s.VolumeKg); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("workouts", len(stats)))
	return stats, nil
}

// SetCounts sums the logged sets since from, grouped by the exercise muscle group or category.
func (r *Repo) SetCounts(ctx context.Context, userID int, groupBy string, from time.Time) (_ map[string]int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.analytics.set-counts")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("group_by", groupBy))

	if groupBy != GroupByMuscleGroup && groupBy != GroupByCategory {
		return nil, ErrUnknownGrouping
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT e.`+groupBy+`, SUM(we.sets)
			FROM workout_exercise we
			JOIN workout w ON w.id = we.workout_id
			JOIN exercise e ON e.id = we.exercise_id
			WHERE w.user_id = $1 AND w.performed_at >= $2
			GROUP BY e.`+groupBy+`;`,
		userID, from,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var group string
		var sets int
		if err := rows.Scan(&group, &sets); err != nil {
			return nil, err
		}
		counts[group] = sets
	}
	return counts, rows.Err()
}

// ExerciseSets returns every logged line of the exercise since from, oldest first.
func (r *Repo) ExerciseSets(ctx context.Context, userID, exerciseID int, from time.Time) (_ []SetStat, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.analytics.exercise-sets")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("exercise.id", exerciseID))

	var visible bool
	if err := r.db.QueryRow(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM exercise WHERE id = $1 AND (owner_id IS NULL OR owner_id = $2))`,
		exerciseID, userID,
	).Scan(&visible); err != nil {
		return nil, err
	}
	if !visible {
		return nil, ErrExerciseNotFound
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT w.performed_at, we.sets, we.reps, we.weight_kg::float8
			FROM workout_exercise we
			JOIN workout w ON w.id = we.workout_id
			WHERE w.user_id = $1 AND we.exercise_id = $2 AND w.performed_at >= $3
			ORDER BY w.performed_at, we.position;`,
		userID, exerciseID, from,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	sets, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (SetStat, error) {
		var s SetStat
		err := row.Scan(&s.PerformedAt, &s.Sets, &s.Reps, &s.WeightKg)
		return s, err
	})
	if err != nil {
		return nil, err
	}
	return sets, nil
}
