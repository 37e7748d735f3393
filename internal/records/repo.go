package records

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
)

var (
	ErrRecordNotFound  = errors.New("personal record not found")
	ErrUnknownExercise = errors.New("unknown exercise")
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

const selectRecord = `
	SELECT pr.id, pr.user_id, pr.exercise_id, e.name, pr.weight_kg, pr.reps, pr.achieved_at, pr.workout_id
	FROM personal_record pr
	JOIN exercise e ON e.id = pr.exercise_id`

// Add stores a record for an exercise the user can see.
func (r *Repo) Add(ctx context.Context, record Record) (_ *Record, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.records.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("exercise.id", record.ExerciseID))

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO personal_record (user_id, exercise_id, weight_kg, reps, achieved_at, workout_id)
			SELECT $1, e.id, $3, $4, $5, $6
			FROM exercise e
			WHERE e.id = $2 AND (e.owner_id IS NULL OR e.owner_id = $1)
		RETURNING id, (SELECT name FROM exercise WHERE id = $2);`,
		record.UserID, record.ExerciseID, record.WeightKg, record.Reps, record.AchievedAt, record.WorkoutID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrUnknownExercise
	}

	if err := rows.Scan(&record.ID, &record.ExerciseName); err != nil {
		return nil, fmt.Errorf("rows scan: %w", err)
	}

	return &record, nil
}

func (r *Repo) Delete(ctx context.Context, id, userID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.records.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(ctx, `DELETE FROM personal_record WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// List returns the user's records newest first. exerciseID 0 means all exercises.
func (r *Repo) List(ctx context.Context, userID, exerciseID int) (_ []Record, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.records.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("exercise.id", exerciseID))

	rows, err := r.db.Query(
		ctx,
		selectRecord+`
			WHERE pr.user_id = $1 AND ($2::int = 0 OR pr.exercise_id = $2)
			ORDER BY pr.achieved_at DESC, pr.id DESC;`,
		userID, exerciseID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	return rows2records(rows)
}

// Best returns the single best record per exercise, heaviest first.
func (r *Repo) Best(ctx context.Context, userID int) (_ []Record, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.records.best")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT * FROM (
			SELECT DISTINCT ON (pr.exercise_id)
				pr.id, pr.user_id, pr.exercise_id, e.name, pr.weight_kg, pr.reps, pr.achieved_at, pr.workout_id
			FROM personal_record pr
			JOIN exercise e ON e.id = pr.exercise_id
			WHERE pr.user_id = $1
			ORDER BY pr.exercise_id, pr.weight_kg DESC, pr.reps DESC, pr.achieved_at
		) best ORDER BY weight_kg DESC, exercise_id;`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	return rows2records(rows)
}

// BestWeights maps each of the given exercises to the heaviest recorded weight.
// Exercises without records are missing from the map.
func (r *Repo) BestWeights(ctx context.Context, userID int, exerciseIDs []int) (_ map[int]float64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.records.best-weights")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT exercise_id, MAX(weight_kg) FROM personal_record
			WHERE user_id = $1 AND exercise_id = ANY($2)
			GROUP BY exercise_id;`,
		userID, exerciseIDs,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	best := make(map[int]float64, len(exerciseIDs))
	for rows.Next() {
		var exerciseID int
		var weight float64
		if err := rows.Scan(&exerciseID, &weight); err != nil {
			return nil, err
		}
		best[exerciseID] = weight
	}
	return best, rows.Err()
}

func rows2records(rows pgx.Rows) ([]Record, error) {
	records := make([]Record, 0)
	for rows.Next() {
		var rec Record
		if err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.ExerciseID, &rec.ExerciseName,
			&rec.WeightKg, &rec.Reps, &rec.AchievedAt, &rec.WorkoutID,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
