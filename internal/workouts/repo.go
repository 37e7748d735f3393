package workouts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"
)

var (
	ErrWorkoutNotFound = errors.New("workout not found")
	ErrUnknownExercise = errors.New("unknown exercise")
	ErrUnknownTemplate = errors.New("unknown template")
	ErrNoExercises     = errors.New("workout must have at least one exercise")
)

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type ListParams struct {
	UserID int
	From   *time.Time
	To     *time.Time
	Page   int
	Size   int
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// Create stores the workout and its exercises in one transaction.
func (r *Repo) Create(ctx context.Context, w Workout) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		// no-op after commit
		_ = tx.Rollback(ctx)
	}()

	id, err := Insert(ctx, tx, w)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("workout.id", id))

	created, err := get(ctx, tx, id, w.UserID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return created, nil
}

// Insert writes w inside tx and returns the new workout id.
func Insert(ctx context.Context, tx pgx.Tx, w Workout) (int, error) {
	if len(w.Exercises) == 0 {
		return 0, ErrNoExercises
	}
	if err := checkVisible(ctx, tx, w); err != nil {
		return 0, err
	}

	var id int
	err := tx.QueryRow(
		ctx,
		`INSERT INTO workout (user_id, name, notes, performed_at, duration_minutes, template_id)
			VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id;`,
		w.UserID, w.Name, w.Notes, w.PerformedAt, w.DurationMinutes, w.TemplateID,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert workout: %w", err)
	}

	if err := insertExercises(ctx, tx, id, w.Exercises); err != nil {
		return 0, err
	}
	return id, nil
}

func checkVisible(ctx context.Context, q querier, w Workout) error {
	ids := w.exerciseIDs()
	var visible int
	if err := q.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM exercise WHERE id = ANY($1) AND (owner_id IS NULL OR owner_id = $2);`,
		ids, w.UserID,
	).Scan(&visible); err != nil {
		return fmt.Errorf("check exercises: %w", err)
	}
	if visible != len(ids) {
		return ErrUnknownExercise
	}

	if w.TemplateID == nil {
		return nil
	}
	var templates int
	if err := q.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM workout_template WHERE id = $1 AND (user_id IS NULL OR user_id = $2);`,
		*w.TemplateID, w.UserID,
	).Scan(&templates); err != nil {
		return fmt.Errorf("check template: %w", err)
	}
	if templates == 0 {
		return ErrUnknownTemplate
	}
	return nil
}

func insertExercises(ctx context.Context, q querier, workoutID int, exercises []WorkoutExercise) error {
	for i, e := range exercises {
		if _, err := q.Exec(
			ctx,
			`INSERT INTO workout_exercise (workout_id, exercise_id, position, sets, reps, weight_kg, notes)
				VALUES ($1, $2, $3, $4, $5, $6, $7);`,
			workoutID, e.ExerciseID, i, e.Sets, e.Reps, e.WeightKg, e.Notes,
		); err != nil {
			if pkg.IsForeignKeyViolationError(err) {
				return ErrUnknownExercise
			}
			return fmt.Errorf("insert workout exercise %d: %w", i, err)
		}
	}
	return nil
}

// Update replaces the workout fields and its whole exercise list.
func (r *Repo) Update(ctx context.Context, w Workout) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", w.ID))

	if len(w.Exercises) == 0 {
		return nil, ErrNoExercises
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	tag, err := tx.Exec(
		ctx,
		`UPDATE workout SET name = $1, notes = $2, performed_at = $3, duration_minutes = $4
			WHERE id = $5 AND user_id = $6;`,
		w.Name, w.Notes, w.PerformedAt, w.DurationMinutes, w.ID, w.UserID,
	)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrWorkoutNotFound
	}

	// the template link is kept as it was
	w.TemplateID = nil
	if err := checkVisible(ctx, tx, w); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM workout_exercise WHERE workout_id = $1`, w.ID); err != nil {
		return nil, fmt.Errorf("clear exercises: %w", err)
	}
	if err := insertExercises(ctx, tx, w.ID, w.Exercises); err != nil {
		return nil, err
	}

	updated, err := get(ctx, tx, w.ID, w.UserID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return updated, nil
}

func (r *Repo) Delete(ctx context.Context, id, userID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(ctx, `DELETE FROM workout WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrWorkoutNotFound
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, id, userID int) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	return get(ctx, r.db, id, userID)
}

const selectWorkout = `
	SELECT id, user_id, name, notes, performed_at, duration_minutes, template_id, created_at
	FROM workout`

func get(ctx context.Context, q querier, id, userID int) (*Workout, error) {
	rows, err := q.Query(ctx, selectWorkout+` WHERE id = $1 AND user_id = $2;`, id, userID)
	if err != nil {
		return nil, err
	}
	workouts, err := rows2workouts(rows)
	if err != nil {
		return nil, err
	}
	if len(workouts) != 1 {
		return nil, ErrWorkoutNotFound
	}

	if err := attachExercises(ctx, q, workouts); err != nil {
		return nil, err
	}
	return &workouts[0], nil
}

// List returns one page of the user's workouts, newest first, and the total count.
func (r *Repo) List(ctx context.Context, params ListParams) (_ []Workout, total int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("page", params.Page))
	span.SetAttributes(attribute.Int("size", params.Size))
	if params.From != nil {
		span.SetAttributes(attribute.String("from", params.From.String()))
	}
	if params.To != nil {
		span.SetAttributes(attribute.String("to", params.To.String()))
	}

	if _, _, err := pkg.PageBounds(params.Page, params.Size, 0); err != nil {
		return nil, -1, err
	}

	countAll, err := r.Count(ctx, params)
	if err != nil {
		return nil, -1, err
	}
	limit, offset, err := pkg.PageBounds(params.Page, params.Size, countAll)
	if err != nil {
		return nil, -1, err
	}
	span.SetAttributes(attribute.Int("count_all", countAll))
	span.SetAttributes(attribute.Int("limit", limit))
	span.SetAttributes(attribute.Int("offset", offset))

	rows, err := r.db.Query(
		ctx,
		selectWorkout+`
			WHERE user_id = $1
			AND ($2::timestamptz IS NULL OR performed_at >= $2)
			AND ($3::timestamptz IS NULL OR performed_at <= $3)
			ORDER BY performed_at DESC, id DESC
			LIMIT $4
			OFFSET $5;`,
		params.UserID, params.From, params.To, limit, offset,
	)
	if err != nil {
		return nil, -1, err
	}

	workouts, err := rows2workouts(rows)
	if err != nil {
		return nil, -1, err
	}
	if err := attachExercises(ctx, r.db, workouts); err != nil {
		return nil, -1, err
	}
	return workouts, countAll, nil
}

func (r *Repo) Count(ctx context.Context, params ListParams) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.count")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var count int
	err = r.db.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM workout
			WHERE user_id = $1
			AND ($2::timestamptz IS NULL OR performed_at >= $2)
			AND ($3::timestamptz IS NULL OR performed_at <= $3);`,
		params.UserID, params.From, params.To,
	).Scan(&count)
	if err != nil {
		return -1, fmt.Errorf("count workouts: %w", err)
	}
	return count, nil
}

// ListCreatedSince returns workouts of all users created after since, oldest first.
func (r *Repo) ListCreatedSince(ctx context.Context, since time.Time) (_ []Workout, err error) {
	ctx, span := tracing.GlobalBackupTracer.Start(ctx, "repo.workouts.created-since")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("since", since.String()))

	rows, err := r.db.Query(ctx, selectWorkout+` WHERE created_at > $1 ORDER BY created_at, id;`, since)
	if err != nil {
		return nil, err
	}
	workouts, err := rows2workouts(rows)
	if err != nil {
		return nil, err
	}
	if err := attachExercises(ctx, r.db, workouts); err != nil {
		return nil, err
	}
	return workouts, nil
}

func rows2workouts(rows pgx.Rows) ([]Workout, error) {
	defer rows.Close()

	workouts := make([]Workout, 0)
	for rows.Next() {
		var w Workout
		if err := rows.Scan(
			&w.ID, &w.UserID, &w.Name, &w.Notes, &w.PerformedAt,
			&w.DurationMinutes, &w.TemplateID, &w.CreatedAt,
		); err != nil {
			return nil, err
		}
		w.Exercises = make([]WorkoutExercise, 0)
		workouts = append(workouts, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return workouts, nil
}

func attachExercises(ctx context.Context, q querier, workouts []Workout) error {
	if len(workouts) == 0 {
		return nil
	}

	index := make(map[int]int, len(workouts))
	ids := make([]int, len(workouts))
	for i, w := range workouts {
		index[w.ID] = i
		ids[i] = w.ID
	}

	rows, err := q.Query(
		ctx,
		`SELECT we.workout_id, we.id, we.exercise_id, e.name, e.muscle_group,
				we.position, we.sets, we.reps, we.weight_kg, we.notes
			FROM workout_exercise we
			JOIN exercise e ON e.id = we.exercise_id
			WHERE we.workout_id = ANY($1)
			ORDER BY we.workout_id, we.position;`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("query workout exercises: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var workoutID int
		var e WorkoutExercise
		if err := rows.Scan(
			&workoutID, &e.ID, &e.ExerciseID, &e.ExerciseName, &e.MuscleGroup,
			&e.Position, &e.Sets, &e.Reps, &e.WeightKg, &e.Notes,
		); err != nil {
			return err
		}
		i := index[workoutID]
		workouts[i].Exercises = append(workouts[i].Exercises, e)
	}
	return rows.Err()
}
