package exercises

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"
)

var (
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrExerciseExists   = errors.New("exercise with that name already exists")
	ErrExerciseInUse    = errors.New("exercise is still used by workouts")
)

type ListParams struct {
	// UserID adds the user's own exercises to the library ones; 0 means library only.
	UserID      int
	MuscleGroup string
	Category    string
	Equipment   string
	Query       string
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

const selectExercise = `
	SELECT id, slug, name, muscle_group, category, equipment, description, owner_id, created_at
	FROM exercise`

// SeedBuiltin inserts the library exercises that are not stored yet, and returns how many were added.
func (r *Repo) SeedBuiltin(ctx context.Context, catalog []Exercise) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.seed")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	batch := &pgx.Batch{}
	for _, e := range catalog {
		batch.Queue(
			`INSERT INTO exercise (slug, name, muscle_group, category, equipment, description)
				VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT DO NOTHING;`,
			e.Slug, e.Name, e.MuscleGroup, e.Category, e.Equipment, e.Description,
		)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range catalog {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("seed exercise: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	span.SetAttributes(attribute.Int("inserted", inserted))

	return inserted, nil
}

func (r *Repo) Add(ctx context.Context, exercise Exercise) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if exercise.OwnerID == nil {
		return nil, errors.New("custom exercise must have an owner")
	}

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO exercise
				(slug, name, muscle_group, category, equipment, description, owner_id)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id, created_at;`,
		exercise.Slug, exercise.Name, exercise.MuscleGroup, exercise.Category,
		exercise.Equipment, exercise.Description, *exercise.OwnerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			if pkg.IsUniqueViolationError(err) {
				return nil, ErrExerciseExists
			}
			return nil, err
		}
		return nil, errors.New("unexpected error [no rows next]")
	}

	var id int
	var createdAt time.Time
	if err := rows.Scan(&id, &createdAt); err != nil {
		return nil, fmt.Errorf("rows scan: %w", err)
	}

	span.SetAttributes(attribute.Int("exercise.id", id))

	exercise.ID = id
	exercise.CreatedAt = createdAt
	exercise.Custom = true
	return &exercise, nil
}

// Get returns a library exercise or one owned by userID.
func (r *Repo) Get(ctx context.Context, id, userID int) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	rows, err := r.db.Query(
		ctx,
		selectExercise+` WHERE id = $1 AND (owner_id IS NULL OR owner_id = $2);`,
		id, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exercises, err := rows2exercises(rows)
	if err != nil {
		return nil, err
	}
	if len(exercises) != 1 {
		return nil, ErrExerciseNotFound
	}

	return &exercises[0], nil
}

func (r *Repo) List(ctx context.Context, params ListParams) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user_id", params.UserID))
	span.SetAttributes(attribute.String("muscle_group", params.MuscleGroup))
	span.SetAttributes(attribute.String("category", params.Category))
	span.SetAttributes(attribute.String("equipment", params.Equipment))

	rows, err := r.db.Query(
		ctx,
		selectExercise+`
			WHERE (owner_id IS NULL OR owner_id = $1)
			AND ($2::text = '' OR muscle_group = $2)
			AND ($3::text = '' OR category = $3)
			AND ($4::text = '' OR equipment = $4)
			AND ($5::text = '' OR name ILIKE '%' || $5 || '%')
			ORDER BY name, id;`,
		params.UserID, params.MuscleGroup, params.Category, params.Equipment, params.Query,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	exercises, err := rows2exercises(rows)
	if err != nil {
		return nil, fmt.Errorf("rows2exercises: %w", err)
	}
	return exercises, nil
}

// GetBySlugs resolves slugs to exercises visible to userID. A user's own exercise wins over
// a library one with the same slug. Unknown slugs are left out of the result.
func (r *Repo) GetBySlugs(ctx context.Context, userID int, slugs []string) (_ map[string]Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.get-by-slugs")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("slugs", len(slugs)))

	rows, err := r.db.Query(
		ctx,
		selectExercise+`
			WHERE slug = ANY($1) AND (owner_id IS NULL OR owner_id = $2)
			ORDER BY owner_id NULLS FIRST;`,
		slugs, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exercises, err := rows2exercises(rows)
	if err != nil {
		return nil, err
	}

	bySlug := make(map[string]Exercise, len(exercises))
	for _, e := range exercises {
		// owned rows come last and overwrite library ones
		bySlug[e.Slug] = e
	}
	return bySlug, nil
}

// Delete removes a custom exercise owned by userID.
func (r *Repo) Delete(ctx context.Context, id, userID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM exercise WHERE id = $1 AND owner_id = $2`,
		id, userID,
	)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			return ErrExerciseInUse
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrExerciseNotFound
	}
	return nil
}

// MuscleGroupCounts counts the exercises visible to userID per muscle group.
// Every known muscle group is present in the result.
func (r *Repo) MuscleGroupCounts(ctx context.Context, userID int) (_ []MuscleGroupCount, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.exercises.muscle-group-counts")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT muscle_group, COUNT(*) FROM exercise
			WHERE owner_id IS NULL OR owner_id = $1
			GROUP BY muscle_group;`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var mg string
		var count int
		if err := rows.Scan(&mg, &count); err != nil {
			return nil, err
		}
		counts[mg] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := make([]MuscleGroupCount, 0, len(MuscleGroups))
	for _, mg := range MuscleGroups {
		result = append(result, MuscleGroupCount{MuscleGroup: mg, Count: counts[mg]})
	}
	return result, nil
}

func rows2exercises(rows pgx.Rows) ([]Exercise, error) {
	exercises := make([]Exercise, 0)
	for rows.Next() {
		var e Exercise
		if err := rows.Scan(
			&e.ID, &e.Slug, &e.Name, &e.MuscleGroup, &e.Category, &e.Equipment,
			&e.Description, &e.OwnerID, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		e.Custom = e.OwnerID != nil
		exercises = append(exercises, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return exercises, nil
}
