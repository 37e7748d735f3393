package templates

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"
)

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrUnknownExercise  = errors.New("unknown exercise")
)

type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// SeedBuiltin stores the built-in templates missing from the db. Library exercises must be seeded first.
func (r *Repo) SeedBuiltin(ctx context.Context, builtin []BuiltinTemplate) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.templates.seed")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	inserted := 0
	for _, bt := range builtin {
		added, err := r.seedOne(ctx, bt)
		if err != nil {
			return inserted, fmt.Errorf("seed template %s: %w", bt.Name, err)
		}
		if added {
			inserted++
		}
	}
	span.SetAttributes(attribute.Int("inserted", inserted))
	return inserted, nil
}

func (r *Repo) seedOne(ctx context.Context, bt BuiltinTemplate) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	rows, err := tx.Query(
		ctx,
		`INSERT INTO workout_template (name, description) VALUES ($1, $2)
			ON CONFLICT (name) WHERE user_id IS NULL DO NOTHING
		RETURNING id;`,
		bt.Name, bt.Description,
	)
	if err != nil {
		return false, err
	}
	var id int
	found := rows.Next()
	if found {
		err = rows.Scan(&id)
	}
	rows.Close()
	if err != nil {
		return false, err
	}
	if err := rows.Err(); err != nil {
		return false, err
	}
	if !found {
		// already seeded
		return false, nil
	}

	for i, e := range bt.Exercises {
		tag, err := tx.Exec(
			ctx,
			`INSERT INTO template_exercise (template_id, exercise_id, position, sets, reps, weight_kg)
				SELECT $1, id, $3, $4, $5, $6 FROM exercise WHERE slug = $2 AND owner_id IS NULL;`,
			id, e.Slug, i, e.Sets, e.Reps, e.WeightKg,
		)
		if err != nil {
			return false, err
		}
		if tag.RowsAffected() == 0 {
			return false, fmt.Errorf("library exercise %s: %w", e.Slug, ErrUnknownExercise)
		}
	}

	return true, tx.Commit(ctx)
}

const selectTemplate = `
	SELECT id, user_id, name, description, created_at
	FROM workout_template`

// List returns the built-in templates followed by the user's own, each group ordered by name.
func (r *Repo) List(ctx context.Context, userID int) (_ []Template, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.templates.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		selectTemplate+`
			WHERE user_id IS NULL OR user_id = $1
			ORDER BY user_id NULLS FIRST, name, id;`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	templates, err := rows2templates(rows)
	if err != nil {
		return nil, err
	}
	if err := attachExercises(ctx, r.db, templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// Get returns a built-in template or one owned by userID.
func (r *Repo) Get(ctx context.Context, id, userID int) (_ *Template, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.templates.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	return get(ctx, r.db, id, userID)
}

func get(ctx context.Context, q querier, id, userID int) (*Template, error) {
	rows, err := q.Query(ctx, selectTemplate+` WHERE id = $1 AND (user_id IS NULL OR user_id = $2);`, id, userID)
	if err != nil {
		return nil, err
	}
	templates, err := rows2templates(rows)
	if err != nil {
		return nil, err
	}
	if len(templates) != 1 {
		return nil, ErrTemplateNotFound
	}
	if err := attachExercises(ctx, q, templates); err != nil {
		return nil, err
	}
	return &templates[0], nil
}

func (r *Repo) Create(ctx context.Context, t Template) (_ *Template, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.templates.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if t.UserID == nil {
		return nil, errors.New("template must have an owner")
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := checkVisible(ctx, tx, *t.UserID, t.Exercises); err != nil {
		return nil, err
	}

	var id int
	if err := tx.QueryRow(
		ctx,
		`INSERT INTO workout_template (user_id, name, description) VALUES ($1, $2, $3) RETURNING id;`,
		*t.UserID, t.Name, t.Description,
	).Scan(&id); err != nil {
		return nil, fmt.Errorf("insert template: %w", err)
	}
	span.SetAttributes(attribute.Int("template.id", id))

	if err := insertExercises(ctx, tx, id, t.Exercises); err != nil {
		return nil, err
	}

	created, err := get(ctx, tx, id, *t.UserID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return created, nil
}

// Update replaces a template owned by the user. Built-in templates cannot be updated.
func (r *Repo) Update(ctx context.Context, t Template) (_ *Template, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.templates.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", t.ID))

	if t.UserID == nil {
		return nil, ErrTemplateNotFound
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
		`UPDATE workout_template SET name = $1, description = $2 WHERE id = $3 AND user_id = $4;`,
		t.Name, t.Description, t.ID, *t.UserID,
	)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrTemplateNotFound
	}

	if err := checkVisible(ctx, tx, *t.UserID, t.Exercises); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM template_exercise WHERE template_id = $1`, t.ID); err != nil {
		return nil, fmt.Errorf("clear exercises: %w", err)
	}
	if err := insertExercises(ctx, tx, t.ID, t.Exercises); err != nil {
		return nil, err
	}

	updated, err := get(ctx, tx, t.ID, *t.UserID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return updated, nil
}

func (r *Repo) Delete(ctx context.Context, id, userID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.templates.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(ctx, `DELETE FROM workout_template WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

func checkVisible(ctx context.Context, q querier, userID int, exercises []TemplateExercise) error {
	seen := map[int]bool{}
	ids := make([]int, 0, len(exercises))
	for _, e := range exercises {
		if !seen[e.ExerciseID] {
			seen[e.ExerciseID] = true
			ids = append(ids, e.ExerciseID)
		}
	}

	var visible int
	if err := q.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM exercise WHERE id = ANY($1) AND (owner_id IS NULL OR owner_id = $2);`,
		ids, userID,
	).Scan(&visible); err != nil {
		return fmt.Errorf("check exercises: %w", err)
	}
	if visible != len(ids) {
		return ErrUnknownExercise
	}
	return nil
}

func insertExercises(ctx context.Context, q querier, templateID int, exercises []TemplateExercise) error {
	for i, e := range exercises {
		if _, err := q.Exec(
			ctx,
			`INSERT INTO template_exercise (template_id, exercise_id, position, sets, reps, weight_kg)
				VALUES ($1, $2, $3, $4, $5, $6);`,
			templateID, e.ExerciseID, i, e.Sets, e.Reps, e.WeightKg,
		); err != nil {
			if pkg.IsForeignKeyViolationError(err) {
				return ErrUnknownExercise
			}
			return fmt.Errorf("insert template exercise %d: %w", i, err)
		}
	}
	return nil
}

func rows2templates(rows pgx.Rows) ([]Template, error) {
	defer rows.Close()

	templates := make([]Template, 0)
	for rows.Next() {
		var t Template
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &t.Description, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.Builtin = t.UserID == nil
		t.Exercises = make([]TemplateExercise, 0)
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return templates, nil
}

func attachExercises(ctx context.Context, q querier, templates []Template) error {
	if len(templates) == 0 {
		return nil
	}

	index := make(map[int]int, len(templates))
	ids := make([]int, len(templates))
	for i, t := range templates {
		index[t.ID] = i
		ids[i] = t.ID
	}

	rows, err := q.Query(
		ctx,
		`SELECT te.template_id, te.id, te.exercise_id, e.name, e.muscle_group,
				te.position, te.sets, te.reps, te.weight_kg
			FROM template_exercise te
			JOIN exercise e ON e.id = te.exercise_id
			WHERE te.template_id = ANY($1)
			ORDER BY te.template_id, te.position;`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("query template exercises: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var templateID int
		var e TemplateExercise
		if err := rows.Scan(
			&templateID, &e.ID, &e.ExerciseID, &e.ExerciseName, &e.MuscleGroup,
			&e.Position, &e.Sets, &e.Reps, &e.WeightKg,
		); err != nil {
			return err
		}
		i := index[templateID]
		templates[i].Exercises = append(templates[i].Exercises, e)
	}
	return rows.Err()
}
