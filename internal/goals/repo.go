package goals

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"
)

var (
	ErrGoalNotFound    = errors.New("goal not found")
	ErrUnknownExercise = errors.New("unknown exercise")
)

const goalColumns = `id, user_id, type, title, unit, start_value, target_value, current_value,
	exercise_id, to_char(deadline, 'YYYY-MM-DD'), status, created_at`

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, goal Goal) (_ *Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	added, err := scanGoal(r.db.QueryRow(
		ctx,
		`INSERT INTO goal (user_id, type, title, unit, start_value, target_value, current_value, exercise_id, deadline, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::date, $10)
			RETURNING `+goalColumns+`;`,
		goal.UserID, goal.Type, goal.Title, goal.Unit, goal.StartValue, goal.TargetValue,
		goal.CurrentValue, goal.ExerciseID, goal.Deadline, goal.Status,
	))
	if pkg.IsForeignKeyViolationError(err) {
		return nil, ErrUnknownExercise
	} else if err != nil {
		return nil, fmt.Errorf("insert goal: %w", err)
	}
	span.SetAttributes(attribute.Int("goal.id", added.ID))

	return added, nil
}

func (r *Repo) Update(ctx context.Context, goal Goal) (_ *Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", goal.ID))

	updated, err := scanGoal(r.db.QueryRow(
		ctx,
		`UPDATE goal SET type = $1, title = $2, unit = $3, start_value = $4, target_value = $5,
				current_value = $6, exercise_id = $7, deadline = $8::date, status = COALESCE(NULLIF($9, ''), status)
			WHERE id = $10 AND user_id = $11
			RETURNING `+goalColumns+`;`,
		goal.Type, goal.Title, goal.Unit, goal.StartValue, goal.TargetValue,
		goal.CurrentValue, goal.ExerciseID, goal.Deadline, goal.Status, goal.ID, goal.UserID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrGoalNotFound
	} else if pkg.IsForeignKeyViolationError(err) {
		return nil, ErrUnknownExercise
	} else if err != nil {
		return nil, err
	}
	return updated, nil
}

// SetStatus changes only the status of the goal.
func (r *Repo) SetStatus(ctx context.Context, id, userID int, status string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.set-status")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id), attribute.String("status", status))

	tag, err := r.db.Exec(ctx, `UPDATE goal SET status = $1 WHERE id = $2 AND user_id = $3`, status, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrGoalNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id, userID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(ctx, `DELETE FROM goal WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrGoalNotFound
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, id, userID int) (_ *Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	goal, err := scanGoal(r.db.QueryRow(
		ctx,
		`SELECT `+goalColumns+` FROM goal WHERE id = $1 AND user_id = $2;`,
		id, userID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrGoalNotFound
	} else if err != nil {
		return nil, err
	}
	return goal, nil
}

func (r *Repo) List(ctx context.Context, userID int) (_ []Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT `+goalColumns+` FROM goal WHERE user_id = $1 ORDER BY created_at DESC, id DESC;`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	goals := make([]Goal, 0)
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return goals, nil
}

func scanGoal(row pgx.Row) (*Goal, error) {
	var g Goal
	if err := row.Scan(
		&g.ID, &g.UserID, &g.Type, &g.Title, &g.Unit, &g.StartValue, &g.TargetValue,
		&g.CurrentValue, &g.ExerciseID, &g.Deadline, &g.Status, &g.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &g, nil
}
