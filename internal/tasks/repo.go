package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
)

var ErrTaskNotFound = errors.New("task not found")

const taskColumns = `id, user_id, title, description, to_char(due_date, 'YYYY-MM-DD'), priority, completed, completed_at, created_at`

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, task Task) (_ *Task, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.tasks.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	added, err := scanTask(r.db.QueryRow(
		ctx,
		`INSERT INTO task (user_id, title, description, due_date, priority)
			VALUES ($1, $2, $3, $4::date, $5)
			RETURNING `+taskColumns+`;`,
		task.UserID, task.Title, task.Description, task.DueDate, task.Priority,
	))
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	span.SetAttributes(attribute.Int("task.id", added.ID))

	return added, nil
}

// InsertTx stores task as part of tx, keeping its completion state and creation time.
func InsertTx(ctx context.Context, tx pgx.Tx, task Task) (int, error) {
	var id int
	if err := tx.QueryRow(
		ctx,
		`INSERT INTO task (user_id, title, description, due_date, priority, completed, completed_at, created_at)
			VALUES ($1, $2, $3, $4::date, $5, $6, $7, $8)
			RETURNING id;`,
		task.UserID, task.Title, task.Description, task.DueDate, task.Priority,
		task.Completed, task.CompletedAt, task.CreatedAt,
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert task: %w", err)
	}
	return id, nil
}

func (r *Repo) Update(ctx context.Context, task Task) (_ *Task, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.tasks.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", task.ID))

	updated, err := scanTask(r.db.QueryRow(
		ctx,
		`UPDATE task SET title = $1, description = $2, due_date = $3::date, priority = $4
			WHERE id = $5 AND user_id = $6
			RETURNING `+taskColumns+`;`,
		task.Title, task.Description, task.DueDate, task.Priority, task.ID, task.UserID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTaskNotFound
	} else if err != nil {
		return nil, err
	}
	return updated, nil
}

// Toggle flips the completed flag, setting or clearing completed_at with it.
func (r *Repo) Toggle(ctx context.Context, id, userID int) (_ *Task, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.tasks.toggle")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	toggled, err := scanTask(r.db.QueryRow(
		ctx,
		`UPDATE task SET
				completed = NOT completed,
				completed_at = CASE WHEN completed THEN NULL ELSE now() END
			WHERE id = $1 AND user_id = $2
			RETURNING `+taskColumns+`;`,
		id, userID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTaskNotFound
	} else if err != nil {
		return nil, err
	}
	return toggled, nil
}

func (r *Repo) Delete(ctx context.Context, id, userID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.tasks.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(ctx, `DELETE FROM task WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// List returns open tasks before completed ones, then by due date with undated last.
// A nil completed returns both.
func (r *Repo) List(ctx context.Context, userID int, completed *bool) (_ []Task, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.tasks.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	if completed != nil {
		span.SetAttributes(attribute.Bool("completed", *completed))
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT `+taskColumns+` FROM task
			WHERE user_id = $1 AND ($2::boolean IS NULL OR completed = $2)
			ORDER BY completed, due_date NULLS LAST, created_at, id;`,
		userID, completed,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	tasks := make([]Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func scanTask(row pgx.Row) (*Task, error) {
	var t Task
	if err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &t.DueDate,
		&t.Priority, &t.Completed, &t.CompletedAt, &t.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}
