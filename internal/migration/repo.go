package migration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/multierr"

	"github.com/2beens/fittrack/internal/tasks"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/internal/weights"
	"github.com/2beens/fittrack/internal/workouts"
)

var (
	ErrAlreadyMigrated = errors.New("already migrated")
	ErrUserNotFound    = errors.New("user not found")
)

type Repo struct {
	db  *pgxpool.Pool
	now func() time.Time
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db:  db,
		now: time.Now,
	}
}

func (r *Repo) Status(ctx context.Context, userID int) (_ *Status, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.migration.status")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var migratedAt *time.Time
	err = r.db.QueryRow(ctx, `SELECT migrated_at FROM app_user WHERE id = $1`, userID).Scan(&migratedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	} else if err != nil {
		return nil, err
	}
	return &Status{
		Migrated:   migratedAt != nil,
		MigratedAt: migratedAt,
	}, nil
}

// Dismiss marks the user migrated without importing anything.
func (r *Repo) Dismiss(ctx context.Context, userID int) (_ *Status, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.migration.dismiss")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var migratedAt time.Time
	err = r.db.QueryRow(
		ctx,
		`UPDATE app_user SET migrated_at = now() WHERE id = $1 AND migrated_at IS NULL RETURNING migrated_at;`,
		userID,
	).Scan(&migratedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAlreadyMigrated
	} else if err != nil {
		return nil, err
	}
	return &Status{Migrated: true, MigratedAt: &migratedAt}, nil
}

// Import stores the whole request in one transaction and marks the user migrated.
// Every item runs in its own savepoint, so a bad item is skipped and reported
// while the rest still lands.
func (r *Repo) Import(ctx context.Context, userID int, req ImportRequest) (_ *ImportResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.migration.import")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.Int("tasks", len(req.Tasks)),
		attribute.Int("weights", len(req.Weights)),
		attribute.Int("workouts", len(req.Workouts)),
	)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		// no-op after commit
		_ = tx.Rollback(ctx)
	}()

	// the row lock serializes concurrent imports of the same user
	var migratedAt *time.Time
	err = tx.QueryRow(ctx, `SELECT migrated_at FROM app_user WHERE id = $1 FOR UPDATE`, userID).Scan(&migratedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	} else if err != nil {
		return nil, err
	}
	if migratedAt != nil {
		return nil, ErrAlreadyMigrated
	}

	lookup, err := loadExercises(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{
		Errors: make([]ItemError, 0),
	}
	var skipped error
	skip := func(kind string, index int, reason error) {
		itemErr := ItemError{Kind: kind, Index: index, Reason: reason.Error()}
		result.Errors = append(result.Errors, itemErr)
		skipped = multierr.Append(skipped, itemErr)
	}

	now := r.now()
	for i, item := range req.Tasks {
		task, err := item.toTask(userID, now)
		if err != nil {
			skip(KindTask, i, err)
			continue
		}
		if err := inSavepoint(ctx, tx, func(sp pgx.Tx) error {
			_, err := tasks.InsertTx(ctx, sp, task)
			return err
		}); err != nil {
			skip(KindTask, i, errors.New("failed to store task"))
			log.Errorf("migration: user %d task %d: %s", userID, i, err)
			continue
		}
		result.Imported.Tasks++
	}

	for i, item := range req.Weights {
		entry, err := item.toEntry(userID)
		if err != nil {
			skip(KindWeight, i, err)
			continue
		}
		if err := inSavepoint(ctx, tx, func(sp pgx.Tx) error {
			_, err := weights.InsertTx(ctx, sp, entry)
			return err
		}); err != nil {
			skip(KindWeight, i, errors.New("failed to store weight"))
			log.Errorf("migration: user %d weight %d: %s", userID, i, err)
			continue
		}
		result.Imported.Weights++
	}

	for i, item := range req.Workouts {
		workout, err := item.toWorkout(userID, lookup)
		if err != nil {
			skip(KindWorkout, i, err)
			continue
		}
		if err := inSavepoint(ctx, tx, func(sp pgx.Tx) error {
			_, err := workouts.Insert(ctx, sp, workout)
			return err
		}); errors.Is(err, workouts.ErrUnknownExercise) || errors.Is(err, workouts.ErrNoExercises) {
			skip(KindWorkout, i, err)
			continue
		} else if err != nil {
			skip(KindWorkout, i, errors.New("failed to store workout"))
			log.Errorf("migration: user %d workout %d: %s", userID, i, err)
			continue
		}
		result.Imported.Workouts++
	}

	if err := tx.QueryRow(
		ctx,
		`UPDATE app_user SET migrated_at = now() WHERE id = $1 RETURNING migrated_at;`,
		userID,
	).Scan(&result.MigratedAt); err != nil {
		return nil, fmt.Errorf("set migrated_at: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	if skipped != nil {
		log.Warnf("migration: user %d skipped %d items: %s", userID, len(result.Errors), skipped)
	}
	log.Debugf("migration: user %d imported %+v", userID, result.Imported)

	return result, nil
}

// inSavepoint runs fn in a nested transaction, rolling back only that part on error.
func inSavepoint(ctx context.Context, tx pgx.Tx, fn func(sp pgx.Tx) error) error {
	sp, err := tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("savepoint: %w", err)
	}
	if err := fn(sp); err != nil {
		if rbErr := sp.Rollback(ctx); rbErr != nil {
			return multierr.Append(err, rbErr)
		}
		return err
	}
	return sp.Commit(ctx)
}

func loadExercises(ctx context.Context, tx pgx.Tx, userID int) (exerciseLookup, error) {
	lookup := exerciseLookup{
		ids:   make(map[int]bool),
		slugs: make(map[string]int),
	}

	// built-ins first, so the user's own exercise wins a shared slug
	rows, err := tx.Query(
		ctx,
		`SELECT id, slug FROM exercise WHERE owner_id IS NULL OR owner_id = $1 ORDER BY owner_id NULLS FIRST, id;`,
		userID,
	)
	if err != nil {
		return lookup, fmt.Errorf("load exercises: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int
		var slug string
		if err := rows.Scan(&id, &slug); err != nil {
			return lookup, err
		}
		lookup.ids[id] = true
		lookup.slugs[slug] = id
	}
	return lookup, rows.Err()
}
