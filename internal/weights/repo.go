package weights

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

var ErrEntryNotFound = errors.New("weight entry not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, entry Entry) (_ *Entry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.weights.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	id, err := insert(ctx, r.db.QueryRow, entry)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("entry.id", id))

	entry.ID = id
	return &entry, nil
}

// InsertTx stores entry as part of tx and returns its id.
func InsertTx(ctx context.Context, tx pgx.Tx, entry Entry) (int, error) {
	return insert(ctx, tx.QueryRow, entry)
}

func insert(
	ctx context.Context,
	queryRow func(ctx context.Context, sql string, args ...any) pgx.Row,
	entry Entry,
) (int, error) {
	var id int
	if err := queryRow(
		ctx,
		`INSERT INTO weight_entry (user_id, weight_kg, measured_at, note) VALUES ($1, $2, $3, $4) RETURNING id;`,
		entry.UserID, entry.WeightKg, entry.MeasuredAt, entry.Note,
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert weight entry: %w", err)
	}
	return id, nil
}

func (r *Repo) Update(ctx context.Context, entry Entry) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.weights.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", entry.ID))

	tag, err := r.db.Exec(
		ctx,
		`UPDATE weight_entry SET weight_kg = $1, measured_at = $2, note = $3 WHERE id = $4 AND user_id = $5;`,
		entry.WeightKg, entry.MeasuredAt, entry.Note, entry.ID, entry.UserID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id, userID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.weights.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(ctx, `DELETE FROM weight_entry WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// List returns the user's entries newest first, optionally bounded by from and to.
func (r *Repo) List(ctx context.Context, userID int, from, to *time.Time) (_ []Entry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.weights.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	if from != nil {
		span.SetAttributes(attribute.String("from", from.String()))
	}
	if to != nil {
		span.SetAttributes(attribute.String("to", to.String()))
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, weight_kg, measured_at, note FROM weight_entry
			WHERE user_id = $1
			AND ($2::timestamptz IS NULL OR measured_at >= $2)
			AND ($3::timestamptz IS NULL OR measured_at <= $3)
			ORDER BY measured_at DESC, id DESC;`,
		userID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.WeightKg, &e.MeasuredAt, &e.Note); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// Latest returns the most recent entry of the user.
func (r *Repo) Latest(ctx context.Context, userID int) (_ *Entry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.weights.latest")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var e Entry
	err = r.db.QueryRow(
		ctx,
		`SELECT id, user_id, weight_kg, measured_at, note FROM weight_entry
			WHERE user_id = $1 ORDER BY measured_at DESC, id DESC LIMIT 1;`,
		userID,
	).Scan(&e.ID, &e.UserID, &e.WeightKg, &e.MeasuredAt, &e.Note)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEntryNotFound
	} else if err != nil {
		return nil, err
	}
	return &e, nil
}
