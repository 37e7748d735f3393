package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("email or username already taken")
)

const userColumns = `id, email, username, display_name, timezone, migrated_at, created_at`

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Create(ctx context.Context, user User, passwordHash string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	created, err := scanUser(r.db.QueryRow(
		ctx,
		`INSERT INTO app_user (email, username, password_hash, display_name, timezone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns+`;`,
		strings.ToLower(user.Email), user.Username, passwordHash, user.DisplayName, user.Timezone,
	))
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	span.SetAttributes(attribute.Int("user.id", created.ID))

	return created, nil
}

// GetByLogin finds a user by email (case insensitive) or by username.
func (r *Repo) GetByLogin(ctx context.Context, login string) (_ *Credentials, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.getByLogin")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var creds Credentials
	row := r.db.QueryRow(
		ctx,
		`SELECT `+userColumns+`, password_hash FROM app_user
		WHERE lower(email) = lower($1) OR username = $1
		ORDER BY (username = $1) DESC
		LIMIT 1;`,
		login,
	)
	u := &creds.User
	if err := row.Scan(
		&u.ID, &u.Email, &u.Username, &u.DisplayName, &u.Timezone, &u.MigratedAt, &u.CreatedAt,
		&creds.PasswordHash,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &creds, nil
}

func (r *Repo) Get(ctx context.Context, id int) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	user, err := scanUser(r.db.QueryRow(
		ctx,
		`SELECT `+userColumns+` FROM app_user WHERE id = $1;`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *Repo) UpdateProfile(ctx context.Context, id int, displayName, timezone string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.updateProfile")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	user, err := scanUser(r.db.QueryRow(
		ctx,
		`UPDATE app_user SET display_name = $1, timezone = $2 WHERE id = $3 RETURNING `+userColumns+`;`,
		displayName, timezone, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.Username, &u.DisplayName, &u.Timezone, &u.MigratedAt, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}
