package testing

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/2beens/fittrack/internal/db"
)

// GetPostgresPool connects to the local test database and makes sure the schema exists.
func GetPostgresPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	host := os.Getenv("POSTGRES_HOST")
	if host == "" {
		host = "localhost"
	}
	t.Logf("using postgres host: %s", host)

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:     host,
		DBPort:     "5432",
		DBName:     "fittrack_test",
		DBPassword: os.Getenv("POSTGRES_PASS"),
	})
	require.NoError(t, err)
	require.NoError(t, db.ApplySchema(ctx, dbPool))

	t.Cleanup(dbPool.Close)
	return dbPool
}

// CreateUser inserts a random user and returns its id. The user and everything it owns
// is removed when the test ends.
func CreateUser(t *testing.T, pool *pgxpool.Pool) int {
	t.Helper()

	ctx := context.Background()
	var id int
	err := pool.QueryRow(ctx,
		`INSERT INTO app_user (email, username, password_hash) VALUES ($1, $2, 'x') RETURNING id;`,
		gofakeit.Email(), gofakeit.LetterN(16),
	).Scan(&id)
	require.NoError(t, err)

	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM app_user WHERE id = $1`, id)
	})
	return id
}
