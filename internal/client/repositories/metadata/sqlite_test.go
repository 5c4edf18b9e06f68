package metadata

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:metadata_tests?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE metadata (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);
`)
	require.NoError(t, err)
	return db
}

func TestSQLiteRepository_SetGet(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "access_token", []byte("tok-1")))

	got, err := repo.Get(ctx, "access_token")
	require.NoError(t, err)
	require.Equal(t, []byte("tok-1"), got)

	// overwrite
	require.NoError(t, repo.Set(ctx, "access_token", []byte("tok-2")))
	got, err = repo.Get(ctx, "access_token")
	require.NoError(t, err)
	require.Equal(t, []byte("tok-2"), got)
}

func TestSQLiteRepository_GetMissing(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))

	_, err := repo.Get(context.Background(), "nope")
	require.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestSQLiteRepository_DeleteAndClear(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "a", []byte("1")))
	require.NoError(t, repo.Set(ctx, "b", []byte("2")))

	require.NoError(t, repo.Delete(ctx, "a"))
	_, err := repo.Get(ctx, "a")
	require.ErrorIs(t, err, sql.ErrNoRows)

	require.NoError(t, repo.Clear(ctx))
	_, err = repo.Get(ctx, "b")
	require.ErrorIs(t, err, sql.ErrNoRows)
}
