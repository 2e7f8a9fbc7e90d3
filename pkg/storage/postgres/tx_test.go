package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"referralflow/pkg/storage"
	"referralflow/pkg/storage/postgres"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPgSQL_Begin_NestedIsRejected(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	txStorage, err := pg.Begin(ctx)
	require.NoError(t, err)

	inner, ok := txStorage.(*postgres.PgSQL)
	require.True(t, ok)
	_, isTx := inner.DB.(*sql.Tx)
	require.True(t, isTx)

	_, err = inner.Begin(ctx)
	require.ErrorIs(t, err, storage.ErrAlreadyInTx)
	require.ErrorIs(t, inner.Ping(ctx), storage.ErrAlreadyInTx)

	require.NoError(t, inner.Rollback())
}

func TestPgSQL_CommitAndRollback(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	require.ErrorIs(t, pg.Commit(), storage.ErrNotInTx)
	require.ErrorIs(t, pg.Rollback(), storage.ErrNotInTx)

	committed, err := pg.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, committed.UpsertCredential(ctx, "smtp:a@relay", []byte("sealed-a")))
	require.NoError(t, committed.Commit())

	cred, err := pg.CredentialByAccount(ctx, "smtp:a@relay")
	require.NoError(t, err)
	require.NotNil(t, cred)

	rolledBack, err := pg.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, rolledBack.UpsertCredential(ctx, "smtp:b@relay", []byte("sealed-b")))
	require.NoError(t, rolledBack.Rollback())

	cred, err = pg.CredentialByAccount(ctx, "smtp:b@relay")
	require.NoError(t, err)
	require.Nil(t, cred)
}

func TestPgSQL_WithTx(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()

	err := pg.WithTx(ctx, func(s storage.AllStorage) error {
		return s.UpsertCredential(ctx, "huggingface", []byte("sealed"))
	})
	require.NoError(t, err)

	cred, err := pg.CredentialByAccount(ctx, "huggingface")
	require.NoError(t, err)
	require.NotNil(t, cred)

	boom := errors.New("boom")
	err = pg.WithTx(ctx, func(s storage.AllStorage) error {
		_ = s.UpsertCredential(ctx, "gemini", []byte("sealed"))

		return boom
	})
	require.ErrorIs(t, err, boom)

	cred, err = pg.CredentialByAccount(ctx, "gemini")
	require.NoError(t, err)
	require.Nil(t, cred)
}

func TestPgSQL_Ping(t *testing.T) {
	pg, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, pg.Ping(context.Background()))
}
