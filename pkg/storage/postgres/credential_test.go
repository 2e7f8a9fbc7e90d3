package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPgSQL_Credentials(t *testing.T) {
	t.Parallel()

	pg, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)

	ctx := context.Background()
	account := "smtp:bot@example.com@smtp.example.com"

	t.Run("missing account", func(t *testing.T) {
		cred, err := pg.CredentialByAccount(ctx, "nobody")
		require.NoError(t, err)
		require.Nil(t, cred)
	})

	t.Run("insert then replace", func(t *testing.T) {
		require.NoError(t, pg.UpsertCredential(ctx, account, []byte("first")))

		cred, err := pg.CredentialByAccount(ctx, account)
		require.NoError(t, err)
		require.Equal(t, account, cred.Account)
		require.Equal(t, []byte("first"), cred.Sealed)
		require.False(t, cred.CreatedAt.IsZero())
		require.True(t, cred.UpdatedAt.IsZero())

		require.NoError(t, pg.UpsertCredential(ctx, account, []byte("second")))

		cred, err = pg.CredentialByAccount(ctx, account)
		require.NoError(t, err)
		require.Equal(t, []byte("second"), cred.Sealed)
		require.False(t, cred.UpdatedAt.IsZero())
	})

	t.Run("list ordered by account", func(t *testing.T) {
		require.NoError(t, pg.UpsertCredential(ctx, "huggingface", []byte("token")))

		creds, err := pg.Credentials(ctx)
		require.NoError(t, err)
		require.Len(t, creds, 2)
		require.Equal(t, "huggingface", creds[0].Account)
		require.Equal(t, account, creds[1].Account)
		require.Equal(t, []byte("second"), creds[1].Sealed)
	})

	t.Run("delete", func(t *testing.T) {
		deleted, err := pg.DeleteCredential(ctx, account)
		require.NoError(t, err)
		require.True(t, deleted)

		deleted, err = pg.DeleteCredential(ctx, account)
		require.NoError(t, err)
		require.False(t, deleted)
	})
}
