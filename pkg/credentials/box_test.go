package credentials_test

import (
	"referralflow/pkg/credentials"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBox(t *testing.T) {
	_, err := credentials.NewBox("")
	require.Error(t, err)

	box, err := credentials.NewBox("correct horse battery staple")
	require.NoError(t, err)

	sealed, err := box.Seal([]byte("relay-password"))
	require.NoError(t, err)
	require.NotContains(t, string(sealed), "relay-password")

	again, err := box.Seal([]byte("relay-password"))
	require.NoError(t, err)
	require.NotEqual(t, sealed, again, "nonce must differ between seals")

	plain, err := box.Open(sealed)
	require.NoError(t, err)
	require.Equal(t, "relay-password", string(plain))

	other, err := credentials.NewBox("another key")
	require.NoError(t, err)
	_, err = other.Open(sealed)
	require.ErrorIs(t, err, credentials.ErrSealed)

	_, err = box.Open([]byte("short"))
	require.ErrorIs(t, err, credentials.ErrSealed)
}
