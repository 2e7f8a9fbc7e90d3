package mailer_test

import (
	"context"
	"crypto/tls"
	"errors"
	"referralflow/pkg/credentials"
	"referralflow/pkg/mailer"
	mockmailer "referralflow/pkg/mailer/mock"
	"referralflow/pkg/serrors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newArchiver(
	t *testing.T,
	secrets credentials.Provider,
) (*mailer.IMAPArchiver, *mockmailer.MockIMAPSession, *string) {
	t.Helper()
	ctrl := gomock.NewController(t)
	sess := mockmailer.NewMockIMAPSession(ctrl)

	var dialed string
	a := mailer.NewIMAPArchiver(secrets, mailer.IMAPOptions{
		Host:     "imap.example.com",
		Username: "me@example.com",
		Dial: func(_ context.Context, addr string, tlsCfg *tls.Config) (mailer.IMAPSession, error) {
			dialed = addr
			require.Equal(t, "imap.example.com", tlsCfg.ServerName)

			return sess, nil
		},
		Now: func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
	})

	return a, sess, &dialed
}

func imapSecrets() credentials.Static {
	return credentials.Static{credentials.Account("imap", "me@example.com", "imap.example.com"): "hunter2"}
}

func TestIMAPArchiver_Append(t *testing.T) {
	a, sess, dialed := newArchiver(t, imapSecrets())
	raw := []byte("Subject: hi\r\n\r\nbody\r\n")

	gomock.InOrder(
		sess.EXPECT().Login("me@example.com", "hunter2").Return(nil),
		sess.EXPECT().Append(mailer.DefaultSentMailbox, raw, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)).Return(nil),
		sess.EXPECT().Logout().Return(nil),
		sess.EXPECT().Close().Return(nil),
	)

	require.NoError(t, a.Archive(context.Background(), raw))
	require.Equal(t, "imap.example.com:993", *dialed)
}

func TestIMAPArchiver_LoginFailure(t *testing.T) {
	a, sess, _ := newArchiver(t, imapSecrets())
	denied := errors.New("NO [AUTHENTICATIONFAILED] invalid credentials")

	gomock.InOrder(
		sess.EXPECT().Login("me@example.com", "hunter2").Return(denied),
		sess.EXPECT().Close().Return(nil),
	)

	err := a.Archive(context.Background(), []byte("x"))
	require.ErrorIs(t, err, denied)
	require.ErrorContains(t, err, "imap login")
}

func TestIMAPArchiver_AppendFailure(t *testing.T) {
	a, sess, _ := newArchiver(t, imapSecrets())
	full := errors.New("NO [OVERQUOTA] mailbox full")

	gomock.InOrder(
		sess.EXPECT().Login(gomock.Any(), gomock.Any()).Return(nil),
		sess.EXPECT().Append(gomock.Any(), gomock.Any(), gomock.Any()).Return(full),
		sess.EXPECT().Close().Return(nil),
	)

	err := a.Archive(context.Background(), []byte("x"))
	require.ErrorIs(t, err, full)
	require.ErrorContains(t, err, "imap append")
}

func TestIMAPArchiver_MissingPassword(t *testing.T) {
	a, _, dialed := newArchiver(t, credentials.Static{})

	err := a.Archive(context.Background(), []byte("x"))
	require.ErrorIs(t, err, serrors.ErrNotFound)
	require.Empty(t, *dialed)
}

func TestIMAPArchiver_DialFailure(t *testing.T) {
	refused := errors.New("connection refused")
	a := mailer.NewIMAPArchiver(imapSecrets(), mailer.IMAPOptions{
		Host:     "imap.example.com",
		Port:     1993,
		Username: "me@example.com",
		Dial: func(context.Context, string, *tls.Config) (mailer.IMAPSession, error) {
			return nil, refused
		},
	})

	require.ErrorIs(t, a.Archive(context.Background(), []byte("x")), refused)
}
