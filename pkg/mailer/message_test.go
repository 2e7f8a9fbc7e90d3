package mailer_test

import (
	"bytes"
	"io"
	"referralflow/pkg/mailer"
	"referralflow/pkg/serrors"
	"testing"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC)

func readMessage(t *testing.T, raw []byte) (*mail.Reader, map[string]string) {
	t.Helper()

	mr, err := mail.CreateReader(bytes.NewReader(raw))
	require.NoError(t, err)

	parts := map[string]string{}
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)

		h, ok := p.Header.(*mail.InlineHeader)
		require.True(t, ok)
		ct, _, err := h.ContentType()
		require.NoError(t, err)
		b, err := io.ReadAll(p.Body)
		require.NoError(t, err)
		parts[ct] = string(b)
	}

	return mr, parts
}

func TestCompose_plain(t *testing.T) {
	raw, err := mailer.Compose(mailer.Message{
		From:    "bot@example.com",
		To:      "Jane <jane@example.com>",
		Subject: "Application for Backend Engineer at Acme",
		Text:    "Hello Acme team",
	}, now)
	require.NoError(t, err)

	mr, parts := readMessage(t, raw)
	subject, err := mr.Header.Subject()
	require.NoError(t, err)
	require.Equal(t, "Application for Backend Engineer at Acme", subject)

	to, err := mr.Header.AddressList("To")
	require.NoError(t, err)
	require.Len(t, to, 1)
	require.Equal(t, "jane@example.com", to[0].Address)

	date, err := mr.Header.Date()
	require.NoError(t, err)
	require.True(t, date.Equal(now))

	id, err := mr.Header.MessageID()
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.Equal(t, map[string]string{"text/plain": "Hello Acme team"}, parts)
}

func TestCompose_alternative(t *testing.T) {
	raw, err := mailer.Compose(mailer.Message{
		From:    "bot@example.com",
		To:      "jane@example.com",
		Subject: "Hi",
		Text:    "plain body",
		HTML:    "<p>html body</p>",
	}, now)
	require.NoError(t, err)
	require.Contains(t, string(raw), "multipart/alternative")

	_, parts := readMessage(t, raw)
	require.Equal(t, "plain body", parts["text/plain"])
	require.Equal(t, "<p>html body</p>", parts["text/html"])
}

func TestCompose_invalidAddresses(t *testing.T) {
	_, err := mailer.Compose(mailer.Message{From: "nope", To: "jane@example.com"}, now)
	require.ErrorIs(t, err, serrors.ErrBadRequest)

	_, err = mailer.Compose(mailer.Message{From: "bot@example.com", To: ""}, now)
	require.ErrorIs(t, err, serrors.ErrBadRequest)
}

func TestEnvelope(t *testing.T) {
	require.Equal(t, "jane@example.com", mailer.Envelope("Jane Doe <jane@example.com>"))
	require.Equal(t, "jane@example.com", mailer.Envelope("jane@example.com"))
	require.Equal(t, "garbage", mailer.Envelope("garbage"))
}
