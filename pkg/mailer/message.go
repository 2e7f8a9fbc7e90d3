package mailer

import (
	"bytes"
	"fmt"
	"io"
	"referralflow/pkg/serrors"
	"time"

	"github.com/emersion/go-message/mail"
)

// Message is a single outreach e-mail.
type Message struct {
	From    string
	To      string
	Subject string
	Text    string
	HTML    string
}

// Envelope returns the bare address of a header address such as
// "Jane <jane@example.com>", or addr unchanged when it cannot be parsed.
func Envelope(addr string) string {
	a, err := mail.ParseAddress(addr)
	if err != nil {
		return addr
	}

	return a.Address
}

// Compose renders msg as an RFC 5322 message. With an HTML body the result
// is multipart/alternative with the plain text part first.
func Compose(msg Message, now time.Time) ([]byte, error) {
	from, err := mail.ParseAddress(msg.From)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrBadRequest, err, "invalid sender address %q", msg.From)
	}
	to, err := mail.ParseAddress(msg.To)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrBadRequest, err, "invalid recipient address %q", msg.To)
	}

	var h mail.Header
	h.SetDate(now)
	h.SetAddressList("From", []*mail.Address{from})
	h.SetAddressList("To", []*mail.Address{to})
	h.SetSubject(msg.Subject)
	if err := h.GenerateMessageID(); err != nil {
		return nil, fmt.Errorf("could not generate message id: %w", err)
	}

	var buf bytes.Buffer
	if msg.HTML == "" {
		h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
		w, err := mail.CreateSingleInlineWriter(&buf, h)
		if err != nil {
			return nil, fmt.Errorf("could not create message writer: %w", err)
		}
		if _, err := io.WriteString(w, msg.Text); err != nil {
			return nil, fmt.Errorf("could not write body: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("could not close body: %w", err)
		}

		return buf.Bytes(), nil
	}

	mw, err := mail.CreateInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("could not create multipart writer: %w", err)
	}
	for _, part := range []struct{ contentType, body string }{
		{"text/plain", msg.Text},
		{"text/html", msg.HTML},
	} {
		var ph mail.InlineHeader
		ph.SetContentType(part.contentType, map[string]string{"charset": "utf-8"})
		pw, err := mw.CreatePart(ph)
		if err != nil {
			return nil, fmt.Errorf("could not create %s part: %w", part.contentType, err)
		}
		if _, err := io.WriteString(pw, part.body); err != nil {
			return nil, fmt.Errorf("could not write %s part: %w", part.contentType, err)
		}
		if err := pw.Close(); err != nil {
			return nil, fmt.Errorf("could not close %s part: %w", part.contentType, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("could not close multipart writer: %w", err)
	}

	return buf.Bytes(), nil
}
