// Package mailer composes outreach e-mails and delivers them through a relay
// with retries. Transport failures and temporary rejections are retried;
// permanent rejections and invalid addresses fail at once.
//
//go:generate mockgen -package mockmailer -source=mailer.go -destination=mock/mockmailer.go *
package mailer

import (
	"context"
	"errors"
	"referralflow/pkg/logger"
	"referralflow/pkg/retry"
	"referralflow/pkg/serrors"
	"time"

	"github.com/emersion/go-smtp"
	"go.uber.org/zap"
)

// ErrDelivery marks a message that could not be delivered.
var ErrDelivery = serrors.NewKind("DELIVERY")

// Transport submits an already composed message to a relay.
type Transport interface {
	Send(ctx context.Context, from string, to []string, raw []byte) error
}

// Archiver keeps a copy of delivered messages, e.g. in an IMAP Sent folder.
type Archiver interface {
	Archive(ctx context.Context, raw []byte) error
}

// IMAPSession is the part of an IMAP connection IMAPArchiver drives.
type IMAPSession interface {
	Login(username, password string) error
	// Append stores raw in mailbox flagged as seen with internal date t.
	Append(mailbox string, raw []byte, t time.Time) error
	Logout() error
	Close() error
}

// Options configures a Dispatcher.
type Options struct {
	// From is the envelope and header sender address.
	From  string
	Retry retry.Policy
	// Archiver, when set, receives every delivered message. Archive failures
	// are logged and do not fail the send.
	Archiver Archiver
	// Now overrides the clock used for the Date header.
	Now func() time.Time
}

// Dispatcher sends messages through a Transport.
type Dispatcher struct {
	transport Transport
	opts      Options
}

// New returns a Dispatcher. A zero retry policy falls back to
// retry.Default(Retryable).
func New(transport Transport, opts Options) *Dispatcher {
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = retry.Default(Retryable)
	}
	if opts.Retry.Retryable == nil {
		opts.Retry.Retryable = Retryable
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Dispatcher{transport: transport, opts: opts}
}

// Send composes a message with a plain text body and an optional HTML
// alternative and delivers it to a single recipient.
func (d *Dispatcher) Send(ctx context.Context, to, subject, text, html string) error {
	raw, err := Compose(Message{
		From:    d.opts.From,
		To:      to,
		Subject: subject,
		Text:    text,
		HTML:    html,
	}, d.opts.Now())
	if err != nil {
		return serrors.Wrap(ErrDelivery, err, "could not compose message to %s", to)
	}

	policy := d.opts.Retry
	policy.OnRetry = func(attempt int, err error) {
		logger.Warn(ctx, "mail delivery attempt failed, retrying",
			zap.Int("attempt", attempt),
			zap.String("to", to),
			zap.Error(err))
	}

	envelopeFrom := Envelope(d.opts.From)
	err = retry.Do(ctx, policy, func(ctx context.Context) error {
		return d.transport.Send(ctx, envelopeFrom, []string{Envelope(to)}, raw)
	})
	if err != nil {
		return serrors.Wrap(ErrDelivery, err, "could not deliver message to %s", to)
	}

	if d.opts.Archiver != nil {
		if err := d.opts.Archiver.Archive(ctx, raw); err != nil {
			logger.Warn(ctx, "could not archive delivered message", zap.String("to", to), zap.Error(err))
		}
	}

	return nil
}

// Retryable reports whether a transport error is worth another attempt.
// SMTP replies in the 5xx range, invalid input and missing credentials are
// permanent; 4xx replies and connection level failures are not.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, serrors.ErrBadRequest) || errors.Is(err, serrors.ErrUnauthorized) {
		return false
	}

	var smtpErr *smtp.SMTPError
	if errors.As(err, &smtpErr) {
		return smtpErr.Code < 500
	}

	return true
}
