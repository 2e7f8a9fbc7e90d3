package mailer

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"referralflow/pkg/credentials"
	"referralflow/pkg/serrors"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
)

// Security selects how the relay connection is protected.
type Security string

const (
	// SecurityStartTLS upgrades a plain connection with STARTTLS (port 587).
	SecurityStartTLS Security = "starttls"
	// SecurityTLS dials TLS directly (port 465).
	SecurityTLS Security = "tls"
	// SecurityNone sends in the clear. Only for local relays and tests.
	SecurityNone Security = "none"
)

// SMTPOptions configures an SMTPTransport.
type SMTPOptions struct {
	Host     string
	Port     int
	Username string
	// Account is the credential account holding the relay password. It
	// defaults to credentials.Account("smtp", Username, Host).
	Account   string
	Security  Security
	LocalName string
	// Timeout bounds one delivery attempt, from dial to QUIT.
	Timeout   time.Duration
	TLSConfig *tls.Config
}

// SMTPTransport delivers messages through an SMTP submission relay. Every
// Send opens its own connection, so the transport is safe for concurrent use.
type SMTPTransport struct {
	secrets credentials.Provider
	opts    SMTPOptions
}

var _ Transport = (*SMTPTransport)(nil)

// NewSMTPTransport returns a transport authenticating as opts.Username with
// the password resolved through secrets.
func NewSMTPTransport(secrets credentials.Provider, opts SMTPOptions) *SMTPTransport {
	if opts.Security == "" {
		opts.Security = SecurityStartTLS
	}
	if opts.Port == 0 {
		opts.Port = 587
		if opts.Security == SecurityTLS {
			opts.Port = 465
		}
	}
	if opts.Account == "" {
		opts.Account = credentials.Account("smtp", opts.Username, opts.Host)
	}
	if opts.LocalName == "" {
		opts.LocalName = "localhost"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	return &SMTPTransport{secrets: secrets, opts: opts}
}

func (t *SMTPTransport) tlsConfig() *tls.Config {
	if t.opts.TLSConfig != nil {
		return t.opts.TLSConfig.Clone()
	}

	return &tls.Config{ServerName: t.opts.Host, MinVersion: tls.VersionTLS12}
}

// Send implements Transport.
func (t *SMTPTransport) Send(ctx context.Context, from string, to []string, raw []byte) error {
	if strings.TrimSpace(t.opts.Host) == "" {
		return serrors.With(serrors.ErrBadRequest, "smtp relay host is not configured")
	}

	var password string
	if t.opts.Username != "" {
		pw, err := t.secrets.Secret(ctx, t.opts.Account)
		if err != nil || pw == "" {
			return serrors.Wrap(serrors.ErrUnauthorized, err, "no password for smtp account %q", t.opts.Account)
		}
		password = pw
	}

	ctx, cancel := context.WithTimeout(ctx, t.opts.Timeout)
	defer cancel()

	conn, err := t.dial(ctx)
	if err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, t.opts.Host)
	if err != nil {
		_ = conn.Close()

		return fmt.Errorf("could not greet relay: %w", err)
	}
	defer func() {
		_ = c.Close()
	}()

	if err := c.Hello(t.opts.LocalName); err != nil {
		return fmt.Errorf("could not say hello: %w", err)
	}
	if t.opts.Security == SecurityStartTLS {
		if ok, _ := c.Extension("STARTTLS"); !ok {
			return serrors.With(serrors.ErrBadRequest, "relay %s does not support STARTTLS", t.opts.Host)
		}
		if err := c.StartTLS(t.tlsConfig()); err != nil {
			return fmt.Errorf("could not start tls: %w", err)
		}
	}
	if t.opts.Username != "" {
		if ok, _ := c.Extension("AUTH"); !ok {
			return serrors.With(serrors.ErrBadRequest, "relay %s does not support AUTH", t.opts.Host)
		}
		if err := c.Auth(sasl.NewPlainClient("", t.opts.Username, password)); err != nil {
			return fmt.Errorf("could not authenticate: %w", err)
		}
	}

	if err := c.Mail(from, nil); err != nil {
		return fmt.Errorf("relay rejected sender: %w", err)
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("relay rejected recipient %s: %w", rcpt, err)
		}
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("could not start data: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		_ = w.Close()

		return fmt.Errorf("could not write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("relay rejected message: %w", err)
	}
	if err := c.Quit(); err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("could not quit: %w", err)
	}

	return nil
}

func (t *SMTPTransport) dial(ctx context.Context) (net.Conn, error) {
	addr := net.JoinHostPort(t.opts.Host, strconv.Itoa(t.opts.Port))
	d := &net.Dialer{}
	if t.opts.Security == SecurityTLS {
		td := &tls.Dialer{NetDialer: d, Config: t.tlsConfig()}
		conn, err := td.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("could not dial %s over tls: %w", addr, err)
		}

		return conn, nil
	}

	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("could not dial %s: %w", addr, err)
	}

	return conn, nil
}
