package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"referralflow/pkg/credentials"
	"strconv"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
)

// DefaultSentMailbox is where IMAPArchiver appends delivered messages.
const DefaultSentMailbox = "Sent"

// IMAPDialer opens a session to addr.
type IMAPDialer func(ctx context.Context, addr string, tlsCfg *tls.Config) (IMAPSession, error)

// IMAPOptions configures an IMAPArchiver.
type IMAPOptions struct {
	Host     string
	Port     int
	Username string
	// Account is the credential account holding the IMAP password. It
	// defaults to credentials.Account("imap", Username, Host).
	Account   string
	Mailbox   string
	TLSConfig *tls.Config
	// Dial defaults to DialIMAPS.
	Dial IMAPDialer
	// Now stamps the internal date of archived messages.
	Now func() time.Time
}

// IMAPArchiver appends delivered messages to a mailbox over IMAPS so that
// relays which do not keep a copy still leave a trace in the sender's Sent
// folder.
type IMAPArchiver struct {
	secrets credentials.Provider
	opts    IMAPOptions
}

var _ Archiver = (*IMAPArchiver)(nil)

// NewIMAPArchiver returns an IMAPArchiver.
func NewIMAPArchiver(secrets credentials.Provider, opts IMAPOptions) *IMAPArchiver {
	if opts.Port == 0 {
		opts.Port = 993
	}
	if opts.Mailbox == "" {
		opts.Mailbox = DefaultSentMailbox
	}
	if opts.Account == "" {
		opts.Account = credentials.Account("imap", opts.Username, opts.Host)
	}
	if opts.Dial == nil {
		opts.Dial = DialIMAPS
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &IMAPArchiver{secrets: secrets, opts: opts}
}

// Archive implements Archiver.
func (a *IMAPArchiver) Archive(ctx context.Context, raw []byte) error {
	password, err := a.secrets.Secret(ctx, a.opts.Account)
	if err != nil {
		return fmt.Errorf("could not resolve imap password: %w", err)
	}

	tlsCfg := a.opts.TLSConfig
	if tlsCfg == nil {
		tlsCfg = &tls.Config{ServerName: a.opts.Host, MinVersion: tls.VersionTLS12}
	}
	sess, err := a.opts.Dial(ctx, net.JoinHostPort(a.opts.Host, strconv.Itoa(a.opts.Port)), tlsCfg)
	if err != nil {
		return fmt.Errorf("imap dial tls: %w", err)
	}
	defer func() {
		_ = sess.Close()
	}()

	// a cancelled ctx aborts whichever command is in flight
	stop := context.AfterFunc(ctx, func() { _ = sess.Close() })
	defer stop()

	if err := sess.Login(a.opts.Username, password); err != nil {
		return fmt.Errorf("imap login: %w", err)
	}
	if err := sess.Append(a.opts.Mailbox, raw, a.opts.Now()); err != nil {
		return fmt.Errorf("imap append: %w", err)
	}
	if err := sess.Logout(); err != nil {
		return fmt.Errorf("imap logout: %w", err)
	}

	return nil
}

// DialIMAPS connects to an implicit TLS IMAP server.
func DialIMAPS(_ context.Context, addr string, tlsCfg *tls.Config) (IMAPSession, error) {
	c, err := imapclient.DialTLS(addr, &imapclient.Options{TLSConfig: tlsCfg})
	if err != nil {
		return nil, err //nolint: wrapcheck
	}

	return &imapClientSession{c: c}, nil
}

type imapClientSession struct {
	c *imapclient.Client
}

func (s *imapClientSession) Login(username, password string) error {
	return s.c.Login(username, password).Wait() //nolint: wrapcheck
}

func (s *imapClientSession) Append(mailbox string, raw []byte, t time.Time) error {
	cmd := s.c.Append(mailbox, int64(len(raw)), &imap.AppendOptions{
		Flags: []imap.Flag{imap.FlagSeen},
		Time:  t,
	})
	if _, err := cmd.Write(raw); err != nil {
		_ = cmd.Close()

		return fmt.Errorf("write: %w", err)
	}
	if err := cmd.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	_, err := cmd.Wait()

	return err //nolint: wrapcheck
}

func (s *imapClientSession) Logout() error {
	return s.c.Logout().Wait() //nolint: wrapcheck
}

func (s *imapClientSession) Close() error {
	return s.c.Close() //nolint: wrapcheck
}
