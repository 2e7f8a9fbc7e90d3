package main

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"

	root "referralflow"
	"referralflow/internal/config"
	"referralflow/internal/pipeline"
	"referralflow/pkg/credentials"
	"referralflow/pkg/extractor"
	"referralflow/pkg/extractor/gemini"
	"referralflow/pkg/extractor/huggingface"
	"referralflow/pkg/logger"
	"referralflow/pkg/mailer"
	"referralflow/pkg/render"
	"referralflow/pkg/retry"
	"referralflow/pkg/scraper"
	"referralflow/pkg/storage/postgres"

	"go.uber.org/zap"
)

const (
	providerHuggingFace = "huggingface"
	providerGemini      = "gemini"
)

// getPostgres creates a PostgreSQL client using configuration values and returns it
// along with a cleanup function to close the connection pool.
func getPostgres(ctx context.Context, cfg *config.Config) (*postgres.PgSQL, func()) {
	pgsql, err := postgres.New(ctx, postgres.Options{
		Username:           cfg.Database.Username,
		Password:           cfg.Database.Password,
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		Database:           cfg.Database.DatabaseName,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime:    cfg.Database.ConnMaxIdleTime,
		MaxOpenConnections: cfg.Database.MaxOpenConnections,
		MaxIdleConnections: cfg.Database.MaxIdleConnections,
		SslMode:            cfg.Database.SslMode,
	})
	if err != nil {
		logger.Fatal(ctx, "could not create postgres storage", zap.Error(err))
	}

	return pgsql, func() {
		logger.Info(ctx, "closing postgres client...")
		if err = pgsql.Close(); err != nil {
			logger.Warn(ctx, "could not close postgres connection", zap.Error(err))
		}
	}
}

// needsPostgres reports whether the configuration uses the database at all.
func needsPostgres(cfg *config.Config) bool {
	return cfg.Queue.Driver == pipeline.QueueRiver || cfg.Credentials.EncryptionKey != ""
}

func extractorAccount(cfg *config.Config) string {
	if a := strings.TrimSpace(cfg.Extractor.CredentialAccount); a != "" {
		return a
	}

	return cfg.Extractor.Provider
}

func smtpAccount(cfg *config.Config) string {
	if a := strings.TrimSpace(cfg.Mailer.CredentialAccount); a != "" {
		return a
	}

	return credentials.Account("smtp", cfg.Mailer.Username, cfg.Mailer.Host)
}

func imapAccount(cfg *config.Config) string {
	a := cfg.Mailer.Archive
	if acc := strings.TrimSpace(a.CredentialAccount); acc != "" {
		return acc
	}
	username := a.Username
	if username == "" {
		username = cfg.Mailer.Username
	}

	return credentials.Account("imap", username, a.Host)
}

// newSecrets chains configured secrets, the OS keychain and sealed database
// secrets, in that order. strg may be nil.
func newSecrets(cfg *config.Config, strg *postgres.PgSQL) (credentials.Chain, error) {
	chain := credentials.Chain{credentials.Static{
		extractorAccount(cfg): cfg.Extractor.Token,
		smtpAccount(cfg):      cfg.Mailer.Password,
		imapAccount(cfg):      cfg.Mailer.Archive.Password,
	}}

	if svc := strings.TrimSpace(cfg.Credentials.KeyringService); svc != "" {
		chain = append(chain, credentials.NewKeyring(svc))
	}

	if strg != nil && cfg.Credentials.EncryptionKey != "" {
		box, err := credentials.NewBox(cfg.Credentials.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("could not create secret box: %w", err)
		}
		chain = append(chain, credentials.NewStored(strg, box))
	}

	return chain, nil
}

func retryPolicy(r config.Retry, retryable func(error) bool) retry.Policy {
	return retry.Policy{
		MaxAttempts: r.Attempts,
		MinBackoff:  r.MinBackoff,
		MaxBackoff:  r.MaxBackoff,
		Retryable:   retryable,
	}
}

func newExtractor(cfg *config.Config, secrets credentials.Provider) (extractor.Extractor, error) {
	policy := retryPolicy(cfg.Extractor.Retry, extractor.Retryable)

	switch cfg.Extractor.Provider {
	case providerHuggingFace, "":
		return huggingface.New(&http.Client{Timeout: cfg.Extractor.Timeout}, secrets, huggingface.Options{
			BaseURL:       cfg.Extractor.URL,
			Model:         cfg.Extractor.Model,
			Account:       extractorAccount(cfg),
			MaxInputChars: cfg.Extractor.MaxInputChars,
			Retry:         policy,
		}), nil
	case providerGemini:
		return gemini.New(secrets, gemini.Options{
			Account:       extractorAccount(cfg),
			Model:         cfg.Extractor.Model,
			BaseURL:       cfg.Extractor.URL,
			MaxInputChars: cfg.Extractor.MaxInputChars,
			Retry:         policy,
			HTTPClient:    &http.Client{Timeout: cfg.Extractor.Timeout},
		}), nil
	default:
		return nil, fmt.Errorf("unknown extractor provider %q", cfg.Extractor.Provider)
	}
}

func newSearcherFactory(cfg *config.Config) pipeline.SearcherFactory {
	opts := scraper.Options{
		Concurrency:       cfg.Scraper.Concurrency,
		RequestsPerMinute: cfg.Scraper.RequestsPerMinute,
		MinDelay:          cfg.Scraper.MinDelay,
		Proxies:           cfg.Scraper.Proxies,
		UserAgent:         cfg.Scraper.UserAgent,
		Timeout:           cfg.Scraper.Timeout,
	}

	return func() (pipeline.Searcher, error) {
		s, err := scraper.New(opts)
		if err != nil {
			return nil, err //nolint: wrapcheck
		}

		return s, nil
	}
}

func newRenderer(cfg *config.Config) (*render.Renderer, error) {
	if dir := strings.TrimSpace(cfg.Templates.Dir); dir != "" {
		return render.New(os.DirFS(dir)), nil
	}

	sub, err := fs.Sub(root.Templates, "templates")
	if err != nil {
		return nil, fmt.Errorf("could not open embedded templates: %w", err)
	}

	return render.New(sub), nil
}

// newSender returns nil when no relay is configured; drafts are then only logged.
func newSender(cfg *config.Config, secrets credentials.Provider) pipeline.Sender {
	if strings.TrimSpace(cfg.Mailer.Host) == "" {
		return nil
	}

	transport := mailer.NewSMTPTransport(secrets, mailer.SMTPOptions{
		Host:      cfg.Mailer.Host,
		Port:      cfg.Mailer.Port,
		Username:  cfg.Mailer.Username,
		Account:   smtpAccount(cfg),
		Security:  mailer.Security(cfg.Mailer.Security),
		LocalName: cfg.Mailer.LocalName,
		Timeout:   cfg.Mailer.Timeout,
	})

	opts := mailer.Options{
		From:  cfg.Mailer.From,
		Retry: retryPolicy(cfg.Mailer.Retry, mailer.Retryable),
	}
	if a := cfg.Mailer.Archive; strings.TrimSpace(a.Host) != "" {
		username := a.Username
		if username == "" {
			username = cfg.Mailer.Username
		}
		opts.Archiver = mailer.NewIMAPArchiver(secrets, mailer.IMAPOptions{
			Host:     a.Host,
			Port:     a.Port,
			Username: username,
			Account:  imapAccount(cfg),
			Mailbox:  a.Mailbox,
		})
	}

	return mailer.New(transport, opts)
}

// newOrchestrator wires every pipeline component from configuration. strg may
// be nil when no database is configured.
func newOrchestrator(ctx context.Context, cfg *config.Config, strg *postgres.PgSQL, sendMail bool) (*pipeline.Orchestrator, error) {
	secrets, err := newSecrets(cfg, strg)
	if err != nil {
		return nil, err
	}

	ext, err := newExtractor(cfg, secrets)
	if err != nil {
		return nil, err
	}

	renderer, err := newRenderer(cfg)
	if err != nil {
		return nil, err
	}

	var sender pipeline.Sender
	if sendMail {
		sender = newSender(cfg, secrets)
	}
	if sender == nil {
		logger.Warn(ctx, "no mail relay configured, drafted applications will only be logged")
	}

	return pipeline.New(ext, newSearcherFactory(cfg), renderer, sender, pipeline.NewOptions(cfg)), nil
}
