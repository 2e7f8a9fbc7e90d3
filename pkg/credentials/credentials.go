// Package credentials resolves secrets (API tokens, relay passwords) by
// account name. Providers can be chained so that a value from configuration
// wins over the OS keychain, which in turn wins over the sealed database store.
//
//go:generate mockgen -package mockcredentials -source=credentials.go -destination=mock/mockcredentials.go *
package credentials

import (
	"context"
	"errors"
	"fmt"
	"referralflow/pkg/logger"
	"referralflow/pkg/serrors"
	"strings"

	"go.uber.org/zap"
)

// Provider looks up the secret stored for an account. Implementations return
// an error matching serrors.ErrNotFound when the account has no secret.
type Provider interface {
	Secret(ctx context.Context, account string) (string, error)
}

// Writer stores and removes secrets.
type Writer interface {
	SetSecret(ctx context.Context, account, secret string) error
	DeleteSecret(ctx context.Context, account string) error
}

// Static serves secrets from a fixed map, typically built from configuration.
// Empty values are treated as absent.
type Static map[string]string

// Secret implements Provider.
func (s Static) Secret(_ context.Context, account string) (string, error) {
	if v := strings.TrimSpace(s[account]); v != "" {
		return v, nil
	}

	return "", serrors.With(serrors.ErrNotFound, "no secret for account %q", account)
}

// Chain asks each provider in order and returns the first secret found.
type Chain []Provider

// Secret implements Provider. Lookup errors other than not-found are logged
// and skipped; if nothing is found the first such error is returned, or a
// not-found error when every provider simply had no value.
func (c Chain) Secret(ctx context.Context, account string) (string, error) {
	var firstErr error
	for _, p := range c {
		v, err := p.Secret(ctx, account)
		if err == nil && v != "" {
			return v, nil
		}
		if err != nil && !errors.Is(err, serrors.ErrNotFound) {
			logger.Warn(ctx, "credential provider failed", zap.String("account", account), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if firstErr != nil {
		return "", fmt.Errorf("could not resolve secret for %q: %w", account, firstErr)
	}

	return "", serrors.With(serrors.ErrNotFound, "no secret for account %q", account)
}

// Account builds the conventional account name for a service user, e.g.
// Account("smtp", "bot@example.com", "smtp.example.com") returns
// "smtp:bot@example.com@smtp.example.com".
func Account(kind, user, host string) string {
	switch {
	case user == "" && host == "":
		return kind
	case host == "":
		return kind + ":" + user
	case user == "":
		return kind + ":" + host
	default:
		return fmt.Sprintf("%s:%s@%s", kind, user, host)
	}
}
