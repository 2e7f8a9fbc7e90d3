package credentials

import (
	"context"
	"errors"
	"fmt"
	"referralflow/pkg/serrors"
	"strings"

	"github.com/zalando/go-keyring"
)

// DefaultKeyringService groups this application's entries in the OS keychain.
const DefaultKeyringService = "referralflow"

// Keyring stores secrets in the OS keychain under a service name.
type Keyring struct {
	Service string
}

// NewKeyring returns a Keyring for service, or DefaultKeyringService when
// service is empty.
func NewKeyring(service string) Keyring {
	if strings.TrimSpace(service) == "" {
		service = DefaultKeyringService
	}

	return Keyring{Service: service}
}

// Secret implements Provider.
func (k Keyring) Secret(_ context.Context, account string) (string, error) {
	if strings.TrimSpace(account) == "" {
		return "", serrors.With(serrors.ErrBadRequest, "keyring account name is empty")
	}
	v, err := keyring.Get(k.Service, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", serrors.Wrap(serrors.ErrNotFound, err, "no keyring entry for %q", account)
	}
	if err != nil {
		return "", serrors.Wrap(serrors.ErrUnavailable, err, "could not read keyring")
	}
	if strings.TrimSpace(v) == "" {
		return "", serrors.With(serrors.ErrNotFound, "empty keyring entry for %q", account)
	}

	return v, nil
}

// SetSecret implements Writer.
func (k Keyring) SetSecret(_ context.Context, account, secret string) error {
	if strings.TrimSpace(account) == "" {
		return serrors.With(serrors.ErrBadRequest, "keyring account name is empty")
	}
	if strings.TrimSpace(secret) == "" {
		return serrors.With(serrors.ErrBadRequest, "secret is empty")
	}
	if err := keyring.Set(k.Service, account, secret); err != nil {
		return fmt.Errorf("could not write keyring: %w", err)
	}

	return nil
}

// DeleteSecret implements Writer.
func (k Keyring) DeleteSecret(_ context.Context, account string) error {
	err := keyring.Delete(k.Service, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return serrors.Wrap(serrors.ErrNotFound, err, "no keyring entry for %q", account)
	}
	if err != nil {
		return fmt.Errorf("could not delete keyring entry: %w", err)
	}

	return nil
}
