package credentials

import (
	"context"
	"fmt"
	"referralflow/pkg/serrors"
	"referralflow/pkg/storage"
	"strings"
)

// Stored keeps secrets sealed in the application database.
type Stored struct {
	storage storage.CredentialStorage
	box     *Box
}

// NewStored returns a Stored provider persisting through strg and sealing
// with box.
func NewStored(strg storage.CredentialStorage, box *Box) *Stored {
	return &Stored{storage: strg, box: box}
}

// Secret implements Provider.
func (s *Stored) Secret(ctx context.Context, account string) (string, error) {
	cred, err := s.storage.CredentialByAccount(ctx, account)
	if err != nil {
		return "", fmt.Errorf("could not load credential: %w", err)
	}
	if cred == nil {
		return "", serrors.With(serrors.ErrNotFound, "no stored credential for %q", account)
	}

	plain, err := s.box.Open(cred.Sealed)
	if err != nil {
		return "", serrors.Wrap(serrors.ErrInternal, err, "could not open credential %q", account)
	}

	return string(plain), nil
}

// SetSecret implements Writer.
func (s *Stored) SetSecret(ctx context.Context, account, secret string) error {
	if strings.TrimSpace(account) == "" || strings.TrimSpace(secret) == "" {
		return serrors.With(serrors.ErrBadRequest, "account and secret are required")
	}
	sealed, err := s.box.Seal([]byte(secret))
	if err != nil {
		return err
	}
	if err := s.storage.UpsertCredential(ctx, account, sealed); err != nil {
		return fmt.Errorf("could not store credential: %w", err)
	}

	return nil
}

// DeleteSecret implements Writer.
func (s *Stored) DeleteSecret(ctx context.Context, account string) error {
	deleted, err := s.storage.DeleteCredential(ctx, account)
	if err != nil {
		return fmt.Errorf("could not delete credential: %w", err)
	}
	if !deleted {
		return serrors.With(serrors.ErrNotFound, "no stored credential for %q", account)
	}

	return nil
}
