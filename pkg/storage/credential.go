package storage

import (
	"context"
	"referralflow/pkg/domain"
)

// CredentialStorage persists sealed secrets by account name. Secrets are
// sealed and opened by the caller; implementations only see ciphertext.
type CredentialStorage interface {
	// CredentialByAccount returns the credential stored for account, or nil
	// when there is none.
	CredentialByAccount(ctx context.Context, account string) (*domain.Credential, error)
	// UpsertCredential stores sealed under account, replacing any previous value.
	UpsertCredential(ctx context.Context, account string, sealed []byte) error
	// Credentials returns every stored credential ordered by account.
	Credentials(ctx context.Context) ([]domain.Credential, error)
	// DeleteCredential removes the credential for account and reports whether
	// a row existed.
	DeleteCredential(ctx context.Context, account string) (bool, error)
}
