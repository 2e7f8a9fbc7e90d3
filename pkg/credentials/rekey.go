package credentials

import (
	"context"
	"fmt"
	"referralflow/pkg/logger"
	"referralflow/pkg/serrors"
	"referralflow/pkg/storage"

	"go.uber.org/zap"
)

// Transactor runs a callback inside a storage transaction.
type Transactor interface {
	WithTx(ctx context.Context, cb func(storage.AllStorage) error) error
}

// Rekey re-seals every stored credential from one key to another in a single
// transaction. Either all credentials move to the new key or none do.
func Rekey(ctx context.Context, strg Transactor, from, to *Box) (int, error) {
	if from == nil || to == nil {
		return 0, serrors.With(serrors.ErrBadRequest, "both the current and the new key are required")
	}

	var n int
	err := strg.WithTx(ctx, func(tx storage.AllStorage) error {
		n = 0
		creds, err := tx.Credentials(ctx)
		if err != nil {
			return fmt.Errorf("could not list credentials: %w", err)
		}

		for _, cred := range creds {
			plain, err := from.Open(cred.Sealed)
			if err != nil {
				return serrors.Wrap(serrors.ErrBadRequest, err, "credential %q is not sealed with the current key", cred.Account)
			}
			sealed, err := to.Seal(plain)
			if err != nil {
				return err
			}
			if err := tx.UpsertCredential(ctx, cred.Account, sealed); err != nil {
				return fmt.Errorf("could not store credential %q: %w", cred.Account, err)
			}
			logger.Debug(ctx, "credential resealed", zap.String("account", cred.Account))
			n++
		}

		return nil
	})
	if err != nil {
		return 0, err //nolint: wrapcheck
	}

	return n, nil
}
