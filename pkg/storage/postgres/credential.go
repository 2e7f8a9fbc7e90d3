package postgres

import (
	"context"
	"fmt"
	"referralflow/pkg/domain"

	"github.com/doug-martin/goqu/v9"
)

const (
	credentialsTable = "credentials"
)

// CredentialByAccount returns the sealed credential stored for account, or nil.
func (p *PgSQL) CredentialByAccount(ctx context.Context, account string) (*domain.Credential, error) {
	var row PgCredential
	found, err := p.Builder.From(credentialsTable).
		Where(goqu.I("account").Eq(account)).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch credential from pg: %w", err)
	}
	if !found {
		return nil, nil
	}

	return row.ToDomain(), nil
}

// Credentials lists every sealed credential ordered by account.
func (p *PgSQL) Credentials(ctx context.Context) ([]domain.Credential, error) {
	var rows []PgCredential
	err := p.Builder.From(credentialsTable).
		Order(goqu.I("account").Asc()).
		Executor().ScanStructsContext(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("could not list credentials from pg: %w", err)
	}

	out := make([]domain.Credential, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].ToDomain())
	}

	return out, nil
}

// UpsertCredential inserts or replaces the sealed secret for account.
func (p *PgSQL) UpsertCredential(ctx context.Context, account string, sealed []byte) error {
	_, err := p.Builder.Insert(credentialsTable).
		Rows(PgCredential{Account: account, Secret: sealed}).
		OnConflict(goqu.DoUpdate("account", goqu.Record{
			"secret":     goqu.L("EXCLUDED.secret"),
			"updated_at": goqu.L("CURRENT_TIMESTAMP"),
		})).
		Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("could not upsert credential in pg: %w", err)
	}

	return nil
}

// DeleteCredential hard deletes the credential for account.
func (p *PgSQL) DeleteCredential(ctx context.Context, account string) (bool, error) {
	res, err := p.Builder.Delete(credentialsTable).
		Where(goqu.I("account").Eq(account)).
		Executor().ExecContext(ctx)
	if err != nil {
		return false, fmt.Errorf("could not delete credential in pg: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("could not read affected rows: %w", err)
	}

	return n > 0, nil
}
