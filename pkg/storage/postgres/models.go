package postgres

import (
	"database/sql"
	"referralflow/pkg/domain"
	"time"
)

type PgCredential struct {
	Account string `db:"account"`
	Secret  []byte `db:"secret"`

	CreatedAt time.Time    `db:"created_at" goqu:"skipinsert"`
	UpdatedAt sql.NullTime `db:"updated_at" goqu:"skipinsert"`
}

func (p *PgCredential) ToDomain() *domain.Credential {
	return &domain.Credential{
		Account:   p.Account,
		Sealed:    p.Secret,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt.Time,
	}
}
