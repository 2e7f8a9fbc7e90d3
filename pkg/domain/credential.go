package domain

import "time"

// Credential is a secret stored under an account name, for example the SMTP
// relay password or the extraction API token. Sealed is the encrypted secret
// as persisted; it is never logged.
type Credential struct {
	Account   string    `json:"account"`
	Sealed    []byte    `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
