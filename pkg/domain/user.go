package domain

import "github.com/google/uuid"

// UserID identifies the authenticated caller that submitted a résumé. It is
// the zero value when the ingress routes run without bearer authentication.
type UserID uuid.UUID

// IsZero reports whether id is unset.
func (id UserID) IsZero() bool { return uuid.UUID(id) == uuid.Nil }

// String returns the canonical UUID form, or an empty string for the zero ID.
func (id UserID) String() string {
	if id.IsZero() {
		return ""
	}

	return uuid.UUID(id).String()
}

// MarshalText encodes id in canonical UUID form.
func (id UserID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

// UnmarshalText decodes a UUID.
func (id *UserID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
