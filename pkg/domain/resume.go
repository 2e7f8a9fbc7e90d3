package domain

import (
	"time"

	"github.com/google/uuid"
)

// RunID identifies one pipeline execution.
type RunID uuid.UUID

// NewRunID returns a random RunID.
func NewRunID() RunID { return RunID(uuid.New()) }

func (id RunID) String() string { return uuid.UUID(id).String() }

// MarshalText encodes id in canonical UUID form.
func (id RunID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }

// UnmarshalText decodes a UUID.
func (id *RunID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }

// ResumePayload is the unit of work accepted by the ingress routes. It is
// immutable once created and consumed by exactly one pipeline run.
type ResumePayload struct {
	// RunID is assigned at ingress and threads through logs and metrics.
	RunID RunID `json:"runId"`
	// Text is the raw résumé text.
	Text string `json:"text"`
	// Email is the candidate's address. Drafted applications are delivered to it.
	Email string `json:"email"`
	// SubmittedBy is the authenticated caller, if any.
	SubmittedBy UserID `json:"submittedBy"`
	// ReceivedAt is the ingress timestamp.
	ReceivedAt time.Time `json:"receivedAt"`
}
