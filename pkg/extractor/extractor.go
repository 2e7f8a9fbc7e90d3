// Package extractor turns raw résumé text into a domain.Profile using a
// remote text-generation model. Provider clients live in sub-packages; this
// package holds the prompt, the output parser and the error classification
// they share.
//
//go:generate mockgen -package mockextractor -source=extractor.go -destination=mock/mockextractor.go *
package extractor

import (
	"context"
	"errors"
	"net"
	"referralflow/pkg/domain"
	"referralflow/pkg/serrors"
)

// DefaultMaxInputChars bounds how much résumé text is sent to the model.
const DefaultMaxInputChars = 3000

var (
	// ErrExtraction marks every failure of an extraction call.
	ErrExtraction = serrors.NewKind("EXTRACTION")
	// ErrMalformed marks model output that does not contain a usable profile.
	ErrMalformed = serrors.NewKind("MALFORMED_OUTPUT")
)

// Extractor produces a structured profile from résumé text. Implementations
// are stateless between calls and return errors matching ErrExtraction.
type Extractor interface {
	Extract(ctx context.Context, text string) (domain.Profile, error)
}

// Retryable reports whether an extraction attempt failed for a transient
// reason: a network error, an unavailable or rate limited endpoint, or output
// that could not be parsed. Credential and request errors are final.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, serrors.ErrUnauthorized) || errors.Is(err, serrors.ErrBadRequest) {
		return false
	}
	if errors.Is(err, ErrMalformed) ||
		errors.Is(err, serrors.ErrUnavailable) ||
		errors.Is(err, serrors.ErrRateLimited) ||
		errors.Is(err, serrors.ErrTimeout) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr)
}

// Failed wraps err as an extraction failure unless it already is one.
func Failed(err error) error {
	if err == nil || errors.Is(err, ErrExtraction) {
		return err
	}

	return serrors.Wrap(ErrExtraction, err, "extraction failed")
}

// MissingCredential is returned when no API credential is configured.
func MissingCredential(cause error) error {
	return serrors.Wrap(ErrExtraction, serrors.Wrap(serrors.ErrUnauthorized, cause, "no extraction credential configured"), "extraction failed")
}
