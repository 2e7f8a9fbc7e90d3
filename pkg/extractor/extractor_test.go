package extractor_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"referralflow/pkg/extractor"
	"referralflow/pkg/serrors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRetryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "warming up", err: serrors.With(serrors.ErrUnavailable, "model warming up"), want: true},
		{name: "rate limited", err: serrors.With(serrors.ErrRateLimited, "rate limited"), want: true},
		{name: "malformed output", err: serrors.With(extractor.ErrMalformed, "no JSON"), want: true},
		{name: "network", err: fmt.Errorf("send: %w", &net.OpError{Op: "dial", Err: errors.New("refused")}), want: true},
		{name: "unauthorized", err: serrors.With(serrors.ErrUnauthorized, "credential invalid"), want: false},
		{name: "bad request", err: serrors.With(serrors.ErrBadRequest, "rejected"), want: false},
		{name: "canceled", err: context.Canceled, want: false},
		{name: "plain", err: errors.New("boom"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, extractor.Retryable(tt.err))
		})
	}
}

func TestFailed(t *testing.T) {
	t.Parallel()

	require.NoError(t, extractor.Failed(nil))

	cause := serrors.With(serrors.ErrRateLimited, "rate limited")
	err := extractor.Failed(cause)
	require.ErrorIs(t, err, extractor.ErrExtraction)
	require.ErrorIs(t, err, serrors.ErrRateLimited)
	require.Same(t, err, extractor.Failed(err))

	missing := extractor.MissingCredential(serrors.KindOnly(serrors.ErrNotFound))
	require.ErrorIs(t, missing, extractor.ErrExtraction)
	require.ErrorIs(t, missing, serrors.ErrUnauthorized)
	require.False(t, extractor.Retryable(missing))
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	require.Equal(t, "hello", extractor.Truncate("hello", 10))
	require.Equal(t, "hel", extractor.Truncate("hello", 3))
	require.Equal(t, "hello", extractor.Truncate("hello", 0))
	require.Equal(t, "résu", extractor.Truncate("résumé", 4))

	long := strings.Repeat("a", extractor.DefaultMaxInputChars+500)
	require.Len(t, extractor.Truncate(long, extractor.DefaultMaxInputChars), extractor.DefaultMaxInputChars)
}

func TestPrompt(t *testing.T) {
	t.Parallel()

	p := extractor.Prompt("  Jane Doe, Go developer  ")
	require.True(t, strings.HasPrefix(p, "<s>[INST]"))
	require.True(t, strings.HasSuffix(p, "[/INST]</s>"))
	require.Contains(t, p, "Jane Doe, Go developer [/INST]")
	require.Contains(t, p, `"positions"`)
}
