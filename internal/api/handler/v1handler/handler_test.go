package v1handler_test

import (
	"context"
	"errors"
	"net/http"
	"referralflow/internal/api/handler/v1handler"
	"testing"

	"referralflow/pkg/logger"
	"referralflow/pkg/serrors"

	"github.com/ogen-go/ogen/ogenerrors"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// Initialize logger to avoid nil pointer deref during tests
	logger.Setup(logger.DevelopmentEnvironment)
	m.Run()
}

func TestNewError_InternalOnPlainError(t *testing.T) {
	h := v1handler.New(v1handler.Deps{})
	ctx := context.Background()

	res := h.NewError(ctx, errors.New("boom"))
	require.NotNil(t, res)
	require.Equal(t, 500, res.StatusCode)
	require.Equal(t, serrors.ErrInternal.Error(), res.Response.Code)
	require.Equal(t, "internal error", res.Response.Message)
}

func TestNewError_KindSentinelDirect_NotFound(t *testing.T) {
	h := v1handler.New(v1handler.Deps{})
	ctx := context.Background()

	// Pass the Kind sentinel directly
	res := h.NewError(ctx, serrors.ErrNotFound)
	require.Equal(t, 404, res.StatusCode)
	require.Equal(t, serrors.ErrNotFound.Error(), res.Response.Code)
	require.Equal(t, "resource not found", res.Response.Message)
}

func TestNewError_SemanticWithMessage_BadRequest(t *testing.T) {
	h := v1handler.New(v1handler.Deps{})
	ctx := context.Background()

	err := serrors.With(serrors.ErrBadRequest, "invalid payload: missing url")
	res := h.NewError(ctx, err)
	require.Equal(t, 400, res.StatusCode)
	require.Equal(t, serrors.ErrBadRequest.Error(), res.Response.Code)
	require.Equal(t, "invalid payload: missing url", res.Response.Message)
}

func TestNewError_SemanticWrap_Unauthorized(t *testing.T) {
	h := v1handler.New(v1handler.Deps{})
	ctx := context.Background()

	cause := errors.New("bad token")
	err := serrors.Wrap(serrors.ErrUnauthorized, cause, "unauthorized")
	res := h.NewError(ctx, err)
	require.Equal(t, 401, res.StatusCode)
	require.Equal(t, serrors.ErrUnauthorized.Error(), res.Response.Code)
	// Should include provided message, not the cause
	require.Equal(t, "unauthorized", res.Response.Message)
}

func TestNewError_InternalKind_GeneratesInternal(t *testing.T) {
	h := v1handler.New(v1handler.Deps{})
	ctx := context.Background()

	res := h.NewError(ctx, serrors.KindOnly(serrors.ErrInternal))
	require.Equal(t, 500, res.StatusCode)
	require.Equal(t, serrors.ErrInternal.Error(), res.Response.Code)
	require.Equal(t, "internal error", res.Response.Message)
}

func TestNewError_KindMapping(t *testing.T) {
	h := v1handler.New(v1handler.Deps{})
	ctx := context.Background()

	tests := []struct {
		err    error
		status int
	}{
		{serrors.KindOnly(serrors.ErrForbidden), 403},
		{serrors.KindOnly(serrors.ErrConflict), 409},
		{serrors.KindOnly(serrors.ErrRateLimited), 429},
		{serrors.KindOnly(serrors.ErrUnavailable), 503},
		{serrors.KindOnly(serrors.ErrTimeout), 504},
		{serrors.With(serrors.NewKind("CUSTOM"), "hidden detail"), 500},
	}
	for _, tt := range tests {
		res := h.NewError(ctx, tt.err)
		require.Equal(t, tt.status, res.StatusCode, tt.err.Error())
	}

	res := h.NewError(ctx, serrors.With(serrors.NewKind("CUSTOM"), "hidden detail"))
	require.Equal(t, "internal error", res.Response.Message)
}

func TestNewError_RouterErrors(t *testing.T) {
	h := v1handler.New(v1handler.Deps{})
	ctx := context.Background()
	op := ogenerrors.OperationContext{Name: "IngestResume", ID: "ingestResume"}

	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{
			name:    "no credentials",
			err:     &ogenerrors.SecurityError{OperationContext: op, Err: ogenerrors.ErrSecurityRequirementIsNotSatisfied},
			status:  401,
			message: "missing bearer token",
		},
		{
			name: "rejected token",
			err: &ogenerrors.SecurityError{
				OperationContext: op,
				Security:         "BearerAuth",
				Err:              serrors.With(serrors.ErrUnauthorized, "invalid token subject"),
			},
			status:  401,
			message: "invalid token subject",
		},
		{
			name:    "opaque security failure",
			err:     &ogenerrors.SecurityError{OperationContext: op, Security: "BearerAuth", Err: errors.New("boom")},
			status:  401,
			message: "invalid token",
		},
		{
			name:    "bad params",
			err:     &ogenerrors.DecodeParamsError{OperationContext: op, Err: errors.New("query parameter not set")},
			status:  400,
			message: "invalid payload: email is required and must be an address",
		},
		{
			name:    "bad body",
			err:     &ogenerrors.DecodeRequestError{OperationContext: op, Err: errors.New("unexpected EOF")},
			status:  400,
			message: "invalid payload: unexpected EOF",
		},
		{
			name:    "body too large",
			err:     &ogenerrors.DecodeRequestError{OperationContext: op, Err: &http.MaxBytesError{Limit: 64}},
			status:  400,
			message: "request body too large",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := h.NewError(ctx, tt.err)
			require.Equal(t, tt.status, res.StatusCode)
			require.Equal(t, tt.message, res.Response.Message)
		})
	}
}
