package v1handler

import (
	"context"
	"errors"
	"net/http"

	"referralflow/internal/api/specs/v1specs"
	"referralflow/pkg/logger"
	"referralflow/pkg/serrors"

	"github.com/go-faster/jx"
	"github.com/ogen-go/ogen/ogenerrors"
	"go.uber.org/zap"
)

type errorClass struct {
	kind    serrors.Kind
	status  int
	message string
}

// errorClasses maps semantic kinds to status codes and the message used when
// the error carries none.
var errorClasses = []errorClass{ //nolint: gochecknoglobals
	{serrors.ErrBadRequest, http.StatusBadRequest, "bad request"},
	{serrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{serrors.ErrForbidden, http.StatusForbidden, "forbidden"},
	{serrors.ErrNotFound, http.StatusNotFound, "resource not found"},
	{serrors.ErrConflict, http.StatusConflict, "conflict"},
	{serrors.ErrRateLimited, http.StatusTooManyRequests, "too many requests"},
	{serrors.ErrUnavailable, http.StatusServiceUnavailable, "service unavailable"},
	{serrors.ErrTimeout, http.StatusGatewayTimeout, "timed out"},
}

func statusOf(err error) *v1specs.ErrorStatusCode {
	if k := serrors.KindOf(err); k != nil {
		for _, c := range errorClasses {
			if !errors.Is(k, c.kind) {
				continue
			}
			msg := serrors.MessageOf(err)
			if msg == "" {
				msg = c.message
			}

			return &v1specs.ErrorStatusCode{
				StatusCode: c.status,
				Response:   v1specs.Error{Code: c.kind.Error(), Message: msg},
			}
		}
	}

	// internal details never leave the process
	return &v1specs.ErrorStatusCode{
		StatusCode: http.StatusInternalServerError,
		Response:   v1specs.Error{Code: serrors.ErrInternal.Error(), Message: "internal error"},
	}
}

// classify turns router level failures into semantic errors.
func classify(err error) error {
	var (
		secErr    *ogenerrors.SecurityError
		reqErr    *ogenerrors.DecodeRequestError
		paramsErr *ogenerrors.DecodeParamsError
	)
	switch {
	case errors.As(err, &secErr):
		if errors.Is(secErr.Err, ogenerrors.ErrSecurityRequirementIsNotSatisfied) {
			return serrors.Wrap(serrors.ErrUnauthorized, err, "missing bearer token")
		}
		if serrors.KindOf(secErr.Err) != nil {
			return secErr.Err
		}

		return serrors.Wrap(serrors.ErrUnauthorized, err, "invalid token")
	case errors.As(err, &paramsErr):
		return serrors.Wrap(serrors.ErrBadRequest, err, "invalid payload: email is required and must be an address")
	case errors.As(err, &reqErr):
		var tooLarge *http.MaxBytesError
		if errors.As(reqErr.Err, &tooLarge) {
			return serrors.Wrap(serrors.ErrBadRequest, err, "request body too large")
		}

		return serrors.Wrap(serrors.ErrBadRequest, err, "invalid payload: %s", reqErr.Err.Error())
	}

	return err
}

// NewError converts err into the response returned to the caller. Server
// errors are logged with their cause.
func (h *Handler) NewError(ctx context.Context, err error) *v1specs.ErrorStatusCode {
	return newError(ctx, err)
}

func newError(ctx context.Context, err error) *v1specs.ErrorStatusCode {
	st := statusOf(classify(err))
	if st.StatusCode >= http.StatusInternalServerError {
		logger.Error(ctx, "request failed", zap.Error(err))
	} else {
		logger.Debug(ctx, "request rejected", zap.Error(err), zap.Int("status", st.StatusCode))
	}

	return st
}

// ErrorHandler renders decode failures raised before a Handler method runs.
func ErrorHandler(ctx context.Context, w http.ResponseWriter, _ *http.Request, err error) {
	writeError(w, newError(ctx, err))
}

// NotFound renders unknown v1 routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, newError(r.Context(), serrors.KindOnly(serrors.ErrNotFound)))
}

// MethodNotAllowed renders a known route called with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request, allowed string) {
	w.Header().Set("Allow", allowed)
	writeError(w, &v1specs.ErrorStatusCode{
		StatusCode: http.StatusMethodNotAllowed,
		Response:   v1specs.Error{Code: "METHOD_NOT_ALLOWED", Message: "allowed: " + allowed},
	})
}

// ServerOptions renders every failure of the generated server as Error.
func ServerOptions() []v1specs.ServerOption {
	return []v1specs.ServerOption{
		v1specs.WithErrorHandler(ErrorHandler),
		v1specs.WithNotFound(NotFound),
		v1specs.WithMethodNotAllowed(MethodNotAllowed),
	}
}

func writeError(w http.ResponseWriter, st *v1specs.ErrorStatusCode) {
	var e jx.Encoder
	st.Response.Encode(&e)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(st.StatusCode)
	_, _ = w.Write(e.Bytes())
}
