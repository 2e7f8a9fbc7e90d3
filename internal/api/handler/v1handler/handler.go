// Package v1handler implements the v1 HTTP API: résumé ingestion through a
// JSON webhook or a file upload, a health check, bearer authentication and
// error rendering.
package v1handler

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"referralflow/internal/api/specs/v1specs"
	"referralflow/internal/pipeline"
	"referralflow/pkg/domain"
	"referralflow/pkg/logger"
	"referralflow/pkg/serrors"
	"referralflow/pkg/textextract"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// AppName is reported by the health endpoint.
const AppName = "referralflow"

// Route paths.
const (
	IngestPath = "/api/v1/orchestrator/webhook/ingest"
	UploadPath = "/api/v1/orchestrator/upload"
	HealthPath = "/health"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Enqueuer pipeline.Enqueuer
	// Storage, when set, must answer Ping for the service to report healthy.
	Storage Pinger
	// RequireAuth rejects ingestion calls that carry no bearer token.
	RequireAuth bool
}

type Handler struct {
	deps     Deps
	validate *validator.Validate
}

// Ensure Handler implements v1specs.Handler.
var _ v1specs.Handler = (*Handler)(nil)

func New(deps Deps) *Handler {
	return &Handler{
		deps:     deps,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

type ingestPayload struct {
	Text  string `validate:"required"`
	Email string `validate:"required,email"`
}

// IngestResume accepts {"text": ..., "email": ...} and schedules a pipeline run.
func (h *Handler) IngestResume(ctx context.Context, req *v1specs.IngestRequest) (*v1specs.Accepted, error) {
	if err := h.authorize(ctx); err != nil {
		return nil, err
	}

	payload := ingestPayload{
		Text:  textextract.Normalize(req.Text),
		Email: strings.TrimSpace(req.Email),
	}
	if err := h.validate.Struct(payload); err != nil {
		return nil, serrors.Wrap(serrors.ErrBadRequest, err, "invalid payload: %s", validationMessage(err))
	}

	return h.accept(ctx, payload.Text, payload.Email)
}

// UploadResume accepts a multipart résumé file in field "file" with the
// candidate address in the "email" query parameter.
func (h *Handler) UploadResume(
	ctx context.Context,
	req *v1specs.UploadResumeReq,
	params v1specs.UploadResumeParams,
) (*v1specs.Accepted, error) {
	if err := h.authorize(ctx); err != nil {
		return nil, err
	}

	email := strings.TrimSpace(params.Email)
	if err := h.validate.Var(email, "required,email"); err != nil {
		return nil, serrors.Wrap(serrors.ErrBadRequest, err, "invalid payload: email is required and must be an address")
	}

	data, err := io.ReadAll(req.File.File)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrBadRequest, err, "could not read uploaded file")
	}

	text, err := textextract.Extract(data, req.File.Name)
	if err != nil {
		return nil, err //nolint: wrapcheck
	}

	logger.Info(ctx, "extracted résumé text",
		zap.String("filename", req.File.Name),
		zap.Int("bytes", len(data)),
		zap.Int("chars", len(text)))

	return h.accept(ctx, text, email)
}

func (h *Handler) accept(ctx context.Context, text, email string) (*v1specs.Accepted, error) {
	payload := domain.ResumePayload{
		RunID:       domain.NewRunID(),
		Text:        text,
		Email:       email,
		SubmittedBy: GetUserIDFromContext(ctx),
		ReceivedAt:  time.Now().UTC(),
	}
	if h.deps.Enqueuer == nil {
		return nil, serrors.With(serrors.ErrInternal, "no queue configured")
	}
	if err := h.deps.Enqueuer.Enqueue(ctx, payload); err != nil {
		return nil, serrors.Wrap(serrors.ErrInternal, err, "could not enqueue pipeline run")
	}

	logger.Info(ctx, "résumé accepted", zap.Stringer("runID", payload.RunID))

	return &v1specs.Accepted{Status: v1specs.AcceptedStatusAccepted}, nil
}

// authorize rejects anonymous calls when tokens are enforced. Verified
// callers have their UserID in ctx.
func (h *Handler) authorize(ctx context.Context) error {
	if h.deps.RequireAuth && GetUserIDFromContext(ctx).IsZero() {
		return serrors.With(serrors.ErrUnauthorized, "missing bearer token")
	}

	return nil
}

// Health reports liveness, and readiness of storage when one is attached.
func (h *Handler) Health(ctx context.Context) (*v1specs.HealthOK, error) {
	if h.deps.Storage != nil {
		if err := h.deps.Storage.Ping(ctx); err != nil {
			return nil, serrors.Wrap(serrors.ErrUnavailable, err, "storage unreachable")
		}
	}

	return &v1specs.HealthOK{Status: "ok", AppName: AppName}, nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Field())+" failed "+fe.Tag())
	}

	return strings.Join(fields, ", ")
}
