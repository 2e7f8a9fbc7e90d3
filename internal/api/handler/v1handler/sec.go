package v1handler

import (
	"context"
	"crypto/rsa"
	"fmt"
	"strings"

	"referralflow/internal/api/specs/v1specs"
	"referralflow/internal/config"
	"referralflow/pkg/domain"
	"referralflow/pkg/logger"
	"referralflow/pkg/serrors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CtxKey is the type of context keys set by this package.
type CtxKey string

// UserIDKey holds the authenticated domain.UserID.
const UserIDKey CtxKey = "UserID"

// SecHandlerOptions configures bearer authentication.
type SecHandlerOptions struct {
	// PublicKey is a PEM encoded RSA public key. Authentication is disabled
	// when it is empty.
	PublicKey string
}

func NewSecHandlerOptions(cfg *config.Config) *SecHandlerOptions {
	return &SecHandlerOptions{PublicKey: cfg.JWT.PublicKey}
}

// SecHandler verifies RS256 bearer tokens whose subject is a user UUID.
type SecHandler struct {
	key *rsa.PublicKey
}

// Ensure SecHandler implements v1specs.SecurityHandler.
var _ v1specs.SecurityHandler = (*SecHandler)(nil)

// NewSecHandler parses the configured public key. A handler created without a
// key lets every request through.
func NewSecHandler(opts *SecHandlerOptions) (*SecHandler, error) {
	if opts == nil || strings.TrimSpace(opts.PublicKey) == "" {
		return &SecHandler{}, nil
	}

	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(opts.PublicKey))
	if err != nil {
		return nil, fmt.Errorf("could not parse RSA public key: %w", err)
	}

	return &SecHandler{key: key}, nil
}

// Enabled reports whether tokens are verified.
func (s *SecHandler) Enabled() bool { return s != nil && s.key != nil }

// HandleBearerAuth validates t and returns ctx carrying the caller's UserID.
func (s *SecHandler) HandleBearerAuth(
	ctx context.Context,
	operationName v1specs.OperationName,
	t v1specs.BearerAuth,
) (context.Context, error) {
	if !s.Enabled() {
		return ctx, nil
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(strings.TrimSpace(t.Token), &claims,
		func(*jwt.Token) (any, error) { return s.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return ctx, serrors.Wrap(serrors.ErrUnauthorized, err, "invalid token")
	}

	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, serrors.Wrap(serrors.ErrUnauthorized, err, "invalid token subject")
	}

	ctx = context.WithValue(ctx, UserIDKey, domain.UserID(uid))
	ctx = logger.WithFields(ctx, zap.String("userID", uid.String()), zap.String("operation", operationName))

	return ctx, nil
}

// GetUserIDFromContext returns the authenticated caller, or the zero UserID.
func GetUserIDFromContext(ctx context.Context) domain.UserID {
	uid, _ := ctx.Value(UserIDKey).(domain.UserID)

	return uid
}
