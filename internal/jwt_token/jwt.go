// Package jwttoken issues and validates the signed session tokens that carry
// an identity's role and ledger-visible scope. Tokens are stateless: expiry
// is the only termination mechanism.
package jwttoken

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"credgate/pkg/domain"
	dErrors "credgate/pkg/domain-errors"
	"credgate/pkg/requestcontext"
)

// SessionClaims represents the JWT claims for session tokens.
// The subject is the identity's normalized email; scope_id is the holder or
// issuer ID the role maps to on the ledger.
type SessionClaims struct {
	Role    string `json:"role"`
	ScopeID string `json:"scope_id"`
	jwt.RegisteredClaims
}

// Service handles session token creation and validation.
type Service struct {
	signingKey []byte
	issuer     string
	tokenTTL   time.Duration
	logger     *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets a logger for internal rejection reasons. The public error
// surface never distinguishes signature failure from expiry; the log does.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

const defaultTokenTTL = 24 * time.Hour

// New constructs a token service. A zero or negative ttl falls back to 24h.
func New(signingKey string, issuer string, tokenTTL time.Duration, opts ...Option) *Service {
	svc := &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		tokenTTL:   tokenTTL,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.tokenTTL <= 0 {
		svc.tokenTTL = defaultTokenTTL
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc
}

// TTL returns the configured token lifetime.
func (s *Service) TTL() time.Duration {
	return s.tokenTTL
}

// Issue signs a session token for the given claims. The clock is read from
// the context so issuance is deterministic under test.
func (s *Service) Issue(ctx context.Context, claims domain.Claims) (string, error) {
	if !claims.Role.Valid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown role")
	}
	if claims.Email == "" || claims.ScopeID == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "claims require email and scope")
	}

	now := requestcontext.Now(ctx)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		Role:    claims.Role.String(),
		ScopeID: claims.ScopeID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Email,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	})

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not sign session token")
	}
	return signed, nil
}

// Verify validates a session token and returns its decoded claims.
// Signature mismatch and expiry are logged separately but collapse into one
// unauthorized error so callers cannot tell which check failed.
func (s *Service) Verify(tokenString string) (domain.Claims, error) {
	if tokenString == "" {
		return domain.Claims{}, s.reject("empty token")
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Claims{}, s.reject("token expired")
		}
		return domain.Claims{}, s.reject("token signature or format invalid")
	}
	if !parsed.Valid {
		return domain.Claims{}, s.reject("token invalid")
	}

	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok {
		return domain.Claims{}, s.reject("unexpected claims type")
	}

	role := domain.Role(claims.Role)
	if !role.Valid() {
		return domain.Claims{}, s.reject("unknown role in token")
	}
	if s.issuer != "" && claims.Issuer != s.issuer {
		return domain.Claims{}, s.reject("unexpected issuer")
	}

	return domain.Claims{
		Email:   claims.Subject,
		Role:    role,
		ScopeID: claims.ScopeID,
	}, nil
}

// reject logs the internal reason and returns the single public error shape.
func (s *Service) reject(reason string) error {
	s.logger.Warn("session token rejected", "reason", reason)
	return dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token")
}
