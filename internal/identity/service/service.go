// Package service implements the authenticator: registration of holders and
// issuers, login, and session token verification.
package service

import (
	"context"
	"errors"
	"log/slog"

	"credgate/internal/audit"
	"credgate/internal/identity/models"
	"credgate/internal/platform/metrics"
	"credgate/pkg/domain"
	dErrors "credgate/pkg/domain-errors"
	"credgate/pkg/platform/sentinel"
	"credgate/pkg/requestcontext"
	"credgate/pkg/secrets"
)

// Store defines the persistence interface for identities.
// Error Contract: FindByEmail returns sentinel.ErrNotFound when absent;
// Register returns sentinel.ErrConflict on a duplicate email.
type Store interface {
	Register(ctx context.Context, identity *models.Identity) error
	FindByEmail(ctx context.Context, email string) (*models.Identity, error)
}

// TokenService issues and verifies session tokens.
type TokenService interface {
	Issue(ctx context.Context, claims domain.Claims) (string, error)
	Verify(tokenString string) (domain.Claims, error)
}

// AuditPublisher records domain-significant events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service authenticates identities against the store and issues tokens.
type Service struct {
	store          Store
	tokens         TokenService
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

// Option configures the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func NewService(store Store, tokens TokenService, opts ...Option) *Service {
	svc := &Service{
		store:  store,
		tokens: tokens,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc
}

// AuthResult pairs a registered or authenticated identity with its session token.
type AuthResult struct {
	Identity *models.Identity
	Token    string
}

// RegisterHolder validates the request, stores the holder with a hashed
// secret, and issues a session token. The raw secret is neither stored nor
// logged. Registration is all-or-nothing: a store conflict leaves no trace,
// and the token is signed before the insert so a signing failure cannot
// strand a stored identity without a token.
func (s *Service) RegisterHolder(ctx context.Context, req *models.RegisterHolderRequest) (*AuthResult, error) {
	if req == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "request is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := secrets.Hash(req.Secret)
	if err != nil {
		return nil, err
	}

	identity := &models.Identity{
		Email:       req.Email,
		SecretHash:  hash,
		Role:        domain.RoleHolder,
		CreatedAt:   requestcontext.Now(ctx),
		HolderID:    domain.HolderID(req.HolderID),
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Institution: req.Institution,
	}

	return s.register(ctx, identity, audit.EventHolderRegistered)
}

// RegisterIssuer is the issuer-side counterpart of RegisterHolder.
func (s *Service) RegisterIssuer(ctx context.Context, req *models.RegisterIssuerRequest) (*AuthResult, error) {
	if req == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "request is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hash, err := secrets.Hash(req.Secret)
	if err != nil {
		return nil, err
	}

	identity := &models.Identity{
		Email:         req.Email,
		SecretHash:    hash,
		Role:          domain.RoleIssuer,
		CreatedAt:     requestcontext.Now(ctx),
		IssuerID:      domain.IssuerID(req.IssuerID),
		IssuerName:    req.IssuerName,
		ContactPerson: req.ContactPerson,
	}

	return s.register(ctx, identity, audit.EventIssuerRegistered)
}

func (s *Service) register(ctx context.Context, identity *models.Identity, event audit.AuditEvent) (*AuthResult, error) {
	token, err := s.tokens.Issue(ctx, identity.Claims())
	if err != nil {
		return nil, err
	}

	if err := s.store.Register(ctx, identity); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			s.logger.WarnContext(ctx, "registration conflict",
				"role", identity.Role.String(),
				"request_id", requestcontext.RequestID(ctx),
			)
			return nil, dErrors.New(dErrors.CodeConflict, "identity already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "identity store unavailable")
	}

	s.logAudit(ctx, event, identity.Email, identity.Role)
	if s.metrics != nil {
		s.metrics.IdentitiesRegistered.WithLabelValues(identity.Role.String()).Inc()
		s.metrics.TokensIssued.Inc()
	}

	return &AuthResult{Identity: identity, Token: token}, nil
}

// Login authenticates by email and secret. An unknown email and a wrong
// secret produce the same error value so callers cannot probe for account
// existence.
func (s *Service) Login(ctx context.Context, req *models.LoginRequest) (*AuthResult, error) {
	if req == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "request is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	identity, err := s.store.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, s.invalidCredentials(ctx, "unknown email")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "identity store unavailable")
	}

	if err := secrets.Verify(req.Secret, identity.SecretHash); err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			return nil, s.invalidCredentials(ctx, "secret mismatch")
		}
		return nil, err
	}

	token, err := s.tokens.Issue(ctx, identity.Claims())
	if err != nil {
		return nil, err
	}

	s.logAudit(ctx, audit.EventLoginSucceeded, identity.Email, identity.Role)
	if s.metrics != nil {
		s.metrics.Logins.Inc()
		s.metrics.TokensIssued.Inc()
	}

	return &AuthResult{Identity: identity, Token: token}, nil
}

// VerifyToken decodes and validates a session token.
func (s *Service) VerifyToken(tokenString string) (domain.Claims, error) {
	return s.tokens.Verify(tokenString)
}

// Profile returns the identity behind a set of verified claims.
func (s *Service) Profile(ctx context.Context, claims domain.Claims) (*models.Identity, error) {
	identity, err := s.store.FindByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "identity not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "identity store unavailable")
	}
	return identity, nil
}

// invalidCredentials logs the real reason and returns the one shared error
// shape for all failed logins.
func (s *Service) invalidCredentials(ctx context.Context, reason string) error {
	s.logger.WarnContext(ctx, string(audit.EventAuthFailed),
		"reason", reason,
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.metrics != nil {
		s.metrics.AuthFailures.Inc()
	}
	return dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, subject string, role domain.Role) {
	requestID := requestcontext.RequestID(ctx)
	s.logger.InfoContext(ctx, string(event),
		"subject", subject,
		"role", role.String(),
		"request_id", requestID,
		"log_type", "audit",
	)
	if s.auditPublisher == nil {
		return
	}
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		Subject:   subject,
		Role:      role.String(),
		Action:    string(event),
		RequestID: requestID,
	})
}
