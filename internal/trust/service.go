// Package trust orchestrates the credential trust pipeline: role-scoped
// access to ledger records, provenance reconstruction, and anonymous
// third-party verification.
package trust

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"credgate/internal/audit"
	"credgate/internal/authz"
	"credgate/internal/ledger"
	"credgate/internal/platform/metrics"
	"credgate/pkg/domain"
	dErrors "credgate/pkg/domain-errors"
	"credgate/pkg/platform/sentinel"
	"credgate/pkg/requestcontext"
)

// AuditPublisher records domain-significant events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service fronts the ledger gateway with authorization and response shaping.
// It holds no state of its own; every answer is a fresh ledger read.
type Service struct {
	gateway        ledger.Gateway
	origin         string
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

// NewService constructs the trust service. origin is the public base URL
// verification references are derived from.
func NewService(gateway ledger.Gateway, origin string, opts ...Option) *Service {
	svc := &Service{
		gateway: gateway,
		origin:  origin,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.logger == nil {
		svc.logger = slog.Default()
	}
	return svc
}

// HolderCredentials lists the acting holder's own records. Requires role
// holder; the scope in the claims decides whose records are visible, so a
// holder can never widen the query past themselves.
func (s *Service) HolderCredentials(ctx context.Context, claims domain.Claims) ([]ledger.CredentialSummary, error) {
	if err := s.requireRole(ctx, claims, domain.RoleHolder); err != nil {
		return nil, err
	}

	holderID, err := domain.ParseHolderID(claims.ScopeID)
	if err != nil {
		return nil, err
	}

	defer s.observeLedger("credentials_by_holder", time.Now())
	summaries, err := s.gateway.GetCredentialsByHolder(ctx, holderID)
	if err != nil {
		return nil, s.translateGatewayErr(err)
	}
	s.countLookup("holder_list")
	return summaries, nil
}

// CredentialDetail returns one record for the acting holder. The record must
// belong to the holder's own scope; someone else's credential surfaces as
// NotFound rather than Forbidden so the response does not confirm the
// credential exists.
func (s *Service) CredentialDetail(ctx context.Context, claims domain.Claims, id domain.CredentialID) (*ledger.CredentialRecord, error) {
	if err := s.requireRole(ctx, claims, domain.RoleHolder); err != nil {
		return nil, err
	}

	start := time.Now()
	record, err := s.gateway.GetCredential(ctx, id)
	s.observeLedger("get_credential", start)
	if err != nil {
		return nil, s.translateGatewayErr(err)
	}
	if err := authz.RequireSelfScope(claims, record.HolderID.String()); err != nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "credential not found")
	}

	s.countLookup("holder_detail")
	s.logAudit(ctx, audit.EventCredentialAccessed, claims, id)
	return record, nil
}

// IssuerCredentials lists records issued by the acting issuer, scoped by the
// issuer id in the claims.
func (s *Service) IssuerCredentials(ctx context.Context, claims domain.Claims) ([]ledger.CredentialSummary, error) {
	if err := s.requireRole(ctx, claims, domain.RoleIssuer); err != nil {
		return nil, err
	}

	issuerID, err := domain.ParseIssuerID(claims.ScopeID)
	if err != nil {
		return nil, err
	}

	defer s.observeLedger("credentials_by_issuer", time.Now())
	summaries, err := s.gateway.GetCredentialsByIssuer(ctx, issuerID)
	if err != nil {
		return nil, s.translateGatewayErr(err)
	}
	s.countLookup("issuer_list")
	return summaries, nil
}

// Provenance returns the ordered ledger history of a credential for its
// issuing organization. The transaction sequence is passed through exactly
// as the gateway returned it, never reordered or deduplicated.
func (s *Service) Provenance(ctx context.Context, claims domain.Claims, id domain.CredentialID) (*ledger.ProvenanceTrace, error) {
	if err := s.requireRole(ctx, claims, domain.RoleIssuer); err != nil {
		return nil, err
	}

	defer s.observeLedger("get_provenance", time.Now())
	trace, err := s.gateway.GetProvenance(ctx, id)
	if err != nil {
		return nil, s.translateGatewayErr(err)
	}

	s.countLookup("provenance")
	s.logAudit(ctx, audit.EventProvenanceTraced, claims, id)
	return trace, nil
}

// PublicVerification is the answer to an anonymous verification request.
type PublicVerification struct {
	Record      *ledger.CredentialRecord `json:"credential"`
	Attestation *ledger.Attestation      `json:"verification"`
}

// VerifyPublic checks a credential for an anonymous third party. No
// authentication, by design: employers and other verifiers hold only the
// reference URL. Record and attestation are fetched concurrently and both
// must exist; a missing credential yields NotFound with no partial data.
func (s *Service) VerifyPublic(ctx context.Context, id domain.CredentialID) (*PublicVerification, error) {
	var (
		record      *ledger.CredentialRecord
		attestation *ledger.Attestation
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer s.observeLedger("get_credential", time.Now())
		var err error
		record, err = s.gateway.GetCredential(gctx, id)
		return err
	})
	g.Go(func() error {
		defer s.observeLedger("attest", time.Now())
		var err error
		attestation, err = s.gateway.Attest(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.countVerification("not_found")
		} else {
			s.countVerification("error")
		}
		return nil, s.translateGatewayErr(err)
	}

	s.countVerification("verified")
	s.logAudit(ctx, audit.EventPublicVerification, domain.Claims{}, id)
	return &PublicVerification{Record: record, Attestation: attestation}, nil
}

// Reference derives the public verification reference for a credential under
// the service's configured origin.
func (s *Service) Reference(id domain.CredentialID) Reference {
	return VerificationReference(s.origin, id)
}

func (s *Service) requireRole(ctx context.Context, claims domain.Claims, role domain.Role) error {
	if err := authz.RequireRole(claims, role); err != nil {
		s.logger.WarnContext(ctx, "role check failed",
			"required", role.String(),
			"actual", claims.Role.String(),
			"request_id", requestcontext.RequestID(ctx),
		)
		if s.metrics != nil {
			s.metrics.ForbiddenRequests.Inc()
		}
		return err
	}
	return nil
}

// translateGatewayErr maps ledger sentinel errors into the domain taxonomy.
// Absence and unreachability must stay distinct.
func (s *Service) translateGatewayErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "credential not found")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "ledger unavailable")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "ledger query failed")
	}
}

func (s *Service) observeLedger(operation string, start time.Time) {
	if s.metrics != nil {
		s.metrics.LedgerLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

func (s *Service) countLookup(operation string) {
	if s.metrics != nil {
		s.metrics.CredentialLookups.WithLabelValues(operation).Inc()
	}
}

func (s *Service) countVerification(outcome string) {
	if s.metrics != nil {
		s.metrics.PublicVerifications.WithLabelValues(outcome).Inc()
	}
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, claims domain.Claims, id domain.CredentialID) {
	requestID := requestcontext.RequestID(ctx)
	s.logger.InfoContext(ctx, string(event),
		"subject", claims.Email,
		"credential_id", id.String(),
		"request_id", requestID,
		"log_type", "audit",
	)
	if s.auditPublisher == nil {
		return
	}
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		Subject:      claims.Email,
		Role:         claims.Role.String(),
		Action:       string(event),
		CredentialID: id.String(),
		RequestID:    requestID,
	})
}
