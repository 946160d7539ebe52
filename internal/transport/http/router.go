// Package httptransport is the thin HTTP layer. Handlers decode requests,
// delegate to domain services, and shape responses; business rules stay in
// the services.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"credgate/internal/identity/models"
	"credgate/internal/identity/service"
	"credgate/internal/ledger"
	"credgate/internal/platform/health"
	"credgate/internal/platform/middleware"
	"credgate/internal/scancode"
	"credgate/internal/trust"
	"credgate/pkg/domain"
)

// IdentityService authenticates principals and manages their profiles.
type IdentityService interface {
	RegisterHolder(ctx context.Context, req *models.RegisterHolderRequest) (*service.AuthResult, error)
	RegisterIssuer(ctx context.Context, req *models.RegisterIssuerRequest) (*service.AuthResult, error)
	Login(ctx context.Context, req *models.LoginRequest) (*service.AuthResult, error)
	Profile(ctx context.Context, claims domain.Claims) (*models.Identity, error)
}

// TrustService answers credential queries against the ledger.
type TrustService interface {
	HolderCredentials(ctx context.Context, claims domain.Claims) ([]ledger.CredentialSummary, error)
	CredentialDetail(ctx context.Context, claims domain.Claims, id domain.CredentialID) (*ledger.CredentialRecord, error)
	IssuerCredentials(ctx context.Context, claims domain.Claims) ([]ledger.CredentialSummary, error)
	Provenance(ctx context.Context, claims domain.Claims, id domain.CredentialID) (*ledger.ProvenanceTrace, error)
	VerifyPublic(ctx context.Context, id domain.CredentialID) (*trust.PublicVerification, error)
	Reference(id domain.CredentialID) trust.Reference
}

// ScancodeService renders scannable verification images.
type ScancodeService interface {
	Image(ctx context.Context, id domain.CredentialID) ([]byte, error)
	Embed(ctx context.Context, id domain.CredentialID) (*scancode.Payload, error)
}

// Handler bundles the services the routes delegate to. tokenTTL is surfaced
// to clients as expires_in on auth responses.
type Handler struct {
	identity  IdentityService
	trust     TrustService
	scancodes ScancodeService
	tokenTTL  time.Duration
	logger    *slog.Logger
}

func NewHandler(identity IdentityService, trustSvc TrustService, scancodes ScancodeService, tokenTTL time.Duration, logger *slog.Logger) *Handler {
	return &Handler{
		identity:  identity,
		trust:     trustSvc,
		scancodes: scancodes,
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

// NewRouter wires all endpoints with the middleware stack. verifier guards
// the authenticated route group; verification and scancode routes stay
// anonymous so third parties can reach them from a shared reference alone.
func NewRouter(h *Handler, verifier middleware.TokenVerifier, healthHandler *health.Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.ContentTypeJSON)

	healthHandler.Register(r)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Registration and login.
	r.Post("/api/auth/register/student", h.handleRegisterHolder)
	r.Post("/api/auth/register/organization", h.handleRegisterIssuer)
	r.Post("/api/auth/login", h.handleLogin)

	// Anonymous verification surface.
	r.Get("/api/verify/{credentialID}", h.handleVerifyPublic)
	r.Get("/api/qr/{credentialID}", h.handleScancode)
	r.Get("/api/qr/{credentialID}/image", h.handleScancodeImage)

	// Authenticated surface.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(verifier, logger))

		r.Get("/api/profile", h.handleProfile)

		r.Get("/api/student/credentials", h.handleHolderCredentials)
		r.Get("/api/student/credentials/{credentialID}", h.handleCredentialDetail)

		r.Get("/api/organization/credentials", h.handleIssuerCredentials)
		r.Get("/api/organization/credentials/{credentialID}/trace", h.handleProvenance)
	})

	return r
}
