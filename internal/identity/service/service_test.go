package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credgate/internal/audit"
	"credgate/internal/identity/models"
	"credgate/internal/identity/store"
	jwttoken "credgate/internal/jwt_token"
	"credgate/pkg/domain"
	dErrors "credgate/pkg/domain-errors"
)

func newTestService(t *testing.T) (*Service, *store.InMemoryStore) {
	t.Helper()
	s := store.NewInMemory()
	tokens := jwttoken.New("unit-test-signing-key", "credgate", 24*time.Hour)
	return NewService(s, tokens), s
}

func validHolderRequest() *models.RegisterHolderRequest {
	return &models.RegisterHolderRequest{
		Email:       "Alice@Example.EDU",
		Secret:      "longenough1",
		HolderID:    "student-123",
		FirstName:   "Alice",
		LastName:    "Chen",
		Institution: "University of Technology",
	}
}

func validIssuerRequest() *models.RegisterIssuerRequest {
	return &models.RegisterIssuerRequest{
		Email:         "registrar@example.edu",
		Secret:        "longenough1",
		IssuerID:      "university-456",
		IssuerName:    "University of Technology",
		ContactPerson: "Dean Park",
	}
}

func TestRegisterHolder(t *testing.T) {
	svc, identities := newTestService(t)

	res, err := svc.RegisterHolder(context.Background(), validHolderRequest())
	require.NoError(t, err)
	require.NotNil(t, res.Identity)
	require.NotEmpty(t, res.Token)

	assert.Equal(t, "alice@example.edu", res.Identity.Email, "email is normalized")
	assert.Equal(t, domain.RoleHolder, res.Identity.Role)
	assert.NotEqual(t, "longenough1", res.Identity.SecretHash, "raw secret is never stored")
	assert.Equal(t, 1, identities.Len())

	claims, err := svc.VerifyToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleHolder, claims.Role)
	assert.Equal(t, "student-123", claims.ScopeID)
}

func TestRegisterIssuer(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.RegisterIssuer(context.Background(), validIssuerRequest())
	require.NoError(t, err)

	claims, err := svc.VerifyToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleIssuer, claims.Role)
	assert.Equal(t, "university-456", claims.ScopeID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, identities := newTestService(t)

	_, err := svc.RegisterHolder(context.Background(), validHolderRequest())
	require.NoError(t, err)

	_, err = svc.RegisterHolder(context.Background(), validHolderRequest())
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	assert.Equal(t, 1, identities.Len(), "failed registration leaves no trace")
}

func TestRegisterDuplicateAcrossRoles(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.RegisterHolder(context.Background(), validHolderRequest())
	require.NoError(t, err)

	issuerReq := validIssuerRequest()
	issuerReq.Email = "alice@example.edu"
	_, err = svc.RegisterIssuer(context.Background(), issuerReq)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestRegisterValidation(t *testing.T) {
	svc, identities := newTestService(t)

	tests := []struct {
		name   string
		mutate func(*models.RegisterHolderRequest)
	}{
		{"malformed email", func(r *models.RegisterHolderRequest) { r.Email = "not-an-email" }},
		{"short secret", func(r *models.RegisterHolderRequest) { r.Secret = "short" }},
		{"blank holder id", func(r *models.RegisterHolderRequest) { r.HolderID = "   " }},
		{"missing first name", func(r *models.RegisterHolderRequest) { r.FirstName = "" }},
		{"missing institution", func(r *models.RegisterHolderRequest) { r.Institution = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validHolderRequest()
			tt.mutate(req)
			_, err := svc.RegisterHolder(context.Background(), req)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}
	assert.Equal(t, 0, identities.Len())
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.RegisterHolder(context.Background(), validHolderRequest())
	require.NoError(t, err)

	res, err := svc.Login(context.Background(), &models.LoginRequest{
		Email:  "ALICE@example.edu",
		Secret: "longenough1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)
	assert.Equal(t, "alice@example.edu", res.Identity.Email)
}

func TestLoginIndistinguishableFailures(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.RegisterHolder(context.Background(), validHolderRequest())
	require.NoError(t, err)

	_, wrongSecretErr := svc.Login(context.Background(), &models.LoginRequest{
		Email:  "alice@example.edu",
		Secret: "wrong-secret-1",
	})
	require.Error(t, wrongSecretErr)

	_, unknownEmailErr := svc.Login(context.Background(), &models.LoginRequest{
		Email:  "nobody@example.edu",
		Secret: "longenough1",
	})
	require.Error(t, unknownEmailErr)

	// Both failure modes must be one indistinguishable error.
	assert.Equal(t, wrongSecretErr.Error(), unknownEmailErr.Error())
	assert.True(t, dErrors.HasCode(wrongSecretErr, dErrors.CodeUnauthorized))
	assert.True(t, dErrors.HasCode(unknownEmailErr, dErrors.CodeUnauthorized))
}

func TestProfile(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.RegisterIssuer(context.Background(), validIssuerRequest())
	require.NoError(t, err)

	identity, err := svc.Profile(context.Background(), res.Identity.Claims())
	require.NoError(t, err)
	assert.Equal(t, "University of Technology", identity.IssuerName)

	_, err = svc.Profile(context.Background(), domain.Claims{
		Email: "ghost@example.edu", Role: domain.RoleHolder, ScopeID: "x",
	})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestRegistrationEmitsAudit(t *testing.T) {
	identities := store.NewInMemory()
	tokens := jwttoken.New("unit-test-signing-key", "credgate", 24*time.Hour)
	sink := audit.NewInMemoryStore()
	svc := NewService(identities, tokens,
		WithAuditPublisher(audit.NewPublisher(sink)),
	)

	_, err := svc.RegisterHolder(context.Background(), validHolderRequest())
	require.NoError(t, err)

	events := sink.ListBySubject(context.Background(), "alice@example.edu")
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventHolderRegistered), events[0].Action)
}
