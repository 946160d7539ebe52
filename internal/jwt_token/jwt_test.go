package jwttoken

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credgate/pkg/domain"
	dErrors "credgate/pkg/domain-errors"
	"credgate/pkg/requestcontext"
)

const testSigningKey = "test-signing-key-1234567890"

func holderClaims() domain.Claims {
	return domain.Claims{
		Email:   "alice@example.edu",
		Role:    domain.RoleHolder,
		ScopeID: "student-123",
	}
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	svc := New(testSigningKey, "credgate", 24*time.Hour)

	token, err := svc.Issue(context.Background(), holderClaims())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.edu", claims.Email)
	assert.Equal(t, domain.RoleHolder, claims.Role)
	assert.Equal(t, "student-123", claims.ScopeID)
}

func TestVerifyExpiredToken(t *testing.T) {
	svc := New(testSigningKey, "credgate", 24*time.Hour)

	// Issue at a pinned instant, then verify after the 24h window elapsed.
	issuedAt := time.Now().Add(-25 * time.Hour)
	ctx := requestcontext.WithTime(context.Background(), issuedAt)

	token, err := svc.Issue(ctx, holderClaims())
	require.NoError(t, err)

	_, err = svc.Verify(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.EqualError(t, err, "invalid or expired token")
}

func TestVerifyTokenStillValidInsideWindow(t *testing.T) {
	svc := New(testSigningKey, "credgate", 24*time.Hour)

	issuedAt := time.Now().Add(-23 * time.Hour)
	ctx := requestcontext.WithTime(context.Background(), issuedAt)

	token, err := svc.Issue(ctx, holderClaims())
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.NoError(t, err)
}

func TestVerifyWrongKeyIndistinguishableFromExpiry(t *testing.T) {
	svc := New(testSigningKey, "credgate", 24*time.Hour)
	other := New("a-completely-different-key", "credgate", 24*time.Hour)

	token, err := other.Issue(context.Background(), holderClaims())
	require.NoError(t, err)

	_, sigErr := svc.Verify(token)
	require.Error(t, sigErr)

	expiredCtx := requestcontext.WithTime(context.Background(), time.Now().Add(-25*time.Hour))
	expiredToken, err := svc.Issue(expiredCtx, holderClaims())
	require.NoError(t, err)

	_, expErr := svc.Verify(expiredToken)
	require.Error(t, expErr)

	// Same public shape for both failure modes.
	assert.Equal(t, sigErr.Error(), expErr.Error())
	assert.True(t, dErrors.HasCode(sigErr, dErrors.CodeUnauthorized))
	assert.True(t, dErrors.HasCode(expErr, dErrors.CodeUnauthorized))
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc := New(testSigningKey, "credgate", 24*time.Hour)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		_, err := svc.Verify(token)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized), "token %q", token)
	}
}

func TestIssueRejectsIncompleteClaims(t *testing.T) {
	svc := New(testSigningKey, "credgate", 24*time.Hour)

	_, err := svc.Issue(context.Background(), domain.Claims{Email: "x@example.com", Role: "admin", ScopeID: "1"})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = svc.Issue(context.Background(), domain.Claims{Role: domain.RoleHolder})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestIssuerMismatchRejected(t *testing.T) {
	issuing := New(testSigningKey, "other-gateway", 24*time.Hour)
	verifying := New(testSigningKey, "credgate", 24*time.Hour)

	token, err := issuing.Issue(context.Background(), holderClaims())
	require.NoError(t, err)

	_, err = verifying.Verify(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
