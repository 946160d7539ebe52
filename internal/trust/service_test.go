package trust

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credgate/internal/ledger"
	"credgate/internal/platform/metrics"
	"credgate/pkg/domain"
	dErrors "credgate/pkg/domain-errors"
	"credgate/pkg/platform/sentinel"
)

// countingGateway wraps another gateway and counts every call that reaches
// the ledger, so tests can assert authorization short-circuits before I/O.
type countingGateway struct {
	inner ledger.Gateway
	calls atomic.Int64
}

func (g *countingGateway) GetCredential(ctx context.Context, id domain.CredentialID) (*ledger.CredentialRecord, error) {
	g.calls.Add(1)
	return g.inner.GetCredential(ctx, id)
}

func (g *countingGateway) GetCredentialsByHolder(ctx context.Context, holderID domain.HolderID) ([]ledger.CredentialSummary, error) {
	g.calls.Add(1)
	return g.inner.GetCredentialsByHolder(ctx, holderID)
}

func (g *countingGateway) GetCredentialsByIssuer(ctx context.Context, issuerID domain.IssuerID) ([]ledger.CredentialSummary, error) {
	g.calls.Add(1)
	return g.inner.GetCredentialsByIssuer(ctx, issuerID)
}

func (g *countingGateway) GetProvenance(ctx context.Context, id domain.CredentialID) (*ledger.ProvenanceTrace, error) {
	g.calls.Add(1)
	return g.inner.GetProvenance(ctx, id)
}

func (g *countingGateway) Attest(ctx context.Context, id domain.CredentialID) (*ledger.Attestation, error) {
	g.calls.Add(1)
	return g.inner.Attest(ctx, id)
}

// failingGateway reports infrastructure failure on every call.
type failingGateway struct{}

func (failingGateway) GetCredential(context.Context, domain.CredentialID) (*ledger.CredentialRecord, error) {
	return nil, sentinel.ErrUnavailable
}

func (failingGateway) GetCredentialsByHolder(context.Context, domain.HolderID) ([]ledger.CredentialSummary, error) {
	return nil, sentinel.ErrUnavailable
}

func (failingGateway) GetCredentialsByIssuer(context.Context, domain.IssuerID) ([]ledger.CredentialSummary, error) {
	return nil, sentinel.ErrUnavailable
}

func (failingGateway) GetProvenance(context.Context, domain.CredentialID) (*ledger.ProvenanceTrace, error) {
	return nil, sentinel.ErrUnavailable
}

func (failingGateway) Attest(context.Context, domain.CredentialID) (*ledger.Attestation, error) {
	return nil, sentinel.ErrUnavailable
}

const testOrigin = "https://creds.example.edu"

func holderClaims(scope string) domain.Claims {
	return domain.Claims{Email: "alice@example.edu", Role: domain.RoleHolder, ScopeID: scope}
}

func issuerClaims(scope string) domain.Claims {
	return domain.Claims{Email: "registrar@example.edu", Role: domain.RoleIssuer, ScopeID: scope}
}

// seededGateway returns a ledger with two holders and two issuers so
// scoping tests always have foreign records to not see.
func seededGateway(t *testing.T) *ledger.InMemoryClient {
	t.Helper()

	client := ledger.NewInMemoryClient(ledger.WithAttestClock(func() time.Time {
		return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	}))

	issued := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	client.Put(ledger.CredentialRecord{
		ID:       "cred-42",
		Title:    "BSc Computer Science",
		HolderID: "student-123",
		IssuerID: "university-456",
		IssuedAt: issued,
		Owner:    "student-123",
	}, &ledger.ProvenanceTrace{
		CredentialID: "cred-42",
		CreatedAt:    issued,
		CreatorID:    "university-456",
		Transactions: []ledger.Transaction{
			{TxID: "tx-1", Timestamp: issued, Action: ledger.TxCreate, BlockHeight: 100},
			{TxID: "tx-2", Timestamp: issued.Add(time.Hour), Action: ledger.TxAssign, Recipient: "student-123", BlockHeight: 101},
		},
		CurrentOwner: "student-123",
		Valid:        true,
	})
	client.Put(ledger.CredentialRecord{
		ID:       "cred-77",
		Title:    "MSc Mathematics",
		HolderID: "student-999",
		IssuerID: "university-456",
		IssuedAt: issued.AddDate(0, 1, 0),
		Owner:    "student-999",
	}, nil)
	client.Put(ledger.CredentialRecord{
		ID:       "cred-88",
		Title:    "PhD Physics",
		HolderID: "student-123",
		IssuerID: "college-789",
		IssuedAt: issued.AddDate(0, 2, 0),
		Owner:    "student-123",
	}, nil)
	return client
}

func TestHolderCredentials(t *testing.T) {
	t.Run("returns only the acting holder's records", func(t *testing.T) {
		svc := NewService(seededGateway(t), testOrigin)

		summaries, err := svc.HolderCredentials(context.Background(), holderClaims("student-123"))
		require.NoError(t, err)

		require.Len(t, summaries, 2)
		for _, s := range summaries {
			assert.Equal(t, domain.HolderID("student-123"), s.HolderID)
		}
	})

	t.Run("issuer token is forbidden before any ledger call", func(t *testing.T) {
		counting := &countingGateway{inner: seededGateway(t)}
		svc := NewService(counting, testOrigin)

		_, err := svc.HolderCredentials(context.Background(), issuerClaims("university-456"))

		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
		assert.Zero(t, counting.calls.Load())
	})

	t.Run("blank scope is rejected before any ledger call", func(t *testing.T) {
		counting := &countingGateway{inner: seededGateway(t)}
		svc := NewService(counting, testOrigin)

		_, err := svc.HolderCredentials(context.Background(), holderClaims(""))

		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		assert.Zero(t, counting.calls.Load())
	})

	t.Run("ledger outage surfaces as unavailable, not not found", func(t *testing.T) {
		svc := NewService(failingGateway{}, testOrigin)

		_, err := svc.HolderCredentials(context.Background(), holderClaims("student-123"))

		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
		assert.False(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestCredentialDetail(t *testing.T) {
	t.Run("returns the holder's own record", func(t *testing.T) {
		svc := NewService(seededGateway(t), testOrigin)

		record, err := svc.CredentialDetail(context.Background(), holderClaims("student-123"), "cred-42")
		require.NoError(t, err)

		assert.Equal(t, "BSc Computer Science", record.Title)
		assert.Equal(t, domain.IssuerID("university-456"), record.IssuerID)
	})

	t.Run("missing credential is not found", func(t *testing.T) {
		svc := NewService(seededGateway(t), testOrigin)

		_, err := svc.CredentialDetail(context.Background(), holderClaims("student-123"), "cred-missing")

		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("someone else's credential reads as not found", func(t *testing.T) {
		svc := NewService(seededGateway(t), testOrigin)

		_, err := svc.CredentialDetail(context.Background(), holderClaims("student-123"), "cred-77")

		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
		assert.False(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	t.Run("issuer token is forbidden with zero ledger calls", func(t *testing.T) {
		counting := &countingGateway{inner: seededGateway(t)}
		svc := NewService(counting, testOrigin)

		_, err := svc.CredentialDetail(context.Background(), issuerClaims("university-456"), "cred-42")

		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
		assert.Zero(t, counting.calls.Load())
	})
}

func TestIssuerCredentials(t *testing.T) {
	t.Run("returns only records issued by the acting issuer", func(t *testing.T) {
		svc := NewService(seededGateway(t), testOrigin)

		summaries, err := svc.IssuerCredentials(context.Background(), issuerClaims("university-456"))
		require.NoError(t, err)

		require.Len(t, summaries, 2)
		for _, s := range summaries {
			assert.Equal(t, domain.IssuerID("university-456"), s.IssuerID)
		}
	})

	t.Run("issuer with no records gets an empty list, not an error", func(t *testing.T) {
		svc := NewService(seededGateway(t), testOrigin)

		summaries, err := svc.IssuerCredentials(context.Background(), issuerClaims("university-000"))

		require.NoError(t, err)
		assert.Empty(t, summaries)
	})

	t.Run("holder token is forbidden before any ledger call", func(t *testing.T) {
		counting := &countingGateway{inner: seededGateway(t)}
		svc := NewService(counting, testOrigin)

		_, err := svc.IssuerCredentials(context.Background(), holderClaims("student-123"))

		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
		assert.Zero(t, counting.calls.Load())
	})

	t.Run("blank scope is rejected before any ledger call", func(t *testing.T) {
		counting := &countingGateway{inner: seededGateway(t)}
		svc := NewService(counting, testOrigin)

		_, err := svc.IssuerCredentials(context.Background(), issuerClaims(""))

		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		assert.Zero(t, counting.calls.Load())
	})
}

func TestProvenance(t *testing.T) {
	t.Run("preserves ledger transaction order", func(t *testing.T) {
		svc := NewService(seededGateway(t), testOrigin)

		trace, err := svc.Provenance(context.Background(), issuerClaims("university-456"), "cred-42")
		require.NoError(t, err)

		require.Len(t, trace.Transactions, 2)
		assert.Equal(t, "tx-1", trace.Transactions[0].TxID)
		assert.Equal(t, ledger.TxCreate, trace.Transactions[0].Action)
		assert.Equal(t, "tx-2", trace.Transactions[1].TxID)
		assert.Equal(t, ledger.TxAssign, trace.Transactions[1].Action)
		assert.Equal(t, domain.HolderID("student-123"), trace.CurrentOwner)
		assert.True(t, trace.Valid)
	})

	t.Run("unknown credential is not found", func(t *testing.T) {
		svc := NewService(seededGateway(t), testOrigin)

		_, err := svc.Provenance(context.Background(), issuerClaims("university-456"), "cred-missing")

		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("holder token is forbidden", func(t *testing.T) {
		counting := &countingGateway{inner: seededGateway(t)}
		svc := NewService(counting, testOrigin)

		_, err := svc.Provenance(context.Background(), holderClaims("student-123"), "cred-42")

		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
		assert.Zero(t, counting.calls.Load())
	})
}

func TestVerifyPublic(t *testing.T) {
	t.Run("returns record and populated attestation without authentication", func(t *testing.T) {
		svc := NewService(seededGateway(t), testOrigin)

		result, err := svc.VerifyPublic(context.Background(), "cred-42")
		require.NoError(t, err)

		assert.Equal(t, "BSc Computer Science", result.Record.Title)
		require.NotNil(t, result.Attestation)
		assert.True(t, result.Attestation.Valid)
		assert.NotEmpty(t, result.Attestation.BlockRef)
		assert.NotEmpty(t, result.Attestation.TxRef)
		assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), result.Attestation.CheckedAt)
	})

	t.Run("absent credential is not found with no partial data", func(t *testing.T) {
		svc := NewService(seededGateway(t), testOrigin)

		result, err := svc.VerifyPublic(context.Background(), "cred-missing")

		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
		assert.Nil(t, result)
	})

	t.Run("ledger outage is unavailable", func(t *testing.T) {
		svc := NewService(failingGateway{}, testOrigin)

		_, err := svc.VerifyPublic(context.Background(), "cred-42")

		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
	})
}

func TestLedgerLatencyObserved(t *testing.T) {
	m := metrics.New()
	svc := NewService(seededGateway(t), testOrigin, WithMetrics(m))

	_, err := svc.HolderCredentials(context.Background(), holderClaims("student-123"))
	require.NoError(t, err)
	_, err = svc.VerifyPublic(context.Background(), "cred-42")
	require.NoError(t, err)

	// credentials_by_holder from the listing, get_credential and attest
	// from the public verification.
	assert.Equal(t, 3, testutil.CollectAndCount(m.LedgerLatency))
}

func TestReference(t *testing.T) {
	svc := NewService(seededGateway(t), testOrigin)

	ref := svc.Reference("cred-42")

	assert.Equal(t, testOrigin+"/api/verify/cred-42", ref.URL)
	assert.Equal(t, svc.Reference("cred-42"), ref, "reference derivation is deterministic")
}
