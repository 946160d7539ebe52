package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"credgate/pkg/domain"
	"credgate/pkg/platform/sentinel"
)

// InMemoryClient serves credential reads from a fixed in-process data set.
// Used for tests and for running the gateway without a chain network behind
// it. List results keep insertion order, mirroring ledger append order.
type InMemoryClient struct {
	mu          sync.RWMutex
	records     map[domain.CredentialID]*CredentialRecord
	provenance  map[domain.CredentialID]*ProvenanceTrace
	order       []domain.CredentialID
	attestClock func() time.Time
}

// InMemoryOption configures the InMemoryClient.
type InMemoryOption func(*InMemoryClient)

// WithAttestClock overrides the clock used to stamp attestations.
func WithAttestClock(clock func() time.Time) InMemoryOption {
	return func(c *InMemoryClient) {
		c.attestClock = clock
	}
}

// NewInMemoryClient constructs an empty in-memory ledger.
func NewInMemoryClient(opts ...InMemoryOption) *InMemoryClient {
	c := &InMemoryClient{
		records:     make(map[domain.CredentialID]*CredentialRecord),
		provenance:  make(map[domain.CredentialID]*ProvenanceTrace),
		attestClock: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Put seeds a credential record and, optionally, its provenance trace.
func (c *InMemoryClient) Put(record CredentialRecord, trace *ProvenanceTrace) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.records[record.ID]; !exists {
		c.order = append(c.order, record.ID)
	}
	c.records[record.ID] = &record
	if trace != nil {
		c.provenance[record.ID] = trace
	}
}

func (c *InMemoryClient) GetCredential(ctx context.Context, id domain.CredentialID) (*CredentialRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if record, ok := c.records[id]; ok {
		copied := *record
		return &copied, nil
	}
	return nil, fmt.Errorf("credential not on ledger: %w", sentinel.ErrNotFound)
}

func (c *InMemoryClient) GetCredentialsByHolder(ctx context.Context, holderID domain.HolderID) ([]CredentialSummary, error) {
	return c.list(ctx, func(r *CredentialRecord) bool { return r.HolderID == holderID })
}

func (c *InMemoryClient) GetCredentialsByIssuer(ctx context.Context, issuerID domain.IssuerID) ([]CredentialSummary, error) {
	return c.list(ctx, func(r *CredentialRecord) bool { return r.IssuerID == issuerID })
}

func (c *InMemoryClient) list(ctx context.Context, keep func(*CredentialRecord) bool) ([]CredentialSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	summaries := make([]CredentialSummary, 0)
	for _, id := range c.order {
		if record := c.records[id]; keep(record) {
			summaries = append(summaries, record.Summary())
		}
	}
	return summaries, nil
}

func (c *InMemoryClient) GetProvenance(ctx context.Context, id domain.CredentialID) (*ProvenanceTrace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if trace, ok := c.provenance[id]; ok {
		copied := *trace
		copied.Transactions = append([]Transaction{}, trace.Transactions...)
		return &copied, nil
	}
	return nil, fmt.Errorf("credential not on ledger: %w", sentinel.ErrNotFound)
}

// Attest recomputes the attestation on every call. Results are never cached
// upstream, so each verification reflects the ledger state at call time.
func (c *InMemoryClient) Attest(ctx context.Context, id domain.CredentialID) (*Attestation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	record, ok := c.records[id]
	if !ok {
		return nil, fmt.Errorf("credential not on ledger: %w", sentinel.ErrNotFound)
	}

	attestation := &Attestation{
		Valid:     true,
		CheckedAt: c.attestClock(),
		BlockRef:  fmt.Sprintf("block-%s", record.ID),
		TxRef:     fmt.Sprintf("tx-%s", record.ID),
	}
	if trace, ok := c.provenance[id]; ok {
		attestation.Valid = trace.Valid
		if n := len(trace.Transactions); n > 0 {
			attestation.TxRef = trace.Transactions[n-1].TxID
			attestation.BlockRef = fmt.Sprintf("block-%d", trace.Transactions[n-1].BlockHeight)
		}
	}
	return attestation, nil
}
