// Package ledger defines the read-only boundary to the distributed ledger
// that owns credential records. The gateway is assumed to provide
// linearizable reads; this system never compensates for eventual
// consistency, never mutates ledger state, and never retries a gateway call
// itself. Retry and backoff policy belongs to gateway implementations.
package ledger

import (
	"context"
	"time"

	"credgate/pkg/domain"
)

// CredentialRecord is a ledger-owned academic credential. Read-only here.
type CredentialRecord struct {
	ID       domain.CredentialID `json:"id"`
	Title    string              `json:"title"`
	HolderID domain.HolderID     `json:"holder_id"`
	IssuerID domain.IssuerID     `json:"issuer_id"`
	IssuedAt time.Time           `json:"issue_date"`
	Metadata map[string]string   `json:"metadata,omitempty"`
	Owner    domain.HolderID     `json:"current_owner"`
}

// CredentialSummary is the list-view projection of a record.
type CredentialSummary struct {
	ID       domain.CredentialID `json:"id"`
	Title    string              `json:"title"`
	HolderID domain.HolderID     `json:"holder_id"`
	IssuerID domain.IssuerID     `json:"issuer_id"`
	IssuedAt time.Time           `json:"issue_date"`
}

// Summary projects a record into its list view.
func (r CredentialRecord) Summary() CredentialSummary {
	return CredentialSummary{
		ID:       r.ID,
		Title:    r.Title,
		HolderID: r.HolderID,
		IssuerID: r.IssuerID,
		IssuedAt: r.IssuedAt,
	}
}

// TxAction tags what a ledger transaction did to a credential.
type TxAction string

const (
	TxCreate TxAction = "CREATE"
	TxAssign TxAction = "ASSIGN"
)

// Transaction is one entry in a credential's ledger history.
type Transaction struct {
	TxID        string          `json:"tx_id"`
	Timestamp   time.Time       `json:"timestamp"`
	Action      TxAction        `json:"action"`
	Recipient   domain.HolderID `json:"recipient,omitempty"`
	BlockHeight uint64          `json:"block_height"`
}

// ProvenanceTrace is the full ordered transaction history of a credential.
// The transaction order is ledger append order and must be preserved exactly
// as the gateway returned it.
type ProvenanceTrace struct {
	CredentialID domain.CredentialID `json:"credential_id"`
	CreatedAt    time.Time           `json:"creation_date"`
	CreatorID    domain.IssuerID     `json:"creator"`
	Transactions []Transaction       `json:"transactions"`
	CurrentOwner domain.HolderID     `json:"current_owner"`
	Valid        bool                `json:"verified"`
}

// Attestation is a point-in-time validity check result. Computed fresh on
// every request; caching one would misrepresent ledger truth.
type Attestation struct {
	Valid     bool      `json:"is_valid"`
	CheckedAt time.Time `json:"timestamp"`
	BlockRef  string    `json:"block_hash"`
	TxRef     string    `json:"transaction_id"`
}

// Gateway is the read interface the trust pipeline depends on.
//
// Error Contract: lookups return sentinel.ErrNotFound (wrapped) when the
// credential does not exist; absence is a fact, not a failure. Any other
// error is infrastructure. List operations return ledger order untouched.
type Gateway interface {
	GetCredential(ctx context.Context, id domain.CredentialID) (*CredentialRecord, error)
	GetCredentialsByHolder(ctx context.Context, holderID domain.HolderID) ([]CredentialSummary, error)
	GetCredentialsByIssuer(ctx context.Context, issuerID domain.IssuerID) ([]CredentialSummary, error)
	GetProvenance(ctx context.Context, id domain.CredentialID) (*ProvenanceTrace, error)
	Attest(ctx context.Context, id domain.CredentialID) (*Attestation, error)
}
