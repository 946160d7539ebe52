package models

import (
	"time"

	"credgate/pkg/domain"
)

// Identity is a registered principal. Holders and issuers share one email
// namespace, so both variants live in the same record discriminated by Role.
// Identities are created once at registration; only Verified ever changes.
type Identity struct {
	Email      string
	SecretHash string
	Role       domain.Role
	CreatedAt  time.Time
	Verified   bool

	// Holder fields (Role == RoleHolder).
	HolderID    domain.HolderID
	FirstName   string
	LastName    string
	Institution string

	// Issuer fields (Role == RoleIssuer).
	IssuerID      domain.IssuerID
	IssuerName    string
	ContactPerson string
}

// ScopeID returns the ledger-visible scope for this identity's role.
func (i *Identity) ScopeID() string {
	if i.Role == domain.RoleIssuer {
		return i.IssuerID.String()
	}
	return i.HolderID.String()
}

// Claims builds the session claims this identity authenticates as.
func (i *Identity) Claims() domain.Claims {
	return domain.Claims{
		Email:   i.Email,
		Role:    i.Role,
		ScopeID: i.ScopeID(),
	}
}
