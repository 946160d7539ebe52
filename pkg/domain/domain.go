// Package domain provides type-safe identifiers and session claims shared
// across the gateway, so a holder ID can never be passed where an issuer or
// credential ID is expected.
package domain

import (
	"strings"

	dErrors "credgate/pkg/domain-errors"
)

// Role distinguishes the two authenticated principals.
type Role string

const (
	RoleHolder Role = "holder"
	RoleIssuer Role = "issuer"
)

// Valid reports whether the role is one of the known principals.
func (r Role) Valid() bool {
	return r == RoleHolder || r == RoleIssuer
}

func (r Role) String() string { return string(r) }

// Distinct ID types. Ledger identifiers are opaque strings assigned outside
// this system, so these are string-backed rather than UUID-backed.
type (
	HolderID     string
	IssuerID     string
	CredentialID string
)

func (id HolderID) String() string     { return string(id) }
func (id IssuerID) String() string     { return string(id) }
func (id CredentialID) String() string { return string(id) }

// Parse functions - use at trust boundaries (handlers, API inputs).

func ParseCredentialID(s string) (CredentialID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "credential ID cannot be empty")
	}
	return CredentialID(s), nil
}

func ParseHolderID(s string) (HolderID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "holder ID cannot be empty")
	}
	return HolderID(s), nil
}

func ParseIssuerID(s string) (IssuerID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "issuer ID cannot be empty")
	}
	return IssuerID(s), nil
}

// Claims is the decoded content of a session token: who the caller is, which
// role they authenticated as, and the ledger-visible scope that role maps to
// (holder ID for holders, issuer ID for issuers).
type Claims struct {
	Email   string
	Role    Role
	ScopeID string
}

// NormalizeEmail canonicalizes an email address for the single identity
// namespace. Uniqueness checks and lookups must always go through this.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
