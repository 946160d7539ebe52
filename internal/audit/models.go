package audit

import "time"

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp    time.Time
	Subject      string
	Role         string
	Action       string
	CredentialID string
	RequestID    string
}

type AuditEvent string

const (
	EventHolderRegistered   AuditEvent = "holder_registered"
	EventIssuerRegistered   AuditEvent = "issuer_registered"
	EventLoginSucceeded     AuditEvent = "login_succeeded"
	EventAuthFailed         AuditEvent = "auth_failed"
	EventCredentialAccessed AuditEvent = "credential_accessed"
	EventProvenanceTraced   AuditEvent = "provenance_traced"
	EventPublicVerification AuditEvent = "public_verification"
)
