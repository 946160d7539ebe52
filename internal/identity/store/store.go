// Package store persists registered identities.
//
// Error Contract:
// All store methods follow this error pattern:
// - Register returns ErrConflict when the normalized email already exists
//   in either the holder or issuer namespace
// - FindByEmail returns ErrNotFound when no identity exists for the email
// - Infrastructure failures are returned wrapped with context
//
// The uniqueness invariant must hold under concurrent registration: the
// check and the insert are one atomic step, never check-then-insert.
package store

import (
	"context"

	"credgate/internal/identity/models"
)

// Store is the persistence contract for identities. Emails passed in must
// already be normalized; stores do not re-normalize.
type Store interface {
	Register(ctx context.Context, identity *models.Identity) error
	FindByEmail(ctx context.Context, email string) (*models.Identity, error)
}
