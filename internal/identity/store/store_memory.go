package store

import (
	"context"
	"fmt"
	"sync"

	"credgate/internal/identity/models"
	"credgate/pkg/platform/sentinel"
)

// InMemoryStore keeps identities in a mutex-guarded map keyed by normalized
// email. One map for both roles enforces the single email namespace.
type InMemoryStore struct {
	mu         sync.RWMutex
	identities map[string]*models.Identity
}

// NewInMemory constructs an empty in-memory identity store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{identities: make(map[string]*models.Identity)}
}

// Register inserts the identity iff its email is unused. The existence check
// and insert happen under one lock, so at most one concurrent caller wins.
func (s *InMemoryStore) Register(ctx context.Context, identity *models.Identity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.identities[identity.Email]; exists {
		return fmt.Errorf("identity already registered: %w", sentinel.ErrConflict)
	}
	s.identities[identity.Email] = identity
	return nil
}

func (s *InMemoryStore) FindByEmail(ctx context.Context, email string) (*models.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if identity, ok := s.identities[email]; ok {
		return identity, nil
	}
	return nil, fmt.Errorf("identity not found: %w", sentinel.ErrNotFound)
}

// Len reports the number of stored identities. Test helper.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.identities)
}
