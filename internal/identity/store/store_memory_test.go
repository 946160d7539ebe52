package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"credgate/internal/identity/models"
	"credgate/pkg/domain"
	"credgate/pkg/platform/sentinel"
)

func holderIdentity(email string) *models.Identity {
	return &models.Identity{
		Email:       email,
		SecretHash:  "$2a$10$fakehashfakehashfakehash",
		Role:        domain.RoleHolder,
		CreatedAt:   time.Now(),
		HolderID:    "student-123",
		FirstName:   "Jane",
		LastName:    "Doe",
		Institution: "University of Technology",
	}
}

func TestRegisterAndFind(t *testing.T) {
	s := NewInMemory()
	identity := holderIdentity("jane.doe@example.edu")

	require.NoError(t, s.Register(context.Background(), identity))

	found, err := s.FindByEmail(context.Background(), "jane.doe@example.edu")
	require.NoError(t, err)
	assert.Equal(t, identity, found)
}

func TestFindNotFound(t *testing.T) {
	s := NewInMemory()

	_, err := s.FindByEmail(context.Background(), "missing@example.edu")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := NewInMemory()

	require.NoError(t, s.Register(context.Background(), holderIdentity("dup@example.edu")))

	err := s.Register(context.Background(), holderIdentity("dup@example.edu"))
	assert.ErrorIs(t, err, sentinel.ErrConflict)
	assert.Equal(t, 1, s.Len())
}

func TestRegisterDuplicateAcrossRoles(t *testing.T) {
	s := NewInMemory()

	require.NoError(t, s.Register(context.Background(), holderIdentity("shared@example.edu")))

	issuer := &models.Identity{
		Email:      "shared@example.edu",
		SecretHash: "$2a$10$fakehashfakehashfakehash",
		Role:       domain.RoleIssuer,
		IssuerID:   "university-456",
		IssuerName: "University of Technology",
	}
	err := s.Register(context.Background(), issuer)
	assert.ErrorIs(t, err, sentinel.ErrConflict, "holder and issuer share one email namespace")
}

func TestRegisterConcurrentSameEmail(t *testing.T) {
	s := NewInMemory()

	const attempts = 32
	var g errgroup.Group
	results := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		i := i
		g.Go(func() error {
			results[i] = s.Register(context.Background(), holderIdentity("race@example.edu"))
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var successes int
	for _, err := range results {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, sentinel.ErrConflict)
		}
	}
	assert.Equal(t, 1, successes, "exactly one concurrent registration may win")
	assert.Equal(t, 1, s.Len())
}

func TestRegisterDistinctEmails(t *testing.T) {
	s := NewInMemory()

	for i := 0; i < 5; i++ {
		email := fmt.Sprintf("user%d@example.edu", i)
		require.NoError(t, s.Register(context.Background(), holderIdentity(email)))
	}
	assert.Equal(t, 5, s.Len())
}

func TestRegisterCancelledContext(t *testing.T) {
	s := NewInMemory()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Register(ctx, holderIdentity("late@example.edu"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, s.Len())
}
