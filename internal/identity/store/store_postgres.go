package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"credgate/internal/identity/models"
	"credgate/pkg/domain"
	"credgate/pkg/platform/sentinel"
)

// PostgresStore persists identities in PostgreSQL. A unique index on the
// normalized email column enforces the single-namespace invariant under
// concurrent registration.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed identity store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const insertIdentity = `
INSERT INTO identities (
	email, secret_hash, role, created_at, verified,
	holder_id, first_name, last_name, institution,
	issuer_id, issuer_name, contact_person
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

const selectIdentity = `
SELECT email, secret_hash, role, created_at, verified,
	holder_id, first_name, last_name, institution,
	issuer_id, issuer_name, contact_person
FROM identities WHERE email = $1`

func (s *PostgresStore) Register(ctx context.Context, identity *models.Identity) error {
	if identity == nil {
		return fmt.Errorf("identity is required")
	}

	_, err := s.db.ExecContext(ctx, insertIdentity,
		identity.Email,
		identity.SecretHash,
		string(identity.Role),
		identity.CreatedAt,
		identity.Verified,
		string(identity.HolderID),
		identity.FirstName,
		identity.LastName,
		identity.Institution,
		string(identity.IssuerID),
		identity.IssuerName,
		identity.ContactPerson,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("identity already registered: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("register identity: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*models.Identity, error) {
	row := s.db.QueryRowContext(ctx, selectIdentity, email)

	var (
		identity models.Identity
		role     string
		holderID string
		issuerID string
	)
	err := row.Scan(
		&identity.Email,
		&identity.SecretHash,
		&role,
		&identity.CreatedAt,
		&identity.Verified,
		&holderID,
		&identity.FirstName,
		&identity.LastName,
		&identity.Institution,
		&issuerID,
		&identity.IssuerName,
		&identity.ContactPerson,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("identity not found: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("find identity by email: %w", err)
	}

	identity.Role = domain.Role(role)
	identity.HolderID = domain.HolderID(holderID)
	identity.IssuerID = domain.IssuerID(issuerID)
	return &identity, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
