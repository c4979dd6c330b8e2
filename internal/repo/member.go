package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/jwoo-kim/tripplan/internal/domain"
)

// MemberRepo defines the persistence operations for members.
// The auth middleware resolves bearer tokens through GetByToken; the service
// layer resolves member IDs through GetByID.
type MemberRepo interface {
	// Create inserts a new member with the given API token and returns the
	// persisted record. The token itself is never read back onto the struct.
	Create(ctx context.Context, member domain.Member, apiToken string) (domain.Member, error)

	// GetByID retrieves a member by primary key.
	// Returns domain.ErrNotFound if no member with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Member, error)

	// GetByToken retrieves a member by API token.
	// Returns domain.ErrNotFound if the token resolves to no member.
	GetByToken(ctx context.Context, apiToken string) (domain.Member, error)
}

// pgMemberRepo is the Postgres implementation of MemberRepo.
type pgMemberRepo struct {
	db db
}

// NewMemberRepo constructs a MemberRepo backed by the provided db connection.
func NewMemberRepo(db db) MemberRepo {
	return &pgMemberRepo{db: db}
}

// Create inserts a new member row and returns the full persisted record.
func (r *pgMemberRepo) Create(ctx context.Context, member domain.Member, apiToken string) (domain.Member, error) {
	const q = `
		INSERT INTO members (name, identity, api_token)
		VALUES (@name, @identity, @api_token)
		RETURNING id, name, identity, created_at`

	args := pgx.NamedArgs{
		"name":      member.Name,
		"identity":  member.Identity,
		"api_token": apiToken,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanMember(row)
	if err != nil {
		return domain.Member{}, fmt.Errorf("repo.MemberRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a member by primary key.
func (r *pgMemberRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Member, error) {
	const q = `
		SELECT id, name, identity, created_at
		FROM members
		WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanMember(row)
	if err != nil {
		return domain.Member{}, fmt.Errorf("repo.MemberRepo.GetByID: %w", err)
	}
	return result, nil
}

// GetByToken retrieves a member by API token.
func (r *pgMemberRepo) GetByToken(ctx context.Context, apiToken string) (domain.Member, error) {
	const q = `
		SELECT id, name, identity, created_at
		FROM members
		WHERE api_token = @api_token`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"api_token": apiToken})
	result, err := scanMember(row)
	if err != nil {
		return domain.Member{}, fmt.Errorf("repo.MemberRepo.GetByToken: %w", err)
	}
	return result, nil
}

// scanMember maps a single database row into a domain.Member.
func scanMember(s scanner) (domain.Member, error) {
	var (
		m  domain.Member
		id pgtype.UUID
	)

	err := s.Scan(&id, &m.Name, &m.Identity, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Member{}, domain.ErrNotFound
		}
		return domain.Member{}, err
	}

	m.ID = uuid.UUID(id.Bytes)
	return m, nil
}
