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

// PlaceRepo defines the persistence operations for places.
// Places are always accessed through their parent plan, so mutating
// operations are scoped by planID.
type PlaceRepo interface {
	// Create inserts a new place and returns the persisted record.
	Create(ctx context.Context, place domain.Place) (domain.Place, error)

	// ListByPlanID returns all places of a plan ordered by creation time.
	ListByPlanID(ctx context.Context, planID uuid.UUID) ([]domain.Place, error)

	// ClearWindow resets a place's visit window to the unscheduled state.
	ClearWindow(ctx context.Context, placeID uuid.UUID) error

	// Delete removes a place by ID, scoped to the given plan.
	// Returns domain.ErrNotFound if no such place exists under that plan.
	Delete(ctx context.Context, planID, placeID uuid.UUID) error
}

// pgPlaceRepo is the Postgres implementation of PlaceRepo.
type pgPlaceRepo struct {
	db db
}

// NewPlaceRepo constructs a PlaceRepo backed by the provided db connection.
func NewPlaceRepo(db db) PlaceRepo {
	return &pgPlaceRepo{db: db}
}

// Create inserts a new place row and returns the full persisted record.
func (r *pgPlaceRepo) Create(ctx context.Context, place domain.Place) (domain.Place, error) {
	const q = `
		INSERT INTO places (plan_id, name, started_at, ended_at)
		VALUES (@plan_id, @name, @started_at, @ended_at)
		RETURNING id, plan_id, name, started_at, ended_at, created_at, updated_at`

	args := pgx.NamedArgs{
		"plan_id":    place.PlanID,
		"name":       place.Name,
		"started_at": place.StartedAt, // nil becomes NULL
		"ended_at":   place.EndedAt,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanPlace(row)
	if err != nil {
		return domain.Place{}, fmt.Errorf("repo.PlaceRepo.Create: %w", err)
	}
	return result, nil
}

// ListByPlanID returns all places of a plan ordered by creation time.
func (r *pgPlaceRepo) ListByPlanID(ctx context.Context, planID uuid.UUID) ([]domain.Place, error) {
	places, err := listPlacesByPlanID(ctx, r.db, planID)
	if err != nil {
		return nil, fmt.Errorf("repo.PlaceRepo.ListByPlanID: %w", err)
	}
	return places, nil
}

// ClearWindow nulls out the visit window of a place.
func (r *pgPlaceRepo) ClearWindow(ctx context.Context, placeID uuid.UUID) error {
	const q = `
		UPDATE places
		SET started_at = NULL, ended_at = NULL, updated_at = now()
		WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": placeID})
	if err != nil {
		return fmt.Errorf("repo.PlaceRepo.ClearWindow: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.PlaceRepo.ClearWindow: %w", domain.ErrNotFound)
	}
	return nil
}

// Delete removes a place by primary key, scoped to its plan.
func (r *pgPlaceRepo) Delete(ctx context.Context, planID, placeID uuid.UUID) error {
	const q = `DELETE FROM places WHERE id = @id AND plan_id = @plan_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": placeID, "plan_id": planID})
	if err != nil {
		return fmt.Errorf("repo.PlaceRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.PlaceRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// listPlacesByPlanID is shared between PlaceRepo.ListByPlanID and
// PlanRepo.GetByID (which loads places onto the plan detail).
func listPlacesByPlanID(ctx context.Context, db db, planID uuid.UUID) ([]domain.Place, error) {
	const q = `
		SELECT id, plan_id, name, started_at, ended_at, created_at, updated_at
		FROM places
		WHERE plan_id = @plan_id
		ORDER BY created_at`

	rows, err := db.Query(ctx, q, pgx.NamedArgs{"plan_id": planID})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var places []domain.Place
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		places = append(places, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return places, nil
}

// scanPlace maps a single database row into a domain.Place.
// It handles the UUID and nullable visit-window conversions.
func scanPlace(s scanner) (domain.Place, error) {
	var (
		p       domain.Place
		id      pgtype.UUID
		planID  pgtype.UUID
		started pgtype.Timestamptz
		ended   pgtype.Timestamptz
	)

	err := s.Scan(&id, &planID, &p.Name, &started, &ended, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Place{}, domain.ErrNotFound
		}
		return domain.Place{}, err
	}

	p.ID = uuid.UUID(id.Bytes)
	p.PlanID = uuid.UUID(planID.Bytes)
	if started.Valid {
		t := started.Time
		p.StartedAt = &t
	}
	if ended.Valid {
		t := ended.Time
		p.EndedAt = &t
	}

	return p, nil
}
