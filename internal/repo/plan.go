// Package repo contains all database access logic for the trip-planning API.
// Each aggregate has its own file with an interface and a Postgres implementation.
// No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/jwoo-kim/tripplan/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
//
// Begin is included because creating a plan inserts the plan row and its
// creator membership atomically. On a pgx.Tx, Begin opens a savepoint, so the
// rollback-isolation trick in tests keeps working.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PlanRepo defines the persistence operations for plans.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the service to be unit-tested with a mock.
//
// Every lookup carries the "deleted_at IS NULL" predicate: a soft-deleted
// plan is indistinguishable from an absent one at this layer.
type PlanRepo interface {
	// Create inserts a new plan together with its creator membership in one
	// transaction and returns the persisted record.
	Create(ctx context.Context, plan domain.Plan, creatorID uuid.UUID) (domain.Plan, error)

	// GetByID retrieves a single non-deleted plan by its UUID primary key,
	// with member IDs and places loaded.
	// Returns domain.ErrNotFound if no such plan exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Plan, error)

	// ListAll returns all non-deleted plans with member IDs loaded,
	// in creation order. Places are not loaded on list queries.
	ListAll(ctx context.Context) ([]domain.Plan, error)

	// ListByStartDate returns all non-deleted plans ordered by started_at
	// descending (latest start first).
	ListByStartDate(ctx context.Context) ([]domain.Plan, error)

	// ListByDestination returns non-deleted plans for the given destination
	// name, ordered by started_at descending.
	ListByDestination(ctx context.Context, name domain.DestinationName) ([]domain.Plan, error)

	// ListByDestinationAndRange returns non-deleted plans for the given
	// destination whose started_at lies in [start, end], ordered by
	// started_at descending.
	ListByDestinationAndRange(ctx context.Context, name domain.DestinationName, start, end time.Time) ([]domain.Plan, error)

	// Update overwrites the mutable fields (destination, window, vehicle) of
	// a non-deleted plan and returns the updated record with members and
	// places loaded. Returns domain.ErrNotFound if the plan is absent or deleted.
	Update(ctx context.Context, plan domain.Plan) (domain.Plan, error)

	// AddMember attaches a member to a plan. Adding an existing member is a no-op.
	AddMember(ctx context.Context, planID, memberID uuid.UUID) error

	// SoftDelete marks a plan as deleted. Returns domain.ErrNotFound if the
	// plan is absent or already deleted.
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

// pgPlanRepo is the Postgres implementation of PlanRepo.
type pgPlanRepo struct {
	db db
}

// NewPlanRepo constructs a PlanRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewPlanRepo(db db) PlanRepo {
	return &pgPlanRepo{db: db}
}

// planColumns is the SELECT list shared by every plan query. Member IDs are
// aggregated in invitation order so the creator always comes first.
const planColumns = `
	p.id, p.started_at, p.ended_at, p.vehicle, p.created_at, p.updated_at,
	d.id, d.name, d.created_at,
	(SELECT array_agg(pm.member_id::text ORDER BY pm.invited_at)
	   FROM plan_members pm WHERE pm.plan_id = p.id)`

// Create inserts the plan row and its creator membership in one transaction.
func (r *pgPlanRepo) Create(ctx context.Context, plan domain.Plan, creatorID uuid.UUID) (domain.Plan, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("repo.PlanRepo.Create: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	const insertPlan = `
		INSERT INTO plans (destination_id, started_at, ended_at, vehicle)
		VALUES (@destination_id, @started_at, @ended_at, @vehicle)
		RETURNING id`

	var id pgtype.UUID
	err = tx.QueryRow(ctx, insertPlan, pgx.NamedArgs{
		"destination_id": plan.Destination.ID,
		"started_at":     plan.StartedAt,
		"ended_at":       plan.EndedAt,
		"vehicle":        plan.Vehicle,
	}).Scan(&id)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("repo.PlanRepo.Create: insert plan: %w", err)
	}

	const insertMember = `
		INSERT INTO plan_members (plan_id, member_id)
		VALUES (@plan_id, @member_id)`

	_, err = tx.Exec(ctx, insertMember, pgx.NamedArgs{
		"plan_id":   uuid.UUID(id.Bytes),
		"member_id": creatorID,
	})
	if err != nil {
		return domain.Plan{}, fmt.Errorf("repo.PlanRepo.Create: insert membership: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Plan{}, fmt.Errorf("repo.PlanRepo.Create: commit: %w", err)
	}

	return r.GetByID(ctx, uuid.UUID(id.Bytes))
}

// GetByID retrieves a non-deleted plan with member IDs and places loaded.
func (r *pgPlanRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Plan, error) {
	q := `
		SELECT ` + planColumns + `
		FROM plans p
		JOIN destinations d ON d.id = p.destination_id
		WHERE p.id = @id AND p.deleted_at IS NULL`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	plan, err := scanPlan(row)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("repo.PlanRepo.GetByID: %w", err)
	}

	places, err := listPlacesByPlanID(ctx, r.db, plan.ID)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("repo.PlanRepo.GetByID: places: %w", err)
	}
	plan.Places = places

	return plan, nil
}

// ListAll returns all non-deleted plans in creation order.
func (r *pgPlanRepo) ListAll(ctx context.Context) ([]domain.Plan, error) {
	q := `
		SELECT ` + planColumns + `
		FROM plans p
		JOIN destinations d ON d.id = p.destination_id
		WHERE p.deleted_at IS NULL
		ORDER BY p.created_at`

	plans, err := r.queryPlans(ctx, q, nil)
	if err != nil {
		return nil, fmt.Errorf("repo.PlanRepo.ListAll: %w", err)
	}
	return plans, nil
}

// ListByStartDate returns all non-deleted plans, latest start first.
func (r *pgPlanRepo) ListByStartDate(ctx context.Context) ([]domain.Plan, error) {
	q := `
		SELECT ` + planColumns + `
		FROM plans p
		JOIN destinations d ON d.id = p.destination_id
		WHERE p.deleted_at IS NULL
		ORDER BY p.started_at DESC`

	plans, err := r.queryPlans(ctx, q, nil)
	if err != nil {
		return nil, fmt.Errorf("repo.PlanRepo.ListByStartDate: %w", err)
	}
	return plans, nil
}

// ListByDestination returns non-deleted plans for one destination, latest start first.
func (r *pgPlanRepo) ListByDestination(ctx context.Context, name domain.DestinationName) ([]domain.Plan, error) {
	q := `
		SELECT ` + planColumns + `
		FROM plans p
		JOIN destinations d ON d.id = p.destination_id
		WHERE p.deleted_at IS NULL AND d.name = @name
		ORDER BY p.started_at DESC`

	plans, err := r.queryPlans(ctx, q, pgx.NamedArgs{"name": name})
	if err != nil {
		return nil, fmt.Errorf("repo.PlanRepo.ListByDestination: %w", err)
	}
	return plans, nil
}

// ListByDestinationAndRange returns non-deleted plans for one destination
// starting within [start, end], latest start first.
func (r *pgPlanRepo) ListByDestinationAndRange(ctx context.Context, name domain.DestinationName, start, end time.Time) ([]domain.Plan, error) {
	q := `
		SELECT ` + planColumns + `
		FROM plans p
		JOIN destinations d ON d.id = p.destination_id
		WHERE p.deleted_at IS NULL
		AND   d.name = @name
		AND   p.started_at BETWEEN @range_start AND @range_end
		ORDER BY p.started_at DESC`

	plans, err := r.queryPlans(ctx, q, pgx.NamedArgs{
		"name":        name,
		"range_start": start,
		"range_end":   end,
	})
	if err != nil {
		return nil, fmt.Errorf("repo.PlanRepo.ListByDestinationAndRange: %w", err)
	}
	return plans, nil
}

// Update overwrites the mutable fields of a non-deleted plan.
func (r *pgPlanRepo) Update(ctx context.Context, plan domain.Plan) (domain.Plan, error) {
	const q = `
		UPDATE plans
		SET destination_id = @destination_id,
		    started_at     = @started_at,
		    ended_at       = @ended_at,
		    vehicle        = @vehicle,
		    updated_at     = now()
		WHERE id = @id AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{
		"id":             plan.ID,
		"destination_id": plan.Destination.ID,
		"started_at":     plan.StartedAt,
		"ended_at":       plan.EndedAt,
		"vehicle":        plan.Vehicle,
	})
	if err != nil {
		return domain.Plan{}, fmt.Errorf("repo.PlanRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Plan{}, fmt.Errorf("repo.PlanRepo.Update: %w", domain.ErrNotFound)
	}

	return r.GetByID(ctx, plan.ID)
}

// AddMember attaches a member to a plan, ignoring duplicates.
func (r *pgPlanRepo) AddMember(ctx context.Context, planID, memberID uuid.UUID) error {
	const q = `
		INSERT INTO plan_members (plan_id, member_id)
		VALUES (@plan_id, @member_id)
		ON CONFLICT (plan_id, member_id) DO NOTHING`

	_, err := r.db.Exec(ctx, q, pgx.NamedArgs{"plan_id": planID, "member_id": memberID})
	if err != nil {
		return fmt.Errorf("repo.PlanRepo.AddMember: %w", err)
	}
	return nil
}

// SoftDelete marks a plan as deleted. Already-deleted plans count as absent.
func (r *pgPlanRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	const q = `
		UPDATE plans
		SET deleted_at = now(), updated_at = now()
		WHERE id = @id AND deleted_at IS NULL`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.PlanRepo.SoftDelete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.PlanRepo.SoftDelete: %w", domain.ErrNotFound)
	}
	return nil
}

// queryPlans runs a multi-row plan query and scans all rows.
func (r *pgPlanRepo) queryPlans(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Plan, error) {
	var rows pgx.Rows
	var err error
	if args == nil {
		rows, err = r.db.Query(ctx, q)
	} else {
		rows, err = r.db.Query(ctx, q, args)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []domain.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return plans, nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan
// helpers to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanPlan maps a single database row (planColumns order) into a domain.Plan.
func scanPlan(s scanner) (domain.Plan, error) {
	var (
		p         domain.Plan
		id        pgtype.UUID
		memberIDs []string
	)

	err := s.Scan(
		&id, &p.StartedAt, &p.EndedAt, &p.Vehicle, &p.CreatedAt, &p.UpdatedAt,
		&p.Destination.ID, &p.Destination.Name, &p.Destination.CreatedAt,
		&memberIDs,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Plan{}, domain.ErrNotFound
		}
		return domain.Plan{}, err
	}

	p.ID = uuid.UUID(id.Bytes)
	p.MemberIDs = make([]uuid.UUID, 0, len(memberIDs))
	for _, raw := range memberIDs {
		mid, err := uuid.Parse(raw)
		if err != nil {
			return domain.Plan{}, fmt.Errorf("parse member id %q: %w", raw, err)
		}
		p.MemberIDs = append(p.MemberIDs, mid)
	}

	return p, nil
}
