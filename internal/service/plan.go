// Package service contains the business logic for the trip-planning API.
// Services validate inputs, enforce the membership policy, and orchestrate
// repo calls. No SQL lives here — services depend on repo interfaces, not
// implementations.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jwoo-kim/tripplan/internal/domain"
	"github.com/jwoo-kim/tripplan/internal/repo"
)

// CalendarClient is implemented by the external calendar integration.
// Finalizing a plan exports it as a calendar event through this interface.
type CalendarClient interface {
	CreateEvent(ctx context.Context, plan domain.Plan) error
}

// PlanService implements the business logic for plan operations.
// It holds all four repos because plan mutations touch destinations
// (reference lookups), members (caller resolution), and places
// (window resets cascading from plan-window changes).
type PlanService struct {
	plans        repo.PlanRepo
	places       repo.PlaceRepo
	destinations repo.DestinationRepo
	members      repo.MemberRepo
	calendar     CalendarClient
	log          *slog.Logger
}

// NewPlanService constructs a PlanService backed by the provided repos and
// calendar client.
func NewPlanService(
	plans repo.PlanRepo,
	places repo.PlaceRepo,
	destinations repo.DestinationRepo,
	members repo.MemberRepo,
	calendar CalendarClient,
	log *slog.Logger,
) *PlanService {
	return &PlanService{
		plans:        plans,
		places:       places,
		destinations: destinations,
		members:      members,
		calendar:     calendar,
		log:          log,
	}
}

// PlanInput carries the full field set of a plan create or full update.
// Partial updates build a PlanInput from the current plan plus the one
// changed field, so validation and the place-reset pass live in one place.
type PlanInput struct {
	DestinationID int64
	StartedAt     time.Time
	EndedAt       time.Time
	Vehicle       domain.Vehicle
}

// FinalizeResult reports the outcome of finalizing a plan. Finalization
// itself always succeeds for a member; CalendarSynced is false when the
// external calendar call failed and the event was not created.
type FinalizeResult struct {
	PlanID         uuid.UUID
	CalendarSynced bool
}

// ListDestinations returns all seeded destinations.
// Always returns a non-nil slice so callers can safely range over it.
func (s *PlanService) ListDestinations(ctx context.Context) ([]domain.Destination, error) {
	destinations, err := s.destinations.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.PlanService.ListDestinations: %w", err)
	}
	if destinations == nil {
		return []domain.Destination{}, nil
	}
	return destinations, nil
}

// Create validates and persists a new plan, attaching the requesting member
// as its first (and so far only) member.
// Returns domain.ErrNotFound if the destination does not exist and
// domain.ErrValidation if the dates or vehicle are invalid.
func (s *PlanService) Create(ctx context.Context, in PlanInput, member domain.Member) (domain.Plan, error) {
	destination, err := s.destinations.GetByID(ctx, in.DestinationID)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.Create: %w", err)
	}
	if err := validatePlanInput(in); err != nil {
		return domain.Plan{}, err
	}

	plan := domain.Plan{
		Destination: destination,
		StartedAt:   in.StartedAt,
		EndedAt:     in.EndedAt,
		Vehicle:     in.Vehicle,
	}

	created, err := s.plans.Create(ctx, plan, member.ID)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.Create: %w", err)
	}
	return created, nil
}

// Get returns a single plan with its places, membership-checked.
func (s *PlanService) Get(ctx context.Context, planID uuid.UUID, member domain.Member) (domain.Plan, error) {
	plan, err := s.loadAuthorized(ctx, planID, member.ID)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.Get: %w", err)
	}
	return plan, nil
}

// ListAll returns the page of all plans the member participates in.
// Membership filtering happens here, after the query: the repo returns the
// candidate set, the service keeps only plans the caller belongs to.
func (s *PlanService) ListAll(ctx context.Context, memberID uuid.UUID, page domain.PaginationParams) ([]domain.Plan, int, error) {
	plans, err := s.plans.ListAll(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("service.PlanService.ListAll: %w", err)
	}
	mine := filterByMember(plans, memberID)
	return page.Slice(mine), len(mine), nil
}

// ListByStartDate returns the member's plans ordered by start timestamp,
// strictly descending (latest start first).
func (s *PlanService) ListByStartDate(ctx context.Context, memberID uuid.UUID) ([]domain.Plan, error) {
	plans, err := s.plans.ListByStartDate(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.PlanService.ListByStartDate: %w", err)
	}
	return filterByMember(plans, memberID), nil
}

// ListByDestination returns the member's plans for one destination,
// latest start first.
func (s *PlanService) ListByDestination(ctx context.Context, memberID uuid.UUID, name domain.DestinationName) ([]domain.Plan, error) {
	if !name.Valid() {
		return nil, fmt.Errorf("%w: unknown destination %q", domain.ErrValidation, string(name))
	}
	plans, err := s.plans.ListByDestination(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("service.PlanService.ListByDestination: %w", err)
	}
	return filterByMember(plans, memberID), nil
}

// ListByDestinationAndDateRange returns the member's plans for one
// destination starting within [start, end], latest start first.
func (s *PlanService) ListByDestinationAndDateRange(ctx context.Context, memberID uuid.UUID, name domain.DestinationName, start, end time.Time) ([]domain.Plan, error) {
	if !name.Valid() {
		return nil, fmt.Errorf("%w: unknown destination %q", domain.ErrValidation, string(name))
	}
	plans, err := s.plans.ListByDestinationAndRange(ctx, name, start, end)
	if err != nil {
		return nil, fmt.Errorf("service.PlanService.ListByDestinationAndDateRange: %w", err)
	}
	return filterByMember(plans, memberID), nil
}

// Delete soft-deletes a plan, membership-checked. The plan row survives but
// disappears from every subsequent lookup.
func (s *PlanService) Delete(ctx context.Context, planID uuid.UUID, member domain.Member) error {
	if _, err := s.loadAuthorized(ctx, planID, member.ID); err != nil {
		return fmt.Errorf("service.PlanService.Delete: %w", err)
	}
	if err := s.plans.SoftDelete(ctx, planID); err != nil {
		return fmt.Errorf("service.PlanService.Delete: %w", err)
	}
	return nil
}

// Update applies a full-field update to a plan: new destination, new window,
// new vehicle. Dates are validated by calendar date only, as on create.
// Places whose windows fall outside the new plan window are reset.
func (s *PlanService) Update(ctx context.Context, planID uuid.UUID, in PlanInput, memberID uuid.UUID) (domain.Plan, error) {
	member, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.Update: %w", err)
	}
	plan, err := s.loadAuthorized(ctx, planID, member.ID)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.Update: %w", err)
	}

	destination, err := s.destinations.GetByID(ctx, in.DestinationID)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.Update: %w", err)
	}
	if err := validatePlanInput(in); err != nil {
		return domain.Plan{}, err
	}

	updated, err := s.applyUpdate(ctx, plan, destination, in.StartedAt, in.EndedAt, in.Vehicle)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.Update: %w", err)
	}
	return updated, nil
}

// UpdateDestination changes only the destination of a plan.
func (s *PlanService) UpdateDestination(ctx context.Context, planID uuid.UUID, newDestinationID int64, memberID uuid.UUID) (domain.Plan, error) {
	plan, err := s.loadForMemberID(ctx, planID, memberID)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.UpdateDestination: %w", err)
	}

	destination, err := s.destinations.GetByID(ctx, newDestinationID)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.UpdateDestination: %w", err)
	}

	updated, err := s.applyUpdate(ctx, plan, destination, plan.StartedAt, plan.EndedAt, plan.Vehicle)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.UpdateDestination: %w", err)
	}
	return updated, nil
}

// UpdateStartTime changes only the start of the plan window. Unlike create
// and full update, the check is strict on the full timestamps: the new start
// must be strictly before the current end.
func (s *PlanService) UpdateStartTime(ctx context.Context, planID uuid.UUID, newStart time.Time, memberID uuid.UUID) (domain.Plan, error) {
	plan, err := s.loadForMemberID(ctx, planID, memberID)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.UpdateStartTime: %w", err)
	}
	if err := validateStartEndTime(newStart, plan.EndedAt); err != nil {
		return domain.Plan{}, err
	}

	updated, err := s.applyUpdate(ctx, plan, plan.Destination, newStart, plan.EndedAt, plan.Vehicle)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.UpdateStartTime: %w", err)
	}
	return updated, nil
}

// UpdateEndTime changes only the end of the plan window, with the same
// strict ordering check as UpdateStartTime.
func (s *PlanService) UpdateEndTime(ctx context.Context, planID uuid.UUID, newEnd time.Time, memberID uuid.UUID) (domain.Plan, error) {
	plan, err := s.loadForMemberID(ctx, planID, memberID)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.UpdateEndTime: %w", err)
	}
	if err := validateStartEndTime(plan.StartedAt, newEnd); err != nil {
		return domain.Plan{}, err
	}

	updated, err := s.applyUpdate(ctx, plan, plan.Destination, plan.StartedAt, newEnd, plan.Vehicle)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.UpdateEndTime: %w", err)
	}
	return updated, nil
}

// UpdateVehicle changes only the vehicle of a plan.
func (s *PlanService) UpdateVehicle(ctx context.Context, planID uuid.UUID, newVehicle domain.Vehicle, memberID uuid.UUID) (domain.Plan, error) {
	plan, err := s.loadForMemberID(ctx, planID, memberID)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.UpdateVehicle: %w", err)
	}
	if !newVehicle.Valid() {
		return domain.Plan{}, fmt.Errorf("%w: unknown vehicle %q", domain.ErrValidation, string(newVehicle))
	}

	updated, err := s.applyUpdate(ctx, plan, plan.Destination, plan.StartedAt, plan.EndedAt, newVehicle)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("service.PlanService.UpdateVehicle: %w", err)
	}
	return updated, nil
}

// Finalize confirms a plan and exports it to the external calendar.
// A calendar failure does not fail the finalize: it is logged at warn level
// and reported through FinalizeResult.CalendarSynced so callers can still
// tell a fully successful finalize from a degraded one.
func (s *PlanService) Finalize(ctx context.Context, planID uuid.UUID, memberID uuid.UUID) (FinalizeResult, error) {
	plan, err := s.loadForMemberID(ctx, planID, memberID)
	if err != nil {
		return FinalizeResult{}, fmt.Errorf("service.PlanService.Finalize: %w", err)
	}

	result := FinalizeResult{PlanID: plan.ID, CalendarSynced: true}
	if err := s.calendar.CreateEvent(ctx, plan); err != nil {
		s.log.WarnContext(ctx, "calendar event creation failed",
			"plan_id", plan.ID,
			"error", err,
		)
		result.CalendarSynced = false
	}
	return result, nil
}

// AddPlace attaches a place to a plan, membership-checked. The place's visit
// window, when present, must lie fully inside the plan window.
func (s *PlanService) AddPlace(ctx context.Context, planID uuid.UUID, place domain.Place, member domain.Member) (domain.Place, error) {
	plan, err := s.loadAuthorized(ctx, planID, member.ID)
	if err != nil {
		return domain.Place{}, fmt.Errorf("service.PlanService.AddPlace: %w", err)
	}
	if err := validatePlace(place, plan); err != nil {
		return domain.Place{}, err
	}

	place.PlanID = plan.ID
	created, err := s.places.Create(ctx, place)
	if err != nil {
		return domain.Place{}, fmt.Errorf("service.PlanService.AddPlace: %w", err)
	}
	return created, nil
}

// RemovePlace deletes a place from a plan, membership-checked.
func (s *PlanService) RemovePlace(ctx context.Context, planID, placeID uuid.UUID, member domain.Member) error {
	if _, err := s.loadAuthorized(ctx, planID, member.ID); err != nil {
		return fmt.Errorf("service.PlanService.RemovePlace: %w", err)
	}
	if err := s.places.Delete(ctx, planID, placeID); err != nil {
		return fmt.Errorf("service.PlanService.RemovePlace: %w", err)
	}
	return nil
}

// --- internal helpers -------------------------------------------------------

// loadAuthorized loads a non-deleted plan and applies the membership policy:
// a caller who is not a plan member gets domain.ErrNotFound, deliberately
// indistinguishable from a missing plan.
func (s *PlanService) loadAuthorized(ctx context.Context, planID, memberID uuid.UUID) (domain.Plan, error) {
	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return domain.Plan{}, err
	}
	if !plan.HasMember(memberID) {
		return domain.Plan{}, fmt.Errorf("%w: plan", domain.ErrNotFound)
	}
	return plan, nil
}

// loadForMemberID resolves the member ID first, then loads the plan with the
// membership check. Used by the operations that receive a bare member ID.
func (s *PlanService) loadForMemberID(ctx context.Context, planID, memberID uuid.UUID) (domain.Plan, error) {
	member, err := s.members.GetByID(ctx, memberID)
	if err != nil {
		return domain.Plan{}, err
	}
	return s.loadAuthorized(ctx, planID, member.ID)
}

// applyUpdate is the single mutation path shared by the full update and all
// partial updates. It persists the complete field set, then resets every
// place whose visit window no longer fits the plan window.
func (s *PlanService) applyUpdate(ctx context.Context, plan domain.Plan, destination domain.Destination, start, end time.Time, vehicle domain.Vehicle) (domain.Plan, error) {
	plan.Destination = destination
	plan.StartedAt = start
	plan.EndedAt = end
	plan.Vehicle = vehicle

	updated, err := s.plans.Update(ctx, plan)
	if err != nil {
		return domain.Plan{}, err
	}
	if err := s.resetOutOfWindowPlaces(ctx, &updated); err != nil {
		return domain.Plan{}, err
	}
	return updated, nil
}

// resetOutOfWindowPlaces clears the visit window of every place that falls
// outside the plan's (possibly just-changed) window. Places fully contained
// in the window are untouched.
func (s *PlanService) resetOutOfWindowPlaces(ctx context.Context, plan *domain.Plan) error {
	for i, place := range plan.Places {
		if !place.OutsideWindow(plan.StartedAt, plan.EndedAt) {
			continue
		}
		if err := s.places.ClearWindow(ctx, place.ID); err != nil {
			return err
		}
		plan.Places[i].StartedAt = nil
		plan.Places[i].EndedAt = nil
	}
	return nil
}

// filterByMember keeps only plans the given member participates in.
// Always returns a non-nil slice so callers can safely range over it.
func filterByMember(plans []domain.Plan, memberID uuid.UUID) []domain.Plan {
	filtered := make([]domain.Plan, 0, len(plans))
	for _, p := range plans {
		if p.HasMember(memberID) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// validatePlanInput enforces the rules common to create and full update.
// The date check compares calendar dates only: a same-day window whose start
// clock time is after its end clock time is accepted here. The partial
// start/end updates use the stricter validateStartEndTime instead.
func validatePlanInput(in PlanInput) error {
	if !in.Vehicle.Valid() {
		return fmt.Errorf("%w: unknown vehicle %q", domain.ErrValidation, string(in.Vehicle))
	}
	if dateOf(in.StartedAt).After(dateOf(in.EndedAt)) {
		return fmt.Errorf("%w: started_at must not be after ended_at", domain.ErrValidation)
	}
	return nil
}

// validateStartEndTime enforces strict ordering on full timestamps:
// start must be strictly before end, equality included in the failure.
func validateStartEndTime(start, end time.Time) error {
	if !start.Before(end) {
		return fmt.Errorf("%w: start time must be before end time", domain.ErrValidation)
	}
	return nil
}

// validatePlace enforces the place rules for AddPlace.
func validatePlace(place domain.Place, plan domain.Plan) error {
	if place.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if (place.StartedAt == nil) != (place.EndedAt == nil) {
		return fmt.Errorf("%w: visit window requires both started_at and ended_at", domain.ErrValidation)
	}
	if place.Scheduled() {
		if err := validateStartEndTime(*place.StartedAt, *place.EndedAt); err != nil {
			return err
		}
		if !plan.ContainsWindow(*place.StartedAt, *place.EndedAt) {
			return fmt.Errorf("%w: visit window must lie within the plan window", domain.ErrValidation)
		}
	}
	return nil
}

// dateOf truncates a timestamp to its calendar date in its own location.
func dateOf(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
