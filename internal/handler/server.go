// Package handler implements the HTTP handlers for the trip-planning API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (plan.go, place.go, health.go) but all share the same Server struct
// so they can access its dependencies.
package handler

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jwoo-kim/tripplan/internal/domain"
	"github.com/jwoo-kim/tripplan/internal/service"
)

// PlanServicer defines the business operations the handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type PlanServicer interface {
	ListDestinations(ctx context.Context) ([]domain.Destination, error)
	Create(ctx context.Context, in service.PlanInput, member domain.Member) (domain.Plan, error)
	Get(ctx context.Context, planID uuid.UUID, member domain.Member) (domain.Plan, error)
	ListAll(ctx context.Context, memberID uuid.UUID, page domain.PaginationParams) ([]domain.Plan, int, error)
	ListByStartDate(ctx context.Context, memberID uuid.UUID) ([]domain.Plan, error)
	ListByDestination(ctx context.Context, memberID uuid.UUID, name domain.DestinationName) ([]domain.Plan, error)
	ListByDestinationAndDateRange(ctx context.Context, memberID uuid.UUID, name domain.DestinationName, start, end time.Time) ([]domain.Plan, error)
	Delete(ctx context.Context, planID uuid.UUID, member domain.Member) error
	Update(ctx context.Context, planID uuid.UUID, in service.PlanInput, memberID uuid.UUID) (domain.Plan, error)
	UpdateDestination(ctx context.Context, planID uuid.UUID, newDestinationID int64, memberID uuid.UUID) (domain.Plan, error)
	UpdateStartTime(ctx context.Context, planID uuid.UUID, newStart time.Time, memberID uuid.UUID) (domain.Plan, error)
	UpdateEndTime(ctx context.Context, planID uuid.UUID, newEnd time.Time, memberID uuid.UUID) (domain.Plan, error)
	UpdateVehicle(ctx context.Context, planID uuid.UUID, newVehicle domain.Vehicle, memberID uuid.UUID) (domain.Plan, error)
	Finalize(ctx context.Context, planID uuid.UUID, memberID uuid.UUID) (service.FinalizeResult, error)
	AddPlace(ctx context.Context, planID uuid.UUID, place domain.Place, member domain.Member) (domain.Place, error)
	RemovePlace(ctx context.Context, planID, placeID uuid.UUID, member domain.Member) error
}

// Server holds the dependencies shared by all HTTP handlers.
type Server struct {
	plans PlanServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(plans PlanServicer) *Server {
	return &Server{plans: plans}
}

// Routes registers the authenticated API surface on r. The auth middleware
// must already be applied: every handler here reads the member from context.
func (s *Server) Routes(r chi.Router) {
	r.Route("/plans", func(r chi.Router) {
		r.Get("/", s.ListDestinations)
		r.Post("/", s.CreatePlan)
		r.Get("/all", s.ListAllPlans)
		r.Get("/sorted", s.ListPlansByStartDate)
		r.Get("/sorted/{destinationName}", s.ListPlansByDestination)
		r.Get("/sorted/{destinationName}/{start}/{end}", s.ListPlansByDestinationAndRange)
		r.Get("/{planID}", s.GetPlan)
		r.Put("/{planID}", s.UpdatePlan)
		r.Delete("/{planID}", s.DeletePlan)
		r.Put("/{planID}/destination", s.ChangeDestination)
		r.Put("/{planID}/start-time", s.ChangeStartTime)
		r.Put("/{planID}/end-time", s.ChangeEndTime)
		r.Put("/{planID}/vehicle", s.ChangeVehicle)
		r.Post("/{planID}/finalize", s.FinalizePlan)
		r.Post("/{planID}/places", s.AddPlace)
		r.Delete("/{planID}/places/{placeID}", s.RemovePlace)
	})
}
