// Package domain contains the core data types for the trip-planning API.
// This package has zero external dependencies and is imported by every other
// internal package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Vehicle is the means of transport for a plan.
type Vehicle string

// Vehicle values accepted by the API.
const (
	VehiclePublicTransportation Vehicle = "PUBLIC_TRANSPORTATION"
	VehicleOwnCar               Vehicle = "OWN_CAR"
)

// Valid reports whether v is one of the known vehicle values.
func (v Vehicle) Valid() bool {
	return v == VehiclePublicTransportation || v == VehicleOwnCar
}

// Plan represents a trip itinerary. A plan is the top-level aggregate;
// places belong to a plan, and members are attached through plan_members.
// A plan always has at least one member (its creator), and only members may
// read or mutate it.
type Plan struct {
	ID          uuid.UUID   `json:"id"`
	Destination Destination `json:"destination"`
	StartedAt   time.Time   `json:"started_at"`
	EndedAt     time.Time   `json:"ended_at"`
	Vehicle     Vehicle     `json:"vehicle"`
	DeletedAt   *time.Time  `json:"-"` // nil while the plan is active
	MemberIDs   []uuid.UUID `json:"member_ids"`
	Places      []Place     `json:"places,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// HasMember reports whether the given member is attached to the plan.
func (p Plan) HasMember(memberID uuid.UUID) bool {
	for _, id := range p.MemberIDs {
		if id == memberID {
			return true
		}
	}
	return false
}

// ContainsWindow reports whether the [start, end] visit window lies fully
// inside the plan's own window. Used both to validate new place windows and
// to decide which places must be reset after the plan window changes.
func (p Plan) ContainsWindow(start, end time.Time) bool {
	return !start.Before(p.StartedAt) && !end.After(p.EndedAt)
}

// PlanMember is the join entity linking one member to one plan.
// Membership is the access-control boundary: every read and mutation of a
// plan requires the caller to appear in plan_members.
type PlanMember struct {
	PlanID    uuid.UUID
	MemberID  uuid.UUID
	InvitedAt time.Time
}
