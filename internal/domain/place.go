package domain

import (
	"time"

	"github.com/google/uuid"
)

// Place is a single point-in-itinerary visit belonging to exactly one plan.
// StartedAt and EndedAt form an optional visit window: both set, or both nil
// when the visit is not yet scheduled. The window is cleared whenever a
// change to the plan's own window leaves it outside.
type Place struct {
	ID        uuid.UUID  `json:"id"`
	PlanID    uuid.UUID  `json:"plan_id"`
	Name      string     `json:"name"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Scheduled reports whether the place has a visit window set.
func (p Place) Scheduled() bool {
	return p.StartedAt != nil && p.EndedAt != nil
}

// OutsideWindow reports whether the place's visit window falls outside the
// [planStart, planEnd] window. Unscheduled places are never outside.
func (p Place) OutsideWindow(planStart, planEnd time.Time) bool {
	if !p.Scheduled() {
		return false
	}
	return p.StartedAt.Before(planStart) || p.EndedAt.After(planEnd)
}
