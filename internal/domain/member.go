package domain

import (
	"time"

	"github.com/google/uuid"
)

// Member is an authenticated user of the API. The auth middleware resolves
// the bearer token of each request to a Member before handlers run.
// Identity is the external (OAuth) identity string the member signed up with.
type Member struct {
	ID        uuid.UUID
	Name      string
	Identity  string
	CreatedAt time.Time
}
