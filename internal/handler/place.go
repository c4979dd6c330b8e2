package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jwoo-kim/tripplan/internal/domain"
)

// placeCreateRequest is the body of POST /plans/{planID}/places.
// The visit window is optional: both timestamps, or neither.
type placeCreateRequest struct {
	Name      string     `json:"name"`
	StartedAt *time.Time `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at"`
}

// AddPlace handles POST /plans/{planID}/places.
func (s *Server) AddPlace(w http.ResponseWriter, r *http.Request) {
	member, ok := s.member(w, r)
	if !ok {
		return
	}
	planID, err := planIDParam(r)
	if err != nil {
		respondBadRequest(w, "invalid plan id")
		return
	}

	var body placeCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondBadRequest(w, errBadBody.Error())
		return
	}
	if body.Name == "" {
		respondBadRequest(w, errMissingField("name").Error())
		return
	}

	place := domain.Place{
		Name:      body.Name,
		StartedAt: body.StartedAt,
		EndedAt:   body.EndedAt,
	}

	created, err := s.plans.AddPlace(r.Context(), planID, place, member)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// RemovePlace handles DELETE /plans/{planID}/places/{placeID}.
func (s *Server) RemovePlace(w http.ResponseWriter, r *http.Request) {
	member, ok := s.member(w, r)
	if !ok {
		return
	}
	planID, err := planIDParam(r)
	if err != nil {
		respondBadRequest(w, "invalid plan id")
		return
	}
	placeID, err := uuid.Parse(chi.URLParam(r, "placeID"))
	if err != nil {
		respondBadRequest(w, "invalid place id")
		return
	}

	if err := s.plans.RemovePlace(r.Context(), planID, placeID, member); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
