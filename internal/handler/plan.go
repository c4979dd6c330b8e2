package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jwoo-kim/tripplan/internal/domain"
	"github.com/jwoo-kim/tripplan/internal/middleware"
	"github.com/jwoo-kim/tripplan/internal/service"
)

// planCreateRequest is the body of POST /plans and PUT /plans/{planID}.
// All four fields are required.
type planCreateRequest struct {
	DestinationID int64      `json:"destination_id"`
	StartedAt     *time.Time `json:"started_at"`
	EndedAt       *time.Time `json:"ended_at"`
	Vehicle       string     `json:"vehicle"`
}

// finalizeResponse is the body of POST /plans/{planID}/finalize.
// CalendarSynced is false when the external calendar event could not be
// created; the finalize itself still succeeded.
type finalizeResponse struct {
	PlanID         uuid.UUID `json:"plan_id"`
	CalendarSynced bool      `json:"calendar_synced"`
}

// planListResponse wraps unpaginated plan lists.
type planListResponse struct {
	Data []domain.Plan `json:"data"`
}

// pagedPlanListResponse wraps the paginated GET /plans/all result.
type pagedPlanListResponse struct {
	Data       []domain.Plan `json:"data"`
	Pagination pagination    `json:"pagination"`
}

type pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// ListDestinations handles GET /plans.
// The original route table exposes the destination catalogue here, not under
// its own /destinations prefix.
func (s *Server) ListDestinations(w http.ResponseWriter, r *http.Request) {
	destinations, err := s.plans.ListDestinations(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, destinations)
}

// CreatePlan handles POST /plans.
func (s *Server) CreatePlan(w http.ResponseWriter, r *http.Request) {
	member, ok := s.member(w, r)
	if !ok {
		return
	}

	in, err := decodePlanInput(r)
	if err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	created, err := s.plans.Create(r.Context(), in, member)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// GetPlan handles GET /plans/{planID}.
func (s *Server) GetPlan(w http.ResponseWriter, r *http.Request) {
	member, ok := s.member(w, r)
	if !ok {
		return
	}
	planID, err := planIDParam(r)
	if err != nil {
		respondBadRequest(w, "invalid plan id")
		return
	}

	plan, err := s.plans.Get(r.Context(), planID, member)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, plan)
}

// ListAllPlans handles GET /plans/all.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListAllPlans(w http.ResponseWriter, r *http.Request) {
	member, ok := s.member(w, r)
	if !ok {
		return
	}

	params := domain.NewPaginationParams(queryInt(r, "page"), queryInt(r, "limit"))
	plans, total, err := s.plans.ListAll(r.Context(), member.ID, params)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, pagedPlanListResponse{
		Data: plans,
		Pagination: pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// ListPlansByStartDate handles GET /plans/sorted.
func (s *Server) ListPlansByStartDate(w http.ResponseWriter, r *http.Request) {
	member, ok := s.member(w, r)
	if !ok {
		return
	}

	plans, err := s.plans.ListByStartDate(r.Context(), member.ID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, planListResponse{Data: plans})
}

// ListPlansByDestination handles GET /plans/sorted/{destinationName}.
func (s *Server) ListPlansByDestination(w http.ResponseWriter, r *http.Request) {
	member, ok := s.member(w, r)
	if !ok {
		return
	}
	name := domain.DestinationName(chi.URLParam(r, "destinationName"))

	plans, err := s.plans.ListByDestination(r.Context(), member.ID, name)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, planListResponse{Data: plans})
}

// ListPlansByDestinationAndRange handles GET /plans/sorted/{destinationName}/{start}/{end}.
func (s *Server) ListPlansByDestinationAndRange(w http.ResponseWriter, r *http.Request) {
	member, ok := s.member(w, r)
	if !ok {
		return
	}
	name := domain.DestinationName(chi.URLParam(r, "destinationName"))

	start, err := parseTimestamp(chi.URLParam(r, "start"))
	if err != nil {
		respondBadRequest(w, "invalid start timestamp")
		return
	}
	end, err := parseTimestamp(chi.URLParam(r, "end"))
	if err != nil {
		respondBadRequest(w, "invalid end timestamp")
		return
	}

	plans, err := s.plans.ListByDestinationAndDateRange(r.Context(), member.ID, name, start, end)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, planListResponse{Data: plans})
}

// DeletePlan handles DELETE /plans/{planID}.
func (s *Server) DeletePlan(w http.ResponseWriter, r *http.Request) {
	member, ok := s.member(w, r)
	if !ok {
		return
	}
	planID, err := planIDParam(r)
	if err != nil {
		respondBadRequest(w, "invalid plan id")
		return
	}

	if err := s.plans.Delete(r.Context(), planID, member); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdatePlan handles PUT /plans/{planID}.
func (s *Server) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	member, ok := s.member(w, r)
	if !ok {
		return
	}
	planID, err := planIDParam(r)
	if err != nil {
		respondBadRequest(w, "invalid plan id")
		return
	}

	in, err := decodePlanInput(r)
	if err != nil {
		respondBadRequest(w, err.Error())
		return
	}

	updated, err := s.plans.Update(r.Context(), planID, in, member.ID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// ChangeDestination handles PUT /plans/{planID}/destination.
func (s *Server) ChangeDestination(w http.ResponseWriter, r *http.Request) {
	member, ok := s.member(w, r)
	if !ok {
		return
	}
	planID, err := planIDParam(r)
	if err != nil {
		respondBadRequest(w, "invalid plan id")
		return
	}

	var body struct {
		DestinationID int64 `json:"destination_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.DestinationID == 0 {
		respondBadRequest(w, "destination_id is required")
		return
	}

	updated, err := s.plans.UpdateDestination(r.Context(), planID, body.DestinationID, member.ID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// ChangeStartTime handles PUT /plans/{planID}/start-time.
func (s *Server) ChangeStartTime(w http.ResponseWriter, r *http.Request) {
	member, ok := s.member(w, r)
	if !ok {
		return
	}
	planID, err := planIDParam(r)
	if err != nil {
		respondBadRequest(w, "invalid plan id")
		return
	}

	var body struct {
		StartTime *time.Time `json:"start_time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.StartTime == nil {
		respondBadRequest(w, "start_time is required")
		return
	}

	updated, err := s.plans.UpdateStartTime(r.Context(), planID, *body.StartTime, member.ID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// ChangeEndTime handles PUT /plans/{planID}/end-time.
func (s *Server) ChangeEndTime(w http.ResponseWriter, r *http.Request) {
	member, ok := s.member(w, r)
	if !ok {
		return
	}
	planID, err := planIDParam(r)
	if err != nil {
		respondBadRequest(w, "invalid plan id")
		return
	}

	var body struct {
		EndTime *time.Time `json:"end_time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.EndTime == nil {
		respondBadRequest(w, "end_time is required")
		return
	}

	updated, err := s.plans.UpdateEndTime(r.Context(), planID, *body.EndTime, member.ID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// ChangeVehicle handles PUT /plans/{planID}/vehicle.
func (s *Server) ChangeVehicle(w http.ResponseWriter, r *http.Request) {
	member, ok := s.member(w, r)
	if !ok {
		return
	}
	planID, err := planIDParam(r)
	if err != nil {
		respondBadRequest(w, "invalid plan id")
		return
	}

	var body struct {
		Vehicle string `json:"vehicle"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Vehicle == "" {
		respondBadRequest(w, "vehicle is required")
		return
	}

	updated, err := s.plans.UpdateVehicle(r.Context(), planID, domain.Vehicle(body.Vehicle), member.ID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// FinalizePlan handles POST /plans/{planID}/finalize.
func (s *Server) FinalizePlan(w http.ResponseWriter, r *http.Request) {
	member, ok := s.member(w, r)
	if !ok {
		return
	}
	planID, err := planIDParam(r)
	if err != nil {
		respondBadRequest(w, "invalid plan id")
		return
	}

	result, err := s.plans.Finalize(r.Context(), planID, member.ID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, finalizeResponse{
		PlanID:         result.PlanID,
		CalendarSynced: result.CalendarSynced,
	})
}

// --- mapping helpers --------------------------------------------------------

// member reads the authenticated member placed in context by the auth
// middleware. Writes a 401 and returns ok=false when it is missing, which
// only happens if a route was mounted outside the auth group by mistake.
func (s *Server) member(w http.ResponseWriter, r *http.Request) (domain.Member, bool) {
	member, ok := middleware.MemberFrom(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error: ErrorDetail{Code: "unauthorized", Message: "authentication required"},
		})
	}
	return member, ok
}

// decodePlanInput parses and checks the shared create/full-update body.
func decodePlanInput(r *http.Request) (service.PlanInput, error) {
	var body planCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return service.PlanInput{}, errBadBody
	}
	if body.DestinationID == 0 {
		return service.PlanInput{}, errMissingField("destination_id")
	}
	if body.StartedAt == nil {
		return service.PlanInput{}, errMissingField("started_at")
	}
	if body.EndedAt == nil {
		return service.PlanInput{}, errMissingField("ended_at")
	}
	if body.Vehicle == "" {
		return service.PlanInput{}, errMissingField("vehicle")
	}
	return service.PlanInput{
		DestinationID: body.DestinationID,
		StartedAt:     *body.StartedAt,
		EndedAt:       *body.EndedAt,
		Vehicle:       domain.Vehicle(body.Vehicle),
	}, nil
}

// planIDParam parses the {planID} path parameter.
func planIDParam(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "planID"))
}

// queryInt reads an optional integer query parameter, nil when absent or malformed.
func queryInt(r *http.Request, name string) *int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}

// timestampLayouts are the accepted path-segment timestamp formats: RFC 3339,
// and the zoneless form older clients send (interpreted as UTC).
var timestampLayouts = []string{time.RFC3339, "2006-01-02T15:04:05"}

// parseTimestamp parses a path-segment timestamp.
func parseTimestamp(raw string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
