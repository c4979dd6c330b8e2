package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwoo-kim/tripplan/internal/domain"
	"github.com/jwoo-kim/tripplan/internal/handler"
	"github.com/jwoo-kim/tripplan/internal/middleware"
	"github.com/jwoo-kim/tripplan/internal/service"
)

// mockPlanServicer is a test double for handler.PlanServicer.
// Set only the method fields your test needs.
type mockPlanServicer struct {
	listDestinations func(ctx context.Context) ([]domain.Destination, error)
	create           func(ctx context.Context, in service.PlanInput, member domain.Member) (domain.Plan, error)
	get              func(ctx context.Context, planID uuid.UUID, member domain.Member) (domain.Plan, error)
	listAll          func(ctx context.Context, memberID uuid.UUID, page domain.PaginationParams) ([]domain.Plan, int, error)
	listByStartDate  func(ctx context.Context, memberID uuid.UUID) ([]domain.Plan, error)
	listByDest       func(ctx context.Context, memberID uuid.UUID, name domain.DestinationName) ([]domain.Plan, error)
	listByDestRange  func(ctx context.Context, memberID uuid.UUID, name domain.DestinationName, start, end time.Time) ([]domain.Plan, error)
	delete           func(ctx context.Context, planID uuid.UUID, member domain.Member) error
	update           func(ctx context.Context, planID uuid.UUID, in service.PlanInput, memberID uuid.UUID) (domain.Plan, error)
	updateDest       func(ctx context.Context, planID uuid.UUID, newDestinationID int64, memberID uuid.UUID) (domain.Plan, error)
	updateStartTime  func(ctx context.Context, planID uuid.UUID, newStart time.Time, memberID uuid.UUID) (domain.Plan, error)
	updateEndTime    func(ctx context.Context, planID uuid.UUID, newEnd time.Time, memberID uuid.UUID) (domain.Plan, error)
	updateVehicle    func(ctx context.Context, planID uuid.UUID, newVehicle domain.Vehicle, memberID uuid.UUID) (domain.Plan, error)
	finalize         func(ctx context.Context, planID uuid.UUID, memberID uuid.UUID) (service.FinalizeResult, error)
	addPlace         func(ctx context.Context, planID uuid.UUID, place domain.Place, member domain.Member) (domain.Place, error)
	removePlace      func(ctx context.Context, planID, placeID uuid.UUID, member domain.Member) error
}

func (m *mockPlanServicer) ListDestinations(ctx context.Context) ([]domain.Destination, error) {
	return m.listDestinations(ctx)
}
func (m *mockPlanServicer) Create(ctx context.Context, in service.PlanInput, member domain.Member) (domain.Plan, error) {
	return m.create(ctx, in, member)
}
func (m *mockPlanServicer) Get(ctx context.Context, planID uuid.UUID, member domain.Member) (domain.Plan, error) {
	return m.get(ctx, planID, member)
}
func (m *mockPlanServicer) ListAll(ctx context.Context, memberID uuid.UUID, page domain.PaginationParams) ([]domain.Plan, int, error) {
	return m.listAll(ctx, memberID, page)
}
func (m *mockPlanServicer) ListByStartDate(ctx context.Context, memberID uuid.UUID) ([]domain.Plan, error) {
	return m.listByStartDate(ctx, memberID)
}
func (m *mockPlanServicer) ListByDestination(ctx context.Context, memberID uuid.UUID, name domain.DestinationName) ([]domain.Plan, error) {
	return m.listByDest(ctx, memberID, name)
}
func (m *mockPlanServicer) ListByDestinationAndDateRange(ctx context.Context, memberID uuid.UUID, name domain.DestinationName, start, end time.Time) ([]domain.Plan, error) {
	return m.listByDestRange(ctx, memberID, name, start, end)
}
func (m *mockPlanServicer) Delete(ctx context.Context, planID uuid.UUID, member domain.Member) error {
	return m.delete(ctx, planID, member)
}
func (m *mockPlanServicer) Update(ctx context.Context, planID uuid.UUID, in service.PlanInput, memberID uuid.UUID) (domain.Plan, error) {
	return m.update(ctx, planID, in, memberID)
}
func (m *mockPlanServicer) UpdateDestination(ctx context.Context, planID uuid.UUID, newDestinationID int64, memberID uuid.UUID) (domain.Plan, error) {
	return m.updateDest(ctx, planID, newDestinationID, memberID)
}
func (m *mockPlanServicer) UpdateStartTime(ctx context.Context, planID uuid.UUID, newStart time.Time, memberID uuid.UUID) (domain.Plan, error) {
	return m.updateStartTime(ctx, planID, newStart, memberID)
}
func (m *mockPlanServicer) UpdateEndTime(ctx context.Context, planID uuid.UUID, newEnd time.Time, memberID uuid.UUID) (domain.Plan, error) {
	return m.updateEndTime(ctx, planID, newEnd, memberID)
}
func (m *mockPlanServicer) UpdateVehicle(ctx context.Context, planID uuid.UUID, newVehicle domain.Vehicle, memberID uuid.UUID) (domain.Plan, error) {
	return m.updateVehicle(ctx, planID, newVehicle, memberID)
}
func (m *mockPlanServicer) Finalize(ctx context.Context, planID uuid.UUID, memberID uuid.UUID) (service.FinalizeResult, error) {
	return m.finalize(ctx, planID, memberID)
}
func (m *mockPlanServicer) AddPlace(ctx context.Context, planID uuid.UUID, place domain.Place, member domain.Member) (domain.Place, error) {
	return m.addPlace(ctx, planID, place, member)
}
func (m *mockPlanServicer) RemovePlace(ctx context.Context, planID, placeID uuid.UUID, member domain.Member) error {
	return m.removePlace(ctx, planID, placeID, member)
}

// compile-time check: mockPlanServicer must satisfy handler.PlanServicer.
var _ handler.PlanServicer = (*mockPlanServicer)(nil)

// ---- helpers ---------------------------------------------------------------

var testMember = domain.Member{ID: uuid.New(), Name: "jiwoo", Identity: "oauth|jiwoo"}

// newHTTPHandler wires a Server with the given mock into a chi router behind
// a stub auth middleware that injects testMember, mirroring how main.go
// mounts Routes inside the authenticated group.
func newHTTPHandler(svc handler.PlanServicer) http.Handler {
	srv := handler.NewServer(svc)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithMember(req.Context(), testMember)))
		})
	})
	srv.Routes(r)
	return r
}

// newUnauthenticatedHandler mounts the routes without the auth stub, so
// handlers see no member in context.
func newUnauthenticatedHandler(svc handler.PlanServicer) http.Handler {
	srv := handler.NewServer(svc)
	r := chi.NewRouter()
	srv.Routes(r)
	return r
}

func planFixture() domain.Plan {
	return domain.Plan{
		ID: uuid.New(),
		Destination: domain.Destination{
			ID:   1,
			Name: domain.DestinationSeoul,
		},
		StartedAt: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		EndedAt:   time.Date(2024, 6, 3, 18, 0, 0, 0, time.UTC),
		Vehicle:   domain.VehicleOwnCar,
		MemberIDs: []uuid.UUID{testMember.ID},
		Places:    []domain.Place{},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

// ---- GET /plans ------------------------------------------------------------

func TestListDestinations_200(t *testing.T) {
	svc := &mockPlanServicer{
		listDestinations: func(_ context.Context) ([]domain.Destination, error) {
			return []domain.Destination{
				{ID: 1, Name: domain.DestinationSeoul},
				{ID: 2, Name: domain.DestinationBusan},
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/plans", nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp []domain.Destination
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp, 2)
	assert.Equal(t, domain.DestinationSeoul, resp[0].Name)
}

// ---- POST /plans -----------------------------------------------------------

func TestCreatePlan_201(t *testing.T) {
	fixture := planFixture()
	svc := &mockPlanServicer{
		create: func(_ context.Context, in service.PlanInput, member domain.Member) (domain.Plan, error) {
			assert.Equal(t, testMember.ID, member.ID)
			assert.Equal(t, int64(1), in.DestinationID)
			return fixture, nil
		},
	}

	body := jsonBody(t, map[string]any{
		"destination_id": 1,
		"started_at":     "2024-06-01T09:00:00Z",
		"ended_at":       "2024-06-03T18:00:00Z",
		"vehicle":        "OWN_CAR",
	})

	req := httptest.NewRequest(http.MethodPost, "/plans", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	newHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp domain.Plan
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, fixture.ID, resp.ID)
	assert.Equal(t, fixture.Vehicle, resp.Vehicle)
}

func TestCreatePlan_422_MissingField(t *testing.T) {
	svc := &mockPlanServicer{}

	body := jsonBody(t, map[string]any{
		"destination_id": 1,
		"started_at":     "2024-06-01T09:00:00Z",
		// ended_at missing
		"vehicle": "OWN_CAR",
	})

	req := httptest.NewRequest(http.MethodPost, "/plans", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	newHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "ended_at")
}

func TestCreatePlan_422_ValidationError(t *testing.T) {
	svc := &mockPlanServicer{
		create: func(_ context.Context, _ service.PlanInput, _ domain.Member) (domain.Plan, error) {
			return domain.Plan{}, fmt.Errorf("%w: started_at must not be after ended_at", domain.ErrValidation)
		},
	}

	body := jsonBody(t, map[string]any{
		"destination_id": 1,
		"started_at":     "2024-06-09T09:00:00Z",
		"ended_at":       "2024-06-03T18:00:00Z",
		"vehicle":        "OWN_CAR",
	})

	req := httptest.NewRequest(http.MethodPost, "/plans", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	newHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "validation_error", resp.Error.Code)
}

func TestCreatePlan_404_UnknownDestination(t *testing.T) {
	svc := &mockPlanServicer{
		create: func(_ context.Context, _ service.PlanInput, _ domain.Member) (domain.Plan, error) {
			return domain.Plan{}, domain.ErrNotFound
		},
	}

	body := jsonBody(t, map[string]any{
		"destination_id": 999,
		"started_at":     "2024-06-01T09:00:00Z",
		"ended_at":       "2024-06-03T18:00:00Z",
		"vehicle":        "OWN_CAR",
	})

	req := httptest.NewRequest(http.MethodPost, "/plans", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	newHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreatePlan_401_NoMemberInContext(t *testing.T) {
	svc := &mockPlanServicer{}

	body := jsonBody(t, map[string]any{
		"destination_id": 1,
		"started_at":     "2024-06-01T09:00:00Z",
		"ended_at":       "2024-06-03T18:00:00Z",
		"vehicle":        "OWN_CAR",
	})

	req := httptest.NewRequest(http.MethodPost, "/plans", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	newUnauthenticatedHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ---- GET /plans/{planID} ---------------------------------------------------

func TestGetPlan_200(t *testing.T) {
	fixture := planFixture()
	svc := &mockPlanServicer{
		get: func(_ context.Context, planID uuid.UUID, _ domain.Member) (domain.Plan, error) {
			assert.Equal(t, fixture.ID, planID)
			return fixture, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/plans/"+fixture.ID.String(), nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp domain.Plan
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, fixture.ID, resp.ID)
}

func TestGetPlan_404(t *testing.T) {
	svc := &mockPlanServicer{
		get: func(_ context.Context, _ uuid.UUID, _ domain.Member) (domain.Plan, error) {
			return domain.Plan{}, domain.ErrNotFound
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/plans/"+uuid.New().String(), nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "not_found", resp.Error.Code)
}

func TestGetPlan_422_BadID(t *testing.T) {
	svc := &mockPlanServicer{}

	req := httptest.NewRequest(http.MethodGet, "/plans/not-a-uuid", nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

// ---- GET /plans/all --------------------------------------------------------

func TestListAllPlans_200_Paginated(t *testing.T) {
	plans := []domain.Plan{planFixture(), planFixture()}
	svc := &mockPlanServicer{
		listAll: func(_ context.Context, memberID uuid.UUID, page domain.PaginationParams) ([]domain.Plan, int, error) {
			assert.Equal(t, testMember.ID, memberID)
			assert.Equal(t, 2, page.Page)
			assert.Equal(t, 10, page.Limit)
			return plans, 25, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/plans/all?page=2&limit=10", nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data       []domain.Plan `json:"data"`
		Pagination struct {
			Page  int `json:"page"`
			Limit int `json:"limit"`
			Total int `json:"total"`
		} `json:"pagination"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Data, 2)
	assert.Equal(t, 2, resp.Pagination.Page)
	assert.Equal(t, 10, resp.Pagination.Limit)
	assert.Equal(t, 25, resp.Pagination.Total)
}

func TestListAllPlans_200_Defaults(t *testing.T) {
	svc := &mockPlanServicer{
		listAll: func(_ context.Context, _ uuid.UUID, page domain.PaginationParams) ([]domain.Plan, int, error) {
			assert.Equal(t, 1, page.Page)
			assert.Equal(t, 20, page.Limit)
			return []domain.Plan{}, 0, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/plans/all", nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

// ---- GET /plans/sorted -----------------------------------------------------

func TestListPlansByStartDate_200(t *testing.T) {
	plans := []domain.Plan{planFixture(), planFixture()}
	svc := &mockPlanServicer{
		listByStartDate: func(_ context.Context, memberID uuid.UUID) ([]domain.Plan, error) {
			assert.Equal(t, testMember.ID, memberID)
			return plans, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/plans/sorted", nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []domain.Plan `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Data, 2)
}

func TestListPlansByStartDate_200_Empty(t *testing.T) {
	svc := &mockPlanServicer{
		listByStartDate: func(_ context.Context, _ uuid.UUID) ([]domain.Plan, error) {
			return []domain.Plan{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/plans/sorted", nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	// Must be a JSON array, not null.
	assert.Contains(t, rec.Body.String(), `"data":[]`)
}

// ---- GET /plans/sorted/{destinationName} -----------------------------------

func TestListPlansByDestination_200(t *testing.T) {
	svc := &mockPlanServicer{
		listByDest: func(_ context.Context, _ uuid.UUID, name domain.DestinationName) ([]domain.Plan, error) {
			assert.Equal(t, domain.DestinationBusan, name)
			return []domain.Plan{planFixture()}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/plans/sorted/BUSAN", nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListPlansByDestination_422_UnknownName(t *testing.T) {
	svc := &mockPlanServicer{
		listByDest: func(_ context.Context, _ uuid.UUID, name domain.DestinationName) ([]domain.Plan, error) {
			return nil, fmt.Errorf("%w: unknown destination %q", domain.ErrValidation, string(name))
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/plans/sorted/ATLANTIS", nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

// ---- GET /plans/sorted/{destinationName}/{start}/{end} ----------------------

func TestListPlansByDestinationAndRange_200(t *testing.T) {
	svc := &mockPlanServicer{
		listByDestRange: func(_ context.Context, _ uuid.UUID, name domain.DestinationName, start, end time.Time) ([]domain.Plan, error) {
			assert.Equal(t, domain.DestinationSeoul, name)
			assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), start)
			assert.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), end)
			return []domain.Plan{planFixture()}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/plans/sorted/SEOUL/2024-06-01T00:00:00/2024-06-30T00:00:00", nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListPlansByDestinationAndRange_422_BadTimestamp(t *testing.T) {
	svc := &mockPlanServicer{}

	req := httptest.NewRequest(http.MethodGet, "/plans/sorted/SEOUL/yesterday/tomorrow", nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

// ---- PUT /plans/{planID} ---------------------------------------------------

func TestUpdatePlan_200(t *testing.T) {
	fixture := planFixture()
	fixture.Vehicle = domain.VehiclePublicTransportation
	svc := &mockPlanServicer{
		update: func(_ context.Context, planID uuid.UUID, _ service.PlanInput, memberID uuid.UUID) (domain.Plan, error) {
			assert.Equal(t, fixture.ID, planID)
			assert.Equal(t, testMember.ID, memberID)
			return fixture, nil
		},
	}

	body := jsonBody(t, map[string]any{
		"destination_id": 2,
		"started_at":     "2024-06-01T09:00:00Z",
		"ended_at":       "2024-06-03T18:00:00Z",
		"vehicle":        "PUBLIC_TRANSPORTATION",
	})

	req := httptest.NewRequest(http.MethodPut, "/plans/"+fixture.ID.String(), body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	newHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp domain.Plan
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, domain.VehiclePublicTransportation, resp.Vehicle)
}

// ---- DELETE /plans/{planID} ------------------------------------------------

func TestDeletePlan_204(t *testing.T) {
	svc := &mockPlanServicer{
		delete: func(_ context.Context, _ uuid.UUID, _ domain.Member) error { return nil },
	}

	req := httptest.NewRequest(http.MethodDelete, "/plans/"+uuid.New().String(), nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestDeletePlan_404(t *testing.T) {
	svc := &mockPlanServicer{
		delete: func(_ context.Context, _ uuid.UUID, _ domain.Member) error { return domain.ErrNotFound },
	}

	req := httptest.NewRequest(http.MethodDelete, "/plans/"+uuid.New().String(), nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ---- PUT /plans/{planID}/start-time -----------------------------------------

func TestChangeStartTime_200(t *testing.T) {
	fixture := planFixture()
	newStart := time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC)
	svc := &mockPlanServicer{
		updateStartTime: func(_ context.Context, planID uuid.UUID, got time.Time, _ uuid.UUID) (domain.Plan, error) {
			assert.Equal(t, fixture.ID, planID)
			assert.True(t, got.Equal(newStart))
			return fixture, nil
		},
	}

	body := jsonBody(t, map[string]any{"start_time": "2024-06-02T09:00:00Z"})

	req := httptest.NewRequest(http.MethodPut, "/plans/"+fixture.ID.String()+"/start-time", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	newHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChangeStartTime_422_MissingField(t *testing.T) {
	svc := &mockPlanServicer{}

	body := jsonBody(t, map[string]any{})

	req := httptest.NewRequest(http.MethodPut, "/plans/"+uuid.New().String()+"/start-time", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	newHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "start_time")
}

func TestChangeStartTime_422_AfterEnd(t *testing.T) {
	svc := &mockPlanServicer{
		updateStartTime: func(_ context.Context, _ uuid.UUID, _ time.Time, _ uuid.UUID) (domain.Plan, error) {
			return domain.Plan{}, fmt.Errorf("%w: start time must be before end time", domain.ErrValidation)
		},
	}

	body := jsonBody(t, map[string]any{"start_time": "2024-07-01T00:00:00Z"})

	req := httptest.NewRequest(http.MethodPut, "/plans/"+uuid.New().String()+"/start-time", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	newHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

// ---- PUT /plans/{planID}/end-time -------------------------------------------

func TestChangeEndTime_200(t *testing.T) {
	fixture := planFixture()
	svc := &mockPlanServicer{
		updateEndTime: func(_ context.Context, _ uuid.UUID, _ time.Time, _ uuid.UUID) (domain.Plan, error) {
			return fixture, nil
		},
	}

	body := jsonBody(t, map[string]any{"end_time": "2024-06-05T18:00:00Z"})

	req := httptest.NewRequest(http.MethodPut, "/plans/"+fixture.ID.String()+"/end-time", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	newHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

// ---- PUT /plans/{planID}/vehicle --------------------------------------------

func TestChangeVehicle_200(t *testing.T) {
	fixture := planFixture()
	svc := &mockPlanServicer{
		updateVehicle: func(_ context.Context, _ uuid.UUID, newVehicle domain.Vehicle, _ uuid.UUID) (domain.Plan, error) {
			assert.Equal(t, domain.VehiclePublicTransportation, newVehicle)
			return fixture, nil
		},
	}

	body := jsonBody(t, map[string]any{"vehicle": "PUBLIC_TRANSPORTATION"})

	req := httptest.NewRequest(http.MethodPut, "/plans/"+fixture.ID.String()+"/vehicle", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	newHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

// ---- PUT /plans/{planID}/destination ----------------------------------------

func TestChangeDestination_200(t *testing.T) {
	fixture := planFixture()
	svc := &mockPlanServicer{
		updateDest: func(_ context.Context, _ uuid.UUID, newDestinationID int64, _ uuid.UUID) (domain.Plan, error) {
			assert.Equal(t, int64(2), newDestinationID)
			return fixture, nil
		},
	}

	body := jsonBody(t, map[string]any{"destination_id": 2})

	req := httptest.NewRequest(http.MethodPut, "/plans/"+fixture.ID.String()+"/destination", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	newHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

// ---- POST /plans/{planID}/finalize ------------------------------------------

func TestFinalizePlan_200_Synced(t *testing.T) {
	planID := uuid.New()
	svc := &mockPlanServicer{
		finalize: func(_ context.Context, gotID uuid.UUID, _ uuid.UUID) (service.FinalizeResult, error) {
			assert.Equal(t, planID, gotID)
			return service.FinalizeResult{PlanID: planID, CalendarSynced: true}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/plans/"+planID.String()+"/finalize", nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		PlanID         uuid.UUID `json:"plan_id"`
		CalendarSynced bool      `json:"calendar_synced"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, planID, resp.PlanID)
	assert.True(t, resp.CalendarSynced)
}

func TestFinalizePlan_200_CalendarDegraded(t *testing.T) {
	planID := uuid.New()
	svc := &mockPlanServicer{
		finalize: func(_ context.Context, _ uuid.UUID, _ uuid.UUID) (service.FinalizeResult, error) {
			return service.FinalizeResult{PlanID: planID, CalendarSynced: false}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/plans/"+planID.String()+"/finalize", nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc).ServeHTTP(rec, req)

	// A calendar failure degrades the response, it does not fail the request.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"calendar_synced":false`)
}

func TestFinalizePlan_404_NonMember(t *testing.T) {
	svc := &mockPlanServicer{
		finalize: func(_ context.Context, _ uuid.UUID, _ uuid.UUID) (service.FinalizeResult, error) {
			return service.FinalizeResult{}, domain.ErrNotFound
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/plans/"+uuid.New().String()+"/finalize", nil)
	rec := httptest.NewRecorder()

	newHTTPHandler(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
