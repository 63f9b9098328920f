package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/backpackor/planner/internal/domain"
	"github.com/backpackor/planner/internal/handler"
	"github.com/backpackor/planner/internal/service"
)

// Each mock is a test double for one handler interface.
// Set only the method fields your test needs.

type mockCatalog struct {
	listRegions func(ctx context.Context, prefix string) ([]domain.Region, error)
	list        func(ctx context.Context, f domain.PlaceFilter, p domain.PaginationParams) ([]domain.Place, int64, error)
	getByID     func(ctx context.Context, id string) (domain.Place, error)
}

func (m *mockCatalog) ListRegions(ctx context.Context, prefix string) ([]domain.Region, error) {
	return m.listRegions(ctx, prefix)
}
func (m *mockCatalog) List(ctx context.Context, f domain.PlaceFilter, p domain.PaginationParams) ([]domain.Place, int64, error) {
	return m.list(ctx, f, p)
}
func (m *mockCatalog) GetByID(ctx context.Context, id string) (domain.Place, error) {
	return m.getByID(ctx, id)
}

type mockGeneration struct {
	generate func(ctx context.Context, req domain.GenerationRequest) (domain.ProposedPlan, []byte, error)
}

func (m *mockGeneration) Generate(ctx context.Context, req domain.GenerationRequest) (domain.ProposedPlan, []byte, error) {
	return m.generate(ctx, req)
}

type mockTrips struct {
	load        func(ctx context.Context, id uuid.UUID) (domain.SavedTrip, error)
	listByOwner func(ctx context.Context, owner uuid.UUID, p domain.PaginationParams) ([]domain.TripHeader, int64, error)
	delete      func(ctx context.Context, id uuid.UUID) error
	export      func(ctx context.Context, id uuid.UUID) ([]domain.ItineraryRow, error)
}

func (m *mockTrips) Load(ctx context.Context, id uuid.UUID) (domain.SavedTrip, error) {
	return m.load(ctx, id)
}
func (m *mockTrips) ListByOwner(ctx context.Context, owner uuid.UUID, p domain.PaginationParams) ([]domain.TripHeader, int64, error) {
	return m.listByOwner(ctx, owner, p)
}
func (m *mockTrips) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockTrips) Export(ctx context.Context, id uuid.UUID) ([]domain.ItineraryRow, error) {
	return m.export(ctx, id)
}

type mockEditor struct {
	open         func(ctx context.Context, in service.OpenInput) (service.EditorSnapshot, error)
	get          func(ctx context.Context, id uuid.UUID) (service.EditorSnapshot, error)
	setDates     func(ctx context.Context, id uuid.UUID, start, end *time.Time) (service.EditorSnapshot, error)
	setTitle     func(ctx context.Context, id uuid.UUID, title string) (service.EditorSnapshot, error)
	setActiveDay func(ctx context.Context, id uuid.UUID, day int) (service.EditorSnapshot, error)
	addPlace     func(ctx context.Context, id uuid.UUID, placeID string, day int) (service.EditorSnapshot, bool, error)
	removePlace  func(ctx context.Context, id uuid.UUID, day int, placeID string) (service.EditorSnapshot, error)
	reorder      func(ctx context.Context, id uuid.UUID, day int, fromID, toID string) (service.EditorSnapshot, error)
	discard      func(ctx context.Context, id uuid.UUID) error
	save         func(ctx context.Context, id uuid.UUID) (domain.TripHeader, error)
}

func (m *mockEditor) Open(ctx context.Context, in service.OpenInput) (service.EditorSnapshot, error) {
	return m.open(ctx, in)
}
func (m *mockEditor) Get(ctx context.Context, id uuid.UUID) (service.EditorSnapshot, error) {
	return m.get(ctx, id)
}
func (m *mockEditor) SetDates(ctx context.Context, id uuid.UUID, start, end *time.Time) (service.EditorSnapshot, error) {
	return m.setDates(ctx, id, start, end)
}
func (m *mockEditor) SetTitle(ctx context.Context, id uuid.UUID, title string) (service.EditorSnapshot, error) {
	return m.setTitle(ctx, id, title)
}
func (m *mockEditor) SetActiveDay(ctx context.Context, id uuid.UUID, day int) (service.EditorSnapshot, error) {
	return m.setActiveDay(ctx, id, day)
}
func (m *mockEditor) AddPlace(ctx context.Context, id uuid.UUID, placeID string, day int) (service.EditorSnapshot, bool, error) {
	return m.addPlace(ctx, id, placeID, day)
}
func (m *mockEditor) RemovePlace(ctx context.Context, id uuid.UUID, day int, placeID string) (service.EditorSnapshot, error) {
	return m.removePlace(ctx, id, day, placeID)
}
func (m *mockEditor) Reorder(ctx context.Context, id uuid.UUID, day int, fromID, toID string) (service.EditorSnapshot, error) {
	return m.reorder(ctx, id, day, fromID, toID)
}
func (m *mockEditor) Discard(ctx context.Context, id uuid.UUID) error {
	return m.discard(ctx, id)
}
func (m *mockEditor) Save(ctx context.Context, id uuid.UUID) (domain.TripHeader, error) {
	return m.save(ctx, id)
}

// compile-time checks: the mocks must satisfy the handler interfaces.
var (
	_ handler.CatalogServicer    = (*mockCatalog)(nil)
	_ handler.GenerationServicer = (*mockGeneration)(nil)
	_ handler.TripServicer       = (*mockTrips)(nil)
	_ handler.EditorServicer     = (*mockEditor)(nil)
)

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler builds the router the same way main.go does, minus the
// cross-cutting middleware.
func newHTTPHandler(d handler.Deps) http.Handler {
	return handler.NewServer(d).Routes()
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }
