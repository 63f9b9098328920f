package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backpackor/planner/internal/domain"
	"github.com/backpackor/planner/internal/service"
)

// ---- helpers ---------------------------------------------------------------

func dates(start string, n int) (*time.Time, *time.Time) {
	s, _ := time.Parse(domain.DateLayout, start)
	e := s.AddDate(0, 0, n-1)
	return &s, &e
}

func newEditor(t *testing.T, trips *mockTripStore) *service.EditorService {
	t.Helper()
	lat, lng := 35.1, 129.0
	places := &mockPlaceRepo{
		listByRegions: func(context.Context, []string) ([]domain.Place, error) {
			return []domain.Place{
				{ID: "id-Haeundae", Name: "Haeundae", Latitude: &lat, Longitude: &lng},
				{ID: "id-Gamcheon", Name: "Gamcheon"},
				{ID: "id-Taejongdae", Name: "Taejongdae"},
			}, nil
		},
		getByID: func(_ context.Context, id string) (domain.Place, error) {
			if id == "id-Seoraksan" {
				return domain.Place{ID: id, Name: "Seoraksan", Latitude: &lat, Longitude: &lng}, nil
			}
			return domain.Place{}, domain.ErrNotFound
		},
	}
	if trips == nil {
		trips = &mockTripStore{}
	}
	return service.NewEditorService(service.NewCatalogService(places, &mockRegionRepo{}), trips, time.Hour, discardLogger())
}

func openEmpty(t *testing.T, svc *service.EditorService, days int) service.EditorSnapshot {
	t.Helper()
	start, end := dates("2025-06-01", days)
	snap, err := svc.Open(context.Background(), service.OpenInput{Start: start, End: end, Regions: []string{"Busan"}})
	require.NoError(t, err)
	return snap
}

func dayIDs(snap service.EditorSnapshot, day int) []string {
	var ids []string
	for _, a := range snap.State.Plan.Day(day) {
		ids = append(ids, a.Place.ID)
	}
	return ids
}

// ---- Open ------------------------------------------------------------------

func TestEditorService_Open_Empty(t *testing.T) {
	svc := newEditor(t, nil)

	snap := openEmpty(t, svc, 3)

	assert.Equal(t, domain.HydrationEmpty, snap.State.Source)
	assert.Len(t, snap.State.Days, 3)
	assert.Equal(t, 3, snap.State.Plan.Days())
	assert.Equal(t, 1, snap.State.ActiveDay)
	assert.Equal(t, uuid.Nil, snap.TripID)
	assert.Equal(t, 1, svc.Len())
}

func TestEditorService_Open_FromAIPlan(t *testing.T) {
	svc := newEditor(t, nil)
	start, end := dates("2025-06-01", 2)

	snap, err := svc.Open(context.Background(), service.OpenInput{
		Start: start, End: end, Regions: []string{"Busan"},
		AIPlan: []byte(`{"title":"Busan Days","plan":{"1":[{"place_name":"Haeundae"},{"place_name":"Nowhere"}],"2":[{"place_name":"Gamcheon"}]}}`),
	})

	require.NoError(t, err)
	assert.Equal(t, domain.HydrationFromAIPlan, snap.State.Source)
	assert.Equal(t, "Busan Days", snap.State.Title)
	assert.Equal(t, []string{"id-Haeundae"}, dayIDs(snap, 1))
	assert.Equal(t, []string{"id-Gamcheon"}, dayIDs(snap, 2))
	assert.Equal(t, []string{"Nowhere"}, snap.Dropped)
}

func TestEditorService_Open_MalformedAIPlanFallsBackToEmpty(t *testing.T) {
	svc := newEditor(t, nil)
	start, end := dates("2025-06-01", 2)

	snap, err := svc.Open(context.Background(), service.OpenInput{
		Start: start, End: end, Regions: []string{"Busan"}, AIPlan: []byte("not json"),
	})

	require.NoError(t, err)
	assert.Equal(t, domain.HydrationEmpty, snap.State.Source)
	assert.Zero(t, snap.State.Plan.Len())
}

func TestEditorService_Open_FromSavedTrip(t *testing.T) {
	tripID := uuid.New()
	owner := uuid.New()
	trips := &mockTripStore{
		load: func(context.Context, uuid.UUID) (domain.SavedTrip, error) {
			return domain.SavedTrip{
				Header: domain.TripHeader{
					ID: tripID, OwnerID: owner, Title: "Saved",
					StartDate: time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
					EndDate:   time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC),
				},
				Days: map[int][]domain.TripDetail{
					2: {{PlaceID: "id-Gamcheon", DayNumber: 2, VisitOrder: 1, Place: domain.Place{ID: "id-Gamcheon"}}},
				},
			}, nil
		},
	}
	svc := newEditor(t, trips)

	snap, err := svc.Open(context.Background(), service.OpenInput{TripID: &tripID})

	require.NoError(t, err)
	assert.Equal(t, domain.HydrationFromPersistedTrip, snap.State.Source)
	assert.Equal(t, tripID, snap.TripID)
	assert.Equal(t, owner, snap.OwnerID)
	assert.Equal(t, "Saved", snap.State.Title)
	assert.Len(t, snap.State.Days, 2)
	assert.Equal(t, []string{"id-Gamcheon"}, dayIDs(snap, 2))
}

func TestEditorService_Open_MissingTrip(t *testing.T) {
	trips := &mockTripStore{
		load: func(context.Context, uuid.UUID) (domain.SavedTrip, error) { return domain.SavedTrip{}, domain.ErrNotFound },
	}
	svc := newEditor(t, trips)
	id := uuid.New()

	_, err := svc.Open(context.Background(), service.OpenInput{TripID: &id})

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, svc.Len())
}

func TestEditorService_Open_ReversedDates(t *testing.T) {
	svc := newEditor(t, nil)
	start, end := dates("2025-06-01", 3)

	_, err := svc.Open(context.Background(), service.OpenInput{Start: end, End: start})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ---- editing ---------------------------------------------------------------

func TestEditorService_AddRemoveReorder(t *testing.T) {
	svc := newEditor(t, nil)
	ctx := context.Background()
	id := openEmpty(t, svc, 2).ID

	for _, p := range []string{"id-Haeundae", "id-Gamcheon", "id-Taejongdae"} {
		_, added, err := svc.AddPlace(ctx, id, p, 0)
		require.NoError(t, err)
		assert.True(t, added)
	}

	_, added, err := svc.AddPlace(ctx, id, "id-Gamcheon", 2)
	require.NoError(t, err)
	assert.False(t, added, "a planned place is not added twice")

	snap, err := svc.Reorder(ctx, id, 1, "id-Taejongdae", "id-Haeundae")
	require.NoError(t, err)
	assert.Equal(t, []string{"id-Taejongdae", "id-Haeundae", "id-Gamcheon"}, dayIDs(snap, 1))

	snap, err = svc.RemovePlace(ctx, id, 1, "id-Haeundae")
	require.NoError(t, err)
	assert.Equal(t, []string{"id-Taejongdae", "id-Gamcheon"}, dayIDs(snap, 1))
	for i, a := range snap.State.Plan.Day(1) {
		assert.Equal(t, i+1, a.VisitOrder)
	}
}

func TestEditorService_AddPlace_OutsideSessionCatalog(t *testing.T) {
	svc := newEditor(t, nil)
	id := openEmpty(t, svc, 1).ID

	snap, added, err := svc.AddPlace(context.Background(), id, "id-Seoraksan", 1)

	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, []string{"id-Seoraksan"}, dayIDs(snap, 1))
}

func TestEditorService_AddPlace_UnknownPlace(t *testing.T) {
	svc := newEditor(t, nil)
	id := openEmpty(t, svc, 1).ID

	_, _, err := svc.AddPlace(context.Background(), id, "id-missing", 1)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEditorService_AddPlace_ActiveDay(t *testing.T) {
	svc := newEditor(t, nil)
	ctx := context.Background()
	id := openEmpty(t, svc, 3).ID

	_, err := svc.SetActiveDay(ctx, id, 3)
	require.NoError(t, err)
	snap, _, err := svc.AddPlace(ctx, id, "id-Gamcheon", 0)

	require.NoError(t, err)
	assert.Equal(t, []string{"id-Gamcheon"}, dayIDs(snap, 3))
}

func TestEditorService_SetDates_Prunes(t *testing.T) {
	svc := newEditor(t, nil)
	ctx := context.Background()
	id := openEmpty(t, svc, 3).ID

	_, _, err := svc.AddPlace(ctx, id, "id-Haeundae", 1)
	require.NoError(t, err)
	_, _, err = svc.AddPlace(ctx, id, "id-Gamcheon", 3)
	require.NoError(t, err)
	_, err = svc.SetActiveDay(ctx, id, 3)
	require.NoError(t, err)

	start, end := dates("2025-06-01", 2)
	snap, err := svc.SetDates(ctx, id, start, end)

	require.NoError(t, err)
	assert.Equal(t, 2, snap.State.Plan.Days())
	assert.Equal(t, []string{"id-Haeundae"}, dayIDs(snap, 1))
	assert.Zero(t, snap.State.Plan.Locate("id-Gamcheon"))
	assert.Equal(t, 1, snap.State.ActiveDay)
}

func TestEditorService_SetDates_IncompleteRangeKeepsPlan(t *testing.T) {
	svc := newEditor(t, nil)
	ctx := context.Background()
	id := openEmpty(t, svc, 3).ID

	_, _, err := svc.AddPlace(ctx, id, "id-Haeundae", 2)
	require.NoError(t, err)

	start, _ := dates("2025-06-01", 3)
	snap, err := svc.SetDates(ctx, id, start, nil)

	require.NoError(t, err)
	assert.Len(t, snap.State.Days, 3)
	assert.Equal(t, []string{"id-Haeundae"}, dayIDs(snap, 2))
}

func TestEditorService_SetDates_TooLong(t *testing.T) {
	svc := newEditor(t, nil)
	id := openEmpty(t, svc, 3).ID

	start, end := dates("2025-06-01", domain.MaxTripDays+1)
	_, err := svc.SetDates(context.Background(), id, start, end)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestEditorService_UnknownSession(t *testing.T) {
	svc := newEditor(t, nil)

	_, err := svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = svc.Discard(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- Save ------------------------------------------------------------------

func TestEditorService_Save_CreateThenUpdate(t *testing.T) {
	tripID := uuid.New()
	var inputs []service.SaveInput
	trips := &mockTripStore{
		save: func(_ context.Context, in service.SaveInput) (domain.TripHeader, error) {
			inputs = append(inputs, in)
			h := in.Header
			h.ID = tripID
			return h, nil
		},
	}
	svc := newEditor(t, trips)
	ctx := context.Background()
	id := openEmpty(t, svc, 2).ID

	_, err := svc.SetTitle(ctx, id, "Weekend")
	require.NoError(t, err)
	_, _, err = svc.AddPlace(ctx, id, "id-Haeundae", 2)
	require.NoError(t, err)

	h, err := svc.Save(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, tripID, h.ID)

	_, err = svc.Save(ctx, id)
	require.NoError(t, err)

	require.Len(t, inputs, 2)
	assert.False(t, inputs[0].IsUpdate)
	assert.True(t, inputs[1].IsUpdate)
	assert.Equal(t, tripID, inputs[1].Header.ID)
	assert.Equal(t, "2025-06-02", inputs[0].Header.EndDate.Format(domain.DateLayout))
	assert.Equal(t, 1, inputs[0].Plan.Len())

	snap, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, tripID, snap.TripID)
}

func TestEditorService_Save_BlankTitle(t *testing.T) {
	called := false
	trips := &mockTripStore{
		save: func(context.Context, service.SaveInput) (domain.TripHeader, error) {
			called = true
			return domain.TripHeader{}, nil
		},
	}
	svc := newEditor(t, trips)
	id := openEmpty(t, svc, 1).ID

	_, err := svc.Save(context.Background(), id)

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.False(t, called)
}

func TestEditorService_Save_InFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	trips := &mockTripStore{
		save: func(_ context.Context, in service.SaveInput) (domain.TripHeader, error) {
			close(started)
			<-release
			return in.Header, nil
		},
	}
	svc := newEditor(t, trips)
	ctx := context.Background()
	id := openEmpty(t, svc, 1).ID
	_, err := svc.SetTitle(ctx, id, "Busy")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Save(ctx, id)
		done <- err
	}()
	<-started

	snap, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, snap.Saving)

	_, err = svc.Save(ctx, id)
	assert.ErrorIs(t, err, domain.ErrConflict)

	close(release)
	require.NoError(t, <-done)
}

// ---- realtime / expiry -----------------------------------------------------

func TestEditorService_ApplyRatingPatch(t *testing.T) {
	svc := newEditor(t, nil)
	ctx := context.Background()
	id := openEmpty(t, svc, 1).ID
	_, _, err := svc.AddPlace(ctx, id, "id-Haeundae", 1)
	require.NoError(t, err)

	rating := 4.9
	n := svc.ApplyRatingPatch(domain.PlaceRatingPatch{PlaceID: "id-Haeundae", AverageRating: &rating})

	assert.Equal(t, 1, n)
	snap, err := svc.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, snap.State.Plan.Day(1)[0].Place.AverageRating)
	assert.InDelta(t, 4.9, *snap.State.Plan.Day(1)[0].Place.AverageRating, 1e-9)
}

func TestEditorService_Sweep(t *testing.T) {
	svc := newEditor(t, nil)
	openEmpty(t, svc, 1)

	assert.Zero(t, svc.Sweep(time.Now()))
	assert.Equal(t, 1, svc.Sweep(time.Now().Add(2*time.Hour)))
	assert.Zero(t, svc.Len())
}
