package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/backpackor/planner/internal/domain"
	"github.com/backpackor/planner/internal/planner"
)

// PlaceSource is the catalog access an editor session needs.
// *CatalogService satisfies it.
type PlaceSource interface {
	planner.CoordinateResolver
	ListByRegions(ctx context.Context, regions []string) ([]domain.Place, error)
	GetByID(ctx context.Context, id string) (domain.Place, error)
}

// TripStore is the persistence an editor session needs.
// *TripService satisfies it.
type TripStore interface {
	Load(ctx context.Context, id uuid.UUID) (domain.SavedTrip, error)
	Save(ctx context.Context, in SaveInput) (domain.TripHeader, error)
}

// OpenInput describes a new editor session.
type OpenInput struct {
	Start, End *time.Time
	Regions    []string
	OwnerID    uuid.UUID
	// TripID loads a saved trip; its dates and title replace Start, End and Title.
	TripID *uuid.UUID
	// AIPlan is a generated plan as returned by the generation endpoint.
	AIPlan []byte
	// Title is used when no other source supplies one.
	Title string
}

// EditorSnapshot is a point-in-time copy of a session.
type EditorSnapshot struct {
	ID      uuid.UUID
	OwnerID uuid.UUID
	// TripID is uuid.Nil until the session has been saved or was opened
	// from a saved trip.
	TripID  uuid.UUID
	Regions []string
	State   planner.State
	Saving  bool
	// Dropped lists generated place names that could not be placed. Only
	// set by Open.
	Dropped []string
}

// session is one user's in-progress edit. mu guards every field below it.
type session struct {
	id      uuid.UUID
	mu      sync.Mutex
	ownerID uuid.UUID
	tripID  uuid.UUID
	regions []string
	catalog []domain.Place
	store   *planner.Store
	saving  bool
	touched time.Time
}

func (s *session) snapshot() EditorSnapshot {
	return EditorSnapshot{
		ID:      s.id,
		OwnerID: s.ownerID,
		TripID:  s.tripID,
		Regions: slices.Clone(s.regions),
		State:   s.store.Snapshot(),
		Saving:  s.saving,
	}
}

// EditorService keeps editor sessions in memory. Each session serialises its
// own operations; different sessions proceed concurrently.
type EditorService struct {
	places PlaceSource
	trips  TripStore
	ttl    time.Duration
	log    *slog.Logger
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[uuid.UUID]*session
}

// NewEditorService constructs an EditorService. Sessions idle for longer
// than ttl are removed by Sweep.
func NewEditorService(places PlaceSource, trips TripStore, ttl time.Duration, log *slog.Logger) *EditorService {
	return &EditorService{
		places:   places,
		trips:    trips,
		ttl:      ttl,
		log:      log,
		now:      time.Now,
		sessions: make(map[uuid.UUID]*session),
	}
}

// Open creates a session and hydrates its plan from, in order of
// precedence, the generated plan, the saved trip, or nothing.
func (s *EditorService) Open(ctx context.Context, in OpenInput) (EditorSnapshot, error) {
	var trip *domain.SavedTrip
	if in.TripID != nil {
		t, err := s.trips.Load(ctx, *in.TripID)
		if err != nil {
			return EditorSnapshot{}, fmt.Errorf("service.EditorService.Open: %w", err)
		}
		trip = &t
		in.Start, in.End = &t.Header.StartDate, &t.Header.EndDate
		in.OwnerID = t.Header.OwnerID
	}

	days, err := domain.NewDayRange(in.Start, in.End)
	if err != nil {
		return EditorSnapshot{}, fmt.Errorf("service.EditorService.Open: %w", err)
	}

	regions := cleanNames(in.Regions)
	catalog := []domain.Place{}
	if len(regions) > 0 {
		if catalog, err = s.places.ListByRegions(ctx, regions); err != nil {
			return EditorSnapshot{}, fmt.Errorf("service.EditorService.Open: %w", err)
		}
	}

	store := planner.New(days, s.places)
	res, err := store.Hydrate(planner.Source{AIPlan: in.AIPlan, Catalog: catalog, Trip: trip})
	if err != nil {
		return EditorSnapshot{}, fmt.Errorf("service.EditorService.Open: %w", err)
	}
	if res.Fallback != nil {
		s.log.WarnContext(ctx, "generated plan unusable, starting empty", "error", res.Fallback)
	}
	if store.Title() == "" {
		store.SetTitle(in.Title)
	}

	sess := &session{
		id:      uuid.New(),
		ownerID: in.OwnerID,
		regions: regions,
		catalog: catalog,
		store:   store,
		touched: s.now(),
	}
	if trip != nil {
		sess.tripID = trip.Header.ID
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	s.log.InfoContext(ctx, "editor session opened",
		"session_id", sess.id,
		"source", res.Source.String(),
		"days", len(days),
		"dropped", len(res.Dropped),
	)

	snap := sess.snapshot()
	snap.Dropped = res.Dropped
	return snap, nil
}

// Get returns the current state of a session.
func (s *EditorService) Get(_ context.Context, id uuid.UUID) (EditorSnapshot, error) {
	return s.update(id, "Get", func(*session) error { return nil })
}

// SetDates changes the trip dates and prunes the plan to the new range.
func (s *EditorService) SetDates(_ context.Context, id uuid.UUID, start, end *time.Time) (EditorSnapshot, error) {
	return s.update(id, "SetDates", func(sess *session) error {
		return sess.store.SetDates(start, end)
	})
}

// SetTitle renames the trip.
func (s *EditorService) SetTitle(_ context.Context, id uuid.UUID, title string) (EditorSnapshot, error) {
	return s.update(id, "SetTitle", func(sess *session) error {
		sess.store.SetTitle(title)
		return nil
	})
}

// SetActiveDay selects the day AddPlace targets by default.
func (s *EditorService) SetActiveDay(_ context.Context, id uuid.UUID, day int) (EditorSnapshot, error) {
	return s.update(id, "SetActiveDay", func(sess *session) error {
		return sess.store.SetActiveDay(day)
	})
}

// AddPlace appends a catalog place to day (0 for the active day) and
// reports whether it was added. A place already in the plan is not added
// again.
func (s *EditorService) AddPlace(ctx context.Context, id uuid.UUID, placeID string, day int) (EditorSnapshot, bool, error) {
	var added bool
	snap, err := s.update(id, "AddPlace", func(sess *session) error {
		place, err := sess.lookup(ctx, s.places, placeID)
		if err != nil {
			return err
		}
		added, err = sess.store.AddPlace(ctx, place, day)
		return err
	})
	return snap, added, err
}

// RemovePlace drops a place from day. Removing an absent place is a no-op.
func (s *EditorService) RemovePlace(_ context.Context, id uuid.UUID, day int, placeID string) (EditorSnapshot, error) {
	return s.update(id, "RemovePlace", func(sess *session) error {
		sess.store.RemovePlace(day, placeID)
		return nil
	})
}

// Reorder moves fromID to the position of toID within day.
func (s *EditorService) Reorder(_ context.Context, id uuid.UUID, day int, fromID, toID string) (EditorSnapshot, error) {
	return s.update(id, "Reorder", func(sess *session) error {
		sess.store.Reorder(day, fromID, toID)
		return nil
	})
}

// Discard ends a session without saving.
func (s *EditorService) Discard(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("service.EditorService.Discard: %w", domain.ErrNotFound)
	}
	delete(s.sessions, id)
	return nil
}

// Save persists the session's plan. The first save creates a trip and binds
// the session to it; later saves replace that trip's plan. A blank title
// fails with domain.ErrValidation and a save already running fails with
// domain.ErrConflict; neither writes anything.
func (s *EditorService) Save(ctx context.Context, id uuid.UUID) (domain.TripHeader, error) {
	sess, err := s.session(id)
	if err != nil {
		return domain.TripHeader{}, fmt.Errorf("service.EditorService.Save: %w", err)
	}

	sess.mu.Lock()
	if sess.saving {
		sess.mu.Unlock()
		return domain.TripHeader{}, fmt.Errorf("service.EditorService.Save: %w: save already in progress", domain.ErrConflict)
	}
	state := sess.store.Snapshot()
	if state.Title == "" {
		sess.mu.Unlock()
		return domain.TripHeader{}, fmt.Errorf("service.EditorService.Save: %w: trip title must not be blank", domain.ErrValidation)
	}
	if len(state.Days) == 0 {
		sess.mu.Unlock()
		return domain.TripHeader{}, fmt.Errorf("service.EditorService.Save: %w: start and end dates are required", domain.ErrValidation)
	}
	in := SaveInput{
		Header: domain.TripHeader{
			ID:        sess.tripID,
			OwnerID:   sess.ownerID,
			Title:     state.Title,
			StartDate: state.Days[0].Date,
			EndDate:   state.Days[len(state.Days)-1].Date,
		},
		Plan:     state.Plan,
		IsUpdate: sess.tripID != uuid.Nil,
	}
	sess.saving = true
	sess.touched = s.now()
	sess.mu.Unlock()

	header, err := s.trips.Save(ctx, in)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.saving = false
	if err != nil {
		return domain.TripHeader{}, fmt.Errorf("service.EditorService.Save: %w", err)
	}
	sess.tripID = header.ID
	s.log.InfoContext(ctx, "trip saved",
		"session_id", sess.id,
		"trip_id", header.ID,
		"update", in.IsUpdate,
		"places", state.Plan.Len(),
	)
	return header, nil
}

// ApplyRatingPatch merges a rating update into every open session's catalog
// and plan and returns how many plan entries changed.
func (s *EditorService) ApplyRatingPatch(patch domain.PlaceRatingPatch) int {
	s.mu.RLock()
	open := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		open = append(open, sess)
	}
	s.mu.RUnlock()

	n := 0
	for _, sess := range open {
		sess.mu.Lock()
		for i := range sess.catalog {
			if sess.catalog[i].ID == patch.PlaceID {
				sess.catalog[i] = sess.catalog[i].Merge(patch)
			}
		}
		n += sess.store.ApplyRatingPatch(patch)
		sess.mu.Unlock()
	}
	return n
}

// HandlePatch lets the realtime listener deliver rating updates.
func (s *EditorService) HandlePatch(ctx context.Context, patch domain.PlaceRatingPatch) {
	if n := s.ApplyRatingPatch(patch); n > 0 {
		s.log.DebugContext(ctx, "rating patch applied", "place_id", patch.PlaceID, "entries", n)
	}
}

// Sweep removes sessions idle since before now-ttl and returns how many it
// removed. Sessions with a save in progress are kept.
func (s *EditorService) Sweep(now time.Time) int {
	cutoff := now.Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for id, sess := range s.sessions {
		sess.mu.Lock()
		expired := sess.touched.Before(cutoff) && !sess.saving
		sess.mu.Unlock()
		if expired {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *EditorService) RunSweeper(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := s.Sweep(now); n > 0 {
				s.log.InfoContext(ctx, "expired editor sessions removed", "count", n)
			}
		}
	}
}

// Len returns the number of open sessions.
func (s *EditorService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *EditorService) session(id uuid.UUID) (*session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return sess, nil
}

// update runs fn under the session lock and returns the resulting snapshot.
// The snapshot is returned even when fn fails so callers can re-render.
func (s *EditorService) update(id uuid.UUID, op string, fn func(*session) error) (EditorSnapshot, error) {
	sess, err := s.session(id)
	if err != nil {
		return EditorSnapshot{}, fmt.Errorf("service.EditorService.%s: %w", op, err)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touched = s.now()
	if err := fn(sess); err != nil {
		return sess.snapshot(), fmt.Errorf("service.EditorService.%s: %w", op, err)
	}
	return sess.snapshot(), nil
}

// lookup finds placeID in the session catalog, falling back to the full
// catalog for places outside the selected regions.
func (sess *session) lookup(ctx context.Context, places PlaceSource, placeID string) (domain.Place, error) {
	if i := slices.IndexFunc(sess.catalog, func(p domain.Place) bool { return p.ID == placeID }); i >= 0 {
		return sess.catalog[i], nil
	}
	return places.GetByID(ctx, placeID)
}
