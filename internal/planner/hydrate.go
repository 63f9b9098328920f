package planner

import (
	"fmt"
	"sort"

	"github.com/backpackor/planner/internal/domain"
)

// Source lists the candidate inputs for hydration. Hydrate picks one by
// precedence: AIPlan, then Trip, then an empty plan.
type Source struct {
	// AIPlan is a raw generator response ({"title": ..., "plan": {...}}).
	AIPlan []byte
	// Catalog resolves AI place names; names not in it are dropped.
	Catalog []domain.Place
	// Trip is a previously saved trip.
	Trip *domain.SavedTrip
}

// HydrateResult describes what Hydrate applied.
type HydrateResult struct {
	Source domain.HydrationSource
	// Dropped lists AI place names that could not be placed: unknown to the
	// catalog, repeated, or on a day outside the range.
	Dropped []string
	// Fallback is the parse error when an AI plan was given but could not be
	// used and the store fell back to an empty plan.
	Fallback error
}

// Hydrate initialises the plan from the highest-precedence source present.
// A second call fails with domain.ErrConflict.
func (s *Store) Hydrate(src Source) (HydrateResult, error) {
	if s.source != domain.HydrationUninitialized {
		return HydrateResult{}, errAlreadyHydrated(s.source)
	}

	var fallback error
	if len(src.AIPlan) > 0 {
		dropped, err := s.HydrateFromAI(src.AIPlan, src.Catalog)
		if err == nil {
			return HydrateResult{Source: s.source, Dropped: dropped}, nil
		}
		fallback = err
	} else if src.Trip != nil {
		if err := s.HydrateFromTrip(*src.Trip); err != nil {
			return HydrateResult{}, err
		}
		return HydrateResult{Source: s.source}, nil
	}

	if err := s.HydrateEmpty(); err != nil {
		return HydrateResult{}, err
	}
	return HydrateResult{Source: s.source, Fallback: fallback}, nil
}

// HydrateFromAI parses raw and hydrates from it. A parse failure leaves the
// store unhydrated and returns domain.ErrUpstream.
func (s *Store) HydrateFromAI(raw []byte, catalog []domain.Place) ([]string, error) {
	if s.source != domain.HydrationUninitialized {
		return nil, errAlreadyHydrated(s.source)
	}
	p, err := ParseProposal(raw)
	if err != nil {
		return nil, err
	}
	return s.HydrateFromProposal(p, catalog)
}

// HydrateFromProposal places each proposed name on its day, matching names
// exactly against catalog. A non-empty proposal title replaces the store's
// title.
func (s *Store) HydrateFromProposal(p domain.ProposedPlan, catalog []domain.Place) ([]string, error) {
	if s.source != domain.HydrationUninitialized {
		return nil, errAlreadyHydrated(s.source)
	}

	byName := make(map[string]domain.Place, len(catalog))
	for _, pl := range catalog {
		if _, ok := byName[pl.Name]; !ok {
			byName[pl.Name] = pl
		}
	}

	plan := domain.NewPlan(len(s.days))
	seen := make(map[string]bool)
	var dropped []string
	for _, day := range sortedDays(p.Days) {
		names := p.Days[day]
		if !plan.HasDay(day) {
			dropped = append(dropped, names...)
			continue
		}
		for _, name := range names {
			place, ok := byName[name]
			if !ok || seen[place.ID] {
				dropped = append(dropped, name)
				continue
			}
			seen[place.ID] = true
			plan[day-1] = append(plan[day-1], domain.PlanAssignment{Place: place})
		}
		domain.Renumber(day, plan[day-1])
	}

	s.plan = plan
	s.source = domain.HydrationFromAIPlan
	if p.Title != "" {
		s.title = p.Title
	}
	return dropped, nil
}

// HydrateFromTrip loads a saved trip: rows grouped by day, ordered by their
// stored visit order and renumbered 1..N. Rows on days outside the range
// are discarded.
func (s *Store) HydrateFromTrip(trip domain.SavedTrip) error {
	if s.source != domain.HydrationUninitialized {
		return errAlreadyHydrated(s.source)
	}

	plan := domain.NewPlan(len(s.days))
	seen := make(map[string]bool)
	for _, day := range sortedDays(trip.Days) {
		if !plan.HasDay(day) {
			continue
		}
		rows := append([]domain.TripDetail{}, trip.Days[day]...)
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].VisitOrder < rows[j].VisitOrder })
		for _, r := range rows {
			if seen[r.PlaceID] {
				continue
			}
			seen[r.PlaceID] = true
			place := r.Place
			place.ID = r.PlaceID
			plan[day-1] = append(plan[day-1], domain.PlanAssignment{Place: place})
		}
		domain.Renumber(day, plan[day-1])
	}

	s.plan = plan
	s.source = domain.HydrationFromPersistedTrip
	s.title = trip.Header.Title
	return nil
}

// HydrateEmpty starts a new plan with one empty list per day.
func (s *Store) HydrateEmpty() error {
	if s.source != domain.HydrationUninitialized {
		return errAlreadyHydrated(s.source)
	}
	s.plan = domain.NewPlan(len(s.days))
	s.source = domain.HydrationEmpty
	return nil
}

func errAlreadyHydrated(from domain.HydrationSource) error {
	return fmt.Errorf("%w: plan already hydrated from %s", domain.ErrConflict, from)
}
