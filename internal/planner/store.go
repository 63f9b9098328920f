// Package planner holds the in-memory day plan of one editing session and
// the rules that keep it consistent: every day numbered 1..N, visit orders
// 1..N within a day, and no place planned twice.
//
// A Store is owned by a single session and is not safe for concurrent use.
package planner

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/backpackor/planner/internal/domain"
)

// CoordinateResolver looks up a catalog place when the place being added
// has no coordinates yet.
type CoordinateResolver interface {
	ResolveCoordinates(ctx context.Context, placeID string) (domain.Place, error)
}

// Store is the plan state of one editor session.
type Store struct {
	days      []domain.Day
	plan      domain.Plan
	activeDay int
	title     string
	source    domain.HydrationSource
	resolver  CoordinateResolver
}

// State is a deep copy of a Store, safe to hand to other goroutines.
type State struct {
	Title     string
	Days      []domain.Day
	Plan      domain.Plan
	ActiveDay int
	Source    domain.HydrationSource
}

// New returns an unhydrated store over the given days. resolver may be nil,
// in which case places are added with whatever fields they carry.
func New(days []domain.Day, resolver CoordinateResolver) *Store {
	return &Store{
		days:      slices.Clone(days),
		plan:      domain.NewPlan(len(days)),
		activeDay: 1,
		resolver:  resolver,
	}
}

// Source reports how the store was hydrated.
func (s *Store) Source() domain.HydrationSource { return s.source }

// Title returns the current trip title.
func (s *Store) Title() string { return s.title }

// SetTitle renames the trip. Blank titles are allowed while editing and
// rejected at save time.
func (s *Store) SetTitle(title string) { s.title = strings.TrimSpace(title) }

// Days returns a copy of the current day range.
func (s *Store) Days() []domain.Day { return slices.Clone(s.days) }

// Plan returns a deep copy of the current plan.
func (s *Store) Plan() domain.Plan { return s.plan.Clone() }

// ActiveDay returns the day that AddPlace targets by default.
func (s *Store) ActiveDay() int { return s.activeDay }

// SetActiveDay selects the default target day for AddPlace.
func (s *Store) SetActiveDay(day int) error {
	if !s.plan.HasDay(day) {
		return fmt.Errorf("%w: day %d is outside the trip (1-%d)", domain.ErrValidation, day, len(s.days))
	}
	s.activeDay = day
	return nil
}

// Snapshot returns a deep copy of the whole state.
func (s *Store) Snapshot() State {
	return State{
		Title:     s.title,
		Days:      s.Days(),
		Plan:      s.Plan(),
		ActiveDay: s.activeDay,
		Source:    s.source,
	}
}

// AddPlace appends place to the end of day. day 0 means the active day.
// A place already planned on any day is left where it is and AddPlace
// reports false. When the place has no coordinates they are looked up
// first; a failed lookup does not stop the insertion.
func (s *Store) AddPlace(ctx context.Context, place domain.Place, day int) (bool, error) {
	if s.source == domain.HydrationUninitialized {
		return false, fmt.Errorf("%w: plan is not hydrated", domain.ErrConflict)
	}
	if strings.TrimSpace(place.ID) == "" {
		return false, fmt.Errorf("%w: place id is required", domain.ErrValidation)
	}
	if len(s.days) == 0 {
		return false, fmt.Errorf("%w: trip has no days; set start and end dates first", domain.ErrValidation)
	}
	if day == 0 {
		day = s.activeDay
	}
	if !s.plan.HasDay(day) {
		return false, fmt.Errorf("%w: day %d is outside the trip (1-%d)", domain.ErrValidation, day, len(s.days))
	}
	if s.plan.Locate(place.ID) != 0 {
		return false, nil
	}

	if !place.HasCoordinates() && s.resolver != nil {
		if full, err := s.resolver.ResolveCoordinates(ctx, place.ID); err == nil {
			place = place.FillFrom(full)
		}
	}

	list := s.plan[day-1]
	s.plan[day-1] = append(list, domain.PlanAssignment{Place: place, Day: day, VisitOrder: len(list) + 1})
	return true, nil
}

// RemovePlace drops placeID from day and renumbers the rest of that day.
// It reports false when the place is not on that day.
func (s *Store) RemovePlace(day int, placeID string) bool {
	list := s.plan.Day(day)
	i := indexOf(list, placeID)
	if i < 0 {
		return false
	}
	next := slices.Delete(slices.Clone(list), i, i+1)
	s.plan[day-1] = domain.Renumber(day, next)
	return true
}

// Reorder moves fromID to the position currently held by toID within the
// same day, shifting the places in between, then renumbers the day.
// Identical ids, or an id not on that day, leave the plan untouched.
func (s *Store) Reorder(day int, fromID, toID string) bool {
	if fromID == toID {
		return false
	}
	list := s.plan.Day(day)
	from, to := indexOf(list, fromID), indexOf(list, toID)
	if from < 0 || to < 0 {
		return false
	}

	moved := list[from]
	next := slices.Delete(slices.Clone(list), from, from+1)
	next = slices.Insert(next, to, moved)
	s.plan[day-1] = domain.Renumber(day, next)
	return true
}

// SetDates recomputes the day range and prunes the plan to it. A range with
// a missing date is incomplete and leaves the days and plan untouched.
func (s *Store) SetDates(start, end *time.Time) error {
	days, err := domain.NewDayRange(start, end)
	if err != nil {
		return err
	}
	if len(days) == 0 {
		return nil
	}
	s.PruneToRange(days)
	return nil
}

// PruneToRange rebuilds the plan for exactly the given days. Days still in
// range keep their lists, new days start empty, and days past the new end
// are dropped with their places.
func (s *Store) PruneToRange(days []domain.Day) {
	next := domain.NewPlan(len(days))
	for i := range next {
		if i < len(s.plan) {
			next[i] = s.plan[i]
		}
	}
	s.days = slices.Clone(days)
	s.plan = next
	if !s.plan.HasDay(s.activeDay) {
		s.activeDay = 1
	}
}

// ApplyRatingPatch merges a realtime rating update into every planned
// occurrence of the place and returns how many assignments changed.
func (s *Store) ApplyRatingPatch(patch domain.PlaceRatingPatch) int {
	n := 0
	for _, list := range s.plan {
		for i := range list {
			if list[i].Place.ID == patch.PlaceID {
				list[i].Place = list[i].Place.Merge(patch)
				n++
			}
		}
	}
	return n
}

func indexOf(list []domain.PlanAssignment, placeID string) int {
	return slices.IndexFunc(list, func(a domain.PlanAssignment) bool {
		return a.Place.ID == placeID
	})
}

// sortedDays returns the keys of m in ascending order.
func sortedDays[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
