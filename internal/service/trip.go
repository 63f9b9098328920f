// Package service contains the business logic for the trip planner.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/backpackor/planner/internal/domain"
	"github.com/backpackor/planner/internal/repo"
)

// SaveInput is one save of an edited plan.
type SaveInput struct {
	// Header carries title and dates; OwnerID is used on create and ID on update.
	Header domain.TripHeader
	Plan   domain.Plan
	// IsUpdate replaces an existing trip's details instead of creating a trip.
	IsUpdate bool
}

// TripService persists plans and reads them back.
type TripService struct {
	store   repo.PlanStore
	trips   repo.TripRepo
	details repo.TripDetailRepo
}

// NewTripService constructs a TripService. store is used for writes; trips
// and details serve reads outside a transaction.
func NewTripService(store repo.PlanStore, trips repo.TripRepo, details repo.TripDetailRepo) *TripService {
	return &TripService{store: store, trips: trips, details: details}
}

// Save writes the header and replaces all detail rows in one transaction.
// On update the old rows are deleted before the new ones are inserted; a plan
// with no assignments leaves the trip with no rows. Any failure rolls back
// the whole save.
func (s *TripService) Save(ctx context.Context, in SaveInput) (domain.TripHeader, error) {
	h := in.Header
	h.Title = strings.TrimSpace(h.Title)
	if h.Title == "" {
		return domain.TripHeader{}, fmt.Errorf("service.TripService.Save: %w: trip title must not be blank", domain.ErrValidation)
	}
	if h.StartDate.IsZero() || h.EndDate.IsZero() {
		return domain.TripHeader{}, fmt.Errorf("service.TripService.Save: %w: start and end dates are required", domain.ErrValidation)
	}
	if h.EndDate.Before(h.StartDate) {
		return domain.TripHeader{}, fmt.Errorf("service.TripService.Save: %w: end date must not be before start date", domain.ErrValidation)
	}
	if in.IsUpdate && h.ID == uuid.Nil {
		return domain.TripHeader{}, fmt.Errorf("service.TripService.Save: %w: trip id is required for an update", domain.ErrValidation)
	}

	var saved domain.TripHeader
	err := s.store.InTx(ctx, func(trips repo.TripRepo, details repo.TripDetailRepo) error {
		var err error
		if in.IsUpdate {
			if saved, err = trips.Update(ctx, h); err != nil {
				return err
			}
			if _, err = details.DeleteByTrip(ctx, saved.ID); err != nil {
				return err
			}
		} else if saved, err = trips.Create(ctx, h); err != nil {
			return err
		}

		rows := domain.DetailsFromPlan(saved.ID, in.Plan)
		if len(rows) == 0 {
			return nil
		}
		_, err = details.InsertBatch(ctx, rows)
		return err
	})
	if err != nil {
		return domain.TripHeader{}, fmt.Errorf("service.TripService.Save: %w", err)
	}
	return saved, nil
}

// Load returns a trip header with its rows grouped by day number.
func (s *TripService) Load(ctx context.Context, id uuid.UUID) (domain.SavedTrip, error) {
	header, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return domain.SavedTrip{}, fmt.Errorf("service.TripService.Load: %w", err)
	}
	rows, err := s.details.ListByTrip(ctx, id)
	if err != nil {
		return domain.SavedTrip{}, fmt.Errorf("service.TripService.Load: %w", err)
	}

	trip := domain.SavedTrip{Header: header, Days: make(map[int][]domain.TripDetail)}
	for _, r := range rows {
		trip.Days[r.DayNumber] = append(trip.Days[r.DayNumber], r)
	}
	return trip, nil
}

// ListByOwner returns a page of an owner's trips and their total count.
func (s *TripService) ListByOwner(ctx context.Context, ownerID uuid.UUID, p domain.PaginationParams) ([]domain.TripHeader, int64, error) {
	trips, total, err := s.trips.ListByOwner(ctx, ownerID, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TripService.ListByOwner: %w", err)
	}
	return trips, total, nil
}

// Delete removes a trip and its rows.
func (s *TripService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.trips.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	return nil
}
