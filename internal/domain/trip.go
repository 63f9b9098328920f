// Package domain contains the core data types for the trip planner.
// This package depends only on uuid and is imported by every other
// internal package (planner, repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// TripHeader is the persisted top-level record of a saved plan.
// It is created by the first save and updated in place by later saves.
type TripHeader struct {
	ID        uuid.UUID `json:"trip_id"`
	OwnerID   uuid.UUID `json:"user_id"`
	Title     string    `json:"trip_title"`
	StartDate time.Time `json:"trip_start_date"`
	EndDate   time.Time `json:"trip_end_date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TripDetail is one persisted plan row: a place on a given day at a given
// position. Place is populated on reads by joining the catalog.
type TripDetail struct {
	TripID     uuid.UUID
	PlaceID    string
	DayNumber  int
	VisitOrder int
	Place      Place
}

// SavedTrip is a header together with its detail rows grouped by day
// number, each day ordered by visit order.
type SavedTrip struct {
	Header TripHeader
	Days   map[int][]TripDetail
}

// DetailsFromPlan converts a plan into the rows written by a save.
func DetailsFromPlan(tripID uuid.UUID, p Plan) []TripDetail {
	out := make([]TripDetail, 0, p.Len())
	for i, list := range p {
		for j, a := range list {
			out = append(out, TripDetail{
				TripID:     tripID,
				PlaceID:    a.Place.ID,
				DayNumber:  i + 1,
				VisitOrder: j + 1,
				Place:      a.Place,
			})
		}
	}
	return out
}
