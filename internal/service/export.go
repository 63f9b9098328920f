package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/backpackor/planner/internal/domain"
)

// Export flattens a saved trip into one row per visit, ordered by day and
// visit order. Each row carries the calendar date of its day.
func (s *TripService) Export(ctx context.Context, id uuid.UUID) ([]domain.ItineraryRow, error) {
	trip, err := s.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.Export: %w", err)
	}

	days := make([]int, 0, len(trip.Days))
	for d := range trip.Days {
		days = append(days, d)
	}
	sort.Ints(days)

	rows := []domain.ItineraryRow{}
	for _, d := range days {
		date := trip.Header.StartDate.AddDate(0, 0, d-1).Format(domain.DateLayout)
		visits := trip.Days[d]
		sort.SliceStable(visits, func(i, j int) bool { return visits[i].VisitOrder < visits[j].VisitOrder })
		for _, v := range visits {
			rows = append(rows, domain.ItineraryRow{
				TripID:     trip.Header.ID.String(),
				TripTitle:  trip.Header.Title,
				DayNumber:  d,
				Date:       date,
				VisitOrder: v.VisitOrder,
				PlaceID:    v.PlaceID,
				PlaceName:  v.Place.Name,
				RegionName: v.Place.RegionName,
				Latitude:   v.Place.Latitude,
				Longitude:  v.Place.Longitude,
			})
		}
	}
	return rows, nil
}
