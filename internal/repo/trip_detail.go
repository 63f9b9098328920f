package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/backpackor/planner/internal/domain"
)

// TripDetailRepo defines the persistence operations for plan rows
// (trip_plan_detail). All operations are scoped by trip id.
type TripDetailRepo interface {
	// InsertBatch bulk-inserts rows and returns how many were written.
	// An empty slice is a no-op.
	InsertBatch(ctx context.Context, rows []domain.TripDetail) (int64, error)

	// DeleteByTrip removes every row of a trip and returns how many were removed.
	DeleteByTrip(ctx context.Context, tripID uuid.UUID) (int64, error)

	// ListByTrip returns a trip's rows joined with their catalog place,
	// ordered by day number then visit order.
	ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.TripDetail, error)
}

// pgTripDetailRepo is the Postgres implementation of TripDetailRepo.
type pgTripDetailRepo struct {
	db db
}

// NewTripDetailRepo constructs a TripDetailRepo backed by the provided db connection.
func NewTripDetailRepo(db db) TripDetailRepo {
	return &pgTripDetailRepo{db: db}
}

var tripDetailColumns = []string{"trip_id", "place_id", "day_number", "visit_order"}

// InsertBatch writes rows with the COPY protocol.
func (r *pgTripDetailRepo) InsertBatch(ctx context.Context, rows []domain.TripDetail) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	n, err := r.db.CopyFrom(ctx,
		pgx.Identifier{"trip_plan_detail"},
		tripDetailColumns,
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			d := rows[i]
			return []any{d.TripID, d.PlaceID, d.DayNumber, d.VisitOrder}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("repo.TripDetailRepo.InsertBatch: %w", err)
	}
	return n, nil
}

// DeleteByTrip removes all detail rows of a trip.
func (r *pgTripDetailRepo) DeleteByTrip(ctx context.Context, tripID uuid.UUID) (int64, error) {
	const q = `DELETE FROM trip_plan_detail WHERE trip_id = @trip_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return 0, fmt.Errorf("repo.TripDetailRepo.DeleteByTrip: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListByTrip returns the rows of a trip joined with place and region.
func (r *pgTripDetailRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.TripDetail, error) {
	const q = `
		SELECT d.trip_id, d.day_number, d.visit_order, ` + placeColumns + `
		FROM trip_plan_detail d
		JOIN place p  ON p.place_id = d.place_id
		JOIN region r ON r.region_id = p.region_id
		WHERE d.trip_id = @trip_id
		ORDER BY d.day_number, d.visit_order`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.TripDetailRepo.ListByTrip: %w", err)
	}
	defer rows.Close()

	details := []domain.TripDetail{}
	for rows.Next() {
		var d domain.TripDetail
		dest := append([]any{&d.TripID, &d.DayNumber, &d.VisitOrder}, placeDest(&d.Place)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("repo.TripDetailRepo.ListByTrip: scan: %w", err)
		}
		d.PlaceID = d.Place.ID
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TripDetailRepo.ListByTrip: rows: %w", err)
	}
	return details, nil
}
