// Package repo contains all database access logic for the trip planner.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/backpackor/planner/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, *pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// TripRepo defines the persistence operations for trip headers (trip_plan).
type TripRepo interface {
	// Create inserts a new trip header and returns it with the DB-generated
	// trip_id, created_at and updated_at populated.
	Create(ctx context.Context, trip domain.TripHeader) (domain.TripHeader, error)

	// GetByID retrieves a single trip header.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.TripHeader, error)

	// ListByOwner returns one page of an owner's trips, most recent start
	// date first, together with the owner's total trip count.
	ListByOwner(ctx context.Context, ownerID uuid.UUID, p domain.PaginationParams) ([]domain.TripHeader, int64, error)

	// Update overwrites title and dates of an existing trip.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	Update(ctx context.Context, trip domain.TripHeader) (domain.TripHeader, error)

	// Delete removes a trip and, by cascade, its detail rows.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripColumns = `trip_id, user_id, trip_title, trip_start_date, trip_end_date, created_at, updated_at`

// Create inserts a new trip_plan row and returns the full persisted record.
func (r *pgTripRepo) Create(ctx context.Context, trip domain.TripHeader) (domain.TripHeader, error) {
	const q = `
		INSERT INTO trip_plan (user_id, trip_title, trip_start_date, trip_end_date)
		VALUES (@user_id, @title, @start_date, @end_date)
		RETURNING ` + tripColumns

	args := pgx.NamedArgs{
		"user_id":    trip.OwnerID,
		"title":      trip.Title,
		"start_date": pgtype.Date{Time: trip.StartDate, Valid: true},
		"end_date":   pgtype.Date{Time: trip.EndDate, Valid: true},
	}

	result, err := scanTrip(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.TripHeader{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a trip header by primary key.
func (r *pgTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.TripHeader, error) {
	const q = `SELECT ` + tripColumns + ` FROM trip_plan WHERE trip_id = @id`

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.TripHeader{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

// ListByOwner returns a page of the owner's trips and the total count.
// The count comes from a window function so one round trip serves both.
func (r *pgTripRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, p domain.PaginationParams) ([]domain.TripHeader, int64, error) {
	const q = `
		SELECT ` + tripColumns + `, count(*) OVER () AS total
		FROM trip_plan
		WHERE user_id = @user_id
		ORDER BY trip_start_date DESC, created_at DESC
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{
		"user_id": ownerID,
		"limit":   p.Limit,
		"offset":  p.Offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListByOwner: %w", err)
	}
	defer rows.Close()

	trips := []domain.TripHeader{}
	var total int64
	for rows.Next() {
		t, err := scanTripWithTotal(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.TripRepo.ListByOwner: scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListByOwner: rows: %w", err)
	}
	return trips, total, nil
}

// Update overwrites the mutable fields of a trip and returns the updated record.
func (r *pgTripRepo) Update(ctx context.Context, trip domain.TripHeader) (domain.TripHeader, error) {
	const q = `
		UPDATE trip_plan
		SET trip_title      = @title,
		    trip_start_date = @start_date,
		    trip_end_date   = @end_date,
		    updated_at      = now()
		WHERE trip_id = @id
		RETURNING ` + tripColumns

	args := pgx.NamedArgs{
		"id":         trip.ID,
		"title":      trip.Title,
		"start_date": pgtype.Date{Time: trip.StartDate, Valid: true},
		"end_date":   pgtype.Date{Time: trip.EndDate, Valid: true},
	}

	result, err := scanTrip(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.TripHeader{}, fmt.Errorf("repo.TripRepo.Update: %w", err)
	}
	return result, nil
}

// Delete removes a trip by primary key.
func (r *pgTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM trip_plan WHERE trip_id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan
// helpers to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanTrip maps a single database row into a domain.TripHeader.
func scanTrip(s scanner) (domain.TripHeader, error) {
	return scanTripWithTotal(s, nil)
}

// scanTripWithTotal is scanTrip for queries that append a window count column.
func scanTripWithTotal(s scanner, total *int64) (domain.TripHeader, error) {
	var (
		t         domain.TripHeader
		id, owner pgtype.UUID
		start     pgtype.Date
		end       pgtype.Date
	)

	dest := []any{&id, &owner, &t.Title, &start, &end, &t.CreatedAt, &t.UpdatedAt}
	if total != nil {
		dest = append(dest, total)
	}
	if err := s.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TripHeader{}, domain.ErrNotFound
		}
		return domain.TripHeader{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.OwnerID = uuid.UUID(owner.Bytes)
	t.StartDate = start.Time
	t.EndDate = end.Time
	return t, nil
}
