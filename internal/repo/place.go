package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/backpackor/planner/internal/domain"
)

// PlaceRepo defines read access to the place catalog.
type PlaceRepo interface {
	// List returns one page of places matching filter and the total number
	// of matches.
	List(ctx context.Context, filter domain.PlaceFilter, p domain.PaginationParams) ([]domain.Place, int64, error)

	// ListByRegions returns every place in the named regions ordered by name.
	// An empty regions slice returns the whole catalog.
	ListByRegions(ctx context.Context, regions []string) ([]domain.Place, error)

	// GetByID retrieves a single place.
	// Returns domain.ErrNotFound if no place with that ID exists.
	GetByID(ctx context.Context, id string) (domain.Place, error)
}

// pgPlaceRepo is the Postgres implementation of PlaceRepo.
type pgPlaceRepo struct {
	db db
}

// NewPlaceRepo constructs a PlaceRepo backed by the provided db connection.
func NewPlaceRepo(db db) PlaceRepo {
	return &pgPlaceRepo{db: db}
}

// placeColumns must stay in step with placeDest.
const placeColumns = `p.place_id, p.place_name, r.region_name, p.address, p.image_url,
		p.latitude, p.longitude, p.average_rating, p.review_count, p.favorite_count`

// placeDest returns scan destinations for placeColumns.
func placeDest(p *domain.Place) []any {
	return []any{
		&p.ID, &p.Name, &p.RegionName, &p.Address, &p.ImageURL,
		&p.Latitude, &p.Longitude, &p.AverageRating, &p.ReviewCount, &p.FavoriteCount,
	}
}

// orderBy maps a sort onto a fixed ORDER BY clause. Missing aggregates sort
// as zero; ties fall back to favorites, then name.
func orderBy(s domain.PlaceSort) string {
	switch s {
	case domain.SortReviews:
		return `COALESCE(p.review_count, 0) DESC, COALESCE(p.favorite_count, 0) DESC, p.place_name`
	case domain.SortRating:
		return `COALESCE(p.average_rating, 0) DESC, COALESCE(p.favorite_count, 0) DESC, p.place_name`
	default:
		return `COALESCE(p.favorite_count, 0) DESC, p.place_name`
	}
}

// List returns a filtered, sorted page of the catalog.
func (r *pgPlaceRepo) List(ctx context.Context, filter domain.PlaceFilter, p domain.PaginationParams) ([]domain.Place, int64, error) {
	q := `
		SELECT ` + placeColumns + `, count(*) OVER () AS total
		FROM place p
		JOIN region r ON r.region_id = p.region_id
		WHERE (cardinality(@regions::text[]) = 0 OR r.region_name = ANY(@regions::text[]))
		  AND (@query = '' OR p.place_name ILIKE '%' || @query || '%')
		ORDER BY ` + orderBy(filter.Sort) + `
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{
		"regions": nonNil(filter.Regions),
		"query":   filter.Query,
		"limit":   p.Limit,
		"offset":  p.Offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.PlaceRepo.List: %w", err)
	}
	defer rows.Close()

	places := []domain.Place{}
	var total int64
	for rows.Next() {
		var pl domain.Place
		if err := rows.Scan(append(placeDest(&pl), &total)...); err != nil {
			return nil, 0, fmt.Errorf("repo.PlaceRepo.List: scan: %w", err)
		}
		places = append(places, pl)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.PlaceRepo.List: rows: %w", err)
	}
	return places, total, nil
}

// ListByRegions returns all places in the given regions.
func (r *pgPlaceRepo) ListByRegions(ctx context.Context, regions []string) ([]domain.Place, error) {
	const q = `
		SELECT ` + placeColumns + `
		FROM place p
		JOIN region r ON r.region_id = p.region_id
		WHERE cardinality(@regions::text[]) = 0 OR r.region_name = ANY(@regions::text[])
		ORDER BY p.place_name`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"regions": nonNil(regions)})
	if err != nil {
		return nil, fmt.Errorf("repo.PlaceRepo.ListByRegions: %w", err)
	}
	defer rows.Close()

	places := []domain.Place{}
	for rows.Next() {
		var pl domain.Place
		if err := rows.Scan(placeDest(&pl)...); err != nil {
			return nil, fmt.Errorf("repo.PlaceRepo.ListByRegions: scan: %w", err)
		}
		places = append(places, pl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.PlaceRepo.ListByRegions: rows: %w", err)
	}
	return places, nil
}

// GetByID retrieves a place by primary key.
func (r *pgPlaceRepo) GetByID(ctx context.Context, id string) (domain.Place, error) {
	const q = `
		SELECT ` + placeColumns + `
		FROM place p
		JOIN region r ON r.region_id = p.region_id
		WHERE p.place_id = @id`

	var pl domain.Place
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).Scan(placeDest(&pl)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Place{}, fmt.Errorf("repo.PlaceRepo.GetByID: %w", domain.ErrNotFound)
		}
		return domain.Place{}, fmt.Errorf("repo.PlaceRepo.GetByID: %w", err)
	}
	return pl, nil
}

// nonNil turns a nil slice into an empty one; pgx encodes nil as NULL,
// which cardinality() would not treat as empty.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
