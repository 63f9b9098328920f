package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/backpackor/planner/internal/domain"
)

// RegionRepo defines read access to regions.
type RegionRepo interface {
	// List returns regions whose name starts with prefix, ordered by name.
	// Pass prefix="" to return every region.
	List(ctx context.Context, prefix string) ([]domain.Region, error)
}

// pgRegionRepo is the Postgres implementation of RegionRepo.
type pgRegionRepo struct {
	db db
}

// NewRegionRepo constructs a RegionRepo backed by the provided db connection.
func NewRegionRepo(db db) RegionRepo {
	return &pgRegionRepo{db: db}
}

// List returns regions matching prefix.
func (r *pgRegionRepo) List(ctx context.Context, prefix string) ([]domain.Region, error) {
	const q = `
		SELECT region_id, region_name
		FROM region
		WHERE region_name LIKE @prefix || '%'
		ORDER BY region_name`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"prefix": prefix})
	if err != nil {
		return nil, fmt.Errorf("repo.RegionRepo.List: %w", err)
	}
	defer rows.Close()

	regions, err := pgx.CollectRows(rows, pgx.RowToStructByPos[domain.Region])
	if err != nil {
		return nil, fmt.Errorf("repo.RegionRepo.List: scan: %w", err)
	}
	return regions, nil
}
