package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/backpackor/planner/internal/domain"
	"github.com/backpackor/planner/internal/repo"
)

// CatalogService serves the read-only place catalog.
type CatalogService struct {
	places  repo.PlaceRepo
	regions repo.RegionRepo
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(places repo.PlaceRepo, regions repo.RegionRepo) *CatalogService {
	return &CatalogService{places: places, regions: regions}
}

// ListRegions returns regions whose name starts with prefix.
func (s *CatalogService) ListRegions(ctx context.Context, prefix string) ([]domain.Region, error) {
	regions, err := s.regions.List(ctx, strings.TrimSpace(prefix))
	if err != nil {
		return nil, fmt.Errorf("service.CatalogService.ListRegions: %w", err)
	}
	return regions, nil
}

// List returns one page of places and the total match count.
// Blank region names are ignored and an unknown sort falls back to popularity.
func (s *CatalogService) List(ctx context.Context, filter domain.PlaceFilter, p domain.PaginationParams) ([]domain.Place, int64, error) {
	filter.Regions = cleanNames(filter.Regions)
	filter.Query = strings.TrimSpace(filter.Query)
	filter.Sort = domain.ParsePlaceSort(string(filter.Sort))

	places, total, err := s.places.List(ctx, filter, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.CatalogService.List: %w", err)
	}
	return places, total, nil
}

// ListByRegions returns every place in the given regions.
func (s *CatalogService) ListByRegions(ctx context.Context, regions []string) ([]domain.Place, error) {
	places, err := s.places.ListByRegions(ctx, cleanNames(regions))
	if err != nil {
		return nil, fmt.Errorf("service.CatalogService.ListByRegions: %w", err)
	}
	return places, nil
}

// GetByID returns a single place.
func (s *CatalogService) GetByID(ctx context.Context, id string) (domain.Place, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Place{}, fmt.Errorf("service.CatalogService.GetByID: %w: place id is required", domain.ErrValidation)
	}
	p, err := s.places.GetByID(ctx, id)
	if err != nil {
		return domain.Place{}, fmt.Errorf("service.CatalogService.GetByID: %w", err)
	}
	return p, nil
}

// ResolveCoordinates looks a place up so the plan store can fill in
// coordinates the client did not send.
func (s *CatalogService) ResolveCoordinates(ctx context.Context, placeID string) (domain.Place, error) {
	return s.GetByID(ctx, placeID)
}

// cleanNames trims names and drops blanks and repeats, keeping order.
func cleanNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
