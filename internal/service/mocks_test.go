package service_test

import (
	"context"

	"github.com/google/uuid"

	"github.com/backpackor/planner/internal/domain"
	"github.com/backpackor/planner/internal/repo"
	"github.com/backpackor/planner/internal/service"
)

// Hand-written test doubles. Each method is a function field; set only the
// ones a test needs.

type mockTripRepo struct {
	create      func(ctx context.Context, trip domain.TripHeader) (domain.TripHeader, error)
	getByID     func(ctx context.Context, id uuid.UUID) (domain.TripHeader, error)
	listByOwner func(ctx context.Context, owner uuid.UUID, p domain.PaginationParams) ([]domain.TripHeader, int64, error)
	update      func(ctx context.Context, trip domain.TripHeader) (domain.TripHeader, error)
	delete      func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTripRepo) Create(ctx context.Context, trip domain.TripHeader) (domain.TripHeader, error) {
	return m.create(ctx, trip)
}
func (m *mockTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.TripHeader, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripRepo) ListByOwner(ctx context.Context, owner uuid.UUID, p domain.PaginationParams) ([]domain.TripHeader, int64, error) {
	return m.listByOwner(ctx, owner, p)
}
func (m *mockTripRepo) Update(ctx context.Context, trip domain.TripHeader) (domain.TripHeader, error) {
	return m.update(ctx, trip)
}
func (m *mockTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

var _ repo.TripRepo = (*mockTripRepo)(nil)

type mockTripDetailRepo struct {
	insertBatch  func(ctx context.Context, rows []domain.TripDetail) (int64, error)
	deleteByTrip func(ctx context.Context, tripID uuid.UUID) (int64, error)
	listByTrip   func(ctx context.Context, tripID uuid.UUID) ([]domain.TripDetail, error)
}

func (m *mockTripDetailRepo) InsertBatch(ctx context.Context, rows []domain.TripDetail) (int64, error) {
	return m.insertBatch(ctx, rows)
}
func (m *mockTripDetailRepo) DeleteByTrip(ctx context.Context, tripID uuid.UUID) (int64, error) {
	return m.deleteByTrip(ctx, tripID)
}
func (m *mockTripDetailRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.TripDetail, error) {
	return m.listByTrip(ctx, tripID)
}

var _ repo.TripDetailRepo = (*mockTripDetailRepo)(nil)

// mockPlanStore runs fn directly against its repos. committed records
// whether fn succeeded, which is what a real transaction would commit.
type mockPlanStore struct {
	trips     repo.TripRepo
	details   repo.TripDetailRepo
	calls     int
	committed bool
}

func (m *mockPlanStore) InTx(_ context.Context, fn func(repo.TripRepo, repo.TripDetailRepo) error) error {
	m.calls++
	if err := fn(m.trips, m.details); err != nil {
		return err
	}
	m.committed = true
	return nil
}

var _ repo.PlanStore = (*mockPlanStore)(nil)

type mockPlaceRepo struct {
	list          func(ctx context.Context, f domain.PlaceFilter, p domain.PaginationParams) ([]domain.Place, int64, error)
	listByRegions func(ctx context.Context, regions []string) ([]domain.Place, error)
	getByID       func(ctx context.Context, id string) (domain.Place, error)
}

func (m *mockPlaceRepo) List(ctx context.Context, f domain.PlaceFilter, p domain.PaginationParams) ([]domain.Place, int64, error) {
	return m.list(ctx, f, p)
}
func (m *mockPlaceRepo) ListByRegions(ctx context.Context, regions []string) ([]domain.Place, error) {
	return m.listByRegions(ctx, regions)
}
func (m *mockPlaceRepo) GetByID(ctx context.Context, id string) (domain.Place, error) {
	return m.getByID(ctx, id)
}

var _ repo.PlaceRepo = (*mockPlaceRepo)(nil)

type mockRegionRepo struct {
	list func(ctx context.Context, prefix string) ([]domain.Region, error)
}

func (m *mockRegionRepo) List(ctx context.Context, prefix string) ([]domain.Region, error) {
	return m.list(ctx, prefix)
}

var _ repo.RegionRepo = (*mockRegionRepo)(nil)

type mockGenerator struct {
	generate func(ctx context.Context, system, prompt string) (string, error)
}

func (m *mockGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	return m.generate(ctx, system, prompt)
}

var _ service.TextGenerator = (*mockGenerator)(nil)

type mockTripStore struct {
	load func(ctx context.Context, id uuid.UUID) (domain.SavedTrip, error)
	save func(ctx context.Context, in service.SaveInput) (domain.TripHeader, error)
}

func (m *mockTripStore) Load(ctx context.Context, id uuid.UUID) (domain.SavedTrip, error) {
	return m.load(ctx, id)
}
func (m *mockTripStore) Save(ctx context.Context, in service.SaveInput) (domain.TripHeader, error) {
	return m.save(ctx, in)
}

var _ service.TripStore = (*mockTripStore)(nil)
var _ service.PlaceSource = (*service.CatalogService)(nil)
var _ service.TripStore = (*service.TripService)(nil)
