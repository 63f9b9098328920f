package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// txBeginner is satisfied by *pgxpool.Pool and by pgx.Tx (which begins a
// savepoint), so integration tests can nest a PlanStore inside their
// rolled-back transaction.
type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PlanStore runs a save of a trip header and its detail rows as one unit.
type PlanStore interface {
	// InTx calls fn with repos bound to a single transaction. The
	// transaction commits if fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(trips TripRepo, details TripDetailRepo) error) error
}

// pgPlanStore is the Postgres implementation of PlanStore.
type pgPlanStore struct {
	b txBeginner
}

// NewPlanStore constructs a PlanStore that opens transactions on b.
func NewPlanStore(b txBeginner) PlanStore {
	return &pgPlanStore{b: b}
}

// InTx wraps fn in pgx.BeginFunc.
func (s *pgPlanStore) InTx(ctx context.Context, fn func(trips TripRepo, details TripDetailRepo) error) error {
	err := pgx.BeginFunc(ctx, s.b, func(tx pgx.Tx) error {
		return fn(NewTripRepo(tx), NewTripDetailRepo(tx))
	})
	if err != nil {
		return fmt.Errorf("repo.PlanStore.InTx: %w", err)
	}
	return nil
}
