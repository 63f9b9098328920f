package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backpackor/planner/internal/domain"
)

func assign(id string, day, order int) domain.PlanAssignment {
	return domain.PlanAssignment{Place: domain.Place{ID: id, Name: id}, Day: day, VisitOrder: order}
}

func TestPlan_LocateAndLen(t *testing.T) {
	p := domain.NewPlan(3)
	p[0] = append(p[0], assign("a", 1, 1))
	p[2] = append(p[2], assign("b", 3, 1), assign("c", 3, 2))

	assert.Equal(t, 3, p.Days())
	assert.Equal(t, 3, p.Len())
	assert.Equal(t, 1, p.Locate("a"))
	assert.Equal(t, 3, p.Locate("c"))
	assert.Equal(t, 0, p.Locate("missing"))
	assert.Nil(t, p.Day(4))
	assert.Empty(t, p.Day(2))
}

func TestPlan_CloneIsIndependent(t *testing.T) {
	p := domain.NewPlan(1)
	p[0] = append(p[0], assign("a", 1, 1))

	c := p.Clone()
	c[0][0].VisitOrder = 9
	c[0] = append(c[0], assign("b", 1, 2))

	assert.Equal(t, 1, p[0][0].VisitOrder)
	assert.Len(t, p[0], 1)
}

func TestRenumber(t *testing.T) {
	list := []domain.PlanAssignment{assign("a", 0, 5), assign("b", 0, 2)}

	got := domain.Renumber(2, list)

	assert.Equal(t, 1, got[0].VisitOrder)
	assert.Equal(t, 2, got[1].VisitOrder)
	assert.Equal(t, 2, got[1].Day)
}

func TestDetailsFromPlan(t *testing.T) {
	id := uuid.New()
	p := domain.NewPlan(2)
	p[1] = append(p[1], assign("x", 2, 1), assign("y", 2, 2))

	rows := domain.DetailsFromPlan(id, p)

	require.Len(t, rows, 2)
	assert.Equal(t, id, rows[0].TripID)
	assert.Equal(t, 2, rows[0].DayNumber)
	assert.Equal(t, 2, rows[1].VisitOrder)
	assert.Equal(t, "y", rows[1].PlaceID)
}

func TestHydrationSource_String(t *testing.T) {
	assert.Equal(t, "uninitialized", domain.HydrationUninitialized.String())
	assert.Equal(t, "ai_plan", domain.HydrationFromAIPlan.String())
	assert.Equal(t, "persisted_trip", domain.HydrationFromPersistedTrip.String())
	assert.Equal(t, "empty", domain.HydrationEmpty.String())
}
