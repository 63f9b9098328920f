package domain

// PlanAssignment binds a place to a day and a 1-based position within it.
type PlanAssignment struct {
	Place      Place `json:"place"`
	Day        int   `json:"day_number"`
	VisitOrder int   `json:"visit_order"`
}

// Plan holds one bucket per trip day: Plan[i] is the ordered list of
// assignments for day i+1. Addressing days by index keeps the day numbers
// contiguous by construction.
type Plan [][]PlanAssignment

// NewPlan returns a plan with n empty days.
func NewPlan(n int) Plan {
	p := make(Plan, n)
	for i := range p {
		p[i] = []PlanAssignment{}
	}
	return p
}

// Days returns the number of day buckets.
func (p Plan) Days() int {
	return len(p)
}

// HasDay reports whether day is a valid 1-based day number for p.
func (p Plan) HasDay(day int) bool {
	return day >= 1 && day <= len(p)
}

// Day returns the assignments of a 1-based day, or nil if out of range.
func (p Plan) Day(day int) []PlanAssignment {
	if !p.HasDay(day) {
		return nil
	}
	return p[day-1]
}

// Locate returns the day holding placeID, or 0 if the place is not planned.
func (p Plan) Locate(placeID string) int {
	for i, list := range p {
		for _, a := range list {
			if a.Place.ID == placeID {
				return i + 1
			}
		}
	}
	return 0
}

// Len returns the total number of assignments across all days.
func (p Plan) Len() int {
	n := 0
	for _, list := range p {
		n += len(list)
	}
	return n
}

// Assignments flattens the plan in day, then visit order.
func (p Plan) Assignments() []PlanAssignment {
	out := make([]PlanAssignment, 0, p.Len())
	for _, list := range p {
		out = append(out, list...)
	}
	return out
}

// Clone returns a deep copy; the buckets of the copy share no backing arrays
// with p.
func (p Plan) Clone() Plan {
	out := make(Plan, len(p))
	for i, list := range p {
		out[i] = append([]PlanAssignment{}, list...)
	}
	return out
}

// Renumber rewrites Day and VisitOrder of every assignment in a bucket so
// that visit orders run 1..N.
func Renumber(day int, list []PlanAssignment) []PlanAssignment {
	for i := range list {
		list[i].Day = day
		list[i].VisitOrder = i + 1
	}
	return list
}

// HydrationSource records where an editor's plan came from. A plan is
// hydrated once, from exactly one source.
type HydrationSource int

const (
	HydrationUninitialized HydrationSource = iota
	HydrationFromAIPlan
	HydrationFromPersistedTrip
	HydrationEmpty
)

func (s HydrationSource) String() string {
	switch s {
	case HydrationFromAIPlan:
		return "ai_plan"
	case HydrationFromPersistedTrip:
		return "persisted_trip"
	case HydrationEmpty:
		return "empty"
	default:
		return "uninitialized"
	}
}
