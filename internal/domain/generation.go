package domain

import "time"

// Pace controls how many places per day a generated plan proposes.
type Pace string

const (
	PaceRelaxed Pace = "relaxed"
	PaceNormal  Pace = "normal"
	PacePacked  Pace = "packed"
)

// Valid reports whether p is one of the known paces.
func (p Pace) Valid() bool {
	switch p {
	case PaceRelaxed, PaceNormal, PacePacked:
		return true
	}
	return false
}

// GenerationRequest carries the trip constraints sent to the plan generator.
type GenerationRequest struct {
	Start     time.Time
	End       time.Time
	Companion string
	Pace      Pace
	Styles    []string
	Transport []string
	Regions   []string
}

// ProposedPlan is a parsed generator response: a title plus place names per
// day number, in proposal order. Day numbers are whatever the generator
// returned; they are not guaranteed to be contiguous.
type ProposedPlan struct {
	Title string
	Days  map[int][]string
}
