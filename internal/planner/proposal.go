package planner

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/backpackor/planner/internal/domain"
)

// proposalWire is the JSON shape produced by the plan generator:
//
//	{"title": "...", "plan": {"1": [{"place_name": "..."}], "2": [...]}}
type proposalWire struct {
	Title string                          `json:"title"`
	Plan  map[string][]proposedPlaceWire `json:"plan"`
}

type proposedPlaceWire struct {
	PlaceName string `json:"place_name"`
}

// ParseProposal decodes a generator response into a ProposedPlan.
// A surrounding Markdown code fence is stripped first. Day keys that are not
// positive integers are ignored. Input that is not JSON, or JSON without a
// plan object, fails with domain.ErrUpstream.
func ParseProposal(raw []byte) (domain.ProposedPlan, error) {
	text := StripCodeFence(string(raw))
	if text == "" {
		return domain.ProposedPlan{}, fmt.Errorf("%w: empty plan response", domain.ErrUpstream)
	}

	var w proposalWire
	if err := json.Unmarshal([]byte(text), &w); err != nil {
		return domain.ProposedPlan{}, fmt.Errorf("%w: decode plan response: %v", domain.ErrUpstream, err)
	}
	if w.Plan == nil {
		return domain.ProposedPlan{}, fmt.Errorf("%w: plan response has no plan object", domain.ErrUpstream)
	}

	p := domain.ProposedPlan{Title: strings.TrimSpace(w.Title), Days: make(map[int][]string, len(w.Plan))}
	for key, places := range w.Plan {
		day, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil || day < 1 {
			continue
		}
		names := make([]string, 0, len(places))
		for _, pl := range places {
			if name := strings.TrimSpace(pl.PlaceName); name != "" {
				names = append(names, name)
			}
		}
		p.Days[day] = append(p.Days[day], names...)
	}
	return p, nil
}

// EncodeProposal is the inverse of ParseProposal. It is what the generation
// endpoint returns and what a client hands back when opening an editor
// session from a generated plan.
func EncodeProposal(p domain.ProposedPlan) ([]byte, error) {
	w := proposalWire{Title: p.Title, Plan: make(map[string][]proposedPlaceWire, len(p.Days))}
	for day, names := range p.Days {
		list := make([]proposedPlaceWire, 0, len(names))
		for _, n := range names {
			list = append(list, proposedPlaceWire{PlaceName: n})
		}
		w.Plan[strconv.Itoa(day)] = list
	}
	return json.Marshal(w)
}

// StripCodeFence removes a leading ``` or ```json line and a trailing ```
// from s. Generators wrap JSON in fences even when told not to.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 && !strings.HasPrefix(strings.TrimSpace(s[:i]), "{") {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
