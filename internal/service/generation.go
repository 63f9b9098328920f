package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/backpackor/planner/internal/domain"
	"github.com/backpackor/planner/internal/planner"
	"github.com/backpackor/planner/internal/repo"
)

// TextGenerator sends one system instruction and prompt to a language model
// and returns the text of its first candidate.
type TextGenerator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// GenerationService asks a TextGenerator for a day-by-day plan restricted to
// the catalog places of the requested regions.
type GenerationService struct {
	places repo.PlaceRepo
	gen    TextGenerator
	log    *slog.Logger
}

// NewGenerationService constructs a GenerationService.
func NewGenerationService(places repo.PlaceRepo, gen TextGenerator, log *slog.Logger) *GenerationService {
	return &GenerationService{places: places, gen: gen, log: log}
}

// Generate validates req, builds the prompt and parses the model's answer.
// It returns the parsed plan together with its canonical JSON encoding,
// which clients hand back when opening an editor session.
//
// A request without regions fails with domain.ErrValidation. A region set
// with no places, a generator failure or an unparsable answer fails with
// domain.ErrUpstream.
func (s *GenerationService) Generate(ctx context.Context, req domain.GenerationRequest) (domain.ProposedPlan, []byte, error) {
	req.Regions = cleanNames(req.Regions)
	if len(req.Regions) == 0 {
		return domain.ProposedPlan{}, nil, fmt.Errorf("service.GenerationService.Generate: %w: no region selected", domain.ErrValidation)
	}
	if req.Pace == "" {
		req.Pace = domain.PaceNormal
	}
	if !req.Pace.Valid() {
		return domain.ProposedPlan{}, nil, fmt.Errorf("service.GenerationService.Generate: %w: unknown pace %q", domain.ErrValidation, req.Pace)
	}
	if !req.Start.IsZero() && !req.End.IsZero() && req.End.Before(req.Start) {
		return domain.ProposedPlan{}, nil, fmt.Errorf("service.GenerationService.Generate: %w: end date must not be before start date", domain.ErrValidation)
	}

	places, err := s.places.ListByRegions(ctx, req.Regions)
	if err != nil {
		return domain.ProposedPlan{}, nil, fmt.Errorf("service.GenerationService.Generate: %w", err)
	}
	if len(places) == 0 {
		return domain.ProposedPlan{}, nil, fmt.Errorf("service.GenerationService.Generate: %w: no places in regions %s",
			domain.ErrUpstream, strings.Join(req.Regions, ", "))
	}

	names := make([]string, len(places))
	for i, p := range places {
		names[i] = p.Name
	}

	system := SystemInstruction(req.Pace)
	prompt := Prompt(req, names)
	s.log.InfoContext(ctx, "requesting plan",
		"regions", req.Regions,
		"pace", req.Pace,
		"candidates", len(names),
		"prompt_bytes", len(prompt),
	)

	text, err := s.gen.Generate(ctx, system, prompt)
	if err != nil {
		return domain.ProposedPlan{}, nil, fmt.Errorf("service.GenerationService.Generate: %w: %v", domain.ErrUpstream, err)
	}

	plan, err := planner.ParseProposal([]byte(text))
	if err != nil {
		s.log.WarnContext(ctx, "unparsable plan response", "error", err, "response_bytes", len(text))
		return domain.ProposedPlan{}, nil, fmt.Errorf("service.GenerationService.Generate: %w", err)
	}

	raw, err := planner.EncodeProposal(plan)
	if err != nil {
		return domain.ProposedPlan{}, nil, fmt.Errorf("service.GenerationService.Generate: encode: %w", err)
	}
	return plan, raw, nil
}

// placesPerDay is the pace-dependent count instruction.
func placesPerDay(p domain.Pace) string {
	switch p {
	case domain.PaceRelaxed:
		return "Recommend only 1 to 2 places per day."
	case domain.PacePacked:
		return "Recommend a full 5 places per day."
	default:
		return "Recommend 3 to 4 places per day, matching the travel pace."
	}
}

// SystemInstruction returns the fixed instruction block for a pace.
func SystemInstruction(p domain.Pace) string {
	return strings.Join([]string{
		"You are an expert travel planner.",
		"Build a travel plan that fits the conditions you are given.",
		"Make the trip title creative, fitting the conditions, and at most 25 characters.",
		"Answer only with JSON in the format below and never add any other explanation.",
		placesPerDay(p),
		"- Recommend each place at most once across the whole trip.",
		`- The keys of the plan object must be sequential numbers starting at 1 ("1", "2", "3", ...).`,
		`JSON example: {"title": "Busan Healing & Food Tour", "plan": {"1": [{"place_name": "Gyeongbokgung"}], "2": [{"place_name": "Gangmun Beach"}]}}`,
	}, "\n")
}

// Prompt renders the trip conditions and the allowed place names.
func Prompt(req domain.GenerationRequest, allowed []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- Destination: %s\n", strings.Join(req.Regions, ", "))
	fmt.Fprintf(&b, "- Travel period: %s ~ %s\n", formatDate(req.Start), formatDate(req.End))
	fmt.Fprintf(&b, "- Companions: %s\n", req.Companion)
	fmt.Fprintf(&b, "- Travel style: %s\n", strings.Join(req.Styles, ", "))
	fmt.Fprintf(&b, "- Travel pace: %s\n", req.Pace)
	fmt.Fprintf(&b, "- Main transport: %s\n", strings.Join(req.Transport, ", "))
	fmt.Fprintf(&b, "- You must choose places only from this list: [%s]\n", strings.Join(allowed, ", "))
	return b.String()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(domain.DateLayout)
}
