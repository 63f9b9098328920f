package handler

import (
	"errors"
	"net/http"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/backpackor/planner/internal/domain"
)

// GeneratePlan handles GET /generate-plan.
//
// Query: start, end (dates), companion, speed (relaxed, normal, packed),
// style, transport and region (all repeatable). Answers 200 with
// {"title": ..., "plan": {"1": [{"place_name": ...}], ...}}, 400 when the
// request is unusable (no region in particular) and 500 with a generic
// message when generation fails.
func (s *Server) GeneratePlan(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		start, end       *openapi_types.Date
		companion, speed *string
		styles           *[]string
		transport        *[]string
		regions          *[]string
	)
	binds := []struct {
		name string
		dest any
	}{
		{"start", &start}, {"end", &end},
		{"companion", &companion}, {"speed", &speed},
		{"style", &styles}, {"transport", &transport}, {"region", &regions},
	}
	for _, b := range binds {
		if err := bindQuery(q, b.name, true, b.dest); err != nil {
			badRequest(w, err.Error())
			return
		}
	}

	var req domain.GenerationRequest
	if styles != nil {
		req.Styles = *styles
	}
	if transport != nil {
		req.Transport = *transport
	}
	if regions != nil {
		req.Regions = *regions
	}
	if start != nil {
		req.Start = start.Time
	}
	if end != nil {
		req.End = end.Time
	}
	if companion != nil {
		req.Companion = *companion
	}
	if speed != nil {
		req.Pace = domain.Pace(*speed)
	}

	_, raw, err := s.generation.Generate(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			badRequest(w, unwrapMessage(err, domain.ErrValidation))
			return
		}
		s.log.ErrorContext(r.Context(), "plan generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "generation_failed", "an error occurred while generating the travel plan")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}
