package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/backpackor/planner/internal/domain"
)

// ListRegions handles GET /regions?prefix=.
func (s *Server) ListRegions(w http.ResponseWriter, r *http.Request) {
	regions, err := s.catalog.ListRegions(r.Context(), r.URL.Query().Get("prefix"))
	if err != nil {
		s.respondErr(w, r, "region", err)
		return
	}
	writeJSON(w, http.StatusOK, regions)
}

// ListPlaces handles GET /places.
// Query: region (repeatable), q, sort (popularity_desc, review_desc,
// rating_desc), page, limit.
func (s *Server) ListPlaces(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		regions *[]string
		query   *string
		sort    *string
	)
	for name, dest := range map[string]any{"region": &regions, "q": &query, "sort": &sort} {
		if err := bindQuery(q, name, true, dest); err != nil {
			badRequest(w, err.Error())
			return
		}
	}
	page, err := pageParams(q)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	var filter domain.PlaceFilter
	if regions != nil {
		filter.Regions = *regions
	}
	if query != nil {
		filter.Query = *query
	}
	if sort != nil {
		filter.Sort = domain.PlaceSort(*sort)
	}

	places, total, err := s.catalog.List(r.Context(), filter, page)
	if err != nil {
		s.respondErr(w, r, "place", err)
		return
	}
	writeJSON(w, http.StatusOK, placeList{
		Data:       places,
		Pagination: pagination{Page: page.Page, Limit: page.Limit, Total: int(total)},
	})
}

// GetPlace handles GET /places/{placeId}.
func (s *Server) GetPlace(w http.ResponseWriter, r *http.Request) {
	p, err := s.catalog.GetByID(r.Context(), chi.URLParam(r, "placeId"))
	if err != nil {
		s.respondErr(w, r, "place", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
