package handler

import (
	"net/http"

	"github.com/google/uuid"
)

// ListTrips handles GET /trips?owner_id=&page=&limit=.
// Without owner_id the configured default owner is used.
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var owner *uuid.UUID
	if err := bindQuery(q, "owner_id", true, &owner); err != nil {
		badRequest(w, err.Error())
		return
	}
	page, err := pageParams(q)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	ownerID := s.defaultOwner
	if owner != nil {
		ownerID = *owner
	}

	trips, total, err := s.trips.ListByOwner(r.Context(), ownerID, page)
	if err != nil {
		s.respondErr(w, r, "trip", err)
		return
	}

	data := make([]tripHeader, len(trips))
	for i, t := range trips {
		data[i] = headerToResponse(t)
	}
	writeJSON(w, http.StatusOK, tripList{
		Data:       data,
		Pagination: pagination{Page: page.Page, Limit: page.Limit, Total: int(total)},
	})
}

// GetTrip handles GET /trips/{tripId}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "tripId")
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	trip, err := s.trips.Load(r.Context(), id)
	if err != nil {
		s.respondErr(w, r, "trip", err)
		return
	}
	writeJSON(w, http.StatusOK, savedTripToResponse(trip))
}

// DeleteTrip handles DELETE /trips/{tripId}.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "tripId")
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	if err := s.trips.Delete(r.Context(), id); err != nil {
		s.respondErr(w, r, "trip", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
