package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/backpackor/planner/internal/service"
)

// sessionID reads the {sessionId} path parameter, answering 400 on failure.
func sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := pathUUID(r, "sessionId")
	if err != nil {
		badRequest(w, err.Error())
		return uuid.Nil, false
	}
	return id, true
}

// sessionDay reads {sessionId} and {day}.
func sessionDay(w http.ResponseWriter, r *http.Request) (uuid.UUID, int, bool) {
	id, ok := sessionID(w, r)
	if !ok {
		return uuid.Nil, 0, false
	}
	day, err := pathDay(r)
	if err != nil {
		badRequest(w, err.Error())
		return uuid.Nil, 0, false
	}
	return id, day, true
}

func (s *Server) writeSession(w http.ResponseWriter, r *http.Request, status int, snap service.EditorSnapshot, err error) {
	if err != nil {
		s.respondErr(w, r, "session", err)
		return
	}
	writeJSON(w, status, snapshotToResponse(snap))
}

// OpenSession handles POST /editor/sessions.
func (s *Server) OpenSession(w http.ResponseWriter, r *http.Request) {
	var req openSessionRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	in := service.OpenInput{
		Start:   fromDate(req.StartDate),
		End:     fromDate(req.EndDate),
		Regions: req.Regions,
		OwnerID: s.defaultOwner,
		TripID:  req.TripID,
		Title:   req.Title,
	}
	if req.OwnerID != nil {
		in.OwnerID = *req.OwnerID
	}
	if len(req.AIPlan) > 0 && string(req.AIPlan) != "null" {
		in.AIPlan = req.AIPlan
	}

	snap, err := s.editor.Open(r.Context(), in)
	if err != nil {
		// A missing trip to load from is reported as such, not as a missing session.
		s.respondErr(w, r, "trip", err)
		return
	}
	writeJSON(w, http.StatusCreated, snapshotToResponse(snap))
}

// GetSession handles GET /editor/sessions/{sessionId}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	snap, err := s.editor.Get(r.Context(), id)
	s.writeSession(w, r, http.StatusOK, snap, err)
}

// DiscardSession handles DELETE /editor/sessions/{sessionId}.
func (s *Server) DiscardSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	if err := s.editor.Discard(r.Context(), id); err != nil {
		s.respondErr(w, r, "session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetSessionDates handles PUT /editor/sessions/{sessionId}/dates.
// Omitting either date leaves the days and plan unchanged.
func (s *Server) SetSessionDates(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req datesRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	snap, err := s.editor.SetDates(r.Context(), id, fromDate(req.StartDate), fromDate(req.EndDate))
	s.writeSession(w, r, http.StatusOK, snap, err)
}

// SetSessionTitle handles PUT /editor/sessions/{sessionId}/title.
func (s *Server) SetSessionTitle(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req titleRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	snap, err := s.editor.SetTitle(r.Context(), id, req.Title)
	s.writeSession(w, r, http.StatusOK, snap, err)
}

// SetSessionActiveDay handles PUT /editor/sessions/{sessionId}/active-day.
func (s *Server) SetSessionActiveDay(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	var req activeDayRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	snap, err := s.editor.SetActiveDay(r.Context(), id, req.Day)
	s.writeSession(w, r, http.StatusOK, snap, err)
}

// AddSessionPlace handles POST /editor/sessions/{sessionId}/days/{day}/places.
// A place already on the plan is a no-op answered with 200; an insert with 201.
func (s *Server) AddSessionPlace(w http.ResponseWriter, r *http.Request) {
	id, day, ok := sessionDay(w, r)
	if !ok {
		return
	}
	s.addPlace(w, r, id, day)
}

// AddSessionActivePlace handles POST /editor/sessions/{sessionId}/places,
// adding to the session's active day.
func (s *Server) AddSessionActivePlace(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	s.addPlace(w, r, id, 0)
}

func (s *Server) addPlace(w http.ResponseWriter, r *http.Request, id uuid.UUID, day int) {
	var req addPlaceRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	snap, added, err := s.editor.AddPlace(r.Context(), id, req.PlaceID, day)
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	s.writeSession(w, r, status, snap, err)
}

// RemoveSessionPlace handles DELETE /editor/sessions/{sessionId}/days/{day}/places/{placeId}.
func (s *Server) RemoveSessionPlace(w http.ResponseWriter, r *http.Request) {
	id, day, ok := sessionDay(w, r)
	if !ok {
		return
	}
	var placeID string
	if err := bindPath(r, "placeId", &placeID); err != nil {
		badRequest(w, err.Error())
		return
	}
	snap, err := s.editor.RemovePlace(r.Context(), id, day, placeID)
	s.writeSession(w, r, http.StatusOK, snap, err)
}

// ReorderSessionDay handles POST /editor/sessions/{sessionId}/days/{day}/reorder.
func (s *Server) ReorderSessionDay(w http.ResponseWriter, r *http.Request) {
	id, day, ok := sessionDay(w, r)
	if !ok {
		return
	}
	var req reorderRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	snap, err := s.editor.Reorder(r.Context(), id, day, req.FromPlaceID, req.ToPlaceID)
	s.writeSession(w, r, http.StatusOK, snap, err)
}

// SaveSession handles POST /editor/sessions/{sessionId}/save.
func (s *Server) SaveSession(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	header, err := s.editor.Save(r.Context(), id)
	if err != nil {
		s.respondErr(w, r, "session", err)
		return
	}
	writeJSON(w, http.StatusOK, headerToResponse(header))
}
