package handler

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/backpackor/planner/internal/domain"
	"github.com/backpackor/planner/internal/service"
)

// Wire types. Dates travel as "2006-01-02" via openapi_types.Date.

type pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

type placeList struct {
	Data       []domain.Place `json:"data"`
	Pagination pagination     `json:"pagination"`
}

type tripHeader struct {
	ID        uuid.UUID          `json:"trip_id"`
	OwnerID   uuid.UUID          `json:"user_id"`
	Title     string             `json:"trip_title"`
	StartDate openapi_types.Date `json:"trip_start_date"`
	EndDate   openapi_types.Date `json:"trip_end_date"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

type tripList struct {
	Data       []tripHeader `json:"data"`
	Pagination pagination   `json:"pagination"`
}

type plannedPlace struct {
	domain.Place
	VisitOrder int `json:"visit_order"`
}

type planDay struct {
	DayNumber int                `json:"day_number"`
	Date      openapi_types.Date `json:"date"`
	Places    []plannedPlace     `json:"places"`
}

type savedTrip struct {
	Trip tripHeader `json:"trip"`
	Days []planDay  `json:"days"`
}

type sessionResponse struct {
	ID        uuid.UUID  `json:"session_id"`
	OwnerID   uuid.UUID  `json:"user_id"`
	TripID    *uuid.UUID `json:"trip_id,omitempty"`
	Regions   []string   `json:"regions"`
	Title     string     `json:"title"`
	Source    string     `json:"source"`
	ActiveDay int        `json:"active_day"`
	Saving    bool       `json:"saving"`
	Days      []planDay  `json:"days"`
	Dropped   []string   `json:"dropped,omitempty"`
}

type openSessionRequest struct {
	StartDate *openapi_types.Date `json:"start_date"`
	EndDate   *openapi_types.Date `json:"end_date"`
	Regions   []string            `json:"regions" validate:"omitempty,dive,notblank"`
	OwnerID   *uuid.UUID          `json:"owner_id"`
	TripID    *uuid.UUID          `json:"trip_id"`
	// AIPlan is the body returned by GET /generate-plan.
	AIPlan json.RawMessage `json:"ai_plan"`
	Title  string          `json:"title" validate:"max=100"`
}

type datesRequest struct {
	StartDate *openapi_types.Date `json:"start_date"`
	EndDate   *openapi_types.Date `json:"end_date"`
}

type titleRequest struct {
	Title string `json:"title" validate:"max=100"`
}

type activeDayRequest struct {
	Day int `json:"day" validate:"gte=1"`
}

type addPlaceRequest struct {
	PlaceID string `json:"place_id" validate:"notblank"`
}

type reorderRequest struct {
	FromPlaceID string `json:"from_place_id" validate:"notblank"`
	ToPlaceID   string `json:"to_place_id" validate:"notblank"`
}

func toDate(t time.Time) openapi_types.Date {
	return openapi_types.Date{Time: t}
}

func fromDate(d *openapi_types.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

func headerToResponse(h domain.TripHeader) tripHeader {
	return tripHeader{
		ID:        h.ID,
		OwnerID:   h.OwnerID,
		Title:     h.Title,
		StartDate: toDate(h.StartDate),
		EndDate:   toDate(h.EndDate),
		CreatedAt: h.CreatedAt,
		UpdatedAt: h.UpdatedAt,
	}
}

// savedTripToResponse lists every day of the trip's range, including empty ones.
func savedTripToResponse(t domain.SavedTrip) savedTrip {
	out := savedTrip{Trip: headerToResponse(t.Header), Days: []planDay{}}
	days, err := domain.NewDayRange(&t.Header.StartDate, &t.Header.EndDate)
	if err != nil {
		return out
	}
	for _, d := range days {
		pd := planDay{DayNumber: d.Day, Date: toDate(d.Date), Places: []plannedPlace{}}
		for _, row := range t.Days[d.Day] {
			pd.Places = append(pd.Places, plannedPlace{Place: row.Place, VisitOrder: row.VisitOrder})
		}
		out.Days = append(out.Days, pd)
	}
	return out
}

func snapshotToResponse(s service.EditorSnapshot) sessionResponse {
	out := sessionResponse{
		ID:        s.ID,
		OwnerID:   s.OwnerID,
		Regions:   s.Regions,
		Title:     s.State.Title,
		Source:    s.State.Source.String(),
		ActiveDay: s.State.ActiveDay,
		Saving:    s.Saving,
		Days:      make([]planDay, 0, len(s.State.Days)),
		Dropped:   s.Dropped,
	}
	if out.Regions == nil {
		out.Regions = []string{}
	}
	if s.TripID != uuid.Nil {
		id := s.TripID
		out.TripID = &id
	}
	for _, d := range s.State.Days {
		pd := planDay{DayNumber: d.Day, Date: toDate(d.Date), Places: []plannedPlace{}}
		for _, a := range s.State.Plan.Day(d.Day) {
			pd.Places = append(pd.Places, plannedPlace{Place: a.Place, VisitOrder: a.VisitOrder})
		}
		out.Days = append(out.Days, pd)
	}
	return out
}
