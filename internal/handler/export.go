package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/backpackor/planner/internal/domain"
)

// csvHeaders is the first row of every itinerary CSV.
var csvHeaders = []string{
	"trip_id", "trip_title", "day_number", "date", "visit_order",
	"place_id", "place_name", "region_name", "latitude", "longitude",
}

type itineraryRow struct {
	TripID     string   `json:"trip_id"`
	TripTitle  string   `json:"trip_title"`
	DayNumber  int      `json:"day_number"`
	Date       string   `json:"date"`
	VisitOrder int      `json:"visit_order"`
	PlaceID    string   `json:"place_id"`
	PlaceName  string   `json:"place_name"`
	RegionName string   `json:"region_name,omitempty"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
}

// ExportTrip handles GET /trips/{tripId}/export.
// ?format=csv returns CSV as an attachment; anything else returns JSON.
func (s *Server) ExportTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "tripId")
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	var format *string
	if err := bindQuery(r.URL.Query(), "format", true, &format); err != nil {
		badRequest(w, err.Error())
		return
	}

	rows, err := s.trips.Export(r.Context(), id)
	if err != nil {
		s.respondErr(w, r, "trip", err)
		return
	}

	if format != nil && *format == "csv" {
		body := buildCSV(rows)
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="itinerary-`+id.String()+`.csv"`)
		w.Header().Set("Content-Length", strconv.Itoa(body.Len()))
		w.WriteHeader(http.StatusOK)
		_, _ = body.WriteTo(w)
		return
	}

	out := make([]itineraryRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, itineraryRow(row))
	}
	writeJSON(w, http.StatusOK, out)
}

// buildCSV encodes rows with a header line. Unknown coordinates are empty cells.
func buildCSV(rows []domain.ItineraryRow) *bytes.Buffer {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	_ = cw.Write(csvHeaders) // bytes.Buffer writes never fail
	for _, r := range rows {
		_ = cw.Write([]string{
			r.TripID,
			r.TripTitle,
			strconv.Itoa(r.DayNumber),
			r.Date,
			strconv.Itoa(r.VisitOrder),
			r.PlaceID,
			r.PlaceName,
			r.RegionName,
			formatCoord(r.Latitude),
			formatCoord(r.Longitude),
		})
	}
	cw.Flush()
	return &buf
}

func formatCoord(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
