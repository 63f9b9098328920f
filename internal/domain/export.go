package domain

// ItineraryRow is a single row in a trip export: one row per planned place,
// with the trip fields repeated on every row. Trips with no places yield no
// rows.
type ItineraryRow struct {
	TripID     string
	TripTitle  string
	DayNumber  int
	Date       string // "2006-01-02"
	VisitOrder int
	PlaceID    string
	PlaceName  string
	RegionName string
	Latitude   *float64
	Longitude  *float64
}
