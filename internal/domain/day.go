package domain

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// MaxTripDays bounds the length of a trip.
const MaxTripDays = 365

// Day is one calendar day of a trip. Day numbers start at 1 and have no gaps.
type Day struct {
	Day  int       `json:"day"`
	Date time.Time `json:"date"`
}

// NewDayRange derives the ordered days between start and end, both
// inclusive. If either date is nil the range is empty. An end date before
// the start date, or a range longer than MaxTripDays, is rejected with
// ErrValidation.
//
// Dates are reduced to their calendar day in UTC, so a time-of-day component
// never changes the number of days.
func NewDayRange(start, end *time.Time) ([]Day, error) {
	if start == nil || end == nil {
		return []Day{}, nil
	}
	s, e := truncateDay(*start), truncateDay(*end)
	if e.Before(s) {
		return nil, fmt.Errorf("%w: end date %s is before start date %s",
			ErrValidation, e.Format(DateLayout), s.Format(DateLayout))
	}
	// Sub saturates for far-apart dates, which still exceeds the limit.
	if n := int(e.Sub(s)/(24*time.Hour)) + 1; n > MaxTripDays {
		return nil, fmt.Errorf("%w: trip spans %d days, at most %d allowed",
			ErrValidation, n, MaxTripDays)
	}

	days := []Day{}
	for d, n := s, 1; !d.After(e); d, n = s.AddDate(0, 0, n), n+1 {
		days = append(days, Day{Day: n, Date: d})
	}
	return days, nil
}

// truncateDay keeps only the calendar date of t, expressed at UTC midnight.
func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a "2006-01-02" date. Empty input yields nil.
func ParseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date %q", ErrValidation, s)
	}
	return &t, nil
}
