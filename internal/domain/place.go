package domain

import "strings"

// Place is a selectable catalog entry. Coordinates stay nil until the place
// has been geocoded; the rating aggregates stay nil until the first review.
type Place struct {
	ID            string   `json:"place_id"`
	Name          string   `json:"place_name"`
	RegionName    string   `json:"region_name,omitempty"`
	Address       string   `json:"address,omitempty"`
	ImageURL      string   `json:"image_url,omitempty"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	AverageRating *float64 `json:"average_rating"`
	ReviewCount   *int     `json:"review_count"`
	FavoriteCount *int     `json:"favorite_count"`
}

// HasCoordinates reports whether both latitude and longitude are known.
func (p Place) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// FillFrom copies any field of other that p is missing. Used after a
// coordinate lookup, where the catalog row may be more complete than the
// place the client sent.
func (p Place) FillFrom(other Place) Place {
	if p.Name == "" {
		p.Name = other.Name
	}
	if p.RegionName == "" {
		p.RegionName = other.RegionName
	}
	if p.Address == "" {
		p.Address = other.Address
	}
	if p.ImageURL == "" {
		p.ImageURL = other.ImageURL
	}
	if p.Latitude == nil {
		p.Latitude = other.Latitude
	}
	if p.Longitude == nil {
		p.Longitude = other.Longitude
	}
	if p.AverageRating == nil {
		p.AverageRating = other.AverageRating
	}
	if p.ReviewCount == nil {
		p.ReviewCount = other.ReviewCount
	}
	if p.FavoriteCount == nil {
		p.FavoriteCount = other.FavoriteCount
	}
	return p
}

// Merge applies a realtime rating patch. Nil patch fields are left untouched.
func (p Place) Merge(patch PlaceRatingPatch) Place {
	if patch.AverageRating != nil {
		v := *patch.AverageRating
		p.AverageRating = &v
	}
	if patch.ReviewCount != nil {
		v := *patch.ReviewCount
		p.ReviewCount = &v
	}
	if patch.FavoriteCount != nil {
		v := *patch.FavoriteCount
		p.FavoriteCount = &v
	}
	return p
}

// PlaceRatingPatch is a partial Place pushed by the realtime feed whenever
// a place's rating aggregates change.
type PlaceRatingPatch struct {
	PlaceID       string   `json:"place_id"`
	AverageRating *float64 `json:"average_rating,omitempty"`
	ReviewCount   *int     `json:"review_count,omitempty"`
	FavoriteCount *int     `json:"favorite_count,omitempty"`
}

// Region groups places; users select one or more when generating a plan.
type Region struct {
	ID   int64  `json:"region_id"`
	Name string `json:"region_name"`
}

// PlaceSort selects the catalog ordering.
type PlaceSort string

const (
	SortPopularity PlaceSort = "popularity_desc"
	SortReviews    PlaceSort = "review_desc"
	SortRating     PlaceSort = "rating_desc"
)

// ParsePlaceSort maps a query value onto a PlaceSort. Empty and unknown
// values fall back to SortPopularity.
func ParsePlaceSort(s string) PlaceSort {
	switch PlaceSort(strings.ToLower(strings.TrimSpace(s))) {
	case SortReviews:
		return SortReviews
	case SortRating:
		return SortRating
	default:
		return SortPopularity
	}
}

// PlaceFilter narrows a catalog listing. An empty Regions slice means every
// region; Query is a case-insensitive substring match on the place name.
type PlaceFilter struct {
	Regions []string
	Query   string
	Sort    PlaceSort
}
