package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/backpackor/planner/internal/domain"
	"github.com/backpackor/planner/testutil"
)

func beginTx(t *testing.T) pgx.Tx {
	t.Helper()
	return testutil.BeginTx(t)
}

// seedRegion inserts a region and returns its id.
func seedRegion(t *testing.T, tx pgx.Tx, name string) int64 {
	t.Helper()
	var id int64
	err := tx.QueryRow(context.Background(),
		`INSERT INTO region (region_name) VALUES ($1) RETURNING region_id`, name).Scan(&id)
	require.NoError(t, err, "seed region %q", name)
	return id
}

type placeSeed struct {
	id, name  string
	lat, lng  *float64
	rating    *float64
	reviews   *int
	favorites *int
}

func seedPlace(t *testing.T, tx pgx.Tx, regionID int64, p placeSeed) {
	t.Helper()
	_, err := tx.Exec(context.Background(), `
		INSERT INTO place (place_id, place_name, region_id, latitude, longitude,
		                   average_rating, review_count, favorite_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.id, p.name, regionID, p.lat, p.lng, p.rating, p.reviews, p.favorites)
	require.NoError(t, err, "seed place %q", p.id)
}

func ptr[T any](v T) *T { return &v }

// tripFixture returns a header with sensible defaults; override fields as needed.
func tripFixture() domain.TripHeader {
	return domain.TripHeader{
		OwnerID:   uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		Title:     "Coastal Weekend",
		StartDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC),
	}
}
