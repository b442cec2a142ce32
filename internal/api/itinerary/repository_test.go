package itinerary

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-trip-itinerary/internal/types"
)

func newMockRepository(t *testing.T) (*PostgresRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)
	return NewPostgresRepository(mockPool, testLogger()), mockPool
}

func sampleDays() []types.DayPlan {
	return []types.DayPlan{
		{
			Day:   1,
			Title: "Day 1: temples",
			Morning: []types.CandidatePOI{
				{PlaceID: "temple1", Name: "Kinkaku-ji", Source: "temples", EstimatedDuration: 2},
			},
			TotalDuration:    2,
			FeasibilityScore: 0.9,
		},
	}
}

func TestPostgresRepository_SaveItinerary(t *testing.T) {
	repo, mockPool := newMockRepository(t)

	id := uuid.New()
	saved := types.SavedItinerary{
		ID:          id,
		Destination: "Kyoto",
		DayCount:    1,
		Days:        sampleDays(),
		CreatedAt:   time.Now(),
	}
	payload, err := json.Marshal(saved.Days)
	require.NoError(t, err)

	mockPool.ExpectQuery(`INSERT INTO itineraries`).
		WithArgs(saved.ID, saved.Destination, saved.DayCount, payload, saved.CreatedAt).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(id))

	got, err := repo.SaveItinerary(context.Background(), saved)
	require.NoError(t, err)
	assert.Equal(t, id, got)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPostgresRepository_SaveItinerary_InsertError(t *testing.T) {
	repo, mockPool := newMockRepository(t)

	mockPool.ExpectQuery(`INSERT INTO itineraries`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.SaveItinerary(context.Background(), types.SavedItinerary{
		ID:          uuid.New(),
		Destination: "Kyoto",
		DayCount:    1,
		Days:        sampleDays(),
	})
	assert.ErrorContains(t, err, "failed to insert itinerary")
}

func TestPostgresRepository_GetItinerary(t *testing.T) {
	repo, mockPool := newMockRepository(t)

	id := uuid.New()
	created := time.Now()
	payload, err := json.Marshal(sampleDays())
	require.NoError(t, err)

	mockPool.ExpectQuery(`SELECT id, destination, day_count, days, created_at`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"id", "destination", "day_count", "days", "created_at"}).
			AddRow(id, "Kyoto", 1, payload, created))

	got, err := repo.GetItinerary(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Kyoto", got.Destination)
	require.Len(t, got.Days, 1)
	assert.Equal(t, "Day 1: temples", got.Days[0].Title)
	require.Len(t, got.Days[0].Morning, 1)
	assert.Equal(t, "temple1", got.Days[0].Morning[0].PlaceID)
}

func TestPostgresRepository_GetItinerary_NotFound(t *testing.T) {
	repo, mockPool := newMockRepository(t)

	id := uuid.New()
	mockPool.ExpectQuery(`SELECT id, destination, day_count, days, created_at`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{"id", "destination", "day_count", "days", "created_at"}))

	got, err := repo.GetItinerary(context.Background(), id)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPostgresRepository_ListItineraries(t *testing.T) {
	repo, mockPool := newMockRepository(t)

	payload, err := json.Marshal(sampleDays())
	require.NoError(t, err)
	created := time.Now()

	mockPool.ExpectQuery(`SELECT COUNT\(\*\) FROM itineraries`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(12))
	mockPool.ExpectQuery(`SELECT id, destination, day_count, days, created_at`).
		WithArgs(10, 10).
		WillReturnRows(pgxmock.NewRows([]string{"id", "destination", "day_count", "days", "created_at"}).
			AddRow(uuid.New(), "Kyoto", 1, payload, created).
			AddRow(uuid.New(), "Lisbon", 1, payload, created))

	resp, err := repo.ListItineraries(context.Background(), 2, 10)
	require.NoError(t, err)
	assert.Equal(t, 12, resp.TotalRecords)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 10, resp.PageSize)
	require.Len(t, resp.Itineraries, 2)
	assert.Equal(t, "Lisbon", resp.Itineraries[1].Destination)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
