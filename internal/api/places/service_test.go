package places

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-trip-itinerary/internal/types"
)

type MockPlaceProvider struct {
	mock.Mock
}

func (m *MockPlaceProvider) SearchPlaces(ctx context.Context, destination, query string, filters types.SearchFilters) ([]types.RawPlace, error) {
	args := m.Called(ctx, destination, query, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.RawPlace), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(discardWriter{}, &slog.HandlerOptions{Level: slog.LevelError}))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

type MockDurationEstimator struct {
	mock.Mock
}

func (m *MockDurationEstimator) Estimate(ctx context.Context, poi types.CandidatePOI) float64 {
	args := m.Called(ctx, poi)
	return args.Get(0).(float64)
}

func newPoolTestService(provider PlaceSearchProvider) *ServiceImpl {
	return NewServiceImpl(provider, nil, testLogger())
}

// stubAllSearches installs a catch-all expectation so individual tests only
// spell out the searches they care about. Register it after the specific
// expectations, mock matching is first-registered-wins.
func stubAllSearches(provider *MockPlaceProvider) {
	provider.On("SearchPlaces", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]types.RawPlace{}, nil)
}

func TestBuildCandidatePool_PreferenceProvenanceWinsOverGeneral(t *testing.T) {
	provider := new(MockPlaceProvider)
	provider.On("SearchPlaces", mock.Anything, "Kyoto", "best temples experiences", mock.Anything).
		Return([]types.RawPlace{
			{PlaceID: "p1", Name: "Kinkaku-ji", Types: []string{"temple"}, Rating: 4.8},
		}, nil)
	provider.On("SearchPlaces", mock.Anything, "Kyoto", "top tourist attractions", mock.Anything).
		Return([]types.RawPlace{
			{PlaceID: "p1", Name: "Kinkaku-ji", Types: []string{"temple"}, Rating: 4.8},
			{PlaceID: "p2", Name: "Nijo Castle", Types: []string{"castle"}, Rating: 4.6},
		}, nil)

	stubAllSearches(provider)
	svc := newPoolTestService(provider)
	pool, err := svc.BuildCandidatePool(context.Background(), "Kyoto", types.NewPreferenceSet("temples"), 3)
	require.NoError(t, err)
	require.Len(t, pool, 2)

	byID := make(map[string]types.CandidatePOI, len(pool))
	for _, poi := range pool {
		byID[poi.PlaceID] = poi
	}
	// The duplicate keeps the preference provenance because preference
	// searches are merged first.
	assert.Equal(t, "temples", byID["p1"].Source)
	assert.True(t, byID["p1"].IsPreferenceSourced())
	assert.Equal(t, types.SourceGeneral, byID["p2"].Source)
}

func TestBuildCandidatePool_FailedSearchShrinksPoolOnly(t *testing.T) {
	provider := new(MockPlaceProvider)
	provider.On("SearchPlaces", mock.Anything, "Lisbon", "best museums and galleries", mock.Anything).
		Return(nil, errors.New("upstream timeout"))
	provider.On("SearchPlaces", mock.Anything, "Lisbon", "top tourist attractions", mock.Anything).
		Return([]types.RawPlace{
			{PlaceID: "g1", Name: "Belem Tower", Types: []string{"monument"}, Rating: 4.7},
		}, nil)

	stubAllSearches(provider)
	svc := newPoolTestService(provider)
	pool, err := svc.BuildCandidatePool(context.Background(), "Lisbon", nil, 2)
	require.NoError(t, err)
	require.Len(t, pool, 1)
	assert.Equal(t, "g1", pool[0].PlaceID)
}

func TestBuildCandidatePool_AllSearchesFailYieldsEmptyPool(t *testing.T) {
	provider := new(MockPlaceProvider)
	provider.On("SearchPlaces", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("provider down"))

	svc := newPoolTestService(provider)
	pool, err := svc.BuildCandidatePool(context.Background(), "Lisbon", types.NewPreferenceSet("food"), 2)
	require.NoError(t, err)
	assert.Empty(t, pool)
}

func TestBuildCandidatePool_SafetyFilterDropsDisallowedPlaces(t *testing.T) {
	provider := new(MockPlaceProvider)
	provider.On("SearchPlaces", mock.Anything, "Amsterdam", "top tourist attractions", mock.Anything).
		Return([]types.RawPlace{
			{PlaceID: "ok1", Name: "Rijksmuseum", Types: []string{"museum"}, Rating: 4.8},
			{PlaceID: "bad1", Name: "Neon Strip Club", Types: []string{"night_club"}},
			{PlaceID: "bad2", Name: "Club X", Types: []string{"adult_entertainment"}},
		}, nil)

	stubAllSearches(provider)
	svc := newPoolTestService(provider)
	pool, err := svc.BuildCandidatePool(context.Background(), "Amsterdam", nil, 1)
	require.NoError(t, err)
	require.Len(t, pool, 1)
	assert.Equal(t, "Rijksmuseum", pool[0].Name)
}

func TestBuildCandidatePool_DecoratesCategoryAndDuration(t *testing.T) {
	provider := new(MockPlaceProvider)
	provider.On("SearchPlaces", mock.Anything, "Rome", "best restaurants and local food", mock.Anything).
		Return([]types.RawPlace{
			{PlaceID: "d1", Name: "Osteria Romana", Rating: 4.5, UserRatingsTotal: 900},
		}, nil)
	provider.On("SearchPlaces", mock.Anything, "Rome", "top tourist attractions", mock.Anything).
		Return([]types.RawPlace{
			{PlaceID: "g1", Name: "Colosseum Tours", Types: []string{"historical_site"}, Rating: 4.8},
		}, nil)

	stubAllSearches(provider)
	svc := newPoolTestService(provider)
	pool, err := svc.BuildCandidatePool(context.Background(), "Rome", nil, 1)
	require.NoError(t, err)
	require.Len(t, pool, 2)

	byID := make(map[string]types.CandidatePOI, len(pool))
	for _, poi := range pool {
		byID[poi.PlaceID] = poi
	}
	dining := byID["d1"]
	assert.Equal(t, types.SourceDining, dining.Source)
	assert.Equal(t, "restaurant", dining.Category)
	assert.Greater(t, dining.EstimatedDuration, 0.0)

	general := byID["g1"]
	assert.Equal(t, types.SourceGeneral, general.Source)
	assert.Greater(t, general.EstimatedDuration, 0.0)
}

func TestBuildCandidatePool_UsesInjectedEstimator(t *testing.T) {
	provider := new(MockPlaceProvider)
	provider.On("SearchPlaces", mock.Anything, "Rome", "top tourist attractions", mock.Anything).
		Return([]types.RawPlace{
			{PlaceID: "g1", Name: "Pantheon", Types: []string{"monument"}, Rating: 4.8},
		}, nil)
	stubAllSearches(provider)

	estimator := new(MockDurationEstimator)
	estimator.On("Estimate", mock.Anything, mock.Anything).Return(4.2)

	svc := NewServiceImpl(provider, estimator, testLogger())
	pool, err := svc.BuildCandidatePool(context.Background(), "Rome", nil, 1)
	require.NoError(t, err)
	require.Len(t, pool, 1)

	assert.Equal(t, 4.2, pool[0].EstimatedDuration)
	estimator.AssertExpectations(t)
}

func TestBuildSearchSpecs_PreferenceSearchesComeFirst(t *testing.T) {
	specs := buildSearchSpecs(types.NewPreferenceSet("temples", "street food"), 3)

	require.GreaterOrEqual(t, len(specs), 9)
	assert.Equal(t, "best temples experiences", specs[0].query)
	assert.Equal(t, "temples", specs[0].source)
	assert.Equal(t, "best street food experiences", specs[1].query)
	assert.Equal(t, "street food", specs[1].source)

	// Generic battery scales with trip length.
	assert.Equal(t, "top tourist attractions", specs[2].query)
	assert.Equal(t, 20, specs[2].filters.Limit)

	long := buildSearchSpecs(nil, 5)
	assert.Equal(t, 30, long[0].filters.Limit)
}
