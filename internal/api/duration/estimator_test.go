package duration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-trip-itinerary/internal/types"
)

func TestEstimate_LandmarkOverrides(t *testing.T) {
	e := NewEstimator()

	tests := []struct {
		name     string
		poiName  string
		expected float64
	}{
		{"theme park gets a full day", "Disneyland Paris", 8.0},
		{"flagship museum", "Louvre Museum", 4.0},
		{"famous tower includes queuing", "Eiffel Tower", 2.0},
		{"palace complex", "Palace of Versailles", 4.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Estimate(types.CandidatePOI{Name: tt.poiName})
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestEstimate_LandmarkMatchIsCaseInsensitive(t *testing.T) {
	e := NewEstimator()
	assert.Equal(t, 8.0, e.Estimate(types.CandidatePOI{Name: "DISNEYLAND Resort"}))
}

func TestEstimate_TypeTableLookup(t *testing.T) {
	e := NewEstimator()

	got := e.Estimate(types.CandidatePOI{
		Name:  "City Aquarium",
		Types: []string{"aquarium"},
	})
	assert.Equal(t, 2.5, got)

	// Viewpoints are quick stops.
	got = e.Estimate(types.CandidatePOI{
		Name:  "Harbour Lookout",
		Types: []string{"viewpoint"},
	})
	assert.Equal(t, 0.5, got)
}

func TestEstimate_MoreSpecificTypeWins(t *testing.T) {
	e := NewEstimator()

	// "botanical_garden" is longer than "park" so it is checked first.
	got := e.Estimate(types.CandidatePOI{
		Name:  "Central Gardens",
		Types: []string{"park", "botanical_garden"},
	})
	assert.Equal(t, 2.0, got)
}

func TestEstimate_KeywordAdjustments(t *testing.T) {
	e := NewEstimator()

	fastFood := e.Estimate(types.CandidatePOI{Name: "Burger Fast Food Joint", Types: []string{"restaurant"}})
	fineDining := e.Estimate(types.CandidatePOI{Name: "Le Jardin Fine Dining", Types: []string{"restaurant"}})
	regular := e.Estimate(types.CandidatePOI{Name: "Trattoria Rossi", Types: []string{"restaurant"}})

	assert.Less(t, fastFood, regular)
	assert.Greater(t, fineDining, regular)

	outlet := e.Estimate(types.CandidatePOI{Name: "Seaside Outlet Village", Types: []string{"department_store"}})
	assert.Greater(t, outlet, e.Estimate(types.CandidatePOI{Name: "Plain Store", Types: []string{"department_store"}}))

	national := e.Estimate(types.CandidatePOI{Name: "Great National Reserve", Types: []string{"park"}})
	assert.Greater(t, national, e.Estimate(types.CandidatePOI{Name: "Town Green", Types: []string{"park"}}))

	resortBeach := e.Estimate(types.CandidatePOI{Name: "Sunset Beach Resort", Types: []string{"beach"}})
	assert.Greater(t, resortBeach, e.Estimate(types.CandidatePOI{Name: "Sunset Beach", Types: []string{"beach"}}))
}

func TestEstimate_CategoryFallback(t *testing.T) {
	e := NewEstimator()

	got := e.Estimate(types.CandidatePOI{
		Name:     "Mystery Stop",
		Types:    []string{"something_unmapped"},
		Category: "museum",
	})
	assert.Equal(t, 2.5, got)
}

func TestEstimate_GlobalDefault(t *testing.T) {
	e := NewEstimator()
	got := e.Estimate(types.CandidatePOI{Name: "Unknown Place"})
	assert.Equal(t, DefaultVisitHours, got)
}

func TestEstimate_DeterministicAndBounded(t *testing.T) {
	e := NewEstimator()

	pois := []types.CandidatePOI{
		{Name: "Disneyland"},
		{Name: "Louvre"},
		{Name: "Corner Cafe", Types: []string{"cafe"}},
		{Name: "Weird Spot", Types: []string{"nonsense"}},
		{Name: "Old Town Square", Types: []string{"square"}},
		{Name: "Fancy Fine Dining Tasting Menu", Types: []string{"restaurant"}},
		{Name: "Great National Reserve", Types: []string{"park"}},
	}
	for _, poi := range pois {
		first := e.Estimate(poi)
		second := e.Estimate(poi)
		require.Equal(t, first, second, "estimator must be deterministic for %s", poi.Name)
		assert.Greater(t, first, 0.0, "duration must be positive for %s", poi.Name)
		assert.LessOrEqual(t, first, MaxVisitHours, "duration must stay bounded for %s", poi.Name)
	}
}

func TestNormalizeCategory(t *testing.T) {
	assert.Equal(t, CategoryRestaurant, NormalizeCategory("Restaurant"))
	assert.Equal(t, CategoryRestaurant, NormalizeCategory("street food"))
	assert.Equal(t, CategoryMuseum, NormalizeCategory("art gallery"))
	assert.Equal(t, CategoryNature, NormalizeCategory("mountain trail"))
	assert.Equal(t, CategoryDefault, NormalizeCategory("whatever"))
	assert.Equal(t, CategoryDefault, NormalizeCategory(""))
}
