package itinerary

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-trip-itinerary/internal/types"
)

func makePOIs(prefix, source string, n int, hours float64, poiTypes ...string) []types.CandidatePOI {
	out := make([]types.CandidatePOI, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, types.CandidatePOI{
			PlaceID:           fmt.Sprintf("%s%d", prefix, i),
			Name:              fmt.Sprintf("%s %d", prefix, i),
			Source:            source,
			Types:             poiTypes,
			Rating:            4.0,
			EstimatedDuration: hours,
		})
	}
	return out
}

// kyotoPool mirrors a short city break: two preferences, a generic
// attraction battery and a handful of restaurants.
func kyotoPool() []types.CandidatePOI {
	pool := makePOIs("temple", "temples", 6, 2.0, "temple")
	pool = append(pool, makePOIs("food", "street food", 6, 1.0, "restaurant")...)
	pool = append(pool, makePOIs("sight", types.SourceGeneral, 10, 2.0, "tourist_attraction")...)
	pool = append(pool, makePOIs("dine", types.SourceDining, 5, 1.5, "restaurant")...)
	return pool
}

func allocatedIDs(allocs []dayAllocation) []string {
	var ids []string
	for _, a := range allocs {
		for _, poi := range a.POIs {
			ids = append(ids, poi.PlaceID)
		}
	}
	return ids
}

func TestAllocateAcrossDays_NoPOIReuse(t *testing.T) {
	allocs := allocateAcrossDays(kyotoPool(), 3)
	require.Len(t, allocs, 3)

	seen := make(map[string]int)
	for _, id := range allocatedIDs(allocs) {
		seen[id]++
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "POI %s allocated more than once", id)
	}
}

func TestAllocateAcrossDays_PreferenceCoverageIsBalanced(t *testing.T) {
	allocs := allocateAcrossDays(kyotoPool(), 3)

	for _, alloc := range allocs {
		prefCount := 0
		for _, poi := range alloc.POIs {
			if poi.IsPreferenceSourced() {
				prefCount++
			}
		}
		// 12 preference POIs over 3 days, capped at 2 per day: every day
		// gets its full share.
		assert.Equal(t, maxPreferencePerDay, prefCount, "day %d", alloc.Day)
	}
}

func TestAllocateAcrossDays_LateDaysAreNotStarved(t *testing.T) {
	// Exactly one preference POI per day once spread fairly.
	pool := makePOIs("temple", "temples", 3, 2.0, "temple")
	pool = append(pool, makePOIs("sight", types.SourceGeneral, 12, 2.0, "tourist_attraction")...)
	pool = append(pool, makePOIs("dine", types.SourceDining, 3, 1.5, "restaurant")...)

	allocs := allocateAcrossDays(pool, 3)
	for _, alloc := range allocs {
		prefCount := 0
		for _, poi := range alloc.POIs {
			if poi.IsPreferenceSourced() {
				prefCount++
			}
		}
		assert.Equal(t, 1, prefCount, "day %d should keep its fair preference share", alloc.Day)
	}
}

func TestAllocateAcrossDays_DiningRotates(t *testing.T) {
	allocs := allocateAcrossDays(kyotoPool(), 3)

	var diningIDs []string
	for _, alloc := range allocs {
		for _, poi := range alloc.POIs {
			if poi.Source == types.SourceDining {
				diningIDs = append(diningIDs, poi.PlaceID)
			}
		}
	}
	require.Len(t, diningIDs, 3)
	assert.Equal(t, []string{"dine1", "dine2", "dine3"}, diningIDs)
}

func TestAllocateAcrossDays_BackfillTopsUpShortDays(t *testing.T) {
	// No preference and no dining hits: general POIs must still fill days
	// up to the minimum.
	pool := makePOIs("sight", types.SourceGeneral, 8, 2.0, "tourist_attraction")

	allocs := allocateAcrossDays(pool, 2)
	require.Len(t, allocs, 2)
	for _, alloc := range allocs {
		assert.GreaterOrEqual(t, len(alloc.POIs), minActivitiesPerDay, "day %d", alloc.Day)
	}
}

func TestAllocateAcrossDays_ExhaustedPoolLeavesDaysShort(t *testing.T) {
	// 3 POIs over 2 days: the pool is never re-queried, later days just come
	// up short.
	pool := makePOIs("sight", types.SourceGeneral, 3, 2.0, "tourist_attraction")

	allocs := allocateAcrossDays(pool, 2)
	require.Len(t, allocs, 2)
	total := len(allocatedIDs(allocs))
	assert.Equal(t, 3, total)
}

func TestAllocateAcrossDays_EmptyPool(t *testing.T) {
	allocs := allocateAcrossDays(nil, 2)
	require.Len(t, allocs, 2)
	for _, alloc := range allocs {
		assert.Empty(t, alloc.POIs)
		assert.NotEmpty(t, alloc.Title)
	}
}

func TestBuildDayTitle(t *testing.T) {
	pois := []types.CandidatePOI{
		{PlaceID: "a", Source: "temples"},
		{PlaceID: "b", Source: "street food"},
		{PlaceID: "c", Source: "temples"},
		{PlaceID: "d", Source: types.SourceGeneral},
	}
	assert.Equal(t, "Day 2: temples & street food", buildDayTitle(2, pois))

	generic := []types.CandidatePOI{{PlaceID: "d", Source: types.SourceGeneral}}
	assert.Equal(t, "Day 1: exploring top attractions", buildDayTitle(1, generic))
}
