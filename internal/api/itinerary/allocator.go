package itinerary

import (
	"fmt"
	"strings"

	"github.com/FACorreiaa/go-trip-itinerary/internal/types"
)

// runState carries the only mutable state of a planning run: the shared
// used-POI set. One instance per run, threaded day by day, never shared
// across runs.
type runState struct {
	used map[string]bool
}

func newRunState() *runState {
	return &runState{used: make(map[string]bool)}
}

func (s *runState) isUsed(id string) bool { return s.used[id] }
func (s *runState) markUsed(id string)    { s.used[id] = true }

// dayAllocation is the allocator's first-pass output for one day: an
// unordered POI set plus a title derived from the preferences it covers.
type dayAllocation struct {
	Day   int
	Title string
	POIs  []types.CandidatePOI
}

const (
	targetActivitiesPerDay = 5
	minActivitiesPerDay    = 4
	maxPreferencePerDay    = 2
)

// allocator splits the pool by provenance once; day allocation then consumes
// from these three lists under the shared used-set.
type allocator struct {
	preference []types.CandidatePOI
	general    []types.CandidatePOI
	dining     []types.CandidatePOI
	dayCount   int
}

func newAllocator(pool []types.CandidatePOI, dayCount int) *allocator {
	a := &allocator{dayCount: dayCount}
	for _, poi := range pool {
		switch {
		case poi.IsPreferenceSourced():
			a.preference = append(a.preference, poi)
		case poi.Source == types.SourceDining:
			a.dining = append(a.dining, poi)
		default:
			a.general = append(a.general, poi)
		}
	}
	return a
}

// allocateAcrossDays produces the first-pass per-day assignment. Days are
// processed strictly in increasing order: each day's preference quota
// depends on what earlier days consumed.
func allocateAcrossDays(pool []types.CandidatePOI, dayCount int) []dayAllocation {
	a := newAllocator(pool, dayCount)
	state := newRunState()
	out := make([]dayAllocation, 0, dayCount)
	for d := 1; d <= dayCount; d++ {
		out = append(out, a.allocateDay(d, state))
	}
	return out
}

func (a *allocator) allocateDay(day int, state *runState) dayAllocation {
	alloc := dayAllocation{Day: day}

	// Fair share of the remaining preference POIs: later days must not be
	// starved by day one taking everything.
	remainingDays := a.dayCount - day + 1
	remainingPref := a.countUnused(a.preference, state)
	quota := minInt(maxPreferencePerDay, ceilDiv(remainingPref, remainingDays))
	for _, poi := range a.preference {
		if quota <= 0 {
			break
		}
		if state.isUsed(poi.PlaceID) {
			continue
		}
		state.markUsed(poi.PlaceID)
		alloc.POIs = append(alloc.POIs, poi)
		quota--
	}
	prefTaken := len(alloc.POIs)

	// General picks come from a rotating window so different days see
	// different slices of the list instead of everyone fighting over the
	// same top entries. One slot stays reserved for dining.
	generalNeeded := targetActivitiesPerDay - prefTaken - 1
	if available := len(a.general); available > 0 && generalNeeded > 0 {
		chunkSize := maxInt(5, ceilDiv(available, a.dayCount))
		startIndex := minInt((day-1)*chunkSize, maxInt(0, available-generalNeeded))
		taken := 0
		for i := 0; i < available && taken < generalNeeded; i++ {
			poi := a.general[(startIndex+i)%available]
			if state.isUsed(poi.PlaceID) {
				continue
			}
			state.markUsed(poi.PlaceID)
			alloc.POIs = append(alloc.POIs, poi)
			taken++
		}
	}

	// One dining pick, rotated by day so consecutive days land on different
	// restaurants where possible.
	if available := len(a.dining); available > 0 {
		start := (day - 1) % available
		for i := 0; i < available; i++ {
			poi := a.dining[(start+i)%available]
			if state.isUsed(poi.PlaceID) {
				continue
			}
			state.markUsed(poi.PlaceID)
			alloc.POIs = append(alloc.POIs, poi)
			break
		}
	}

	// Backfill: uneven quota arithmetic must never leave a day short while
	// the global pool still has anything to give.
	for _, list := range [][]types.CandidatePOI{a.preference, a.general, a.dining} {
		for _, poi := range list {
			if len(alloc.POIs) >= minActivitiesPerDay {
				break
			}
			if state.isUsed(poi.PlaceID) {
				continue
			}
			state.markUsed(poi.PlaceID)
			alloc.POIs = append(alloc.POIs, poi)
		}
	}

	alloc.Title = buildDayTitle(day, alloc.POIs)
	return alloc
}

func (a *allocator) countUnused(list []types.CandidatePOI, state *runState) int {
	n := 0
	for _, poi := range list {
		if !state.isUsed(poi.PlaceID) {
			n++
		}
	}
	return n
}

// buildDayTitle names the day after the preferences actually placed on it.
func buildDayTitle(day int, pois []types.CandidatePOI) string {
	seen := make(map[string]bool)
	var prefs []string
	for _, poi := range pois {
		if !poi.IsPreferenceSourced() || seen[poi.Source] {
			continue
		}
		seen[poi.Source] = true
		prefs = append(prefs, poi.Source)
	}
	if len(prefs) == 0 {
		return fmt.Sprintf("Day %d: exploring top attractions", day)
	}
	return fmt.Sprintf("Day %d: %s", day, strings.Join(prefs, " & "))
}

func ceilDiv(a, b int) int {
	if b <= 0 || a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
