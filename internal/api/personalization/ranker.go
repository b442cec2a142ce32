package personalization

import (
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/FACorreiaa/go-trip-itinerary/internal/api/duration"
	"github.com/FACorreiaa/go-trip-itinerary/internal/types"
)

// Weight bounds: no combination of factors pushes a POI outside this band.
const (
	MinWeight = 0.7
	MaxWeight = 1.3

	maxKeptActivities = 5
	// strongMatchWeight is the bar a replacement candidate has to clear
	// before it may displace a scheduled activity.
	strongMatchWeight = 1.2
)

var mustSeeTypes = map[string]bool{
	"tourist_attraction": true,
	"landmark":           true,
	"must_see":           true,
	"world_heritage":     true,
}

// Ranker applies session-scoped, never-persisted preference signals as a
// multiplicative scoring lens over an already-built day.
type Ranker struct {
	logger *slog.Logger
}

func NewRanker(logger *slog.Logger) *Ranker {
	return &Ranker{logger: logger}
}

// Weight computes the personalization multiplier for a POI. Factors are
// independent and order-free; the result is always within
// [MinWeight, MaxWeight].
func (r *Ranker) Weight(poi types.CandidatePOI, profile *types.SessionPersonalizationProfile) float64 {
	if profile == nil {
		return 1.0
	}
	weight := 1.0
	text := poi.SearchableText()

	if poi.Rating > 0 {
		weight *= 0.6 + 0.4*math.Min(poi.Rating, 5)/5
	}
	if poi.UserRatingsTotal > 0 {
		decades := math.Min(math.Log10(float64(poi.UserRatingsTotal)), 4)
		weight *= 0.7 + 0.3*decades/4
	}
	for _, t := range poi.Types {
		if mustSeeTypes[strings.ToLower(strings.TrimSpace(t))] {
			weight *= 1.3
			break
		}
	}

	if len(profile.FreeTextTags) > 0 {
		matched := 0
		for _, tag := range profile.FreeTextTags {
			if strings.Contains(text, strings.ToLower(tag)) {
				matched++
			}
		}
		weight *= 1 + 0.2*float64(matched)/float64(len(profile.FreeTextTags))
	}

	if isDining(poi) && matchesAny(text, profile.CuisinePrefs) {
		weight *= 1.1
	}
	if matchesAny(text, profile.ActivityPrefs) {
		weight *= 1.1
	}
	if matchesAny(text, profile.Avoidances) {
		weight *= 0.7
	}
	for _, t := range poi.Types {
		if override, ok := profile.CategoryWeights[strings.ToLower(strings.TrimSpace(t))]; ok {
			weight *= override
		}
	}

	return clamp(weight, MinWeight, MaxWeight)
}

// BaseScore is the quality score personalization multiplies into. Unrated
// POIs sit at the middle of the scale instead of the bottom.
func (r *Ranker) BaseScore(poi types.CandidatePOI) float64 {
	if poi.Rating > 0 {
		return poi.Rating
	}
	return 3.0
}

// RerankDay re-scores a day's activities against the profile, keeps the top
// five, and best-effort swaps in one strong match for an uncovered tag from
// the leftover pool. Bucket contents are re-sorted and truncated in place;
// nothing moves to another day. Returns the leftover POI swapped in, if any.
func (r *Ranker) RerankDay(day *types.DayPlan, profile *types.SessionPersonalizationProfile, leftover []types.CandidatePOI) *types.CandidatePOI {
	if profile == nil {
		return nil
	}

	scores := make(map[string]float64)
	activities := day.Activities()
	for _, poi := range activities {
		scores[poi.PlaceID] = r.BaseScore(poi) * r.Weight(poi, profile)
	}

	sortBucket(day.Morning, scores)
	sortBucket(day.Afternoon, scores)
	sortBucket(day.Evening, scores)

	if len(activities) > maxKeptActivities {
		drop := lowestScored(activities, scores, len(activities)-maxKeptActivities)
		day.Morning = withoutIDs(day.Morning, drop)
		day.Afternoon = withoutIDs(day.Afternoon, drop)
		day.Evening = withoutIDs(day.Evening, drop)
	}

	swapped := r.trySwapForUncoveredTag(day, profile, leftover, scores)

	day.TotalDuration = 0
	for _, poi := range day.Activities() {
		day.TotalDuration += poi.EstimatedDuration
	}
	return swapped
}

// trySwapForUncoveredTag looks for one unused free-text tag and one leftover
// POI strongly matching it, and swaps that POI in for the weakest kept
// activity. Best-effort: finding nothing is not an error.
func (r *Ranker) trySwapForUncoveredTag(day *types.DayPlan, profile *types.SessionPersonalizationProfile, leftover []types.CandidatePOI, scores map[string]float64) *types.CandidatePOI {
	if len(profile.FreeTextTags) == 0 {
		return nil
	}

	kept := day.Activities()
	if len(kept) == 0 {
		return nil
	}
	inDay := make(map[string]bool, len(kept))
	var keptText strings.Builder
	for _, poi := range kept {
		inDay[poi.PlaceID] = true
		keptText.WriteString(poi.SearchableText())
		keptText.WriteByte(' ')
	}

	var uncovered string
	for _, tag := range profile.FreeTextTags {
		if !strings.Contains(keptText.String(), strings.ToLower(tag)) {
			uncovered = strings.ToLower(tag)
			break
		}
	}
	if uncovered == "" {
		return nil
	}

	var candidate *types.CandidatePOI
	for i := range leftover {
		poi := leftover[i]
		if inDay[poi.PlaceID] || !strings.Contains(poi.SearchableText(), uncovered) {
			continue
		}
		if r.Weight(poi, profile) >= strongMatchWeight {
			candidate = &poi
			break
		}
	}
	if candidate == nil {
		r.logger.Debug("No strong replacement found for uncovered tag",
			slog.String("tag", uncovered), slog.Int("day", day.Day))
		return nil
	}

	victim := kept[0]
	for _, poi := range kept {
		if scores[poi.PlaceID] < scores[victim.PlaceID] {
			victim = poi
		}
	}
	day.Morning = replaceID(day.Morning, victim.PlaceID, *candidate)
	day.Afternoon = replaceID(day.Afternoon, victim.PlaceID, *candidate)
	day.Evening = replaceID(day.Evening, victim.PlaceID, *candidate)
	return candidate
}

func sortBucket(bucket []types.CandidatePOI, scores map[string]float64) {
	sort.SliceStable(bucket, func(i, j int) bool {
		return scores[bucket[i].PlaceID] > scores[bucket[j].PlaceID]
	})
}

// lowestScored returns the n lowest-scoring place IDs.
func lowestScored(activities []types.CandidatePOI, scores map[string]float64, n int) map[string]bool {
	sorted := make([]types.CandidatePOI, len(activities))
	copy(sorted, activities)
	sort.SliceStable(sorted, func(i, j int) bool {
		return scores[sorted[i].PlaceID] < scores[sorted[j].PlaceID]
	})
	drop := make(map[string]bool, n)
	for i := 0; i < n && i < len(sorted); i++ {
		drop[sorted[i].PlaceID] = true
	}
	return drop
}

func withoutIDs(bucket []types.CandidatePOI, drop map[string]bool) []types.CandidatePOI {
	out := bucket[:0:0]
	for _, poi := range bucket {
		if !drop[poi.PlaceID] {
			out = append(out, poi)
		}
	}
	return out
}

func replaceID(bucket []types.CandidatePOI, id string, replacement types.CandidatePOI) []types.CandidatePOI {
	for i := range bucket {
		if bucket[i].PlaceID == id {
			bucket[i] = replacement
		}
	}
	return bucket
}

func isDining(poi types.CandidatePOI) bool {
	return poi.Source == types.SourceDining ||
		duration.NormalizeCategory(poi.Category) == duration.CategoryRestaurant
}

func matchesAny(text string, terms []string) bool {
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term != "" && strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
