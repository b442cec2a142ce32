package itinerary

import (
	"context"
	"fmt"
	"strings"

	"github.com/FACorreiaa/go-trip-itinerary/internal/api/duration"
	"github.com/FACorreiaa/go-trip-itinerary/internal/types"
)

// Slot and day duration budgets in hours.
const (
	morningCapHours   = 3.0
	afternoonCapHours = 4.0
	dayCapHours       = 8.0
	// eveningCapHours allows a half-hour dinner overflow past the activity
	// cap; non-anchor days never exceed it.
	eveningCapHours = dayCapHours + 0.5

	maxMorningPOIs   = 2
	maxAfternoonPOIs = 2

	halfDayThreshold = 3.0

	feasibilityGood = 0.9
	feasibilityFull = 0.7
)

// PlanningAssist is the optional external planning collaborator. Any error,
// empty or malformed response makes the engine fall back to the
// deterministic scheduler; the call is never retried first.
type PlanningAssist interface {
	PlanItinerary(ctx context.Context, req types.PlanningAssistRequest) ([]types.AssistedDayAssignment, error)
}

// resolveAssistedPlan turns the collaborator's identifier assignments back
// into full DayPlans. It returns an error whenever the response cannot
// yield a complete, valid schedule, which the caller treats as the
// fallback trigger.
func resolveAssistedPlan(pool []types.CandidatePOI, dayCount int, assignments []types.AssistedDayAssignment) ([]types.DayPlan, error) {
	if len(assignments) == 0 {
		return nil, fmt.Errorf("planning assist returned no day assignments")
	}

	byID := make(map[string]types.CandidatePOI, len(pool))
	for _, poi := range pool {
		byID[poi.PlaceID] = poi
	}

	state := newRunState()
	days := make([]types.DayPlan, dayCount)
	for i := range days {
		days[i] = types.DayPlan{Day: i + 1}
	}

	seenDays := make(map[int]bool, dayCount)
	for _, assignment := range assignments {
		if assignment.Day < 1 || assignment.Day > dayCount {
			continue
		}
		// The first assignment for a day wins; a repeat would overwrite
		// buckets whose POIs are already marked used.
		if seenDays[assignment.Day] {
			continue
		}
		seenDays[assignment.Day] = true
		plan := &days[assignment.Day-1]
		plan.Morning = resolveIDs(assignment.MorningIDs, byID, state)
		plan.Afternoon = resolveIDs(assignment.AfternoonIDs, byID, state)
		plan.Evening = resolveIDs(assignment.EveningIDs, byID, state)
		plan.TotalDuration = totalDuration(*plan)
		plan.FeasibilityScore = assignment.FeasibilityScore
		if plan.FeasibilityScore <= 0 || plan.FeasibilityScore > 1 {
			if plan.TotalDuration <= dayCapHours {
				plan.FeasibilityScore = feasibilityGood
			} else {
				plan.FeasibilityScore = feasibilityFull
			}
		}
		plan.Title = buildDayTitle(plan.Day, plan.Activities())
	}

	for i := range days {
		if len(days[i].Activities()) == 0 {
			return nil, fmt.Errorf("planning assist left day %d empty", i+1)
		}
	}
	return days, nil
}

// resolveIDs maps identifiers onto pool POIs, silently discarding anything
// unknown and anything already placed elsewhere.
func resolveIDs(ids []string, byID map[string]types.CandidatePOI, state *runState) []types.CandidatePOI {
	var out []types.CandidatePOI
	for _, id := range ids {
		poi, ok := byID[id]
		if !ok || state.isUsed(id) {
			continue
		}
		state.markUsed(id)
		out = append(out, poi)
	}
	return out
}

// scheduleDeterministic is the fallback path: the coverage-balanced
// allocator picks each day's POI set, then each set is arranged into slots
// under the duration budgets.
func scheduleDeterministic(pool []types.CandidatePOI, dayCount int) []types.DayPlan {
	allocations := allocateAcrossDays(pool, dayCount)
	days := make([]types.DayPlan, 0, dayCount)
	for _, alloc := range allocations {
		days = append(days, arrangeDaySlots(alloc))
	}
	return days
}

// arrangeDaySlots fills morning/afternoon/evening for one day from its
// allocated set. A full-day anchor is scheduled alone; otherwise the slots
// fill greedily under their caps with a running 8h day budget and a single
// dining or nightlife pick allowed to overflow into the evening.
func arrangeDaySlots(alloc dayAllocation) types.DayPlan {
	plan := types.DayPlan{Day: alloc.Day, Title: alloc.Title}

	var halfDay, quick []types.CandidatePOI
	for _, poi := range alloc.POIs {
		switch {
		case poi.EstimatedDuration >= duration.FullDayThreshold:
			if len(plan.Afternoon) == 0 {
				plan.Afternoon = []types.CandidatePOI{poi}
			}
		case poi.EstimatedDuration >= halfDayThreshold:
			halfDay = append(halfDay, poi)
		default:
			quick = append(quick, poi)
		}
	}

	// A full-day anchor consumes the whole budget; nothing is co-scheduled.
	if len(plan.Afternoon) == 1 && plan.Afternoon[0].EstimatedDuration >= duration.FullDayThreshold {
		plan.TotalDuration = plan.Afternoon[0].EstimatedDuration
		plan.FeasibilityScore = feasibilityGood
		return plan
	}

	combined := append(append([]types.CandidatePOI{}, halfDay...), quick...)
	running := 0.0
	remaining := combined[:0:0]

	var slotTotal float64
	for _, poi := range combined {
		if len(plan.Morning) < maxMorningPOIs &&
			slotTotal+poi.EstimatedDuration <= morningCapHours &&
			running+poi.EstimatedDuration <= dayCapHours {
			plan.Morning = append(plan.Morning, poi)
			slotTotal += poi.EstimatedDuration
			running += poi.EstimatedDuration
			continue
		}
		remaining = append(remaining, poi)
	}

	slotTotal = 0
	var leftover []types.CandidatePOI
	for _, poi := range remaining {
		if len(plan.Afternoon) < maxAfternoonPOIs &&
			slotTotal+poi.EstimatedDuration <= afternoonCapHours &&
			running+poi.EstimatedDuration <= dayCapHours {
			plan.Afternoon = append(plan.Afternoon, poi)
			slotTotal += poi.EstimatedDuration
			running += poi.EstimatedDuration
			continue
		}
		leftover = append(leftover, poi)
	}

	for _, poi := range leftover {
		if poi.EstimatedDuration >= halfDayThreshold || !isEveningPOI(poi) {
			continue
		}
		if running+poi.EstimatedDuration > eveningCapHours {
			continue
		}
		plan.Evening = append(plan.Evening, poi)
		running += poi.EstimatedDuration
		break
	}

	plan.TotalDuration = running
	if running <= dayCapHours {
		plan.FeasibilityScore = feasibilityGood
	} else {
		plan.FeasibilityScore = feasibilityFull
	}
	return plan
}

// isEveningPOI reports whether a POI suits the evening slot: dining or
// nightlife flavoured.
func isEveningPOI(poi types.CandidatePOI) bool {
	if poi.Source == types.SourceDining {
		return true
	}
	switch duration.NormalizeCategory(poi.Category) {
	case duration.CategoryRestaurant, duration.CategoryEntertainment:
		return true
	}
	for _, t := range poi.Types {
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "restaurant", "cafe", "bar", "night_club", "food":
			return true
		}
	}
	return false
}

func totalDuration(plan types.DayPlan) float64 {
	total := 0.0
	for _, poi := range plan.Activities() {
		total += poi.EstimatedDuration
	}
	return total
}
