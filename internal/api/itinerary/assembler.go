package itinerary

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-trip-itinerary/internal/types"
)

// packageVariant describes how one presentation variant slices the shared
// schedule: how many non-dining activities a day keeps and whether dining
// picks are kept at all.
type packageVariant struct {
	name        string
	title       string
	description string
	activityCap int
	keepDining  bool
}

var packageVariants = []packageVariant{
	{
		name:        types.PackageBalanced,
		title:       "Balanced explorer",
		description: "A steady mix of sights, culture and food across every day.",
		activityCap: 4,
		keepDining:  true,
	},
	{
		name:        types.PackageFoodForward,
		title:       "Food-forward",
		description: "Lighter sightseeing days that leave room for every meal that matters.",
		activityCap: 3,
		keepDining:  true,
	},
	{
		name:        types.PackageEconomy,
		title:       "Essentials on a budget",
		description: "The highest-rated picks only, dining left open for you to improvise.",
		activityCap: 3,
		keepDining:  false,
	},
}

// BuildPackages builds the itinerary once and slices it into the output
// variants; all variants share the same underlying schedule.
func (s *ServiceImpl) BuildPackages(ctx context.Context, destination string, dayCount int, prefs types.PreferenceSet, profile *types.SessionPersonalizationProfile) ([]types.TripPackage, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "BuildPackages")
	defer span.End()

	days, err := s.BuildItinerary(ctx, destination, dayCount, prefs, profile)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Itinerary build failed")
		return nil, err
	}

	packages := make([]types.TripPackage, 0, len(packageVariants))
	for _, variant := range packageVariants {
		packages = append(packages, types.TripPackage{
			ID:          uuid.New(),
			Variant:     variant.name,
			Title:       fmt.Sprintf("%s · %d days in %s", variant.title, dayCount, destination),
			Description: variant.description,
			Days:        sliceDays(days, variant),
		})
	}
	span.SetAttributes(attribute.Int("packages.count", len(packages)))
	span.SetStatus(codes.Ok, "Packages assembled")
	return packages, nil
}

// sliceDays copies the schedule and applies the variant's caps per day,
// dropping the weakest activities first. The source days are not mutated.
func sliceDays(days []types.DayPlan, variant packageVariant) []types.DayPlan {
	out := make([]types.DayPlan, 0, len(days))
	for _, day := range days {
		sliced := types.DayPlan{
			Day:              day.Day,
			Title:            day.Title,
			Description:      day.Description,
			FeasibilityScore: day.FeasibilityScore,
		}
		kept := keepIDs(day, variant)
		sliced.Morning = filterByID(day.Morning, kept)
		sliced.Afternoon = filterByID(day.Afternoon, kept)
		sliced.Evening = filterByID(day.Evening, kept)
		for _, poi := range sliced.Activities() {
			sliced.TotalDuration += poi.EstimatedDuration
		}
		out = append(out, sliced)
	}
	return out
}

// keepIDs selects which of a day's POIs survive the variant's caps: dining
// picks ride the keepDining switch, everything else competes on rating
// under the activity cap.
func keepIDs(day types.DayPlan, variant packageVariant) map[string]bool {
	kept := make(map[string]bool)
	activityCount := 0
	for _, poi := range day.Activities() {
		if isDiningPick(poi) {
			if variant.keepDining {
				kept[poi.PlaceID] = true
			}
			continue
		}
		if activityCount < variant.activityCap {
			kept[poi.PlaceID] = true
			activityCount++
			continue
		}
		// Cap reached: a better-rated POI still displaces the worst kept one.
		worstID, worstRating := "", -1.0
		for id := range kept {
			if poi := findByID(day, id); poi != nil && !isDiningPick(*poi) {
				if worstID == "" || poi.Rating < worstRating {
					worstID, worstRating = id, poi.Rating
				}
			}
		}
		if worstID != "" && poi.Rating > worstRating {
			delete(kept, worstID)
			kept[poi.PlaceID] = true
		}
	}
	return kept
}

func isDiningPick(poi types.CandidatePOI) bool {
	return poi.Source == types.SourceDining
}

func findByID(day types.DayPlan, id string) *types.CandidatePOI {
	for _, poi := range day.Activities() {
		if poi.PlaceID == id {
			return &poi
		}
	}
	return nil
}

func filterByID(bucket []types.CandidatePOI, kept map[string]bool) []types.CandidatePOI {
	out := make([]types.CandidatePOI, 0, len(bucket))
	for _, poi := range bucket {
		if kept[poi.PlaceID] {
			out = append(out, poi)
		}
	}
	return out
}
