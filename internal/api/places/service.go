package places

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-trip-itinerary/app/observability/metrics"
	"github.com/FACorreiaa/go-trip-itinerary/internal/api/duration"
	"github.com/FACorreiaa/go-trip-itinerary/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// Service builds the candidate POI pool for one planning run.
type Service interface {
	BuildCandidatePool(ctx context.Context, destination string, prefs types.PreferenceSet, dayCount int) ([]types.CandidatePOI, error)
}

// DurationEstimator assigns a visit duration to a decorated candidate.
type DurationEstimator interface {
	Estimate(ctx context.Context, poi types.CandidatePOI) float64
}

var _ DurationEstimator = (*duration.IntelligentEstimator)(nil)

type ServiceImpl struct {
	logger    *slog.Logger
	provider  PlaceSearchProvider
	estimator DurationEstimator
}

func NewServiceImpl(provider PlaceSearchProvider, estimator DurationEstimator, logger *slog.Logger) *ServiceImpl {
	if estimator == nil {
		estimator = duration.NewIntelligentEstimator(nil, logger, 0)
	}
	return &ServiceImpl{
		logger:    logger,
		provider:  provider,
		estimator: estimator,
	}
}

// searchSpec is one query of the battery. Order matters for dedup: earlier
// specs win when the same place shows up twice, so preference searches come
// before the generic ones.
type searchSpec struct {
	query   string
	source  string
	reason  string
	filters types.SearchFilters
}

func buildSearchSpecs(prefs types.PreferenceSet, dayCount int) []searchSpec {
	specs := make([]searchSpec, 0, len(prefs)+7)
	prefLimit := maxInt(5, dayCount)
	for _, pref := range prefs {
		specs = append(specs, searchSpec{
			query:   fmt.Sprintf("best %s experiences", pref),
			source:  pref,
			reason:  fmt.Sprintf("Matches your interest in %s", pref),
			filters: types.SearchFilters{Limit: prefLimit},
		})
	}
	specs = append(specs,
		searchSpec{
			query:   "top tourist attractions",
			source:  types.SourceGeneral,
			reason:  "Popular with most visitors",
			filters: types.SearchFilters{Limit: maxInt(20, 6*dayCount), MinRating: 4.0},
		},
		searchSpec{
			query:   "best museums and galleries",
			source:  types.SourceGeneral,
			reason:  "Highly rated museum",
			filters: types.SearchFilters{Limit: maxInt(8, 2*dayCount)},
		},
		searchSpec{
			query:   "parks and gardens",
			source:  types.SourceGeneral,
			reason:  "Green space worth a stroll",
			filters: types.SearchFilters{Limit: maxInt(8, 2*dayCount)},
		},
		searchSpec{
			query:   "shopping districts and markets",
			source:  types.SourceGeneral,
			reason:  "Local shopping spot",
			filters: types.SearchFilters{Limit: maxInt(8, 2*dayCount)},
		},
		searchSpec{
			query:   "best restaurants and local food",
			source:  types.SourceDining,
			reason:  "Well-rated dining option",
			filters: types.SearchFilters{Limit: maxInt(10, 2*dayCount), MinRating: 4.0, MinReviews: 50},
		},
		searchSpec{
			query:   "popular cafes",
			source:  types.SourceDining,
			reason:  "Popular cafe",
			filters: types.SearchFilters{Limit: maxInt(5, dayCount)},
		},
		searchSpec{
			query:   "well located hotels",
			source:  types.SourceGeneral,
			reason:  "Convenient base for the trip",
			filters: types.SearchFilters{Limit: maxInt(5, dayCount)},
		},
	)
	return specs
}

// BuildCandidatePool issues one search per preference plus the generic
// category battery, concurrently, and merges the results. A single failed
// search is logged and dropped; only the merged pool is returned.
func (s *ServiceImpl) BuildCandidatePool(ctx context.Context, destination string, prefs types.PreferenceSet, dayCount int) ([]types.CandidatePOI, error) {
	ctx, span := otel.Tracer("PlacesService").Start(ctx, "BuildCandidatePool")
	defer span.End()
	span.SetAttributes(
		attribute.String("pool.destination", destination),
		attribute.Int("pool.day_count", dayCount),
		attribute.Int("pool.preferences", len(prefs)),
	)

	specs := buildSearchSpecs(prefs, dayCount)
	results := make([][]types.RawPlace, len(specs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, spec := range specs {
		g.Go(func() error {
			places, err := s.provider.SearchPlaces(gctx, destination, spec.query, spec.filters)
			if err != nil {
				// One failed search only shrinks the pool.
				s.logger.WarnContext(gctx, "Place search failed, dropping query",
					slog.String("query", spec.query), slog.Any("error", err))
				metrics.Get().SearchFailuresTotal.Add(gctx, 1)
				return nil
			}
			results[i] = places
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		// Only context cancellation can surface here.
		span.RecordError(err)
		span.SetStatus(codes.Error, "Candidate pool build cancelled")
		return nil, fmt.Errorf("candidate pool build cancelled: %w", err)
	}

	seen := make(map[string]bool)
	pool := make([]types.CandidatePOI, 0, 64)
	for i, spec := range specs {
		for _, place := range results[i] {
			if seen[place.PlaceID] {
				continue
			}
			if !passesSafetyFilter(place) {
				s.logger.DebugContext(ctx, "Filtered disallowed place", slog.String("name", place.Name))
				continue
			}
			seen[place.PlaceID] = true
			pool = append(pool, s.decorate(ctx, place, spec))
		}
		if spec.source != types.SourceGeneral && spec.source != types.SourceDining && len(results[i]) == 0 {
			// Coverage gap, not an error: this preference contributes nothing.
			s.logger.InfoContext(ctx, "Preference yielded no candidates",
				slog.String("preference", spec.source))
		}
	}

	span.SetAttributes(attribute.Int("pool.size", len(pool)))
	span.SetStatus(codes.Ok, "Candidate pool built")
	return pool, nil
}

func (s *ServiceImpl) decorate(ctx context.Context, place types.RawPlace, spec searchSpec) types.CandidatePOI {
	poi := types.CandidatePOI{
		PlaceID:          place.PlaceID,
		Name:             place.Name,
		Types:            place.Types,
		Category:         deriveCategory(place, spec.source),
		Rating:           place.Rating,
		UserRatingsTotal: place.UserRatingsTotal,
		Source:           spec.source,
		Reason:           spec.reason,
		Latitude:         place.Latitude,
		Longitude:        place.Longitude,
	}
	poi.EstimatedDuration = s.estimator.Estimate(ctx, poi)
	return poi
}

// deriveCategory picks the single human-readable category from the raw type
// tags, falling back to the search's own flavour.
func deriveCategory(place types.RawPlace, source string) string {
	for _, t := range place.Types {
		if c := duration.NormalizeCategory(t); c != duration.CategoryDefault {
			return string(c)
		}
	}
	if source == types.SourceDining {
		return string(duration.CategoryRestaurant)
	}
	return string(duration.CategoryAttraction)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
