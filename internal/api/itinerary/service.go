package itinerary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/FACorreiaa/go-trip-itinerary/app/observability/metrics"
	"github.com/FACorreiaa/go-trip-itinerary/internal/api/personalization"
	"github.com/FACorreiaa/go-trip-itinerary/internal/api/places"
	"github.com/FACorreiaa/go-trip-itinerary/internal/types"
)

// MaxDayCount bounds a single planning run.
const MaxDayCount = 30

var (
	ErrInvalidDayCount    = errors.New("day count must be between 1 and 30")
	ErrMissingDestination = errors.New("destination is required")
)

var _ Service = (*ServiceImpl)(nil)

// Service is the engine's caller contract. The output always has exactly
// dayCount days with contiguous 1-based indices and no POI reused across
// days; provider failures degrade richness, never validity.
type Service interface {
	BuildItinerary(ctx context.Context, destination string, dayCount int, prefs types.PreferenceSet, profile *types.SessionPersonalizationProfile) ([]types.DayPlan, error)
	BuildPackages(ctx context.Context, destination string, dayCount int, prefs types.PreferenceSet, profile *types.SessionPersonalizationProfile) ([]types.TripPackage, error)

	SaveItinerary(ctx context.Context, destination string, days []types.DayPlan) (uuid.UUID, error)
	GetItinerary(ctx context.Context, id uuid.UUID) (*types.SavedItinerary, error)
	GetItineraries(ctx context.Context, page, pageSize int) (*types.PaginatedItinerariesResponse, error)
}

type ServiceImpl struct {
	logger        *slog.Logger
	placesService places.Service
	assist        PlanningAssist
	ranker        *personalization.Ranker
	repo          Repository
}

// NewServiceImpl wires the engine. assist and repo may be nil: without
// assist every run uses the deterministic scheduler, without repo the
// catalog operations return an error.
func NewServiceImpl(placesService places.Service, assist PlanningAssist, ranker *personalization.Ranker, repo Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:        logger,
		placesService: placesService,
		assist:        assist,
		ranker:        ranker,
		repo:          repo,
	}
}

func (s *ServiceImpl) BuildItinerary(ctx context.Context, destination string, dayCount int, prefs types.PreferenceSet, profile *types.SessionPersonalizationProfile) ([]types.DayPlan, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "BuildItinerary")
	defer span.End()
	span.SetAttributes(
		attribute.String("itinerary.destination", destination),
		attribute.Int("itinerary.day_count", dayCount),
	)

	if destination == "" {
		span.SetStatus(codes.Error, "Missing destination")
		return nil, ErrMissingDestination
	}
	if dayCount <= 0 || dayCount > MaxDayCount {
		span.SetStatus(codes.Error, "Invalid day count")
		return nil, ErrInvalidDayCount
	}

	start := time.Now()
	defer func() {
		metrics.Get().PlanningRunsTotal.Add(ctx, 1)
		metrics.Get().PlanningDurationSeconds.Record(ctx, time.Since(start).Seconds())
	}()

	// A dead search provider shrinks the pool to nothing; the run still
	// produces a structurally valid (if empty) schedule.
	pool, err := s.placesService.BuildCandidatePool(ctx, destination, prefs, dayCount)
	if err != nil {
		s.logger.ErrorContext(ctx, "Candidate pool build failed, continuing with empty pool",
			slog.Any("error", err))
		pool = nil
	}
	metrics.Get().CandidatePoolSize.Record(ctx, int64(len(pool)))
	span.SetAttributes(attribute.Int("itinerary.pool_size", len(pool)))

	days := s.schedule(ctx, destination, dayCount, prefs, pool)

	if profile != nil {
		s.personalize(ctx, days, profile, pool)
	}

	span.SetStatus(codes.Ok, "Itinerary built")
	return days, nil
}

// schedule tries the assisted strategy once and falls back to the
// deterministic allocator+scheduler on any failure. Never errors.
func (s *ServiceImpl) schedule(ctx context.Context, destination string, dayCount int, prefs types.PreferenceSet, pool []types.CandidatePOI) []types.DayPlan {
	if s.assist != nil && len(pool) > 0 {
		assignments, err := s.assist.PlanItinerary(ctx, types.PlanningAssistRequest{
			Destination: destination,
			DayCount:    dayCount,
			Preferences: prefs,
			Candidates:  pool,
		})
		if err == nil {
			days, resolveErr := resolveAssistedPlan(pool, dayCount, assignments)
			if resolveErr == nil {
				return days
			}
			err = resolveErr
		}
		s.logger.WarnContext(ctx, "Assisted planning failed, using deterministic scheduler",
			slog.String("destination", destination), slog.Any("error", err))
		metrics.Get().PlanningFallbacksTotal.Add(ctx, 1)
	}
	return scheduleDeterministic(pool, dayCount)
}

// personalize applies the session lens day by day, keeping the global
// no-reuse invariant intact when the ranker swaps in a leftover POI.
func (s *ServiceImpl) personalize(ctx context.Context, days []types.DayPlan, profile *types.SessionPersonalizationProfile, pool []types.CandidatePOI) {
	leftover := unusedPOIs(pool, days)
	for i := range days {
		swapped := s.ranker.RerankDay(&days[i], profile, leftover)
		if swapped != nil {
			s.logger.DebugContext(ctx, "Swapped personalized POI into day",
				slog.Int("day", days[i].Day), slog.String("poi", swapped.Name))
			leftover = removeByID(leftover, swapped.PlaceID)
		}
	}
}

func unusedPOIs(pool []types.CandidatePOI, days []types.DayPlan) []types.CandidatePOI {
	used := make(map[string]bool)
	for _, day := range days {
		for _, poi := range day.Activities() {
			used[poi.PlaceID] = true
		}
	}
	out := make([]types.CandidatePOI, 0, len(pool))
	for _, poi := range pool {
		if !used[poi.PlaceID] {
			out = append(out, poi)
		}
	}
	return out
}

func removeByID(pool []types.CandidatePOI, id string) []types.CandidatePOI {
	out := pool[:0:0]
	for _, poi := range pool {
		if poi.PlaceID != id {
			out = append(out, poi)
		}
	}
	return out
}

func (s *ServiceImpl) SaveItinerary(ctx context.Context, destination string, days []types.DayPlan) (uuid.UUID, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "SaveItinerary")
	defer span.End()

	if s.repo == nil {
		return uuid.Nil, fmt.Errorf("itinerary catalog is not configured")
	}
	id, err := s.repo.SaveItinerary(ctx, types.SavedItinerary{
		ID:          uuid.New(),
		Destination: destination,
		DayCount:    len(days),
		Days:        days,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to save itinerary", slog.Any("error", err))
		span.RecordError(err)
		return uuid.Nil, fmt.Errorf("failed to save itinerary: %w", err)
	}
	span.SetStatus(codes.Ok, "Itinerary saved")
	return id, nil
}

func (s *ServiceImpl) GetItinerary(ctx context.Context, id uuid.UUID) (*types.SavedItinerary, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "GetItinerary")
	defer span.End()

	if s.repo == nil {
		return nil, fmt.Errorf("itinerary catalog is not configured")
	}
	itinerary, err := s.repo.GetItinerary(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to get itinerary", slog.Any("error", err))
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get itinerary: %w", err)
	}
	if itinerary == nil {
		return nil, fmt.Errorf("itinerary not found")
	}
	span.SetStatus(codes.Ok, "Itinerary retrieved")
	return itinerary, nil
}

func (s *ServiceImpl) GetItineraries(ctx context.Context, page, pageSize int) (*types.PaginatedItinerariesResponse, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "GetItineraries")
	defer span.End()

	if s.repo == nil {
		return nil, fmt.Errorf("itinerary catalog is not configured")
	}
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	resp, err := s.repo.ListItineraries(ctx, page, pageSize)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to list itineraries", slog.Any("error", err))
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list itineraries: %w", err)
	}
	span.SetStatus(codes.Ok, "Itineraries listed")
	return resp, nil
}
