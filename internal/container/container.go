package container

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/FACorreiaa/go-trip-itinerary/app/db"
	"github.com/FACorreiaa/go-trip-itinerary/config"
	"github.com/FACorreiaa/go-trip-itinerary/internal/api/duration"
	generativeAI "github.com/FACorreiaa/go-trip-itinerary/internal/api/generative_ai"
	"github.com/FACorreiaa/go-trip-itinerary/internal/api/itinerary"
	"github.com/FACorreiaa/go-trip-itinerary/internal/api/personalization"
	"github.com/FACorreiaa/go-trip-itinerary/internal/api/places"
)

// Container holds all application dependencies
type Container struct {
	Config           *config.Config
	Logger           *slog.Logger
	Pool             *pgxpool.Pool
	ItineraryHandler *itinerary.HandlerImpl
	ProfileStore     *personalization.Store
}

// NewContainer initializes and returns a new dependency container
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	aiClient, err := generativeAI.NewAIClient(ctx, cfg.Gemini.Model)
	if err != nil {
		logger.Error("Failed to create Gemini client", slog.Any("error", err))
		return nil, err
	}

	// The itinerary catalog is optional; without postgres the engine still
	// plans, it just cannot save.
	var pool *pgxpool.Pool
	var repo itinerary.Repository
	if cfg.Repositories.Postgres.Enabled {
		dbConfig, err := database.NewDatabaseConfig(cfg, logger)
		if err != nil {
			logger.Error("Failed to generate database config", slog.Any("error", err))
			return nil, err
		}
		if err := database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
			logger.Error("Failed to run database migrations", slog.Any("error", err))
			return nil, err
		}
		pool, err = database.Init(dbConfig.ConnectionURL, logger)
		if err != nil {
			logger.Error("Failed to initialize database pool", slog.Any("error", err))
			return nil, err
		}
		repo = itinerary.NewPostgresRepository(pool, logger)
	}

	searchProvider := places.NewGeminiPlaceProvider(aiClient, logger, cfg.Providers.SearchTimeout)
	estimator := duration.NewIntelligentEstimator(aiClient, logger, cfg.Providers.EstimatorTimeout)
	placesService := places.NewServiceImpl(searchProvider, estimator, logger)
	planner := itinerary.NewGeminiPlanner(aiClient, logger, cfg.Providers.PlanningTimeout)
	ranker := personalization.NewRanker(logger)
	profileStore := personalization.NewStore(cfg.Session.TTL, logger)

	itineraryService := itinerary.NewServiceImpl(placesService, planner, ranker, repo, logger)
	itineraryHandler := itinerary.NewHandlerImpl(itineraryService, profileStore, logger)

	return &Container{
		Config:           cfg,
		Logger:           logger,
		Pool:             pool,
		ItineraryHandler: itineraryHandler,
		ProfileStore:     profileStore,
	}, nil
}

// Close releases held resources.
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}
