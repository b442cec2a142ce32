package places

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/genai"

	generativeAI "github.com/FACorreiaa/go-trip-itinerary/internal/api/generative_ai"
	"github.com/FACorreiaa/go-trip-itinerary/internal/types"
)

// PlaceSearchProvider is the place-search collaborator boundary. A rejected
// call is treated by the pool builder as zero results, never as fatal.
type PlaceSearchProvider interface {
	SearchPlaces(ctx context.Context, destination, query string, filters types.SearchFilters) ([]types.RawPlace, error)
}

var _ PlaceSearchProvider = (*GeminiPlaceProvider)(nil)

// GeminiPlaceProvider sources candidate places from Gemini, the same way the
// rest of the engine sources its reasoning calls.
type GeminiPlaceProvider struct {
	aiClient *generativeAI.AIClient
	logger   *slog.Logger
	timeout  time.Duration
}

func NewGeminiPlaceProvider(aiClient *generativeAI.AIClient, logger *slog.Logger, timeout time.Duration) *GeminiPlaceProvider {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &GeminiPlaceProvider{
		aiClient: aiClient,
		logger:   logger,
		timeout:  timeout,
	}
}

func (p *GeminiPlaceProvider) SearchPlaces(ctx context.Context, destination, query string, filters types.SearchFilters) ([]types.RawPlace, error) {
	ctx, span := otel.Tracer("PlaceSearchProvider").Start(ctx, "SearchPlaces")
	defer span.End()
	span.SetAttributes(
		attribute.String("search.destination", destination),
		attribute.String("search.query", query),
	)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	limit := filters.Limit
	if limit <= 0 {
		limit = 10
	}
	prompt := getPlaceSearchPrompt(destination, query, limit, filters)
	temperature := float32(0.2)
	response, err := p.aiClient.GenerateContent(ctx, prompt, &genai.GenerateContentConfig{
		Temperature: &temperature,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Place search generation failed")
		return nil, fmt.Errorf("place search for %q failed: %w", query, err)
	}

	var parsed struct {
		Places []types.RawPlace `json:"places"`
	}
	if err := json.Unmarshal([]byte(generativeAI.CleanJSONResponse(response)), &parsed); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to parse place search JSON")
		return nil, fmt.Errorf("failed to parse place search response for %q: %w", query, err)
	}

	results := make([]types.RawPlace, 0, len(parsed.Places))
	for _, place := range parsed.Places {
		if place.PlaceID == "" || place.Name == "" {
			continue
		}
		if filters.MinRating > 0 && place.Rating > 0 && place.Rating < filters.MinRating {
			continue
		}
		if filters.MinReviews > 0 && place.UserRatingsTotal > 0 && place.UserRatingsTotal < filters.MinReviews {
			continue
		}
		results = append(results, place)
		if len(results) >= limit {
			break
		}
	}
	span.SetAttributes(attribute.Int("search.results", len(results)))
	span.SetStatus(codes.Ok, "Place search completed")
	return results, nil
}

func getPlaceSearchPrompt(destination, query string, limit int, filters types.SearchFilters) string {
	constraints := ""
	if filters.MinRating > 0 {
		constraints += fmt.Sprintf("\n            Only include places rated %.1f or higher.", filters.MinRating)
	}
	if filters.MinReviews > 0 {
		constraints += fmt.Sprintf("\n            Only include places with at least %d reviews.", filters.MinReviews)
	}
	return fmt.Sprintf(`
            List up to %d real places in %s matching the search: "%s".%s
            Return the response STRICTLY as a JSON object with:
            {
            "places": [
                {
                "place_id": "a stable unique identifier slug for this place",
                "name": "Name of the place",
                "rating": <float 0-5, omit if unknown>,
                "user_ratings_total": <int, omit if unknown>,
                "types": ["provider style type tags, e.g. museum, restaurant, park"],
                "address": "street address if known",
                "latitude": <float>,
                "longitude": <float>
                }
            ]
            }`, limit, destination, query, constraints)
}
