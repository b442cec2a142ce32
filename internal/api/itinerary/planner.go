package itinerary

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/genai"

	generativeAI "github.com/FACorreiaa/go-trip-itinerary/internal/api/generative_ai"
	"github.com/FACorreiaa/go-trip-itinerary/internal/types"
)

var _ PlanningAssist = (*GeminiPlanner)(nil)

// GeminiPlanner implements the planning-assist collaborator on top of the
// shared Gemini client.
type GeminiPlanner struct {
	aiClient *generativeAI.AIClient
	logger   *slog.Logger
	timeout  time.Duration
}

func NewGeminiPlanner(aiClient *generativeAI.AIClient, logger *slog.Logger, timeout time.Duration) *GeminiPlanner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GeminiPlanner{
		aiClient: aiClient,
		logger:   logger,
		timeout:  timeout,
	}
}

func (p *GeminiPlanner) PlanItinerary(ctx context.Context, req types.PlanningAssistRequest) ([]types.AssistedDayAssignment, error) {
	ctx, span := otel.Tracer("GeminiPlanner").Start(ctx, "PlanItinerary")
	defer span.End()
	span.SetAttributes(
		attribute.String("plan.destination", req.Destination),
		attribute.Int("plan.day_count", req.DayCount),
		attribute.Int("plan.candidates", len(req.Candidates)),
	)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	temperature := float32(0.3)
	response, err := p.aiClient.GenerateContent(ctx, getPlanningPrompt(req), &genai.GenerateContentConfig{
		Temperature: &temperature,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Planning generation failed")
		return nil, fmt.Errorf("failed to generate plan: %w", err)
	}

	var parsed struct {
		Days []types.AssistedDayAssignment `json:"days"`
	}
	if err := json.Unmarshal([]byte(generativeAI.CleanJSONResponse(response)), &parsed); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to parse plan JSON")
		return nil, fmt.Errorf("failed to parse plan response: %w", err)
	}
	if len(parsed.Days) == 0 {
		err := fmt.Errorf("plan response contained no days")
		span.RecordError(err)
		span.SetStatus(codes.Error, "Empty plan")
		return nil, err
	}
	span.SetStatus(codes.Ok, "Plan generated")
	return parsed.Days, nil
}

func getPlanningPrompt(req types.PlanningAssistRequest) string {
	var sb strings.Builder
	for _, poi := range req.Candidates {
		fmt.Fprintf(&sb, "- id: %s | name: %s | category: %s | hours: %.2f | source: %s\n",
			poi.PlaceID, poi.Name, poi.Category, poi.EstimatedDuration, poi.Source)
	}
	return fmt.Sprintf(`
        Build a %d-day visit schedule for %s from this candidate list:
%s
        The traveller's stated preferences are: [%s].
        Hard constraints:
        - At most 8 hours of activity per day, excluding meals.
        - A candidate of 6 hours or more fills its entire day: schedule it alone, nothing else that day.
        - Soft ceilings per slot: morning 3h, afternoon 5h, evening 4h.
        - Leave roughly 30 minutes of travel buffer between places.
        - Never use the same candidate id twice across the whole schedule.
        - Spread the preference-sourced candidates across ALL days, never concentrated on day 1.
        Return the response STRICTLY as a JSON object with:
        {
        "days": [
            {
            "day": <int, 1-based>,
            "morning_ids": ["candidate ids"],
            "afternoon_ids": ["candidate ids"],
            "evening_ids": ["candidate ids"],
            "total_duration": <float, hours>,
            "feasibility_score": <float 0-1, how confidently this day fits the constraints>
            }
        ]
        }`, req.DayCount, req.Destination, sb.String(), strings.Join(req.Preferences, ", "))
}
