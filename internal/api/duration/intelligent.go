package duration

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/genai"

	generativeAI "github.com/FACorreiaa/go-trip-itinerary/internal/api/generative_ai"
	"github.com/FACorreiaa/go-trip-itinerary/internal/types"
)

// IntelligentEstimator delegates ambiguous POIs to Gemini but always falls
// back to the deterministic table chain on error, timeout or an
// out-of-range answer. The fallback is mandatory: Estimate never fails.
type IntelligentEstimator struct {
	base     *Estimator
	aiClient *generativeAI.AIClient
	logger   *slog.Logger
	timeout  time.Duration
}

func NewIntelligentEstimator(aiClient *generativeAI.AIClient, logger *slog.Logger, timeout time.Duration) *IntelligentEstimator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &IntelligentEstimator{
		base:     NewEstimator(),
		aiClient: aiClient,
		logger:   logger,
		timeout:  timeout,
	}
}

// Estimate asks the model for a duration when the POI carries no usable type
// information, otherwise (and on any AI failure) uses the table chain.
func (e *IntelligentEstimator) Estimate(ctx context.Context, poi types.CandidatePOI) float64 {
	if !e.isAmbiguous(poi) || e.aiClient == nil {
		return e.base.Estimate(poi)
	}

	ctx, span := otel.Tracer("DurationEstimator").Start(ctx, "IntelligentEstimate")
	defer span.End()
	span.SetAttributes(attribute.String("poi.name", poi.Name))

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	prompt := fmt.Sprintf(
		"How many hours does a typical tourist spend visiting %q (category: %s)? Respond with a single decimal number of hours, nothing else.",
		poi.Name, poi.Category)
	temperature := float32(0.1)
	response, err := e.aiClient.GenerateContent(ctx, prompt, &genai.GenerateContentConfig{
		Temperature: &temperature,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "AI duration estimate failed")
		e.logger.WarnContext(ctx, "AI duration estimate failed, using table fallback",
			slog.String("poi", poi.Name), slog.Any("error", err))
		return e.base.Estimate(poi)
	}

	hours, err := parseHours(response)
	if err != nil || hours < MinVisitHours || hours > MaxVisitHours {
		e.logger.WarnContext(ctx, "AI duration estimate unusable, using table fallback",
			slog.String("poi", poi.Name), slog.String("response", response))
		return e.base.Estimate(poi)
	}
	span.SetStatus(codes.Ok, "AI duration estimate accepted")
	return hours
}

// isAmbiguous reports whether the deterministic chain would land on a pure
// default for this POI.
func (e *IntelligentEstimator) isAmbiguous(poi types.CandidatePOI) bool {
	name := strings.ToLower(poi.Name)
	for _, o := range landmarkOverrides {
		if strings.Contains(name, o.substr) {
			return false
		}
	}
	for _, t := range poi.Types {
		if _, ok := typeHours[strings.ToLower(strings.TrimSpace(t))]; ok {
			return false
		}
	}
	return NormalizeCategory(poi.Category) == CategoryDefault
}

func parseHours(response string) (float64, error) {
	fields := strings.Fields(strings.TrimSpace(response))
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty duration response")
	}
	return strconv.ParseFloat(strings.TrimSuffix(fields[0], "h"), 64)
}
