package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
// Make fields public so they can be accessed from other packages.
type AppMetrics struct {
	PlanningRunsTotal       metric.Int64Counter
	PlanningFallbacksTotal  metric.Int64Counter
	SearchFailuresTotal     metric.Int64Counter
	PlanningDurationSeconds metric.Float64Histogram
	CandidatePoolSize       metric.Int64Histogram
}

var (
	// Global instance of AppMetrics (initialized once)
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments ONLY ONCE.
// It gets the Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("TripItinerary")
		var err error
		m := &AppMetrics{}

		m.PlanningRunsTotal, err = meter.Int64Counter(
			"planning_runs_total",
			metric.WithDescription("Total number of itinerary planning runs completed"),
			metric.WithUnit("{run}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create planning_runs_total: %v", err)
		}

		m.PlanningFallbacksTotal, err = meter.Int64Counter(
			"planning_fallbacks_total",
			metric.WithDescription("Total number of runs that fell back to the deterministic scheduler"),
			metric.WithUnit("{run}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create planning_fallbacks_total: %v", err)
		}

		m.SearchFailuresTotal, err = meter.Int64Counter(
			"search_failures_total",
			metric.WithDescription("Total number of place searches dropped due to provider failure"),
			metric.WithUnit("{search}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create search_failures_total: %v", err)
		}

		m.PlanningDurationSeconds, err = meter.Float64Histogram(
			"planning_duration_seconds",
			metric.WithDescription("Duration of itinerary planning runs in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create planning_duration_seconds: %v", err)
		}

		m.CandidatePoolSize, err = meter.Int64Histogram(
			"candidate_pool_size",
			metric.WithDescription("Number of candidate POIs per planning run"),
			metric.WithUnit("{poi}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create candidate_pool_size: %v", err)
		}

		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance. It initializes
// them on first use so library consumers and tests never have to care.
func Get() *AppMetrics {
	if appMetrics == nil {
		InitAppMetrics()
	}
	return appMetrics
}
