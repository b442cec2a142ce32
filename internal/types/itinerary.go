package types

import (
	"time"

	"github.com/google/uuid"
)

// DayPlan is one day of the output schedule. A POI identifier appears in at
// most one bucket of at most one day across the whole run.
type DayPlan struct {
	Day              int            `json:"day"`
	Title            string         `json:"title"`
	Description      string         `json:"description,omitempty"`
	Morning          []CandidatePOI `json:"morning"`
	Afternoon        []CandidatePOI `json:"afternoon"`
	Evening          []CandidatePOI `json:"evening"`
	TotalDuration    float64        `json:"total_duration"`
	FeasibilityScore float64        `json:"feasibility_score"`
}

// Activities returns all bucketed POIs in morning, afternoon, evening order.
func (d DayPlan) Activities() []CandidatePOI {
	out := make([]CandidatePOI, 0, len(d.Morning)+len(d.Afternoon)+len(d.Evening))
	out = append(out, d.Morning...)
	out = append(out, d.Afternoon...)
	out = append(out, d.Evening...)
	return out
}

// AssistedDayAssignment is one day of the planning-assist collaborator's
// response: POI identifiers bucketed by time slot.
type AssistedDayAssignment struct {
	Day              int      `json:"day"`
	MorningIDs       []string `json:"morning_ids"`
	AfternoonIDs     []string `json:"afternoon_ids"`
	EveningIDs       []string `json:"evening_ids"`
	TotalDuration    float64  `json:"total_duration,omitempty"`
	FeasibilityScore float64  `json:"feasibility_score,omitempty"`
}

// PlanningAssistRequest is the serialized pool handed to the planning-assist
// collaborator together with the run parameters.
type PlanningAssistRequest struct {
	Destination string         `json:"destination"`
	DayCount    int            `json:"day_count"`
	Preferences PreferenceSet  `json:"preferences"`
	Candidates  []CandidatePOI `json:"candidates"`
}

// TripPackage is one presentation variant sliced from the same underlying
// schedule with different activity/dining caps.
type TripPackage struct {
	ID          uuid.UUID `json:"id"`
	Variant     string    `json:"variant"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Days        []DayPlan `json:"days"`
}

// Package variants produced by the assembler.
const (
	PackageBalanced    = "balanced"
	PackageFoodForward = "food_forward"
	PackageEconomy     = "economy"
)

// SavedItinerary is a generated schedule persisted to the itinerary catalog
// after a successful run.
type SavedItinerary struct {
	ID          uuid.UUID `json:"id"`
	Destination string    `json:"destination"`
	DayCount    int       `json:"day_count"`
	Days        []DayPlan `json:"days"`
	CreatedAt   time.Time `json:"created_at"`
}

// PaginatedItinerariesResponse wraps a catalog listing page.
type PaginatedItinerariesResponse struct {
	Itineraries  []SavedItinerary `json:"itineraries"`
	TotalRecords int              `json:"total_records"`
	Page         int              `json:"page"`
	PageSize     int              `json:"page_size"`
}
