package types

import "strings"

// Provenance values for non-preference searches. A POI fetched by a
// preference-driven search carries the preference string itself.
const (
	SourceGeneral = "general"
	SourceDining  = "dining"
)

// RawPlace is the shape returned by the place-search collaborator. Only
// PlaceID and Name are guaranteed; everything else is best-effort.
type RawPlace struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	Rating           float64  `json:"rating,omitempty"`
	UserRatingsTotal int      `json:"user_ratings_total,omitempty"`
	Types            []string `json:"types,omitempty"`
	Address          string   `json:"address,omitempty"`
	Latitude         float64  `json:"latitude,omitempty"`
	Longitude        float64  `json:"longitude,omitempty"`
	OpenNow          *bool    `json:"open_now,omitempty"`
	PhotoReference   string   `json:"photo_reference,omitempty"`
}

// CandidatePOI is a place decorated for planning: provenance, derived
// category and an estimated visit duration. Created once per planning run
// and treated as immutable afterwards.
type CandidatePOI struct {
	PlaceID           string   `json:"place_id"`
	Name              string   `json:"name"`
	Types             []string `json:"types,omitempty"`
	Category          string   `json:"category"`
	Rating            float64  `json:"rating,omitempty"`
	UserRatingsTotal  int      `json:"user_ratings_total,omitempty"`
	Source            string   `json:"source"`
	Reason            string   `json:"reason,omitempty"`
	EstimatedDuration float64  `json:"estimated_duration"`
	Latitude          float64  `json:"latitude,omitempty"`
	Longitude         float64  `json:"longitude,omitempty"`
}

// IsPreferenceSourced reports whether the POI came from a preference-driven
// search rather than one of the generic category searches.
func (p CandidatePOI) IsPreferenceSourced() bool {
	return p.Source != "" && p.Source != SourceGeneral && p.Source != SourceDining
}

// SearchableText returns the lowercased text the personalization ranker
// matches profile terms against.
func (p CandidatePOI) SearchableText() string {
	parts := make([]string, 0, len(p.Types)+3)
	parts = append(parts, p.Name, p.Category, p.Reason)
	parts = append(parts, p.Types...)
	return strings.ToLower(strings.Join(parts, " "))
}

// PreferenceSet is an ordered list of distinct preference strings.
// Insertion order matters: earlier preferences win priority when early
// allocation rounds are scarce.
type PreferenceSet []string

// NewPreferenceSet deduplicates the given preferences (case-insensitive)
// while preserving first-seen order. Blank entries are dropped.
func NewPreferenceSet(prefs ...string) PreferenceSet {
	seen := make(map[string]bool, len(prefs))
	out := make(PreferenceSet, 0, len(prefs))
	for _, p := range prefs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		key := strings.ToLower(p)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}

// SearchFilters narrows a place search by quality signals.
type SearchFilters struct {
	MinRating  float64 `json:"min_rating,omitempty"`
	MinReviews int     `json:"min_reviews,omitempty"`
	Limit      int     `json:"limit,omitempty"`
}
