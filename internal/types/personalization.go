package types

import (
	"strings"
	"time"
)

// SessionPersonalizationProfile holds preference signals inferred during one
// conversation session. It lives in a TTL cache only and is never written to
// any durable preference store.
type SessionPersonalizationProfile struct {
	SessionID       string             `json:"session_id"`
	FreeTextTags    []string           `json:"free_text_tags,omitempty"`
	CuisinePrefs    []string           `json:"cuisine_prefs,omitempty"`
	ActivityPrefs   []string           `json:"activity_prefs,omitempty"`
	Avoidances      []string           `json:"avoidances,omitempty"`
	CategoryWeights map[string]float64 `json:"category_weights,omitempty"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// Merge folds newer signal into the profile. Lists are appended with
// case-insensitive dedup, weight overrides are merged per key. The profile is
// never wholesale replaced.
func (p *SessionPersonalizationProfile) Merge(delta *SessionPersonalizationProfile) {
	if delta == nil {
		return
	}
	p.FreeTextTags = mergeTerms(p.FreeTextTags, delta.FreeTextTags)
	p.CuisinePrefs = mergeTerms(p.CuisinePrefs, delta.CuisinePrefs)
	p.ActivityPrefs = mergeTerms(p.ActivityPrefs, delta.ActivityPrefs)
	p.Avoidances = mergeTerms(p.Avoidances, delta.Avoidances)
	if len(delta.CategoryWeights) > 0 {
		if p.CategoryWeights == nil {
			p.CategoryWeights = make(map[string]float64, len(delta.CategoryWeights))
		}
		for k, v := range delta.CategoryWeights {
			p.CategoryWeights[strings.ToLower(k)] = v
		}
	}
	p.UpdatedAt = time.Now()
}

func mergeTerms(existing, incoming []string) []string {
	if len(incoming) == 0 {
		return existing
	}
	seen := make(map[string]bool, len(existing))
	for _, t := range existing {
		seen[strings.ToLower(t)] = true
	}
	for _, t := range incoming {
		t = strings.TrimSpace(t)
		if t == "" || seen[strings.ToLower(t)] {
			continue
		}
		seen[strings.ToLower(t)] = true
		existing = append(existing, t)
	}
	return existing
}
