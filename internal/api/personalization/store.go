package personalization

import (
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/FACorreiaa/go-trip-itinerary/internal/types"
)

// Store keeps session personalization profiles in memory with a fixed
// inactivity TTL. Profiles expire silently and are never written to any
// durable preference catalog; this is the whole point of the type.
type Store struct {
	cache  *cache.Cache
	logger *slog.Logger
}

func NewStore(ttl time.Duration, logger *slog.Logger) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Store{
		cache:  cache.New(ttl, 10*time.Minute),
		logger: logger,
	}
}

// Get returns the live profile for a session, if it hasn't expired.
func (s *Store) Get(sessionID string) (*types.SessionPersonalizationProfile, bool) {
	v, found := s.cache.Get(sessionID)
	if !found {
		return nil, false
	}
	profile, ok := v.(*types.SessionPersonalizationProfile)
	return profile, ok
}

// Upsert merges the delta into the session's profile, creating it on first
// contact. Each touch refreshes the TTL.
func (s *Store) Upsert(sessionID string, delta *types.SessionPersonalizationProfile) *types.SessionPersonalizationProfile {
	profile, found := s.Get(sessionID)
	if !found {
		profile = &types.SessionPersonalizationProfile{SessionID: sessionID}
		s.logger.Debug("Created session personalization profile", slog.String("session_id", sessionID))
	}
	profile.Merge(delta)
	s.cache.Set(sessionID, profile, cache.DefaultExpiration)
	return profile
}
