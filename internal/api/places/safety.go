package places

import (
	"strings"

	"github.com/FACorreiaa/go-trip-itinerary/internal/types"
)

// Venue categories never admitted into a candidate pool.
var blockedTypes = map[string]bool{
	"adult_entertainment": true,
	"strip_club":          true,
	"hostess_club":        true,
	"love_hotel":          true,
	"gambling_den":        true,
	"smoke_shop":          true,
	"gun_range":           true,
}

var blockedNameKeywords = []string{
	"strip club",
	"gentlemen's club",
	"adult",
	"xxx",
	"hostess",
}

// passesSafetyFilter rejects places matching disallowed venue categories or
// names before they enter the pool.
func passesSafetyFilter(place types.RawPlace) bool {
	for _, t := range place.Types {
		if blockedTypes[strings.ToLower(strings.TrimSpace(t))] {
			return false
		}
	}
	name := strings.ToLower(place.Name)
	for _, kw := range blockedNameKeywords {
		if strings.Contains(name, kw) {
			return false
		}
	}
	return true
}
