package duration

import (
	"sort"
	"strings"

	"github.com/FACorreiaa/go-trip-itinerary/internal/types"
)

// Duration bounds in hours. Estimates outside this range are rejected when
// they come from the AI-assisted path and never produced by the tables.
const (
	MinVisitHours     = 0.25
	MaxVisitHours     = 12.0
	DefaultVisitHours = 2.0

	// FullDayThreshold marks a POI as a full-day anchor: it consumes the
	// whole daily activity budget and is never co-scheduled.
	FullDayThreshold = 6.0
)

// Category is the coarse human-readable classification used when no raw
// provider type matches the duration table.
type Category string

const (
	CategoryRestaurant    Category = "restaurant"
	CategoryMuseum        Category = "museum"
	CategoryShopping      Category = "shopping"
	CategoryNature        Category = "nature"
	CategoryEntertainment Category = "entertainment"
	CategoryAttraction    Category = "attraction"
	CategoryBeach         Category = "beach"
	CategorySpa           Category = "spa"
	CategoryDefault       Category = "default"
)

// landmarkOverride matches famous, queue-prone or unusually large attractions
// by case-insensitive substring on the POI name. Checked before any table.
type landmarkOverride struct {
	substr string
	hours  float64
}

var landmarkOverrides = []landmarkOverride{
	{"disneyland", 8.0},
	{"disney world", 8.0},
	{"universal studios", 8.0},
	{"everland", 8.0},
	{"lotte world", 7.0},
	{"ocean park", 7.0},
	{"tivoli gardens", 5.0},
	{"louvre", 4.0},
	{"british museum", 4.0},
	{"metropolitan museum", 4.0},
	{"vatican museums", 4.0},
	{"hermitage", 4.0},
	{"smithsonian", 4.0},
	{"forbidden city", 4.0},
	{"palace of versailles", 4.5},
	{"alhambra", 3.5},
	{"san diego zoo", 5.0},
	{"singapore zoo", 4.5},
	{"monterey bay aquarium", 3.0},
	{"churaumi aquarium", 3.0},
	{"eiffel tower", 2.0},
	{"tokyo skytree", 2.0},
	{"burj khalifa", 2.0},
	{"empire state building", 2.0},
	{"sagrada familia", 2.0},
	{"fushimi inari", 2.5},
}

// typeHours is keyed by the raw provider type tag. Types range from
// full-day (theme/water parks) down to quick stops (viewpoints, stations).
var typeHours = map[string]float64{
	"theme_park":         8.0,
	"amusement_park":     7.0,
	"water_park":         6.0,
	"zoo":                4.0,
	"aquarium":           2.5,
	"national_park":      6.0,
	"museum":             2.5,
	"art_gallery":        1.5,
	"palace":             2.5,
	"castle":             2.5,
	"temple":             1.5,
	"shrine":             1.0,
	"church":             1.0,
	"place_of_worship":   1.0,
	"historical_site":    1.5,
	"monument":           0.75,
	"stadium":            3.0,
	"casino":             3.0,
	"shopping_mall":      3.0,
	"department_store":   2.0,
	"market":             1.5,
	"restaurant":         1.5,
	"cafe":               1.0,
	"bakery":             0.5,
	"bar":                1.5,
	"night_club":         2.5,
	"botanical_garden":   2.0,
	"park":               1.5,
	"garden":             1.5,
	"beach":              3.0,
	"hiking_trail":       3.5,
	"spa":                2.5,
	"hot_spring":         2.5,
	"movie_theater":      2.5,
	"bowling_alley":      1.5,
	"viewpoint":          0.5,
	"observation_deck":   1.0,
	"scenic_lookout":     0.5,
	"bridge":             0.5,
	"square":             0.5,
	"train_station":      0.25,
	"subway_station":     0.25,
	"transit_station":    0.25,
	"tourist_attraction": 2.0,
	"point_of_interest":  1.5,
}

// categoryHours is the coarse fallback when no raw type matched.
var categoryHours = map[Category]float64{
	CategoryRestaurant:    1.5,
	CategoryMuseum:        2.5,
	CategoryShopping:      2.0,
	CategoryNature:        2.0,
	CategoryEntertainment: 2.5,
	CategoryAttraction:    2.0,
	CategoryBeach:         3.0,
	CategorySpa:           2.5,
	CategoryDefault:       DefaultVisitHours,
}

// NormalizeCategory maps a free-form category string onto the enumerated
// set. Total: unknown input maps to CategoryDefault.
func NormalizeCategory(raw string) Category {
	switch c := Category(strings.ToLower(strings.TrimSpace(raw))); c {
	case CategoryRestaurant, CategoryMuseum, CategoryShopping, CategoryNature,
		CategoryEntertainment, CategoryAttraction, CategoryBeach, CategorySpa:
		return c
	}
	switch {
	case containsAny(raw, "food", "dining", "cuisine", "eat"):
		return CategoryRestaurant
	case containsAny(raw, "gallery", "history", "heritage", "culture"):
		return CategoryMuseum
	case containsAny(raw, "shop", "market", "mall"):
		return CategoryShopping
	case containsAny(raw, "park", "garden", "mountain", "lake", "outdoor"):
		return CategoryNature
	case containsAny(raw, "show", "theater", "theatre", "nightlife", "club"):
		return CategoryEntertainment
	case containsAny(raw, "coast", "shore", "beach"):
		return CategoryBeach
	case containsAny(raw, "spa", "wellness", "onsen"):
		return CategorySpa
	case containsAny(raw, "landmark", "sight", "attraction", "temple", "shrine"):
		return CategoryAttraction
	}
	return CategoryDefault
}

// Estimator resolves an expected visit duration for a POI. Deterministic and
// total: the same attributes always produce the same positive value.
type Estimator struct{}

func NewEstimator() *Estimator {
	return &Estimator{}
}

// Estimate resolves the visit duration in hours. Resolution order: named
// landmark override, raw type table (most specific type first), coarse
// category fallback, global default.
func (e *Estimator) Estimate(poi types.CandidatePOI) float64 {
	name := strings.ToLower(poi.Name)

	for _, o := range landmarkOverrides {
		if strings.Contains(name, o.substr) {
			return o.hours
		}
	}

	// Longer type strings are more specific, check them first.
	sorted := make([]string, len(poi.Types))
	copy(sorted, poi.Types)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) > len(sorted[j])
	})
	for _, t := range sorted {
		key := strings.ToLower(strings.TrimSpace(t))
		if hours, ok := typeHours[key]; ok {
			return adjustForContext(key, name, hours)
		}
	}

	cat := NormalizeCategory(poi.Category)
	hours := categoryHours[cat]
	if hours == 0 {
		hours = DefaultVisitHours
	}
	return adjustForContext(string(cat), name, hours)
}

// adjustForContext tweaks a table hit using keywords in the POI name.
func adjustForContext(key, name string, hours float64) float64 {
	switch {
	case isDiningKey(key):
		if containsAny(name, "fast food", "takeaway", "take-away", "buffet", "food court") {
			return hours * 0.5
		}
		if containsAny(name, "fine dining", "tasting menu", "omakase", "michelin", "kaiseki") {
			return hours * 1.75
		}
	case isShoppingKey(key):
		if containsAny(name, "outlet", "mall") {
			return hours * 1.5
		}
	case isParkKey(key):
		if containsAny(name, "national", "yellowstone", "yosemite", "banff") {
			return hours * 2
		}
	case strings.Contains(key, "beach"):
		if strings.Contains(name, "resort") {
			return hours * 1.5
		}
	}
	return hours
}

func isDiningKey(key string) bool {
	return key == "restaurant" || key == "cafe" || key == "bakery" || key == "bar" ||
		key == string(CategoryRestaurant)
}

func isShoppingKey(key string) bool {
	return strings.Contains(key, "shopping") || key == "department_store" || key == "market"
}

func isParkKey(key string) bool {
	return key == "park" || key == "garden" || key == "botanical_garden" ||
		key == string(CategoryNature)
}

func containsAny(s string, subs ...string) bool {
	s = strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
