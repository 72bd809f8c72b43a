// internal/search/orchestrator/textmatch.go
package orchestrator

import (
	"math"
	"strings"

	"nomad-directory/internal/models"
)

const (
	nameWeight        = 3.0
	descriptionWeight = 2.0
	tagWeight         = 1.0
)

// textScore returns the relevance of listing for an already lower-cased,
// trimmed query. ok is false when nothing matched.
func textScore(listing *models.Listing, query string) (float64, bool) {
	score := 0.0
	if strings.Contains(strings.ToLower(listing.Name), query) {
		score += nameWeight
	}
	if strings.Contains(strings.ToLower(listing.DescriptionShort), query) {
		score += descriptionWeight
	}
	for _, tag := range listing.EcoTags {
		if strings.Contains(strings.ToLower(tag), query) {
			score += tagWeight
		}
	}
	for _, feature := range listing.NomadFeatures {
		if strings.Contains(strings.ToLower(feature), query) {
			score += tagWeight
		}
	}
	return score, score > 0
}

func normalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

const earthRadiusKm = 6371.0

// distanceKm is the great-circle distance between two points.
func distanceKm(from, to models.Coordinates) float64 {
	lat1, lat2 := radians(from.Lat), radians(to.Lat)
	dLat := lat2 - lat1
	dLng := radians(to.Lng - from.Lng)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(a)))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
