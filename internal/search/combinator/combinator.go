// internal/search/combinator/combinator.go
package combinator

import (
	"strings"

	"nomad-directory/internal/models"
	"nomad-directory/internal/search/predicate"
)

// EvaluateGroup applies the group's operator over its conditions. A disabled
// group is vacuously satisfied. An empty AND group is true, an empty OR group
// is false.
func EvaluateGroup(listing *models.Listing, group models.FilterGroup) bool {
	if !group.Enabled() {
		return true
	}
	if group.Operator.OrDefault() == models.OperatorOR {
		for _, c := range group.Conditions {
			if predicate.Matches(listing, c) {
				return true
			}
		}
		return false
	}
	return predicate.MatchesAll(listing, group.Conditions)
}

// EvaluateGroups combines the enabled groups with op. Disabled groups are left
// out of the combination entirely, so under OR they do not turn the result
// into an unconditional pass. With no enabled groups the result is true.
func EvaluateGroups(listing *models.Listing, groups []models.FilterGroup, op models.LogicalOperator) bool {
	or := op.OrDefault() == models.OperatorOR
	active := 0
	for _, g := range groups {
		if !g.Enabled() {
			continue
		}
		active++
		matched := EvaluateGroup(listing, g)
		if or && matched {
			return true
		}
		if !or && !matched {
			return false
		}
	}
	if active == 0 {
		return true
	}
	return !or
}

// MatchesFilters ANDs every active top-level filter with the combination
// result. A nil filter set matches everything.
func MatchesFilters(listing *models.Listing, filters *models.ListingFilters) bool {
	if listing == nil {
		return false
	}
	if filters == nil {
		return true
	}
	if filters.Category != "" && listing.Category != filters.Category {
		return false
	}
	if filters.Location != "" && !matchesLocation(listing, filters.Location) {
		return false
	}
	if !containsAll(listing.EcoTags, filters.EcoTags) {
		return false
	}
	if !containsAll(listing.NomadFeatures, filters.NomadFeatures) {
		return false
	}
	if filters.MinRating != nil && (listing.Rating == nil || *listing.Rating < *filters.MinRating) {
		return false
	}
	if filters.MaxPriceRange != "" {
		level := listing.PriceLevel()
		if level == 0 || level > models.PriceLevelOf(filters.MaxPriceRange) {
			return false
		}
	}
	return EvaluateGroups(listing, filters.Combinations, filters.CombinationOperator)
}

// Filter returns the listings that satisfy filters, preserving order.
func Filter(listings []models.Listing, filters *models.ListingFilters) []models.Listing {
	out := make([]models.Listing, 0, len(listings))
	for i := range listings {
		if MatchesFilters(&listings[i], filters) {
			out = append(out, listings[i])
		}
	}
	return out
}

func matchesLocation(listing *models.Listing, location string) bool {
	loc := strings.TrimSpace(location)
	return strings.EqualFold(listing.City, loc) || strings.EqualFold(listing.Country, loc)
}

func containsAll(have, want []string) bool {
	for _, w := range want {
		found := false
		for _, h := range have {
			if h == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
