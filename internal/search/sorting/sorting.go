// internal/search/sorting/sorting.go
package sorting

import (
	"sort"
	"strings"

	apperrors "nomad-directory/internal/common/errors"
	"nomad-directory/internal/models"
)

// Lookup resolves a requested ordering against the published catalog.
func Lookup(field models.SortField, direction models.SortDirection) (models.SortOption, error) {
	for _, opt := range models.DefaultSortOptions {
		if opt.Field == field && opt.Direction == direction {
			return opt, nil
		}
	}
	return models.SortOption{}, apperrors.NewInvalidSortOptionError(string(field), string(direction))
}

// Options returns a copy of the catalog.
func Options() []models.SortOption {
	out := make([]models.SortOption, len(models.DefaultSortOptions))
	copy(out, models.DefaultSortOptions)
	return out
}

type key struct {
	present bool
	num     float64
	str     string
	isStr   bool
}

func keyOf(r *models.SearchResult, field models.SortField) key {
	switch field {
	case models.SortRelevance:
		return numKey(r.Relevance)
	case models.SortDistance:
		return numKey(r.DistanceKm)
	case models.SortRating:
		return numKey(r.Rating)
	case models.SortSustainability, models.SortSustainabilityScore:
		return numKey(r.SustainabilityScore)
	case models.SortPrice, models.SortPriceRange:
		level := r.PriceLevel()
		return key{present: level > 0, num: float64(level)}
	case models.SortName:
		return key{present: r.Name != "", str: strings.ToLower(r.Name), isStr: true}
	case models.SortCreatedAt:
		if r.CreatedAt.IsZero() {
			return key{}
		}
		return key{present: true, num: float64(r.CreatedAt.UnixNano())}
	}
	return key{}
}

func numKey(v *float64) key {
	if v == nil {
		return key{}
	}
	return key{present: true, num: *v}
}

// Compare orders a before b (-1), after b (1), or neither (0). Results missing
// the key sort after those that have it in both directions.
func Compare(a, b *models.SearchResult, option models.SortOption) int {
	ka, kb := keyOf(a, option.Field), keyOf(b, option.Field)
	switch {
	case !ka.present && !kb.present:
		return 0
	case !ka.present:
		return 1
	case !kb.present:
		return -1
	}

	var c int
	if ka.isStr {
		c = strings.Compare(ka.str, kb.str)
	} else {
		switch {
		case ka.num < kb.num:
			c = -1
		case ka.num > kb.num:
			c = 1
		}
	}
	if option.Direction == models.SortDesc {
		c = -c
	}
	return c
}

// Sort orders results in place. Equal keys keep their input order.
func Sort(results []models.SearchResult, option models.SortOption) {
	sort.SliceStable(results, func(i, j int) bool {
		return Compare(&results[i], &results[j], option) < 0
	})
}
