package sorting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "nomad-directory/internal/common/errors"
	"nomad-directory/internal/models"
)

func ptr[T any](v T) *T { return &v }

func result(id string, mutate func(*models.SearchResult)) models.SearchResult {
	r := models.SearchResult{Listing: models.Listing{ID: id, Name: id}}
	if mutate != nil {
		mutate(&r)
	}
	return r
}

func withRating(v *float64) func(*models.SearchResult) {
	return func(r *models.SearchResult) { r.Rating = v }
}

func order(results []models.SearchResult) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.ID)
	}
	return out
}

func TestLookup(t *testing.T) {
	opt, err := Lookup(models.SortRating, models.SortDesc)
	require.NoError(t, err)
	assert.Equal(t, "Highest rated", opt.Label)

	_, err = Lookup(models.SortRating, "sideways")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidSortOption))
	assert.True(t, apperrors.IsValidation(err))

	_, err = Lookup("wifiSpeed", models.SortDesc)
	assert.True(t, apperrors.IsValidation(err))

	// distance desc is not in the catalog
	_, err = Lookup(models.SortDistance, models.SortDesc)
	assert.Error(t, err)
}

func TestOptions_ReturnsCopy(t *testing.T) {
	opts := Options()
	require.Len(t, opts, len(models.DefaultSortOptions))
	opts[0].Label = "changed"
	assert.NotEqual(t, "changed", models.DefaultSortOptions[0].Label)
}

func TestSort_RatingDescMissingLast(t *testing.T) {
	results := []models.SearchResult{
		result("a", withRating(ptr(4.5))),
		result("b", withRating(nil)),
		result("c", withRating(ptr(3.0))),
	}
	Sort(results, models.SortOption{Field: models.SortRating, Direction: models.SortDesc})
	assert.Equal(t, []string{"a", "c", "b"}, order(results))
}

func TestSort_MissingLastInBothDirections(t *testing.T) {
	for _, dir := range []models.SortDirection{models.SortAsc, models.SortDesc} {
		t.Run(string(dir), func(t *testing.T) {
			results := []models.SearchResult{
				result("none-1", nil),
				result("low", withRating(ptr[float64](1))),
				result("none-2", nil),
				result("high", withRating(ptr[float64](5))),
			}
			Sort(results, models.SortOption{Field: models.SortRating, Direction: dir})
			got := order(results)
			assert.Equal(t, []string{"none-1", "none-2"}, got[2:])
		})
	}
}

func TestSort_Stable(t *testing.T) {
	results := []models.SearchResult{
		result("first", withRating(ptr[float64](4))),
		result("top", withRating(ptr[float64](5))),
		result("second", withRating(ptr[float64](4))),
		result("third", withRating(ptr[float64](4))),
	}
	Sort(results, models.SortOption{Field: models.SortRating, Direction: models.SortDesc})
	assert.Equal(t, []string{"top", "first", "second", "third"}, order(results))

	Sort(results, models.SortOption{Field: models.SortRating, Direction: models.SortAsc})
	assert.Equal(t, []string{"first", "second", "third", "top"}, order(results))
}

func TestCompare(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		a, b models.SearchResult
		opt  models.SortOption
		want int
	}{
		{"price asc by dollar count", result("a", func(r *models.SearchResult) { r.PriceRange = "$" }),
			result("b", func(r *models.SearchResult) { r.PriceRange = "$$$" }),
			models.SortOption{Field: models.SortPrice, Direction: models.SortAsc}, -1},
		{"price desc", result("a", func(r *models.SearchResult) { r.PriceRange = "$" }),
			result("b", func(r *models.SearchResult) { r.PriceRange = "$$$" }),
			models.SortOption{Field: models.SortPrice, Direction: models.SortDesc}, 1},
		{"malformed price is missing", result("a", func(r *models.SearchResult) { r.PriceRange = "cheap" }),
			result("b", func(r *models.SearchResult) { r.PriceRange = "$$$$" }),
			models.SortOption{Field: models.SortPriceRange, Direction: models.SortAsc}, 1},
		{"name case-insensitive", result("apple", nil), result("Banana", nil),
			models.SortOption{Field: models.SortName, Direction: models.SortAsc}, -1},
		{"name equal ignoring case", result("Hub", nil), result("hub", nil),
			models.SortOption{Field: models.SortName, Direction: models.SortDesc}, 0},
		{"sustainability alias", result("a", func(r *models.SearchResult) { r.SustainabilityScore = ptr(90.0) }),
			result("b", func(r *models.SearchResult) { r.SustainabilityScore = ptr(70.0) }),
			models.SortOption{Field: models.SortSustainability, Direction: models.SortDesc}, -1},
		{"created newest first", result("a", func(r *models.SearchResult) { r.CreatedAt = now }),
			result("b", func(r *models.SearchResult) { r.CreatedAt = now.Add(time.Hour) }),
			models.SortOption{Field: models.SortCreatedAt, Direction: models.SortDesc}, 1},
		{"distance nearest first", result("a", func(r *models.SearchResult) { r.DistanceKm = ptr(2.0) }),
			result("b", func(r *models.SearchResult) { r.DistanceKm = ptr(10.0) }),
			models.SortOption{Field: models.SortDistance, Direction: models.SortAsc}, -1},
		{"relevance missing on both", result("a", nil), result("b", nil),
			models.SortOption{Field: models.SortRelevance, Direction: models.SortDesc}, 0},
		{"unknown field compares equal", result("a", nil), result("b", nil),
			models.SortOption{Field: "unknown", Direction: models.SortAsc}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Compare(&tt.a, &tt.b, tt.opt))
		})
	}
}
