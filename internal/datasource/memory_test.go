package datasource

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomad-directory/internal/models"
)

func ptr[T any](v T) *T { return &v }

const fixtureJSON = `[
  {"_id": "a", "name": "Solar Hub", "slug": "solar-hub", "category": "coworking", "city": "Lisbon",
   "ecoTags": ["solar-powered"], "nomadFeatures": ["fast-wifi"], "priceRange": "$$", "rating": 4.5,
   "coordinates": {"lat": 38.72, "lng": -9.14}, "_createdAt": "2024-05-01T10:00:00Z"},
  {"_id": "b", "name": "Green Bean", "slug": "green-bean", "category": "cafe", "city": "Porto",
   "ecoTags": [], "nomadFeatures": [], "_createdAt": "2024-04-01T10:00:00Z"},
  {"_id": "c", "name": "Leaf Desk", "slug": "leaf-desk", "category": "coworking", "city": "Chiang Mai",
   "ecoTags": ["zero-waste"], "nomadFeatures": [], "_createdAt": "2024-03-01T10:00:00Z"}
]`

func writeFixture(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "listings.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFixture(t *testing.T) {
	listings, err := LoadFixture(writeFixture(t, fixtureJSON))
	require.NoError(t, err)
	require.Len(t, listings, 3)

	first := listings[0]
	assert.Equal(t, "a", first.ID)
	assert.Equal(t, []string{"solar-powered"}, first.EcoTags)
	require.NotNil(t, first.Rating)
	assert.Equal(t, 4.5, *first.Rating)
	require.NotNil(t, first.Coordinates)
	assert.Equal(t, 2024, first.CreatedAt.Year())
	assert.Nil(t, listings[1].Rating)
}

func TestLoadFixture_Errors(t *testing.T) {
	_, err := LoadFixture(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = LoadFixture(writeFixture(t, `{"not": "an array"}`))
	assert.Error(t, err)
}

func TestLoadFixture_ShippedFixtureIsValid(t *testing.T) {
	listings, err := LoadFixture(filepath.Join("..", "..", "fixtures", "listings.json"))
	require.NoError(t, err)
	assert.NotEmpty(t, listings)
	assert.NoError(t, models.ValidateListings(listings))
}

func TestMemorySource_FetchCandidates(t *testing.T) {
	listings, err := LoadFixture(writeFixture(t, fixtureJSON))
	require.NoError(t, err)
	src := NewMemorySource(listings)

	tests := []struct {
		name  string
		query models.CandidateQuery
		want  []string
	}{
		{"everything", models.CandidateQuery{}, []string{"a", "b", "c"}},
		{"category push-down", models.CandidateQuery{Category: "coworking"}, []string{"a", "c"}},
		{"limit", models.CandidateQuery{Limit: 2}, []string{"a", "b"}},
		{"unknown category", models.CandidateQuery{Category: "spa"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := src.FetchCandidates(context.Background(), tt.query)
			require.NoError(t, err)
			ids := []string{}
			for _, l := range got {
				ids = append(ids, l.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestMemorySource_CancelledContext(t *testing.T) {
	src := NewMemorySource([]models.Listing{{ID: "a"}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.FetchCandidates(ctx, models.CandidateQuery{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, src.Ping(ctx), context.Canceled)
	assert.NoError(t, src.Close())
}
