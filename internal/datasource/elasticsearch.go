// internal/datasource/elasticsearch.go
package datasource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"nomad-directory/internal/common/config"
	"nomad-directory/internal/common/database"
	"nomad-directory/internal/common/logger"
	"nomad-directory/internal/models"
)

const listingIndexMapping = `{
  "mappings": {
    "properties": {
      "name": {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
      "slug": {"type": "keyword"},
      "category": {"type": "keyword"},
      "city": {"type": "keyword"},
      "country": {"type": "keyword"},
      "descriptionShort": {"type": "text"},
      "ecoTags": {"type": "keyword"},
      "nomadFeatures": {"type": "keyword"},
      "priceRange": {"type": "keyword"},
      "rating": {"type": "float"},
      "sustainabilityScore": {"type": "float"},
      "verified": {"type": "boolean"},
      "location": {"type": "geo_point"},
      "createdAt": {"type": "date"}
    }
  }
}`

// esDocument is the indexed shape. The listing id travels as the document
// _id, which may not appear inside _source.
type esDocument struct {
	Name                string      `json:"name"`
	Slug                string      `json:"slug"`
	Category            string      `json:"category"`
	City                string      `json:"city"`
	Country             string      `json:"country,omitempty"`
	DescriptionShort    string      `json:"descriptionShort,omitempty"`
	EcoTags             []string    `json:"ecoTags,omitempty"`
	NomadFeatures       []string    `json:"nomadFeatures,omitempty"`
	PriceRange          string      `json:"priceRange,omitempty"`
	Rating              *float64    `json:"rating,omitempty"`
	SustainabilityScore *float64    `json:"sustainabilityScore,omitempty"`
	Verified            *bool       `json:"verified,omitempty"`
	Location            *esGeoPoint `json:"location,omitempty"`
	CreatedAt           time.Time   `json:"createdAt"`
}

type esGeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type esSearchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string     `json:"_id"`
			Source esDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

type esBulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID     string `json:"_id"`
		Status int    `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error,omitempty"`
	} `json:"items"`
}

type ElasticsearchSource struct {
	client *database.ElasticsearchClient
	index  string
	logger logger.Logger
}

func NewElasticsearchSource(client *database.ElasticsearchClient, log logger.Logger) (*ElasticsearchSource, error) {
	if client.Index == "" {
		return nil, ErrMissingIndex
	}
	return &ElasticsearchSource{
		client: client,
		index:  client.Index,
		logger: log.WithFields(map[string]interface{}{"source": config.DriverElasticsearch, "index": client.Index}),
	}, nil
}

func (s *ElasticsearchSource) Name() string { return config.DriverElasticsearch }

// buildCandidateQuery translates the push-down hints into a search body.
func buildCandidateQuery(query models.CandidateQuery) map[string]interface{} {
	var q map[string]interface{}
	if query.Category != "" {
		q = map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []interface{}{
					map[string]interface{}{"term": map[string]interface{}{"category": query.Category}},
				},
			},
		}
	} else {
		q = map[string]interface{}{"match_all": map[string]interface{}{}}
	}
	return map[string]interface{}{
		"query": q,
		"sort": []interface{}{
			map[string]interface{}{"createdAt": map[string]interface{}{"order": "desc", "unmapped_type": "date"}},
		},
	}
}

func (s *ElasticsearchSource) FetchCandidates(ctx context.Context, query models.CandidateQuery) ([]models.Listing, error) {
	body, err := json.Marshal(buildCandidateQuery(query))
	if err != nil {
		return nil, fmt.Errorf("encode search body: %w", err)
	}

	size := query.Limit
	if size <= 0 {
		size = 10000
	}
	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  bytes.NewReader(body),
		Size:  &size,
	}

	res, err := req.Do(ctx, s.client.Client)
	if err != nil {
		return nil, fmt.Errorf("search listings: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search query failed: %s", res.String())
	}

	var r esSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	listings := make([]models.Listing, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		listings = append(listings, fromDocument(hit.ID, hit.Source))
	}
	return listings, nil
}

// EnsureSchema creates the listings index with its mapping when missing.
func (s *ElasticsearchSource) EnsureSchema(ctx context.Context) error {
	exists, err := esapi.IndicesExistsRequest{Index: []string{s.index}}.Do(ctx, s.client.Client)
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	exists.Body.Close()
	if exists.StatusCode == 200 {
		return nil
	}

	res, err := esapi.IndicesCreateRequest{
		Index: s.index,
		Body:  strings.NewReader(listingIndexMapping),
	}.Do(ctx, s.client.Client)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index failed: %s", res.String())
	}
	s.logger.Info("index created", nil)
	return nil
}

// UpsertListings bulk-indexes listings by id and refreshes the index.
func (s *ElasticsearchSource) UpsertListings(ctx context.Context, listings []models.Listing) (int, error) {
	if len(listings) == 0 {
		return 0, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, l := range listings {
		meta := map[string]interface{}{"index": map[string]interface{}{"_index": s.index, "_id": l.ID}}
		if err := enc.Encode(meta); err != nil {
			return 0, err
		}
		if err := enc.Encode(toDocument(l)); err != nil {
			return 0, err
		}
	}

	res, err := esapi.BulkRequest{Body: &buf, Refresh: "true"}.Do(ctx, s.client.Client)
	if err != nil {
		return 0, fmt.Errorf("bulk index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, fmt.Errorf("bulk index failed: %s", res.String())
	}

	var r esBulkResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, fmt.Errorf("decode bulk response: %w", err)
	}

	written := 0
	for _, item := range r.Items {
		for _, result := range item {
			if result.Error != nil {
				s.logger.Warn("listing not indexed", map[string]interface{}{
					"id":     result.ID,
					"reason": result.Error.Reason,
				})
				continue
			}
			written++
		}
	}
	if r.Errors && written == 0 {
		return 0, fmt.Errorf("bulk index rejected every listing")
	}
	return written, nil
}

func (s *ElasticsearchSource) Ping(ctx context.Context) error { return s.client.Ping(ctx) }

func (s *ElasticsearchSource) Close() error { return s.client.Close() }

func toDocument(l models.Listing) esDocument {
	doc := esDocument{
		Name:                l.Name,
		Slug:                l.Slug,
		Category:            l.Category,
		City:                l.City,
		Country:             l.Country,
		DescriptionShort:    l.DescriptionShort,
		EcoTags:             l.EcoTags,
		NomadFeatures:       l.NomadFeatures,
		PriceRange:          l.PriceRange,
		Rating:              l.Rating,
		SustainabilityScore: l.SustainabilityScore,
		Verified:            l.Verified,
		CreatedAt:           l.CreatedAt,
	}
	if l.Coordinates != nil {
		doc.Location = &esGeoPoint{Lat: l.Coordinates.Lat, Lon: l.Coordinates.Lng}
	}
	return doc
}

func fromDocument(id string, doc esDocument) models.Listing {
	l := models.Listing{
		ID:                  id,
		Name:                doc.Name,
		Slug:                doc.Slug,
		Category:            doc.Category,
		City:                doc.City,
		Country:             doc.Country,
		DescriptionShort:    doc.DescriptionShort,
		EcoTags:             doc.EcoTags,
		NomadFeatures:       doc.NomadFeatures,
		PriceRange:          doc.PriceRange,
		Rating:              doc.Rating,
		SustainabilityScore: doc.SustainabilityScore,
		Verified:            doc.Verified,
		CreatedAt:           doc.CreatedAt,
	}
	if doc.Location != nil {
		l.Coordinates = &models.Coordinates{Lat: doc.Location.Lat, Lng: doc.Location.Lon}
	}
	return l
}
