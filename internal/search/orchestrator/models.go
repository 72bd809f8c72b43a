// internal/search/orchestrator/models.go
package orchestrator

import (
	"context"
	"time"

	"nomad-directory/internal/models"
	"nomad-directory/internal/search/pagination"
)

// Input is one search request. Page is 1-based; Offset, when set, takes
// precedence over Page and is used by the query-string listing endpoint.
type Input struct {
	Query   string                 `json:"query,omitempty"`
	Filters *models.ListingFilters `json:"filters,omitempty"`
	Page    int                    `json:"page,omitempty"`
	Limit   int                    `json:"limit,omitempty"`
	Sort    *models.SortOption     `json:"sort,omitempty"`
	Origin  *models.Coordinates    `json:"origin,omitempty"`
	Offset  *int                   `json:"-"`
}

type Output = pagination.Result[models.SearchResult]

// CandidateSource supplies the unfiltered candidate set. Implementations may
// narrow by the query hints but must not apply any other filtering.
type CandidateSource interface {
	Name() string
	FetchCandidates(ctx context.Context, query models.CandidateQuery) ([]models.Listing, error)
}

// Recorder receives per-request search measurements.
type Recorder interface {
	RecordSearch(ctx context.Context, outcome string, duration time.Duration, matched int)
}
