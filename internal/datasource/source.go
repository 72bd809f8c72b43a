// internal/datasource/source.go
package datasource

import (
	"context"
	"errors"

	"nomad-directory/internal/models"
)

var (
	ErrUnknownDriver = errors.New("unknown data source driver")
	ErrMissingTable  = errors.New("table name is required")
	ErrMissingIndex  = errors.New("index name is required")
)

// Source is a read-only store of listings. FetchCandidates may narrow by the
// query hints; callers re-apply every filter themselves.
type Source interface {
	Name() string
	FetchCandidates(ctx context.Context, query models.CandidateQuery) ([]models.Listing, error)
	Ping(ctx context.Context) error
	Close() error
}

// Writer seeds a store. Used by the listing-loader tool.
type Writer interface {
	UpsertListings(ctx context.Context, listings []models.Listing) (int, error)
}

// SchemaPreparer creates the table, index or collection indexes a store
// needs before its first write.
type SchemaPreparer interface {
	EnsureSchema(ctx context.Context) error
}

func applyLimit(listings []models.Listing, limit int) []models.Listing {
	if limit > 0 && len(listings) > limit {
		return listings[:limit]
	}
	return listings
}
