// internal/datasource/memory.go
package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"nomad-directory/internal/common/config"
	"nomad-directory/internal/models"
)

// MemorySource serves a fixed listing set, typically loaded from a fixture file.
type MemorySource struct {
	listings []models.Listing
}

func NewMemorySource(listings []models.Listing) *MemorySource {
	return &MemorySource{listings: listings}
}

// LoadFixture reads a JSON array of listings in the content-store shape.
func LoadFixture(path string) ([]models.Listing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var listings []models.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return listings, nil
}

func (s *MemorySource) Name() string { return config.DriverMemory }

func (s *MemorySource) FetchCandidates(ctx context.Context, query models.CandidateQuery) ([]models.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]models.Listing, 0, len(s.listings))
	for _, l := range s.listings {
		if query.Category != "" && l.Category != query.Category {
			continue
		}
		out = append(out, l)
	}
	return applyLimit(out, query.Limit), nil
}

func (s *MemorySource) Ping(ctx context.Context) error { return ctx.Err() }

func (s *MemorySource) Close() error { return nil }
