// internal/datasource/cache.go
package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"nomad-directory/internal/common/database"
	"nomad-directory/internal/common/logger"
	"nomad-directory/internal/common/metrics"
	"nomad-directory/internal/models"
)

// CachedSource is a cache-aside wrapper around another Source. Cache failures
// are logged and bypassed; they never fail a fetch.
type CachedSource struct {
	next   Source
	cache  *database.RedisClient
	ttl    time.Duration
	prefix string
	logger logger.Logger
}

func NewCachedSource(next Source, cache *database.RedisClient, ttl time.Duration, prefix string, log logger.Logger) *CachedSource {
	return &CachedSource{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		prefix: prefix,
		logger: log.WithFields(map[string]interface{}{"source": next.Name(), "cache": "redis"}),
	}
}

func (s *CachedSource) Name() string { return s.next.Name() }

func (s *CachedSource) cacheKey(query models.CandidateQuery) string {
	category := query.Category
	if category == "" {
		category = "*"
	}
	return fmt.Sprintf("%s:%s:%s:%d", s.prefix, s.next.Name(), category, query.Limit)
}

func (s *CachedSource) FetchCandidates(ctx context.Context, query models.CandidateQuery) ([]models.Listing, error) {
	key := s.cacheKey(query)

	data, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		var listings []models.Listing
		if jsonErr := json.Unmarshal(data, &listings); jsonErr == nil {
			metrics.CandidateCacheLookups.WithLabelValues("hit").Inc()
			return listings, nil
		}
		metrics.CandidateCacheLookups.WithLabelValues("error").Inc()
		s.logger.Warn("discarding unreadable cache entry", map[string]interface{}{"key": key})
	case errors.Is(err, redis.Nil):
		metrics.CandidateCacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.CandidateCacheLookups.WithLabelValues("error").Inc()
		s.logger.Warn("cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
	}

	listings, err := s.next.FetchCandidates(ctx, query)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(listings)
	if err != nil {
		s.logger.Warn("cache encode failed", map[string]interface{}{"error": err.Error()})
		return listings, nil
	}
	if err := s.cache.Set(ctx, key, payload, s.ttl); err != nil {
		s.logger.Warn("cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
	return listings, nil
}

// Ping checks the underlying source only; the cache is optional.
func (s *CachedSource) Ping(ctx context.Context) error { return s.next.Ping(ctx) }

func (s *CachedSource) Close() error {
	return errors.Join(s.next.Close(), s.cache.Close())
}
