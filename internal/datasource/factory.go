// internal/datasource/factory.go
package datasource

import (
	"context"
	"fmt"

	"nomad-directory/internal/common/config"
	"nomad-directory/internal/common/database"
	"nomad-directory/internal/common/logger"
)

// New builds the configured source and wraps it in the redis cache when
// enabled. It does not verify connectivity; callers Ping.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (Source, error) {
	source, err := newBase(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	if !cfg.DataSource.Cache.Enabled {
		return source, nil
	}
	redisClient, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		source.Close()
		return nil, err
	}
	return NewCachedSource(source, redisClient, cfg.DataSource.Cache.TTLDuration(), cfg.DataSource.Cache.Prefix, log), nil
}

func newBase(ctx context.Context, cfg *config.Config, log logger.Logger) (Source, error) {
	switch cfg.DataSource.Driver {
	case config.DriverMemory, "":
		if cfg.DataSource.FixturePath == "" {
			return NewMemorySource(nil), nil
		}
		listings, err := LoadFixture(cfg.DataSource.FixturePath)
		if err != nil {
			return nil, err
		}
		log.Info("fixture loaded", map[string]interface{}{
			"path":  cfg.DataSource.FixturePath,
			"count": len(listings),
		})
		return NewMemorySource(listings), nil

	case config.DriverPostgres:
		client, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return nil, err
		}
		return NewPostgresSource(client, cfg.Database.Postgres.Table, log)

	case config.DriverElasticsearch:
		client, err := database.NewElasticsearch(cfg.Database.Elasticsearch, nil)
		if err != nil {
			return nil, err
		}
		return NewElasticsearchSource(client, log)

	case config.DriverMongoDB:
		client, err := database.NewMongo(ctx, cfg.Database.MongoDB)
		if err != nil {
			return nil, err
		}
		return NewMongoSource(client, log), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.DataSource.Driver)
}
