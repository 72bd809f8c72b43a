package datasource

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomad-directory/internal/common/config"
	"nomad-directory/internal/common/logger"
	"nomad-directory/internal/models"
)

func TestNew_MemoryDriver(t *testing.T) {
	cfg := &config.Config{}
	cfg.DataSource.Driver = config.DriverMemory
	cfg.DataSource.FixturePath = writeFixture(t, fixtureJSON)

	src, err := New(context.Background(), cfg, logger.NewTestLogger(t))
	require.NoError(t, err)
	assert.Equal(t, config.DriverMemory, src.Name())
	assert.IsType(t, &MemorySource{}, src)
}

func TestNew_MemoryDriverWithCache(t *testing.T) {
	cfg := &config.Config{}
	cfg.DataSource.Driver = config.DriverMemory
	cfg.DataSource.Cache.Enabled = true
	cfg.DataSource.Cache.TTL = 30
	cfg.DataSource.Cache.Prefix = "test"
	cfg.Database.Redis.Address = "localhost:6379"

	src, err := New(context.Background(), cfg, logger.NewTestLogger(t))
	require.NoError(t, err)
	assert.IsType(t, &CachedSource{}, src)
	assert.Equal(t, config.DriverMemory, src.Name())
	assert.NoError(t, src.Close())
}

func TestNew_CachedSourceAgainstRedisServer(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	cfg := &config.Config{}
	cfg.DataSource.Driver = config.DriverMemory
	cfg.DataSource.FixturePath = writeFixture(t, fixtureJSON)
	cfg.DataSource.Cache.Enabled = true
	cfg.DataSource.Cache.TTL = 30
	cfg.DataSource.Cache.Prefix = "test"
	cfg.Database.Redis.Address = mr.Addr()

	src, err := New(context.Background(), cfg, logger.NewTestLogger(t))
	require.NoError(t, err)
	defer src.Close()
	require.NoError(t, src.Ping(context.Background()))

	query := models.CandidateQuery{Category: "coworking", Limit: 10}
	first, err := src.FetchCandidates(context.Background(), query)
	require.NoError(t, err)
	require.Len(t, first, 2)

	key := "test:memory:coworking:10"
	assert.True(t, mr.Exists(key))
	assert.Equal(t, 30, int(mr.TTL(key).Seconds()))

	second, err := src.FetchCandidates(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNew_Errors(t *testing.T) {
	cfg := &config.Config{}
	cfg.DataSource.Driver = "sanity"
	_, err := New(context.Background(), cfg, logger.NewNoOpLogger())
	assert.ErrorIs(t, err, ErrUnknownDriver)

	cfg.DataSource.Driver = config.DriverMemory
	cfg.DataSource.FixturePath = "/does/not/exist.json"
	_, err = New(context.Background(), cfg, logger.NewNoOpLogger())
	assert.Error(t, err)

	cfg.DataSource.Driver = config.DriverElasticsearch
	cfg.Database.Elasticsearch.Addresses = []string{"http://localhost:9200"}
	_, err = New(context.Background(), cfg, logger.NewNoOpLogger())
	assert.ErrorIs(t, err, ErrMissingIndex)
}
