package database

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomad-directory/internal/common/config"
)

// ==========================
// Postgres
// ==========================

func TestPostgresClient_WithTx_Commits(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	client := NewPostgresFromDB(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE listings").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = client.WithTx(context.Background(), func(tx *sql.Tx) error {
		_, err := tx.Exec("UPDATE listings SET verified = true")
		return err
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresClient_WithTx_RollsBack(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	client := NewPostgresFromDB(db)

	mock.ExpectBegin()
	mock.ExpectRollback()

	failure := errors.New("constraint violated")
	err = client.WithTx(context.Background(), func(*sql.Tx) error { return failure })
	assert.ErrorIs(t, err, failure)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresConfig_GetDSN(t *testing.T) {
	cfg := config.PostgresConfig{Host: "db", Port: 5432, Database: "nomad", User: "u", Password: "p", SSLMode: "disable"}
	dsn := cfg.GetDSN()
	assert.Contains(t, dsn, "host=db")
	assert.Contains(t, dsn, "dbname=nomad")
	assert.Contains(t, dsn, "sslmode=disable")
}

// ==========================
// Redis
// ==========================

func TestNewRedis_RequiresAddress(t *testing.T) {
	_, err := NewRedis(config.RedisConfig{})
	assert.Error(t, err)
}

func TestRedisClient_Commands(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	client := NewRedisFromClient(rdb)
	ctx := context.Background()

	mock.ExpectPing().SetVal("PONG")
	assert.NoError(t, client.Ping(ctx))

	mock.ExpectSet("k", []byte("v"), time.Minute).SetVal("OK")
	assert.NoError(t, client.Set(ctx, "k", []byte("v"), time.Minute))

	mock.ExpectGet("k").SetVal("v")
	got, err := client.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	mock.ExpectGet("missing").RedisNil()
	_, err = client.Get(ctx, "missing")
	assert.ErrorIs(t, err, redis.Nil)

	mock.ExpectDel("k").SetVal(1)
	assert.NoError(t, client.Del(ctx, "k"))

	mock.ExpectPing().SetErr(errors.New("refused"))
	assert.Error(t, client.Ping(ctx))

	assert.NoError(t, client.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Elasticsearch
// ==========================

func newESClient(t *testing.T, status int) *ElasticsearchClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(status)
	}))
	t.Cleanup(srv.Close)

	client, err := NewElasticsearch(config.ElasticsearchConfig{
		Addresses: []string{srv.URL},
		Index:     "listings",
	}, nil)
	require.NoError(t, err)
	return client
}

func TestElasticsearchClient_Ping(t *testing.T) {
	ok := newESClient(t, http.StatusOK)
	assert.NoError(t, ok.Ping(context.Background()))
	assert.Equal(t, "listings", ok.Index)

	down := newESClient(t, http.StatusServiceUnavailable)
	assert.Error(t, down.Ping(context.Background()))
}
