package datasource

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomad-directory/internal/common/database"
	"nomad-directory/internal/common/logger"
	"nomad-directory/internal/models"
)

var pgColumns = []string{
	"id", "name", "slug", "category", "city", "country", "description_short", "eco_tags", "nomad_features",
	"price_range", "rating", "sustainability_score", "verified", "latitude", "longitude", "created_at",
}

func newMockPostgresSource(t *testing.T) (*PostgresSource, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	src, err := NewPostgresSource(database.NewPostgresFromDB(db), "listings", logger.NewTestLogger(t))
	require.NoError(t, err)
	return src, mock
}

func TestNewPostgresSource_RequiresTable(t *testing.T) {
	_, err := NewPostgresSource(nil, "", logger.NewNoOpLogger())
	assert.ErrorIs(t, err, ErrMissingTable)
}

func TestPostgresSource_FetchCandidates(t *testing.T) {
	src, mock := newMockPostgresSource(t)
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(pgColumns).
		AddRow("1", "Green Bean", "green-bean", "cafe", "Porto", "Portugal", "Organic coffee",
			"{organic}", "{fast-wifi,power-outlets}", "$", 4.2, nil, true, 41.15, -8.62, created).
		AddRow("2", "Moss Cafe", "moss-cafe", "cafe", "Berlin", nil, nil,
			"{}", "{}", nil, nil, 71.0, nil, nil, nil, created)

	mock.ExpectQuery(`SELECT (.+) FROM "listings"`).
		WithArgs("cafe", sqlmock.AnyArg()).
		WillReturnRows(rows)

	listings, err := src.FetchCandidates(context.Background(), models.CandidateQuery{Category: "cafe", Limit: 50})
	require.NoError(t, err)
	require.Len(t, listings, 2)

	first := listings[0]
	assert.Equal(t, "Green Bean", first.Name)
	assert.Equal(t, "Portugal", first.Country)
	assert.Equal(t, []string{"organic"}, first.EcoTags)
	assert.Equal(t, []string{"fast-wifi", "power-outlets"}, first.NomadFeatures)
	assert.Equal(t, "$", first.PriceRange)
	require.NotNil(t, first.Rating)
	assert.Equal(t, 4.2, *first.Rating)
	assert.Nil(t, first.SustainabilityScore)
	require.NotNil(t, first.Verified)
	assert.True(t, *first.Verified)
	require.NotNil(t, first.Coordinates)
	assert.Equal(t, 41.15, first.Coordinates.Lat)
	assert.Equal(t, created, first.CreatedAt)

	second := listings[1]
	assert.Empty(t, second.Country)
	assert.Empty(t, second.EcoTags)
	assert.Nil(t, second.Rating)
	require.NotNil(t, second.SustainabilityScore)
	assert.Equal(t, 71.0, *second.SustainabilityScore)
	assert.Nil(t, second.Verified)
	assert.Nil(t, second.Coordinates)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSource_FetchCandidates_QueryError(t *testing.T) {
	src, mock := newMockPostgresSource(t)
	mock.ExpectQuery(`SELECT (.+) FROM "listings"`).
		WillReturnError(errors.New("connection reset"))

	_, err := src.FetchCandidates(context.Background(), models.CandidateQuery{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func upsertArgs() []driver.Value {
	args := make([]driver.Value, 16)
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}
	return args
}

func TestPostgresSource_UpsertListings(t *testing.T) {
	src, mock := newMockPostgresSource(t)
	listings := []models.Listing{
		{ID: "1", Name: "Solar Hub", Category: "coworking", EcoTags: []string{"solar-powered"},
			Rating: ptr(4.5), Coordinates: &models.Coordinates{Lat: 1, Lng: 2}},
		{ID: "2", Name: "Green Bean", Category: "cafe"},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "listings"`).WithArgs(upsertArgs()...).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "listings"`).WithArgs(upsertArgs()...).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := src.UpsertListings(context.Background(), listings)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSource_UpsertListings_RollsBack(t *testing.T) {
	src, mock := newMockPostgresSource(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "listings"`).WillReturnError(errors.New("duplicate slug"))
	mock.ExpectRollback()

	n, err := src.UpsertListings(context.Background(), []models.Listing{{ID: "1", Name: "x"}})
	require.Error(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSource_EnsureSchema(t *testing.T) {
	src, mock := newMockPostgresSource(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS "listings"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS "listings_category_idx"`).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, src.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSource_EnsureSchema_Error(t *testing.T) {
	src, mock := newMockPostgresSource(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS`).WillReturnError(errors.New("permission denied"))

	err := src.EnsureSchema(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ensure schema")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSource_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()
	src, err := NewPostgresSource(database.NewPostgresFromDB(db), "listings", logger.NewNoOpLogger())
	require.NoError(t, err)

	mock.ExpectPing().WillReturnError(errors.New("refused"))
	assert.Error(t, src.Ping(context.Background()))

	mock.ExpectPing()
	assert.NoError(t, src.Ping(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
