// internal/datasource/postgres.go
package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"nomad-directory/internal/common/config"
	"nomad-directory/internal/common/database"
	"nomad-directory/internal/common/logger"
	"nomad-directory/internal/models"
)

const listingColumns = `id, name, slug, category, city, country, description_short, eco_tags, nomad_features,
	price_range, rating, sustainability_score, verified, latitude, longitude, created_at`

// PostgresSource reads listings from a single table mirroring the content store.
type PostgresSource struct {
	client    *database.PostgresClient
	table     string
	tableName string
	logger    logger.Logger
}

func NewPostgresSource(client *database.PostgresClient, table string, log logger.Logger) (*PostgresSource, error) {
	if table == "" {
		return nil, ErrMissingTable
	}
	return &PostgresSource{
		client:    client,
		table:     pq.QuoteIdentifier(table),
		tableName: table,
		logger:    log.WithFields(map[string]interface{}{"source": config.DriverPostgres}),
	}, nil
}

func (s *PostgresSource) Name() string { return config.DriverPostgres }

func (s *PostgresSource) FetchCandidates(ctx context.Context, query models.CandidateQuery) ([]models.Listing, error) {
	stmt := fmt.Sprintf(`SELECT %s FROM %s
	WHERE ($1 = '' OR category = $1)
	ORDER BY created_at DESC, id
	LIMIT $2`, listingColumns, s.table)

	limit := sql.NullInt64{Int64: int64(query.Limit), Valid: query.Limit > 0}
	rows, err := s.client.Query(ctx, stmt, query.Category, limit)
	if err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings: %w", err)
	}
	return listings, nil
}

func scanListing(rows *sql.Rows) (models.Listing, error) {
	var (
		l                                models.Listing
		country, description, price      sql.NullString
		ecoTags, nomadFeatures           pq.StringArray
		rating, sustainability, lat, lng sql.NullFloat64
		verified                         sql.NullBool
		createdAt                        time.Time
	)
	if err := rows.Scan(
		&l.ID, &l.Name, &l.Slug, &l.Category, &l.City, &country, &description,
		&ecoTags, &nomadFeatures, &price, &rating, &sustainability, &verified,
		&lat, &lng, &createdAt,
	); err != nil {
		return l, fmt.Errorf("scan listing: %w", err)
	}

	l.Country = country.String
	l.DescriptionShort = description.String
	l.PriceRange = price.String
	l.EcoTags = []string(ecoTags)
	l.NomadFeatures = []string(nomadFeatures)
	l.CreatedAt = createdAt.UTC()
	if rating.Valid {
		l.Rating = &rating.Float64
	}
	if sustainability.Valid {
		l.SustainabilityScore = &sustainability.Float64
	}
	if verified.Valid {
		l.Verified = &verified.Bool
	}
	if lat.Valid && lng.Valid {
		l.Coordinates = &models.Coordinates{Lat: lat.Float64, Lng: lng.Float64}
	}
	return l, nil
}

// EnsureSchema creates the listings table and its category index when missing.
func (s *PostgresSource) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	slug TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	city TEXT NOT NULL DEFAULT '',
	country TEXT,
	description_short TEXT,
	eco_tags TEXT[] NOT NULL DEFAULT '{}',
	nomad_features TEXT[] NOT NULL DEFAULT '{}',
	price_range TEXT,
	rating DOUBLE PRECISION,
	sustainability_score DOUBLE PRECISION,
	verified BOOLEAN,
	latitude DOUBLE PRECISION,
	longitude DOUBLE PRECISION,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`, s.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (category, created_at DESC)`,
			pq.QuoteIdentifier(s.tableName+"_category_idx"), s.table),
	}
	for _, stmt := range stmts {
		if _, err := s.client.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	s.logger.Debug("schema ensured", map[string]interface{}{"table": s.tableName})
	return nil
}

// UpsertListings writes listings in one transaction keyed by id.
func (s *PostgresSource) UpsertListings(ctx context.Context, listings []models.Listing) (int, error) {
	stmt := fmt.Sprintf(`INSERT INTO %s (%s)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name, slug = EXCLUDED.slug, category = EXCLUDED.category,
		city = EXCLUDED.city, country = EXCLUDED.country, description_short = EXCLUDED.description_short,
		eco_tags = EXCLUDED.eco_tags, nomad_features = EXCLUDED.nomad_features,
		price_range = EXCLUDED.price_range, rating = EXCLUDED.rating,
		sustainability_score = EXCLUDED.sustainability_score, verified = EXCLUDED.verified,
		latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude, created_at = EXCLUDED.created_at`,
		s.table, listingColumns)

	written := 0
	err := s.client.WithTx(ctx, func(tx *sql.Tx) error {
		for _, l := range listings {
			var lat, lng sql.NullFloat64
			if l.Coordinates != nil {
				lat = sql.NullFloat64{Float64: l.Coordinates.Lat, Valid: true}
				lng = sql.NullFloat64{Float64: l.Coordinates.Lng, Valid: true}
			}
			createdAt := l.CreatedAt
			if createdAt.IsZero() {
				createdAt = time.Now().UTC()
			}
			if _, err := tx.ExecContext(ctx, stmt,
				l.ID, l.Name, l.Slug, l.Category, l.City,
				nullString(l.Country), nullString(l.DescriptionShort),
				pq.Array(l.EcoTags), pq.Array(l.NomadFeatures), nullString(l.PriceRange),
				nullFloat(l.Rating), nullFloat(l.SustainabilityScore), nullBool(l.Verified),
				lat, lng, createdAt,
			); err != nil {
				return fmt.Errorf("upsert listing %s: %w", l.ID, err)
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("listings upserted", map[string]interface{}{"count": written})
	return written, nil
}

func (s *PostgresSource) Ping(ctx context.Context) error { return s.client.Ping(ctx) }

func (s *PostgresSource) Close() error { return s.client.Close() }

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullBool(v *bool) sql.NullBool {
	if v == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *v, Valid: true}
}
