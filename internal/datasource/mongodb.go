// internal/datasource/mongodb.go
package datasource

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"nomad-directory/internal/common/config"
	"nomad-directory/internal/common/database"
	"nomad-directory/internal/common/logger"
	"nomad-directory/internal/models"
)

// MongoSource reads listings from a collection whose documents use the
// listing bson tags.
type MongoSource struct {
	client     *database.MongoClient
	collection *mongo.Collection
	logger     logger.Logger
}

func NewMongoSource(client *database.MongoClient, log logger.Logger) *MongoSource {
	return &MongoSource{
		client:     client,
		collection: client.Collection,
		logger:     log.WithFields(map[string]interface{}{"source": config.DriverMongoDB}),
	}
}

func (s *MongoSource) Name() string { return config.DriverMongoDB }

func buildMongoFilter(query models.CandidateQuery) bson.M {
	filter := bson.M{}
	if query.Category != "" {
		filter["category"] = query.Category
	}
	return filter
}

func buildMongoFindOptions(query models.CandidateQuery) *options.FindOptions {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
	if query.Limit > 0 {
		opts.SetLimit(int64(query.Limit))
	}
	return opts
}

func (s *MongoSource) FetchCandidates(ctx context.Context, query models.CandidateQuery) ([]models.Listing, error) {
	cursor, err := s.collection.Find(ctx, buildMongoFilter(query), buildMongoFindOptions(query))
	if err != nil {
		return nil, fmt.Errorf("find listings: %w", err)
	}
	defer cursor.Close(ctx)

	var listings []models.Listing
	if err := cursor.All(ctx, &listings); err != nil {
		return nil, fmt.Errorf("decode listings: %w", err)
	}
	return listings, nil
}

func listingIndexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "slug", Value: 1}}},
	}
}

// EnsureSchema creates the collection indexes. CreateMany is a no-op for
// indexes that already exist.
func (s *MongoSource) EnsureSchema(ctx context.Context) error {
	names, err := s.collection.Indexes().CreateMany(ctx, listingIndexModels())
	if err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	s.logger.Debug("indexes ensured", map[string]interface{}{"indexes": names})
	return nil
}

// UpsertListings replaces documents by _id in one unordered bulk write.
func (s *MongoSource) UpsertListings(ctx context.Context, listings []models.Listing) (int, error) {
	if len(listings) == 0 {
		return 0, nil
	}
	writes := make([]mongo.WriteModel, 0, len(listings))
	for _, l := range listings {
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": l.ID}).
			SetReplacement(l).
			SetUpsert(true))
	}

	result, err := s.collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, fmt.Errorf("bulk write listings: %w", err)
	}
	written := int(result.UpsertedCount + result.MatchedCount)
	s.logger.Info("listings upserted", map[string]interface{}{"count": written})
	return written, nil
}

func (s *MongoSource) Ping(ctx context.Context) error { return s.client.Ping(ctx) }

func (s *MongoSource) Close() error { return s.client.Close() }
