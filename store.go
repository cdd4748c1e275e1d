package phonecrawler

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PhoneStore is the persistence collaborator contract the orchestrator needs:
// idempotent key-based upsert plus membership and count queries.
type PhoneStore interface {
	UpsertPhone(ctx context.Context, record *PhoneRecord) error
	PhoneExists(ctx context.Context, detailID string) (bool, error)
	PhoneCount(ctx context.Context) (int64, error)
}

// MongoStore implements PhoneStore on top of a MongoDB collection keyed by
// detail_id.
type MongoStore struct {
	client     *mongo.Client
	database   string
	collection string
	logger     *defaultLogger
}

// NewMongoStore connects and pings MongoDB using either MONGO_URI or the
// DB_USERNAME/DB_PASSWORD/DB_HOST/DB_PORT parts.
func NewMongoStore(ctx context.Context, config *configService, logger *defaultLogger) (*MongoStore, error) {
	uri := config.EnvString("MONGO_URI")
	if uri == "" {
		uri = fmt.Sprintf("mongodb://%s:%s@%s:%s",
			config.EnvString("DB_USERNAME"),
			config.EnvString("DB_PASSWORD"),
			config.EnvString("DB_HOST", "localhost"),
			config.EnvString("DB_PORT", "27017"),
		)
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &MongoStore{
		client:     client,
		database:   config.EnvString("DB_DATABASE", "phonecrawler"),
		collection: config.EnvString("COLLECTION_NAME", "phones"),
		logger:     logger,
	}, nil
}

func (s *MongoStore) col() *mongo.Collection {
	return s.client.Database(s.database).Collection(s.collection)
}

// EnsureIndexes creates the detail_id unique index plus the secondary lookup
// indexes. Safe to call every run.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "detail_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "brand", Value: 1}}},
		{Keys: bson.D{{Key: "first_seen_at", Value: -1}}},
		{Keys: bson.D{{Key: "brand", Value: 1}, {Key: "name", Value: 1}}},
	}
	_, err := s.col().Indexes().CreateMany(ctx, models)
	if err != nil {
		return fmt.Errorf("could not create indexes: %w", err)
	}
	return nil
}

// UpsertPhone writes the record keyed by detail_id. Re-upserting the same
// detail_id never creates a second document: content fields are overwritten,
// first_seen_at is set only on insert, and version is incremented on every
// successful write.
func (s *MongoStore) UpsertPhone(ctx context.Context, record *PhoneRecord) error {
	opCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	now := time.Now().UTC()
	record.LastUpdatedAt = now

	raw, err := bson.Marshal(record)
	if err != nil {
		return fmt.Errorf("could not encode phone record: %w", err)
	}
	var set bson.M
	if err := bson.Unmarshal(raw, &set); err != nil {
		return fmt.Errorf("could not encode phone record: %w", err)
	}
	// These two are owned by the update operators below.
	delete(set, "first_seen_at")
	delete(set, "version")

	filter := bson.D{{Key: "detail_id", Value: record.DetailID}}
	update := bson.D{
		{Key: "$set", Value: set},
		{Key: "$setOnInsert", Value: bson.D{{Key: "first_seen_at", Value: now}}},
		{Key: "$inc", Value: bson.D{{Key: "version", Value: 1}}},
	}

	_, err = s.col().UpdateOne(opCtx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("could not upsert phone %s: %w", record.DetailID, err)
	}
	return nil
}

// PhoneExists reports whether a record with the given detail_id is already
// persisted.
func (s *MongoStore) PhoneExists(ctx context.Context, detailID string) (bool, error) {
	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	count, err := s.col().CountDocuments(opCtx, bson.D{{Key: "detail_id", Value: detailID}})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// PhoneCount returns the total number of persisted records.
func (s *MongoStore) PhoneCount(ctx context.Context) (int64, error) {
	opCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return s.col().CountDocuments(opCtx, bson.D{})
}

// CompletedIDs lists every persisted detail_id, used to pre-warm the
// completion index for resumable runs.
func (s *MongoStore) CompletedIDs(ctx context.Context) ([]string, error) {
	opCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	values, err := s.col().Distinct(opCtx, "detail_id", bson.D{})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(values))
	for _, value := range values {
		if id, ok := value.(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Close disconnects the underlying client.
func (s *MongoStore) Close(ctx context.Context) error {
	closeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.client.Disconnect(closeCtx)
}
