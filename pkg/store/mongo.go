package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/unshred/pkg/errors"
)

// MongoConfig configures a MongoDB-backed store.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
	// Timeout bounds connection setup and Close. Zero means 10s.
	Timeout time.Duration
}

// MongoStore stores records as documents keyed by run id.
type MongoStore struct {
	client  *mongo.Client
	coll    *mongo.Collection
	timeout time.Duration
}

// NewMongoStore connects to MongoDB and pings the primary.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = "unshred"
	}
	if cfg.Collection == "" {
		cfg.Collection = "runs"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	opts := options.Client().ApplyURI(cfg.URI).SetServerSelectionTimeout(cfg.Timeout)
	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid mongo uri")
	}
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo index: %w", err)
	}
	return &MongoStore{client: client, coll: coll, timeout: cfg.Timeout}, nil
}

func (s *MongoStore) Save(ctx context.Context, rec *Record) error {
	if err := validateRecord(rec); err != nil {
		return err
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": rec.ID}, rec, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save run %s: %w", rec.ID, err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Record, error) {
	if err := errors.ValidateRunID(id); err != nil {
		return nil, err
	}
	var rec Record
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return &rec, nil
}

func (s *MongoStore) List(ctx context.Context, limit int) ([]Summary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetProjection(bson.M{"candidates": 0})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	var recs []Record
	if err := cur.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("decode runs: %w", err)
	}

	out := make([]Summary, len(recs))
	for i := range recs {
		out[i] = recs[i].Summary()
	}
	return out, nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete run %s: %w", id, err)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
