// Package mongo implements store.Store on MongoDB.
//
// Graphs and orders live in two collections keyed by graph id:
//
//	graphs: {_id, name, version, graph, created_at, updated_at}
//	orders: {_id, path, updated_at}
//
// Use this backend when several API instances share saved graphs.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/conceptgraph/pkg/store"
)

// Collection names.
const (
	GraphsCollection = "graphs"
	OrdersCollection = "orders"
)

// DefaultDatabase is used when Config.Database is empty.
const DefaultDatabase = "conceptgraph"

// Config holds MongoDB connection settings.
type Config struct {
	URI      string
	Database string
	// Timeout bounds the initial connect and ping. Zero means 10s.
	Timeout time.Duration
}

// Store is a MongoDB-backed store.Store.
type Store struct {
	client *mongo.Client
	graphs *mongo.Collection
	orders *mongo.Collection
	now    func() time.Time
}

// New connects to MongoDB and verifies the connection.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo: uri is required")
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return NewFromClient(client, cfg.Database), nil
}

// NewFromClient wraps an existing client. The caller keeps ownership of the
// client only if it never calls Close.
func NewFromClient(client *mongo.Client, database string) *Store {
	if database == "" {
		database = DefaultDatabase
	}
	db := client.Database(database)
	return &Store{
		client: client,
		graphs: db.Collection(GraphsCollection),
		orders: db.Collection(OrdersCollection),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) SaveGraph(ctx context.Context, rec *store.GraphRecord) error {
	if err := store.Prepare(rec, s.now()); err != nil {
		return err
	}
	update := bson.M{
		"$set": bson.M{
			"name":       rec.Name,
			"version":    rec.Version,
			"graph":      rec.Graph,
			"updated_at": rec.UpdatedAt,
		},
		"$setOnInsert": bson.M{"created_at": rec.CreatedAt},
	}
	_, err := s.graphs.UpdateOne(ctx, bson.M{"_id": rec.ID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save graph %s: %w", rec.ID, err)
	}
	return nil
}

func (s *Store) LoadGraph(ctx context.Context, id string) (*store.GraphRecord, error) {
	if err := store.ValidateID(id); err != nil {
		return nil, err
	}
	var rec store.GraphRecord
	if err := s.graphs.FindOne(ctx, bson.M{"_id": id}).Decode(&rec); err != nil {
		return nil, notFound(err, "graph", id)
	}
	return &rec, nil
}

func (s *Store) ListGraphs(ctx context.Context) ([]store.Summary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
		{{Key: "$project", Value: bson.D{
			{Key: "name", Value: 1},
			{Key: "version", Value: 1},
			{Key: "updated_at", Value: 1},
			{Key: "nodes", Value: bson.D{{Key: "$size", Value: bson.D{
				{Key: "$ifNull", Value: bson.A{"$graph.nodes", bson.A{}}},
			}}}},
		}}},
	}
	cur, err := s.graphs.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("list graphs: %w", err)
	}
	var out []store.Summary
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("list graphs: %w", err)
	}
	return out, nil
}

func (s *Store) DeleteGraph(ctx context.Context, id string) error {
	if err := store.ValidateID(id); err != nil {
		return err
	}
	if _, err := s.graphs.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete graph %s: %w", id, err)
	}
	if _, err := s.orders.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete order %s: %w", id, err)
	}
	return nil
}

func (s *Store) SaveOrder(ctx context.Context, graphID string, path []string) error {
	if err := store.ValidateID(graphID); err != nil {
		return err
	}
	n, err := s.graphs.CountDocuments(ctx, bson.M{"_id": graphID}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("save order %s: %w", graphID, err)
	}
	if n == 0 {
		return fmt.Errorf("graph %s: %w", graphID, store.ErrNotFound)
	}
	o := store.Order{GraphID: graphID, Path: slices.Clone(path), UpdatedAt: s.now()}
	_, err = s.orders.ReplaceOne(ctx, bson.M{"_id": graphID}, o, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save order %s: %w", graphID, err)
	}
	return nil
}

func (s *Store) LoadOrder(ctx context.Context, graphID string) (*store.Order, error) {
	if err := store.ValidateID(graphID); err != nil {
		return nil, err
	}
	var o store.Order
	if err := s.orders.FindOne(ctx, bson.M{"_id": graphID}).Decode(&o); err != nil {
		return nil, notFound(err, "order", graphID)
	}
	return &o, nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ store.Store = (*Store)(nil)

func notFound(err error, kind, id string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s %s: %w", kind, id, store.ErrNotFound)
	}
	return fmt.Errorf("load %s %s: %w", kind, id, err)
}
