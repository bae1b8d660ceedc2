package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spendwatch/paygraph/pkg/errors"
	"github.com/spendwatch/paygraph/pkg/paygraph"
)

// Mongo defaults.
const (
	DefaultMongoURI        = "mongodb://localhost:27017"
	DefaultMongoDatabase   = "spendwatch"
	DefaultMongoCollection = "payments"
)

// MongoStore persists payments in a MongoDB collection and aggregates the
// network payload server-side with a pipeline.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB and verifies the connection with a ping.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	if uri == "" {
		uri = DefaultMongoURI
	}
	if database == "" {
		database = DefaultMongoDatabase
	}
	if collection == "" {
		collection = DefaultMongoCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "connect %s", uri)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStore, err, "ping %s", uri)
	}

	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

// Insert adds payment rows.
func (s *MongoStore) Insert(ctx context.Context, payments ...Payment) error {
	if len(payments) == 0 {
		return nil
	}
	docs := make([]any, len(payments))
	for i, p := range payments {
		docs[i] = p
	}
	if _, err := s.coll.InsertMany(ctx, docs); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "insert %d payments", len(payments))
	}
	return nil
}

// Network aggregates payments into a graph payload. The grouping, filtering,
// sorting, and capping all run inside the aggregation pipeline so only the
// surviving relationships cross the wire.
func (s *MongoStore) Network(ctx context.Context, minAmount float64, maxEdges int) (paygraph.Payload, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "org", Value: bson.D{{Key: "$ne", Value: ""}}},
			{Key: "contractor", Value: bson.D{{Key: "$ne", Value: ""}}},
			{Key: "amount", Value: bson.D{{Key: "$gt", Value: 0}}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "org", Value: "$org"},
				{Key: "contractor", Value: "$contractor"},
			}},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$amount"}}},
			{Key: "decisions", Value: bson.D{{Key: "$addToSet", Value: "$ada"}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "org", Value: "$_id.org"},
			{Key: "contractor", Value: "$_id.contractor"},
			{Key: "total", Value: 1},
			{Key: "contracts", Value: bson.D{{Key: "$size", Value: "$decisions"}}},
		}}},
		{{Key: "$match", Value: bson.D{
			{Key: "total", Value: bson.D{{Key: "$gte", Value: minAmount}}},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "total", Value: -1},
			{Key: "org", Value: 1},
			{Key: "contractor", Value: 1},
		}}},
	}
	if maxEdges > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: int64(maxEdges)}})
	}

	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return paygraph.Payload{}, errors.Wrap(errors.ErrCodeStore, err, "network aggregation")
	}
	defer cur.Close(ctx)

	var rows []edgeRow
	if err := cur.All(ctx, &rows); err != nil {
		return paygraph.Payload{}, errors.Wrap(errors.ErrCodeStore, err, "decode aggregation rows")
	}
	return buildPayload(rows), nil
}

// Stats returns the store-wide summary.
func (s *MongoStore) Stats(ctx context.Context) (Summary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "payments", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "total_amount", Value: bson.D{{Key: "$sum", Value: "$amount"}}},
			{Key: "org_set", Value: bson.D{{Key: "$addToSet", Value: "$org"}}},
			{Key: "contractor_set", Value: bson.D{{Key: "$addToSet", Value: "$contractor"}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "payments", Value: 1},
			{Key: "total_amount", Value: 1},
			{Key: "orgs", Value: bson.D{{Key: "$size", Value: "$org_set"}}},
			{Key: "contractors", Value: bson.D{{Key: "$size", Value: "$contractor_set"}}},
		}}},
	}

	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return Summary{}, errors.Wrap(errors.ErrCodeStore, err, "stats aggregation")
	}
	defer cur.Close(ctx)

	var out []Summary
	if err := cur.All(ctx, &out); err != nil {
		return Summary{}, errors.Wrap(errors.ErrCodeStore, err, "decode stats")
	}
	if len(out) == 0 {
		return Summary{}, nil
	}
	return out[0], nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "disconnect")
	}
	return nil
}
