package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCounterRepository keeps named monotonically increasing counters.
type MongoCounterRepository struct {
	col *mongo.Collection
}

func NewMongoCounterRepository(db *mongo.Database) *MongoCounterRepository {
	return &MongoCounterRepository{col: db.Collection(countersCollection)}
}

// Next increments the counter named key, creating it at 1, and returns the
// new value. Concurrent callers always observe distinct values.
func (m *MongoCounterRepository) Next(ctx context.Context, key string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := m.col.FindOneAndUpdate(ctx, bson.M{"_id": key}, bson.M{"$inc": bson.M{"seq": 1}}, opts).Decode(&doc)
	if err != nil {
		// Two first-of-day upserts can race on the _id index; the loser retries
		// against the now existing document.
		if mongo.IsDuplicateKeyError(err) {
			err = m.col.FindOneAndUpdate(ctx, bson.M{"_id": key}, bson.M{"$inc": bson.M{"seq": 1}}, opts).Decode(&doc)
		}
		if err != nil {
			return 0, fmt.Errorf("increment counter %s: %w", key, err)
		}
	}
	return doc.Seq, nil
}
