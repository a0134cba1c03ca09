package repository

import (
	"context"
	"errors"
	"time"

	"print-order-service/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCartRepository stores one document per cart line.
type MongoCartRepository struct {
	col *mongo.Collection
}

func NewMongoCartRepository(db *mongo.Database) *MongoCartRepository {
	return &MongoCartRepository{col: db.Collection(cartCollection)}
}

func (m *MongoCartRepository) Insert(ctx context.Context, line *model.CartLine) error {
	if line.CreatedAt.IsZero() {
		line.CreatedAt = time.Now().UTC()
	}
	res, err := m.col.InsertOne(ctx, line)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		line.ID = id
	}
	return nil
}

// InsertMany stores lines in one round trip and fills their IDs.
func (m *MongoCartRepository) InsertMany(ctx context.Context, lines []*model.CartLine) error {
	if len(lines) == 0 {
		return nil
	}
	now := time.Now().UTC()
	docs := make([]interface{}, len(lines))
	for i, l := range lines {
		if l.CreatedAt.IsZero() {
			l.CreatedAt = now
		}
		docs[i] = l
	}
	res, err := m.col.InsertMany(ctx, docs)
	if err != nil {
		return err
	}
	for i, id := range res.InsertedIDs {
		if oid, ok := id.(primitive.ObjectID); ok && i < len(lines) {
			lines[i].ID = oid
		}
	}
	return nil
}

// ListByUser returns the user's lines, newest first.
func (m *MongoCartRepository) ListByUser(ctx context.Context, userID string) ([]model.CartLine, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	return m.find(ctx, bson.M{"user_id": userID}, opts)
}

func (m *MongoCartRepository) FindByID(ctx context.Context, id string) (*model.CartLine, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	var line model.CartLine
	err = m.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&line)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// FindByIDs returns the lines that exist among ids. Malformed ids are skipped.
func (m *MongoCartRepository) FindByIDs(ctx context.Context, ids []string) ([]model.CartLine, error) {
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return []model.CartLine{}, nil
	}
	return m.find(ctx, bson.M{"_id": bson.M{"$in": oids}}, options.Find())
}

// DeleteForUser removes the given lines owned by userID and returns how many went.
func (m *MongoCartRepository) DeleteForUser(ctx context.Context, userID string, ids []string) (int64, error) {
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return 0, nil
	}
	res, err := m.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": oids}, "user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (m *MongoCartRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res, err := m.col.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (m *MongoCartRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]model.CartLine, error) {
	cur, err := m.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []model.CartLine{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func objectIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		out = append(out, oid)
	}
	return out
}
