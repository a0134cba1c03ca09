package repository

import (
	"context"
	"errors"
	"regexp"
	"time"

	"print-order-service/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("not found")

// OrderQuery filters and pages the administrative order listing. A zero
// Limit returns every match.
type OrderQuery struct {
	Status   model.OrderStatus
	Search   string
	From     *time.Time
	To       *time.Time
	SortBy   string
	SortDesc bool
	Page     int
	Limit    int
}

var sortFields = map[string]string{
	"createdAt":   "created_at",
	"orderDate":   "order_date",
	"updatedAt":   "updated_at",
	"total":       "total",
	"orderNumber": "order_number",
	"status":      "status",
}

type MongoOrderRepository struct {
	col *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{col: db.Collection(ordersCollection)}
}

func (m *MongoOrderRepository) Create(ctx context.Context, o *model.Order) error {
	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now

	res, err := m.col.InsertOne(ctx, o)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		o.ID = id
	}
	return nil
}

func (m *MongoOrderRepository) FindByID(ctx context.Context, id string) (*model.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return m.findOne(ctx, bson.M{"_id": oid})
}

// FindForUser returns the order only when userID owns it.
func (m *MongoOrderRepository) FindForUser(ctx context.Context, id, userID string) (*model.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return m.findOne(ctx, bson.M{"_id": oid, "user_id": userID})
}

func (m *MongoOrderRepository) FindByUserID(ctx context.Context, userID string) ([]*model.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return m.find(ctx, bson.M{"user_id": userID}, opts)
}

// AppendStatus sets the current status and pushes rec onto the history in
// one atomic update.
func (m *MongoOrderRepository) AppendStatus(ctx context.Context, id string, rec model.StatusRecord) (*model.Order, error) {
	return m.updateByID(ctx, id, bson.M{
		"$set": bson.M{
			"status":     rec.Status,
			"updated_at": time.Now().UTC(),
		},
		"$push": bson.M{
			"status_history": rec,
		},
	})
}

func (m *MongoOrderRepository) SetAdminNotes(ctx context.Context, id, note string) (*model.Order, error) {
	return m.updateByID(ctx, id, bson.M{
		"$set": bson.M{
			"admin_notes": note,
			"updated_at":  time.Now().UTC(),
		},
	})
}

func (m *MongoOrderRepository) UpdateShipping(ctx context.Context, id string, upd model.ShippingUpdate) (*model.Order, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Method != nil {
		set["shipping.method"] = *upd.Method
	}
	if upd.TrackingNumber != nil {
		set["shipping.tracking_number"] = *upd.TrackingNumber
	}
	if upd.EstimatedDelivery != nil {
		set["shipping.estimated_delivery"] = upd.EstimatedDelivery.UTC()
	}
	if upd.ActualDelivery != nil {
		set["shipping.actual_delivery"] = upd.ActualDelivery.UTC()
	}
	return m.updateByID(ctx, id, bson.M{"$set": set})
}

// List returns one page of orders matching q and the total match count.
func (m *MongoOrderRepository) List(ctx context.Context, q OrderQuery) ([]*model.Order, int64, error) {
	filter := orderFilter(q)

	total, err := m.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	field, ok := sortFields[q.SortBy]
	if !ok {
		field = "created_at"
	}
	dir := 1
	if q.SortDesc {
		dir = -1
	}
	opts := options.Find().SetSort(bson.D{{Key: field, Value: dir}})
	if q.Limit > 0 {
		page := q.Page
		if page < 1 {
			page = 1
		}
		opts.SetSkip(int64((page - 1) * q.Limit)).SetLimit(int64(q.Limit))
	}

	out, err := m.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (m *MongoOrderRepository) FindSince(ctx context.Context, since time.Time) ([]*model.Order, error) {
	return m.find(ctx, bson.M{"created_at": bson.M{"$gte": since.UTC()}}, options.Find())
}

func (m *MongoOrderRepository) Recent(ctx context.Context, n int64) ([]*model.Order, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(n)
	return m.find(ctx, bson.M{}, opts)
}

func orderFilter(q OrderQuery) bson.M {
	filter := bson.M{}
	if q.Status != "" {
		filter["status"] = q.Status
	}
	if q.Search != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(q.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"order_number": rx},
			bson.M{"customer_info.first_name": rx},
			bson.M{"customer_info.last_name": rx},
			bson.M{"customer_info.email": rx},
		}
	}
	if q.From != nil || q.To != nil {
		r := bson.M{}
		if q.From != nil {
			r["$gte"] = q.From.UTC()
		}
		if q.To != nil {
			r["$lte"] = q.To.UTC()
		}
		filter["created_at"] = r
	}
	return filter
}

func (m *MongoOrderRepository) updateByID(ctx context.Context, id string, update bson.M) (*model.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var res model.Order
	err = m.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&res)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (m *MongoOrderRepository) findOne(ctx context.Context, filter bson.M) (*model.Order, error) {
	var res model.Order
	err := m.col.FindOne(ctx, filter).Decode(&res)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (m *MongoOrderRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Order, error) {
	cur, err := m.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []*model.Order{}
	for cur.Next(ctx) {
		var v model.Order
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, cur.Err()
}
