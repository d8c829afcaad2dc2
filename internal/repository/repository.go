package repository

import (
	"context"
	"errors"
	"time"

	"delivered-status-service/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("orden no encontrada")

// StatusTotal agrupa cantidad y monto por estado.
type StatusTotal struct {
	Status string  `bson:"_id" json:"status"`
	Count  int     `bson:"count" json:"count"`
	Total  float64 `bson:"total" json:"total"`
}

// Mongo implementation
type MongoOrderRepository struct {
	col *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{col: db.Collection("orders")}
}

func (m *MongoOrderRepository) Save(ctx context.Context, o *model.Order) error {
	now := time.Now().UTC()

	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	if len(o.History) == 0 {
		// Primer estado en historial
		o.History = []model.StatusRecord{
			{
				Status:    o.Status,
				Timestamp: now,
				UserID:    o.UserID, // creador
				Reason:    "Orden creada",
				Current:   true,
			},
		}
	}
	if o.RecordType == "" {
		o.RecordType = model.RecordTypeShopOrder
	}
	o.UpdatedAt = now

	filter := bson.M{"order_id": o.OrderID}
	update := bson.M{"$set": o}
	opts := options.Update().SetUpsert(true)
	_, err := m.col.UpdateOne(ctx, filter, update, opts)
	return err
}

func (m *MongoOrderRepository) FindByOrderID(ctx context.Context, orderID string) (*model.Order, error) {
	var res model.Order
	err := m.col.FindOne(ctx, bson.M{"order_id": orderID}).Decode(&res)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// UpdateStatus cambia el estado y agrega el registro al historial.
func (m *MongoOrderRepository) UpdateStatus(ctx context.Context, orderID, status string, record model.StatusRecord) error {

	// PASO 1: desmarcar el actual
	update1 := bson.M{
		"$set": bson.M{
			"history.$[h].current": false,
		},
	}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"h.current": true}},
	})

	r1, err := m.col.UpdateOne(ctx, bson.M{"order_id": orderID}, update1, opts)
	if err != nil {
		return err
	}
	if r1.MatchedCount == 0 {
		return ErrNotFound
	}

	// PASO 2: actualizar estado + pushear nuevo registro
	update2 := bson.M{
		"$set": bson.M{
			"status":     status,
			"updated_at": time.Now().UTC(),
		},
		"$push": bson.M{
			"history": record,
		},
	}

	_, err = m.col.UpdateOne(ctx, bson.M{"order_id": orderID}, update2)
	return err
}

// RevertStatus pisa el estado de todas las órdenes del tipo dado en un solo
// UpdateMany. No toca el historial ni pasa por los eventos.
func (m *MongoOrderRepository) RevertStatus(ctx context.Context, recordType, from, to string) (int64, error) {
	filter := bson.M{
		"record_type": recordType,
		"status":      from,
	}
	res, err := m.col.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"status": to}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// CountByStatus devuelve cantidad y total por estado para los estados dados.
// Sin estados, agrupa todos.
func (m *MongoOrderRepository) CountByStatus(ctx context.Context, statuses []string) ([]StatusTotal, error) {
	match := bson.M{"record_type": model.RecordTypeShopOrder}
	if len(statuses) > 0 {
		match["status"] = bson.M{"$in": statuses}
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
			"total": bson.M{"$sum": "$total"},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}
	cur, err := m.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []StatusTotal
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *MongoOrderRepository) FindAll(ctx context.Context) ([]*model.Order, error) {
	return m.find(ctx, bson.M{})
}

func (m *MongoOrderRepository) FindByStatus(ctx context.Context, status string) ([]*model.Order, error) {
	return m.find(ctx, bson.M{"status": status})
}

func (m *MongoOrderRepository) FindByUserID(ctx context.Context, userID string) ([]*model.Order, error) {
	return m.find(ctx, bson.M{"user_id": userID})
}

func (m *MongoOrderRepository) find(ctx context.Context, filter bson.M) ([]*model.Order, error) {
	cur, err := m.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*model.Order
	for cur.Next(ctx) {
		var v model.Order
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, &v)
	}
	return out, cur.Err()
}
