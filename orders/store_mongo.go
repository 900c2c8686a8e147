package orders

import (
	"context"
	"time"

	"kirana/db"
	"kirana/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore persists orders in the orders collection and joins the
// users collection for the admin listing.
type MongoStore struct {
	col   *mongo.Collection
	users *mongo.Collection
}

func NewMongoStore() *MongoStore {
	return &MongoStore{col: db.OrderCollection, users: db.UserCollection}
}

func (s *MongoStore) Insert(ctx context.Context, order models.Order) error {
	_, err := s.col.InsertOne(ctx, order)
	return err
}

func (s *MongoStore) FindByID(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	err := s.col.FindOne(ctx, bson.M{"orderid": orderID}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *MongoStore) FindByUser(ctx context.Context, userID string) ([]models.Order, error) {
	findOptions := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := s.col.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var list []models.Order
	if err := cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *MongoStore) FindAllWithOwners(ctx context.Context) ([]models.AdminOrder, error) {
	pipeline := []bson.M{
		{"$sort": bson.M{"createdAt": -1}},
		{"$lookup": bson.M{
			"from":         "users",
			"localField":   "userId",
			"foreignField": "userid",
			"as":           "owner",
		}},
		{"$unwind": bson.M{"path": "$owner", "preserveNullAndEmptyArrays": true}},
		{"$addFields": bson.M{
			"ownerName":  "$owner.username",
			"ownerEmail": "$owner.email",
		}},
		{"$project": bson.M{"owner": 0}},
	}

	cursor, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var list []models.AdminOrder
	if err := cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// MarkPaid is a conditional update: the paymentstatus filter makes the
// transition idempotent even when two webhook deliveries race.
func (s *MongoStore) MarkPaid(ctx context.Context, orderID string) (*models.Order, bool, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Order
	err := s.col.FindOneAndUpdate(ctx,
		bson.M{"orderid": orderID, "paymentstatus": bson.M{"$ne": models.PaymentPaid}},
		bson.M{"$set": bson.M{
			"paymentstatus": models.PaymentPaid,
			"orderstatus":   models.StatusProcessing,
			"updatedAt":     time.Now(),
		}},
		opts,
	).Decode(&updated)
	if err == nil {
		return &updated, true, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, false, err
	}

	// no unpaid document matched: either already paid or gone
	existing, err := s.FindByID(ctx, orderID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (s *MongoStore) SetStatus(ctx context.Context, orderID, status string) (*models.Order, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Order
	err := s.col.FindOneAndUpdate(ctx,
		bson.M{"orderid": orderID},
		bson.M{"$set": bson.M{"orderstatus": status, "updatedAt": time.Now()}},
		opts,
	).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *MongoStore) Delete(ctx context.Context, orderID string) error {
	res, err := s.col.DeleteOne(ctx, bson.M{"orderid": orderID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.col.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
