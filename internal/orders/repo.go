package orders

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"kazzy/internal/models"
)

// MongoRepo stores submitted orders keyed by their business id.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{col: db.Collection("orders")}
}

func (r *MongoRepo) Insert(ctx context.Context, o models.Order) error {
	_, err := r.col.InsertOne(ctx, o)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateOrderID
	}
	return err
}

func (r *MongoRepo) Get(ctx context.Context, id string) (models.Order, bool, error) {
	var o models.Order
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if err == mongo.ErrNoDocuments {
		return models.Order{}, false, nil
	}
	if err != nil {
		return models.Order{}, false, err
	}
	return o, true, nil
}

func (r *MongoRepo) Update(ctx context.Context, id string, c Changes, total *float64, updatedAt time.Time) error {
	set := bson.M{"updatedAt": updatedAt}
	if c.Status != nil {
		set["status"] = *c.Status
	}
	if c.DeliveryDate != nil {
		set["deliveryDate"] = primitive.NewDateTimeFromTime(*c.DeliveryDate)
	}
	if c.Items != nil {
		set["items"] = c.Items
	}
	if total != nil {
		set["total"] = *total
	}

	_, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return err
}

func (r *MongoRepo) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *MongoRepo) Find(ctx context.Context, f Filters) ([]models.Order, error) {
	filter := bson.M{}
	if f.RouteID != "" {
		filter["routeId"] = f.RouteID
	}
	if f.PlaceID != "" {
		filter["placeId"] = f.PlaceID
	}
	if f.ShopID != "" {
		filter["shopId"] = f.ShopID
	}
	if start, end, ok := f.DayRange(); ok {
		filter["orderDate"] = bson.M{
			"$gte": primitive.NewDateTimeFromTime(start),
			"$lte": primitive.NewDateTimeFromTime(end),
		}
	}

	cursor, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "orderDate", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *MongoRepo) IDsWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	filter := bson.M{"_id": bson.M{"$regex": "^" + prefix + "-"}}
	cursor, err := r.col.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}

	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}
