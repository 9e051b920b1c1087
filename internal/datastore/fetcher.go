package datastore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"kazzy/internal/models"
)

// MongoFetcher reads catalog collections from the remote document store.
type MongoFetcher struct {
	db *mongo.Database
}

func NewMongoFetcher(db *mongo.Database) *MongoFetcher {
	return &MongoFetcher{db: db}
}

func (f *MongoFetcher) FetchRoutes(ctx context.Context) ([]models.Route, error) {
	cursor, err := f.db.Collection("routes").Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var routes []models.Route
	if err := cursor.All(ctx, &routes); err != nil {
		return nil, err
	}
	return routes, nil
}

func (f *MongoFetcher) FetchPlacesByRoute(ctx context.Context, routeID string) ([]models.Place, error) {
	cursor, err := f.db.Collection("places").Find(ctx, bson.M{"routeId": routeID})
	if err != nil {
		return nil, err
	}
	var places []models.Place
	if err := cursor.All(ctx, &places); err != nil {
		return nil, err
	}
	return places, nil
}

func (f *MongoFetcher) FetchShopsByPlace(ctx context.Context, placeID string) ([]models.Shop, error) {
	cursor, err := f.db.Collection("shops").Find(ctx, bson.M{"placeId": placeID})
	if err != nil {
		return nil, err
	}
	var shops []models.Shop
	if err := cursor.All(ctx, &shops); err != nil {
		return nil, err
	}
	return shops, nil
}

func (f *MongoFetcher) FetchProducts(ctx context.Context) ([]models.Product, error) {
	cursor, err := f.db.Collection("products").Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}
