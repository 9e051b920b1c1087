package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureOrderIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("orders").Indexes()

	orderDateIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "orderDate", Value: -1}},
		Options: options.Index().SetName("orderDate_desc"),
	}

	log.Println("EnsureOrderIndexes: creating orderDate_desc index")
	_, err := indexes.CreateOne(ctx, orderDateIndex)
	if err != nil {
		log.Println("EnsureOrderIndexes: orderDate index error:", err)
		return err
	}
	log.Println("EnsureOrderIndexes: orderDate_desc index created")
	return nil
}

func EnsurePlaceIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("places").Indexes()

	routeIDIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "routeId", Value: 1}},
		Options: options.Index().SetName("routeId_index"),
	}

	log.Println("EnsurePlaceIndexes: creating routeId_index index")
	_, err := indexes.CreateOne(ctx, routeIDIndex)
	if err != nil {
		log.Println("EnsurePlaceIndexes: routeId index error:", err)
		return err
	}
	log.Println("EnsurePlaceIndexes: routeId_index index created")
	return nil
}

func EnsureShopIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("shops").Indexes()

	placeIDIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "placeId", Value: 1}},
		Options: options.Index().SetName("placeId_index"),
	}

	log.Println("EnsureShopIndexes: creating placeId_index index")
	_, err := indexes.CreateOne(ctx, placeIDIndex)
	if err != nil {
		log.Println("EnsureShopIndexes: placeId index error:", err)
		return err
	}
	log.Println("EnsureShopIndexes: placeId_index index created")
	return nil
}

func EnsureProductIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("products").Indexes()

	categoryNameIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "category", Value: 1},
			{Key: "name", Value: 1},
		},
		Options: options.Index().
			SetName("category_name_unique").
			SetUnique(true),
	}

	log.Println("EnsureProductIndexes: creating category_name_unique index")
	_, err := indexes.CreateOne(ctx, categoryNameIndex)
	if err != nil {
		log.Println("EnsureProductIndexes: category_name index error:", err)
		return err
	}
	log.Println("EnsureProductIndexes: category_name_unique index created")
	return nil
}

func EnsureAdminIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("admins").Indexes()

	emailIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	}

	log.Println("EnsureAdminIndexes: creating email_unique index")
	_, err := indexes.CreateOne(ctx, emailIndex)
	if err != nil {
		log.Println("EnsureAdminIndexes: email index error:", err)
		return err
	}
	log.Println("EnsureAdminIndexes: email_unique index created")
	return nil
}
