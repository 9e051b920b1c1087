package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"kazzy/internal/datastore"
	"kazzy/internal/models"
	"kazzy/internal/orderid"
)

const dbTimeout = 5 * time.Second

// GetRoutes lists all routes, cache first.
func GetRoutes(store *datastore.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /routes"

		force := c.Query("refresh") == "true"
		routes, err := store.Routes(c.Request.Context(), force)
		if err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "failed to fetch routes")
			return
		}
		c.JSON(http.StatusOK, gin.H{"routes": routes})
	}
}

type createRouteRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateRoute inserts a route keyed by its normalized name and updates
// the shared cache.
func CreateRoute(db *mongo.Database, store *datastore.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/routes"
		defer handlePanic(c, route)

		var req createRouteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "name is required")
			return
		}

		name := strings.TrimSpace(req.Name)
		if name == "" {
			respondWithError(c, http.StatusBadRequest, route, "name is required")
			return
		}

		newRoute := models.Route{
			ID:        orderid.Normalize(name),
			Name:      name,
			CreatedAt: time.Now().UTC(),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
		defer cancel()

		if _, err := db.Collection("routes").InsertOne(ctx, newRoute); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				respondWithError(c, http.StatusConflict, route, "route already exists")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		store.AddRoute(newRoute)
		c.JSON(http.StatusCreated, newRoute)
	}
}

// GetPlaces lists a route's places, cache first.
func GetPlaces(store *datastore.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /routes/:id/places"

		force := c.Query("refresh") == "true"
		places, err := store.Places(c.Request.Context(), c.Param("id"), force)
		if err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "failed to fetch places")
			return
		}
		if places == nil {
			places = []models.Place{}
		}
		c.JSON(http.StatusOK, gin.H{"places": places})
	}
}

type createPlaceRequest struct {
	RouteID string `json:"routeId" binding:"required"`
	Name    string `json:"name" binding:"required"`
}

// CreatePlace inserts a place under routeKey_placeKey.
func CreatePlace(db *mongo.Database, store *datastore.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/places"
		defer handlePanic(c, route)

		var req createPlaceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "routeId and name are required")
			return
		}

		place := models.Place{
			ID:        orderid.PlaceKey(req.RouteID, req.Name),
			Name:      strings.TrimSpace(req.Name),
			RouteID:   req.RouteID,
			CreatedAt: time.Now().UTC(),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
		defer cancel()

		if _, err := db.Collection("places").InsertOne(ctx, place); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				respondWithError(c, http.StatusConflict, route, "place already exists")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		store.AddPlace(req.RouteID, place)
		c.JSON(http.StatusCreated, place)
	}
}

// DeletePlace removes a place document and drops it from the cache.
func DeletePlace(db *mongo.Database, store *datastore.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/places/:id"
		defer handlePanic(c, route)

		placeID := c.Param("id")

		ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
		defer cancel()

		var place models.Place
		err := db.Collection("places").FindOne(ctx, bson.M{"_id": placeID}).Decode(&place)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "place not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if _, err := db.Collection("places").DeleteOne(ctx, bson.M{"_id": placeID}); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		store.RemovePlace(place.RouteID, placeID)
		c.JSON(http.StatusOK, gin.H{"message": "place deleted"})
	}
}

// GetShops lists a place's shops, cache first.
func GetShops(store *datastore.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /places/:id/shops"

		force := c.Query("refresh") == "true"
		shops, err := store.Shops(c.Request.Context(), c.Param("id"), force)
		if err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "failed to fetch shops")
			return
		}
		if shops == nil {
			shops = []models.Shop{}
		}
		c.JSON(http.StatusOK, gin.H{"shops": shops})
	}
}

type createShopRequest struct {
	PlaceID string `json:"placeId" binding:"required"`
	Name    string `json:"name" binding:"required"`
}

// CreateShop inserts a shop under a place.
func CreateShop(db *mongo.Database, store *datastore.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/shops"
		defer handlePanic(c, route)

		var req createShopRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "placeId and name are required")
			return
		}

		shop := models.Shop{
			ID:        uuid.NewString(),
			Name:      strings.TrimSpace(req.Name),
			PlaceID:   req.PlaceID,
			CreatedAt: time.Now().UTC(),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
		defer cancel()

		if _, err := db.Collection("shops").InsertOne(ctx, shop); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		store.AddShop(req.PlaceID, shop)
		c.JSON(http.StatusCreated, shop)
	}
}

// DeleteShop removes a shop document and drops it from the cache.
func DeleteShop(db *mongo.Database, store *datastore.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/shops/:id"
		defer handlePanic(c, route)

		shopID := c.Param("id")

		ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
		defer cancel()

		var shop models.Shop
		err := db.Collection("shops").FindOne(ctx, bson.M{"_id": shopID}).Decode(&shop)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "shop not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if _, err := db.Collection("shops").DeleteOne(ctx, bson.M{"_id": shopID}); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		store.RemoveShop(shop.PlaceID, shopID)
		c.JSON(http.StatusOK, gin.H{"message": "shop deleted"})
	}
}

// GetProducts lists the catalog, cache first.
func GetProducts(store *datastore.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products"

		force := c.Query("refresh") == "true"
		products, err := store.Products(c.Request.Context(), force)
		if err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "failed to fetch products")
			return
		}
		if products == nil {
			products = []models.Product{}
		}
		c.JSON(http.StatusOK, gin.H{"products": products})
	}
}

type createProductRequest struct {
	Category     string  `json:"category" binding:"required"`
	Name         string  `json:"name" binding:"required"`
	SellingPrice float64 `json:"sellingPrice"`
	MRP          float64 `json:"mrp"`
}

// CreateProduct inserts a catalog product with a generated id and makes
// it immediately available to open order forms through the cache.
func CreateProduct(db *mongo.Database, store *datastore.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/products"
		defer handlePanic(c, route)

		var req createProductRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "category and name are required")
			return
		}
		if req.SellingPrice < 0 || req.MRP < 0 {
			respondWithError(c, http.StatusBadRequest, route, "prices must not be negative")
			return
		}

		product := models.Product{
			ID:           uuid.NewString(),
			Category:     strings.TrimSpace(req.Category),
			Name:         strings.TrimSpace(req.Name),
			SellingPrice: req.SellingPrice,
			MRP:          req.MRP,
			CreatedAt:    time.Now().UTC(),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
		defer cancel()

		if _, err := db.Collection("products").InsertOne(ctx, product); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				respondWithError(c, http.StatusConflict, route, "product already exists")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		store.AddProduct(product)
		c.JSON(http.StatusCreated, product)
	}
}
