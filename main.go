package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"kazzy/internal/cascade"
	"kazzy/internal/config"
	"kazzy/internal/database"
	"kazzy/internal/datastore"
	"kazzy/internal/draft"
	"kazzy/internal/eventbus"
	"kazzy/internal/handlers"
	"kazzy/internal/middleware"
	"kazzy/internal/mirror"
	"kazzy/internal/orders"
)

// Single-operator console; drafts and orders are scoped to this id.
const adminUserID = "admin"

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("order index warning: %v", err)
	}
	if err := database.EnsurePlaceIndexes(db); err != nil {
		log.Printf("place index warning: %v", err)
	}
	if err := database.EnsureShopIndexes(db); err != nil {
		log.Printf("shop index warning: %v", err)
	}
	if err := database.EnsureProductIndexes(db); err != nil {
		log.Printf("product index warning: %v", err)
	}
	if err := database.EnsureAdminIndexes(db); err != nil {
		log.Printf("admin index warning: %v", err)
	}

	bus := eventbus.New()
	localMirror := mirror.New(config.AppEnv.MirrorDir)

	store := datastore.New(datastore.NewMongoFetcher(db), localMirror, bus)
	casc := cascade.New(store)

	drafts := draft.NewManager(draft.NewMongoStore(db, adminUserID), localMirror, bus)
	defer drafts.Close()

	orderSvc := orders.NewService(orders.NewMongoRepo(db), drafts, bus, adminUserID)

	r := gin.Default()

	r.POST("/admin/login", handlers.AdminLogin(db, config.AppEnv.JWTSecret, config.AppEnv.AccessTokenTTL))

	r.GET("/routes", handlers.GetRoutes(store))
	r.GET("/routes/:id/places", handlers.GetPlaces(store))
	r.GET("/places/:id/shops", handlers.GetShops(store))
	r.GET("/products", handlers.GetProducts(store))

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(config.AppEnv.JWTSecret))
	{
		admin.GET("/me", func(c *gin.Context) {
			c.JSON(200, gin.H{"ok": true})
		})

		admin.POST("/routes", handlers.CreateRoute(db, store))
		admin.POST("/places", handlers.CreatePlace(db, store))
		admin.DELETE("/places/:id", handlers.DeletePlace(db, store))
		admin.POST("/shops", handlers.CreateShop(db, store))
		admin.DELETE("/shops/:id", handlers.DeleteShop(db, store))
		admin.POST("/products", handlers.CreateProduct(db, store))

		admin.GET("/selection", handlers.GetSelection(casc, drafts))
		admin.POST("/selection/route", handlers.SelectRoute(casc, drafts))
		admin.POST("/selection/place", handlers.SelectPlace(casc, drafts))
		admin.POST("/selection/shop", handlers.SelectShop(casc, drafts))

		admin.GET("/draft", handlers.GetDraft(drafts))
		admin.PUT("/draft", handlers.UpdateDraft(drafts))
		admin.PUT("/draft/rows/:index", handlers.UpsertDraftRow(drafts))
		admin.DELETE("/draft/rows/:index", handlers.DeleteDraftRow(drafts))
		admin.DELETE("/draft", handlers.DiscardDraft(drafts))
		admin.GET("/draft/sync", handlers.DraftSyncStatus(drafts))

		admin.POST("/orders", handlers.PlaceOrder(orderSvc))
		admin.GET("/orders", handlers.GetOrders(orderSvc))
		admin.GET("/orders/next-id", handlers.NextOrderID(orderSvc))
		admin.GET("/orders/:id", handlers.GetOrder(orderSvc))
		admin.PUT("/orders/:id", handlers.UpdateOrder(orderSvc))
		admin.DELETE("/orders/:id", handlers.DeleteOrder(orderSvc))
	}

	if err := r.Run(":" + config.AppEnv.Port); err != nil {
		log.Fatal(err)
	}
}
