package models

import "time"

// Route is the top level of the selection hierarchy. Routes are keyed by
// their normalized name.
type Route struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	CreatedAt time.Time `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
}

// Place belongs to a route; keyed by routeKey_placeKey.
type Place struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	RouteID   string    `bson:"routeId" json:"routeId"`
	CreatedAt time.Time `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
}

// Shop belongs to a place.
type Shop struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	PlaceID   string    `bson:"placeId" json:"placeId"`
	CreatedAt time.Time `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
}

// Product in the catalog. The full lookup key is category + name.
type Product struct {
	ID           string    `bson:"_id" json:"id"`
	Category     string    `bson:"category" json:"category"`
	Name         string    `bson:"name" json:"name"`
	SellingPrice float64   `bson:"sellingPrice" json:"sellingPrice"`
	MRP          float64   `bson:"mrp" json:"mrp"`
	CreatedAt    time.Time `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
}
