package models

import "time"

// Order statuses.
const (
	OrderStatusPending   = "pending"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// Order is the submitted, terminal form of a draft. The document is keyed
// by OrderID (business format AAA99-9999). OrderID and CreatedAt never
// change after creation, even across edits.
type Order struct {
	OrderID      string     `bson:"_id" json:"orderId"`
	UserID       string     `bson:"userId" json:"userId"`
	OrderDate    time.Time  `bson:"orderDate" json:"orderDate"`
	DeliveryDate *time.Time `bson:"deliveryDate,omitempty" json:"deliveryDate,omitempty"`
	RouteID      string     `bson:"routeId" json:"routeId"`
	PlaceID      string     `bson:"placeId" json:"placeId"`
	PlaceName    string     `bson:"placeName" json:"placeName"`
	ShopID       string     `bson:"shopId" json:"shopId"`
	ShopName     string     `bson:"shopName" json:"shopName"`
	Items        []LineItem `bson:"items" json:"items"`
	Total        float64    `bson:"total" json:"total"`
	Status       string     `bson:"status" json:"status"`
	CreatedAt    time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time  `bson:"updatedAt" json:"updatedAt"`
}
