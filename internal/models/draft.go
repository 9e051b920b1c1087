package models

import "time"

// LineItem is a single product row in a draft or submitted order.
// LineTotal is derived (quantity * selling price) and recomputed on every
// mutation; it is never trusted when read back.
type LineItem struct {
	ProductCategory string  `bson:"productCategory" json:"productCategory"`
	ProductName     string  `bson:"productName" json:"productName"`
	OrderQuantity   int     `bson:"orderQuantity" json:"orderQuantity"`
	SellingPrice    float64 `bson:"sellingPrice" json:"sellingPrice"`
	MRP             float64 `bson:"mrp" json:"mrp"`
	LineTotal       float64 `bson:"lineTotal" json:"lineTotal"`
}

// Canonical reports whether the row meets the persistence invariant:
// a named product with quantity of at least one. Anything else is
// transient editing state and is never written to any tier.
func (li LineItem) Canonical() bool {
	return li.ProductName != "" && li.OrderQuantity >= 1
}

// DraftOrder is the unsubmitted order under construction. PlaceName and
// ShopName are denormalized display names captured at selection time; the
// ids are the source of truth.
type DraftOrder struct {
	RouteID      string     `bson:"routeId" json:"routeId"`
	PlaceID      string     `bson:"placeId" json:"placeId"`
	PlaceName    string     `bson:"placeName" json:"placeName"`
	ShopID       string     `bson:"shopId" json:"shopId"`
	ShopName     string     `bson:"shopName" json:"shopName"`
	DeliveryDate *time.Time `bson:"deliveryDate,omitempty" json:"deliveryDate,omitempty"`
	Rows         []LineItem `bson:"rows" json:"rows"`
	LastUpdated  time.Time  `bson:"lastUpdated,omitempty" json:"lastUpdated,omitempty"`
}

// Empty reports whether the draft carries no selection and no rows.
func (d DraftOrder) Empty() bool {
	return d.RouteID == "" && d.PlaceID == "" && d.ShopID == "" &&
		d.DeliveryDate == nil && len(d.Rows) == 0
}
