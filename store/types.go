// Package store holds the order model of a shop front end. It is the source side of
// the demo mappings used by cmd/mapplan and the mapper tests.
package store

import (
	"time"
)

// Product is an item for sale. Prices are in cents.
type Product struct {
	ID          int64     `json:"id"                    yaml:"id"`
	SKU         string    `json:"sku"                   yaml:"sku"`
	Name        string    `json:"name"                  yaml:"name"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	PriceCents  int64     `json:"price_cents"           yaml:"price_cents"`
	Inventory   int       `json:"inventory_count"       yaml:"inventory_count"`
	CreatedAt   time.Time `json:"created_at"            yaml:"created_at"`
}

// Customer places orders.
type Customer struct {
	ID        int64    `json:"id"         yaml:"id"`
	Email     string   `json:"email"      yaml:"email"`
	FirstName string   `json:"first_name" yaml:"first_name"`
	LastName  string   `json:"last_name"  yaml:"last_name"`
	Phone     *string  `json:"phone"      yaml:"phone"`
	Address   *Address `json:"address"    yaml:"address"`
	IsActive  bool     `json:"is_active"  yaml:"is_active"`
}

// Address is where an order ships to.
type Address struct {
	Street  string `json:"street"   yaml:"street"`
	City    string `json:"city"     yaml:"city"`
	Zip     string `json:"zip"      yaml:"zip"`
	Country string `json:"country"  yaml:"country"`
}

// Order is a purchase. Items are identified by ProductID.
type Order struct {
	ID         int64       `json:"id"          yaml:"id"`
	Number     string      `json:"number"      yaml:"number"`
	Customer   *Customer   `json:"customer"    yaml:"customer"`
	Status     OrderStatus `json:"status"      yaml:"status"`
	TotalCents int64       `json:"total_cents" yaml:"total_cents"`
	Items      []OrderItem `json:"items"       yaml:"items"`
	Tags       []string    `json:"tags"        yaml:"tags"`
	Shipment   *Courier    `json:"shipment"    yaml:"shipment"`
	OrderedAt  time.Time   `json:"ordered_at"  yaml:"ordered_at"`
}

// Courier is the parcel service chosen at checkout.
type Courier struct {
	Service  string `json:"service"  yaml:"service"`
	Tracking string `json:"tracking" yaml:"tracking"`
}

// OrderItem is one line of an order, with the unit price at purchase time.
type OrderItem struct {
	ProductID int64  `json:"product_id" yaml:"product_id"`
	Name      string `json:"name"       yaml:"name"`
	Quantity  int    `json:"quantity"   yaml:"quantity"`
	UnitPrice int64  `json:"unit_price" yaml:"unit_price"`
}

// OrderStatus is the upper-case state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusPaid      OrderStatus = "PAID"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusCancelled OrderStatus = "CANCELLED"
)
