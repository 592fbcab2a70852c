// Package warehouse holds the fulfilment model orders are mapped onto. It is the
// target side of the demo mappings used by cmd/mapplan and the mapper tests.
package warehouse

import (
	"time"
)

// Address is a shipping address.
type Address struct {
	Street     string `json:"street"      yaml:"street"`
	City       string `json:"city"        yaml:"city"`
	PostalCode string `json:"postal_code" yaml:"postal_code"`
	Country    string `json:"country"     yaml:"country"`
}

// Customer is the recipient of a shipment.
type Customer struct {
	ID        uint    `json:"id"         yaml:"id"`
	FirstName string  `json:"first_name" yaml:"first_name"`
	LastName  string  `json:"last_name"  yaml:"last_name"`
	Email     string  `json:"email"      yaml:"email"`
	Phone     string  `json:"phone"      yaml:"phone"`
	Address   Address `json:"address"    yaml:"address"`
}

// Order is an order accepted for fulfilment. Amounts are in cents.
type Order struct {
	ID          uint        `json:"id"           yaml:"id"`
	OrderNumber string      `json:"order_number" yaml:"order_number"`
	Status      string      `json:"status"       yaml:"status"`
	TotalAmount int64       `json:"total_amount" yaml:"total_amount"`
	Currency    string      `json:"currency"     yaml:"currency"`
	Customer    Customer    `json:"customer"     yaml:"customer"`
	Items       []OrderItem `json:"items"        yaml:"items"`
	Tags        []string    `json:"tags"         yaml:"tags"`
	Shipment    Shipment    `json:"shipment"     yaml:"shipment"`
	Notes       string      `json:"notes"        yaml:"notes"`

	OrderedAt time.Time  `json:"ordered_at"           yaml:"ordered_at"`
	ShippedAt *time.Time `json:"shipped_at,omitempty" yaml:"shipped_at,omitempty"`
}

// OrderItem is a line item to pick. ProductID identifies it within the order.
type OrderItem struct {
	ProductID  uint   `json:"product_id"  yaml:"product_id"`
	Name       string `json:"name"        yaml:"name"`
	Quantity   int    `json:"quantity"    yaml:"quantity"`
	UnitPrice  int64  `json:"unit_price"  yaml:"unit_price"`
	TotalPrice int64  `json:"total_price" yaml:"total_price"`
	Picked     bool   `json:"picked"      yaml:"picked"`
}

// Shipment is how an order leaves the warehouse.
type Shipment interface {
	Carrier() string
}

// Parcel is a Shipment sent by a parcel service.
type Parcel struct {
	Service  string `json:"service"  yaml:"service"`
	Tracking string `json:"tracking" yaml:"tracking"`
}

func (p *Parcel) Carrier() string { return p.Service }

// Pickup is a Shipment collected by the customer.
type Pickup struct {
	Counter string `json:"counter" yaml:"counter"`
}

func (p *Pickup) Carrier() string { return "pickup" }
