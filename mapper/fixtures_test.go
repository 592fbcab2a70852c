package mapper_test

import (
	"time"

	"object-mapper/store"
	"object-mapper/utils"
)

type category struct {
	Name     string
	Parent   *category
	Children []*category
}

type categoryDTO struct {
	Name     string
	Parent   *categoryDTO
	Children []*categoryDTO
}

func sampleOrder() *store.Order {
	return &store.Order{
		ID:     7,
		Number: "SO-7",
		Customer: &store.Customer{
			ID:        3,
			Email:     "ann@example.com",
			FirstName: "Ann",
			LastName:  "Lee",
			Phone:     utils.Ptr("555-0100"),
			Address:   &store.Address{Street: "1 Main St", City: "Springfield", Zip: "12345", Country: "US"},
		},
		Status:     store.StatusPaid,
		TotalCents: 1250,
		Items: []store.OrderItem{
			{ProductID: 1, Name: "pen", Quantity: 2, UnitPrice: 250},
			{ProductID: 2, Name: "ink", Quantity: 1, UnitPrice: 750},
		},
		Tags:      []string{"gift"},
		Shipment:  &store.Courier{Service: "ups", Tracking: "1Z"},
		OrderedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}
