package models

import (
	"time"
)

// Order is the persisted order document. The id is a uuid stored as a
// string so it stays readable and indexable in mongo.
type Order struct {
	ID          string    `bson:"_id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Price       float64   `bson:"price" json:"price"`
	PhoneNumber string    `bson:"phone_number" json:"phoneNumber"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
}

// CreateOrderRequest is the order-creation payload. It is also the
// body of the order-created notification sent to billing.
type CreateOrderRequest struct {
	Name        string  `json:"name" binding:"required"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	PhoneNumber string  `json:"phoneNumber" binding:"required"`
}

// OrderCreatedEvent is published to the billing topic after the order
// document has been written inside its transaction.
type OrderCreatedEvent struct {
	Request CreateOrderRequest `json:"request"`
}
