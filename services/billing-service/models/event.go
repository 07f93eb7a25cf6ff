package models

// OrderCreatedRequest is the order payload inside the notification.
type OrderCreatedRequest struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	PhoneNumber string  `json:"phoneNumber"`
}

// OrderCreatedEvent is the notification published by the order service.
type OrderCreatedEvent struct {
	Request OrderCreatedRequest `json:"request"`
}

// InvoiceCreatedEvent is the best-effort analytics event emitted after
// an invoice is written.
type InvoiceCreatedEvent struct {
	InvoiceID string  `json:"invoice_id"`
	OrderName string  `json:"order_name"`
	Amount    float64 `json:"amount"`
	CreatedAt string  `json:"created_at"`
}
