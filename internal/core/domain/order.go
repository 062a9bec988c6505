package domain

import "time"

// Customer is the ordering account embedded in an order.
type Customer struct {
	FirstName string `json:"firstName" bson:"first_name"`
	LastName  string `json:"lastName" bson:"last_name"`
}

// Order is a lab order placed by a customer account.
type Order struct {
	ID            string    `json:"id" bson:"_id,omitempty"`
	OrderID       string    `json:"orderId" bson:"order_id"`
	ProductName   string    `json:"productName" bson:"product_name"`
	CurrentStatus string    `json:"currentStatus" bson:"current_status"`
	UserID        string    `json:"userId" bson:"user_id"`
	Customer      Customer  `json:"customer" bson:"customer"`
	CreatedAt     time.Time `json:"createdAt" bson:"created_at"`
}
