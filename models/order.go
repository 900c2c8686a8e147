package models

import "time"

// Payment states. The transition is one-way: unpaid -> paid, applied
// only by the webhook handler after signature verification.
const (
	PaymentUnpaid = "unpaid"
	PaymentPaid   = "paid"
)

// Fulfillment states, admin-controlled. Payment confirmation moves a
// Pending order to Processing automatically.
const (
	StatusPending    = "Pending"
	StatusProcessing = "Processing"
	StatusShipped    = "Shipped"
	StatusDelivered  = "Delivered"
	StatusCancelled  = "Cancelled"
)

var OrderStatuses = map[string]bool{
	StatusPending:    true,
	StatusProcessing: true,
	StatusShipped:    true,
	StatusDelivered:  true,
	StatusCancelled:  true,
}

// OrderItem is a snapshot of a product at purchase time. Catalog edits
// after checkout must not change historical orders.
type OrderItem struct {
	ProductID string `json:"productId" bson:"productId"`
	Name      string `json:"name" bson:"name"`
	Price     int64  `json:"price" bson:"price"` // unit price in paise
	Quantity  int    `json:"quantity" bson:"quantity"`
}

// Order is a finalized purchase. OrderID doubles as the correlation key
// carried in the payment session metadata.
type Order struct {
	OrderID       string      `json:"orderId" bson:"orderid"`
	UserID        string      `json:"userId" bson:"userId"`
	Items         []OrderItem `json:"items" bson:"items"`
	TotalAmount   int64       `json:"totalAmount" bson:"totalAmount"` // paise, fixed at creation
	PaymentStatus string      `json:"paymentStatus" bson:"paymentstatus"`
	OrderStatus   string      `json:"orderStatus" bson:"orderstatus"`
	CreatedAt     time.Time   `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt" bson:"updatedAt"`
}

// AdminOrder is an Order annotated with owner details for the admin
// console listing.
type AdminOrder struct {
	Order      `bson:",inline"`
	OwnerName  string `json:"ownerName" bson:"ownerName"`
	OwnerEmail string `json:"ownerEmail" bson:"ownerEmail"`
}
