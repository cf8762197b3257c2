package model

import "time"

// OrderStatus describes the fulfillment stage of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusApproved  OrderStatus = "APPROVED"
	OrderStatusInProcess OrderStatus = "INPROCESS"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusRefunded  OrderStatus = "REFUNDED"
)

// PaymentStatus describes the settlement stage of an order's payment.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusDelayed  PaymentStatus = "DELAYED"
	PaymentStatusApproved PaymentStatus = "APPROVED"
	PaymentStatusRejected PaymentStatus = "REJECTED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// Order is the aggregate root for a customer purchase.
type Order struct {
	ID              int64
	UserID          int64
	Name            string
	Phone           string
	StreetAddress   string
	City            string
	State           string
	PostalCode      string
	Carrier         string
	TrackingNumber  string
	OrderStatus     OrderStatus
	PaymentStatus   PaymentStatus
	SessionID       *string
	PaymentIntentID *string
	ShippingDate    *time.Time
	PaymentDueDate  *time.Time
	Total           int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Terminal reports whether the order has reached a state with no further transitions.
func (o *Order) Terminal() bool {
	return o.OrderStatus == OrderStatusCancelled || o.OrderStatus == OrderStatusRefunded
}

// OrderLine is a priced line item owned by a single order. UnitAmount is the
// price in minor currency units captured at order time.
type OrderLine struct {
	ID          int64
	OrderID     int64
	ProductID   int64
	ProductName string
	UnitAmount  int64
	Quantity    int
}
