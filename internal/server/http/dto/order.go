package dto

import "time"

// OrderLineRequest is a priced position submitted when placing an order.
type OrderLineRequest struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	UnitAmount  int64  `json:"unit_amount"`
	Quantity    int    `json:"quantity"`
}

// PlaceOrderRequest describes checkout submission payload.
type PlaceOrderRequest struct {
	Name           string             `json:"name"`
	Phone          string             `json:"phone"`
	StreetAddress  string             `json:"street_address"`
	City           string             `json:"city"`
	State          string             `json:"state"`
	PostalCode     string             `json:"postal_code"`
	DelayedPayment bool               `json:"delayed_payment"`
	Lines          []OrderLineRequest `json:"lines"`
}

// ShippingUpdateRequest carries a partial shipping-info update. Carrier and
// tracking number are pointers so an absent field is distinguishable from an
// empty one.
type ShippingUpdateRequest struct {
	Name           string  `json:"name"`
	Phone          string  `json:"phone"`
	StreetAddress  string  `json:"street_address"`
	City           string  `json:"city"`
	State          string  `json:"state"`
	PostalCode     string  `json:"postal_code"`
	Carrier        *string `json:"carrier,omitempty"`
	TrackingNumber *string `json:"tracking_number,omitempty"`
}

// ShipOrderRequest carries shipment details.
type ShipOrderRequest struct {
	Carrier        string `json:"carrier"`
	TrackingNumber string `json:"tracking_number"`
}

// OrderLineResponse mirrors a stored order line.
type OrderLineResponse struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	UnitAmount  int64  `json:"unit_amount"`
	Quantity    int    `json:"quantity"`
}

// OrderResponse is the order projection returned by the API.
type OrderResponse struct {
	ID             int64               `json:"id"`
	OrderStatus    string              `json:"order_status"`
	PaymentStatus  string              `json:"payment_status"`
	Name           string              `json:"name"`
	Phone          string              `json:"phone"`
	StreetAddress  string              `json:"street_address"`
	City           string              `json:"city"`
	State          string              `json:"state"`
	PostalCode     string              `json:"postal_code"`
	Carrier        string              `json:"carrier,omitempty"`
	TrackingNumber string              `json:"tracking_number,omitempty"`
	Total          int64               `json:"total"`
	ShippingDate   *time.Time          `json:"shipping_date,omitempty"`
	PaymentDueDate *time.Time          `json:"payment_due_date,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	Lines          []OrderLineResponse `json:"lines,omitempty"`
}

// CheckoutResponse returns the gateway redirect target.
type CheckoutResponse struct {
	SessionURL string `json:"session_url"`
}
