package model

import "time"

// GatewayPaymentState is the provider payment state mapped into the domain at
// the gateway adapter boundary. Core logic never compares provider strings.
type GatewayPaymentState string

const (
	GatewayPaymentPaid    GatewayPaymentState = "paid"
	GatewayPaymentUnpaid  GatewayPaymentState = "unpaid"
	GatewayPaymentUnknown GatewayPaymentState = "unknown"
)

// CheckoutSession references a gateway-side payment collection attempt.
type CheckoutSession struct {
	SessionID       string
	SessionURL      string
	PaymentIntentID string
}

// SessionStatus is the live state of a checkout session as reported by the gateway.
type SessionStatus struct {
	State           GatewayPaymentState
	PaymentIntentID string
}

// Refund records a gateway refund issued against a payment intent.
type Refund struct {
	ID              int64
	OrderID         int64
	RefundID        string
	PaymentIntentID string
	ProcessedAt     time.Time
}

// SessionLineItem is a priced position submitted to the gateway when creating
// a checkout session.
type SessionLineItem struct {
	Name       string
	UnitAmount int64
	Currency   string
	Quantity   int
}
