package repository

import (
	"context"
	"time"

	"github.com/polkiloo/discshop/internal/domain/model"
)

// OrderFilter narrows order listings. Nil fields match everything.
type OrderFilter struct {
	UserID        *int64
	OrderStatus   *model.OrderStatus
	PaymentStatus *model.PaymentStatus
}

// ShippingUpdate carries a partial shipping-info update. Name through
// PostalCode always overwrite; Carrier and TrackingNumber are applied only
// when non-nil, so "absent" is distinguishable from "clear".
type ShippingUpdate struct {
	Name           string
	Phone          string
	StreetAddress  string
	City           string
	State          string
	PostalCode     string
	Carrier        *string
	TrackingNumber *string
}

// OrderRepository describes persistence operations with orders.
//
// Transition methods are conditional writes: they mutate only when the order
// is currently in one of the expected states and report ErrInvalidTransition
// otherwise, so concurrent admin actions against the same order cannot both
// succeed.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order, lines []model.OrderLine) (*model.Order, error)
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	LinesByOrder(ctx context.Context, orderID int64) ([]model.OrderLine, error)
	List(ctx context.Context, filter OrderFilter) ([]model.Order, error)
	UpdateShipping(ctx context.Context, id int64, upd ShippingUpdate) error
	SetSession(ctx context.Context, id int64, sessionID, paymentIntentID string) error
	TransitionStatus(ctx context.Context, id int64, from []model.OrderStatus, to model.OrderStatus) error
	MarkShipped(ctx context.Context, id int64, carrier, trackingNumber string, shippedAt time.Time, dueDate *time.Time) error
	MarkCancelled(ctx context.Context, id int64, refund *model.Refund) error
	ApprovePayment(ctx context.Context, id int64, paymentIntentID string) error
	SelectBatchForReconciliation(ctx context.Context, limit int) ([]model.Order, error)
}
