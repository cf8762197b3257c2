package usecase

import (
	"context"

	domainErrors "github.com/polkiloo/discshop/internal/domain/errors"
	"github.com/polkiloo/discshop/internal/domain/model"
	"github.com/polkiloo/discshop/internal/domain/repository"
)

// Category is an operational dashboard bucket.
type Category string

const (
	CategoryPending   Category = "pending"
	CategoryCompleted Category = "completed"
	CategoryInProcess Category = "inprocess"
	CategoryApproved  Category = "approved"
)

// OrderQuery serves read-side order projections scoped by caller privilege.
type OrderQuery struct {
	orders repository.OrderRepository
}

// NewOrderQuery constructs OrderQuery.
func NewOrderQuery(orders repository.OrderRepository) *OrderQuery {
	return &OrderQuery{orders: orders}
}

// ListByCategory returns orders in the given dashboard bucket. Privileged
// actors see all orders, others only their own. An unknown category returns
// the unfiltered (scoped) list.
//
// NB: the bucket-to-status mapping is the legacy dashboard contract:
// "completed" filters on INPROCESS and "inprocess" on SHIPPED. Kept as-is
// until the dashboard contract changes.
func (q *OrderQuery) ListByCategory(ctx context.Context, actor model.Actor, category Category) ([]model.Order, error) {
	filter := repository.OrderFilter{}
	if !actor.Privileged() {
		userID := actor.UserID
		filter.UserID = &userID
	}

	switch category {
	case CategoryPending:
		status := model.PaymentStatusDelayed
		filter.PaymentStatus = &status
	case CategoryCompleted:
		status := model.OrderStatusInProcess
		filter.OrderStatus = &status
	case CategoryInProcess:
		status := model.OrderStatusShipped
		filter.OrderStatus = &status
	case CategoryApproved:
		status := model.OrderStatusApproved
		filter.OrderStatus = &status
	}

	return q.orders.List(ctx, filter)
}

// Get returns a single order with its lines. Unprivileged actors can only
// see their own orders; foreign orders report not found to avoid leaking
// existence.
func (q *OrderQuery) Get(ctx context.Context, actor model.Actor, orderID int64) (*model.Order, []model.OrderLine, error) {
	order, err := q.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if !actor.Privileged() && order.UserID != actor.UserID {
		return nil, nil, domainErrors.ErrNotFound
	}

	lines, err := q.orders.LinesByOrder(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	return order, lines, nil
}
