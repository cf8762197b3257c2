package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/polkiloo/discshop/internal/adapter/payment"
	domainErrors "github.com/polkiloo/discshop/internal/domain/errors"
	"github.com/polkiloo/discshop/internal/domain/model"
	"github.com/polkiloo/discshop/internal/domain/repository"
)

// delayedPaymentTerm is how long a delayed-payment customer has to settle
// once the order ships.
const delayedPaymentTerm = 30 * 24 * time.Hour

// LifecycleOptions tunes the order lifecycle engine.
type LifecycleOptions struct {
	Currency       string
	PublicBaseURL  string
	GatewayTimeout time.Duration
	Now            func() time.Time
}

// OrderLifecycle is the order state machine. It owns every status mutation:
// request handlers and the reconciliation worker never write order fields
// directly. Mutations on the same order are serialized by a per-order lock,
// and the repository transition methods double as compare-and-swap guards.
type OrderLifecycle struct {
	orders         repository.OrderRepository
	gateway        payment.Client
	locks          keyedMutex
	currency       string
	publicBaseURL  string
	gatewayTimeout time.Duration
	now            func() time.Time
}

// NewOrderLifecycle constructs the lifecycle engine.
func NewOrderLifecycle(orders repository.OrderRepository, gateway payment.Client, opts LifecycleOptions) *OrderLifecycle {
	if opts.Currency == "" {
		opts.Currency = "pln"
	}
	if opts.GatewayTimeout <= 0 {
		opts.GatewayTimeout = 10 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &OrderLifecycle{
		orders:         orders,
		gateway:        gateway,
		currency:       opts.Currency,
		publicBaseURL:  opts.PublicBaseURL,
		gatewayTimeout: opts.GatewayTimeout,
		now:            opts.Now,
	}
}

// ShippingDetails is the address block captured at order placement.
type ShippingDetails struct {
	Name          string
	Phone         string
	StreetAddress string
	City          string
	State         string
	PostalCode    string
}

// LineInput is a priced line item submitted at order placement.
type LineInput struct {
	ProductID   int64
	ProductName string
	UnitAmount  int64
	Quantity    int
}

// PlaceOrder creates an order at checkout submission. Delayed controls the
// payment term: false starts at PENDING/PENDING, true at PENDING/DELAYED.
// Line prices are snapshotted; the order total never changes afterwards.
func (u *OrderLifecycle) PlaceOrder(ctx context.Context, userID int64, shipping ShippingDetails, lines []LineInput, delayed bool) (*model.Order, error) {
	if err := ValidateShipping(shipping); err != nil {
		return nil, err
	}
	if err := ValidateLines(lines); err != nil {
		return nil, err
	}

	paymentStatus := model.PaymentStatusPending
	if delayed {
		paymentStatus = model.PaymentStatusDelayed
	}

	order := &model.Order{
		UserID:        userID,
		Name:          shipping.Name,
		Phone:         shipping.Phone,
		StreetAddress: shipping.StreetAddress,
		City:          shipping.City,
		State:         shipping.State,
		PostalCode:    shipping.PostalCode,
		OrderStatus:   model.OrderStatusPending,
		PaymentStatus: paymentStatus,
	}

	orderLines := make([]model.OrderLine, 0, len(lines))
	for _, line := range lines {
		order.Total += line.UnitAmount * int64(line.Quantity)
		orderLines = append(orderLines, model.OrderLine{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			UnitAmount:  line.UnitAmount,
			Quantity:    line.Quantity,
		})
	}

	return u.orders.Create(ctx, order, orderLines)
}

// UpdateShippingInfo applies a partial shipping-info update. Address fields
// always overwrite; carrier and tracking number only when present in the
// update command.
func (u *OrderLifecycle) UpdateShippingInfo(ctx context.Context, orderID int64, upd repository.ShippingUpdate) error {
	unlock := u.locks.lock(orderID)
	defer unlock()

	return u.orders.UpdateShipping(ctx, orderID, upd)
}

// StartProcessing moves a PENDING or APPROVED order into fulfillment.
func (u *OrderLifecycle) StartProcessing(ctx context.Context, orderID int64) error {
	unlock := u.locks.lock(orderID)
	defer unlock()

	return u.orders.TransitionStatus(ctx, orderID,
		[]model.OrderStatus{model.OrderStatusPending, model.OrderStatusApproved},
		model.OrderStatusInProcess)
}

// ShipOrder marks an INPROCESS order shipped with the given carrier and
// tracking number. Delayed-payment orders get a payment due date 30 days out.
func (u *OrderLifecycle) ShipOrder(ctx context.Context, orderID int64, carrier, trackingNumber string) error {
	if carrier == "" || trackingNumber == "" {
		return fmt.Errorf("%w: carrier and tracking number", domainErrors.ErrMissingField)
	}

	unlock := u.locks.lock(orderID)
	defer unlock()

	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	shippedAt := u.now()
	var dueDate *time.Time
	if order.PaymentStatus == model.PaymentStatusDelayed {
		due := shippedAt.Add(delayedPaymentTerm)
		dueDate = &due
	}

	return u.orders.MarkShipped(ctx, orderID, carrier, trackingNumber, shippedAt, dueDate)
}

// CancelOrder cancels a non-terminal order. Captured payments are refunded
// through the gateway before any local state changes; if the refund fails the
// order is left untouched and the caller may retry.
func (u *OrderLifecycle) CancelOrder(ctx context.Context, orderID int64) error {
	unlock := u.locks.lock(orderID)
	defer unlock()

	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Terminal() {
		return domainErrors.ErrInvalidTransition
	}

	var refund *model.Refund
	if order.PaymentStatus == model.PaymentStatusApproved {
		if order.PaymentIntentID == nil {
			return fmt.Errorf("%w: captured payment without intent id", domainErrors.ErrGateway)
		}
		gwCtx, cancel := context.WithTimeout(ctx, u.gatewayTimeout)
		defer cancel()
		issued, err := u.gateway.IssueRefund(gwCtx, *order.PaymentIntentID)
		if err != nil {
			return fmt.Errorf("%w: refund: %s", domainErrors.ErrGateway, err)
		}
		issued.OrderID = orderID
		refund = issued
	}

	return u.orders.MarkCancelled(ctx, orderID, refund)
}

// ConfirmPayment reconciles locally-cached payment state against the gateway.
// It is idempotent: an already approved payment is a no-op and produces no
// gateway call. An unpaid session leaves the order unchanged for a later
// retry.
func (u *OrderLifecycle) ConfirmPayment(ctx context.Context, orderID int64) error {
	unlock := u.locks.lock(orderID)
	defer unlock()

	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	switch order.PaymentStatus {
	case model.PaymentStatusApproved:
		return nil
	case model.PaymentStatusPending, model.PaymentStatusDelayed:
	default:
		return domainErrors.ErrInvalidTransition
	}

	if order.SessionID == nil {
		return domainErrors.ErrInvalidTransition
	}

	gwCtx, cancel := context.WithTimeout(ctx, u.gatewayTimeout)
	defer cancel()
	status, err := u.gateway.GetSession(gwCtx, *order.SessionID)
	if err != nil {
		return err
	}
	if status.State != model.GatewayPaymentPaid {
		return nil
	}

	return u.orders.ApprovePayment(ctx, orderID, status.PaymentIntentID)
}

// CreateCheckoutSession opens a gateway checkout session for a PENDING order
// that has none yet, and stores the session reference. A repeat call is
// rejected so a customer is never charged twice.
func (u *OrderLifecycle) CreateCheckoutSession(ctx context.Context, orderID int64) (*model.CheckoutSession, error) {
	unlock := u.locks.lock(orderID)
	defer unlock()

	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.SessionID != nil {
		return nil, domainErrors.ErrAlreadyCheckedOut
	}
	if order.OrderStatus != model.OrderStatusPending {
		return nil, domainErrors.ErrInvalidTransition
	}

	lines, err := u.orders.LinesByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	req := payment.SessionRequest{
		LineItems:  make([]model.SessionLineItem, 0, len(lines)),
		SuccessURL: fmt.Sprintf("%s/api/orders/%d/confirm", u.publicBaseURL, orderID),
		CancelURL:  fmt.Sprintf("%s/api/orders/%d", u.publicBaseURL, orderID),
	}
	for _, line := range lines {
		req.LineItems = append(req.LineItems, model.SessionLineItem{
			Name:       line.ProductName,
			UnitAmount: line.UnitAmount,
			Currency:   u.currency,
			Quantity:   line.Quantity,
		})
	}

	gwCtx, cancel := context.WithTimeout(ctx, u.gatewayTimeout)
	defer cancel()
	session, err := u.gateway.CreateSession(gwCtx, req)
	if err != nil {
		return nil, err
	}

	if err := u.orders.SetSession(ctx, orderID, session.SessionID, session.PaymentIntentID); err != nil {
		return nil, err
	}
	return session, nil
}

// OrdersForReconciliation returns unsettled orders with open sessions.
func (u *OrderLifecycle) OrdersForReconciliation(ctx context.Context, limit int) ([]model.Order, error) {
	return u.orders.SelectBatchForReconciliation(ctx, limit)
}
