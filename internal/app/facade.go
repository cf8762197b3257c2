package app

import (
	"context"

	"github.com/polkiloo/discshop/internal/domain/model"
	"github.com/polkiloo/discshop/internal/domain/repository"
	"github.com/polkiloo/discshop/internal/usecase"
)

// CommerceFacade aggregates the application use cases behind one surface for
// HTTP handlers and the reconciliation worker.
type CommerceFacade struct {
	auth      *usecase.AuthUseCase
	lifecycle *usecase.OrderLifecycle
	query     *usecase.OrderQuery
}

// NewCommerceFacade constructs CommerceFacade.
func NewCommerceFacade(auth *usecase.AuthUseCase, lifecycle *usecase.OrderLifecycle, query *usecase.OrderQuery) *CommerceFacade {
	return &CommerceFacade{auth: auth, lifecycle: lifecycle, query: query}
}

func (f *CommerceFacade) Register(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Register(ctx, login, password)
	return token, err
}

func (f *CommerceFacade) Authenticate(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Authenticate(ctx, login, password)
	return token, err
}

func (f *CommerceFacade) ParseToken(token string) (model.Actor, error) {
	return f.auth.ParseToken(token)
}

func (f *CommerceFacade) PlaceOrder(ctx context.Context, actor model.Actor, shipping usecase.ShippingDetails, lines []usecase.LineInput, delayed bool) (*model.Order, error) {
	return f.lifecycle.PlaceOrder(ctx, actor.UserID, shipping, lines, delayed)
}

func (f *CommerceFacade) Order(ctx context.Context, actor model.Actor, orderID int64) (*model.Order, []model.OrderLine, error) {
	return f.query.Get(ctx, actor, orderID)
}

func (f *CommerceFacade) OrdersByCategory(ctx context.Context, actor model.Actor, category usecase.Category) ([]model.Order, error) {
	return f.query.ListByCategory(ctx, actor, category)
}

// StartCheckout creates a gateway session for an order visible to the actor.
func (f *CommerceFacade) StartCheckout(ctx context.Context, actor model.Actor, orderID int64) (*model.CheckoutSession, error) {
	if _, _, err := f.query.Get(ctx, actor, orderID); err != nil {
		return nil, err
	}
	return f.lifecycle.CreateCheckoutSession(ctx, orderID)
}

func (f *CommerceFacade) ConfirmPayment(ctx context.Context, orderID int64) error {
	return f.lifecycle.ConfirmPayment(ctx, orderID)
}

func (f *CommerceFacade) UpdateShippingInfo(ctx context.Context, orderID int64, upd repository.ShippingUpdate) error {
	return f.lifecycle.UpdateShippingInfo(ctx, orderID, upd)
}

func (f *CommerceFacade) StartProcessing(ctx context.Context, orderID int64) error {
	return f.lifecycle.StartProcessing(ctx, orderID)
}

func (f *CommerceFacade) ShipOrder(ctx context.Context, orderID int64, carrier, trackingNumber string) error {
	return f.lifecycle.ShipOrder(ctx, orderID, carrier, trackingNumber)
}

func (f *CommerceFacade) CancelOrder(ctx context.Context, orderID int64) error {
	return f.lifecycle.CancelOrder(ctx, orderID)
}

func (f *CommerceFacade) OrdersForReconciliation(ctx context.Context, limit int) ([]model.Order, error) {
	return f.lifecycle.OrdersForReconciliation(ctx, limit)
}

// ReconcilePayment is the worker entry point; it delegates to the idempotent
// payment confirmation.
func (f *CommerceFacade) ReconcilePayment(ctx context.Context, orderID int64) error {
	return f.lifecycle.ConfirmPayment(ctx, orderID)
}
