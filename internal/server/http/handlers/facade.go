package handlers

import (
	"context"

	"github.com/polkiloo/discshop/internal/domain/model"
	"github.com/polkiloo/discshop/internal/domain/repository"
	"github.com/polkiloo/discshop/internal/usecase"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, login, password string) (string, error)
	Authenticate(ctx context.Context, login, password string) (string, error)
	ParseToken(token string) (model.Actor, error)
}

// OrderFacade encapsulates order operations exposed via HTTP.
type OrderFacade interface {
	PlaceOrder(ctx context.Context, actor model.Actor, shipping usecase.ShippingDetails, lines []usecase.LineInput, delayed bool) (*model.Order, error)
	Order(ctx context.Context, actor model.Actor, orderID int64) (*model.Order, []model.OrderLine, error)
	OrdersByCategory(ctx context.Context, actor model.Actor, category usecase.Category) ([]model.Order, error)
	StartCheckout(ctx context.Context, actor model.Actor, orderID int64) (*model.CheckoutSession, error)
	ConfirmPayment(ctx context.Context, orderID int64) error
	UpdateShippingInfo(ctx context.Context, orderID int64, upd repository.ShippingUpdate) error
	StartProcessing(ctx context.Context, orderID int64) error
	ShipOrder(ctx context.Context, orderID int64, carrier, trackingNumber string) error
	CancelOrder(ctx context.Context, orderID int64) error
}

// CommerceFacade aggregates the full set of operations used across handlers.
type CommerceFacade interface {
	AuthFacade
	OrderFacade
}
