package usecase

import (
	"go.uber.org/fx"

	"github.com/polkiloo/discshop/internal/adapter/payment"
	"github.com/polkiloo/discshop/internal/config"
	"github.com/polkiloo/discshop/internal/domain/repository"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	NewAuthUseCase,
	newOrderLifecycle,
	NewOrderQuery,
)

type lifecycleParams struct {
	fx.In

	Orders  repository.OrderRepository
	Gateway payment.Client
	Config  *config.Config
}

func newOrderLifecycle(p lifecycleParams) *OrderLifecycle {
	return NewOrderLifecycle(p.Orders, p.Gateway, LifecycleOptions{
		Currency:       p.Config.Currency,
		PublicBaseURL:  p.Config.PublicBaseURL,
		GatewayTimeout: p.Config.GatewayTimeout,
	})
}
