package di

import (
	"github.com/polkiloo/discshop/internal/adapter/payment"
	"github.com/polkiloo/discshop/internal/app"
	"github.com/polkiloo/discshop/internal/config"
	"github.com/polkiloo/discshop/internal/logger"
	"github.com/polkiloo/discshop/internal/pkg/auth"
	"github.com/polkiloo/discshop/internal/server/http/handlers"
	"github.com/polkiloo/discshop/internal/server/http/router"
	"github.com/polkiloo/discshop/internal/storage/postgres"
	"github.com/polkiloo/discshop/internal/usecase"
	"go.uber.org/fx"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		payment.Module,
		usecase.Module,
		fx.Provide(func(f *app.CommerceFacade) handlers.CommerceFacade { return f }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
