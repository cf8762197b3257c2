package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/discshop/internal/server/http/handlers"
	"github.com/polkiloo/discshop/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.CommerceFacade, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	authHandler := handlers.NewAuthHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)

	api := engine.Group("/api")
	user := api.Group("/user")
	user.POST("/register", authHandler.Register)
	user.POST("/login", authHandler.Login)

	orders := api.Group("/orders")
	orders.Use(middleware.AuthRequired(facade))
	orders.POST("", orderHandler.Place)
	orders.GET("", orderHandler.List)
	orders.GET("/:id", orderHandler.Get)
	orders.POST("/:id/checkout", orderHandler.Checkout)
	orders.GET("/:id/confirm", orderHandler.Confirm)

	staff := orders.Group("")
	staff.Use(middleware.StaffOnly())
	staff.PATCH("/:id/shipping", orderHandler.UpdateShipping)
	staff.POST("/:id/process", orderHandler.StartProcessing)
	staff.POST("/:id/ship", orderHandler.Ship)
	staff.POST("/:id/cancel", orderHandler.Cancel)

	return engine
}
