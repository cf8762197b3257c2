package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/discshop/internal/domain/model"
	"github.com/polkiloo/discshop/internal/domain/repository"
	"github.com/polkiloo/discshop/internal/server/http/dto"
	"github.com/polkiloo/discshop/internal/usecase"
)

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Place handles POST /api/orders.
func (h *OrderHandler) Place(c *gin.Context) {
	var req dto.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	shipping := usecase.ShippingDetails{
		Name:          req.Name,
		Phone:         req.Phone,
		StreetAddress: req.StreetAddress,
		City:          req.City,
		State:         req.State,
		PostalCode:    req.PostalCode,
	}
	lines := make([]usecase.LineInput, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, usecase.LineInput{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			UnitAmount:  line.UnitAmount,
			Quantity:    line.Quantity,
		})
	}

	order, err := h.facade.PlaceOrder(c.Request.Context(), CurrentActor(c), shipping, lines, req.DelayedPayment)
	if err != nil {
		c.Status(statusFromError(err))
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(*order, nil))
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	order, lines, err := h.facade.Order(c.Request.Context(), CurrentActor(c), orderID)
	if err != nil {
		c.Status(statusFromError(err))
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(*order, lines))
}

// List handles GET /api/orders?status=<category>.
func (h *OrderHandler) List(c *gin.Context) {
	category := usecase.Category(c.Query("status"))

	orders, err := h.facade.OrdersByCategory(c.Request.Context(), CurrentActor(c), category)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}

	response := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		response = append(response, toOrderResponse(o, nil))
	}
	c.JSON(http.StatusOK, response)
}

// Checkout handles POST /api/orders/:id/checkout. Responds 303 with the
// gateway session URL in Location, matching a browser redirect flow.
func (h *OrderHandler) Checkout(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	session, err := h.facade.StartCheckout(c.Request.Context(), CurrentActor(c), orderID)
	if err != nil {
		c.Status(statusFromError(err))
		return
	}

	c.Header("Location", session.SessionURL)
	c.JSON(http.StatusSeeOther, dto.CheckoutResponse{SessionURL: session.SessionURL})
}

// Confirm handles GET /api/orders/:id/confirm, the gateway success callback.
func (h *OrderHandler) Confirm(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	if err := h.facade.ConfirmPayment(c.Request.Context(), orderID); err != nil {
		c.Status(statusFromError(err))
		return
	}
	c.Status(http.StatusOK)
}

// UpdateShipping handles PATCH /api/orders/:id/shipping.
func (h *OrderHandler) UpdateShipping(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req dto.ShippingUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	upd := repository.ShippingUpdate{
		Name:           req.Name,
		Phone:          req.Phone,
		StreetAddress:  req.StreetAddress,
		City:           req.City,
		State:          req.State,
		PostalCode:     req.PostalCode,
		Carrier:        req.Carrier,
		TrackingNumber: req.TrackingNumber,
	}
	if err := h.facade.UpdateShippingInfo(c.Request.Context(), orderID, upd); err != nil {
		c.Status(statusFromError(err))
		return
	}
	c.Status(http.StatusOK)
}

// StartProcessing handles POST /api/orders/:id/process.
func (h *OrderHandler) StartProcessing(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	if err := h.facade.StartProcessing(c.Request.Context(), orderID); err != nil {
		c.Status(statusFromError(err))
		return
	}
	c.Status(http.StatusOK)
}

// Ship handles POST /api/orders/:id/ship.
func (h *OrderHandler) Ship(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	var req dto.ShipOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	if err := h.facade.ShipOrder(c.Request.Context(), orderID, req.Carrier, req.TrackingNumber); err != nil {
		c.Status(statusFromError(err))
		return
	}
	c.Status(http.StatusOK)
}

// Cancel handles POST /api/orders/:id/cancel.
func (h *OrderHandler) Cancel(c *gin.Context) {
	orderID, ok := orderIDParam(c)
	if !ok {
		return
	}

	if err := h.facade.CancelOrder(c.Request.Context(), orderID); err != nil {
		c.Status(statusFromError(err))
		return
	}
	c.Status(http.StatusOK)
}

func toOrderResponse(order model.Order, lines []model.OrderLine) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:             order.ID,
		OrderStatus:    string(order.OrderStatus),
		PaymentStatus:  string(order.PaymentStatus),
		Name:           order.Name,
		Phone:          order.Phone,
		StreetAddress:  order.StreetAddress,
		City:           order.City,
		State:          order.State,
		PostalCode:     order.PostalCode,
		Carrier:        order.Carrier,
		TrackingNumber: order.TrackingNumber,
		Total:          order.Total,
		ShippingDate:   order.ShippingDate,
		PaymentDueDate: order.PaymentDueDate,
		CreatedAt:      order.CreatedAt,
	}
	for _, line := range lines {
		resp.Lines = append(resp.Lines, dto.OrderLineResponse{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			UnitAmount:  line.UnitAmount,
			Quantity:    line.Quantity,
		})
	}
	return resp
}
