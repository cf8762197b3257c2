package test

import (
	"context"
	"sync"

	"github.com/polkiloo/discshop/internal/adapter/payment"
	"github.com/polkiloo/discshop/internal/domain/model"
	"github.com/polkiloo/discshop/internal/domain/repository"
	"github.com/polkiloo/discshop/internal/usecase"
)

// GatewayStub implements the payment gateway client with call recording.
type GatewayStub struct {
	mu sync.Mutex

	CreateFn func(context.Context, payment.SessionRequest) (*model.CheckoutSession, error)
	GetFn    func(context.Context, string) (*model.SessionStatus, error)
	RefundFn func(context.Context, string) (*model.Refund, error)

	CreateCalls []payment.SessionRequest
	GetCalls    []string
	RefundCalls []string
}

// Lock guards recorded calls for concurrent assertions.
func (s *GatewayStub) Lock()   { s.mu.Lock() }
func (s *GatewayStub) Unlock() { s.mu.Unlock() }

// CreateSession records the call and returns a canned session.
func (s *GatewayStub) CreateSession(ctx context.Context, req payment.SessionRequest) (*model.CheckoutSession, error) {
	s.mu.Lock()
	s.CreateCalls = append(s.CreateCalls, req)
	s.mu.Unlock()
	if s.CreateFn != nil {
		return s.CreateFn(ctx, req)
	}
	return &model.CheckoutSession{SessionID: "cs_test", SessionURL: "https://gateway.test/cs_test", PaymentIntentID: "pi_test"}, nil
}

// GetSession records the call and reports the session paid.
func (s *GatewayStub) GetSession(ctx context.Context, sessionID string) (*model.SessionStatus, error) {
	s.mu.Lock()
	s.GetCalls = append(s.GetCalls, sessionID)
	s.mu.Unlock()
	if s.GetFn != nil {
		return s.GetFn(ctx, sessionID)
	}
	return &model.SessionStatus{State: model.GatewayPaymentPaid, PaymentIntentID: "pi_test"}, nil
}

// IssueRefund records the call and returns a canned refund.
func (s *GatewayStub) IssueRefund(ctx context.Context, paymentIntentID string) (*model.Refund, error) {
	s.mu.Lock()
	s.RefundCalls = append(s.RefundCalls, paymentIntentID)
	s.mu.Unlock()
	if s.RefundFn != nil {
		return s.RefundFn(ctx, paymentIntentID)
	}
	return &model.Refund{RefundID: "re_test", PaymentIntentID: paymentIntentID}, nil
}

var _ payment.Client = (*GatewayStub)(nil)

// AuthFacadeStub simulates authentication facade interactions.
type AuthFacadeStub struct {
	RegisterFn     func(context.Context, string, string) (string, error)
	AuthenticateFn func(context.Context, string, string) (string, error)
	ParseFn        func(string) (model.Actor, error)
}

// Register returns token for successful registration scenarios.
func (s AuthFacadeStub) Register(ctx context.Context, login, password string) (string, error) {
	if s.RegisterFn != nil {
		return s.RegisterFn(ctx, login, password)
	}
	return "token", nil
}

// Authenticate returns token for successful authentication scenarios.
func (s AuthFacadeStub) Authenticate(ctx context.Context, login, password string) (string, error) {
	if s.AuthenticateFn != nil {
		return s.AuthenticateFn(ctx, login, password)
	}
	return "token", nil
}

// ParseToken returns the stored actor for the authenticated caller.
func (s AuthFacadeStub) ParseToken(token string) (model.Actor, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	return model.Actor{UserID: 1, Role: model.RoleCustomer}, nil
}

// OrderFacadeStub provides controllable behaviour for order endpoints.
type OrderFacadeStub struct {
	PlaceFn    func(context.Context, model.Actor, usecase.ShippingDetails, []usecase.LineInput, bool) (*model.Order, error)
	OrderFn    func(context.Context, model.Actor, int64) (*model.Order, []model.OrderLine, error)
	ListFn     func(context.Context, model.Actor, usecase.Category) ([]model.Order, error)
	CheckoutFn func(context.Context, model.Actor, int64) (*model.CheckoutSession, error)
	ConfirmFn  func(context.Context, int64) error
	UpdateFn   func(context.Context, int64, repository.ShippingUpdate) error
	ProcessFn  func(context.Context, int64) error
	ShipFn     func(context.Context, int64, string, string) error
	CancelFn   func(context.Context, int64) error
}

func (s OrderFacadeStub) PlaceOrder(ctx context.Context, actor model.Actor, shipping usecase.ShippingDetails, lines []usecase.LineInput, delayed bool) (*model.Order, error) {
	if s.PlaceFn != nil {
		return s.PlaceFn(ctx, actor, shipping, lines, delayed)
	}
	return &model.Order{ID: 1, UserID: actor.UserID, OrderStatus: model.OrderStatusPending, PaymentStatus: model.PaymentStatusPending}, nil
}

func (s OrderFacadeStub) Order(ctx context.Context, actor model.Actor, orderID int64) (*model.Order, []model.OrderLine, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, actor, orderID)
	}
	return &model.Order{ID: orderID, UserID: actor.UserID}, nil, nil
}

func (s OrderFacadeStub) OrdersByCategory(ctx context.Context, actor model.Actor, category usecase.Category) ([]model.Order, error) {
	if s.ListFn != nil {
		return s.ListFn(ctx, actor, category)
	}
	return []model.Order{{ID: 1}}, nil
}

func (s OrderFacadeStub) StartCheckout(ctx context.Context, actor model.Actor, orderID int64) (*model.CheckoutSession, error) {
	if s.CheckoutFn != nil {
		return s.CheckoutFn(ctx, actor, orderID)
	}
	return &model.CheckoutSession{SessionID: "cs_test", SessionURL: "https://gateway.test/cs_test"}, nil
}

func (s OrderFacadeStub) ConfirmPayment(ctx context.Context, orderID int64) error {
	if s.ConfirmFn != nil {
		return s.ConfirmFn(ctx, orderID)
	}
	return nil
}

func (s OrderFacadeStub) UpdateShippingInfo(ctx context.Context, orderID int64, upd repository.ShippingUpdate) error {
	if s.UpdateFn != nil {
		return s.UpdateFn(ctx, orderID, upd)
	}
	return nil
}

func (s OrderFacadeStub) StartProcessing(ctx context.Context, orderID int64) error {
	if s.ProcessFn != nil {
		return s.ProcessFn(ctx, orderID)
	}
	return nil
}

func (s OrderFacadeStub) ShipOrder(ctx context.Context, orderID int64, carrier, trackingNumber string) error {
	if s.ShipFn != nil {
		return s.ShipFn(ctx, orderID, carrier, trackingNumber)
	}
	return nil
}

func (s OrderFacadeStub) CancelOrder(ctx context.Context, orderID int64) error {
	if s.CancelFn != nil {
		return s.CancelFn(ctx, orderID)
	}
	return nil
}

// CommerceFacadeStub aggregates facade dependencies for HTTP layer tests.
type CommerceFacadeStub struct {
	AuthFacadeStub
	OrderFacadeStub
}

// WorkerFacadeStub drives the reconciliation worker in tests. Orders holds
// one batch per poll; subsequent polls return nothing.
type WorkerFacadeStub struct {
	sync.Mutex

	Orders      [][]model.Order
	ReconcileFn func(context.Context, int64) error

	Polls      int
	Reconciled []int64
}

// OrdersForReconciliation pops the next configured batch.
func (s *WorkerFacadeStub) OrdersForReconciliation(ctx context.Context, limit int) ([]model.Order, error) {
	s.Lock()
	defer s.Unlock()
	s.Polls++
	if len(s.Orders) == 0 {
		return nil, nil
	}
	batch := s.Orders[0]
	s.Orders = s.Orders[1:]
	return batch, nil
}

// ReconcilePayment records the call and delegates to the override.
func (s *WorkerFacadeStub) ReconcilePayment(ctx context.Context, orderID int64) error {
	s.Lock()
	s.Reconciled = append(s.Reconciled, orderID)
	s.Unlock()
	if s.ReconcileFn != nil {
		return s.ReconcileFn(ctx, orderID)
	}
	return nil
}
