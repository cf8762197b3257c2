package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/discshop/internal/domain/errors"
	"github.com/polkiloo/discshop/internal/domain/model"
	"github.com/polkiloo/discshop/internal/domain/repository"
	"github.com/polkiloo/discshop/internal/server/http/dto"
	"github.com/polkiloo/discshop/internal/server/http/middleware"
	testhelpers "github.com/polkiloo/discshop/internal/test"
	"github.com/polkiloo/discshop/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(t *testing.T, method, path string, handler gin.HandlerFunc, setup func(*gin.Context), body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	routePath := path
	if i := strings.IndexByte(routePath, '?'); i >= 0 {
		routePath = routePath[:i]
	}
	if segs := strings.Split(routePath, "/"); len(segs) > 2 {
		segs[2] = ":id"
		routePath = strings.Join(segs, "/")
	}
	router.Handle(method, routePath, func(c *gin.Context) {
		if setup != nil {
			setup(c)
		}
		handler(c)
	})

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func asCustomer(id int64) func(*gin.Context) {
	return func(c *gin.Context) {
		c.Set(middleware.ActorContextKey, model.Actor{UserID: id, Role: model.RoleCustomer})
	}
}

func TestCurrentActor(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if got := CurrentActor(c); got.UserID != 0 {
		t.Fatalf("expected zero actor when not set, got %+v", got)
	}

	c.Set(middleware.ActorContextKey, model.Actor{UserID: 42, Role: model.RoleEmployee})
	if got := CurrentActor(c); got.UserID != 42 || got.Role != model.RoleEmployee {
		t.Fatalf("unexpected actor: %+v", got)
	}
}

func TestAuthHandlerRegister(t *testing.T) {
	body, _ := json.Marshal(dto.AuthRequest{Login: "user", Password: "pass"})
	resp := performRequest(t, http.MethodPost, "/register", NewAuthHandler(testhelpers.AuthFacadeStub{}).Register, nil, body, map[string]string{"Content-Type": "application/json"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if resp.Header().Get("Authorization") == "" {
		t.Fatalf("expected auth header to be set")
	}
}

func TestAuthHandlerRegisterSetsCookie(t *testing.T) {
	login := testhelpers.RandomASCIIString(7, 14)
	password := testhelpers.RandomASCIIString(16, 32)
	body, _ := json.Marshal(dto.AuthRequest{Login: login, Password: password})
	handler := NewAuthHandler(testhelpers.AuthFacadeStub{RegisterFn: func(ctx context.Context, gotLogin, gotPassword string) (string, error) {
		if gotLogin != login || gotPassword != password {
			t.Fatalf("unexpected credentials passed to facade: %q %q", gotLogin, gotPassword)
		}
		return "session-token", nil
	}})
	resp := performRequest(t, http.MethodPost, "/register", handler.Register, nil, body, map[string]string{"Content-Type": "application/json"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if got := resp.Header().Get("Authorization"); got != "Bearer session-token" {
		t.Fatalf("unexpected authorization header %q", got)
	}
	result := resp.Result()
	t.Cleanup(func() {
		_ = result.Body.Close()
	})
	foundCookie := false
	for _, cookie := range result.Cookies() {
		if cookie.Name == "discshop_token" {
			if cookie.Value != "session-token" {
				t.Fatalf("unexpected token stored in cookie: %q", cookie.Value)
			}
			foundCookie = true
			break
		}
	}
	if !foundCookie {
		t.Fatal("expected auth cookie named discshop_token")
	}
}

func TestAuthHandlerRegisterFailures(t *testing.T) {
	tests := []struct {
		name   string
		facade testhelpers.AuthFacadeStub
		body   []byte
		status int
	}{
		{name: "bad json", body: []byte("not json"), status: http.StatusBadRequest},
		{name: "invalid credentials", body: []byte(`{"login":"","password":""}`), facade: testhelpers.AuthFacadeStub{RegisterFn: func(context.Context, string, string) (string, error) {
			return "", domainErrors.ErrInvalidCredentials
		}}, status: http.StatusBadRequest},
		{name: "already exists", body: []byte(`{"login":"a","password":"b"}`), facade: testhelpers.AuthFacadeStub{RegisterFn: func(context.Context, string, string) (string, error) {
			return "", domainErrors.ErrAlreadyExists
		}}, status: http.StatusConflict},
		{name: "internal", body: []byte(`{"login":"a","password":"b"}`), facade: testhelpers.AuthFacadeStub{RegisterFn: func(context.Context, string, string) (string, error) {
			return "", errors.New("boom")
		}}, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := performRequest(t, http.MethodPost, "/register", NewAuthHandler(tt.facade).Register, nil, tt.body, map[string]string{"Content-Type": "application/json"})
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
		})
	}
}

func TestAuthHandlerLogin(t *testing.T) {
	body, _ := json.Marshal(dto.AuthRequest{Login: "user", Password: "pass"})
	resp := performRequest(t, http.MethodPost, "/login", NewAuthHandler(testhelpers.AuthFacadeStub{}).Login, nil, body, map[string]string{"Content-Type": "application/json"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}

	tests := []struct {
		name   string
		facade testhelpers.AuthFacadeStub
		body   []byte
		status int
	}{
		{name: "bad json", body: []byte("{"), status: http.StatusBadRequest},
		{name: "wrong credentials", body: body, facade: testhelpers.AuthFacadeStub{AuthenticateFn: func(context.Context, string, string) (string, error) {
			return "", domainErrors.ErrInvalidCredentials
		}}, status: http.StatusUnauthorized},
		{name: "internal", body: body, facade: testhelpers.AuthFacadeStub{AuthenticateFn: func(context.Context, string, string) (string, error) {
			return "", errors.New("boom")
		}}, status: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := performRequest(t, http.MethodPost, "/login", NewAuthHandler(tt.facade).Login, nil, tt.body, map[string]string{"Content-Type": "application/json"})
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
		})
	}
}

func TestOrderHandlerPlace(t *testing.T) {
	body, _ := json.Marshal(dto.PlaceOrderRequest{
		Name: "Jan", StreetAddress: "ul. Prosta 1", City: "Warszawa", PostalCode: "00-001",
		DelayedPayment: true,
		Lines:          []dto.OrderLineRequest{{ProductID: 1, ProductName: "Aja", UnitAmount: 4200, Quantity: 1}},
	})

	var gotDelayed bool
	var gotLines []usecase.LineInput
	facade := testhelpers.OrderFacadeStub{PlaceFn: func(ctx context.Context, actor model.Actor, shipping usecase.ShippingDetails, lines []usecase.LineInput, delayed bool) (*model.Order, error) {
		gotDelayed = delayed
		gotLines = lines
		if actor.UserID != 7 {
			t.Fatalf("unexpected actor: %+v", actor)
		}
		return &model.Order{ID: 3, UserID: actor.UserID, OrderStatus: model.OrderStatusPending, PaymentStatus: model.PaymentStatusDelayed, Total: 4200}, nil
	}}

	resp := performRequest(t, http.MethodPost, "/orders", NewOrderHandler(facade).Place, asCustomer(7), body, map[string]string{"Content-Type": "application/json"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", resp.Code)
	}
	if !gotDelayed || len(gotLines) != 1 || gotLines[0].ProductName != "Aja" {
		t.Fatalf("facade received unexpected input: delayed=%v lines=%+v", gotDelayed, gotLines)
	}

	var orderResp dto.OrderResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &orderResp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if orderResp.ID != 3 || orderResp.PaymentStatus != "DELAYED" {
		t.Fatalf("unexpected response: %+v", orderResp)
	}
}

func TestOrderHandlerPlaceFailures(t *testing.T) {
	valid, _ := json.Marshal(dto.PlaceOrderRequest{Name: "Jan", Lines: []dto.OrderLineRequest{{ProductName: "Aja", UnitAmount: 1, Quantity: 1}}})
	tests := []struct {
		name   string
		facade testhelpers.OrderFacadeStub
		body   []byte
		status int
	}{
		{name: "bad json", body: []byte("{"), status: http.StatusBadRequest},
		{name: "validation error", body: valid, facade: testhelpers.OrderFacadeStub{PlaceFn: func(context.Context, model.Actor, usecase.ShippingDetails, []usecase.LineInput, bool) (*model.Order, error) {
			return nil, domainErrors.ErrMissingField
		}}, status: http.StatusBadRequest},
		{name: "internal", body: valid, facade: testhelpers.OrderFacadeStub{PlaceFn: func(context.Context, model.Actor, usecase.ShippingDetails, []usecase.LineInput, bool) (*model.Order, error) {
			return nil, errors.New("boom")
		}}, status: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := performRequest(t, http.MethodPost, "/orders", NewOrderHandler(tt.facade).Place, asCustomer(7), tt.body, map[string]string{"Content-Type": "application/json"})
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
		})
	}
}

func TestOrderHandlerGet(t *testing.T) {
	shipped := time.Now()
	facade := testhelpers.OrderFacadeStub{OrderFn: func(ctx context.Context, actor model.Actor, orderID int64) (*model.Order, []model.OrderLine, error) {
		return &model.Order{ID: orderID, UserID: actor.UserID, OrderStatus: model.OrderStatusShipped, PaymentStatus: model.PaymentStatusApproved, ShippingDate: &shipped},
			[]model.OrderLine{{ProductName: "Aja", UnitAmount: 4200, Quantity: 1}}, nil
	}}

	resp := performRequest(t, http.MethodGet, "/orders/5", NewOrderHandler(facade).Get, asCustomer(7), nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var orderResp dto.OrderResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &orderResp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if orderResp.ID != 5 || len(orderResp.Lines) != 1 {
		t.Fatalf("unexpected response: %+v", orderResp)
	}
}

func TestOrderHandlerGetFailures(t *testing.T) {
	notFound := testhelpers.OrderFacadeStub{OrderFn: func(context.Context, model.Actor, int64) (*model.Order, []model.OrderLine, error) {
		return nil, nil, domainErrors.ErrNotFound
	}}

	resp := performRequest(t, http.MethodGet, "/orders/abc", NewOrderHandler(testhelpers.OrderFacadeStub{}).Get, asCustomer(7), nil, nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for bad id, got %d", resp.Code)
	}

	resp = performRequest(t, http.MethodGet, "/orders/5", NewOrderHandler(notFound).Get, asCustomer(7), nil, nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestOrderHandlerList(t *testing.T) {
	var gotCategory usecase.Category
	facade := testhelpers.OrderFacadeStub{ListFn: func(ctx context.Context, actor model.Actor, category usecase.Category) ([]model.Order, error) {
		gotCategory = category
		return []model.Order{{ID: 1}, {ID: 2}}, nil
	}}

	resp := performRequest(t, http.MethodGet, "/orders?status=pending", NewOrderHandler(facade).List, asCustomer(7), nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if gotCategory != usecase.CategoryPending {
		t.Fatalf("unexpected category: %q", gotCategory)
	}
	var list []dto.OrderResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(list))
	}

	failing := testhelpers.OrderFacadeStub{ListFn: func(context.Context, model.Actor, usecase.Category) ([]model.Order, error) {
		return nil, errors.New("boom")
	}}
	resp = performRequest(t, http.MethodGet, "/orders", NewOrderHandler(failing).List, asCustomer(7), nil, nil)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", resp.Code)
	}
}

func TestOrderHandlerCheckout(t *testing.T) {
	facade := testhelpers.OrderFacadeStub{CheckoutFn: func(ctx context.Context, actor model.Actor, orderID int64) (*model.CheckoutSession, error) {
		return &model.CheckoutSession{SessionID: "cs_1", SessionURL: "https://gw/cs_1"}, nil
	}}

	resp := performRequest(t, http.MethodPost, "/orders/5/checkout", NewOrderHandler(facade).Checkout, asCustomer(7), nil, nil)
	if resp.Code != http.StatusSeeOther {
		t.Fatalf("expected status 303, got %d", resp.Code)
	}
	if got := resp.Header().Get("Location"); got != "https://gw/cs_1" {
		t.Fatalf("unexpected location header: %q", got)
	}
	var checkout dto.CheckoutResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &checkout); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if checkout.SessionURL != "https://gw/cs_1" {
		t.Fatalf("unexpected body: %+v", checkout)
	}
}

func TestOrderHandlerCheckoutFailures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "already checked out", err: domainErrors.ErrAlreadyCheckedOut, status: http.StatusConflict},
		{name: "wrong state", err: domainErrors.ErrInvalidTransition, status: http.StatusConflict},
		{name: "foreign order", err: domainErrors.ErrNotFound, status: http.StatusNotFound},
		{name: "gateway down", err: domainErrors.ErrGateway, status: http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facade := testhelpers.OrderFacadeStub{CheckoutFn: func(context.Context, model.Actor, int64) (*model.CheckoutSession, error) {
				return nil, tt.err
			}}
			resp := performRequest(t, http.MethodPost, "/orders/5/checkout", NewOrderHandler(facade).Checkout, asCustomer(7), nil, nil)
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
		})
	}
}

func TestOrderHandlerConfirm(t *testing.T) {
	var confirmed int64
	facade := testhelpers.OrderFacadeStub{ConfirmFn: func(ctx context.Context, orderID int64) error {
		confirmed = orderID
		return nil
	}}

	resp := performRequest(t, http.MethodGet, "/orders/5/confirm", NewOrderHandler(facade).Confirm, nil, nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if confirmed != 5 {
		t.Fatalf("unexpected confirmed order: %d", confirmed)
	}

	failing := testhelpers.OrderFacadeStub{ConfirmFn: func(context.Context, int64) error {
		return domainErrors.ErrInvalidTransition
	}}
	resp = performRequest(t, http.MethodGet, "/orders/5/confirm", NewOrderHandler(failing).Confirm, nil, nil, nil)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", resp.Code)
	}
}

func TestOrderHandlerUpdateShipping(t *testing.T) {
	tracking := "TRACK-9"
	body, _ := json.Marshal(dto.ShippingUpdateRequest{
		Name: "Jan", StreetAddress: "ul. Prosta 1", City: "Warszawa", PostalCode: "00-001",
		TrackingNumber: &tracking,
	})

	var gotUpd repository.ShippingUpdate
	facade := testhelpers.OrderFacadeStub{UpdateFn: func(ctx context.Context, orderID int64, upd repository.ShippingUpdate) error {
		gotUpd = upd
		return nil
	}}

	resp := performRequest(t, http.MethodPatch, "/orders/5/shipping", NewOrderHandler(facade).UpdateShipping, asCustomer(7), body, map[string]string{"Content-Type": "application/json"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if gotUpd.Carrier != nil {
		t.Fatal("absent carrier must stay nil")
	}
	if gotUpd.TrackingNumber == nil || *gotUpd.TrackingNumber != "TRACK-9" {
		t.Fatalf("unexpected tracking number: %+v", gotUpd.TrackingNumber)
	}

	resp = performRequest(t, http.MethodPatch, "/orders/5/shipping", NewOrderHandler(facade).UpdateShipping, asCustomer(7), []byte("{"), map[string]string{"Content-Type": "application/json"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestOrderHandlerShip(t *testing.T) {
	body, _ := json.Marshal(dto.ShipOrderRequest{Carrier: "DHL", TrackingNumber: "TRACK-1"})

	var gotCarrier, gotTracking string
	facade := testhelpers.OrderFacadeStub{ShipFn: func(ctx context.Context, orderID int64, carrier, trackingNumber string) error {
		gotCarrier, gotTracking = carrier, trackingNumber
		return nil
	}}

	resp := performRequest(t, http.MethodPost, "/orders/5/ship", NewOrderHandler(facade).Ship, asCustomer(7), body, map[string]string{"Content-Type": "application/json"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if gotCarrier != "DHL" || gotTracking != "TRACK-1" {
		t.Fatalf("unexpected shipment details: %q %q", gotCarrier, gotTracking)
	}

	missing := testhelpers.OrderFacadeStub{ShipFn: func(context.Context, int64, string, string) error {
		return domainErrors.ErrMissingField
	}}
	resp = performRequest(t, http.MethodPost, "/orders/5/ship", NewOrderHandler(missing).Ship, asCustomer(7), body, map[string]string{"Content-Type": "application/json"})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
}

func TestOrderHandlerCancel(t *testing.T) {
	var cancelled int64
	facade := testhelpers.OrderFacadeStub{CancelFn: func(ctx context.Context, orderID int64) error {
		cancelled = orderID
		return nil
	}}

	resp := performRequest(t, http.MethodPost, "/orders/5/cancel", NewOrderHandler(facade).Cancel, asCustomer(7), nil, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if cancelled != 5 {
		t.Fatalf("unexpected cancelled order: %d", cancelled)
	}

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "terminal", err: domainErrors.ErrInvalidTransition, status: http.StatusConflict},
		{name: "refund failed", err: domainErrors.ErrGateway, status: http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failing := testhelpers.OrderFacadeStub{CancelFn: func(context.Context, int64) error { return tt.err }}
			resp := performRequest(t, http.MethodPost, "/orders/5/cancel", NewOrderHandler(failing).Cancel, asCustomer(7), nil, nil)
			if resp.Code != tt.status {
				t.Fatalf("expected status %d, got %d", tt.status, resp.Code)
			}
		})
	}
}

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{domainErrors.ErrNotFound, http.StatusNotFound},
		{domainErrors.ErrInvalidTransition, http.StatusConflict},
		{domainErrors.ErrAlreadyCheckedOut, http.StatusConflict},
		{domainErrors.ErrMissingField, http.StatusBadRequest},
		{domainErrors.ErrInvalidLine, http.StatusBadRequest},
		{domainErrors.ErrGateway, http.StatusBadGateway},
		{errors.New("other"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFromError(tt.err); got != tt.status {
			t.Fatalf("statusFromError(%v) = %d, want %d", tt.err, got, tt.status)
		}
	}
}
