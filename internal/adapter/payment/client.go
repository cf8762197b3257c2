package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	domainErrors "github.com/polkiloo/discshop/internal/domain/errors"
	"github.com/polkiloo/discshop/internal/domain/model"
)

// TooManyRequestsError represents rate limiting signal from the gateway.
type TooManyRequestsError struct {
	RetryAfter time.Duration
}

func (e TooManyRequestsError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

// SessionRequest describes a checkout session to create.
type SessionRequest struct {
	LineItems  []model.SessionLineItem
	SuccessURL string
	CancelURL  string
}

// Client exposes the payment gateway capabilities the order engine requires.
type Client interface {
	CreateSession(ctx context.Context, req SessionRequest) (*model.CheckoutSession, error)
	GetSession(ctx context.Context, sessionID string) (*model.SessionStatus, error)
	IssueRefund(ctx context.Context, paymentIntentID string) (*model.Refund, error)
}

// HTTPClient implements Client via the gateway HTTP API.
type HTTPClient struct {
	baseURL    *url.URL
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

type lineItemPayload struct {
	Name       string `json:"name"`
	UnitAmount int64  `json:"unit_amount"`
	Currency   string `json:"currency"`
	Quantity   int    `json:"quantity"`
}

type createSessionPayload struct {
	LineItems  []lineItemPayload `json:"line_items"`
	SuccessURL string            `json:"success_url"`
	CancelURL  string            `json:"cancel_url"`
}

type sessionResponse struct {
	ID            string `json:"id"`
	URL           string `json:"url,omitempty"`
	PaymentStatus string `json:"payment_status,omitempty"`
	PaymentIntent string `json:"payment_intent,omitempty"`
}

type refundPayload struct {
	PaymentIntent string `json:"payment_intent"`
	Reason        string `json:"reason"`
}

type refundResponse struct {
	ID string `json:"id"`
}

// NewHTTPClient creates a gateway client with the given request timeout.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse gateway url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("gateway url must be absolute")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL: parsed,
		apiKey:  apiKey,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// CreateSession opens a checkout session for the given line items.
func (c *HTTPClient) CreateSession(ctx context.Context, req SessionRequest) (*model.CheckoutSession, error) {
	payload := createSessionPayload{
		LineItems:  make([]lineItemPayload, 0, len(req.LineItems)),
		SuccessURL: req.SuccessURL,
		CancelURL:  req.CancelURL,
	}
	for _, item := range req.LineItems {
		payload.LineItems = append(payload.LineItems, lineItemPayload{
			Name:       item.Name,
			UnitAmount: item.UnitAmount,
			Currency:   item.Currency,
			Quantity:   item.Quantity,
		})
	}

	var data sessionResponse
	if err := c.post(ctx, "/v1/checkout/sessions", payload, &data); err != nil {
		return nil, err
	}
	return &model.CheckoutSession{
		SessionID:       data.ID,
		SessionURL:      data.URL,
		PaymentIntentID: data.PaymentIntent,
	}, nil
}

// GetSession fetches the live state of a checkout session. The provider
// payment_status string is mapped to GatewayPaymentState here so callers
// never see raw provider values.
func (c *HTTPClient) GetSession(ctx context.Context, sessionID string) (*model.SessionStatus, error) {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/v1/checkout/sessions/", sessionID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domainErrors.ErrGateway, err)
	}
	defer resp.Body.Close()

	var data sessionResponse
	if err := c.decode(resp, &data); err != nil {
		return nil, err
	}
	return &model.SessionStatus{
		State:           mapPaymentState(data.PaymentStatus),
		PaymentIntentID: data.PaymentIntent,
	}, nil
}

// IssueRefund refunds the charge behind the given payment intent.
func (c *HTTPClient) IssueRefund(ctx context.Context, paymentIntentID string) (*model.Refund, error) {
	var data refundResponse
	payload := refundPayload{PaymentIntent: paymentIntentID, Reason: "requested_by_customer"}
	if err := c.post(ctx, "/v1/refunds", payload, &data); err != nil {
		return nil, err
	}
	return &model.Refund{RefundID: data.ID, PaymentIntentID: paymentIntentID}, nil
}

func (c *HTTPClient) post(ctx context.Context, route string, payload, out any) error {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, route)

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s", domainErrors.ErrGateway, err)
	}
	defer resp.Body.Close()

	return c.decode(resp, out)
}

func (c *HTTPClient) decode(resp *http.Response, out any) error {
	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("%w: %s", domainErrors.ErrGateway, err)
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("%w: %s", domainErrors.ErrGateway, err)
		}
		return nil
	case http.StatusTooManyRequests:
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		return TooManyRequestsError{RetryAfter: retryAfter}
	default:
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("gateway request failed", slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return fmt.Errorf("%w: %s", domainErrors.ErrGateway, resp.Status)
	}
}

func (c *HTTPClient) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

func mapPaymentState(raw string) model.GatewayPaymentState {
	switch raw {
	case "paid":
		return model.GatewayPaymentPaid
	case "unpaid":
		return model.GatewayPaymentUnpaid
	default:
		return model.GatewayPaymentUnknown
	}
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 5 * time.Second
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return 5 * time.Second
}
