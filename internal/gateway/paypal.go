package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/doltservices/doltbook/internal/domain"
	"go.uber.org/zap"
)

// PayPalClient talks to the external payment backend that owns the PayPal
// integration. Order ids it returns are used as transaction ids locally.
type PayPalClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewPayPalClient(baseURL string, timeout time.Duration, logger *zap.Logger) *PayPalClient {
	return &PayPalClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type createOrderRequest struct {
	Amount string `json:"amount"`
}

type createOrderResponse struct {
	ID string `json:"id"`
}

type captureOrderRequest struct {
	OrderID string `json:"orderId"`
	UID     string `json:"uid"`
}

type captureOrderResponse struct {
	Status string `json:"status"`
}

func (c *PayPalClient) CreateOrder(ctx context.Context, amountCents int64, currency string) (string, error) {
	var resp createOrderResponse
	err := c.post(ctx, "/paypal/create-order", createOrderRequest{Amount: formatAmount(amountCents)}, &resp)
	if err != nil {
		return "", fmt.Errorf("paypal create order: %w", err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("paypal create order: empty order id")
	}
	c.logger.Info("paypal order created", zap.String("order_id", resp.ID), zap.String("currency", currency))
	return resp.ID, nil
}

func (c *PayPalClient) CaptureOrder(ctx context.Context, orderID, userID string) error {
	var resp captureOrderResponse
	err := c.post(ctx, "/paypal/capture-order", captureOrderRequest{OrderID: orderID, UID: userID}, &resp)
	if err != nil {
		return fmt.Errorf("paypal capture order %s: %w", orderID, err)
	}
	c.logger.Info("paypal order captured", zap.String("order_id", orderID), zap.String("status", resp.Status))
	return nil
}

func (c *PayPalClient) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("backend returned %d: %s", resp.StatusCode, data)
	}
	return json.Unmarshal(data, out)
}

func formatAmount(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

// PayPalGateway adapts the backend client to the Gateway interface.
type PayPalGateway struct {
	client *PayPalClient
}

func NewPayPalGateway(client *PayPalClient) *PayPalGateway {
	return &PayPalGateway{client: client}
}

func (g *PayPalGateway) Name() domain.PaymentGateway {
	return domain.GatewayPayPal
}

func (g *PayPalGateway) CreateIntent(ctx context.Context, booking *domain.Booking) (*Intent, error) {
	orderID, err := g.client.CreateOrder(ctx, booking.AmountCents, booking.Currency)
	if err != nil {
		return nil, err
	}
	return &Intent{TransactionID: orderID}, nil
}
