package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/draftea/order-system/order-service/domain"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
)

const defaultStepClientTimeout = 5 * time.Second

var (
	_ domain.InventoryClient = (*HTTPStepClients)(nil)
	_ domain.PaymentClient   = (*HTTPStepClients)(nil)
	_ domain.ShippingClient  = (*HTTPStepClients)(nil)
)

// HTTPStepClients calls the downstream inventory, payment and shipping
// services over HTTP. Every fault, business rejection, unexpected status,
// network error or timeout, comes back as a plain error so the saga executor
// can treat all of them uniformly.
type HTTPStepClients struct {
	client       *http.Client
	inventoryURL string
	paymentURL   string
	shippingURL  string
}

// NewHTTPStepClients creates step clients against the given service base URLs
func NewHTTPStepClients(inventoryURL, paymentURL, shippingURL string) *HTTPStepClients {
	return &HTTPStepClients{
		client:       &http.Client{Timeout: defaultStepClientTimeout},
		inventoryURL: inventoryURL,
		paymentURL:   paymentURL,
		shippingURL:  shippingURL,
	}
}

// Reserve reserves one unit of the product
func (c *HTTPStepClients) Reserve(ctx context.Context, productID string) error {
	return c.post(ctx, c.inventoryURL+"/reserve", map[string]string{"productId": productID}, domain.ErrOutOfStock)
}

// Release returns a previously reserved unit to stock
func (c *HTTPStepClients) Release(ctx context.Context, productID string) error {
	return c.post(ctx, c.inventoryURL+"/release", map[string]string{"productId": productID}, nil)
}

// Charge debits the user's account
func (c *HTTPStepClients) Charge(ctx context.Context, userID string) error {
	return c.post(ctx, c.paymentURL+"/charge", map[string]string{"userId": userID}, domain.ErrInsufficientFunds)
}

// Refund credits a previous charge back to the user's account
func (c *HTTPStepClients) Refund(ctx context.Context, userID string) error {
	return c.post(ctx, c.paymentURL+"/refund", map[string]string{"userId": userID}, nil)
}

// Ship schedules a shipment for the order
func (c *HTTPStepClients) Ship(ctx context.Context, userID, productID string) error {
	return c.post(ctx, c.shippingURL+"/ship", map[string]string{"userId": userID, "productId": productID}, nil)
}

// post sends the payload and normalizes the response. A 400 maps to the
// endpoint's business rejection when one is defined; any other non-2xx status
// is an operational failure.
func (c *HTTPStepClients) post(ctx context.Context, url string, payload interface{}, rejection error) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "failed to encode request body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		req.Header.Set(middleware.RequestIDHeader, reqID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "request to %s failed", url)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	if resp.StatusCode == http.StatusBadRequest && rejection != nil {
		return rejection
	}

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return errors.Errorf("%s returned status %d: %s", url, resp.StatusCode, msg)
}
