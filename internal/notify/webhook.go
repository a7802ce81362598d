// Package notify delivers order lifecycle notifications to external systems.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/trendzone/storefront/pkg/httpclient"
)

// StatusChangePayload is the body POSTed to the fulfillment webhook when an
// order changes status.
type StatusChangePayload struct {
	OrderID    string    `json:"order_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	Note       string    `json:"note,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// FulfillmentNotifier POSTs order status changes to a configured webhook URL
// through a circuit-breaker HTTP client. A nil notifier (no URL configured)
// silently drops notifications.
type FulfillmentNotifier struct {
	client *httpclient.CircuitBreakerClient
	url    string
	logger *slog.Logger
}

// NewFulfillmentNotifier creates a notifier for the given webhook URL. Returns
// nil when url is empty, which callers treat as notifications disabled.
func NewFulfillmentNotifier(url string, logger *slog.Logger) *FulfillmentNotifier {
	if url == "" {
		return nil
	}

	client := httpclient.New(httpclient.DefaultConfig())
	cb := httpclient.NewCircuitBreakerClient(client, httpclient.DefaultCircuitBreakerConfig("fulfillment-webhook"), logger)

	return &FulfillmentNotifier{
		client: cb,
		url:    url,
		logger: logger,
	}
}

// NotifyStatusChange delivers a status-change notification. Delivery failures
// are returned to the caller for logging; the order transition has already
// committed by the time this runs.
func (n *FulfillmentNotifier) NotifyStatusChange(ctx context.Context, payload StatusChangePayload) error {
	if n == nil {
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	resp, err := n.client.Post(ctx, n.url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post fulfillment webhook: %w", err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("fulfillment webhook returned status %d", resp.StatusCode)
	}

	n.logger.DebugContext(ctx, "fulfillment webhook delivered",
		slog.String("order_id", payload.OrderID),
		slog.String("to_status", payload.ToStatus),
	)

	return nil
}
