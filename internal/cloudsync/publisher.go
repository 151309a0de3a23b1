// Package cloudsync mirrors the ledger to a remote service. Uploads are
// fire-and-forget: the caller never waits and failures are only reported
// through the status indicator, the event channel and the log.
package cloudsync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"kakeibo/internal/amqp"
	"kakeibo/internal/core"
)

// Payload is the wire format shared by every transport.
type Payload struct {
	Action   string         `json:"action"`
	Expenses []core.Expense `json:"expenses"`
}

func NewPayload(expenses []core.Expense) Payload {
	if expenses == nil {
		expenses = []core.Expense{}
	}
	return Payload{Action: amqp.ActionSyncExpenses, Expenses: expenses}
}

// Publisher uploads one payload.
type Publisher interface {
	Publish(ctx context.Context, p Payload) error
}

// HTTPPublisher POSTs the payload as JSON. Any HTTP response counts as
// delivered: the remote end does not report a usable status, so only
// transport errors are failures.
type HTTPPublisher struct {
	endpoint string
	client   *http.Client
}

func NewHTTPPublisher(endpoint string, timeout time.Duration) *HTTPPublisher {
	return &HTTPPublisher{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (p *HTTPPublisher) Publish(ctx context.Context, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("post sync payload: %w", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil
}

// ledgerPublisher is the subset of *amqp.Client used here.
type ledgerPublisher interface {
	PublishLedgerSync(ctx context.Context, msg *amqp.LedgerSyncMessage) error
}

// AMQPPublisher puts the snapshot on the ledger sync queue for the worker.
type AMQPPublisher struct {
	client ledgerPublisher
}

func NewAMQPPublisher(client ledgerPublisher) *AMQPPublisher {
	return &AMQPPublisher{client: client}
}

func (p *AMQPPublisher) Publish(ctx context.Context, payload Payload) error {
	return p.client.PublishLedgerSync(ctx, amqp.NewLedgerSyncMessage(payload.Expenses))
}
