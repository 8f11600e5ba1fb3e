package alert

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Dispatcher delivers fraud alerts to registered webhooks. It runs inside
// the worker process; the API only enqueues.
type Dispatcher struct {
	db         *pgxpool.Pool
	httpClient *http.Client
}

func NewDispatcher(db *pgxpool.Pool) *Dispatcher {
	return &Dispatcher{
		db: db,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// DeliverAll posts the payload to every active webhook and records each
// attempt. Per-endpoint failures are logged and do not stop the fan-out.
func (d *Dispatcher) DeliverAll(ctx context.Context, event string, payload []byte) error {
	rows, err := d.db.Query(ctx,
		"SELECT id, url, secret FROM alert_webhooks WHERE is_active = true")
	if err != nil {
		return fmt.Errorf("load alert webhooks: %w", err)
	}
	defer rows.Close()

	type endpoint struct {
		id          uuid.UUID
		url, secret string
	}
	var endpoints []endpoint
	for rows.Next() {
		var ep endpoint
		if err := rows.Scan(&ep.id, &ep.url, &ep.secret); err != nil {
			return fmt.Errorf("scan alert webhook: %w", err)
		}
		endpoints = append(endpoints, ep)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate alert webhooks: %w", err)
	}

	for _, ep := range endpoints {
		d.deliver(ctx, ep.id, ep.url, ep.secret, event, payload)
	}
	return nil
}

func (d *Dispatcher) deliver(ctx context.Context, webhookID uuid.UUID, url, secret, event string, payload []byte) {
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(payload))
	if err != nil {
		slog.Error("alert request creation failed", "webhook_id", webhookID, "error", err)
		d.recordDelivery(ctx, webhookID, event, payload, 0, err)
		return
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Alert-Event", event)
	req.Header.Set("X-Alert-Signature", sign(payload, secret))
	req.Header.Set("X-Alert-Webhook-ID", webhookID.String())

	resp, err := d.httpClient.Do(req)
	if err != nil {
		slog.Error("alert delivery failed", "webhook_id", webhookID, "error", err)
		d.recordDelivery(ctx, webhookID, event, payload, 0, err)
		return
	}
	defer resp.Body.Close()

	d.recordDelivery(ctx, webhookID, event, payload, resp.StatusCode, nil)

	if resp.StatusCode >= 400 {
		slog.Warn("alert endpoint returned non-success", "status", resp.StatusCode, "webhook_id", webhookID)
	}
}

func (d *Dispatcher) recordDelivery(ctx context.Context, webhookID uuid.UUID, event string, payload []byte, status int, deliveryErr error) {
	var deliveredAt *time.Time
	if deliveryErr == nil && status < 400 {
		now := time.Now().UTC()
		deliveredAt = &now
	}

	_, err := d.db.Exec(ctx,
		`INSERT INTO alert_deliveries (webhook_id, event, payload, response_status, attempts, delivered_at)
		 VALUES ($1, $2, $3, $4, 1, $5)`,
		webhookID, event, payload, status, deliveredAt,
	)
	if err != nil {
		slog.Error("failed to record alert delivery", "error", err)
	}
}

func sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return fmt.Sprintf("sha256=%s", hex.EncodeToString(mac.Sum(nil)))
}
