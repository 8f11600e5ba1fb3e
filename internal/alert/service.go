package alert

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/callshield/backend/internal/models"
	"github.com/callshield/backend/internal/queue"
)

// EventFraudDetected is the delivery event name for FRAUD verdicts.
const EventFraudDetected = "call.fraud_detected"

// Service manages caregiver alert webhooks and hands fraud notifications to
// the background queue.
type Service struct {
	db    *pgxpool.Pool
	queue *queue.Client
}

func NewService(db *pgxpool.Pool, qc *queue.Client) *Service {
	return &Service{db: db, queue: qc}
}

type CreateRequest struct {
	URL string `json:"url"`
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.AlertWebhook, error) {
	secret, err := generateSecret()
	if err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}

	var wh models.AlertWebhook
	err = s.db.QueryRow(ctx,
		`INSERT INTO alert_webhooks (url, secret, is_active)
		 VALUES ($1, $2, true)
		 RETURNING id, url, is_active, created_at`,
		req.URL, secret,
	).Scan(&wh.ID, &wh.URL, &wh.IsActive, &wh.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert alert webhook: %w", err)
	}

	// Returned only on creation.
	wh.Secret = secret

	return &wh, nil
}

func (s *Service) List(ctx context.Context) ([]models.AlertWebhook, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, url, is_active, created_at
		 FROM alert_webhooks ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list alert webhooks: %w", err)
	}
	defer rows.Close()

	var webhooks []models.AlertWebhook
	for rows.Next() {
		var wh models.AlertWebhook
		if err := rows.Scan(&wh.ID, &wh.URL, &wh.IsActive, &wh.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan alert webhook: %w", err)
		}
		webhooks = append(webhooks, wh)
	}
	return webhooks, rows.Err()
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Exec(ctx, "DELETE FROM alert_webhooks WHERE id = $1", id)
	return err
}

// NotifyFraud enqueues a delivery task for the record. Failures are logged
// and swallowed; alerting must never affect the analyze request.
func (s *Service) NotifyFraud(ctx context.Context, rec models.CallRecord) {
	payload, err := json.Marshal(rec)
	if err != nil {
		slog.Error("failed to marshal fraud alert", "record_id", rec.ID, "error", err)
		return
	}

	if err := s.queue.EnqueueAlertDeliver(queue.AlertDeliverPayload{
		RecordID: rec.ID.String(),
		Event:    EventFraudDetected,
		Payload:  string(payload),
	}); err != nil {
		slog.Error("failed to enqueue fraud alert", "record_id", rec.ID, "error", err)
	}
}

func generateSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "whsec_" + hex.EncodeToString(b), nil
}
