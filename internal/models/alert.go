package models

import (
	"time"

	"github.com/google/uuid"
)

// AlertWebhook is a caregiver endpoint notified when a call is classified
// FRAUD. The secret signs delivery payloads and is returned only on creation.
type AlertWebhook struct {
	ID        uuid.UUID `json:"id" db:"id"`
	URL       string    `json:"url" db:"url"`
	Secret    string    `json:"secret,omitempty" db:"secret"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type AlertDelivery struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	WebhookID      uuid.UUID  `json:"webhook_id" db:"webhook_id"`
	Event          string     `json:"event" db:"event"`
	Payload        []byte     `json:"payload" db:"payload"`
	ResponseStatus int        `json:"response_status" db:"response_status"`
	Attempts       int        `json:"attempts" db:"attempts"`
	DeliveredAt    *time.Time `json:"delivered_at,omitempty" db:"delivered_at"`
}
