package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/callshield/backend/internal/alert"
	"github.com/callshield/backend/internal/queue"
)

// AlertWorker fans one enqueued fraud alert out to all registered webhooks.
type AlertWorker struct {
	dispatcher *alert.Dispatcher
}

func NewAlertWorker(dispatcher *alert.Dispatcher) *AlertWorker {
	return &AlertWorker{dispatcher: dispatcher}
}

func (w *AlertWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.AlertDeliverPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	slog.Info("delivering fraud alert", "record_id", payload.RecordID, "event", payload.Event)

	if err := w.dispatcher.DeliverAll(ctx, payload.Event, []byte(payload.Payload)); err != nil {
		return fmt.Errorf("deliver alert for record %s: %w", payload.RecordID, err)
	}
	return nil
}
