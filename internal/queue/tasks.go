package queue

const (
	TypeAlertDeliver = "alert:deliver"
)

// AlertDeliverPayload carries one fraud alert from the API to the worker.
// Payload is the call record JSON exactly as returned to the client.
type AlertDeliverPayload struct {
	RecordID string `json:"record_id"`
	Event    string `json:"event"`
	Payload  string `json:"payload"`
}
