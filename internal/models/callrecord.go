package models

import (
	"time"

	"github.com/google/uuid"
)

// Risk categories for an analyzed call, derived from the fraud score bands:
// 0-30 SAFE, 31-70 SUSPICIOUS, 71-100 FRAUD.
const (
	RiskSafe       = "SAFE"
	RiskSuspicious = "SUSPICIOUS"
	RiskFraud      = "FRAUD"
)

// RiskCategoryFor maps a fraud score onto its risk band.
func RiskCategoryFor(score int) string {
	switch {
	case score <= 30:
		return RiskSafe
	case score <= 70:
		return RiskSuspicious
	default:
		return RiskFraud
	}
}

// CallRecord is the persisted result of one call analysis. Records are
// insert-only: written once per analyzed call, read back via history.
// JSON field names match the mobile client contract.
type CallRecord struct {
	ID           uuid.UUID `json:"id" db:"id"`
	PhoneNumber  string    `json:"phoneNumber" db:"phone_number"`
	Timestamp    time.Time `json:"timestamp" db:"timestamp"`
	RiskCategory string    `json:"riskCategory" db:"risk_category"`
	FraudScore   int       `json:"fraudScore" db:"fraud_score"`
	Reason       string    `json:"reason" db:"reason"`
	Transcript   *string   `json:"transcript,omitempty" db:"transcript"`
}

// NewCallRecord builds a record with a fresh ID and UTC creation time.
func NewCallRecord(phoneNumber string, verdict FraudVerdict, transcript string) CallRecord {
	rec := CallRecord{
		ID:           uuid.New(),
		PhoneNumber:  phoneNumber,
		Timestamp:    time.Now().UTC(),
		RiskCategory: verdict.Category,
		FraudScore:   verdict.FraudScore,
		Reason:       verdict.Reason,
	}
	if transcript != "" {
		rec.Transcript = &transcript
	}
	return rec
}

// FraudVerdict is the transient classifier output consumed to build a
// CallRecord. Never persisted on its own.
type FraudVerdict struct {
	FraudScore int    `json:"fraud_score"`
	Category   string `json:"category"`
	Reason     string `json:"reason"`
}
