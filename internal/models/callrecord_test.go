package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRiskCategoryFor(t *testing.T) {
	cases := []struct {
		score    int
		expected string
	}{
		{0, RiskSafe},
		{15, RiskSafe},
		{30, RiskSafe},
		{31, RiskSuspicious},
		{50, RiskSuspicious},
		{70, RiskSuspicious},
		{71, RiskFraud},
		{95, RiskFraud},
		{100, RiskFraud},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.expected, RiskCategoryFor(tc.score), "score %d", tc.score)
	}
}

func TestNewCallRecord(t *testing.T) {
	verdict := FraudVerdict{FraudScore: 95, Category: RiskFraud, Reason: "OTP request is a scam indicator"}

	rec := NewCallRecord("+911234567890", verdict, "Please share your OTP immediately")

	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", rec.ID.String())
	assert.Equal(t, "+911234567890", rec.PhoneNumber)
	assert.Equal(t, RiskFraud, rec.RiskCategory)
	assert.Equal(t, 95, rec.FraudScore)
	require.NotNil(t, rec.Transcript)
	assert.Equal(t, "Please share your OTP immediately", *rec.Transcript)
	assert.Equal(t, time.UTC, rec.Timestamp.Location())
	assert.WithinDuration(t, time.Now().UTC(), rec.Timestamp, 5*time.Second)
}

func TestNewCallRecordOmitsEmptyTranscript(t *testing.T) {
	rec := NewCallRecord("unknown", FraudVerdict{FraudScore: 10, Category: RiskSafe, Reason: "Normal conversation"}, "")
	assert.Nil(t, rec.Transcript)

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "transcript")
}

func TestCallRecordJSONContract(t *testing.T) {
	rec := NewCallRecord("+911234567890", FraudVerdict{FraudScore: 42, Category: RiskSuspicious, Reason: "Some urgency language"}, "call me back now")

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	for _, key := range []string{"id", "phoneNumber", "timestamp", "riskCategory", "fraudScore", "reason", "transcript"} {
		assert.Contains(t, decoded, key)
	}

	// Timestamps must survive a JSON round trip.
	var back CallRecord
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, rec.Timestamp.Equal(back.Timestamp))
	assert.Equal(t, rec.ID, back.ID)
}
