package fraud

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/callshield/backend/internal/llm"
	"github.com/callshield/backend/internal/models"
)

type stubGateway struct {
	content string
	err     error
	lastReq llm.ChatRequest
}

func (s *stubGateway) Chat(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &llm.ChatResponse{Content: s.content}, nil
}

func (s *stubGateway) Provider(name string) (llm.Provider, error) {
	return nil, fmt.Errorf("provider %q not configured", name)
}

func TestClassifyParsesValidVerdict(t *testing.T) {
	gw := &stubGateway{content: `{"fraud_score": 95, "category": "FRAUD", "reason": "OTP request is a scam indicator"}`}
	c := NewClassifier(gw, "")

	verdict := c.Classify(context.Background(), "Please share your OTP immediately", "+911234567890")

	assert.Equal(t, 95, verdict.FraudScore)
	assert.Equal(t, models.RiskFraud, verdict.Category)
	assert.Equal(t, "OTP request is a scam indicator", verdict.Reason)
}

func TestClassifyRequestShape(t *testing.T) {
	gw := &stubGateway{content: `{"fraud_score": 10, "category": "SAFE", "reason": "Normal conversation"}`}
	c := NewClassifier(gw, "gpt-4o")

	c.Classify(context.Background(), "hello grandma", "+911234567890")

	require.Len(t, gw.lastReq.Messages, 2)
	assert.Equal(t, "system", gw.lastReq.Messages[0].Role)
	assert.Contains(t, gw.lastReq.Messages[0].Content, "fraud_score")
	assert.Contains(t, gw.lastReq.Messages[1].Content, "+911234567890")
	assert.Contains(t, gw.lastReq.Messages[1].Content, "hello grandma")
	assert.True(t, gw.lastReq.JSONMode)
	assert.InDelta(t, 0.3, gw.lastReq.Temperature, 0.001)
}

func TestClassifyStripsCodeFences(t *testing.T) {
	gw := &stubGateway{content: "```json\n{\"fraud_score\": 20, \"category\": \"SAFE\", \"reason\": \"Friendly chat\"}\n```"}
	c := NewClassifier(gw, "")

	verdict := c.Classify(context.Background(), "kya haal hai", "unknown")

	assert.Equal(t, 20, verdict.FraudScore)
	assert.Equal(t, models.RiskSafe, verdict.Category)
}

func TestClassifyFallbackOnGatewayError(t *testing.T) {
	gw := &stubGateway{err: errors.New("deadline exceeded")}
	c := NewClassifier(gw, "")

	verdict := c.Classify(context.Background(), "anything", "+911234567890")

	assert.Equal(t, 50, verdict.FraudScore)
	assert.Equal(t, models.RiskSuspicious, verdict.Category)
	assert.Equal(t, FallbackReason, verdict.Reason)
}

func TestClassifyFallbackOnBadPayloads(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"not JSON", "the call looks fine to me"},
		{"missing score", `{"category": "SAFE", "reason": "ok"}`},
		{"missing category", `{"fraud_score": 10, "reason": "ok"}`},
		{"missing reason", `{"fraud_score": 10, "category": "SAFE"}`},
		{"mistyped score", `{"fraud_score": "high", "category": "FRAUD", "reason": "ok"}`},
		{"score out of range", `{"fraud_score": 140, "category": "FRAUD", "reason": "ok"}`},
		{"unknown category", `{"fraud_score": 10, "category": "FINE", "reason": "ok"}`},
		{"blank reason", `{"fraud_score": 10, "category": "SAFE", "reason": "  "}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gw := &stubGateway{content: tc.content}
			c := NewClassifier(gw, "")

			verdict := c.Classify(context.Background(), "transcript", "unknown")

			assert.Equal(t, 50, verdict.FraudScore)
			assert.Equal(t, models.RiskSuspicious, verdict.Category)
			assert.Equal(t, FallbackReason, verdict.Reason)
		})
	}
}

func TestClassifyRederivesCategoryFromScore(t *testing.T) {
	// The model self-reports SAFE with a fraudulent score; the band wins.
	gw := &stubGateway{content: `{"fraud_score": 85, "category": "SAFE", "reason": "Caller asked for CVV"}`}
	c := NewClassifier(gw, "")

	verdict := c.Classify(context.Background(), "CVV batao", "+911234567890")

	assert.Equal(t, 85, verdict.FraudScore)
	assert.Equal(t, models.RiskFraud, verdict.Category)
}

func TestBandPropertyAcrossAllScores(t *testing.T) {
	for s := 0; s <= 100; s++ {
		gw := &stubGateway{content: fmt.Sprintf(`{"fraud_score": %d, "category": "SUSPICIOUS", "reason": "check"}`, s)}
		verdict := NewClassifier(gw, "").Classify(context.Background(), "t", "p")

		expected := models.RiskCategoryFor(s)
		assert.Equal(t, expected, verdict.Category, "score %d", s)
	}
}
