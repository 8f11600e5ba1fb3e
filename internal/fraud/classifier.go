package fraud

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/callshield/backend/internal/llm"
	"github.com/callshield/backend/internal/models"
)

// FallbackReason is surfaced whenever automated analysis cannot complete.
// An undetermined call is flagged for human review, never marked SAFE.
const FallbackReason = "Could not analyze call. Please review manually."

const systemPrompt = `You are an expert fraud detection AI specialized in identifying phone scams targeting senior citizens in India.

IMPORTANT: The transcript may be in Hindi, English, or mixed (Hinglish). Analyze it regardless of language.

Common fraud patterns to detect in India:
- OTP/PIN requests (ओटीपी देने के लिए कहना)
- Bank account details requests (बैंक की जानकारी मांगना)
- Threats or urgency tactics (धमकी देना या जल्दबाजी करना)
- Impersonation (bank officials, government, police, relatives - बैंक, सरकार, पुलिस बनकर बोलना)
- Prize/lottery scams (इनाम/लॉटरी धोखाधड़ी)
- KYC update requests (केवाईसी अपडेट के बहाने)
- Fake customer support (नकली कस्टमर सपोर्ट)
- Investment scams (निवेश धोखाधड़ी)
- Digital arrest scams (डिजिटल अरेस्ट)
- Refund/cashback scams (रिफंड/कैशबैक धोखा)

Red flag words in Hindi/English:
- "OTP", "ओटीपी", "PIN", "पिन नंबर"
- "Account details", "खाता नंबर", "CVV", "सीवीवी"
- "Urgent", "तुरंत", "Immediately", "अभी"
- "Police", "पुलिस", "CBI", "सीबीआई", "Income Tax", "इनकम टैक्स"
- "KYC", "केवाईसी", "Update", "अपडेट"
- "Prize", "इनाम", "Lottery", "लॉटरी"
- "Screen share", "स्क्रीन शेयर", "AnyDesk", "TeamViewer"

Analyze the call transcript and return a JSON response with:
{
  "fraud_score": <0-100 integer>,
  "category": "<SAFE|SUSPICIOUS|FRAUD>",
  "reason": "<short explanation in ENGLISH suitable for senior citizens>"
}

Scoring guidelines:
- 0-30: SAFE (normal conversation)
- 31-70: SUSPICIOUS (some red flags, be cautious)
- 71-100: FRAUD (clear fraud indicators, do not comply)

The "reason" should always be in simple English, even if transcript is in Hindi.`

// Classifier turns a call transcript into a structured fraud verdict.
type Classifier struct {
	gateway llm.Gateway
	model   string
}

func NewClassifier(gw llm.Gateway, model string) *Classifier {
	if model == "" {
		model = "gpt-4o"
	}
	return &Classifier{gateway: gw, model: model}
}

// Classify scores the transcript against known scam patterns. It never
// returns an error: any gateway failure or malformed model output collapses
// into the fallback verdict so the analysis pipeline can keep going.
func (c *Classifier) Classify(ctx context.Context, transcript, phoneNumber string) models.FraudVerdict {
	userPrompt := fmt.Sprintf(`Analyze this phone call transcript:

Phone Number: %s
Transcript: %s

Return fraud analysis in JSON format.`, phoneNumber, transcript)

	resp, err := c.gateway.Chat(ctx, llm.ChatRequest{
		Model: c.model,
		Messages: []llm.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.3,
		JSONMode:    true,
	})
	if err != nil {
		slog.Error("fraud classification failed", "phone_number", phoneNumber, "error", err)
		return fallbackVerdict()
	}

	verdict, err := parseVerdict(resp.Content)
	if err != nil {
		slog.Error("fraud classification returned invalid payload", "phone_number", phoneNumber, "error", err)
		return fallbackVerdict()
	}
	return verdict
}

func fallbackVerdict() models.FraudVerdict {
	return models.FraudVerdict{
		FraudScore: 50,
		Category:   models.RiskSuspicious,
		Reason:     FallbackReason,
	}
}

// parseVerdict treats the model output as untrusted input: all three fields
// must be present with correct types and the score in range, otherwise the
// caller falls back. The category is re-derived from the score so the band
// invariant holds even when the model disagrees with itself.
func parseVerdict(raw string) (models.FraudVerdict, error) {
	content := strings.TrimSpace(raw)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var payload struct {
		FraudScore *int    `json:"fraud_score"`
		Category   *string `json:"category"`
		Reason     *string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return models.FraudVerdict{}, fmt.Errorf("parse verdict JSON: %w", err)
	}

	if payload.FraudScore == nil || payload.Category == nil || payload.Reason == nil {
		return models.FraudVerdict{}, fmt.Errorf("verdict missing required fields")
	}

	score := *payload.FraudScore
	if score < 0 || score > 100 {
		return models.FraudVerdict{}, fmt.Errorf("fraud_score %d out of range", score)
	}

	switch *payload.Category {
	case models.RiskSafe, models.RiskSuspicious, models.RiskFraud:
	default:
		return models.FraudVerdict{}, fmt.Errorf("unknown category %q", *payload.Category)
	}

	if strings.TrimSpace(*payload.Reason) == "" {
		return models.FraudVerdict{}, fmt.Errorf("verdict reason is empty")
	}

	return models.FraudVerdict{
		FraudScore: score,
		Category:   models.RiskCategoryFor(score),
		Reason:     *payload.Reason,
	}, nil
}
