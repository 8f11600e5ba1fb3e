package alert

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignProducesStableHMAC(t *testing.T) {
	payload := []byte(`{"riskCategory":"FRAUD","fraudScore":95}`)
	secret := "whsec_abc123"

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	assert.Equal(t, expected, sign(payload, secret))
	assert.Equal(t, sign(payload, secret), sign(payload, secret))
}

func TestSignVariesWithSecretAndPayload(t *testing.T) {
	payload := []byte(`{"a":1}`)

	assert.NotEqual(t, sign(payload, "whsec_one"), sign(payload, "whsec_two"))
	assert.NotEqual(t, sign([]byte(`{"a":1}`), "whsec_one"), sign([]byte(`{"a":2}`), "whsec_one"))
}
