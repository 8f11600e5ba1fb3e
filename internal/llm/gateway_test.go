package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name     string
	failures int
	calls    int
	content  string
}

func (s *stubProvider) Name() string     { return s.name }
func (s *stubProvider) Models() []string { return []string{"stub-model"} }

func (s *stubProvider) ChatCompletion(_ context.Context, req ChatRequest) (*ChatResponse, error) {
	s.calls++
	if s.calls <= s.failures {
		return nil, errors.New("upstream unavailable")
	}
	return &ChatResponse{Provider: s.name, Model: req.Model, Content: s.content}, nil
}

func TestGatewayRoutesToDefaultProvider(t *testing.T) {
	primary := &stubProvider{name: "openai", content: "hello"}
	gw := NewGatewayWithProviders("openai", "", 0, primary)

	resp, err := gw.Chat(context.Background(), ChatRequest{Model: "gpt-4o"})
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Content)
	assert.Equal(t, 1, primary.calls)
}

func TestGatewayRetriesBeforeFailing(t *testing.T) {
	primary := &stubProvider{name: "openai", failures: 2, content: "recovered"}
	gw := NewGatewayWithProviders("openai", "", 3, primary)

	resp, err := gw.Chat(context.Background(), ChatRequest{Model: "gpt-4o"})
	require.NoError(t, err)
	assert.Equal(t, "recovered", resp.Content)
	assert.Equal(t, 3, primary.calls)
}

func TestGatewayFallsBackToSecondary(t *testing.T) {
	primary := &stubProvider{name: "openai", failures: 100}
	secondary := &stubProvider{name: "anthropic", content: "from fallback"}
	gw := NewGatewayWithProviders("openai", "anthropic", 0, primary, secondary)

	resp, err := gw.Chat(context.Background(), ChatRequest{Model: "claude-3-haiku-20240307"})
	require.NoError(t, err)
	assert.Equal(t, "anthropic", resp.Provider)
	assert.Equal(t, "from fallback", resp.Content)
}

func TestGatewayUnknownProvider(t *testing.T) {
	gw := NewGatewayWithProviders("openai", "", 0)

	_, err := gw.Chat(context.Background(), ChatRequest{Model: "gpt-4o"})
	assert.Error(t, err)
}

func TestGatewayExplicitProviderOverride(t *testing.T) {
	primary := &stubProvider{name: "openai", content: "primary"}
	other := &stubProvider{name: "ollama", content: "local"}
	gw := NewGatewayWithProviders("openai", "", 0, primary, other)

	resp, err := gw.Chat(context.Background(), ChatRequest{Provider: "ollama", Model: "llama3"})
	require.NoError(t, err)
	assert.Equal(t, "local", resp.Content)
	assert.Equal(t, 0, primary.calls)
}
