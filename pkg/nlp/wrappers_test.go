package nlp

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/soundprediction/graphqa/pkg/config"
	"github.com/soundprediction/graphqa/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockClient is a mock LLM client for testing
type mockClient struct {
	callCount     int
	failUntilCall int
	errorToReturn error
	usage         *types.TokenUsage
}

func (m *mockClient) Chat(ctx context.Context, messages []types.Message) (*types.Response, error) {
	m.callCount++
	if m.callCount <= m.failUntilCall {
		return nil, m.errorToReturn
	}
	return &types.Response{Content: "success", TokensUsed: m.usage}, nil
}

func (m *mockClient) ChatWithStructuredOutput(ctx context.Context, messages []types.Message, schema any) (*types.Response, error) {
	m.callCount++
	if m.callCount <= m.failUntilCall {
		return nil, m.errorToReturn
	}
	return &types.Response{Content: `{"status": "success"}`, TokensUsed: m.usage}, nil
}

func (m *mockClient) Close() error {
	return nil
}

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	mock := &mockClient{failUntilCall: 100, errorToReturn: errors.New("503 service unavailable")}
	cb := NewCircuitBreakerClient(mock, config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         60,
		Timeout:          60,
		ReadyToTripRatio: 0.5,
	}, nil, "test")

	msgs := []types.Message{NewUserMessage("hi")}
	for i := 0; i < 3; i++ {
		_, err := cb.Chat(context.Background(), msgs)
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, cb.State())

	// Once open, calls are rejected without reaching the wrapped client
	_, err := cb.Chat(context.Background(), msgs)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, 3, mock.callCount)
}

func TestCircuitBreakerDoesNotRetry(t *testing.T) {
	mock := &mockClient{failUntilCall: 1, errorToReturn: errors.New("boom")}
	cb := NewCircuitBreakerClient(mock, config.CircuitBreakerConfig{ReadyToTripRatio: 1}, nil, "test")

	_, err := cb.ChatWithStructuredOutput(context.Background(), []types.Message{NewUserMessage("hi")}, nil)
	require.Error(t, err)
	assert.Equal(t, 1, mock.callCount)

	resp, err := cb.ChatWithStructuredOutput(context.Background(), []types.Message{NewUserMessage("hi")}, nil)
	require.NoError(t, err)
	assert.Equal(t, `{"status": "success"}`, resp.Content)
}

func TestUsageTracker(t *testing.T) {
	mock := &mockClient{usage: &types.TokenUsage{PromptTokens: 3, CompletionTokens: 2, TotalTokens: 5}}
	tracker := NewUsageTracker(mock)

	_, err := tracker.Chat(context.Background(), []types.Message{NewUserMessage("a")})
	require.NoError(t, err)
	_, err = tracker.ChatWithStructuredOutput(context.Background(), []types.Message{NewUserMessage("b")}, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, tracker.Calls())
	assert.Equal(t, types.TokenUsage{PromptTokens: 6, CompletionTokens: 4, TotalTokens: 10}, tracker.Usage())
	assert.NoError(t, tracker.Close())
}

func TestUsageTrackerIgnoresFailures(t *testing.T) {
	mock := &mockClient{failUntilCall: 1, errorToReturn: errors.New("boom")}
	tracker := NewUsageTracker(mock)

	_, err := tracker.Chat(context.Background(), []types.Message{NewUserMessage("a")})
	require.Error(t, err)
	assert.Equal(t, 0, tracker.Calls())
}
