package nlp

import (
	"context"

	"github.com/soundprediction/graphqa/pkg/types"
)

// UsageTracker wraps a Client and accumulates the token usage reported by each response.
// It is not safe for concurrent use.
type UsageTracker struct {
	client Client
	total  types.TokenUsage
	calls  int
}

// NewUsageTracker wraps client.
func NewUsageTracker(client Client) *UsageTracker {
	return &UsageTracker{client: client}
}

// Chat implements Client
func (u *UsageTracker) Chat(ctx context.Context, messages []types.Message) (*types.Response, error) {
	resp, err := u.client.Chat(ctx, messages)
	u.record(resp)
	return resp, err
}

// ChatWithStructuredOutput implements Client
func (u *UsageTracker) ChatWithStructuredOutput(ctx context.Context, messages []types.Message, schema any) (*types.Response, error) {
	resp, err := u.client.ChatWithStructuredOutput(ctx, messages, schema)
	u.record(resp)
	return resp, err
}

// Close implements Client
func (u *UsageTracker) Close() error {
	return u.client.Close()
}

// Usage returns the accumulated token usage.
func (u *UsageTracker) Usage() types.TokenUsage {
	return u.total
}

// Calls returns the number of completed requests.
func (u *UsageTracker) Calls() int {
	return u.calls
}

func (u *UsageTracker) record(resp *types.Response) {
	if resp == nil {
		return
	}
	u.calls++
	u.total.Add(resp.TokensUsed)
}
