package nlp

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
	"github.com/soundprediction/graphqa/pkg/config"
	"github.com/soundprediction/graphqa/pkg/types"
)

// CircuitBreakerClient wraps a Client with circuit breaking logic. It never retries;
// once open it rejects calls with gobreaker.ErrOpenState until the timeout elapses.
type CircuitBreakerClient struct {
	client Client
	cb     *gobreaker.CircuitBreaker
	name   string
}

// NewCircuitBreakerClient creates a new circuit breaker client
func NewCircuitBreakerClient(client Client, cfg config.CircuitBreakerConfig, logger *slog.Logger, name string) *CircuitBreakerClient {
	if logger == nil {
		logger = slog.Default()
	}

	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    time.Duration(cfg.Interval) * time.Second,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 3 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.ReadyToTripRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				logger.Error("Circuit breaker tripped", "name", name, "from", from.String(), "to", to.String())
				return
			}
			logger.Warn("Circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	}

	return &CircuitBreakerClient{
		client: client,
		cb:     gobreaker.NewCircuitBreaker(st),
		name:   name,
	}
}

// State returns the current breaker state.
func (c *CircuitBreakerClient) State() gobreaker.State {
	return c.cb.State()
}

// Chat implements Client
func (c *CircuitBreakerClient) Chat(ctx context.Context, messages []types.Message) (*types.Response, error) {
	resp, err := c.cb.Execute(func() (interface{}, error) {
		return c.client.Chat(ctx, messages)
	})
	if err != nil {
		return nil, err
	}
	return resp.(*types.Response), nil
}

// ChatWithStructuredOutput implements Client
func (c *CircuitBreakerClient) ChatWithStructuredOutput(ctx context.Context, messages []types.Message, schema any) (*types.Response, error) {
	resp, err := c.cb.Execute(func() (interface{}, error) {
		return c.client.ChatWithStructuredOutput(ctx, messages, schema)
	})
	if err != nil {
		return nil, err
	}
	return resp.(*types.Response), nil
}

// Close implements Client
func (c *CircuitBreakerClient) Close() error {
	return c.client.Close()
}
