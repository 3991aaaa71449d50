// Package nlp provides language model clients for graphqa.
//
// This package defines the Client interface and an implementation backed by
// github.com/sashabaranov/go-openai, usable with OpenAI and any OpenAI-compatible
// API (Ollama, vLLM, LM Studio) through a custom base URL.
//
// # Client Wrappers
//
//   - UsageTracker: Accumulates token usage across requests
//   - CircuitBreakerClient: Fails fast once the endpoint keeps failing
//
// Neither wrapper retries a failed request.
//
// # Usage
//
//	cfg := nlp.NewLLMConfig().WithAPIKey(apiKey).WithModel("gpt-4o").WithTemperature(0)
//	client, err := nlp.NewOpenAIClient(cfg)
//	if err != nil {
//		return err
//	}
//	resp, err := client.Chat(ctx, []types.Message{nlp.NewUserMessage("Hello")})
//
// # Error Handling
//
// The package defines specific error types for common failure modes:
//   - RateLimitError: API rate limit exceeded
//   - RefusalError: Model refused to generate content
//   - EmptyResponseError: Model returned empty response
//
// These errors support errors.Is() for type checking.
package nlp
