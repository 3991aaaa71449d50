package nlp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/soundprediction/graphqa/pkg/types"
)

// OpenAIClient implements the Client interface for OpenAI and OpenAI-compatible services.
type OpenAIClient struct {
	client *openai.Client
	config LLMConfig
}

// NewOpenAIClient creates a new OpenAI client. The API key is taken from config only;
// the process environment is never consulted or modified.
func NewOpenAIClient(config *LLMConfig) (*OpenAIClient, error) {
	if config == nil {
		config = NewLLMConfig()
	}
	cfg := *config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid llm config: %w", err)
	}

	var client *openai.Client
	if cfg.BaseURL != "" {
		if err := validateBaseURL(cfg.BaseURL); err != nil {
			return nil, fmt.Errorf("invalid base URL: %w", err)
		}

		// Some compatible services don't require authentication
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = "dummy-key"
		}

		clientConfig := openai.DefaultConfig(apiKey)
		clientConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
		// Many services expect "/v1" to be appended to the base URL
		if !hasAPIPath(cfg.BaseURL) {
			clientConfig.BaseURL += "/v1"
		}
		client = openai.NewClientWithConfig(clientConfig)
	} else {
		if cfg.APIKey == "" {
			return nil, ErrMissingAPIKey
		}
		client = openai.NewClient(cfg.APIKey)
	}

	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	return &OpenAIClient{
		client: client,
		config: cfg,
	}, nil
}

// Model returns the configured model name.
func (c *OpenAIClient) Model() string {
	return c.config.Model
}

// Chat sends a chat completion request.
func (c *OpenAIClient) Chat(ctx context.Context, messages []types.Message) (*types.Response, error) {
	req, err := c.buildChatRequest(messages, false, nil)
	if err != nil {
		return nil, err
	}
	return c.complete(ctx, req)
}

// ChatWithStructuredOutput sends a chat completion request in JSON mode.
func (c *OpenAIClient) ChatWithStructuredOutput(ctx context.Context, messages []types.Message, schema any) (*types.Response, error) {
	req, err := c.buildChatRequest(messages, true, schema)
	if err != nil {
		return nil, err
	}
	return c.complete(ctx, req)
}

// Close cleans up resources (no-op for OpenAI client).
func (c *OpenAIClient) Close() error {
	return nil
}

func (c *OpenAIClient) complete(ctx context.Context, req openai.ChatCompletionRequest) (*types.Response, error) {
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openai chat completion failed: %w", classifyAPIError(err))
	}

	if len(resp.Choices) == 0 {
		return nil, NewEmptyResponseError("no choices returned from openai")
	}

	choice := resp.Choices[0]
	if choice.Message.Refusal != "" {
		return nil, NewRefusalError(choice.Message.Refusal)
	}
	if strings.TrimSpace(choice.Message.Content) == "" {
		return nil, NewEmptyResponseError(fmt.Sprintf("empty completion from model %s (finish reason %q)", resp.Model, choice.FinishReason))
	}

	response := &types.Response{
		Content:      choice.Message.Content,
		FinishReason: string(choice.FinishReason),
		Model:        resp.Model,
	}

	// Some OpenAI-compatible services don't report usage
	if resp.Usage.TotalTokens > 0 {
		response.TokensUsed = &types.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		}
	}

	return response, nil
}

func (c *OpenAIClient) buildChatRequest(messages []types.Message, structuredOutput bool, schema any) (openai.ChatCompletionRequest, error) {
	openaiMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		openaiMessages[i] = openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}

	req := openai.ChatCompletionRequest{
		Model:     c.config.Model,
		Messages:  openaiMessages,
		MaxTokens: c.config.MaxTokens,
		TopP:      c.config.TopP,
		Stop:      c.config.Stop,
	}

	// go-openai drops a zero temperature from the request body, which the API reads as 1.0
	req.Temperature = c.config.Temperature
	if req.Temperature == 0 {
		req.Temperature = math.SmallestNonzeroFloat32
	}

	if structuredOutput {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}

		// JSON mode requires the word "JSON" to appear in the conversation
		if len(req.Messages) > 0 {
			last := &req.Messages[len(req.Messages)-1]
			if schema != nil {
				encoded, err := json.Marshal(schema)
				if err != nil {
					return req, fmt.Errorf("failed to encode response schema: %w", err)
				}
				last.Content += "\n\nRespond with JSON matching this schema:\n" + string(encoded)
			} else if !strings.Contains(strings.ToLower(last.Content), "json") {
				last.Content += "\n\nPlease respond with valid JSON only."
			}
		}
	}

	return req, nil
}

// validateBaseURL validates the base URL format.
func validateBaseURL(baseURL string) error {
	if baseURL == "" {
		return fmt.Errorf("baseURL cannot be empty")
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid baseURL format: %w", err)
	}

	if parsedURL.Scheme == "" {
		return fmt.Errorf("baseURL must include scheme (http:// or https://)")
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("baseURL must use http:// or https:// scheme")
	}

	return nil
}

// hasAPIPath checks if the base URL already includes an API path component.
func hasAPIPath(baseURL string) bool {
	trimmed := strings.TrimSuffix(baseURL, "/")
	return strings.HasSuffix(trimmed, "/v1") || strings.HasSuffix(trimmed, "/api")
}
