package nlp

import "fmt"

// Defaults used when a value is not configured. Extraction and query
// generation both want deterministic output, hence temperature zero.
const (
	DefaultModel       = "gpt-4o"
	DefaultMaxTokens   = 2048
	DefaultTemperature = 0.0
)

// LLMConfig holds the request settings shared by every call a client makes.
type LLMConfig struct {
	// APIKey is never serialized.
	APIKey string `json:"-"`

	Model   string `json:"model,omitempty"`
	BaseURL string `json:"base_url,omitempty"`

	// Temperature is in [0, 2].
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	TopP        float32 `json:"top_p,omitempty"`

	// Stop sequences end generation early.
	Stop []string `json:"stop,omitempty"`
}

// NewLLMConfig returns a config with the package defaults.
func NewLLMConfig() *LLMConfig {
	return &LLMConfig{
		Model:       DefaultModel,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	}
}

func (c *LLMConfig) WithAPIKey(apiKey string) *LLMConfig {
	c.APIKey = apiKey
	return c
}

func (c *LLMConfig) WithModel(model string) *LLMConfig {
	c.Model = model
	return c
}

// WithBaseURL points the client at an OpenAI-compatible server.
func (c *LLMConfig) WithBaseURL(baseURL string) *LLMConfig {
	c.BaseURL = baseURL
	return c
}

func (c *LLMConfig) WithTemperature(temperature float32) *LLMConfig {
	c.Temperature = temperature
	return c
}

func (c *LLMConfig) WithMaxTokens(maxTokens int) *LLMConfig {
	c.MaxTokens = maxTokens
	return c
}

func (c *LLMConfig) WithTopP(topP float32) *LLMConfig {
	c.TopP = topP
	return c
}

func (c *LLMConfig) WithStop(stop ...string) *LLMConfig {
	c.Stop = stop
	return c
}

// Validate reports settings the API would reject.
func (c *LLMConfig) Validate() error {
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature %.2f out of range [0, 2]", c.Temperature)
	}
	if c.TopP < 0 || c.TopP > 1 {
		return fmt.Errorf("top_p %.2f out of range [0, 1]", c.TopP)
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must not be negative")
	}
	return nil
}
