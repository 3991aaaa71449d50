// Package config loads graphqa configuration from defaults, an optional YAML file,
// a .env file and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Log configuration
	Log LogConfig `mapstructure:"log"`

	// Database configuration
	Database DatabaseConfig `mapstructure:"database"`

	// LLM configuration
	LLM LLMConfig `mapstructure:"llm"`

	// Extraction configuration
	Extraction ExtractionConfig `mapstructure:"extraction"`

	// Chain configuration
	Chain ChainConfig `mapstructure:"chain"`

	// CircuitBreaker configuration
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
	Color  bool   `mapstructure:"color"`
}

// DatabaseConfig holds graph database connection settings
type DatabaseConfig struct {
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

// LLMConfig holds language model settings
type LLMConfig struct {
	Model       string  `mapstructure:"model"`
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// ExtractionConfig holds knowledge graph extraction settings
type ExtractionConfig struct {
	AllowedNodes         []string `mapstructure:"allowed_nodes"`
	AllowedRelationships []string `mapstructure:"allowed_relationships"`
	StrictMode           bool     `mapstructure:"strict_mode"`
	IncludeSource        bool     `mapstructure:"include_source"`
	BaseEntityLabel      bool     `mapstructure:"base_entity_label"`
}

// ChainConfig holds Cypher QA chain settings
type ChainConfig struct {
	ExcludeTypes           []string `mapstructure:"exclude_types"`
	IncludeTypes           []string `mapstructure:"include_types"`
	TopK                   int      `mapstructure:"top_k"`
	ValidateCypher         bool     `mapstructure:"validate_cypher"`
	AllowDangerousRequests bool     `mapstructure:"allow_dangerous_requests"`
	ReturnDirect           bool     `mapstructure:"return_direct"`
	Verbose                bool     `mapstructure:"verbose"`
	// ExamplesFile optionally replaces the built-in few-shot examples (YAML).
	ExamplesFile string `mapstructure:"examples_file"`
}

// CircuitBreakerConfig holds configuration for circuit breaking
type CircuitBreakerConfig struct {
	Enabled          bool    `mapstructure:"enabled"`
	MaxRequests      uint32  `mapstructure:"max_requests"`
	Interval         int     `mapstructure:"interval"` // in seconds
	Timeout          int     `mapstructure:"timeout"`  // in seconds
	ReadyToTripRatio float64 `mapstructure:"ready_to_trip_ratio"`
}

// Load loads configuration from the global viper instance, a .env file in the
// working directory (if present) and environment variables.
func Load() (*Config, error) {
	return LoadWith(viper.GetViper())
}

// LoadWith loads configuration from v.
func LoadWith(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	if err := bindEnv(v); err != nil {
		return nil, err
	}
	if err := mergeDotEnv(v, ".env"); err != nil {
		return nil, err
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return config, nil
}

// SetDefaults sets default configuration values
func SetDefaults(v *viper.Viper) {
	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.color", true)

	// Database defaults
	v.SetDefault("database.uri", "neo4j://localhost")
	v.SetDefault("database.username", "neo4j")
	v.SetDefault("database.password", "password4j")
	v.SetDefault("database.database", "neo4j")

	// LLM defaults
	v.SetDefault("llm.model", "gpt-4o")
	v.SetDefault("llm.temperature", 0.0)
	v.SetDefault("llm.max_tokens", 2048)

	// Extraction defaults
	v.SetDefault("extraction.allowed_nodes", []string{"Person", "Title", "Group"})
	v.SetDefault("extraction.allowed_relationships", []string{"TITLE", "COLLABORATES", "GROUP"})
	v.SetDefault("extraction.strict_mode", true)
	v.SetDefault("extraction.include_source", false)
	v.SetDefault("extraction.base_entity_label", false)

	// Chain defaults
	v.SetDefault("chain.exclude_types", []string{"Genre"})
	v.SetDefault("chain.top_k", 10)
	v.SetDefault("chain.validate_cypher", true)
	v.SetDefault("chain.allow_dangerous_requests", true)
	v.SetDefault("chain.return_direct", false)
	v.SetDefault("chain.verbose", true)

	// Circuit breaker defaults (off: failures are fatal)
	v.SetDefault("circuit_breaker.enabled", false)
	v.SetDefault("circuit_breaker.max_requests", 1)
	v.SetDefault("circuit_breaker.interval", 60)
	v.SetDefault("circuit_breaker.timeout", 30)
	v.SetDefault("circuit_breaker.ready_to_trip_ratio", 0.6)
}

// envBindings maps config keys to the environment variables that set them.
// Bound variables sit between flags and the config file in viper's precedence.
var envBindings = map[string]string{
	"llm.api_key":       "OPENAI_API_KEY",
	"llm.base_url":      "OPENAI_BASE_URL",
	"llm.model":         "OPENAI_MODEL",
	"database.uri":      "NEO4J_URI",
	"database.username": "NEO4J_USERNAME",
	"database.password": "NEO4J_PASSWORD",
	"database.database": "NEO4J_DATABASE",
	"log.level":         "LOG_LEVEL",
}

func bindEnv(v *viper.Viper) error {
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}
	return nil
}

// mergeDotEnv layers the bound variables found in path over the config file.
// The file is read, never loaded: the process environment is not modified,
// and a variable already set in the environment keeps precedence.
func mergeDotEnv(v *viper.Viper, path string) error {
	values, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	layer := make(map[string]any)
	for key, env := range envBindings {
		value, ok := values[env]
		if !ok || os.Getenv(env) != "" {
			continue
		}
		setNested(layer, strings.Split(key, "."), value)
	}
	if len(layer) == 0 {
		return nil
	}
	return v.MergeConfigMap(layer)
}

func setNested(m map[string]any, path []string, value any) {
	for _, part := range path[:len(path)-1] {
		next, ok := m[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			m[part] = next
		}
		m = next
	}
	m[path[len(path)-1]] = value
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	var problems []string
	if c.Database.URI == "" {
		problems = append(problems, "database.uri is required")
	}
	if c.LLM.Model == "" {
		problems = append(problems, "llm.model is required")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		problems = append(problems, "llm.temperature must be between 0 and 2")
	}
	if len(c.Extraction.AllowedNodes) == 0 {
		problems = append(problems, "extraction.allowed_nodes must not be empty")
	}
	if c.Chain.TopK <= 0 {
		problems = append(problems, "chain.top_k must be positive")
	}
	if c.CircuitBreaker.Enabled && (c.CircuitBreaker.ReadyToTripRatio <= 0 || c.CircuitBreaker.ReadyToTripRatio > 1) {
		problems = append(problems, "circuit_breaker.ready_to_trip_ratio must be in (0, 1]")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
