package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OPENAI_API_KEY", "OPENAI_BASE_URL", "OPENAI_MODEL",
		"NEO4J_URI", "NEO4J_USERNAME", "NEO4J_PASSWORD", "NEO4J_DATABASE", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := LoadWith(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "neo4j://localhost", cfg.Database.URI)
	assert.Equal(t, "neo4j", cfg.Database.Username)
	assert.Equal(t, "password4j", cfg.Database.Password)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, float32(0), cfg.LLM.Temperature)
	assert.Equal(t, []string{"Person", "Title", "Group"}, cfg.Extraction.AllowedNodes)
	assert.Equal(t, []string{"TITLE", "COLLABORATES", "GROUP"}, cfg.Extraction.AllowedRelationships)
	assert.True(t, cfg.Extraction.StrictMode)
	assert.Equal(t, []string{"Genre"}, cfg.Chain.ExcludeTypes)
	assert.Equal(t, 10, cfg.Chain.TopK)
	assert.True(t, cfg.Chain.ValidateCypher)
	assert.True(t, cfg.Chain.AllowDangerousRequests)
	assert.False(t, cfg.CircuitBreaker.Enabled)
	assert.Empty(t, cfg.LLM.APIKey)
	assert.NoError(t, cfg.Validate())
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("NEO4J_URI", "bolt://db:7687")
	t.Setenv("NEO4J_PASSWORD", "secret")

	cfg, err := LoadWith(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "bolt://db:7687", cfg.Database.URI)
	assert.Equal(t, "secret", cfg.Database.Password)
}

func TestFlagsOverrideEnv(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("NEO4J_URI", "bolt://env:7687")

	cmd := &cobra.Command{}
	cmd.Flags().String("neo4j-uri", "", "")
	v := viper.New()
	require.NoError(t, v.BindPFlag("database.uri", cmd.Flags().Lookup("neo4j-uri")))

	cfg, err := LoadWith(v)
	require.NoError(t, err)
	assert.Equal(t, "bolt://env:7687", cfg.Database.URI)

	require.NoError(t, cmd.Flags().Set("neo4j-uri", "neo4j://flag"))
	cfg, err = LoadWith(v)
	require.NoError(t, err)
	assert.Equal(t, "neo4j://flag", cfg.Database.URI)
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("NEO4J_USERNAME=reader\n"), 0o600))

	cfg, err := LoadWith(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "reader", cfg.Database.Username)
}

func TestLoadDotEnvLeavesEnvironmentUntouched(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("OPENAI_API_KEY=sk-from-dotenv\n"), 0o600))
	require.NoError(t, os.Unsetenv("OPENAI_API_KEY"))

	cfg, err := LoadWith(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "sk-from-dotenv", cfg.LLM.APIKey)
	_, present := os.LookupEnv("OPENAI_API_KEY")
	assert.False(t, present)
}

func TestDotEnvPrecedence(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("NEO4J_URI=bolt://dotenv:7687\nNEO4J_USERNAME=dotenv-user\n"), 0o600))
	path := filepath.Join(dir, "graphqa.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  uri: neo4j://file
  username: file-user
  password: file-secret
`), 0o600))
	t.Setenv("NEO4J_URI", "bolt://env:7687")

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := LoadWith(v)
	require.NoError(t, err)

	// env > .env > config file > default
	assert.Equal(t, "bolt://env:7687", cfg.Database.URI)
	assert.Equal(t, "dotenv-user", cfg.Database.Username)
	assert.Equal(t, "file-secret", cfg.Database.Password)
	assert.Equal(t, "neo4j", cfg.Database.Database)
}

func TestLoadMalformedDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".env"), 0o700))

	_, err := LoadWith(viper.New())
	assert.Error(t, err)
}

func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "graphqa.yaml")
	content := `
database:
  uri: neo4j://graph.internal
llm:
  model: gpt-4o-mini
chain:
  top_k: 3
  exclude_types: []
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := LoadWith(v)
	require.NoError(t, err)
	assert.Equal(t, "neo4j://graph.internal", cfg.Database.URI)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 3, cfg.Chain.TopK)
	assert.Empty(t, cfg.Chain.ExcludeTypes)
	// untouched sections keep their defaults
	assert.Equal(t, "neo4j", cfg.Database.Username)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing uri", func(c *Config) { c.Database.URI = "" }, "database.uri"},
		{"bad temperature", func(c *Config) { c.LLM.Temperature = 3 }, "llm.temperature"},
		{"no allowed nodes", func(c *Config) { c.Extraction.AllowedNodes = nil }, "allowed_nodes"},
		{"non-positive top_k", func(c *Config) { c.Chain.TopK = 0 }, "top_k"},
		{"bad breaker ratio", func(c *Config) {
			c.CircuitBreaker.Enabled = true
			c.CircuitBreaker.ReadyToTripRatio = 0
		}, "ready_to_trip_ratio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Chdir(t.TempDir())
			cfg, err := LoadWith(viper.New())
			require.NoError(t, err)

			tt.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
