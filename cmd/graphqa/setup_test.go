package graphqa

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/soundprediction/graphqa/pkg/config"
	"github.com/soundprediction/graphqa/pkg/loader"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Chdir(t.TempDir())
	cfg, err := config.LoadWith(viper.New())
	require.NoError(t, err)
	return cfg
}

func TestPipelineConfigDefaults(t *testing.T) {
	cfg := defaultConfig(t)

	pc, err := pipelineConfig(cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"Person", "Title", "Group"}, pc.Extraction.AllowedNodes)
	assert.Equal(t, []string{"TITLE", "COLLABORATES", "GROUP"}, pc.Extraction.AllowedRelationships)
	assert.True(t, pc.Extraction.StrictMode)
	assert.Equal(t, []string{"Genre"}, pc.Chain.ExcludeTypes)
	assert.True(t, pc.Chain.ValidateCypher)
	assert.True(t, pc.Chain.AllowDangerousRequests)
	assert.True(t, pc.Chain.ReturnIntermediateSteps)
	assert.Equal(t, 10, pc.Chain.TopK)
	assert.Equal(t, loader.DemoQuestions, pc.Questions)
	require.NotNil(t, pc.Chain.CypherPrompt)
	assert.Len(t, pc.Chain.CypherPrompt.Examples, 3)
}

func TestPipelineConfigQuestionsAndExamples(t *testing.T) {
	cfg := defaultConfig(t)
	path := filepath.Join(t.TempDir(), "examples.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
cypher:
  - question: Who leads Sales?
    query: >-
      MATCH (p:Person)-[:GROUP]->(g:Group {id: 'Sales'})
      RETURN p.id
`), 0o600))
	cfg.Chain.ExamplesFile = path
	cfg.Extraction.IncludeSource = true

	pc, err := pipelineConfig(cfg, []string{"Who is John?"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Who is John?"}, pc.Questions)
	assert.True(t, pc.Load.IncludeSource)
	require.Len(t, pc.Chain.CypherPrompt.Examples, 1)
	assert.Equal(t, "MATCH (p:Person)-[:GROUP]->(g:Group {id: 'Sales'}) RETURN p.id", pc.Chain.CypherPrompt.Examples[0]["query"])
	assert.Len(t, pc.Chain.QAPrompt.Examples, 3)
}

func TestPipelineConfigMissingExamplesFile(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Chain.ExamplesFile = filepath.Join(t.TempDir(), "missing.yaml")

	_, err := pipelineConfig(cfg, nil)
	assert.Error(t, err)
}

func TestCommandsRegistered(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, name := range []string{"run", "ask", "schema"} {
		assert.True(t, names[name], name)
	}
}
