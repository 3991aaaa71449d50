package graphqa

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/chzyer/readline"
	qa "github.com/soundprediction/graphqa"
	"github.com/soundprediction/graphqa/pkg/chain"
	"github.com/soundprediction/graphqa/pkg/config"
	"github.com/soundprediction/graphqa/pkg/driver"
	"github.com/soundprediction/graphqa/pkg/extraction"
	"github.com/soundprediction/graphqa/pkg/logger"
	"github.com/soundprediction/graphqa/pkg/nlp"
	"github.com/soundprediction/graphqa/pkg/prompts"
)

// loadConfig reads and validates the configuration and builds the logger.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	log := logger.NewLogger(os.Stderr, logger.Options{
		Level:  level,
		Format: cfg.Log.Format,
		Color:  cfg.Log.Color,
	})
	slog.SetDefault(log)
	return cfg, log, nil
}

// promptAPIKey asks for the API key without echo.
func promptAPIKey() (string, error) {
	rl, err := readline.New("")
	if err != nil {
		return "", fmt.Errorf("failed to open terminal: %w", err)
	}
	defer rl.Close()

	key, err := rl.ReadPassword("OpenAI API key: ")
	if err != nil {
		return "", fmt.Errorf("failed to read api key: %w", err)
	}
	apiKey := strings.TrimSpace(string(key))
	if apiKey == "" {
		return "", errors.New("an api key is required")
	}
	return apiKey, nil
}

// graphOpener connects to the configured Neo4j database.
func graphOpener(cfg *config.Config, log *slog.Logger) qa.GraphOpener {
	return func(ctx context.Context) (driver.GraphStore, error) {
		return openGraph(ctx, cfg, log)
	}
}

func openGraph(ctx context.Context, cfg *config.Config, log *slog.Logger) (*driver.Neo4jDriver, error) {
	return driver.NewNeo4jDriver(ctx,
		cfg.Database.URI,
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Database,
		driver.WithSanitize(true),
		driver.WithLogger(log),
	)
}

// llmFactory creates the OpenAI client, prompting for the key when neither
// a key nor a compatible base URL is configured. The client is wrapped in a circuit breaker when enabled and
// always in a usage tracker.
func llmFactory(cfg *config.Config, log *slog.Logger, tracker **nlp.UsageTracker) qa.LLMFactory {
	return func() (nlp.Client, error) {
		apiKey := cfg.LLM.APIKey
		if apiKey == "" && cfg.LLM.BaseURL == "" {
			var err error
			if apiKey, err = promptAPIKey(); err != nil {
				return nil, err
			}
		}

		llmConfig := nlp.NewLLMConfig().
			WithAPIKey(apiKey).
			WithModel(cfg.LLM.Model).
			WithTemperature(cfg.LLM.Temperature).
			WithMaxTokens(cfg.LLM.MaxTokens)
		if cfg.LLM.BaseURL != "" {
			llmConfig = llmConfig.WithBaseURL(cfg.LLM.BaseURL)
		}

		openaiClient, err := nlp.NewOpenAIClient(llmConfig)
		if err != nil {
			return nil, err
		}
		var client nlp.Client = openaiClient
		if cfg.CircuitBreaker.Enabled {
			client = nlp.NewCircuitBreakerClient(client, cfg.CircuitBreaker, log, "openai")
		}
		*tracker = nlp.NewUsageTracker(client)
		return *tracker, nil
	}
}

// pipelineConfig maps the application configuration onto the pipeline.
func pipelineConfig(cfg *config.Config, questions []string) (*qa.Config, error) {
	examples := prompts.DefaultExampleSet()
	if cfg.Chain.ExamplesFile != "" {
		var err error
		if examples, err = prompts.LoadExamples(cfg.Chain.ExamplesFile); err != nil {
			return nil, err
		}
	}

	pc := qa.DefaultConfig()
	pc.Extraction = extraction.Options{
		AllowedNodes:         cfg.Extraction.AllowedNodes,
		AllowedRelationships: cfg.Extraction.AllowedRelationships,
		StrictMode:           cfg.Extraction.StrictMode,
	}
	pc.Load = driver.AddOptions{
		IncludeSource:   cfg.Extraction.IncludeSource,
		BaseEntityLabel: cfg.Extraction.BaseEntityLabel,
	}
	pc.Chain = chain.Options{
		CypherPrompt:            prompts.NewCypherPrompt(examples.Cypher),
		QAPrompt:                prompts.NewQAPrompt(examples.QA),
		TopK:                    cfg.Chain.TopK,
		ValidateCypher:          cfg.Chain.ValidateCypher,
		AllowDangerousRequests:  cfg.Chain.AllowDangerousRequests,
		ReturnDirect:            cfg.Chain.ReturnDirect,
		ReturnIntermediateSteps: true,
		Verbose:                 cfg.Chain.Verbose,
		IncludeTypes:            cfg.Chain.IncludeTypes,
		ExcludeTypes:            cfg.Chain.ExcludeTypes,
	}
	if len(questions) > 0 {
		pc.Questions = questions
	}
	return pc, nil
}

// openPipeline connects to the database and then creates the model client.
func openPipeline(ctx context.Context, cfg *config.Config, log *slog.Logger, questions []string) (*qa.Pipeline, *nlp.UsageTracker, error) {
	pc, err := pipelineConfig(cfg, questions)
	if err != nil {
		return nil, nil, err
	}

	var tracker *nlp.UsageTracker
	p, err := qa.Open(ctx, graphOpener(cfg, log), llmFactory(cfg, log, &tracker), pc, log)
	if err != nil {
		return nil, nil, err
	}
	return p, tracker, nil
}

func logUsage(log *slog.Logger, tracker *nlp.UsageTracker) {
	if tracker == nil {
		return
	}
	usage := tracker.Usage()
	log.Info("Token usage",
		"calls", tracker.Calls(),
		"prompt_tokens", usage.PromptTokens,
		"completion_tokens", usage.CompletionTokens,
		"total_tokens", usage.TotalTokens)
}
