package graphqa

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/soundprediction/graphqa/pkg/chain"
	"github.com/soundprediction/graphqa/pkg/driver"
	"github.com/soundprediction/graphqa/pkg/extraction"
	"github.com/soundprediction/graphqa/pkg/loader"
	"github.com/soundprediction/graphqa/pkg/nlp"
)

// ErrNoQuestions is returned by Run when the configuration has no questions.
var ErrNoQuestions = errors.New("no questions configured")

// Config holds the settings of a Pipeline.
type Config struct {
	Extraction extraction.Options
	Chain      chain.Options
	Load       driver.AddOptions
	// Questions are asked in order by Run.
	Questions []string
}

// DefaultConfig returns the demo configuration: the Person/Title/Group
// allow-lists in strict mode, the Genre label hidden from query generation
// and the four demo questions.
func DefaultConfig() *Config {
	return &Config{
		Extraction: extraction.Options{
			AllowedNodes:         []string{"Person", "Title", "Group"},
			AllowedRelationships: []string{"TITLE", "COLLABORATES", "GROUP"},
			StrictMode:           true,
		},
		Chain: chain.Options{
			TopK:                   chain.DefaultTopK,
			ValidateCypher:         true,
			AllowDangerousRequests: true,
			Verbose:                true,
			ExcludeTypes:           []string{"Genre"},
		},
		Questions: append([]string(nil), loader.DemoQuestions...),
	}
}

// Pipeline extracts a graph, loads it and answers questions about it.
type Pipeline struct {
	llm       nlp.Client
	graph     driver.GraphStore
	extractor extraction.Extractor
	chain     *chain.CypherQAChain
	config    *Config
	logger    *slog.Logger
}

// NewPipeline assembles a Pipeline from its collaborators. A nil cfg means
// DefaultConfig and a nil logger means slog.Default.
func NewPipeline(llm nlp.Client, graph driver.GraphStore, extractor extraction.Extractor, cfg *Config, logger *slog.Logger) (*Pipeline, error) {
	if llm == nil {
		return nil, fmt.Errorf("llm client is required")
	}
	if graph == nil {
		return nil, fmt.Errorf("graph store is required")
	}
	if extractor == nil {
		return nil, fmt.Errorf("extractor is required")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	chainOpts := cfg.Chain
	if chainOpts.Logger == nil {
		chainOpts.Logger = logger
	}
	qa, err := chain.NewCypherQAChain(llm, graph, chainOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create cypher qa chain: %w", err)
	}

	return &Pipeline{
		llm:       llm,
		graph:     graph,
		extractor: extractor,
		chain:     qa,
		config:    cfg,
		logger:    logger,
	}, nil
}

// GraphOpener connects to the graph database.
type GraphOpener func(ctx context.Context) (driver.GraphStore, error)

// LLMFactory creates the language model client.
type LLMFactory func() (nlp.Client, error)

// Open connects to the database, then creates the language model client
// and an extraction.Transformer over it. If the database cannot be reached
// no client is created.
func Open(ctx context.Context, open GraphOpener, newLLM LLMFactory, cfg *Config, logger *slog.Logger) (*Pipeline, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	graph, err := open(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open graph database: %w", err)
	}

	llm, err := newLLM()
	if err != nil {
		_ = graph.Close(ctx)
		return nil, fmt.Errorf("failed to create llm client: %w", err)
	}

	extractionOpts := cfg.Extraction
	if extractionOpts.Logger == nil {
		extractionOpts.Logger = logger
	}
	extractor, err := extraction.NewTransformer(llm, extractionOpts)
	if err != nil {
		_ = llm.Close()
		_ = graph.Close(ctx)
		return nil, fmt.Errorf("failed to create extractor: %w", err)
	}

	p, err := NewPipeline(llm, graph, extractor, cfg, logger)
	if err != nil {
		_ = llm.Close()
		_ = graph.Close(ctx)
		return nil, err
	}
	return p, nil
}

// Chain returns the question answering chain.
func (p *Pipeline) Chain() *chain.CypherQAChain {
	return p.chain
}

// Questions returns the configured questions in the order Run asks them.
func (p *Pipeline) Questions() []string {
	return p.config.Questions
}

// Graph returns the graph store.
func (p *Pipeline) Graph() driver.GraphStore {
	return p.graph
}

// Close releases the language model client and the database connection.
func (p *Pipeline) Close(ctx context.Context) error {
	return errors.Join(p.llm.Close(), p.graph.Close(ctx))
}
