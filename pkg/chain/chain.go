package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/soundprediction/graphqa/pkg/cypher"
	"github.com/soundprediction/graphqa/pkg/driver"
	"github.com/soundprediction/graphqa/pkg/nlp"
	"github.com/soundprediction/graphqa/pkg/prompts"
)

// DefaultTopK caps the number of rows passed to answer synthesis.
const DefaultTopK = 10

var (
	// ErrDangerousRequestsNotAllowed is returned when a chain is built
	// without acknowledging that generated queries run unreviewed.
	ErrDangerousRequestsNotAllowed = errors.New("generated queries are executed verbatim against the database; " +
		"set AllowDangerousRequests to acknowledge this")
	// ErrIncludeAndExcludeTypes is returned when both type filters are set.
	ErrIncludeAndExcludeTypes = errors.New("either include types or exclude types can be set, not both")
	// ErrPromptVariables is returned when a custom prompt lacks a variable
	// the chain fills in.
	ErrPromptVariables = errors.New("prompt is missing required input variables")
)

// Graph is the part of a graph store the chain needs.
type Graph interface {
	driver.SchemaProvider
	driver.Querier
}

// Options configures a CypherQAChain.
type Options struct {
	// CypherPrompt renders {schema} and {question}. Defaults to the built-in few-shot prompt.
	CypherPrompt *prompts.FewShotPromptTemplate
	// QAPrompt renders {question} and {context}. Defaults to the built-in few-shot prompt.
	QAPrompt *prompts.FewShotPromptTemplate
	// QALLM answers questions from rows. Defaults to the query generation client.
	QALLM nlp.Client

	TopK                    int
	ValidateCypher          bool
	AllowDangerousRequests  bool
	ReturnDirect            bool
	ReturnIntermediateSteps bool
	Verbose                 bool

	// IncludeTypes or ExcludeTypes restrict the schema shown to the model.
	IncludeTypes []string
	ExcludeTypes []string

	Logger *slog.Logger
}

// IntermediateStep records what the chain did for one question.
type IntermediateStep struct {
	Query   string           `json:"query,omitempty"`
	Context []map[string]any `json:"context,omitempty"`
}

// Result is the outcome of one question.
type Result struct {
	Question string `json:"question"`
	// Query is the executed query, empty when validation rejected it.
	Query string `json:"query"`
	// Context holds the rows passed to answer synthesis.
	Context []map[string]any `json:"context"`
	// Answer is the synthesized answer, empty when ReturnDirect is set.
	Answer            string             `json:"answer,omitempty"`
	IntermediateSteps []IntermediateStep `json:"intermediate_steps,omitempty"`
}

// CypherQAChain generates, runs and answers graph queries.
type CypherQAChain struct {
	llm    nlp.Client
	qaLLM  nlp.Client
	graph  Graph
	opts   Options
	logger *slog.Logger
}

// NewCypherQAChain creates a chain. It fails with
// ErrDangerousRequestsNotAllowed unless opts.AllowDangerousRequests is set.
func NewCypherQAChain(llm nlp.Client, graph Graph, opts Options) (*CypherQAChain, error) {
	if !opts.AllowDangerousRequests {
		return nil, ErrDangerousRequestsNotAllowed
	}
	if llm == nil {
		return nil, fmt.Errorf("llm client is required")
	}
	if graph == nil {
		return nil, fmt.Errorf("graph is required")
	}
	if len(opts.IncludeTypes) > 0 && len(opts.ExcludeTypes) > 0 {
		return nil, ErrIncludeAndExcludeTypes
	}

	if opts.CypherPrompt == nil {
		opts.CypherPrompt = prompts.NewCypherPrompt(prompts.DefaultCypherExamples())
	}
	if opts.QAPrompt == nil {
		opts.QAPrompt = prompts.NewQAPrompt(prompts.DefaultQAExamples())
	}
	if err := requireVariables("cypher", opts.CypherPrompt, "schema", "question"); err != nil {
		return nil, err
	}
	if err := requireVariables("qa", opts.QAPrompt, "question", "context"); err != nil {
		return nil, err
	}
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}

	qaLLM := opts.QALLM
	if qaLLM == nil {
		qaLLM = llm
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &CypherQAChain{
		llm:    llm,
		qaLLM:  qaLLM,
		graph:  graph,
		opts:   opts,
		logger: logger,
	}, nil
}

func requireVariables(name string, prompt *prompts.FewShotPromptTemplate, required ...string) error {
	have := make(map[string]bool)
	for _, v := range prompt.InputVariables() {
		have[v] = true
	}
	var missing []string
	for _, v := range required {
		if !have[v] {
			missing = append(missing, "{"+v+"}")
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s prompt lacks %s", ErrPromptVariables, name, strings.Join(missing, ", "))
	}
	return nil
}

// Schema returns the schema text shown to the model, after type filtering.
func (c *CypherQAChain) Schema() string {
	return driver.FormatSchema(driver.FilterSchema(c.graph.StructuredSchema(), c.opts.IncludeTypes, c.opts.ExcludeTypes))
}

// GenerateQuery asks the model for a query answering question. With
// ValidateCypher set, the result may be "" when the schema rules it out.
func (c *CypherQAChain) GenerateQuery(ctx context.Context, question string) (string, error) {
	prompt, err := c.opts.CypherPrompt.Format(map[string]string{
		"schema":   c.Schema(),
		"question": question,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render cypher prompt: %w", err)
	}
	prompts.LogPrompt(c.logger, "cypher", prompt)

	resp, err := c.llm.Chat(ctx, nlp.Prompt(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate cypher: %w", err)
	}

	query := cypher.ExtractQuery(resp.Content)
	if c.opts.ValidateCypher {
		query = c.corrector().Correct(query)
	}
	return query, nil
}

func (c *CypherQAChain) corrector() *cypher.QueryCorrector {
	var patterns []cypher.Pattern
	for _, p := range c.graph.StructuredSchema().Patterns() {
		patterns = append(patterns, cypher.Pattern{Start: p.Start, Type: p.Type, End: p.End})
	}
	return cypher.NewQueryCorrector(patterns)
}

// Invoke answers a single question.
func (c *CypherQAChain) Invoke(ctx context.Context, question string) (*Result, error) {
	query, err := c.GenerateQuery(ctx, question)
	if err != nil {
		return nil, err
	}
	if c.opts.Verbose {
		c.logger.Info("Generated Cypher", "question", question, "query", query)
	}

	rows := []map[string]any{}
	if query != "" {
		rows, err = c.graph.Query(ctx, query, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to run generated cypher: %w", err)
		}
		if len(rows) > c.opts.TopK {
			rows = rows[:c.opts.TopK]
		}
	} else if c.opts.ValidateCypher {
		c.logger.Warn("Generated Cypher does not fit the schema, skipping execution", "question", question)
	}

	result := &Result{
		Question: question,
		Query:    query,
		Context:  rows,
	}
	if c.opts.ReturnIntermediateSteps {
		result.IntermediateSteps = append(result.IntermediateSteps, IntermediateStep{Query: query})
	}

	if c.opts.ReturnDirect {
		return result, nil
	}

	contextText, err := prompts.ToPromptJSON(rows, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to render query results: %w", err)
	}
	if c.opts.Verbose {
		c.logger.Info("Full Context", "context", contextText)
	}
	if c.opts.ReturnIntermediateSteps {
		result.IntermediateSteps = append(result.IntermediateSteps, IntermediateStep{Context: rows})
	}

	answer, err := c.Answer(ctx, question, contextText)
	if err != nil {
		return nil, err
	}
	result.Answer = answer
	return result, nil
}

// Answer asks the model to phrase an answer to question from contextText.
func (c *CypherQAChain) Answer(ctx context.Context, question, contextText string) (string, error) {
	prompt, err := c.opts.QAPrompt.Format(map[string]string{
		"question": question,
		"context":  contextText,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render qa prompt: %w", err)
	}
	prompts.LogPrompt(c.logger, "qa", prompt)

	resp, err := c.qaLLM.Chat(ctx, nlp.Prompt(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}
	return resp.Content, nil
}
