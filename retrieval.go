package graphqa

import (
	"context"
	"fmt"

	"github.com/soundprediction/graphqa/pkg/chain"
	"github.com/soundprediction/graphqa/pkg/types"
)

// Result is the outcome of Run.
type Result struct {
	GraphDocuments []types.GraphDocument `json:"graph_documents"`
	Schema         string                `json:"schema"`
	Answers        []*chain.Result       `json:"answers"`
}

// Ask answers one question over the graph as it is now.
func (p *Pipeline) Ask(ctx context.Context, question string) (*chain.Result, error) {
	result, err := p.chain.Invoke(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to answer %q: %w", question, err)
	}
	return result, nil
}

// Run ingests docs and then asks every configured question in order.
func (p *Pipeline) Run(ctx context.Context, docs []types.Document) (*Result, error) {
	if len(p.config.Questions) == 0 {
		return nil, ErrNoQuestions
	}

	ingested, err := p.Ingest(ctx, docs)
	if err != nil {
		return nil, err
	}

	result := &Result{
		GraphDocuments: ingested.GraphDocuments,
		Schema:         ingested.Schema,
		Answers:        make([]*chain.Result, 0, len(p.config.Questions)),
	}
	for _, question := range p.config.Questions {
		answer, err := p.Ask(ctx, question)
		if err != nil {
			return nil, err
		}
		p.logger.Info("Answer", "question", question, "answer", answer.Answer)
		result.Answers = append(result.Answers, answer)
	}
	return result, nil
}
