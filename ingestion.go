package graphqa

import (
	"context"
	"fmt"

	"github.com/soundprediction/graphqa/pkg/types"
)

// IngestResult is what Ingest wrote and the schema read back afterwards.
type IngestResult struct {
	GraphDocuments []types.GraphDocument `json:"graph_documents"`
	Schema         string                `json:"schema"`
}

// Ingest extracts graph documents from docs, merges them into the database
// and refreshes the schema.
func (p *Pipeline) Ingest(ctx context.Context, docs []types.Document) (*IngestResult, error) {
	graphDocs, err := p.extractor.ConvertToGraphDocuments(ctx, docs)
	if err != nil {
		return nil, fmt.Errorf("failed to extract graph: %w", err)
	}
	for i := range graphDocs {
		p.logger.Info("Graph document",
			"index", i,
			"nodes", graphDocs[i].NodeCount(),
			"relationships", graphDocs[i].RelationshipCount())
	}

	load := p.config.Load
	if err := p.graph.AddGraphDocuments(ctx, graphDocs, &load); err != nil {
		return nil, fmt.Errorf("failed to load graph: %w", err)
	}

	if err := p.graph.RefreshSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to refresh schema: %w", err)
	}

	return &IngestResult{
		GraphDocuments: graphDocs,
		Schema:         p.graph.Schema(),
	}, nil
}
