package graphqa

import (
	"context"

	"github.com/soundprediction/graphqa/pkg/chain"
	"github.com/soundprediction/graphqa/pkg/types"
)

// Consumers should depend on the smallest interface that meets their needs.

// Ingester turns documents into graph data.
type Ingester interface {
	// Ingest extracts graph documents, merges them into the database and
	// refreshes the schema.
	Ingest(ctx context.Context, docs []types.Document) (*IngestResult, error)
}

// QuestionAnswerer answers questions over the loaded graph.
type QuestionAnswerer interface {
	Ask(ctx context.Context, question string) (*chain.Result, error)
}

// Runner executes the whole flow.
type Runner interface {
	Ingester
	QuestionAnswerer
	Run(ctx context.Context, docs []types.Document) (*Result, error)
	Close(ctx context.Context) error
}

var _ Runner = (*Pipeline)(nil)
