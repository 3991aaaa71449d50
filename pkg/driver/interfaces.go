package driver

import (
	"context"

	"github.com/soundprediction/graphqa/pkg/types"
)

// GraphWriter persists extracted graph documents.
type GraphWriter interface {
	AddGraphDocuments(ctx context.Context, docs []types.GraphDocument, opts *AddOptions) error
}

// SchemaProvider exposes the schema of the live database.
type SchemaProvider interface {
	// RefreshSchema recomputes the schema from the database.
	RefreshSchema(ctx context.Context) error
	// Schema returns the text rendering of the last refreshed schema.
	Schema() string
	// StructuredSchema returns the last refreshed schema. Never nil.
	StructuredSchema() *StructuredSchema
}

// Querier executes Cypher statements.
type Querier interface {
	Query(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error)
}

// GraphStore is the full database session used by the pipeline.
type GraphStore interface {
	GraphWriter
	SchemaProvider
	Querier
	Close(ctx context.Context) error
}

// AddOptions controls how graph documents are merged.
type AddOptions struct {
	// IncludeSource merges a Document node per source document and links it
	// to every extracted node with a MENTIONS relationship.
	IncludeSource bool
	// BaseEntityLabel adds the __Entity__ label to every extracted node.
	BaseEntityLabel bool
}

var _ GraphStore = (*Neo4jDriver)(nil)
