package driver

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/soundprediction/graphqa/pkg/types"
)

// DefaultDatabase is used when no database name is configured.
const DefaultDatabase = "neo4j"

// Neo4jDriver implements the GraphStore interface for Neo4j databases.
type Neo4jDriver struct {
	client   neo4j.DriverWithContext
	database string
	sanitize bool
	logger   *slog.Logger

	mu         sync.RWMutex
	structured *StructuredSchema
	schema     string
}

// Option configures a Neo4jDriver.
type Option func(*Neo4jDriver)

// WithSanitize drops lists longer than 128 elements from query results.
func WithSanitize(sanitize bool) Option {
	return func(n *Neo4jDriver) {
		n.sanitize = sanitize
	}
}

// WithLogger sets the logger used for import statistics.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Neo4jDriver) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// NewNeo4jDriver creates a new Neo4j driver instance and verifies that the
// database is reachable with the given credentials.
func NewNeo4jDriver(ctx context.Context, uri, username, password, database string, opts ...Option) (*Neo4jDriver, error) {
	client, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}

	if err := client.VerifyConnectivity(ctx); err != nil {
		_ = client.Close(ctx)
		return nil, fmt.Errorf("failed to connect to neo4j at %s: %w", uri, err)
	}

	if database == "" {
		database = DefaultDatabase
	}

	n := &Neo4jDriver{
		client:     client,
		database:   database,
		logger:     slog.Default(),
		structured: NewStructuredSchema(),
	}
	for _, opt := range opts {
		opt(n)
	}
	n.schema = FormatSchema(n.structured)
	return n, nil
}

// AddGraphDocuments merges every document in a single write transaction.
// Nodes are merged by (label, id) and relationships by (source, type, target),
// so loading the same documents twice leaves the graph unchanged.
func (n *Neo4jDriver) AddGraphDocuments(ctx context.Context, docs []types.GraphDocument, opts *AddOptions) error {
	if opts == nil {
		opts = &AddOptions{}
	}

	var statements []statement
	for i, doc := range docs {
		for _, node := range doc.Nodes {
			if err := node.Validate(); err != nil {
				return fmt.Errorf("invalid node in graph document %d: %w", i, err)
			}
		}
		for _, rel := range doc.Relationships {
			if err := rel.Validate(); err != nil {
				return fmt.Errorf("invalid relationship in graph document %d: %w", i, err)
			}
		}
		statements = append(statements, importStatements(doc, opts)...)
	}
	if len(statements) == 0 {
		return nil
	}

	session := n.client.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: n.database,
		AccessMode:   neo4j.AccessModeWrite,
	})
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		var stats importStats
		for _, st := range statements {
			res, err := tx.Run(ctx, st.query, st.params)
			if err != nil {
				return nil, err
			}
			summary, err := res.Consume(ctx)
			if err != nil {
				return nil, err
			}
			counters := summary.Counters()
			stats.nodesCreated += counters.NodesCreated()
			stats.relationshipsCreated += counters.RelationshipsCreated()
			stats.propertiesSet += counters.PropertiesSet()
		}
		return stats, nil
	})
	if err != nil {
		return fmt.Errorf("failed to add graph documents: %w", err)
	}

	stats := result.(importStats)
	n.logger.Info("Graph documents merged",
		"documents", len(docs),
		"nodes_created", stats.nodesCreated,
		"relationships_created", stats.relationshipsCreated,
		"properties_set", stats.propertiesSet)
	return nil
}

type importStats struct {
	nodesCreated         int
	relationshipsCreated int
	propertiesSet        int
}

// RefreshSchema recomputes the structured schema and its text rendering.
func (n *Neo4jDriver) RefreshSchema(ctx context.Context) error {
	nodeRecords, err := n.collect(ctx, nodePropertiesQuery, nil)
	if err != nil {
		return fmt.Errorf("failed to read node properties: %w", err)
	}
	relRecords, err := n.collect(ctx, relPropertiesQuery, nil)
	if err != nil {
		return fmt.Errorf("failed to read relationship properties: %w", err)
	}
	patternRecords, err := n.collect(ctx, relPatternsQuery, nil)
	if err != nil {
		return fmt.Errorf("failed to read relationship patterns: %w", err)
	}

	structured := NewStructuredSchema()
	if structured.NodeProps, err = parseNodeProperties(nodeRecords); err != nil {
		return fmt.Errorf("failed to parse node properties: %w", err)
	}
	if structured.RelProps, err = parseRelProperties(relRecords); err != nil {
		return fmt.Errorf("failed to parse relationship properties: %w", err)
	}
	if structured.Relationships, err = parseRelationshipPatterns(patternRecords); err != nil {
		return fmt.Errorf("failed to parse relationship patterns: %w", err)
	}

	n.mu.Lock()
	n.structured = structured
	n.schema = FormatSchema(structured)
	n.mu.Unlock()

	n.logger.Debug("Schema refreshed",
		"labels", len(structured.NodeProps),
		"relationship_types", len(structured.RelProps),
		"patterns", len(structured.Relationships))
	return nil
}

// Schema returns the text rendering of the last refreshed schema.
func (n *Neo4jDriver) Schema() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.schema
}

// StructuredSchema returns the last refreshed schema.
func (n *Neo4jDriver) StructuredSchema() *StructuredSchema {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.structured
}

// Query executes cypher in an auto-commit transaction and returns the rows
// as plain Go values keyed by column name.
func (n *Neo4jDriver) Query(ctx context.Context, cypher string, params map[string]any) ([]map[string]any, error) {
	records, err := n.collect(ctx, cypher, params)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}

	rows := make([]map[string]any, 0, len(records))
	for _, record := range records {
		row := make(map[string]any, len(record.Keys))
		for i, key := range record.Keys {
			if plain, ok := PlainValue(record.Values[i], n.sanitize); ok {
				row[key] = plain
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Close closes the underlying driver.
func (n *Neo4jDriver) Close(ctx context.Context) error {
	return n.client.Close(ctx)
}

func (n *Neo4jDriver) collect(ctx context.Context, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	session := n.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: n.database})
	defer session.Close(ctx)

	result, err := session.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	return result.Collect(ctx)
}
