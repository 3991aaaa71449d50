package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/soundprediction/graphqa/pkg/nlp"
	"github.com/soundprediction/graphqa/pkg/prompts"
	"github.com/soundprediction/graphqa/pkg/types"
)

// ErrNoAllowedLabels is returned when strict mode is requested without any
// allow-list to enforce.
var ErrNoAllowedLabels = errors.New("strict mode requires allowed nodes or relationships")

// Extractor converts documents into graph documents.
type Extractor interface {
	ConvertToGraphDocuments(ctx context.Context, docs []types.Document) ([]types.GraphDocument, error)
}

// Options configures a Transformer.
type Options struct {
	// AllowedNodes lists the node labels the model may use.
	AllowedNodes []string
	// AllowedRelationships lists the relationship types the model may use.
	AllowedRelationships []string
	// StrictMode drops nodes and relationships outside the allow-lists.
	StrictMode bool
	Logger     *slog.Logger
}

// Transformer is an LLM-backed Extractor.
type Transformer struct {
	llm          nlp.Client
	opts         Options
	allowedNodes allowList
	allowedRels  allowList
	logger       *slog.Logger
}

var _ Extractor = (*Transformer)(nil)

// NewTransformer creates a Transformer. The client should be configured
// with temperature zero.
func NewTransformer(llm nlp.Client, opts Options) (*Transformer, error) {
	if llm == nil {
		return nil, fmt.Errorf("llm client is required")
	}
	if opts.StrictMode && len(opts.AllowedNodes) == 0 && len(opts.AllowedRelationships) == 0 {
		return nil, ErrNoAllowedLabels
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Transformer{
		llm:          llm,
		opts:         opts,
		allowedNodes: newAllowList(opts.AllowedNodes),
		allowedRels:  newAllowList(opts.AllowedRelationships),
		logger:       logger,
	}, nil
}

// ConvertToGraphDocuments processes documents one after another and stops
// at the first failure.
func (t *Transformer) ConvertToGraphDocuments(ctx context.Context, docs []types.Document) ([]types.GraphDocument, error) {
	out := make([]types.GraphDocument, 0, len(docs))
	for i, doc := range docs {
		graphDoc, err := t.ProcessResponse(ctx, doc)
		if err != nil {
			return nil, fmt.Errorf("failed to extract graph from document %d: %w", i, err)
		}
		out = append(out, *graphDoc)
	}
	return out, nil
}

// ProcessResponse extracts a graph document from a single document.
func (t *Transformer) ProcessResponse(ctx context.Context, doc types.Document) (*types.GraphDocument, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	messages := prompts.ExtractGraphMessages(doc.PageContent, t.opts.AllowedNodes, t.opts.AllowedRelationships, t.logger)
	resp, err := t.llm.ChatWithStructuredOutput(ctx, messages, prompts.ExtractGraphSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to generate graph: %w", err)
	}

	raw, err := parseGraph(resp.Content)
	if err != nil {
		return nil, err
	}

	graphDoc := t.buildGraphDocument(raw, doc)
	t.logger.Info("Extracted graph",
		"nodes", graphDoc.NodeCount(),
		"relationships", graphDoc.RelationshipCount(),
		"labels", graphDoc.Labels(),
		"relationship_types", graphDoc.RelationshipTypes())
	return &graphDoc, nil
}

// buildGraphDocument normalizes the raw model output. Nodes are deduplicated
// by (type, id); relationship endpoints missing from the node list are added.
func (t *Transformer) buildGraphDocument(raw *prompts.ExtractedGraph, source types.Document) types.GraphDocument {
	graphDoc := types.NewGraphDocument(source)
	typeByID := make(map[string]string)
	seen := make(map[string]bool)

	addNode := func(node types.Node) {
		if seen[node.Key()] {
			return
		}
		seen[node.Key()] = true
		graphDoc.AddNode(node)
	}

	for _, rn := range raw.Nodes {
		id := string(rn.ID)
		if id == "" {
			continue
		}
		node, ok := t.normalizeNode(id, rn.Type)
		if !ok {
			continue
		}
		if _, exists := typeByID[id]; !exists {
			typeByID[id] = rn.Type
		}
		addNode(node)
	}

	for _, rr := range raw.Relationships {
		sourceID, targetID := string(rr.SourceNodeID), string(rr.TargetNodeID)
		if sourceID == "" || targetID == "" || rr.Type == "" {
			continue
		}

		sourceType := rr.SourceNodeType
		if sourceType == "" {
			sourceType = typeByID[sourceID]
		}
		targetType := rr.TargetNodeType
		if targetType == "" {
			targetType = typeByID[targetID]
		}

		source, ok := t.normalizeNode(sourceID, sourceType)
		if !ok {
			continue
		}
		target, ok := t.normalizeNode(targetID, targetType)
		if !ok {
			continue
		}
		relType, ok := t.normalizeRelationshipType(rr.Type)
		if !ok {
			continue
		}

		addNode(source)
		addNode(target)
		graphDoc.AddRelationship(types.NewRelationship(source, target, relType))
	}

	return graphDoc
}

// normalizeNode reports false when the node has no type or, in strict mode,
// a type outside the allow-list.
func (t *Transformer) normalizeNode(id, nodeType string) (types.Node, bool) {
	if nodeType == "" {
		return types.Node{}, false
	}
	label := Capitalize(nodeType)
	if t.opts.StrictMode && t.allowedNodes != nil {
		canonical, ok := t.allowedNodes.lookup(nodeType)
		if !ok {
			return types.Node{}, false
		}
		label = canonical
	}
	return types.NewNode(TitleCase(id), label), true
}

func (t *Transformer) normalizeRelationshipType(relType string) (string, bool) {
	normalized := RelationshipType(relType)
	if t.opts.StrictMode && t.allowedRels != nil {
		canonical, ok := t.allowedRels.lookup(normalized)
		if !ok {
			return "", false
		}
		return canonical, true
	}
	return normalized, true
}
