package types

import (
	"errors"
)

// Validation errors
var (
	ErrEmptyID      = errors.New("id cannot be empty")
	ErrEmptyType    = errors.New("type cannot be empty")
	ErrEmptyContent = errors.New("content cannot be empty")
)

// Document is a unit of source text.
type Document struct {
	PageContent string         `json:"page_content" yaml:"page_content"`
	Metadata    map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// NewDocument creates a document with empty metadata.
func NewDocument(content string) Document {
	return Document{
		PageContent: content,
		Metadata:    make(map[string]any),
	}
}

// Validate checks that the document carries content.
func (d *Document) Validate() error {
	if d.PageContent == "" {
		return ErrEmptyContent
	}
	return nil
}

// GraphDocument holds the nodes and relationships extracted from a single source document.
type GraphDocument struct {
	Nodes         []Node         `json:"nodes"`
	Relationships []Relationship `json:"relationships"`
	Source        Document       `json:"source"`
}

// NewGraphDocument creates an empty graph document for the given source.
func NewGraphDocument(source Document) GraphDocument {
	return GraphDocument{
		Nodes:         []Node{},
		Relationships: []Relationship{},
		Source:        source,
	}
}

// AddNode appends a node.
func (g *GraphDocument) AddNode(node Node) {
	g.Nodes = append(g.Nodes, node)
}

// AddRelationship appends a relationship.
func (g *GraphDocument) AddRelationship(rel Relationship) {
	g.Relationships = append(g.Relationships, rel)
}

// NodeCount returns the number of nodes.
func (g *GraphDocument) NodeCount() int {
	if g == nil {
		return 0
	}
	return len(g.Nodes)
}

// RelationshipCount returns the number of relationships.
func (g *GraphDocument) RelationshipCount() int {
	if g == nil {
		return 0
	}
	return len(g.Relationships)
}

// Labels returns the distinct node labels in first-seen order.
func (g *GraphDocument) Labels() []string {
	seen := make(map[string]bool)
	var labels []string
	for _, n := range g.Nodes {
		if !seen[n.Type] {
			seen[n.Type] = true
			labels = append(labels, n.Type)
		}
	}
	return labels
}

// RelationshipTypes returns the distinct relationship types in first-seen order.
func (g *GraphDocument) RelationshipTypes() []string {
	seen := make(map[string]bool)
	var relTypes []string
	for _, r := range g.Relationships {
		if !seen[r.Type] {
			seen[r.Type] = true
			relTypes = append(relTypes, r.Type)
		}
	}
	return relTypes
}

// Role identifies the author of a chat message.
type Role string

// Message is a single chat message sent to a language model.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// TokenUsage reports token counts for a completion.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Add accumulates another usage report.
func (u *TokenUsage) Add(other *TokenUsage) {
	if other == nil {
		return
	}
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}

// Response is a language model completion.
type Response struct {
	Content      string      `json:"content"`
	FinishReason string      `json:"finish_reason,omitempty"`
	Model        string      `json:"model,omitempty"`
	TokensUsed   *TokenUsage `json:"tokens_used,omitempty"`
}
