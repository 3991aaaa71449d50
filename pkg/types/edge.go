package types

import "fmt"

// Relationship is a directed, typed connection between two nodes.
type Relationship struct {
	Source     Node           `json:"source" yaml:"source"`
	Target     Node           `json:"target" yaml:"target"`
	Type       string         `json:"type" yaml:"type"`
	Properties map[string]any `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// NewRelationship creates a relationship from source to target.
func NewRelationship(source, target Node, relType string) Relationship {
	return Relationship{
		Source:     source,
		Target:     target,
		Type:       relType,
		Properties: make(map[string]any),
	}
}

// SetProperty sets a property on the relationship.
func (r *Relationship) SetProperty(key string, value any) {
	if r.Properties == nil {
		r.Properties = make(map[string]any)
	}
	r.Properties[key] = value
}

// Validate checks that the relationship and both endpoints are well formed.
func (r *Relationship) Validate() error {
	if r.Type == "" {
		return ErrEmptyType
	}
	if err := r.Source.Validate(); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if err := r.Target.Validate(); err != nil {
		return fmt.Errorf("target: %w", err)
	}
	return nil
}

// String renders the relationship as a Cypher-like pattern.
func (r Relationship) String() string {
	return fmt.Sprintf("(%s:%s)-[:%s]->(%s:%s)", r.Source.ID, r.Source.Type, r.Type, r.Target.ID, r.Target.Type)
}
