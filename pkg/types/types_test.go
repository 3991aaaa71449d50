package types

import (
	"errors"
	"testing"
)

func TestNodeValidation(t *testing.T) {
	tests := []struct {
		name    string
		node    Node
		wantErr error
	}{
		{
			name:    "valid node",
			node:    NewNode("John", "Person"),
			wantErr: nil,
		},
		{
			name:    "empty id",
			node:    NewNode("", "Person"),
			wantErr: ErrEmptyID,
		},
		{
			name:    "empty type",
			node:    NewNode("John", ""),
			wantErr: ErrEmptyType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.node.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRelationshipValidation(t *testing.T) {
	john := NewNode("John", "Person")
	director := NewNode("Director", "Title")

	tests := []struct {
		name    string
		rel     Relationship
		wantErr error
	}{
		{
			name: "valid relationship",
			rel:  NewRelationship(john, director, "TITLE"),
		},
		{
			name:    "empty type",
			rel:     NewRelationship(john, director, ""),
			wantErr: ErrEmptyType,
		},
		{
			name:    "bad source",
			rel:     NewRelationship(NewNode("", "Person"), director, "TITLE"),
			wantErr: ErrEmptyID,
		},
		{
			name:    "bad target",
			rel:     NewRelationship(john, NewNode("Director", ""), "TITLE"),
			wantErr: ErrEmptyType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rel.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRelationshipString(t *testing.T) {
	rel := NewRelationship(NewNode("John", "Person"), NewNode("Director", "Title"), "TITLE")
	want := "(John:Person)-[:TITLE]->(Director:Title)"
	if got := rel.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestGraphDocumentLabels(t *testing.T) {
	doc := NewGraphDocument(NewDocument("John works with Jane."))
	john := NewNode("John", "Person")
	jane := NewNode("Jane", "Person")
	exec := NewNode("Executive Group", "Group")
	doc.AddNode(john)
	doc.AddNode(jane)
	doc.AddNode(exec)
	doc.AddRelationship(NewRelationship(john, jane, "COLLABORATES"))
	doc.AddRelationship(NewRelationship(jane, exec, "GROUP"))
	doc.AddRelationship(NewRelationship(jane, john, "COLLABORATES"))

	if doc.NodeCount() != 3 {
		t.Errorf("NodeCount() = %d, want 3", doc.NodeCount())
	}
	if doc.RelationshipCount() != 3 {
		t.Errorf("RelationshipCount() = %d, want 3", doc.RelationshipCount())
	}

	labels := doc.Labels()
	if len(labels) != 2 || labels[0] != "Person" || labels[1] != "Group" {
		t.Errorf("Labels() = %v, want [Person Group]", labels)
	}
	relTypes := doc.RelationshipTypes()
	if len(relTypes) != 2 || relTypes[0] != "COLLABORATES" || relTypes[1] != "GROUP" {
		t.Errorf("RelationshipTypes() = %v, want [COLLABORATES GROUP]", relTypes)
	}
}

func TestNilGraphDocumentCounts(t *testing.T) {
	var doc *GraphDocument
	if doc.NodeCount() != 0 || doc.RelationshipCount() != 0 {
		t.Error("nil graph document should report zero counts")
	}
}

func TestNodeKeyDistinguishesLabels(t *testing.T) {
	a := NewNode("Sales", "Group")
	b := NewNode("Sales", "Title")
	if a.Key() == b.Key() {
		t.Error("nodes with the same id but different labels must have different keys")
	}
}

func TestTokenUsageAdd(t *testing.T) {
	total := &TokenUsage{}
	total.Add(&TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15})
	total.Add(nil)
	total.Add(&TokenUsage{PromptTokens: 1, CompletionTokens: 2, TotalTokens: 3})

	if total.PromptTokens != 11 || total.CompletionTokens != 7 || total.TotalTokens != 18 {
		t.Errorf("unexpected totals: %+v", total)
	}
}

func TestDocumentValidate(t *testing.T) {
	doc := NewDocument("")
	if !errors.Is(doc.Validate(), ErrEmptyContent) {
		t.Error("expected ErrEmptyContent for empty document")
	}
	doc = NewDocument("text")
	if err := doc.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
