package prompts

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/soundprediction/graphqa/pkg/nlp"
	"github.com/soundprediction/graphqa/pkg/types"
)

// NodeID is a node id as returned by the extraction model. Models
// occasionally emit numbers or null; those decode to their text form and
// null decodes to "".
type NodeID string

// UnmarshalJSON accepts an id of any JSON type.
func (id *NodeID) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch raw := v.(type) {
	case nil:
		*id = ""
	case string:
		*id = NodeID(strings.TrimSpace(raw))
	case float64:
		if raw == float64(int64(raw)) {
			*id = NodeID(fmt.Sprintf("%d", int64(raw)))
		} else {
			*id = NodeID(fmt.Sprintf("%g", raw))
		}
	default:
		*id = NodeID(strings.TrimSpace(fmt.Sprint(raw)))
	}
	return nil
}

// ExtractedNode is a node as returned by the extraction model.
type ExtractedNode struct {
	ID   NodeID `json:"id"`
	Type string `json:"type"`
}

// ExtractedRelationship is a relationship as returned by the extraction model.
type ExtractedRelationship struct {
	SourceNodeID   NodeID `json:"source_node_id"`
	SourceNodeType string `json:"source_node_type"`
	Type           string `json:"type"`
	TargetNodeID   NodeID `json:"target_node_id"`
	TargetNodeType string `json:"target_node_type"`
}

// ExtractedGraph is the JSON document the extraction model must produce.
type ExtractedGraph struct {
	Nodes         []ExtractedNode         `json:"nodes"`
	Relationships []ExtractedRelationship `json:"relationships"`
}

// ExtractGraphSchema is the JSON schema of ExtractedGraph sent with
// structured output requests.
var ExtractGraphSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"nodes": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id":   map[string]any{"type": "string"},
					"type": map[string]any{"type": "string"},
				},
				"required": []string{"id", "type"},
			},
		},
		"relationships": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"source_node_id":   map[string]any{"type": "string"},
					"source_node_type": map[string]any{"type": "string"},
					"type":             map[string]any{"type": "string"},
					"target_node_id":   map[string]any{"type": "string"},
					"target_node_type": map[string]any{"type": "string"},
				},
				"required": []string{"source_node_id", "source_node_type", "type", "target_node_id", "target_node_type"},
			},
		},
	},
	"required": []string{"nodes", "relationships"},
}

const extractGraphSystemPrompt = `# Knowledge Graph Extraction
## 1. Overview
You extract information from text into a knowledge graph.
Capture as much information from the text as possible without sacrificing accuracy.
Do not add any information that is not explicitly mentioned in the text.
- **Nodes** represent entities and concepts.
- **Relationships** represent connections between nodes.
Keep the graph simple and clear.

## 2. Labeling Nodes
- Use the available types for node labels. Use basic, elementary types: a person is always labeled 'Person', never 'Mathematician' or 'Scientist'.
- **Node IDs**: never use integers as node IDs. Node IDs are names or human-readable identifiers found in the text.

## 3. Relationships
- Use general and timeless relationship types: 'PROFESSOR' rather than 'BECAME_PROFESSOR'.

## 4. Coreference Resolution
- When an entity is mentioned several times under different names or pronouns ("John Doe", "Joe", "he"), always use the most complete identifier ("John Doe") as its ID.

## 5. Strict Compliance
Adhere to these rules strictly.`

const extractGraphOutputFormat = `Respond with a single JSON object of this shape and nothing else:
{"nodes": [{"id": "John", "type": "Person"}], "relationships": [{"source_node_id": "John", "source_node_type": "Person", "type": "TITLE", "target_node_id": "Director", "target_node_type": "Title"}]}`

// ExtractGraphMessages builds the messages asking the model to extract a
// graph from text. Empty allow-lists leave the corresponding types open.
func ExtractGraphMessages(text string, allowedNodes, allowedRelationships []string, logger *slog.Logger) []types.Message {
	var sys strings.Builder
	sys.WriteString(extractGraphSystemPrompt)
	if len(allowedNodes) > 0 {
		fmt.Fprintf(&sys, "\n\nAllowed node types: %s. Use only these types for nodes.", strings.Join(allowedNodes, ", "))
	}
	if len(allowedRelationships) > 0 {
		fmt.Fprintf(&sys, "\nAllowed relationship types: %s. Use only these types for relationships.", strings.Join(allowedRelationships, ", "))
	}
	sys.WriteString("\n\n")
	sys.WriteString(extractGraphOutputFormat)

	user := fmt.Sprintf("Tip: Make sure to answer in the correct format and do not include any explanations. "+
		"Use the given format to extract information from the following input:\n%s", text)

	logPrompts(logger, sys.String(), user)

	return []types.Message{
		nlp.NewSystemMessage(sys.String()),
		nlp.NewUserMessage(user),
	}
}
