package types

// Node is an entity in an extracted graph. Nodes are identified by the pair (Type, ID).
type Node struct {
	ID         string         `json:"id" yaml:"id"`
	Type       string         `json:"type" yaml:"type"`
	Properties map[string]any `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// NewNode creates a node with the given identifier and label.
func NewNode(id, nodeType string) Node {
	return Node{
		ID:         id,
		Type:       nodeType,
		Properties: make(map[string]any),
	}
}

// SetProperty sets a property on the node.
func (n *Node) SetProperty(key string, value any) {
	if n.Properties == nil {
		n.Properties = make(map[string]any)
	}
	n.Properties[key] = value
}

// Key returns a string uniquely identifying the node within a graph.
func (n Node) Key() string {
	return n.Type + "\x00" + n.ID
}

// Validate checks if the Node has all required fields set.
func (n *Node) Validate() error {
	if n.ID == "" {
		return ErrEmptyID
	}
	if n.Type == "" {
		return ErrEmptyType
	}
	return nil
}
