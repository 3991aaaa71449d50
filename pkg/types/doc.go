// Package types defines the core data types shared by graphqa packages.
//
// This package contains the fundamental types used throughout graphqa:
//   - Document: A unit of source text handed to the extractor
//   - Node: An entity with a label drawn from the extraction allow-list
//   - Relationship: A directed, typed connection between two nodes
//   - GraphDocument: The graph extracted from one Document
//   - Message/Response: Chat messages exchanged with language models
//
// # Validation
//
// Graph types provide Validate() methods for input validation:
//
//	node := types.NewNode("John", "Person")
//	if err := node.Validate(); err != nil {
//	    // Handle validation error
//	}
//
// # JSON Serialization
//
// All types are designed to be JSON-serializable with appropriate struct tags.
package types
