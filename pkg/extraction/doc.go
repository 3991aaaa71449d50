// Package extraction turns unstructured documents into graph documents by
// asking a language model for nodes and relationships.
//
// The Transformer normalizes what the model returns (node ids title-cased,
// node types capitalized, relationship types upper snake case) and, in
// strict mode, drops anything outside the configured allow-lists.
package extraction
