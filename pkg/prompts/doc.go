// Package prompts holds the prompt templates used for graph extraction,
// Cypher generation and answer synthesis, plus the few-shot example sets.
package prompts
