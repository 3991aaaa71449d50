// Package graphqa builds a knowledge graph from text with a language model
// and answers questions about it with generated Cypher.
//
// # Basic Usage
//
// A Pipeline is assembled from three collaborators: a language model client,
// a graph store and an extractor.
//
//	store, err := driver.NewNeo4jDriver(ctx, "neo4j://localhost", "neo4j", "password4j", "neo4j")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer store.Close(ctx)
//
//	llmClient, err := nlp.NewOpenAIClient(nlp.NewLLMConfig().WithAPIKey(apiKey))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	extractor, err := extraction.NewTransformer(llmClient, extraction.Options{
//		AllowedNodes:         []string{"Person", "Title", "Group"},
//		AllowedRelationships: []string{"TITLE", "COLLABORATES", "GROUP"},
//		StrictMode:           true,
//	})
//
//	pipeline, err := graphqa.NewPipeline(llmClient, store, extractor, graphqa.DefaultConfig(), nil)
//	result, err := pipeline.Run(ctx, loader.Demo())
//
// # Flow
//
// Run is strictly sequential: extract the graph, merge it into the
// database, refresh the schema, then for each question generate a query,
// execute it and synthesize an answer. The first error stops the run.
//
// Open connects to the database before any language model is created, so a
// connection failure costs no model calls.
package graphqa
