// Package driver provides the graph database session used by graphqa.
//
// The package defines the GraphStore interface and a Neo4j implementation
// built on the official neo4j-go-driver. A GraphStore can:
//   - merge extracted graph documents into the database
//   - introspect the live schema and render it as prompt text
//   - execute arbitrary Cypher and return rows as plain Go values
//
// # Usage
//
//	store, err := driver.NewNeo4jDriver(ctx, "neo4j://localhost", "neo4j", "password4j", "neo4j")
//	if err != nil {
//		return err
//	}
//	defer store.Close(ctx)
//
//	err = store.AddGraphDocuments(ctx, docs, &driver.AddOptions{IncludeSource: true})
//	err = store.RefreshSchema(ctx)
//	fmt.Println(store.Schema())
//
// # Schema
//
// RefreshSchema uses the built-in db.schema procedures and a pattern scan,
// so APOC is not required. The text rendering has three sections:
//
//	Node properties:
//	Person {id: STRING}
//	Relationship properties:
//
//	The relationships:
//	(:Person)-[:TITLE]->(:Title)
//
// # Type Helpers
//
// The As* helpers convert values returned by the Neo4j driver without
// panicking. PlainValue converts nodes, relationships, paths and temporal
// values into maps, slices and strings suitable for JSON rendering.
package driver
