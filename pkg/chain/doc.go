// Package chain answers natural-language questions over a graph database.
//
// A CypherQAChain asks a language model to write a Cypher query for the
// question using the live schema and few-shot examples, runs the query, and
// asks the model again to phrase an answer from the returned rows.
//
// Generated queries are executed as-is against the database. Constructing a
// chain therefore requires Options.AllowDangerousRequests; scope the
// database credentials accordingly.
package chain
