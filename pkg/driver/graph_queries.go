package driver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/soundprediction/graphqa/pkg/types"
)

const (
	// BaseEntityLabel is added to every extracted node when AddOptions.BaseEntityLabel is set.
	BaseEntityLabel = "__Entity__"
	// DocumentLabel is the label of source document nodes.
	DocumentLabel = "Document"
	// MentionsRelationship links a source document to the nodes extracted from it.
	MentionsRelationship = "MENTIONS"
)

// documentNamespace seeds deterministic Document ids.
var documentNamespace = uuid.MustParse("4f1e7c0a-9d2b-5b8e-a3c1-6e2f0d9b7a45")

// Labels and relationship types that never appear in the rendered schema.
var (
	excludedLabels        = []string{"_Bloom_Perspective_", "_Bloom_Scene_", BaseEntityLabel}
	excludedRelationships = []string{"_Bloom_HAS_SCENE_"}
)

// Schema introspection queries. They rely only on built-in procedures.
const (
	nodePropertiesQuery = `
		CALL db.schema.nodeTypeProperties()
		YIELD nodeLabels, propertyName, propertyTypes
		RETURN nodeLabels, propertyName, propertyTypes
	`

	relPropertiesQuery = `
		CALL db.schema.relTypeProperties()
		YIELD relType, propertyName, propertyTypes
		RETURN relType, propertyName, propertyTypes
	`

	relPatternsQuery = `
		MATCH (a)-[r]->(b)
		WITH DISTINCT labels(a) AS startLabels, type(r) AS relType, labels(b) AS endLabels
		UNWIND startLabels AS start
		UNWIND endLabels AS end
		RETURN DISTINCT start, relType, end
	`
)

// QuoteIdentifier backtick-quotes a label or relationship type for use in Cypher.
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// DocumentID returns the deterministic id of a source document.
func DocumentID(doc types.Document) string {
	if id, ok := doc.Metadata["id"].(string); ok && id != "" {
		return id
	}
	return uuid.NewSHA1(documentNamespace, []byte(doc.PageContent)).String()
}

// statement is a single parameterized Cypher statement.
type statement struct {
	query  string
	params map[string]any
}

func documentStatement(doc types.Document) statement {
	return statement{
		query: fmt.Sprintf(`
			MERGE (d:%s {id: $id})
			SET d.text = $text
			SET d += $metadata
		`, QuoteIdentifier(DocumentLabel)),
		params: map[string]any{
			"id":       DocumentID(doc),
			"text":     doc.PageContent,
			"metadata": sanitizeProperties(doc.Metadata),
		},
	}
}

// mergeNodeClause returns the MERGE for a node bound to variable v whose id
// is taken from expr.
func mergeNodeClause(v, label, expr string, opts *AddOptions) string {
	if opts != nil && opts.BaseEntityLabel {
		return fmt.Sprintf("MERGE (%s:%s {id: %s})\n\t\t\tSET %s:%s",
			v, QuoteIdentifier(BaseEntityLabel), expr, v, QuoteIdentifier(label))
	}
	return fmt.Sprintf("MERGE (%s:%s {id: %s})", v, QuoteIdentifier(label), expr)
}

// nodeStatements groups the nodes of a document by label, one UNWIND
// statement per label. Statements are ordered by label.
func nodeStatements(doc types.GraphDocument, opts *AddOptions) []statement {
	rowsByLabel := make(map[string][]map[string]any)
	for _, node := range doc.Nodes {
		rowsByLabel[node.Type] = append(rowsByLabel[node.Type], map[string]any{
			"id":         node.ID,
			"properties": sanitizeProperties(node.Properties),
		})
	}

	labels := make([]string, 0, len(rowsByLabel))
	for label := range rowsByLabel {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	statements := make([]statement, 0, len(labels))
	for _, label := range labels {
		var sb strings.Builder
		sb.WriteString("\n\t\t\tUNWIND $rows AS row\n\t\t\t")
		sb.WriteString(mergeNodeClause("n", label, "row.id", opts))
		sb.WriteString("\n\t\t\tSET n += row.properties\n")
		params := map[string]any{"rows": rowsByLabel[label]}
		if opts != nil && opts.IncludeSource {
			sb.WriteString(fmt.Sprintf("\t\t\tWITH n\n\t\t\tMATCH (d:%s {id: $document_id})\n\t\t\tMERGE (d)-[:%s]->(n)\n",
				QuoteIdentifier(DocumentLabel), QuoteIdentifier(MentionsRelationship)))
			params["document_id"] = DocumentID(doc.Source)
		}
		statements = append(statements, statement{query: sb.String(), params: params})
	}
	return statements
}

type relationshipKey struct {
	source, relType, target string
}

// relationshipStatements groups relationships by (source label, type,
// target label). Endpoints are merged so a relationship never dangles.
func relationshipStatements(doc types.GraphDocument, opts *AddOptions) []statement {
	rowsByKey := make(map[relationshipKey][]map[string]any)
	for _, rel := range doc.Relationships {
		key := relationshipKey{source: rel.Source.Type, relType: rel.Type, target: rel.Target.Type}
		rowsByKey[key] = append(rowsByKey[key], map[string]any{
			"source":     rel.Source.ID,
			"target":     rel.Target.ID,
			"properties": sanitizeProperties(rel.Properties),
		})
	}

	keys := make([]relationshipKey, 0, len(rowsByKey))
	for key := range rowsByKey {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].source != keys[j].source {
			return keys[i].source < keys[j].source
		}
		if keys[i].relType != keys[j].relType {
			return keys[i].relType < keys[j].relType
		}
		return keys[i].target < keys[j].target
	})

	statements := make([]statement, 0, len(keys))
	for _, key := range keys {
		query := fmt.Sprintf(`
			UNWIND $rows AS row
			%s
			%s
			MERGE (s)-[r:%s]->(t)
			SET r += row.properties
		`,
			mergeNodeClause("s", key.source, "row.source", opts),
			mergeNodeClause("t", key.target, "row.target", opts),
			QuoteIdentifier(key.relType),
		)
		statements = append(statements, statement{
			query:  query,
			params: map[string]any{"rows": rowsByKey[key]},
		})
	}
	return statements
}

// importStatements returns every statement needed to merge one graph
// document: the source document first, then nodes, then relationships.
func importStatements(doc types.GraphDocument, opts *AddOptions) []statement {
	var statements []statement
	if opts != nil && opts.IncludeSource {
		statements = append(statements, documentStatement(doc.Source))
	}
	statements = append(statements, nodeStatements(doc, opts)...)
	statements = append(statements, relationshipStatements(doc, opts)...)
	return statements
}

// sanitizeProperties keeps only values Neo4j can store as properties.
func sanitizeProperties(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for key, value := range props {
		switch v := value.(type) {
		case string, bool, int, int32, int64, float32, float64:
			out[key] = v
		case []string, []int64, []float64, []bool:
			out[key] = v
		case fmt.Stringer:
			out[key] = v.String()
		}
	}
	return out
}
