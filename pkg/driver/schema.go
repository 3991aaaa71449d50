package driver

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j/db"
)

// Property is a property name and its Cypher type, e.g. {id STRING}.
type Property struct {
	Name string `json:"property"`
	Type string `json:"type"`
}

// RelationshipPattern is a (start)-[type]->(end) triple observed in the graph.
type RelationshipPattern struct {
	Start string `json:"start"`
	Type  string `json:"type"`
	End   string `json:"end"`
}

func (p RelationshipPattern) String() string {
	return fmt.Sprintf("(:%s)-[:%s]->(:%s)", p.Start, p.Type, p.End)
}

// StructuredSchema is the introspected schema of the database.
type StructuredSchema struct {
	NodeProps     map[string][]Property `json:"node_props"`
	RelProps      map[string][]Property `json:"rel_props"`
	Relationships []RelationshipPattern `json:"relationships"`
}

// NewStructuredSchema returns an empty schema.
func NewStructuredSchema() *StructuredSchema {
	return &StructuredSchema{
		NodeProps: make(map[string][]Property),
		RelProps:  make(map[string][]Property),
	}
}

// Patterns returns the relationship patterns of the schema.
func (s *StructuredSchema) Patterns() []RelationshipPattern {
	if s == nil {
		return nil
	}
	return s.Relationships
}

// FilterSchema returns a copy of s restricted to the given labels and
// relationship types. A non-empty include list wins over exclude.
// Relationship patterns are kept only when all three parts pass the filter.
func FilterSchema(s *StructuredSchema, include, exclude []string) *StructuredSchema {
	out := NewStructuredSchema()
	if s == nil {
		return out
	}

	keep := func(name string) bool {
		if len(include) > 0 {
			return slices.Contains(include, name)
		}
		return !slices.Contains(exclude, name)
	}

	for label, props := range s.NodeProps {
		if keep(label) {
			out.NodeProps[label] = slices.Clone(props)
		}
	}
	for relType, props := range s.RelProps {
		if keep(relType) {
			out.RelProps[relType] = slices.Clone(props)
		}
	}
	for _, p := range s.Relationships {
		if keep(p.Start) && keep(p.Type) && keep(p.End) {
			out.Relationships = append(out.Relationships, p)
		}
	}
	return out
}

// FormatSchema renders s as prompt text. Output is sorted so that it is
// stable across refreshes of the same graph.
func FormatSchema(s *StructuredSchema) string {
	if s == nil {
		s = NewStructuredSchema()
	}

	var nodeLines []string
	for _, label := range sortedKeys(s.NodeProps) {
		nodeLines = append(nodeLines, fmt.Sprintf("%s {%s}", label, formatProperties(s.NodeProps[label])))
	}

	var relLines []string
	for _, relType := range sortedKeys(s.RelProps) {
		props := s.RelProps[relType]
		if len(props) == 0 {
			continue
		}
		relLines = append(relLines, fmt.Sprintf("%s {%s}", relType, formatProperties(props)))
	}

	var patternLines []string
	for _, p := range s.Relationships {
		patternLines = append(patternLines, p.String())
	}
	sort.Strings(patternLines)

	return strings.Join([]string{
		"Node properties:",
		strings.Join(nodeLines, "\n"),
		"Relationship properties:",
		strings.Join(relLines, "\n"),
		"The relationships:",
		strings.Join(patternLines, "\n"),
	}, "\n")
}

func formatProperties(props []Property) string {
	parts := make([]string, 0, len(props))
	for _, p := range props {
		parts = append(parts, fmt.Sprintf("%s: %s", p.Name, p.Type))
	}
	return strings.Join(parts, ", ")
}

func sortedKeys(m map[string][]Property) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// cypherTypes maps db.schema property type names to Cypher type names.
var cypherTypes = map[string]string{
	"String":        "STRING",
	"Long":          "INTEGER",
	"Integer":       "INTEGER",
	"Double":        "FLOAT",
	"Float":         "FLOAT",
	"Boolean":       "BOOLEAN",
	"Date":          "DATE",
	"DateTime":      "DATE_TIME",
	"LocalDateTime": "LOCAL_DATE_TIME",
	"Time":          "TIME",
	"LocalTime":     "LOCAL_TIME",
	"Duration":      "DURATION",
	"Point":         "POINT",
}

// cypherType converts the first reported type of a property. Array types
// such as StringArray become LIST.
func cypherType(propertyTypes []string) string {
	if len(propertyTypes) == 0 {
		return "ANY"
	}
	t := propertyTypes[0]
	if strings.HasSuffix(t, "Array") {
		return "LIST"
	}
	if mapped, ok := cypherTypes[t]; ok {
		return mapped
	}
	return strings.ToUpper(t)
}

// trimTypeName turns ":`TITLE`" into "TITLE".
func trimTypeName(name string) string {
	name = strings.TrimPrefix(name, ":")
	if strings.HasPrefix(name, "`") && strings.HasSuffix(name, "`") && len(name) >= 2 {
		name = name[1 : len(name)-1]
	}
	return strings.ReplaceAll(name, "``", "`")
}

func appendProperty(props []Property, p Property) []Property {
	for _, existing := range props {
		if existing.Name == p.Name {
			return props
		}
	}
	return append(props, p)
}

// parseNodeProperties reads rows of db.schema.nodeTypeProperties(). A node
// with several labels contributes its properties to each label.
func parseNodeProperties(records []*db.Record) (map[string][]Property, error) {
	out := make(map[string][]Property)
	for _, record := range records {
		rawLabels, _ := record.Get("nodeLabels")
		labels, err := toStringSlice(rawLabels, "nodeLabels")
		if err != nil {
			return nil, err
		}
		rawName, _ := record.Get("propertyName")
		rawTypes, _ := record.Get("propertyTypes")

		for _, label := range labels {
			if slices.Contains(excludedLabels, label) {
				continue
			}
			if _, ok := out[label]; !ok {
				out[label] = []Property{}
			}
			name, ok := AsString(rawName)
			if !ok || name == "" {
				continue
			}
			propTypes, _ := toStringSlice(rawTypes, "propertyTypes")
			out[label] = appendProperty(out[label], Property{Name: name, Type: cypherType(propTypes)})
		}
	}
	return out, nil
}

// parseRelProperties reads rows of db.schema.relTypeProperties().
func parseRelProperties(records []*db.Record) (map[string][]Property, error) {
	out := make(map[string][]Property)
	for _, record := range records {
		rawType, _ := record.Get("relType")
		relType, err := MustString(rawType, "relType")
		if err != nil {
			return nil, err
		}
		relType = trimTypeName(relType)
		if slices.Contains(excludedRelationships, relType) {
			continue
		}
		if _, ok := out[relType]; !ok {
			out[relType] = []Property{}
		}
		rawName, _ := record.Get("propertyName")
		name, ok := AsString(rawName)
		if !ok || name == "" {
			continue
		}
		rawTypes, _ := record.Get("propertyTypes")
		propTypes, _ := toStringSlice(rawTypes, "propertyTypes")
		out[relType] = appendProperty(out[relType], Property{Name: name, Type: cypherType(propTypes)})
	}
	return out, nil
}

// parseRelationshipPatterns reads rows of the (start, relType, end) scan.
func parseRelationshipPatterns(records []*db.Record) ([]RelationshipPattern, error) {
	var out []RelationshipPattern
	for _, record := range records {
		values := make([]string, 0, 3)
		for _, key := range []string{"start", "relType", "end"} {
			raw, _ := record.Get(key)
			s, err := MustString(raw, key)
			if err != nil {
				return nil, err
			}
			values = append(values, s)
		}
		p := RelationshipPattern{Start: values[0], Type: values[1], End: values[2]}
		if slices.Contains(excludedLabels, p.Start) || slices.Contains(excludedLabels, p.End) ||
			slices.Contains(excludedRelationships, p.Type) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}
