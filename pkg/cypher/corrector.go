package cypher

import (
	"regexp"
	"strings"
)

// Direction of a relationship in a MATCH pattern.
type Direction int

const (
	Bidirectional Direction = iota
	Outgoing
	Incoming
)

func (d Direction) String() string {
	switch d {
	case Outgoing:
		return "OUTGOING"
	case Incoming:
		return "INCOMING"
	default:
		return "BIDIRECTIONAL"
	}
}

// Pattern is a (start)-[type]->(end) triple allowed by the graph schema.
type Pattern struct {
	Start string
	Type  string
	End   string
}

var (
	propertyRegex = regexp.MustCompile(`\{.+?\}`)
	nodeRegex     = regexp.MustCompile(`\(.+?\)`)
	pathRegex     = regexp.MustCompile(
		`(\([^,()]*?(\{.+\})?[^,()]*?\))(<?-)(\[.*?\])?(->?)(\([^,()]*?(\{.+\})?[^,()]*?\))`)
	nodeRelationNodeRegex = regexp.MustCompile(
		`^(\()+(?P<left>[^()]*?)\)(?P<relation>.*?)\((?P<right>[^()]*?)(\))+`)
	relationTypeRegex = regexp.MustCompile(`:(?P<types>.+?)?(\{.+\})?]`)
)

// QueryCorrector checks the relationship directions of a query against the
// schema. Reversed arrows are flipped; patterns that exist in neither
// direction make the whole query invalid.
type QueryCorrector struct {
	patterns []Pattern
}

// NewQueryCorrector creates a corrector for the given schema patterns.
func NewQueryCorrector(patterns []Pattern) *QueryCorrector {
	return &QueryCorrector{patterns: patterns}
}

// Correct returns the corrected query, or "" when some relationship pattern
// cannot be satisfied by the schema. Variable-length relationships are not
// checked.
func (c *QueryCorrector) Correct(query string) string {
	nodeLabels := detectNodeVariables(query)

	for _, path := range extractPaths(query) {
		start := 0
		for start < len(path) {
			m := nodeRelationNodeRegex.FindStringSubmatch(path[start:])
			if m == nil {
				break
			}
			left := m[nodeRelationNodeRegex.SubexpIndex("left")]
			relation := m[nodeRelationNodeRegex.SubexpIndex("relation")]
			right := m[nodeRelationNodeRegex.SubexpIndex("right")]

			leftLabels := detectLabels(left, nodeLabels)
			rightLabels := detectLabels(right, nodeLabels)

			end := min(start+4+len(left)+len(relation)+len(right), len(path))
			partial := path[start:end]
			direction, relTypes := detectRelationTypes(relation)

			if strings.Contains(strings.Join(relTypes, ""), "*") {
				start += len(left) + len(relation) + 2
				continue
			}

			switch direction {
			case Outgoing:
				if !c.verify(leftLabels, relTypes, rightLabels) {
					if !c.verify(rightLabels, relTypes, leftLabels) {
						return ""
					}
					corrected := "<" + relation[:len(relation)-1]
					query = strings.ReplaceAll(query, partial, strings.Replace(partial, relation, corrected, 1))
				}
			case Incoming:
				if !c.verify(rightLabels, relTypes, leftLabels) {
					if !c.verify(leftLabels, relTypes, rightLabels) {
						return ""
					}
					corrected := relation[1:] + ">"
					query = strings.ReplaceAll(query, partial, strings.Replace(partial, relation, corrected, 1))
				}
			default:
				if !c.verify(leftLabels, relTypes, rightLabels) && !c.verify(rightLabels, relTypes, leftLabels) {
					return ""
				}
			}

			start += len(left) + len(relation) + 2
		}
	}
	return query
}

// verify reports whether some schema pattern matches. An empty constraint
// matches anything.
func (c *QueryCorrector) verify(fromLabels, relTypes, toLabels []string) bool {
	for _, p := range c.patterns {
		if len(fromLabels) > 0 && !containsUnquoted(fromLabels, p.Start) {
			continue
		}
		if len(toLabels) > 0 && !containsUnquoted(toLabels, p.End) {
			continue
		}
		if len(relTypes) > 0 && !containsUnquoted(relTypes, p.Type) {
			continue
		}
		return true
	}
	return false
}

func containsUnquoted(names []string, want string) bool {
	for _, name := range names {
		if strings.Trim(name, "`") == want {
			return true
		}
	}
	return false
}

// cleanNode strips property maps and parentheses from a node pattern.
func cleanNode(node string) string {
	node = propertyRegex.ReplaceAllString(node, "")
	node = strings.ReplaceAll(node, "(", "")
	node = strings.ReplaceAll(node, ")", "")
	return strings.TrimSpace(node)
}

// splitNode splits "p:Person:Employee" into the variable and its labels.
func splitNode(node string) (string, []string) {
	parts := strings.Split(node, ":")
	labels := make([]string, 0, len(parts)-1)
	for _, label := range parts[1:] {
		if label = strings.TrimSpace(label); label != "" {
			labels = append(labels, label)
		}
	}
	return strings.TrimSpace(parts[0]), labels
}

// detectNodeVariables maps each node variable to every label it is given
// anywhere in the query.
func detectNodeVariables(query string) map[string][]string {
	out := make(map[string][]string)
	for _, node := range nodeRegex.FindAllString(query, -1) {
		variable, labels := splitNode(cleanNode(node))
		out[variable] = append(out[variable], labels...)
	}
	return out
}

func detectLabels(node string, variables map[string][]string) []string {
	variable, labels := splitNode(cleanNode(node))
	if known, ok := variables[variable]; ok && variable != "" {
		return known
	}
	if variable == "" {
		return labels
	}
	return nil
}

// extractPaths finds node-relationship-node chains. Consecutive matches share
// their boundary node so that (a)-[]->(b)-[]->(c) yields both hops.
func extractPaths(query string) []string {
	var paths []string
	idx := 0
	for idx < len(query) {
		loc := pathRegex.FindStringSubmatchIndex(query[idx:])
		if loc == nil {
			break
		}
		group := func(i int) string {
			if loc[2*i] < 0 {
				return ""
			}
			return query[idx+loc[2*i] : idx+loc[2*i+1]]
		}
		right := group(6)
		path := group(1) + group(3) + group(4) + group(5) + right
		paths = append(paths, path)
		next := idx + loc[1] - len(right)
		if next <= idx {
			break
		}
		idx = next
	}
	return paths
}

func judgeDirection(relation string) Direction {
	direction := Bidirectional
	if strings.HasPrefix(relation, "<") {
		direction = Incoming
	}
	if strings.HasSuffix(relation, ">") {
		direction = Outgoing
	}
	return direction
}

func detectRelationTypes(relation string) (Direction, []string) {
	direction := judgeDirection(relation)
	m := relationTypeRegex.FindStringSubmatch(relation)
	if m == nil {
		return direction, nil
	}
	raw := m[relationTypeRegex.SubexpIndex("types")]
	if raw == "" {
		return direction, nil
	}
	var relTypes []string
	for _, t := range strings.Split(raw, "|") {
		relTypes = append(relTypes, strings.Trim(strings.TrimSpace(t), "!"))
	}
	return direction, relTypes
}
