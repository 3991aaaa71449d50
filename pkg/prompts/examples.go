package prompts

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ExampleSet is the pair of few-shot example lists used by the QA chain.
//
// On disk it is a YAML document:
//
//	cypher:
//	  - question: What group is Charles in?
//	    query: "MATCH (p:Person {id: 'Charles'})-[:GROUP]->(g:Group) RETURN g.id"
//	qa:
//	  - question: What group is Charles in?
//	    context: "[{'g.id': 'Executive Group'}]"
//	    response: Charles is in the Executive Group
//
// Queries contain ": " inside property maps, so they must be quoted or
// written as block scalars.
type ExampleSet struct {
	Cypher []CypherExample `yaml:"cypher"`
	QA     []QAExample     `yaml:"qa"`
}

// DefaultExampleSet returns the built-in examples.
func DefaultExampleSet() *ExampleSet {
	return &ExampleSet{
		Cypher: DefaultCypherExamples(),
		QA:     DefaultQAExamples(),
	}
}

// LoadExamples reads an example set from a YAML file. A list missing from
// the file falls back to the built-in examples.
func LoadExamples(path string) (*ExampleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read examples file: %w", err)
	}
	return ParseExamples(data)
}

// ParseExamples decodes an example set from YAML.
func ParseExamples(data []byte) (*ExampleSet, error) {
	var set ExampleSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse examples: %w", err)
	}

	for i, ex := range set.Cypher {
		if ex.Query == "" {
			return nil, fmt.Errorf("cypher example %d has no query", i)
		}
	}
	for i, ex := range set.QA {
		if ex.Question == "" || ex.Response == "" {
			return nil, fmt.Errorf("qa example %d needs a question and a response", i)
		}
	}

	if len(set.Cypher) == 0 {
		set.Cypher = DefaultCypherExamples()
	}
	if len(set.QA) == 0 {
		set.QA = DefaultQAExamples()
	}
	return &set, nil
}
