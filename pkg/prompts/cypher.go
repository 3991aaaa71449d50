package prompts

// CypherGenerationPrefix instructs the model to answer with a single query.
const CypherGenerationPrefix = `Task: Generate a Cypher statement to query a graph database strictly based on the schema and instructions provided.

Instructions:
- Respond with ONE and ONLY ONE query.
- Use provided node and relationship labels and property names from the schema.
- Generate a valid executable Cypher query for the Neo4j database.
- Do not include explanations, context, or any text outside the query.
- Do not include output labels or comments.
- Do not include multiple questions or queries.

Here is the schema information:

{schema}

With all the above information and instructions, generate Cypher query for the following question:

The question is:
`

// CypherGenerationSuffix closes the prompt with the user question.
const CypherGenerationSuffix = "{question}\nCypher query:"

// CypherExampleTemplate renders one example. Only the query is shown.
const CypherExampleTemplate = "{query}"

// CypherExample pairs a question with the query that answers it.
type CypherExample struct {
	Question string `json:"question" yaml:"question"`
	Query    string `json:"query" yaml:"query"`
}

// DefaultCypherExamples returns the built-in query examples. Their labels
// match the default extraction allow-lists.
func DefaultCypherExamples() []CypherExample {
	return []CypherExample{
		{
			Question: "What group is Charles in?",
			Query:    "MATCH (p:Person {id: 'Charles'})-[:GROUP]->(g:Group) RETURN g.id",
		},
		{
			Question: "Who does Paul work with?",
			Query:    "MATCH (a:Person {id: 'Paul'})-[:COLLABORATES]->(p:Person) RETURN p.id",
		},
		{
			Question: "What title does Rico have?",
			Query:    "MATCH (p:Person {id: 'Rico'})-[:TITLE]->(t:Title) RETURN t.id",
		},
	}
}

// NewCypherPrompt builds the query generation prompt. It requires the
// schema and question variables.
func NewCypherPrompt(examples []CypherExample) *FewShotPromptTemplate {
	rows := make([]map[string]string, 0, len(examples))
	for _, ex := range examples {
		rows = append(rows, map[string]string{"question": ex.Question, "query": ex.Query})
	}
	return NewFewShotPromptTemplate(CypherGenerationPrefix, rows, CypherExampleTemplate, CypherGenerationSuffix)
}
