package prompts

// QATemplate asks the model to phrase an answer from query results.
const QATemplate = `
Use the provided question and context to create an answer.

Question: {question}

Context: {context}

Use only names, departments, or titles contained within {question} and {context}.
`

// QAExampleTemplate renders one question/context/answer example.
const QAExampleTemplate = "Question: {question}\nContext: {context}\nAnswer: {response}"

// QAExample shows the model how a context maps to an answer.
type QAExample struct {
	Question string `json:"question" yaml:"question"`
	Context  string `json:"context" yaml:"context"`
	Response string `json:"response" yaml:"response"`
}

// DefaultQAExamples returns the built-in answer examples.
func DefaultQAExamples() []QAExample {
	return []QAExample{
		{
			Question: "What group is Charles in?",
			Context:  "[{'g.id': 'Executive Group'}]",
			Response: "Charles is in the Executive Group",
		},
		{
			Question: "Who does Paul work with?",
			Context:  "[{'p.id': 'Greg'}, {'p2.id': 'Norma'}]",
			Response: "Paul works with Greg and Norma",
		},
		{
			Question: "What title does Rico have?",
			Context:  "[{'t.id': 'Vice President of Sales'}]",
			Response: "Vice President of Sales",
		},
	}
}

// NewQAPrompt builds the answer prompt. It requires the question and
// context variables.
func NewQAPrompt(examples []QAExample) *FewShotPromptTemplate {
	rows := make([]map[string]string, 0, len(examples))
	for _, ex := range examples {
		rows = append(rows, map[string]string{
			"question": ex.Question,
			"context":  ex.Context,
			"response": ex.Response,
		})
	}
	return NewFewShotPromptTemplate(QATemplate, rows, QAExampleTemplate, "")
}
