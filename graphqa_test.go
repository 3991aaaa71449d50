package graphqa

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/soundprediction/graphqa/pkg/driver"
	"github.com/soundprediction/graphqa/pkg/loader"
	"github.com/soundprediction/graphqa/pkg/nlp"
	"github.com/soundprediction/graphqa/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// events records the order in which collaborators are called.
type events struct {
	log []string
}

func (e *events) add(name string) { e.log = append(e.log, name) }

type mockLLM struct {
	events    *events
	responses []string
	prompts   []string
	closed    bool
}

func (m *mockLLM) Chat(_ context.Context, messages []types.Message) (*types.Response, error) {
	prompt := messages[len(messages)-1].Content
	m.prompts = append(m.prompts, prompt)
	if strings.Contains(prompt, "Cypher query:") {
		m.events.add("llm:cypher")
	} else {
		m.events.add("llm:qa")
	}
	if len(m.responses) == 0 {
		return nil, fmt.Errorf("unexpected call %d", len(m.prompts))
	}
	content := m.responses[0]
	m.responses = m.responses[1:]
	return &types.Response{Content: content}, nil
}

func (m *mockLLM) ChatWithStructuredOutput(ctx context.Context, messages []types.Message, _ any) (*types.Response, error) {
	m.events.add("llm:structured")
	return nil, errors.New("structured output not scripted")
}

func (m *mockLLM) Close() error {
	m.closed = true
	return nil
}

type mockExtractor struct {
	events *events
	output []types.GraphDocument
	err    error
	inputs []types.Document
}

func (m *mockExtractor) ConvertToGraphDocuments(_ context.Context, docs []types.Document) ([]types.GraphDocument, error) {
	m.events.add("extract")
	m.inputs = append(m.inputs, docs...)
	if m.err != nil {
		return nil, m.err
	}
	return m.output, nil
}

type mockStore struct {
	events  *events
	loaded  []types.GraphDocument
	opts    *driver.AddOptions
	schema  *driver.StructuredSchema
	rows    []map[string]any
	queries []string
	closed  bool
}

func (m *mockStore) AddGraphDocuments(_ context.Context, docs []types.GraphDocument, opts *driver.AddOptions) error {
	m.events.add("add")
	m.loaded = docs
	m.opts = opts
	return nil
}

func (m *mockStore) RefreshSchema(context.Context) error {
	m.events.add("refresh")
	m.schema = &driver.StructuredSchema{
		NodeProps: map[string][]driver.Property{
			"Person": {{Name: "id", Type: "STRING"}},
			"Title":  {{Name: "id", Type: "STRING"}},
		},
		RelProps: map[string][]driver.Property{},
		Relationships: []driver.RelationshipPattern{
			{Start: "Person", Type: "TITLE", End: "Title"},
		},
	}
	return nil
}

func (m *mockStore) Schema() string { return driver.FormatSchema(m.schema) }

func (m *mockStore) StructuredSchema() *driver.StructuredSchema { return m.schema }

func (m *mockStore) Query(_ context.Context, cypher string, _ map[string]any) ([]map[string]any, error) {
	m.events.add("query")
	m.queries = append(m.queries, cypher)
	return m.rows, nil
}

func (m *mockStore) Close(context.Context) error {
	m.closed = true
	return nil
}

func johnGraphDocument(source types.Document) types.GraphDocument {
	john := types.NewNode("John", "Person")
	director := types.NewNode("Director", "Title")
	doc := types.NewGraphDocument(source)
	doc.AddNode(john)
	doc.AddNode(director)
	doc.AddRelationship(types.NewRelationship(john, director, "TITLE"))
	return doc
}

func newTestPipeline(t *testing.T, questions ...string) (*Pipeline, *events, *mockLLM, *mockStore, *mockExtractor) {
	t.Helper()
	ev := &events{}
	source := types.NewDocument("John's title is Director of the Digital Marketing Group.")
	llm := &mockLLM{events: ev}
	store := &mockStore{events: ev, rows: []map[string]any{{"t.id": "Director"}}}
	extractor := &mockExtractor{events: ev, output: []types.GraphDocument{johnGraphDocument(source)}}

	cfg := DefaultConfig()
	cfg.Questions = questions
	p, err := NewPipeline(llm, store, extractor, cfg, nil)
	require.NoError(t, err)
	return p, ev, llm, store, extractor
}

func TestRunOrder(t *testing.T) {
	p, ev, llm, store, _ := newTestPipeline(t, "What is John's title?")
	llm.responses = []string{
		"MATCH (p:Person {id: 'John'})-[:TITLE]->(t:Title) RETURN t.id",
		"John's title is Director.",
	}

	result, err := p.Run(context.Background(), []types.Document{types.NewDocument("text")})
	require.NoError(t, err)

	assert.Equal(t, []string{"extract", "add", "refresh", "llm:cypher", "query", "llm:qa"}, ev.log)
	require.Len(t, result.Answers, 1)
	assert.Equal(t, "John's title is Director.", result.Answers[0].Answer)
	assert.Equal(t, store.Schema(), result.Schema)
	assert.Equal(t, []string{"MATCH (p:Person {id: 'John'})-[:TITLE]->(t:Title) RETURN t.id"}, store.queries)
}

func TestIngestPassesGraphUnmodified(t *testing.T) {
	p, _, _, store, extractor := newTestPipeline(t, "q")

	result, err := p.Ingest(context.Background(), []types.Document{types.NewDocument("text")})
	require.NoError(t, err)

	assert.Equal(t, extractor.output, store.loaded)
	assert.Equal(t, extractor.output, result.GraphDocuments)
	require.NotNil(t, store.opts)
	assert.False(t, store.opts.IncludeSource)
	assert.Contains(t, result.Schema, "(:Person)-[:TITLE]->(:Title)")
}

func TestIngestJohnDirector(t *testing.T) {
	p, _, _, store, extractor := newTestPipeline(t, "q")
	docs, err := loader.FromText("John's title is Director of the Digital Marketing Group.")
	require.NoError(t, err)

	_, err = p.Ingest(context.Background(), docs)
	require.NoError(t, err)

	require.Len(t, extractor.inputs, 1)
	require.Len(t, store.loaded, 1)
	loaded := store.loaded[0]
	assert.Equal(t, []string{"Person", "Title"}, loaded.Labels())
	require.Len(t, loaded.Relationships, 1)
	rel := loaded.Relationships[0]
	assert.Equal(t, "John", rel.Source.ID)
	assert.Equal(t, "TITLE", rel.Type)
	assert.Equal(t, "Director", rel.Target.ID)
}

func TestIngestExtractionFailureStops(t *testing.T) {
	p, ev, _, _, extractor := newTestPipeline(t, "q")
	extractor.err = errors.New("model unavailable")

	_, err := p.Ingest(context.Background(), loader.Demo())
	require.Error(t, err)
	assert.ErrorIs(t, err, extractor.err)
	assert.Equal(t, []string{"extract"}, ev.log)
}

func TestIngestSchemaAvailableBeforeAsk(t *testing.T) {
	p, ev, llm, _, _ := newTestPipeline(t, "What is John's title?")
	assert.Equal(t, []string{"What is John's title?"}, p.Questions())

	ingested, err := p.Ingest(context.Background(), loader.Demo())
	require.NoError(t, err)
	assert.Contains(t, ingested.Schema, "(:Person)-[:TITLE]->(:Title)")
	assert.Equal(t, []string{"extract", "add", "refresh"}, ev.log)
	assert.Empty(t, llm.prompts)
}

func TestRunWithoutQuestions(t *testing.T) {
	p, ev, _, _, _ := newTestPipeline(t)

	_, err := p.Run(context.Background(), loader.Demo())
	assert.ErrorIs(t, err, ErrNoQuestions)
	assert.Empty(t, ev.log)
}

func TestAskPromptContents(t *testing.T) {
	p, _, llm, store, _ := newTestPipeline(t, "q")
	require.NoError(t, store.RefreshSchema(context.Background()))
	llm.responses = []string{"MATCH (t:Title) RETURN t.id", "Director."}

	_, err := p.Ask(context.Background(), "What is John's title?")
	require.NoError(t, err)
	require.Len(t, llm.prompts, 2)

	cypherPrompt := llm.prompts[0]
	schemaAt := strings.Index(cypherPrompt, "Node properties:")
	questionAt := strings.LastIndex(cypherPrompt, "What is John's title?")
	require.GreaterOrEqual(t, schemaAt, 0)
	for _, example := range []string{"Charles", "Paul", "Rico"} {
		at := strings.Index(cypherPrompt, example)
		assert.Greater(t, at, schemaAt, example)
		assert.Less(t, at, questionAt, example)
	}

	qaPrompt := llm.prompts[1]
	assert.Contains(t, qaPrompt, "What is John's title?")
	assert.Contains(t, qaPrompt, `"t.id":"Director"`)
}

func TestOpenDatabaseFailure(t *testing.T) {
	llmCreated := false
	open := func(context.Context) (driver.GraphStore, error) {
		return nil, errors.New("connection refused")
	}
	newLLM := func() (nlp.Client, error) {
		llmCreated = true
		return &mockLLM{events: &events{}}, nil
	}

	p, err := Open(context.Background(), open, newLLM, nil, nil)
	require.Error(t, err)
	assert.Nil(t, p)
	assert.False(t, llmCreated)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestOpenLLMFailureClosesDatabase(t *testing.T) {
	store := &mockStore{events: &events{}}
	open := func(context.Context) (driver.GraphStore, error) { return store, nil }
	newLLM := func() (nlp.Client, error) { return nil, errors.New("no api key") }

	_, err := Open(context.Background(), open, newLLM, nil, nil)
	require.Error(t, err)
	assert.True(t, store.closed)
}

func TestOpenAndClose(t *testing.T) {
	ev := &events{}
	store := &mockStore{events: ev}
	llm := &mockLLM{events: ev}
	open := func(context.Context) (driver.GraphStore, error) { return store, nil }
	newLLM := func() (nlp.Client, error) { return llm, nil }

	p, err := Open(context.Background(), open, newLLM, nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, p.Chain())
	assert.Same(t, store, p.Graph())

	require.NoError(t, p.Close(context.Background()))
	assert.True(t, store.closed)
	assert.True(t, llm.closed)
	assert.Empty(t, ev.log)
}

func TestNewPipelineRequiresCollaborators(t *testing.T) {
	ev := &events{}
	llm := &mockLLM{events: ev}
	store := &mockStore{events: ev}
	extractor := &mockExtractor{events: ev}

	_, err := NewPipeline(nil, store, extractor, nil, nil)
	assert.Error(t, err)
	_, err = NewPipeline(llm, nil, extractor, nil, nil)
	assert.Error(t, err)
	_, err = NewPipeline(llm, store, nil, nil, nil)
	assert.Error(t, err)

	cfg := DefaultConfig()
	cfg.Chain.AllowDangerousRequests = false
	_, err = NewPipeline(llm, store, extractor, cfg, nil)
	assert.Error(t, err)
}
