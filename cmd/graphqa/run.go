package graphqa

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	qa "github.com/soundprediction/graphqa"
	"github.com/soundprediction/graphqa/pkg/chain"
	"github.com/soundprediction/graphqa/pkg/loader"
	"github.com/soundprediction/graphqa/pkg/types"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Extract a graph from text, load it and answer questions",
	Long: `Run extracts a knowledge graph from the input text (the built-in demo text by
default), merges it into Neo4j, prints the refreshed schema and answers each
question in turn.`,
	RunE: runPipeline,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("input", "i", "", "text or PDF file to extract from (default: built-in demo text)")
	runCmd.Flags().StringArrayP("question", "q", nil, "question to ask (repeatable, default: demo questions)")
	runCmd.Flags().Bool("json", false, "print the result as JSON")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	input, _ := cmd.Flags().GetString("input")
	questions, _ := cmd.Flags().GetStringArray("question")
	asJSON, _ := cmd.Flags().GetBool("json")

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	docs := loader.Demo()
	if input != "" {
		if docs, err = loader.LoadFile(input); err != nil {
			return err
		}
	}

	pipeline, tracker, err := openPipeline(ctx, cfg, log, questions)
	if err != nil {
		return err
	}
	defer pipeline.Close(ctx)
	defer logUsage(log, tracker)

	return streamRun(ctx, pipeline, docs, cmd.OutOrStdout(), asJSON)
}

// questionAnswerer is the part of a pipeline the run command drives.
type questionAnswerer interface {
	Questions() []string
	Ingest(ctx context.Context, docs []types.Document) (*qa.IngestResult, error)
	Ask(ctx context.Context, question string) (*chain.Result, error)
}

// streamRun prints the extracted graph and the refreshed schema as soon as
// ingestion finishes, then each answer as it arrives. With asJSON the whole
// result is encoded once at the end.
func streamRun(ctx context.Context, p questionAnswerer, docs []types.Document, out io.Writer, asJSON bool) error {
	questions := p.Questions()
	if len(questions) == 0 {
		return qa.ErrNoQuestions
	}

	ingested, err := p.Ingest(ctx, docs)
	if err != nil {
		return err
	}
	result := &qa.Result{
		GraphDocuments: ingested.GraphDocuments,
		Schema:         ingested.Schema,
		Answers:        make([]*chain.Result, 0, len(questions)),
	}
	if !asJSON {
		printGraphDocuments(out, ingested.GraphDocuments)
		fmt.Fprintln(out, ingested.Schema)
	}

	for _, question := range questions {
		answer, err := p.Ask(ctx, question)
		if err != nil {
			return err
		}
		result.Answers = append(result.Answers, answer)
		if !asJSON {
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Q: %s\n", answer.Question)
			fmt.Fprintf(out, "Cypher: %s\n", answer.Query)
			fmt.Fprintf(out, "A: %s\n", answer.Answer)
		}
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	return nil
}

func printGraphDocuments(out io.Writer, docs []types.GraphDocument) {
	for _, doc := range docs {
		fmt.Fprintf(out, "Nodes: %d\n", doc.NodeCount())
		for _, node := range doc.Nodes {
			fmt.Fprintf(out, "  (%s:%s)\n", node.ID, node.Type)
		}
		fmt.Fprintf(out, "Relationships: %d\n", doc.RelationshipCount())
		for _, rel := range doc.Relationships {
			fmt.Fprintf(out, "  %s\n", rel.String())
		}
	}
	fmt.Fprintln(out)
}
