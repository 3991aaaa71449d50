package graphqa

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer questions over the graph already in the database",
	Long: `Ask answers one question given as arguments, or starts an interactive
prompt when none is given. Nothing is extracted or loaded.`,
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	pipeline, tracker, err := openPipeline(ctx, cfg, log, nil)
	if err != nil {
		return err
	}
	defer pipeline.Close(ctx)
	defer logUsage(log, tracker)

	if err := pipeline.Graph().RefreshSchema(ctx); err != nil {
		return err
	}

	if len(args) > 0 {
		result, err := pipeline.Ask(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintln(out, result.Answer)
		return nil
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "question> ",
		HistoryFile:     historyFile(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to open terminal: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		question := strings.TrimSpace(line)
		switch question {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		result, err := pipeline.Ask(ctx, question)
		if err != nil {
			log.Error("Question failed", "question", question, "error", err)
			continue
		}
		fmt.Fprintf(out, "Cypher: %s\n%s\n", result.Query, result.Answer)
	}
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".graphqa_history")
}
