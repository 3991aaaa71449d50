package graphqa

import (
	"fmt"

	"github.com/soundprediction/graphqa/pkg/driver"
	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Refresh and print the graph schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		filtered, _ := cmd.Flags().GetBool("filtered")

		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}

		graph, err := openGraph(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer graph.Close(ctx)

		if err := graph.RefreshSchema(ctx); err != nil {
			return err
		}

		schema := graph.Schema()
		if filtered {
			schema = driver.FormatSchema(driver.FilterSchema(graph.StructuredSchema(), cfg.Chain.IncludeTypes, cfg.Chain.ExcludeTypes))
		}
		fmt.Fprintln(cmd.OutOrStdout(), schema)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.Flags().Bool("filtered", false, "apply chain.include_types/exclude_types as the query prompt does")
}
