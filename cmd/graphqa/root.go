package graphqa

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "graphqa",
		Short: "GraphQA: knowledge graph question answering",
		Long: `GraphQA extracts a knowledge graph from text with a language model,
loads it into Neo4j and answers questions about it with generated Cypher.

Connection settings come from flags, environment variables (NEO4J_URI,
NEO4J_USERNAME, NEO4J_PASSWORD, OPENAI_API_KEY), a .env file or the config file.`,
		SilenceUsage: true,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.graphqa.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	rootCmd.PersistentFlags().String("neo4j-uri", "", "Neo4j connection URI")
	rootCmd.PersistentFlags().String("neo4j-username", "", "Neo4j username")
	rootCmd.PersistentFlags().String("neo4j-password", "", "Neo4j password")
	rootCmd.PersistentFlags().String("neo4j-database", "", "Neo4j database name")
	rootCmd.PersistentFlags().String("model", "", "language model name")
	rootCmd.PersistentFlags().String("base-url", "", "OpenAI-compatible API base URL")
	rootCmd.PersistentFlags().String("examples", "", "YAML file replacing the built-in few-shot examples")

	// Bind flags to viper
	bindFlag("log.level", "log-level")
	bindFlag("log.format", "log-format")
	bindFlag("database.uri", "neo4j-uri")
	bindFlag("database.username", "neo4j-username")
	bindFlag("database.password", "neo4j-password")
	bindFlag("database.database", "neo4j-database")
	bindFlag("llm.model", "model")
	bindFlag("llm.base_url", "base-url")
	bindFlag("chain.examples_file", "examples")
}

func bindFlag(key, flag string) {
	cobra.CheckErr(viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".graphqa" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".graphqa")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
