// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the nerdswipe CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/nerdswipe/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// loadedSecrets holds API keys loaded from .secrets/ at startup.
	loadedSecrets secrets.Secrets

	logger  = zap.NewNop()
	verbose bool
)

// rootCmd is the base command for the nerdswipe CLI.
var rootCmd = &cobra.Command{
	Use:   "nerdswipe",
	Short: "Anti-recommendations over Wikipedia abstracts",
	Long: `nerdswipe reads JSONL record dumps of Wikipedia abstracts, indexes them in
a local SQLite knowledge base, and serves anti-recommendations: articles that
are dissimilar to a given article yet surprisingly related to it.

Use extract to inspect a dump, ingest to build the knowledge base, records to
query it, recommend for one-off generations, and serve for the HTTP API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := config.Build()
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		logger = l

		s, err := secrets.Load(".secrets/", logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug("loaded secrets", zap.Strings("keys", keys))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default: ./nerdswipe.yaml or ~/.config/nerdswipe/config.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flags.String("data-dir", "data", "directory holding record dumps and the index/ database")
	flags.String("recommender", "", "anti-recommender backend: openai or arkg")
	flags.String("model", "", "model identifier for the openai backend")
	flags.String("graph-file", "", "anti-recommendation graph (YAML) for the arkg backend")

	for key, flag := range map[string]string{
		"data_dir":               "data-dir",
		"recommender.type":       "recommender",
		"recommender.model":      "model",
		"recommender.graph_file": "graph-file",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}
	setDefaults()
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("nerdswipe")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "nerdswipe"))
		}
	}

	viper.SetEnvPrefix("NERDSWIPE")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
