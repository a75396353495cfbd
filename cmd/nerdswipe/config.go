// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/nerdswipe/internal/secrets"
	"github.com/pdiddy/nerdswipe/pkg/types"
)

// envKeyReplacer maps nested keys to env names: recommender.base_url is
// read from NERDSWIPE_RECOMMENDER_BASE_URL.
var envKeyReplacer = strings.NewReplacer(".", "_")

func setDefaults() {
	viper.SetDefault("reader.output_files", []string{"wikipedia.jsonl"})
	viper.SetDefault("reader.record_types", []string{string(types.RecordWikipedia)})
	viper.SetDefault("store.max_results", 20)
	viper.SetDefault("recommender.max_retries", 5)
	viper.SetDefault("recommender.requests_per_minute", 60)
	viper.SetDefault("recommender.timeout", 60*time.Second)
	viper.SetDefault("recommender.user_agent", "nerdswipe/"+version)
	viper.SetDefault("server.addr", "127.0.0.1:8080")
}

// loadConfig assembles the component configuration from viper. data_dir
// applies to both the reader and the store unless they set their own.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}

	dataDir := viper.GetString("data_dir")
	if cfg.Reader.DataDir == "" {
		cfg.Reader.DataDir = dataDir
	}
	if cfg.Store.DataDir == "" {
		cfg.Store.DataDir = dataDir
	}
	if cfg.Recommender.APIKey == "" {
		cfg.Recommender.APIKey = loadedSecrets.Get(secrets.OpenAIAPIKey)
	}
	return cfg, nil
}
