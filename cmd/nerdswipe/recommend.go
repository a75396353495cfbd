// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/nerdswipe/internal/antirecommend"
	"github.com/pdiddy/nerdswipe/internal/engine"
	"github.com/pdiddy/nerdswipe/internal/reader"
	"github.com/pdiddy/nerdswipe/internal/store"
	"github.com/pdiddy/nerdswipe/pkg/types"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend <key>",
	Short: "Generate anti-recommendations for one article",
	Long: `Recommend asks the configured anti-recommender (recommender.type) for
articles that are dissimilar to, yet surprisingly related to, the given
article. The key is a record key or title; spaces become underscores.

Each anti-recommendation is marked with whether a record exists for it.
Before the first ingest, records are read straight from the dumps.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecommend,
}

func runRecommend(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	st, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	source, keys, err := recordSource(ctx, cfg, st)
	if err != nil {
		return err
	}
	rec, err := antirecommend.New(cfg.Recommender, keys, logger)
	if err != nil {
		return err
	}

	key := types.RecordKey(args[0])
	recs, err := rec.Generate(ctx, key)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		if recs == nil {
			recs = []types.AntiRecommendation{}
		}
		return writeValue(cmd.OutOrStdout(), recs, true)
	}

	w := cmd.OutOrStdout()
	if len(recs) == 0 {
		fmt.Fprintf(w, "No anti-recommendations for %s.\n", key)
		return nil
	}
	for i, r := range recs {
		_, known, err := source.Lookup(ctx, r.Key)
		if err != nil {
			return err
		}
		mark := " "
		if known {
			mark = "*"
		}
		fmt.Fprintf(w, "%2d %s %-40s %s\n", i+1, mark, r.Key, r.URL)
	}
	fmt.Fprintln(w, "\n* record available")
	return nil
}

// newRecommender builds the configured backend over the stored keys.
func newRecommender(ctx context.Context, cfg types.RecommenderConfig, st *store.Store) (antirecommend.AntiRecommender, error) {
	keys, err := st.Keys(ctx)
	if err != nil {
		return nil, err
	}
	return antirecommend.New(cfg, keys, logger)
}

// recordSource returns the store, or an in-memory index of the dumps when
// nothing has been ingested yet, with its keys in order.
func recordSource(ctx context.Context, cfg types.Config, st *store.Store) (engine.RecordSource, []string, error) {
	n, err := st.Count(ctx)
	if err != nil {
		return nil, nil, err
	}
	if n > 0 {
		keys, err := st.Keys(ctx)
		return st, keys, err
	}

	readers, err := reader.CreateReaders(cfg.Reader, logger)
	if err != nil {
		return nil, nil, err
	}
	idx, err := reader.LoadIndex(ctx, reader.NewAllSourceReader(readers...))
	if err != nil {
		return nil, nil, err
	}
	logger.Info("knowledge base empty, using dumps", zap.Int("records", idx.Len()))
	return idx, idx.Keys(), nil
}

func init() {
	recommendCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(recommendCmd)
}
