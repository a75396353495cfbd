// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/nerdswipe/internal/metrics"
	"github.com/pdiddy/nerdswipe/internal/reader"
	"github.com/pdiddy/nerdswipe/internal/store"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load record dumps into the knowledge base",
	Long: `Ingest reads every configured dump (reader.output_files under data_dir,
filtered by reader.record_types), normalizes the records into articles, and
upserts them into the SQLite knowledge base at data_dir/index/nerdswipe.db.

Re-ingesting unchanged articles is a no-op; changed articles are updated in
place and keep their ingest position.`,
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	readers, err := reader.CreateReaders(cfg.Reader, logger)
	if err != nil {
		return err
	}
	if len(readers) == 0 {
		return fmt.Errorf("no dump files match record types %v", cfg.Reader.RecordTypes)
	}

	articles, err := reader.NewAllSourceReader(readers...).Read(ctx)
	if err != nil {
		return err
	}

	st, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	source := strings.Join(cfg.Reader.OutputFiles, ",")
	var progress store.Progress
	if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
		progress = progressbar.Default(int64(len(articles)), "ingesting")
	}

	summary, err := st.Ingest(ctx, source, articles, progress)
	if err != nil {
		return err
	}
	metrics.RecordIngest(summary.Inserted, summary.Updated, summary.Unchanged)
	logger.Info("ingest finished",
		zap.String("run_id", summary.RunID),
		zap.Int("inserted", summary.Inserted),
		zap.Int("updated", summary.Updated),
		zap.Int("unchanged", summary.Unchanged))

	store.WriteSummary(cmd.OutOrStdout(), source, summary)
	return nil
}

func init() {
	ingestCmd.Flags().Bool("quiet", false, "disable the progress bar")

	rootCmd.AddCommand(ingestCmd)
}
