// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/nerdswipe/internal/jsonl"
)

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Print the record payloads of a JSONL dump",
	Long: `Extract reads a JSONL dump (a file, or stdin when the file is "-" or
omitted) and prints the payload of every RECORD line as compact JSON, one per
line, in input order. SCHEMA, STATE, and other lines are ignored.

A single malformed line fails the whole run and nothing is printed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	tag, _ := cmd.Flags().GetString("type")

	var (
		blob []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		blob, err = io.ReadAll(cmd.InOrStdin())
	} else {
		blob, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	payloads, err := jsonl.ExtractType(string(blob), tag)
	if err != nil {
		var mle *jsonl.MalformedLineError
		if errors.As(err, &mle) {
			logger.Error("malformed dump", zap.Int("line", mle.Line), zap.Error(mle.Err))
		}
		return err
	}

	w := bufio.NewWriter(cmd.OutOrStdout())
	for _, p := range payloads {
		fmt.Fprintln(w, p)
	}
	logger.Debug("extracted payloads", zap.Int("count", len(payloads)), zap.String("type", tag))
	return w.Flush()
}

func init() {
	extractCmd.Flags().String("type", jsonl.TypeRecord, "line type whose payloads are printed")

	rootCmd.AddCommand(extractCmd)
}
