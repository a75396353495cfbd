// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/nerdswipe/internal/store"
	"github.com/pdiddy/nerdswipe/pkg/types"
)

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Query the knowledge base (get, search, export)",
	Long: `Records reads the SQLite knowledge base built by ingest. Use
subcommands to show one article, search articles, or export them.`,
}

// --- get subcommand ---

var recordsGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Show one article by record key",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecordsGet,
}

func runRecordsGet(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	a, err := st.Get(cmd.Context(), types.RecordKey(args[0]))
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return writeValue(cmd.OutOrStdout(), a, jsonOutput)
}

// --- search subcommand ---

var recordsSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search articles by full text and category",
	Long: `Search matches the query against article titles and abstracts using
the FTS4 index, optionally restricted to a category. Results follow ingest
order.`,
	RunE: runRecordsSearch,
}

func runRecordsSearch(cmd *cobra.Command, args []string) error {
	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query or --category")
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	results, err := st.Search(cmd.Context(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		if results == nil {
			results = []types.Article{}
		}
		return writeValue(cmd.OutOrStdout(), results, true)
	}
	return formatSearchOutput(cmd.OutOrStdout(), results)
}

func formatSearchOutput(w io.Writer, results []types.Article) error {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}

	fmt.Fprintf(w, "%-4s  %-30s  %s\n", "Rank", "Key", "Abstract")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for i, a := range results {
		fmt.Fprintf(w, "%-4d  %-30s  %s\n", i+1, truncate(a.Key, 30), truncate(a.Abstract, 60))
	}

	fmt.Fprintf(w, "\n%d results\n", len(results))
	return nil
}

// --- export subcommand ---

var recordsExportCmd = &cobra.Command{
	Use:   "export [query]",
	Short: "Export the knowledge base to YAML or JSON",
	Long: `Export writes the knowledge base (or a filtered subset) to
data_dir/index/export.yaml or export.json. Supports the same filter flags as
search.`,
	RunE: runRecordsExport,
}

func runRecordsExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	opts := queryOptsFromFlags(cmd, args)

	var path string
	switch format {
	case "yaml", "":
		path, err = st.ExportYAML(cmd.Context(), opts)
	case "json":
		path, err = st.ExportJSON(cmd.Context(), opts)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Exported to", path)
	return nil
}

// --- shared helpers ---

func openStore() (*store.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return store.NewStore(cfg.Store)
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) store.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}
	category, _ := cmd.Flags().GetString("category")
	limit, _ := cmd.Flags().GetInt("limit")

	return store.QueryOptions{
		Query:      queryText,
		Category:   category,
		MaxResults: limit,
	}
}

func writeValue(w io.Writer, v any, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	recordsGetCmd.Flags().Bool("json", false, "output as JSON instead of YAML")

	for _, c := range []*cobra.Command{recordsSearchCmd, recordsExportCmd} {
		c.Flags().String("query", "", "full-text search query")
		c.Flags().String("category", "", "filter by category text")
	}
	recordsSearchCmd.Flags().Int("limit", 0, "maximum results (0 = use store.max_results)")
	recordsSearchCmd.Flags().Bool("json", false, "output results as JSON")

	recordsExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	recordsExportCmd.Flags().Int("limit", 0, "maximum articles to export (0 = all)")

	recordsCmd.AddCommand(recordsGetCmd)
	recordsCmd.AddCommand(recordsSearchCmd)
	recordsCmd.AddCommand(recordsExportCmd)
	rootCmd.AddCommand(recordsCmd)
}
