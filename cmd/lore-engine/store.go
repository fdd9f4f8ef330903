// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/lore-engine/internal/dataset"
	"github.com/pdiddy/lore-engine/internal/store"
	"github.com/pdiddy/lore-engine/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the character index (ingest, query, export)",
	Long: `Store manages a local SQLite index of character records with full-text
search over names and descriptions. Use subcommands to ingest a dataset,
query the index, or export it.`,
}

// --- ingest subcommand ---

var storeIngestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Index a cleaned dataset",
	Long: `Ingest reads a dataset (default data/characters_clean.json) and indexes
its records. Records unchanged since the last run are skipped.`,
	RunE: runStoreIngest,
}

func runStoreIngest(cmd *cobra.Command, args []string) error {
	in := flagOr(cmd, "in", dataPath(appCfg, cleanDatasetFile))
	d, err := dataset.Read(in)
	if err != nil {
		return err
	}

	s, err := store.NewStore(appCfg.Store)
	if err != nil {
		return err
	}
	defer s.Close()

	summary, err := s.Ingest(cmd.Context(), d.Characters, os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d character(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- query subcommand ---

var storeQueryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Search the index with full-text search and filters",
	Long: `Query searches names and descriptions with FTS5 full-text search,
filters on race, plane, status, color, or planeswalker flag, or combines
both.`,
	RunE: runStoreQuery,
}

func runStoreQuery(cmd *cobra.Command, args []string) error {
	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide search text, --race, --plane, --status, --color, or --planeswalker")
	}

	s, err := store.NewStore(appCfg.Store)
	if err != nil {
		return err
	}
	defer s.Close()

	results, err := s.Query(cmd.Context(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatQueryOutput(results, jsonOutput)
}

func formatQueryOutput(results []types.CharacterRecord, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-24s  %-12s  %-14s  %-10s  %s\n",
		"Rank", "Name", "Race", "Plane", "Status", "Colors")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))

	for i, r := range results {
		status := string(r.Status)
		if status == "" {
			status = "Unknown"
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-24s  %-12s  %-14s  %-10s  %s\n",
			i+1, clip(r.Name, 24), clip(r.Race, 12), clip(r.Plane, 14), status, strings.Join(r.Colors, ", "))
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- export subcommand ---

var storeExportCmd = &cobra.Command{
	Use:   "export [text]",
	Short: "Export the index to YAML or JSON",
	Long: `Export writes the full index (or a filtered subset) to
index/export.yaml or export.json. Supports the same filter flags as query.`,
	RunE: runStoreExport,
}

func runStoreExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	s, err := store.NewStore(appCfg.Store)
	if err != nil {
		return err
	}
	defer s.Close()

	opts := queryOptsFromFlags(cmd, args)

	var path string
	switch format {
	case "yaml", "":
		path, err = s.ExportYAML(cmd.Context(), opts)
	case "json":
		path, err = s.ExportJSON(cmd.Context(), opts)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Println("Exported to", path)
	return nil
}

// --- shared helpers ---

func queryOptsFromFlags(cmd *cobra.Command, args []string) store.QueryOptions {
	queryText := strings.Join(args, " ")
	race, _ := cmd.Flags().GetString("race")
	plane, _ := cmd.Flags().GetString("plane")
	status, _ := cmd.Flags().GetString("status")
	color, _ := cmd.Flags().GetString("color")
	limit, _ := cmd.Flags().GetInt("limit")

	opts := store.QueryOptions{
		Query:      queryText,
		Race:       race,
		Plane:      plane,
		Status:     status,
		Color:      color,
		MaxResults: limit,
	}
	if cmd.Flags().Changed("planeswalker") {
		pw, _ := cmd.Flags().GetBool("planeswalker")
		opts.Planeswalker = &pw
	}
	return opts
}

// clip shortens s to n runes for table output.
func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("race", "", "filter by race")
	cmd.Flags().String("plane", "", "filter by home plane")
	cmd.Flags().String("status", "", "filter by status: Alive, Deceased, Compleated")
	cmd.Flags().String("color", "", "filter by color")
	cmd.Flags().Bool("planeswalker", false, "filter by planeswalker flag (--planeswalker=false for non-planeswalkers)")
}

func init() {
	storeCmd.PersistentFlags().String("index-dir", "", "index directory (default data/index)")
	storeCmd.PersistentFlags().Int("max-results", 0, "default maximum number of query results (default 20)")

	storeIngestCmd.Flags().String("in", "", "dataset to index (default data/characters_clean.json)")

	addFilterFlags(storeQueryCmd)
	storeQueryCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	storeQueryCmd.Flags().Bool("json", false, "output results as JSON")

	addFilterFlags(storeExportCmd)
	storeExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	storeCmd.AddCommand(storeIngestCmd)
	storeCmd.AddCommand(storeQueryCmd)
	storeCmd.AddCommand(storeExportCmd)

	rootCmd.AddCommand(storeCmd)
}
