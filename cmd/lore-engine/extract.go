// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/lore-engine/internal/dataset"
	"github.com/pdiddy/lore-engine/internal/extract"
	"github.com/pdiddy/lore-engine/internal/infer"
	"github.com/pdiddy/lore-engine/internal/vocab"
	"github.com/pdiddy/lore-engine/pkg/types"
)

const extractedDatasetFile = "characters.json"

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Re-run extraction over a dataset that kept raw markup",
	Long: `Extract rebuilds every record that retained its raw page markup, using
the current extraction rules, without contacting the wiki. Records without
raw markup are left out; use clean for those.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().String("in", "", "input dataset (default data/raw/characters.json)")
	extractCmd.Flags().String("out", "", "output dataset (default data/characters.json)")
	extractCmd.Flags().Int("workers", 0, "worker pool size (default NumCPU)")
	extractCmd.Flags().String("vocabulary", "", "YAML vocabulary override file")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := appCfg
	in := flagOr(cmd, "in", dataPath(cfg, rawDatasetFile))
	out := flagOr(cmd, "out", dataPath(cfg, extractedDatasetFile))

	inputs, err := dataset.LoadInputs(in)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("%s: no records kept raw markup", in)
	}

	rec, err := newReconciler(cfg)
	if err != nil {
		return err
	}

	records, summary, err := rec.ExtractAll(cmd.Context(), inputs, cfg.Extraction.Workers, os.Stdout)
	if err != nil {
		return err
	}

	d := dataset.New(time.Now())
	d.Characters = records
	if err := dataset.Write(out, d); err != nil {
		return err
	}

	fmt.Printf("\nextracted: %d, skipped: %d, failed: %d\nwrote %s\n",
		summary.Processed, summary.Skipped, summary.Failed, out)
	if summary.HasFailures() {
		return fmt.Errorf("%d record(s) failed extraction", summary.Failed)
	}
	return nil
}

// newReconciler builds a Reconciler from the configured vocabulary and
// list limits.
func newReconciler(cfg types.PipelineConfig) (*extract.Reconciler, error) {
	v, err := vocab.Load(cfg.Extraction.VocabularyFile)
	if err != nil {
		return nil, err
	}
	return extract.NewReconciler(infer.New(v), cfg.Extraction), nil
}

// flagOr returns the string flag name, or fallback when it is empty.
func flagOr(cmd *cobra.Command, name, fallback string) string {
	if v, _ := cmd.Flags().GetString(name); v != "" {
		return v
	}
	return fallback
}
