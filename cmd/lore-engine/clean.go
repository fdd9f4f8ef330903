// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/lore-engine/internal/dataset"
	"github.com/pdiddy/lore-engine/internal/logger"
)

const (
	cleanDatasetFile = "characters_clean.json"
	cleanSampleFile  = "characters_clean_sample.json"
	defaultSample    = 50
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Repair previously scraped records",
	Long: `Clean runs the repair pass over a dataset: descriptions that are still
template text are replaced, attributes are re-inferred, and list fields are
cleaned and bounded. Older scrape formats are accepted. Cleaning an already
clean dataset changes nothing.

Writes data/characters_clean.json and a sample of the first records by name
to data/characters_clean_sample.json.`,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().String("in", "", "input dataset (default data/raw/characters.json)")
	cleanCmd.Flags().String("out", "", "output dataset (default data/characters_clean.json)")
	cleanCmd.Flags().String("sample-out", "", "sample file (default data/characters_clean_sample.json)")
	cleanCmd.Flags().Int("sample", defaultSample, "records in the sample file (0 = no sample)")
	cleanCmd.Flags().Int("workers", 0, "worker pool size (default NumCPU)")
	cleanCmd.Flags().String("vocabulary", "", "YAML vocabulary override file")

	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	cfg := appCfg
	in := flagOr(cmd, "in", dataPath(cfg, rawDatasetFile))
	out := flagOr(cmd, "out", dataPath(cfg, cleanDatasetFile))
	sampleOut := flagOr(cmd, "sample-out", dataPath(cfg, cleanSampleFile))
	sampleSize, _ := cmd.Flags().GetInt("sample")

	stored, err := dataset.Load(in)
	if err != nil {
		return err
	}

	rec, err := newReconciler(cfg)
	if err != nil {
		return err
	}

	records, summary, err := rec.RepairAll(cmd.Context(), stored.Characters, cfg.Extraction.Workers, os.Stdout)
	if err != nil {
		return err
	}

	d := dataset.New(time.Now())
	d.Characters = records
	d.Metadata.FailedPages = stored.Metadata.FailedPages
	if stored.Metadata.Source != "" {
		d.Metadata.Source = stored.Metadata.Source
	}
	if err := dataset.Write(out, d); err != nil {
		return err
	}
	if sampleSize > 0 {
		if err := dataset.Write(sampleOut, d.Sample(sampleSize)); err != nil {
			return err
		}
	}

	appLog.Info("repair finished", logger.String("in", in), logger.String("out", out), logger.Int("cleaned", summary.Processed))
	fmt.Printf("\ncleaned: %d, failed: %d\nwrote %s\n", summary.Processed, summary.Failed, out)
	if summary.HasFailures() {
		return fmt.Errorf("%d record(s) failed repair", summary.Failed)
	}
	return nil
}
