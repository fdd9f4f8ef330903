// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/lore-engine/internal/dataset"
	"github.com/pdiddy/lore-engine/internal/logger"
	"github.com/pdiddy/lore-engine/internal/wiki"
)

const (
	rawDatasetFile   = "raw/characters.json"
	rawBackupFile    = "raw/characters_backup.txt"
	rawProgressFile  = "raw/characters_progress.json"
	planeswalkersCat = "Category:Planeswalker characters"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Harvest character pages from the wiki",
	Long: `Fetch walks the configured wiki categories in priority order, downloads
each character page once, and extracts a record from it. The dataset is
written to data/raw/characters.json with a plain-text backup next to it.
Progress is checkpointed periodically; an interrupted run still writes
what it has collected.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringSlice("category", nil, "category to harvest (repeatable; default: built-in priority list)")
	fetchCmd.Flags().Int("max-per-category", 0, "maximum new characters per category (0 = no limit)")
	fetchCmd.Flags().Bool("planeswalkers-only", false, "harvest only "+planeswalkersCat)
	fetchCmd.Flags().Float64("rps", 0, "maximum API requests per second (default 2)")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg := appCfg
	categories := cfg.Fetch.Categories
	if only, _ := cmd.Flags().GetBool("planeswalkers-only"); only {
		categories = []string{planeswalkersCat}
	}
	if len(categories) == 0 {
		return fmt.Errorf("no categories to harvest")
	}

	rec, err := newReconciler(cfg)
	if err != nil {
		return err
	}

	h := &wiki.Harvester{
		Source:          wiki.NewClient(nil, cfg.Fetch, appLog),
		Reconciler:      rec,
		Log:             appLog,
		MaxPerCategory:  cfg.Fetch.MaxPerCategory,
		CheckpointPath:  dataPath(cfg, rawProgressFile),
		CheckpointEvery: cfg.Fetch.CheckpointEvery,
	}

	started := time.Now()
	d := dataset.New(started)
	d.Metadata.Source = cfg.Fetch.BaseURL

	summary, harvestErr := h.Harvest(cmd.Context(), d, categories, os.Stdout)
	if harvestErr != nil && !errors.Is(harvestErr, cmd.Context().Err()) {
		return harvestErr
	}
	if len(d.Characters) == 0 {
		if harvestErr != nil {
			return harvestErr
		}
		return fmt.Errorf("no characters harvested")
	}

	jsonPath := dataPath(cfg, rawDatasetFile)
	if err := dataset.Write(jsonPath, d); err != nil {
		return err
	}
	txtPath := dataPath(cfg, rawBackupFile)
	if err := dataset.WriteBackup(txtPath, d, time.Now()); err != nil {
		return err
	}

	appLog.Info("harvest finished",
		logger.Int("characters", len(d.Characters)),
		logger.Int("failed", summary.Failed),
		logger.Duration("elapsed", time.Since(started)),
	)
	fmt.Printf("\ncharacters: %d, skipped: %d, failed: %d\n", summary.Extracted, summary.Skipped, summary.Failed)
	fmt.Printf("JSON: %s\nTXT:  %s\n", jsonPath, txtPath)

	if harvestErr != nil {
		return fmt.Errorf("interrupted, partial dataset saved: %w", harvestErr)
	}
	return nil
}
