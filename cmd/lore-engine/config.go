// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/lore-engine/pkg/types"
)

// envKeyReplacer maps nested keys such as fetch.api_url to
// LORE_ENGINE_FETCH_API_URL.
var envKeyReplacer = strings.NewReplacer(".", "_")

// setDefaults registers every configurable key so environment variables
// are visible to Unmarshal.
func setDefaults(v *viper.Viper) {
	d := types.DefaultPipelineConfig()
	for key, val := range map[string]any{
		"data_dir":                                 d.DataDir,
		"fetch.timeout":                            d.Fetch.Timeout,
		"fetch.user_agent":                         d.Fetch.UserAgent,
		"fetch.max_retries":                        d.Fetch.MaxRetries,
		"fetch.api_url":                            d.Fetch.APIURL,
		"fetch.base_url":                           d.Fetch.BaseURL,
		"fetch.categories":                         d.Fetch.Categories,
		"fetch.requests_per_second":                d.Fetch.RequestsPerSecond,
		"fetch.max_per_category":                   d.Fetch.MaxPerCategory,
		"fetch.checkpoint_every":                   d.Fetch.CheckpointEvery,
		"extraction.extract.max_story_appearances": d.Extraction.Extract.MaxStoryAppearances,
		"extraction.extract.max_abilities":         d.Extraction.Extract.MaxAbilities,
		"extraction.repair.max_story_appearances":  d.Extraction.Repair.MaxStoryAppearances,
		"extraction.repair.max_abilities":          d.Extraction.Repair.MaxAbilities,
		"extraction.workers":                       d.Extraction.Workers,
		"extraction.vocabulary_file":               d.Extraction.VocabularyFile,
		"store.index_dir":                          d.Store.IndexDir,
		"store.max_results":                        d.Store.MaxResults,
		"log.level":                                d.Log.Level,
		"log.development":                          d.Log.Development,
	} {
		v.SetDefault(key, val)
	}
}

// loadConfig resolves the pipeline configuration: built-in defaults, then
// the config file, then LORE_ENGINE_* environment variables, then any
// flags set on the command line.
func loadConfig(cmd *cobra.Command) (types.PipelineConfig, error) {
	cfg := types.DefaultPipelineConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.DataDir, _ = flags.GetString("data-dir")
		if !viper.IsSet("store.index_dir") || viper.GetString("store.index_dir") == types.DefaultPipelineConfig().Store.IndexDir {
			cfg.Store.IndexDir = filepath.Join(cfg.DataDir, "index")
		}
	}
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("rps") {
		cfg.Fetch.RequestsPerSecond, _ = flags.GetFloat64("rps")
	}
	if flags.Changed("max-per-category") {
		cfg.Fetch.MaxPerCategory, _ = flags.GetInt("max-per-category")
	}
	if flags.Changed("category") {
		cfg.Fetch.Categories, _ = flags.GetStringSlice("category")
	}
	if flags.Changed("workers") {
		cfg.Extraction.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("vocabulary") {
		cfg.Extraction.VocabularyFile, _ = flags.GetString("vocabulary")
	}
	if flags.Changed("index-dir") {
		cfg.Store.IndexDir, _ = flags.GetString("index-dir")
	}
	if flags.Changed("max-results") {
		cfg.Store.MaxResults, _ = flags.GetInt("max-results")
	}
	return cfg, nil
}

// dataPath joins name onto the configured data directory.
func dataPath(cfg types.PipelineConfig, name string) string {
	return filepath.Join(cfg.DataDir, name)
}
