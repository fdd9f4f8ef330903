// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the lore-engine CLI. It harvests
// character pages from the MTG wiki, extracts and repairs CharacterRecords,
// and maintains a searchable index of the results.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/lore-engine/internal/logger"
	"github.com/pdiddy/lore-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// Resolved before any command runs.
var (
	appLog logger.Logger = logger.NewNop()
	appCfg               = types.DefaultPipelineConfig()
)

// rootCmd is the base command for the lore-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "lore-engine",
	Short: "Build a database of Magic: The Gathering characters",
	Long: `lore-engine builds a character database from the MTG wiki. It harvests
character pages, extracts normalized records from their markup, repairs
records scraped earlier, and indexes the results for search.

Typical flow: fetch, then clean, then store ingest.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		l, err := logger.New(logger.Config{Level: cfg.Log.Level, Development: cfg.Log.Development})
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		appLog = l
		appCfg = cfg
		if used := viper.ConfigFileUsed(); used != "" {
			appLog.Debug("using config file", logger.String("path", used))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = appLog.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./lore-engine.yaml or ~/.config/lore-engine/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "base directory for datasets (default data)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("lore-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "lore-engine"))
		}
	}

	setDefaults(viper.GetViper())
	viper.SetEnvPrefix("LORE_ENGINE")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
