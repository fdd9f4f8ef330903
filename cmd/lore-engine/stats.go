// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/lore-engine/internal/dataset"
)

var statsCmd = &cobra.Command{
	Use:   "stats [dataset]",
	Short: "Summarize a dataset",
	Long: `Stats prints counts for a dataset: planeswalkers, deceased characters,
records that kept raw markup, failed pages, and the most common colors,
races, and statuses. The dataset defaults to data/characters_clean.json.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := dataPath(appCfg, cleanDatasetFile)
		if len(args) == 1 {
			path = args[0]
		}
		s, err := dataset.Load(path)
		if err != nil {
			return err
		}
		top, _ := cmd.Flags().GetInt("top")

		fmt.Printf("%s\n\n", path)
		dataset.ComputeStats(s).Print(os.Stdout, top)
		return nil
	},
}

func init() {
	statsCmd.Flags().Int("top", 10, "entries to list per tally (0 = all)")
	rootCmd.AddCommand(statsCmd)
}
