// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wiki

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/lore-engine/internal/dataset"
	"github.com/pdiddy/lore-engine/internal/extract"
	"github.com/pdiddy/lore-engine/internal/logger"
	"github.com/pdiddy/lore-engine/pkg/types"
)

// PageSource lists and fetches wiki pages. *Client satisfies it.
type PageSource interface {
	CategoryMembers(ctx context.Context, category string) ([]string, error)
	Page(ctx context.Context, title string) (types.RawInput, error)
	PageURL(title string) string
}

// Harvester walks categories in priority order and extracts every page it
// has not seen before into a dataset.
type Harvester struct {
	Source     PageSource
	Reconciler *extract.Reconciler
	Log        logger.Logger

	// MaxPerCategory caps new records taken from each category. Zero means
	// no limit.
	MaxPerCategory int

	// CheckpointPath, when set, receives the partial dataset every
	// CheckpointEvery new records.
	CheckpointPath  string
	CheckpointEvery int
}

// HarvestSummary holds counts from a harvest run.
type HarvestSummary struct {
	Categories int
	Extracted  int
	Skipped    int
	Failed     int
}

// HasFailures reports whether any page failed.
func (s HarvestSummary) HasFailures() bool {
	return s.Failed > 0
}

// Harvest adds the pages of categories to d. A page already in d, or seen
// earlier in this run, is skipped, so earlier categories win. Pages that
// cannot be fetched are appended to d's failed pages. A category that
// cannot be listed is logged and passed over. Cancelling ctx stops the run;
// d keeps everything extracted so far.
func (h *Harvester) Harvest(ctx context.Context, d *dataset.Dataset, categories []string, w io.Writer) (HarvestSummary, error) {
	if w == nil {
		w = io.Discard
	}
	log := h.Log
	if log == nil {
		log = logger.NewNop()
	}

	var summary HarvestSummary
	seen := make(map[string]bool, len(d.Characters))
	for name := range d.Characters {
		seen[name] = true
	}
	sinceCheckpoint := 0

	for _, category := range categories {
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("harvesting: %w", err)
		}

		titles, err := h.Source.CategoryMembers(ctx, category)
		if err != nil {
			if ctx.Err() != nil {
				return summary, fmt.Errorf("harvesting: %w", ctx.Err())
			}
			log.Error("category listing failed", logger.String("category", category), logger.Error(err))
			fmt.Fprintf(w, "failed  %s: %v\n", category, err)
			continue
		}
		summary.Categories++

		taken := 0
		for _, title := range titles {
			if h.MaxPerCategory > 0 && taken >= h.MaxPerCategory {
				break
			}
			if seen[title] {
				summary.Skipped++
				continue
			}
			seen[title] = true

			in, err := h.Source.Page(ctx, title)
			if err != nil {
				if ctx.Err() != nil {
					return summary, fmt.Errorf("harvesting: %w", ctx.Err())
				}
				summary.Failed++
				d.Metadata.FailedPages = append(d.Metadata.FailedPages, title)
				log.Warn("page fetch failed", logger.String("title", title), logger.Error(err))
				fmt.Fprintf(w, "failed  %s: %v\n", title, err)
				continue
			}

			rec := h.Reconciler.Extract(in)
			rec.URL = h.Source.PageURL(title)
			d.Characters[title] = rec
			summary.Extracted++
			taken++
			fmt.Fprintf(w, "fetched %s\n", title)

			sinceCheckpoint++
			if h.CheckpointPath != "" && h.CheckpointEvery > 0 && sinceCheckpoint >= h.CheckpointEvery {
				if err := dataset.Write(h.CheckpointPath, d); err != nil {
					return summary, fmt.Errorf("writing checkpoint: %w", err)
				}
				log.Info("checkpoint written", logger.String("path", h.CheckpointPath), logger.Int("characters", len(d.Characters)))
				sinceCheckpoint = 0
			}
		}
		log.Info("category done", logger.String("category", category), logger.Int("taken", taken), logger.Int("total", len(d.Characters)))
	}
	return summary, nil
}
