// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/lore-engine/pkg/types"
)

// BatchSummary holds counts from a batch run.
type BatchSummary struct {
	Processed int
	Skipped   int
	Failed    int
}

// Total returns the number of records seen.
func (s BatchSummary) Total() int {
	return s.Processed + s.Skipped + s.Failed
}

// HasFailures reports whether any record failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// collector gathers results from concurrent workers. Record names are unique
// per batch, so writers never contend for the same key.
type collector struct {
	mu      sync.Mutex
	w       io.Writer
	records map[string]types.CharacterRecord
	summary BatchSummary
}

func newCollector(w io.Writer, n int) *collector {
	if w == nil {
		w = io.Discard
	}
	return &collector{w: w, records: make(map[string]types.CharacterRecord, n)}
}

func (c *collector) done(key, verb string, rec types.CharacterRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records[key] = rec
	c.summary.Processed++
	fmt.Fprintf(c.w, "%s %s\n", verb, key)
}

func (c *collector) skip(key, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summary.Skipped++
	fmt.Fprintf(c.w, "skipped %s (%s)\n", key, reason)
}

func (c *collector) fail(key string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summary.Failed++
	fmt.Fprintf(c.w, "failed  %s: %v\n", key, err)
}

// safely runs fn, converting a panic into an error.
func safely(fn func() types.CharacterRecord) (rec types.CharacterRecord, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return fn(), nil
}

func poolSize(workers int) int {
	if workers <= 0 {
		return runtime.NumCPU()
	}
	return workers
}

// ExtractAll runs Extract over inputs on a pool of workers and returns the
// records keyed by title. Inputs without a title, or repeating an earlier
// title, are skipped. Cancelling ctx stops new work from being scheduled;
// records already finished are still returned along with ctx's error.
func (r *Reconciler) ExtractAll(ctx context.Context, inputs []types.RawInput, workers int, w io.Writer) (map[string]types.CharacterRecord, BatchSummary, error) {
	c := newCollector(w, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(poolSize(workers))

	seen := make(map[string]bool, len(inputs))
	for i, in := range inputs {
		if gctx.Err() != nil {
			break
		}
		switch {
		case in.Title == "":
			c.skip(fmt.Sprintf("#%d", i), "no title")
			continue
		case seen[in.Title]:
			c.skip(in.Title, "duplicate title")
			continue
		}
		seen[in.Title] = true

		g.Go(func() error {
			rec, err := safely(func() types.CharacterRecord { return r.Extract(in) })
			if err != nil {
				c.fail(in.Title, err)
				return nil
			}
			c.done(in.Title, "extracted", rec)
			return nil
		})
	}

	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return c.records, c.summary, fmt.Errorf("extracting records: %w", err)
	}
	return c.records, c.summary, nil
}

// RepairAll runs Repair over records on a pool of workers. Records are
// submitted in key order and keep their keys; a record with no name takes
// its key as its name.
func (r *Reconciler) RepairAll(ctx context.Context, records map[string]types.StoredRecord, workers int, w io.Writer) (map[string]types.CharacterRecord, BatchSummary, error) {
	keys := make([]string, 0, len(records))
	for k := range records {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	c := newCollector(w, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(poolSize(workers))

	for _, key := range keys {
		if gctx.Err() != nil {
			break
		}
		stored := records[key]
		if stored.Name == "" {
			stored.Name = key
		}

		g.Go(func() error {
			rec, err := safely(func() types.CharacterRecord { return r.Repair(stored) })
			if err != nil {
				c.fail(key, err)
				return nil
			}
			c.done(key, "cleaned", rec)
			return nil
		})
	}

	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return c.records, c.summary, fmt.Errorf("repairing records: %w", err)
	}
	return c.records, c.summary, nil
}
