// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"fmt"
	"io"
	"sort"
)

// Count is one labelled tally.
type Count struct {
	Label string
	N     int
}

// Stats summarizes a dataset.
type Stats struct {
	Total         int
	Planeswalkers int
	Deceased      int
	FailedPages   int
	WithRawMarkup int
	Colors        []Count
	Races         []Count
	Statuses      []Count
}

// ComputeStats tallies s. Count lists are ordered by descending count, then
// label.
func ComputeStats(s *Stored) Stats {
	st := Stats{Total: len(s.Characters), FailedPages: len(s.Metadata.FailedPages)}
	colors := map[string]int{}
	races := map[string]int{}
	statuses := map[string]int{}

	for _, rec := range s.Characters {
		if rec.IsPlaneswalker {
			st.Planeswalkers++
		}
		if rec.IsDeceased {
			st.Deceased++
		}
		if rec.RawContent != "" {
			st.WithRawMarkup++
		}
		if len(rec.Colors) == 0 {
			colors["Colorless"]++
		}
		for _, c := range rec.Colors {
			colors[c]++
		}
		if rec.Race != "" {
			races[rec.Race]++
		}
		status := rec.Status
		if status == "" {
			status = "Unknown"
		}
		statuses[status]++
	}

	st.Colors = sortedCounts(colors)
	st.Races = sortedCounts(races)
	st.Statuses = sortedCounts(statuses)
	return st
}

func sortedCounts(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for label, n := range m {
		out = append(out, Count{Label: label, N: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].N != out[j].N {
			return out[i].N > out[j].N
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// Print writes a summary of st to w, listing at most top entries per tally.
func (st Stats) Print(w io.Writer, top int) {
	fmt.Fprintf(w, "Total characters:    %d\n", st.Total)
	fmt.Fprintf(w, "Planeswalkers:       %d\n", st.Planeswalkers)
	fmt.Fprintf(w, "Regular characters:  %d\n", st.Total-st.Planeswalkers)
	fmt.Fprintf(w, "Deceased:            %d\n", st.Deceased)
	fmt.Fprintf(w, "With raw markup:     %d\n", st.WithRawMarkup)
	fmt.Fprintf(w, "Failed pages:        %d\n", st.FailedPages)
	printCounts(w, "Colors", st.Colors, top)
	printCounts(w, "Races", st.Races, top)
	printCounts(w, "Status", st.Statuses, top)
}

func printCounts(w io.Writer, title string, counts []Count, top int) {
	if len(counts) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for i, c := range counts {
		if top > 0 && i >= top {
			fmt.Fprintf(w, "  ... %d more\n", len(counts)-top)
			break
		}
		fmt.Fprintf(w, "  %-20s %d\n", c.Label, c.N)
	}
}
