// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dataset

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	backupRule          = 80
	backupDescription   = 500
	backupAbilities     = 3
	backupTimestampForm = "2006-01-02 15:04:05"
)

// WriteBackup writes a human-readable listing of d to path: planeswalkers
// first, then everyone else, each group in name order.
func WriteBackup(path string, d *Dataset, now time.Time) error {
	names := d.Names()
	sort.SliceStable(names, func(i, j int) bool {
		return d.Characters[names[i]].IsPlaneswalker && !d.Characters[names[j]].IsPlaneswalker
	})

	var b bytes.Buffer
	b.WriteString("MTG CHARACTERS DATABASE BACKUP\n")
	b.WriteString(strings.Repeat("=", 50) + "\n\n")
	fmt.Fprintf(&b, "Total Characters: %d\n", len(d.Characters))
	fmt.Fprintf(&b, "Scraped: %s\n", now.Format(backupTimestampForm))
	fmt.Fprintf(&b, "Source: %s\n\n", source(d))

	for _, name := range names {
		rec := d.Characters[name]
		fmt.Fprintf(&b, "CHARACTER: %s\n", name)
		b.WriteString(strings.Repeat("-", utf8.RuneCountInString(name)) + "\n")
		if rec.URL != "" {
			fmt.Fprintf(&b, "URL: %s\n", rec.URL)
		}
		fmt.Fprintf(&b, "Planeswalker: %s\n", yesNo(rec.IsPlaneswalker))
		fmt.Fprintf(&b, "Deceased: %s\n", yesNo(rec.IsDeceased))
		fmt.Fprintf(&b, "Description: %s\n", clip(rec.Description, backupDescription))
		if len(rec.Abilities) > 0 {
			abilities := rec.Abilities
			if len(abilities) > backupAbilities {
				abilities = abilities[:backupAbilities]
			}
			fmt.Fprintf(&b, "Abilities: %s\n", strings.Join(abilities, "; "))
		}
		if len(rec.PlanesAssociated) > 0 {
			fmt.Fprintf(&b, "Planes: %s\n", strings.Join(rec.PlanesAssociated, ", "))
		}
		if len(rec.Colors) > 0 {
			fmt.Fprintf(&b, "Colors: %s\n", strings.Join(rec.Colors, ", "))
		}
		b.WriteString("\n" + strings.Repeat("=", backupRule) + "\n\n")
	}
	return writeAtomic(path, b.Bytes())
}

func source(d *Dataset) string {
	if d.Metadata.Source != "" {
		return d.Metadata.Source
	}
	return DefaultSource
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// clip shortens s to n runes, marking the cut with an ellipsis.
func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
