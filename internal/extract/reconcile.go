// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns wiki pages into CharacterRecords. A Reconciler
// drives two passes over the same rules: Extract builds a record from fresh
// markup, and Repair rebuilds a previously persisted record. Both are pure;
// ExtractAll and RepairAll fan them out over a worker pool.
package extract

import (
	"strings"

	"github.com/pdiddy/lore-engine/internal/infer"
	"github.com/pdiddy/lore-engine/internal/wikitext"
	"github.com/pdiddy/lore-engine/pkg/types"
)

const (
	// unnamed is the record name used when a page has no title.
	unnamed = "Unknown"

	// bioTextKey holds free biographical text inside biographical_info.
	bioTextKey = "biography"
)

// promotedKeys are infobox keys that become first-class record fields and
// are therefore left out of biographical_info.
var promotedKeys = func() []string {
	keys := []string{"description", "summary", "image", "caption"}
	for _, group := range [][]string{infer.RaceKeys, infer.PlaneKeys, infer.StatusKeys, infer.ColorKeys} {
		keys = append(keys, group...)
	}
	return keys
}()

// Sources carries everything besides template fields that a record is
// rebuilt from.
type Sources struct {
	// Markup is the raw page markup, when available.
	Markup string

	// BioText is biographical free text.
	BioText string

	// Existing is the description the record already had.
	Existing string

	CreatureTypes []string
	Categories    []string

	StoryAppearances []string
	Abilities        []string

	// Planeswalker and Deceased are flags already set on a stored record.
	// They are combined with the inferred flags.
	Planeswalker bool
	Deceased     bool

	// Repair selects the repair-pass list limits.
	Repair bool
}

// Reconciler assembles CharacterRecords from template fields and prose.
type Reconciler struct {
	inf *infer.Inferrer
	cfg types.ExtractionConfig
}

// NewReconciler returns a Reconciler that applies inf with the list limits
// in cfg.
func NewReconciler(inf *infer.Inferrer, cfg types.ExtractionConfig) *Reconciler {
	if inf == nil {
		inf = infer.New(nil)
	}
	return &Reconciler{inf: inf, cfg: cfg}
}

// Reconcile builds the final record. It never fails: missing data leaves
// optional fields empty and the description falls back to the default.
func (r *Reconciler) Reconcile(name string, fields wikitext.Fields, src Sources) types.CharacterRecord {
	name = strings.TrimSpace(name)
	if name == "" {
		name = unnamed
	}
	if fields == nil {
		fields = wikitext.Fields{}
	}

	desc := SelectDescription(name, Candidates{
		Markup:   src.Markup,
		BioText:  src.BioText,
		Existing: src.Existing,
		Fields:   fields,
	})
	if desc == "" || markupShaped(desc) {
		desc = DefaultDescription(name)
	}

	// The default description carries no facts about the character.
	proseDesc := desc
	if desc == DefaultDescription(name) {
		proseDesc = ""
	}
	prose := proseFor(proseDesc, src)

	creatureTypes := src.CreatureTypes
	if len(creatureTypes) == 0 {
		creatureTypes = r.inf.CreatureTypes(prose)
	}

	rec := types.CharacterRecord{
		Name:             name,
		Description:      desc,
		Colors:           r.colors(fields, prose),
		BiographicalInfo: fields.Without(promotedKeys...),
		IsPlaneswalker:   src.Planeswalker || r.inf.IsPlaneswalker(src.Categories, prose),
		IsDeceased:       src.Deceased || r.inf.IsDeceased(src.Categories, prose),
		Categories:       src.Categories,
		CreatureTypes:    creatureTypes,
		PlanesAssociated: r.inf.PlanesAssociated(prose),
		RawContent:       src.Markup,
	}
	if v, ok := r.inf.Race(fields, creatureTypes, prose); ok {
		rec.Race = v
	}
	if v, ok := r.inf.Plane(fields, prose); ok {
		rec.Plane = v
	}
	if v, ok := r.inf.Status(fields, prose); ok {
		rec.Status = v
	}

	limits := r.cfg.Extract
	if src.Repair {
		limits = r.cfg.Repair
	}
	rec.StoryAppearances = truncate(cleanList(src.StoryAppearances), limits.MaxStoryAppearances)
	rec.Abilities = truncate(cleanList(src.Abilities), limits.MaxAbilities)
	return rec
}

// Extract runs the creation pass over one page.
func (r *Reconciler) Extract(in types.RawInput) types.CharacterRecord {
	fields := wikitext.Fields{}
	if block, ok := wikitext.FindInfobox(in.Markup); ok {
		fields = wikitext.ExtractTemplateFields(block)
	}
	return r.Reconcile(in.Title, fields, Sources{
		Markup:           in.Markup,
		BioText:          firstSection(in.Markup, biographySections),
		Categories:       in.Categories,
		StoryAppearances: StoryAppearances(in.Markup),
		Abilities:        Abilities(in.Markup),
	})
}

// Repair runs the repair pass over one stored record. Retained raw content
// is re-parsed. Values the record already carries fill in whatever the
// markup does not supply, so repairing a repaired record changes nothing.
func (r *Reconciler) Repair(rec types.StoredRecord) types.CharacterRecord {
	existing := rec.ExistingDescription()

	fields := wikitext.Fields{}
	if block, ok := wikitext.FindInfobox(rec.RawContent); ok {
		fields = wikitext.ExtractTemplateFields(block)
	}
	if templateShaped(existing) {
		fillMissing(fields, wikitext.ExtractTemplateFields(existing))
	}

	bioText := rec.BiographicalInfo.Text
	if templateShaped(bioText) {
		fillMissing(fields, wikitext.ExtractTemplateFields(bioText))
		bioText = ""
	}
	stored := wikitext.Fields{}
	for k, v := range rec.BiographicalInfo.Fields {
		if key := strings.ToLower(strings.TrimSpace(k)); key != "" {
			stored[key] = wikitext.Sanitize(v)
		}
	}
	for k, v := range map[string]string{
		"race":   wikitext.Sanitize(rec.Race),
		"plane":  wikitext.Sanitize(rec.Plane),
		"status": wikitext.Sanitize(rec.Status),
		"colors": strings.Join(rec.Colors, ", "),
	} {
		if v != "" {
			stored[k] = v
		}
	}
	fillMissing(fields, stored)

	if bioText == "" {
		bioText = fields[bioTextKey]
	}
	if clean := wikitext.Sanitize(bioText); clean != "" && fields[bioTextKey] == "" {
		fields[bioTextKey] = clean
	}

	src := Sources{
		Markup:           rec.RawContent,
		BioText:          bioText,
		Existing:         existing,
		CreatureTypes:    rec.CreatureTypes,
		Categories:       rec.Categories,
		StoryAppearances: rec.StoryAppearances,
		Abilities:        rec.Abilities,
		Planeswalker:     rec.IsPlaneswalker,
		Deceased:         rec.IsDeceased,
		Repair:           true,
	}
	if rec.RawContent != "" {
		src.StoryAppearances = StoryAppearances(rec.RawContent)
		src.Abilities = Abilities(rec.RawContent)
		if src.BioText == "" {
			src.BioText = firstSection(rec.RawContent, biographySections)
		}
	}

	out := r.Reconcile(rec.Name, fields, src)
	out.URL = rec.URL
	if out.URL == "" {
		out.URL = rec.WikiURL
	}
	return out
}

// fillMissing copies entries from src into dst for keys dst lacks. Empty
// values are skipped.
func fillMissing(dst, src wikitext.Fields) {
	for k, v := range src {
		if _, ok := dst[k]; !ok && v != "" {
			dst[k] = v
		}
	}
}

// colors prefers template colors over prose cues and never returns nil.
func (r *Reconciler) colors(fields wikitext.Fields, prose string) []string {
	if colors := r.inf.Colors(fields, prose); colors != nil {
		return colors
	}
	return []string{}
}

// proseFor joins the text the prose inferrers read: the chosen description
// followed by the raw markup, or by the biographical text when no markup was
// retained.
func proseFor(desc string, src Sources) string {
	switch {
	case src.Markup != "":
		return strings.TrimSpace(desc + " " + src.Markup)
	case src.BioText != "":
		return strings.TrimSpace(desc + " " + wikitext.Sanitize(src.BioText))
	}
	return desc
}

// cleanList strips list bullets and markup from items, dropping empty ones.
func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimLeft(strings.TrimSpace(it), "*#:")
		if clean := wikitext.Sanitize(it); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}

// truncate keeps the first n items. A non-positive n means no limit.
func truncate(items []string, n int) []string {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}
