// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package infer derives semantic attributes (race, plane, status, colors)
// from template fields and prose. Template fields always take precedence
// over prose. Every method is pure and safe for concurrent use.
package infer

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pdiddy/lore-engine/internal/vocab"
	"github.com/pdiddy/lore-engine/internal/wikitext"
	"github.com/pdiddy/lore-engine/pkg/types"
)

// Template keys consulted by each inferrer, in precedence order.
var (
	RaceKeys   = []string{"race", "species"}
	PlaneKeys  = []string{"birthplace", "plane", "origin"}
	StatusKeys = []string{"status", "lifetime"}
	ColorKeys  = []string{"colors", "color"}
)

// racePatterns run against lower-cased prose in order. The captured word is
// only accepted when it names a known race.
var racePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bis a (\w+) planeswalker`),
	regexp.MustCompile(`\bwas a (\w+) planeswalker`),
	regexp.MustCompile(`(\w+) planeswalker from`),
	regexp.MustCompile(`is a (\w+)`),
	regexp.MustCompile(`was a (\w+)`),
}

// colorSplitRe separates entries in a template color list such as
// "White, Blue", "Red/Green", "Black and Red", or "(W)(U)".
var colorSplitRe = regexp.MustCompile(`(?i)[(),/;&]|\s+and\s+`)

// Inferrer applies the vocabulary tables to template fields and prose.
type Inferrer struct {
	vocab *vocab.Vocabulary

	planes    []*regexp.Regexp
	creatures []*regexp.Regexp
	colorCues [][]*regexp.Regexp
}

// New compiles the vocabulary into matchers. A nil vocabulary selects the
// built-in tables.
func New(v *vocab.Vocabulary) *Inferrer {
	if v == nil {
		v = vocab.Default()
	}
	inf := &Inferrer{vocab: v}

	// Planes match on a leading word boundary only, so "Dominarian" counts
	// for Dominaria but "wrath" does not count for Rath.
	for _, p := range v.Planes {
		inf.planes = append(inf.planes, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(p)))
	}
	for _, t := range v.CreatureTypes {
		inf.creatures = append(inf.creatures, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(t)+`(?:s|es)?\b`))
	}
	for _, c := range v.Colors {
		cues := []*regexp.Regexp{
			regexp.MustCompile(`(?i)\{` + regexp.QuoteMeta(c.Symbol) + `\}`),
			regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(c.Name) + `\s+(?:mana|magic)\b`),
		}
		if c.Land != "" {
			cues = append(cues, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(c.Land)+`s?\b`))
		}
		inf.colorCues = append(inf.colorCues, cues)
	}
	return inf
}

// Vocabulary returns the tables the inferrer was built from.
func (inf *Inferrer) Vocabulary() *vocab.Vocabulary {
	return inf.vocab
}

// Race resolves a race from template fields, then the creature-type list,
// then prose patterns.
func (inf *Inferrer) Race(fields wikitext.Fields, creatureTypes []string, prose string) (string, bool) {
	if v, ok := fields.First(RaceKeys...); ok {
		return v, true
	}
	if r, ok := inf.RaceFromTypes(creatureTypes); ok {
		return r, true
	}
	return inf.RaceFromProse(prose)
}

// RaceFromTypes returns the first priority race present in creatureTypes,
// or the first listed type when none of them is a priority race. The first
// type only counts when it is a known race, so class types like Wizard fall
// through to the prose patterns.
func (inf *Inferrer) RaceFromTypes(creatureTypes []string) (string, bool) {
	if len(creatureTypes) == 0 {
		return "", false
	}
	for _, race := range inf.vocab.PriorityRaces {
		for _, t := range creatureTypes {
			if strings.EqualFold(strings.TrimSpace(t), race) {
				return race, true
			}
		}
	}
	first := cases.Title(language.English).String(strings.TrimSpace(creatureTypes[0]))
	if !inf.vocab.IsKnownRace(first) {
		return "", false
	}
	return first, true
}

// RaceFromProse matches the race patterns against prose and returns the
// first captured word that is a known race, title-cased.
func (inf *Inferrer) RaceFromProse(prose string) (string, bool) {
	if prose == "" {
		return "", false
	}
	lower := strings.ToLower(prose)
	caser := cases.Title(language.English)
	for _, re := range racePatterns {
		for _, m := range re.FindAllStringSubmatch(lower, -1) {
			candidate := caser.String(m[1])
			if inf.vocab.IsKnownRace(candidate) {
				return candidate, true
			}
		}
	}
	return "", false
}

// Plane resolves a plane from template fields, then the first known plane
// mentioned in prose.
func (inf *Inferrer) Plane(fields wikitext.Fields, prose string) (string, bool) {
	if v, ok := fields.First(PlaneKeys...); ok {
		return v, true
	}
	for i, re := range inf.planes {
		if re.MatchString(prose) {
			return inf.vocab.Planes[i], true
		}
	}
	return "", false
}

// PlanesAssociated returns every known plane mentioned in prose, in
// vocabulary order.
func (inf *Inferrer) PlanesAssociated(prose string) []string {
	var out []string
	for i, re := range inf.planes {
		if re.MatchString(prose) {
			out = append(out, inf.vocab.Planes[i])
		}
	}
	return out
}

// CreatureTypes returns every known creature type mentioned in prose, in
// vocabulary order.
func (inf *Inferrer) CreatureTypes(prose string) []string {
	var out []string
	for i, re := range inf.creatures {
		if re.MatchString(prose) {
			out = append(out, inf.vocab.CreatureTypes[i])
		}
	}
	return out
}

// Status resolves a life status. A template status that maps onto a known
// value wins; otherwise prose rules apply in order:
//
//  1. an alive signal with no death signal: Alive
//  2. a death signal or "death of": Deceased
//  3. both "compleated" and "un-compleated": Alive
//  4. "compleated" alone: Compleated
//
// An alive signal next to a death signal therefore resolves to Deceased.
func (inf *Inferrer) Status(fields wikitext.Fields, prose string) (types.Status, bool) {
	if v, ok := fields.First(StatusKeys...); ok {
		if s, ok := NormalizeStatus(v); ok {
			return s, true
		}
	}
	return inf.StatusFromProse(prose)
}

// StatusFromProse applies the prose rules documented on Status.
func (inf *Inferrer) StatusFromProse(prose string) (types.Status, bool) {
	if prose == "" {
		return types.StatusUnknown, false
	}
	lower := strings.ToLower(prose)

	alive := containsAny(lower, inf.vocab.AliveSignals)
	dead := containsAny(lower, inf.vocab.DeathSignals)

	switch {
	case alive && !dead:
		return types.StatusAlive, true
	case dead || strings.Contains(lower, "death of"):
		return types.StatusDeceased, true
	case strings.Contains(lower, "compleated") && strings.Contains(lower, "un-compleated"):
		return types.StatusAlive, true
	case strings.Contains(lower, "compleated"):
		return types.StatusCompleated, true
	}
	return types.StatusUnknown, false
}

// NormalizeStatus maps free-form infobox status text onto a Status.
func NormalizeStatus(v string) (types.Status, bool) {
	lower := strings.ToLower(strings.TrimSpace(v))
	switch {
	case lower == "":
		return types.StatusUnknown, false
	case strings.Contains(lower, "un-compleated"):
		return types.StatusAlive, true
	case strings.Contains(lower, "compleated"):
		return types.StatusCompleated, true
	case strings.Contains(lower, "deceased"), strings.Contains(lower, "dead"),
		strings.Contains(lower, "died"), strings.Contains(lower, "killed"):
		return types.StatusDeceased, true
	case strings.Contains(lower, "alive"), strings.Contains(lower, "active"),
		strings.Contains(lower, "living"):
		return types.StatusAlive, true
	}
	return types.StatusUnknown, false
}

// Colors resolves a color identity from template fields, then from prose
// cues. Template entries keep their order; prose results are in WUBRG
// order. The result is nil when nothing matched.
func (inf *Inferrer) Colors(fields wikitext.Fields, prose string) []string {
	if v, ok := fields.First(ColorKeys...); ok {
		if colors := inf.CanonicalColors(colorSplitRe.Split(v, -1)); len(colors) > 0 {
			return colors
		}
	}
	return inf.ColorsFromProse(prose)
}

// CanonicalColors maps color names or mana symbols onto canonical names,
// dropping unknown tokens and duplicates while keeping order.
func (inf *Inferrer) CanonicalColors(tokens []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, tok := range tokens {
		name, ok := inf.vocab.ColorByToken(strings.TrimSpace(tok))
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// ColorsFromProse returns each color with at least one cue in prose: its
// mana symbol, "<color> mana" or "<color> magic", or its basic land type.
func (inf *Inferrer) ColorsFromProse(prose string) []string {
	if prose == "" {
		return nil
	}
	var out []string
	for i, cues := range inf.colorCues {
		for _, re := range cues {
			if re.MatchString(prose) {
				out = append(out, inf.vocab.Colors[i].Name)
				break
			}
		}
	}
	return out
}

// IsPlaneswalker reports whether the page describes a planeswalker. Page
// categories decide when present; otherwise prose signals are used.
func (inf *Inferrer) IsPlaneswalker(categories []string, prose string) bool {
	if len(categories) > 0 {
		return categoryContains(categories, "planeswalker")
	}
	return containsAny(strings.ToLower(prose), inf.vocab.PlaneswalkerSignals)
}

// IsDeceased reports whether the page describes a dead character, with the
// same category-then-prose precedence as IsPlaneswalker.
func (inf *Inferrer) IsDeceased(categories []string, prose string) bool {
	if len(categories) > 0 {
		return categoryContains(categories, "deceased")
	}
	return containsAny(strings.ToLower(prose), inf.vocab.DeceasedSignals)
}

func categoryContains(categories []string, word string) bool {
	for _, c := range categories {
		if strings.Contains(strings.ToLower(c), word) {
			return true
		}
	}
	return false
}

// containsAny reports whether lower contains any of the phrases. lower must
// already be lower-cased.
func containsAny(lower string, phrases []string) bool {
	for _, p := range phrases {
		if p != "" && strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}
