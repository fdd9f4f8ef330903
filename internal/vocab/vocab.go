// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package vocab holds the closed term lists the inferrers match against:
// races, planes, creature types, colors, and status signal phrases. Every
// component reads these tables from a single Vocabulary value so an edit in
// one place (or in a YAML override file) applies everywhere.
package vocab

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Color describes one color of mana and the cues that identify it in prose.
type Color struct {
	// Name is the canonical color name (e.g. "Red").
	Name string `yaml:"name"`

	// Symbol is the single-letter mana symbol (e.g. "R").
	Symbol string `yaml:"symbol"`

	// Land is the basic land type associated with the color (e.g. "Mountain").
	Land string `yaml:"land"`
}

// Vocabulary is the set of recognized domain terms.
type Vocabulary struct {
	// PriorityRaces is consulted in order when picking a race from a
	// creature-type list.
	PriorityRaces []string `yaml:"priority_races"`

	// KnownRaces gates words captured from prose patterns.
	KnownRaces []string `yaml:"known_races"`

	// Planes is searched in order; the first plane found in prose wins.
	Planes []string `yaml:"planes"`

	// CreatureTypes is the list scanned for creature-type tags.
	CreatureTypes []string `yaml:"creature_types"`

	// Colors is in canonical WUBRG order.
	Colors []Color `yaml:"colors"`

	// AliveSignals and DeathSignals drive prose status inference.
	AliveSignals []string `yaml:"alive_signals"`
	DeathSignals []string `yaml:"death_signals"`

	// PlaneswalkerSignals mark a page as describing a planeswalker when no
	// categories are available.
	PlaneswalkerSignals []string `yaml:"planeswalker_signals"`

	// DeceasedSignals mark a page as describing a dead character when no
	// categories are available.
	DeceasedSignals []string `yaml:"deceased_signals"`
}

// Default returns the built-in vocabulary.
func Default() *Vocabulary {
	return &Vocabulary{
		PriorityRaces: []string{
			"Human", "Elf", "Dwarf", "Goblin", "Dragon", "Angel", "Demon", "Vampire",
			"Sphinx", "Minotaur", "Centaur", "Leonin", "Merfolk", "Vedalken",
		},
		KnownRaces: []string{
			"Human", "Elf", "Dwarf", "Goblin", "Dragon", "Angel", "Demon", "Vampire",
			"Sphinx", "Minotaur", "Centaur", "Leonin", "Kithkin", "Merfolk", "Treefolk",
			"Giant", "Elemental", "Spirit", "Zombie", "Skeleton", "Beast", "Avatar",
			"Vedalken", "Kor", "Viashino", "Rhox", "Loxodon", "Homunculus",
		},
		Planes: []string{
			"Dominaria", "Ravnica", "Zendikar", "Innistrad", "Theros", "Tarkir",
			"Kaladesh", "Amonkhet", "Ixalan", "Eldraine", "Ikoria", "Kaldheim",
			"Strixhaven", "Capenna", "Kamigawa", "Mirrodin", "New Phyrexia",
			"Alara", "Lorwyn", "Shadowmoor", "Mercadia", "Rath", "Serra's Realm",
		},
		CreatureTypes: []string{
			"Human", "Elf", "Dwarf", "Goblin", "Dragon", "Angel", "Demon",
			"Vampire", "Zombie", "Spirit", "Elemental", "Beast", "Giant",
			"Wizard", "Warrior", "Knight", "Cleric", "Rogue", "Artifact",
			"Planeswalker", "God", "Avatar", "Sphinx", "Hydra", "Phoenix",
		},
		Colors: []Color{
			{Name: "White", Symbol: "W", Land: "Plains"},
			{Name: "Blue", Symbol: "U", Land: "Island"},
			{Name: "Black", Symbol: "B", Land: "Swamp"},
			{Name: "Red", Symbol: "R", Land: "Mountain"},
			{Name: "Green", Symbol: "G", Land: "Forest"},
		},
		AliveSignals: []string{"is a", "continues to", "currently", "still lives", "remains active"},
		DeathSignals: []string{"deceased", "died", "killed", "dead", "was killed", "was slain"},
		PlaneswalkerSignals: []string{
			"planeswalker", "planeswalk", "spark",
		},
		DeceasedSignals: []string{"deceased", "died", "death of", "killed"},
	}
}

// Load reads a YAML vocabulary file. Lists missing from the file keep their
// built-in values, so an override may name only the tables it changes.
func Load(path string) (*Vocabulary, error) {
	v := Default()
	if path == "" {
		return v, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vocabulary %s: %w", path, err)
	}

	var override Vocabulary
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("parsing vocabulary %s: %w", path, err)
	}

	v.merge(override)
	if err := v.Validate(); err != nil {
		return nil, fmt.Errorf("vocabulary %s: %w", path, err)
	}
	return v, nil
}

func (v *Vocabulary) merge(o Vocabulary) {
	if len(o.PriorityRaces) > 0 {
		v.PriorityRaces = o.PriorityRaces
	}
	if len(o.KnownRaces) > 0 {
		v.KnownRaces = o.KnownRaces
	}
	if len(o.Planes) > 0 {
		v.Planes = o.Planes
	}
	if len(o.CreatureTypes) > 0 {
		v.CreatureTypes = o.CreatureTypes
	}
	if len(o.Colors) > 0 {
		v.Colors = o.Colors
	}
	if len(o.AliveSignals) > 0 {
		v.AliveSignals = o.AliveSignals
	}
	if len(o.DeathSignals) > 0 {
		v.DeathSignals = o.DeathSignals
	}
	if len(o.PlaneswalkerSignals) > 0 {
		v.PlaneswalkerSignals = o.PlaneswalkerSignals
	}
	if len(o.DeceasedSignals) > 0 {
		v.DeceasedSignals = o.DeceasedSignals
	}
}

// Validate reports structural problems in the color table.
func (v *Vocabulary) Validate() error {
	for i, c := range v.Colors {
		if c.Name == "" || c.Symbol == "" {
			return fmt.Errorf("color %d: name and symbol are required", i)
		}
	}
	return nil
}

// ColorByToken resolves a color name or mana symbol, case-insensitively, to
// its canonical name.
func (v *Vocabulary) ColorByToken(token string) (string, bool) {
	for _, c := range v.Colors {
		if strings.EqualFold(token, c.Name) || strings.EqualFold(token, c.Symbol) {
			return c.Name, true
		}
	}
	return "", false
}

// IsKnownRace reports whether name (already title-cased) is a known race.
func (v *Vocabulary) IsKnownRace(name string) bool {
	for _, r := range v.KnownRaces {
		if r == name {
			return true
		}
	}
	return false
}
