// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/lore-engine/internal/wikitext"
)

// Length thresholds for lines taken from raw markup, in runes.
const (
	minDescriptionLine  = 20
	goodDescriptionLine = 50
)

// Candidates holds every source a description can come from.
type Candidates struct {
	// Markup is the raw page markup.
	Markup string

	// BioText is biographical free text, such as a Biography section or a
	// stored biographical_info string.
	BioText string

	// Existing is the description a stored record already carries.
	Existing string

	// Fields are the template fields parsed from the page's infobox.
	Fields wikitext.Fields
}

// DefaultDescription is the description used when no source has usable
// prose.
func DefaultDescription(name string) string {
	return fmt.Sprintf("%s is a character from Magic: The Gathering.", name)
}

// SelectDescription returns the first usable description among, in order:
// the lead prose of the raw markup, the biographical text, a non-template
// existing description, a template description or summary, and finally
// DefaultDescription. The result is never empty and never starts with a
// markup character.
func SelectDescription(name string, c Candidates) string {
	if d := DescriptionFromMarkup(c.Markup); d != "" {
		return d
	}
	if d := cleanCandidate(c.BioText); d != "" {
		return d
	}
	if d := cleanCandidate(c.Existing); d != "" {
		return d
	}
	if d := templateDescription(c.Fields, c.Existing); d != "" {
		return d
	}
	return DefaultDescription(name)
}

// DescriptionFromMarkup scans markup line by line for the opening prose.
// Template, list, heading, and category lines are skipped, as are lines
// inside a multi-line template. Sanitized lines longer than 20 runes are
// collected until one longer than 50 runes has been seen.
func DescriptionFromMarkup(markup string) string {
	var (
		lines []string
		depth int
	)
	for _, raw := range strings.Split(markup, "\n") {
		line := strings.TrimSpace(raw)
		inside := depth > 0
		depth += strings.Count(line, "{{") - strings.Count(line, "}}")
		if depth < 0 {
			depth = 0
		}
		if inside || skipDescriptionLine(line) {
			continue
		}

		clean := wikitext.Sanitize(line)
		n := utf8.RuneCountInString(clean)
		if n > minDescriptionLine && !markupShaped(clean) {
			lines = append(lines, clean)
		}
		if len(lines) > 0 && n > goodDescriptionLine {
			break
		}
	}
	return strings.Join(lines, " ")
}

func skipDescriptionLine(line string) bool {
	if line == "" {
		return true
	}
	for _, p := range []string{"|", "{", "}", "[[Category:", "#", "*", "="} {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// templateShaped reports whether raw text is an infobox parameter block or
// a template rather than prose.
func templateShaped(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "|") || strings.HasPrefix(s, "{")
}

// markupShaped reports whether sanitized text still starts with a markup
// character and so cannot serve as a description.
func markupShaped(s string) bool {
	return s != "" && strings.ContainsRune("|{[", rune(s[0]))
}

func cleanCandidate(raw string) string {
	if raw == "" || templateShaped(raw) {
		return ""
	}
	clean := wikitext.Sanitize(raw)
	if markupShaped(clean) {
		return ""
	}
	return clean
}

// templateDescription looks for a description in the infobox fields, then
// in a template-shaped existing description: first its description or
// summary parameter, then its first line that is not a parameter.
func templateDescription(fields wikitext.Fields, existing string) string {
	if v, ok := fields.First("description", "summary"); ok && !markupShaped(v) {
		return v
	}
	if !templateShaped(existing) {
		return ""
	}
	if v, ok := wikitext.ExtractTemplateFields(existing).First("description", "summary"); ok && !markupShaped(v) {
		return v
	}
	for _, line := range strings.Split(existing, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || templateShaped(line) || strings.HasPrefix(line, "}") {
			continue
		}
		if clean := wikitext.Sanitize(line); clean != "" && !markupShaped(clean) && clean[0] != '}' {
			return clean
		}
	}
	return ""
}
