// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/lore-engine/internal/wikitext"
)

// Section headings searched for each list, in order.
var (
	storySections     = []string{"Story appearances", "Appearances", "Story", "Fiction", "Novels"}
	abilitySections   = []string{"Abilities", "Powers", "Magic", "Planeswalker abilities"}
	biographySections = []string{"Biography", "Life", "History"}
)

// Fallback sentence patterns used when a page has no matching section.
var (
	// storyMentionRe matches a sentence fragment that mentions a story,
	// novel, or appearance.
	storyMentionRe = regexp.MustCompile(`(?i)(?:appears? in|story|novel|book)[^.!]*[.!]`)

	// abilityMentionRe matches a sentence fragment that mentions powers or
	// magic.
	abilityMentionRe = regexp.MustCompile(`(?i)(?:ability|abilities|powers?|magic)[^.!]*[.!]`)

	sentenceSplitRe = regexp.MustCompile(`[.!?]+`)
)

// Minimum lengths, in runes, for list entries.
const (
	minBulletItem   = 5
	minStoryLine    = 10
	minAbilityItem  = 20
	minMentionMatch = 20
)

// StoryAppearances lists story entries from the story sections of markup.
// Bullet items longer than 5 runes and other lines longer than 10 runes
// are kept. Without any story section, sentences mentioning a story or
// novel are used instead.
func StoryAppearances(markup string) []string {
	var out []string
	for _, name := range storySections {
		for _, line := range strings.Split(wikitext.Section(markup, name), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "|") || strings.HasPrefix(line, "{") || strings.HasPrefix(line, "!") {
				continue
			}
			if strings.HasPrefix(line, "*") {
				if item := wikitext.Sanitize(strings.TrimLeft(line, "*#:")); utf8.RuneCountInString(item) > minBulletItem {
					out = append(out, item)
				}
				continue
			}
			if item := wikitext.Sanitize(line); utf8.RuneCountInString(item) > minStoryLine {
				out = append(out, item)
			}
		}
	}
	if len(out) > 0 {
		return out
	}
	return mentions(markup, storyMentionRe)
}

// Abilities lists sentences longer than 20 runes from the ability sections
// of markup, each ending in a period. Without any ability section,
// sentences mentioning powers or magic are used instead.
func Abilities(markup string) []string {
	var out []string
	for _, name := range abilitySections {
		body := wikitext.Sanitize(wikitext.Section(markup, name))
		for _, sentence := range sentenceSplitRe.Split(body, -1) {
			sentence = strings.TrimSpace(sentence)
			if utf8.RuneCountInString(sentence) > minAbilityItem {
				out = append(out, sentence+".")
			}
		}
	}
	if len(out) > 0 {
		return out
	}
	return mentions(markup, abilityMentionRe)
}

// mentions returns the matches of re over the sanitized markup, skipping
// short fragments.
func mentions(markup string, re *regexp.Regexp) []string {
	if markup == "" {
		return nil
	}
	var out []string
	for _, m := range re.FindAllString(wikitext.Sanitize(markup), -1) {
		m = strings.TrimSpace(m)
		if utf8.RuneCountInString(m) > minMentionMatch {
			out = append(out, m)
		}
	}
	return out
}

// firstSection returns the raw body of the first named section present in
// markup.
func firstSection(markup string, names []string) string {
	for _, name := range names {
		if body := wikitext.Section(markup, name); body != "" {
			return body
		}
	}
	return ""
}
