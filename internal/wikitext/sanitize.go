// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package wikitext turns MediaWiki markup into plain prose and pulls
// key=value fields out of infobox templates. It is not a full parser: it
// handles the fixed set of shapes character pages use and deletes the rest.
package wikitext

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Stage is one named rewrite in the sanitizer pipeline.
type Stage struct {
	Name  string
	Apply func(string) string
}

// stages run in this order; later stages assume earlier ones have run.
var stages = []Stage{
	{Name: "entities", Apply: decodeEntities},
	{Name: "refs", Apply: stripRefs},
	{Name: "templates", Apply: resolveTemplates},
	{Name: "wikilinks", Apply: resolveWikilinks},
	{Name: "extlinks", Apply: resolveExternalLinks},
	{Name: "emphasis", Apply: stripEmphasis},
	{Name: "html", Apply: stripHTML},
	{Name: "embeds", Apply: stripEmbeds},
	{Name: "pronunciation", Apply: stripPronunciation},
	{Name: "whitespace", Apply: collapseWhitespace},
}

// Stages returns the sanitizer stages in execution order.
func Stages() []Stage {
	out := make([]Stage, len(stages))
	copy(out, stages)
	return out
}

// Sanitize converts wiki markup to a single line of plain prose. It reruns
// the stage chain until the output stops changing, which makes it
// idempotent: Sanitize(Sanitize(x)) == Sanitize(x). No stage adds an '&'
// and every other change shortens the text, so the loop terminates.
func Sanitize(text string) string {
	if text == "" {
		return ""
	}
	out := runStages(text)
	for {
		next := runStages(out)
		if next == out {
			return out
		}
		out = next
	}
}

func runStages(text string) string {
	for _, s := range stages {
		text = s.Apply(text)
	}
	return text
}

func decodeEntities(text string) string {
	return html.UnescapeString(text)
}

var (
	// refBlockRe matches <ref ...>...</ref> spans, including multi-line ones.
	// The attribute group cannot end in "/" so self-closing refs are left to
	// refTagRe instead of swallowing text up to the next </ref>.
	refBlockRe = regexp.MustCompile(`(?is)<ref(?:\s[^>]*[^/>])?\s*>.*?</ref\s*>`)

	// refTagRe matches self-closing <ref/> tags and any stray ref tag.
	refTagRe = regexp.MustCompile(`(?i)</?ref(?:\s[^>]*)?/?>`)
)

func stripRefs(text string) string {
	text = refBlockRe.ReplaceAllString(text, "")
	return refTagRe.ReplaceAllString(text, "")
}

var (
	// innerTemplateRe matches a template with no template nested inside it.
	innerTemplateRe = regexp.MustCompile(`\{\{([^{}]*)\}\}`)

	// manaSymbolRe matches bare symbol templates such as {{R}}, {{2}}, {{W/U}}.
	manaSymbolRe = regexp.MustCompile(`^[WUBRGCXSTQ0-9/]{1,5}$`)
)

// resolveTemplates renders or deletes templates innermost-first. Nothing
// is evaluated recursively: an outer template sees only the rendered text
// of the ones it contained.
func resolveTemplates(text string) string {
	for {
		next := innerTemplateRe.ReplaceAllStringFunc(text, func(m string) string {
			return renderTemplate(m[2 : len(m)-2])
		})
		if next == text {
			return next
		}
		text = next
	}
}

func renderTemplate(inner string) string {
	parts := strings.Split(inner, "|")
	name := strings.TrimSpace(parts[0])
	args := parts[1:]
	lname := strings.ToLower(name)

	switch {
	case manaSymbolRe.MatchString(name):
		return "(" + name + ")"
	case lname == "mana" && len(args) > 0:
		var sb strings.Builder
		for _, a := range args {
			sb.WriteString(strings.TrimSpace(a))
		}
		return "(" + sb.String() + ")"
	case (lname == "c" || lname == "card") && len(args) > 0:
		card := strings.TrimSpace(args[0])
		if card == "" {
			return ""
		}
		return `"` + card + `"`
	case isCitation(lname):
		return ""
	default:
		return ""
	}
}

func isCitation(lname string) bool {
	return lname == "ref" ||
		strings.HasPrefix(lname, "cite") ||
		strings.Contains(lname, "dailyref") ||
		strings.Contains(lname, "articlearchive")
}

// wikilinkRe matches [[target]] and [[target|label]] with no nested links.
var wikilinkRe = regexp.MustCompile(`\[\[([^\[\]|]*)(\|[^\[\]]*)?\]\]`)

// resolveWikilinks rewrites links innermost first and repeats until no
// resolvable link remains. Embeds are left for stripEmbeds.
func resolveWikilinks(text string) string {
	for {
		next := wikilinkRe.ReplaceAllStringFunc(text, resolveWikilink)
		if next == text {
			return next
		}
		text = next
	}
}

func resolveWikilink(m string) string {
	sub := wikilinkRe.FindStringSubmatch(m)
	target := strings.TrimSpace(sub[1])
	if strings.HasPrefix(target, ":") {
		// [[:Category:X]] links to the category page instead of tagging.
		target = strings.TrimSpace(target[1:])
	} else if isEmbedNamespace(target) {
		return m
	}
	if sub[2] != "" {
		if label := strings.TrimSpace(sub[2][1:]); label != "" {
			return label
		}
	}
	return target
}

func isEmbedNamespace(target string) bool {
	ns, _, ok := strings.Cut(target, ":")
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(ns)) {
	case "file", "image", "category":
		return true
	}
	return false
}

var (
	extLinkLabelRe = regexp.MustCompile(`\[(?:https?:)?//[^\s\[\]]+\s+([^\[\]]*)\]`)
	extLinkBareRe  = regexp.MustCompile(`\[(?:https?:)?//[^\s\[\]]+\]`)
)

func resolveExternalLinks(text string) string {
	text = extLinkLabelRe.ReplaceAllString(text, "$1")
	return extLinkBareRe.ReplaceAllString(text, "")
}

// emphasisRe matches bold, italic, and bold-italic quote runs.
var emphasisRe = regexp.MustCompile(`'{2,}`)

func stripEmphasis(text string) string {
	return emphasisRe.ReplaceAllString(text, "")
}

var (
	commentRe = regexp.MustCompile(`(?s)<!--.*?-->`)
	brRe      = regexp.MustCompile(`(?i)<br\s*/?>`)

	// tagRe only matches tags that open with a letter so prose such as
	// "a < b" survives.
	tagRe = regexp.MustCompile(`</?[A-Za-z][^<>]*>`)
)

func stripHTML(text string) string {
	text = commentRe.ReplaceAllString(text, "")
	text = brRe.ReplaceAllString(text, " ")
	return tagRe.ReplaceAllString(text, "")
}

var embedRe = regexp.MustCompile(`(?i)\[\[\s*(?:File|Image|Category)\s*:[^\[\]]*\]\]`)

func stripEmbeds(text string) string {
	return embedRe.ReplaceAllString(text, "")
}

var (
	pronunciationParenRe = regexp.MustCompile(`(?i)\(\s*(?:IPA|Phyrexian|pronounced|pronunciation)\b[^()]*\)`)
	ipaBracketRe         = regexp.MustCompile(`(?i)\bIPA:\s*(?:\[[^\]]*\]|/[^/]*/)`)
	emptyParenRe         = regexp.MustCompile(`\(\s*[,;]?\s*\)`)
)

func stripPronunciation(text string) string {
	text = pronunciationParenRe.ReplaceAllString(text, "")
	text = ipaBracketRe.ReplaceAllString(text, "")
	return emptyParenRe.ReplaceAllString(text, "")
}

var spaceRe = regexp.MustCompile(`[\s\p{Z}]+`)

func collapseWhitespace(text string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(text, " "))
}
