// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wikitext

import (
	"regexp"
	"strings"
	"unicode"
)

// Fields maps lower-cased template parameter names to sanitized values.
type Fields map[string]string

// First returns the value of the first key present with a non-empty value.
func (f Fields) First(keys ...string) (string, bool) {
	for _, k := range keys {
		if v := f[k]; v != "" {
			return v, true
		}
	}
	return "", false
}

// Without returns a copy of f with the named keys removed.
func (f Fields) Without(keys ...string) Fields {
	drop := make(map[string]bool, len(keys))
	for _, k := range keys {
		drop[k] = true
	}
	out := make(Fields, len(f))
	for k, v := range f {
		if !drop[k] && v != "" {
			out[k] = v
		}
	}
	return out
}

// ExtractTemplateFields parses the parameter block of one template. The block
// must begin with "|" (leading whitespace is ignored); anything else yields
// an empty map. Pipes inside [[links]] or nested {{templates}} do not split
// a value. Parameters without "=" or with an empty sanitized value are
// dropped, and a later duplicate key replaces an earlier one.
func ExtractTemplateFields(block string) Fields {
	fields := Fields{}
	trimmed := strings.TrimLeftFunc(block, unicode.IsSpace)
	if !strings.HasPrefix(trimmed, "|") {
		return fields
	}

	for _, seg := range splitTopLevel(trimmed[1:]) {
		key, value, ok := strings.Cut(seg, "=")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		if v := Sanitize(strings.TrimSpace(value)); v != "" {
			fields[key] = v
		}
	}
	return fields
}

// splitTopLevel splits s on "|" characters that are not inside [[ ]] or
// {{ }}. An unmatched "}}" ends the block, so callers may pass text that
// still carries the template's closing braces.
func splitTopLevel(s string) []string {
	var (
		parts []string
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		switch {
		case strings.HasPrefix(s[i:], "[[") || strings.HasPrefix(s[i:], "{{"):
			depth++
			i++
		case strings.HasPrefix(s[i:], "]]"):
			if depth > 0 {
				depth--
			}
			i++
		case strings.HasPrefix(s[i:], "}}"):
			if depth == 0 {
				return append(parts, s[start:i])
			}
			depth--
			i++
		case s[i] == '|' && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

// infoboxStartRe matches the opening of a character infobox template.
var infoboxStartRe = regexp.MustCompile(`(?i)\{\{\s*(?:Infobox|Character)\b`)

// FindInfobox returns the parameter block (starting at the first top-level
// "|") of the first infobox in markup. An unterminated infobox runs to the
// end of the text.
func FindInfobox(markup string) (string, bool) {
	loc := infoboxStartRe.FindStringIndex(markup)
	if loc == nil {
		return "", false
	}

	body := markup[loc[0]+2:]
	end := len(body)
	depth := 0
scan:
	for i := 0; i < len(body)-1; i++ {
		switch body[i : i+2] {
		case "{{":
			depth++
			i++
		case "}}":
			if depth == 0 {
				end = i
				break scan
			}
			depth--
			i++
		}
	}
	body = body[:end]

	pipe := topLevelPipe(body)
	if pipe < 0 {
		return "", false
	}
	return body[pipe:], true
}

func topLevelPipe(s string) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch {
		case strings.HasPrefix(s[i:], "[[") || strings.HasPrefix(s[i:], "{{"):
			depth++
			i++
		case strings.HasPrefix(s[i:], "]]") || strings.HasPrefix(s[i:], "}}"):
			if depth > 0 {
				depth--
			}
			i++
		case s[i] == '|' && depth == 0:
			return i
		}
	}
	return -1
}

// headingRe matches a section heading line such as "== Biography ==".
var headingRe = regexp.MustCompile(`^(={2,6})\s*(.*?)\s*={2,6}\s*$`)

// Section returns the raw markup under the first heading whose title matches
// name case-insensitively, up to the next heading of any level.
func Section(markup, name string) string {
	lines := strings.Split(markup, "\n")
	var (
		capturing bool
		body      []string
	)
	for _, line := range lines {
		if m := headingRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			if capturing {
				break
			}
			if strings.EqualFold(m[2], name) {
				capturing = true
			}
			continue
		}
		if capturing {
			body = append(body, line)
		}
	}
	return strings.TrimSpace(strings.Join(body, "\n"))
}

// Lead returns the markup before the first section heading.
func Lead(markup string) string {
	lines := strings.Split(markup, "\n")
	for i, line := range lines {
		if headingRe.MatchString(strings.TrimSpace(line)) {
			return strings.Join(lines[:i], "\n")
		}
	}
	return markup
}
