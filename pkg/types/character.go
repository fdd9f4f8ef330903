// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the lore-engine pipeline.
package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Status is the life state of a character. The zero value means the state
// could not be determined.
type Status string

const (
	StatusUnknown    Status = ""
	StatusAlive      Status = "Alive"
	StatusDeceased   Status = "Deceased"
	StatusCompleated Status = "Compleated"
)

// RawInput is one wiki page as returned by the retrieval layer.
type RawInput struct {
	// Title is the page title and becomes the record name.
	Title string `json:"title" yaml:"title"`

	// Markup is the full, unprocessed wikitext of the page.
	Markup string `json:"markup" yaml:"markup"`

	// Categories lists the page's category titles when the API returned them.
	Categories []string `json:"categories,omitempty" yaml:"categories,omitempty"`
}

// CharacterRecord is the normalized output of extraction.
type CharacterRecord struct {
	Name string `json:"name" yaml:"name"`

	// URL is the canonical wiki page URL.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// Description is never empty and never starts with a markup character.
	Description string `json:"clean_description" yaml:"clean_description"`

	Race   string   `json:"race,omitempty" yaml:"race,omitempty"`
	Plane  string   `json:"plane,omitempty" yaml:"plane,omitempty"`
	Status Status   `json:"status,omitempty" yaml:"status,omitempty"`
	Colors []string `json:"colors" yaml:"colors"`

	// BiographicalInfo holds infobox attributes not promoted to a field above.
	BiographicalInfo map[string]string `json:"biographical_info" yaml:"biographical_info"`

	StoryAppearances []string `json:"story_appearances" yaml:"story_appearances"`
	Abilities        []string `json:"abilities" yaml:"abilities"`

	IsPlaneswalker bool `json:"is_planeswalker" yaml:"is_planeswalker"`
	IsDeceased     bool `json:"is_deceased" yaml:"is_deceased"`

	Categories       []string `json:"categories,omitempty" yaml:"categories,omitempty"`
	CreatureTypes    []string `json:"creature_types,omitempty" yaml:"creature_types,omitempty"`
	PlanesAssociated []string `json:"planes_associated,omitempty" yaml:"planes_associated,omitempty"`

	// RawContent keeps the source markup so the repair pass can re-derive
	// fields later without fetching the page again.
	RawContent string `json:"raw_content,omitempty" yaml:"-"`
}

// StoredRecord is a lenient view of a previously persisted record. Older
// scrapes wrote biographical_info as either a string or a mapping and colors
// as either a list or a comma-joined string, so those fields decode through
// FlexText and FlexList.
type StoredRecord struct {
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	CleanDescription string   `json:"clean_description"`
	RawContent       string   `json:"raw_content"`
	Race             string   `json:"race"`
	Plane            string   `json:"plane"`
	Status           string   `json:"status"`
	BiographicalInfo FlexText `json:"biographical_info"`
	Colors           FlexList `json:"colors"`
	CreatureTypes    FlexList `json:"creature_types"`
	Categories       FlexList `json:"categories"`
	StoryAppearances FlexList `json:"story_appearances"`
	Abilities        FlexList `json:"abilities"`
	URL              string   `json:"url"`
	WikiURL          string   `json:"wiki_url"`
	IsPlaneswalker   bool     `json:"is_planeswalker"`
	IsDeceased       bool     `json:"is_deceased"`
}

// ExistingDescription returns the description the record already carries,
// preferring the raw description field over a previous clean one.
func (r StoredRecord) ExistingDescription() string {
	if r.Description != "" {
		return r.Description
	}
	return r.CleanDescription
}

// FlexText decodes either a JSON string or a JSON object of strings.
type FlexText struct {
	Text   string
	Fields map[string]string
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexText) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		return json.Unmarshal(data, &f.Text)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decoding text or mapping: %w", err)
	}
	f.Fields = make(map[string]string, len(raw))
	for k, v := range raw {
		if v == nil {
			continue
		}
		f.Fields[k] = fmt.Sprint(v)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (f FlexText) MarshalJSON() ([]byte, error) {
	if f.Fields != nil {
		return json.Marshal(f.Fields)
	}
	if f.Text != "" {
		return json.Marshal(f.Text)
	}
	return []byte("null"), nil
}

// FlexList decodes either a JSON array of strings or a single string. A
// string is split on commas.
type FlexList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *FlexList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		*l = nil
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		var out FlexList
		for _, part := range strings.Split(s, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
		*l = out
		return nil
	}
	var items []any
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("decoding list: %w", err)
	}
	out := make(FlexList, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	*l = out
	return nil
}
