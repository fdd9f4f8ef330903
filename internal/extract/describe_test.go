package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/lore-engine/internal/wikitext"
)

func TestSelectDescriptionDefault(t *testing.T) {
	tests := []struct {
		name string
		c    Candidates
	}{
		{"no sources", Candidates{}},
		{"markup with no prose", Candidates{Markup: "{{Infobox\n|name=Urza\n}}\n[[Category:Artificers]]\n* list item"}},
		{"template-shaped bio", Candidates{BioText: "|race=Human"}},
		{"short lines only", Candidates{Markup: "Too short.\nStill short."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectDescription("Urza", tt.c)
			assert.Equal(t, "Urza is a character from Magic: The Gathering.", got)
		})
	}
}

func TestDescriptionFromMarkupStopsAtGoodLine(t *testing.T) {
	markup := `{{Infobox character
|name=Urza
|race=Human
}}
'''Urza''' was a [[Human|human]] [[artificer]] from [[Dominaria]] and the elder brother of Mishra.
He founded the Tolarian Academy on the island of Tolaria.
== Biography ==`

	got := DescriptionFromMarkup(markup)
	assert.Equal(t, "Urza was a human artificer from Dominaria and the elder brother of Mishra.", got)
}

func TestDescriptionFromMarkupAccumulatesShortLines(t *testing.T) {
	markup := "Short.\nKarn is a silver golem planeswalker.\nHe was built by Urza to travel through time and survive.\nThis third line must not appear in the description at all."

	got := DescriptionFromMarkup(markup)
	assert.Equal(t, "Karn is a silver golem planeswalker. He was built by Urza to travel through time and survive.", got)
}

func TestDescriptionFromMarkupSkipsMultiLineTemplates(t *testing.T) {
	markup := `{{Infobox
|name=X
|notes=Multi
line continuation that is definitely longer than fifty characters total.
}}
X is a minor character with a short description here.`

	got := DescriptionFromMarkup(markup)
	assert.Equal(t, "X is a minor character with a short description here.", got)
}

func TestSelectDescriptionPrecedence(t *testing.T) {
	tests := []struct {
		name string
		c    Candidates
		want string
	}{
		{
			name: "markup beats bio",
			c: Candidates{
				Markup:  "Urza was the greatest artificer Dominaria has ever known in its history.",
				BioText: "Urza was born in Terisia City long ago.",
			},
			want: "Urza was the greatest artificer Dominaria has ever known in its history.",
		},
		{
			name: "bio text",
			c:    Candidates{BioText: "Urza was the greatest [[artificer]] of his age."},
			want: "Urza was the greatest artificer of his age.",
		},
		{
			name: "bio beats existing",
			c:    Candidates{BioText: "Urza was born in Terisia City.", Existing: "Urza built many machines."},
			want: "Urza was born in Terisia City.",
		},
		{
			name: "existing when bio is template-shaped",
			c:    Candidates{BioText: "|race=Human", Existing: "Urza built many machines."},
			want: "Urza built many machines.",
		},
		{
			name: "template description field",
			c:    Candidates{Fields: wikitext.Fields{"description": "An artificer."}},
			want: "An artificer.",
		},
		{
			name: "summary inside template-shaped existing",
			c:    Candidates{Existing: "|name=Urza\n|summary=Founder of the academy.\n"},
			want: "Founder of the academy.",
		},
		{
			name: "first prose line of template-shaped existing",
			c:    Candidates{Existing: "|name=Urza\n|race=Human\nUrza built Karn."},
			want: "Urza built Karn.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectDescription("Urza", tt.c))
		})
	}
}

func TestMarkupShaped(t *testing.T) {
	assert.True(t, markupShaped("|name=x"))
	assert.True(t, markupShaped("{{x}}"))
	assert.True(t, markupShaped("[broken"))
	assert.False(t, markupShaped("Urza"))
	assert.False(t, markupShaped(""))
}
