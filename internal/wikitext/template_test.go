package wikitext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTemplateFields(t *testing.T) {
	tests := []struct {
		name  string
		block string
		want  Fields
	}{
		{
			name:  "infobox block",
			block: "|name=Urza\n|race=[[Human|human]]\n|status=Deceased\n|image=Urza.jpg\n|empty=\n",
			want: Fields{
				"name":   "Urza",
				"race":   "human",
				"status": "Deceased",
				"image":  "Urza.jpg",
			},
		},
		{
			name:  "no leading pipe",
			block: "name=Urza",
			want:  Fields{},
		},
		{
			name:  "leading whitespace and mixed-case key",
			block: "  \n|Race = Elf",
			want:  Fields{"race": "Elf"},
		},
		{
			name:  "closing braces end the block",
			block: "|race=Human}}\nTrailing prose |not=a field",
			want:  Fields{"race": "Human"},
		},
		{
			name:  "nested template value keeps its pipes",
			block: "|colors={{mana|W}}, {{mana|U}}|plane=Dominaria",
			want:  Fields{"colors": "(W), (U)", "plane": "Dominaria"},
		},
		{
			name:  "segment without equals dropped",
			block: "|Urza|race=Human",
			want:  Fields{"race": "Human"},
		},
		{
			name:  "later duplicate wins",
			block: "|race=Human|race=Elf",
			want:  Fields{"race": "Elf"},
		},
		{
			name:  "empty",
			block: "",
			want:  Fields{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTemplateFields(tt.block))
		})
	}
}

func TestFieldsFirst(t *testing.T) {
	f := Fields{"species": "Elf", "birthplace": "Lorwyn"}

	v, ok := f.First("race", "species")
	assert.True(t, ok)
	assert.Equal(t, "Elf", v)

	_, ok = f.First("status", "lifetime")
	assert.False(t, ok)
}

func TestFieldsWithout(t *testing.T) {
	f := Fields{"race": "Elf", "age": "40", "image": "a.png"}
	got := f.Without("race", "image")
	assert.Equal(t, Fields{"age": "40"}, got)
	assert.Len(t, f, 3, "original untouched")
}

func TestFindInfobox(t *testing.T) {
	markup := "Intro\n{{Infobox character\n|name=Urza\n|race=Human\n|born={{date|1}}\n}}\nText"

	block, ok := FindInfobox(markup)
	require.True(t, ok)
	assert.Equal(t, "|name=Urza\n|race=Human\n|born={{date|1}}\n", block)

	fields := ExtractTemplateFields(block)
	assert.Equal(t, Fields{"name": "Urza", "race": "Human"}, fields)
}

func TestFindInfoboxCharacterTemplate(t *testing.T) {
	block, ok := FindInfobox("{{character|name=Jace|plane=Vryn}} Jace is")
	require.True(t, ok)
	assert.Equal(t, "|name=Jace|plane=Vryn", block)
}

func TestFindInfoboxUnterminated(t *testing.T) {
	block, ok := FindInfobox("{{Infobox\n|name=Karn\n|race=Golem")
	require.True(t, ok)
	assert.Equal(t, Fields{"name": "Karn", "race": "Golem"}, ExtractTemplateFields(block))
}

func TestFindInfoboxMissing(t *testing.T) {
	_, ok := FindInfobox("No templates here {{c|Card}}")
	assert.False(t, ok)

	_, ok = FindInfobox("{{Infobox}} with no parameters")
	assert.False(t, ok)
}

const sectionedPage = `Lead paragraph.
== Biography ==
Born in Dominaria.
=== Early life ===
Child.
== Story appearances ==
* ''The Brothers' War''
`

func TestSection(t *testing.T) {
	assert.Equal(t, "Born in Dominaria.", Section(sectionedPage, "biography"))
	assert.Equal(t, "* ''The Brothers' War''", Section(sectionedPage, "Story appearances"))
	assert.Equal(t, "", Section(sectionedPage, "Abilities"))
}

func TestLead(t *testing.T) {
	assert.Equal(t, "Lead paragraph.", Lead(sectionedPage))
	assert.Equal(t, "no headings", Lead("no headings"))
}
