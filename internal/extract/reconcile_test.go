package extract

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/lore-engine/internal/infer"
	"github.com/pdiddy/lore-engine/internal/wikitext"
	"github.com/pdiddy/lore-engine/pkg/types"
)

const urzaPage = `{{Infobox character
|name=Urza
|race=Human
|birthplace=[[Terisia City]]
|status=Deceased
|colors=Blue, Red
|image=Urza.jpg
|affiliation=[[Tolarian Academy]]
}}
'''Urza''' was a [[Human|human]] [[artificer]] and one of the most powerful [[planeswalker]]s in the history of [[Dominaria]].
== Biography ==
Urza was born in Terisia City.
== Story appearances ==
* ''The Brothers' War''
* ''Planeswalker''
* ''Time Streams''
== Abilities ==
Urza was a master artificer who could build nearly anything. He also had powerful visions.
[[Category:Planeswalker characters]]
[[Category:Deceased]]`

func newTestReconciler() *Reconciler {
	return NewReconciler(infer.New(nil), types.DefaultPipelineConfig().Extraction)
}

func TestExtractFullPage(t *testing.T) {
	r := newTestReconciler()
	rec := r.Extract(types.RawInput{
		Title:      "Urza",
		Markup:     urzaPage,
		Categories: []string{"Category:Planeswalker characters", "Category:Deceased"},
	})

	assert.Equal(t, "Urza", rec.Name)
	assert.Equal(t, "Urza was a human artificer and one of the most powerful planeswalkers in the history of Dominaria.", rec.Description)
	assert.Equal(t, "Human", rec.Race)
	assert.Equal(t, "Terisia City", rec.Plane)
	assert.Equal(t, types.StatusDeceased, rec.Status)
	assert.Equal(t, []string{"Blue", "Red"}, rec.Colors)
	assert.Equal(t, map[string]string{"name": "Urza", "affiliation": "Tolarian Academy"}, rec.BiographicalInfo)
	assert.Equal(t, []string{"The Brothers' War", "Planeswalker", "Time Streams"}, rec.StoryAppearances)
	assert.Equal(t, []string{
		"Urza was a master artificer who could build nearly anything.",
		"He also had powerful visions.",
	}, rec.Abilities)
	assert.True(t, rec.IsPlaneswalker)
	assert.True(t, rec.IsDeceased)
	assert.Contains(t, rec.CreatureTypes, "Human")
	assert.Contains(t, rec.PlanesAssociated, "Dominaria")
	assert.Equal(t, urzaPage, rec.RawContent)
}

func TestExtractTemplateRacePrecedence(t *testing.T) {
	r := newTestReconciler()
	rec := r.Extract(types.RawInput{
		Title:  "Tom",
		Markup: "{{Infobox\n|race=Elf\n}}\nTom is a human wizard who lives in the forest near the river.",
	})
	assert.Equal(t, "Elf", rec.Race)
}

func TestExtractEmptyPage(t *testing.T) {
	r := newTestReconciler()
	rec := r.Extract(types.RawInput{Title: "Nobody"})

	assert.Equal(t, "Nobody is a character from Magic: The Gathering.", rec.Description)
	assert.Empty(t, rec.Race)
	assert.Empty(t, rec.Plane)
	assert.Equal(t, types.StatusUnknown, rec.Status, "default description is not evidence")
	assert.NotNil(t, rec.Colors)
	assert.Empty(t, rec.Colors)
	assert.NotNil(t, rec.BiographicalInfo)
	assert.Empty(t, rec.StoryAppearances)
	assert.Empty(t, rec.Abilities)
	assert.False(t, rec.IsPlaneswalker)
	assert.False(t, rec.IsDeceased)
}

func TestReconcileNeverEmptyName(t *testing.T) {
	r := newTestReconciler()
	rec := r.Reconcile("  ", nil, Sources{})
	assert.Equal(t, "Unknown", rec.Name)
	assert.Equal(t, "Unknown is a character from Magic: The Gathering.", rec.Description)
}

func TestExtractDeterministic(t *testing.T) {
	r := newTestReconciler()
	in := types.RawInput{Title: "Urza", Markup: urzaPage}

	a, err := json.Marshal(r.Extract(in))
	require.NoError(t, err)
	b, err := json.Marshal(r.Extract(in))
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestExtractJSONKeys(t *testing.T) {
	r := newTestReconciler()
	data, err := json.Marshal(r.Extract(types.RawInput{Title: "Nobody"}))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Contains(t, m, "clean_description")
	assert.Contains(t, m, "colors")
	assert.NotContains(t, m, "race", "absent race is omitted")
	assert.NotContains(t, m, "status", "absent status is omitted")
}

func storyPage(n int) string {
	var sb strings.Builder
	sb.WriteString("== Story appearances ==\n")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&sb, "* Story number %02d\n", i)
	}
	sb.WriteString("== Abilities ==\n")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&sb, "Ability sentence number %02d is long enough. ", i)
	}
	return sb.String()
}

func TestBoundedListsKeepEarliest(t *testing.T) {
	r := newTestReconciler()
	markup := storyPage(12)

	rec := r.Extract(types.RawInput{Title: "Busy", Markup: markup})
	require.Len(t, rec.StoryAppearances, 10)
	assert.Equal(t, "Story number 01", rec.StoryAppearances[0])
	assert.Equal(t, "Story number 10", rec.StoryAppearances[9])
	require.Len(t, rec.Abilities, 5)
	assert.Equal(t, "Ability sentence number 01 is long enough.", rec.Abilities[0])

	repaired := r.Repair(types.StoredRecord{Name: "Busy", RawContent: markup})
	require.Len(t, repaired.StoryAppearances, 5)
	assert.Equal(t, "Story number 05", repaired.StoryAppearances[4])
}

func TestRepairTemplateShapedDescription(t *testing.T) {
	r := newTestReconciler()
	rec := r.Repair(types.StoredRecord{
		Name:        "Jaya Ballard",
		Description: "|name=Jaya\n|race=Human\n|plane=Dominaria\n|status=Alive\n|summary=A pyromancer of great renown.",
		Colors:      types.FlexList{"R"},
	})

	assert.Equal(t, "A pyromancer of great renown.", rec.Description)
	assert.Equal(t, "Human", rec.Race)
	assert.Equal(t, "Dominaria", rec.Plane)
	assert.Equal(t, types.StatusAlive, rec.Status)
	assert.Equal(t, []string{"Red"}, rec.Colors)
	assert.Equal(t, map[string]string{"name": "Jaya"}, rec.BiographicalInfo)
}

func TestRepairPrefersRawContent(t *testing.T) {
	r := newTestReconciler()
	rec := r.Repair(types.StoredRecord{
		Name:        "Urza",
		Description: "{{Infobox character",
		RawContent:  urzaPage,
		WikiURL:     "https://mtg.wiki/page/Urza",
	})

	assert.Equal(t, "Urza was a human artificer and one of the most powerful planeswalkers in the history of Dominaria.", rec.Description)
	assert.Equal(t, "Human", rec.Race)
	assert.Equal(t, "https://mtg.wiki/page/Urza", rec.URL)
	assert.Len(t, rec.StoryAppearances, 3)
}

func TestRepairBiographicalMapping(t *testing.T) {
	r := newTestReconciler()
	var stored types.StoredRecord
	require.NoError(t, json.Unmarshal([]byte(`{
		"name": "Chandra Nalaar",
		"description": "'''Chandra''' is a [[pyromancer]] from Kaladesh who wields red mana.",
		"status": "Unknown",
		"biographical_info": {"race": "Human", "birthplace": "[[Kaladesh]]", "lifetime": null, "relatives": "Pia Nalaar"}
	}`), &stored))

	rec := r.Repair(stored)
	assert.Equal(t, "Chandra is a pyromancer from Kaladesh who wields red mana.", rec.Description)
	assert.Equal(t, "Human", rec.Race)
	assert.Equal(t, "Kaladesh", rec.Plane)
	assert.Equal(t, types.StatusAlive, rec.Status)
	assert.Equal(t, []string{"Red"}, rec.Colors)
	assert.Equal(t, map[string]string{"relatives": "Pia Nalaar"}, rec.BiographicalInfo)
}

func TestRepairIdempotent(t *testing.T) {
	r := newTestReconciler()
	inputs := map[string]string{
		"mapping bio": `{
			"name": "Chandra Nalaar",
			"description": "'''Chandra''' is a [[pyromancer]] from Kaladesh who wields red mana.",
			"biographical_info": {"race": "Human", "relatives": "Pia Nalaar"},
			"story_appearances": ["* ''Chandra's Flame''"]
		}`,
		"string bio": `{
			"name": "Karn",
			"description": "|name=Karn\n|race=Golem\n|summary=A silver golem.",
			"biographical_info": "Karn was created by [[Urza]] and later became a planeswalker.",
			"colors": "Colorless"
		}`,
		"raw content": fmt.Sprintf(`{"name": "Urza", "description": "{{Infobox", "raw_content": %q}`, urzaPage),
		"nothing":     `{"name": "Ghost"}`,
	}
	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			var stored types.StoredRecord
			require.NoError(t, json.Unmarshal([]byte(in), &stored))

			once := r.Repair(stored)
			data, err := json.Marshal(once)
			require.NoError(t, err)

			var again types.StoredRecord
			require.NoError(t, json.Unmarshal(data, &again))
			twice := r.Repair(again)

			assert.Equal(t, once, twice)
		})
	}
}

func TestFillMissing(t *testing.T) {
	dst := wikitext.Fields{"race": "Elf"}
	fillMissing(dst, wikitext.Fields{"race": "Human", "plane": "Lorwyn", "status": ""})
	assert.Equal(t, wikitext.Fields{"race": "Elf", "plane": "Lorwyn"}, dst)
}
