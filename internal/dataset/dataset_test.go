package dataset

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/lore-engine/pkg/types"
)

var fixedNow = time.Date(2025, 5, 23, 14, 16, 53, 0, time.UTC)

func sampleDataset() *Dataset {
	d := New(fixedNow)
	d.Characters["Urza"] = types.CharacterRecord{
		Name:           "Urza",
		URL:            "https://mtg.wiki/page/Urza",
		Description:    "Urza was a human artificer.",
		Race:           "Human",
		Status:         types.StatusDeceased,
		Colors:         []string{"Blue", "Red"},
		IsPlaneswalker: true,
		IsDeceased:     true,
		Abilities:      []string{"Artifice.", "Visions.", "Time travel.", "Fourth."},
		RawContent:     "'''Urza''' was a human artificer.",
	}
	d.Characters["Gerrard Capashen"] = types.CharacterRecord{
		Name:        "Gerrard Capashen",
		Description: "Gerrard was the captain of the Weatherlight.",
		Colors:      []string{},
	}
	d.Characters["Ajani"] = types.CharacterRecord{
		Name:           "Ajani",
		Description:    "Ajani is a leonin planeswalker.",
		Race:           "Leonin",
		Status:         types.StatusAlive,
		Colors:         []string{"White"},
		IsPlaneswalker: true,
	}
	d.Metadata.FailedPages = []string{"Broken page"}
	return d
}

func TestWriteLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "raw", "characters.json")
	require.NoError(t, Write(path, sampleDataset()))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Metadata.TotalCharacters)
	assert.Equal(t, "2025-05-23T14:16:53Z", s.Metadata.ScrapedDate)
	assert.Equal(t, []string{"Broken page"}, s.Metadata.FailedPages)
	assert.Equal(t, DefaultSource, s.Metadata.Source)

	urza := s.Characters["Urza"]
	assert.Equal(t, "Urza was a human artificer.", urza.CleanDescription)
	assert.Equal(t, "Human", urza.Race)
	assert.Equal(t, types.FlexList{"Blue", "Red"}, urza.Colors)
	assert.NotEmpty(t, urza.RawContent)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file is renamed away")
}

func TestWriteKeepsMarkupUnescaped(t *testing.T) {
	path := filepath.Join(t.TempDir(), "characters.json")
	d := New(fixedNow)
	d.Characters["Tezzeret"] = types.CharacterRecord{Name: "Tezzeret", Description: "Tezzeret <artificer> & agent."}
	require.NoError(t, Write(path, d))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Tezzeret <artificer> & agent.")
}

func TestLoadFormats(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
		wantErr error
	}{
		{
			name:    "wrapped with metadata",
			content: `{"metadata": {"total_characters": 1, "scraped_date": "2025-05-23T13:24:25.123456"}, "characters": {"Karn": {"name": "Karn"}}}`,
			want:    []string{"Karn"},
		},
		{
			name:    "bare progress mapping",
			content: `{"Karn": {"name": "Karn"}, "Jhoira": {"name": "Jhoira", "colors": "Blue, Red"}}`,
			want:    []string{"Jhoira", "Karn"},
		},
		{
			name:    "empty characters",
			content: `{"metadata": {}, "characters": {}}`,
			wantErr: ErrNoCharacters,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "in.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			s, err := Load(path)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			var got []string
			for name := range s.Characters {
				got = append(got, name)
			}
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestLoadInputs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "characters.json")
	require.NoError(t, Write(path, sampleDataset()))

	inputs, err := LoadInputs(path)
	require.NoError(t, err)
	require.Len(t, inputs, 1, "only records with raw markup become inputs")
	assert.Equal(t, "Urza", inputs[0].Title)
	assert.Equal(t, "'''Urza''' was a human artificer.", inputs[0].Markup)
}

func TestSample(t *testing.T) {
	d := sampleDataset()

	s := d.Sample(2)
	assert.Equal(t, []string{"Ajani", "Gerrard Capashen"}, s.Names())
	assert.Equal(t, 2, s.Metadata.TotalCharacters)
	assert.Len(t, d.Characters, 3, "original is untouched")

	assert.Len(t, d.Sample(0).Characters, 3)
	assert.Len(t, d.Sample(50).Characters, 3)
}

func TestWriteBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.txt")
	require.NoError(t, WriteBackup(path, sampleDataset(), fixedNow))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.True(t, strings.HasPrefix(text, "MTG CHARACTERS DATABASE BACKUP\n"))
	assert.Contains(t, text, "Total Characters: 3\n")
	assert.Contains(t, text, "Scraped: 2025-05-23 14:16:53\n")

	ajani := strings.Index(text, "CHARACTER: Ajani")
	urza := strings.Index(text, "CHARACTER: Urza")
	gerrard := strings.Index(text, "CHARACTER: Gerrard Capashen")
	assert.True(t, ajani < urza && urza < gerrard, "planeswalkers first, then by name")

	assert.Contains(t, text, "Abilities: Artifice.; Visions.; Time travel.\n")
	assert.Contains(t, text, "Colors: Blue, Red\n")
	assert.NotContains(t, text, "Fourth.")
}

func TestClip(t *testing.T) {
	assert.Equal(t, "short", clip("short", 10))
	assert.Equal(t, "Jäc...", clip("Jäce Beleren", 3))
}

func TestComputeStats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "characters.json")
	require.NoError(t, Write(path, sampleDataset()))
	s, err := Load(path)
	require.NoError(t, err)

	st := ComputeStats(s)
	assert.Equal(t, 3, st.Total)
	assert.Equal(t, 2, st.Planeswalkers)
	assert.Equal(t, 1, st.Deceased)
	assert.Equal(t, 1, st.FailedPages)
	assert.Equal(t, 1, st.WithRawMarkup)
	assert.Equal(t, []Count{{"Blue", 1}, {"Colorless", 1}, {"Red", 1}, {"White", 1}}, st.Colors)
	assert.Equal(t, []Count{{"Human", 1}, {"Leonin", 1}}, st.Races)
	assert.Equal(t, []Count{{"Alive", 1}, {"Deceased", 1}, {"Unknown", 1}}, st.Statuses)

	var buf bytes.Buffer
	st.Print(&buf, 2)
	out := buf.String()
	assert.Contains(t, out, "Planeswalkers:       2\n")
	assert.Contains(t, out, "Regular characters:  1\n")
	assert.Contains(t, out, "  ... 2 more\n")
}

func TestRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "characters.json")
	require.NoError(t, Write(path, sampleDataset()))

	d, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ajani", "Gerrard Capashen", "Urza"}, d.Names())
	assert.Equal(t, types.StatusDeceased, d.Characters["Urza"].Status)

	empty := filepath.Join(t.TempDir(), "empty.json")
	require.NoError(t, Write(empty, New(fixedNow)))
	_, err = Read(empty)
	assert.ErrorIs(t, err, ErrNoCharacters)
}
