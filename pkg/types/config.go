package types

import (
	"runtime"
	"time"
)

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries bounds retries on 429, 5xx, and transport errors (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// FetchConfig holds settings for harvesting pages from the wiki.
type FetchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// APIURL is the MediaWiki api.php endpoint.
	APIURL string `json:"api_url" yaml:"api_url" mapstructure:"api_url"`

	// BaseURL is used to build page URLs for records.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// Categories are harvested in order; earlier categories win on duplicates.
	Categories []string `json:"categories" yaml:"categories" mapstructure:"categories"`

	// RequestsPerSecond caps the request rate against the API (default 2).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" mapstructure:"requests_per_second"`

	// MaxPerCategory limits pages taken from each category. Zero means no limit.
	MaxPerCategory int `json:"max_per_category" yaml:"max_per_category" mapstructure:"max_per_category"`

	// CheckpointEvery writes the partial dataset after this many new records.
	CheckpointEvery int `json:"checkpoint_every" yaml:"checkpoint_every" mapstructure:"checkpoint_every"`
}

// Limits bounds the list fields of a record.
type Limits struct {
	MaxStoryAppearances int `json:"max_story_appearances" yaml:"max_story_appearances" mapstructure:"max_story_appearances"`
	MaxAbilities        int `json:"max_abilities" yaml:"max_abilities" mapstructure:"max_abilities"`
}

// ExtractionConfig holds settings for the creation and repair passes.
type ExtractionConfig struct {
	// Extract applies to records built from fresh markup.
	Extract Limits `json:"extract" yaml:"extract" mapstructure:"extract"`

	// Repair applies to the cleaning pass over persisted records.
	Repair Limits `json:"repair" yaml:"repair" mapstructure:"repair"`

	// Workers is the size of the per-record worker pool (default NumCPU).
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`

	// VocabularyFile optionally overrides the built-in vocabulary tables.
	VocabularyFile string `json:"vocabulary_file,omitempty" yaml:"vocabulary_file,omitempty" mapstructure:"vocabulary_file"`
}

// StoreConfig holds settings for the SQLite character index.
type StoreConfig struct {
	// IndexDir holds lore.db and the export files.
	IndexDir string `json:"index_dir" yaml:"index_dir" mapstructure:"index_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Level       string `json:"level" yaml:"level" mapstructure:"level"`
	Development bool   `json:"development" yaml:"development" mapstructure:"development"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	DataDir    string           `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
	Fetch      FetchConfig      `json:"fetch" yaml:"fetch" mapstructure:"fetch"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction" mapstructure:"extraction"`
	Store      StoreConfig      `json:"store" yaml:"store" mapstructure:"store"`
	Log        LogConfig        `json:"log" yaml:"log" mapstructure:"log"`
}

// DefaultCategories is the harvest order used by the original scrapes:
// planeswalkers first, secondary characters last.
var DefaultCategories = []string{
	"Category:Planeswalker characters",
	"Category:Gods",
	"Category:Weatherlight Crew",
	"Category:Heroes of the Realm characters",
	"Category:Characters by plane",
	"Category:Characters by color",
	"Category:Legendary creatures",
	"Category:Characters",
	"Category:Deceased",
	"Category:Undead characters",
	"Category:Phyrexian characters",
	"Category:Artifact creatures",
	"Category:Enchantment creatures",
}

// DefaultPipelineConfig returns the configuration used when no file or flag
// overrides a value.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		DataDir: "data",
		Fetch: FetchConfig{
			HTTPConfig: HTTPConfig{
				Timeout:    30 * time.Second,
				UserAgent:  "lore-engine/0.1 (character database builder)",
				MaxRetries: 3,
			},
			APIURL:            "https://mtg.wiki/api.php",
			BaseURL:           "https://mtg.wiki",
			Categories:        append([]string(nil), DefaultCategories...),
			RequestsPerSecond: 2,
			CheckpointEvery:   100,
		},
		Extraction: ExtractionConfig{
			Extract: Limits{MaxStoryAppearances: 10, MaxAbilities: 5},
			Repair:  Limits{MaxStoryAppearances: 5, MaxAbilities: 5},
			Workers: runtime.NumCPU(),
		},
		Store: StoreConfig{
			IndexDir:   "data/index",
			MaxResults: 20,
		},
		Log: LogConfig{Level: "info"},
	}
}
