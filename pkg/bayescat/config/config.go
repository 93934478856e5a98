package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/bayescat/pkg/bayescat/internalerr"
	"github.com/cognicore/bayescat/pkg/bayescat/lexicon"
	"github.com/cognicore/bayescat/pkg/bayescat/segment"
)

// Config is the full tool configuration
type Config struct {
	Pipeline Pipeline `yaml:"pipeline" toml:"pipeline"`
	Dataset  Dataset  `yaml:"dataset" toml:"dataset"`
	Eval     Eval     `yaml:"eval" toml:"eval"`
}

// Pipeline configures the tokenizer stages
type Pipeline struct {
	Delimiters   string          `yaml:"delimiters" toml:"delimiters"`
	StripPattern string          `yaml:"strip_pattern" toml:"strip_pattern"`
	MinLength    int             `yaml:"min_length" toml:"min_length"` // 0 disables the length filter
	HTML         bool            `yaml:"html" toml:"html"`
	Stopwords    []string        `yaml:"stopwords" toml:"stopwords"`
	StoplistPath string          `yaml:"stoplist" toml:"stoplist"`
	Synonyms     []lexicon.Entry `yaml:"synonyms" toml:"synonyms"`
	LexiconPath  string          `yaml:"lexicon" toml:"lexicon"`
}

// Dataset configures how training files are read
type Dataset struct {
	Delimiter string `yaml:"delimiter" toml:"delimiter"`
	Header    bool   `yaml:"header" toml:"header"`
	Augment   bool   `yaml:"augment" toml:"augment"`
}

// Eval configures the evaluation harness
type Eval struct {
	Workers   int `yaml:"workers" toml:"workers"`
	MaxMisses int `yaml:"max_misses" toml:"max_misses"`
}

// Default returns the configuration of the canonical pipeline.
func Default() Config {
	return Config{
		Pipeline: Pipeline{
			Delimiters:   string(segment.DefaultDelimiters),
			StripPattern: segment.NonWordPattern,
		},
		Dataset: Dataset{
			Delimiter: ";",
			Header:    true,
			Augment:   true,
		},
	}
}

// Load reads a YAML or TOML file (by extension) over the defaults.
// Keys missing from the file keep their default value.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return Config{}, fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("%w: %v", internalerr.ErrInvalidConfig, err)
		}
	default:
		return Config{}, fmt.Errorf("%w: unsupported config format %q", internalerr.ErrInvalidConfig, filepath.Ext(path))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later.
func (c Config) Validate() error {
	if c.Pipeline.Delimiters == "" {
		return fmt.Errorf("%w: pipeline.delimiters must not be empty", internalerr.ErrInvalidConfig)
	}
	if c.Pipeline.StripPattern != "" {
		if _, err := regexp.Compile(c.Pipeline.StripPattern); err != nil {
			return fmt.Errorf("%w: pipeline.strip_pattern: %v", internalerr.ErrInvalidConfig, err)
		}
	}
	if c.Pipeline.MinLength < 0 {
		return fmt.Errorf("%w: pipeline.min_length must be >= 0", internalerr.ErrInvalidConfig)
	}
	if utf8.RuneCountInString(c.Dataset.Delimiter) != 1 {
		return fmt.Errorf("%w: dataset.delimiter must be a single character", internalerr.ErrInvalidConfig)
	}
	if c.Eval.Workers < 0 {
		return fmt.Errorf("%w: eval.workers must be >= 0", internalerr.ErrInvalidConfig)
	}
	return nil
}

// Stoplist represents the stopword list configuration
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, err
	}

	return &sl, nil
}
