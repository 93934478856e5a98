package config

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cognicore/bayescat/pkg/bayescat/dataset"
	"github.com/cognicore/bayescat/pkg/bayescat/lexicon"
	"github.com/cognicore/bayescat/pkg/bayescat/segment"
)

// Loader loads the configuration file and constructs components
type Loader struct {
	ConfigPath string // empty means defaults
	Logger     zerolog.Logger
}

// Components holds all loaded configuration components
type Components struct {
	Config    Config
	Tokenizer *segment.Tokenizer
	Lexicon   *lexicon.Lexicon
	Dataset   dataset.Options
}

// Load reads the configuration and returns initialized components
func (l *Loader) Load() (*Components, error) {
	cfg := Default()
	if l.ConfigPath != "" {
		loaded, err := Load(l.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	return Build(cfg, l.Logger)
}

// Build turns a configuration into components.
func Build(cfg Config, logger zerolog.Logger) (*Components, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	lex := lexicon.FromEntries(cfg.Pipeline.Synonyms)
	if cfg.Pipeline.LexiconPath != "" {
		fromFile, err := lexicon.LoadFromYAML(cfg.Pipeline.LexiconPath)
		if err != nil {
			return nil, fmt.Errorf("load lexicon: %w", err)
		}
		for _, canonical := range fromFile.Canonicals() {
			lex.AddGroup(canonical, fromFile.Variants(canonical))
		}
	}

	stops := cfg.Pipeline.Stopwords
	if cfg.Pipeline.StoplistPath != "" {
		sl, err := LoadStoplist(cfg.Pipeline.StoplistPath)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		stops = append(stops, sl.Terms...)
	}

	comp := &Components{
		Config:    cfg,
		Tokenizer: NewTokenizer(cfg.Pipeline, lex, stops),
		Lexicon:   lex,
		Dataset: dataset.Options{
			Delimiter: []rune(cfg.Dataset.Delimiter)[0],
			Header:    cfg.Dataset.Header,
			Logger:    logger,
		},
	}

	logger.Debug().
		Int("stages", comp.Tokenizer.Len()).
		Int("aliases", lex.Len()).
		Int("stopwords", len(stops)).
		Msg("pipeline configured")

	return comp, nil
}

// NewTokenizer assembles the pipeline: optional markup stripping, split,
// strip, lowercase, fold, then the optional length, synonym and stopword
// stages, and finally blank suppression.
func NewTokenizer(p Pipeline, lex *lexicon.Lexicon, stopwords []string) *segment.Tokenizer {
	var stages []segment.Segment

	if p.HTML {
		stages = append(stages, segment.HTMLText())
	}

	pattern := p.StripPattern
	if pattern == "" {
		pattern = segment.NonWordPattern
	}
	stages = append(stages,
		segment.Symbols([]rune(p.Delimiters)...),
		segment.Strip(pattern),
		segment.Lowercase(),
		segment.FoldAccents(),
	)

	if p.MinLength > 0 {
		stages = append(stages, segment.MinLength(p.MinLength))
	}
	if lex != nil && lex.Len() > 0 {
		stages = append(stages, segment.Synonyms(lex))
	}
	if len(stopwords) > 0 {
		keys := make([]string, 0, len(stopwords))
		for _, w := range stopwords {
			if k := lexicon.Key(w); k != "" {
				keys = append(keys, k)
			}
		}
		stages = append(stages, segment.Stopwords(keys...))
	}

	stages = append(stages, segment.NonBlank())
	return segment.NewTokenizer(stages...)
}
