package config

import (
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/rs/zerolog"

	"github.com/cognicore/bayescat/pkg/bayescat/internalerr"
	"github.com/cognicore/bayescat/pkg/bayescat/lexicon"
	"github.com/cognicore/bayescat/pkg/bayescat/segment"
)

func TestLoaderDefaults(t *testing.T) {
	comp, err := (&Loader{Logger: zerolog.Nop()}).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if comp.Tokenizer.Len() != segment.Canonical().Len() {
		t.Errorf("default tokenizer has %d stages, want %d", comp.Tokenizer.Len(), segment.Canonical().Len())
	}
	if comp.Lexicon.Len() != 0 {
		t.Errorf("default lexicon should be empty, got %d groups", comp.Lexicon.Len())
	}
	if comp.Dataset.Delimiter != ';' || !comp.Dataset.Header {
		t.Errorf("dataset options = %+v", comp.Dataset)
	}

	text := "Škoda Octavia 1.6 TDI, Combi"
	if got, want := comp.Tokenizer.Tokens(text), segment.Canonical().Tokens(text); !slices.Equal(got, want) {
		t.Errorf("default tokenizer = %v, canonical = %v", got, want)
	}
}

func TestLoaderFullPipeline(t *testing.T) {
	stop := writeFile(t, "stop.yaml", "terms:\n  - car\n")
	lex := writeFile(t, "lexicon.yaml", `
aliases:
  - canonical: mercedes
    variants: [mb, benz]
`)
	cfgPath := writeFile(t, "bayescat.yaml", `
pipeline:
  min_length: 2
  html: true
  stopwords: [The]
  stoplist: `+stop+`
  lexicon: `+lex+`
  synonyms:
    - canonical: volkswagen
      variants: [vw]
dataset:
  delimiter: ","
  header: false
`)

	comp, err := (&Loader{ConfigPath: cfgPath, Logger: zerolog.Nop()}).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// html, symbols, strip, lower, fold, length, synonyms, stopwords, non-blank
	if comp.Tokenizer.Len() != 9 {
		t.Errorf("expected 9 stages, got %d", comp.Tokenizer.Len())
	}
	if comp.Lexicon.Len() != 2 {
		t.Errorf("expected inline and file aliases merged, got %v", comp.Lexicon.Canonicals())
	}
	if comp.Dataset.Delimiter != ',' || comp.Dataset.Header {
		t.Errorf("dataset options = %+v", comp.Dataset)
	}

	got := comp.Tokenizer.Tokens("<p>The <b>VW</b> Golf car, a MB</p>")
	want := []string{"volkswagen", "golf", "mercedes"}
	if !slices.Equal(got, want) {
		t.Errorf("Tokens = %v, want %v", got, want)
	}
}

func TestLoaderMissingFiles(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"stoplist", "pipeline:\n  stoplist: /nonexistent/stop.yaml\n"},
		{"lexicon", "pipeline:\n  lexicon: /nonexistent/lexicon.yaml\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "bayescat.yaml", tt.content)
			if _, err := (&Loader{ConfigPath: path}).Load(); err == nil {
				t.Error("expected error for missing file")
			}
		})
	}
}

func TestLoaderMissingConfig(t *testing.T) {
	_, err := (&Loader{ConfigPath: filepath.Join(t.TempDir(), "none.yaml")}).Load()
	if err == nil {
		t.Error("expected error for missing config")
	}
}

func TestBuildRejectsInvalid(t *testing.T) {
	cfg := Default()
	cfg.Dataset.Delimiter = ""
	if _, err := Build(cfg, zerolog.Nop()); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestNewTokenizerStopwordsNormalized(t *testing.T) {
	tok := NewTokenizer(Default().Pipeline, nil, []string{"Ÿes", "", "--"})
	got := tok.Tokens("yes no")
	if !slices.Equal(got, []string{"no"}) {
		t.Errorf("Tokens = %v, want [no]", got)
	}
}

func TestNewTokenizerSynonymsOnly(t *testing.T) {
	lex := lexicon.FromEntries([]lexicon.Entry{{Canonical: "Škoda", Variants: []string{"skd"}}})
	tok := NewTokenizer(Default().Pipeline, lex, nil)
	got := tok.Tokens("SKD Fabia")
	if !slices.Equal(got, []string{"skoda", "fabia"}) {
		t.Errorf("Tokens = %v", got)
	}
}
