package lexicon

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/cognicore/bayescat/pkg/bayescat/segment"
)

func TestLexiconNew(t *testing.T) {
	lex := New()
	if lex.Len() != 0 {
		t.Errorf("New lexicon should have 0 groups, got %d", lex.Len())
	}
}

func TestLexiconAddGroup(t *testing.T) {
	lex := New()
	lex.AddGroup("volkswagen", []string{"VW", "volks", "vw"})

	for _, in := range []string{"vw", "VW", "volks", "volkswagen"} {
		if got := lex.Normalize(in); got != "volkswagen" {
			t.Errorf("Normalize(%q) = %q, want volkswagen", in, got)
		}
	}
	if got := lex.Normalize("golf"); got != "golf" {
		t.Errorf("unknown token should pass through, got %q", got)
	}

	want := []string{"volkswagen", "vw", "volks"}
	if got := lex.Variants("volks"); !slices.Equal(got, want) {
		t.Errorf("Variants(volks) = %v, want %v", got, want)
	}
	if got := lex.Variants("golf"); !slices.Equal(got, []string{"golf"}) {
		t.Errorf("Variants(golf) = %v", got)
	}
}

func TestLexiconKeyMatchesPipeline(t *testing.T) {
	lex := New()
	lex.AddGroup("Mercedes", []string{"Mercedes-Benz", "Mércédès"})

	tok := segment.NewTokenizer(
		segment.Symbols(segment.DefaultDelimiters...),
		segment.StripNonWord(),
		segment.Lowercase(),
		segment.FoldAccents(),
		segment.NonBlank(),
		segment.Synonyms(lex),
	)

	got := tok.Tokens("MERCEDES-BENZ C200, Mércédès")
	want := []string{"mercedes", "c200", "mercedes"}
	if !slices.Equal(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLexiconReplaceGroup(t *testing.T) {
	lex := New()
	lex.AddGroup("acme", []string{"acmeco"})
	lex.AddGroup("acme", []string{"acme-corp"})

	if got := lex.Normalize("acmeco"); got != "acmeco" {
		t.Errorf("old variant should be gone, got %q", got)
	}
	if got := lex.Normalize("acmecorp"); got != "acme" {
		t.Errorf("Normalize(acmecorp) = %q, want acme", got)
	}
	if lex.Len() != 1 {
		t.Errorf("expected 1 group, got %d", lex.Len())
	}
}

func TestLexiconEmptyCanonical(t *testing.T) {
	lex := New()
	lex.AddGroup("---", []string{"x"})
	if lex.Len() != 0 {
		t.Errorf("blank canonical should be ignored, got %d groups", lex.Len())
	}
}

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	content := `aliases:
  - canonical: volkswagen
    variants: [vw, volks]
  - canonical: chevrolet
    variants: [chevy]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	lex, err := LoadFromYAML(path)
	if err != nil {
		t.Fatalf("LoadFromYAML: %v", err)
	}
	if lex.Len() != 2 {
		t.Errorf("expected 2 groups, got %d", lex.Len())
	}
	if got := lex.Normalize("chevy"); got != "chevrolet" {
		t.Errorf("Normalize(chevy) = %q", got)
	}
}

func TestLoadFromYAMLMissing(t *testing.T) {
	if _, err := LoadFromYAML(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestCanonicals(t *testing.T) {
	lex := FromEntries([]Entry{
		{Canonical: "volkswagen", Variants: []string{"vw"}},
		{Canonical: "Audi"},
	})
	if got := lex.Canonicals(); !slices.Equal(got, []string{"audi", "volkswagen"}) {
		t.Errorf("Canonicals() = %v", got)
	}
}
