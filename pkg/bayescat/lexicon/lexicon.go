package lexicon

import (
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/bayescat/pkg/bayescat/segment"
)

// Lexicon maps label aliases to one canonical token, so that
// "vw", "VW" and "volkswagen" all count as the same word.
//
// Keys are normalized the way the canonical pipeline normalizes a single
// token (non-word runs stripped, lowercased, accents folded), which lets a
// Lexicon sit at the end of that pipeline via segment.Synonyms.
type Lexicon struct {
	// canonical -> all variants, canonical first
	groups map[string][]string

	// variant -> canonical
	reverseIndex map[string]string
}

// Entry is one alias group as read from configuration.
type Entry struct {
	Canonical string   `yaml:"canonical" toml:"canonical"`
	Variants  []string `yaml:"variants" toml:"variants"`
}

var nonWord = regexp.MustCompile(segment.NonWordPattern)

// Key normalizes s to the form stored in the lexicon.
func Key(s string) string {
	return segment.Fold(strings.ToLower(nonWord.ReplaceAllString(s, "")))
}

// New creates an empty lexicon.
func New() *Lexicon {
	return &Lexicon{
		groups:       make(map[string][]string),
		reverseIndex: make(map[string]string),
	}
}

// FromEntries builds a lexicon from configuration entries.
func FromEntries(entries []Entry) *Lexicon {
	lex := New()
	for _, e := range entries {
		lex.AddGroup(e.Canonical, e.Variants)
	}
	return lex
}

// LoadFromYAML loads alias groups from a YAML file.
//
// Expected format:
//
//	aliases:
//	  - canonical: volkswagen
//	    variants: [vw, volks]
//	  - canonical: mercedes
//	    variants: [mercedes-benz, mb]
func LoadFromYAML(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc struct {
		Aliases []Entry `yaml:"aliases"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	return FromEntries(doc.Aliases), nil
}

// AddGroup registers variants of canonical. If the group already exists
// its old variants are dropped first.
func (l *Lexicon) AddGroup(canonical string, variants []string) {
	canonical = Key(canonical)
	if canonical == "" {
		return
	}

	if old, exists := l.groups[canonical]; exists {
		for _, v := range old {
			delete(l.reverseIndex, v)
		}
	}

	normalized := make([]string, 0, len(variants)+1)
	seen := map[string]bool{canonical: true}
	normalized = append(normalized, canonical)
	for _, v := range variants {
		v = Key(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		normalized = append(normalized, v)
	}

	l.groups[canonical] = normalized
	for _, v := range normalized {
		l.reverseIndex[v] = canonical
	}
}

// Normalize returns the canonical form of token, or token unchanged when
// it is not a known variant.
func (l *Lexicon) Normalize(token string) string {
	if canonical, ok := l.reverseIndex[Key(token)]; ok {
		return canonical
	}
	return token
}

// Variants returns every variant of token's group, canonical first.
// Unknown tokens return a slice holding only the token.
func (l *Lexicon) Variants(token string) []string {
	key := Key(token)
	if canonical, ok := l.reverseIndex[key]; ok {
		return l.groups[canonical]
	}
	return []string{token}
}

// Canonicals returns the canonical forms in sorted order.
func (l *Lexicon) Canonicals() []string {
	out := make([]string, 0, len(l.groups))
	for c := range l.groups {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of alias groups.
func (l *Lexicon) Len() int {
	return len(l.groups)
}
