package segment

import (
	"iter"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultDelimiters is the delimiter set of the canonical pipeline.
var DefaultDelimiters = []rune{' ', '.', ',', ';', '`', '+', '[', '?', ']', '*', '\\', ')'}

// NonWordPattern matches a run of characters that are not word characters.
// Letters, non-spacing marks, decimal digits and connector punctuation
// count as word characters, in every script.
const NonWordPattern = `[^\p{L}\p{Mn}\p{Nd}\p{Pc}]+`

// IsBlank reports whether s is empty or only whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func yieldIf(s string, ok bool) iter.Seq[string] {
	return func(yield func(string) bool) {
		if ok {
			yield(s)
		}
	}
}

type symbols struct {
	delims map[rune]struct{}
}

// Symbols splits on any of the given delimiter runes and drops blank fragments.
func Symbols(delims ...rune) Segment {
	set := make(map[rune]struct{}, len(delims))
	for _, r := range delims {
		set[r] = struct{}{}
	}
	return symbols{delims: set}
}

func (s symbols) Process(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		start := 0
		for i, r := range text {
			if _, ok := s.delims[r]; !ok {
				continue
			}
			if frag := text[start:i]; !IsBlank(frag) {
				if !yield(frag) {
					return
				}
			}
			start = i + utf8.RuneLen(r)
		}
		if frag := text[start:]; !IsBlank(frag) {
			yield(frag)
		}
	}
}

type strip struct {
	re *regexp.Regexp
}

// Strip removes every match of pattern and drops the fragment if nothing
// but whitespace is left. It panics on an invalid pattern, like regexp.MustCompile.
func Strip(pattern string) Segment {
	return strip{re: regexp.MustCompile(pattern)}
}

// StripNonWord is Strip(NonWordPattern).
func StripNonWord() Segment {
	return Strip(NonWordPattern)
}

func (s strip) Process(text string) iter.Seq[string] {
	out := s.re.ReplaceAllString(text, "")
	return yieldIf(out, !IsBlank(out))
}

// Lowercase lowercases with language-neutral case mapping.
func Lowercase() Segment {
	return Func(func(text string) iter.Seq[string] {
		// cases.Caser holds state, so one per call
		return yieldIf(cases.Lower(language.Und).String(text), true)
	})
}

// FoldAccents folds accented characters to their base form.
func FoldAccents() Segment {
	return Func(func(text string) iter.Seq[string] {
		return yieldIf(Fold(text), true)
	})
}

// Fold decomposes s (compatibility decomposition), drops every combining,
// spacing or enclosing mark, and recomposes what is left.
// Fold("café") == "cafe".
func Fold(s string) string {
	t := transform.Chain(
		norm.NFKD,
		runes.Remove(runes.In(unicode.M)),
		norm.NFC,
	)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Length keeps fragments whose rune count satisfies keep.
func Length(keep func(n int) bool) Segment {
	return Func(func(text string) iter.Seq[string] {
		return yieldIf(text, keep(len([]rune(text))))
	})
}

// MinLength keeps fragments of at least n runes.
func MinLength(n int) Segment {
	return Length(func(l int) bool { return l >= n })
}

// NonBlank drops empty and whitespace-only fragments.
func NonBlank() Segment {
	return Func(func(text string) iter.Seq[string] {
		return yieldIf(text, !IsBlank(text))
	})
}

// Stopwords drops tokens found in words. Matching is exact, so the list
// should already be normalized the way the preceding stages normalize.
func Stopwords(words ...string) Segment {
	stops := make(map[string]struct{}, len(words))
	for _, w := range words {
		stops[w] = struct{}{}
	}
	return Func(func(text string) iter.Seq[string] {
		_, stop := stops[text]
		return yieldIf(text, !stop)
	})
}

// Normalizer maps a token to its canonical form.
type Normalizer interface {
	Normalize(token string) string
}

// Synonyms replaces each token by its canonical form.
func Synonyms(n Normalizer) Segment {
	return Func(func(text string) iter.Seq[string] {
		return yieldIf(n.Normalize(text), true)
	})
}

// Canonical returns the standard pipeline: split on DefaultDelimiters,
// strip non-word runs, lowercase, fold accents, drop blanks.
func Canonical() *Tokenizer {
	return NewTokenizer(
		Symbols(DefaultDelimiters...),
		StripNonWord(),
		Lowercase(),
		FoldAccents(),
		NonBlank(),
	)
}
