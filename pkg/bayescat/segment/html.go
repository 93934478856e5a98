package segment

import (
	"iter"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLText replaces markup by the text it contains. Script and style
// bodies are dropped; text nodes are joined with a space so that words
// from adjacent elements do not run together.
func HTMLText() Segment {
	return Func(func(text string) iter.Seq[string] {
		return yieldIf(StripHTML(text), true)
	})
}

// StripHTML returns the text content of s. Input without markup comes
// back with only its whitespace trimmed.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}

	z := html.NewTokenizer(strings.NewReader(s))
	var parts []string
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or a parse error; either way keep what we have
			return strings.Join(parts, " ")
		case html.StartTagToken:
			if a := tagAtom(z); a == atom.Script || a == atom.Style {
				skip++
			}
		case html.EndTagToken:
			if a := tagAtom(z); (a == atom.Script || a == atom.Style) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip > 0 {
				continue
			}
			if t := strings.TrimSpace(string(z.Text())); t != "" {
				parts = append(parts, t)
			}
		}
	}
}

func tagAtom(z *html.Tokenizer) atom.Atom {
	name, _ := z.TagName()
	return atom.Lookup(name)
}
