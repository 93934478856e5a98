package segment

import (
	"slices"
	"testing"
)

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text", "  Acme Model X ", "Acme Model X"},
		{"markup", "<p>Acme <b>Model</b>&nbsp;X</p>", "Acme Model X"},
		{"script dropped", "<div>Globex</div><script>var a = 1;</script><style>p{}</style>", "Globex"},
		{"entity", "Tom &amp; Jerry", "Tom & Jerry"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripHTML(tt.input); got != tt.want {
				t.Errorf("StripHTML(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestHTMLTextInPipeline(t *testing.T) {
	tok := NewTokenizer(
		HTMLText(),
		Symbols(DefaultDelimiters...),
		StripNonWord(),
		Lowercase(),
		FoldAccents(),
		NonBlank(),
	)

	got := tok.Tokens("<li>Crème <em>Brûlée</em></li>")
	if !slices.Equal(got, []string{"creme", "brulee"}) {
		t.Errorf("got %q", got)
	}
}
