package segment

import (
	"iter"
	"slices"
)

// Segment is one stage of a text normalization pipeline.
// Process turns a single string into a lazy, finite sequence of strings.
// Implementations must not keep state between calls.
type Segment interface {
	Process(text string) iter.Seq[string]
}

// Func adapts a plain function to the Segment interface.
type Func func(text string) iter.Seq[string]

// Process calls f(text).
func (f Func) Process(text string) iter.Seq[string] {
	return f(text)
}

// Tokenizer composes an ordered list of segments into one pipeline.
// Each stage's output is flat-mapped through the next stage, starting
// from a sequence holding only the raw input.
type Tokenizer struct {
	segments []Segment
}

// NewTokenizer creates a tokenizer running the given segments in order.
func NewTokenizer(segments ...Segment) *Tokenizer {
	return &Tokenizer{segments: slices.Clone(segments)}
}

// Process runs text through every segment. Tokenizer is itself a Segment,
// so pipelines nest.
func (t *Tokenizer) Process(text string) iter.Seq[string] {
	seq := one(text)
	for _, s := range t.segments {
		seq = flatMap(seq, s)
	}
	return seq
}

// Tokens runs the pipeline and collects its output.
func (t *Tokenizer) Tokens(text string) []string {
	return slices.Collect(t.Process(text))
}

// Len returns the number of stages.
func (t *Tokenizer) Len() int {
	return len(t.segments)
}

func one(s string) iter.Seq[string] {
	return func(yield func(string) bool) {
		yield(s)
	}
}

func flatMap(in iter.Seq[string], s Segment) iter.Seq[string] {
	return func(yield func(string) bool) {
		for v := range in {
			for out := range s.Process(v) {
				if !yield(out) {
					return
				}
			}
		}
	}
}

// Collect drains any segment for a single input. Useful for callers
// holding a Segment rather than a *Tokenizer.
func Collect(s Segment, text string) []string {
	return slices.Collect(s.Process(text))
}
