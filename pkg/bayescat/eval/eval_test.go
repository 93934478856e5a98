package eval

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cognicore/bayescat/pkg/bayescat"
	"github.com/cognicore/bayescat/pkg/bayescat/dataset"
)

// fixedClassifier answers from a lookup table.
type fixedClassifier map[string]bayescat.Result

func (f fixedClassifier) Classify(text string) (bayescat.Result, bool) {
	r, ok := f[text]
	return r, ok
}

func records() []dataset.Record {
	return []dataset.Record{
		{Input: "a", ClassName: "acme", SubClassName: "x"},
		{Input: "b", ClassName: "acme", SubClassName: "y"},
		{Input: "c", ClassName: "globex", SubClassName: "z"},
	}
}

func TestRunCounts(t *testing.T) {
	c := fixedClassifier{
		"a": {ClassName: "acme", SubClassName: "x"},
		"b": {ClassName: "acme", SubClassName: "x"},
		"c": {ClassName: "acme", SubClassName: "z"},
	}

	ev := New(Options{Workers: 2, MaxMisses: -1})
	r, err := ev.Run(context.Background(), "unit", c, records())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if r.Total != 3 || r.ClassHits != 2 || r.SubClassHits != 2 {
		t.Errorf("got total=%d class=%d sub=%d, want 3/2/2", r.Total, r.ClassHits, r.SubClassHits)
	}
	if len(r.Misses) != 2 {
		t.Fatalf("expected 2 misses, got %v", r.Misses)
	}
	if r.Misses[0].Input != "b" || r.Misses[1].Input != "c" {
		t.Errorf("misses should keep record order, got %v", r.Misses)
	}
	if r.Dataset != "unit" || len(r.ID) != 26 {
		t.Errorf("unexpected report identity: %q %q", r.Dataset, r.ID)
	}
}

func TestRunMaxMisses(t *testing.T) {
	ev := New(Options{MaxMisses: 1})
	r, err := ev.Run(context.Background(), "unit", fixedClassifier{}, records())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(r.Misses) != 1 {
		t.Errorf("expected misses capped at 1, got %d", len(r.Misses))
	}
	if r.ClassHits != 0 {
		t.Errorf("expected no hits, got %d", r.ClassHits)
	}
}

func TestRunEmpty(t *testing.T) {
	r, err := New(Options{}).Run(context.Background(), "empty", fixedClassifier{}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if r.Total != 0 || r.ClassAccuracy() != 0 || r.PerSample() != 0 {
		t.Errorf("unexpected empty report: %+v", r)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(Options{Workers: 1}).Run(ctx, "unit", fixedClassifier{}, records())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunUniqueIDs(t *testing.T) {
	ev := New(Options{})
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		r, err := ev.Run(context.Background(), "unit", fixedClassifier{}, records())
		if err != nil {
			t.Fatal(err)
		}
		if seen[r.ID] {
			t.Fatalf("duplicate report ID %s", r.ID)
		}
		seen[r.ID] = true
	}
}

func TestRunHierarchy(t *testing.T) {
	recs := []dataset.Record{
		{Input: "acme model x", ClassName: "acme", SubClassName: "x"},
		{Input: "acme model y", ClassName: "acme", SubClassName: "y"},
		{Input: "globex model z", ClassName: "globex", SubClassName: "z"},
	}
	h := bayescat.New(bayescat.Options{})
	if err := h.Fit(recs); err != nil {
		t.Fatal(err)
	}

	r, err := New(Options{Workers: 4}).Run(context.Background(), "brands", h, recs)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if r.ClassAccuracy() != 100 || r.SubClassAccuracy() != 100 {
		t.Errorf("expected perfect accuracy on training data, got %.2f/%.2f", r.ClassAccuracy(), r.SubClassAccuracy())
	}
}

func TestReportWrite(t *testing.T) {
	r := Report{
		ID:           "01HZX",
		Total:        3,
		ClassHits:    2,
		SubClassHits: 3,
		Misses: []Miss{
			{Input: "c", WantClass: "globex", WantSubClass: "z", GotClass: "acme", GotSubClass: "z"},
		},
	}

	var buf bytes.Buffer
	if err := r.Write(&buf, false); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Brand: 66.67% (2/3)",
		"Model: 100.00% (3/3)",
		"Speed:",
		"c\tgot acme z\tmust be globex z",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("uncolored output should have no escape codes")
	}
}
