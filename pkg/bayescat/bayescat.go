package bayescat

import (
	"iter"

	"github.com/cognicore/bayescat/pkg/bayescat/bayes"
	"github.com/cognicore/bayescat/pkg/bayescat/dataset"
	"github.com/cognicore/bayescat/pkg/bayescat/internalerr"
	"github.com/cognicore/bayescat/pkg/bayescat/segment"
)

// Hierarchy is a two-stage classifier: a top classifier picks the class,
// then a classifier trained only on that class's records picks the subclass.
type Hierarchy struct {
	tokenizer segment.Segment
	top       *bayes.Classifier
	sub       map[string]*bayes.Classifier
	single    map[string]string // class -> its only subclass
	subLabels map[string][]string
	trained   bool
}

// Options configures a Hierarchy.
type Options struct {
	// Tokenizer is shared by every classifier. Defaults to segment.Canonical().
	Tokenizer segment.Segment
}

// Result is the outcome of classifying one text.
type Result struct {
	ClassName     string
	ClassScore    float64
	SubClassName  string
	SubClassScore float64 // 1 when the class has a single subclass
	Classes       []bayes.Prediction
	SubClasses    []bayes.Prediction // nil when the class has a single subclass
}

// New creates an untrained hierarchy.
func New(opts Options) *Hierarchy {
	tok := opts.Tokenizer
	if tok == nil {
		tok = segment.Canonical()
	}
	return &Hierarchy{
		tokenizer: tok,
		top:       bayes.New(tok),
		sub:       make(map[string]*bayes.Classifier),
		single:    make(map[string]string),
		subLabels: make(map[string][]string),
	}
}

// Fit trains the top classifier on every record and one subclassifier per
// class on that class's records. Classes with exactly one subclass get no
// subclassifier.
func (h *Hierarchy) Fit(records []dataset.Record) error {
	if h.trained {
		return internalerr.ErrAlreadyTrained
	}

	if err := h.top.Fit(classSamples(records)); err != nil {
		return err
	}

	order, groups := dataset.GroupByClass(records)
	for _, class := range order {
		group := groups[class]
		labels := distinctSubClasses(group)
		h.subLabels[class] = labels

		if len(labels) == 1 {
			h.single[class] = labels[0]
			continue
		}

		c := bayes.New(h.tokenizer)
		if err := c.Fit(subClassSamples(group)); err != nil {
			return err
		}
		h.sub[class] = c
	}

	h.trained = true
	return nil
}

// Classify returns the best class and subclass for text. ok is false when
// the hierarchy holds no classes.
func (h *Hierarchy) Classify(text string) (Result, bool) {
	classes := h.top.Predict(text)
	if len(classes) == 0 {
		return Result{}, false
	}

	res := Result{
		ClassName:  classes[0].Label,
		ClassScore: classes[0].Score,
		Classes:    classes,
	}

	if only, ok := h.single[res.ClassName]; ok {
		res.SubClassName = only
		res.SubClassScore = 1
		return res, true
	}

	if c, ok := h.sub[res.ClassName]; ok {
		subs := c.Predict(text)
		if len(subs) > 0 {
			res.SubClassName = subs[0].Label
			res.SubClassScore = subs[0].Score
			res.SubClasses = subs
		}
	}
	return res, true
}

// Top exposes the class-level classifier.
func (h *Hierarchy) Top() *bayes.Classifier {
	return h.top
}

// Sub returns the subclassifier for class. ok is false for unknown classes
// and for classes with a single subclass.
func (h *Hierarchy) Sub(class string) (*bayes.Classifier, bool) {
	c, ok := h.sub[class]
	return c, ok
}

// Classes returns the class labels in first-seen order.
func (h *Hierarchy) Classes() []string {
	return h.top.Classes()
}

// SubClasses returns the subclass labels seen for class, in first-seen order.
func (h *Hierarchy) SubClasses(class string) []string {
	return h.subLabels[class]
}

func classSamples(records []dataset.Record) iter.Seq[bayes.Sample] {
	return func(yield func(bayes.Sample) bool) {
		for _, r := range records {
			if !yield(bayes.Sample{Text: r.Input, Label: r.ClassName}) {
				return
			}
		}
	}
}

func subClassSamples(records []dataset.Record) iter.Seq[bayes.Sample] {
	return func(yield func(bayes.Sample) bool) {
		for _, r := range records {
			if !yield(bayes.Sample{Text: r.Input, Label: r.SubClassName}) {
				return
			}
		}
	}
}

func distinctSubClasses(records []dataset.Record) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range records {
		if _, ok := seen[r.SubClassName]; ok {
			continue
		}
		seen[r.SubClassName] = struct{}{}
		out = append(out, r.SubClassName)
	}
	return out
}
