package bayes

import (
	"cmp"
	"iter"
	"math"
	"slices"

	"github.com/cognicore/bayescat/pkg/bayescat/internalerr"
	"github.com/cognicore/bayescat/pkg/bayescat/segment"
)

// Sample is one labeled training text.
type Sample struct {
	Text  string
	Label string
}

// Samples returns a sequence over the given samples.
func Samples(s ...Sample) iter.Seq[Sample] {
	return slices.Values(s)
}

// Prediction is a class label with its normalized score in (0,1).
// The score ranks classes; it is not a calibrated probability.
type Prediction struct {
	Label string
	Score float64
}

// Classifier is a multinomial Naive Bayes classifier over token counts.
//
// Fit is called once; afterwards the classifier is read-only and Predict
// may be called from any number of goroutines.
type Classifier struct {
	tokenizer segment.Segment
	model     *model
}

// model is the frozen result of a training pass.
type model struct {
	total      int
	labels     []string
	index      map[string]int
	records    []int
	counts     []map[string]int
	tokenTotal map[string]int // occurrences across all classes
	vocab      map[string]struct{}
	logPrior   []float64
}

// New creates an untrained classifier bound to a tokenizer.
func New(tokenizer segment.Segment) *Classifier {
	return &Classifier{tokenizer: tokenizer}
}

// Fit trains the classifier in a single sequential pass over samples.
// An empty sequence is valid and leaves the classifier without classes.
// Calling Fit a second time returns internalerr.ErrAlreadyTrained.
func (c *Classifier) Fit(samples iter.Seq[Sample]) error {
	if c.model != nil {
		return internalerr.ErrAlreadyTrained
	}

	m := &model{
		index:      make(map[string]int),
		tokenTotal: make(map[string]int),
		vocab:      make(map[string]struct{}),
	}

	for s := range samples {
		m.total++

		tokens := segment.Collect(c.tokenizer, s.Text)
		for _, t := range tokens {
			m.vocab[t] = struct{}{}
		}

		ci, ok := m.index[s.Label]
		if !ok {
			ci = len(m.labels)
			m.index[s.Label] = ci
			m.labels = append(m.labels, s.Label)
			m.records = append(m.records, 0)
			m.counts = append(m.counts, make(map[string]int))
		}

		m.records[ci]++
		for _, t := range tokens {
			m.counts[ci][t]++
			m.tokenTotal[t]++
		}
	}

	// Priors are kept for inspection only; Predict does not add them.
	// m.total is non-zero whenever there is a class to loop over.
	m.logPrior = make([]float64, len(m.labels))
	for i, n := range m.records {
		m.logPrior[i] = math.Log(float64(n) / float64(m.total))
	}

	c.model = m
	return nil
}

// Predict scores text against every trained class and returns the classes
// ordered by descending score. Ties keep first-seen class order.
// Tokens outside the training vocabulary are ignored. An untrained or
// empty classifier yields an empty slice.
func (c *Classifier) Predict(text string) []Prediction {
	m := c.model
	if m == nil || len(m.labels) == 0 {
		return []Prediction{}
	}

	vocabSize := float64(len(m.vocab))
	yes := make([]float64, len(m.labels))
	no := make([]float64, len(m.labels))

	seen := make(map[string]struct{})
	for t := range c.tokenizer.Process(text) {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if _, known := m.vocab[t]; !known {
			continue
		}

		for ci := range m.labels {
			in := m.counts[ci][t]
			out := m.tokenTotal[t] - in
			classTotal := m.records[ci]
			otherTotal := m.total - classTotal

			yes[ci] += math.Log(float64(in+1) / (float64(classTotal) + vocabSize))
			no[ci] += math.Log(float64(out+1) / (float64(otherTotal) + vocabSize))
		}
	}

	preds := make([]Prediction, len(m.labels))
	for ci, label := range m.labels {
		preds[ci] = Prediction{Label: label, Score: normalize(yes[ci], no[ci])}
	}

	slices.SortStableFunc(preds, func(a, b Prediction) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return preds
}

// normalize maps the yes/no log-likelihood totals into (0,1).
// With no known tokens both totals are zero and the score is 0.
func normalize(yes, no float64) float64 {
	total := math.Abs(yes) + math.Abs(no)
	den := yes + no + 2*total
	if den == 0 {
		return 0
	}
	return (yes + total) / den
}

// Trained reports whether Fit has completed.
func (c *Classifier) Trained() bool {
	return c.model != nil
}

// VocabularySize returns the number of distinct training tokens.
func (c *Classifier) VocabularySize() int {
	if c.model == nil {
		return 0
	}
	return len(c.model.vocab)
}

// HasToken reports whether token was seen during training.
func (c *Classifier) HasToken(token string) bool {
	if c.model == nil {
		return false
	}
	_, ok := c.model.vocab[token]
	return ok
}

// Vocabulary returns the training tokens in sorted order.
func (c *Classifier) Vocabulary() []string {
	if c.model == nil {
		return nil
	}
	out := make([]string, 0, len(c.model.vocab))
	for t := range c.model.vocab {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// Classes returns the class labels in first-seen order.
func (c *Classifier) Classes() []string {
	if c.model == nil {
		return nil
	}
	return slices.Clone(c.model.labels)
}

// TotalRecords returns the number of training samples.
func (c *Classifier) TotalRecords() int {
	if c.model == nil {
		return 0
	}
	return c.model.total
}

// ClassRecords returns the number of training samples labeled label.
func (c *Classifier) ClassRecords(label string) int {
	ci, ok := c.classIndex(label)
	if !ok {
		return 0
	}
	return c.model.records[ci]
}

// TokenCount returns how often token occurred in samples labeled label.
func (c *Classifier) TokenCount(label, token string) int {
	ci, ok := c.classIndex(label)
	if !ok {
		return 0
	}
	return c.model.counts[ci][token]
}

// ClassTokens returns the distinct tokens seen for label, sorted.
func (c *Classifier) ClassTokens(label string) []string {
	ci, ok := c.classIndex(label)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(c.model.counts[ci]))
	for t := range c.model.counts[ci] {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// LogPrior returns log(classRecords/totalRecords) as computed at the end
// of Fit. Scoring does not use it.
func (c *Classifier) LogPrior(label string) (float64, bool) {
	ci, ok := c.classIndex(label)
	if !ok {
		return 0, false
	}
	return c.model.logPrior[ci], true
}

func (c *Classifier) classIndex(label string) (int, bool) {
	if c.model == nil {
		return 0, false
	}
	ci, ok := c.model.index[label]
	return ci, ok
}
