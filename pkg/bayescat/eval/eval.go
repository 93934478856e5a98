package eval

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cognicore/bayescat/pkg/bayescat"
	"github.com/cognicore/bayescat/pkg/bayescat/dataset"
)

// Classifier is anything that picks a class and subclass for a text.
// *bayescat.Hierarchy implements it.
type Classifier interface {
	Classify(text string) (bayescat.Result, bool)
}

// Options configures an Evaluator.
type Options struct {
	Workers   int // <= 0 means GOMAXPROCS
	MaxMisses int // misses kept in the report; 0 keeps none, < 0 keeps all
	Logger    zerolog.Logger
}

// Evaluator classifies labeled records in parallel and scores the result.
type Evaluator struct {
	opts Options

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// Report summarizes one evaluation run.
type Report struct {
	ID           string
	Dataset      string
	CreatedAt    time.Time
	Total        int
	ClassHits    int
	SubClassHits int
	Elapsed      time.Duration
	Misses       []Miss
}

// Miss is a record whose class or subclass was predicted wrongly.
type Miss struct {
	Input        string `json:"input"`
	WantClass    string `json:"want_class"`
	WantSubClass string `json:"want_subclass"`
	GotClass     string `json:"got_class"`
	GotSubClass  string `json:"got_subclass"`
}

// New creates an evaluator.
func New(opts Options) *Evaluator {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return &Evaluator{
		opts:    opts,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

type outcome struct {
	classOK    bool
	subClassOK bool
	got        bayescat.Result
}

// Run classifies every record and counts class and subclass hits. The
// subclass counts as a hit when it matches, whatever the class.
// Classification runs on Workers goroutines; c must be safe for
// concurrent use.
func (e *Evaluator) Run(ctx context.Context, name string, c Classifier, records []dataset.Record) (Report, error) {
	results := make([]outcome, len(records))

	workers := min(e.opts.Workers, max(len(records), 1))
	chunk := (len(records) + workers - 1) / workers

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for lo := 0; lo < len(records); lo += chunk {
		hi := min(lo+chunk, len(records))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				rec := records[i]
				got, _ := c.Classify(rec.Input)
				results[i] = outcome{
					classOK:    got.ClassName == rec.ClassName,
					subClassOK: got.SubClassName == rec.SubClassName,
					got:        got,
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Report{}, err
	}
	elapsed := time.Since(start)

	r := Report{
		ID:        e.newID(),
		Dataset:   name,
		CreatedAt: time.Now().UTC(),
		Total:     len(records),
		Elapsed:   elapsed,
	}
	for i, res := range results {
		if res.classOK {
			r.ClassHits++
		}
		if res.subClassOK {
			r.SubClassHits++
		}
		if res.classOK && res.subClassOK {
			continue
		}
		if e.opts.MaxMisses < 0 || len(r.Misses) < e.opts.MaxMisses {
			r.Misses = append(r.Misses, Miss{
				Input:        records[i].Input,
				WantClass:    records[i].ClassName,
				WantSubClass: records[i].SubClassName,
				GotClass:     res.got.ClassName,
				GotSubClass:  res.got.SubClassName,
			})
		}
	}

	e.opts.Logger.Debug().
		Str("id", r.ID).
		Int("records", r.Total).
		Int("workers", workers).
		Dur("elapsed", elapsed).
		Msg("evaluation finished")

	return r, nil
}

func (e *Evaluator) newID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return ulid.MustNew(ulid.Now(), e.entropy).String()
}

// ClassAccuracy returns the class hit rate in percent.
func (r Report) ClassAccuracy() float64 {
	return percent(r.ClassHits, r.Total)
}

// SubClassAccuracy returns the subclass hit rate in percent.
func (r Report) SubClassAccuracy() float64 {
	return percent(r.SubClassHits, r.Total)
}

// PerSample returns the mean wall-clock time per record.
func (r Report) PerSample() time.Duration {
	if r.Total == 0 {
		return 0
	}
	return r.Elapsed / time.Duration(r.Total)
}

func percent(hits, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}

// Write prints the report. Accuracy is green at 90% and above, yellow
// from 50%, red below.
func (r Report) Write(w io.Writer, colored bool) error {
	label := paint(color.New(color.Bold), colored)

	lines := []struct {
		name string
		pct  float64
		hits int
	}{
		{"Brand", r.ClassAccuracy(), r.ClassHits},
		{"Model", r.SubClassAccuracy(), r.SubClassHits},
	}

	if _, err := fmt.Fprintf(w, "Run %s (%s records)\n", r.ID, humanize.Comma(int64(r.Total))); err != nil {
		return err
	}
	for _, l := range lines {
		c := paint(accuracyColor(l.pct), colored)
		if _, err := fmt.Fprintf(w, "%s %s (%s/%s)\n",
			label.Sprintf("%s:", l.name),
			c.Sprintf("%.2f%%", l.pct),
			humanize.Comma(int64(l.hits)),
			humanize.Comma(int64(r.Total)),
		); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "%s %s/sample\n", label.Sprint("Speed:"), r.PerSample()); err != nil {
		return err
	}

	for _, m := range r.Misses {
		if _, err := fmt.Fprintf(w, "%s\tgot %s %s\tmust be %s %s\n",
			m.Input, m.GotClass, m.GotSubClass, m.WantClass, m.WantSubClass); err != nil {
			return err
		}
	}
	return nil
}

// paint forces color on or off regardless of whether w is a terminal.
func paint(c *color.Color, on bool) *color.Color {
	if on {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func accuracyColor(pct float64) *color.Color {
	switch {
	case pct >= 90:
		return color.New(color.FgGreen)
	case pct >= 50:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}
