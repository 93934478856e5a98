package dataset

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cognicore/bayescat/pkg/bayescat/internalerr"
)

// Record is one labeled product description.
type Record struct {
	Input        string `json:"input"`
	ClassName    string `json:"class"`
	SubClassName string `json:"subclass"`
}

// Validate checks that the record carries text and both labels.
func (r Record) Validate() error {
	if strings.TrimSpace(r.Input) == "" {
		return fmt.Errorf("%w: record input is required", internalerr.ErrInvalidInput)
	}
	if strings.TrimSpace(r.ClassName) == "" {
		return fmt.Errorf("%w: record class is required", internalerr.ErrInvalidInput)
	}
	if strings.TrimSpace(r.SubClassName) == "" {
		return fmt.Errorf("%w: record subclass is required", internalerr.ErrInvalidInput)
	}
	return nil
}

// Options controls how delimited files are read.
type Options struct {
	Delimiter rune // default ';'
	Header    bool // skip the first row
	Logger    zerolog.Logger
}

// DefaultOptions matches the training files: semicolon separated, one header row.
func DefaultOptions() Options {
	return Options{
		Delimiter: ';',
		Header:    true,
		Logger:    zerolog.Nop(),
	}
}

// Load reads records from a CSV or JSONL file, chosen by extension.
// Unknown extensions are read as CSV.
func Load(path string, opts Options) ([]Record, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		return LoadJSONL(path, opts)
	default:
		return LoadCSV(path, opts)
	}
}

// LoadCSV reads input;class;subclass rows. Malformed rows are logged and
// skipped; an error is returned only when the file cannot be read or
// holds no valid row.
func LoadCSV(path string, opts Options) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	records, err := ReadCSV(f, opts)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return records, nil
}

// ReadCSV is LoadCSV over an io.Reader.
func ReadCSV(r io.Reader, opts Options) ([]Record, error) {
	if opts.Delimiter == 0 {
		opts.Delimiter = ';'
	}

	cr := csv.NewReader(r)
	cr.Comma = opts.Delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	var records []Record
	for row := 1; ; row++ {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				opts.Logger.Warn().Int("row", row).Err(err).Msg("skipping malformed row")
				continue
			}
			return nil, err
		}
		if row == 1 && opts.Header {
			continue
		}
		if len(fields) < 3 {
			opts.Logger.Warn().Int("row", row).Int("fields", len(fields)).Msg("skipping short row")
			continue
		}

		rec := Record{Input: fields[0], ClassName: fields[1], SubClassName: fields[2]}
		if err := rec.Validate(); err != nil {
			opts.Logger.Warn().Int("row", row).Err(err).Msg("skipping invalid row")
			continue
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no valid records", internalerr.ErrInvalidInput)
	}
	return records, nil
}

// LoadJSONL reads one JSON record per line. Malformed lines are logged
// and skipped.
func LoadJSONL(path string, opts Options) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var records []Record
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}

		var rec Record
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			opts.Logger.Warn().Int("line", line).Err(err).Msg("skipping malformed JSON")
			continue
		}
		if err := rec.Validate(); err != nil {
			opts.Logger.Warn().Int("line", line).Err(err).Msg("skipping invalid record")
			continue
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no valid records in %s", internalerr.ErrInvalidInput, path)
	}
	return records, nil
}

// Normalize trims inputs and lowercases both labels, so that "Acme" and
// "ACME" name the same class.
func Normalize(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = Record{
			Input:        strings.TrimSpace(r.Input),
			ClassName:    strings.ToLower(strings.TrimSpace(r.ClassName)),
			SubClassName: strings.ToLower(strings.TrimSpace(r.SubClassName)),
		}
	}
	return out
}

// Augment returns records followed by one synthetic record per row whose
// input is "<class> <subclass>". This teaches the model the label names
// themselves.
func Augment(records []Record) []Record {
	out := make([]Record, 0, 2*len(records))
	out = append(out, records...)
	for _, r := range records {
		out = append(out, Record{
			Input:        r.ClassName + " " + r.SubClassName,
			ClassName:    r.ClassName,
			SubClassName: r.SubClassName,
		})
	}
	return out
}

// GroupByClass splits records by class. Classes are returned in
// first-seen order; each group keeps the input order.
func GroupByClass(records []Record) ([]string, map[string][]Record) {
	var order []string
	groups := make(map[string][]Record)
	for _, r := range records {
		if _, ok := groups[r.ClassName]; !ok {
			order = append(order, r.ClassName)
		}
		groups[r.ClassName] = append(groups[r.ClassName], r)
	}
	return order, groups
}

// WriteJSONL writes records one JSON object per line.
func WriteJSONL(w io.Writer, records []Record) error {
	enc := json.NewEncoder(w)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}
