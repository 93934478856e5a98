package eval

import (
	"encoding/json"
	"fmt"

	"github.com/cognicore/bayescat/pkg/bayescat/store"
)

// ToStore converts a report for persistence.
func (r Report) ToStore() (store.Report, error) {
	misses := "[]"
	if len(r.Misses) > 0 {
		data, err := json.Marshal(r.Misses)
		if err != nil {
			return store.Report{}, fmt.Errorf("encode misses: %w", err)
		}
		misses = string(data)
	}

	return store.Report{
		ID:           r.ID,
		Dataset:      r.Dataset,
		CreatedAt:    r.CreatedAt,
		Total:        r.Total,
		ClassHits:    r.ClassHits,
		SubClassHits: r.SubClassHits,
		Elapsed:      r.Elapsed,
		MissesJSON:   misses,
	}, nil
}

// FromStore rebuilds a report read from a store.
func FromStore(s store.Report) (Report, error) {
	r := Report{
		ID:           s.ID,
		Dataset:      s.Dataset,
		CreatedAt:    s.CreatedAt,
		Total:        s.Total,
		ClassHits:    s.ClassHits,
		SubClassHits: s.SubClassHits,
		Elapsed:      s.Elapsed,
	}
	if s.MissesJSON != "" {
		if err := json.Unmarshal([]byte(s.MissesJSON), &r.Misses); err != nil {
			return Report{}, fmt.Errorf("decode misses of %s: %w", s.ID, err)
		}
	}
	return r, nil
}
