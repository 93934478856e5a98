package memstore

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cognicore/bayescat/pkg/bayescat/dataset"
	"github.com/cognicore/bayescat/pkg/bayescat/internalerr"
	"github.com/cognicore/bayescat/pkg/bayescat/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu       sync.RWMutex
	datasets map[string]entry
	reports  map[string]store.Report
}

type entry struct {
	records   []dataset.Record
	updatedAt time.Time
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		datasets: make(map[string]entry),
		reports:  make(map[string]store.Report),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// ReplaceDataset stores records under name, replacing any previous content.
func (s *Store) ReplaceDataset(ctx context.Context, name string, records []dataset.Record) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: dataset name is required", internalerr.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.datasets[name] = entry{
		records:   slices.Clone(records),
		updatedAt: time.Now().UTC(),
	}
	return nil
}

// Records returns the records of a dataset in insertion order.
func (s *Store) Records(ctx context.Context, name string) ([]dataset.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.datasets[name]
	if !ok {
		return nil, fmt.Errorf("dataset %q: %w", name, internalerr.ErrNotFound)
	}
	return slices.Clone(e.records), nil
}

// Datasets lists stored datasets sorted by name.
func (s *Store) Datasets(ctx context.Context) ([]store.DatasetInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.DatasetInfo, 0, len(s.datasets))
	for name, e := range s.datasets {
		classes := make(map[string]struct{})
		for _, r := range e.records {
			classes[r.ClassName] = struct{}{}
		}
		out = append(out, store.DatasetInfo{
			Name:      name,
			Records:   len(e.records),
			Classes:   len(classes),
			UpdatedAt: e.updatedAt,
		})
	}
	slices.SortFunc(out, func(a, b store.DatasetInfo) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out, nil
}

// DeleteDataset removes a dataset. Its reports are kept.
func (s *Store) DeleteDataset(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.datasets[name]; !ok {
		return fmt.Errorf("dataset %q: %w", name, internalerr.ErrNotFound)
	}
	delete(s.datasets, name)
	return nil
}

// SaveReport inserts or replaces a report by ID.
func (s *Store) SaveReport(ctx context.Context, r store.Report) error {
	if r.ID == "" {
		return fmt.Errorf("%w: report ID is required", internalerr.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.reports[r.ID] = r
	return nil
}

// GetReport returns a report by ID.
func (s *Store) GetReport(ctx context.Context, id string) (store.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reports[id]
	if !ok {
		return store.Report{}, fmt.Errorf("report %q: %w", id, internalerr.ErrNotFound)
	}
	return r, nil
}

// Reports returns up to k reports, newest first. An empty datasetName
// matches every dataset.
func (s *Store) Reports(ctx context.Context, datasetName string, k int) ([]store.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if k <= 0 {
		k = 20
	}

	var out []store.Report
	for _, r := range s.reports {
		if datasetName != "" && r.Dataset != datasetName {
			continue
		}
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b store.Report) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}
