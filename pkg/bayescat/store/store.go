package store

import (
	"context"
	"time"

	"github.com/cognicore/bayescat/pkg/bayescat/dataset"
)

// Store persists labeled datasets and evaluation reports. Trained
// classifiers are rebuilt from a dataset and never stored.
type Store interface {
	Close() error

	// Datasets
	ReplaceDataset(ctx context.Context, name string, records []dataset.Record) error
	Records(ctx context.Context, name string) ([]dataset.Record, error)
	Datasets(ctx context.Context) ([]DatasetInfo, error)
	DeleteDataset(ctx context.Context, name string) error

	// Reports
	SaveReport(ctx context.Context, r Report) error
	GetReport(ctx context.Context, id string) (Report, error)
	Reports(ctx context.Context, datasetName string, k int) ([]Report, error)
}

// DatasetInfo describes a stored dataset.
type DatasetInfo struct {
	Name      string
	Records   int
	Classes   int
	UpdatedAt time.Time
}

// Report is a stored evaluation run.
type Report struct {
	ID           string
	Dataset      string
	CreatedAt    time.Time
	Total        int
	ClassHits    int
	SubClassHits int
	Elapsed      time.Duration
	MissesJSON   string // JSON-encoded misses
}
