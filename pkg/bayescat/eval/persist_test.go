package eval

import (
	"context"
	"testing"
	"time"

	"github.com/cognicore/bayescat/pkg/bayescat/store/memstore"
)

func TestReportThroughStore(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()

	r := Report{
		ID:           "01J0000000000000000000000A",
		Dataset:      "brands",
		CreatedAt:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Total:        4,
		ClassHits:    3,
		SubClassHits: 2,
		Elapsed:      4 * time.Millisecond,
		Misses: []Miss{
			{Input: "globex thing", WantClass: "globex", WantSubClass: "z", GotClass: "acme", GotSubClass: "x"},
		},
	}

	rec, err := r.ToStore()
	if err != nil {
		t.Fatalf("ToStore: %v", err)
	}
	if err := st.SaveReport(ctx, rec); err != nil {
		t.Fatalf("SaveReport: %v", err)
	}

	stored, err := st.GetReport(ctx, r.ID)
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	back, err := FromStore(stored)
	if err != nil {
		t.Fatalf("FromStore: %v", err)
	}

	if back.ClassAccuracy() != 75 || back.PerSample() != time.Millisecond {
		t.Errorf("derived values changed: %.2f, %v", back.ClassAccuracy(), back.PerSample())
	}
	if len(back.Misses) != 1 || back.Misses[0] != r.Misses[0] {
		t.Errorf("misses lost: %+v", back.Misses)
	}
}

func TestFromStoreBadMisses(t *testing.T) {
	rec, _ := Report{ID: "x"}.ToStore()
	if rec.MissesJSON != "[]" {
		t.Errorf("expected empty JSON array, got %q", rec.MissesJSON)
	}
	rec.MissesJSON = "{not json"
	if _, err := FromStore(rec); err == nil {
		t.Error("expected decode error")
	}
}
