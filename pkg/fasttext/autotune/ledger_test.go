package autotune

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/cognicore/fasttext/pkg/fasttext/args"
)

func TestLedgerRecordAndBest(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "trials.db")

	ledger, err := OpenLedger(ctx, dbPath)
	if err != nil {
		t.Fatalf("OpenLedger: %v", err)
	}
	defer ledger.Close()

	base := args.DefaultSupervised()
	trials := []Trial{
		{ID: "t1", RunID: "run-a", Num: 1, Args: base, Score: 0.5, CreatedAt: time.Now()},
		{ID: "t2", RunID: "run-a", Num: 2, Args: base, Score: 0.8, CreatedAt: time.Now()},
		{ID: "t3", RunID: "run-a", Num: 3, Args: base, Score: 0.1, Err: errTrialFailed(), CreatedAt: time.Now()},
	}
	for _, tr := range trials {
		if err := ledger.Record(ctx, tr); err != nil {
			t.Fatalf("Record(%s): %v", tr.ID, err)
		}
	}

	best, ok, err := ledger.Best(ctx, "run-a")
	if err != nil {
		t.Fatalf("Best: %v", err)
	}
	if !ok {
		t.Fatal("Best reported no trial found")
	}
	if best.ID != "t2" || best.Score != 0.8 {
		t.Errorf("Best = %+v, want t2/0.8", best)
	}
}

func TestLedgerBestEmptyRun(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "trials.db")
	ledger, err := OpenLedger(ctx, dbPath)
	if err != nil {
		t.Fatalf("OpenLedger: %v", err)
	}
	defer ledger.Close()

	_, ok, err := ledger.Best(ctx, "missing-run")
	if err != nil {
		t.Fatalf("Best: %v", err)
	}
	if ok {
		t.Error("Best reported a trial for a run with none recorded")
	}
}

func errTrialFailed() error {
	return context.DeadlineExceeded
}
