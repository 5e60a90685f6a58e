package autotune

import (
	"context"
	"testing"
	"time"

	"github.com/cognicore/fasttext/pkg/fasttext/args"
)

func TestTunerRunFindsBestAndStopsAtBudget(t *testing.T) {
	seed := args.DefaultSupervised()
	tuner := NewTuner(seed, Options{Budget: 30 * time.Millisecond, SeedValue: 1}, nil)

	scores := map[args.Args]float64{}
	n := 0
	trial := func(ctx context.Context, a args.Args) (float64, int64, error) {
		n++
		// deterministic-ish: reward bigger dim
		score := float64(a.Dim)
		scores[a] = score
		return score, 0, nil
	}

	best, score, err := tuner.Run(context.Background(), trial)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n == 0 {
		t.Fatal("Run executed zero trials")
	}
	if score != float64(best.Dim) {
		t.Errorf("returned score %v does not match best.Dim %d", score, best.Dim)
	}
	if tuner.RunID() == "" {
		t.Error("RunID is empty")
	}
}

func TestTunerRunStopsOnContextCancel(t *testing.T) {
	seed := args.DefaultSupervised()
	tuner := NewTuner(seed, Options{SeedValue: 1}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	n := 0
	trial := func(ctx context.Context, a args.Args) (float64, int64, error) {
		n++
		if n == 3 {
			cancel()
		}
		return 1.0, 0, nil
	}

	_, _, err := tuner.Run(ctx, trial)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n < 3 {
		t.Errorf("Run stopped too early: %d trials", n)
	}
}

func TestTunerSkipsFailedTrialsWithoutFatal(t *testing.T) {
	seed := args.DefaultSupervised()
	tuner := NewTuner(seed, Options{Budget: 20 * time.Millisecond, SeedValue: 1}, nil)

	trial := func(ctx context.Context, a args.Args) (float64, int64, error) {
		return 0, 0, context.DeadlineExceeded
	}

	_, _, err := tuner.Run(context.Background(), trial)
	if err != nil {
		t.Fatalf("Run returned fatal error for a trial-level failure: %v", err)
	}
}
