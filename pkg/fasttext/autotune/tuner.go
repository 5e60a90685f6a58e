package autotune

import (
	"context"
	"time"

	"github.com/cognicore/fasttext/pkg/fasttext/args"
	"github.com/cognicore/fasttext/pkg/fasttext/train"
)

// TrialFunc runs one full trial (train, optionally prune/quantize,
// evaluate) for the given Args and returns the metric score and the
// resulting model's on-disk size in bytes. A non-nil error marks the
// trial failed (spec §4.5 "failed trials are skipped, not fatal") and
// the Tuner moves on without updating its best-so-far state.
type TrialFunc func(ctx context.Context, a args.Args) (score float64, modelBytes int64, err error)

// Options configures a Tuner run.
type Options struct {
	Budget     time.Duration // wall-clock search budget; 0 = unbounded until ctx cancels
	Pins       Pins
	SeedValue  int64
}

// Tuner drives the ask/tell loop: Ask a trial's Args, run it through
// TrialFunc, Tell the result back to the Sampler, and record it to the
// Ledger if one is attached (spec §4.5).
type Tuner struct {
	sampler *Sampler
	ledger  *Ledger
	runID   string
	opts    Options
}

// NewTuner builds a Tuner seeded at seed, recording trials under runID
// (train.RunID() if the caller has none of its own) to ledger (nil is
// allowed: trials run but aren't persisted).
func NewTuner(seed args.Args, opts Options, ledger *Ledger) *Tuner {
	return &Tuner{
		sampler: NewSampler(seed, opts.Pins, opts.SeedValue),
		ledger:  ledger,
		runID:   train.RunID(),
		opts:    opts,
	}
}

// Run executes trials until the context is cancelled or the wall-clock
// budget elapses, whichever comes first, and returns the best Args and
// score it found. Per spec §4.5, the very first trial is always the
// seed args verbatim.
func (t *Tuner) Run(ctx context.Context, trial TrialFunc) (args.Args, float64, error) {
	start := time.Now()
	trialNum := 0

	for ctx.Err() == nil {
		elapsed := time.Since(start)
		if t.opts.Budget > 0 && elapsed >= t.opts.Budget {
			break
		}
		progress := 0.0
		if t.opts.Budget > 0 {
			progress = elapsed.Seconds() / t.opts.Budget.Seconds()
		}

		trialNum++
		a := t.sampler.Ask(progress)

		trialStart := time.Now()
		score, modelBytes, err := trial(ctx, a)
		dur := time.Since(trialStart)

		isBest := false
		if err == nil {
			_, prevScore := t.sampler.Best()
			t.sampler.Tell(a, score)
			_, newScore := t.sampler.Best()
			isBest = newScore > prevScore || trialNum == 1
		}

		if t.ledger != nil {
			_ = t.ledger.Record(ctx, Trial{
				ID:         train.RunID(),
				RunID:      t.runID,
				Num:        trialNum,
				Args:       a,
				Score:      score,
				IsBest:     isBest,
				ModelBytes: modelBytes,
				Duration:   dur,
				Err:        err,
				CreatedAt:  time.Now(),
			})
		}
	}

	best, score := t.sampler.Best()
	return best, score, nil
}

// RunID returns the identifier this Tuner's trials are recorded under.
func (t *Tuner) RunID() string { return t.runID }
