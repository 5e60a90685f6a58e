// Package train implements the Hogwild-style parallel SGD driver: thread
// fan-out, token accounting, the linear learning-rate schedule, and
// cooperative progress/cancellation (spec §4.4, §5). Concurrency is
// golang.org/x/sync/errgroup fan-out over the `thread` workers, the
// exact "driver rethrows after join" semantics the spec calls for.
package train

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/cognicore/fasttext/pkg/fasttext/args"
	"github.com/cognicore/fasttext/pkg/fasttext/dictionary"
	"github.com/cognicore/fasttext/pkg/fasttext/internalerr"
	"github.com/cognicore/fasttext/pkg/fasttext/model"
)

// Driver fans out `thread` SGD workers over the same corpus, each
// reading its own disjoint byte-range slab and looping for `epoch`
// passes, racily mutating the shared model parameters (spec §4.4
// "Concurrency", §5 "Shared-mutation policy").
type Driver struct {
	Args  args.Args
	Dict  *dictionary.Dictionary
	Model *model.Model

	// Progress receives periodic training updates; nil disables
	// reporting entirely.
	Progress *Progress

	tokenCount atomic.Int64
	lossBits   atomic.Uint64 // math.Float64bits of the latest thread-0 loss snapshot
	id         string
}

// NewDriver builds a Driver. The run id is generated once per Driver,
// matching one call to Run.
func NewDriver(a args.Args, d *dictionary.Dictionary, m *model.Model) *Driver {
	return &Driver{Args: a, Dict: d, Model: m, id: RunID()}
}

// ID returns this Driver's run identifier, surfaced in progress output
// and, for autotune, the trial ledger.
func (d *Driver) ID() string { return d.id }

// Run trains for Args.Epoch passes over Args.Input across Args.Thread
// workers, blocking until every worker has finished. If any worker
// returns an error (including ErrAbort on cancellation and
// ErrNaNEncountered), the shared context cancels the rest and Run returns
// the first error after every worker has joined — spec §4.4 "the driver
// rethrows after join".
func (d *Driver) Run(ctx context.Context) error {
	thread := d.Args.Thread
	if thread < 1 {
		thread = 1
	}

	f, err := os.Open(d.Args.Input)
	if err != nil {
		return fmt.Errorf("train: %w: %v", internalerr.ErrIO, err)
	}
	size, err := fileSize(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("train: %w: %v", internalerr.ErrIO, err)
	}

	targetTokens := int64(d.Args.Epoch) * d.Dict.Ntokens()

	g, gctx := errgroup.WithContext(ctx)
	done := make(chan struct{})
	go d.monitor(gctx, targetTokens, done)

	for t := 0; t < thread; t++ {
		threadID := t
		g.Go(func() error {
			return d.worker(gctx, threadID, thread, size, targetTokens)
		})
	}

	err = g.Wait()
	close(done)
	d.Progress.Done()
	return err
}

// monitor polls every 100ms and renders progress until the target token
// count is reached or the context is cancelled (spec §4.4 "a monitor
// thread polls every 100 ms").
func (d *Driver) monitor(ctx context.Context, targetTokens int64, done <-chan struct{}) {
	if d.Progress == nil {
		return
	}
	ticker := newTicker(100)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.reportProgress(targetTokens)
		}
	}
}

func (d *Driver) reportProgress(targetTokens int64) {
	done := d.tokenCount.Load()
	var progress float64
	if targetTokens > 0 {
		progress = float64(done) / float64(targetTokens)
	}
	lr := d.Args.LR * (1 - progress)
	if lr < 0 {
		lr = 0
	}
	loss := floatFromBits(d.lossBits.Load())
	d.Progress.Update(done, targetTokens, lr, loss, d.Args.Thread)
}
