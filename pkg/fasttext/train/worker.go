package train

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cognicore/fasttext/pkg/fasttext/args"
	"github.com/cognicore/fasttext/pkg/fasttext/dictionary"
	"github.com/cognicore/fasttext/pkg/fasttext/internalerr"
	"github.com/cognicore/fasttext/pkg/fasttext/model"
)

// worker runs one training thread: its own file handle seeked to a
// disjoint slab, looping mode-appropriate updates until the shared
// token budget is exhausted or the context signals cancellation (spec
// §4.4 "Concurrency").
func (d *Driver) worker(ctx context.Context, threadID, thread int, fileSize, targetTokens int64) error {
	f, err := os.Open(d.Args.Input)
	if err != nil {
		return fmt.Errorf("train: %w: %v", internalerr.ErrIO, err)
	}
	defer f.Close()

	startOffset := int64(threadID) * fileSize / int64(thread)
	br, err := alignToNextRecord(f, startOffset)
	if err != nil {
		return fmt.Errorf("train: %w: %v", internalerr.ErrIO, err)
	}
	lr := dictionary.NewLineReader(br)

	state := model.NewState(d.Args.Dim, d.Args.Seed, threadID)

	var localTokens int64
	flush := func() {
		if localTokens == 0 {
			return
		}
		d.tokenCount.Add(localTokens)
		localTokens = 0
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return internalerr.ErrAbort
		default:
		}
		if d.tokenCount.Load() >= targetTokens {
			flush()
			return nil
		}

		var (
			consumed int64
			rerr     error
		)
		switch d.Args.Model {
		case args.ModelSupervised:
			var words, labels []int32
			words, labels, consumed, rerr = d.Dict.GetLineSupervised(lr)
			if rerr == nil {
				lrNow := d.currentLR(targetTokens)
				rerr = d.trainSupervised(words, labels, state, lrNow)
			}
		default: // cbow, skipgram
			var words []int32
			words, consumed, rerr = d.Dict.GetLineUnsupervised(lr, state.Rng)
			if rerr == nil {
				lrNow := d.currentLR(targetTokens)
				if d.Args.Model == args.ModelCBOW {
					rerr = d.trainCBOW(words, state, lrNow)
				} else {
					rerr = d.trainSkipgram(words, state, lrNow)
				}
			}
		}

		if rerr == io.EOF {
			f2, err := os.Open(d.Args.Input)
			if err != nil {
				return fmt.Errorf("train: %w: %v", internalerr.ErrIO, err)
			}
			f.Close()
			f = f2
			br, err = alignToNextRecord(f, 0)
			if err != nil {
				return fmt.Errorf("train: %w: %v", internalerr.ErrIO, err)
			}
			lr = dictionary.NewLineReader(br)
			continue
		}
		if rerr != nil {
			flush()
			return rerr
		}

		localTokens += consumed
		if localTokens >= int64(d.Args.LRUpdateRate) {
			flush()
		}
		if threadID == 0 {
			d.lossBits.Store(floatToBits(state.AvgLoss()))
		}
	}
}

// currentLR implements the linear decay schedule lr = lr0*(1-progress)
// where progress is the shared token count's fraction of the run's total
// token budget (spec §4.4 "Computes progress... and current lr").
func (d *Driver) currentLR(targetTokens int64) float32 {
	var progress float64
	if targetTokens > 0 {
		progress = float64(d.tokenCount.Load()) / float64(targetTokens)
	}
	lr := d.Args.LR * (1 - progress)
	if lr < 0 {
		lr = 0
	}
	return float32(lr)
}

// trainSupervised expands each unigram to its subword list (a no-op
// expansion unless minn>0 is configured for supervised models), picks
// one label uniformly as the positive target, and runs one update. OVA
// trains every output row at once, signaled by targetIndex=-1 (spec
// §4.4 "supervised").
func (d *Driver) trainSupervised(words, labels []int32, state *model.State, lr float32) error {
	if len(labels) == 0 {
		return nil
	}
	input := make([]int32, 0, len(words))
	for _, id := range words {
		input = append(input, d.Dict.Subwords(id)...)
	}
	targetIndex := state.Rng.Intn(len(labels))
	if d.Args.Loss == args.LossOVA {
		targetIndex = -1
	}
	return d.Model.Update(input, labels, targetIndex, lr, state)
}

// trainCBOW trains the continuous-bag-of-words objective: for every
// center position, average the subwords of a random-width context
// window into the input and predict the center word (spec §4.4 "cbow").
func (d *Driver) trainCBOW(words []int32, state *model.State, lr float32) error {
	ws := max(d.Args.WS, 1)
	n := len(words)
	for w := 0; w < n; w++ {
		b := 1 + state.Rng.Intn(ws)
		var bow []int32
		for c := -b; c <= b; c++ {
			if c == 0 {
				continue
			}
			idx := w + c
			if idx < 0 || idx >= n {
				continue
			}
			bow = append(bow, d.Dict.Subwords(words[idx])...)
		}
		if err := d.Model.Update(bow, words, w, lr, state); err != nil {
			return err
		}
	}
	return nil
}

// trainSkipgram trains the skip-gram objective: the center word's
// subwords predict each word in a random-width context window (spec
// §4.4 "skipgram").
func (d *Driver) trainSkipgram(words []int32, state *model.State, lr float32) error {
	ws := max(d.Args.WS, 1)
	n := len(words)
	for w := 0; w < n; w++ {
		b := 1 + state.Rng.Intn(ws)
		ngrams := d.Dict.Subwords(words[w])
		for c := -b; c <= b; c++ {
			if c == 0 {
				continue
			}
			idx := w + c
			if idx < 0 || idx >= n {
				continue
			}
			if err := d.Model.Update(ngrams, words, idx, lr, state); err != nil {
				return err
			}
		}
	}
	return nil
}
