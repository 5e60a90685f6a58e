package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/cognicore/fasttext/pkg/fasttext"
	"github.com/cognicore/fasttext/pkg/fasttext/args"
	"github.com/cognicore/fasttext/pkg/fasttext/autotune"
	"github.com/cognicore/fasttext/pkg/fasttext/config"
)

// autotuneAndTrain runs the bounded-time hyperparameter search (spec
// §4.5) over a.Input/AutotuneValidationFile, then leaves ft trained
// with the best arguments found: after the search, ft is retrained once
// from scratch with those arguments. Each trial only trains and
// evaluates; it does not apply AutotuneModelSize (no cutoff or
// quantization per trial) and reports a model size of 0.
func autotuneAndTrain(ctx context.Context, ft *fasttext.FastText, seed args.Args, searchSpacePath string) error {
	valLines, err := readValidationLines(seed.AutotuneValidationFile)
	if err != nil {
		return err
	}

	var pins autotune.Pins
	if searchSpacePath != "" {
		space, err := config.LoadSearchSpace(searchSpacePath)
		if err != nil {
			return fmt.Errorf("loading autotune search space: %w", err)
		}
		pins = pinsFromSearchSpace(space, &seed)
	}

	opts := autotune.Options{
		Budget:    time.Duration(seed.AutotuneDuration) * time.Second,
		SeedValue: int64(seed.Seed),
		Pins:      pins,
	}
	tuner := autotune.NewTuner(seed, opts, nil)

	trial := func(ctx context.Context, a args.Args) (float64, int64, error) {
		candidate, err := fasttext.New(a)
		if err != nil {
			return 0, 0, err
		}
		if err := candidate.Train(ctx); err != nil {
			return 0, 0, err
		}
		meter := autotune.NewMeter(a.AutotuneMetric, a.AutotuneMetricLabel)
		if err := evaluate(candidate, valLines, a.Label, meter); err != nil {
			return 0, 0, err
		}
		return meter.Score(), 0, nil
	}

	best, score, err := tuner.Run(ctx, trial)
	if err != nil {
		return err
	}
	log.Printf("autotune: best score %.4f after search budget (run %s)", score, tuner.RunID())

	ft.SetArgs(best)
	return ft.Train(ctx)
}

// pinsFromSearchSpace overwrites seed's fields with any value the operator
// pinned and returns the corresponding Pins mask so the sampler never
// perturbs those fields away from the pinned value.
func pinsFromSearchSpace(space *config.SearchSpace, seed *args.Args) autotune.Pins {
	var pins autotune.Pins
	if space.PinEpoch != nil {
		seed.Epoch = *space.PinEpoch
		pins.Epoch = true
	}
	if space.PinLR != nil {
		seed.LR = *space.PinLR
		pins.LR = true
	}
	if space.PinDim != nil {
		seed.Dim = *space.PinDim
		pins.Dim = true
	}
	if space.PinWordNgrams != nil {
		seed.WordNgrams = *space.PinWordNgrams
		pins.WordNgrams = true
	}
	if space.PinBucket != nil {
		seed.Bucket = *space.PinBucket
		pins.Bucket = true
	}
	return pins
}

func readValidationLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readLines(f)
}

func evaluate(ft *fasttext.FastText, lines []string, labelPrefix string, meter *autotune.Meter) error {
	for _, line := range lines {
		words, gold := splitLabeledLine(line, labelPrefix)
		if len(gold) == 0 {
			continue
		}
		preds, err := ft.Predict(strings.Join(words, " "), len(gold), 0)
		if err != nil {
			return err
		}
		predicted := make([]string, len(preds))
		for i, p := range preds {
			predicted[i] = ft.PredictLabel(p)
		}
		meter.Add(predicted, gold)
	}
	return nil
}
