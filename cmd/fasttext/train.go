package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/cognicore/fasttext/pkg/fasttext"
	"github.com/cognicore/fasttext/pkg/fasttext/args"
	"github.com/cognicore/fasttext/pkg/fasttext/config"
)

// runTrain parses the flags shared by supervised/skipgram/cbow and runs
// a full Train + Save cycle, cancelling cleanly on SIGINT/SIGTERM (spec
// §6, §4.4 "cooperative cancellation").
func runTrain(base args.Args, model args.ModelName, argv []string) error {
	if p := scanPresetFlag(argv); p != "" {
		preset, err := config.LoadPreset(p)
		if err != nil {
			return fmt.Errorf("loading preset: %w", err)
		}
		if base, err = preset.Apply(base); err != nil {
			return fmt.Errorf("applying preset: %w", err)
		}
	}

	fs := flag.NewFlagSet(model.String(), flag.ExitOnError)
	input := fs.String("input", "", "training file (required)")
	output := fs.String("output", "", "output model path prefix (required)")
	lr := fs.Float64("lr", base.LR, "learning rate")
	dim := fs.Int("dim", base.Dim, "vector dimension")
	ws := fs.Int("ws", base.WS, "context window size")
	epoch := fs.Int("epoch", base.Epoch, "number of epochs")
	minCount := fs.Int("minCount", base.MinCount, "minimal word occurrences")
	neg := fs.Int("neg", base.Neg, "number of negatives sampled")
	wordNgrams := fs.Int("wordNgrams", base.WordNgrams, "max length of word ngram")
	lossName := fs.String("loss", base.Loss.String(), "loss function {ns, hs, softmax, ova}")
	bucket := fs.Int("bucket", base.Bucket, "number of buckets")
	minn := fs.Int("minn", base.Minn, "min length of char ngram")
	maxn := fs.Int("maxn", base.Maxn, "max length of char ngram")
	thread := fs.Int("thread", base.Thread, "number of threads")
	lrUpdateRate := fs.Int("lrUpdateRate", base.LRUpdateRate, "rate of updates for the learning rate")
	t := fs.Float64("t", base.T, "sampling threshold")
	label := fs.String("label", base.Label, "labels prefix")
	verbose := fs.Int("verbose", base.Verbose, "verbosity level")
	pretrained := fs.String("pretrainedVectors", "", "pretrained word vectors for supervised learning")
	saveOutput := fs.Bool("saveOutput", false, "accepted but unused: no separate output-matrix file is written")
	seed := fs.Int("seed", base.Seed, "random generator seed")
	autotuneValidation := fs.String("autotune-validation", "", "validation file for autotuning")
	autotuneDuration := fs.Int("autotune-duration", base.AutotuneDuration, "autotune search budget, seconds")
	autotuneModelSize := fs.String("autotune-modelsize", "", "autotune model size constraint")
	autotuneSearchSpace := fs.String("autotune-searchspace", "", "YAML file pinning autotune hyper-parameters")
	fs.String("preset", "", "YAML preset file overriding the base args before flag overrides")
	if err := fs.Parse(argv); err != nil {
		return err
	}
	if *input == "" || *output == "" {
		return fmt.Errorf("-input and -output are required")
	}

	a := base
	a.Input, a.Output, a.Model = *input, *output, model
	a.LR, a.Dim, a.WS, a.Epoch = *lr, *dim, *ws, *epoch
	a.MinCount, a.Neg, a.WordNgrams = *minCount, *neg, *wordNgrams
	a.Bucket, a.Minn, a.Maxn, a.Thread = *bucket, *minn, *maxn, *thread
	a.LRUpdateRate, a.T, a.Label, a.Verbose = *lrUpdateRate, *t, *label, *verbose
	a.PretrainedVectors, a.SaveOutput, a.Seed = *pretrained, *saveOutput, *seed
	a.AutotuneValidationFile, a.AutotuneDuration = *autotuneValidation, *autotuneDuration
	if *autotuneModelSize != "" {
		sz, err := parseSize(*autotuneModelSize)
		if err != nil {
			return err
		}
		a.AutotuneModelSize = sz
	}
	if ln := parseLossName(*lossName); ln != 0 {
		a.Loss = ln
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ft, err := fasttext.New(a)
	if err != nil {
		return err
	}
	if a.AutotuneValidationFile != "" {
		if err := autotuneAndTrain(ctx, ft, a, *autotuneSearchSpace); err != nil {
			return err
		}
	} else if err := ft.Train(ctx); err != nil {
		return err
	}
	return ft.Save(a.Output + ".bin")
}

// scanPresetFlag extracts -preset/--preset's value without disturbing the
// main flag.FlagSet, since the preset must be applied to base before that
// set's own flags capture their defaults from it.
func scanPresetFlag(argv []string) string {
	for i, a := range argv {
		switch {
		case a == "-preset" || a == "--preset":
			if i+1 < len(argv) {
				return argv[i+1]
			}
		case strings.HasPrefix(a, "-preset="):
			return strings.TrimPrefix(a, "-preset=")
		case strings.HasPrefix(a, "--preset="):
			return strings.TrimPrefix(a, "--preset=")
		}
	}
	return ""
}

func parseLossName(s string) args.LossName {
	switch s {
	case "ns":
		return args.LossNS
	case "hs":
		return args.LossHS
	case "softmax":
		return args.LossSoftmax
	case "ova":
		return args.LossOVA
	default:
		return 0
	}
}
