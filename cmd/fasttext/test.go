package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/cognicore/fasttext/pkg/fasttext/args"
	"github.com/cognicore/fasttext/pkg/fasttext/autotune"
)

// runTest evaluates a model against a labeled file and prints the example
// count and global precision/recall at k (spec §6 "test"/"test-label");
// with perLabel it also prints precision/recall/F1 for each label.
func runTest(argv []string, perLabel bool) error {
	fs := flag.NewFlagSet("test", flag.ExitOnError)
	k := fs.Int("k", 1, "number of predictions per example")
	threshold := fs.Float64("threshold", 0, "minimum probability to count as predicted")
	if err := fs.Parse(argv); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) < 2 {
		return fmt.Errorf("usage: test <model> <file>")
	}

	ft, err := loadModel(rest[0])
	if err != nil {
		return err
	}
	f, err := os.Open(rest[1])
	if err != nil {
		return err
	}
	defer f.Close()
	lines, err := readLines(f)
	if err != nil {
		return err
	}

	prefix := ft.Args().Label
	if prefix == "" {
		// The saved args do not carry the label prefix; fall back to the default.
		prefix = args.Default().Label
	}
	meters := map[string]*autotune.Meter{"": autotune.NewMeter(0, "")}

	for _, line := range lines {
		words, gold := splitLabeledLine(line, prefix)
		preds, err := ft.Predict(strings.Join(words, " "), *k, float32(*threshold))
		if err != nil {
			return err
		}
		predicted := make([]string, len(preds))
		for i, p := range preds {
			predicted[i] = ft.PredictLabel(p)
		}
		meters[""].Add(predicted, gold)
		if perLabel {
			for _, g := range uniqueStrings(append(append([]string{}, gold...), predicted...)) {
				if meters[g] == nil {
					meters[g] = autotune.NewMeter(0, g)
				}
				meters[g].Add(filterEqual(predicted, g), filterEqual(gold, g))
			}
		}
	}

	m := meters[""]
	fmt.Printf("N\t%d\n", len(lines))
	fmt.Printf("P@%d\t%.3f\n", *k, m.Precision())
	fmt.Printf("R@%d\t%.3f\n", *k, m.Recall())
	if perLabel {
		for label, lm := range meters {
			if label == "" {
				continue
			}
			fmt.Printf("%s\tP=%.3f\tR=%.3f\tF1=%.3f\n", label, lm.Precision(), lm.Recall(), lm.F1())
		}
	}
	return nil
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func filterEqual(in []string, want string) []string {
	var out []string
	for _, s := range in {
		if s == want {
			out = append(out, s)
		}
	}
	return out
}
