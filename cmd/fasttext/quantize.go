package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/cognicore/fasttext/pkg/fasttext"
)

// runQuantize compresses an already-trained model and saves it to
// <-output>.ftz, or, if -output is unset, to the input path with a
// trailing ".bin" replaced by ".ftz" (spec §4.6/§6 "quantize").
func runQuantize(argv []string) error {
	fs := flag.NewFlagSet("quantize", flag.ExitOnError)
	output := fs.String("output", "", "output path prefix (defaults to the input model's own path)")
	cutoff := fs.Int("cutoff", 0, "number of words to keep after norm-ranked pruning (0 = no cutoff)")
	dsub := fs.Int("dsub", 2, "sub-vector size for product quantization")
	qnorm := fs.Bool("qnorm", false, "quantize row norms separately")
	qout := fs.Bool("qout", false, "also quantize the output matrix")
	retrain := fs.Bool("retrain", false, "fine-tune the pruned input matrix before quantizing")
	if err := fs.Parse(argv); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) < 1 {
		return fmt.Errorf("usage: quantize <model>")
	}
	out := *output
	if out == "" {
		out = rest[0]
		if len(out) > 4 && out[len(out)-4:] == ".bin" {
			out = out[:len(out)-4]
		}
	}

	ft, err := loadModel(rest[0])
	if err != nil {
		return err
	}
	opts := fasttext.QuantizeOptions{Cutoff: *cutoff, Dsub: *dsub, Qnorm: *qnorm, Qout: *qout, Retrain: *retrain}
	if err := ft.Quantize(context.Background(), opts); err != nil {
		return err
	}
	return ft.Save(out + ".ftz")
}
