package main

import (
	"flag"
	"fmt"
	"os"
)

func runPredict(argv []string, withProb bool) error {
	fs := flag.NewFlagSet("predict", flag.ExitOnError)
	k := fs.Int("k", 1, "number of predictions to print")
	threshold := fs.Float64("threshold", 0, "minimum probability to print")
	if err := fs.Parse(argv); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) < 1 {
		return fmt.Errorf("usage: predict <model> [file]")
	}

	ft, err := loadModel(rest[0])
	if err != nil {
		return err
	}

	in := os.Stdin
	if len(rest) > 1 {
		f, err := os.Open(rest[1])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	lines, err := readLines(in)
	if err != nil {
		return err
	}

	for _, line := range lines {
		preds, err := ft.Predict(line, *k, float32(*threshold))
		if err != nil {
			return err
		}
		if len(preds) == 0 {
			fmt.Println()
			continue
		}
		for i, p := range preds {
			if i > 0 {
				fmt.Print(" ")
			}
			fmt.Print(ft.PredictLabel(p))
			if withProb {
				fmt.Printf(" %.6f", p.LogProb)
			}
		}
		fmt.Println()
	}
	return nil
}
