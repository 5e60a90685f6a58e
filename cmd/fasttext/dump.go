package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/cognicore/fasttext/pkg/fasttext"
)

// runDump prints a model's header and hyperparameters (spec §6 "dump").
func runDump(argv []string) error {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	if err := fs.Parse(argv); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) < 1 {
		return fmt.Errorf("usage: dump <model>")
	}
	ft, err := loadModel(rest[0])
	if err != nil {
		return err
	}
	a := ft.Args()
	fmt.Printf("model\t%s\n", a.Model)
	fmt.Printf("loss\t%s\n", a.Loss)
	fmt.Printf("dim\t%d\n", a.Dim)
	fmt.Printf("ws\t%d\n", a.WS)
	fmt.Printf("epoch\t%d\n", a.Epoch)
	fmt.Printf("wordNgrams\t%d\n", a.WordNgrams)
	fmt.Printf("bucket\t%d\n", a.Bucket)
	fmt.Printf("minn\t%d\n", a.Minn)
	fmt.Printf("maxn\t%d\n", a.Maxn)
	fmt.Printf("words\t%d\n", ft.NumWords())
	fmt.Printf("labels\t%d\n", ft.NumLabels())
	fmt.Printf("quantized\t%t\n", ft.Quantized())
	return nil
}

// runPrintWordVectors reads one word per stdin line, printing its
// vector (spec §6 "print-word-vectors").
func runPrintWordVectors(argv []string) error {
	ft, err := loadForStdinLoop(argv)
	if err != nil {
		return err
	}
	return forEachStdinLine(func(line string) {
		v := ft.GetWordVector(line)
		fmt.Print(line)
		printVec(v)
	})
}

// runPrintSentenceVectors reads one sentence per stdin line, printing
// its vector (spec §6 "print-sentence-vectors").
func runPrintSentenceVectors(argv []string) error {
	ft, err := loadForStdinLoop(argv)
	if err != nil {
		return err
	}
	return forEachStdinLine(func(line string) {
		v := ft.GetSentenceVector(line)
		printVec(v)
	})
}

// runPrintNgrams prints one word followed by its word vector, the average
// of the rows of the word and its hashed character n-grams (spec §6
// "print-ngrams"). The individual n-grams and their vectors are not
// listed.
func runPrintNgrams(argv []string) error {
	fs := flag.NewFlagSet("print-ngrams", flag.ExitOnError)
	if err := fs.Parse(argv); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) < 2 {
		return fmt.Errorf("usage: print-ngrams <model> <word>")
	}
	ft, err := loadModel(rest[0])
	if err != nil {
		return err
	}
	fmt.Print(rest[1])
	printVec(ft.GetWordVector(rest[1]))
	return nil
}

func loadForStdinLoop(argv []string) (*fasttext.FastText, error) {
	fs := flag.NewFlagSet("print", flag.ExitOnError)
	if err := fs.Parse(argv); err != nil {
		return nil, err
	}
	rest := fs.Args()
	if len(rest) < 1 {
		return nil, fmt.Errorf("usage: print-*-vectors <model>")
	}
	return loadModel(rest[0])
}

func printVec(v []float32) {
	for _, x := range v {
		fmt.Printf(" %.5f", x)
	}
	fmt.Println()
}

func forEachStdinLine(fn func(line string)) error {
	lines, err := readLines(os.Stdin)
	if err != nil {
		return err
	}
	for _, line := range lines {
		line = strings.TrimRight(line, "\n")
		fn(line)
	}
	return nil
}
