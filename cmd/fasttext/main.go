// Command fasttext is the CLI front end for the text-classification and
// word-representation engine in pkg/fasttext (spec §6). It follows the
// original implementation's subcommand-per-mode layout, but each
// subcommand parses its own flag.FlagSet the way the teacher's
// single-purpose commands (cmd/korel-analytics, cmd/rss-indexer) use
// the stdlib flag package and log.Fatal for user-facing errors.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"

	"github.com/cognicore/fasttext/pkg/fasttext"
	"github.com/cognicore/fasttext/pkg/fasttext/args"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	cmd := os.Args[1]
	rest := os.Args[2:]

	var err error
	switch cmd {
	case "supervised":
		err = runTrain(args.DefaultSupervised(), args.ModelSupervised, rest)
	case "skipgram":
		err = runTrain(args.Default(), args.ModelSkipgram, rest)
	case "cbow":
		err = runTrain(args.Default(), args.ModelCBOW, rest)
	case "predict", "predict-prob":
		err = runPredict(rest, cmd == "predict-prob")
	case "test", "test-label":
		err = runTest(rest, cmd == "test-label")
	case "nn":
		err = runNN(rest)
	case "analogies":
		err = runAnalogies(rest)
	case "quantize":
		err = runQuantize(rest)
	case "dump":
		err = runDump(rest)
	case "print-word-vectors":
		err = runPrintWordVectors(rest)
	case "print-sentence-vectors":
		err = runPrintSentenceVectors(rest)
	case "print-ngrams":
		err = runPrintNgrams(rest)
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: fasttext <command> [args]

commands:
  supervised              train a supervised classifier
  skipgram                train skip-gram word vectors
  cbow                    train CBOW word vectors
  test <model> <file>     evaluate precision/recall on a labeled file
  test-label <model> <file>  evaluate precision/recall per label
  predict <model> <file>  predict labels for each line of a file
  predict-prob <model> <file>  predict labels with log-probabilities
  nn <model>              interactive nearest-neighbor query
  analogies <model>       interactive analogy query
  quantize <model>        compress a trained model
  dump <model>            print the model's header/args
  print-word-vectors <model>      print one vector per stdin word
  print-sentence-vectors <model>  print one vector per stdin line
  print-ngrams <model> <word>     print a word's subword-averaged vector`)
}

func loadModel(path string) (*fasttext.FastText, error) {
	return fasttext.Load(path)
}

func readLines(f *os.File) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	return out, sc.Err()
}
