package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
)

// runNN runs an interactive nearest-neighbor REPL: one query word per
// line of stdin, k nearest words with cosine similarity printed (spec
// §6 "nn").
func runNN(argv []string) error {
	fs := flag.NewFlagSet("nn", flag.ExitOnError)
	k := fs.Int("k", 10, "number of neighbors to print")
	if err := fs.Parse(argv); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) < 1 {
		return fmt.Errorf("usage: nn <model>")
	}
	ft, err := loadModel(rest[0])
	if err != nil {
		return err
	}

	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		word := strings.TrimSpace(sc.Text())
		if word == "" {
			continue
		}
		for _, n := range ft.NN(word, *k) {
			fmt.Printf("%s\t%.4f\n", n.Word, n.Score)
		}
	}
	return sc.Err()
}

// runAnalogies runs an interactive analogy REPL: "a b c" per line of
// stdin solving "a is to b as c is to ?" (spec §6 "analogies").
func runAnalogies(argv []string) error {
	fs := flag.NewFlagSet("analogies", flag.ExitOnError)
	k := fs.Int("k", 10, "number of results to print")
	if err := fs.Parse(argv); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) < 1 {
		return fmt.Errorf("usage: analogies <model>")
	}
	ft, err := loadModel(rest[0])
	if err != nil {
		return err
	}

	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) != 3 {
			continue
		}
		for _, n := range ft.Analogies(fields[0], fields[1], fields[2], *k) {
			fmt.Printf("%s\t%.4f\n", n.Word, n.Score)
		}
	}
	return sc.Err()
}
