package main

import "strings"

// splitLabeledLine separates a supervised training/test line's label
// tokens (prefixed by prefix, e.g. "__label__") from its text tokens,
// mirroring dictionary.GetLineSupervised's own partitioning so the CLI's
// test/predict/autotune paths agree with what training saw. Labels keep
// their prefix, matching what FastText.PredictLabel returns.
func splitLabeledLine(line, prefix string) (words, labels []string) {
	for _, tok := range strings.Fields(line) {
		if strings.HasPrefix(tok, prefix) {
			labels = append(labels, tok)
		} else {
			words = append(words, tok)
		}
	}
	return words, labels
}
