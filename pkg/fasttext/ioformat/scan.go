package ioformat

import (
	"strconv"
	"strings"
)

// scanVectorLine splits a "word v1 v2 ... vdim" line, writing the word
// into *word and the parsed floats into vec (which must already be
// sized to the expected dimension). Returns the total field count
// (1 + len(vec)) so the caller can detect a short/long line.
func scanVectorLine(line string, word *string, vec []float32) (int, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return 0, nil
	}
	*word = fields[0]
	n := len(fields) - 1
	if n > len(vec) {
		n = len(vec)
	}
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i+1], 32)
		if err != nil {
			return len(fields), err
		}
		vec[i] = float32(f)
	}
	return len(fields), nil
}
