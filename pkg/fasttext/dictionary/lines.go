package dictionary

import (
	"io"
	"math/rand"
)

// LineReader wraps a corpus stream with the one-token EOS lookahead
// tokenReader needs, persisting it across successive GetLine calls so a
// newline seen at the end of one line is not lost before the next call
// (spec §4.1 "Line reading"). Each training thread owns exactly one
// LineReader over its own seeked file handle.
type LineReader struct {
	tr *tokenReader
}

// NewLineReader wraps r (typically a *bufio.Reader already seeked to a
// thread-local byte offset) for repeated GetLine calls.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{tr: newTokenReader(r)}
}

// GetLineUnsupervised reads one training line (tokens up to the next
// EOS, or MaxLineSize words, whichever comes first), subsampling
// frequent words along the way (spec §4.1 "Line reading, unsupervised").
// It returns the kept word entry ids (not yet expanded to subwords — see
// Dictionary.Subwords) and the number of raw tokens consumed (for the
// token-count progress/learning-rate schedule). io.EOF is returned once
// the underlying stream is exhausted with no further tokens read.
func (d *Dictionary) GetLineUnsupervised(lr *LineReader, rng *rand.Rand) ([]int32, int64, error) {
	var words []int32
	var consumed int64
	for {
		tok, err := lr.tr.next()
		if err != nil {
			if consumed == 0 {
				return nil, 0, err
			}
			break
		}
		if tok == EOS {
			break
		}
		consumed++
		id := d.GetID(tok)
		if id < 0 {
			continue
		}
		if d.entries[id].Kind != KindWord {
			continue
		}
		if d.Discard(id, rng.Float64()) {
			continue
		}
		words = append(words, id)
		if len(words) >= MaxLineSize {
			break
		}
	}
	return words, consumed, nil
}

// GetLineSupervised reads one supervised training line: every word
// (never subsampled) plus every label, and — when the model configures
// word n-grams — synthetic bucket ids injected via the rolling hash
// described in addWordNgrams (spec §4.1 "Line reading, supervised";
// DESIGN.md open-question decision: word n-gram buckets share the
// subword bucket range, matching the source's behavior). Label ids are
// returned as 0-based indices into the label space (entry id - nwords),
// ready to address the output matrix directly.
func (d *Dictionary) GetLineSupervised(lr *LineReader) (words, labels []int32, consumed int64, err error) {
	var unigrams []int32
	for {
		tok, terr := lr.tr.next()
		if terr != nil {
			if consumed == 0 && len(unigrams) == 0 && len(labels) == 0 {
				return nil, nil, 0, terr
			}
			break
		}
		if tok == EOS {
			break
		}
		consumed++
		id := d.GetID(tok)
		if id < 0 {
			continue
		}
		switch d.entries[id].Kind {
		case KindLabel:
			labels = append(labels, id-d.nwords)
		case KindWord:
			unigrams = append(unigrams, id)
		}
	}
	words = unigrams
	if d.a.WordNgrams > 1 && d.a.Bucket > 0 {
		words = append(words, d.addWordNgrams(unigrams, d.a.WordNgrams)...)
	}
	return words, labels, consumed, nil
}

// addWordNgrams injects bucket ids for every contiguous run of 2..n
// unigram ids, rolling h <- h*116049371 + next_word_id (spec §4.1).
func (d *Dictionary) addWordNgrams(ids []int32, n int) []int32 {
	if len(ids) < 2 {
		return nil
	}
	var out []int32
	bucket := uint64(d.a.Bucket)
	for i := range ids {
		h := uint64(ids[i])
		for j := i + 1; j < len(ids) && j < i+n; j++ {
			h = h*wordNgramMultiplier + uint64(ids[j])
			out = append(out, d.nwords+int32(h%bucket))
		}
	}
	return out
}
