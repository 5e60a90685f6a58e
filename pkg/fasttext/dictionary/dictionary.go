// Package dictionary implements the vocabulary: token lookup, subword
// hashing, subsampling, line reading, pruning and serialization (spec
// §3, §4.1). It is built once from the training corpus and is read-only
// thereafter; all training threads only ever call its read methods
// concurrently.
package dictionary

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/cognicore/fasttext/pkg/fasttext/args"
	"github.com/cognicore/fasttext/pkg/fasttext/internalerr"
)

const (
	// MaxVocabSize bounds the hash table and the corpus-scan overflow cap.
	MaxVocabSize = 30000000
	// MaxLineSize bounds an unsupervised training line's word count.
	MaxLineSize = 1024
	// wordNgramMultiplier is the original implementation's rolling-hash
	// multiplier for word n-grams (spec §4.1).
	wordNgramMultiplier = uint64(116049371)
)

// Dictionary is the vocabulary: an ordered list of Entries plus an
// open-addressed hash index from surface form to entry id (spec §3).
type Dictionary struct {
	a args.Args

	entries  []Entry
	word2int []int32 // hash slots; -1 means empty

	discard     []float64
	discardCalc *discardCalculator

	nwords  int32
	nlabels int32
	ntokens int64

	pruneidx map[int32]int32

	hashSize int32
}

// New creates an empty Dictionary configured by a. The hash table uses
// the spec's fixed 30,000,000-slot size; see NewWithHashSize to override
// for tests, where a full-size table would dominate memory.
func New(a args.Args) *Dictionary {
	return NewWithHashSize(a, MaxVocabSize)
}

// NewWithHashSize is New with an explicit (smaller, test-friendly) hash
// table size. Production callers should use New.
func NewWithHashSize(a args.Args, hashSize int32) *Dictionary {
	d := &Dictionary{
		a:           a,
		hashSize:    hashSize,
		pruneidx:    make(map[int32]int32),
		discardCalc: newDiscardCalculator(a.T),
	}
	d.resetHash()
	return d
}

func (d *Dictionary) resetHash() {
	d.word2int = make([]int32, d.hashSize)
	for i := range d.word2int {
		d.word2int[i] = -1
	}
}

// Nwords, Nlabels, Ntokens expose the vocabulary totals (spec §3).
func (d *Dictionary) Nwords() int32  { return d.nwords }
func (d *Dictionary) Nlabels() int32 { return d.nlabels }
func (d *Dictionary) Ntokens() int64 { return d.ntokens }
func (d *Dictionary) Size() int32    { return int32(len(d.entries)) }
func (d *Dictionary) Bucket() int32  { return int32(d.a.Bucket) }

// find performs linear probing from hash(s) until it hits an empty slot
// or a slot holding s, returning the slot index (spec §4.1 "Hash / id
// lookup").
func (d *Dictionary) find(s string) int32 {
	return d.findFrom(s, hashStr(s))
}

func (d *Dictionary) findFrom(s string, h uint32) int32 {
	slot := int32(h % uint32(d.hashSize))
	for d.word2int[slot] != -1 && d.entries[d.word2int[slot]].Word != s {
		slot = (slot + 1) % d.hashSize
	}
	return slot
}

// GetID returns the entry id for s, or -1 if unknown.
func (d *Dictionary) GetID(s string) int32 {
	slot := d.find(s)
	return d.word2int[slot]
}

// GetWord returns the surface form of entry id.
func (d *Dictionary) GetWord(id int32) string {
	return d.entries[id].Word
}

// GetKind returns the Kind of entry id.
func (d *Dictionary) GetKind(id int32) Kind {
	return d.entries[id].Kind
}

// add inserts s (incrementing its count if already present). New entries
// start as KindWord; a later pass promotes label-prefixed entries.
func (d *Dictionary) add(s string) error {
	h := hashStr(s)
	slot := d.findFrom(s, h)
	if d.word2int[slot] == -1 {
		if int32(len(d.entries)) >= d.hashSize {
			return fmt.Errorf("dictionary: %w: hash table full at %d entries", internalerr.ErrSizeLimit, len(d.entries))
		}
		id := int32(len(d.entries))
		kind := KindWord
		if isLabel(s, d.a.Label) {
			kind = KindLabel
		}
		d.entries = append(d.entries, Entry{Word: s, Count: 1, Kind: kind})
		d.word2int[slot] = id
	} else {
		d.entries[d.word2int[slot]].Count++
	}
	return nil
}

func isLabel(s, prefix string) bool {
	if prefix == "" {
		return false
	}
	if len(s) < len(prefix) {
		return false
	}
	return s[:len(prefix)] == prefix
}

// ReadFromFile scans path, building the vocabulary: tokenize, add every
// token (EOS included), threshold + sort + reassign ids once vocabulary
// growth threatens the size cap, then a final threshold/sort/reassign
// pass, discard-table init and subword precomputation (spec §4.1).
func (d *Dictionary) ReadFromFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("dictionary: %w: %v", internalerr.ErrIO, err)
	}
	defer f.Close()

	tr := newTokenReader(bufio.NewReader(f))
	var minThreshold int64 = 1
	for {
		tok, err := tr.next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("dictionary: %w: %v", internalerr.ErrIO, err)
		}
		if err := d.add(tok); err != nil {
			return err
		}
		d.ntokens++
		if d.ntokens%1000000 == 0 && int32(len(d.entries)) > int32(float64(d.hashSize)*0.75) {
			minThreshold++
			d.threshold(minThreshold, minThreshold)
		}
	}
	d.threshold(int64(d.a.MinCount), minCountLabel(d.a))
	d.initTableDiscard()
	d.initNgrams()
	if d.ntokens == 0 {
		return fmt.Errorf("dictionary: %w: empty corpus %s", internalerr.ErrInvalidArgument, path)
	}
	return nil
}

func minCountLabel(a args.Args) int64 {
	if a.MinCountLabel > 0 {
		return int64(a.MinCountLabel)
	}
	return 1
}

// threshold removes entries with count below minCount (words) or
// minCountLabel (labels), then sorts (kind ascending, count descending)
// and reassigns ids densely, rebuilding the hash index (spec §4.1
// "Corpus scan"). Prune does not call it; it has its own filtering and
// re-indexing loop in prune.go.
func (d *Dictionary) threshold(minCount, minCountLabel int64) {
	kept := d.entries[:0:0]
	for _, e := range d.entries {
		if e.Kind == KindWord && e.Count < minCount {
			continue
		}
		if e.Kind == KindLabel && e.Count < minCountLabel {
			continue
		}
		kept = append(kept, e)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Kind != kept[j].Kind {
			return kept[i].Kind < kept[j].Kind
		}
		return kept[i].Count > kept[j].Count
	})

	d.entries = kept
	d.nwords, d.nlabels = 0, 0
	for _, e := range d.entries {
		if e.Kind == KindWord {
			d.nwords++
		} else {
			d.nlabels++
		}
	}
	d.resetHash()
	for id, e := range d.entries {
		slot := d.find(e.Word)
		d.word2int[slot] = int32(id)
	}
}

// initTableDiscard precomputes each word's subsampling keep-probability
// (spec §4.1 "Subsampling"). Disabled (keep-probability forced to 1) for
// supervised models.
func (d *Dictionary) initTableDiscard() {
	d.discard = make([]float64, len(d.entries))
	for i, e := range d.entries {
		if e.Kind != KindWord || d.a.Model == args.ModelSupervised {
			d.discard[i] = 1
			continue
		}
		d.discard[i] = d.discardCalc.keepProbability(e.Count, d.ntokens)
	}
}

// Discard reports whether a random draw r in [0,1) should drop word id.
func (d *Dictionary) Discard(id int32, r float64) bool {
	if d.entries[id].Kind != KindWord {
		return false
	}
	return r >= d.discard[id]
}

// initNgrams precomputes every word's subword list: its own id first,
// then its character n-gram bucket ids (spec §3 invariant, §4.1
// "Subword hashing"). Empty words and EOS get no subwords.
func (d *Dictionary) initNgrams() {
	for i := range d.entries {
		if d.entries[i].Kind != KindWord {
			continue
		}
		id := int32(i)
		d.entries[i].Subwords = append([]int32{id}, d.computeCharNgrams(d.entries[i].Word)...)
	}
}

// computeCharNgrams returns the hashed character n-gram bucket ids for
// word (not including the word's own id).
func (d *Dictionary) computeCharNgrams(word string) []int32 {
	if d.a.Bucket <= 0 || d.a.Maxn <= 0 || word == EOS || word == "" {
		return nil
	}
	bracketed := BOW + word + EOW
	runes := []rune(bracketed)
	var out []int32
	for i := 0; i < len(runes); i++ {
		var sb []rune
		for j, n := i, 1; j < len(runes) && n <= d.a.Maxn; j, n = j+1, n+1 {
			sb = append(sb, runes[j])
			if n < d.a.Minn {
				continue
			}
			ngram := string(sb)
			h := hashStr(ngram) % uint32(d.a.Bucket)
			out = append(out, d.nwords+int32(h))
		}
	}
	return out
}

// Subwords returns the input-matrix row ids a line element expands to:
// for a real word entry id, its precomputed subword list (self first);
// for a synthetic word-n-gram bucket id (already >= nwords, injected by
// GetLineSupervised), a single-element pass-through since word-n-grams
// are not further expanded into character n-grams (spec §3, §4.1).
func (d *Dictionary) Subwords(id int32) []int32 {
	if id < int32(len(d.entries)) && d.entries[id].Kind == KindWord {
		return d.entries[id].Subwords
	}
	return []int32{id}
}

// GetSubwordsByWord returns the subword ids for an arbitrary string,
// including unknown words (used for NN/analogy queries on OOV input):
// the word's id if it is known (nothing in its place if not), plus the
// hashed character n-grams regardless.
func (d *Dictionary) GetSubwordsByWord(word string) []int32 {
	id := d.GetID(word)
	var out []int32
	if id >= 0 {
		out = append(out, id)
	}
	out = append(out, d.computeCharNgrams(word)...)
	return out
}

// GetCounts returns the observation counts for all entries of the given
// kind, in entry order — the input to Huffman tree construction and the
// negative-sampling unigram table.
func (d *Dictionary) GetCounts(k Kind) []int64 {
	var out []int64
	for _, e := range d.entries {
		if e.Kind == k {
			out = append(out, e.Count)
		}
	}
	return out
}

// Pruned reports whether Prune has been applied.
func (d *Dictionary) Pruned() bool { return len(d.pruneidx) > 0 }
