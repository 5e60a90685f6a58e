// Package ioformat implements the versioned on-disk model format (spec
// §4.7): magic/version header, the fixed-width Args block, the
// dictionary, and the input/output matrices (dense or product-quantized
// per a leading flag byte). It also renders the human-readable `.vec`
// word-vectors file (spec §6 "Persisted artifacts").
//
// Binary framing here is new — there is no teacher analogue for a
// length-prefixed mixed-type record stream — grounded directly in spec
// §4.7 and original_source/src/fasttext.cc's save/loadModel pair. The
// `.vec` writer's shape (a Writer-interface line renderer) follows
// pkg/korel/maintenance.RuleExporter.
package ioformat

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cognicore/fasttext/pkg/fasttext/args"
	"github.com/cognicore/fasttext/pkg/fasttext/internalerr"
)

const (
	// Magic is the fixed int32 every model file begins with (spec §4.7).
	Magic int32 = 793712314
	// Version is the current on-disk format version this package writes.
	Version int32 = 12
)

// WriteHeader writes the magic number and format version.
func WriteHeader(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, Magic); err != nil {
		return fmt.Errorf("ioformat: %w: %v", internalerr.ErrIO, err)
	}
	return binary.Write(w, binary.LittleEndian, Version)
}

// ReadHeader reads and validates the magic number, returning the file's
// format version. An unrecognized magic is InvalidArgument (spec §7
// "wrong magic/version").
func ReadHeader(r io.Reader) (version int32, err error) {
	var magic int32
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return 0, fmt.Errorf("ioformat: %w: %v", internalerr.ErrIO, err)
	}
	if magic != Magic {
		return 0, fmt.Errorf("ioformat: %w: bad magic %d, want %d", internalerr.ErrInvalidArgument, magic, Magic)
	}
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return 0, fmt.Errorf("ioformat: %w: %v", internalerr.ErrIO, err)
	}
	if version > Version {
		return 0, fmt.Errorf("ioformat: %w: model version %d newer than supported %d", internalerr.ErrInvalidArgument, version, Version)
	}
	return version, nil
}

// argsRecord is the fixed-width field set written for every version this
// package supports (spec §4.7 "Args"). Only the fields below are written;
// the rest of args.Args (label prefix, thread, seed, min label count,
// quantization and autotune settings) is not stored and reads back as
// its zero value.
type argsRecord struct {
	Dim           int32
	WS            int32
	Epoch         int32
	MinCount      int32
	Neg           int32
	WordNgrams    int32
	Loss          int32
	Model         int32
	Bucket        int32
	Minn          int32
	Maxn          int32
	LRUpdateRate  int32
	T             float64
}

// WriteArgs writes a's fixed-width fields (spec §4.7 "Args").
func WriteArgs(w io.Writer, a args.Args) error {
	rec := argsRecord{
		Dim: int32(a.Dim), WS: int32(a.WS), Epoch: int32(a.Epoch),
		MinCount: int32(a.MinCount), Neg: int32(a.Neg), WordNgrams: int32(a.WordNgrams),
		Loss: int32(a.Loss), Model: int32(a.Model), Bucket: int32(a.Bucket),
		Minn: int32(a.Minn), Maxn: int32(a.Maxn), LRUpdateRate: int32(a.LRUpdateRate),
		T: a.T,
	}
	if err := binary.Write(w, binary.LittleEndian, rec); err != nil {
		return fmt.Errorf("ioformat: %w: %v", internalerr.ErrIO, err)
	}
	return nil
}

// ReadArgs reads the fixed-width Args block written by WriteArgs,
// applying the version-11-supervised backward-compatibility rule (spec
// §4.7 "Backwards compatibility": old supervised models carried no
// subwords, so maxn is forced to 0 before the dictionary is read).
func ReadArgs(r io.Reader, version int32) (args.Args, error) {
	var rec argsRecord
	if err := binary.Read(r, binary.LittleEndian, &rec); err != nil {
		return args.Args{}, fmt.Errorf("ioformat: %w: %v", internalerr.ErrIO, err)
	}
	a := args.Args{
		Dim: int(rec.Dim), WS: int(rec.WS), Epoch: int(rec.Epoch),
		MinCount: int(rec.MinCount), Neg: int(rec.Neg), WordNgrams: int(rec.WordNgrams),
		Loss: args.LossName(rec.Loss), Model: args.ModelName(rec.Model), Bucket: int(rec.Bucket),
		Minn: int(rec.Minn), Maxn: int(rec.Maxn), LRUpdateRate: int(rec.LRUpdateRate),
		T: rec.T,
	}
	if version <= 11 && a.Model == args.ModelSupervised {
		a.Maxn = 0
	}
	return a, nil
}

// WriteBool/ReadBool frame the quant_/qout single-byte flags (spec §4.7
// step 4-5).
func WriteBool(w io.Writer, b bool) error {
	return binary.Write(w, binary.LittleEndian, b)
}

func ReadBool(r io.Reader) (bool, error) {
	var b bool
	if err := binary.Read(r, binary.LittleEndian, &b); err != nil {
		return false, fmt.Errorf("ioformat: %w: %v", internalerr.ErrIO, err)
	}
	return b, nil
}

// WriteVec renders the `.vec` human-readable word-vectors file: a
// header line "nwords dim" then one "word v1 ... vdim" line per word,
// 5 decimal digits of precision (spec §6 "Persisted artifacts").
func WriteVec(w io.Writer, words []string, vectors [][]float32, dim int) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%d %d\n", len(words), dim); err != nil {
		return fmt.Errorf("ioformat: %w: %v", internalerr.ErrIO, err)
	}
	for i, word := range words {
		if _, err := bw.WriteString(word); err != nil {
			return fmt.Errorf("ioformat: %w: %v", internalerr.ErrIO, err)
		}
		for _, v := range vectors[i] {
			if _, err := fmt.Fprintf(bw, " %.5f", v); err != nil {
				return fmt.Errorf("ioformat: %w: %v", internalerr.ErrIO, err)
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("ioformat: %w: %v", internalerr.ErrIO, err)
		}
	}
	return bw.Flush()
}

// ReadPretrainedVectors parses a pretrained-vectors file: a header line
// "n dim" then n "word v1...vdim" lines (spec §6 "Pretrained vectors
// input"). A dim mismatch against expectDim is fatal (InvalidArgument).
func ReadPretrainedVectors(r io.Reader, expectDim int) (words []string, vectors [][]float32, err error) {
	br := bufio.NewReader(r)
	var n, dim int
	if _, err := fmt.Fscanf(br, "%d %d\n", &n, &dim); err != nil {
		return nil, nil, fmt.Errorf("ioformat: %w: malformed header: %v", internalerr.ErrInvalidArgument, err)
	}
	if dim != expectDim {
		return nil, nil, fmt.Errorf("ioformat: %w: pretrained dim %d != model dim %d", internalerr.ErrInvalidArgument, dim, expectDim)
	}
	words = make([]string, 0, n)
	vectors = make([][]float32, 0, n)
	for i := 0; i < n; i++ {
		line, err := br.ReadString('\n')
		if err != nil && line == "" {
			return nil, nil, fmt.Errorf("ioformat: %w: truncated pretrained vectors: %v", internalerr.ErrInvalidArgument, err)
		}
		var word string
		vec := make([]float32, dim)
		fields, scanErr := scanVectorLine(line, &word, vec)
		if scanErr != nil || fields != dim+1 {
			return nil, nil, fmt.Errorf("ioformat: %w: malformed vector line %d", internalerr.ErrInvalidArgument, i)
		}
		words = append(words, word)
		vectors = append(vectors, vec)
	}
	return words, vectors, nil
}
