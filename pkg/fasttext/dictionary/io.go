package dictionary

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cognicore/fasttext/pkg/fasttext/args"
	"github.com/cognicore/fasttext/pkg/fasttext/internalerr"
)

// Save writes size, nwords, nlabels, ntokens, pruneidx size, then each
// entry (zero-terminated word, int64 count, int8 kind), then pruneidx
// (old id, new id) pairs, all little-endian (spec §4.1 "Serialization").
// Subword lists are never written; Load recomputes them from Args.
func (d *Dictionary) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fields := []int32{int32(len(d.entries)), d.nwords, d.nlabels}
	for _, f := range fields {
		if err := binary.Write(bw, binary.LittleEndian, f); err != nil {
			return fmt.Errorf("dictionary: %w: %v", internalerr.ErrIO, err)
		}
	}
	if err := binary.Write(bw, binary.LittleEndian, d.ntokens); err != nil {
		return fmt.Errorf("dictionary: %w: %v", internalerr.ErrIO, err)
	}
	if err := binary.Write(bw, binary.LittleEndian, int64(len(d.pruneidx))); err != nil {
		return fmt.Errorf("dictionary: %w: %v", internalerr.ErrIO, err)
	}
	for _, e := range d.entries {
		if _, err := bw.WriteString(e.Word); err != nil {
			return fmt.Errorf("dictionary: %w: %v", internalerr.ErrIO, err)
		}
		if err := bw.WriteByte(0); err != nil {
			return fmt.Errorf("dictionary: %w: %v", internalerr.ErrIO, err)
		}
		if err := binary.Write(bw, binary.LittleEndian, e.Count); err != nil {
			return fmt.Errorf("dictionary: %w: %v", internalerr.ErrIO, err)
		}
		if err := bw.WriteByte(byte(e.Kind)); err != nil {
			return fmt.Errorf("dictionary: %w: %v", internalerr.ErrIO, err)
		}
	}
	for oldID, newID := range d.pruneidx {
		if err := binary.Write(bw, binary.LittleEndian, oldID); err != nil {
			return fmt.Errorf("dictionary: %w: %v", internalerr.ErrIO, err)
		}
		if err := binary.Write(bw, binary.LittleEndian, newID); err != nil {
			return fmt.Errorf("dictionary: %w: %v", internalerr.ErrIO, err)
		}
	}
	return bw.Flush()
}

// Load reads a Dictionary previously written by Save, rebuilding the
// hash index, discard table and subword lists from a (spec §4.1
// "Serialization").
func Load(r io.Reader, a args.Args) (*Dictionary, error) {
	br := bufio.NewReader(r)
	var size, nwords, nlabels int32
	for _, f := range []*int32{&size, &nwords, &nlabels} {
		if err := binary.Read(br, binary.LittleEndian, f); err != nil {
			return nil, fmt.Errorf("dictionary: %w: %v", internalerr.ErrIO, err)
		}
	}
	var ntokens int64
	if err := binary.Read(br, binary.LittleEndian, &ntokens); err != nil {
		return nil, fmt.Errorf("dictionary: %w: %v", internalerr.ErrIO, err)
	}
	var pruneSize int64
	if err := binary.Read(br, binary.LittleEndian, &pruneSize); err != nil {
		return nil, fmt.Errorf("dictionary: %w: %v", internalerr.ErrIO, err)
	}

	d := NewWithHashSize(a, MaxVocabSize)
	d.nwords, d.nlabels, d.ntokens = nwords, nlabels, ntokens
	d.entries = make([]Entry, size)
	for i := int32(0); i < size; i++ {
		word, err := br.ReadString(0)
		if err != nil {
			return nil, fmt.Errorf("dictionary: %w: %v", internalerr.ErrIO, err)
		}
		word = word[:len(word)-1]
		var count int64
		if err := binary.Read(br, binary.LittleEndian, &count); err != nil {
			return nil, fmt.Errorf("dictionary: %w: %v", internalerr.ErrIO, err)
		}
		kind, err := br.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("dictionary: %w: %v", internalerr.ErrIO, err)
		}
		d.entries[i] = Entry{Word: word, Count: count, Kind: Kind(kind)}
	}
	d.resetHash()
	for id, e := range d.entries {
		slot := d.find(e.Word)
		d.word2int[slot] = int32(id)
	}

	d.pruneidx = make(map[int32]int32, pruneSize)
	for i := int64(0); i < pruneSize; i++ {
		var oldID, newID int32
		if err := binary.Read(br, binary.LittleEndian, &oldID); err != nil {
			return nil, fmt.Errorf("dictionary: %w: %v", internalerr.ErrIO, err)
		}
		if err := binary.Read(br, binary.LittleEndian, &newID); err != nil {
			return nil, fmt.Errorf("dictionary: %w: %v", internalerr.ErrIO, err)
		}
		d.pruneidx[oldID] = newID
	}

	d.initTableDiscard()
	d.initNgrams()
	return d, nil
}
