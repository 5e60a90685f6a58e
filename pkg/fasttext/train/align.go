package train

import (
	"bufio"
	"io"
	"os"
)

// alignToNextRecord seeks f to byte offset and then consumes bytes up to
// and including the next whitespace byte, so a multi-worker scan never
// starts mid-token (spec §4.4 "Opens its own read handle... seeks to
// thread_id*file_size/thread then scans forward to the next whitespace";
// spec §9 design note: spec this as a separate "align to next record"
// helper so memory-mapped implementations can satisfy it too). offset 0
// is never aligned since there is nothing before it to skip past.
func alignToNextRecord(f *os.File, offset int64) (*bufio.Reader, error) {
	if offset <= 0 {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		return bufio.NewReaderSize(f, 1<<16), nil
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}
	br := bufio.NewReaderSize(f, 1<<16)
	for {
		b, err := br.ReadByte()
		if err != nil {
			return br, nil // ran off the end of the file; the caller sees io.EOF on the next read
		}
		if isSpaceByte(b) {
			return br, nil
		}
	}
}

func isSpaceByte(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}

// fileSize returns f's size in bytes for computing per-thread seek
// offsets.
func fileSize(f *os.File) (int64, error) {
	fi, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}
