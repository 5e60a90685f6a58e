package train

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempCorpus(t *testing.T, content string) *os.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestAlignToNextRecordZeroOffsetStaysAtStart(t *testing.T) {
	f := writeTempCorpus(t, "alpha beta gamma\n")
	br, err := alignToNextRecord(f, 0)
	if err != nil {
		t.Fatalf("alignToNextRecord: %v", err)
	}
	b, err := br.ReadByte()
	if err != nil || b != 'a' {
		t.Errorf("first byte = %q, err %v, want 'a'", b, err)
	}
}

func TestAlignToNextRecordSkipsToWhitespace(t *testing.T) {
	f := writeTempCorpus(t, "alpha beta gamma\n")
	// offset 2 lands mid "alpha"; align should skip past the next space.
	br, err := alignToNextRecord(f, 2)
	if err != nil {
		t.Fatalf("alignToNextRecord: %v", err)
	}
	b, err := br.ReadByte()
	if err != nil {
		t.Fatalf("ReadByte: %v", err)
	}
	if b != 'b' {
		t.Errorf("first byte after align = %q, want 'b' (start of \"beta\")", b)
	}
}

func TestAlignToNextRecordPastEOF(t *testing.T) {
	f := writeTempCorpus(t, "short\n")
	br, err := alignToNextRecord(f, 1000)
	if err != nil {
		t.Fatalf("alignToNextRecord: %v", err)
	}
	if _, err := br.ReadByte(); err == nil {
		t.Error("expected EOF reading past the end of the file")
	}
}

func TestFileSize(t *testing.T) {
	f := writeTempCorpus(t, "1234567890")
	size, err := fileSize(f)
	if err != nil {
		t.Fatalf("fileSize: %v", err)
	}
	if size != 10 {
		t.Errorf("fileSize = %d, want 10", size)
	}
}
