package dictionary

import (
	"bytes"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/fasttext/pkg/fasttext/args"
)

func writeCorpus(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.txt")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testArgs() args.Args {
	a := args.Default()
	a.MinCount = 1
	a.Bucket = 1000
	return a
}

func TestReadFromFileBuildsVocabulary(t *testing.T) {
	path := writeCorpus(t, "the cat sat on the mat\nthe dog sat on the rug\n")
	d := NewWithHashSize(testArgs(), 4096)
	if err := d.ReadFromFile(path); err != nil {
		t.Fatal(err)
	}
	if d.Nwords() == 0 {
		t.Fatal("expected a non-empty vocabulary")
	}
	if d.GetID("the") < 0 {
		t.Fatal("expected \"the\" to be in the vocabulary")
	}
	// "the" is the most frequent word; after threshold's descending sort
	// it should sit at id 0 (</s> aside, since EOS itself competes on
	// count too, but a two-line corpus makes "the" strictly more frequent
	// than </s>).
	theID := d.GetID("the")
	if theID != 0 || d.GetKind(theID) != KindWord {
		t.Fatalf("unexpected id/kind for \"the\": %d/%v", theID, d.GetKind(theID))
	}
}

func TestSubwordsIncludeSelfFirst(t *testing.T) {
	path := writeCorpus(t, "hello world\nhello there\n")
	d := NewWithHashSize(testArgs(), 4096)
	if err := d.ReadFromFile(path); err != nil {
		t.Fatal(err)
	}
	id := d.GetID("hello")
	if id < 0 {
		t.Fatal("expected \"hello\" in vocabulary")
	}
	sw := d.Subwords(id)
	if len(sw) == 0 || sw[0] != id {
		t.Fatalf("expected subwords[0] == self id, got %v (id=%d)", sw, id)
	}
}

func TestMinnMaxnZeroDisablesSubwords(t *testing.T) {
	path := writeCorpus(t, "hello world\n")
	a := testArgs()
	a.Minn, a.Maxn = 0, 0
	d := NewWithHashSize(a, 4096)
	if err := d.ReadFromFile(path); err != nil {
		t.Fatal(err)
	}
	id := d.GetID("hello")
	sw := d.Subwords(id)
	if len(sw) != 1 || sw[0] != id {
		t.Fatalf("expected subwords == [self] with minn=maxn=0, got %v", sw)
	}
}

func TestBucketZeroDisablesSubwords(t *testing.T) {
	path := writeCorpus(t, "hello world\n")
	a := testArgs()
	a.Bucket = 0
	d := NewWithHashSize(a, 4096)
	if err := d.ReadFromFile(path); err != nil {
		t.Fatal(err)
	}
	id := d.GetID("hello")
	sw := d.Subwords(id)
	if len(sw) != 1 || sw[0] != id {
		t.Fatalf("expected subwords == [self] with bucket=0, got %v", sw)
	}
}

func TestGetLineUnsupervisedRespectsLineBoundary(t *testing.T) {
	path := writeCorpus(t, "the cat sat\nthe dog ran\n")
	a := testArgs()
	a.T = 1 // disable subsampling for a deterministic test
	d := NewWithHashSize(a, 4096)
	if err := d.ReadFromFile(path); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	lr := NewLineReader(f)
	rng := rand.New(rand.NewSource(1))

	words1, _, err := d.GetLineUnsupervised(lr, rng)
	if err != nil {
		t.Fatal(err)
	}
	if len(words1) != 3 {
		t.Fatalf("expected 3 words from first line, got %d (%v)", len(words1), words1)
	}

	words2, _, err := d.GetLineUnsupervised(lr, rng)
	if err != nil {
		t.Fatal(err)
	}
	if len(words2) != 3 {
		t.Fatalf("expected 3 words from second line, got %d (%v)", len(words2), words2)
	}
}

func TestGetLineSupervisedSplitsWordsAndLabels(t *testing.T) {
	path := writeCorpus(t, "__label__sports the team won\n")
	a := testArgs()
	a.Model = args.ModelSupervised
	a.Minn, a.Maxn, a.Bucket = 0, 0, 0
	d := NewWithHashSize(a, 4096)
	if err := d.ReadFromFile(path); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	lr := NewLineReader(f)

	words, labels, _, err := d.GetLineSupervised(lr)
	if err != nil {
		t.Fatal(err)
	}
	if len(labels) != 1 {
		t.Fatalf("expected exactly one label, got %v", labels)
	}
	if len(words) != 3 {
		t.Fatalf("expected 3 words, got %v", words)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := writeCorpus(t, "alpha beta gamma\nalpha beta delta\n")
	a := testArgs()
	d := NewWithHashSize(a, 4096)
	if err := d.ReadFromFile(path); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := d.Save(&buf); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(&buf, a)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Nwords() != d.Nwords() || loaded.Nlabels() != d.Nlabels() {
		t.Fatalf("round trip mismatch: got nwords=%d nlabels=%d, want %d/%d",
			loaded.Nwords(), loaded.Nlabels(), d.Nwords(), d.Nlabels())
	}
	if loaded.GetID("alpha") < 0 {
		t.Fatal("expected \"alpha\" to survive the round trip")
	}
}
