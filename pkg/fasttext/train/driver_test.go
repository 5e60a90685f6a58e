package train

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cognicore/fasttext/pkg/fasttext/args"
	"github.com/cognicore/fasttext/pkg/fasttext/dictionary"
	"github.com/cognicore/fasttext/pkg/fasttext/internalerr"
	"github.com/cognicore/fasttext/pkg/fasttext/loss"
	"github.com/cognicore/fasttext/pkg/fasttext/matrix"
	"github.com/cognicore/fasttext/pkg/fasttext/model"
)

func writeCorpusFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestDriverRunSkipgramConverges(t *testing.T) {
	a := args.Default()
	a.Thread = 2
	a.Epoch = 3
	a.Dim = 8
	a.MinCount = 1
	a.Bucket = 0
	a.Minn, a.Maxn = 0, 0
	a.Loss = args.LossNS
	a.Neg = 2

	path := writeCorpusFile(t, "the quick brown fox jumps over the lazy dog\nthe dog barks at the fox\n")
	a.Input = path

	d := dictionary.NewWithHashSize(a, 4096)
	if err := d.ReadFromFile(path); err != nil {
		t.Fatalf("ReadFromFile: %v", err)
	}

	wi := matrix.NewDense(int(d.Nwords())+int(d.Bucket()), a.Dim)
	wo := matrix.NewDense(int(d.Nwords()), a.Dim)
	wi.InitRowRange(0, wi.Rows(), rand.New(rand.NewSource(1)))
	l := loss.NewNegativeSamplingLoss(wo, a.Neg, d.GetCounts(dictionary.KindWord), rand.New(rand.NewSource(2)))
	m := model.New(wi, wo, l, false)

	driver := NewDriver(a, d, m)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := driver.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if driver.ID() == "" {
		t.Error("Driver.ID() is empty")
	}
}

func TestDriverRunCancelReturnsAbort(t *testing.T) {
	a := args.Default()
	a.Thread = 1
	a.Epoch = 1000
	a.Dim = 4
	a.MinCount = 1
	a.Bucket = 0
	a.Minn, a.Maxn = 0, 0
	a.Loss = args.LossNS
	a.Neg = 1

	path := writeCorpusFile(t, "a b c d e f g h\n")
	a.Input = path

	d := dictionary.NewWithHashSize(a, 4096)
	if err := d.ReadFromFile(path); err != nil {
		t.Fatalf("ReadFromFile: %v", err)
	}
	wi := matrix.NewDense(int(d.Nwords()), a.Dim)
	wo := matrix.NewDense(int(d.Nwords()), a.Dim)
	l := loss.NewNegativeSamplingLoss(wo, a.Neg, d.GetCounts(dictionary.KindWord), rand.New(rand.NewSource(1)))
	m := model.New(wi, wo, l, false)

	driver := NewDriver(a, d, m)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := driver.Run(ctx)
	if !errors.Is(err, internalerr.ErrAbort) {
		t.Fatalf("Run after cancellation = %v, want ErrAbort", err)
	}
}
