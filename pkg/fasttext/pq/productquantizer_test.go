package pq

import (
	"bytes"
	"math/rand"
	"testing"
)

func randomRows(n, dim int, seed int64) []float32 {
	rng := rand.New(rand.NewSource(seed))
	data := make([]float32, n*dim)
	for i := range data {
		data[i] = rng.Float32()
	}
	return data
}

func TestQuantizerEncodeRowApproximatesVector(t *testing.T) {
	const n, dim, dsub = 40, 8, 2
	data := randomRows(n, dim, 7)

	q := New(NewConfig(dim, dsub))
	q.Train(n, data)

	row := data[0:dim]
	code := q.EncodeRow(row)
	if len(code) != q.NumSubq() {
		t.Fatalf("len(code) = %d, want %d", len(code), q.NumSubq())
	}

	dot := q.MulCode(row, code)
	var want float32
	for _, v := range row {
		want += v * v
	}
	if dot <= 0 {
		t.Errorf("MulCode(row, encode(row)) = %v, want a positive approximation of %v", dot, want)
	}
}

func TestQuantizerAddCodeAccumulates(t *testing.T) {
	const n, dim, dsub = 40, 6, 3
	data := randomRows(n, dim, 3)
	q := New(NewConfig(dim, dsub))
	q.Train(n, data)

	code := q.EncodeRow(data[0:dim])
	dst := make([]float32, dim)
	q.AddCode(dst, code, 1.0)
	q.AddCode(dst, code, 1.0)

	var norm float32
	for _, v := range dst {
		norm += v * v
	}
	if norm == 0 {
		t.Error("AddCode left dst all zero after two additions")
	}
}

func TestNewConfigClampsDsubToDim(t *testing.T) {
	cfg := NewConfig(4, 10)
	if cfg.Dsub != 4 {
		t.Errorf("Dsub = %d, want clamped to Dim (4)", cfg.Dsub)
	}
}

func TestQuantizerSaveLoadRoundTrip(t *testing.T) {
	const n, dim, dsub = 40, 8, 2
	data := randomRows(n, dim, 11)
	q := New(NewConfig(dim, dsub))
	q.Train(n, data)

	var buf bytes.Buffer
	if err := q.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.NumSubq() != q.NumSubq() {
		t.Errorf("loaded NumSubq() = %d, want %d", loaded.NumSubq(), q.NumSubq())
	}

	row := data[0:dim]
	code := q.EncodeRow(row)
	loadedCode := loaded.EncodeRow(row)
	for i := range code {
		if code[i] != loadedCode[i] {
			t.Errorf("code[%d] = %d, loaded code[%d] = %d, want equal", i, code[i], i, loadedCode[i])
		}
	}
}

func TestQuantizerTrainHandlesEmptyClusters(t *testing.T) {
	// Fewer points than centroids forces the empty-cluster repair path.
	const n, dim, dsub = 30, 4, 2
	data := randomRows(n, dim, 1)
	q := New(NewConfig(dim, dsub))
	q.Train(n, data) // must not panic despite npts < Ksub

	code := q.EncodeRow(data[0:dim])
	if len(code) == 0 {
		t.Error("EncodeRow returned an empty code")
	}
}

func TestNormQuantizerEncodeDecodeRoundTrip(t *testing.T) {
	norms := make([]float32, 50)
	rng := rand.New(rand.NewSource(1))
	for i := range norms {
		norms[i] = 1 + rng.Float32()*10
	}
	nq := NewNormQuantizer()
	nq.Train(norms)

	code := nq.EncodeNorm(norms[0])
	decoded := nq.DecodeNorm(code)
	if decoded <= 0 {
		t.Errorf("DecodeNorm(%d) = %v, want a positive norm estimate", code, decoded)
	}
}

func TestWrapNormQuantizerPreservesUnderlying(t *testing.T) {
	nq := NewNormQuantizer()
	nq.Train([]float32{1, 2, 3, 4, 5})
	wrapped := WrapNormQuantizer(nq.Underlying())
	if wrapped.Underlying() != nq.Underlying() {
		t.Error("WrapNormQuantizer did not preserve the underlying Quantizer")
	}
}
