package matrix

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestDenseRowIsolation(t *testing.T) {
	m := NewDense(3, 4)
	copy(m.Row(1), []float32{1, 2, 3, 4})
	if m.Row(0)[0] != 0 {
		t.Error("writing row 1 leaked into row 0")
	}
	if got := m.Row(1); got[2] != 3 {
		t.Errorf("Row(1)[2] = %v, want 3", got[2])
	}
}

func TestDenseDotRowAndAddRowToVector(t *testing.T) {
	m := NewDense(2, 3)
	copy(m.Row(0), []float32{1, 2, 3})
	if got := m.DotRow([]float32{1, 1, 1}, 0); got != 6 {
		t.Errorf("DotRow = %v, want 6", got)
	}
	dst := []float32{0, 0, 0}
	m.AddRowToVector(dst, 0, 2)
	want := []float32{2, 4, 6}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("dst[%d] = %v, want %v", i, dst[i], want[i])
		}
	}
}

func TestDenseInitRowRangeBounded(t *testing.T) {
	m := NewDense(4, 2)
	rng := rand.New(rand.NewSource(1))
	m.InitRowRange(1, 3, rng)
	bound := float32(1.0 / 2.0)
	for i := 1; i < 3; i++ {
		for _, v := range m.Row(i) {
			if v < -bound || v > bound {
				t.Errorf("row %d value %v out of bound %v", i, v, bound)
			}
		}
	}
	for _, v := range m.Row(0) {
		if v != 0 {
			t.Error("InitRowRange touched a row outside [lo, hi)")
		}
	}
}

func TestDenseSaveLoadRoundTrip(t *testing.T) {
	m := NewDense(2, 3)
	copy(m.Row(0), []float32{1, 2, 3})
	copy(m.Row(1), []float32{4, 5, 6})

	var buf bytes.Buffer
	if err := m.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := LoadDense(&buf)
	if err != nil {
		t.Fatalf("LoadDense: %v", err)
	}
	if loaded.Rows() != 2 || loaded.Cols() != 3 {
		t.Fatalf("dims = %dx%d, want 2x3", loaded.Rows(), loaded.Cols())
	}
	for i := 0; i < 2; i++ {
		for j := 0; j < 3; j++ {
			if loaded.Row(i)[j] != m.Row(i)[j] {
				t.Errorf("[%d][%d] = %v, want %v", i, j, loaded.Row(i)[j], m.Row(i)[j])
			}
		}
	}
}

func TestDenseRebuild(t *testing.T) {
	m := NewDense(3, 2)
	copy(m.Row(0), []float32{1, 1})
	copy(m.Row(1), []float32{2, 2})
	copy(m.Row(2), []float32{3, 3})

	out := m.Rebuild([]int32{2, 0})
	if out.Rows() != 2 {
		t.Fatalf("Rows = %d, want 2", out.Rows())
	}
	if out.Row(0)[0] != 3 || out.Row(1)[0] != 1 {
		t.Errorf("Rebuild reordering wrong: %v / %v", out.Row(0), out.Row(1))
	}
}

func TestDenseL2Norms(t *testing.T) {
	m := NewDense(2, 2)
	copy(m.Row(0), []float32{3, 4})
	copy(m.Row(1), []float32{0, 0})
	norms := m.L2Norms()
	if norms[0] != 5 || norms[1] != 0 {
		t.Errorf("L2Norms = %v, want [5 0]", norms)
	}
}
