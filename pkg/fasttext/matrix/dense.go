package matrix

import (
	"encoding/binary"
	"io"
	"math/rand"

	"github.com/cognicore/fasttext/pkg/fasttext/vecmath"
)

// Dense is a row-major, racy-write-friendly parameter matrix. All
// training threads mutate the same backing slice without locking
// ("Hogwild"); the data pointer's contract is that a pointwise racy write
// is safe and a reader may observe a torn write, which is acceptable for
// this workload (spec §4.4, §9).
type Dense struct {
	rows, cols int
	data       []float32
}

// NewDense allocates a zeroed rows x cols matrix.
func NewDense(rows, cols int) *Dense {
	return &Dense{rows: rows, cols: cols, data: make([]float32, rows*cols)}
}

func (m *Dense) Rows() int { return m.rows }
func (m *Dense) Cols() int { return m.cols }

// Row returns the mutable backing slice for row i. Callers in the hot
// training path use this directly instead of going through DotRow/
// AddRowToVector to avoid a bounds-checked wrapper per access.
func (m *Dense) Row(i int) []float32 {
	return m.data[i*m.cols : (i+1)*m.cols]
}

func (m *Dense) DotRow(vec []float32, i int) float32 {
	return vecmath.Dot(vec, m.Row(i))
}

func (m *Dense) AddRowToVector(dst []float32, i int, alpha float32) {
	vecmath.AddScaled(dst, m.Row(i), alpha)
}

// InitRowRange uniformly initializes rows [lo, hi) in [-1/cols, 1/cols],
// using rng. With a deterministically-seeded rng, initialization is
// bit-reproducible (spec §3, §8); FastText.Train initializes the whole
// input matrix in one call from a single rng seeded with Args.Seed.
func (m *Dense) InitRowRange(lo, hi int, rng *rand.Rand) {
	bound := float32(1.0 / float64(m.cols))
	for i := lo; i < hi; i++ {
		row := m.Row(i)
		for j := range row {
			row[j] = (rng.Float32()*2 - 1) * bound
		}
	}
}

// L2Norms returns the Euclidean norm of every row, used by the pruning
// cutoff (spec §4.6) to rank words for retention.
func (m *Dense) L2Norms() []float32 {
	out := make([]float32, m.rows)
	for i := 0; i < m.rows; i++ {
		out[i] = vecmath.L2Norm(m.Row(i))
	}
	return out
}

// Save writes the matrix as rows, cols (int64 each) followed by the raw
// row-major float32 data, little-endian (spec §4.7).
func (m *Dense) Save(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, int64(m.rows)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, int64(m.cols)); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, m.data)
}

// LoadDense reads a matrix previously written by Save.
func LoadDense(r io.Reader) (*Dense, error) {
	var rows, cols int64
	if err := binary.Read(r, binary.LittleEndian, &rows); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &cols); err != nil {
		return nil, err
	}
	m := NewDense(int(rows), int(cols))
	if err := binary.Read(r, binary.LittleEndian, m.data); err != nil {
		return nil, err
	}
	return m, nil
}

// Rebuild constructs a new Dense containing only the given row indices,
// in order, used when pruning the dictionary before quantization.
func (m *Dense) Rebuild(keep []int32) *Dense {
	out := NewDense(len(keep), m.cols)
	for dst, src := range keep {
		copy(out.Row(dst), m.Row(int(src)))
	}
	return out
}
