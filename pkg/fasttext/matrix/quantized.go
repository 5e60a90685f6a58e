package matrix

import (
	"encoding/binary"
	"io"

	"github.com/cognicore/fasttext/pkg/fasttext/pq"
)

// Quantized is the frozen, product-quantized matrix produced by
// quantize.Quantize (spec §3, §4.6). It satisfies Matrix so that the loss
// and model routines never need to know whether they are reading the
// dense training matrix or a quantized inference copy.
type Quantized struct {
	rows, cols int
	q          *pq.Quantizer
	codes      [][]uint8 // per row, one code per sub-vector
	norms      *pq.NormQuantizer
	normCodes  []uint8 // per row, present iff norms != nil
}

// Quantize trains a product quantizer over m and encodes every row. If
// qnorm is true, row norms are quantized separately and each row's code
// is implicitly re-scaled by its decoded norm, matching the original's
// "normalize direction, quantize norm separately" scheme.
func Quantize(m *Dense, dsub int, qnorm bool) *Quantized {
	cfg := pq.NewConfig(m.Cols(), dsub)
	quantizer := pq.New(cfg)

	data := make([]float32, m.Rows()*m.Cols())
	norms := m.L2Norms()

	var normQ *pq.NormQuantizer
	normed := make([]float32, m.Rows()*m.Cols())
	for i := 0; i < m.Rows(); i++ {
		row := m.Row(i)
		copy(data[i*m.Cols():(i+1)*m.Cols()], row)
		dst := normed[i*m.Cols() : (i+1)*m.Cols()]
		if qnorm && norms[i] > 0 {
			inv := 1.0 / norms[i]
			for j, v := range row {
				dst[j] = v * inv
			}
		} else {
			copy(dst, row)
		}
	}

	trainOn := data
	if qnorm {
		trainOn = normed
	}
	quantizer.Train(m.Rows(), trainOn)

	codes := make([][]uint8, m.Rows())
	var normCodes []uint8
	if qnorm {
		normQ = pq.NewNormQuantizer()
		normQ.Train(norms)
		normCodes = make([]uint8, m.Rows())
	}
	for i := 0; i < m.Rows(); i++ {
		src := data[i*m.Cols() : (i+1)*m.Cols()]
		if qnorm {
			src = normed[i*m.Cols() : (i+1)*m.Cols()]
			normCodes[i] = normQ.EncodeNorm(norms[i])
		}
		codes[i] = quantizer.EncodeRow(src)
	}

	return &Quantized{
		rows: m.Rows(), cols: m.Cols(),
		q: quantizer, codes: codes,
		norms: normQ, normCodes: normCodes,
	}
}

func (q *Quantized) Rows() int { return q.rows }
func (q *Quantized) Cols() int { return q.cols }

func (q *Quantized) rowNorm(i int) float32 {
	if q.norms == nil {
		return 1
	}
	return q.norms.DecodeNorm(q.normCodes[i])
}

// DotRow computes norm_i * sum_m <vec_sub_m, centroid(m, code[i,m])>
// (spec §3).
func (q *Quantized) DotRow(vec []float32, i int) float32 {
	return q.rowNorm(i) * q.q.MulCode(vec, q.codes[i])
}

func (q *Quantized) AddRowToVector(dst []float32, i int, alpha float32) {
	q.q.AddCode(dst, q.codes[i], alpha*q.rowNorm(i))
}

// Save persists the quantized matrix: dims, the product quantizer, the
// qnorm flag (and norm quantizer + per-row norm codes if set), then the
// per-row sub-vector codes.
func (q *Quantized) Save(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, int64(q.rows)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, int64(q.cols)); err != nil {
		return err
	}
	if err := q.q.Save(w); err != nil {
		return err
	}
	hasNorm := q.norms != nil
	if err := binary.Write(w, binary.LittleEndian, hasNorm); err != nil {
		return err
	}
	if hasNorm {
		if err := q.norms.Underlying().Save(w); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, q.normCodes); err != nil {
			return err
		}
	}
	nsubq := q.q.NumSubq()
	for i := 0; i < q.rows; i++ {
		if err := binary.Write(w, binary.LittleEndian, q.codes[i][:nsubq]); err != nil {
			return err
		}
	}
	return nil
}

// LoadQuantized reads a matrix previously written by Save.
func LoadQuantized(r io.Reader) (*Quantized, error) {
	var rows, cols int64
	if err := binary.Read(r, binary.LittleEndian, &rows); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &cols); err != nil {
		return nil, err
	}
	quantizer, err := pq.Load(r)
	if err != nil {
		return nil, err
	}
	var hasNorm bool
	if err := binary.Read(r, binary.LittleEndian, &hasNorm); err != nil {
		return nil, err
	}
	q := &Quantized{rows: int(rows), cols: int(cols), q: quantizer}
	if hasNorm {
		normQ, err := pq.Load(r)
		if err != nil {
			return nil, err
		}
		q.norms = pq.WrapNormQuantizer(normQ)
		q.normCodes = make([]uint8, rows)
		if err := binary.Read(r, binary.LittleEndian, q.normCodes); err != nil {
			return nil, err
		}
	}
	nsubq := quantizer.NumSubq()
	q.codes = make([][]uint8, rows)
	for i := range q.codes {
		q.codes[i] = make([]uint8, nsubq)
		if err := binary.Read(r, binary.LittleEndian, q.codes[i]); err != nil {
			return nil, err
		}
	}
	return q, nil
}
