// Package pq implements product quantization: compressing a matrix of
// row vectors by splitting each row into sub-vectors and encoding each
// independently against a 256-centroid codebook (spec §3, §4.6, GLOSSARY).
//
// The Config/constructor-with-defaults shape mirrors pkg/korel/pmi.Calculator
// (a small numeric estimator configured once, then called many times on a
// hot path); the Lloyd's-kmeans training loop itself is new, grounded
// directly in spec §4.6 and original_source/src/productquantizer.h.
package pq

import (
	"encoding/binary"
	"io"
	"math"
	"math/rand"
)

const (
	nbits             = 8
	Ksub              = 1 << nbits // 256 centroids per sub-vector
	maxPointsPerCluster = 256
	seed              = 1234
	niter             = 25
	eps               = 1e-7
)

// Config controls how a row vector is split into sub-vectors.
type Config struct {
	Dim  int // full row dimension
	Dsub int // sub-vector width
}

// NewConfig returns a Config with sensible defaults: Dsub clamped to Dim
// when the caller asks for a wider sub-vector than the row itself.
func NewConfig(dim, dsub int) Config {
	if dsub <= 0 {
		dsub = 2
	}
	if dsub > dim {
		dsub = dim
	}
	return Config{Dim: dim, Dsub: dsub}
}

// Quantizer holds the trained codebook: nsubq sub-vectors, each with Ksub
// centroids of dsub (or, for the last sub-vector, lastdsub) dimensions.
type Quantizer struct {
	cfg       Config
	nsubq     int
	lastdsub  int
	centroids []float32 // nsubq * Ksub * dsub, last sub-vector's tail unused beyond lastdsub
	rng       *rand.Rand
}

// New creates an untrained Quantizer for the given configuration.
func New(cfg Config) *Quantizer {
	nsubq := cfg.Dim / cfg.Dsub
	lastdsub := cfg.Dim % cfg.Dsub
	if lastdsub == 0 {
		lastdsub = cfg.Dsub
	} else {
		nsubq++
	}
	return &Quantizer{
		cfg:       cfg,
		nsubq:     nsubq,
		lastdsub:  lastdsub,
		centroids: make([]float32, nsubq*Ksub*cfg.Dsub),
		rng:       rand.New(rand.NewSource(seed)),
	}
}

func (q *Quantizer) centroidSlice(m int, k uint8) []float32 {
	off := (m*Ksub + int(k)) * q.cfg.Dsub
	return q.centroids[off : off+q.cfg.Dsub]
}

func (q *Quantizer) subDim(m int) int {
	if m == q.nsubq-1 {
		return q.lastdsub
	}
	return q.cfg.Dsub
}

// Train runs Lloyd's k-means independently for each of the nsubq
// sub-vectors over n rows of data (n*dim float32, row-major).
func (q *Quantizer) Train(n int, data []float32) {
	for m := 0; m < q.nsubq; m++ {
		dsub := q.subDim(m)
		npts := n
		maxPoints := maxPointsPerCluster * Ksub
		if npts > maxPoints {
			npts = maxPoints
		}
		sub := make([]float32, npts*dsub)
		for i := 0; i < npts; i++ {
			copy(sub[i*dsub:(i+1)*dsub], data[i*q.cfg.Dim+m*q.cfg.Dsub:i*q.cfg.Dim+m*q.cfg.Dsub+dsub])
		}
		q.kmeans(m, sub, npts, dsub)
	}
}

// kmeans trains the codebook for sub-vector m using npts points of
// dimension dsub stored in pts (row-major). Empty clusters are repaired
// by splitting the heaviest centroid with a small symmetric perturbation
// (spec §4.6).
func (q *Quantizer) kmeans(m int, pts []float32, npts, dsub int) {
	if npts == 0 {
		return
	}
	// Initialize centroids from random distinct points.
	perm := q.rng.Perm(npts)
	for k := 0; k < Ksub; k++ {
		src := pts[perm[k%npts]*dsub : perm[k%npts]*dsub+dsub]
		copy(q.centroidSlice(m, uint8(k)), src)
	}

	assign := make([]uint8, npts)
	counts := make([]int32, Ksub)
	sums := make([]float32, Ksub*dsub)

	for iter := 0; iter < niter; iter++ {
		// E-step: assign each point to its nearest centroid.
		for i := 0; i < npts; i++ {
			pt := pts[i*dsub : (i+1)*dsub]
			best := uint8(0)
			bestDist := float32(math.MaxFloat32)
			for k := 0; k < Ksub; k++ {
				d := sqDist(pt, q.centroidSlice(m, uint8(k)))
				if d < bestDist {
					bestDist = d
					best = uint8(k)
				}
			}
			assign[i] = best
		}

		// M-step: recompute centroids as the mean of assigned points.
		for i := range counts {
			counts[i] = 0
		}
		for i := range sums {
			sums[i] = 0
		}
		for i := 0; i < npts; i++ {
			k := assign[i]
			counts[k]++
			pt := pts[i*dsub : (i+1)*dsub]
			dst := sums[int(k)*dsub : int(k)*dsub+dsub]
			for d := 0; d < dsub; d++ {
				dst[d] += pt[d]
			}
		}

		heaviest := uint8(0)
		for k := 0; k < Ksub; k++ {
			if counts[k] > counts[heaviest] {
				heaviest = uint8(k)
			}
		}

		for k := 0; k < Ksub; k++ {
			c := q.centroidSlice(m, uint8(k))
			if counts[k] == 0 {
				// Empty-cluster repair: split the heaviest centroid with
				// a small symmetric perturbation.
				src := q.centroidSlice(m, heaviest)
				for d := 0; d < dsub; d++ {
					perturb := float32(eps) * (float32(d%2)*2 - 1)
					c[d] = src[d] + perturb
				}
				continue
			}
			src := sums[int(k)*dsub : int(k)*dsub+dsub]
			inv := 1.0 / float32(counts[k])
			for d := 0; d < dsub; d++ {
				c[d] = src[d] * inv
			}
		}
	}
}

func sqDist(a, b []float32) float32 {
	var sum float32
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return sum
}

// EncodeRow computes the per-sub-vector centroid code for a single row.
func (q *Quantizer) EncodeRow(row []float32) []uint8 {
	code := make([]uint8, q.nsubq)
	for m := 0; m < q.nsubq; m++ {
		dsub := q.subDim(m)
		pt := row[m*q.cfg.Dsub : m*q.cfg.Dsub+dsub]
		best := uint8(0)
		bestDist := float32(math.MaxFloat32)
		for k := 0; k < Ksub; k++ {
			d := sqDist(pt, q.centroidSlice(m, uint8(k))[:dsub])
			if d < bestDist {
				bestDist = d
				best = uint8(k)
			}
		}
		code[m] = best
	}
	return code
}

// MulCode returns dot(vec, decode(code)) without materializing the
// decoded row: sum over sub-vectors of <vec_sub_m, centroid(m, code[m])>.
func (q *Quantizer) MulCode(vec []float32, code []uint8) float32 {
	var sum float32
	for m := 0; m < q.nsubq; m++ {
		dsub := q.subDim(m)
		c := q.centroidSlice(m, code[m])[:dsub]
		v := vec[m*q.cfg.Dsub : m*q.cfg.Dsub+dsub]
		for d := 0; d < dsub; d++ {
			sum += v[d] * c[d]
		}
	}
	return sum
}

// AddCode adds alpha*decode(code) into dst.
func (q *Quantizer) AddCode(dst []float32, code []uint8, alpha float32) {
	for m := 0; m < q.nsubq; m++ {
		dsub := q.subDim(m)
		c := q.centroidSlice(m, code[m])[:dsub]
		d := dst[m*q.cfg.Dsub : m*q.cfg.Dsub+dsub]
		for k := 0; k < dsub; k++ {
			d[k] += alpha * c[k]
		}
	}
}

// NumSubq returns the number of sub-vectors.
func (q *Quantizer) NumSubq() int { return q.nsubq }

// Save/Load persist the codebook (spec §4.7's quantized-matrix branch).
func (q *Quantizer) Save(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, int32(q.cfg.Dim)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, int32(q.cfg.Dsub)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, int32(q.nsubq)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, int32(q.lastdsub)); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, q.centroids)
}

func Load(r io.Reader) (*Quantizer, error) {
	var dim, dsub, nsubq, lastdsub int32
	for _, p := range []*int32{&dim, &dsub, &nsubq, &lastdsub} {
		if err := binary.Read(r, binary.LittleEndian, p); err != nil {
			return nil, err
		}
	}
	q := &Quantizer{
		cfg:      Config{Dim: int(dim), Dsub: int(dsub)},
		nsubq:    int(nsubq),
		lastdsub: int(lastdsub),
		rng:      rand.New(rand.NewSource(seed)),
	}
	q.centroids = make([]float32, int(nsubq)*Ksub*int(dsub))
	if err := binary.Read(r, binary.LittleEndian, q.centroids); err != nil {
		return nil, err
	}
	return q, nil
}
