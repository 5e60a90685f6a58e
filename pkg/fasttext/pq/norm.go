package pq

// NormQuantizer is a 1-D product quantizer over per-row L2 norms (spec
// §3's qnorm matrix): a Quantizer with Dim=Dsub=1, reusing the same
// codebook machinery instead of a bespoke scalar quantizer.
type NormQuantizer struct {
	q *Quantizer
}

// NewNormQuantizer creates an untrained 1-D quantizer.
func NewNormQuantizer() *NormQuantizer {
	return &NormQuantizer{q: New(Config{Dim: 1, Dsub: 1})}
}

// Train trains on n scalar norms.
func (n *NormQuantizer) Train(norms []float32) {
	n.q.Train(len(norms), norms)
}

// EncodeNorm returns the centroid code for a single norm value.
func (n *NormQuantizer) EncodeNorm(norm float32) uint8 {
	return n.q.EncodeRow([]float32{norm})[0]
}

// DecodeNorm returns the centroid value for a code.
func (n *NormQuantizer) DecodeNorm(code uint8) float32 {
	return n.q.centroidSlice(0, code)[0]
}

// Underlying exposes the wrapped Quantizer for Save/Load reuse.
func (n *NormQuantizer) Underlying() *Quantizer { return n.q }

// WrapNormQuantizer adapts an already-loaded Quantizer (Dim=Dsub=1) back
// into a NormQuantizer.
func WrapNormQuantizer(q *Quantizer) *NormQuantizer { return &NormQuantizer{q: q} }
