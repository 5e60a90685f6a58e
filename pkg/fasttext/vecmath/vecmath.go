// Package vecmath provides the dense vector primitives the rest of the
// engine treats as a black box: dot product and "add a scaled row". Any
// SIMD-accelerated implementation satisfying the same signatures is a
// drop-in replacement (spec §1); this one is a plain Go loop, the same
// shape as janpfeifer-go-highway's hwy/contrib/dot.DotBatch, without the
// architecture-specific assembly backing it — see DESIGN.md for why this
// component stays on the standard library.
package vecmath

import "math"

// Dot returns the dot product of a and b. Panics if the lengths differ,
// mirroring a programmer error rather than a runtime condition.
func Dot(a, b []float32) float32 {
	if len(a) != len(b) {
		panic("vecmath: Dot length mismatch")
	}
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// AddScaled adds alpha*src into dst in place: dst += alpha * src.
func AddScaled(dst, src []float32, alpha float32) {
	if len(dst) != len(src) {
		panic("vecmath: AddScaled length mismatch")
	}
	for i := range src {
		dst[i] += alpha * src[i]
	}
}

// Zero resets v to all zeros.
func Zero(v []float32) {
	for i := range v {
		v[i] = 0
	}
}

// Scale multiplies v in place by alpha.
func Scale(v []float32, alpha float32) {
	for i := range v {
		v[i] *= alpha
	}
}

// L2Norm returns the Euclidean norm of v.
func L2Norm(v []float32) float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return float32(math.Sqrt(sum))
}

// CosineSimilarity returns cos(angle) between a and b, or 0 if either has
// zero norm.
func CosineSimilarity(a, b []float32) float32 {
	na, nb := L2Norm(a), L2Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return Dot(a, b) / (na * nb)
}

// HasNaN reports whether any element of v is NaN. Every matrix dot in the
// engine must check this and surface internalerr.ErrNaNEncountered (spec
// §4.3, §7).
func HasNaN(v []float32) bool {
	for _, x := range v {
		if x != x { // NaN != NaN
			return true
		}
	}
	return false
}
