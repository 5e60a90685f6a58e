package loss

import (
	"math/rand"

	"github.com/cognicore/fasttext/pkg/fasttext/matrix"
	"github.com/cognicore/fasttext/pkg/fasttext/vecmath"
)

// Loss is the narrow interface every output objective satisfies. It
// replaces the original implementation's Loss class hierarchy: instead
// of NegativeSamplingLoss/HierarchicalSoftmaxLoss/SoftmaxLoss/
// OneVsAllLoss sharing state through inheritance, each is a standalone
// type composing the shared binaryLogistic/table helpers (spec §4.3,
// §4.4).
type Loss interface {
	// Forward updates Wo in place (Hogwild: no locking) for the training
	// example whose full target set is targets and whose "this call's"
	// positive is targets[targetIndex], accumulating the corresponding
	// hidden-side gradient into grad (len == hidden dim) and returning
	// the scalar loss contribution.
	Forward(hidden []float32, targets []int32, targetIndex int, lr float32, grad []float32, rng *rand.Rand) (float32, error)

	// Predict appends up to h's capacity of (label, log-probability)
	// predictions for hidden, applying threshold as a minimum
	// probability to report (compared as log(threshold) against each
	// log-probability). wo is the matrix to score against —
	// the same Dense used in Forward during training, or a frozen
	// Quantized matrix after quantize.Quantize; Predict never writes
	// through it, so accepting the narrow Matrix interface here lets
	// post-quantization inference reuse the same loss without a second
	// implementation (spec §4.6, §3 "Quantized matrix").
	Predict(hidden []float32, threshold float32, h *Heap, wo matrix.Matrix) error
}

// binaryLogistic is the shared one-vs-rest update used by negative
// sampling and hierarchical softmax: push hidden through Wo's `target`
// row, compare against the sigmoid, and racily nudge both Wo's row and
// the caller's gradient accumulator (spec §4.3 "Binary logistic").
func binaryLogistic(wo *matrix.Dense, target int32, positive bool, lr float32, hidden, grad []float32) float32 {
	score := sigmoid(wo.DotRow(hidden, int(target)))
	alpha := lr * (boolToF32(positive) - score)
	vecmath.AddScaled(grad, wo.Row(int(target)), alpha)
	vecmath.AddScaled(wo.Row(int(target)), hidden, alpha)
	if positive {
		return -safeLog(score)
	}
	return -safeLog(1 - score)
}

func boolToF32(b bool) float32 {
	if b {
		return 1
	}
	return 0
}
