package loss

import (
	"math"
	"math/rand"

	"github.com/cognicore/fasttext/pkg/fasttext/matrix"
	"github.com/cognicore/fasttext/pkg/fasttext/vecmath"
)

// SoftmaxLoss is the full normalized softmax over every output row, the
// original implementation's default supervised loss before
// fastText-style negative sampling became the unsupervised default
// (spec §4.3 "Softmax").
type SoftmaxLoss struct {
	wo     *matrix.Dense
	output []float32 // scratch, len == wo.Rows(); reused across calls on one goroutine's State
}

// NewSoftmaxLoss wraps wo. Each training thread must use its own
// SoftmaxLoss instance (the output scratch buffer is not safe to share).
func NewSoftmaxLoss(wo *matrix.Dense) *SoftmaxLoss {
	return &SoftmaxLoss{wo: wo, output: make([]float32, wo.Rows())}
}

// computeOutput fills l.output with the numerically-stable softmax of
// wo*hidden (subtracting the per-call max before exponentiating). wo
// defaults to the training matrix but may be a frozen Quantized matrix
// during post-quantization prediction.
func (l *SoftmaxLoss) computeOutput(hidden []float32, wo matrix.Matrix) {
	max := float32(0)
	for i := 0; i < wo.Rows(); i++ {
		z := wo.DotRow(hidden, i)
		l.output[i] = z
		if i == 0 || z > max {
			max = z
		}
	}
	var sum float32
	for i := range l.output {
		l.output[i] = float32(math.Exp(float64(l.output[i] - max)))
		sum += l.output[i]
	}
	if sum > 0 {
		vecmath.Scale(l.output, 1/sum)
	}
}

func (l *SoftmaxLoss) Forward(hidden []float32, targets []int32, targetIndex int, lr float32, grad []float32, rng *rand.Rand) (float32, error) {
	target := targets[targetIndex]
	l.computeOutput(hidden, l.wo)
	for i := 0; i < l.wo.Rows(); i++ {
		label := boolToF32(int32(i) == target)
		alpha := lr * (label - l.output[i])
		vecmath.AddScaled(grad, l.wo.Row(i), alpha)
		vecmath.AddScaled(l.wo.Row(i), hidden, alpha)
	}
	return -safeLog(l.output[target]), nil
}

func (l *SoftmaxLoss) Predict(hidden []float32, threshold float32, h *Heap, wo matrix.Matrix) error {
	l.computeOutput(hidden, wo)
	logThreshold := safeLog(threshold)
	for i, p := range l.output {
		lp := safeLog(p)
		if lp >= logThreshold {
			h.Push(int32(i), lp)
		}
	}
	return nil
}
