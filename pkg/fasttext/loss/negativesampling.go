package loss

import (
	"math"
	"math/rand"

	"github.com/cognicore/fasttext/pkg/fasttext/matrix"
)

// negativeTableSize is the size of the precomputed unigram-sampling
// table negatives are drawn from (spec §4.3 "Negative sampling").
const negativeTableSize = 10000000

// NegativeSamplingLoss trains one positive example against a handful of
// negatives drawn from a unigram^0.5 table, the original implementation's
// skip-gram/cbow default (spec §4.3).
type NegativeSamplingLoss struct {
	wo        *matrix.Dense
	neg       int
	negatives []int32
	ptr       int
}

// NewNegativeSamplingLoss builds the negative table from targetCounts
// (parallel to wo's rows), each entry's weight proportional to
// count^0.5, matching the original's initTableNegatives.
func NewNegativeSamplingLoss(wo *matrix.Dense, neg int, targetCounts []int64, rng *rand.Rand) *NegativeSamplingLoss {
	l := &NegativeSamplingLoss{wo: wo, neg: neg}
	l.initTable(targetCounts, rng)
	return l
}

func (l *NegativeSamplingLoss) initTable(counts []int64, rng *rand.Rand) {
	var z float64
	weights := make([]float64, len(counts))
	for i, c := range counts {
		w := math.Pow(float64(c), 0.5)
		weights[i] = w
		z += w
	}
	for i, w := range weights {
		n := int(w * float64(negativeTableSize) / z)
		for j := 0; j < n; j++ {
			l.negatives = append(l.negatives, int32(i))
		}
	}
	if len(l.negatives) == 0 {
		for i := range counts {
			l.negatives = append(l.negatives, int32(i))
		}
	}
	rng.Shuffle(len(l.negatives), func(i, j int) {
		l.negatives[i], l.negatives[j] = l.negatives[j], l.negatives[i]
	})
}

func (l *NegativeSamplingLoss) getNegative(target int32, rng *rand.Rand) int32 {
	for {
		n := l.negatives[l.ptr]
		l.ptr = (l.ptr + 1) % len(l.negatives)
		if n != target {
			return n
		}
	}
}

func (l *NegativeSamplingLoss) Forward(hidden []float32, targets []int32, targetIndex int, lr float32, grad []float32, rng *rand.Rand) (float32, error) {
	target := targets[targetIndex]
	var loss float32
	loss += binaryLogistic(l.wo, target, true, lr, hidden, grad)
	for i := 0; i < l.neg; i++ {
		neg := l.getNegative(target, rng)
		loss += binaryLogistic(l.wo, neg, false, lr, hidden, grad)
	}
	return loss, nil
}

func (l *NegativeSamplingLoss) Predict(hidden []float32, threshold float32, h *Heap, wo matrix.Matrix) error {
	return linearScanPredict(wo, hidden, threshold, h)
}

// linearScanPredict scores every output row as an independent sigmoid
// probability and offers it to h — the fallback "predict" behavior NS
// shares with the original's base Loss class, since NS itself has no
// normalized probability distribution to exploit.
func linearScanPredict(wo matrix.Matrix, hidden []float32, threshold float32, h *Heap) error {
	logThreshold := safeLog(threshold)
	for i := 0; i < wo.Rows(); i++ {
		score := sigmoid(wo.DotRow(hidden, i))
		lp := safeLog(score)
		if lp >= logThreshold {
			h.Push(int32(i), lp)
		}
	}
	return nil
}
