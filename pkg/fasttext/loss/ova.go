package loss

import (
	"math/rand"

	"github.com/cognicore/fasttext/pkg/fasttext/matrix"
)

// OneVsAllLoss trains every output row as an independent binary
// classifier: label positive iff its row index is a member of the
// example's full target set (spec §4.3 "One-vs-all"). The driver passes
// targetIndex = -1 for OVA (spec §4.4), meaning "all of targets are
// positive, train every row" rather than "train against targets[i]".
type OneVsAllLoss struct {
	wo *matrix.Dense
}

func NewOneVsAllLoss(wo *matrix.Dense) *OneVsAllLoss {
	return &OneVsAllLoss{wo: wo}
}

func (l *OneVsAllLoss) Forward(hidden []float32, targets []int32, targetIndex int, lr float32, grad []float32, rng *rand.Rand) (float32, error) {
	positive := make(map[int32]bool, len(targets))
	for _, t := range targets {
		positive[t] = true
	}
	var loss float32
	for i := 0; i < l.wo.Rows(); i++ {
		loss += binaryLogistic(l.wo, int32(i), positive[int32(i)], lr, hidden, grad)
	}
	return loss / float32(l.wo.Rows()), nil
}

// Predict emits every row whose score clears threshold — the source's
// documented OVA behavior (spec §9 Open Questions: "the source emits all
// rows above threshold", preserved exactly here rather than restricted
// to rows the training example marked positive).
func (l *OneVsAllLoss) Predict(hidden []float32, threshold float32, h *Heap, wo matrix.Matrix) error {
	return linearScanPredict(wo, hidden, threshold, h)
}
