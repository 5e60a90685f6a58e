package loss

import (
	"math"
	"math/rand"
	"testing"

	"github.com/cognicore/fasttext/pkg/fasttext/matrix"
)

func newHidden(dim int, seed int64) []float32 {
	rng := rand.New(rand.NewSource(seed))
	h := make([]float32, dim)
	for i := range h {
		h[i] = rng.Float32()
	}
	return h
}

func TestSigmoidSaturates(t *testing.T) {
	if got := sigmoid(-100); got != 0 {
		t.Errorf("sigmoid(-100) = %v, want 0", got)
	}
	if got := sigmoid(100); got != 1 {
		t.Errorf("sigmoid(100) = %v, want 1", got)
	}
	if got := sigmoid(0); got < 0.45 || got > 0.55 {
		t.Errorf("sigmoid(0) = %v, want ~0.5", got)
	}
}

func TestSafeLogNonPositiveIsNegInf(t *testing.T) {
	if got := safeLog(0); !math.IsInf(float64(got), -1) {
		t.Errorf("safeLog(0) = %v, want -Inf", got)
	}
	if got := safeLog(-1); !math.IsInf(float64(got), -1) {
		t.Errorf("safeLog(-1) = %v, want -Inf", got)
	}
}

func TestSoftmaxForwardPositiveLoss(t *testing.T) {
	wo := matrix.NewDense(4, 3)
	wo.InitRowRange(0, 4, rand.New(rand.NewSource(1)))
	l := NewSoftmaxLoss(wo)

	hidden := newHidden(3, 2)
	grad := make([]float32, 3)
	lossVal, err := l.Forward(hidden, []int32{2}, 0, 0.1, grad, nil)
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if lossVal <= 0 {
		t.Errorf("loss = %v, want > 0", lossVal)
	}
}

func TestSoftmaxPredictRespectsThreshold(t *testing.T) {
	wo := matrix.NewDense(5, 3)
	wo.InitRowRange(0, 5, rand.New(rand.NewSource(1)))
	l := NewSoftmaxLoss(wo)

	hidden := newHidden(3, 3)
	h := NewHeap(5)
	if err := l.Predict(hidden, float32(math.Inf(-1)), h, wo); err != nil {
		t.Fatalf("Predict: %v", err)
	}
	preds := h.Results()
	if len(preds) != 5 {
		t.Fatalf("len(preds) = %d, want 5 with an unbounded threshold", len(preds))
	}
	var sum float64
	for _, p := range preds {
		sum += math.Exp(float64(p.LogProb))
	}
	if sum < 0.99 || sum > 1.01 {
		t.Errorf("softmax probabilities sum to %v, want ~1", sum)
	}
}

func TestNegativeSamplingForwardMovesWeights(t *testing.T) {
	wo := matrix.NewDense(10, 4)
	wo.InitRowRange(0, 10, rand.New(rand.NewSource(1)))
	counts := make([]int64, 10)
	for i := range counts {
		counts[i] = int64(i + 1)
	}
	rng := rand.New(rand.NewSource(42))
	l := NewNegativeSamplingLoss(wo, 3, counts, rng)

	before := append([]float32(nil), wo.Row(0)...)
	grad := make([]float32, 4)
	hidden := newHidden(4, 5)
	if _, err := l.Forward(hidden, []int32{0}, 0, 0.5, grad, rng); err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if equalF32(before, wo.Row(0)) {
		t.Error("Forward on target 0 left row 0 unchanged")
	}
}

func TestNegativeSamplingNeverSamplesTarget(t *testing.T) {
	wo := matrix.NewDense(3, 2)
	counts := []int64{5, 5, 5}
	rng := rand.New(rand.NewSource(1))
	l := NewNegativeSamplingLoss(wo, 1, counts, rng)
	for i := 0; i < 50; i++ {
		if got := l.getNegative(1, rng); got == 1 {
			t.Fatalf("getNegative returned the target id")
		}
	}
}

func TestHierarchicalSoftmaxBuildsValidPaths(t *testing.T) {
	counts := []int64{10, 5, 3, 1}
	wo := matrix.NewDense(int(2*len(counts)-1), 4)
	wo.InitRowRange(0, wo.Rows(), rand.New(rand.NewSource(1)))
	l := NewHierarchicalSoftmaxLoss(wo, counts)

	for i := range counts {
		if len(l.paths[i]) == 0 {
			t.Errorf("label %d has an empty root-to-leaf path", i)
		}
		if len(l.paths[i]) != len(l.codes[i]) {
			t.Errorf("label %d: path/code length mismatch", i)
		}
	}
}

func TestHierarchicalSoftmaxForwardReturnsPositiveLoss(t *testing.T) {
	counts := []int64{10, 5, 3, 1}
	wo := matrix.NewDense(int(2*len(counts)-1), 4)
	wo.InitRowRange(0, wo.Rows(), rand.New(rand.NewSource(1)))
	l := NewHierarchicalSoftmaxLoss(wo, counts)

	grad := make([]float32, 4)
	hidden := newHidden(4, 9)
	lossVal, err := l.Forward(hidden, []int32{0}, 0, 0.1, grad, nil)
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if lossVal < 0 {
		t.Errorf("loss = %v, want >= 0", lossVal)
	}
}

func TestOneVsAllForwardAveragesOverRows(t *testing.T) {
	wo := matrix.NewDense(5, 3)
	wo.InitRowRange(0, 5, rand.New(rand.NewSource(1)))
	l := NewOneVsAllLoss(wo)

	grad := make([]float32, 3)
	hidden := newHidden(3, 1)
	lossVal, err := l.Forward(hidden, []int32{1, 3}, 0, 0.1, grad, nil)
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if lossVal <= 0 {
		t.Errorf("loss = %v, want > 0", lossVal)
	}
}

func TestOneVsAllPredictScansAllRows(t *testing.T) {
	wo := matrix.NewDense(4, 3)
	wo.InitRowRange(0, 4, rand.New(rand.NewSource(1)))
	l := NewOneVsAllLoss(wo)

	h := NewHeap(10)
	hidden := newHidden(3, 2)
	if err := l.Predict(hidden, float32(math.Inf(-1)), h, wo); err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if len(h.Results()) != 4 {
		t.Errorf("len(Results) = %d, want 4 (one per output row)", len(h.Results()))
	}
}

func equalF32(a, b []float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
