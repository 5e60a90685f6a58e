// Package model implements the per-thread training/inference state and
// the single compute-hidden / update / predict routine every training
// mode (supervised, cbow, skipgram) drives through (spec §4.3).
//
// Model itself is stateless except for the two shared parameter
// matrices and the loss it was built with; the State it operates on
// carries everything that must not be shared across goroutines. This
// mirrors pkg/korel/signals/prediction.go's shape: a stateless provider
// interface plus a small per-call scratch value, rather than the
// original implementation's Model object owning mutable hidden/output
// buffers directly.
package model

import (
	"fmt"
	"math/rand"

	"github.com/cognicore/fasttext/pkg/fasttext/internalerr"
	"github.com/cognicore/fasttext/pkg/fasttext/loss"
	"github.com/cognicore/fasttext/pkg/fasttext/matrix"
	"github.com/cognicore/fasttext/pkg/fasttext/vecmath"
)

// State is the per-thread scratch the training loop and inference
// queries mutate: hidden and gradient buffers sized to dim (NewState
// leaves Output nil; the losses keep their own output scratch), a
// running loss sum and example counter, and an RNG seeded
// independently per thread (spec §3 "Per-thread State").
type State struct {
	Hidden []float32
	Output []float32
	Grad   []float32

	Rng *rand.Rand

	lossSum float64
	nexamples int64
}

// NewState allocates a State for the given hidden dimension, with rng
// seeded baseSeed+threadID so that thread=1 runs are bit-reproducible
// (spec §3, §8).
func NewState(dim int, baseSeed, threadID int) *State {
	return &State{
		Hidden: make([]float32, dim),
		Grad:   make([]float32, dim),
		Rng:    rand.New(rand.NewSource(int64(baseSeed + threadID))),
	}
}

// AddLoss records one example's loss contribution.
func (s *State) AddLoss(l float32) {
	s.lossSum += float64(l)
	s.nexamples++
}

// AvgLoss returns the running mean loss, or 0 with no examples yet.
func (s *State) AvgLoss() float64 {
	if s.nexamples == 0 {
		return 0
	}
	return s.lossSum / float64(s.nexamples)
}

func (s *State) NExamples() int64 { return s.nexamples }

// Model computes the hidden representation and dispatches to a Loss for
// the forward/backward pass and for prediction (spec §4.3). wi accepts
// the narrow matrix.Matrix interface so the same Model type serves both
// training (a mutable Dense) and post-quantization prediction (a frozen
// Quantized) — Update asserts Dense itself since only training writes
// through wi.
type Model struct {
	wi   matrix.Matrix
	wo   matrix.Matrix
	loss loss.Loss

	// normalizeGradient is true iff the model is supervised: the
	// accumulated input gradient is rescaled by 1/|input| before being
	// added into every input row (spec §4.3 "update").
	normalizeGradient bool
}

// New builds a Model over the shared input/output matrices and loss.
func New(wi, wo matrix.Matrix, l loss.Loss, normalizeGradient bool) *Model {
	return &Model{wi: wi, wo: wo, loss: l, normalizeGradient: normalizeGradient}
}

// ComputeHidden averages wi's rows for the given input ids into
// state.Hidden. An empty input leaves Hidden untouched (spec §4.3,
// §8 boundary: "computeHidden on an empty input set is a no-op").
func (m *Model) ComputeHidden(input []int32, state *State) {
	if len(input) == 0 {
		return
	}
	vecmath.Zero(state.Hidden)
	for _, id := range input {
		m.wi.AddRowToVector(state.Hidden, int(id), 1)
	}
	vecmath.Scale(state.Hidden, 1/float32(len(input)))
}

// Update runs one SGD step: compute hidden, zero the gradient
// accumulator, call the loss's forward pass with backprop enabled, then
// fold the (possibly normalized) gradient back into every input row
// (spec §4.3 "update"). Returns without touching wo if input is empty.
func (m *Model) Update(input, targets []int32, targetIndex int, lr float32, state *State) error {
	if len(input) == 0 {
		return nil
	}
	wd, ok := m.wi.(*matrix.Dense)
	if !ok {
		return fmt.Errorf("model: %w: Update requires a mutable input matrix", internalerr.ErrInvalidArgument)
	}
	m.ComputeHidden(input, state)
	if vecmath.HasNaN(state.Hidden) {
		return internalerr.ErrNaNEncountered
	}
	vecmath.Zero(state.Grad)

	l, err := m.loss.Forward(state.Hidden, targets, targetIndex, lr, state.Grad, state.Rng)
	if err != nil {
		return err
	}
	if vecmath.HasNaN(state.Grad) {
		return internalerr.ErrNaNEncountered
	}
	state.AddLoss(l)

	if m.normalizeGradient {
		vecmath.Scale(state.Grad, 1/float32(len(input)))
	}
	for _, id := range input {
		row := wd.Row(int(id))
		vecmath.AddScaled(row, state.Grad, 1)
	}
	return nil
}

// Predict delegates to the loss's bounded top-k heap collector,
// computing hidden first (spec §4.3 "predict").
func (m *Model) Predict(input []int32, k int, threshold float32, state *State) ([]loss.Prediction, error) {
	if len(input) == 0 {
		return nil, nil
	}
	m.ComputeHidden(input, state)
	if vecmath.HasNaN(state.Hidden) {
		return nil, internalerr.ErrNaNEncountered
	}
	h := loss.NewHeap(k)
	if err := m.loss.Predict(state.Hidden, threshold, h, m.wo); err != nil {
		return nil, err
	}
	return h.Results(), nil
}
