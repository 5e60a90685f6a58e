// Package autotune implements the bounded-time Gaussian-perturbation
// hyper-parameter search (spec §4.5): an ask/tell Sampler, a validation
// Meter (precision/recall/F1), a SQLite trial Ledger, and the
// size-constrained cutoff estimator. The σ(t) decay schedule reuses
// pkg/korel/signals.dampingCurve's smoothstep transition shape
// (SPEC_FULL.md §C). The package keeps no per-trial health record: it
// does not count trials that miss the size constraint and emits no
// warning about them.
package autotune

import (
	"math"
	"math/rand"

	"github.com/cognicore/fasttext/pkg/fasttext/args"
)

// Pins marks which sampled hyper-parameters the operator manually
// overrode (spec §4.5: "non-manually-overridden hyper-parameter"); a
// pinned field is never perturbed away from the seed value.
type Pins struct {
	Epoch, LR, Dim, WordNgrams, Dsub, Minn, Bucket bool
}

// Sampler runs the ask/tell search loop described in spec §4.5's table:
// the first Ask returns the seed verbatim; every subsequent Ask
// perturbs the best-so-far arguments, with a σ(t) that decays between a
// start and end value as elapsed/budget crosses 0.25→0.75.
type Sampler struct {
	seed   args.Args
	best   args.Args
	bestOK bool
	score  float64

	// minnIdx/dsubExp hold the discrete encodings the Args struct can't
	// represent directly: minn's 3-way choice {0,2,3} as an index
	// 0..2, and dsub as its base-2 exponent (spec §4.5 table).
	minnIdx int
	dsubExp int

	rng    *rand.Rand
	pins   Pins
	trial  int
}

// NewSampler seeds the search at seed and draws perturbations from an
// RNG seeded by seedValue (independent of the training RNG, so autotune
// runs are reproducible given the same seed).
func NewSampler(seed args.Args, pins Pins, seedValue int64) *Sampler {
	return &Sampler{
		seed:    seed,
		best:    seed,
		minnIdx: minnToIndex(seed.Minn),
		dsubExp: dsubToExp(seed.Dsub),
		rng:     rand.New(rand.NewSource(seedValue)),
		pins:    pins,
	}
}

// Ask returns the next trial's Args given elapsed/budget in [0,1]
// (clamped). The first call always returns the seed args unperturbed
// (spec §4.5 "if first trial -> return the seed arguments verbatim").
func (s *Sampler) Ask(progress float64) args.Args {
	s.trial++
	if s.trial == 1 {
		return s.seed
	}
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}

	a := s.best
	if !s.pins.Epoch {
		a.Epoch = clampInt(mulSample(s.rng, s.best.Epoch, sigmaAt(progress, 2.8, 2.5)), 1, 100)
	}
	if !s.pins.LR {
		a.LR = clampFloat(mulSampleF(s.rng, s.best.LR, sigmaAt(progress, 1.9, 1.0)), 0.01, 5.0)
	}
	if !s.pins.Dim {
		a.Dim = clampInt(mulSample(s.rng, s.best.Dim, sigmaAt(progress, 1.4, 0.3)), 1, 1000)
	}
	if !s.pins.WordNgrams {
		a.WordNgrams = clampInt(addSample(s.rng, s.best.WordNgrams, sigmaAt(progress, 4.3, 2.4)), 1, 5)
	}
	dsubExp := s.dsubExp
	if !s.pins.Dsub {
		dsubExp = clampInt(addSample(s.rng, s.dsubExp, sigmaAt(progress, 2.0, 1.0)), 1, 4)
	}
	a.Dsub = 1 << uint(dsubExp)

	minnIdx := s.minnIdx
	if !s.pins.Minn {
		minnIdx = clampInt(addSample(s.rng, s.minnIdx, sigmaAt(progress, 4.0, 1.4)), 0, 2)
	}
	a.Minn = indexToMinn(minnIdx)
	if a.Minn > 0 {
		a.Maxn = a.Minn + 3
	} else {
		a.Maxn = 0
	}

	if !s.pins.Bucket {
		a.Bucket = clampInt(mulSample(s.rng, s.best.Bucket, sigmaAt(progress, 2.0, 1.5)), 10000, 10000000)
	}
	// spec §4.5: "If wordNgrams <= 1 and maxn = 0, force bucket = 0".
	if a.WordNgrams <= 1 && a.Maxn == 0 {
		a.Bucket = 0
	}

	// Loss is pinned to softmax for the whole autotune run (spec §4.5).
	a.Loss = args.LossSoftmax

	s.dsubExp, s.minnIdx = dsubExp, minnIdx
	return a
}

// Tell records the outcome of the trial just asked for, updating the
// best-so-far state if score improves on it.
func (s *Sampler) Tell(trial args.Args, score float64) {
	if !s.bestOK || score > s.score {
		s.best = trial
		s.score = score
		s.bestOK = true
		s.minnIdx = minnToIndex(trial.Minn)
		s.dsubExp = dsubToExp(trial.Dsub)
	}
}

// Best returns the best arguments and score seen so far.
func (s *Sampler) Best() (args.Args, float64) { return s.best, s.score }

// sigmaAt implements the smoothstep decay between start (progress<=0.25)
// and end (progress>=0.75), the same Hermite-interpolation shape as
// pkg/korel/signals.dampingCurve (spec §4.5 "σ(t) decays... as t crosses
// 0.25→0.75").
func sigmaAt(t, start, end float64) float64 {
	if t <= 0.25 {
		return start
	}
	if t >= 0.75 {
		return end
	}
	frac := (t - 0.25) / 0.5
	smooth := frac * frac * (3 - 2*frac)
	return start + smooth*(end-start)
}

func mulSample(rng *rand.Rand, base int, sigma float64) int {
	factor := math.Pow(2, rng.NormFloat64()*sigma)
	return int(math.Round(float64(base) * factor))
}

func mulSampleF(rng *rand.Rand, base float64, sigma float64) float64 {
	factor := math.Pow(2, rng.NormFloat64()*sigma)
	return base * factor
}

func addSample(rng *rand.Rand, base int, sigma float64) int {
	return int(math.Round(float64(base) + rng.NormFloat64()*sigma))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minnToIndex(minn int) int {
	switch minn {
	case 2:
		return 1
	case 3:
		return 2
	default:
		return 0
	}
}

func indexToMinn(idx int) int {
	switch idx {
	case 1:
		return 2
	case 2:
		return 3
	default:
		return 0
	}
}

func dsubToExp(dsub int) int {
	if dsub <= 0 {
		return 1
	}
	e := int(math.Round(math.Log2(float64(dsub))))
	return clampInt(e, 1, 4)
}
