package autotune

import (
	"testing"

	"github.com/cognicore/fasttext/pkg/fasttext/args"
)

func TestSamplerFirstAskReturnsSeedVerbatim(t *testing.T) {
	seed := args.DefaultSupervised()
	seed.Epoch = 17
	s := NewSampler(seed, Pins{}, 1)

	got := s.Ask(0)
	if got != seed {
		t.Errorf("first Ask = %+v, want seed verbatim %+v", got, seed)
	}
}

func TestSamplerSubsequentAsksPerturb(t *testing.T) {
	seed := args.DefaultSupervised()
	s := NewSampler(seed, Pins{}, 1)
	s.Ask(0) // consume the verbatim first ask

	a := s.Ask(0.5)
	if a.Loss != args.LossSoftmax {
		t.Errorf("Loss = %v, want pinned softmax", a.Loss)
	}
	if a.Dim < 1 || a.Dim > 1000 {
		t.Errorf("Dim = %d out of clamp range", a.Dim)
	}
	if a.LR < 0.01 || a.LR > 5.0 {
		t.Errorf("LR = %v out of clamp range", a.LR)
	}
	if a.Epoch < 1 || a.Epoch > 100 {
		t.Errorf("Epoch = %d out of clamp range", a.Epoch)
	}
}

func TestSamplerPinnedFieldsNeverPerturb(t *testing.T) {
	seed := args.DefaultSupervised()
	seed.Epoch = 9
	seed.Dim = 42
	pins := Pins{Epoch: true, Dim: true}
	s := NewSampler(seed, pins, 7)
	s.Ask(0)

	for i := 0; i < 20; i++ {
		a := s.Ask(0.4)
		if a.Epoch != 9 {
			t.Errorf("pinned Epoch perturbed to %d", a.Epoch)
		}
		if a.Dim != 42 {
			t.Errorf("pinned Dim perturbed to %d", a.Dim)
		}
	}
}

func TestSamplerBucketForcedZeroWithNoNgramsOrSubwords(t *testing.T) {
	seed := args.DefaultSupervised() // WordNgrams=1, Maxn=0 by default
	pins := Pins{WordNgrams: true, Minn: true}
	s := NewSampler(seed, pins, 3)
	s.Ask(0)

	for i := 0; i < 10; i++ {
		a := s.Ask(0.9)
		if a.Bucket != 0 {
			t.Errorf("Bucket = %d, want 0 when wordNgrams<=1 and maxn=0", a.Bucket)
		}
	}
}

func TestSamplerTellTracksBest(t *testing.T) {
	seed := args.DefaultSupervised()
	s := NewSampler(seed, Pins{}, 1)
	s.Ask(0)

	trial1 := s.Ask(0.3)
	s.Tell(trial1, 0.5)
	best, score := s.Best()
	if best != trial1 || score != 0.5 {
		t.Fatalf("Best = %+v/%v, want %+v/0.5", best, score, trial1)
	}

	trial2 := s.Ask(0.3)
	s.Tell(trial2, 0.2) // worse, should not replace best
	best, score = s.Best()
	if best != trial1 || score != 0.5 {
		t.Errorf("worse trial replaced best: %+v/%v", best, score)
	}

	trial3 := s.Ask(0.3)
	s.Tell(trial3, 0.9) // better, should replace
	best, score = s.Best()
	if best != trial3 || score != 0.9 {
		t.Errorf("better trial did not replace best: %+v/%v", best, score)
	}
}

func TestSigmaAtClampsAtEnds(t *testing.T) {
	if got := sigmaAt(0, 2.8, 2.5); got != 2.8 {
		t.Errorf("sigmaAt(0) = %v, want 2.8", got)
	}
	if got := sigmaAt(0.1, 2.8, 2.5); got != 2.8 {
		t.Errorf("sigmaAt(0.1) = %v, want 2.8 (pre-0.25 plateau)", got)
	}
	if got := sigmaAt(1, 2.8, 2.5); got != 2.5 {
		t.Errorf("sigmaAt(1) = %v, want 2.5", got)
	}
	if got := sigmaAt(0.5, 2.8, 2.5); got >= 2.8 || got <= 2.5 {
		t.Errorf("sigmaAt(0.5) = %v, want strictly between 2.5 and 2.8", got)
	}
}

func TestMinnIndexRoundTrip(t *testing.T) {
	for _, minn := range []int{0, 2, 3} {
		idx := minnToIndex(minn)
		if got := indexToMinn(idx); got != minn {
			t.Errorf("minnToIndex/indexToMinn(%d) round trip = %d", minn, got)
		}
	}
}

func TestDsubToExpClamped(t *testing.T) {
	if got := dsubToExp(0); got != 1 {
		t.Errorf("dsubToExp(0) = %d, want 1", got)
	}
	if got := dsubToExp(2); got != 1 {
		t.Errorf("dsubToExp(2) = %d, want 1", got)
	}
	if got := dsubToExp(4); got != 2 {
		t.Errorf("dsubToExp(4) = %d, want 2", got)
	}
	if got := dsubToExp(1 << 20); got != 4 {
		t.Errorf("dsubToExp(large) = %d, want clamped to 4", got)
	}
}
