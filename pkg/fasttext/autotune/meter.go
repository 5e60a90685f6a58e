package autotune

import "github.com/cognicore/fasttext/pkg/fasttext/args"

// Meter accumulates per-example prediction outcomes against a
// validation set and reduces them to the metric an autotune run
// optimizes for (spec §4.5 "Metric"). It has no notion of a specific
// label set: callers feed it one (predicted-labels, gold-labels) pair
// at a time via Add.
type Meter struct {
	metric     args.MetricName
	focusLabel string

	examples int64
	// Global counts, used by the unlabeled f1/precision/recall metrics.
	truePos, falsePos, falseNeg int64
	// Per-label counts, used by the *Label metric variants.
	labelTruePos, labelFalsePos, labelFalseNeg map[string]int64
}

// NewMeter constructs a Meter configured for the metric an autotune run
// is maximizing.
func NewMeter(metric args.MetricName, focusLabel string) *Meter {
	return &Meter{
		metric:        metric,
		focusLabel:    focusLabel,
		labelTruePos:  make(map[string]int64),
		labelFalsePos: make(map[string]int64),
		labelFalseNeg: make(map[string]int64),
	}
}

// Add records one example's predicted label set against its gold label
// set (both already deduplicated by the caller).
func (m *Meter) Add(predicted, gold []string) {
	m.examples++
	goldSet := make(map[string]bool, len(gold))
	for _, g := range gold {
		goldSet[g] = true
	}
	predSet := make(map[string]bool, len(predicted))
	for _, p := range predicted {
		predSet[p] = true
	}

	for _, p := range predicted {
		if goldSet[p] {
			m.truePos++
			m.labelTruePos[p]++
		} else {
			m.falsePos++
			m.labelFalsePos[p]++
		}
	}
	for _, g := range gold {
		if !predSet[g] {
			m.falseNeg++
			m.labelFalseNeg[g]++
		}
	}
}

// Precision returns the micro-averaged precision over every example
// seen so far.
func (m *Meter) Precision() float64 {
	return ratio(m.truePos, m.truePos+m.falsePos)
}

// Recall returns the micro-averaged recall over every example seen so
// far.
func (m *Meter) Recall() float64 {
	return ratio(m.truePos, m.truePos+m.falseNeg)
}

// F1 returns the harmonic mean of Precision and Recall, 0 if both are 0.
func (m *Meter) F1() float64 {
	p, r := m.Precision(), m.Recall()
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

// LabelF1 returns the F1 score restricted to a single label, the
// *Label metric variants' target.
func (m *Meter) LabelF1(label string) float64 {
	tp, fp, fn := m.labelTruePos[label], m.labelFalsePos[label], m.labelFalseNeg[label]
	p := ratio(tp, tp+fp)
	r := ratio(tp, tp+fn)
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

// Score reduces the accumulated counts to the scalar an autotune
// Sampler.Tell call compares trials by, per the configured
// args.MetricName (spec §4.5 "Metric").
func (m *Meter) Score() float64 {
	switch m.metric {
	case args.MetricF1ScoreLabel:
		return m.LabelF1(m.focusLabel)
	case args.MetricPrecisionAtRecall, args.MetricPrecisionAtRecallLabel:
		return m.Precision()
	case args.MetricRecallAtPrecision, args.MetricRecallAtPrecisionLabel:
		return m.Recall()
	default: // MetricF1Score
		return m.F1()
	}
}

func ratio(num, denom int64) float64 {
	if denom == 0 {
		return 0
	}
	return float64(num) / float64(denom)
}
