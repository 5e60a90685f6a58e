// Package args holds the Args value threaded through every constructor in
// the engine, replacing the original implementation's global mutable
// singleton with an explicit, copyable configuration struct.
package args

import "fmt"

// ModelName selects the training objective.
type ModelName int32

const (
	ModelCBOW ModelName = iota + 1
	ModelSkipgram
	ModelSupervised
)

func (m ModelName) String() string {
	switch m {
	case ModelCBOW:
		return "cbow"
	case ModelSkipgram:
		return "skipgram"
	case ModelSupervised:
		return "supervised"
	default:
		return "unknown"
	}
}

// LossName selects the output loss.
type LossName int32

const (
	LossHS LossName = iota + 1
	LossNS
	LossSoftmax
	LossOVA
)

func (l LossName) String() string {
	switch l {
	case LossHS:
		return "hs"
	case LossNS:
		return "ns"
	case LossSoftmax:
		return "softmax"
	case LossOVA:
		return "ova"
	default:
		return "unknown"
	}
}

// MetricName selects the autotune objective metric.
type MetricName int32

const (
	MetricF1Score MetricName = iota + 1
	MetricF1ScoreLabel
	MetricPrecisionAtRecall
	MetricPrecisionAtRecallLabel
	MetricRecallAtPrecision
	MetricRecallAtPrecisionLabel
)

// Args mirrors the original implementation's Args class field-for-field
// (spec §4.7, §6). It is a plain value: build one, pass it by value or
// pointer into constructors, never reach for package-level state.
type Args struct {
	Input  string
	Output string

	LR           float64
	LRUpdateRate int
	Dim          int
	WS           int
	Epoch        int
	MinCount     int
	MinCountLabel int
	Neg          int
	WordNgrams   int
	Loss         LossName
	Model        ModelName
	Bucket       int
	Minn         int
	Maxn         int
	Thread       int
	T            float64
	Label        string
	Verbose      int

	PretrainedVectors string
	SaveOutput        bool
	Seed              int

	// Quantization.
	Qout    bool
	Retrain bool
	Qnorm   bool
	Cutoff  int
	Dsub    int

	// Autotune.
	AutotuneValidationFile string
	AutotuneMetric         MetricName
	AutotuneMetricLabel    string
	AutotunePredictions    int
	AutotuneDuration       int
	AutotuneModelSize      int64
}

// Default returns the original implementation's defaults.
func Default() Args {
	return Args{
		LR:           0.05,
		LRUpdateRate: 100,
		Dim:          100,
		WS:           5,
		Epoch:        5,
		MinCount:     5,
		MinCountLabel: 0,
		Neg:          5,
		WordNgrams:   1,
		Loss:         LossNS,
		Model:        ModelSkipgram,
		Bucket:       2000000,
		Minn:         3,
		Maxn:         6,
		Thread:       12,
		T:            1e-4,
		Label:        "__label__",
		Verbose:      2,
		Seed:         0,
		Dsub:         2,
		AutotuneDuration: 60 * 5,
		AutotuneMetric:   MetricF1Score,
		AutotunePredictions: 1,
	}
}

// DefaultSupervised returns the defaults used by `fasttext supervised`,
// where subwords are off and the loss is softmax.
func DefaultSupervised() Args {
	a := Default()
	a.Model = ModelSupervised
	a.Loss = LossSoftmax
	a.Minn = 0
	a.Maxn = 0
	a.Bucket = 0
	a.LRUpdateRate = 100
	return a
}

// Validate checks the invariants the CLI and the library both depend on.
func (a Args) Validate() error {
	if a.Dim <= 0 {
		return fmt.Errorf("dim must be positive, got %d", a.Dim)
	}
	if a.Thread <= 0 {
		return fmt.Errorf("thread must be positive, got %d", a.Thread)
	}
	if a.Bucket < 0 {
		return fmt.Errorf("bucket must be non-negative, got %d", a.Bucket)
	}
	if a.Minn > a.Maxn {
		return fmt.Errorf("minn (%d) must be <= maxn (%d)", a.Minn, a.Maxn)
	}
	if a.WordNgrams < 1 {
		return fmt.Errorf("wordNgrams must be >= 1, got %d", a.WordNgrams)
	}
	return nil
}
