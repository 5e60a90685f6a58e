// Package fasttext is the top-level facade: it wires dictionary,
// matrix, loss, model, train, quantize, and ioformat into the handful
// of operations spec §6 exposes (train, predict, nearest-neighbor,
// analogy, quantize, save/load), the way pkg/korel.Korel wires its own
// subpackages behind one Options-constructed type (SPEC_FULL.md §C).
package fasttext

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"sort"

	"github.com/cognicore/fasttext/pkg/fasttext/args"
	"github.com/cognicore/fasttext/pkg/fasttext/dictionary"
	"github.com/cognicore/fasttext/pkg/fasttext/internalerr"
	"github.com/cognicore/fasttext/pkg/fasttext/ioformat"
	"github.com/cognicore/fasttext/pkg/fasttext/loss"
	"github.com/cognicore/fasttext/pkg/fasttext/matrix"
	"github.com/cognicore/fasttext/pkg/fasttext/model"
	"github.com/cognicore/fasttext/pkg/fasttext/quantize"
	"github.com/cognicore/fasttext/pkg/fasttext/train"
	"github.com/cognicore/fasttext/pkg/fasttext/vecmath"
)

// FastText is a trained (or loaded) model: the dictionary that maps
// surface forms to ids, the input/output matrices, and the loss that
// knows how to score against them.
type FastText struct {
	args args.Args
	dict *dictionary.Dictionary
	// wi is non-nil only before quantization: Update needs a mutable
	// Dense to train against. wiScore is always set, to whichever of
	// wi or a quantized input matrix GetWordVector/NN should read from.
	wi      *matrix.Dense
	wiScore matrix.Matrix
	wo      matrix.Matrix
	l       loss.Loss
	// woDense is kept whenever wo hasn't been quantized yet, so Quantize
	// has a dense matrix to compress and Save can tell whether to write
	// the dense or quantized branch.
	woDense *matrix.Dense
	qnorm   bool
}

// New validates a and returns an untrained FastText holding it; the
// dictionary, matrices and loss are built later by Train (spec §4.2,
// §6).
func New(a args.Args) (*FastText, error) {
	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("fasttext: %w: %v", internalerr.ErrInvalidArgument, err)
	}
	return &FastText{args: a}, nil
}

// Args returns the configuration this model was built or loaded with.
func (f *FastText) Args() args.Args { return f.args }

// SetArgs replaces the configuration a subsequent Train call uses,
// letting an autotune search retrain the same FastText value under a
// new set of sampled hyperparameters (spec §4.5).
func (f *FastText) SetArgs(a args.Args) { f.args = a }

// NumWords and NumLabels report the dictionary's vocabulary sizes
// (spec §6 "dump").
func (f *FastText) NumWords() int  { return int(f.dict.Nwords()) }
func (f *FastText) NumLabels() int { return int(f.dict.Nlabels()) }

// Quantized reports whether the input matrix has been product-quantized.
func (f *FastText) Quantized() bool { return f.wi == nil }

// Train builds the dictionary from a.Input, initializes the input/
// output matrices and the configured loss, optionally seeds the input
// matrix from pretrained vectors, and runs the Hogwild training loop to
// completion or cancellation (spec §4.2 steps 1-5, §4.4).
func (f *FastText) Train(ctx context.Context) error {
	dict := dictionary.New(f.args)
	if err := dict.ReadFromFile(f.args.Input); err != nil {
		return fmt.Errorf("fasttext: %w", err)
	}
	f.dict = dict

	rng := rand.New(rand.NewSource(int64(f.args.Seed)))
	nwords := int(dict.Nwords())
	bucket := int(dict.Bucket())
	wi := matrix.NewDense(nwords+bucket, f.args.Dim)
	wi.InitRowRange(0, wi.Rows(), rng)

	if f.args.PretrainedVectors != "" {
		if err := f.loadPretrainedInto(wi); err != nil {
			return err
		}
	}

	var osz int
	if f.args.Model == args.ModelSupervised {
		osz = int(dict.Nlabels())
	} else {
		osz = int(dict.Nwords())
	}
	wo := matrix.NewDense(osz, f.args.Dim) // zero-initialized, matches original

	l, err := buildLoss(f.args, dict, wo, rng)
	if err != nil {
		return err
	}

	normalizeGradient := f.args.Model == args.ModelSupervised
	m := model.New(wi, wo, l, normalizeGradient)

	d := train.NewDriver(f.args, dict, m)
	if err := d.Run(ctx); err != nil {
		return fmt.Errorf("fasttext: %w", err)
	}

	f.wi, f.wiScore, f.woDense, f.wo, f.l = wi, wi, wo, wo, l
	return nil
}

// buildLoss constructs the Loss implementation Args.Loss selects,
// drawing target counts/Huffman ordering from dict the same way
// FastText::train does before spinning up worker threads (spec §4.3).
func buildLoss(a args.Args, dict *dictionary.Dictionary, wo *matrix.Dense, rng *rand.Rand) (loss.Loss, error) {
	switch a.Loss {
	case args.LossNS:
		counts := dict.GetCounts(dictionary.KindWord)
		if a.Model == args.ModelSupervised {
			counts = dict.GetCounts(dictionary.KindLabel)
		}
		return loss.NewNegativeSamplingLoss(wo, a.Neg, counts, rng), nil
	case args.LossHS:
		counts := dict.GetCounts(dictionary.KindWord)
		if a.Model == args.ModelSupervised {
			counts = dict.GetCounts(dictionary.KindLabel)
		}
		return loss.NewHierarchicalSoftmaxLoss(wo, counts), nil
	case args.LossOVA:
		return loss.NewOneVsAllLoss(wo), nil
	default:
		return loss.NewSoftmaxLoss(wo), nil
	}
}

// loadPretrainedInto overwrites wi's word rows with a pretrained
// vectors file, leaving bucket rows at their random initialization
// (spec §6 "Pretrained vectors input").
func (f *FastText) loadPretrainedInto(wi *matrix.Dense) error {
	file, err := os.Open(f.args.PretrainedVectors)
	if err != nil {
		return fmt.Errorf("fasttext: %w: %v", internalerr.ErrIO, err)
	}
	defer file.Close()

	words, vectors, err := ioformat.ReadPretrainedVectors(file, f.args.Dim)
	if err != nil {
		return fmt.Errorf("fasttext: %w", err)
	}
	for i, w := range words {
		id := f.dict.GetID(w)
		if id < 0 {
			continue
		}
		copy(wi.Row(int(id)), vectors[i])
	}
	return nil
}

// GetWordVector returns a fresh, caller-owned vector: the average of a
// word's subword rows (spec §D.4 "fresh allocation every call").
func (f *FastText) GetWordVector(word string) []float32 {
	ids := f.dict.GetSubwordsByWord(word)
	out := make([]float32, f.args.Dim)
	if len(ids) == 0 {
		return out
	}
	for _, id := range ids {
		f.wiScore.AddRowToVector(out, int(id), 1)
	}
	vecmath.Scale(out, 1/float32(len(ids)))
	return out
}

// GetSentenceVector returns the average of every word's vector in the
// whitespace-tokenized sentence (spec §D.4), skipping EOS.
func (f *FastText) GetSentenceVector(sentence string) []float32 {
	out := make([]float32, f.args.Dim)
	n := 0
	word := make([]byte, 0, 32)
	flush := func() {
		if len(word) == 0 {
			return
		}
		v := f.GetWordVector(string(word))
		for i := range out {
			out[i] += v[i]
		}
		n++
		word = word[:0]
	}
	for i := 0; i < len(sentence); i++ {
		c := sentence[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			flush()
			continue
		}
		word = append(word, c)
	}
	flush()
	if n > 0 {
		vecmath.Scale(out, 1/float32(n))
	}
	return out
}

// Predict returns the top-k labels for a whitespace-tokenized sentence
// (spec §6 "predict"). Unsupervised models predict over the word
// vocabulary itself.
func (f *FastText) Predict(sentence string, k int, threshold float32) ([]loss.Prediction, error) {
	state := model.NewState(f.args.Dim, f.args.Seed, 0)
	var input []int32
	for _, w := range splitWhitespace(sentence) {
		id := f.dict.GetID(w)
		if id < 0 || f.dict.GetKind(id) != dictionary.KindWord {
			continue
		}
		input = append(input, f.dict.Subwords(id)...)
	}
	m := model.New(f.wiScore, f.wo, f.l, f.args.Model == args.ModelSupervised)
	preds, err := m.Predict(input, k, threshold, state)
	if err != nil {
		return nil, fmt.Errorf("fasttext: %w", err)
	}
	return preds, nil
}

// PredictLabel renders one prediction's id back to its label/word
// string (spec §6 "predict": output is textual labels, not raw ids).
// Supervised output rows are indexed 0..nlabels-1 within the label
// subset, which sits right after the words in the dictionary's entry
// order, so the dictionary id is nwords + row.
func (f *FastText) PredictLabel(p loss.Prediction) string {
	if f.args.Model == args.ModelSupervised {
		return f.dict.GetWord(f.dict.Nwords() + p.Label)
	}
	return f.dict.GetWord(p.Label)
}

// Neighbor is one scored candidate in a nearest-neighbor or analogy
// result list.
type Neighbor struct {
	Word  string
	Score float32
}

// NN returns the k words whose vectors are most cosine-similar to
// word's (spec §6 "nn"), excluding the query word itself.
func (f *FastText) NN(word string, k int) []Neighbor {
	query := f.GetWordVector(word)
	return f.nearest(query, k, map[string]bool{word: true})
}

// Analogies solves "a is to b as c is to ?" via vector arithmetic
// b - a + c, excluding the three input words from the result (spec §6
// "analogies").
func (f *FastText) Analogies(a, b, c string, k int) []Neighbor {
	va, vb, vc := f.GetWordVector(a), f.GetWordVector(b), f.GetWordVector(c)
	query := make([]float32, f.args.Dim)
	for i := range query {
		query[i] = vb[i] - va[i] + vc[i]
	}
	exclude := map[string]bool{a: true, b: true, c: true}
	return f.nearest(query, k, exclude)
}

func (f *FastText) nearest(query []float32, k int, exclude map[string]bool) []Neighbor {
	qn := vecmath.L2Norm(query)
	out := make([]Neighbor, 0, f.dict.Nwords())
	for id := int32(0); id < f.dict.Nwords(); id++ {
		w := f.dict.GetWord(id)
		if exclude[w] {
			continue
		}
		v := f.GetWordVector(w)
		sim := vecmath.Dot(query, v)
		if qn > 0 {
			vn := vecmath.L2Norm(v)
			if vn > 0 {
				sim /= qn * vn
			}
		}
		out = append(out, Neighbor{Word: w, Score: sim})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if k < len(out) {
		out = out[:k]
	}
	return out
}

func splitWhitespace(s string) []string {
	var out []string
	cur := make([]byte, 0, 16)
	flush := func() {
		if len(cur) > 0 {
			out = append(out, string(cur))
			cur = cur[:0]
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			flush()
			continue
		}
		cur = append(cur, c)
	}
	flush()
	return out
}

// QuantizeOptions mirrors the `quantize` subcommand's flags (spec §6).
type QuantizeOptions struct {
	Cutoff int
	Dsub   int
	Qnorm  bool
	Qout   bool
	Retrain bool
}

// Quantize compresses the trained model in place: an optional
// norm-ranked cutoff (with retrain) followed by product quantization of
// the input and, if requested, output matrices (spec §4.6).
func (f *FastText) Quantize(ctx context.Context, opts QuantizeOptions) error {
	if f.woDense == nil {
		return fmt.Errorf("fasttext: %w: model already quantized", internalerr.ErrInvalidArgument)
	}
	wi := f.wi
	if pr := quantize.PruneToSize(f.dict, f.wi, opts.Cutoff); pr != nil {
		wi = pr.Wi
		if opts.Retrain {
			a := f.args
			a.Epoch = max(1, a.Epoch/10)
			f.wi = wi
			f.args = a
			if err := f.retrainInput(ctx); err != nil {
				return err
			}
			wi = f.wi
		}
	}

	q := quantize.Apply(wi, f.woDense, opts.Dsub, opts.Qnorm, opts.Qout)
	f.wi = nil
	f.wiScore = q.Input
	f.qnorm = opts.Qnorm
	if q.Output != nil {
		f.wo = q.Output
		f.woDense = nil
	}
	// Loss.Predict takes its scoring matrix explicitly (loss.Loss), so
	// f.l keeps working unchanged against either the still-dense or now
	// quantized f.wo.
	return nil
}

// retrainInput re-runs a short Hogwild pass limited to the rows Cutoff
// kept, the original implementation's "quantize --retrain" behavior
// (spec §4.6 step 1 "optionally retrain").
func (f *FastText) retrainInput(ctx context.Context) error {
	normalizeGradient := f.args.Model == args.ModelSupervised
	m := model.New(f.wi, f.woDense, f.l, normalizeGradient)
	d := train.NewDriver(f.args, f.dict, m)
	return d.Run(ctx)
}

// Save writes the versioned binary model file (spec §4.7).
func (f *FastText) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("fasttext: %w: %v", internalerr.ErrIO, err)
	}
	defer file.Close()

	if err := ioformat.WriteHeader(file); err != nil {
		return err
	}
	if err := ioformat.WriteArgs(file, f.args); err != nil {
		return err
	}
	if err := f.dict.Save(file); err != nil {
		return fmt.Errorf("fasttext: %w", err)
	}
	quantInput := f.wi == nil
	if err := ioformat.WriteBool(file, quantInput); err != nil {
		return err
	}
	if quantInput {
		if err := f.wiScore.(*matrix.Quantized).Save(file); err != nil {
			return fmt.Errorf("fasttext: %w", err)
		}
	} else if err := f.wi.Save(file); err != nil {
		return fmt.Errorf("fasttext: %w", err)
	}

	quantOutput := f.woDense == nil
	if err := ioformat.WriteBool(file, quantOutput); err != nil {
		return err
	}
	if quantOutput {
		return f.wo.(*matrix.Quantized).Save(file)
	}
	return f.woDense.Save(file)
}

// Load reads a versioned binary model file (spec §4.7), including the
// version-11-supervised backward-compatibility rule.
func Load(path string) (*FastText, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("fasttext: %w: %v", internalerr.ErrIO, err)
	}
	defer file.Close()

	version, err := ioformat.ReadHeader(file)
	if err != nil {
		return nil, err
	}
	a, err := ioformat.ReadArgs(file, version)
	if err != nil {
		return nil, err
	}
	dict, err := dictionary.Load(file, a)
	if err != nil {
		return nil, fmt.Errorf("fasttext: %w", err)
	}
	quantInput, err := ioformat.ReadBool(file)
	if err != nil {
		return nil, err
	}
	if dict.Pruned() && !quantInput {
		return nil, fmt.Errorf("fasttext: %w: cannot load a pruned dictionary with a non-quantized input matrix", internalerr.ErrInvalidArgument)
	}

	f := &FastText{args: a, dict: dict}
	if quantInput {
		q, err := matrix.LoadQuantized(file)
		if err != nil {
			return nil, fmt.Errorf("fasttext: %w", err)
		}
		f.wiScore = q
	} else {
		d, err := matrix.LoadDense(file)
		if err != nil {
			return nil, fmt.Errorf("fasttext: %w", err)
		}
		f.wi = d
		f.wiScore = d
	}

	quantOutput, err := ioformat.ReadBool(file)
	if err != nil {
		return nil, err
	}
	var wo matrix.Matrix
	if quantOutput {
		q, err := matrix.LoadQuantized(file)
		if err != nil {
			return nil, fmt.Errorf("fasttext: %w", err)
		}
		wo = q
	} else {
		d, err := matrix.LoadDense(file)
		if err != nil {
			return nil, fmt.Errorf("fasttext: %w", err)
		}
		wo = d
		f.woDense = d
	}
	f.wo = wo

	rng := rand.New(rand.NewSource(int64(a.Seed)))
	l, err := buildLossFromDict(a, dict, wo, rng)
	if err != nil {
		return nil, err
	}
	f.l = l
	return f, nil
}

// buildLossFromDict reconstructs the Loss for a loaded model. wo may be
// Dense (trainable) or Quantized (predict-only); every loss stores its
// wo purely for Forward (training), which a quantized, loaded-for-
// inference model never calls, so a nil *matrix.Dense there is benign —
// Predict always takes its scoring matrix explicitly (loss.Loss). The
// one exception is softmax, which sizes its scratch buffer from wo's
// rows; it gets a zero Dense of the same shape when wo is quantized.
func buildLossFromDict(a args.Args, dict *dictionary.Dictionary, wo matrix.Matrix, rng *rand.Rand) (loss.Loss, error) {
	wd, _ := wo.(*matrix.Dense)
	switch a.Loss {
	case args.LossNS:
		counts := dict.GetCounts(dictionary.KindWord)
		if a.Model == args.ModelSupervised {
			counts = dict.GetCounts(dictionary.KindLabel)
		}
		return loss.NewNegativeSamplingLoss(wd, a.Neg, counts, rng), nil
	case args.LossHS:
		counts := dict.GetCounts(dictionary.KindWord)
		if a.Model == args.ModelSupervised {
			counts = dict.GetCounts(dictionary.KindLabel)
		}
		return loss.NewHierarchicalSoftmaxLoss(wd, counts), nil
	case args.LossOVA:
		return loss.NewOneVsAllLoss(wd), nil
	default:
		if wd == nil {
			wd = matrix.NewDense(wo.Rows(), wo.Cols())
		}
		return loss.NewSoftmaxLoss(wd), nil
	}
}
