// Package quantize orchestrates post-training compression: the
// norm-ranked cutoff prune (with optional retrain) followed by product
// quantization of the input and, optionally, the output matrix (spec
// §4.6). The prune-then-rebuild-then-recompress shape mirrors
// pkg/korel/maintenance.Cleaner's reprocess-and-compare-then-upsert loop
// (SPEC_FULL.md §C), generalized from "revisit every doc" to "revisit
// every surviving input row".
package quantize

import (
	"github.com/cognicore/fasttext/pkg/fasttext/dictionary"
	"github.com/cognicore/fasttext/pkg/fasttext/matrix"
)

// PruneResult is the rebuilt dense input matrix and the dictionary's
// old-id-to-new-id map after a norm-ranked cutoff (spec §4.6 step 1).
type PruneResult struct {
	Wi       *matrix.Dense
	OldToNew map[int32]int32
}

// PruneToSize ranks word rows of wi by L2 norm (the `</s>` row pinned
// first regardless of its norm), keeps the top cutoff, prunes dict to
// match, and rebuilds a dense input matrix whose word rows follow the
// new ids and whose subword-bucket rows are copied through unchanged
// (bucket ids don't depend on nwords, only their matrix offset does;
// spec §4.1 "Pruning", §4.6 step 1). Does nothing if cutoff <= 0 or
// cutoff >= the current word count.
func PruneToSize(dict *dictionary.Dictionary, wi *matrix.Dense, cutoff int) *PruneResult {
	oldNwords := int(dict.Nwords())
	if cutoff <= 0 || cutoff >= oldNwords {
		return nil
	}
	bucket := int(dict.Bucket())

	norms := wi.L2Norms()[:oldNwords]
	// KeepByNorm pins index 0; swap </s> into that slot when it has
	// another id, then swap the ids back.
	eos := dict.GetID(dictionary.EOS)
	swapEOS := eos > 0 && int(eos) < oldNwords
	if swapEOS {
		norms[0], norms[eos] = norms[eos], norms[0]
	}
	keepIDs := dictionary.KeepByNorm(norms, cutoff)
	if swapEOS {
		for i, id := range keepIDs {
			switch id {
			case 0:
				keepIDs[i] = eos
			case eos:
				keepIDs[i] = 0
			}
		}
	}
	oldToNew := dict.Prune(keepIDs)

	newNwords := int(dict.Nwords())
	keepRows := make([]int32, newNwords+bucket)
	for oldID, newID := range oldToNew {
		if int(oldID) < oldNwords {
			keepRows[newID] = oldID
		}
	}
	for h := 0; h < bucket; h++ {
		keepRows[newNwords+h] = int32(oldNwords + h)
	}

	return &PruneResult{Wi: wi.Rebuild(keepRows), OldToNew: oldToNew}
}

// Quantized is the product-quantized input (always) and output (if
// requested) matrices produced by Apply.
type Quantized struct {
	Input  *matrix.Quantized
	Output *matrix.Quantized // nil unless qout was requested
}

// Apply builds the product-quantized input matrix (dsub, qnorm per
// Options) and, if qout, the output matrix with dsub hard-coded to 2
// (spec §4.6 step 2: "If qout, do the same for the output with dsub=2").
func Apply(wi, wo *matrix.Dense, dsub int, qnorm, qout bool) Quantized {
	out := Quantized{Input: matrix.Quantize(wi, dsub, qnorm)}
	if qout {
		out.Output = matrix.Quantize(wo, 2, false)
	}
	return out
}
