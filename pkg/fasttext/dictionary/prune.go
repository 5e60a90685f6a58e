package dictionary

import "sort"

// Prune discards every word entry not in keep (entry ids, typically the
// norm-ranked survivors chosen by the quantize package) and records a
// pruneidx mapping from each dropped word's old id to the new id of the
// first kept word that shares one of its subword bucket ids (spec §4.1
// "Pruning"). Dropped words sharing no bucket with a kept word get no
// pruneidx entry. Label entries are never pruned. Ids are reassigned densely; callers must
// rebuild any matrix rows against the returned old-id order.
func (d *Dictionary) Prune(keep []int32) (oldToNew map[int32]int32) {
	keepSet := make(map[int32]bool, len(keep))
	for _, id := range keep {
		keepSet[id] = true
	}

	var newEntries []Entry
	oldToNew = make(map[int32]int32)
	for oldID, e := range d.entries {
		if e.Kind == KindLabel || keepSet[int32(oldID)] {
			oldToNew[int32(oldID)] = int32(len(newEntries))
			newEntries = append(newEntries, e)
		}
	}

	// Build the pruneidx: each bucket id is owned by the lowest new id
	// (the highest-count kept word, since ids follow count order) whose
	// subwords contain it; each dropped word then maps to the owner of
	// the first of its subword bucket ids that has one.
	d.pruneidx = make(map[int32]int32)
	bucketOwner := make(map[int32]int32)
	for newID, e := range newEntries {
		for _, sw := range e.Subwords {
			if sw >= d.nwords {
				if _, ok := bucketOwner[sw]; !ok {
					bucketOwner[sw] = int32(newID)
				}
			}
		}
	}
	for oldID, e := range d.entries {
		if keepSet[int32(oldID)] || e.Kind == KindLabel {
			continue
		}
		for _, sw := range e.Subwords {
			if owner, ok := bucketOwner[sw]; ok {
				d.pruneidx[int32(oldID)] = owner
				break
			}
		}
	}

	d.entries = newEntries
	d.nwords, d.nlabels = 0, 0
	for _, e := range d.entries {
		if e.Kind == KindWord {
			d.nwords++
		} else {
			d.nlabels++
		}
	}
	d.resetHash()
	for id, e := range d.entries {
		slot := d.find(e.Word)
		d.word2int[slot] = int32(id)
	}
	d.initNgrams()
	d.initTableDiscard()
	return oldToNew
}

// KeepByNorm returns the entry ids of the n highest-L2-norm word rows in
// norms (parallel to word entries, index 0 = </s>), with entry 0 always
// retained first regardless of its norm — the quantize package's pruning
// policy (spec §4.1 "Pruning": "</s> pinned first").
func KeepByNorm(norms []float32, n int) []int32 {
	type scored struct {
		id   int32
		norm float32
	}
	scored_ := make([]scored, len(norms))
	for i, v := range norms {
		scored_[i] = scored{id: int32(i), norm: v}
	}
	sort.SliceStable(scored_, func(i, j int) bool {
		return scored_[i].norm > scored_[j].norm
	})
	if n > len(scored_) {
		n = len(scored_)
	}
	keep := make([]int32, 0, n)
	keep = append(keep, 0)
	for _, s := range scored_ {
		if len(keep) >= n {
			break
		}
		if s.id == 0 {
			continue
		}
		keep = append(keep, s.id)
	}
	return keep
}
