package loss

import (
	"math/rand"

	"github.com/cognicore/fasttext/pkg/fasttext/matrix"
)

type treeNode struct {
	parent, left, right int32
	count               int64
	binary              bool
}

// HierarchicalSoftmaxLoss trains and predicts through a Huffman binary
// tree over the label counts, turning an O(nlabels) softmax into an
// O(log nlabels) walk (spec §4.3 "Hierarchical softmax"). The tree is
// built once with the original's two-monotone-pointer linear-time
// algorithm: labels must already be sorted by descending count, which
// dictionary.threshold guarantees.
type HierarchicalSoftmaxLoss struct {
	wo    *matrix.Dense
	osz   int32
	tree  []treeNode
	paths [][]int32
	codes [][]bool
}

// NewHierarchicalSoftmaxLoss builds the tree from counts (parallel to
// wo's conceptual label ids, descending by count).
func NewHierarchicalSoftmaxLoss(wo *matrix.Dense, counts []int64) *HierarchicalSoftmaxLoss {
	l := &HierarchicalSoftmaxLoss{wo: wo, osz: int32(len(counts))}
	l.buildTree(counts)
	return l
}

func (l *HierarchicalSoftmaxLoss) buildTree(counts []int64) {
	osz := l.osz
	l.tree = make([]treeNode, 2*osz-1)
	for i := range l.tree {
		l.tree[i] = treeNode{parent: -1, left: -1, right: -1, count: 1 << 62}
	}
	for i, c := range counts {
		l.tree[i].count = c
	}

	leaf := osz - 1
	node := osz
	for i := osz; i < 2*osz-1; i++ {
		var mini [2]int32
		for j := 0; j < 2; j++ {
			if leaf >= 0 && l.tree[leaf].count < l.tree[node].count {
				mini[j] = leaf
				leaf--
			} else {
				mini[j] = node
				node++
			}
		}
		l.tree[i].left = mini[0]
		l.tree[i].right = mini[1]
		l.tree[i].count = l.tree[mini[0]].count + l.tree[mini[1]].count
		l.tree[mini[0]].parent = i
		l.tree[mini[1]].parent = i
		l.tree[mini[1]].binary = true
	}

	l.paths = make([][]int32, osz)
	l.codes = make([][]bool, osz)
	for i := int32(0); i < osz; i++ {
		var path []int32
		var code []bool
		j := i
		for l.tree[j].parent != -1 {
			path = append(path, l.tree[j].parent-osz)
			code = append(code, l.tree[j].binary)
			j = l.tree[j].parent
		}
		l.paths[i] = path
		l.codes[i] = code
	}
}

func (l *HierarchicalSoftmaxLoss) Forward(hidden []float32, targets []int32, targetIndex int, lr float32, grad []float32, rng *rand.Rand) (float32, error) {
	target := targets[targetIndex]
	var loss float32
	path, code := l.paths[target], l.codes[target]
	for i := range path {
		loss += binaryLogistic(l.wo, path[i], code[i], lr, hidden, grad)
	}
	return loss, nil
}

func (l *HierarchicalSoftmaxLoss) Predict(hidden []float32, threshold float32, h *Heap, wo matrix.Matrix) error {
	logThreshold := safeLog(threshold)
	l.dfs(threshold, logThreshold, 2*l.osz-2, 0, hidden, h, wo)
	return nil
}

func (l *HierarchicalSoftmaxLoss) dfs(threshold, logThreshold float32, node int32, score float32, hidden []float32, h *Heap, wo matrix.Matrix) {
	if score < logThreshold {
		return
	}
	if h.Full() && score < h.Worst() {
		return
	}

	if l.tree[node].left == -1 && l.tree[node].right == -1 {
		h.Push(node, score)
		return
	}

	f := sigmoid(wo.DotRow(hidden, int(node-l.osz)))
	l.dfs(threshold, logThreshold, l.tree[node].left, score+safeLog(1-f), hidden, h, wo)
	l.dfs(threshold, logThreshold, l.tree[node].right, score+safeLog(f), hidden, h, wo)
}
