package model

import (
	"context"
	"fmt"
)

// ForestParams is a tree ensemble exported from a fitted random forest.
type ForestParams struct {
	Trees []Tree `json:"trees"`
}

// Tree is one decision tree stored as a flat node array; node 0 is the root.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Node is a split (Left and Right >= 0) or a leaf (Left == Right == -1).
// Samples with x[Feature] <= Threshold go left. Value holds the per-class
// sample counts or fractions at a leaf.
type Node struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Value     []float64 `json:"value,omitempty"`
}

func (n Node) isLeaf() bool { return n.Left < 0 && n.Right < 0 }

// Forest evaluates a random forest the way scikit-learn does: class
// probabilities are the mean of each tree's normalised leaf distribution
// and the label is the most probable class.
type Forest struct {
	id          string
	numFeatures int
	classes     []int
	trees       []Tree
	leafProba   [][][]float64 // [tree][node] normalised leaf values
}

var _ Classifier = (*Forest)(nil)

// NewForest validates the tree structure in m and builds a Forest.
func NewForest(m *Manifest) (*Forest, error) {
	if m.Forest == nil || len(m.Forest.Trees) == 0 {
		return nil, fmt.Errorf("random_forest artifact has no trees")
	}
	classes := m.ClassList()

	f := &Forest{
		id:          fmt.Sprintf("%s@%s", FormatRandomForest, m.Version),
		numFeatures: m.NumFeatures,
		classes:     classes,
		trees:       m.Forest.Trees,
		leafProba:   make([][][]float64, len(m.Forest.Trees)),
	}

	for ti, tree := range m.Forest.Trees {
		f.leafProba[ti] = make([][]float64, len(tree.Nodes))
		for ni, n := range tree.Nodes {
			if n.isLeaf() {
				p, err := normalise(n.Value, len(classes))
				if err != nil {
					return nil, fmt.Errorf("tree %d node %d: %w", ti, ni, err)
				}
				f.leafProba[ti][ni] = p
				continue
			}
			if n.Left < 0 || n.Right < 0 {
				return nil, fmt.Errorf("tree %d node %d: split with a single child", ti, ni)
			}
			if n.Left >= len(tree.Nodes) || n.Right >= len(tree.Nodes) {
				return nil, fmt.Errorf("tree %d node %d: child index out of range", ti, ni)
			}
			if n.Left <= ni || n.Right <= ni {
				return nil, fmt.Errorf("tree %d node %d: children must follow their parent", ti, ni)
			}
			if n.Feature < 0 || n.Feature >= m.NumFeatures {
				return nil, fmt.Errorf("tree %d node %d: feature %d outside 0..%d", ti, ni, n.Feature, m.NumFeatures-1)
			}
		}
	}
	return f, nil
}

func normalise(v []float64, n int) ([]float64, error) {
	if len(v) != n {
		return nil, fmt.Errorf("leaf has %d values, want %d", len(v), n)
	}
	var sum float64
	for _, x := range v {
		if x < 0 {
			return nil, fmt.Errorf("negative leaf value %g", x)
		}
		sum += x
	}
	if sum == 0 {
		return nil, fmt.Errorf("leaf values sum to zero")
	}
	p := make([]float64, n)
	for i, x := range v {
		p[i] = x / sum
	}
	return p, nil
}

// PredictProba averages the leaf distributions reached in every tree.
func (f *Forest) PredictProba(_ context.Context, x []float64) ([]float64, error) {
	if err := checkInput(x, f.numFeatures); err != nil {
		return nil, err
	}
	out := make([]float64, len(f.classes))
	for ti, tree := range f.trees {
		leaf := descend(tree, x)
		for c, p := range f.leafProba[ti][leaf] {
			out[c] += p
		}
	}
	for c := range out {
		out[c] /= float64(len(f.trees))
	}
	return out, nil
}

// Predict returns the class with the highest averaged probability.
func (f *Forest) Predict(ctx context.Context, x []float64) (int, error) {
	p, err := f.PredictProba(ctx, x)
	if err != nil {
		return 0, err
	}
	return f.classes[argmax(p)], nil
}

// descend walks from the root to a leaf. Children always follow their
// parent, so the walk terminates.
func descend(t Tree, x []float64) int {
	i := 0
	for !t.Nodes[i].isLeaf() {
		n := t.Nodes[i]
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
	return i
}

func (f *Forest) NumFeatures() int { return f.numFeatures }
func (f *Forest) Classes() []int   { return f.classes }
func (f *Forest) ID() string       { return f.id }

// Trees returns the number of trees in the ensemble.
func (f *Forest) Trees() int { return len(f.trees) }
