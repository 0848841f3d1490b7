// Copyright (c) 2025, The chronus Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package optimizer

import (
	"log/slog"
	"math/rand/v2"
	"slices"

	"github.com/AndersSpringborg/chronus/pkg/benchmark"
	"github.com/AndersSpringborg/chronus/pkg/errors"
	"github.com/AndersSpringborg/chronus/pkg/system"
)

const (
	minSamplesSplit = 2

	// maxSplitFeatures is how many randomly ordered features a split tries
	// before settling for the best improvement found so far.
	maxSplitFeatures = 2
)

// forestParams is one point of the hyperparameter grid.
type forestParams struct {
	Trees    int `json:"trees"`
	MaxDepth int `json:"max_depth"`
}

var forestGrid = []forestParams{
	{Trees: 10, MaxDepth: 4},
	{Trees: 10, MaxDepth: 8},
	{Trees: 50, MaxDepth: 4},
	{Trees: 50, MaxDepth: 8},
}

// RandomForest fits bagged regression trees to GFLOPS/W and recommends the
// best predicted configuration. Each tree trains on a bootstrap sample and
// each split considers a random subset of maxSplitFeatures features, drawn
// from the seeded generator so training is reproducible. When none of the
// drawn features improves the node the remaining ones are tried before the
// node becomes a leaf.
type RandomForest struct {
	forest *forest
}

type forest struct {
	Params forestParams `json:"params"`
	Trees  []tree       `json:"trees"`
}

// tree is stored flat. Node 0 is the root.
type tree struct {
	Nodes []node `json:"nodes"`
}

type node struct {
	Leaf      bool    `json:"leaf,omitempty"`
	Value     float64 `json:"value,omitempty"`
	Feature   int     `json:"feature,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      int     `json:"left,omitempty"`
	Right     int     `json:"right,omitempty"`
}

type randomForestArtifact struct {
	Type string `json:"type"`
	forest
}

// NewRandomForest returns an untrained RandomForest optimizer.
func NewRandomForest() *RandomForest {
	return &RandomForest{}
}

// Name implements Optimizer.
func (o *RandomForest) Name() string {
	return NameRandomForest
}

// MakeModel selects forest size and depth by cross validation and refits
// on all runs.
func (o *RandomForest) MakeModel(runs []*benchmark.Run) error {
	d := newDataset(runs)
	if d.len() == 0 {
		return errNoRuns(o.Name())
	}

	best, bestScore := forestGrid[0], 0.0
	for i, params := range forestGrid {
		score, err := crossValidate(d, func(train *dataset) (predictor, error) {
			return growForest(train, params), nil
		})
		if err != nil {
			return err
		}
		slog.Debug("forest candidate scored", "trees", params.Trees, "max_depth", params.MaxDepth, "mse", score)
		if i == 0 || score < bestScore {
			best, bestScore = params, score
		}
	}

	o.forest = growForest(d, best)
	slog.Debug("forest model selected", "trees", best.Trees, "max_depth", best.MaxDepth, "mse", bestScore)
	return nil
}

// Save implements Optimizer.
func (o *RandomForest) Save(path string) error {
	if o.forest == nil {
		return errNotTrained(o.Name())
	}
	return writeArtifact(path, randomForestArtifact{Type: o.Name(), forest: *o.forest})
}

// Load implements Optimizer.
func (o *RandomForest) Load(path string) error {
	var a randomForestArtifact
	if err := readArtifact(path, o.Name(), &a); err != nil {
		return err
	}
	f := a.forest
	if err := f.validate(); err != nil {
		return errors.WrapWithContext(errors.ErrCodeInvalidRequest, "inconsistent forest artifact", err,
			map[string]any{"path": path})
	}
	o.forest = &f
	return nil
}

// Run implements Optimizer.
func (o *RandomForest) Run(info system.SystemInfo) (system.Configuration, error) {
	if o.forest == nil {
		return system.Configuration{}, errNotTrained(o.Name())
	}
	return argmax(info, o.forest)
}

func growForest(d *dataset, params forestParams) *forest {
	rng := newRand()
	f := &forest{Params: params, Trees: make([]tree, 0, params.Trees)}
	for range params.Trees {
		idx := make([]int, d.len())
		for i := range idx {
			idx[i] = rng.IntN(d.len())
		}
		t := tree{}
		t.grow(d, idx, 0, params.MaxDepth, rng)
		f.Trees = append(f.Trees, t)
	}
	return f
}

func (f *forest) predict(x []float64) float64 {
	if len(f.Trees) == 0 {
		return 0
	}
	var sum float64
	for i := range f.Trees {
		sum += f.Trees[i].predict(x)
	}
	return sum / float64(len(f.Trees))
}

func (f *forest) validate() error {
	if len(f.Trees) == 0 {
		return errors.New(errors.ErrCodeInvalidRequest, "forest has no trees")
	}
	for i, t := range f.Trees {
		if len(t.Nodes) == 0 {
			return errors.NewWithContext(errors.ErrCodeInvalidRequest, "empty tree", map[string]any{"tree": i})
		}
		for j, n := range t.Nodes {
			if n.Leaf {
				continue
			}
			if n.Feature < 0 || n.Feature >= numFeatures ||
				n.Left <= j || n.Left >= len(t.Nodes) || n.Right <= j || n.Right >= len(t.Nodes) {
				return errors.NewWithContext(errors.ErrCodeInvalidRequest, "malformed tree node",
					map[string]any{"tree": i, "node": j})
			}
		}
	}
	return nil
}

// grow appends the subtree for rows idx and returns its node index.
func (t *tree) grow(d *dataset, idx []int, depth, maxDepth int, rng *rand.Rand) int {
	pos := len(t.Nodes)
	t.Nodes = append(t.Nodes, node{Leaf: true, Value: meanOf(d, idx)})

	if depth >= maxDepth || len(idx) < minSamplesSplit {
		return pos
	}
	feature, threshold, ok := bestSplit(d, idx, rng.Perm(numFeatures))
	if !ok {
		return pos
	}

	var left, right []int
	for _, i := range idx {
		if d.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	l := t.grow(d, left, depth+1, maxDepth, rng)
	r := t.grow(d, right, depth+1, maxDepth, rng)
	t.Nodes[pos] = node{Feature: feature, Threshold: threshold, Left: l, Right: r}
	return pos
}

func (t *tree) predict(x []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Leaf {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// bestSplit finds the feature and midpoint threshold that most reduce the
// squared error of idx. Features are tried in order; the search stops after
// maxSplitFeatures of them once some split has improved. ok is false when no
// split improves on the parent.
func bestSplit(d *dataset, idx []int, order []int) (feature int, threshold float64, ok bool) {
	parent := sse(d, idx)
	if parent == 0 {
		return 0, 0, false
	}
	best := parent

	for n, f := range order {
		if n >= maxSplitFeatures && ok {
			break
		}
		values := make([]float64, 0, len(idx))
		for _, i := range idx {
			values = append(values, d.x[i][f])
		}
		slices.Sort(values)
		values = slices.Compact(values)

		for k := 1; k < len(values); k++ {
			th := (values[k-1] + values[k]) / 2
			var left, right []int
			for _, i := range idx {
				if d.x[i][f] <= th {
					left = append(left, i)
				} else {
					right = append(right, i)
				}
			}
			if s := sse(d, left) + sse(d, right); s < best {
				best, feature, threshold, ok = s, f, th, true
			}
		}
	}
	return feature, threshold, ok
}

func meanOf(d *dataset, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	var sum float64
	for _, i := range idx {
		sum += d.y[i]
	}
	return sum / float64(len(idx))
}

func sse(d *dataset, idx []int) float64 {
	m := meanOf(d, idx)
	var s float64
	for _, i := range idx {
		diff := d.y[i] - m
		s += diff * diff
	}
	return s
}

