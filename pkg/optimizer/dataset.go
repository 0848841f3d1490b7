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
	"math/rand/v2"

	"github.com/montanaflynn/stats"

	"github.com/AndersSpringborg/chronus/pkg/benchmark"
	"github.com/AndersSpringborg/chronus/pkg/errors"
	"github.com/AndersSpringborg/chronus/pkg/system"
)

const (
	// seed fixes fold assignment and bootstrap sampling.
	seed = 42

	cvFolds = 5

	numFeatures = 3
)

// dataset holds feature rows of {cores, threads per core, frequency} and
// their measured GFLOPS/W.
type dataset struct {
	x [][]float64
	y []float64
}

type predictor interface {
	predict(x []float64) float64
}

func features(c system.Configuration) []float64 {
	return []float64{float64(c.Cores), float64(c.ThreadsPerCore), c.Frequency}
}

func newDataset(runs []*benchmark.Run) *dataset {
	d := &dataset{
		x: make([][]float64, 0, len(runs)),
		y: make([]float64, 0, len(runs)),
	}
	for _, r := range runs {
		if r == nil {
			continue
		}
		d.x = append(d.x, features(r.Configuration()))
		d.y = append(d.y, r.GflopsPerWatt())
	}
	return d
}

func (d *dataset) len() int {
	return len(d.y)
}

func (d *dataset) subset(idx []int) *dataset {
	s := &dataset{
		x: make([][]float64, len(idx)),
		y: make([]float64, len(idx)),
	}
	for i, j := range idx {
		s.x[i] = d.x[j]
		s.y[i] = d.y[j]
	}
	return s
}

func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// folds splits n row indexes into up to cvFolds disjoint test sets. Returns
// nil when there are too few rows to validate.
func folds(n int) [][]int {
	k := min(cvFolds, n)
	if k < 2 {
		return nil
	}
	perm := newRand().Perm(n)
	res := make([][]int, k)
	for i, j := range perm {
		res[i%k] = append(res[i%k], j)
	}
	return res
}

// crossValidate returns the mean squared error of fit over the folds of d,
// or zero when d is too small to split.
func crossValidate(d *dataset, fit func(*dataset) (predictor, error)) (float64, error) {
	testSets := folds(d.len())
	if testSets == nil {
		return 0, nil
	}

	var sqErr stats.Float64Data
	for _, test := range testSets {
		inTest := make(map[int]bool, len(test))
		for _, j := range test {
			inTest[j] = true
		}
		train := make([]int, 0, d.len()-len(test))
		for j := 0; j < d.len(); j++ {
			if !inTest[j] {
				train = append(train, j)
			}
		}

		p, err := fit(d.subset(train))
		if err != nil {
			return 0, err
		}
		for _, j := range test {
			diff := p.predict(d.x[j]) - d.y[j]
			sqErr = append(sqErr, diff*diff)
		}
	}
	return stats.Mean(sqErr)
}

// argmax scores every configuration of info with p and returns the best.
// Ties keep the first in enumeration order.
func argmax(info system.SystemInfo, p predictor) (system.Configuration, error) {
	space := system.Space(info)
	if len(space) == 0 {
		return system.Configuration{}, errors.NewWithContext(errors.ErrCodeInvalidRequest,
			"system has no candidate configurations", map[string]any{"system": info.String()})
	}
	best := space[0]
	bestScore := p.predict(features(best))
	for _, c := range space[1:] {
		if s := p.predict(features(c)); s > bestScore {
			best, bestScore = c, s
		}
	}
	return best, nil
}
