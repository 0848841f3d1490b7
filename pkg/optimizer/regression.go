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
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"

	"github.com/AndersSpringborg/chronus/pkg/benchmark"
	"github.com/AndersSpringborg/chronus/pkg/errors"
	"github.com/AndersSpringborg/chronus/pkg/system"
)

const ridgeLambda = 1e-3

var regressionDegrees = []int{2, 3, 4}

// LinearRegression fits a polynomial of the configuration features to
// GFLOPS/W and recommends the best predicted configuration.
type LinearRegression struct {
	fit *polyFit
}

type polyFit struct {
	Degree       int       `json:"degree"`
	Means        []float64 `json:"means"`
	StdDevs      []float64 `json:"std_devs"`
	Coefficients []float64 `json:"coefficients"`

	terms [][]int
}

type linearRegressionArtifact struct {
	Type string `json:"type"`
	polyFit
}

// NewLinearRegression returns an untrained LinearRegression optimizer.
func NewLinearRegression() *LinearRegression {
	return &LinearRegression{}
}

// Name implements Optimizer.
func (o *LinearRegression) Name() string {
	return NameLinearRegression
}

// MakeModel selects the polynomial degree by cross validation and refits on
// all runs.
func (o *LinearRegression) MakeModel(runs []*benchmark.Run) error {
	d := newDataset(runs)
	if d.len() == 0 {
		return errNoRuns(o.Name())
	}

	bestDegree, bestScore := regressionDegrees[0], 0.0
	for i, degree := range regressionDegrees {
		score, err := crossValidate(d, func(train *dataset) (predictor, error) {
			return fitPolynomial(train, degree)
		})
		if err != nil {
			return err
		}
		slog.Debug("regression candidate scored", "degree", degree, "mse", score)
		if i == 0 || score < bestScore {
			bestDegree, bestScore = degree, score
		}
	}

	fit, err := fitPolynomial(d, bestDegree)
	if err != nil {
		return err
	}
	o.fit = fit
	slog.Debug("regression model selected", "degree", bestDegree, "mse", bestScore)
	return nil
}

// Save implements Optimizer.
func (o *LinearRegression) Save(path string) error {
	if o.fit == nil {
		return errNotTrained(o.Name())
	}
	return writeArtifact(path, linearRegressionArtifact{Type: o.Name(), polyFit: *o.fit})
}

// Load implements Optimizer.
func (o *LinearRegression) Load(path string) error {
	var a linearRegressionArtifact
	if err := readArtifact(path, o.Name(), &a); err != nil {
		return err
	}
	fit := a.polyFit
	fit.terms = polynomialTerms(fit.Degree)
	if len(fit.Means) != numFeatures || len(fit.StdDevs) != numFeatures || len(fit.Coefficients) != len(fit.terms) {
		return errors.NewWithContext(errors.ErrCodeInvalidRequest, "inconsistent regression artifact",
			map[string]any{"path": path, "degree": fit.Degree, "coefficients": len(fit.Coefficients)})
	}
	o.fit = &fit
	return nil
}

// Run implements Optimizer.
func (o *LinearRegression) Run(info system.SystemInfo) (system.Configuration, error) {
	if o.fit == nil {
		return system.Configuration{}, errNotTrained(o.Name())
	}
	return argmax(info, o.fit)
}

// polynomialTerms lists the exponent tuples of every monomial of the
// features up to degree, constant term first.
func polynomialTerms(degree int) [][]int {
	var terms [][]int
	for total := 0; total <= degree; total++ {
		for a := total; a >= 0; a-- {
			for b := total - a; b >= 0; b-- {
				terms = append(terms, []int{a, b, total - a - b})
			}
		}
	}
	return terms
}

func fitPolynomial(d *dataset, degree int) (*polyFit, error) {
	if degree < 1 {
		return nil, errors.New(errors.ErrCodeInvalidRequest, fmt.Sprintf("invalid polynomial degree %d", degree))
	}

	fit := &polyFit{
		Degree:  degree,
		Means:   make([]float64, numFeatures),
		StdDevs: make([]float64, numFeatures),
		terms:   polynomialTerms(degree),
	}
	for f := 0; f < numFeatures; f++ {
		col := make(stats.Float64Data, d.len())
		for i, row := range d.x {
			col[i] = row[f]
		}
		mean, err := stats.Mean(col)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "failed to standardize features", err)
		}
		sd, err := stats.StandardDeviationPopulation(col)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRequest, "failed to standardize features", err)
		}
		if sd == 0 {
			sd = 1
		}
		fit.Means[f], fit.StdDevs[f] = mean, sd
	}

	p := len(fit.terms)
	design := mat.NewDense(d.len(), p, nil)
	for i, row := range d.x {
		design.SetRow(i, fit.expand(row))
	}
	target := mat.NewVecDense(d.len(), append([]float64(nil), d.y...))

	var gram mat.Dense
	gram.Mul(design.T(), design)
	for j := 1; j < p; j++ {
		gram.Set(j, j, gram.At(j, j)+ridgeLambda)
	}
	var moment mat.VecDense
	moment.MulVec(design.T(), target)

	var beta mat.VecDense
	if err := beta.SolveVec(&gram, &moment); err != nil {
		var cond mat.Condition
		if !stderrors.As(err, &cond) {
			return nil, errors.Wrap(errors.ErrCodeInternal, "failed to solve regression", err)
		}
		// the solution is still usable, only less precise
		slog.Debug("regression system is ill-conditioned", "degree", degree, "condition", float64(cond))
	}
	fit.Coefficients = mat.Col(nil, 0, &beta)
	return fit, nil
}

func (f *polyFit) expand(x []float64) []float64 {
	z := make([]float64, numFeatures)
	for i := range z {
		z[i] = (x[i] - f.Means[i]) / f.StdDevs[i]
	}
	row := make([]float64, len(f.terms))
	for i, t := range f.terms {
		v := 1.0
		for k, e := range t {
			for range e {
				v *= z[k]
			}
		}
		row[i] = v
	}
	return row
}

func (f *polyFit) predict(x []float64) float64 {
	var y float64
	for i, v := range f.expand(x) {
		y += f.Coefficients[i] * v
	}
	return y
}
