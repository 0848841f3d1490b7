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

// Package optimizer turns historical benchmark runs into a configuration
// recommendation.
//
// Every strategy satisfies the same Optimizer capability set and is selected
// by name through New:
//
//   - brute-force: remembers the single measured run with the best GFLOPS/W
//   - linear-regression: polynomial ridge regression with the degree chosen
//     by cross validation
//   - random-forest: bagged regression trees with the forest size and depth
//     chosen by cross validation
//
// Regression strategies score every configuration of the queried machine and
// return the best predicted one. Training is deterministic for a given input.
//
// Usage:
//
//	opt, err := optimizer.New("linear-regression")
//	if err != nil {
//	    return err
//	}
//	if err := optimizer.Train(opt, runs); err != nil {
//	    return err
//	}
//	if err := opt.Save(path); err != nil {
//	    return err
//	}
//	cfg, err := opt.Run(info)
//
// Artifacts are JSON documents with a "type" field naming the strategy that
// wrote them. Loading an artifact into a different strategy fails.
package optimizer
