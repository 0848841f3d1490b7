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

package system

// Space returns every Configuration to benchmark on info, core-major, then
// threads per core, then frequency.
//
// Core counts are the powers of two up to and including the largest one not
// above info.Cores. A 6 core machine is tested at 1, 2 and 4 cores.
func Space(info SystemInfo) []Configuration {
	if info.Cores < 1 || info.ThreadsPerCore < 1 || len(info.Frequencies) == 0 {
		return []Configuration{}
	}

	res := make([]Configuration, 0, coreSteps(info.Cores)*info.ThreadsPerCore*len(info.Frequencies))
	for cores := 1; cores <= info.Cores; cores *= 2 {
		for tpc := 1; tpc <= info.ThreadsPerCore; tpc++ {
			for _, freq := range info.Frequencies {
				res = append(res, Configuration{
					Cores:          cores,
					ThreadsPerCore: tpc,
					Frequency:      freq,
				})
			}
		}
	}
	return res
}

func coreSteps(cores int) int {
	n := 0
	for c := 1; c <= cores; c *= 2 {
		n++
	}
	return n
}
